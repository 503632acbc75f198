package ledger

import (
	"context"
	"errors"
	"math/big"
	"strings"
	"sync"
	"testing"

	"github.com/Klingon-tech/tokenview/internal/ledger/ledgertest"
	"github.com/Klingon-tech/tokenview/internal/token"
	"github.com/Klingon-tech/tokenview/pkg/types"
)

// panicLedger panics on every call.
type panicLedger struct{}

func (panicLedger) BalanceOf(context.Context, string, types.Account) (*big.Int, error) {
	panic("decoder exploded")
}

func (panicLedger) Metadata(context.Context, string) (token.Metadata, error) {
	panic("decoder exploded")
}

// nilLedger answers balance queries with neither a value nor an error.
type nilLedger struct{ panicLedger }

func (nilLedger) BalanceOf(context.Context, string, types.Account) (*big.Int, error) {
	return nil, nil
}

func TestService_QueryBalance(t *testing.T) {
	fake := ledgertest.NewWithICP()
	sub := types.SubaccountFromUint64(1)
	fake.SetBalance(ledgertest.ICPLedger, types.NewAccount(types.AnonymousPrincipal, &sub), big.NewInt(100500000))

	svc := NewService(fake, nil)
	got, err := svc.QueryBalance(context.Background(), ledgertest.ICPLedger, types.AnonymousPrincipal, &sub)
	if err != nil {
		t.Fatalf("QueryBalance() error: %v", err)
	}
	if got.Int64() != 100500000 {
		t.Errorf("QueryBalance() = %s, want 100500000", got)
	}

	// No metadata is touched by a plain balance query.
	if fake.MetadataCalls() != 0 {
		t.Errorf("metadata calls = %d, want 0", fake.MetadataCalls())
	}
	if svc.Cache().Len() != 0 {
		t.Errorf("cache Len() = %d, want 0", svc.Cache().Len())
	}
}

func TestService_QueryBalanceNilAndZeroSubaccount(t *testing.T) {
	fake := ledgertest.NewWithICP()
	fake.SetBalance(ledgertest.ICPLedger, types.Account{Owner: types.AnonymousPrincipal}, big.NewInt(42))
	svc := NewService(fake, nil)

	zero := types.Subaccount{}
	for _, sub := range []*types.Subaccount{nil, &zero} {
		got, err := svc.QueryBalance(context.Background(), ledgertest.ICPLedger, types.AnonymousPrincipal, sub)
		if err != nil {
			t.Fatalf("QueryBalance() error: %v", err)
		}
		if got.Int64() != 42 {
			t.Errorf("QueryBalance(sub=%v) = %s, want 42", sub, got)
		}
	}
}

func TestService_QueryBalanceRemoteFailure(t *testing.T) {
	fake := ledgertest.NewWithICP()
	fake.FailBalances(errors.New("replica unavailable"))
	svc := NewService(fake, nil)

	got, err := svc.QueryBalance(context.Background(), ledgertest.ICPLedger, types.AnonymousPrincipal, nil)
	if got != nil {
		t.Errorf("QueryBalance() = %s, want nil on failure", got)
	}
	var qerr *QueryError
	if !errors.As(err, &qerr) {
		t.Fatalf("QueryBalance() err = %v, want *QueryError", err)
	}
	if qerr.TokenID != ledgertest.ICPLedger {
		t.Errorf("TokenID = %q, want %q", qerr.TokenID, ledgertest.ICPLedger)
	}
	if !errors.Is(err, ErrRemoteQuery) {
		t.Error("errors.Is(err, ErrRemoteQuery) = false")
	}
	msg := err.Error()
	if !strings.Contains(msg, ledgertest.ICPLedger) || !strings.Contains(msg, "replica unavailable") {
		t.Errorf("Error() = %q, should embed token id and cause", msg)
	}
}

func TestService_QueryBalanceRecoversPanicAndNil(t *testing.T) {
	for name, l := range map[string]Ledger{"panic": panicLedger{}, "nil": nilLedger{}} {
		t.Run(name, func(t *testing.T) {
			svc := NewService(l, nil)
			_, err := svc.QueryBalance(context.Background(), "x", types.AnonymousPrincipal, nil)
			if !errors.Is(err, ErrRemoteQuery) {
				t.Errorf("QueryBalance() err = %v, want ErrRemoteQuery", err)
			}
		})
	}
}

func TestService_QueryBalanceInvalidIdentity(t *testing.T) {
	fake := ledgertest.NewWithICP()
	svc := NewService(fake, nil)

	bad := types.PrincipalFromBytes(make([]byte, 30))
	_, err := svc.QueryBalance(context.Background(), ledgertest.ICPLedger, bad, nil)
	if !errors.Is(err, types.ErrInvalidIdentity) {
		t.Fatalf("QueryBalance() err = %v, want ErrInvalidIdentity", err)
	}
	if errors.Is(err, ErrRemoteQuery) {
		t.Error("invalid identity reported as a remote failure")
	}
	if fake.BalanceCalls() != 0 {
		t.Errorf("ledger was queried %d times for an invalid owner", fake.BalanceCalls())
	}
}

func TestService_MetadataCachedOnce(t *testing.T) {
	fake := ledgertest.NewWithICP()
	svc := NewService(fake, nil)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			svc.Metadata(context.Background(), ledgertest.ICPLedger)
		}()
	}
	wg.Wait()

	meta, ok := svc.Metadata(context.Background(), ledgertest.ICPLedger)
	if !ok || meta.Symbol != "ICP" || meta.Decimals != 8 {
		t.Errorf("Metadata() = %+v, %v", meta, ok)
	}
	if fake.MetadataCalls() != 1 {
		t.Errorf("ledger metadata calls = %d, want 1", fake.MetadataCalls())
	}
}

func TestService_MetadataFallbackNotCached(t *testing.T) {
	fake := ledgertest.NewWithICP()
	fake.FailMetadata(errors.New("down"))
	svc := NewService(fake, nil)

	if meta, ok := svc.Metadata(context.Background(), ledgertest.ICPLedger); ok || meta != token.Fallback() {
		t.Fatalf("Metadata() = %+v, %v, want fallback", meta, ok)
	}

	fake.FailMetadata(nil)
	if meta, _ := svc.Metadata(context.Background(), ledgertest.ICPLedger); meta.Symbol != "ICP" {
		t.Fatalf("Metadata() after recovery = %+v, want ICP", meta)
	}
	if fake.MetadataCalls() != 2 {
		t.Errorf("ledger metadata calls = %d, want 2", fake.MetadataCalls())
	}
}

func TestService_DisplayBalance(t *testing.T) {
	fake := ledgertest.NewWithICP()
	fake.SetBalance(ledgertest.ICPLedger, types.Account{Owner: types.AnonymousPrincipal}, big.NewInt(123456789))
	svc := NewService(fake, nil)

	bal, err := svc.DisplayBalance(context.Background(), ledgertest.ICPLedger, types.AnonymousPrincipal, nil)
	if err != nil {
		t.Fatalf("DisplayBalance() error: %v", err)
	}
	if bal.Formatted != "1.23456789" {
		t.Errorf("Formatted = %q, want %q", bal.Formatted, "1.23456789")
	}
	if bal.Symbol != "ICP" || bal.Name != "Internet Computer" || bal.Decimals != 8 || bal.Fallback {
		t.Errorf("DisplayBalance() metadata = %+v", bal)
	}
	if bal.Raw.Int64() != 123456789 {
		t.Errorf("Raw = %s", bal.Raw)
	}
}

func TestService_DisplayBalanceFallbackMetadata(t *testing.T) {
	fake := ledgertest.NewWithICP()
	fake.FailMetadata(errors.New("down"))
	fake.SetBalance(ledgertest.ICPLedger, types.Account{Owner: types.AnonymousPrincipal}, big.NewInt(100000000))
	svc := NewService(fake, nil)

	bal, err := svc.DisplayBalance(context.Background(), ledgertest.ICPLedger, types.AnonymousPrincipal, nil)
	if err != nil {
		t.Fatalf("DisplayBalance() error: %v", err)
	}
	if !bal.Fallback || bal.Name != "Unknown Token" || bal.Formatted != "1" {
		t.Errorf("DisplayBalance() = %+v, want fallback formatting with 8 decimals", bal)
	}
}

func TestService_DisplayBalanceQueryFailure(t *testing.T) {
	fake := ledgertest.NewWithICP()
	fake.FailBalances(errors.New("timeout"))
	svc := NewService(fake, nil)

	bal, err := svc.DisplayBalance(context.Background(), ledgertest.ICPLedger, types.AnonymousPrincipal, nil)
	if bal != nil || !errors.Is(err, ErrRemoteQuery) {
		t.Fatalf("DisplayBalance() = %v, %v; want nil, ErrRemoteQuery", bal, err)
	}
}

func TestService_AccountIdentifier(t *testing.T) {
	svc := NewService(ledgertest.New(), nil)
	id, err := svc.AccountIdentifier(types.AnonymousPrincipal, nil)
	if err != nil {
		t.Fatalf("AccountIdentifier() error: %v", err)
	}
	want := "1c7a48ba6a562aa9eaa2481a9049cdf0433b9738c992d698c31d8abf89cadc79"
	if id.Hex() != want {
		t.Errorf("AccountIdentifier() = %s, want %s", id.Hex(), want)
	}
}

func TestService_OverHTTP(t *testing.T) {
	fake := ledgertest.NewWithICP()
	fake.SetBalance(ledgertest.ICPLedger, types.Account{Owner: types.AnonymousPrincipal}, big.NewInt(100500000))
	svc := NewService(newTestClient(t, fake), nil)

	bal, err := svc.DisplayBalance(context.Background(), ledgertest.ICPLedger, types.AnonymousPrincipal, nil)
	if err != nil {
		t.Fatalf("DisplayBalance() error: %v", err)
	}
	if bal.Formatted != "1.005" || bal.Symbol != "ICP" {
		t.Errorf("DisplayBalance() = %+v", bal)
	}
}
