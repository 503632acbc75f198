package ledger

import (
	"context"
	"errors"
	"fmt"
	"math/big"

	klog "github.com/Klingon-tech/tokenview/internal/log"
	"github.com/Klingon-tech/tokenview/internal/token"
	"github.com/Klingon-tech/tokenview/pkg/amount"
	"github.com/Klingon-tech/tokenview/pkg/crypto"
	"github.com/Klingon-tech/tokenview/pkg/types"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Balance is a holder's balance of one token, ready for display.
type Balance struct {
	TokenID   string
	Account   types.Account
	Raw       *big.Int
	Formatted string
	Name      string
	Symbol    string
	Decimals  uint8
	// Fallback is set when the token's metadata could not be fetched and
	// the fallback metadata was used for formatting.
	Fallback bool
}

// Service is the balance query façade. It is safe for concurrent use.
type Service struct {
	querier Querier
	source  MetadataSource
	cache   *token.Cache
	logger  zerolog.Logger
}

// NewService creates a façade over a ledger. If cache is nil a new one is
// created.
func NewService(l Ledger, cache *token.Cache) *Service {
	if cache == nil {
		cache = token.NewCache()
	}
	return &Service{
		querier: l,
		source:  l,
		cache:   cache,
		logger:  klog.Ledger,
	}
}

// Cache returns the metadata cache used by the service.
func (s *Service) Cache() *token.Cache {
	return s.cache
}

// QueryBalance returns the raw balance of (owner, sub) on the token ledger.
//
// Any ledger failure (transport, decode, remote rejection) is returned as a
// *QueryError naming the token. An owner without a valid byte encoding is
// returned as an error wrapping types.ErrInvalidIdentity instead.
func (s *Service) QueryBalance(ctx context.Context, tokenID string, owner types.Principal, sub *types.Subaccount) (*big.Int, error) {
	if err := owner.Validate(); err != nil {
		return nil, fmt.Errorf("query balance: %w", err)
	}

	bal, err := s.balanceOf(ctx, tokenID, types.NewAccount(owner, sub))
	if err == nil && bal == nil {
		err = errors.New("ledger returned no balance")
	}
	if err == nil && bal.Sign() < 0 {
		err = fmt.Errorf("ledger returned negative balance %s", bal)
	}
	if err != nil {
		s.logger.Debug().
			Str("token_id", tokenID).
			Str("owner", owner.Text()).
			Err(err).
			Msg("Balance query failed")
		return nil, &QueryError{TokenID: tokenID, Err: err}
	}
	return bal, nil
}

func (s *Service) balanceOf(ctx context.Context, tokenID string, acct types.Account) (bal *big.Int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("ledger query panicked: %v", r)
		}
	}()
	return s.querier.BalanceOf(ctx, tokenID, acct)
}

// Metadata returns the token's metadata from the cache, fetching it from the
// ledger on a miss. It never fails; unreachable ledgers yield token.Fallback()
// and false.
func (s *Service) Metadata(ctx context.Context, tokenID string) (token.Metadata, bool) {
	return s.cache.Get(ctx, tokenID, func(ctx context.Context) (token.Metadata, error) {
		return s.source.Metadata(ctx, tokenID)
	})
}

// DisplayBalance looks up metadata and the balance concurrently and formats
// the result. Errors are those of QueryBalance.
func (s *Service) DisplayBalance(ctx context.Context, tokenID string, owner types.Principal, sub *types.Subaccount) (*Balance, error) {
	var (
		meta  token.Metadata
		known bool
		raw   *big.Int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		meta, known = s.Metadata(gctx, tokenID)
		return nil
	})
	g.Go(func() error {
		var err error
		raw, err = s.QueryBalance(gctx, tokenID, owner, sub)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Balance{
		TokenID:   tokenID,
		Account:   types.NewAccount(owner, sub),
		Raw:       raw,
		Formatted: amount.Format(raw, meta.Decimals),
		Name:      meta.Name,
		Symbol:    meta.Symbol,
		Decimals:  meta.Decimals,
		Fallback:  !known,
	}, nil
}

// AccountIdentifier derives the legacy account identifier of (owner, sub).
// It does not contact the ledger.
func (s *Service) AccountIdentifier(owner types.Principal, sub *types.Subaccount) (types.AccountIdentifier, error) {
	return crypto.AccountIdentifier(owner, sub)
}
