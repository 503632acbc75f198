// Package ledgertest provides an in-memory token ledger for tests. It can be
// used directly as a ledger.Ledger or served over JSON-RPC with Handler.
package ledgertest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/Klingon-tech/tokenview/internal/token"
	"github.com/Klingon-tech/tokenview/pkg/types"
)

// Well-known ledger ids used across tests.
const (
	ICPLedger   = "ryjl3-tyaaa-aaaaa-aaaba-cai"
	CKBTCLedger = "mxzaz-hqaaa-aaaar-qaada-cai"
)

// ErrUnknownLedger is returned for ledger ids that were never added.
var ErrUnknownLedger = errors.New("unknown ledger")

// Ledger is a fake multi-token ledger. Safe for concurrent use.
type Ledger struct {
	mu          sync.Mutex
	tokens      map[string]token.Metadata
	balances    map[string]*big.Int
	balanceErr  error
	metadataErr error
	// rawDecimals overrides the decimals served over JSON-RPC.
	rawDecimals map[string]int64

	balanceCalls  atomic.Int64
	metadataCalls atomic.Int64
}

// New creates an empty fake ledger.
func New() *Ledger {
	return &Ledger{
		tokens:      make(map[string]token.Metadata),
		balances:    make(map[string]*big.Int),
		rawDecimals: make(map[string]int64),
	}
}

// NewWithICP creates a fake ledger that knows the ICP token.
func NewWithICP() *Ledger {
	l := New()
	l.AddToken(ICPLedger, token.Metadata{Name: "Internet Computer", Symbol: "ICP", Decimals: 8})
	return l
}

// AddToken registers a token ledger.
func (l *Ledger) AddToken(ledgerID string, meta token.Metadata) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.tokens[ledgerID] = meta
}

// SetBalance sets the balance of acct on ledgerID.
func (l *Ledger) SetBalance(ledgerID string, acct types.Account, v *big.Int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[balanceKey(ledgerID, acct)] = new(big.Int).Set(v)
}

// FailBalances makes every balance query fail with err. nil restores service.
func (l *Ledger) FailBalances(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balanceErr = err
}

// FailMetadata makes every metadata lookup fail with err. nil restores service.
func (l *Ledger) FailMetadata(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.metadataErr = err
}

// ServeDecimals makes Handler answer icrc1_decimals for ledgerID with v,
// which may be out of range.
func (l *Ledger) ServeDecimals(ledgerID string, v int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.rawDecimals[ledgerID] = v
}

// BalanceCalls returns how many balance queries were answered or failed.
func (l *Ledger) BalanceCalls() int64 {
	return l.balanceCalls.Load()
}

// MetadataCalls returns how many metadata lookups were answered or failed.
func (l *Ledger) MetadataCalls() int64 {
	return l.metadataCalls.Load()
}

// BalanceOf implements ledger.Querier. Accounts without a balance hold zero.
func (l *Ledger) BalanceOf(_ context.Context, ledgerID string, acct types.Account) (*big.Int, error) {
	l.balanceCalls.Add(1)
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.balanceErr != nil {
		return nil, l.balanceErr
	}
	if _, ok := l.tokens[ledgerID]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownLedger, ledgerID)
	}
	if v, ok := l.balances[balanceKey(ledgerID, acct)]; ok {
		return new(big.Int).Set(v), nil
	}
	return new(big.Int), nil
}

// Metadata implements ledger.MetadataSource.
func (l *Ledger) Metadata(_ context.Context, ledgerID string) (token.Metadata, error) {
	l.metadataCalls.Add(1)
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.metadataErr != nil {
		return token.Metadata{}, l.metadataErr
	}
	meta, ok := l.tokens[ledgerID]
	if !ok {
		return token.Metadata{}, fmt.Errorf("%w: %s", ErrUnknownLedger, ledgerID)
	}
	return meta, nil
}

func balanceKey(ledgerID string, acct types.Account) string {
	return ledgerID + "|" + acct.String()
}

type rpcRequest struct {
	Method string          `json:"method"`
	Params json.RawMessage `json:"params"`
	ID     uint64          `json:"id"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type wireAccount struct {
	Owner      string   `json:"owner"`
	Subaccount []string `json:"subaccount"`
}

// Handler serves the ledger's icrc1_* methods over JSON-RPC 2.0.
func (l *Ledger) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeRPC(w, 0, nil, &rpcError{Code: -32700, Message: "parse error"})
			return
		}
		result, rerr := l.dispatch(r.Context(), req)
		writeRPC(w, req.ID, result, rerr)
	})
}

func (l *Ledger) dispatch(ctx context.Context, req rpcRequest) (interface{}, *rpcError) {
	var p struct {
		Ledger  string       `json:"ledger"`
		Account *wireAccount `json:"account"`
	}
	if err := json.Unmarshal(req.Params, &p); err != nil {
		return nil, &rpcError{Code: -32602, Message: err.Error()}
	}

	switch req.Method {
	case "icrc1_balance_of":
		if p.Account == nil {
			return nil, &rpcError{Code: -32602, Message: "missing account"}
		}
		acct, err := decodeAccount(*p.Account)
		if err != nil {
			return nil, &rpcError{Code: -32602, Message: err.Error()}
		}
		v, err := l.BalanceOf(ctx, p.Ledger, acct)
		if err != nil {
			return nil, &rpcError{Code: -32000, Message: err.Error()}
		}
		return v.String(), nil
	case "icrc1_name", "icrc1_symbol", "icrc1_decimals":
		meta, err := l.Metadata(ctx, p.Ledger)
		if err != nil {
			return nil, &rpcError{Code: -32000, Message: err.Error()}
		}
		switch req.Method {
		case "icrc1_name":
			return meta.Name, nil
		case "icrc1_symbol":
			return meta.Symbol, nil
		}
		l.mu.Lock()
		raw, ok := l.rawDecimals[p.Ledger]
		l.mu.Unlock()
		if ok {
			return raw, nil
		}
		return meta.Decimals, nil
	default:
		return nil, &rpcError{Code: -32601, Message: "method not found: " + req.Method}
	}
}

func decodeAccount(w wireAccount) (types.Account, error) {
	owner, err := types.ParsePrincipal(w.Owner)
	if err != nil {
		return types.Account{}, err
	}
	acct := types.Account{Owner: owner}
	switch len(w.Subaccount) {
	case 0:
	case 1:
		sub, err := types.ParseSubaccount(w.Subaccount[0])
		if err != nil {
			return types.Account{}, err
		}
		acct.Subaccount = &sub
	default:
		return types.Account{}, errors.New("subaccount must have at most one element")
	}
	return acct, nil
}

func writeRPC(w http.ResponseWriter, id uint64, result interface{}, rerr *rpcError) {
	resp := map[string]interface{}{"jsonrpc": "2.0", "id": id}
	if rerr != nil {
		resp["error"] = rerr
	} else {
		resp["result"] = result
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
