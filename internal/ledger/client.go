package ledger

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/Klingon-tech/tokenview/internal/rpcclient"
	"github.com/Klingon-tech/tokenview/internal/token"
	"github.com/Klingon-tech/tokenview/pkg/types"
	"golang.org/x/sync/errgroup"
)

// Ledger JSON-RPC methods.
const (
	MethodBalanceOf = "icrc1_balance_of"
	MethodName      = "icrc1_name"
	MethodSymbol    = "icrc1_symbol"
	MethodDecimals  = "icrc1_decimals"
)

// LedgerParam identifies the ledger a metadata call is addressed to.
type LedgerParam struct {
	Ledger string `json:"ledger"`
}

// BalanceOfParam is the params object of icrc1_balance_of.
type BalanceOfParam struct {
	Ledger  string      `json:"ledger"`
	Account WireAccount `json:"account"`
}

// WireAccount is an account as ledgers expect it. Subaccount is an optional
// value: empty when absent, else one 64-hex element.
type WireAccount struct {
	Owner      string   `json:"owner"`
	Subaccount []string `json:"subaccount"`
}

// NewWireAccount encodes acct for the ledger. The owner must have a valid
// byte encoding.
func NewWireAccount(acct types.Account) (WireAccount, error) {
	if err := acct.Owner.Validate(); err != nil {
		return WireAccount{}, err
	}
	wa := WireAccount{Owner: acct.Owner.Text(), Subaccount: []string{}}
	if acct.Subaccount != nil {
		wa.Subaccount = []string{acct.Subaccount.Hex()}
	}
	return wa, nil
}

// Account decodes a wire account.
func (w WireAccount) Account() (types.Account, error) {
	owner, err := types.ParsePrincipal(w.Owner)
	if err != nil {
		return types.Account{}, err
	}
	switch len(w.Subaccount) {
	case 0:
		return types.Account{Owner: owner}, nil
	case 1:
		sub, err := types.ParseSubaccount(w.Subaccount[0])
		if err != nil {
			return types.Account{}, fmt.Errorf("%w: %v", types.ErrInvalidAccount, err)
		}
		return types.Account{Owner: owner, Subaccount: &sub}, nil
	default:
		return types.Account{}, fmt.Errorf("%w: subaccount has %d elements", types.ErrInvalidAccount, len(w.Subaccount))
	}
}

// Client queries token ledgers over JSON-RPC.
type Client struct {
	rpc *rpcclient.Client
}

// NewClient creates a ledger client on top of an RPC client.
func NewClient(rpc *rpcclient.Client) *Client {
	return &Client{rpc: rpc}
}

// BalanceOf implements Querier.
func (c *Client) BalanceOf(ctx context.Context, ledgerID string, acct types.Account) (*big.Int, error) {
	wa, err := NewWireAccount(acct)
	if err != nil {
		return nil, err
	}

	var raw json.RawMessage
	if err := c.rpc.CallContext(ctx, MethodBalanceOf, BalanceOfParam{Ledger: ledgerID, Account: wa}, &raw); err != nil {
		return nil, err
	}
	return DecodeBalance(raw)
}

// Metadata implements MetadataSource. The three fields are fetched
// concurrently; any failure fails the whole lookup.
func (c *Client) Metadata(ctx context.Context, ledgerID string) (token.Metadata, error) {
	var (
		name, symbol string
		decimals     int64
	)
	param := LedgerParam{Ledger: ledgerID}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return c.rpc.CallContext(gctx, MethodName, param, &name)
	})
	g.Go(func() error {
		return c.rpc.CallContext(gctx, MethodSymbol, param, &symbol)
	})
	g.Go(func() error {
		return c.rpc.CallContext(gctx, MethodDecimals, param, &decimals)
	})
	if err := g.Wait(); err != nil {
		return token.Metadata{}, metadataError(ledgerID, err)
	}

	if decimals < 0 || decimals > 255 {
		return token.Metadata{}, metadataError(ledgerID, fmt.Errorf("decimals %d out of range 0-255", decimals))
	}
	return token.Metadata{Name: name, Symbol: symbol, Decimals: uint8(decimals)}, nil
}

// DecodeBalance parses a balance result: a decimal string or a bare JSON
// integer, non-negative and of any size.
func DecodeBalance(raw json.RawMessage) (*big.Int, error) {
	var text string
	if err := json.Unmarshal(raw, &text); err != nil {
		var num json.Number
		if err := json.Unmarshal(raw, &num); err != nil {
			return nil, fmt.Errorf("decode balance: %s is not a string or number", raw)
		}
		text = num.String()
	}

	v, ok := new(big.Int).SetString(text, 10)
	if !ok {
		return nil, fmt.Errorf("decode balance: %q is not a decimal integer", text)
	}
	if v.Sign() < 0 {
		return nil, fmt.Errorf("decode balance: negative balance %s", text)
	}
	return v, nil
}
