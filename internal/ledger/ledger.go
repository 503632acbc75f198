// Package ledger talks to token ledgers and exposes the balance query
// façade used by the gateway.
//
// Balances are exchanged with a ledger using the structured account form
// {owner, subaccount}. The 64-hex AccountIdentifier is a separate, older
// representation and is only derived locally.
package ledger

import (
	"context"
	"math/big"

	"github.com/Klingon-tech/tokenview/internal/token"
	"github.com/Klingon-tech/tokenview/pkg/types"
)

// Querier returns the raw balance of an account on a token ledger.
type Querier interface {
	BalanceOf(ctx context.Context, ledgerID string, acct types.Account) (*big.Int, error)
}

// MetadataSource returns a token ledger's name, symbol and decimals.
type MetadataSource interface {
	Metadata(ctx context.Context, ledgerID string) (token.Metadata, error)
}

// Ledger is a ledger endpoint offering both capabilities.
type Ledger interface {
	Querier
	MetadataSource
}
