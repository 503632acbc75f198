// Package token holds token metadata, the process-wide metadata cache and
// the persisted list of tracked tokens.
//
// A token is identified by the textual principal of its ledger. Metadata is
// fetched from the ledger at most once per token for the lifetime of the
// process; failed fetches are never cached.
package token

// Fallback values returned when a ledger cannot describe itself.
const (
	FallbackName     = "Unknown Token"
	FallbackSymbol   = ""
	FallbackDecimals = 8
)

// Metadata holds descriptive information about a token.
type Metadata struct {
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals uint8  `json:"decimals"`
}

// Fallback returns the metadata shown for a token whose ledger could not be
// reached.
func Fallback() Metadata {
	return Metadata{
		Name:     FallbackName,
		Symbol:   FallbackSymbol,
		Decimals: FallbackDecimals,
	}
}
