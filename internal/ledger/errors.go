package ledger

import (
	"errors"
	"fmt"
)

// Sentinel errors for remote ledger failures.
var (
	ErrRemoteQuery    = errors.New("remote balance query failed")
	ErrRemoteMetadata = errors.New("remote metadata fetch failed")
)

// QueryError is returned by Service.QueryBalance when the ledger could not
// answer. It matches ErrRemoteQuery with errors.Is.
type QueryError struct {
	TokenID string
	Err     error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("failed to fetch balance for token %s: %v", e.TokenID, e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrRemoteQuery.
func (e *QueryError) Is(target error) bool {
	return target == ErrRemoteQuery
}

func metadataError(ledgerID string, err error) error {
	return fmt.Errorf("%w for token %s: %w", ErrRemoteMetadata, ledgerID, err)
}
