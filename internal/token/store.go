package token

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/Klingon-tech/tokenview/internal/storage"
	"github.com/Klingon-tech/tokenview/pkg/types"
)

var prefixTracked = []byte("t/") // t/<ledger principal text> -> TrackedToken JSON

// TrackedToken is a ledger the user follows.
type TrackedToken struct {
	LedgerID string `json:"ledger_id"`
	Label    string `json:"label,omitempty"`
	AddedAt  int64  `json:"added_at"`
}

// Store persists the tracked-token list. It never holds metadata.
type Store struct {
	db storage.DB
}

// NewStore creates a tracked-token store.
func NewStore(db storage.DB) *Store {
	return &Store{db: db}
}

// Track adds a ledger to the list. The id must be a valid principal and is
// stored in canonical text form. Re-tracking an id replaces its label and
// keeps the original timestamp.
func (s *Store) Track(ledgerID, label string) (*TrackedToken, error) {
	p, err := types.ParsePrincipal(ledgerID)
	if err != nil {
		return nil, fmt.Errorf("track token: %w", err)
	}
	ledgerID = p.Text()

	tt := &TrackedToken{LedgerID: ledgerID, Label: label, AddedAt: time.Now().Unix()}
	if existing, err := s.Get(ledgerID); err == nil {
		tt.AddedAt = existing.AddedAt
	}
	if err := s.Put(tt); err != nil {
		return nil, err
	}
	return tt, nil
}

// Put stores a tracked token.
func (s *Store) Put(tt *TrackedToken) error {
	data, err := json.Marshal(tt)
	if err != nil {
		return fmt.Errorf("token marshal: %w", err)
	}
	return s.db.Put(trackedKey(tt.LedgerID), data)
}

// Get retrieves a tracked token. Missing ids wrap storage.ErrNotFound.
func (s *Store) Get(ledgerID string) (*TrackedToken, error) {
	data, err := s.db.Get(trackedKey(ledgerID))
	if err != nil {
		return nil, fmt.Errorf("token get: %w", err)
	}
	var tt TrackedToken
	if err := json.Unmarshal(data, &tt); err != nil {
		return nil, fmt.Errorf("token unmarshal: %w", err)
	}
	return &tt, nil
}

// Has checks whether a ledger is tracked.
func (s *Store) Has(ledgerID string) (bool, error) {
	return s.db.Has(trackedKey(ledgerID))
}

// Delete removes a ledger from the list. Removing an untracked id is not an error.
func (s *Store) Delete(ledgerID string) error {
	return s.db.Delete(trackedKey(ledgerID))
}

// ForEach iterates over all tracked tokens.
// Return a non-nil error from fn to stop iteration early.
func (s *Store) ForEach(fn func(*TrackedToken) error) error {
	return s.db.ForEach(prefixTracked, func(key, value []byte) error {
		var tt TrackedToken
		if err := json.Unmarshal(value, &tt); err != nil {
			return nil // Skip corrupt entries.
		}
		if tt.LedgerID != string(key[len(prefixTracked):]) {
			return nil // Key and payload disagree, skip.
		}
		return fn(&tt)
	})
}

// List returns all tracked tokens ordered by ledger id.
func (s *Store) List() ([]TrackedToken, error) {
	entries := []TrackedToken{}
	err := s.ForEach(func(tt *TrackedToken) error {
		entries = append(entries, *tt)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func trackedKey(ledgerID string) []byte {
	key := make([]byte, 0, len(prefixTracked)+len(ledgerID))
	key = append(key, prefixTracked...)
	return append(key, ledgerID...)
}
