package types

import (
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

// SubaccountSize is the length of a subaccount in bytes.
const SubaccountSize = 32

// Subaccount distinguishes independent balances of one principal.
// An absent subaccount is equivalent to 32 zero bytes.
type Subaccount [SubaccountSize]byte

// SubaccountFromUint64 returns the subaccount whose last 8 bytes hold n
// big-endian.
func SubaccountFromUint64(n uint64) Subaccount {
	var s Subaccount
	binary.BigEndian.PutUint64(s[SubaccountSize-8:], n)
	return s
}

// EffectiveSubaccount resolves an optional subaccount to its byte value.
func EffectiveSubaccount(sub *Subaccount) Subaccount {
	if sub == nil {
		return Subaccount{}
	}
	return *sub
}

// IsZero returns true if the subaccount is the default (all zeros).
func (s Subaccount) IsZero() bool {
	return s == Subaccount{}
}

// Hex returns the 64-character hex encoding.
func (s Subaccount) Hex() string {
	return hex.EncodeToString(s[:])
}

// String returns the hex encoding.
func (s Subaccount) String() string {
	return s.Hex()
}

// MarshalJSON encodes the subaccount as hex.
func (s Subaccount) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Hex())
}

// UnmarshalJSON decodes a hex subaccount.
func (s *Subaccount) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		return err
	}
	parsed, err := ParseSubaccount(str)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseSubaccount parses up to 64 hex characters, left-padding with zeros.
func ParseSubaccount(s string) (Subaccount, error) {
	s = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "0x")
	if s == "" {
		return Subaccount{}, fmt.Errorf("empty subaccount")
	}
	if len(s) > 2*SubaccountSize {
		return Subaccount{}, fmt.Errorf("subaccount must be at most %d hex characters, got %d", 2*SubaccountSize, len(s))
	}
	s = strings.Repeat("0", 2*SubaccountSize-len(s)) + s

	b, err := hex.DecodeString(s)
	if err != nil {
		return Subaccount{}, fmt.Errorf("invalid subaccount hex: %w", err)
	}
	var sub Subaccount
	copy(sub[:], b)
	return sub, nil
}
