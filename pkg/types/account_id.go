package types

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Klingon-tech/tokenview/pkg/checksum"
)

// Sizes of the account identifier layout.
const (
	AccountHashSize       = 28
	AccountIdentifierSize = checksum.Size + AccountHashSize
)

// ErrInvalidAccountIdentifier is returned for malformed or corrupted identifiers.
var ErrInvalidAccountIdentifier = errors.New("invalid account identifier")

// AccountIdentifier is the legacy textual account format: a 4-byte checksum
// followed by a 28-byte SHA-224 digest.
type AccountIdentifier [AccountIdentifierSize]byte

// NewAccountIdentifier prepends the checksum of digest to digest.
func NewAccountIdentifier(digest [AccountHashSize]byte) AccountIdentifier {
	var id AccountIdentifier
	sum := checksum.Sum(digest[:])
	copy(id[:checksum.Size], sum[:])
	copy(id[checksum.Size:], digest[:])
	return id
}

// Checksum returns the leading 4 bytes.
func (a AccountIdentifier) Checksum() [checksum.Size]byte {
	var c [checksum.Size]byte
	copy(c[:], a[:checksum.Size])
	return c
}

// Hash returns the trailing 28-byte digest.
func (a AccountIdentifier) Hash() [AccountHashSize]byte {
	var h [AccountHashSize]byte
	copy(h[:], a[checksum.Size:])
	return h
}

// Valid reports whether the checksum matches the digest.
func (a AccountIdentifier) Valid() bool {
	sum, digest := a.Checksum(), a.Hash()
	return checksum.Verify(sum[:], digest[:])
}

// Hex returns the 64-character lowercase hex encoding.
func (a AccountIdentifier) Hex() string {
	return hex.EncodeToString(a[:])
}

// String returns the hex encoding.
func (a AccountIdentifier) String() string {
	return a.Hex()
}

// MarshalJSON encodes the identifier as hex.
func (a AccountIdentifier) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.Hex())
}

// UnmarshalJSON decodes and validates a hex identifier.
func (a *AccountIdentifier) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseAccountIdentifier(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// ParseAccountIdentifier decodes 64 hex characters and verifies the checksum.
func ParseAccountIdentifier(s string) (AccountIdentifier, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return AccountIdentifier{}, fmt.Errorf("%w: %v", ErrInvalidAccountIdentifier, err)
	}
	if len(b) != AccountIdentifierSize {
		return AccountIdentifier{}, fmt.Errorf("%w: must be %d bytes, got %d", ErrInvalidAccountIdentifier, AccountIdentifierSize, len(b))
	}
	var a AccountIdentifier
	copy(a[:], b)
	if !a.Valid() {
		digest := a.Hash()
		return AccountIdentifier{}, fmt.Errorf("%w: checksum %x, expected %x",
			ErrInvalidAccountIdentifier, a.Checksum(), checksum.Sum(digest[:]))
	}
	return a, nil
}
