// Package types defines the identity and account primitives shared by the
// ledger client, the gateway and the CLI.
package types

import (
	"encoding/base32"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/Klingon-tech/tokenview/pkg/checksum"
)

// MaxPrincipalSize is the longest valid principal encoding in bytes.
const MaxPrincipalSize = 29

// Trailing tag bytes of well-known principal classes.
const (
	TagSelfAuthenticating byte = 0x02
	TagAnonymous          byte = 0x04
)

// ErrInvalidIdentity is returned when a principal has no valid byte encoding.
var ErrInvalidIdentity = errors.New("invalid identity")

// principalEncoding is RFC 4648 base32 without padding. Text forms are lowercase.
var principalEncoding = base32.StdEncoding.WithPadding(base32.NoPadding)

// Principal identifies a holder of ledger funds. The zero value is the
// management canister (empty encoding). Principal is comparable and immutable.
type Principal struct {
	raw string
}

// AnonymousPrincipal is the principal of unauthenticated callers.
var AnonymousPrincipal = Principal{raw: string([]byte{TagAnonymous})}

// PrincipalFromBytes wraps a raw encoding. The bytes are not validated here;
// Bytes and Validate report encodings that are too long.
func PrincipalFromBytes(b []byte) Principal {
	return Principal{raw: string(b)}
}

// Len returns the length of the raw encoding.
func (p Principal) Len() int {
	return len(p.raw)
}

// Validate checks that p has a canonical byte encoding.
func (p Principal) Validate() error {
	if len(p.raw) > MaxPrincipalSize {
		return fmt.Errorf("%w: principal is %d bytes, max %d", ErrInvalidIdentity, len(p.raw), MaxPrincipalSize)
	}
	return nil
}

// Bytes returns a copy of the canonical byte encoding.
func (p Principal) Bytes() ([]byte, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return []byte(p.raw), nil
}

// IsAnonymous reports whether p is the anonymous principal.
func (p Principal) IsAnonymous() bool {
	return p == AnonymousPrincipal
}

// IsSelfAuthenticating reports whether p was derived from a public key.
func (p Principal) IsSelfAuthenticating() bool {
	return len(p.raw) == MaxPrincipalSize && p.raw[len(p.raw)-1] == TagSelfAuthenticating
}

// Text returns the textual form: base32 of checksum ++ bytes, lowercase,
// in dash-separated groups of five characters.
func (p Principal) Text() string {
	sum := checksum.Sum([]byte(p.raw))
	buf := make([]byte, 0, checksum.Size+len(p.raw))
	buf = append(buf, sum[:]...)
	buf = append(buf, p.raw...)

	enc := strings.ToLower(principalEncoding.EncodeToString(buf))

	var sb strings.Builder
	for i := 0; i < len(enc); i += 5 {
		if i > 0 {
			sb.WriteByte('-')
		}
		end := i + 5
		if end > len(enc) {
			end = len(enc)
		}
		sb.WriteString(enc[i:end])
	}
	return sb.String()
}

// String returns the textual form.
func (p Principal) String() string {
	return p.Text()
}

// MarshalJSON encodes the principal as its textual form.
func (p Principal) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.Text())
}

// UnmarshalJSON decodes a textual principal.
func (p *Principal) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParsePrincipal(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// ParsePrincipal parses the textual form of a principal. Only the canonical
// grouping is accepted and the embedded checksum must match.
func ParsePrincipal(s string) (Principal, error) {
	if s == "" {
		return Principal{}, fmt.Errorf("%w: empty principal", ErrInvalidIdentity)
	}
	lower := strings.ToLower(s)

	decoded, err := principalEncoding.DecodeString(strings.ToUpper(strings.ReplaceAll(lower, "-", "")))
	if err != nil {
		return Principal{}, fmt.Errorf("%w: %v", ErrInvalidIdentity, err)
	}
	if len(decoded) < checksum.Size {
		return Principal{}, fmt.Errorf("%w: text too short", ErrInvalidIdentity)
	}

	body := decoded[checksum.Size:]
	if len(body) > MaxPrincipalSize {
		return Principal{}, fmt.Errorf("%w: principal is %d bytes, max %d", ErrInvalidIdentity, len(body), MaxPrincipalSize)
	}
	if !checksum.Verify(decoded[:checksum.Size], body) {
		return Principal{}, fmt.Errorf("%w: checksum mismatch", ErrInvalidIdentity)
	}

	p := PrincipalFromBytes(body)
	if p.Text() != lower {
		return Principal{}, fmt.Errorf("%w: %q is not in canonical form", ErrInvalidIdentity, s)
	}
	return p, nil
}
