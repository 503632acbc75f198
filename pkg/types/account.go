package types

import (
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/Klingon-tech/tokenview/pkg/checksum"
)

// ErrInvalidAccount is returned when account text cannot be parsed.
var ErrInvalidAccount = errors.New("invalid account")

// Account is the structured {owner, subaccount} pair used by token ledger
// queries. A nil Subaccount means the default subaccount.
type Account struct {
	Owner      Principal   `json:"owner"`
	Subaccount *Subaccount `json:"subaccount,omitempty"`
}

// NewAccount builds an account, copying sub.
func NewAccount(owner Principal, sub *Subaccount) Account {
	a := Account{Owner: owner}
	if sub != nil {
		s := *sub
		a.Subaccount = &s
	}
	return a
}

// EffectiveSubaccount returns the subaccount bytes, zero when absent.
func (a Account) EffectiveSubaccount() Subaccount {
	return EffectiveSubaccount(a.Subaccount)
}

// IsDefault reports whether the account uses the default subaccount.
func (a Account) IsDefault() bool {
	return a.EffectiveSubaccount().IsZero()
}

// Equal compares accounts treating an absent subaccount as all zeros.
func (a Account) Equal(b Account) bool {
	return a.Owner == b.Owner && a.EffectiveSubaccount() == b.EffectiveSubaccount()
}

// String returns the textual account form: the owner text for the default
// subaccount, else "<owner>-<checksum>.<subaccount hex without leading zeros>".
func (a Account) String() string {
	if a.IsDefault() {
		return a.Owner.Text()
	}
	sub := a.EffectiveSubaccount()
	return a.Owner.Text() + "-" + accountChecksum(a.Owner, sub) + "." + strings.TrimLeft(sub.Hex(), "0")
}

// ParseAccount parses the textual account form produced by String.
func ParseAccount(s string) (Account, error) {
	dot := strings.LastIndexByte(s, '.')
	if dot < 0 {
		owner, err := ParsePrincipal(s)
		if err != nil {
			return Account{}, fmt.Errorf("%w: %v", ErrInvalidAccount, err)
		}
		return Account{Owner: owner}, nil
	}

	left, subHex := s[:dot], s[dot+1:]
	if subHex == "" || subHex[0] == '0' {
		return Account{}, fmt.Errorf("%w: subaccount must be non-empty without leading zeros", ErrInvalidAccount)
	}
	if len(subHex) > 2*SubaccountSize {
		return Account{}, fmt.Errorf("%w: subaccount too long", ErrInvalidAccount)
	}
	padded := strings.Repeat("0", 2*SubaccountSize-len(subHex)) + subHex
	raw, err := hex.DecodeString(padded)
	if err != nil {
		return Account{}, fmt.Errorf("%w: %v", ErrInvalidAccount, err)
	}
	var sub Subaccount
	copy(sub[:], raw)

	dash := strings.LastIndexByte(left, '-')
	if dash < 0 {
		return Account{}, fmt.Errorf("%w: missing checksum", ErrInvalidAccount)
	}
	owner, err := ParsePrincipal(left[:dash])
	if err != nil {
		return Account{}, fmt.Errorf("%w: %v", ErrInvalidAccount, err)
	}
	if left[dash+1:] != accountChecksum(owner, sub) {
		return Account{}, fmt.Errorf("%w: checksum mismatch", ErrInvalidAccount)
	}
	return Account{Owner: owner, Subaccount: &sub}, nil
}

func accountChecksum(owner Principal, sub Subaccount) string {
	buf := make([]byte, 0, owner.Len()+SubaccountSize)
	buf = append(buf, owner.raw...)
	buf = append(buf, sub[:]...)
	sum := checksum.Sum(buf)
	return strings.ToLower(principalEncoding.EncodeToString(sum[:]))
}
