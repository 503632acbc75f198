package crypto

import (
	"fmt"

	"github.com/Klingon-tech/tokenview/pkg/types"
)

// accountDomainSeparator is the length-prefixed "account-id" tag that opens
// every account record.
var accountDomainSeparator = []byte("\x0aaccount-id")

// AccountIdentifier derives the legacy account identifier of owner and an
// optional subaccount:
//
//	digest = SHA-224(0x0a "account-id" || owner bytes || subaccount(32))
//	id     = CRC32(digest) || digest
//
// A nil subaccount is the same as 32 zero bytes. The only failure is an
// owner without a valid byte encoding (types.ErrInvalidIdentity).
func AccountIdentifier(owner types.Principal, sub *types.Subaccount) (types.AccountIdentifier, error) {
	ownerBytes, err := owner.Bytes()
	if err != nil {
		return types.AccountIdentifier{}, fmt.Errorf("derive account identifier: %w", err)
	}
	subaccount := types.EffectiveSubaccount(sub)

	record := make([]byte, 0, len(accountDomainSeparator)+len(ownerBytes)+types.SubaccountSize)
	record = append(record, accountDomainSeparator...)
	record = append(record, ownerBytes...)
	record = append(record, subaccount[:]...)

	return types.NewAccountIdentifier(Sum224(record)), nil
}

// AccountIdentifierOf derives the identifier of a structured account.
func AccountIdentifierOf(acct types.Account) (types.AccountIdentifier, error) {
	return AccountIdentifier(acct.Owner, acct.Subaccount)
}
