package crypto

import (
	"fmt"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"

	"github.com/Klingon-tech/tokenview/pkg/types"
)

// secp256k1SPKIPrefix is the DER SubjectPublicKeyInfo header for an
// uncompressed secp256k1 point (id-ecPublicKey, secp256k1 curve).
var secp256k1SPKIPrefix = []byte{
	0x30, 0x56, 0x30, 0x10, 0x06, 0x07, 0x2a, 0x86, 0x48, 0xce, 0x3d, 0x02, 0x01,
	0x06, 0x05, 0x2b, 0x81, 0x04, 0x00, 0x0a, 0x03, 0x42, 0x00,
}

// SelfAuthenticatingPrincipal derives the principal of a DER-encoded public
// key: SHA-224(der) followed by the self-authenticating tag byte.
func SelfAuthenticatingPrincipal(der []byte) types.Principal {
	h := Sum224(der)
	raw := make([]byte, 0, types.MaxPrincipalSize)
	raw = append(raw, h[:]...)
	raw = append(raw, types.TagSelfAuthenticating)
	return types.PrincipalFromBytes(raw)
}

// Secp256k1DER wraps a compressed or uncompressed secp256k1 public key in
// its DER SubjectPublicKeyInfo encoding.
func Secp256k1DER(pubKey []byte) ([]byte, error) {
	pk, err := secp256k1.ParsePubKey(pubKey)
	if err != nil {
		return nil, fmt.Errorf("parse secp256k1 public key: %w", err)
	}
	point := pk.SerializeUncompressed()

	der := make([]byte, 0, len(secp256k1SPKIPrefix)+len(point))
	der = append(der, secp256k1SPKIPrefix...)
	der = append(der, point...)
	return der, nil
}

// PrincipalFromSecp256k1 derives the self-authenticating principal of a
// secp256k1 public key.
func PrincipalFromSecp256k1(pubKey []byte) (types.Principal, error) {
	der, err := Secp256k1DER(pubKey)
	if err != nil {
		return types.Principal{}, err
	}
	return SelfAuthenticatingPrincipal(der), nil
}
