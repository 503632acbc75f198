// Package crypto provides the hash primitives and identity derivations used
// by tokenview.
package crypto

import (
	"crypto/sha256"

	"github.com/zeebo/blake3"
)

// Sum224Size is the length of a SHA-224 digest in bytes.
const Sum224Size = sha256.Size224

// FingerprintSize is the length of a storage fingerprint in bytes.
const FingerprintSize = 8

// Sum224 computes the SHA-224 digest of data.
func Sum224(data []byte) [Sum224Size]byte {
	return sha256.Sum224(data)
}

// Fingerprint returns a short BLAKE3 digest of data. It namespaces local
// storage by ledger endpoint and is not used for anything the ledger sees.
func Fingerprint(data []byte) [FingerprintSize]byte {
	h := blake3.Sum256(data)
	var fp [FingerprintSize]byte
	copy(fp[:], h[:FingerprintSize])
	return fp
}
