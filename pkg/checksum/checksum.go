// Package checksum implements the 4-byte checksum used by ledger account
// identifiers and principal text encodings.
//
// The checksum is standard CRC-32 (IEEE, reflected polynomial 0xEDB88320,
// initial register 0xFFFFFFFF, final complement) serialized big-endian.
package checksum

import (
	"encoding/binary"
	"hash/crc32"
)

// Size is the length of a checksum in bytes.
const Size = 4

// Sum32 returns the CRC-32 of data as an integer.
func Sum32(data []byte) uint32 {
	return crc32.ChecksumIEEE(data)
}

// Sum returns the CRC-32 of data, most significant byte first.
func Sum(data []byte) [Size]byte {
	var out [Size]byte
	binary.BigEndian.PutUint32(out[:], Sum32(data))
	return out
}

// Verify reports whether sum is the checksum of data.
func Verify(sum, data []byte) bool {
	if len(sum) != Size {
		return false
	}
	return binary.BigEndian.Uint32(sum) == Sum32(data)
}
