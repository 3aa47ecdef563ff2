package hasher

import (
	"crypto/md5"
	"encoding/hex"
	"hash/crc32"
	"io"

	"github.com/cespare/xxhash/v2"
)

// Crc32 returns the IEEE CRC-32 of the string's bytes. It picks a domain
// when a builder shards by path.
func Crc32(s string) uint32 {
	return crc32.ChecksumIEEE([]byte(s))
}

// Sign returns the lowercase hex MD5 of key followed by stringToSign.
// The image service recomputes the same digest to detect tampered URLs.
func Sign(key, stringToSign string) string {
	sum := md5.Sum([]byte(key + stringToSign))
	return hex.EncodeToString(sum[:])
}

// ContentHash computes the xxHash64 of data and returns a hex string
// truncated to the given length. The manifest stores 16 hex chars (64 bits)
// per source image to notice when a file changed between builds.
func ContentHash(data []byte, hexLen int) string {
	return truncate(hex.EncodeToString(uint64ToBytes(xxhash.Sum64(data))), hexLen)
}

// ContentHashReader computes xxHash64 from a reader, streaming.
func ContentHashReader(r io.Reader, hexLen int) (string, error) {
	h := xxhash.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return truncate(hex.EncodeToString(uint64ToBytes(h.Sum64())), hexLen), nil
}

func truncate(full string, hexLen int) string {
	if hexLen > 0 && hexLen < len(full) {
		return full[:hexLen]
	}
	return full
}

func uint64ToBytes(v uint64) []byte {
	b := make([]byte, 8)
	b[0] = byte(v >> 56)
	b[1] = byte(v >> 48)
	b[2] = byte(v >> 40)
	b[3] = byte(v >> 32)
	b[4] = byte(v >> 24)
	b[5] = byte(v >> 16)
	b[6] = byte(v >> 8)
	b[7] = byte(v)
	return b
}
