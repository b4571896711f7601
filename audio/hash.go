package audio

import (
	"crypto/sha1"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"hash"
	"math"

	"golang.org/x/crypto/blake2b"
)

const (
	HashSHA1    = "sha1"
	HashBlake2b = "blake2b"
)

// Hash digests the little-endian float32 encoding of samples. The digest is
// the cache key for an analysis, so it must only depend on the exact samples.
func Hash(samples []float64, algorithm string) (string, error) {
	var h hash.Hash
	switch algorithm {
	case "", HashSHA1:
		h = sha1.New()
	case HashBlake2b:
		var err error
		if h, err = blake2b.New256(nil); err != nil {
			return "", fmt.Errorf("blake2b: %w", err)
		}
	default:
		return "", fmt.Errorf("unknown hash algorithm %q", algorithm)
	}

	var b [4]byte
	for _, s := range samples {
		binary.LittleEndian.PutUint32(b[:], math.Float32bits(float32(s)))
		h.Write(b[:])
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
