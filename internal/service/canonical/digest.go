package canonical

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/zeebo/blake3"

	"medchain/internal/domain/services"
)

// Digest algorithm names accepted by NewDigester
const (
	AlgorithmSHA256 = "sha256"
	AlgorithmBLAKE3 = "blake3"
)

// NewDigester returns the digester for the named algorithm.
// Both produce 32-byte digests rendered as 64 lowercase hex characters.
func NewDigester(algorithm string) (services.Digester, error) {
	switch algorithm {
	case "", AlgorithmSHA256:
		return SHA256{}, nil
	case AlgorithmBLAKE3:
		return BLAKE3{}, nil
	default:
		return nil, fmt.Errorf("unknown hash algorithm %q", algorithm)
	}
}

// SHA256 is the default fingerprint
type SHA256 struct{}

func (SHA256) Algorithm() string { return AlgorithmSHA256 }

func (SHA256) Digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// BLAKE3 uses the unkeyed 256-bit output
type BLAKE3 struct{}

func (BLAKE3) Algorithm() string { return AlgorithmBLAKE3 }

func (BLAKE3) Digest(data []byte) string {
	sum := blake3.Sum256(data)
	return hex.EncodeToString(sum[:])
}
