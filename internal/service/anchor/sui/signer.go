package sui

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// ed25519Flag prefixes serialized Ed25519 signatures and public keys
const ed25519Flag byte = 0x00

var transactionIntent = []byte{0, 0, 0} // scope TransactionData, version V0, app Sui

// Signer holds the Ed25519 key that pays for and signs anchor transactions
type Signer struct {
	key     ed25519.PrivateKey
	address string
}

// NewSigner builds a signer from a 32-byte Ed25519 seed
func NewSigner(seed []byte) (*Signer, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("signer seed must be %d bytes, got %d", ed25519.SeedSize, len(seed))
	}
	key := ed25519.NewKeyFromSeed(seed)
	return &Signer{key: key, address: deriveAddress(key.Public().(ed25519.PublicKey))}, nil
}

// ParseSigner accepts a seed as hex (optionally 0x-prefixed) or standard base64
func ParseSigner(encoded string) (*Signer, error) {
	encoded = strings.TrimSpace(encoded)
	if seed, err := hex.DecodeString(strings.TrimPrefix(encoded, "0x")); err == nil {
		return NewSigner(seed)
	}
	seed, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("signer seed is neither hex nor base64")
	}
	return NewSigner(seed)
}

// GenerateSigner creates a signer with a random seed and returns the seed as hex
func GenerateSigner() (*Signer, string, error) {
	seed := make([]byte, ed25519.SeedSize)
	if _, err := rand.Read(seed); err != nil {
		return nil, "", fmt.Errorf("generating seed: %w", err)
	}
	s, err := NewSigner(seed)
	if err != nil {
		return nil, "", err
	}
	return s, hex.EncodeToString(seed), nil
}

// Address is the 0x-prefixed account address of the signer
func (s *Signer) Address() string {
	return s.address
}

// PublicKey returns the raw Ed25519 public key
func (s *Signer) PublicKey() ed25519.PublicKey {
	return s.key.Public().(ed25519.PublicKey)
}

// SignTransaction signs BCS transaction bytes and returns the serialized
// signature flag || signature || public key, base64 encoded.
func (s *Signer) SignTransaction(txBytes []byte) string {
	digest := TransactionDigestToSign(txBytes)
	sig := ed25519.Sign(s.key, digest[:])

	pub := s.PublicKey()
	serialized := make([]byte, 0, 1+len(sig)+len(pub))
	serialized = append(serialized, ed25519Flag)
	serialized = append(serialized, sig...)
	serialized = append(serialized, pub...)
	return base64.StdEncoding.EncodeToString(serialized)
}

// TransactionDigestToSign is BLAKE2b-256 over the intent prefix and the transaction bytes
func TransactionDigestToSign(txBytes []byte) [32]byte {
	msg := make([]byte, 0, len(transactionIntent)+len(txBytes))
	msg = append(msg, transactionIntent...)
	msg = append(msg, txBytes...)
	return blake2b.Sum256(msg)
}

func deriveAddress(pub ed25519.PublicKey) string {
	buf := make([]byte, 0, 1+len(pub))
	buf = append(buf, ed25519Flag)
	buf = append(buf, pub...)
	sum := blake2b.Sum256(buf)
	return "0x" + hex.EncodeToString(sum[:])
}
