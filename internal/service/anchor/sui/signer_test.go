package sui

import (
	"crypto/ed25519"
	"encoding/base64"
	"encoding/hex"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/blake2b"
)

func TestSigner_Address(t *testing.T) {
	s := testSigner(t)

	pub := s.PublicKey()
	sum := blake2b.Sum256(append([]byte{0x00}, pub...))
	assert.Equal(t, "0x"+hex.EncodeToString(sum[:]), s.Address())
	assert.Len(t, s.Address(), 66)
}

func TestParseSigner(t *testing.T) {
	seed := make([]byte, ed25519.SeedSize)
	for i := range seed {
		seed[i] = byte(i)
	}
	want, err := NewSigner(seed)
	require.NoError(t, err)

	for _, encoded := range []string{
		hex.EncodeToString(seed),
		"0x" + hex.EncodeToString(seed),
		base64.StdEncoding.EncodeToString(seed),
		"  " + hex.EncodeToString(seed) + "\n",
	} {
		got, err := ParseSigner(encoded)
		require.NoError(t, err, encoded)
		assert.Equal(t, want.Address(), got.Address())
	}

	_, err = ParseSigner("abcd")
	assert.Error(t, err)
	_, err = ParseSigner("not a seed")
	assert.Error(t, err)
}

func TestGenerateSigner(t *testing.T) {
	s, seedHex, err := GenerateSigner()
	require.NoError(t, err)

	again, err := ParseSigner(seedHex)
	require.NoError(t, err)
	assert.Equal(t, s.Address(), again.Address())
	assert.True(t, strings.HasPrefix(s.Address(), "0x"))
}

func TestSignTransaction_Layout(t *testing.T) {
	s := testSigner(t)
	assertValidSignature(t, s.SignTransaction([]byte("tx")), []byte("tx"), s.PublicKey())
}
