// Package cipher implements field encryption with age X25519 keys.
package cipher

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"

	"filippo.io/age"

	"medchain/internal/domain"
	"medchain/internal/domain/services"
)

var errNoIdentity = errors.New("no decryption identity configured")

// AgeCipher encrypts each value to every recipient and decrypts with one identity.
// Ciphertext is the base64 (standard encoding) of the binary age format.
type AgeCipher struct {
	recipients []age.Recipient
	identity   *age.X25519Identity
}

var _ services.FieldCipher = (*AgeCipher)(nil)

// NewAgeCipher parses age1... recipients and an optional AGE-SECRET-KEY-1... identity.
// Without explicit recipients the identity's own recipient is used.
func NewAgeCipher(recipientKeys []string, identityKey string) (*AgeCipher, error) {
	c := &AgeCipher{}

	if identityKey != "" {
		identity, err := age.ParseX25519Identity(identityKey)
		if err != nil {
			return nil, fmt.Errorf("parsing identity: %w", err)
		}
		c.identity = identity
	}

	for _, key := range recipientKeys {
		recipient, err := age.ParseX25519Recipient(key)
		if err != nil {
			return nil, fmt.Errorf("parsing recipient key %q: %w", key, err)
		}
		c.recipients = append(c.recipients, recipient)
	}

	if len(c.recipients) == 0 {
		if c.identity == nil {
			return nil, fmt.Errorf("at least one recipient or an identity is required")
		}
		c.recipients = append(c.recipients, c.identity.Recipient())
	}

	return c, nil
}

// CanDecrypt reports whether an identity is configured
func (c *AgeCipher) CanDecrypt() bool {
	return c.identity != nil
}

func (c *AgeCipher) Encrypt(ctx context.Context, plaintext string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", &domain.EncryptionError{Err: err}
	}

	var buf bytes.Buffer
	writer, err := age.Encrypt(&buf, c.recipients...)
	if err != nil {
		return "", &domain.EncryptionError{Err: fmt.Errorf("creating age encryptor: %w", err)}
	}
	if _, err := io.WriteString(writer, plaintext); err != nil {
		return "", &domain.EncryptionError{Err: fmt.Errorf("writing plaintext: %w", err)}
	}
	if err := writer.Close(); err != nil {
		return "", &domain.EncryptionError{Err: fmt.Errorf("finalizing age encryption: %w", err)}
	}

	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func (c *AgeCipher) Decrypt(ctx context.Context, ciphertext string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", &domain.DecryptionError{Err: err}
	}
	if c.identity == nil {
		return "", &domain.DecryptionError{Err: errNoIdentity}
	}

	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", &domain.DecryptionError{Err: fmt.Errorf("decoding base64 ciphertext: %w", err)}
	}

	reader, err := age.Decrypt(bytes.NewReader(raw), c.identity)
	if err != nil {
		return "", &domain.DecryptionError{Err: err}
	}

	plaintext, err := io.ReadAll(reader)
	if err != nil {
		return "", &domain.DecryptionError{Err: fmt.Errorf("reading decrypted plaintext: %w", err)}
	}
	return string(plaintext), nil
}

// Keypair is a freshly generated age identity
type Keypair struct {
	Identity  string // AGE-SECRET-KEY-1...
	Recipient string // age1...
}

// GenerateKeypair creates a new X25519 identity
func GenerateKeypair() (*Keypair, error) {
	identity, err := age.GenerateX25519Identity()
	if err != nil {
		return nil, fmt.Errorf("generating age keypair: %w", err)
	}
	return &Keypair{
		Identity:  identity.String(),
		Recipient: identity.Recipient().String(),
	}, nil
}
