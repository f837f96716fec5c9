package services

import "context"

// FieldCipher encrypts and decrypts individual field values.
// Implementations must be safe for concurrent use.
type FieldCipher interface {
	Encrypt(ctx context.Context, plaintext string) (string, error)

	// Decrypt fails with *domain.DecryptionError when the value was not
	// produced for a matching key
	Decrypt(ctx context.Context, ciphertext string) (string, error)
}
