package services

import "medchain/internal/domain/models"

// Canonicalizer produces the stable byte form of a record that gets hashed
type Canonicalizer interface {
	// Canonicalize fails with *domain.EncodingError on unrepresentable values
	Canonicalize(record *models.Record) ([]byte, error)

	// Validate runs the representability check without encoding
	Validate(record *models.Record) error

	Name() string
}

// Digester computes the public fingerprint of canonical bytes
type Digester interface {
	// Digest returns a fixed-length lowercase hex string
	Digest(data []byte) string

	Algorithm() string
}
