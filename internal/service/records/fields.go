package records

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"medchain/internal/domain"
	"medchain/internal/domain/models"
)

var errNoCipher = errors.New("no field cipher configured")

// encryptFields encrypts every sensitive field concurrently.
// The record is only modified once all calls have succeeded, so a failure
// never leaves a mix of plaintext and ciphertext behind.
func (s *recordService) encryptFields(ctx context.Context, record *models.Record) error {
	if s.cipher == nil {
		return &domain.EncryptionError{Err: errNoCipher}
	}

	fields := s.presentSensitiveFields(record)
	ciphertexts := make([]string, len(fields))

	g, gctx := errgroup.WithContext(ctx)
	for i, name := range fields {
		plaintext, _ := record.Field(name)
		value := *plaintext
		g.Go(func() error {
			ct, err := s.cipher.Encrypt(gctx, value)
			if err != nil {
				return withField(err, name, true)
			}
			ciphertexts[i] = ct
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, name := range fields {
		value, _ := record.Field(name)
		*value = ciphertexts[i]
	}
	return nil
}

// decryptFields is the inverse of encryptFields with the same all-or-nothing update
func (s *recordService) decryptFields(ctx context.Context, record *models.Record) error {
	if s.cipher == nil {
		return &domain.DecryptionError{Err: errNoCipher}
	}

	fields := s.presentSensitiveFields(record)
	plaintexts := make([]string, len(fields))

	g, gctx := errgroup.WithContext(ctx)
	for i, name := range fields {
		ciphertext, _ := record.Field(name)
		value := *ciphertext
		g.Go(func() error {
			pt, err := s.cipher.Decrypt(gctx, value)
			if err != nil {
				return withField(err, name, false)
			}
			plaintexts[i] = pt
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	for i, name := range fields {
		value, _ := record.Field(name)
		*value = plaintexts[i]
	}
	return nil
}

// presentSensitiveFields skips optional fields the record does not carry
func (s *recordService) presentSensitiveFields(record *models.Record) []string {
	var fields []string
	for _, name := range s.catalog.SensitiveFields() {
		if _, ok := record.Field(name); ok {
			fields = append(fields, name)
		}
	}
	return fields
}

// withField tags a cipher error with the field it failed on
func withField(err error, field string, encrypting bool) error {
	var ee *domain.EncryptionError
	if errors.As(err, &ee) {
		if ee.Field == "" {
			ee.Field = field
		}
		return ee
	}
	var de *domain.DecryptionError
	if errors.As(err, &de) {
		if de.Field == "" {
			de.Field = field
		}
		return de
	}
	if encrypting {
		return &domain.EncryptionError{Field: field, Err: err}
	}
	return &domain.DecryptionError{Field: field, Err: err}
}
