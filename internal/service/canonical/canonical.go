// Package canonical turns records into stable bytes and fingerprints them.
package canonical

import (
	"bytes"
	"encoding/json"
	"fmt"
	"unicode/utf8"

	"github.com/fxamacker/cbor/v2"

	"medchain/internal/domain"
	"medchain/internal/domain/models"
	"medchain/internal/domain/services"
)

// Encoding names accepted by NewCanonicalizer
const (
	EncodingJSON = "json"
	EncodingCBOR = "cbor"
)

// NewCanonicalizer returns the canonicalizer for the named encoding
func NewCanonicalizer(encoding string) (services.Canonicalizer, error) {
	switch encoding {
	case "", EncodingJSON:
		return JSON{}, nil
	case EncodingCBOR:
		return NewCBOR()
	default:
		return nil, fmt.Errorf("unknown canonical encoding %q", encoding)
	}
}

// Validate checks that every string in the record is valid UTF-8.
// Both encoders would otherwise substitute or reject bytes silently.
func Validate(record *models.Record) error {
	if record == nil {
		return &domain.EncodingError{Field: "record", Message: "nil record"}
	}
	if !utf8.ValidString(record.DocType) {
		return &domain.EncodingError{Field: "docType", Message: "invalid UTF-8"}
	}
	if !utf8.ValidString(record.RecordID) {
		return &domain.EncodingError{Field: "recordId", Message: "invalid UTF-8"}
	}
	for _, name := range models.FieldNames() {
		value, ok := record.Field(name)
		if !ok {
			continue
		}
		if !utf8.ValidString(*value) {
			return &domain.EncodingError{Field: name, Message: "invalid UTF-8"}
		}
	}
	return nil
}

// JSON encodes records as compact struct-ordered JSON without HTML escaping.
// This matches what the private ledger stores.
type JSON struct{}

func (JSON) Name() string { return EncodingJSON }

func (JSON) Validate(record *models.Record) error { return Validate(record) }

func (JSON) Canonicalize(record *models.Record) ([]byte, error) {
	if err := Validate(record); err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(record); err != nil {
		return nil, &domain.EncodingError{Field: "record", Message: err.Error()}
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// CBOR encodes records with RFC 8949 core deterministic encoding
type CBOR struct {
	em cbor.EncMode
}

// NewCBOR builds the deterministic encoder
func NewCBOR() (*CBOR, error) {
	em, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		return nil, fmt.Errorf("cbor encoder: %w", err)
	}
	return &CBOR{em: em}, nil
}

func (*CBOR) Name() string { return EncodingCBOR }

func (*CBOR) Validate(record *models.Record) error { return Validate(record) }

func (c *CBOR) Canonicalize(record *models.Record) ([]byte, error) {
	if err := Validate(record); err != nil {
		return nil, err
	}
	data, err := c.em.Marshal(record)
	if err != nil {
		return nil, &domain.EncodingError{Field: "record", Message: err.Error()}
	}
	return data, nil
}
