// Package ledger is the private ledger client: record documents stored by
// key in a KVStore, with a docType discriminator and an audit log line per commit.
package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"unicode"
	"unicode/utf8"

	"medchain/internal/config"
	"medchain/internal/domain"
	"medchain/internal/domain/models"
	"medchain/internal/domain/repositories"
	"medchain/internal/domain/services"
	"medchain/internal/service/canonical"
)

// Client implements services.PrivateLedger
type Client struct {
	store  repositories.KVStore
	cache  *Cache
	logger *slog.Logger
}

var _ services.PrivateLedger = (*Client)(nil)

// NewClient creates a ledger client. cache may be nil.
func NewClient(store repositories.KVStore, cache *Cache, logger *slog.Logger) *Client {
	return &Client{store: store, cache: cache, logger: logger}
}

// Commit stores the record's canonical JSON under key, replacing any prior value.
// The stored bytes are exactly what a third party hashes to verify the anchor.
func (c *Client) Commit(ctx context.Context, key string, record *models.Record) error {
	if err := ValidateKey(key); err != nil {
		return &domain.LedgerWriteError{Key: key, Err: err}
	}
	if record == nil {
		return &domain.LedgerWriteError{Key: key, Err: &domain.ValidationError{Message: "record is required"}}
	}
	if record.DocType != models.DocTypeRecord {
		return &domain.LedgerWriteError{Key: key, Err: &domain.ValidationError{
			Message: fmt.Sprintf("docType must be %q, got %q", models.DocTypeRecord, record.DocType),
		}}
	}

	value, err := canonical.JSON{}.Canonicalize(record)
	if err != nil {
		return &domain.LedgerWriteError{Key: key, Err: err}
	}

	if err := c.store.Put(ctx, key, value); err != nil {
		if c.cache != nil {
			c.cache.Delete(key)
		}
		return &domain.LedgerWriteError{Key: key, Err: err}
	}

	if c.cache != nil {
		c.cache.Set(key, record)
	}

	c.logger.Info("record committed",
		"doc_type", record.DocType,
		"key", key,
		"encrypted", record.IsEncrypted,
	)
	return nil
}

// Query returns the record stored under key
func (c *Client) Query(ctx context.Context, key string) (*models.Record, error) {
	if c.cache != nil {
		if record, ok := c.cache.Get(key); ok {
			return record, nil
		}
	}

	value, err := c.store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, &domain.NotFoundError{Message: fmt.Sprintf("%s does not exist", key)}
		}
		return nil, fmt.Errorf("query %s: %w", key, err)
	}
	if len(value) == 0 {
		return nil, &domain.NotFoundError{Message: fmt.Sprintf("%s does not exist", key)}
	}

	var record models.Record
	if err := json.Unmarshal(value, &record); err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	if record.DocType != models.DocTypeRecord {
		c.logger.Debug("key holds another document kind", "key", key, "doc_type", record.DocType)
		return nil, &domain.NotFoundError{Message: fmt.Sprintf("%s is not a record", key)}
	}

	if c.cache != nil {
		c.cache.Set(key, &record)
	}
	return &record, nil
}

// ValidateKey rejects keys the ledger cannot address
func ValidateKey(key string) error {
	if key == "" {
		return &domain.ValidationError{Message: "key is required"}
	}
	if len(key) > config.MaxRecordIDLength {
		return &domain.ValidationError{Message: fmt.Sprintf("key exceeds %d bytes", config.MaxRecordIDLength)}
	}
	if !utf8.ValidString(key) {
		return &domain.ValidationError{Message: "key is not valid UTF-8"}
	}
	for _, r := range key {
		if unicode.IsControl(r) {
			return &domain.ValidationError{Message: "key contains control characters"}
		}
	}
	return nil
}
