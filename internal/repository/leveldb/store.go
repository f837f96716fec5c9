// Package leveldb keeps the private ledger and anchor registry in an
// embedded LevelDB database.
package leveldb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/storage"

	"medchain/internal/domain"
	"medchain/internal/domain/repositories"
)

// Key prefixes inside the single LevelDB keyspace
const (
	recordPrefix  = "record_"
	anchorPrefix  = "anchor_"
	pendingPrefix = "pending_"
)

// DB wraps one LevelDB handle shared by the store and the anchor registry
type DB struct {
	db     *leveldb.DB
	logger *slog.Logger
}

// Open opens (or creates) the database at path
func Open(path string, logger *slog.Logger) (*DB, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("open leveldb %s: %w", path, err)
	}
	logger.Info("leveldb opened", "path", path)
	return &DB{db: db, logger: logger}, nil
}

// OpenInMemory opens a database with no file backing
func OpenInMemory(logger *slog.Logger) (*DB, error) {
	db, err := leveldb.Open(storage.NewMemStorage(), nil)
	if err != nil {
		return nil, fmt.Errorf("open in-memory leveldb: %w", err)
	}
	return &DB{db: db, logger: logger}, nil
}

// Close releases the database handle
func (d *DB) Close() error {
	return d.db.Close()
}

// Store is the ledger KVStore over LevelDB
type Store struct {
	db *DB
}

// NewStore creates the ledger store on db
func NewStore(db *DB) *Store {
	return &Store{db: db}
}

var _ repositories.KVStore = (*Store)(nil)

func (s *Store) Put(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.db.db.Put([]byte(recordPrefix+key), value, nil); err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	value, err := s.db.db.Get([]byte(recordPrefix+key), nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return nil, &domain.NotFoundError{Message: "no value for key " + key}
		}
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return value, nil
}
