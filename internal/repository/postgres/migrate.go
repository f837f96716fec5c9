package postgres

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/url"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const prefixPlaceholder = "{{prefix}}"

// Migrate applies the embedded SQL migrations for the given table prefix.
// Each prefix keeps its own migrations table so environments can share a database.
func Migrate(databaseURL, tablePrefix string, logger *slog.Logger) error {
	m, err := newMigrator(databaseURL, tablePrefix)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}

	version, dirty, _ := m.Version()
	logger.Info("migrations applied",
		slog.Uint64("version", uint64(version)),
		slog.Bool("dirty", dirty),
		slog.String("table_prefix", tablePrefix),
	)
	return nil
}

// MigrateDown reverts every migration for the prefix, dropping its tables
func MigrateDown(databaseURL, tablePrefix string, logger *slog.Logger) error {
	m, err := newMigrator(databaseURL, tablePrefix)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("revert migrations: %w", err)
	}

	logger.Warn("migrations reverted", slog.String("table_prefix", tablePrefix))
	return nil
}

func newMigrator(databaseURL, tablePrefix string) (*migrate.Migrate, error) {
	source, err := iofs.New(&prefixedFS{fsys: migrationsFS, prefix: tablePrefix}, "migrations")
	if err != nil {
		return nil, fmt.Errorf("create migration source: %w", err)
	}

	dbURL, err := migrateURL(databaseURL, NewTableNames(tablePrefix).Migrations)
	if err != nil {
		return nil, err
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, dbURL)
	if err != nil {
		return nil, fmt.Errorf("init migrations: %w", err)
	}
	return m, nil
}

// migrateURL rewrites a postgres:// URL for the pgx5 migrate driver
func migrateURL(databaseURL, migrationsTable string) (string, error) {
	u, err := url.Parse(databaseURL)
	if err != nil {
		return "", fmt.Errorf("parse database url: %w", err)
	}
	switch u.Scheme {
	case "postgres", "postgresql", "pgx5":
		u.Scheme = "pgx5"
	default:
		return "", fmt.Errorf("unsupported database url scheme %q", u.Scheme)
	}
	q := u.Query()
	q.Set("x-migrations-table", migrationsTable)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// prefixedFS substitutes the table prefix into migration files as they are read
type prefixedFS struct {
	fsys   embed.FS
	prefix string
}

func (p *prefixedFS) ReadDir(name string) ([]fs.DirEntry, error) {
	return p.fsys.ReadDir(name)
}

func (p *prefixedFS) Open(name string) (fs.File, error) {
	f, err := p.fsys.Open(name)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if info.IsDir() {
		return f, nil
	}
	defer f.Close()

	data, err := fs.ReadFile(p.fsys, name)
	if err != nil {
		return nil, err
	}
	rendered := strings.ReplaceAll(string(data), prefixPlaceholder, p.prefix)
	return &renderedFile{Reader: bytes.NewReader([]byte(rendered)), info: info, size: int64(len(rendered))}, nil
}

type renderedFile struct {
	*bytes.Reader
	info fs.FileInfo
	size int64
}

func (f *renderedFile) Stat() (fs.FileInfo, error) { return renderedInfo{FileInfo: f.info, size: f.size}, nil }
func (f *renderedFile) Close() error               { return nil }

type renderedInfo struct {
	fs.FileInfo
	size int64
}

func (i renderedInfo) Size() int64 { return i.size }
