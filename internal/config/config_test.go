package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ENVIRONMENT", "")
	t.Setenv("TABLE_PREFIX", "")

	cfg := Load()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "dev", cfg.Environment)
	assert.Equal(t, "dev_", cfg.TablePrefix)
	assert.Equal(t, "memory", cfg.LedgerBackend)
	assert.Equal(t, "memory", cfg.AnchorBackend)
	assert.Equal(t, "json", cfg.CanonicalEncoding)
	assert.Equal(t, "sha256", cfg.HashAlgorithm)
	assert.Equal(t, 20*time.Second, cfg.AnchorTimeout)
	assert.Equal(t, uint64(10_000_000), cfg.SuiGasBudget)
	assert.True(t, cfg.Debug)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("ENVIRONMENT", "prod")
	t.Setenv("TABLE_PREFIX", "")
	t.Setenv("LEDGER_BACKEND", "postgres")
	t.Setenv("ANCHOR_TIMEOUT", "5s")
	t.Setenv("LEDGER_CACHE_SIZE", "not-a-number")
	t.Setenv("CIPHER_RECIPIENTS", " age1aaa , ,age1bbb")

	cfg := Load()
	assert.Equal(t, "prod_", cfg.TablePrefix)
	assert.Equal(t, "postgres", cfg.LedgerBackend)
	assert.Equal(t, 5*time.Second, cfg.AnchorTimeout)
	assert.Equal(t, 1024, cfg.LedgerCacheSize)
	assert.Equal(t, []string{"age1aaa", "age1bbb"}, cfg.CipherRecipients)
	assert.False(t, cfg.Debug)
}

func TestGetTablePrefix(t *testing.T) {
	t.Setenv("TABLE_PREFIX", "")
	assert.Equal(t, "test_", getTablePrefix("test"))
	assert.Equal(t, "dev_", getTablePrefix("staging"))

	t.Setenv("TABLE_PREFIX", "ci_")
	assert.Equal(t, "ci_", getTablePrefix("prod"))
}

func TestSetupLogFile_KeepsNewest(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"medchain-2000-01-01T00-00-00.log", "medchain-2000-01-02T00-00-00.log", "medchain-2000-01-03T00-00-00.log"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}

	f, err := SetupLogFile(dir, 2)
	require.NoError(t, err)
	defer f.Close()

	files, err := filepath.Glob(filepath.Join(dir, "medchain-*.log"))
	require.NoError(t, err)
	assert.Len(t, files, 2)
	assert.NotContains(t, files, filepath.Join(dir, "medchain-2000-01-01T00-00-00.log"))
}

func TestSetupLogFile_ZeroKeepsAll(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"medchain-2000-01-01T00-00-00.log", "medchain-2000-01-02T00-00-00.log"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}

	f, err := SetupLogFile(dir, 0)
	require.NoError(t, err)
	defer f.Close()

	files, err := filepath.Glob(filepath.Join(dir, "medchain-*.log"))
	require.NoError(t, err)
	assert.Len(t, files, 3)
}
