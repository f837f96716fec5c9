package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port        string
	Environment string
	CORSOrigins string
	TablePrefix string
	// Auth
	AuthJWKSURL string // Empty disables bearer-token auth (dev only)
	// Private ledger
	LedgerBackend   string // "postgres", "leveldb" or "memory"
	DatabaseURL     string
	LevelDBPath     string
	LedgerCacheSize int
	LedgerCacheTTL  time.Duration
	// Fingerprinting
	CanonicalEncoding string // "json" or "cbor"
	HashAlgorithm     string // "sha256" or "blake3"
	// Field cipher (age)
	CipherRecipients []string
	CipherIdentity   string
	// Public anchor
	AnchorBackend string // "sui" or "memory"
	AnchorTimeout time.Duration
	SuiRPCURL     string
	SuiPackageID  string
	SuiSignerSeed string // Hex or base64 Ed25519 seed; empty means no connected signer
	SuiGasBudget  uint64
	// Text analysis
	AnalysisProvider string
	AnalysisModel    string // Empty picks the provider default
	AnthropicAPIKey  string
	// Logging
	LogDir      string
	LogMaxFiles int
	// Debug flags
	Debug bool
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")

	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: env,
		CORSOrigins: getEnv("CORS_ORIGINS", "http://localhost:3000"),
		TablePrefix: getTablePrefix(env),
		AuthJWKSURL: getEnv("AUTH_JWKS_URL", ""),
		// Private ledger
		LedgerBackend:   getEnv("LEDGER_BACKEND", "memory"),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		LevelDBPath:     getEnv("LEVELDB_PATH", "data/ledger"),
		LedgerCacheSize: getEnvInt("LEDGER_CACHE_SIZE", 1024),
		LedgerCacheTTL:  getEnvDuration("LEDGER_CACHE_TTL", 5*time.Minute),
		// Fingerprinting
		CanonicalEncoding: getEnv("CANONICAL_ENCODING", "json"),
		HashAlgorithm:     getEnv("HASH_ALGORITHM", "sha256"),
		// Field cipher
		CipherRecipients: splitList(getEnv("CIPHER_RECIPIENTS", "")),
		CipherIdentity:   getEnv("CIPHER_IDENTITY", ""),
		// Public anchor
		AnchorBackend: getEnv("ANCHOR_BACKEND", "memory"),
		AnchorTimeout: getEnvDuration("ANCHOR_TIMEOUT", 20*time.Second),
		SuiRPCURL:     getEnv("SUI_RPC_URL", "https://fullnode.testnet.sui.io:443"),
		SuiPackageID:  getEnv("SUI_PACKAGE_ID", ""),
		SuiSignerSeed: getEnv("SUI_SIGNER_SEED", ""),
		SuiGasBudget:  uint64(getEnvInt("SUI_GAS_BUDGET", 10_000_000)),
		// Text analysis
		AnalysisProvider: getEnv("ANALYSIS_PROVIDER", "lorem"),
		AnalysisModel:    getEnv("ANALYSIS_MODEL", ""),
		AnthropicAPIKey:  getEnv("ANTHROPIC_API_KEY", ""),
		// Logging
		LogDir:      getEnv("LOG_DIR", ""),
		LogMaxFiles: getEnvInt("LOG_MAX_FILES", 10),
		// Debug flags - default to true in dev/test, false in production
		Debug: getEnv("DEBUG", getDefaultDebug(env)) == "true",
	}
}

// getDefaultDebug returns the default debug setting based on environment
func getDefaultDebug(env string) string {
	if env == "prod" {
		return "false"
	}
	return "true"
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	// Allow manual override via TABLE_PREFIX env var
	if prefix := os.Getenv("TABLE_PREFIX"); prefix != "" {
		return prefix
	}

	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}

// splitList splits a comma-separated value, dropping empty entries
func splitList(value string) []string {
	if value == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
