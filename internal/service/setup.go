// Package service assembles the record workflow from configuration.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"medchain/internal/catalog"
	"medchain/internal/config"
	"medchain/internal/domain/repositories"
	"medchain/internal/domain/services"
	"medchain/internal/repository/leveldb"
	"medchain/internal/repository/memory"
	"medchain/internal/repository/postgres"
	"medchain/internal/service/analysis"
	anchormem "medchain/internal/service/anchor/memory"
	"medchain/internal/service/anchor/sui"
	"medchain/internal/service/canonical"
	"medchain/internal/service/cipher"
	"medchain/internal/service/ledger"
	"medchain/internal/service/records"
)

// ReadinessCheck pings a backend
type ReadinessCheck func(ctx context.Context) error

// Services holds the assembled workflow and everything main needs to serve it
type Services struct {
	Records  services.RecordService
	Analyzer services.Analyzer // nil when analysis is disabled
	Catalog  *catalog.Catalog
	Checks   map[string]ReadinessCheck

	closers []func() error
}

// Close releases backend connections in reverse order of creation
func (s *Services) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Setup builds the record service with the backends selected in cfg
func Setup(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Services, error) {
	s := &Services{Checks: make(map[string]ReadinessCheck)}

	cat, err := catalog.Load()
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	s.Catalog = cat

	store, anchors, err := s.setupLedger(ctx, cfg, logger)
	if err != nil {
		s.Close()
		return nil, err
	}

	var cache *ledger.Cache
	if cfg.LedgerCacheSize > 0 {
		cache = ledger.NewCache(cfg.LedgerCacheSize, cfg.LedgerCacheTTL)
	}
	ledgerClient := ledger.NewClient(store, cache, logger)

	canonicalizer, err := canonical.NewCanonicalizer(cfg.CanonicalEncoding)
	if err != nil {
		s.Close()
		return nil, err
	}
	digester, err := canonical.NewDigester(cfg.HashAlgorithm)
	if err != nil {
		s.Close()
		return nil, err
	}

	fieldCipher, err := setupCipher(cfg, logger)
	if err != nil {
		s.Close()
		return nil, err
	}

	anchorClient, err := setupAnchor(cfg, logger)
	if err != nil {
		s.Close()
		return nil, err
	}

	analyzer, err := setupAnalyzer(cfg, logger)
	if err != nil {
		s.Close()
		return nil, err
	}
	if analyzer != nil {
		s.Analyzer = analyzer
	}

	deps := records.Dependencies{
		Ledger:        ledgerClient,
		Canonicalizer: canonicalizer,
		Digester:      digester,
		Anchor:        anchorClient,
		Anchors:       anchors,
		Catalog:       cat,
		AnchorTimeout: cfg.AnchorTimeout,
	}
	if fieldCipher != nil {
		deps.Cipher = fieldCipher
	}
	if analyzer != nil {
		deps.Analyzer = analyzer
	}

	s.Records, err = records.NewService(deps, logger)
	if err != nil {
		s.Close()
		return nil, err
	}

	logger.Info("record workflow ready",
		"ledger_backend", cfg.LedgerBackend,
		"anchor_backend", cfg.AnchorBackend,
		"canonical_encoding", canonicalizer.Name(),
		"hash_algorithm", digester.Algorithm(),
		"cipher", fieldCipher != nil,
		"analysis", analyzer != nil,
	)
	return s, nil
}

// setupLedger opens the private ledger store and the anchor registry on the same backend
func (s *Services) setupLedger(ctx context.Context, cfg *config.Config, logger *slog.Logger) (repositories.KVStore, repositories.AnchorRepository, error) {
	switch cfg.LedgerBackend {
	case "postgres":
		if cfg.DatabaseURL == "" {
			return nil, nil, errors.New("DATABASE_URL is required for the postgres ledger")
		}
		if err := postgres.Migrate(cfg.DatabaseURL, cfg.TablePrefix, logger); err != nil {
			return nil, nil, fmt.Errorf("migrate: %w", err)
		}
		pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to database: %w", err)
		}
		s.closers = append(s.closers, func() error { pool.Close(); return nil })
		s.Checks["postgres"] = pingPool(pool)

		repoConfig := &postgres.RepositoryConfig{
			Pool:   pool,
			Tables: postgres.NewTableNames(cfg.TablePrefix),
			Logger: logger,
		}
		logger.Info("database connected", "table_prefix", cfg.TablePrefix)
		return postgres.NewLedgerStore(repoConfig), postgres.NewAnchorRepository(repoConfig), nil

	case "leveldb":
		db, err := leveldb.Open(cfg.LevelDBPath, logger)
		if err != nil {
			return nil, nil, err
		}
		s.closers = append(s.closers, db.Close)
		return leveldb.NewStore(db), leveldb.NewAnchorRepository(db), nil

	case "memory", "":
		logger.Warn("in-memory ledger: records are lost on restart")
		return memory.NewStore(), memory.NewAnchorRepository(), nil

	default:
		return nil, nil, fmt.Errorf("unknown ledger backend %q", cfg.LedgerBackend)
	}
}

func pingPool(pool *pgxpool.Pool) ReadinessCheck {
	return func(ctx context.Context) error {
		return pool.Ping(ctx)
	}
}

// setupCipher returns nil when no key material is configured.
// Encrypted submissions then fail with EncryptionError.
func setupCipher(cfg *config.Config, logger *slog.Logger) (*cipher.AgeCipher, error) {
	if len(cfg.CipherRecipients) == 0 && cfg.CipherIdentity == "" {
		logger.Warn("no field cipher keys configured, encrypted submissions are disabled")
		return nil, nil
	}
	c, err := cipher.NewAgeCipher(cfg.CipherRecipients, cfg.CipherIdentity)
	if err != nil {
		return nil, fmt.Errorf("field cipher: %w", err)
	}
	if !c.CanDecrypt() {
		logger.Warn("field cipher has no identity, records cannot be decrypted by this instance")
	}
	return c, nil
}

func setupAnchor(cfg *config.Config, logger *slog.Logger) (services.AnchorClient, error) {
	switch cfg.AnchorBackend {
	case "sui":
		var signer *sui.Signer
		if cfg.SuiSignerSeed != "" {
			var err error
			signer, err = sui.ParseSigner(cfg.SuiSignerSeed)
			if err != nil {
				return nil, fmt.Errorf("sui signer: %w", err)
			}
			logger.Info("sui signer connected", "address", signer.Address())
		} else {
			logger.Warn("SUI_SIGNER_SEED not set, every anchor will degrade")
		}
		client, err := sui.NewClient(sui.Config{
			RPCURL:    cfg.SuiRPCURL,
			PackageID: cfg.SuiPackageID,
			GasBudget: cfg.SuiGasBudget,
		}, signer, logger)
		if err != nil {
			return nil, err
		}
		logger.Info("sui anchor configured", "rpc_url", cfg.SuiRPCURL, "target", client.Target())
		return client, nil

	case "memory", "":
		logger.Warn("in-memory anchor: fingerprints are not published")
		return anchormem.NewClient(), nil

	default:
		return nil, fmt.Errorf("unknown anchor backend %q", cfg.AnchorBackend)
	}
}

// setupAnalyzer returns nil when ANALYSIS_PROVIDER is "none"
func setupAnalyzer(cfg *config.Config, logger *slog.Logger) (*analysis.Analyzer, error) {
	if cfg.AnalysisProvider == "none" {
		return nil, nil
	}
	provider, err := analysis.NewProvider(cfg.AnalysisProvider, cfg.AnthropicAPIKey)
	if err != nil {
		return nil, fmt.Errorf("analysis provider: %w", err)
	}
	model := cfg.AnalysisModel
	if model == "" {
		model = analysis.DefaultModel(cfg.AnalysisProvider)
	}
	logger.Info("analysis provider available", "name", cfg.AnalysisProvider, "model", model)
	return analysis.NewAnalyzer(provider, model, logger), nil
}
