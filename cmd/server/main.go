package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/pharmaguard-server/internal/advisory"
	"github.com/pharmaguard-server/internal/api"
	"github.com/pharmaguard-server/internal/config"
	"github.com/pharmaguard-server/internal/database"
	"github.com/pharmaguard-server/internal/domain"
	"github.com/pharmaguard-server/internal/guideline"
	"github.com/pharmaguard-server/internal/service"
)

func main() {
	// Load configuration
	configManager, err := config.NewManager()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Validate configuration
	if err := configManager.Validate(); err != nil {
		log.Fatalf("Configuration validation failed: %v", err)
	}

	cfg := configManager.GetConfig()
	logger := newLogger(cfg.Logging)

	// Open the guideline store for the configured driver
	store, err := openStore(configManager, logger)
	if err != nil {
		logger.Fatalf("Failed to open guideline store: %v", err)
	}
	defer store.Close()

	cached, err := guideline.NewCachedStore(store, cfg.Database.CacheSize)
	if err != nil {
		logger.Fatalf("Failed to build guideline cache: %v", err)
	}

	advisor, err := buildAdvisor(cfg, cached, logger)
	if err != nil {
		logger.Fatalf("Failed to configure advisory client: %v", err)
	}

	// Assemble the analysis pipeline
	extractor := service.NewVariantExtractor(logger)
	resolver := service.NewDiplotypeResolver(logger)
	classifier := service.NewPhenotypeClassifier(logger)
	engine := service.NewRuleEngine(resolver, classifier, logger)
	confidence := service.NewConfidenceModel(cfg.Confidence)
	analyzer := service.NewAnalyzer(engine, confidence, advisor, cached, logger)

	server := api.NewServer(cfg, extractor, analyzer, logger)

	logger.WithFields(logrus.Fields{
		"host":     cfg.Server.Host,
		"port":     cfg.Server.Port,
		"driver":   cfg.Database.Driver,
		"advisory": cfg.Advisory.Enabled,
	}).Info("Starting PharmaGuard server")

	// Setup graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("Shutdown signal received, gracefully shutting down...")
		cancel()
	}()

	if err := server.Start(ctx); err != nil {
		logger.Fatalf("Server failed: %v", err)
	}

	logger.Info("Server stopped")
}

func newLogger(cfg domain.LoggingConfig) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Format == "text" {
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logger.SetFormatter(&logrus.JSONFormatter{})
	}

	switch cfg.Output {
	case "", "stdout":
		logger.SetOutput(os.Stdout)
	case "stderr":
		logger.SetOutput(os.Stderr)
	default:
		file, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			logger.SetOutput(os.Stdout)
			logger.WithError(err).Warn("Failed to open log file, falling back to stdout")
		} else {
			logger.SetOutput(file)
		}
	}

	return logger
}

// openStore opens the configured guideline backend. SQLite stores are
// seeded in place when empty; postgres stores run pending migrations first.
func openStore(manager *config.Manager, logger *logrus.Logger) (domain.GuidelineStore, error) {
	cfg := manager.GetDatabaseConfig()

	switch cfg.Driver {
	case "sqlite":
		if dir := filepath.Dir(cfg.Path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}

		store, err := guideline.NewSQLiteStore(cfg.Path)
		if err != nil {
			return nil, err
		}

		if err := seedIfEmpty(store, logger); err != nil {
			store.Close()
			return nil, err
		}
		return store, nil

	case "postgres":
		runner, err := database.NewMigrationRunner(manager.GetDatabaseURL(), cfg.MigrationsPath, logger)
		if err != nil {
			return nil, err
		}
		if err := runner.Up(); err != nil {
			runner.Close()
			return nil, err
		}
		runner.Close()

		return guideline.NewPostgresStoreFromURL(manager.GetDatabaseConnectionString())

	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Driver)
	}
}

func seedIfEmpty(store *guideline.SQLiteStore, logger *logrus.Logger) error {
	ctx := context.Background()

	drugs, err := store.ListDrugs(ctx)
	if err != nil {
		return err
	}
	if len(drugs) > 0 {
		return nil
	}

	count, err := guideline.Seed(ctx, store)
	if err != nil {
		return err
	}

	logger.WithField("guidelines", count).Info("Seeded CPIC guideline corpus")
	return nil
}

// buildAdvisor wires the optional LLM advisory chain. The narrative cache
// and circuit breaker wrap the client from the inside out, so a tripped
// breaker still serves cached narratives on the next close.
func buildAdvisor(cfg *domain.Config, store domain.GuidelineStore, logger *logrus.Logger) (domain.Advisor, error) {
	if !cfg.Advisory.Enabled {
		logger.Info("Advisory client disabled, using deterministic fallback explanations")
		return nil, nil
	}

	client, err := advisory.NewClient(cfg.Advisory, store, logger)
	if err != nil {
		return nil, err
	}

	var advisor domain.Advisor = client
	if cfg.Cache.Enabled {
		cachedAdvisor, err := advisory.NewCachedAdvisor(advisor, cfg.Cache, logger)
		if err != nil {
			return nil, err
		}
		advisor = cachedAdvisor
	}

	return advisory.NewResilientAdvisor(advisor, logger), nil
}
