package commands

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/carson-networks/ledger-server/internal/bankfeed"
	"github.com/carson-networks/ledger-server/internal/config"
	"github.com/carson-networks/ledger-server/internal/extract"
	"github.com/carson-networks/ledger-server/internal/logging"
	"github.com/carson-networks/ledger-server/internal/operator"
	"github.com/carson-networks/ledger-server/internal/service"
	"github.com/carson-networks/ledger-server/internal/storage"
	"github.com/carson-networks/ledger-server/internal/storage/migrations"
	"github.com/carson-networks/ledger-server/internal/storage/sqlconfig"
)

// app is everything a command needs to talk to the ledger.
type app struct {
	cfg       *config.Config
	logger    *logrus.Logger
	storage   *storage.Storage
	delegator *operator.OperatorDelegator
	service   *service.Service
}

func loadConfig() (*config.Config, *logrus.Logger, error) {
	cfg, err := config.ProcessEnvironmentVariables()
	if err != nil {
		return nil, nil, fmt.Errorf("config.ProcessEnvironmentVariables: %w", err)
	}
	return cfg, logging.SetupLogging(cfg.LogLevel), nil
}

func runMigrations(cfg *config.Config, logger *logrus.Logger) error {
	result, err := migrations.Up(sqlconfig.ConnectionString(cfg))
	if err != nil {
		return fmt.Errorf("migrations.Up: %w", err)
	}
	logger.WithFields(logrus.Fields{
		"preMigrationVersion":  result.PreMigrationVersion,
		"postMigrationVersion": result.PostMigrationVersion,
	}).Info("Migration status")
	return nil
}

func bankFeedProvider(cfg *config.Config) bankfeed.Provider {
	if cfg.BankFeedURL == "" {
		return bankfeed.Disabled{}
	}
	return bankfeed.NewHTTPProvider(cfg.BankFeedURL, cfg.BankFeedAPIKey, cfg.BankFeedTimeout(), cfg.BankFeedPaths)
}

// newExtractor prefers the model and falls back to line heuristics. Without an
// API key only the heuristics run.
func newExtractor(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (extract.Extractor, error) {
	if cfg.GenAIAPIKey == "" {
		return extract.Heuristic{}, nil
	}
	llm, err := extract.NewGenAI(ctx, cfg.GenAIAPIKey, cfg.GenAIModel)
	if err != nil {
		return nil, err
	}
	return &extract.Fallback{Primary: llm, Secondary: extract.Heuristic{}, Logger: logger}, nil
}

func newApp() (*app, error) {
	cfg, logger, err := loadConfig()
	if err != nil {
		return nil, err
	}

	if cfg.AutoMigrate {
		if err := runMigrations(cfg, logger); err != nil {
			return nil, err
		}
	}

	dbStorage, err := storage.NewStorage(cfg)
	if err != nil {
		return nil, fmt.Errorf("storage.NewStorage: %w", err)
	}

	delegator := operator.NewOperatorDelegator(dbStorage, cfg.OperatorWorkers, logger)
	delegator.Start()

	svc := service.NewService(delegator, service.NewReaders(dbStorage.Reader), service.Options{
		BankFeed:        bankFeedProvider(cfg),
		CSVFormats:      bankfeed.DefaultRegistry(),
		MatchWindowDays: cfg.MatchWindowDays,
		Logger:          logger,
	})

	return &app{
		cfg:       cfg,
		logger:    logger,
		storage:   dbStorage,
		delegator: delegator,
		service:   svc,
	}, nil
}

// Close drains the worker pool before closing the pool of connections.
func (a *app) Close() {
	a.delegator.Stop()
	if err := a.storage.Close(); err != nil {
		a.logger.WithError(err).Warn("app.Close.storage")
	}
}
