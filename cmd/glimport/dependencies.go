package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tdelacour/grandlivre/internal/domain/budget"
	"github.com/tdelacour/grandlivre/internal/domain/categorization"
	importrepo "github.com/tdelacour/grandlivre/internal/domain/import/repository"
	importservice "github.com/tdelacour/grandlivre/internal/domain/import/service"
	"github.com/tdelacour/grandlivre/pkg/config"
	"github.com/tdelacour/grandlivre/pkg/cron"
	"github.com/tdelacour/grandlivre/pkg/db"
	"github.com/tdelacour/grandlivre/pkg/storage"
)

// Dependencies holds all application dependencies.
type Dependencies struct {
	Config *config.Config
	DB     *db.DB
	Logger *slog.Logger

	// Repositories
	TransactionRepo    *importrepo.PostgresRepository
	CategorizationRepo *categorization.Repository
	BudgetRepo         *budget.Repository

	// Services
	CategorizationService *categorization.Service
	ImportService         *importservice.ImportService

	// Infrastructure
	Inbox     storage.Inbox
	Scheduler *cron.Scheduler
}

// InitDependencies connects the database, runs migrations and wires every
// service.
func InitDependencies(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	database, err := db.New(ctx, cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to init database: %w", err)
	}

	if err := database.Migrate(); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	deps := &Dependencies{
		Config: cfg,
		DB:     database,
		Logger: logger,
	}

	deps.TransactionRepo = importrepo.NewPostgresRepository(database.Pool)
	deps.CategorizationRepo = categorization.NewRepository(database.Pool)
	deps.BudgetRepo = budget.NewRepository(database.Pool)

	deps.CategorizationService = categorization.NewService(deps.CategorizationRepo, logger)
	if err := deps.CategorizationService.Reload(ctx); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to load categorization data: %w", err)
	}

	deps.ImportService = importservice.NewImportService(deps.TransactionRepo, logger, cfg.Import.Workers).
		WithCategorizationService(deps.CategorizationService)

	inbox, err := storage.NewLocalInbox(cfg.Import.InboxPath, cfg.Import.ArchivePath)
	if err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to init inbox: %w", err)
	}
	deps.Inbox = inbox
	deps.Scheduler = cron.NewScheduler(inbox, deps.ImportService, cfg.Import.WatchSchedule, logger)

	return deps, nil
}

// Close releases held resources.
func (d *Dependencies) Close() {
	if d.DB != nil {
		d.DB.Close()
	}
}
