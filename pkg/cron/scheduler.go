// Package cron provides scheduled background jobs using robfig/cron.
package cron

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	importservice "github.com/tdelacour/grandlivre/internal/domain/import/service"
	"github.com/tdelacour/grandlivre/pkg/storage"
)

// Scheduler sweeps the import inbox on a schedule: every importable file
// is imported and archived.
type Scheduler struct {
	cron     *cron.Cron
	inbox    storage.Inbox
	importer *importservice.ImportService
	schedule string
	logger   *slog.Logger
}

// NewScheduler creates an inbox sweep scheduler.
func NewScheduler(inbox storage.Inbox, importer *importservice.ImportService, schedule string, logger *slog.Logger) *Scheduler {
	c := cron.New(cron.WithLogger(cron.VerbosePrintfLogger(slog.NewLogLogger(logger.Handler(), slog.LevelDebug))))

	return &Scheduler{
		cron:     c,
		inbox:    inbox,
		importer: importer,
		schedule: schedule,
		logger:   logger,
	}
}

// Start begins scheduled sweeps.
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc(s.schedule, s.sweepInbox)
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("inbox scheduler started", slog.String("schedule", s.schedule))
	return nil
}

// Stop gracefully stops scheduled sweeps.
func (s *Scheduler) Stop() context.Context {
	s.logger.Info("inbox scheduler stopping")
	return s.cron.Stop()
}

// RunNow triggers a sweep outside the schedule.
func (s *Scheduler) RunNow() {
	s.sweepInbox()
}

// sweepInbox imports and archives every pending file. A failed file is
// left in place for the next sweep; one bad export must not block the
// rest.
func (s *Scheduler) sweepInbox() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	files, err := s.inbox.List(ctx)
	if err != nil {
		s.logger.Error("failed to list inbox", slog.Any("error", err))
		return
	}
	if len(files) == 0 {
		return
	}

	s.logger.Info("sweeping inbox", slog.Int("files", len(files)))

	for _, file := range files {
		f, err := s.inbox.Open(ctx, file.Name)
		if err != nil {
			s.logger.Warn("failed to open inbox file",
				slog.String("file", file.Name),
				slog.Any("error", err),
			)
			continue
		}

		result, err := s.importer.ImportFile(ctx, file.Name, f)
		f.Close()
		if err != nil {
			s.logger.Warn("failed to import inbox file",
				slog.String("file", file.Name),
				slog.Any("error", err),
			)
			continue
		}

		s.logger.Info("inbox file imported",
			slog.String("file", file.Name),
			slog.Int("rows_imported", result.RowsImported),
			slog.Int("rows_skipped", result.RowsSkipped),
		)

		if err := s.inbox.Archive(ctx, file.Name); err != nil {
			s.logger.Warn("failed to archive inbox file",
				slog.String("file", file.Name),
				slog.Any("error", err),
			)
		}
	}
}
