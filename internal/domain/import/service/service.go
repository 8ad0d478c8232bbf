// Package service provides the import orchestration logic: format
// dispatch, mapping, classification and persistence of ledger exports.
package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tdelacour/grandlivre/internal/domain/categorization"
	"github.com/tdelacour/grandlivre/internal/domain/import/mapper"
	"github.com/tdelacour/grandlivre/internal/domain/import/parser"
	"github.com/tdelacour/grandlivre/internal/domain/import/repository"
	"github.com/tdelacour/grandlivre/internal/domain/ledger"
	"github.com/tdelacour/grandlivre/pkg/metrics"
)

// ImportResult is the aggregated completion signal for one import call. It
// is returned only after every row's persistence task has settled.
type ImportResult struct {
	// RowsTotal is the number of data rows the parser produced.
	RowsTotal int
	// RowsAccepted is the mapper's accepted count.
	RowsAccepted int
	// RowsImported is the number of rows durably persisted.
	RowsImported int
	// RowsSkipped is rows the mapper dropped (missing required fields,
	// zero amount).
	RowsSkipped int
	// RowsFailed is accepted rows whose persistence task failed.
	RowsFailed int
	// Errors carries one message per failed row.
	Errors []string
}

// ImportService orchestrates file imports.
type ImportService struct {
	repo       repository.TransactionRepository
	catService *categorization.Service // nil: transactions stay unclassified
	mapper     *mapper.Mapper
	logger     *slog.Logger
	workers    int
	tracer     trace.Tracer
}

// NewImportService creates an import service with the given persistence
// worker count.
func NewImportService(repo repository.TransactionRepository, logger *slog.Logger, workers int) *ImportService {
	if workers < 1 {
		workers = 1
	}
	return &ImportService{
		repo:    repo,
		mapper:  mapper.New(nil),
		logger:  logger,
		workers: workers,
		tracer:  otel.Tracer("grandlivre/import"),
	}
}

// WithCategorizationService enables classification of imported rows.
func (s *ImportService) WithCategorizationService(catService *categorization.Service) *ImportService {
	s.catService = catService
	return s
}

// formatFor maps a file extension to its parser. Unsupported extensions
// are rejected here, before any bytes are read.
func formatFor(filename string) (string, func(io.Reader) (*parser.Table, error), error) {
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".csv":
		return "csv", parser.ParseDelimited, nil
	case ".xlsx", ".xls":
		return "excel", parser.ParseExcel, nil
	case ".txt":
		return "fec", parser.ParseFEC, nil
	default:
		return "", nil, fmt.Errorf("%q: %w", ext, parser.ErrUnsupportedFormat)
	}
}

// ImportPath imports a ledger export from the local filesystem.
func (s *ImportService) ImportPath(ctx context.Context, path string) (*ImportResult, error) {
	// Reject unsupported extensions before touching the file.
	if _, _, err := formatFor(path); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	defer f.Close()

	return s.ImportFile(ctx, filepath.Base(path), f)
}

// ImportFile parses the export, maps every row to a canonical transaction,
// classifies it and persists it. Row-level problems never abort the batch;
// a file-level problem (unsupported format, structural error, read
// failure) aborts the whole import with no partial result reported.
//
// Persistence runs on a bounded worker pool: rows are emitted in order but
// the store may observe them out of order. Callers needing strict ordering
// should run with a single worker.
func (s *ImportService) ImportFile(ctx context.Context, filename string, r io.Reader) (*ImportResult, error) {
	format, parse, err := formatFor(filename)
	if err != nil {
		return nil, err
	}

	ctx, span := s.tracer.Start(ctx, "import.file",
		trace.WithAttributes(
			attribute.String("file.name", filename),
			attribute.String("file.format", format),
		))
	defer span.End()

	start := time.Now()
	table, err := parse(r)
	if err != nil {
		metrics.ImportsTotal.WithLabelValues(format, "failed").Inc()
		return nil, fmt.Errorf("parse %s: %w", filename, err)
	}

	fiscalYears, err := s.repo.ListFiscalYears(ctx)
	if err != nil {
		// Rows stay unassigned rather than failing the import.
		s.logger.Warn("failed to load fiscal years", slog.Any("error", err))
		fiscalYears = nil
	}

	result := s.ingest(ctx, table, fiscalYears)

	metrics.ImportsTotal.WithLabelValues(format, "succeeded").Inc()
	metrics.RowsImported.Add(float64(result.RowsImported))
	metrics.RowsSkipped.Add(float64(result.RowsSkipped))
	metrics.RowsFailed.Add(float64(result.RowsFailed))
	metrics.ImportDuration.Observe(time.Since(start).Seconds())

	span.SetAttributes(
		attribute.Int("rows.total", result.RowsTotal),
		attribute.Int("rows.imported", result.RowsImported),
	)
	s.logger.Info("file imported",
		slog.String("file", filename),
		slog.String("format", format),
		slog.Int("rows_total", result.RowsTotal),
		slog.Int("rows_imported", result.RowsImported),
		slog.Int("rows_skipped", result.RowsSkipped),
		slog.Int("rows_failed", result.RowsFailed),
		slog.Duration("elapsed", time.Since(start)),
	)

	return result, nil
}

// fiscalYearFor resolves the fiscal year containing the écriture date, nil
// when the date is unparsable or no configured year covers it.
func fiscalYearFor(date string, years []ledger.FiscalYear) *uuid.UUID {
	if len(years) == 0 {
		return nil
	}
	d, ok := ledger.ParseDate(date)
	if !ok {
		return nil
	}
	for i := range years {
		if years[i].Contains(d) {
			id := years[i].ID
			return &id
		}
	}
	return nil
}

// ingest maps rows and fans persistence out to the worker pool, then waits
// for every task to settle.
func (s *ImportService) ingest(ctx context.Context, table *parser.Table, fiscalYears []ledger.FiscalYear) *ImportResult {
	jobs := make(chan *ledger.Transaction, s.workers)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		failed   int
		messages []string
	)

	for range s.workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for tx := range jobs {
				if err := s.repo.InsertTransaction(ctx, tx); err != nil {
					mu.Lock()
					failed++
					messages = append(messages, fmt.Sprintf("%s %s: %v", tx.EcritureDate, tx.EcritureLib, err))
					mu.Unlock()
				}
			}
		}()
	}

	accepted := s.mapper.ProcessTransactionData(table.Headers, table.Rows, func(tx *ledger.Transaction) {
		if s.catService != nil {
			tx.CategoryID = s.catService.ClassifyTransaction(tx)
		}
		tx.FiscalYearID = fiscalYearFor(tx.EcritureDate, fiscalYears)
		jobs <- tx
	})
	close(jobs)
	wg.Wait()

	return &ImportResult{
		RowsTotal:    len(table.Rows),
		RowsAccepted: accepted,
		RowsImported: accepted - failed,
		RowsSkipped:  len(table.Rows) - accepted,
		RowsFailed:   failed,
		Errors:       messages,
	}
}
