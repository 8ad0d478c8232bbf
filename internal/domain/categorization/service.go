package categorization

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/tdelacour/grandlivre/internal/domain/ledger"
)

// Service classifies transactions against the loaded category table and
// keyword rules. Categories and rules are cached; call Reload after either
// changes.
type Service struct {
	repo   *Repository
	engine *Engine
	logger *slog.Logger

	cacheMu    sync.RWMutex
	categories []ledger.Category
}

// NewService creates a categorization service with an empty cache.
func NewService(repo *Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		engine: NewEngine(nil),
		logger: logger,
	}
}

// Reload refreshes the category cache and rebuilds the keyword engine.
func (s *Service) Reload(ctx context.Context) error {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return fmt.Errorf("load categories: %w", err)
	}

	rules, err := s.repo.ListRules(ctx)
	if err != nil {
		return fmt.Errorf("load rules: %w", err)
	}

	s.cacheMu.Lock()
	s.categories = categories
	s.cacheMu.Unlock()
	s.engine.Build(rules)

	s.logger.Debug("categorization cache reloaded",
		slog.Int("categories", len(categories)),
		slog.Int("rules", len(rules)),
	)
	return nil
}

// Categories returns the cached category table.
func (s *Service) Categories() []ledger.Category {
	s.cacheMu.RLock()
	defer s.cacheMu.RUnlock()
	return s.categories
}

// ClassifyTransaction resolves a category for the transaction: first the
// account-prefix rule on compte_num, then keyword rules on the libellé.
// Returns nil when neither matches; the transaction stays unclassified.
func (s *Service) ClassifyTransaction(tx *ledger.Transaction) *uuid.UUID {
	s.cacheMu.RLock()
	categories := s.categories
	s.cacheMu.RUnlock()

	if c := Classify(tx.CompteNum, categories); c != nil {
		id := c.ID
		return &id
	}

	if m := s.engine.Match(tx.EcritureLib); m != nil {
		id := m.CategoryID
		return &id
	}

	return nil
}

// GetCategoryForAccount resolves an account number to a system category ID.
// The second return is false when no prefix matches.
func (s *Service) GetCategoryForAccount(ctx context.Context, accountNum string) (uuid.UUID, bool, error) {
	s.cacheMu.RLock()
	categories := s.categories
	s.cacheMu.RUnlock()

	if len(categories) > 0 {
		if c := Classify(accountNum, categories); c != nil {
			return c.ID, true, nil
		}
		return uuid.Nil, false, nil
	}

	id, err := s.repo.GetCategoryForAccount(ctx, accountNum)
	if errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, false, nil
	}
	if err != nil {
		return uuid.Nil, false, err
	}
	return id, true, nil
}
