package categorization

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/tdelacour/grandlivre/internal/domain/ledger"
)

// ErrSystemCategoryImmutable rejects edits to chart-of-accounts categories.
var ErrSystemCategoryImmutable = errors.New("system categories cannot be modified")

// DB is the subset of pgxpool.Pool the repository needs. Satisfied by
// pgxmock in tests.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Repository handles database operations for categories and keyword rules.
type Repository struct {
	db DB
}

// NewRepository creates a categorization repository.
func NewRepository(db DB) *Repository {
	return &Repository{db: db}
}

// ListCategories fetches every category ordered by name.
func (r *Repository) ListCategories(ctx context.Context) ([]ledger.Category, error) {
	query := `
		SELECT id, name, color, type, COALESCE(account_prefix, ''), is_system_category
		FROM categories
		ORDER BY name
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []ledger.Category
	for rows.Next() {
		var c ledger.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Color, &c.Type, &c.AccountPrefix, &c.IsSystemCategory); err != nil {
			return nil, err
		}
		categories = append(categories, c)
	}

	return categories, rows.Err()
}

// CreateCategory inserts a user category. System categories are seeded by
// migration and never created through this path.
func (r *Repository) CreateCategory(ctx context.Context, c *ledger.Category) error {
	if c.IsSystemCategory {
		return ErrSystemCategoryImmutable
	}

	query := `
		INSERT INTO categories (name, color, type, account_prefix, is_system_category)
		VALUES ($1, $2, $3, NULLIF($4, ''), false)
		RETURNING id
	`

	return r.db.QueryRow(ctx, query, c.Name, c.Color, c.Type, c.AccountPrefix).Scan(&c.ID)
}

// UpdateCategory updates a user category's name, color and type. Rows
// flagged as system categories are excluded by the statement itself, so an
// attempted edit reports ErrSystemCategoryImmutable.
func (r *Repository) UpdateCategory(ctx context.Context, c *ledger.Category) error {
	query := `
		UPDATE categories
		SET name = $2, color = $3, type = $4
		WHERE id = $1 AND is_system_category = false
	`

	tag, err := r.db.Exec(ctx, query, c.ID, c.Name, c.Color, c.Type)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrSystemCategoryImmutable
	}
	return nil
}

// ListRules fetches keyword rules ordered by priority, highest first.
func (r *Repository) ListRules(ctx context.Context) ([]KeywordRule, error) {
	query := `
		SELECT id, keyword, category_id, priority
		FROM category_rules
		ORDER BY priority DESC
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rules []KeywordRule
	for rows.Next() {
		var rule KeywordRule
		if err := rows.Scan(&rule.ID, &rule.Keyword, &rule.CategoryID, &rule.Priority); err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}

	return rules, rows.Err()
}

// CreateRule inserts a keyword rule.
func (r *Repository) CreateRule(ctx context.Context, rule *KeywordRule) error {
	query := `
		INSERT INTO category_rules (keyword, category_id, priority)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	return r.db.QueryRow(ctx, query, rule.Keyword, rule.CategoryID, rule.Priority).Scan(&rule.ID)
}

// GetCategoryForAccount resolves an account number to its system category
// ID using the leading-digit rule, entirely in SQL. Mirrors Classify for
// callers that only hold a connection.
func (r *Repository) GetCategoryForAccount(ctx context.Context, accountNum string) (uuid.UUID, error) {
	if accountNum == "" {
		return uuid.Nil, pgx.ErrNoRows
	}

	query := `
		SELECT id FROM categories
		WHERE is_system_category = true AND account_prefix = LEFT($1, 1)
	`

	var id uuid.UUID
	if err := r.db.QueryRow(ctx, query, accountNum).Scan(&id); err != nil {
		return uuid.Nil, fmt.Errorf("resolve category for account %s: %w", accountNum, err)
	}
	return id, nil
}
