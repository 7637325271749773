package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"otomoto_sync/internal/domain"
)

type TermStore struct {
	db *sqlx.DB
}

func NewTermStore(db *sqlx.DB) *TermStore {
	return &TermStore{db: db}
}

type termRow struct {
	ID                   int64  `db:"id"`
	Taxonomy             string `db:"taxonomy"`
	Name                 string `db:"name"`
	Slug                 string `db:"slug"`
	ExternalCategoryID   string `db:"external_category_id"`
	ExternalCategoryCode string `db:"external_category_code"`
}

func (r termRow) toDomain() *domain.Term {
	return &domain.Term{
		ID:                   r.ID,
		Taxonomy:             r.Taxonomy,
		Name:                 r.Name,
		Slug:                 r.Slug,
		ExternalCategoryID:   r.ExternalCategoryID,
		ExternalCategoryCode: r.ExternalCategoryCode,
	}
}

const termColumns = `id, taxonomy, name, slug, external_category_id, external_category_code`

// FindByExternalCategoryID looks a term up by its external category id
// metadata, never by name or slug. Returns nil when unmapped.
func (s *TermStore) FindByExternalCategoryID(ctx context.Context, taxonomy, externalID string) (*domain.Term, error) {
	var row termRow
	query := `SELECT ` + termColumns + ` FROM terms WHERE taxonomy = $1 AND external_category_id = $2 LIMIT 1`

	err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &row, query, taxonomy, externalID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return row.toDomain(), nil
}

// FindBySlug returns the term occupying a slug, or nil.
func (s *TermStore) FindBySlug(ctx context.Context, taxonomy, slug string) (*domain.Term, error) {
	var row termRow
	query := `SELECT ` + termColumns + ` FROM terms WHERE taxonomy = $1 AND slug = $2 LIMIT 1`

	err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &row, query, taxonomy, slug)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return row.toDomain(), nil
}

func (s *TermStore) Create(ctx context.Context, term *domain.Term) (int64, error) {
	query := `
		INSERT INTO terms (taxonomy, name, slug, external_category_id, external_category_code)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	var id int64
	err := GetExecutor(ctx, s.db).QueryRowxContext(ctx, query,
		term.Taxonomy,
		term.Name,
		term.Slug,
		term.ExternalCategoryID,
		term.ExternalCategoryCode,
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

// Ensure idempotently gets or creates a term by slug. Used for the shared
// fallback category and the fixed condition terms, which carry no external id.
func (s *TermStore) Ensure(ctx context.Context, taxonomy, name, slug string) (int64, error) {
	existing, err := s.FindBySlug(ctx, taxonomy, slug)
	if err != nil {
		return 0, err
	}
	if existing != nil {
		return existing.ID, nil
	}

	query := `
		INSERT INTO terms (taxonomy, name, slug)
		VALUES ($1, $2, $3)
		ON CONFLICT (taxonomy, slug) DO UPDATE SET name = terms.name
		RETURNING id`

	var id int64
	err = GetExecutor(ctx, s.db).QueryRowxContext(ctx, query, taxonomy, name, slug).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}
