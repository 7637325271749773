package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"otomoto_sync/internal/domain"
)

type ListingStore struct {
	db *sqlx.DB
}

func NewListingStore(db *sqlx.DB) *ListingStore {
	return &ListingStore{db: db}
}

// listingRow is the scan target; meta and features live in jsonb columns.
type listingRow struct {
	ID              int64      `db:"id"`
	ExternalID      string     `db:"external_id"`
	Title           string     `db:"title"`
	Body            string     `db:"body"`
	Status          string     `db:"status"`
	ManuallyEdited  bool       `db:"manually_edited"`
	LastSyncedAt    *time.Time `db:"last_synced_at"`
	CategoryTermID  int64      `db:"category_term_id"`
	ConditionTermID int64      `db:"condition_term_id"`
	Meta            []byte     `db:"meta"`
	Features        []byte     `db:"features"`
	CreatedAt       time.Time  `db:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at"`
}

func (r listingRow) toDomain() (*domain.Listing, error) {
	l := &domain.Listing{
		ID:              r.ID,
		ExternalID:      r.ExternalID,
		Title:           r.Title,
		Body:            r.Body,
		Status:          r.Status,
		ManuallyEdited:  r.ManuallyEdited,
		LastSyncedAt:    r.LastSyncedAt,
		CategoryTermID:  r.CategoryTermID,
		ConditionTermID: r.ConditionTermID,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
	if len(r.Meta) > 0 {
		if err := json.Unmarshal(r.Meta, &l.Meta); err != nil {
			return nil, fmt.Errorf("decode listing meta: %w", err)
		}
	}
	if len(r.Features) > 0 {
		if err := json.Unmarshal(r.Features, &l.Features); err != nil {
			return nil, fmt.Errorf("decode listing features: %w", err)
		}
	}
	return l, nil
}

const listingColumns = `id, external_id, title, body, status, manually_edited,
	last_synced_at, category_term_id, condition_term_id, meta, features,
	created_at, updated_at`

// FindByExternalID returns the live (non-trashed) listing mirroring the given
// external id, or nil when none exists.
func (s *ListingStore) FindByExternalID(ctx context.Context, externalID string) (*domain.Listing, error) {
	var row listingRow
	query := `SELECT ` + listingColumns + ` FROM listings WHERE external_id = $1 AND status <> $2 LIMIT 1`

	err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &row, query, externalID, domain.ListingTrashed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return row.toDomain()
}

func (s *ListingStore) Create(ctx context.Context, listing *domain.Listing) (int64, error) {
	meta, features, err := encodeMetaFeatures(listing)
	if err != nil {
		return 0, err
	}

	query := `
		INSERT INTO listings (
			external_id, title, body, status, manually_edited, last_synced_at,
			category_term_id, condition_term_id, meta, features
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`

	var id int64
	err = GetExecutor(ctx, s.db).QueryRowxContext(ctx, query,
		listing.ExternalID,
		listing.Title,
		listing.Body,
		listing.Status,
		listing.ManuallyEdited,
		listing.LastSyncedAt,
		listing.CategoryTermID,
		listing.ConditionTermID,
		meta,
		features,
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

// Update overwrites entity fields and the full tracked meta map. Replacing
// the jsonb document wholesale is what deletes stale tracked keys.
func (s *ListingStore) Update(ctx context.Context, listing *domain.Listing) error {
	meta, features, err := encodeMetaFeatures(listing)
	if err != nil {
		return err
	}

	query := `
		UPDATE listings SET
			title = $2,
			body = $3,
			manually_edited = $4,
			last_synced_at = $5,
			category_term_id = $6,
			condition_term_id = $7,
			meta = $8,
			features = $9,
			updated_at = now()
		WHERE id = $1`

	res, err := GetExecutor(ctx, s.db).ExecContext(ctx, query,
		listing.ID,
		listing.Title,
		listing.Body,
		listing.ManuallyEdited,
		listing.LastSyncedAt,
		listing.CategoryTermID,
		listing.ConditionTermID,
		meta,
		features,
	)
	if err != nil {
		return err
	}
	return requireOneRow(res, "update listing", listing.ID)
}

// SetLastSynced backfills the last-sync timestamp without touching anything else.
func (s *ListingStore) SetLastSynced(ctx context.Context, id int64, t time.Time) error {
	_, err := GetExecutor(ctx, s.db).ExecContext(ctx,
		`UPDATE listings SET last_synced_at = $2, updated_at = now() WHERE id = $1`, id, t)
	return err
}

// Trash soft-deletes a listing.
func (s *ListingStore) Trash(ctx context.Context, id int64) error {
	res, err := GetExecutor(ctx, s.db).ExecContext(ctx,
		`UPDATE listings SET status = $2, updated_at = now() WHERE id = $1`, id, domain.ListingTrashed)
	if err != nil {
		return err
	}
	return requireOneRow(res, "trash listing", id)
}

// PublishedExternalIDs enumerates all published listings carrying an external
// id, keyed by that id. The cleanup sweep walks this map.
func (s *ListingStore) PublishedExternalIDs(ctx context.Context) (map[string]int64, error) {
	rows, err := GetExecutor(ctx, s.db).QueryxContext(ctx,
		`SELECT external_id, id FROM listings WHERE status = $1 AND external_id <> ''`, domain.ListingPublished)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string]int64)
	for rows.Next() {
		var externalID string
		var id int64
		if err := rows.Scan(&externalID, &id); err != nil {
			return nil, err
		}
		result[externalID] = id
	}
	return result, rows.Err()
}

func encodeMetaFeatures(listing *domain.Listing) ([]byte, []byte, error) {
	m := listing.Meta
	if m == nil {
		m = map[string]string{}
	}
	meta, err := json.Marshal(m)
	if err != nil {
		return nil, nil, fmt.Errorf("encode listing meta: %w", err)
	}
	f := listing.Features
	if f == nil {
		f = []string{}
	}
	features, err := json.Marshal(f)
	if err != nil {
		return nil, nil, fmt.Errorf("encode listing features: %w", err)
	}
	return meta, features, nil
}

func requireOneRow(res sql.Result, op string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s: no row with id %d", op, id)
	}
	return nil
}
