package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"

	"otomoto_sync/internal/domain"
)

type AttachmentStore struct {
	db *sqlx.DB
}

func NewAttachmentStore(db *sqlx.DB) *AttachmentStore {
	return &AttachmentStore{db: db}
}

type attachmentRow struct {
	ID        int64  `db:"id"`
	ListingID int64  `db:"listing_id"`
	Position  int    `db:"position"`
	SourceURL string `db:"source_url"`
	FilePath  string `db:"file_path"`
}

// ListByListing returns a listing's gallery ordered by position
// (position 0 is the featured image).
func (s *AttachmentStore) ListByListing(ctx context.Context, listingID int64) ([]domain.Attachment, error) {
	var rows []attachmentRow
	query := `SELECT id, listing_id, position, source_url, file_path
		FROM attachments WHERE listing_id = $1 ORDER BY position`

	if err := sqlx.SelectContext(ctx, GetExecutor(ctx, s.db), &rows, query, listingID); err != nil {
		return nil, err
	}

	attachments := make([]domain.Attachment, 0, len(rows))
	for _, r := range rows {
		attachments = append(attachments, domain.Attachment{
			ID:        r.ID,
			ListingID: r.ListingID,
			Position:  r.Position,
			SourceURL: r.SourceURL,
			FilePath:  r.FilePath,
		})
	}
	return attachments, nil
}

func (s *AttachmentStore) Create(ctx context.Context, att *domain.Attachment) (int64, error) {
	query := `
		INSERT INTO attachments (listing_id, position, source_url, file_path)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	var id int64
	err := GetExecutor(ctx, s.db).QueryRowxContext(ctx, query,
		att.ListingID, att.Position, att.SourceURL, att.FilePath).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

// DeleteByListing drops all attachment rows of a listing and returns the file
// paths of the media they owned so the caller can remove the files.
func (s *AttachmentStore) DeleteByListing(ctx context.Context, listingID int64) ([]string, error) {
	rows, err := GetExecutor(ctx, s.db).QueryxContext(ctx,
		`DELETE FROM attachments WHERE listing_id = $1 RETURNING file_path`, listingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	return paths, rows.Err()
}
