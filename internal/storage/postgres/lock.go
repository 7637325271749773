package postgres

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
)

// LockStore implements the time-boxed batch lock. A lock row self-expires:
// an expired row can be taken over by any caller, so a crashed step can never
// deadlock the pipeline.
type LockStore struct {
	db *sqlx.DB
}

func NewLockStore(db *sqlx.DB) *LockStore {
	return &LockStore{db: db}
}

// Acquire attempts to take the named lock for the given owner token. It
// succeeds when no live lock row exists or the existing one has expired.
func (s *LockStore) Acquire(ctx context.Context, name, owner string, ttl time.Duration) (bool, error) {
	query := `
		INSERT INTO locks (name, owner, expires_at)
		VALUES ($1, $2, now() + $3 * interval '1 second')
		ON CONFLICT (name) DO UPDATE
			SET owner = EXCLUDED.owner, expires_at = EXCLUDED.expires_at
			WHERE locks.expires_at < now()`

	res, err := s.db.ExecContext(ctx, query, name, owner, ttl.Seconds())
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// Release frees the lock, but only for the owner that acquired it; a stale
// holder releasing after takeover is a no-op.
func (s *LockStore) Release(ctx context.Context, name, owner string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM locks WHERE name = $1 AND owner = $2`, name, owner)
	return err
}
