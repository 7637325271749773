package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"otomoto_sync/internal/domain"
)

// cycleStateOption is the key under which the sync cycle singleton lives.
const cycleStateOption = "sync_cycle_state"

// OptionStore is the key-value option storage: JSON documents keyed by name.
type OptionStore struct {
	db *sqlx.DB
}

func NewOptionStore(db *sqlx.DB) *OptionStore {
	return &OptionStore{db: db}
}

// Get decodes the named option into out. Returns false when the option does
// not exist.
func (s *OptionStore) Get(ctx context.Context, name string, out any) (bool, error) {
	var value []byte
	err := sqlx.GetContext(ctx, GetExecutor(ctx, s.db), &value,
		`SELECT value FROM options WHERE name = $1`, name)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(value, out); err != nil {
		return false, fmt.Errorf("decode option %q: %w", name, err)
	}
	return true, nil
}

func (s *OptionStore) Set(ctx context.Context, name string, value any) error {
	encoded, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode option %q: %w", name, err)
	}
	_, err = GetExecutor(ctx, s.db).ExecContext(ctx, `
		INSERT INTO options (name, value) VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
		name, encoded)
	return err
}

func (s *OptionStore) Delete(ctx context.Context, name string) error {
	_, err := GetExecutor(ctx, s.db).ExecContext(ctx, `DELETE FROM options WHERE name = $1`, name)
	return err
}

// GetCycleState loads and validates the persisted cycle state. An absent or
// malformed document surfaces as domain.ErrCycleStateInvalid so the batch
// step can take its documented missing-state path.
func (s *OptionStore) GetCycleState(ctx context.Context) (*domain.CycleState, error) {
	var state domain.CycleState
	found, err := s.Get(ctx, cycleStateOption, &state)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCycleStateInvalid, err)
	}
	if !found {
		return nil, domain.ErrCycleStateInvalid
	}
	if err := state.Validate(); err != nil {
		return nil, err
	}
	return &state, nil
}

func (s *OptionStore) SetCycleState(ctx context.Context, state *domain.CycleState) error {
	return s.Set(ctx, cycleStateOption, state)
}
