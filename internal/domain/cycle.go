package domain

import (
	"errors"
	"fmt"
	"time"
)

// Outcome of reconciling one advert.
type Outcome string

const (
	OutcomeCreated               Outcome = "created"
	OutcomeUpdated               Outcome = "updated"
	OutcomeSkippedInactive       Outcome = "skipped_inactive"
	OutcomeSkippedWrongCondition Outcome = "skipped_wrong_condition"
	OutcomeSkippedNoChange       Outcome = "skipped_no_changes"
	OutcomeSkippedManualEdit     Outcome = "skipped_manual_edit"
	OutcomeErrorMissingID        Outcome = "error_missing_id"
	OutcomeErrorMissingTitle     Outcome = "error_missing_title"
	OutcomeErrorCreating         Outcome = "error_creating"
	OutcomeErrorUpdating         Outcome = "error_updating"
)

// Active reports whether the outcome confirms the advert as present and
// active this cycle (feeds the cleanup sweep's keep-set). Unchanged and
// manually-edited listings count: their adverts are still live.
func (o Outcome) Active() bool {
	switch o {
	case OutcomeCreated, OutcomeUpdated, OutcomeSkippedNoChange, OutcomeSkippedManualEdit:
		return true
	}
	return false
}

// IsError reports whether the outcome counts against the error counter.
func (o Outcome) IsError() bool {
	switch o {
	case OutcomeErrorMissingID, OutcomeErrorMissingTitle, OutcomeErrorCreating, OutcomeErrorUpdating:
		return true
	}
	return false
}

// Cycle statuses. completed and error are terminal until a new cycle is
// explicitly initiated.
const (
	CyclePending   = "pending"
	CycleRunning   = "running"
	CycleCompleted = "completed"
	CycleError     = "error"
)

// ErrCycleStateInvalid is returned when the persisted cycle state is absent
// or fails validation; the batch step treats it as the missing-state error.
var ErrCycleStateInvalid = errors.New("cycle state missing or malformed")

// CycleState is the persisted singleton tracking one synchronization cycle.
type CycleState struct {
	Status            string       `json:"status"`
	CurrentPage       int          `json:"current_page"`
	ActiveExternalIDs []string     `json:"active_external_ids"`
	Errors            []string     `json:"errors"`
	Summary           CycleSummary `json:"summary"`
	StartedAt         time.Time    `json:"started_at"`
	LastBatchAt       *time.Time   `json:"last_batch_at,omitempty"`
	CompletedAt       *time.Time   `json:"completed_at,omitempty"`
}

func (s *CycleState) Validate() error {
	switch s.Status {
	case CyclePending, CycleRunning, CycleCompleted, CycleError:
	default:
		return fmt.Errorf("%w: unknown status %q", ErrCycleStateInvalid, s.Status)
	}
	if s.CurrentPage < 1 {
		return fmt.Errorf("%w: page cursor %d", ErrCycleStateInvalid, s.CurrentPage)
	}
	return nil
}

// Terminal reports whether the cycle is finished, one way or the other.
func (s *CycleState) Terminal() bool {
	return s.Status == CycleCompleted || s.Status == CycleError
}

// MarkActive records an external id confirmed present-and-active, once.
func (s *CycleState) MarkActive(externalID string) {
	for _, id := range s.ActiveExternalIDs {
		if id == externalID {
			return
		}
	}
	s.ActiveExternalIDs = append(s.ActiveExternalIDs, externalID)
}

// CycleSummary accumulates per-record counters across all batch steps.
type CycleSummary struct {
	PagesFetched          int `json:"pages_fetched"`
	AdvertsSeen           int `json:"adverts_seen"`
	Created               int `json:"created"`
	Updated               int `json:"updated"`
	SkippedWrongCondition int `json:"skipped_wrong_condition"`
	SkippedInactive       int `json:"skipped_inactive"`
	SkippedNoChange       int `json:"skipped_no_changes"`
	SkippedManualEdit     int `json:"skipped_manual_edit"`
	Errors                int `json:"errors"`
	Trashed               int `json:"trashed"`
}

// Apply folds one reconcile outcome into the counters.
func (c *CycleSummary) Apply(o Outcome) {
	switch o {
	case OutcomeCreated:
		c.Created++
	case OutcomeUpdated:
		c.Updated++
	case OutcomeSkippedInactive:
		c.SkippedInactive++
	case OutcomeSkippedWrongCondition:
		c.SkippedWrongCondition++
	case OutcomeSkippedNoChange:
		c.SkippedNoChange++
	case OutcomeSkippedManualEdit:
		c.SkippedManualEdit++
	}
	if o.IsError() {
		c.Errors++
	}
}

// OperationResult is returned by the manual operations for direct display.
type OperationResult struct {
	Status  string       `json:"status"` // success | partial_error | error
	Message string       `json:"message"`
	Summary CycleSummary `json:"summary"`
}
