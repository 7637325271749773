// Package service drives synchronization cycles: the background batch chain,
// the manual full-sync and single-advert refresh operations, and the cleanup
// sweep that trashes listings gone from the marketplace.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"otomoto_sync/internal/domain"
)

// Hook names the scheduler fires.
const (
	HookMasterSync   = "sync_master"
	HookProcessBatch = "sync_process_batch"
)

// batchLockName guards batch steps; manual full sync takes the same lock so
// the two can never interleave.
const batchLockName = "sync_batch"

// Notification throttle keys.
const (
	notifyKeyStatusMissing  = "batch_status_missing"
	notifyKeyAPIFailure     = "api_failure_batch"
	notifyKeyCycleCompleted = "cycle_completed_report"
)

type Config struct {
	PageSize        int
	FirstBatchDelay time.Duration
	InterBatchDelay time.Duration
	LockTimeout     time.Duration
	MaxPages        int
	// DevMaxActive caps how many active listings a cycle keeps before it
	// stops early. Zero disables the cap; it exists for development runs
	// against the full marketplace inventory.
	DevMaxActive int
}

// BatchRunner owns the cycle state machine. One instance runs per process;
// the database lock serializes steps across processes.
type BatchRunner struct {
	cfg        Config
	source     Source
	reconciler Reconciler
	listings   ListingStore
	state      CycleStateStore
	locks      Locker
	notifier   Notifier
	scheduler  Scheduler
	logger     *slog.Logger
	now        func() time.Time
}

func NewBatchRunner(
	cfg Config,
	source Source,
	reconciler Reconciler,
	listings ListingStore,
	state CycleStateStore,
	locks Locker,
	notifier Notifier,
	scheduler Scheduler,
	logger *slog.Logger,
) *BatchRunner {
	return &BatchRunner{
		cfg:        cfg,
		source:     source,
		reconciler: reconciler,
		listings:   listings,
		state:      state,
		locks:      locks,
		notifier:   notifier,
		scheduler:  scheduler,
		logger:     logger.With("component", "batch"),
		now:        time.Now,
	}
}

// InitiateCycle starts a fresh cycle: any queued batch steps are cancelled,
// the state singleton is reset to pending at page 1 and the first step is
// queued. An unfinished previous cycle is abandoned, not resumed.
func (b *BatchRunner) InitiateCycle(ctx context.Context) error {
	b.scheduler.CancelAll(HookProcessBatch)

	state := &domain.CycleState{
		Status:            domain.CyclePending,
		CurrentPage:       1,
		ActiveExternalIDs: []string{},
		Errors:            []string{},
		StartedAt:         b.now(),
	}
	if err := b.state.SetCycleState(ctx, state); err != nil {
		return fmt.Errorf("initiate cycle: %w", err)
	}

	b.scheduler.ScheduleOnceAt(b.now().Add(b.cfg.FirstBatchDelay), HookProcessBatch)
	b.logger.Info("cycle initiated", "first_batch_in", b.cfg.FirstBatchDelay)
	return nil
}

// ProcessBatchStep executes one batch: fetch a page, reconcile its adverts,
// advance the cursor, then either queue the next step or finish the cycle.
// A held lock means another step is in flight; this invocation quietly
// yields, the running holder will queue the continuation itself.
func (b *BatchRunner) ProcessBatchStep(ctx context.Context) {
	owner := uuid.NewString()
	acquired, err := b.locks.Acquire(ctx, batchLockName, owner, b.cfg.LockTimeout)
	if err != nil {
		b.logger.Error("batch lock acquisition failed", "error", err)
		return
	}
	if !acquired {
		b.logger.Info("batch step skipped, lock held")
		return
	}
	defer func() {
		if err := b.locks.Release(ctx, batchLockName, owner); err != nil {
			b.logger.Warn("batch lock release failed", "error", err)
		}
	}()

	state, err := b.state.GetCycleState(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrCycleStateInvalid) {
			b.failMissingState(ctx, err)
			return
		}
		b.logger.Error("failed to load cycle state", "error", err)
		return
	}

	if state.Terminal() {
		b.logger.Info("batch step skipped, cycle already finished", "status", state.Status)
		return
	}
	state.Status = domain.CycleRunning

	adverts, err := b.source.ListAdverts(ctx, state.CurrentPage, b.cfg.PageSize)
	if err != nil {
		b.failAPIFetch(ctx, state, err)
		return
	}

	now := b.now()
	state.LastBatchAt = &now
	state.Summary.PagesFetched++
	state.Summary.AdvertsSeen += len(adverts)

	capped := b.processPage(ctx, state, adverts)

	endOfData := len(adverts) == 0 || len(adverts) < b.cfg.PageSize
	outOfPages := b.cfg.MaxPages > 0 && state.CurrentPage >= b.cfg.MaxPages
	state.CurrentPage++

	if endOfData || outOfPages || capped {
		b.finishCycle(ctx, state)
		return
	}

	if err := b.state.SetCycleState(ctx, state); err != nil {
		b.logger.Error("failed to persist cycle state", "error", err)
		return
	}
	b.scheduler.ScheduleOnceAt(b.now().Add(b.cfg.InterBatchDelay), HookProcessBatch)
	b.logger.Info("batch step done",
		"page", state.CurrentPage-1,
		"adverts", len(adverts),
		"next_in", b.cfg.InterBatchDelay,
	)
}

// processPage reconciles one page of adverts into the state. Returns true
// when the development cap on active listings was hit.
func (b *BatchRunner) processPage(ctx context.Context, state *domain.CycleState, adverts []domain.Advert) bool {
	for i := range adverts {
		adv := &adverts[i]

		outcome, err := b.reconciler.Reconcile(ctx, adv, false)
		state.Summary.Apply(outcome)
		if err != nil {
			state.Errors = append(state.Errors, err.Error())
			b.logger.Warn("advert reconcile failed",
				"external_id", adv.ID, "outcome", string(outcome), "error", err)
		}
		if outcome.Active() {
			state.MarkActive(adv.ID)
		}

		if b.cfg.DevMaxActive > 0 && len(state.ActiveExternalIDs) >= b.cfg.DevMaxActive {
			b.logger.Warn("development cap on active listings reached",
				"cap", b.cfg.DevMaxActive)
			return true
		}
	}
	return false
}

// finishCycle runs the cleanup sweep and marks the cycle completed.
func (b *BatchRunner) finishCycle(ctx context.Context, state *domain.CycleState) {
	b.cleanup(ctx, state)

	now := b.now()
	state.Status = domain.CycleCompleted
	state.CompletedAt = &now

	if err := b.state.SetCycleState(ctx, state); err != nil {
		b.logger.Error("failed to persist completed cycle state", "error", err)
		return
	}

	b.logger.Info("cycle completed",
		"pages", state.Summary.PagesFetched,
		"created", state.Summary.Created,
		"updated", state.Summary.Updated,
		"trashed", state.Summary.Trashed,
		"errors", state.Summary.Errors,
	)

	body := cycleReport(state)
	if err := b.notifier.Send(ctx, "Synchronization cycle completed", body, notifyKeyCycleCompleted); err != nil {
		b.logger.Warn("completion notification failed", "error", err)
	}
}

// cleanup trashes published listings whose external ids the finished cycle
// never confirmed. A cycle that confirmed nothing skips the sweep: trashing
// the whole catalog because the API returned garbage is worse than a stale
// listing or two.
func (b *BatchRunner) cleanup(ctx context.Context, state *domain.CycleState) {
	if len(state.ActiveExternalIDs) == 0 {
		b.logger.Warn("cleanup skipped, cycle confirmed no active adverts")
		return
	}

	published, err := b.listings.PublishedExternalIDs(ctx)
	if err != nil {
		state.Errors = append(state.Errors, fmt.Sprintf("cleanup: list published listings: %v", err))
		b.logger.Error("cleanup sweep failed", "error", err)
		return
	}

	active := make(map[string]bool, len(state.ActiveExternalIDs))
	for _, id := range state.ActiveExternalIDs {
		active[id] = true
	}

	for externalID, listingID := range published {
		if active[externalID] {
			continue
		}
		if err := b.listings.Trash(ctx, listingID); err != nil {
			state.Errors = append(state.Errors, fmt.Sprintf("cleanup: trash listing %d: %v", listingID, err))
			state.Summary.Errors++
			b.logger.Warn("failed to trash absent listing",
				"listing_id", listingID, "external_id", externalID, "error", err)
			continue
		}
		state.Summary.Trashed++
		b.logger.Info("trashed absent listing",
			"listing_id", listingID, "external_id", externalID)
	}
}

func (b *BatchRunner) failMissingState(ctx context.Context, cause error) {
	b.logger.Error("cycle state missing or malformed", "error", cause)

	now := b.now()
	state := &domain.CycleState{
		Status:      domain.CycleError,
		CurrentPage: 1,
		Errors:      []string{cause.Error()},
		StartedAt:   now,
		CompletedAt: &now,
	}
	if err := b.state.SetCycleState(ctx, state); err != nil {
		b.logger.Error("failed to persist error cycle state", "error", err)
	}

	body := fmt.Sprintf("A batch step fired but found no usable cycle state: %v. The cycle was aborted; the next scheduled master sync will start a fresh one.", cause)
	if err := b.notifier.Send(ctx, "Synchronization aborted: cycle state missing", body, notifyKeyStatusMissing); err != nil {
		b.logger.Warn("missing-state notification failed", "error", err)
	}
}

// failAPIFetch ends the cycle on a page-fetch failure. No retry: the failure
// is recorded, the operator is notified, and the next master sync starts over.
func (b *BatchRunner) failAPIFetch(ctx context.Context, state *domain.CycleState, cause error) {
	b.logger.Error("advert page fetch failed", "page", state.CurrentPage, "error", cause)

	now := b.now()
	state.Status = domain.CycleError
	state.CompletedAt = &now
	state.Errors = append(state.Errors, fmt.Sprintf("fetch page %d: %v", state.CurrentPage, cause))

	if err := b.state.SetCycleState(ctx, state); err != nil {
		b.logger.Error("failed to persist error cycle state", "error", err)
	}

	body := fmt.Sprintf("Fetching adverts page %d failed: %v. The cycle was aborted without retrying; the next scheduled master sync will start a fresh one.", state.CurrentPage, cause)
	if err := b.notifier.Send(ctx, "Synchronization aborted: marketplace API failure", body, notifyKeyAPIFailure); err != nil {
		b.logger.Warn("api-failure notification failed", "error", err)
	}
}

func cycleReport(state *domain.CycleState) string {
	s := state.Summary
	report := fmt.Sprintf(
		"Pages fetched: %d\nAdverts seen: %d\nCreated: %d\nUpdated: %d\nTrashed: %d\nSkipped (no changes): %d\nSkipped (manual edits): %d\nSkipped (inactive): %d\nSkipped (wrong condition): %d\nErrors: %d\n",
		s.PagesFetched, s.AdvertsSeen, s.Created, s.Updated, s.Trashed,
		s.SkippedNoChange, s.SkippedManualEdit, s.SkippedInactive, s.SkippedWrongCondition, s.Errors,
	)
	if len(state.Errors) > 0 {
		report += "\nError details:\n"
		for _, e := range state.Errors {
			report += "- " + e + "\n"
		}
	}
	return report
}
