package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"otomoto_sync/internal/domain"
)

// RunFullSync walks every advert page synchronously, reconciles each record
// and finishes with the cleanup sweep. It takes the batch lock for its whole
// duration, so a scheduled batch step firing mid-run yields instead of
// interleaving. force pushes updates through unchanged and manually-edited
// listings.
func (b *BatchRunner) RunFullSync(ctx context.Context, force bool) domain.OperationResult {
	owner := uuid.NewString()
	acquired, err := b.locks.Acquire(ctx, batchLockName, owner, b.cfg.LockTimeout)
	if err != nil {
		return domain.OperationResult{
			Status:  "error",
			Message: fmt.Sprintf("acquire sync lock: %v", err),
		}
	}
	if !acquired {
		return domain.OperationResult{
			Status:  "error",
			Message: "sync already running",
		}
	}
	defer func() {
		if err := b.locks.Release(ctx, batchLockName, owner); err != nil {
			b.logger.Warn("sync lock release failed", "error", err)
		}
	}()

	b.scheduler.CancelAll(HookProcessBatch)
	b.logger.Info("manual full sync started", "force", force)

	state := &domain.CycleState{
		Status:            domain.CycleRunning,
		CurrentPage:       1,
		ActiveExternalIDs: []string{},
		Errors:            []string{},
		StartedAt:         b.now(),
	}

	for {
		adverts, err := b.source.ListAdverts(ctx, state.CurrentPage, b.cfg.PageSize)
		if err != nil {
			state.Errors = append(state.Errors, fmt.Sprintf("fetch page %d: %v", state.CurrentPage, err))
			b.persistFinished(ctx, state, domain.CycleError)
			return domain.OperationResult{
				Status:  "error",
				Message: fmt.Sprintf("fetch adverts page %d: %v", state.CurrentPage, err),
				Summary: state.Summary,
			}
		}

		state.Summary.PagesFetched++
		state.Summary.AdvertsSeen += len(adverts)

		capped := false
		for i := range adverts {
			adv := &adverts[i]
			outcome, err := b.reconciler.Reconcile(ctx, adv, force)
			state.Summary.Apply(outcome)
			if err != nil {
				state.Errors = append(state.Errors, err.Error())
			}
			if outcome.Active() {
				state.MarkActive(adv.ID)
			}
			if b.cfg.DevMaxActive > 0 && len(state.ActiveExternalIDs) >= b.cfg.DevMaxActive {
				capped = true
				break
			}
		}

		endOfData := len(adverts) == 0 || len(adverts) < b.cfg.PageSize
		outOfPages := b.cfg.MaxPages > 0 && state.CurrentPage >= b.cfg.MaxPages
		state.CurrentPage++
		if endOfData || outOfPages || capped {
			break
		}
	}

	b.cleanup(ctx, state)
	b.persistFinished(ctx, state, domain.CycleCompleted)

	b.logger.Info("manual full sync finished",
		"created", state.Summary.Created,
		"updated", state.Summary.Updated,
		"trashed", state.Summary.Trashed,
		"errors", state.Summary.Errors,
	)

	result := domain.OperationResult{
		Status:  "success",
		Message: "synchronization completed",
		Summary: state.Summary,
	}
	if len(state.Errors) > 0 {
		result.Status = "partial_error"
		result.Message = fmt.Sprintf("synchronization completed with %d errors", len(state.Errors))
	}
	return result
}

// RefreshOne re-fetches a single advert by external id and reconciles it.
func (b *BatchRunner) RefreshOne(ctx context.Context, externalID string, force bool) domain.OperationResult {
	adv, err := b.source.GetAdvert(ctx, externalID)
	if err != nil {
		return domain.OperationResult{
			Status:  "error",
			Message: fmt.Sprintf("fetch advert %s: %v", externalID, err),
		}
	}

	outcome, err := b.reconciler.Reconcile(ctx, adv, force)
	var summary domain.CycleSummary
	summary.AdvertsSeen = 1
	summary.Apply(outcome)

	if err != nil {
		return domain.OperationResult{
			Status:  "error",
			Message: err.Error(),
			Summary: summary,
		}
	}
	return domain.OperationResult{
		Status:  "success",
		Message: string(outcome),
		Summary: summary,
	}
}

// CycleStatus reports the persisted cycle state for the status endpoint.
func (b *BatchRunner) CycleStatus(ctx context.Context) (*domain.CycleState, error) {
	return b.state.GetCycleState(ctx)
}

func (b *BatchRunner) persistFinished(ctx context.Context, state *domain.CycleState, status string) {
	now := b.now()
	state.Status = status
	state.CompletedAt = &now
	if err := b.state.SetCycleState(ctx, state); err != nil {
		b.logger.Error("failed to persist cycle state", "error", err)
	}
}
