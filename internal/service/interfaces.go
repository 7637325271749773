package service

import (
	"context"
	"time"

	"otomoto_sync/internal/domain"
)

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

// Source is the marketplace read API the sync engine consumes.
type Source interface {
	ListAdverts(ctx context.Context, page, limit int) ([]domain.Advert, error)
	GetAdvert(ctx context.Context, externalID string) (*domain.Advert, error)
}

// Reconciler applies one advert to the local catalog.
type Reconciler interface {
	Reconcile(ctx context.Context, adv *domain.Advert, force bool) (domain.Outcome, error)
}

// ListingStore is the slice of listing storage the cleanup sweep needs.
type ListingStore interface {
	PublishedExternalIDs(ctx context.Context) (map[string]int64, error)
	Trash(ctx context.Context, id int64) error
}

// CycleStateStore persists the cycle state singleton.
type CycleStateStore interface {
	GetCycleState(ctx context.Context) (*domain.CycleState, error)
	SetCycleState(ctx context.Context, state *domain.CycleState) error
}

// Locker provides the time-boxed batch lock.
type Locker interface {
	Acquire(ctx context.Context, name, owner string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, name, owner string) error
}

// Notifier delivers throttled operator notifications.
type Notifier interface {
	Send(ctx context.Context, subject, body, key string) error
}

// Scheduler queues hook firings for the batch chain and recurring cycles.
type Scheduler interface {
	ScheduleOnceAt(at time.Time, hook string)
	ScheduleRecurring(interval time.Duration, hook string)
	CancelAll(hook string)
}
