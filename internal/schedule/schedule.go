// Package schedule runs named hooks at requested times. Callers register a
// function under a hook name and then schedule one-shot or recurring firings
// of that hook; the package owns the timers so a hook's pending firings can
// be cancelled as a group.
package schedule

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// HookFunc is the work attached to a hook name.
type HookFunc func(ctx context.Context)

type Scheduler struct {
	logger *slog.Logger

	mu        sync.Mutex
	hooks     map[string]HookFunc
	timers    map[string][]*time.Timer
	recurring map[string][]chan struct{}

	ctx     context.Context
	started bool
	wg      sync.WaitGroup
}

func NewScheduler(logger *slog.Logger) *Scheduler {
	return &Scheduler{
		logger:    logger.With("component", "scheduler"),
		hooks:     make(map[string]HookFunc),
		timers:    make(map[string][]*time.Timer),
		recurring: make(map[string][]chan struct{}),
	}
}

// Register attaches fn to the hook name. Scheduling an unregistered hook is
// an error at fire time, not at schedule time.
func (s *Scheduler) Register(hook string, fn HookFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hooks[hook] = fn
}

// Start supplies the context passed to fired hooks. Firings requested before
// Start are held until it is called.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	s.ctx = ctx
	s.started = true
	s.mu.Unlock()
	s.logger.Info("scheduler started")
}

// ScheduleOnceAt fires the hook once at the given time. Times in the past
// fire immediately.
func (s *Scheduler) ScheduleOnceAt(at time.Time, hook string) {
	delay := time.Until(at)
	if delay < 0 {
		delay = 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var timer *time.Timer
	timer = time.AfterFunc(delay, func() {
		s.removeTimer(hook, timer)
		s.fire(hook)
	})
	s.timers[hook] = append(s.timers[hook], timer)
	s.logger.Debug("scheduled one-shot", "hook", hook, "at", at)
}

// ScheduleRecurring fires the hook every interval until cancelled.
func (s *Scheduler) ScheduleRecurring(interval time.Duration, hook string) {
	stop := make(chan struct{})

	s.mu.Lock()
	s.recurring[hook] = append(s.recurring[hook], stop)
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.fire(hook)
			case <-stop:
				return
			}
		}
	}()
	s.logger.Debug("scheduled recurring", "hook", hook, "interval", interval)
}

// CancelAll drops every pending one-shot and recurring firing of the hook.
// The registered function stays registered.
func (s *Scheduler) CancelAll(hook string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range s.timers[hook] {
		t.Stop()
	}
	delete(s.timers, hook)

	for _, stop := range s.recurring[hook] {
		close(stop)
	}
	delete(s.recurring, hook)
}

// Stop cancels everything and waits for in-flight recurring goroutines.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	for hook, timers := range s.timers {
		for _, t := range timers {
			t.Stop()
		}
		delete(s.timers, hook)
	}
	for hook, stops := range s.recurring {
		for _, stop := range stops {
			close(stop)
		}
		delete(s.recurring, hook)
	}
	s.mu.Unlock()
	s.wg.Wait()
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) fire(hook string) {
	s.mu.Lock()
	fn, ok := s.hooks[hook]
	ctx := s.ctx
	started := s.started
	s.mu.Unlock()

	if !started {
		s.logger.Warn("hook fired before scheduler start", "hook", hook)
		return
	}
	if !ok {
		s.logger.Error("fired hook has no registered function", "hook", hook)
		return
	}
	if ctx.Err() != nil {
		return
	}
	fn(ctx)
}

func (s *Scheduler) removeTimer(hook string, timer *time.Timer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	timers := s.timers[hook]
	for i, t := range timers {
		if t == timer {
			s.timers[hook] = append(timers[:i], timers[i+1:]...)
			return
		}
	}
}
