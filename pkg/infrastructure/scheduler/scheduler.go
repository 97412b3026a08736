package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Task is a unit of periodic work.
type Task interface {
	Name() string
	Run(ctx context.Context) error
}

type funcTask struct {
	name string
	fn   func(ctx context.Context) error
}

func (t funcTask) Name() string                  { return t.name }
func (t funcTask) Run(ctx context.Context) error { return t.fn(ctx) }

// NewTask wraps fn as a Task.
func NewTask(name string, fn func(ctx context.Context) error) Task {
	return funcTask{name: name, fn: fn}
}

// Scheduler runs registered tasks at their interval.
type Scheduler interface {
	Every(interval time.Duration, task Task) error
	Start(ctx context.Context)
	Stop()
}

type entry struct {
	interval time.Duration
	task     Task
}

func validate(interval time.Duration, task Task) error {
	if task == nil {
		return errors.New("task is required")
	}
	if interval <= 0 {
		return fmt.Errorf("task %s: interval must be positive, got %s", task.Name(), interval)
	}
	return nil
}

// TickerScheduler runs each task on its own ticker until Stop or the start
// context is done. A task never overlaps with itself.
type TickerScheduler struct {
	logger  *zap.Logger
	mu      sync.Mutex
	entries []entry
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

var _ Scheduler = (*TickerScheduler)(nil)

func NewTickerScheduler(logger *zap.Logger) *TickerScheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TickerScheduler{logger: logger}
}

// Every registers task. Tasks registered after Start are not run.
func (s *TickerScheduler) Every(interval time.Duration, task Task) error {
	if err := validate(interval, task); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry{interval: interval, task: task})
	return nil
}

func (s *TickerScheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return
	}
	ctx, s.cancel = context.WithCancel(ctx)
	for _, e := range s.entries {
		s.wg.Add(1)
		go s.loop(ctx, e)
	}
}

func (s *TickerScheduler) loop(ctx context.Context, e entry) {
	defer s.wg.Done()
	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runTask(ctx, s.logger, e.task)
		}
	}
}

// Stop cancels every loop and waits for running tasks to return.
func (s *TickerScheduler) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.cancel = nil
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.wg.Wait()
}

func runTask(ctx context.Context, logger *zap.Logger, task Task) error {
	start := time.Now()
	err := task.Run(ctx)
	if err != nil {
		logger.Warn("scheduled task failed", zap.String("task", task.Name()), zap.Error(err))
		return err
	}
	logger.Debug("scheduled task finished", zap.String("task", task.Name()), zap.Duration("took", time.Since(start)))
	return nil
}

// ManualScheduler runs tasks only when Tick is called.
type ManualScheduler struct {
	logger  *zap.Logger
	mu      sync.Mutex
	entries []entry
}

var _ Scheduler = (*ManualScheduler)(nil)

func NewManualScheduler(logger *zap.Logger) *ManualScheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ManualScheduler{logger: logger}
}

func (s *ManualScheduler) Every(interval time.Duration, task Task) error {
	if err := validate(interval, task); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry{interval: interval, task: task})
	return nil
}

func (s *ManualScheduler) Start(context.Context) {}

func (s *ManualScheduler) Stop() {}

// Tick runs every registered task once in registration order and joins their
// errors.
func (s *ManualScheduler) Tick(ctx context.Context) error {
	s.mu.Lock()
	entries := append([]entry(nil), s.entries...)
	s.mu.Unlock()

	var errs []error
	for _, e := range entries {
		if err := runTask(ctx, s.logger, e.task); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", e.task.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// Tasks lists the registered task names.
func (s *ManualScheduler) Tasks() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.entries))
	for _, e := range s.entries {
		names = append(names, e.task.Name())
	}
	return names
}
