package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Task is deferred work. The context is detached from the request that
// scheduled it.
type Task func(ctx context.Context) error

// Scheduler runs a task once after a delay. After reports whether the task
// was accepted.
type Scheduler interface {
	After(delay time.Duration, name string, task Task) bool
}

// DeferredRunner schedules fire-and-forget tasks. Scheduled tasks cannot be
// cancelled. Once Shutdown has started, After drops new tasks.
type DeferredRunner struct {
	mu       sync.Mutex
	draining bool
	wg       sync.WaitGroup
	timeout  time.Duration
	logger   *zap.Logger
}

// NewDeferredRunner builds a runner whose tasks each get timeout to complete.
func NewDeferredRunner(timeout time.Duration, logger *zap.Logger) *DeferredRunner {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &DeferredRunner{timeout: timeout, logger: logger}
}

// After runs task once delay has elapsed. It reports false, and never runs
// task, when the runner is shutting down.
func (r *DeferredRunner) After(delay time.Duration, name string, task Task) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.draining {
		r.logger.Warn("deferred task dropped during shutdown", zap.String("task", name))
		return false
	}
	r.wg.Add(1)
	time.AfterFunc(delay, func() {
		defer r.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()
		if err := task(ctx); err != nil {
			r.logger.Error("deferred task failed", zap.String("task", name), zap.Error(err))
			return
		}
		r.logger.Debug("deferred task done", zap.String("task", name))
	})
	return true
}

// Wait blocks until all tasks scheduled so far have run. It must not race
// with After; use Shutdown when other goroutines may still schedule.
func (r *DeferredRunner) Wait() {
	r.wg.Wait()
}

// Shutdown stops accepting tasks and waits for the scheduled ones.
func (r *DeferredRunner) Shutdown() {
	r.mu.Lock()
	r.draining = true
	r.mu.Unlock()
	r.wg.Wait()
}
