// Package tasks runs fire-and-forget side effects outside the request that
// triggered them.
package tasks

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// DefaultTimeout bounds a single detached task.
const DefaultTimeout = 30 * time.Second

// Runner launches detached tasks. A failing task is logged and otherwise
// ignored; it never reaches the caller.
type Runner struct {
	log     logrus.FieldLogger
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewRunner(log logrus.FieldLogger, timeout time.Duration) *Runner {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Runner{log: log, timeout: timeout}
}

// Go runs fn in its own goroutine with a fresh context, detached from any
// request context.
func (r *Runner) Go(name string, fn func(ctx context.Context) error) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()

		if err := r.run(ctx, fn); err != nil {
			r.log.WithError(err).WithField("task", name).Warn("background task failed")
		}
	}()
}

// Wait blocks until every launched task has returned.
func (r *Runner) Wait() {
	r.wg.Wait()
}

func (r *Runner) run(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
		}
	}()
	return fn(ctx)
}
