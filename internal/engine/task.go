package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// TickSource produces the tick channel a Task runs on, plus a stop
// function. The default wraps time.NewTicker; tests inject a manual
// channel for deterministic stepping.
type TickSource func(interval time.Duration) (<-chan time.Time, func())

func tickerSource(interval time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(interval)
	return t.C, t.Stop
}

// Task is a named cancellable periodic job. The two engine tasks
// (hazard tick and mission tick) are scheduled independently: aborting
// a mission stops only the mission task, never the hazard task.
type Task struct {
	name     string
	interval time.Duration
	fn       func()
	source   TickSource
	wg       sync.WaitGroup
}

func NewTask(name string, interval time.Duration, fn func()) *Task {
	return &Task{
		name:     name,
		interval: interval,
		fn:       fn,
		source:   tickerSource,
	}
}

// WithTickSource replaces the tick source. Must be called before Start.
func (t *Task) WithTickSource(source TickSource) *Task {
	t.source = source
	return t
}

func (t *Task) Start(ctx context.Context) {
	t.wg.Add(1)
	go t.run(ctx)
}

func (t *Task) run(ctx context.Context) {
	defer t.wg.Done()
	slog.Info("task starting", "task", t.name, "interval", t.interval)

	ticks, stop := t.source(t.interval)
	defer stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("task shutting down", "task", t.name)
			return
		case _, ok := <-ticks:
			if !ok {
				return
			}
			t.fn()
		}
	}
}

// Wait blocks until the task goroutine has exited after its context
// was cancelled.
func (t *Task) Wait() {
	t.wg.Wait()
}
