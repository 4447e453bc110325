// Package worker runs the API's periodic housekeeping off the request path.
package worker

import (
	"context"
	"log/slog"
	"time"
)

// Task removes stale state and reports how many items it dropped.
type Task struct {
	Name  string
	Sweep func() int
}

type Config struct {
	Interval time.Duration
}

type Janitor struct {
	cfg   Config
	log   *slog.Logger
	tasks []Task
}

func New(cfg Config, log *slog.Logger, tasks ...Task) *Janitor {
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}
	if log == nil {
		log = slog.Default()
	}

	return &Janitor{cfg: cfg, log: log, tasks: tasks}
}

// Run sweeps every task on each tick until ctx is done.
func (j *Janitor) Run(ctx context.Context) {
	if len(j.tasks) == 0 {
		return
	}

	t := time.NewTicker(j.cfg.Interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			j.RunOnce(ctx)
		}
	}
}

func (j *Janitor) RunOnce(ctx context.Context) {
	for _, task := range j.tasks {
		if removed := task.Sweep(); removed > 0 {
			j.log.DebugContext(ctx, "janitor_sweep", "task", task.Name, "removed", removed)
		}
	}
}
