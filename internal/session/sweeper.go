package session

import (
	"context"
	"log/slog"
	"time"
)

// SweepTask is one unit of periodic housekeeping.
type SweepTask struct {
	Name string
	Run  func(ctx context.Context) (int64, error)
}

// IdleTask returns a task that evicts sessions idle for longer than ttl.
func IdleTask(store *Store, ttl time.Duration) SweepTask {
	return SweepTask{
		Name: "idle_sessions",
		Run: func(context.Context) (int64, error) {
			return int64(store.SweepIdle(ttl)), nil
		},
	}
}

// StartSweeper runs tasks every interval until ctx is cancelled.
func StartSweeper(ctx context.Context, interval time.Duration, tasks ...SweepTask) {
	if len(tasks) == 0 || interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		slog.Info("Sweeper started", "interval", interval, "tasks", len(tasks))

		for {
			select {
			case <-ticker.C:
				runSweep(ctx, tasks)
			case <-ctx.Done():
				slog.Info("Sweeper shutting down", "reason", ctx.Err())
				return
			}
		}
	}()
}

func runSweep(ctx context.Context, tasks []SweepTask) {
	for _, task := range tasks {
		removed, err := task.Run(ctx)
		if err != nil {
			slog.Error("Sweep task failed", "task", task.Name, "error", err)
			continue
		}
		if removed > 0 {
			slog.Info("Sweep task removed entries", "task", task.Name, "count", removed)
		}
	}
}
