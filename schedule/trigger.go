// Package schedule runs a callback on a cron schedule. The demo host uses it
// to launch fresh lazy activation cycles at fixed times; re-arming is always
// an explicit host decision, never something the orchestrator does on its
// own.
package schedule

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// ErrInvalidCronSpec is returned when the cron specification cannot be parsed.
var ErrInvalidCronSpec = errors.New("invalid cron spec")

// Trigger invokes a callback according to a cron schedule. Start it once and
// let it run until the context is cancelled.
type Trigger struct {
	spec     string
	schedule cron.Schedule
	run      func()
	logger   *slog.Logger
}

// NewTrigger creates a Trigger for the given standard five-field cron spec
// (minute, hour, day of month, month, day of week). Returns
// ErrInvalidCronSpec if the spec cannot be parsed.
func NewTrigger(spec string, run func(), logger *slog.Logger) (*Trigger, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	schedule, err := parser.Parse(spec)
	if err != nil {
		return nil, errors.Join(ErrInvalidCronSpec, err)
	}

	return &Trigger{
		spec:     spec,
		schedule: schedule,
		run:      run,
		logger:   logger.With("component", "schedule"),
	}, nil
}

// Start launches the scheduling goroutine and returns immediately. The
// goroutine exits when ctx is cancelled.
func (t *Trigger) Start(ctx context.Context) {
	go t.loop(ctx)
}

// NextRun returns the next scheduled invocation time from now.
func (t *Trigger) NextRun() time.Time {
	return t.schedule.Next(time.Now())
}

func (t *Trigger) loop(ctx context.Context) {
	for {
		next := t.schedule.Next(time.Now())
		t.logger.Debug("waiting for next scheduled cycle", "spec", t.spec, "next_run", next)

		select {
		case <-ctx.Done():
			t.logger.Info("schedule trigger shutting down")
			return
		case <-time.After(time.Until(next)):
			t.logger.Info("launching scheduled cycle")
			t.run()
		}
	}
}
