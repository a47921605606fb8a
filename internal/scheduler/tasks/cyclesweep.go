package tasks

import (
	"github.com/teyra/teyra/internal/cycle"
	"github.com/teyra/teyra/internal/scheduler"
)

const CycleSweepTaskID = "cycle-sweep"

// RegisterCycleSweepTask registers the all-users cycle sweep with the
// scheduler. The sweep catches users whose cycle elapsed without a
// dashboard load triggering the reset; RunOnStart covers downtime that
// spanned a rollover.
func RegisterCycleSweepTask(sched *scheduler.Scheduler, sweeper *cycle.Sweeper, cron string) error {
	if cron == "" {
		cron = "*/15 * * * *"
	}
	return sched.RegisterTask(scheduler.TaskConfig{
		ID:          CycleSweepTaskID,
		Name:        "Cycle Sweep",
		Description: "Rolls over daily cycles for users who are due",
		Cron:        cron,
		RunOnStart:  true,
		Func:        sweeper.Run,
	})
}
