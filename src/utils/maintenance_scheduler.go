package utils

import (
	"context"
	"fmt"
	"time"

	"stock-predictor/src/logger"

	"github.com/robfig/cron/v3"
)

// MaintenanceScheduler runs housekeeping jobs on cron schedules.
type MaintenanceScheduler struct {
	Cron   *cron.Cron
	Logger *logger.Logger
	ctx    context.Context
}

// -----------------------------------------------------------------------------

// NewMaintenanceScheduler accepts standard five-field specs and descriptors
// such as "@daily" or "@every 1h".
func NewMaintenanceScheduler(ctx context.Context, log *logger.Logger) *MaintenanceScheduler {
	return &MaintenanceScheduler{
		Cron:   cron.New(),
		Logger: log,
		ctx:    ctx,
	}
}

// -----------------------------------------------------------------------------

// Register adds a named job. Each run gets a context bounded by timeout.
func (ms *MaintenanceScheduler) Register(spec, name string, timeout time.Duration, job func(ctx context.Context) error) error {
	_, err := ms.Cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(ms.ctx, timeout)
		defer cancel()

		start := time.Now()
		if err := job(ctx); err != nil {
			ms.Logger.Error("Job %s failed: %v", name, err)
			return
		}
		ms.Logger.Info("Job %s completed in %v", name, time.Since(start).Round(time.Millisecond))
	})
	if err != nil {
		return fmt.Errorf("register %s job: %w", name, err)
	}
	return nil
}

// -----------------------------------------------------------------------------

func (ms *MaintenanceScheduler) Start() {
	ms.Cron.Start()
	ms.Logger.Info("Scheduler started with %d job(s)", len(ms.Cron.Entries()))
}

// -----------------------------------------------------------------------------

// Stop waits for running jobs to finish.
func (ms *MaintenanceScheduler) Stop() {
	<-ms.Cron.Stop().Done()
	ms.Logger.Info("Scheduler stopped")
}
