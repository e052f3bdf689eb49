package jobs

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"tripplanner/internal/core/application/usecases/commands"
	"tripplanner/internal/pkg/metrics"

	"github.com/robfig/cron/v3"
)

// TripPlanner runs one planning pass.
type TripPlanner interface {
	Handle(ctx context.Context, cmd commands.PlanTripsCommand) (commands.PlanTripsResult, error)
}

// PlanCommandFactory builds the command for a run starting at now.
type PlanCommandFactory func(now time.Time) (commands.PlanTripsCommand, error)

// TripPlanningJob plans every pending order on a cron schedule.
type TripPlanningJob struct {
	handler  TripPlanner
	command  PlanCommandFactory
	schedule string
	timeout  time.Duration
	metrics  *metrics.Metrics
	cron     *cron.Cron
	logger   *slog.Logger
}

// NewTripPlanningJob creates a job firing on schedule, a six-field cron
// expression with seconds. Each run is bounded by timeout.
func NewTripPlanningJob(
	handler TripPlanner,
	command PlanCommandFactory,
	schedule string,
	timeout time.Duration,
	m *metrics.Metrics,
	logger *slog.Logger,
) *TripPlanningJob {
	return &TripPlanningJob{
		handler:  handler,
		command:  command,
		schedule: schedule,
		timeout:  timeout,
		metrics:  m,
		cron:     cron.New(cron.WithSeconds()),
		logger:   logger.With("component", "trip_planning_job"),
	}
}

// Start registers the run with the scheduler and starts it.
func (j *TripPlanningJob) Start() error {
	_, err := j.cron.AddFunc(j.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
		defer cancel()

		_ = j.RunOnce(ctx)
	})
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Trip planning job started", "schedule", j.schedule)
	return nil
}

// Stop stops the scheduler and waits for a running pass to finish.
func (j *TripPlanningJob) Stop() {
	<-j.cron.Stop().Done()
	j.logger.InfoContext(context.Background(), "Trip planning job stopped")
}

// RunOnce executes one planning pass. An empty backlog is not an error.
func (j *TripPlanningJob) RunOnce(ctx context.Context) error {
	start := time.Now()

	cmd, err := j.command(start.UTC())
	if err != nil {
		j.logger.ErrorContext(ctx, "Trip planning job misconfigured", "error", err)
		return err
	}

	result, err := j.handler.Handle(ctx, cmd)
	switch {
	case errors.Is(err, commands.ErrNoPendingOrders):
		j.observe(metrics.OutcomeEmpty, start, 0, 0)
		return nil
	case err != nil:
		j.observe(metrics.OutcomeFailed, start, 0, 0)
		j.logger.ErrorContext(ctx, "Trip planning job failed", "error", err)
		return err
	}

	j.observe(metrics.OutcomeSuccess, start, len(result.Plan.Routes), len(result.Plan.Compliance.Flagged()))
	return nil
}

func (j *TripPlanningJob) observe(outcome string, start time.Time, routes, flagged int) {
	if j.metrics != nil {
		j.metrics.ObservePlan(outcome, time.Since(start), routes, flagged)
	}
}
