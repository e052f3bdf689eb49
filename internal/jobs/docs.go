// Package jobs provides scheduled background tasks for the trip planner.
//
// This package implements cron-based jobs using github.com/robfig/cron/v3.
//
// # Available Jobs
//
// TripPlanningJob consolidates and routes every pending order on a configurable
// schedule (PLANNER_CRON, six fields with seconds, e.g. "0 */15 * * * *").
//
// # Usage
//
//	job := jobs.NewTripPlanningJob(planTripsHandler, commandFactory, "0 */15 * * * *", 2*time.Minute, m, logger)
//	jobManager := jobs.NewJobManager(job)
//
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//	defer jobManager.StopAll()
//
// # Error Handling
//
// - An empty backlog (commands.ErrNoPendingOrders) is counted, not logged
// - Other failures are logged and counted; the next tick retries
// - Failed job starts will stop any already running jobs
package jobs
