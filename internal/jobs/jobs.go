// Package jobs runs periodic maintenance tasks.
package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/James9446/patricia-james-sub001/internal/database"
)

// Config is the background job configuration.
type Config struct {
	SessionCleanupSpec string `mapstructure:"session_cleanup_spec"`
}

// PurgeRecorder is told how many sessions a cleanup run removed.
type PurgeRecorder interface {
	SessionsPurged(n int64)
}

// Scheduler is a cron-like job scheduler.
type Scheduler struct {
	*cron.Cron
	logger *slog.Logger
}

// cronLogger adapts slog to the cron logger interface.
type cronLogger struct {
	logger *slog.Logger
}

// Info logs routine messages about cron's operation.
func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, keysAndValues...)
}

// Error logs an error condition.
func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, append(keysAndValues, "err", err)...)
}

// NewScheduler returns a new Scheduler.
func NewScheduler(logger *slog.Logger) *Scheduler {
	logger = logger.With("component", "cron")
	return &Scheduler{
		Cron:   cron.New(cron.WithLogger(cronLogger{logger}), cron.WithChain(cron.Recover(cronLogger{logger}))),
		logger: logger,
	}
}

// Shutdown stops the scheduler and waits up to 30s for running jobs.
func (s *Scheduler) Shutdown() {
	ctx, cancel := context.WithTimeout(s.Cron.Stop(), 30*time.Second)
	defer cancel()
	<-ctx.Done()
}

// AddSessionCleanup schedules removal of expired login sessions.
func (s *Scheduler) AddSessionCleanup(spec string, db *database.DB, rec PurgeRecorder) error {
	if spec == "" {
		spec = "@hourly"
	}
	_, err := s.Cron.AddFunc(spec, func() {
		s.purgeSessions(db, rec)
	})
	return err
}

func (s *Scheduler) purgeSessions(db *database.DB, rec PurgeRecorder) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	n, err := database.DeleteExpiredSessions(ctx, db, time.Now())
	if err != nil {
		s.logger.Error("session cleanup failed", "err", err)
		return
	}
	if rec != nil {
		rec.SessionsPurged(n)
	}
	if n > 0 {
		s.logger.Info("expired sessions removed", "count", n)
	}
}
