package service

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// SchedulerActor is recorded as the acting admin for scheduled mutations.
var SchedulerActor = Principal{Email: "scheduler@system", Name: "Scheduler"}

// Scheduler runs periodic maintenance jobs.
type Scheduler struct {
	cron    *cron.Cron
	parser  cron.Parser
	logger  zerolog.Logger
	timeout time.Duration
}

// NewScheduler creates an idle scheduler.
func NewScheduler(logger zerolog.Logger) *Scheduler {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	return &Scheduler{
		cron:    cron.New(cron.WithParser(parser), cron.WithLocation(time.UTC)),
		parser:  parser,
		logger:  logger.With().Str("component", "scheduler").Logger(),
		timeout: 5 * time.Minute,
	}
}

// AddErrorLogRetention prunes error log entries older than days on schedule.
func (s *Scheduler) AddErrorLogRetention(schedule string, errorLogs ErrorLogService, days int) error {
	if days <= 0 {
		return fmt.Errorf("retention days must be positive")
	}
	return s.add("error_log_retention", schedule, func(ctx context.Context) error {
		result, err := errorLogs.ClearOlderThan(ctx, days, SchedulerActor)
		if err != nil {
			return err
		}
		s.logger.Info().Int("removed", result.Removed).Int("days", days).Msg("error log retention completed")
		return nil
	})
}

// AddContributorSync refreshes contributors from the remote repository on schedule.
func (s *Scheduler) AddContributorSync(schedule string, contributors ContributorService) error {
	return s.add("contributor_sync", schedule, func(ctx context.Context) error {
		result, err := contributors.Sync(ctx, SchedulerActor)
		if err != nil {
			return err
		}
		s.logger.Info().Int("added", result.Added).Int("updated", result.Updated).Msg("contributor sync completed")
		return nil
	})
}

// Start runs the scheduler until ctx ends.
func (s *Scheduler) Start(ctx context.Context) {
	s.cron.Start()
	go func() {
		<-ctx.Done()
		<-s.cron.Stop().Done()
	}()
}

// Entries reports how many jobs are scheduled.
func (s *Scheduler) Entries() int {
	return len(s.cron.Entries())
}

func (s *Scheduler) add(name, schedule string, run func(ctx context.Context) error) error {
	if _, err := s.parser.Parse(schedule); err != nil {
		return fmt.Errorf("invalid schedule for %s: %w", name, err)
	}
	_, err := s.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		started := time.Now()
		if err := run(ctx); err != nil {
			s.logger.Error().Err(err).Str("job", name).Msg("scheduled job failed")
			return
		}
		s.logger.Debug().Str("job", name).Dur("duration", time.Since(started)).Msg("scheduled job finished")
	})
	return err
}
