// Package scheduler owns the recurring background jobs: rate-limiter
// cleanup, digest generation, and history retention.
package scheduler

import (
	"time"

	"github.com/repradar/repradar/internal/config"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// DigestRunner produces and delivers the periodic digest.
type DigestRunner interface {
	RunDigest() error
}

// Cleaner is a rate limiter's retention pass.
type Cleaner interface {
	Cleanup()
}

// Pruner trims old rows from the scan history.
type Pruner interface {
	Prune(olderThan time.Time) (int64, error)
}

// Service wires the recurring jobs onto a cron runner.
type Service struct {
	config   *config.Config
	digest   DigestRunner
	limiters []Cleaner
	history  Pruner
	cron     *cron.Cron
}

// NewService creates a scheduler.
func NewService(cfg *config.Config, digest DigestRunner, history Pruner, limiters ...Cleaner) *Service {
	return &Service{
		config:   cfg,
		digest:   digest,
		limiters: limiters,
		history:  history,
		cron:     cron.New(cron.WithSeconds()),
	}
}

// Start registers the jobs and begins the cron loop.
func (s *Service) Start() error {
	// Limiter retention runs every 5 minutes.
	if _, err := s.cron.AddFunc("0 */5 * * * *", s.cleanupLimiters); err != nil {
		return err
	}

	// Digest at 9 AM UTC, daily or Mondays depending on the schedule.
	digestExpression := "0 0 9 * * *"
	if s.config.ReportSchedule == "weekly" {
		digestExpression = "0 0 9 * * MON"
	}
	if _, err := s.cron.AddFunc(digestExpression, func() {
		logrus.Info("Starting scheduled digest run")
		if err := s.digest.RunDigest(); err != nil {
			logrus.Errorf("Scheduled digest run failed: %v", err)
		}
	}); err != nil {
		return err
	}

	// History retention once a day, just after midnight.
	if _, err := s.cron.AddFunc("0 10 0 * * *", s.pruneHistory); err != nil {
		return err
	}

	s.cron.Start()
	logrus.Infof("Scheduler started (%s digest, 5m limiter cleanup, %dd history retention)",
		s.config.ReportSchedule, s.config.HistoryRetentionDays)
	return nil
}

// Stop stops the cron loop.
func (s *Service) Stop() {
	if s.cron != nil {
		s.cron.Stop()
		logrus.Info("Scheduler stopped")
	}
}

func (s *Service) cleanupLimiters() {
	for _, limiter := range s.limiters {
		limiter.Cleanup()
	}
	logrus.Debugf("Rate limiter cleanup completed for %d limiters", len(s.limiters))
}

func (s *Service) pruneHistory() {
	cutoff := time.Now().UTC().AddDate(0, 0, -s.config.HistoryRetentionDays)
	if _, err := s.history.Prune(cutoff); err != nil {
		logrus.Errorf("History prune failed: %v", err)
	}
}
