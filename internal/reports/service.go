// Package reports assembles periodic digests of recent scans, archives them
// to blob storage, and hands them to the notification channels.
package reports

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/repradar/repradar/internal/config"
	"github.com/repradar/repradar/internal/models"
	"github.com/repradar/repradar/internal/notifications"
	"github.com/repradar/repradar/internal/storage"
	"github.com/sirupsen/logrus"
)

// highRiskThreshold marks scans worth calling out in the digest summary.
const highRiskThreshold = 70

// HistorySource is the slice of the history store the digest needs.
type HistorySource interface {
	Since(t time.Time) ([]models.ScanRecord, error)
}

// Service builds and delivers digest reports.
type Service struct {
	config   *config.Config
	history  HistorySource
	storage  storage.Interface // nil disables archival
	notifier notifications.Interface
}

// NewService creates a digest service. Pass a nil storage to skip archival.
func NewService(cfg *config.Config, history HistorySource, store storage.Interface, notifier notifications.Interface) *Service {
	return &Service{
		config:   cfg,
		history:  history,
		storage:  store,
		notifier: notifier,
	}
}

// RunDigest collects the scans of the current period, archives the digest,
// and sends it out. An archival failure is logged but does not stop the
// notification from going out.
func (s *Service) RunDigest() error {
	window := 24 * time.Hour
	if s.config.ReportSchedule == "weekly" {
		window = 7 * 24 * time.Hour
	}

	since := time.Now().UTC().Add(-window)
	scans, err := s.history.Since(since)
	if err != nil {
		return fmt.Errorf("collecting scans for digest: %w", err)
	}

	report := s.buildReport(scans)
	logrus.Infof("Built %s digest covering %d scans", report.Period, report.TotalScans)

	if s.storage != nil {
		if err := s.archive(report); err != nil {
			logrus.Errorf("Failed to archive digest: %v", err)
		}
	}

	if err := s.notifier.SendReport(report); err != nil {
		return fmt.Errorf("sending digest: %w", err)
	}
	return nil
}

func (s *Service) buildReport(scans []models.ScanRecord) *models.Report {
	report := &models.Report{
		GeneratedAt: time.Now().UTC(),
		Period:      s.config.ReportSchedule,
		TotalScans:  len(scans),
		Scans:       scans,
		Summary:     make(map[string]interface{}),
	}

	sentimentCount := make(map[string]int)
	brandCount := make(map[string]int)
	highRisk := 0

	for _, scan := range scans {
		sentimentCount[string(scan.Sentiment)]++
		brandCount[scan.Brand]++
		if scan.RiskScore >= highRiskThreshold {
			highRisk++
		}
	}

	report.Summary["sentiment"] = sentimentCount
	report.Summary["high_risk_scans"] = highRisk
	report.Summary["top_brands"] = topBrands(brandCount)

	return report
}

// topBrands lists the five most-scanned brands, busiest first.
func topBrands(brandCount map[string]int) []string {
	type brandScore struct {
		brand string
		count int
	}

	var scores []brandScore
	for brand, count := range brandCount {
		scores = append(scores, brandScore{brand, count})
	}

	for i := 0; i < len(scores)-1; i++ {
		for j := i + 1; j < len(scores); j++ {
			if scores[j].count > scores[i].count {
				scores[i], scores[j] = scores[j], scores[i]
			}
		}
	}

	var top []string
	for i, score := range scores {
		if i >= 5 {
			break
		}
		top = append(top, fmt.Sprintf("%s (%d)", score.brand, score.count))
	}
	return top
}

func (s *Service) archive(report *models.Report) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshalling digest: %w", err)
	}

	name := fmt.Sprintf("report-%s.json", report.GeneratedAt.Format("2006-01-02-15-04-05"))
	return s.storage.Store(context.Background(), name, data)
}
