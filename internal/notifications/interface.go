package notifications

import "github.com/repradar/repradar/internal/models"

// Interface is the contract for digest delivery.
type Interface interface {
	SendReport(report *models.Report) error
}
