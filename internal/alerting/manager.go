// Package alerting converts detector findings into persisted alert records
// and owns the alert lifecycle.
//
// Deduplication policy: one active alert per alert type, globally. A
// sustained spike therefore keeps exactly one open alert across detection
// cycles; resolving it and re-detecting the same condition opens a new one.
package alerting

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sahilgurav23/Brand-Mention-Reputation-Tracker/internal/detector"
	"github.com/sahilgurav23/Brand-Mention-Reputation-Tracker/internal/logger"
	"github.com/sahilgurav23/Brand-Mention-Reputation-Tracker/internal/models"
	"github.com/sahilgurav23/Brand-Mention-Reputation-Tracker/internal/storage"
)

// shiftSeverityBoundary is the negative-percentage split between medium and
// high severity for sentiment shift alerts.
const shiftSeverityBoundary = 70.0

// Notifier delivers a newly created alert to an external channel. A nil
// notifier disables delivery; delivery failure never fails alert creation.
type Notifier interface {
	NotifyAlert(alert models.Alert) error
}

// Manager owns alert creation, deduplication, resolution, and listing.
type Manager struct {
	store    *storage.Store
	notifier Notifier
}

// New creates a Manager. Pass nil to disable notifications.
func New(store *storage.Store, notifier Notifier) *Manager {
	return &Manager{store: store, notifier: notifier}
}

// HandleFindings raises alerts for the given findings, deduplicating against
// currently-active alerts of the same type. Only negative sentiment shifts
// escalate; positive/neutral/none classifications describe the absence of
// concern. Returns the alerts actually created this pass.
func (m *Manager) HandleFindings(findings detector.Findings) []models.Alert {
	var created []models.Alert

	for _, spike := range findings.Spikes {
		severity := models.SeverityMedium
		if spike.Percentage > 100 {
			severity = models.SeverityHigh
		}

		alert := models.Alert{
			ID:          uuid.New().String(),
			AlertType:   models.AlertTypeSpike,
			Title:       "Mention Spike Detected",
			Description: fmt.Sprintf("Detected %.1f%% spike in mentions (%d mentions against a baseline of %.1f)", spike.Percentage, spike.Count, spike.Baseline),
			Severity:    severity,
			Active:      true,
			CreatedAt:   time.Now().UTC(),
		}
		if m.raise(&alert) {
			created = append(created, alert)
		}
	}

	for _, shift := range findings.Shifts {
		if shift.Shift != models.ShiftNegative {
			continue
		}

		negative := shift.Percentages[models.SentimentNegative]
		severity := models.SeverityMedium
		if negative > shiftSeverityBoundary {
			severity = models.SeverityHigh
		}

		alert := models.Alert{
			ID:          uuid.New().String(),
			AlertType:   models.AlertTypeSentimentShift,
			Title:       "Negative Sentiment Shift Detected",
			Description: fmt.Sprintf("Negative sentiment reached %.1f%% of recent mentions", negative),
			Severity:    severity,
			Active:      true,
			CreatedAt:   time.Now().UTC(),
		}
		if m.raise(&alert) {
			created = append(created, alert)
		}
	}

	return created
}

// raise creates the alert unless one of its type is already active, and
// notifies on creation. Returns true when the alert was created.
func (m *Manager) raise(alert *models.Alert) bool {
	created, err := m.store.CreateAlertIfNoneActive(alert)
	if err != nil {
		logger.Error("Failed to create %s alert: %v", alert.AlertType, err)
		return false
	}
	if !created {
		logger.Debug("Active %s alert already exists, skipping duplicate", alert.AlertType)
		return false
	}

	logger.Info("Created %s alert %s (severity: %s)", alert.AlertType, alert.ID, alert.Severity)

	if m.notifier != nil {
		if err := m.notifier.NotifyAlert(*alert); err != nil {
			logger.Warn("Failed to deliver alert notification: %v", err)
		}
	}
	return true
}

// Resolve marks the alert inactive and stamps its resolution time.
// Resolving an already-resolved alert is a no-op, not an error.
func (m *Manager) Resolve(id string) (*models.Alert, error) {
	alert, err := m.store.ResolveAlert(id, time.Now().UTC())
	if err != nil {
		return nil, err
	}
	logger.Info("Resolved alert %s", id)
	return alert, nil
}

// List returns alerts matching the filter, newest first.
func (m *Manager) List(filter storage.AlertFilter) ([]models.Alert, error) {
	return m.store.ListAlerts(filter)
}
