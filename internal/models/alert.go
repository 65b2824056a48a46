package models

import (
	"errors"
	"time"
)

// Alert types produced by the alert manager.
const (
	AlertTypeSpike          = "spike"
	AlertTypeSentimentShift = "sentiment_shift"
	AlertTypeTrend          = "trend"
)

// Alert severities, ordered from least to most urgent.
const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// Alert is a persisted record raised from a detector finding. An alert stays
// active until explicitly resolved; ResolvedAt is set exactly when Active
// becomes false.
type Alert struct {
	ID          string     `json:"id" gorm:"primaryKey"`
	AlertType   string     `json:"alert_type" gorm:"index;size:50"`
	Title       string     `json:"title" gorm:"size:255"`
	Description string     `json:"description"`
	Severity    string     `json:"severity" gorm:"size:20"`
	Active      bool       `json:"is_active" gorm:"index"`
	CreatedAt   time.Time  `json:"created_at" gorm:"index"`
	ResolvedAt  *time.Time `json:"resolved_at,omitempty"`
}

// Validate checks that all alert fields are valid, including the
// active/resolved-at pairing invariant.
func (a *Alert) Validate() error {
	if a.ID == "" {
		return errors.New("alert ID must not be empty")
	}
	switch a.AlertType {
	case AlertTypeSpike, AlertTypeSentimentShift, AlertTypeTrend:
	default:
		return errors.New("alert type must be one of: spike, sentiment_shift, trend")
	}
	if a.Title == "" {
		return errors.New("alert title must not be empty")
	}
	switch a.Severity {
	case SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical:
	default:
		return errors.New("severity must be one of: low, medium, high, critical")
	}
	if a.Active && a.ResolvedAt != nil {
		return errors.New("active alert must not have resolved at set")
	}
	if !a.Active && a.ResolvedAt == nil {
		return errors.New("resolved alert must have resolved at set")
	}
	if a.CreatedAt.IsZero() {
		return errors.New("alert created at must be set")
	}
	return nil
}

// AlertConfig parameterizes one detector check. Threshold meaning depends on
// AlertType: a sigma multiplier for spike, a percentage for sentiment_shift.
type AlertConfig struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"size:255"`
	AlertType   string    `json:"alert_type" gorm:"size:50"`
	Threshold   float64   `json:"threshold"`
	WindowHours int       `json:"window_hours"`
	Enabled     bool      `json:"is_enabled"`
	CreatedAt   time.Time `json:"created_at"`
}

// Validate checks that a detector can safely run with this configuration.
func (c *AlertConfig) Validate() error {
	if c.ID == "" {
		return errors.New("alert config ID must not be empty")
	}
	if c.Name == "" {
		return errors.New("alert config name must not be empty")
	}
	switch c.AlertType {
	case AlertTypeSpike, AlertTypeSentimentShift, AlertTypeTrend:
	default:
		return errors.New("alert type must be one of: spike, sentiment_shift, trend")
	}
	if c.Threshold <= 0 {
		return errors.New("threshold must be positive")
	}
	if c.WindowHours <= 0 {
		return errors.New("window hours must be positive")
	}
	return nil
}
