package telegram

import (
	"strings"
	"testing"
	"time"

	"github.com/sahilgurav23/Brand-Mention-Reputation-Tracker/internal/models"
)

func TestEscapeMarkdownV2(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"plain text", "plain text"},
		{"50.5% spike!", "50\\.5% spike\\!"},
		{"alert_type (spike)", "alert\\_type \\(spike\\)"},
		{"a-b=c", "a\\-b\\=c"},
	}

	for _, tt := range tests {
		result := escapeMarkdownV2(tt.input)
		if result != tt.expected {
			t.Errorf("escapeMarkdownV2(%q) = %q, expected %q", tt.input, result, tt.expected)
		}
	}
}

func TestFormatAlert(t *testing.T) {
	c := &Client{}
	alert := models.Alert{
		ID:          "a-1",
		AlertType:   models.AlertTypeSpike,
		Title:       "Mention Spike Detected",
		Description: "Detected 400.0% spike in mentions",
		Severity:    models.SeverityHigh,
		Active:      true,
		CreatedAt:   time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
	}

	message := c.formatAlert(alert)
	if !strings.Contains(message, "🚨") {
		t.Error("Expected high severity emoji in message")
	}
	if !strings.Contains(message, "Mention Spike Detected") {
		t.Error("Expected alert title in message")
	}
	if !strings.Contains(message, "400\\.0% spike") {
		t.Errorf("Expected escaped description in message, got: %s", message)
	}
	if !strings.Contains(message, "2026\\-08\\-30 12:00:00") {
		t.Errorf("Expected escaped timestamp in message, got: %s", message)
	}
}

func TestFormatAlert_SeverityEmoji(t *testing.T) {
	c := &Client{}
	tests := []struct {
		severity string
		emoji    string
	}{
		{models.SeverityCritical, "🚨"},
		{models.SeverityHigh, "🚨"},
		{models.SeverityMedium, "⚠️"},
		{models.SeverityLow, "ℹ️"},
	}

	for _, tt := range tests {
		alert := models.Alert{Title: "t", Severity: tt.severity, CreatedAt: time.Now()}
		if message := c.formatAlert(alert); !strings.HasPrefix(message, tt.emoji) {
			t.Errorf("Expected %s message to start with %s, got: %s", tt.severity, tt.emoji, message)
		}
	}
}
