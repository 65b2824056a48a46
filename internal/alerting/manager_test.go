package alerting

import (
	"errors"
	"testing"
	"time"

	"github.com/sahilgurav23/Brand-Mention-Reputation-Tracker/internal/detector"
	"github.com/sahilgurav23/Brand-Mention-Reputation-Tracker/internal/models"
	"github.com/sahilgurav23/Brand-Mention-Reputation-Tracker/internal/storage"
)

func mustStore(t *testing.T) *storage.Store {
	t.Helper()
	s, err := storage.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

type recordingNotifier struct {
	delivered []models.Alert
	fail      bool
}

func (n *recordingNotifier) NotifyAlert(alert models.Alert) error {
	if n.fail {
		return errors.New("delivery failed")
	}
	n.delivered = append(n.delivered, alert)
	return nil
}

func spikeFindings(percentage float64) detector.Findings {
	return detector.Findings{
		Spikes: []models.SpikeFinding{
			{Bucket: time.Now().UTC().Truncate(time.Hour), Count: 100, Baseline: 20, Stdev: 30, Percentage: percentage},
		},
	}
}

func negativeShiftFindings(negativePct float64) detector.Findings {
	return detector.Findings{
		Shifts: []models.SentimentShiftFinding{
			{
				Shift:        models.ShiftNegative,
				Distribution: map[string]int{models.SentimentNegative: 60, models.SentimentPositive: 10, models.SentimentNeutral: 30},
				Percentages:  map[string]float64{models.SentimentNegative: negativePct},
			},
		},
	}
}

func TestHandleFindings_SpikeSeverity(t *testing.T) {
	tests := []struct {
		name       string
		percentage float64
		want       string
	}{
		{"large spike is high", 400, models.SeverityHigh},
		{"boundary spike is medium", 100, models.SeverityMedium},
		{"moderate spike is medium", 80, models.SeverityMedium},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New(mustStore(t), nil)

			created := m.HandleFindings(spikeFindings(tt.percentage))
			if len(created) != 1 {
				t.Fatalf("Expected 1 alert, got %d", len(created))
			}
			if created[0].Severity != tt.want {
				t.Errorf("Expected severity %q, got %q", tt.want, created[0].Severity)
			}
			if created[0].AlertType != models.AlertTypeSpike {
				t.Errorf("Expected spike alert, got %q", created[0].AlertType)
			}
			if !created[0].Active {
				t.Error("Expected newly created alert to be active")
			}
		})
	}
}

func TestHandleFindings_Dedup(t *testing.T) {
	s := mustStore(t)
	m := New(s, nil)

	first := m.HandleFindings(spikeFindings(400))
	if len(first) != 1 {
		t.Fatalf("Expected 1 alert on first pass, got %d", len(first))
	}

	// Same condition on the next cycle is suppressed by the active alert.
	second := m.HandleFindings(spikeFindings(400))
	if len(second) != 0 {
		t.Errorf("Expected 0 alerts on second pass, got %d", len(second))
	}

	alerts, err := s.ListAlerts(storage.AlertFilter{})
	if err != nil {
		t.Fatalf("ListAlerts failed: %v", err)
	}
	if len(alerts) != 1 {
		t.Errorf("Expected 1 stored alert, got %d", len(alerts))
	}
}

func TestHandleFindings_NewAlertAfterResolve(t *testing.T) {
	s := mustStore(t)
	m := New(s, nil)

	first := m.HandleFindings(spikeFindings(400))
	if len(first) != 1 {
		t.Fatalf("Expected 1 alert, got %d", len(first))
	}

	if _, err := m.Resolve(first[0].ID); err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}

	second := m.HandleFindings(spikeFindings(400))
	if len(second) != 1 {
		t.Errorf("Expected a new alert after resolve, got %d", len(second))
	}
}

func TestHandleFindings_ShiftSeverity(t *testing.T) {
	tests := []struct {
		name        string
		negativePct float64
		want        string
	}{
		{"severe shift is high", 85, models.SeverityHigh},
		{"boundary shift is medium", 70, models.SeverityMedium},
		{"mild shift is medium", 55, models.SeverityMedium},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := New(mustStore(t), nil)

			created := m.HandleFindings(negativeShiftFindings(tt.negativePct))
			if len(created) != 1 {
				t.Fatalf("Expected 1 alert, got %d", len(created))
			}
			if created[0].Severity != tt.want {
				t.Errorf("Expected severity %q, got %q", tt.want, created[0].Severity)
			}
			if created[0].AlertType != models.AlertTypeSentimentShift {
				t.Errorf("Expected sentiment shift alert, got %q", created[0].AlertType)
			}
		})
	}
}

func TestHandleFindings_NonNegativeShiftsIgnored(t *testing.T) {
	m := New(mustStore(t), nil)

	for _, shift := range []string{models.ShiftPositive, models.ShiftNeutral, models.ShiftNone} {
		findings := detector.Findings{
			Shifts: []models.SentimentShiftFinding{{Shift: shift}},
		}
		if created := m.HandleFindings(findings); len(created) != 0 {
			t.Errorf("Expected no alert for %s shift, got %d", shift, len(created))
		}
	}
}

func TestHandleFindings_Notifies(t *testing.T) {
	notifier := &recordingNotifier{}
	m := New(mustStore(t), notifier)

	created := m.HandleFindings(spikeFindings(400))
	if len(created) != 1 {
		t.Fatalf("Expected 1 alert, got %d", len(created))
	}
	if len(notifier.delivered) != 1 {
		t.Fatalf("Expected 1 delivered notification, got %d", len(notifier.delivered))
	}
	if notifier.delivered[0].ID != created[0].ID {
		t.Errorf("Delivered alert mismatch: %s vs %s", notifier.delivered[0].ID, created[0].ID)
	}
}

func TestHandleFindings_NotifierFailureDoesNotBlock(t *testing.T) {
	s := mustStore(t)
	m := New(s, &recordingNotifier{fail: true})

	created := m.HandleFindings(spikeFindings(400))
	if len(created) != 1 {
		t.Fatalf("Expected alert creation despite notifier failure, got %d", len(created))
	}

	alerts, err := s.ListAlerts(storage.AlertFilter{})
	if err != nil {
		t.Fatalf("ListAlerts failed: %v", err)
	}
	if len(alerts) != 1 {
		t.Errorf("Expected alert persisted despite notifier failure, got %d", len(alerts))
	}
}

func TestResolve_Idempotent(t *testing.T) {
	m := New(mustStore(t), nil)

	created := m.HandleFindings(spikeFindings(400))
	if len(created) != 1 {
		t.Fatalf("Expected 1 alert, got %d", len(created))
	}

	resolved, err := m.Resolve(created[0].ID)
	if err != nil {
		t.Fatalf("Resolve failed: %v", err)
	}
	if resolved.Active || resolved.ResolvedAt == nil {
		t.Error("Expected resolved alert to be inactive with resolved_at set")
	}

	again, err := m.Resolve(created[0].ID)
	if err != nil {
		t.Fatalf("Second Resolve failed: %v", err)
	}
	if !again.ResolvedAt.Equal(*resolved.ResolvedAt) {
		t.Errorf("Expected resolved_at unchanged, got %v", again.ResolvedAt)
	}
}
