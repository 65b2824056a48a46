package detector

import (
	"math"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/sahilgurav23/Brand-Mention-Reputation-Tracker/internal/config"
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

// seedBucket inserts count mentions into the hour bucket starting at start.
func seedBucket(t *testing.T, s *storage.Store, start time.Time, count int, sentiment string) {
	t.Helper()
	mentions := make([]models.Mention, count)
	for i := range mentions {
		mentions[i] = models.Mention{
			ID:             uuid.New().String(),
			Source:         models.SourceNews,
			URL:            "https://example.com/a",
			Author:         "Reporter",
			Content:        "Acme in the news",
			Sentiment:      sentiment,
			SentimentScore: 0.9,
			Topic:          "product",
			CreatedAt:      start.Add(time.Duration(i) * time.Second),
		}
	}
	if err := s.BulkInsertMentions(mentions); err != nil {
		t.Fatalf("failed to seed bucket: %v", err)
	}
}

// ─── Spike detection ─────────────────────────────────────────────────────────

func TestDetectSpikes(t *testing.T) {
	s := mustStore(t)
	d := New(s)

	// Eight quiet hourly buckets of 10 and one of 100: mean 20, sample
	// stdev 30, threshold at sigma 2.5 is 95, so the outlier is flagged.
	base := time.Now().UTC().Truncate(time.Hour)
	for i := 1; i <= 8; i++ {
		seedBucket(t, s, base.Add(-time.Duration(i)*time.Hour), 10, models.SentimentNeutral)
	}
	seedBucket(t, s, base, 100, models.SentimentNeutral)

	spikes, err := d.DetectSpikes(24, 2.5, models.BucketHour)
	if err != nil {
		t.Fatalf("DetectSpikes failed: %v", err)
	}
	if len(spikes) != 1 {
		t.Fatalf("Expected 1 spike, got %d", len(spikes))
	}

	spike := spikes[0]
	if spike.Count != 100 {
		t.Errorf("Expected spike count 100, got %d", spike.Count)
	}
	if math.Abs(spike.Baseline-20.0) > 0.001 {
		t.Errorf("Expected baseline 20.0, got %f", spike.Baseline)
	}
	if math.Abs(spike.Stdev-30.0) > 0.001 {
		t.Errorf("Expected stdev 30.0, got %f", spike.Stdev)
	}
	if math.Abs(spike.Percentage-400.0) > 0.001 {
		t.Errorf("Expected 400%% deviation, got %f", spike.Percentage)
	}
}

func TestDetectSpikes_HighVarianceSuppressed(t *testing.T) {
	s := mustStore(t)
	d := New(s)

	// Counts [10 10 10 10 50]: mean 18, sample stdev ~17.9, threshold ~62.7.
	// The 50 bucket stays under the threshold, so nothing is flagged.
	base := time.Now().UTC().Truncate(time.Hour)
	for i := 1; i <= 4; i++ {
		seedBucket(t, s, base.Add(-time.Duration(i)*time.Hour), 10, models.SentimentNeutral)
	}
	seedBucket(t, s, base, 50, models.SentimentNeutral)

	spikes, err := d.DetectSpikes(24, 2.5, models.BucketHour)
	if err != nil {
		t.Fatalf("DetectSpikes failed: %v", err)
	}
	if len(spikes) != 0 {
		t.Errorf("Expected 0 spikes, got %d", len(spikes))
	}
}

func TestDetectSpikes_EmptyWindow(t *testing.T) {
	s := mustStore(t)
	d := New(s)

	spikes, err := d.DetectSpikes(24, 2.5, models.BucketHour)
	if err != nil {
		t.Fatalf("DetectSpikes failed: %v", err)
	}
	if len(spikes) != 0 {
		t.Errorf("Expected no spikes for empty window, got %d", len(spikes))
	}
}

func TestDetectSpikes_SingleBucket(t *testing.T) {
	s := mustStore(t)
	d := New(s)

	seedBucket(t, s, time.Now().UTC().Truncate(time.Hour), 100, models.SentimentNeutral)

	// One bucket means stdev 0 and threshold equals the mean; the bucket's
	// count equals the mean so there is nothing above it.
	spikes, err := d.DetectSpikes(24, 2.5, models.BucketHour)
	if err != nil {
		t.Fatalf("DetectSpikes failed: %v", err)
	}
	if len(spikes) != 0 {
		t.Errorf("Expected 0 spikes for a single bucket, got %d", len(spikes))
	}
}

func TestDetectSpikes_Idempotent(t *testing.T) {
	s := mustStore(t)
	d := New(s)

	base := time.Now().UTC().Truncate(time.Hour)
	for i := 1; i <= 8; i++ {
		seedBucket(t, s, base.Add(-time.Duration(i)*time.Hour), 10, models.SentimentNeutral)
	}
	seedBucket(t, s, base, 100, models.SentimentNeutral)

	first, err := d.DetectSpikes(24, 2.5, models.BucketHour)
	if err != nil {
		t.Fatalf("DetectSpikes failed: %v", err)
	}
	second, err := d.DetectSpikes(24, 2.5, models.BucketHour)
	if err != nil {
		t.Fatalf("Second DetectSpikes failed: %v", err)
	}
	if len(first) != len(second) {
		t.Errorf("Expected identical findings on re-run, got %d then %d", len(first), len(second))
	}
}

func TestDetectSpikes_InvalidArgs(t *testing.T) {
	s := mustStore(t)
	d := New(s)

	if _, err := d.DetectSpikes(0, 2.5, models.BucketHour); err == nil {
		t.Error("Expected error for zero window, got nil")
	}
	if _, err := d.DetectSpikes(24, -1, models.BucketHour); err == nil {
		t.Error("Expected error for negative sigma, got nil")
	}
	if _, err := d.DetectSpikes(24, 2.5, "week"); err == nil {
		t.Error("Expected error for invalid bucket, got nil")
	}
}

// ─── Sentiment shift ─────────────────────────────────────────────────────────

func TestDetectSentimentShift(t *testing.T) {
	tests := []struct {
		name     string
		positive int
		negative int
		neutral  int
		want     string
	}{
		{"majority negative", 10, 60, 30, models.ShiftNegative},
		{"low negative", 70, 10, 20, models.ShiftPositive},
		{"middling negative", 30, 30, 40, models.ShiftNeutral},
		{"boundary fifty percent", 25, 50, 25, models.ShiftNeutral},
		{"boundary twenty percent", 40, 20, 40, models.ShiftNeutral},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := mustStore(t)
			d := New(s)

			base := time.Now().UTC().Add(-time.Hour)
			seedBucket(t, s, base, tt.positive, models.SentimentPositive)
			seedBucket(t, s, base, tt.negative, models.SentimentNegative)
			seedBucket(t, s, base, tt.neutral, models.SentimentNeutral)

			finding, err := d.DetectSentimentShift(24)
			if err != nil {
				t.Fatalf("DetectSentimentShift failed: %v", err)
			}
			if finding.Shift != tt.want {
				t.Errorf("Expected shift %q, got %q", tt.want, finding.Shift)
			}
			if finding.Distribution[models.SentimentNegative] != tt.negative {
				t.Errorf("Expected %d negative in distribution, got %d",
					tt.negative, finding.Distribution[models.SentimentNegative])
			}
		})
	}
}

func TestDetectSentimentShift_EmptyWindow(t *testing.T) {
	s := mustStore(t)
	d := New(s)

	finding, err := d.DetectSentimentShift(24)
	if err != nil {
		t.Fatalf("DetectSentimentShift failed: %v", err)
	}
	if finding.Shift != models.ShiftNone {
		t.Errorf("Expected shift %q for empty window, got %q", models.ShiftNone, finding.Shift)
	}
}

func TestDetectSentimentShift_Percentages(t *testing.T) {
	s := mustStore(t)
	d := New(s)

	base := time.Now().UTC().Add(-time.Hour)
	seedBucket(t, s, base, 1, models.SentimentPositive)
	seedBucket(t, s, base, 3, models.SentimentNegative)

	finding, err := d.DetectSentimentShift(24)
	if err != nil {
		t.Fatalf("DetectSentimentShift failed: %v", err)
	}
	if math.Abs(finding.Percentages[models.SentimentNegative]-75.0) > 0.001 {
		t.Errorf("Expected 75%% negative, got %f", finding.Percentages[models.SentimentNegative])
	}
	if math.Abs(finding.Percentages[models.SentimentPositive]-25.0) > 0.001 {
		t.Errorf("Expected 25%% positive, got %f", finding.Percentages[models.SentimentPositive])
	}
}

// ─── Run with configs ────────────────────────────────────────────────────────

func TestRun_Defaults(t *testing.T) {
	s := mustStore(t)
	d := New(s)

	base := time.Now().UTC().Truncate(time.Hour)
	for i := 1; i <= 8; i++ {
		seedBucket(t, s, base.Add(-time.Duration(i)*time.Hour), 10, models.SentimentNeutral)
	}
	seedBucket(t, s, base, 100, models.SentimentNeutral)

	findings := d.Run(config.DetectionConfig{SpikeSigma: 2.5, WindowHours: 24, Bucket: models.BucketHour})
	if len(findings.Spikes) != 1 {
		t.Errorf("Expected 1 spike finding, got %d", len(findings.Spikes))
	}
	if len(findings.Shifts) != 1 {
		t.Errorf("Expected 1 shift finding, got %d", len(findings.Shifts))
	}
}

func TestRun_StoredConfigOverridesDefaults(t *testing.T) {
	s := mustStore(t)
	d := New(s)

	base := time.Now().UTC().Truncate(time.Hour)
	for i := 1; i <= 8; i++ {
		seedBucket(t, s, base.Add(-time.Duration(i)*time.Hour), 10, models.SentimentNeutral)
	}
	seedBucket(t, s, base, 100, models.SentimentNeutral)

	// A sigma-10 stored config suppresses the spike the 2.5 default would
	// flag: threshold 20 + 10 × 30 = 320.
	cfg := models.AlertConfig{
		ID:          uuid.New().String(),
		Name:        "strict spike watch",
		AlertType:   models.AlertTypeSpike,
		Threshold:   10,
		WindowHours: 24,
		Enabled:     true,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.CreateAlertConfig(&cfg); err != nil {
		t.Fatalf("CreateAlertConfig failed: %v", err)
	}

	findings := d.Run(config.DetectionConfig{SpikeSigma: 2.5, WindowHours: 24, Bucket: models.BucketHour})
	if len(findings.Spikes) != 0 {
		t.Errorf("Expected 0 spikes under the stored config, got %d", len(findings.Spikes))
	}
	if len(findings.Shifts) != 1 {
		t.Errorf("Expected the default shift check to still run, got %d findings", len(findings.Shifts))
	}
}

// ─── Statistics helpers ──────────────────────────────────────────────────────

func TestMean(t *testing.T) {
	if got := Mean(nil); got != 0 {
		t.Errorf("Expected mean 0 for empty input, got %f", got)
	}
	if got := Mean([]float64{10, 10, 10, 10, 50}); math.Abs(got-18.0) > 0.001 {
		t.Errorf("Expected mean 18.0, got %f", got)
	}
}

func TestSampleStdev(t *testing.T) {
	if got := SampleStdev([]float64{42}); got != 0 {
		t.Errorf("Expected stdev 0 for a single value, got %f", got)
	}
	if got := SampleStdev([]float64{10, 10, 10, 10, 50}); math.Abs(got-17.888) > 0.001 {
		t.Errorf("Expected stdev ~17.888, got %f", got)
	}
	if got := SampleStdev([]float64{10, 10, 10, 10, 10, 10, 10, 10, 100}); math.Abs(got-30.0) > 0.001 {
		t.Errorf("Expected stdev 30.0, got %f", got)
	}
}
