// Package detector computes time-bucketed statistics over persisted mentions
// and flags anomalies.
//
// Two independent checks run against recent history:
//
//	spike:  a bucket whose count exceeds mean + sigma × stdev of the window's
//	        bucket counts (sample standard deviation, Bessel correction)
//	shift:  a window-level sentiment distribution whose negative share crosses
//	        fixed policy thresholds (>50% negative, <20% positive)
//
// Both checks only read already-persisted mentions and are idempotent:
// re-running against unchanged data yields identical findings.
package detector

import (
	"fmt"
	"math"
	"time"

	"github.com/sahilgurav23/Brand-Mention-Reputation-Tracker/internal/config"
	"github.com/sahilgurav23/Brand-Mention-Reputation-Tracker/internal/logger"
	"github.com/sahilgurav23/Brand-Mention-Reputation-Tracker/internal/models"
	"github.com/sahilgurav23/Brand-Mention-Reputation-Tracker/internal/storage"
)

// Detector runs anomaly checks over the persistence store.
type Detector struct {
	store *storage.Store
}

// New creates a Detector instance.
func New(store *storage.Store) *Detector {
	return &Detector{store: store}
}

// Findings bundles the outputs of one detection pass.
type Findings struct {
	Spikes []models.SpikeFinding
	Shifts []models.SentimentShiftFinding
}

// DetectSpikes buckets all mentions within the lookback window and flags
// buckets whose count exceeds mean + sigma × stdev. Stdev is 0 when fewer
// than two buckets exist; an empty window yields no findings. The reported
// percentage deviation is (count − mean) / mean × 100 when mean > 0, else 0.
func (d *Detector) DetectSpikes(windowHours int, sigma float64, bucket string) ([]models.SpikeFinding, error) {
	if windowHours <= 0 {
		return nil, fmt.Errorf("invalid window %d: must be positive", windowHours)
	}
	if sigma <= 0 {
		return nil, fmt.Errorf("invalid sigma %f: must be positive", sigma)
	}

	since := time.Now().UTC().Add(-time.Duration(windowHours) * time.Hour)
	points, err := d.store.CountsByBucket(since, bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to bucket mentions: %w", err)
	}
	if len(points) == 0 {
		return nil, nil
	}

	counts := make([]float64, len(points))
	for i, p := range points {
		counts[i] = float64(p.Count)
	}

	mean := Mean(counts)
	stdev := SampleStdev(counts)
	threshold := mean + sigma*stdev

	var spikes []models.SpikeFinding
	for _, p := range points {
		if float64(p.Count) > threshold {
			percentage := 0.0
			if mean > 0 {
				percentage = (float64(p.Count) - mean) / mean * 100
			}
			spikes = append(spikes, models.SpikeFinding{
				Bucket:     p.Bucket,
				Count:      p.Count,
				Baseline:   mean,
				Stdev:      stdev,
				Percentage: percentage,
			})
		}
	}

	logger.Info("Detected %d spikes across %d buckets (window: %dh, sigma: %.2f)",
		len(spikes), len(points), windowHours, sigma)
	return spikes, nil
}

// DetectSentimentShift computes the sentiment distribution over the lookback
// window and classifies it: none when the window is empty, negative when the
// negative share exceeds 50%, positive when it is below 20%, neutral
// otherwise. Only a negative classification is expected to escalate to an
// alert; that policy belongs to the alert manager.
func (d *Detector) DetectSentimentShift(windowHours int) (models.SentimentShiftFinding, error) {
	if windowHours <= 0 {
		return models.SentimentShiftFinding{}, fmt.Errorf("invalid window %d: must be positive", windowHours)
	}

	since := time.Now().UTC().Add(-time.Duration(windowHours) * time.Hour)
	counts, err := d.store.SentimentCounts(since)
	if err != nil {
		return models.SentimentShiftFinding{}, fmt.Errorf("failed to query sentiment counts: %w", err)
	}

	total := 0
	for _, c := range counts {
		total += c
	}

	finding := models.SentimentShiftFinding{
		Shift:        models.ShiftNone,
		Distribution: counts,
		Percentages:  make(map[string]float64, len(counts)),
	}
	if total == 0 {
		return finding, nil
	}

	for label, c := range counts {
		finding.Percentages[label] = float64(c) / float64(total) * 100
	}

	negative := finding.Percentages[models.SentimentNegative]
	switch {
	case negative > 50:
		finding.Shift = models.ShiftNegative
	case negative < 20:
		finding.Shift = models.ShiftPositive
	default:
		finding.Shift = models.ShiftNeutral
	}

	logger.Info("Sentiment shift classified as %s (negative: %.1f%%, total: %d)",
		finding.Shift, negative, total)
	return finding, nil
}

// Run executes all checks parameterized by the enabled alert configs,
// falling back to the given defaults for any check without one. A malformed
// config skips its check and never aborts the others.
func (d *Detector) Run(defaults config.DetectionConfig) Findings {
	configs, err := d.store.ListAlertConfigs(true)
	if err != nil {
		logger.Error("Failed to load alert configs, using defaults: %v", err)
		configs = nil
	}

	spikeRan := false
	shiftRan := false
	var findings Findings

	for i := range configs {
		cfg := configs[i]
		if err := cfg.Validate(); err != nil {
			logger.Warn("Skipping malformed alert config %s: %v", cfg.ID, err)
			continue
		}

		switch cfg.AlertType {
		case models.AlertTypeSpike:
			spikes, err := d.DetectSpikes(cfg.WindowHours, cfg.Threshold, defaults.Bucket)
			if err != nil {
				logger.Warn("Spike detection failed for config %s: %v", cfg.ID, err)
				continue
			}
			findings.Spikes = append(findings.Spikes, spikes...)
			spikeRan = true
		case models.AlertTypeSentimentShift:
			shift, err := d.DetectSentimentShift(cfg.WindowHours)
			if err != nil {
				logger.Warn("Sentiment shift detection failed for config %s: %v", cfg.ID, err)
				continue
			}
			findings.Shifts = append(findings.Shifts, shift)
			shiftRan = true
		}
	}

	if !spikeRan {
		spikes, err := d.DetectSpikes(defaults.WindowHours, defaults.SpikeSigma, defaults.Bucket)
		if err != nil {
			logger.Warn("Default spike detection failed: %v", err)
		} else {
			findings.Spikes = append(findings.Spikes, spikes...)
		}
	}
	if !shiftRan {
		shift, err := d.DetectSentimentShift(defaults.WindowHours)
		if err != nil {
			logger.Warn("Default sentiment shift detection failed: %v", err)
		} else {
			findings.Shifts = append(findings.Shifts, shift)
		}
	}

	return findings
}

// Mean returns the arithmetic mean of values, or 0 for an empty slice.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// SampleStdev returns the sample standard deviation of values (Bessel
// correction, divide by n−1). It is 0 when fewer than two values exist.
func SampleStdev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	mean := Mean(values)
	var variance float64
	for _, v := range values {
		diff := v - mean
		variance += diff * diff
	}
	variance /= float64(len(values) - 1)
	return math.Sqrt(variance)
}
