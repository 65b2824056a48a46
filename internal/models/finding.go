package models

import "time"

// Bucket granularities accepted by the detector.
const (
	BucketHour = "hour"
	BucketDay  = "day"
)

// SeriesPoint is one (bucket start, count) pair of a bucketed time series.
// The series is derived on demand from persisted mentions and never stored.
type SeriesPoint struct {
	Bucket time.Time `json:"bucket"`
	Count  int       `json:"count"`
}

// SpikeFinding describes one bucket whose count exceeded the
// mean + sigma*stdev threshold over the lookback window.
type SpikeFinding struct {
	Bucket     time.Time `json:"timestamp"`
	Count      int       `json:"count"`
	Baseline   float64   `json:"baseline"`
	Stdev      float64   `json:"stdev"`
	Percentage float64   `json:"spike_percentage"`
}

// Shift classifications. ShiftNegative is the only classification that
// escalates to an alert; the others describe the absence of concern.
const (
	ShiftPositive = "positive"
	ShiftNegative = "negative"
	ShiftNeutral  = "neutral"
	ShiftNone     = "none"
)

// SentimentShiftFinding describes the sentiment distribution over the
// lookback window and its classification.
type SentimentShiftFinding struct {
	Shift        string             `json:"shift"`
	Distribution map[string]int     `json:"distribution"`
	Percentages  map[string]float64 `json:"percentages"`
}
