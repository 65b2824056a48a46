// Package pipeline orchestrates one complete ingestion run: aggregate,
// enrich, persist, then detect and alert. Each run is a bounded unit of work;
// there is no long-lived background task inside it.
package pipeline

import (
	"context"
	"fmt"

	"github.com/sahilgurav23/Brand-Mention-Reputation-Tracker/internal/aggregate"
	"github.com/sahilgurav23/Brand-Mention-Reputation-Tracker/internal/alerting"
	"github.com/sahilgurav23/Brand-Mention-Reputation-Tracker/internal/config"
	"github.com/sahilgurav23/Brand-Mention-Reputation-Tracker/internal/detector"
	"github.com/sahilgurav23/Brand-Mention-Reputation-Tracker/internal/enrich"
	"github.com/sahilgurav23/Brand-Mention-Reputation-Tracker/internal/logger"
	"github.com/sahilgurav23/Brand-Mention-Reputation-Tracker/internal/models"
	"github.com/sahilgurav23/Brand-Mention-Reputation-Tracker/internal/storage"
)

// Result reports the outcome of one ingestion run.
type Result struct {
	Count  int            `json:"count"`
	Alerts []models.Alert `json:"alerts,omitempty"`
}

// Pipeline wires the ingestion stages together.
type Pipeline struct {
	aggregator *aggregate.Aggregator
	enricher   *enrich.Enricher
	store      *storage.Store
	detector   *detector.Detector
	alerts     *alerting.Manager
	detection  config.DetectionConfig
}

// New creates a Pipeline.
func New(
	aggregator *aggregate.Aggregator,
	enricher *enrich.Enricher,
	store *storage.Store,
	det *detector.Detector,
	alerts *alerting.Manager,
	detection config.DetectionConfig,
) *Pipeline {
	return &Pipeline{
		aggregator: aggregator,
		enricher:   enricher,
		store:      store,
		detector:   det,
		alerts:     alerts,
		detection:  detection,
	}
}

// Run executes one ingestion for the query. The enriched batch is persisted
// in a single all-or-nothing transaction; on success, detection and alerting
// run synchronously so callers observe fresh alerts on return. Zero
// aggregated candidates is a successful no-op with count 0.
func (p *Pipeline) Run(ctx context.Context, query string) (Result, error) {
	candidates := p.aggregator.Aggregate(ctx, query)
	if len(candidates) == 0 {
		logger.Info("No mentions returned from any source; nothing to ingest")
		return Result{Count: 0}, nil
	}

	mentions := p.enricher.Enrich(ctx, candidates)
	if len(mentions) == 0 {
		logger.Info("No candidates survived enrichment; nothing to ingest")
		return Result{Count: 0}, nil
	}

	if err := p.store.BulkInsertMentions(mentions); err != nil {
		return Result{}, fmt.Errorf("failed to persist ingestion batch: %w", err)
	}
	logger.Info("Ingested %d mentions", len(mentions))

	findings := p.detector.Run(p.detection)
	created := p.alerts.HandleFindings(findings)

	return Result{Count: len(mentions), Alerts: created}, nil
}
