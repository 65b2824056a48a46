// Package aggregate fans a query out to all registered source adapters and
// flattens their results. Partial source failure degrades coverage but never
// fails the aggregation.
package aggregate

import (
	"context"
	"sync"

	"github.com/sahilgurav23/Brand-Mention-Reputation-Tracker/internal/logger"
	"github.com/sahilgurav23/Brand-Mention-Reputation-Tracker/internal/models"
	"github.com/sahilgurav23/Brand-Mention-Reputation-Tracker/internal/source"
)

// Aggregator runs all registered adapters concurrently for a query.
type Aggregator struct {
	adapters []source.Adapter
}

// New creates an Aggregator over the given adapters. Output ordering follows
// adapter registration order.
func New(adapters ...source.Adapter) *Aggregator {
	return &Aggregator{adapters: adapters}
}

// Aggregate invokes every adapter concurrently with the same query and
// concatenates the results in registration order, preserving each source's
// internal order. Each adapter bounds its own calls with its configured
// timeout; a slow or failing adapter contributes an empty slice without
// blocking the others.
func (a *Aggregator) Aggregate(ctx context.Context, query string) []models.Candidate {
	logger.Info("Starting aggregation for query: %s", query)

	results := make([][]models.Candidate, len(a.adapters))

	var wg sync.WaitGroup
	for i, adapter := range a.adapters {
		wg.Add(1)
		go func(i int, adapter source.Adapter) {
			defer wg.Done()
			results[i] = adapter.Fetch(ctx, query)
		}(i, adapter)
	}
	wg.Wait()

	var all []models.Candidate
	for _, batch := range results {
		all = append(all, batch...)
	}

	logger.Info("Aggregated %d mentions from %d sources", len(all), len(a.adapters))
	return all
}
