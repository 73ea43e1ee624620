package closing

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/oroshi/backoffice/internal/domain/ledger"
)

// FlowAggregator pulls normalized flow events per category and writes the
// per-category sums into the working snapshot. Each category overwrites only
// its own columns, so a full re-run over an unchanged flow set reproduces the
// working state exactly.
type FlowAggregator struct {
	flowRepo    ledger.FlowRepository
	workingRepo ledger.WorkingSetRepository
	logger      *zap.Logger
}

// NewFlowAggregator creates a new FlowAggregator.
func NewFlowAggregator(
	flowRepo ledger.FlowRepository,
	workingRepo ledger.WorkingSetRepository,
	logger *zap.Logger,
) *FlowAggregator {
	return &FlowAggregator{
		flowRepo:    flowRepo,
		workingRepo: workingRepo,
		logger:      logger,
	}
}

// Aggregate processes every flow category in declaration order. A nil jobDate
// aggregates the whole dataset (cumulative/backfill mode).
func (a *FlowAggregator) Aggregate(ctx context.Context, datasetID string, jobDate *time.Time) error {
	for _, category := range ledger.AllCategories() {
		if err := a.aggregateCategory(ctx, datasetID, jobDate, category); err != nil {
			return err
		}
	}
	return nil
}

func (a *FlowAggregator) aggregateCategory(
	ctx context.Context,
	datasetID string,
	jobDate *time.Time,
	category ledger.FlowCategory,
) error {
	events, err := a.flowRepo.ListFlows(ctx, datasetID, jobDate, category)
	if err != nil {
		return fmt.Errorf("list %s flows for dataset %s: %w", category, datasetID, err)
	}

	totals := ledger.AggregateFlows(category, events)
	if len(totals) == 0 {
		runLogger(ctx, a.logger).Debug("no flows for category",
			zap.String("category", string(category)))
		return nil
	}

	if err := a.workingRepo.ApplyCategoryTotals(ctx, datasetID, category, totals); err != nil {
		return fmt.Errorf("apply %s totals for dataset %s: %w", category, datasetID, err)
	}

	runLogger(ctx, a.logger).Info("category aggregated",
		zap.String("category", string(category)),
		zap.Int("events", len(events)),
		zap.Int("keys", len(totals)))
	return nil
}
