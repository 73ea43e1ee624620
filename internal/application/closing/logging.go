package closing

import (
	"context"

	"go.uber.org/zap"

	"github.com/oroshi/backoffice/internal/infrastructure/logger"
)

// runLogger enriches a service logger with the run and dataset identifiers
// the orchestrator carries on the context, so every stage's diagnostics can
// be correlated to one run.
func runLogger(ctx context.Context, base *zap.Logger) *zap.Logger {
	if runID := logger.GetRunID(ctx); runID != "" {
		base = base.With(zap.String("run_id", runID))
	}
	if datasetID := logger.GetDatasetID(ctx); datasetID != "" {
		base = base.With(zap.String("dataset_id", datasetID))
	}
	return base
}
