package logger

import (
	"context"

	"go.uber.org/zap"
)

// contextKey is a type for context keys used by the logger package
type contextKey string

const (
	// LoggerKey is the context key for the logger
	LoggerKey contextKey = "logger"
	// RunIDKey is the context key for the closing run identifier
	RunIDKey contextKey = "run_id"
	// DatasetIDKey is the context key for the dataset being processed
	DatasetIDKey contextKey = "dataset_id"
)

// WithContext returns a new context with the logger attached
func WithContext(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, LoggerKey, logger)
}

// FromContext retrieves the logger from context, returns a no-op logger if not found
func FromContext(ctx context.Context) *zap.Logger {
	if logger, ok := ctx.Value(LoggerKey).(*zap.Logger); ok {
		return logger
	}
	return zap.NewNop()
}

// WithRunID attaches a run identifier to the context and returns a logger
// enriched with it, so every diagnostic of a closing run carries the run ID.
func WithRunID(ctx context.Context, logger *zap.Logger, runID string) (context.Context, *zap.Logger) {
	ctx = context.WithValue(ctx, RunIDKey, runID)
	enriched := logger.With(zap.String("run_id", runID))
	return WithContext(ctx, enriched), enriched
}

// WithDatasetID attaches the dataset identifier to the context and returns an
// enriched logger.
func WithDatasetID(ctx context.Context, logger *zap.Logger, datasetID string) (context.Context, *zap.Logger) {
	ctx = context.WithValue(ctx, DatasetIDKey, datasetID)
	enriched := logger.With(zap.String("dataset_id", datasetID))
	return WithContext(ctx, enriched), enriched
}

// GetRunID retrieves the run identifier from context
func GetRunID(ctx context.Context) string {
	if runID, ok := ctx.Value(RunIDKey).(string); ok {
		return runID
	}
	return ""
}

// GetDatasetID retrieves the dataset identifier from context
func GetDatasetID(ctx context.Context) string {
	if datasetID, ok := ctx.Value(DatasetIDKey).(string); ok {
		return datasetID
	}
	return ""
}
