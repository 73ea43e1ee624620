package closing

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/oroshi/backoffice/internal/domain/ledger"
)

// ReportService exposes the per-key valuation outcome of a run to downstream
// reporting and owns the working-set retention cleanup. Read-side queries may
// run concurrently with each other but never with the closing step; callers
// serialize through the same dataset lock when that matters.
type ReportService struct {
	ledgerRepo  ledger.LedgerRepository
	workingRepo ledger.WorkingSetRepository
	logger      *zap.Logger
}

// NewReportService creates a new ReportService.
func NewReportService(ledgerRepo ledger.LedgerRepository, workingRepo ledger.WorkingSetRepository, logger *zap.Logger) *ReportService {
	return &ReportService{ledgerRepo: ledgerRepo, workingRepo: workingRepo, logger: logger}
}

// Valuations returns every key's valuation record for the dataset, ordered by
// key.
func (s *ReportService) Valuations(ctx context.Context, datasetID string) ([]ValuationRecord, error) {
	records, err := s.workingRepo.FindByDataset(ctx, datasetID)
	if err != nil {
		return nil, fmt.Errorf("load working set for dataset %s: %w", datasetID, err)
	}

	out := make([]ValuationRecord, len(records))
	for i, w := range records {
		out[i] = ValuationRecordOf(w)
	}
	return out, nil
}

// PurgeWorkingSet drops the dataset's transient rows. The working set is
// disposable between runs; the next run recreates it from the ledger.
func (s *ReportService) PurgeWorkingSet(ctx context.Context, datasetID string) error {
	if err := s.workingRepo.Purge(ctx, datasetID); err != nil {
		return fmt.Errorf("purge working set for dataset %s: %w", datasetID, err)
	}
	s.logger.Info("working set purged", zap.String("dataset_id", datasetID))
	return nil
}

// PurgeLedgerBefore deletes ledger rows whose as-of date is older than cutoff
// and returns how many were dropped. This retention cleanup is the only
// sanctioned ledger delete and only runs on explicit operator request.
func (s *ReportService) PurgeLedgerBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	purged, err := s.ledgerRepo.PurgeBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge ledger before %s: %w", cutoff.Format("2006-01-02"), err)
	}
	s.logger.Info("ledger retention cleanup",
		zap.String("cutoff", cutoff.Format("2006-01-02")),
		zap.Int64("purged_rows", purged))
	return purged, nil
}
