package closing

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/oroshi/backoffice/internal/domain/ledger"
	"github.com/oroshi/backoffice/internal/domain/shared"
)

// LedgerCloser commits the working set's closing values into the permanent
// ledger. This is the single durable effect of a run: until Commit executes,
// an aborted run leaves the ledger untouched. The commit itself is
// all-or-nothing per (dataset, jobDate) and safe to re-invoke.
type LedgerCloser struct {
	ledgerRepo  ledger.LedgerRepository
	workingRepo ledger.WorkingSetRepository
	logger      *zap.Logger
}

// NewLedgerCloser creates a new LedgerCloser.
func NewLedgerCloser(
	ledgerRepo ledger.LedgerRepository,
	workingRepo ledger.WorkingSetRepository,
	logger *zap.Logger,
) *LedgerCloser {
	return &LedgerCloser{
		ledgerRepo:  ledgerRepo,
		workingRepo: workingRepo,
		logger:      logger,
	}
}

// Commit copies every working record's closing values into the matching
// ledger rows inside one transaction and advances the ledger's as-of date.
// Any failure aborts the whole close; partial ledger commits never happen.
func (c *LedgerCloser) Commit(ctx context.Context, datasetID string, jobDate time.Time) (int64, error) {
	records, err := c.workingRepo.FindByDataset(ctx, datasetID)
	if err != nil {
		return 0, fmt.Errorf("load working set for dataset %s: %w", datasetID, err)
	}
	if len(records) == 0 {
		runLogger(ctx, c.logger).Info("nothing to close")
		return 0, nil
	}

	results := make([]ledger.ClosingResult, len(records))
	for i, w := range records {
		results[i] = w.ClosingResult()
	}

	affected, err := c.ledgerRepo.Commit(ctx, datasetID, jobDate, results)
	if err != nil {
		runLogger(ctx, c.logger).Error("ledger commit failed, run aborted",
			zap.Time("job_date", jobDate),
			zap.Error(err))
		return 0, fmt.Errorf("commit ledger for dataset %s: %w: %w", datasetID, shared.ErrRunAborted, err)
	}

	runLogger(ctx, c.logger).Info("ledger closed",
		zap.Time("job_date", jobDate),
		zap.Int64("rows_affected", affected))
	return affected, nil
}
