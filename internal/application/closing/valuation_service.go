package closing

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/oroshi/backoffice/internal/domain/ledger"
)

// ValuationService recomputes the moving-average unit cost and the closing
// position of every key in the working set. The math itself lives in the
// domain package and touches no store; this service only moves records.
type ValuationService struct {
	workingRepo ledger.WorkingSetRepository
	logger      *zap.Logger
}

// NewValuationService creates a new ValuationService.
func NewValuationService(workingRepo ledger.WorkingSetRepository, logger *zap.Logger) *ValuationService {
	return &ValuationService{workingRepo: workingRepo, logger: logger}
}

// Valuate computes and persists the valuation of every working record and
// returns the results keyed by normalized inventory key for the profit stage.
func (s *ValuationService) Valuate(ctx context.Context, datasetID string) (map[ledger.InventoryKey]ledger.ValuationResult, error) {
	records, err := s.workingRepo.FindByDataset(ctx, datasetID)
	if err != nil {
		return nil, fmt.Errorf("load working set for dataset %s: %w", datasetID, err)
	}

	results := make(map[ledger.InventoryKey]ledger.ValuationResult, len(records))
	for _, w := range records {
		results[w.Key] = ledger.ComputeValuation(ledger.ValuationInputOf(w))
	}

	if len(results) > 0 {
		if err := s.workingRepo.SaveValuation(ctx, datasetID, results); err != nil {
			return nil, fmt.Errorf("save valuation for dataset %s: %w", datasetID, err)
		}
	}

	runLogger(ctx, s.logger).Info("valuation computed",
		zap.Int("keys", len(results)))
	return results, nil
}
