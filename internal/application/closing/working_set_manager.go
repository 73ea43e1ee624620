package closing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/oroshi/backoffice/internal/domain/ledger"
	"github.com/oroshi/backoffice/internal/domain/shared"
)

// PlaceholderName is the synthesized product name registered for keys whose
// product master row is missing under the default policy.
const PlaceholderName = "*UNKNOWN*"

// WorkingSetManager creates and resets the ephemeral per-run valuation
// snapshot from the permanent ledger, and registers keys first seen in the
// day's flows so later joins never drop them.
type WorkingSetManager struct {
	ledgerRepo  ledger.LedgerRepository
	workingRepo ledger.WorkingSetRepository
	flowRepo    ledger.FlowRepository
	products    ledger.ProductMasterLookup
	policy      MissingMasterPolicy
	logger      *zap.Logger
}

// NewWorkingSetManager creates a new WorkingSetManager.
func NewWorkingSetManager(
	ledgerRepo ledger.LedgerRepository,
	workingRepo ledger.WorkingSetRepository,
	flowRepo ledger.FlowRepository,
	products ledger.ProductMasterLookup,
	policy MissingMasterPolicy,
	logger *zap.Logger,
) *WorkingSetManager {
	return &WorkingSetManager{
		ledgerRepo:  ledgerRepo,
		workingRepo: workingRepo,
		flowRepo:    flowRepo,
		products:    products,
		policy:      policy,
		logger:      logger,
	}
}

// CreateWorkingSet snapshots the ledger into the dataset's working set. A
// prior partial snapshot for the same dataset is reset in place rather than
// duplicated: daily columns and flags are zeroed, key rows survive. New keys
// appearing in the flows are registered before aggregation runs.
func (m *WorkingSetManager) CreateWorkingSet(ctx context.Context, datasetID string, jobDate *time.Time) error {
	if err := m.workingRepo.ClearDailyArea(ctx, datasetID); err != nil {
		return fmt.Errorf("clear daily area for dataset %s: %w", datasetID, err)
	}

	snapshot, err := m.ledgerRepo.Snapshot(ctx, jobDate)
	if err != nil {
		return fmt.Errorf("snapshot ledger for dataset %s: %w", datasetID, err)
	}

	records := make([]ledger.WorkingRecord, 0, len(snapshot))
	known := make(map[ledger.InventoryKey]struct{}, len(snapshot))
	for _, rec := range snapshot {
		records = append(records, ledger.NewWorkingRecord(datasetID, rec))
		known[rec.Key.Normalized()] = struct{}{}
	}
	if err := m.pruneStaleRows(ctx, datasetID, known); err != nil {
		return err
	}
	if len(records) > 0 {
		if err := m.workingRepo.Upsert(ctx, records); err != nil {
			return fmt.Errorf("upsert working snapshot for dataset %s: %w", datasetID, err)
		}
	}

	registered, err := m.registerNewKeys(ctx, datasetID, jobDate, known)
	if err != nil {
		return err
	}

	runLogger(ctx, m.logger).Info("working set created",
		zap.Int("snapshot_keys", len(records)),
		zap.Int("registered_keys", registered))
	return nil
}

// pruneStaleRows drops working rows whose key is absent from the snapshot.
// They belong to ledger rows already closed past the requested job date and
// would otherwise carry a newer opening balance into a backdated run.
func (m *WorkingSetManager) pruneStaleRows(ctx context.Context, datasetID string, known map[ledger.InventoryKey]struct{}) error {
	existing, err := m.workingRepo.FindByDataset(ctx, datasetID)
	if err != nil {
		return fmt.Errorf("load working set for dataset %s: %w", datasetID, err)
	}

	var stale []ledger.InventoryKey
	for _, w := range existing {
		if _, ok := known[w.Key.Normalized()]; !ok {
			stale = append(stale, w.Key)
		}
	}
	if len(stale) == 0 {
		return nil
	}

	if err := m.workingRepo.DeleteKeys(ctx, datasetID, stale); err != nil {
		return fmt.Errorf("prune stale working rows for dataset %s: %w", datasetID, err)
	}
	runLogger(ctx, m.logger).Warn("pruned working rows absent from ledger snapshot",
		zap.Int("keys", len(stale)))
	return nil
}

// registerNewKeys finds keys present in the flows but absent from the ledger
// and registers them with a zero opening balance before aggregation runs.
func (m *WorkingSetManager) registerNewKeys(
	ctx context.Context,
	datasetID string,
	jobDate *time.Time,
	known map[ledger.InventoryKey]struct{},
) (int, error) {
	flowKeys, err := m.flowRepo.ListKeys(ctx, datasetID, jobDate)
	if err != nil {
		return 0, fmt.Errorf("list flow keys for dataset %s: %w", datasetID, err)
	}

	asOf := time.Time{}
	if jobDate != nil {
		asOf = *jobDate
	}

	var newLedger []ledger.LedgerRecord
	var newWorking []ledger.WorkingRecord
	for _, key := range flowKeys {
		if _, ok := known[key]; ok {
			continue
		}
		// A ledger row outside the snapshot window means this key was
		// already closed past the requested job date. Reprocessing it in
		// place would clobber a newer close, so the run refuses.
		if _, err := m.ledgerRepo.FindByKey(ctx, key); err == nil {
			return 0, fmt.Errorf("key %s already closed past the requested job date, reprocess in a fresh dataset: %w",
				key, shared.ErrInvalidState)
		} else if !errors.Is(err, shared.ErrNotFound) {
			return 0, fmt.Errorf("look up ledger key %s: %w", key, err)
		}
		attrs, err := m.resolveAttrs(ctx, key)
		if err != nil {
			return 0, err
		}
		rec := ledger.NewLedgerRecord(key, attrs.Name, attrs.Unit, attrs.Category, asOf)
		newLedger = append(newLedger, rec)
		newWorking = append(newWorking, ledger.NewWorkingRecord(datasetID, rec))
	}
	if len(newLedger) == 0 {
		return 0, nil
	}

	if err := m.ledgerRepo.Register(ctx, newLedger); err != nil {
		return 0, fmt.Errorf("register new ledger keys for dataset %s: %w", datasetID, err)
	}
	if err := m.workingRepo.Upsert(ctx, newWorking); err != nil {
		return 0, fmt.Errorf("upsert new working keys for dataset %s: %w", datasetID, err)
	}
	return len(newLedger), nil
}

// resolveAttrs looks up the product master, applying the configured policy on
// a miss. The default policy synthesizes a placeholder name padded to the
// shipping-mark-name width convention; strict surfaces a data integrity error.
func (m *WorkingSetManager) resolveAttrs(ctx context.Context, key ledger.InventoryKey) (*ledger.ProductAttrs, error) {
	attrs, err := m.products.GetProductAttrs(ctx, key.ProductCode)
	if err == nil {
		return attrs, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, fmt.Errorf("look up product %s: %w", key.ProductCode, err)
	}

	if m.policy == PolicyStrict {
		runLogger(ctx, m.logger).Error("product master missing",
			zap.String("product_code", key.ProductCode),
			zap.String("policy", string(PolicyStrict)))
		return nil, fmt.Errorf("product master missing for %s: %w", key.ProductCode, shared.ErrDataIntegrity)
	}

	runLogger(ctx, m.logger).Warn("product master missing, synthesizing placeholder",
		zap.String("product_code", key.ProductCode),
		zap.String("policy", string(PolicyDefault)))
	name := PlaceholderName
	if len(name) < ledger.ShippingMarkNameWidth {
		name += strings.Repeat(" ", ledger.ShippingMarkNameWidth-len(name))
	}
	return &ledger.ProductAttrs{Name: name}, nil
}
