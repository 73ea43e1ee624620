package closing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/oroshi/backoffice/internal/domain/ledger"
	"github.com/oroshi/backoffice/internal/domain/shared"
)

// ProfitService derives per-line gross profit using the same-day unit cost
// from the valuation stage, aggregates it per key, and nets out the incentive
// and walking-discount side calculations. Both side figures use the single
// authoritative formulas in the domain package, settled to whole units.
type ProfitService struct {
	workingRepo ledger.WorkingSetRepository
	flowRepo    ledger.FlowRepository
	suppliers   ledger.SupplierMasterLookup
	customers   ledger.CustomerMasterLookup
	policy      MissingMasterPolicy
	logger      *zap.Logger
}

// NewProfitService creates a new ProfitService.
func NewProfitService(
	workingRepo ledger.WorkingSetRepository,
	flowRepo ledger.FlowRepository,
	suppliers ledger.SupplierMasterLookup,
	customers ledger.CustomerMasterLookup,
	policy MissingMasterPolicy,
	logger *zap.Logger,
) *ProfitService {
	return &ProfitService{
		workingRepo: workingRepo,
		flowRepo:    flowRepo,
		suppliers:   suppliers,
		customers:   customers,
		policy:      policy,
		logger:      logger,
	}
}

// ComputeProfit computes and persists per-key gross profit. Profit
// recognition is same-day-cost: unitCosts must be the valuation results of
// this run, not a prior period's ledger costs.
func (s *ProfitService) ComputeProfit(
	ctx context.Context,
	datasetID string,
	jobDate *time.Time,
	unitCosts map[ledger.InventoryKey]ledger.ValuationResult,
) (map[ledger.InventoryKey]decimal.Decimal, error) {
	lineProfit, salesByParty, err := s.sumSalesLines(ctx, datasetID, jobDate, unitCosts)
	if err != nil {
		return nil, err
	}
	purchaseByParty, err := s.sumPurchaseLines(ctx, datasetID, jobDate)
	if err != nil {
		return nil, err
	}

	walking, err := s.walkingDiscounts(ctx, salesByParty)
	if err != nil {
		return nil, err
	}
	incentives, err := s.incentives(ctx, purchaseByParty)
	if err != nil {
		return nil, err
	}

	records, err := s.workingRepo.FindByDataset(ctx, datasetID)
	if err != nil {
		return nil, fmt.Errorf("load working set for dataset %s: %w", datasetID, err)
	}

	profits := make(map[ledger.InventoryKey]decimal.Decimal, len(records))
	for _, w := range records {
		profits[w.Key] = ledger.KeyProfit(
			lineProfit[w.Key],
			incentives[w.Key],
			walking[w.Key],
			w.AdjustmentAmount,
			w.ProcessingAmount,
		)
	}

	if len(profits) > 0 {
		if err := s.workingRepo.SaveGrossProfit(ctx, datasetID, profits); err != nil {
			return nil, fmt.Errorf("save gross profit for dataset %s: %w", datasetID, err)
		}
	}

	runLogger(ctx, s.logger).Info("gross profit computed",
		zap.Int("keys", len(profits)))
	return profits, nil
}

type partyAmount struct {
	key   ledger.InventoryKey
	party string
}

// sumSalesLines walks every sales goods line, recognizing line profit against
// the key's same-day unit cost and accumulating sales amounts per customer
// for the walking-discount stage. Return lines carry negative quantities and
// net in symmetrically.
func (s *ProfitService) sumSalesLines(
	ctx context.Context,
	datasetID string,
	jobDate *time.Time,
	unitCosts map[ledger.InventoryKey]ledger.ValuationResult,
) (map[ledger.InventoryKey]decimal.Decimal, map[partyAmount]decimal.Decimal, error) {
	events, err := s.flowRepo.ListFlows(ctx, datasetID, jobDate, ledger.CategorySales)
	if err != nil {
		return nil, nil, fmt.Errorf("list sales flows for dataset %s: %w", datasetID, err)
	}

	lineProfit := make(map[ledger.InventoryKey]decimal.Decimal)
	salesByParty := make(map[partyAmount]decimal.Decimal)
	for _, e := range events {
		if !e.Matches(ledger.CategorySales) {
			continue
		}
		key := e.Key.Normalized()
		price := ledger.LineUnitPrice(e.UnitPrice, e.Amount, e.Quantity)
		cost := unitCosts[key].UnitCost
		lineProfit[key] = lineProfit[key].Add(ledger.LineProfit(price, cost, e.Quantity))

		group := partyAmount{key: key, party: e.PartyCode}
		salesByParty[group] = salesByParty[group].Add(e.Amount)
	}
	return lineProfit, salesByParty, nil
}

// sumPurchaseLines accumulates positive purchase amounts per supplier for the
// incentive stage. Purchase returns do not earn incentives.
func (s *ProfitService) sumPurchaseLines(
	ctx context.Context,
	datasetID string,
	jobDate *time.Time,
) (map[partyAmount]decimal.Decimal, error) {
	events, err := s.flowRepo.ListFlows(ctx, datasetID, jobDate, ledger.CategoryPurchase)
	if err != nil {
		return nil, fmt.Errorf("list purchase flows for dataset %s: %w", datasetID, err)
	}

	purchaseByParty := make(map[partyAmount]decimal.Decimal)
	for _, e := range events {
		if !e.Matches(ledger.CategoryPurchase) || e.Quantity.IsNegative() {
			continue
		}
		group := partyAmount{key: e.Key.Normalized(), party: e.PartyCode}
		purchaseByParty[group] = purchaseByParty[group].Add(e.Amount)
	}
	return purchaseByParty, nil
}

// walkingDiscounts settles each (key, customer) sales total against the
// customer's rebate rate. Missing customer masters default to a zero rate
// under the default policy.
func (s *ProfitService) walkingDiscounts(
	ctx context.Context,
	salesByParty map[partyAmount]decimal.Decimal,
) (map[ledger.InventoryKey]decimal.Decimal, error) {
	rates := make(map[string]decimal.Decimal)
	out := make(map[ledger.InventoryKey]decimal.Decimal)
	for group, amount := range salesByParty {
		rate, ok := rates[group.party]
		if !ok {
			var err error
			rate, err = s.customers.GetCustomerRate(ctx, group.party)
			if err != nil {
				if !errors.Is(err, shared.ErrNotFound) {
					return nil, fmt.Errorf("look up customer %s: %w", group.party, err)
				}
				if s.policy == PolicyStrict {
					return nil, fmt.Errorf("customer master missing for %s: %w", group.party, shared.ErrDataIntegrity)
				}
				runLogger(ctx, s.logger).Warn("customer master missing, defaulting to zero rate",
					zap.String("customer_code", group.party),
					zap.String("policy", string(PolicyDefault)))
				rate = decimal.Zero
			}
			rates[group.party] = rate
		}
		out[group.key] = out[group.key].Add(ledger.WalkingDiscount(amount, rate))
	}
	return out, nil
}

// incentives settles each (key, supplier) purchase total against the
// supplier's incentive eligibility. Missing supplier masters default to not
// eligible under the default policy.
func (s *ProfitService) incentives(
	ctx context.Context,
	purchaseByParty map[partyAmount]decimal.Decimal,
) (map[ledger.InventoryKey]decimal.Decimal, error) {
	eligibility := make(map[string]bool)
	out := make(map[ledger.InventoryKey]decimal.Decimal)
	for group, amount := range purchaseByParty {
		eligible, ok := eligibility[group.party]
		if !ok {
			var err error
			eligible, err = s.suppliers.GetSupplierCategory(ctx, group.party)
			if err != nil {
				if !errors.Is(err, shared.ErrNotFound) {
					return nil, fmt.Errorf("look up supplier %s: %w", group.party, err)
				}
				if s.policy == PolicyStrict {
					return nil, fmt.Errorf("supplier master missing for %s: %w", group.party, shared.ErrDataIntegrity)
				}
				runLogger(ctx, s.logger).Warn("supplier master missing, defaulting to not eligible",
					zap.String("supplier_code", group.party),
					zap.String("policy", string(PolicyDefault)))
				eligible = false
			}
			eligibility[group.party] = eligible
		}
		out[group.key] = out[group.key].Add(ledger.Incentive(amount, eligible))
	}
	return out, nil
}
