package ledger

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// LedgerRepository is the store contract for the permanent ledger.
type LedgerRepository interface {
	// Snapshot returns every ledger record, optionally restricted to rows
	// whose as-of date is on or before jobDate (nil means all rows).
	Snapshot(ctx context.Context, jobDate *time.Time) ([]LedgerRecord, error)
	// FindByKey returns the ledger record for a normalized key.
	FindByKey(ctx context.Context, key InventoryKey) (*LedgerRecord, error)
	// Register inserts ledger records for keys first seen in today's flows.
	Register(ctx context.Context, records []LedgerRecord) error
	// Commit applies every closing result inside one transaction and returns
	// the number of ledger rows affected. Partial commits are not permitted.
	Commit(ctx context.Context, datasetID string, jobDate time.Time, results []ClosingResult) (int64, error)
	// PurgeBefore deletes ledger rows whose as-of date is older than cutoff.
	// This is the only sanctioned ledger delete path (retention cleanup).
	PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// WorkingSetRepository is the store contract for the disposable working
// snapshot. All writes are idempotent overwrites keyed by (dataset, key).
type WorkingSetRepository interface {
	// Upsert inserts or fully overwrites working records.
	Upsert(ctx context.Context, records []WorkingRecord) error
	// ClearDailyArea zeroes daily, closing, and profit columns and resets the
	// flag for every row of the dataset, preserving key rows and openings.
	ClearDailyArea(ctx context.Context, datasetID string) error
	// FindByDataset returns every working record of the dataset, ordered by key.
	FindByDataset(ctx context.Context, datasetID string) ([]WorkingRecord, error)
	// DeleteKeys drops the given working rows of the dataset. Used to evict
	// rows whose ledger row fell outside the snapshot window.
	DeleteKeys(ctx context.Context, datasetID string, keys []InventoryKey) error
	// ApplyCategoryTotals overwrites the columns owned by category with the
	// given totals and advances the flag for keys with activity.
	ApplyCategoryTotals(ctx context.Context, datasetID string, category FlowCategory, totals []CategoryTotals) error
	// SaveValuation writes computed unit cost and closing columns per key.
	SaveValuation(ctx context.Context, datasetID string, results map[InventoryKey]ValuationResult) error
	// SaveGrossProfit writes computed per-key gross profit.
	SaveGrossProfit(ctx context.Context, datasetID string, profits map[InventoryKey]decimal.Decimal) error
	// Purge drops every working row of the dataset.
	Purge(ctx context.Context, datasetID string) error
}

// FlowRepository is the voucher-feed collaborator boundary. Implementations
// return normalized flow events; this engine never parses vouchers itself.
type FlowRepository interface {
	// ListFlows returns the dataset's flow events for one category. A nil
	// jobDate selects the whole dataset (cumulative/backfill mode).
	ListFlows(ctx context.Context, datasetID string, jobDate *time.Time, category FlowCategory) ([]FlowEvent, error)
	// ListKeys returns the distinct normalized keys in the dataset's flows.
	ListKeys(ctx context.Context, datasetID string, jobDate *time.Time) ([]InventoryKey, error)
	// LatestJobDate returns the most recent job date among the dataset's
	// flows, or nil when the dataset has none.
	LatestJobDate(ctx context.Context, datasetID string) (*time.Time, error)
}

// ProductAttrs are the descriptive attributes of a product master row.
type ProductAttrs struct {
	Name     string
	Unit     string
	Category string
}

// ProductMasterLookup resolves product attributes for key registration.
type ProductMasterLookup interface {
	// GetProductAttrs returns the attributes of a product code, or
	// shared.ErrNotFound when the master row is missing.
	GetProductAttrs(ctx context.Context, productCode string) (*ProductAttrs, error)
}

// SupplierMasterLookup resolves the incentive eligibility of a supplier.
type SupplierMasterLookup interface {
	// GetSupplierCategory reports whether the supplier's category is flagged
	// incentive-eligible. A missing master row defaults to not eligible.
	GetSupplierCategory(ctx context.Context, supplierCode string) (eligible bool, err error)
}

// CustomerMasterLookup resolves the walking-discount rate of a customer.
type CustomerMasterLookup interface {
	// GetCustomerRate returns the customer's rebate percentage. A missing
	// master row defaults to a zero rate.
	GetCustomerRate(ctx context.Context, customerCode string) (decimal.Decimal, error)
}
