package closing

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/oroshi/backoffice/internal/domain/ledger"
)

// MissingMasterPolicy decides what happens when a key's product, supplier, or
// customer master row is missing. Exactly one policy applies to a whole run;
// the applied policy is recorded on every log line it triggers.
type MissingMasterPolicy string

const (
	// PolicyDefault synthesizes placeholder attributes and zero rates.
	PolicyDefault MissingMasterPolicy = "default"
	// PolicyStrict fails the run with a data integrity error.
	PolicyStrict MissingMasterPolicy = "strict"
)

// RunRequest identifies one closing run. A nil JobDate selects
// cumulative/backfill mode over the whole dataset.
type RunRequest struct {
	DatasetID string
	JobDate   *time.Time
}

// RunResult summarizes one completed closing run.
type RunResult struct {
	RunID              string
	DatasetID          string
	JobDate            *time.Time
	KeysProcessed      int
	LedgerRowsAffected int64
	StartedAt          time.Time
	Duration           time.Duration
}

// ValuationRecord is the per-key outcome exposed to downstream reporting.
type ValuationRecord struct {
	Key           ledger.InventoryKey
	ClosingQty    decimal.Decimal
	ClosingAmount decimal.Decimal
	UnitCost      decimal.Decimal
	GrossProfit   decimal.Decimal
	Flag          ledger.DailyFlag
}

// ValuationRecordOf maps a working record onto the reporting shape.
func ValuationRecordOf(w ledger.WorkingRecord) ValuationRecord {
	return ValuationRecord{
		Key:           w.Key,
		ClosingQty:    w.ClosingQty,
		ClosingAmount: w.ClosingAmount,
		UnitCost:      w.UnitCost,
		GrossProfit:   w.GrossProfit,
		Flag:          w.Flag,
	}
}
