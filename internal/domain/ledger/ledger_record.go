package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// LedgerRecord is the permanent balance carried for one inventory key across
// closing cycles. The opening columns always hold the previous cycle's closing
// values; only the ledger closer mutates them.
type LedgerRecord struct {
	Key      InventoryKey
	Name     string
	Unit     string
	Category string

	OpeningQty      decimal.Decimal
	OpeningAmount   decimal.Decimal
	OpeningUnitCost decimal.Decimal

	Flag      DailyFlag
	AsOfDate  time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ClosingResult is one key's committed outcome of a closing run, copied into
// the ledger and exposed to downstream reporting.
type ClosingResult struct {
	Key           InventoryKey
	ClosingQty    decimal.Decimal
	ClosingAmount decimal.Decimal
	UnitCost      decimal.Decimal
	GrossProfit   decimal.Decimal
	Flag          DailyFlag
}

// ApplyClosing rolls the record forward: this cycle's closing becomes the next
// cycle's opening and the as-of date advances to the job date.
func (r *LedgerRecord) ApplyClosing(result ClosingResult, jobDate time.Time) {
	r.OpeningQty = result.ClosingQty
	r.OpeningAmount = result.ClosingAmount
	r.OpeningUnitCost = result.UnitCost
	r.Flag = result.Flag
	r.AsOfDate = jobDate
}

// NewLedgerRecord registers a key first seen in today's flows with a zero
// opening balance. Attributes come from the product master, or from a
// synthesized placeholder when the master row is missing.
func NewLedgerRecord(key InventoryKey, name, unit, category string, jobDate time.Time) LedgerRecord {
	return LedgerRecord{
		Key:             key.Normalized(),
		Name:            name,
		Unit:            unit,
		Category:        category,
		OpeningQty:      decimal.Zero,
		OpeningAmount:   decimal.Zero,
		OpeningUnitCost: decimal.Zero,
		Flag:            FlagUnprocessed,
		AsOfDate:        jobDate,
	}
}
