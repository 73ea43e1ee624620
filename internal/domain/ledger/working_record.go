package ledger

import (
	"github.com/shopspring/decimal"
)

// DailyFlag marks whether a working record received any flow during the run.
// It only advances Unprocessed -> Processed within a run, never back.
type DailyFlag int

const (
	FlagUnprocessed DailyFlag = 0
	FlagProcessed   DailyFlag = 1
)

// WorkingRecord is the disposable per-run valuation state for one inventory
// key within one dataset. It is created from the ledger snapshot, overwritten
// in place by every aggregation step, and discarded on reprocessing; it is
// never authoritative outside a run.
type WorkingRecord struct {
	DatasetID string
	Key       InventoryKey

	OpeningQty      decimal.Decimal
	OpeningAmount   decimal.Decimal
	OpeningUnitCost decimal.Decimal

	// Daily flow columns. Sales quantities are net of returns (return lines
	// carry negative quantities and are summed in); purchase returns live in
	// their own columns.
	SalesQty             decimal.Decimal
	SalesAmount          decimal.Decimal
	SalesDiscountQty     decimal.Decimal
	SalesDiscountAmount  decimal.Decimal
	PurchaseQty          decimal.Decimal
	PurchaseAmount       decimal.Decimal
	PurchaseReturnQty    decimal.Decimal
	PurchaseReturnAmount decimal.Decimal
	AdjustmentQty        decimal.Decimal
	AdjustmentAmount     decimal.Decimal
	ProcessingQty        decimal.Decimal
	ProcessingAmount     decimal.Decimal
	TransferQty          decimal.Decimal
	TransferAmount       decimal.Decimal

	ClosingQty    decimal.Decimal
	ClosingAmount decimal.Decimal
	UnitCost      decimal.Decimal
	GrossProfit   decimal.Decimal

	Flag DailyFlag
}

// NewWorkingRecord snapshots a ledger record into a fresh working record with
// all daily columns zero and the flag reset.
func NewWorkingRecord(datasetID string, rec LedgerRecord) WorkingRecord {
	return WorkingRecord{
		DatasetID:       datasetID,
		Key:             rec.Key.Normalized(),
		OpeningQty:      rec.OpeningQty,
		OpeningAmount:   rec.OpeningAmount,
		OpeningUnitCost: rec.OpeningUnitCost,
		Flag:            FlagUnprocessed,
	}
}

// CategoryTotals is the aggregated quantity and amount of one flow category
// for one key. Return totals are only populated for the purchase category.
type CategoryTotals struct {
	Key          InventoryKey
	Qty          decimal.Decimal
	Amount       decimal.Decimal
	ReturnQty    decimal.Decimal
	ReturnAmount decimal.Decimal
}

// HasActivity reports whether any aggregate of the group is nonzero.
func (t CategoryTotals) HasActivity() bool {
	return !t.Qty.IsZero() || !t.Amount.IsZero() ||
		!t.ReturnQty.IsZero() || !t.ReturnAmount.IsZero()
}

// ApplyCategory overwrites the columns owned by the given category with the
// supplied totals. Columns of other categories are left untouched, so a later
// category can never clobber an earlier one. The flag advances to Processed
// when the group carries any activity.
func (w *WorkingRecord) ApplyCategory(category FlowCategory, t CategoryTotals) {
	switch category {
	case CategorySales:
		w.SalesQty = t.Qty
		w.SalesAmount = t.Amount
	case CategorySalesDiscount:
		w.SalesDiscountQty = t.Qty
		w.SalesDiscountAmount = t.Amount
	case CategoryPurchase:
		w.PurchaseQty = t.Qty
		w.PurchaseAmount = t.Amount
		w.PurchaseReturnQty = t.ReturnQty
		w.PurchaseReturnAmount = t.ReturnAmount
	case CategoryAdjustment:
		w.AdjustmentQty = t.Qty
		w.AdjustmentAmount = t.Amount
	case CategoryProcessing:
		w.ProcessingQty = t.Qty
		w.ProcessingAmount = t.Amount
	case CategoryTransfer:
		w.TransferQty = t.Qty
		w.TransferAmount = t.Amount
	}
	if t.HasActivity() {
		w.Flag = FlagProcessed
	}
}

// ClearDailyArea zeroes every daily, closing, and profit column and resets the
// flag while preserving the key row and its opening balance, so a re-invoked
// snapshot step resets rather than duplicates.
func (w *WorkingRecord) ClearDailyArea() {
	w.SalesQty = decimal.Zero
	w.SalesAmount = decimal.Zero
	w.SalesDiscountQty = decimal.Zero
	w.SalesDiscountAmount = decimal.Zero
	w.PurchaseQty = decimal.Zero
	w.PurchaseAmount = decimal.Zero
	w.PurchaseReturnQty = decimal.Zero
	w.PurchaseReturnAmount = decimal.Zero
	w.AdjustmentQty = decimal.Zero
	w.AdjustmentAmount = decimal.Zero
	w.ProcessingQty = decimal.Zero
	w.ProcessingAmount = decimal.Zero
	w.TransferQty = decimal.Zero
	w.TransferAmount = decimal.Zero
	w.ClosingQty = decimal.Zero
	w.ClosingAmount = decimal.Zero
	w.UnitCost = decimal.Zero
	w.GrossProfit = decimal.Zero
	w.Flag = FlagUnprocessed
}

// ClosingResult exposes the record's committed outcome for the ledger closer.
func (w *WorkingRecord) ClosingResult() ClosingResult {
	return ClosingResult{
		Key:           w.Key,
		ClosingQty:    w.ClosingQty,
		ClosingAmount: w.ClosingAmount,
		UnitCost:      w.UnitCost,
		GrossProfit:   w.GrossProfit,
		Flag:          w.Flag,
	}
}
