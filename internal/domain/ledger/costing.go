package ledger

import "github.com/shopspring/decimal"

// CostScale is the rounding scale of the moving-average math. Both the
// unit-cost division and the closing-amount multiplication round half away
// from zero at this scale.
const CostScale = 4

// ValuationInput carries the aggregated flows of one key into the pure
// moving-average computation. SalesQty may already be net of returns, in which
// case SalesReturnQty is zero.
type ValuationInput struct {
	OpeningQty           decimal.Decimal
	OpeningAmount        decimal.Decimal
	PurchaseQty          decimal.Decimal
	PurchaseAmount       decimal.Decimal
	PurchaseReturnQty    decimal.Decimal
	PurchaseReturnAmount decimal.Decimal
	SalesQty             decimal.Decimal
	SalesReturnQty       decimal.Decimal
	AdjustmentQty        decimal.Decimal
	ProcessingQty        decimal.Decimal
	TransferQty          decimal.Decimal
}

// ValuationResult is the computed closing position of one key.
type ValuationResult struct {
	UnitCost      decimal.Decimal
	ClosingQty    decimal.Decimal
	ClosingAmount decimal.Decimal
}

// ComputeValuation recomputes the weighted-average unit cost and the closing
// quantity and amount for one key. A zero valuation denominator means there is
// no valuation basis yet (new key, no opening stock, no receipts); the unit
// cost is zero in that case, never an error.
func ComputeValuation(in ValuationInput) ValuationResult {
	receivedQty := in.PurchaseQty.Sub(in.PurchaseReturnQty)
	denom := in.OpeningQty.Add(receivedQty)

	unitCost := decimal.Zero
	if !denom.IsZero() {
		basis := in.OpeningAmount.Add(in.PurchaseAmount).Sub(in.PurchaseReturnAmount)
		unitCost = basis.Div(denom).Round(CostScale)
	}

	closingQty := in.OpeningQty.
		Add(receivedQty).
		Sub(in.SalesQty.Sub(in.SalesReturnQty)).
		Sub(in.AdjustmentQty).
		Sub(in.ProcessingQty).
		Sub(in.TransferQty)

	return ValuationResult{
		UnitCost:      unitCost,
		ClosingQty:    closingQty,
		ClosingAmount: closingQty.Mul(unitCost).Round(CostScale),
	}
}

// ValuationInputOf maps a working record onto the pure computation's input.
// Sales returns are already netted into the sales columns during aggregation,
// so the separate return term is zero here.
func ValuationInputOf(w WorkingRecord) ValuationInput {
	return ValuationInput{
		OpeningQty:           w.OpeningQty,
		OpeningAmount:        w.OpeningAmount,
		PurchaseQty:          w.PurchaseQty,
		PurchaseAmount:       w.PurchaseAmount,
		PurchaseReturnQty:    w.PurchaseReturnQty,
		PurchaseReturnAmount: w.PurchaseReturnAmount,
		SalesQty:             w.SalesQty,
		SalesReturnQty:       decimal.Zero,
		AdjustmentQty:        w.AdjustmentQty,
		ProcessingQty:        w.ProcessingQty,
		TransferQty:          w.TransferQty,
	}
}

// ApplyValuation writes a computed result back onto the working record.
func (w *WorkingRecord) ApplyValuation(r ValuationResult) {
	w.UnitCost = r.UnitCost
	w.ClosingQty = r.ClosingQty
	w.ClosingAmount = r.ClosingAmount
}
