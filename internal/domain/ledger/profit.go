package ledger

import "github.com/shopspring/decimal"

// RebateScale is the rounding scale of the incentive and walking-discount
// side calculations. Deliberately coarser than the cost math: both figures
// settle to whole currency units.
const RebateScale = 0

// IncentiveRate is the supplier rebate applied to purchase amounts of
// incentive-eligible supplier categories.
var IncentiveRate = decimal.NewFromFloat(0.01)

// LineUnitPrice resolves the effective unit price of a sales line. When the
// source line carries no unit price it is backfilled from amount/quantity;
// a zero quantity then yields a zero price.
func LineUnitPrice(sourceUnitPrice, amount, quantity decimal.Decimal) decimal.Decimal {
	if !sourceUnitPrice.IsZero() {
		return sourceUnitPrice
	}
	if quantity.IsZero() {
		return decimal.Zero
	}
	return amount.Div(quantity).Round(CostScale)
}

// LineProfit computes the gross profit of one sales line against the key's
// same-day unit cost. Negative quantities (sales returns) produce negative
// profit symmetrically.
func LineProfit(lineUnitPrice, keyUnitCost, quantity decimal.Decimal) decimal.Decimal {
	return lineUnitPrice.Sub(keyUnitCost).Mul(quantity).Round(CostScale)
}

// Incentive computes the supplier rebate on a purchase amount. It applies only
// when the supplier's category is flagged incentive-eligible.
func Incentive(purchaseAmount decimal.Decimal, eligible bool) decimal.Decimal {
	if !eligible {
		return decimal.Zero
	}
	return purchaseAmount.Mul(IncentiveRate).Round(RebateScale)
}

// WalkingDiscount computes the customer rebate deducted from recognized
// profit: salesAmount * rate / 100, settled to whole units.
func WalkingDiscount(salesAmount, ratePercent decimal.Decimal) decimal.Decimal {
	return salesAmount.Mul(ratePercent).Div(decimal.NewFromInt(100)).Round(RebateScale)
}

// KeyProfit nets one key's summed line profit against its side calculations.
func KeyProfit(lineProfitSum, incentive, walkingDiscount, adjustmentAmount, processingAmount decimal.Decimal) decimal.Decimal {
	return lineProfitSum.
		Sub(incentive).
		Sub(walkingDiscount).
		Sub(adjustmentAmount).
		Sub(processingAmount)
}
