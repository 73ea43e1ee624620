package ledger

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testDate = time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)

func saleEvent(product string, qty, amount string) FlowEvent {
	return FlowEvent{
		Key:         InventoryKey{ProductCode: product},
		JobDate:     testDate,
		VoucherType: VoucherCreditSale,
		DetailType:  DetailGoods,
		PartyCode:   "C001",
		Quantity:    d(qty),
		Amount:      d(amount),
	}
}

func purchaseEvent(product string, qty, amount string) FlowEvent {
	return FlowEvent{
		Key:         InventoryKey{ProductCode: product},
		JobDate:     testDate,
		VoucherType: VoucherCashPurchase,
		DetailType:  DetailGoods,
		PartyCode:   "S001",
		Quantity:    d(qty),
		Amount:      d(amount),
	}
}

func adjustEvent(product string, categoryCode int, qty, amount string) FlowEvent {
	return FlowEvent{
		Key:          InventoryKey{ProductCode: product},
		JobDate:      testDate,
		VoucherType:  VoucherAdjustment,
		DetailType:   DetailGoods,
		CategoryCode: categoryCode,
		Quantity:     d(qty),
		Amount:       d(amount),
	}
}

func TestAggregateFlowsSales(t *testing.T) {
	t.Run("sums goods lines per key", func(t *testing.T) {
		totals := AggregateFlows(CategorySales, []FlowEvent{
			saleEvent("1", "10", "2000"),
			saleEvent("1", "20", "4000"),
			saleEvent("2", "5", "1000"),
		})
		require.Len(t, totals, 2)
		assert.True(t, d("30").Equal(totals[0].Qty))
		assert.True(t, d("6000").Equal(totals[0].Amount))
		assert.True(t, d("5").Equal(totals[1].Qty))
	})

	t.Run("sales returns net into the sales totals", func(t *testing.T) {
		totals := AggregateFlows(CategorySales, []FlowEvent{
			saleEvent("1", "30", "6000"),
			saleEvent("1", "-5", "-1000"),
		})
		require.Len(t, totals, 1)
		assert.True(t, d("25").Equal(totals[0].Qty), "got %s", totals[0].Qty)
		assert.True(t, d("5000").Equal(totals[0].Amount))
		assert.True(t, totals[0].ReturnQty.IsZero())
	})

	t.Run("discount lines do not match the sales category", func(t *testing.T) {
		discount := saleEvent("1", "0", "500")
		discount.DetailType = DetailDiscount
		totals := AggregateFlows(CategorySales, []FlowEvent{discount})
		assert.Empty(t, totals)
	})
}

func TestAggregateFlowsSalesDiscount(t *testing.T) {
	discount := saleEvent("1", "0", "500")
	discount.DetailType = DetailDiscount
	cashSaleDiscount := saleEvent("1", "0", "300")
	cashSaleDiscount.DetailType = DetailDiscount
	cashSaleDiscount.VoucherType = VoucherCashSale

	totals := AggregateFlows(CategorySalesDiscount, []FlowEvent{discount, cashSaleDiscount})
	require.Len(t, totals, 1)
	// Only the credit voucher carries discount lines.
	assert.True(t, d("500").Equal(totals[0].Amount))
}

func TestAggregateFlowsPurchase(t *testing.T) {
	t.Run("negative lines split into return columns", func(t *testing.T) {
		totals := AggregateFlows(CategoryPurchase, []FlowEvent{
			purchaseEvent("1", "10", "1500"),
			purchaseEvent("1", "-4", "-600"),
		})
		require.Len(t, totals, 1)
		assert.True(t, d("10").Equal(totals[0].Qty))
		assert.True(t, d("1500").Equal(totals[0].Amount))
		assert.True(t, d("4").Equal(totals[0].ReturnQty), "got %s", totals[0].ReturnQty)
		assert.True(t, d("600").Equal(totals[0].ReturnAmount))
	})
}

func TestAggregateFlowsAdjustmentSubtypes(t *testing.T) {
	events := []FlowEvent{
		adjustEvent("1", AdjustCategoryStock, "3", "30"),
		adjustEvent("1", AdjustCategoryProcessing, "5", "50"),
		adjustEvent("1", AdjustCategoryTransfer, "7", "70"),
	}

	adj := AggregateFlows(CategoryAdjustment, events)
	proc := AggregateFlows(CategoryProcessing, events)
	tra := AggregateFlows(CategoryTransfer, events)

	require.Len(t, adj, 1)
	require.Len(t, proc, 1)
	require.Len(t, tra, 1)
	assert.True(t, d("3").Equal(adj[0].Qty))
	assert.True(t, d("5").Equal(proc[0].Qty))
	assert.True(t, d("7").Equal(tra[0].Qty))
}

func TestAggregateFlowsDeterministicOrder(t *testing.T) {
	events := []FlowEvent{
		saleEvent("9", "1", "100"),
		saleEvent("1", "1", "100"),
		saleEvent("5", "1", "100"),
	}
	first := AggregateFlows(CategorySales, events)
	second := AggregateFlows(CategorySales, events)
	assert.Equal(t, first, second)
	require.Len(t, first, 3)
	assert.Equal(t, "00000001", first[0].Key.ProductCode)
	assert.Equal(t, "00000009", first[2].Key.ProductCode)
}

func TestAggregateFlowsNormalizesKeys(t *testing.T) {
	a := saleEvent("123", "1", "100")
	b := saleEvent("00000123", "2", "200")
	totals := AggregateFlows(CategorySales, []FlowEvent{a, b})
	require.Len(t, totals, 1)
	assert.True(t, d("3").Equal(totals[0].Qty))
}

func TestDistinctKeys(t *testing.T) {
	keys := DistinctKeys([]FlowEvent{
		saleEvent("2", "1", "100"),
		saleEvent("1", "1", "100"),
		saleEvent("00000002", "1", "100"),
	})
	require.Len(t, keys, 2)
	assert.Equal(t, "00000001", keys[0].ProductCode)
	assert.Equal(t, "00000002", keys[1].ProductCode)
}

func TestDecimalZeroValuesAreUsable(t *testing.T) {
	// Aggregation relies on decimal.Decimal's zero value acting as zero.
	var q decimal.Decimal
	assert.True(t, q.Add(d("5")).Equal(d("5")))
}
