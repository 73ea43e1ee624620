package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// VoucherType identifies the source voucher of a flow line.
type VoucherType int

const (
	VoucherCashSale       VoucherType = 11
	VoucherCreditSale     VoucherType = 12
	VoucherCashPurchase   VoucherType = 21
	VoucherCreditPurchase VoucherType = 22
	VoucherAdjustment     VoucherType = 31
)

// Detail types within a voucher. Types 1-2 are goods lines; types 3-4 are
// discount lines and only occur on credit sale vouchers.
const (
	DetailGoods         = 1
	DetailGoodsExtra    = 2
	DetailDiscount      = 3
	DetailDiscountExtra = 4
)

// Adjustment category codes, carried on adjustment voucher lines.
const (
	AdjustCategoryStock      = 1
	AdjustCategoryProcessing = 2
	AdjustCategoryTransfer   = 3
)

// FlowCategory names one aggregation source. The aggregator processes the
// categories in the order they are declared here; each category owns a fixed
// set of working-record columns and never writes outside it.
type FlowCategory string

const (
	CategorySales         FlowCategory = "sales"
	CategorySalesDiscount FlowCategory = "sales_discount"
	CategoryPurchase      FlowCategory = "purchase"
	CategoryAdjustment    FlowCategory = "adjustment"
	CategoryProcessing    FlowCategory = "processing"
	CategoryTransfer      FlowCategory = "transfer"
)

// AllCategories lists every flow category in processing order.
func AllCategories() []FlowCategory {
	return []FlowCategory{
		CategorySales,
		CategorySalesDiscount,
		CategoryPurchase,
		CategoryAdjustment,
		CategoryProcessing,
		CategoryTransfer,
	}
}

// FlowEvent is one normalized transaction line from the voucher feed.
// PartyCode carries the customer code on sale vouchers and the supplier code
// on purchase vouchers; it is blank on adjustment lines.
type FlowEvent struct {
	Key          InventoryKey
	JobDate      time.Time
	VoucherType  VoucherType
	DetailType   int
	CategoryCode int
	PartyCode    string
	Quantity     decimal.Decimal
	Amount       decimal.Decimal
	UnitPrice    decimal.Decimal
}

// IsSale reports whether the line comes from a sale voucher.
func (e FlowEvent) IsSale() bool {
	return e.VoucherType == VoucherCashSale || e.VoucherType == VoucherCreditSale
}

// IsPurchase reports whether the line comes from a purchase voucher.
func (e FlowEvent) IsPurchase() bool {
	return e.VoucherType == VoucherCashPurchase || e.VoucherType == VoucherCreditPurchase
}

// IsGoodsLine reports whether the line moves goods (as opposed to a discount).
func (e FlowEvent) IsGoodsLine() bool {
	return e.DetailType == DetailGoods || e.DetailType == DetailGoodsExtra
}

// IsDiscountLine reports whether the line is a sales discount entry.
func (e FlowEvent) IsDiscountLine() bool {
	return e.DetailType == DetailDiscount || e.DetailType == DetailDiscountExtra
}

// Matches reports whether the event belongs to the given category.
// Sales returns are negative-quantity lines on the same sale vouchers and
// therefore match CategorySales; purchase returns likewise match
// CategoryPurchase and are split out by sign during aggregation.
func (e FlowEvent) Matches(category FlowCategory) bool {
	switch category {
	case CategorySales:
		return e.IsSale() && e.IsGoodsLine()
	case CategorySalesDiscount:
		return e.VoucherType == VoucherCreditSale && e.IsDiscountLine()
	case CategoryPurchase:
		return e.IsPurchase() && e.IsGoodsLine()
	case CategoryAdjustment:
		return e.VoucherType == VoucherAdjustment && e.CategoryCode == AdjustCategoryStock
	case CategoryProcessing:
		return e.VoucherType == VoucherAdjustment && e.CategoryCode == AdjustCategoryProcessing
	case CategoryTransfer:
		return e.VoucherType == VoucherAdjustment && e.CategoryCode == AdjustCategoryTransfer
	}
	return false
}
