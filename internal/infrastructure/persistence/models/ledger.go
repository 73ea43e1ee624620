package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/oroshi/backoffice/internal/domain/ledger"
)

// StockLedgerModel is the persistence model for the permanent stock ledger.
// The five key columns form the composite primary key; they are stored in
// normalized, fixed-width form.
type StockLedgerModel struct {
	ProductCode      string `gorm:"type:char(8);primaryKey"`
	GradeCode        string `gorm:"type:char(4);primaryKey"`
	ClassCode        string `gorm:"type:char(4);primaryKey"`
	ShippingMarkCode string `gorm:"type:char(4);primaryKey"`
	ShippingMarkName string `gorm:"type:char(8);primaryKey"`

	Name     string `gorm:"type:varchar(200);not null"`
	Unit     string `gorm:"type:varchar(20);not null"`
	Category string `gorm:"type:varchar(50);not null"`

	OpeningQty      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	OpeningAmount   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	OpeningUnitCost decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`

	Flag      int       `gorm:"not null;default:0"`
	AsOfDate  time.Time `gorm:"type:date;not null;index"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (StockLedgerModel) TableName() string {
	return "stock_ledger"
}

// ToDomain converts the persistence model to a domain LedgerRecord.
func (m *StockLedgerModel) ToDomain() ledger.LedgerRecord {
	return ledger.LedgerRecord{
		Key: ledger.InventoryKey{
			ProductCode:      m.ProductCode,
			GradeCode:        m.GradeCode,
			ClassCode:        m.ClassCode,
			ShippingMarkCode: m.ShippingMarkCode,
			ShippingMarkName: m.ShippingMarkName,
		},
		Name:            m.Name,
		Unit:            m.Unit,
		Category:        m.Category,
		OpeningQty:      m.OpeningQty,
		OpeningAmount:   m.OpeningAmount,
		OpeningUnitCost: m.OpeningUnitCost,
		Flag:            ledger.DailyFlag(m.Flag),
		AsOfDate:        m.AsOfDate,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

// FromDomain populates the persistence model from a domain LedgerRecord.
func (m *StockLedgerModel) FromDomain(r ledger.LedgerRecord) {
	key := r.Key.Normalized()
	m.ProductCode = key.ProductCode
	m.GradeCode = key.GradeCode
	m.ClassCode = key.ClassCode
	m.ShippingMarkCode = key.ShippingMarkCode
	m.ShippingMarkName = key.ShippingMarkName
	m.Name = r.Name
	m.Unit = r.Unit
	m.Category = r.Category
	m.OpeningQty = r.OpeningQty
	m.OpeningAmount = r.OpeningAmount
	m.OpeningUnitCost = r.OpeningUnitCost
	m.Flag = int(r.Flag)
	m.AsOfDate = r.AsOfDate
	m.CreatedAt = r.CreatedAt
	m.UpdatedAt = r.UpdatedAt
}

// StockLedgerModelFromDomain creates a new persistence model from a domain LedgerRecord.
func StockLedgerModelFromDomain(r ledger.LedgerRecord) *StockLedgerModel {
	m := &StockLedgerModel{}
	m.FromDomain(r)
	return m
}

// WorkingRecordModel is the persistence model for the disposable working set.
// Rows are keyed by (dataset, inventory key) and fully overwritten on upsert.
type WorkingRecordModel struct {
	DatasetID        string `gorm:"type:varchar(50);primaryKey"`
	ProductCode      string `gorm:"type:char(8);primaryKey"`
	GradeCode        string `gorm:"type:char(4);primaryKey"`
	ClassCode        string `gorm:"type:char(4);primaryKey"`
	ShippingMarkCode string `gorm:"type:char(4);primaryKey"`
	ShippingMarkName string `gorm:"type:char(8);primaryKey"`

	OpeningQty      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	OpeningAmount   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	OpeningUnitCost decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`

	SalesQty             decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	SalesAmount          decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	SalesDiscountQty     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	SalesDiscountAmount  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	PurchaseQty          decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	PurchaseAmount       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	PurchaseReturnQty    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	PurchaseReturnAmount decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	AdjustmentQty        decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	AdjustmentAmount     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ProcessingQty        decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ProcessingAmount     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TransferQty          decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TransferAmount       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`

	ClosingQty    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	ClosingAmount decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	UnitCost      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	GrossProfit   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`

	Flag      int       `gorm:"not null;default:0"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (WorkingRecordModel) TableName() string {
	return "stock_working"
}

// ToDomain converts the persistence model to a domain WorkingRecord.
func (m *WorkingRecordModel) ToDomain() ledger.WorkingRecord {
	return ledger.WorkingRecord{
		DatasetID: m.DatasetID,
		Key: ledger.InventoryKey{
			ProductCode:      m.ProductCode,
			GradeCode:        m.GradeCode,
			ClassCode:        m.ClassCode,
			ShippingMarkCode: m.ShippingMarkCode,
			ShippingMarkName: m.ShippingMarkName,
		},
		OpeningQty:           m.OpeningQty,
		OpeningAmount:        m.OpeningAmount,
		OpeningUnitCost:      m.OpeningUnitCost,
		SalesQty:             m.SalesQty,
		SalesAmount:          m.SalesAmount,
		SalesDiscountQty:     m.SalesDiscountQty,
		SalesDiscountAmount:  m.SalesDiscountAmount,
		PurchaseQty:          m.PurchaseQty,
		PurchaseAmount:       m.PurchaseAmount,
		PurchaseReturnQty:    m.PurchaseReturnQty,
		PurchaseReturnAmount: m.PurchaseReturnAmount,
		AdjustmentQty:        m.AdjustmentQty,
		AdjustmentAmount:     m.AdjustmentAmount,
		ProcessingQty:        m.ProcessingQty,
		ProcessingAmount:     m.ProcessingAmount,
		TransferQty:          m.TransferQty,
		TransferAmount:       m.TransferAmount,
		ClosingQty:           m.ClosingQty,
		ClosingAmount:        m.ClosingAmount,
		UnitCost:             m.UnitCost,
		GrossProfit:          m.GrossProfit,
		Flag:                 ledger.DailyFlag(m.Flag),
	}
}

// FromDomain populates the persistence model from a domain WorkingRecord.
func (m *WorkingRecordModel) FromDomain(w ledger.WorkingRecord) {
	key := w.Key.Normalized()
	m.DatasetID = w.DatasetID
	m.ProductCode = key.ProductCode
	m.GradeCode = key.GradeCode
	m.ClassCode = key.ClassCode
	m.ShippingMarkCode = key.ShippingMarkCode
	m.ShippingMarkName = key.ShippingMarkName
	m.OpeningQty = w.OpeningQty
	m.OpeningAmount = w.OpeningAmount
	m.OpeningUnitCost = w.OpeningUnitCost
	m.SalesQty = w.SalesQty
	m.SalesAmount = w.SalesAmount
	m.SalesDiscountQty = w.SalesDiscountQty
	m.SalesDiscountAmount = w.SalesDiscountAmount
	m.PurchaseQty = w.PurchaseQty
	m.PurchaseAmount = w.PurchaseAmount
	m.PurchaseReturnQty = w.PurchaseReturnQty
	m.PurchaseReturnAmount = w.PurchaseReturnAmount
	m.AdjustmentQty = w.AdjustmentQty
	m.AdjustmentAmount = w.AdjustmentAmount
	m.ProcessingQty = w.ProcessingQty
	m.ProcessingAmount = w.ProcessingAmount
	m.TransferQty = w.TransferQty
	m.TransferAmount = w.TransferAmount
	m.ClosingQty = w.ClosingQty
	m.ClosingAmount = w.ClosingAmount
	m.UnitCost = w.UnitCost
	m.GrossProfit = w.GrossProfit
	m.Flag = int(w.Flag)
}

// WorkingRecordModelFromDomain creates a new persistence model from a domain WorkingRecord.
func WorkingRecordModelFromDomain(w ledger.WorkingRecord) *WorkingRecordModel {
	m := &WorkingRecordModel{}
	m.FromDomain(w)
	return m
}
