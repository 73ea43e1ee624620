package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/oroshi/backoffice/internal/domain/ledger"
)

// VoucherFlowModel is the persistence model for normalized voucher flow lines.
// Rows are written by the voucher intake and only ever read by the closing
// engine; they are never mutated here.
type VoucherFlowModel struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	DatasetID string    `gorm:"type:varchar(50);not null;index:idx_voucher_flows_dataset_date,priority:1"`
	JobDate   time.Time `gorm:"type:date;not null;index:idx_voucher_flows_dataset_date,priority:2"`

	ProductCode      string `gorm:"type:char(8);not null"`
	GradeCode        string `gorm:"type:char(4);not null"`
	ClassCode        string `gorm:"type:char(4);not null"`
	ShippingMarkCode string `gorm:"type:char(4);not null"`
	ShippingMarkName string `gorm:"type:char(8);not null"`

	VoucherType  int    `gorm:"not null;index"`
	DetailType   int    `gorm:"not null"`
	CategoryCode int    `gorm:"not null;default:0"`
	PartyCode    string `gorm:"type:varchar(20);not null;default:''"`

	Quantity  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Amount    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	UnitPrice decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`

	CreatedAt time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (VoucherFlowModel) TableName() string {
	return "voucher_flows"
}

// ToDomain converts the persistence model to a domain FlowEvent.
func (m *VoucherFlowModel) ToDomain() ledger.FlowEvent {
	return ledger.FlowEvent{
		Key: ledger.InventoryKey{
			ProductCode:      m.ProductCode,
			GradeCode:        m.GradeCode,
			ClassCode:        m.ClassCode,
			ShippingMarkCode: m.ShippingMarkCode,
			ShippingMarkName: m.ShippingMarkName,
		},
		JobDate:      m.JobDate,
		VoucherType:  ledger.VoucherType(m.VoucherType),
		DetailType:   m.DetailType,
		CategoryCode: m.CategoryCode,
		PartyCode:    m.PartyCode,
		Quantity:     m.Quantity,
		Amount:       m.Amount,
		UnitPrice:    m.UnitPrice,
	}
}

// FromDomain populates the persistence model from a domain FlowEvent.
func (m *VoucherFlowModel) FromDomain(datasetID string, e ledger.FlowEvent) {
	key := e.Key.Normalized()
	m.DatasetID = datasetID
	m.JobDate = e.JobDate
	m.ProductCode = key.ProductCode
	m.GradeCode = key.GradeCode
	m.ClassCode = key.ClassCode
	m.ShippingMarkCode = key.ShippingMarkCode
	m.ShippingMarkName = key.ShippingMarkName
	m.VoucherType = int(e.VoucherType)
	m.DetailType = e.DetailType
	m.CategoryCode = e.CategoryCode
	m.PartyCode = e.PartyCode
	m.Quantity = e.Quantity
	m.Amount = e.Amount
	m.UnitPrice = e.UnitPrice
}

// VoucherFlowModelFromDomain creates a new persistence model from a domain FlowEvent.
func VoucherFlowModelFromDomain(datasetID string, e ledger.FlowEvent) *VoucherFlowModel {
	m := &VoucherFlowModel{}
	m.FromDomain(datasetID, e)
	return m
}
