package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/oroshi/backoffice/internal/domain/ledger"
)

// ProductMasterModel is the persistence model for the product master.
type ProductMasterModel struct {
	ProductCode string    `gorm:"type:char(8);primaryKey"`
	Name        string    `gorm:"type:varchar(200);not null"`
	Unit        string    `gorm:"type:varchar(20);not null"`
	Category    string    `gorm:"type:varchar(50);not null"`
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ProductMasterModel) TableName() string {
	return "product_master"
}

// ToDomain converts the persistence model to domain product attributes.
func (m *ProductMasterModel) ToDomain() *ledger.ProductAttrs {
	return &ledger.ProductAttrs{
		Name:     m.Name,
		Unit:     m.Unit,
		Category: m.Category,
	}
}

// SupplierMasterModel is the persistence model for the supplier master.
// IncentiveEligible marks supplier categories that earn the purchase incentive.
type SupplierMasterModel struct {
	SupplierCode      string    `gorm:"type:varchar(20);primaryKey"`
	Name              string    `gorm:"type:varchar(200);not null"`
	IncentiveEligible bool      `gorm:"not null;default:false"`
	CreatedAt         time.Time `gorm:"not null"`
	UpdatedAt         time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (SupplierMasterModel) TableName() string {
	return "supplier_master"
}

// CustomerMasterModel is the persistence model for the customer master.
// RebateRate is the walking-discount percentage granted to the customer.
type CustomerMasterModel struct {
	CustomerCode string          `gorm:"type:varchar(20);primaryKey"`
	Name         string          `gorm:"type:varchar(200);not null"`
	RebateRate   decimal.Decimal `gorm:"type:decimal(8,4);not null;default:0"`
	CreatedAt    time.Time       `gorm:"not null"`
	UpdatedAt    time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (CustomerMasterModel) TableName() string {
	return "customer_master"
}
