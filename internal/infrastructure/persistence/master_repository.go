package persistence

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/oroshi/backoffice/internal/domain/ledger"
	"github.com/oroshi/backoffice/internal/domain/shared"
	"github.com/oroshi/backoffice/internal/infrastructure/persistence/models"
)

// GormProductMasterRepository implements ledger.ProductMasterLookup using GORM
type GormProductMasterRepository struct {
	db *gorm.DB
}

// NewGormProductMasterRepository creates a new GormProductMasterRepository
func NewGormProductMasterRepository(db *gorm.DB) *GormProductMasterRepository {
	return &GormProductMasterRepository{db: db}
}

// GetProductAttrs returns the attributes of a product code.
func (r *GormProductMasterRepository) GetProductAttrs(ctx context.Context, productCode string) (*ledger.ProductAttrs, error) {
	var row models.ProductMasterModel
	if err := r.db.WithContext(ctx).
		Where("product_code = ?", productCode).
		First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, translateError(err)
	}
	return row.ToDomain(), nil
}

// GormSupplierMasterRepository implements ledger.SupplierMasterLookup using GORM
type GormSupplierMasterRepository struct {
	db *gorm.DB
}

// NewGormSupplierMasterRepository creates a new GormSupplierMasterRepository
func NewGormSupplierMasterRepository(db *gorm.DB) *GormSupplierMasterRepository {
	return &GormSupplierMasterRepository{db: db}
}

// GetSupplierCategory reports whether the supplier earns the purchase incentive.
func (r *GormSupplierMasterRepository) GetSupplierCategory(ctx context.Context, supplierCode string) (bool, error) {
	var row models.SupplierMasterModel
	if err := r.db.WithContext(ctx).
		Where("supplier_code = ?", supplierCode).
		First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, shared.ErrNotFound
		}
		return false, translateError(err)
	}
	return row.IncentiveEligible, nil
}

// GormCustomerMasterRepository implements ledger.CustomerMasterLookup using GORM
type GormCustomerMasterRepository struct {
	db *gorm.DB
}

// NewGormCustomerMasterRepository creates a new GormCustomerMasterRepository
func NewGormCustomerMasterRepository(db *gorm.DB) *GormCustomerMasterRepository {
	return &GormCustomerMasterRepository{db: db}
}

// GetCustomerRate returns the customer's walking-discount percentage.
func (r *GormCustomerMasterRepository) GetCustomerRate(ctx context.Context, customerCode string) (decimal.Decimal, error) {
	var row models.CustomerMasterModel
	if err := r.db.WithContext(ctx).
		Where("customer_code = ?", customerCode).
		First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, shared.ErrNotFound
		}
		return decimal.Zero, translateError(err)
	}
	return row.RebateRate, nil
}

// Ensure the master repositories implement their lookup contracts
var (
	_ ledger.ProductMasterLookup  = (*GormProductMasterRepository)(nil)
	_ ledger.SupplierMasterLookup = (*GormSupplierMasterRepository)(nil)
	_ ledger.CustomerMasterLookup = (*GormCustomerMasterRepository)(nil)
)
