package persistence

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/oroshi/backoffice/internal/domain/ledger"
	"github.com/oroshi/backoffice/internal/infrastructure/persistence/models"
)

// GormFlowRepository implements ledger.FlowRepository using GORM
type GormFlowRepository struct {
	db *gorm.DB
}

// NewGormFlowRepository creates a new GormFlowRepository
func NewGormFlowRepository(db *gorm.DB) *GormFlowRepository {
	return &GormFlowRepository{db: db}
}

// ListFlows returns the dataset's flow events for one category. A nil jobDate
// selects the whole dataset.
func (r *GormFlowRepository) ListFlows(ctx context.Context, datasetID string, jobDate *time.Time, category ledger.FlowCategory) ([]ledger.FlowEvent, error) {
	query := r.datasetScope(ctx, datasetID, jobDate)
	query = categoryScope(query, category)

	var rows []models.VoucherFlowModel
	if err := query.Order("id").Find(&rows).Error; err != nil {
		return nil, translateError(err)
	}

	events := make([]ledger.FlowEvent, len(rows))
	for i := range rows {
		events[i] = rows[i].ToDomain()
	}
	return events, nil
}

// ListKeys returns the distinct normalized keys in the dataset's flows.
func (r *GormFlowRepository) ListKeys(ctx context.Context, datasetID string, jobDate *time.Time) ([]ledger.InventoryKey, error) {
	var rows []struct {
		ProductCode      string
		GradeCode        string
		ClassCode        string
		ShippingMarkCode string
		ShippingMarkName string
	}
	if err := r.datasetScope(ctx, datasetID, jobDate).
		Distinct("product_code", "grade_code", "class_code", "shipping_mark_code", "shipping_mark_name").
		Order(keyOrder).
		Find(&rows).Error; err != nil {
		return nil, translateError(err)
	}

	keys := make([]ledger.InventoryKey, len(rows))
	for i, row := range rows {
		keys[i] = ledger.InventoryKey{
			ProductCode:      row.ProductCode,
			GradeCode:        row.GradeCode,
			ClassCode:        row.ClassCode,
			ShippingMarkCode: row.ShippingMarkCode,
			ShippingMarkName: row.ShippingMarkName,
		}.Normalized()
	}
	return keys, nil
}

// LatestJobDate returns the most recent job date among the dataset's flows,
// or nil when the dataset has none.
func (r *GormFlowRepository) LatestJobDate(ctx context.Context, datasetID string) (*time.Time, error) {
	var row models.VoucherFlowModel
	err := r.db.WithContext(ctx).
		Where("dataset_id = ?", datasetID).
		Order("job_date DESC").
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, translateError(err)
	}
	jobDate := row.JobDate
	return &jobDate, nil
}

// datasetScope restricts a flow query to one dataset and, when given, one job date.
func (r *GormFlowRepository) datasetScope(ctx context.Context, datasetID string, jobDate *time.Time) *gorm.DB {
	query := r.db.WithContext(ctx).
		Model(&models.VoucherFlowModel{}).
		Where("dataset_id = ?", datasetID)
	if jobDate != nil {
		query = query.Where("job_date = ?", *jobDate)
	}
	return query
}

// categoryScope translates a flow category into its voucher-level predicate.
// It must select exactly the rows ledger.FlowEvent.Matches accepts.
func categoryScope(query *gorm.DB, category ledger.FlowCategory) *gorm.DB {
	goodsTypes := []int{ledger.DetailGoods, ledger.DetailGoodsExtra}
	discountTypes := []int{ledger.DetailDiscount, ledger.DetailDiscountExtra}

	switch category {
	case ledger.CategorySales:
		return query.Where("voucher_type IN ? AND detail_type IN ?",
			[]int{int(ledger.VoucherCashSale), int(ledger.VoucherCreditSale)}, goodsTypes)
	case ledger.CategorySalesDiscount:
		return query.Where("voucher_type = ? AND detail_type IN ?",
			int(ledger.VoucherCreditSale), discountTypes)
	case ledger.CategoryPurchase:
		return query.Where("voucher_type IN ? AND detail_type IN ?",
			[]int{int(ledger.VoucherCashPurchase), int(ledger.VoucherCreditPurchase)}, goodsTypes)
	case ledger.CategoryAdjustment:
		return query.Where("voucher_type = ? AND category_code = ?",
			int(ledger.VoucherAdjustment), ledger.AdjustCategoryStock)
	case ledger.CategoryProcessing:
		return query.Where("voucher_type = ? AND category_code = ?",
			int(ledger.VoucherAdjustment), ledger.AdjustCategoryProcessing)
	case ledger.CategoryTransfer:
		return query.Where("voucher_type = ? AND category_code = ?",
			int(ledger.VoucherAdjustment), ledger.AdjustCategoryTransfer)
	}
	// Unknown category matches nothing.
	return query.Where("1 = 0")
}

// Ensure GormFlowRepository implements ledger.FlowRepository
var _ ledger.FlowRepository = (*GormFlowRepository)(nil)
