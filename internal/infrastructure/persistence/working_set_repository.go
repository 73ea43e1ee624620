package persistence

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/oroshi/backoffice/internal/domain/ledger"
	"github.com/oroshi/backoffice/internal/domain/shared"
	"github.com/oroshi/backoffice/internal/infrastructure/persistence/models"
)

// GormWorkingSetRepository implements ledger.WorkingSetRepository using GORM
type GormWorkingSetRepository struct {
	db *gorm.DB
}

// NewGormWorkingSetRepository creates a new GormWorkingSetRepository
func NewGormWorkingSetRepository(db *gorm.DB) *GormWorkingSetRepository {
	return &GormWorkingSetRepository{db: db}
}

// Upsert inserts or fully overwrites working records.
func (r *GormWorkingSetRepository) Upsert(ctx context.Context, records []ledger.WorkingRecord) error {
	if len(records) == 0 {
		return nil
	}
	rows := make([]models.WorkingRecordModel, len(records))
	for i, rec := range records {
		rows[i] = *models.WorkingRecordModelFromDomain(rec)
	}
	return translateError(r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "dataset_id"},
				{Name: "product_code"},
				{Name: "grade_code"},
				{Name: "class_code"},
				{Name: "shipping_mark_code"},
				{Name: "shipping_mark_name"},
			},
			UpdateAll: true,
		}).
		Create(&rows).Error)
}

// ClearDailyArea zeroes daily, closing, and profit columns and resets the flag
// for every row of the dataset. Key rows and opening balances survive, so a
// re-invoked snapshot resets rather than duplicates.
func (r *GormWorkingSetRepository) ClearDailyArea(ctx context.Context, datasetID string) error {
	updates := map[string]interface{}{
		"sales_qty":              decimal.Zero,
		"sales_amount":           decimal.Zero,
		"sales_discount_qty":     decimal.Zero,
		"sales_discount_amount":  decimal.Zero,
		"purchase_qty":           decimal.Zero,
		"purchase_amount":        decimal.Zero,
		"purchase_return_qty":    decimal.Zero,
		"purchase_return_amount": decimal.Zero,
		"adjustment_qty":         decimal.Zero,
		"adjustment_amount":      decimal.Zero,
		"processing_qty":         decimal.Zero,
		"processing_amount":      decimal.Zero,
		"transfer_qty":           decimal.Zero,
		"transfer_amount":        decimal.Zero,
		"closing_qty":            decimal.Zero,
		"closing_amount":         decimal.Zero,
		"unit_cost":              decimal.Zero,
		"gross_profit":           decimal.Zero,
		"flag":                   int(ledger.FlagUnprocessed),
	}
	return translateError(r.db.WithContext(ctx).
		Model(&models.WorkingRecordModel{}).
		Where("dataset_id = ?", datasetID).
		Updates(updates).Error)
}

// FindByDataset returns every working record of the dataset, ordered by key.
func (r *GormWorkingSetRepository) FindByDataset(ctx context.Context, datasetID string) ([]ledger.WorkingRecord, error) {
	var rows []models.WorkingRecordModel
	if err := r.db.WithContext(ctx).
		Where("dataset_id = ?", datasetID).
		Order(keyOrder).
		Find(&rows).Error; err != nil {
		return nil, translateError(err)
	}

	records := make([]ledger.WorkingRecord, len(rows))
	for i := range rows {
		records[i] = rows[i].ToDomain()
	}
	return records, nil
}

// ApplyCategoryTotals overwrites the columns owned by category with the given
// totals. A total for a key that was never snapshotted is a feed/snapshot
// mismatch and fails the whole batch.
func (r *GormWorkingSetRepository) ApplyCategoryTotals(ctx context.Context, datasetID string, category ledger.FlowCategory, totals []ledger.CategoryTotals) error {
	if len(totals) == 0 {
		return nil
	}
	return translateError(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, t := range totals {
			updates := categoryUpdates(category, t)
			if t.HasActivity() {
				updates["flag"] = int(ledger.FlagProcessed)
			}
			res := r.datasetKeyScope(tx, datasetID, t.Key).Updates(updates)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("%w: no working row for key %s", shared.ErrDataIntegrity, t.Key)
			}
		}
		return nil
	}))
}

// SaveValuation writes computed unit cost and closing columns per key.
func (r *GormWorkingSetRepository) SaveValuation(ctx context.Context, datasetID string, results map[ledger.InventoryKey]ledger.ValuationResult) error {
	if len(results) == 0 {
		return nil
	}
	return translateError(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for key, result := range results {
			res := r.datasetKeyScope(tx, datasetID, key).Updates(map[string]interface{}{
				"unit_cost":      result.UnitCost,
				"closing_qty":    result.ClosingQty,
				"closing_amount": result.ClosingAmount,
			})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("%w: no working row for key %s", shared.ErrDataIntegrity, key)
			}
		}
		return nil
	}))
}

// SaveGrossProfit writes computed per-key gross profit.
func (r *GormWorkingSetRepository) SaveGrossProfit(ctx context.Context, datasetID string, profits map[ledger.InventoryKey]decimal.Decimal) error {
	if len(profits) == 0 {
		return nil
	}
	return translateError(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for key, profit := range profits {
			res := r.datasetKeyScope(tx, datasetID, key).Update("gross_profit", profit)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("%w: no working row for key %s", shared.ErrDataIntegrity, key)
			}
		}
		return nil
	}))
}

// Purge drops every working row of the dataset.
func (r *GormWorkingSetRepository) Purge(ctx context.Context, datasetID string) error {
	return translateError(r.db.WithContext(ctx).
		Where("dataset_id = ?", datasetID).
		Delete(&models.WorkingRecordModel{}).Error)
}

// DeleteKeys drops the given working rows of the dataset. The working-set
// snapshot uses it to evict rows whose ledger row fell outside the snapshot
// window, so a stale opening never feeds a valuation.
func (r *GormWorkingSetRepository) DeleteKeys(ctx context.Context, datasetID string, keys []ledger.InventoryKey) error {
	if len(keys) == 0 {
		return nil
	}
	return translateError(r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, key := range keys {
			scoped := keyScope(tx.Where("dataset_id = ?", datasetID), key)
			if err := scoped.Delete(&models.WorkingRecordModel{}).Error; err != nil {
				return err
			}
		}
		return nil
	}))
}

// datasetKeyScope restricts a working-set query to one (dataset, key) row.
func (r *GormWorkingSetRepository) datasetKeyScope(db *gorm.DB, datasetID string, key ledger.InventoryKey) *gorm.DB {
	return keyScope(
		db.Model(&models.WorkingRecordModel{}).Where("dataset_id = ?", datasetID),
		key,
	)
}

// categoryUpdates maps a category's totals onto the columns it owns. It must
// stay in lockstep with ledger.WorkingRecord.ApplyCategory.
func categoryUpdates(category ledger.FlowCategory, t ledger.CategoryTotals) map[string]interface{} {
	switch category {
	case ledger.CategorySales:
		return map[string]interface{}{
			"sales_qty":    t.Qty,
			"sales_amount": t.Amount,
		}
	case ledger.CategorySalesDiscount:
		return map[string]interface{}{
			"sales_discount_qty":    t.Qty,
			"sales_discount_amount": t.Amount,
		}
	case ledger.CategoryPurchase:
		return map[string]interface{}{
			"purchase_qty":           t.Qty,
			"purchase_amount":        t.Amount,
			"purchase_return_qty":    t.ReturnQty,
			"purchase_return_amount": t.ReturnAmount,
		}
	case ledger.CategoryAdjustment:
		return map[string]interface{}{
			"adjustment_qty":    t.Qty,
			"adjustment_amount": t.Amount,
		}
	case ledger.CategoryProcessing:
		return map[string]interface{}{
			"processing_qty":    t.Qty,
			"processing_amount": t.Amount,
		}
	case ledger.CategoryTransfer:
		return map[string]interface{}{
			"transfer_qty":    t.Qty,
			"transfer_amount": t.Amount,
		}
	}
	return map[string]interface{}{}
}

// Ensure GormWorkingSetRepository implements ledger.WorkingSetRepository
var _ ledger.WorkingSetRepository = (*GormWorkingSetRepository)(nil)
