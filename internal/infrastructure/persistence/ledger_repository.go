package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/oroshi/backoffice/internal/domain/ledger"
	"github.com/oroshi/backoffice/internal/domain/shared"
	"github.com/oroshi/backoffice/internal/infrastructure/persistence/models"
)

// keyOrder is the canonical ordering of ledger and working rows.
const keyOrder = "product_code, grade_code, class_code, shipping_mark_code, shipping_mark_name"

// GormLedgerRepository implements ledger.LedgerRepository using GORM
type GormLedgerRepository struct {
	db *gorm.DB
}

// NewGormLedgerRepository creates a new GormLedgerRepository
func NewGormLedgerRepository(db *gorm.DB) *GormLedgerRepository {
	return &GormLedgerRepository{db: db}
}

// Snapshot returns every ledger record, optionally restricted to rows whose
// as-of date is on or before jobDate.
func (r *GormLedgerRepository) Snapshot(ctx context.Context, jobDate *time.Time) ([]ledger.LedgerRecord, error) {
	query := r.db.WithContext(ctx).Model(&models.StockLedgerModel{})
	if jobDate != nil {
		query = query.Where("as_of_date <= ?", *jobDate)
	}

	var rows []models.StockLedgerModel
	if err := query.Order(keyOrder).Find(&rows).Error; err != nil {
		return nil, translateError(err)
	}

	records := make([]ledger.LedgerRecord, len(rows))
	for i := range rows {
		records[i] = rows[i].ToDomain()
	}
	return records, nil
}

// FindByKey returns the ledger record for a normalized key.
func (r *GormLedgerRepository) FindByKey(ctx context.Context, key ledger.InventoryKey) (*ledger.LedgerRecord, error) {
	var row models.StockLedgerModel
	if err := keyScope(r.db.WithContext(ctx), key).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, translateError(err)
	}
	rec := row.ToDomain()
	return &rec, nil
}

// Register inserts ledger records for keys first seen in today's flows.
func (r *GormLedgerRepository) Register(ctx context.Context, records []ledger.LedgerRecord) error {
	if len(records) == 0 {
		return nil
	}
	rows := make([]models.StockLedgerModel, len(records))
	for i, rec := range records {
		rows[i] = *models.StockLedgerModelFromDomain(rec)
	}
	return translateError(r.db.WithContext(ctx).Create(&rows).Error)
}

// Commit applies every closing result inside one transaction. A result whose
// key has no ledger row aborts the whole commit; partial roll-forward would
// leave the ledger internally inconsistent.
func (r *GormLedgerRepository) Commit(ctx context.Context, datasetID string, jobDate time.Time, results []ledger.ClosingResult) (int64, error) {
	var affected int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, result := range results {
			updates := map[string]interface{}{
				"opening_qty":       result.ClosingQty,
				"opening_amount":    result.ClosingAmount,
				"opening_unit_cost": result.UnitCost,
				"flag":              int(result.Flag),
				"as_of_date":        jobDate,
				"updated_at":        time.Now(),
			}
			res := keyScope(tx.Model(&models.StockLedgerModel{}), result.Key).Updates(updates)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("%w: no ledger row for key %s", shared.ErrDataIntegrity, result.Key)
			}
			affected += res.RowsAffected
		}
		return nil
	})
	if err != nil {
		return 0, translateError(err)
	}
	return affected, nil
}

// PurgeBefore deletes ledger rows whose as-of date is older than cutoff.
func (r *GormLedgerRepository) PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("as_of_date < ?", cutoff).
		Delete(&models.StockLedgerModel{})
	if res.Error != nil {
		return 0, translateError(res.Error)
	}
	return res.RowsAffected, nil
}

// keyScope restricts a query to one normalized inventory key.
func keyScope(db *gorm.DB, key ledger.InventoryKey) *gorm.DB {
	n := key.Normalized()
	return db.Where(
		"product_code = ? AND grade_code = ? AND class_code = ? AND shipping_mark_code = ? AND shipping_mark_name = ?",
		n.ProductCode, n.GradeCode, n.ClassCode, n.ShippingMarkCode, n.ShippingMarkName,
	)
}

// Ensure GormLedgerRepository implements ledger.LedgerRepository
var _ ledger.LedgerRepository = (*GormLedgerRepository)(nil)
