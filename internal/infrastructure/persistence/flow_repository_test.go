package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/oroshi/backoffice/internal/domain/ledger"
	"github.com/oroshi/backoffice/internal/infrastructure/persistence/models"
)

func setupFlowTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&models.VoucherFlowModel{})
	require.NoError(t, err)

	return db
}

func seedFlow(t *testing.T, db *gorm.DB, datasetID string, e ledger.FlowEvent) {
	row := models.VoucherFlowModelFromDomain(datasetID, e)
	require.NoError(t, db.Create(row).Error)
}

func TestGormFlowRepository_ListFlows(t *testing.T) {
	db := setupFlowTestDB(t)
	repo := NewGormFlowRepository(db)
	ctx := context.Background()

	day1 := time.Date(2026, 8, 27, 0, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)

	seedFlow(t, db, "ds-1", ledger.FlowEvent{
		Key: testKey("101"), JobDate: day1, VoucherType: ledger.VoucherCreditSale,
		DetailType: ledger.DetailGoods, PartyCode: "C001",
		Quantity: dec("10"), Amount: dec("2000"), UnitPrice: dec("200"),
	})
	seedFlow(t, db, "ds-1", ledger.FlowEvent{
		Key: testKey("101"), JobDate: day2, VoucherType: ledger.VoucherCreditSale,
		DetailType: ledger.DetailGoods, PartyCode: "C001",
		Quantity: dec("30"), Amount: dec("6000"), UnitPrice: dec("200"),
	})
	seedFlow(t, db, "ds-1", ledger.FlowEvent{
		Key: testKey("101"), JobDate: day2, VoucherType: ledger.VoucherCreditSale,
		DetailType: ledger.DetailDiscount, PartyCode: "C001",
		Amount: dec("100"),
	})
	seedFlow(t, db, "ds-1", ledger.FlowEvent{
		Key: testKey("101"), JobDate: day2, VoucherType: ledger.VoucherCashPurchase,
		DetailType: ledger.DetailGoods, PartyCode: "S001",
		Quantity: dec("50"), Amount: dec("500"), UnitPrice: dec("10"),
	})
	seedFlow(t, db, "ds-1", ledger.FlowEvent{
		Key: testKey("101"), JobDate: day2, VoucherType: ledger.VoucherAdjustment,
		DetailType: ledger.DetailGoods, CategoryCode: ledger.AdjustCategoryProcessing,
		Quantity: dec("2"), Amount: dec("20"),
	})
	seedFlow(t, db, "ds-2", ledger.FlowEvent{
		Key: testKey("101"), JobDate: day2, VoucherType: ledger.VoucherCreditSale,
		DetailType: ledger.DetailGoods, PartyCode: "C009",
		Quantity: dec("99"), Amount: dec("9900"), UnitPrice: dec("100"),
	})

	t.Run("selects only the category's lines for the job date", func(t *testing.T) {
		events, err := repo.ListFlows(ctx, "ds-1", &day2, ledger.CategorySales)
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.True(t, dec("30").Equal(events[0].Quantity))
		assert.Equal(t, "C001", events[0].PartyCode)
	})

	t.Run("discount lines surface only under the discount category", func(t *testing.T) {
		events, err := repo.ListFlows(ctx, "ds-1", &day2, ledger.CategorySalesDiscount)
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.True(t, dec("100").Equal(events[0].Amount))
	})

	t.Run("adjustment lines split by category code", func(t *testing.T) {
		events, err := repo.ListFlows(ctx, "ds-1", &day2, ledger.CategoryProcessing)
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.True(t, dec("2").Equal(events[0].Quantity))

		events, err = repo.ListFlows(ctx, "ds-1", &day2, ledger.CategoryAdjustment)
		require.NoError(t, err)
		assert.Empty(t, events)
	})

	t.Run("nil job date sweeps the whole dataset", func(t *testing.T) {
		events, err := repo.ListFlows(ctx, "ds-1", nil, ledger.CategorySales)
		require.NoError(t, err)
		assert.Len(t, events, 2)
	})

	t.Run("other datasets never leak in", func(t *testing.T) {
		events, err := repo.ListFlows(ctx, "ds-2", &day2, ledger.CategorySales)
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, "C009", events[0].PartyCode)
	})
}

func TestGormFlowRepository_ListKeys(t *testing.T) {
	db := setupFlowTestDB(t)
	repo := NewGormFlowRepository(db)
	ctx := context.Background()

	day := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	for _, productCode := range []string{"202", "101", "101"} {
		seedFlow(t, db, "ds-1", ledger.FlowEvent{
			Key: testKey(productCode), JobDate: day, VoucherType: ledger.VoucherCreditSale,
			DetailType: ledger.DetailGoods, Quantity: dec("1"), Amount: dec("10"),
		})
	}

	keys, err := repo.ListKeys(ctx, "ds-1", &day)
	require.NoError(t, err)
	require.Len(t, keys, 2)
	assert.Equal(t, "00000101", keys[0].ProductCode)
	assert.Equal(t, "00000202", keys[1].ProductCode)
}

func TestGormFlowRepository_LatestJobDate(t *testing.T) {
	db := setupFlowTestDB(t)
	repo := NewGormFlowRepository(db)
	ctx := context.Background()

	t.Run("no flows yields nil", func(t *testing.T) {
		latest, err := repo.LatestJobDate(ctx, "ds-empty")
		require.NoError(t, err)
		assert.Nil(t, latest)
	})

	day1 := time.Date(2026, 8, 27, 0, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 8, 28, 0, 0, 0, 0, time.UTC)
	for _, day := range []time.Time{day2, day1} {
		seedFlow(t, db, "ds-1", ledger.FlowEvent{
			Key: testKey("101"), JobDate: day, VoucherType: ledger.VoucherCreditSale,
			DetailType: ledger.DetailGoods, Quantity: dec("1"), Amount: dec("10"),
		})
	}

	latest, err := repo.LatestJobDate(ctx, "ds-1")
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, day2.Format("2006-01-02"), latest.Format("2006-01-02"))
}
