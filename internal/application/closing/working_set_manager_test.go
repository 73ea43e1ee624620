package closing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oroshi/backoffice/internal/domain/ledger"
	"github.com/oroshi/backoffice/internal/domain/shared"
)

func TestCreateWorkingSetSnapshotsLedger(t *testing.T) {
	env := newTestEnv(PolicyDefault)
	env.store.seedLedger(ledger.LedgerRecord{
		Key:             ledger.InventoryKey{ProductCode: "1"},
		Name:            "COFFEE",
		OpeningQty:      d("100"),
		OpeningAmount:   d("1000"),
		OpeningUnitCost: d("10"),
		Flag:            ledger.FlagProcessed,
	})

	jd := jobDate
	require.NoError(t, env.manager.CreateWorkingSet(context.Background(), "ds-1", &jd))

	rows := env.store.workingCopy("ds-1")
	require.Len(t, rows, 1)
	w := rows[0]
	assert.True(t, d("100").Equal(w.OpeningQty))
	assert.True(t, d("1000").Equal(w.OpeningAmount))
	assert.True(t, d("10").Equal(w.OpeningUnitCost))
	assert.Equal(t, ledger.FlagUnprocessed, w.Flag)
	assert.True(t, w.SalesQty.IsZero())
}

func TestCreateWorkingSetResetsPriorPartialSnapshot(t *testing.T) {
	env := newTestEnv(PolicyDefault)
	env.seedScenario()
	ctx := context.Background()
	jd := jobDate

	require.NoError(t, env.manager.CreateWorkingSet(ctx, "ds-1", &jd))
	require.NoError(t, env.aggregator.Aggregate(ctx, "ds-1", &jd))

	dirty := env.store.workingCopy("ds-1")
	require.Len(t, dirty, 1)
	require.False(t, dirty[0].SalesQty.IsZero(), "precondition: snapshot is dirty")

	// Re-invocation resets numeric columns and flag but keeps the key row.
	require.NoError(t, env.manager.CreateWorkingSet(ctx, "ds-1", &jd))
	rows := env.store.workingCopy("ds-1")
	require.Len(t, rows, 1)
	assert.True(t, rows[0].SalesQty.IsZero())
	assert.True(t, rows[0].ClosingQty.IsZero())
	assert.Equal(t, ledger.FlagUnprocessed, rows[0].Flag)
	assert.True(t, d("100").Equal(rows[0].OpeningQty), "opening survives the reset")
}

func TestCreateWorkingSetRegistersNewFlowKeys(t *testing.T) {
	env := newTestEnv(PolicyDefault)
	env.products.attrs["00000002"] = ledger.ProductAttrs{Name: "SUGAR", Unit: "KG", Category: "DRY"}
	key := ledger.InventoryKey{ProductCode: "2"}.Normalized()
	env.store.seedFlows(ledger.FlowEvent{
		Key: key, JobDate: jobDate,
		VoucherType: ledger.VoucherCashPurchase, DetailType: ledger.DetailGoods,
		PartyCode: "S001", Quantity: d("10"), Amount: d("100"),
	})

	jd := jobDate
	require.NoError(t, env.manager.CreateWorkingSet(context.Background(), "ds-1", &jd))

	rec, err := env.store.FindByKey(context.Background(), key)
	require.NoError(t, err)
	assert.Equal(t, "SUGAR", rec.Name)
	assert.Equal(t, "KG", rec.Unit)
	assert.True(t, rec.OpeningQty.IsZero(), "new keys open at zero")

	rows := env.store.workingCopy("ds-1")
	require.Len(t, rows, 1)
	assert.Equal(t, key, rows[0].Key)
}

func TestCreateWorkingSetPrunesRowsClosedPastJobDate(t *testing.T) {
	env := newTestEnv(PolicyDefault)
	ctx := context.Background()

	// A key already closed for the following day: its ledger as-of date sits
	// after the backdated job date about to be re-run.
	env.store.seedLedger(ledger.LedgerRecord{
		Key:           ledger.InventoryKey{ProductCode: "1"},
		Name:          "COFFEE",
		OpeningQty:    d("120"),
		OpeningAmount: d("1200"),
		AsOfDate:      jobDate.AddDate(0, 0, 1),
	})
	later := jobDate.AddDate(0, 0, 1)
	require.NoError(t, env.manager.CreateWorkingSet(ctx, "ds-1", &later))
	require.Len(t, env.store.workingCopy("ds-1"), 1, "precondition: working row exists")

	// The backdated snapshot excludes the key, and its stale working row
	// must not survive into valuation with the newer opening balance.
	jd := jobDate
	require.NoError(t, env.manager.CreateWorkingSet(ctx, "ds-1", &jd))
	assert.Empty(t, env.store.workingCopy("ds-1"))
}

func TestCreateWorkingSetRefusesFlowsForKeyClosedPastJobDate(t *testing.T) {
	env := newTestEnv(PolicyDefault)
	key := ledger.InventoryKey{ProductCode: "1"}.Normalized()
	env.store.seedLedger(ledger.LedgerRecord{
		Key:      key,
		Name:     "COFFEE",
		AsOfDate: jobDate.AddDate(0, 0, 1),
	})
	env.store.seedFlows(ledger.FlowEvent{
		Key: key, JobDate: jobDate,
		VoucherType: ledger.VoucherCashPurchase, DetailType: ledger.DetailGoods,
		Quantity: d("10"), Amount: d("100"),
	})

	// Reprocessing a day the key was already closed past would clobber the
	// newer close, so the snapshot refuses instead of re-registering.
	jd := jobDate
	err := env.manager.CreateWorkingSet(context.Background(), "ds-1", &jd)
	assert.ErrorIs(t, err, shared.ErrInvalidState)
}

func TestCreateWorkingSetMissingMasterDefaultPolicy(t *testing.T) {
	env := newTestEnv(PolicyDefault)
	key := ledger.InventoryKey{ProductCode: "9"}.Normalized()
	env.store.seedFlows(ledger.FlowEvent{
		Key: key, JobDate: jobDate,
		VoucherType: ledger.VoucherCashPurchase, DetailType: ledger.DetailGoods,
		Quantity: d("10"), Amount: d("100"),
	})

	jd := jobDate
	require.NoError(t, env.manager.CreateWorkingSet(context.Background(), "ds-1", &jd))

	rec, err := env.store.FindByKey(context.Background(), key)
	require.NoError(t, err)
	assert.Contains(t, rec.Name, PlaceholderName)
}

func TestCreateWorkingSetMissingMasterStrictPolicy(t *testing.T) {
	env := newTestEnv(PolicyStrict)
	env.store.seedFlows(ledger.FlowEvent{
		Key: ledger.InventoryKey{ProductCode: "9"}, JobDate: jobDate,
		VoucherType: ledger.VoucherCashPurchase, DetailType: ledger.DetailGoods,
		Quantity: d("10"), Amount: d("100"),
	})

	jd := jobDate
	err := env.manager.CreateWorkingSet(context.Background(), "ds-1", &jd)
	assert.ErrorIs(t, err, shared.ErrDataIntegrity)
}
