package closing

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/oroshi/backoffice/internal/domain/ledger"
	"github.com/oroshi/backoffice/internal/domain/shared"
)

// memoryStore is an in-memory implementation of the ledger, working-set, and
// flow repositories, with failure injection hooks for the crash-safety tests.
type memoryStore struct {
	mu sync.Mutex

	ledgerRows  map[ledger.InventoryKey]ledger.LedgerRecord
	workingRows map[string]map[ledger.InventoryKey]ledger.WorkingRecord
	flows       []ledger.FlowEvent

	// failure injection
	applyCalls        int
	failApplyAfter    int // fail ApplyCategoryTotals permanently after N calls (0 = never)
	transientFailures int // next N ApplyCategoryTotals calls fail transiently
	failCommit        bool
	commitCalls       int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		ledgerRows:  make(map[ledger.InventoryKey]ledger.LedgerRecord),
		workingRows: make(map[string]map[ledger.InventoryKey]ledger.WorkingRecord),
	}
}

func (m *memoryStore) seedLedger(rec ledger.LedgerRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec.Key = rec.Key.Normalized()
	m.ledgerRows[rec.Key] = rec
}

func (m *memoryStore) seedFlows(events ...ledger.FlowEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.flows = append(m.flows, events...)
}

func (m *memoryStore) ledgerCopy() map[ledger.InventoryKey]ledger.LedgerRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[ledger.InventoryKey]ledger.LedgerRecord, len(m.ledgerRows))
	for k, v := range m.ledgerRows {
		out[k] = v
	}
	return out
}

func (m *memoryStore) workingCopy(datasetID string) []ledger.WorkingRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sortedWorking(datasetID)
}

func (m *memoryStore) sortedWorking(datasetID string) []ledger.WorkingRecord {
	rows := m.workingRows[datasetID]
	out := make([]ledger.WorkingRecord, 0, len(rows))
	for _, w := range rows {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Key.String() < out[j].Key.String()
	})
	return out
}

// LedgerRepository

func (m *memoryStore) Snapshot(_ context.Context, jobDate *time.Time) ([]ledger.LedgerRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]ledger.LedgerRecord, 0, len(m.ledgerRows))
	for _, rec := range m.ledgerRows {
		if jobDate != nil && rec.AsOfDate.After(*jobDate) {
			continue
		}
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Key.String() < out[j].Key.String()
	})
	return out, nil
}

func (m *memoryStore) FindByKey(_ context.Context, key ledger.InventoryKey) (*ledger.LedgerRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.ledgerRows[key.Normalized()]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &rec, nil
}

func (m *memoryStore) Register(_ context.Context, records []ledger.LedgerRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rec := range records {
		m.ledgerRows[rec.Key.Normalized()] = rec
	}
	return nil
}

func (m *memoryStore) Commit(_ context.Context, datasetID string, jobDate time.Time, results []ledger.ClosingResult) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.commitCalls++
	if m.failCommit {
		return 0, shared.ErrTransientStore
	}
	var affected int64
	for _, r := range results {
		rec, ok := m.ledgerRows[r.Key.Normalized()]
		if !ok {
			continue
		}
		rec.ApplyClosing(r, jobDate)
		m.ledgerRows[r.Key.Normalized()] = rec
		affected++
	}
	return affected, nil
}

func (m *memoryStore) PurgeBefore(_ context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var purged int64
	for key, rec := range m.ledgerRows {
		if rec.AsOfDate.Before(cutoff) {
			delete(m.ledgerRows, key)
			purged++
		}
	}
	return purged, nil
}

// WorkingSetRepository

func (m *memoryStore) Upsert(_ context.Context, records []ledger.WorkingRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, w := range records {
		rows, ok := m.workingRows[w.DatasetID]
		if !ok {
			rows = make(map[ledger.InventoryKey]ledger.WorkingRecord)
			m.workingRows[w.DatasetID] = rows
		}
		rows[w.Key] = w
	}
	return nil
}

func (m *memoryStore) ClearDailyArea(_ context.Context, datasetID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows := m.workingRows[datasetID]
	for key, w := range rows {
		w.ClearDailyArea()
		rows[key] = w
	}
	return nil
}

func (m *memoryStore) FindByDataset(_ context.Context, datasetID string) ([]ledger.WorkingRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sortedWorking(datasetID), nil
}

func (m *memoryStore) ApplyCategoryTotals(_ context.Context, datasetID string, category ledger.FlowCategory, totals []ledger.CategoryTotals) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.applyCalls++
	if m.transientFailures > 0 {
		m.transientFailures--
		return shared.ErrTransientStore
	}
	if m.failApplyAfter > 0 && m.applyCalls > m.failApplyAfter {
		return shared.NewDomainError("STORE_DOWN", "store is down")
	}
	rows := m.workingRows[datasetID]
	for _, t := range totals {
		w, ok := rows[t.Key]
		if !ok {
			continue
		}
		w.ApplyCategory(category, t)
		rows[t.Key] = w
	}
	return nil
}

func (m *memoryStore) SaveValuation(_ context.Context, datasetID string, results map[ledger.InventoryKey]ledger.ValuationResult) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows := m.workingRows[datasetID]
	for key, r := range results {
		w, ok := rows[key]
		if !ok {
			continue
		}
		w.ApplyValuation(r)
		rows[key] = w
	}
	return nil
}

func (m *memoryStore) SaveGrossProfit(_ context.Context, datasetID string, profits map[ledger.InventoryKey]decimal.Decimal) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows := m.workingRows[datasetID]
	for key, p := range profits {
		w, ok := rows[key]
		if !ok {
			continue
		}
		w.GrossProfit = p
		rows[key] = w
	}
	return nil
}

func (m *memoryStore) Purge(_ context.Context, datasetID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.workingRows, datasetID)
	return nil
}

func (m *memoryStore) DeleteKeys(_ context.Context, datasetID string, keys []ledger.InventoryKey) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rows := m.workingRows[datasetID]
	for _, key := range keys {
		delete(rows, key.Normalized())
	}
	return nil
}

// FlowRepository

func (m *memoryStore) ListFlows(_ context.Context, _ string, jobDate *time.Time, category ledger.FlowCategory) ([]ledger.FlowEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]ledger.FlowEvent, 0)
	for _, e := range m.flows {
		if jobDate != nil && !e.JobDate.Equal(*jobDate) {
			continue
		}
		if !e.Matches(category) {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (m *memoryStore) ListKeys(_ context.Context, _ string, jobDate *time.Time) ([]ledger.InventoryKey, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	events := make([]ledger.FlowEvent, 0, len(m.flows))
	for _, e := range m.flows {
		if jobDate != nil && !e.JobDate.Equal(*jobDate) {
			continue
		}
		events = append(events, e)
	}
	return ledger.DistinctKeys(events), nil
}

func (m *memoryStore) LatestJobDate(_ context.Context, _ string) (*time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var latest *time.Time
	for _, e := range m.flows {
		if latest == nil || e.JobDate.After(*latest) {
			jd := e.JobDate
			latest = &jd
		}
	}
	return latest, nil
}

var (
	_ ledger.LedgerRepository     = (*memoryStore)(nil)
	_ ledger.WorkingSetRepository = (*memoryStore)(nil)
	_ ledger.FlowRepository       = (*memoryStore)(nil)
)

// master lookup fakes

type fakeProducts struct {
	attrs map[string]ledger.ProductAttrs
}

func (f *fakeProducts) GetProductAttrs(_ context.Context, code string) (*ledger.ProductAttrs, error) {
	a, ok := f.attrs[code]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &a, nil
}

type fakeSuppliers struct {
	eligible map[string]bool
}

func (f *fakeSuppliers) GetSupplierCategory(_ context.Context, code string) (bool, error) {
	e, ok := f.eligible[code]
	if !ok {
		return false, shared.ErrNotFound
	}
	return e, nil
}

type fakeCustomers struct {
	rates map[string]decimal.Decimal
}

func (f *fakeCustomers) GetCustomerRate(_ context.Context, code string) (decimal.Decimal, error) {
	r, ok := f.rates[code]
	if !ok {
		return decimal.Zero, shared.ErrNotFound
	}
	return r, nil
}

// fakeLocker serializes by key in memory.

type fakeLocker struct {
	mu   sync.Mutex
	held map[string]bool
}

type fakeLock struct {
	locker *fakeLocker
	key    string
}

func newFakeLocker() *fakeLocker {
	return &fakeLocker{held: make(map[string]bool)}
}

func (l *fakeLocker) Acquire(_ context.Context, key string, _ time.Duration) (RunLock, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[key] {
		return nil, shared.ErrRunInProgress
	}
	l.held[key] = true
	return &fakeLock{locker: l, key: key}, nil
}

func (k *fakeLock) Release(_ context.Context) error {
	k.locker.mu.Lock()
	defer k.locker.mu.Unlock()
	delete(k.locker.held, k.key)
	return nil
}
