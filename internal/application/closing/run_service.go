package closing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/oroshi/backoffice/internal/domain/ledger"
	"github.com/oroshi/backoffice/internal/domain/shared"
	"github.com/oroshi/backoffice/internal/infrastructure/logger"
)

// RunLock is a held single-writer lock for one (dataset, jobDate).
type RunLock interface {
	Release(ctx context.Context) error
}

// RunLocker serializes closing runs targeting the same (dataset, jobDate).
// Acquire returns shared.ErrRunInProgress when the lock is already held.
type RunLocker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (RunLock, error)
}

// RunConfig bounds the store operations of one run.
type RunConfig struct {
	StoreTimeout  time.Duration
	RetryAttempts int
	RetryBackoff  time.Duration
	LockTTL       time.Duration
}

// DefaultRunConfig returns conservative defaults for a single-node deployment.
func DefaultRunConfig() RunConfig {
	return RunConfig{
		StoreTimeout:  30 * time.Second,
		RetryAttempts: 3,
		RetryBackoff:  500 * time.Millisecond,
		LockTTL:       5 * time.Minute,
	}
}

// RunService orchestrates one closing run: snapshot, aggregation, valuation,
// profit, close, strictly in that order per (dataset, jobDate). Every stage
// before the close only mutates the disposable working set, so cancellation
// or failure anywhere upstream leaves the permanent ledger unmodified.
type RunService struct {
	workingSet *WorkingSetManager
	aggregator *FlowAggregator
	valuation  *ValuationService
	profit     *ProfitService
	closer     *LedgerCloser
	flows      ledger.FlowRepository
	locker     RunLocker
	cfg        RunConfig
	logger     *zap.Logger
}

// NewRunService creates a new RunService.
func NewRunService(
	workingSet *WorkingSetManager,
	aggregator *FlowAggregator,
	valuation *ValuationService,
	profit *ProfitService,
	closer *LedgerCloser,
	flows ledger.FlowRepository,
	locker RunLocker,
	cfg RunConfig,
	log *zap.Logger,
) *RunService {
	return &RunService{
		workingSet: workingSet,
		aggregator: aggregator,
		valuation:  valuation,
		profit:     profit,
		closer:     closer,
		flows:      flows,
		locker:     locker,
		cfg:        cfg,
		logger:     log,
	}
}

// Run executes the full pipeline for one request. Upsert-only stages retry on
// transient store failures because their writes are idempotent overwrites;
// the close step never retries partially. A nil JobDate runs cumulative mode
// and skips the ledger commit date restriction.
func (s *RunService) Run(ctx context.Context, req RunRequest) (*RunResult, error) {
	if req.DatasetID == "" {
		return nil, fmt.Errorf("dataset id is required: %w", shared.ErrInvalidInput)
	}

	runID := uuid.New().String()
	ctx, log := logger.WithRunID(ctx, s.logger, runID)
	ctx, log = logger.WithDatasetID(ctx, log, req.DatasetID)
	log = log.With(zap.Stringp("job_date", formatDate(req.JobDate)))

	lock, err := s.locker.Acquire(ctx, lockKey(req), s.cfg.LockTTL)
	if err != nil {
		return nil, fmt.Errorf("acquire run lock for dataset %s: %w", req.DatasetID, err)
	}
	defer func() {
		if err := lock.Release(context.WithoutCancel(ctx)); err != nil {
			log.Warn("release run lock", zap.Error(err))
		}
	}()

	startedAt := time.Now()
	log.Info("closing run started")

	if err := s.withRetry(ctx, log, "working_set", func(ctx context.Context) error {
		return s.workingSet.CreateWorkingSet(ctx, req.DatasetID, req.JobDate)
	}); err != nil {
		return nil, err
	}

	if err := s.withRetry(ctx, log, "aggregate", func(ctx context.Context) error {
		return s.aggregator.Aggregate(ctx, req.DatasetID, req.JobDate)
	}); err != nil {
		return nil, err
	}

	var unitCosts map[ledger.InventoryKey]ledger.ValuationResult
	if err := s.withRetry(ctx, log, "valuate", func(ctx context.Context) error {
		var err error
		unitCosts, err = s.valuation.Valuate(ctx, req.DatasetID)
		return err
	}); err != nil {
		return nil, err
	}

	if err := s.withRetry(ctx, log, "profit", func(ctx context.Context) error {
		_, err := s.profit.ComputeProfit(ctx, req.DatasetID, req.JobDate, unitCosts)
		return err
	}); err != nil {
		return nil, err
	}

	// The close is the sole durable write and is never retried as a partial
	// commit: it either lands whole or aborts the run.
	jobDate, err := s.closeDate(ctx, req)
	if err != nil {
		return nil, err
	}
	closeCtx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
	defer cancel()
	affected, err := s.closer.Commit(closeCtx, req.DatasetID, jobDate)
	if err != nil {
		log.Error("closing run aborted", zap.Error(err))
		return nil, err
	}

	result := &RunResult{
		RunID:              runID,
		DatasetID:          req.DatasetID,
		JobDate:            req.JobDate,
		KeysProcessed:      len(unitCosts),
		LedgerRowsAffected: affected,
		StartedAt:          startedAt,
		Duration:           time.Since(startedAt),
	}
	log.Info("closing run finished",
		zap.Int("keys_processed", result.KeysProcessed),
		zap.Int64("ledger_rows", result.LedgerRowsAffected),
		zap.Duration("duration", result.Duration))
	return result, nil
}

// closeDate resolves the as-of date stamped on the ledger by the close. A
// cumulative run takes the newest job date in the feed so re-running the same
// dataset stamps the same date; the current day applies only when the dataset
// has no flows at all.
func (s *RunService) closeDate(ctx context.Context, req RunRequest) (time.Time, error) {
	if req.JobDate != nil {
		return *req.JobDate, nil
	}
	latest, err := s.flows.LatestJobDate(ctx, req.DatasetID)
	if err != nil {
		return time.Time{}, fmt.Errorf("resolve close date for dataset %s: %w", req.DatasetID, err)
	}
	if latest != nil {
		return *latest, nil
	}
	return time.Now().UTC().Truncate(24 * time.Hour), nil
}

// withRetry runs one upstream stage with a bounded store timeout, retrying on
// transient store failures. Safe because all upstream writes are idempotent
// overwrites of the disposable working set.
func (s *RunService) withRetry(ctx context.Context, log *zap.Logger, stage string, fn func(context.Context) error) error {
	var lastErr error
	for attempt := 1; attempt <= s.cfg.RetryAttempts; attempt++ {
		stageCtx, cancel := context.WithTimeout(ctx, s.cfg.StoreTimeout)
		err := fn(stageCtx)
		cancel()
		if err == nil {
			return nil
		}
		lastErr = err
		if !errors.Is(err, shared.ErrTransientStore) {
			return fmt.Errorf("stage %s: %w", stage, err)
		}
		log.Warn("transient store failure, retrying stage",
			zap.String("stage", stage),
			zap.Int("attempt", attempt),
			zap.Error(err))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.cfg.RetryBackoff * time.Duration(attempt)):
		}
	}
	return fmt.Errorf("stage %s exhausted retries: %w", stage, lastErr)
}

func lockKey(req RunRequest) string {
	if req.JobDate == nil {
		return "closing:" + req.DatasetID + ":all"
	}
	return "closing:" + req.DatasetID + ":" + req.JobDate.Format("2006-01-02")
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format("2006-01-02")
	return &s
}
