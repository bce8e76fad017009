// Package award orchestrates personal-record detection and badge awarding as
// one race-safe transactional unit.
package award

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"example.com/gamification/internal/domain"
	"example.com/gamification/internal/observability"
)

// ErrRetryExhausted is returned once every transaction attempt failed on a
// retryable conflict. The triggering entry is already logged upstream; award
// processing is deferred, not failed.
var ErrRetryExhausted = errors.New("award processing retries exhausted")

// Tx is the transactional surface the coordinator drives. Implementations
// must provide row-level locking for GetOrCreateRecordForUpdate and a true
// atomic insert-or-detect-duplicate for InsertUserBadgeIfAbsent; a
// check-then-insert without locking does not satisfy the contract.
type Tx interface {
	GetOrCreateRecordForUpdate(ctx context.Context, userID, exerciseID string, rt domain.RecordType) (*domain.Record, error)
	UpdateRecord(ctx context.Context, rec domain.Record) error
	ProfileSnapshot(ctx context.Context, userID string) (domain.ProfileSnapshot, error)
	ListActiveBadges(ctx context.Context) ([]domain.BadgeDefinition, error)
	EarnedBadgeIDs(ctx context.Context, userID string) (map[string]bool, error)
	InsertUserBadgeIfAbsent(ctx context.Context, ub domain.UserBadge) (bool, error)
	AppendRecordBroken(ctx context.Context, outcome domain.RecordOutcome, entry domain.PerformanceEntry) error
	AppendBadgeAwarded(ctx context.Context, ub domain.UserBadge) error
}

// Store opens transactions and classifies their failures. Everything inside
// one InTx call commits or rolls back atomically.
type Store interface {
	InTx(ctx context.Context, fn func(Tx) error) error
	IsRetryable(err error) bool
}

// Notifier observes committed results in-process, strictly after commit so no
// locks are held during notification I/O. Delivery is best effort.
type Notifier interface {
	AwardCommitted(ctx context.Context, entry domain.PerformanceEntry, result Result)
}

// Result reports what one Process call committed.
type Result struct {
	NewRecords []domain.Record
	NewBadges  []domain.BadgeDefinition
}

// Option configures optional coordinator behaviour.
type Option func(*Coordinator)

// WithMaxAttempts bounds how often a conflicting transaction is retried.
func WithMaxAttempts(n int) Option {
	return func(c *Coordinator) {
		if n > 0 {
			c.maxAttempts = n
		}
	}
}

// WithBackoff sets the base delay between retry attempts.
func WithBackoff(d time.Duration) Option {
	return func(c *Coordinator) {
		if d >= 0 {
			c.backoff = d
		}
	}
}

// WithNotifier registers an after-commit observer.
func WithNotifier(n Notifier) Option {
	return func(c *Coordinator) {
		c.notifier = n
	}
}

// WithLogger overrides the logger used for retry reporting.
func WithLogger(logger *log.Logger) Option {
	return func(c *Coordinator) {
		c.logger = logger
	}
}

// Coordinator runs the award saga: lock records, detect PRs, evaluate badges,
// persist awards, emit events.
type Coordinator struct {
	store       Store
	notifier    Notifier
	maxAttempts int
	backoff     time.Duration
	logger      *log.Logger
}

// NewCoordinator constructs a Coordinator with the provided store.
func NewCoordinator(store Store, opts ...Option) *Coordinator {
	c := &Coordinator{
		store:       store,
		maxAttempts: 3,
		backoff:     25 * time.Millisecond,
		logger:      log.New(log.Writer(), "[award] ", log.LstdFlags),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Process evaluates one performance entry inside a single transaction per
// attempt. Concurrent calls for the same (user, exercise, record-type) tuple
// serialize on the locked record row; the loser re-reads committed state, so
// no update is ever lost and no badge is awarded twice.
func (c *Coordinator) Process(ctx context.Context, entry domain.PerformanceEntry) (Result, error) {
	if err := entry.Validate(); err != nil {
		return Result{}, err
	}

	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		var result Result
		err := c.store.InTx(ctx, func(tx Tx) error {
			return c.run(ctx, tx, entry, &result)
		})
		if err == nil {
			c.recordResult(result)
			if c.notifier != nil {
				c.notifier.AwardCommitted(ctx, entry, result)
			}
			return result, nil
		}
		if !c.store.IsRetryable(err) {
			return Result{}, err
		}

		lastErr = err
		observability.RecordAwardConflict()
		c.logger.Printf("transaction conflict for user=%s exercise=%s (attempt %d/%d): %v",
			entry.UserID, entry.ExerciseID, attempt, c.maxAttempts, err)

		if attempt == c.maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return Result{}, ctx.Err()
		case <-time.After(c.backoff * time.Duration(attempt)):
		}
	}

	observability.RecordAwardRetryExhausted()
	return Result{}, fmt.Errorf("%w: %v", ErrRetryExhausted, lastErr)
}

func (c *Coordinator) run(ctx context.Context, tx Tx, entry domain.PerformanceEntry, result *Result) error {
	values := domain.DeriveValues(entry)

	outcomes := make([]domain.RecordOutcome, 0, len(values))
	for _, rt := range domain.AllRecordTypes() {
		value, ok := values[rt]
		if !ok {
			continue
		}

		current, err := tx.GetOrCreateRecordForUpdate(ctx, entry.UserID, entry.ExerciseID, rt)
		if err != nil {
			return err
		}

		outcome := domain.CompareRecord(current, rt, value, entry)
		outcomes = append(outcomes, outcome)
		if !outcome.NewRecord {
			continue
		}

		rec := domain.Record{
			UserID:     entry.UserID,
			ExerciseID: entry.ExerciseID,
			Type:       rt,
			Value:      value,
			EntryID:    entry.ID,
			SessionID:  entry.SessionID,
			AchievedAt: entry.RecordedAt,
		}
		if err := tx.UpdateRecord(ctx, rec); err != nil {
			return err
		}
		if err := tx.AppendRecordBroken(ctx, outcome, entry); err != nil {
			return err
		}
		result.NewRecords = append(result.NewRecords, rec)
	}

	snapshot, err := tx.ProfileSnapshot(ctx, entry.UserID)
	if err != nil {
		return err
	}
	earned, err := tx.EarnedBadgeIDs(ctx, entry.UserID)
	if err != nil {
		return err
	}
	catalog, err := tx.ListActiveBadges(ctx)
	if err != nil {
		return err
	}

	for _, badge := range domain.EvaluateCandidates(snapshot, outcomes, earned, catalog) {
		ub := domain.UserBadge{
			UserID:    entry.UserID,
			BadgeID:   badge.ID,
			AwardedAt: time.Now().UTC(),
			Snapshot:  snapshot,
		}
		created, err := tx.InsertUserBadgeIfAbsent(ctx, ub)
		if err != nil {
			return err
		}
		if !created {
			// A concurrent transaction already awarded the pair. Not an
			// error; the badge is simply not ours to report.
			continue
		}
		if err := tx.AppendBadgeAwarded(ctx, ub); err != nil {
			return err
		}
		result.NewBadges = append(result.NewBadges, badge)
	}

	return nil
}

func (c *Coordinator) recordResult(result Result) {
	for _, rec := range result.NewRecords {
		observability.RecordPRDetected(string(rec.Type))
	}
	for _, badge := range result.NewBadges {
		observability.RecordBadgeAwarded(badge.ID)
	}
}
