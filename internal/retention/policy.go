package retention

import (
	"context"

	"go.uber.org/zap"
)

// DefaultRetentionMonths applies when no window is configured.
const DefaultRetentionMonths = 6

const (
	logEventSweepCompleted = "retention_sweep"
	logEventSweepFailed    = "retention_sweep_failed"
	logFieldDeletedCount   = "deleted_count"
	logFieldWindowMonths   = "retention_months"
)

// Sweeper removes submissions older than a retention window.
type Sweeper interface {
	DeleteOlderThan(ctx context.Context, retentionMonths int) (int64, error)
}

// Policy applies the configured retention window to stored submissions. A
// submission is eligible for deletion once it is older than the window.
type Policy struct {
	store        Sweeper
	logger       *zap.Logger
	windowMonths int
}

// NewPolicy creates a Policy with the given window in months, falling back to
// the default window when the value is non-positive.
func NewPolicy(store Sweeper, logger *zap.Logger, retentionMonths int) *Policy {
	if retentionMonths <= 0 {
		retentionMonths = DefaultRetentionMonths
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Policy{
		store:        store,
		logger:       logger,
		windowMonths: retentionMonths,
	}
}

// RetentionMonths reports the effective window.
func (policy *Policy) RetentionMonths() int {
	return policy.windowMonths
}

// Sweep deletes every submission older than the retention window and reports
// the number removed.
func (policy *Policy) Sweep(ctx context.Context) (int64, error) {
	deletedCount, deleteErr := policy.store.DeleteOlderThan(ctx, policy.windowMonths)
	if deleteErr != nil {
		policy.logger.Error(logEventSweepFailed, zap.Error(deleteErr), zap.Int(logFieldWindowMonths, policy.windowMonths))
		return 0, deleteErr
	}

	policy.logger.Info(logEventSweepCompleted,
		zap.Int64(logFieldDeletedCount, deletedCount),
		zap.Int(logFieldWindowMonths, policy.windowMonths),
	)
	return deletedCount, nil
}
