package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/MarkoPoloResearchLab/contact_svc/internal/model"
)

const (
	errorMessageCreateSubmission  = "storage: create submission"
	errorMessageCountSubmissions  = "storage: count submissions"
	errorMessageDeleteSubmissions = "storage: delete submissions"
	errorMessageRetentionDelete   = "storage: delete expired submissions"
)

// ErrInvalidRetentionMonths indicates a non-positive retention window was requested.
var ErrInvalidRetentionMonths = errors.New("storage: retention months must be positive")

// SubmissionStore persists contact submissions. The database handle is owned
// by the process and injected at construction; every operation is atomic on
// its own, so repeated deletions are safe and simply affect zero rows.
type SubmissionStore struct {
	database *gorm.DB
	now      func() time.Time
}

// NewSubmissionStore creates a SubmissionStore backed by the given database handle.
func NewSubmissionStore(database *gorm.DB) *SubmissionStore {
	return &SubmissionStore{
		database: database,
		now:      time.Now,
	}
}

// WithClock overrides the store's time source, primarily for retention boundary tests.
func (store *SubmissionStore) WithClock(now func() time.Time) *SubmissionStore {
	store.now = now
	return store
}

// Create persists the submission, filling its store-assigned timestamp. The
// consent check constraint rejects a non-consenting row even if one slips past
// validation.
func (store *SubmissionStore) Create(ctx context.Context, submission *model.Submission) error {
	if submission.ID == "" {
		submission.ID = NewID()
	}
	if createErr := store.database.WithContext(ctx).Create(submission).Error; createErr != nil {
		return fmt.Errorf("%s: %w", errorMessageCreateSubmission, createErr)
	}
	return nil
}

// CountByEmail reports how many submissions exist for the given email.
func (store *SubmissionStore) CountByEmail(ctx context.Context, email string) (int64, error) {
	var total int64
	countErr := store.database.WithContext(ctx).
		Model(&model.Submission{}).
		Where("email = ?", normalizeEmail(email)).
		Count(&total).Error
	if countErr != nil {
		return 0, fmt.Errorf("%s: %w", errorMessageCountSubmissions, countErr)
	}
	return total, nil
}

// DeleteByEmail removes every submission for the given email and reports how
// many rows were removed. Deleting an email with no submissions affects zero
// rows and is not an error.
func (store *SubmissionStore) DeleteByEmail(ctx context.Context, email string) (int64, error) {
	result := store.database.WithContext(ctx).
		Where("email = ?", normalizeEmail(email)).
		Delete(&model.Submission{})
	if result.Error != nil {
		return 0, fmt.Errorf("%s: %w", errorMessageDeleteSubmissions, result.Error)
	}
	return result.RowsAffected, nil
}

// DeleteOlderThan removes every submission submitted before now minus the
// retention window. The cutoff is computed with calendar month arithmetic and
// bound as a query parameter; the window value never reaches the SQL text.
func (store *SubmissionStore) DeleteOlderThan(ctx context.Context, retentionMonths int) (int64, error) {
	if retentionMonths <= 0 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidRetentionMonths, retentionMonths)
	}

	cutoff := store.now().AddDate(0, -retentionMonths, 0)
	result := store.database.WithContext(ctx).
		Where("submitted_at < ?", cutoff).
		Delete(&model.Submission{})
	if result.Error != nil {
		return 0, fmt.Errorf("%s: %w", errorMessageRetentionDelete, result.Error)
	}
	return result.RowsAffected, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
