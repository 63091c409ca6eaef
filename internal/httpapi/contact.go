package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/MarkoPoloResearchLab/contact_svc/internal/model"
	"github.com/MarkoPoloResearchLab/contact_svc/internal/privacy"
	"github.com/MarkoPoloResearchLab/contact_svc/internal/retention"
	"github.com/MarkoPoloResearchLab/contact_svc/internal/validation"
)

const (
	jsonKeySuccess         = "success"
	jsonKeyError           = "error"
	jsonKeyMessage         = "message"
	jsonKeyData            = "data"
	jsonKeyDetails         = "details"
	jsonKeyID              = "id"
	jsonKeySubmittedAt     = "submitted_at"
	jsonKeyEmail           = "email"
	jsonKeyDeletedCount    = "deleted_count"
	jsonKeyRetentionPolicy = "retention_policy"

	errorValueInvalidJSON      = "Invalid request body"
	errorValueValidationFailed = "Validation failed"
	errorValueSubmitFailed     = "Failed to process contact form submission"
	errorValueDeleteFailed     = "Failed to delete submissions"
	errorValueCleanupFailed    = "Failed to execute cleanup"
	errorValueMissingEmail     = "Email parameter is required"

	messageSubmitAccepted   = "Contact form submitted successfully"
	messageNoSubmissions    = "No submissions found for this email"
	messageDeletionComplete = "All submissions deleted successfully (DSGVO compliance)"
	messageCleanupComplete  = "Cleanup completed: %d old record(s) deleted"
	retentionPolicyFormat   = "%d months"

	logEventSaveSubmission    = "save_submission"
	logEventDeleteSubmissions = "delete_submissions"
	logEventCountSubmissions  = "count_submissions"
	logEventCleanup           = "cleanup"
	logEventErasureCompleted  = "dsgvo_erasure"
	logFieldDeletedCount      = "deleted_count"

	routeParameterEmail = "email"
)

// SubmissionStore is the persistence contract the handlers compose with.
type SubmissionStore interface {
	Create(ctx context.Context, submission *model.Submission) error
	CountByEmail(ctx context.Context, email string) (int64, error)
	DeleteByEmail(ctx context.Context, email string) (int64, error)
}

// ContactHandlers serves the contact-form endpoints: public submission plus
// the admin-gated erasure and cleanup operations.
type ContactHandlers struct {
	store           SubmissionStore
	retentionPolicy *retention.Policy
	logger          *zap.Logger
}

// NewContactHandlers creates ContactHandlers with the injected store, retention policy and logger.
func NewContactHandlers(store SubmissionStore, retentionPolicy *retention.Policy, logger *zap.Logger) *ContactHandlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContactHandlers{
		store:           store,
		retentionPolicy: retentionPolicy,
		logger:          logger,
	}
}

// SubmitContact validates the payload, derives the anonymized client address
// and sanitized agent, and persists the submission. The response carries only
// the assigned identity and timestamp; derived privacy fields are never
// echoed back.
func (handlers *ContactHandlers) SubmitContact(ginContext *gin.Context) {
	var payload validation.ContactSubmissionRequest
	if bindErr := ginContext.ShouldBindJSON(&payload); bindErr != nil {
		ginContext.JSON(http.StatusBadRequest, gin.H{jsonKeySuccess: false, jsonKeyError: errorValueInvalidJSON})
		return
	}

	if violations := validation.ValidateContactSubmission(payload); len(violations) > 0 {
		ginContext.JSON(http.StatusBadRequest, gin.H{
			jsonKeySuccess: false,
			jsonKeyError:   errorValueValidationFailed,
			jsonKeyDetails: violations,
		})
		return
	}

	submission, buildErr := model.NewSubmission(model.SubmissionInput{
		Name:         payload.Name,
		Email:        payload.Email,
		Message:      payload.Message,
		ConsentGiven: payload.ConsentGranted(),
		AnonymizedIP: privacy.AnonymizeIP(ginContext.ClientIP()),
		UserAgent:    privacy.SanitizeUserAgent(ginContext.Request.UserAgent()),
	})
	if buildErr != nil {
		ginContext.JSON(http.StatusBadRequest, gin.H{jsonKeySuccess: false, jsonKeyError: errorValueValidationFailed})
		return
	}

	if createErr := handlers.store.Create(ginContext.Request.Context(), &submission); createErr != nil {
		handlers.logger.Warn(logEventSaveSubmission, zap.Error(createErr))
		ginContext.JSON(http.StatusInternalServerError, gin.H{jsonKeySuccess: false, jsonKeyError: errorValueSubmitFailed})
		return
	}

	ginContext.JSON(http.StatusCreated, gin.H{
		jsonKeySuccess: true,
		jsonKeyMessage: messageSubmitAccepted,
		jsonKeyData: gin.H{
			jsonKeyID:          submission.ID,
			jsonKeySubmittedAt: submission.SubmittedAt,
		},
	})
}

// DeleteByEmail removes every submission for the given email, implementing
// the right to be forgotten. A stale count between the existence check and
// the deletion is tolerated; the response reports the rows the delete
// actually removed.
func (handlers *ContactHandlers) DeleteByEmail(ginContext *gin.Context) {
	email := strings.TrimSpace(ginContext.Param(routeParameterEmail))
	if email == "" {
		ginContext.JSON(http.StatusBadRequest, gin.H{jsonKeySuccess: false, jsonKeyError: errorValueMissingEmail})
		return
	}

	existingCount, countErr := handlers.store.CountByEmail(ginContext.Request.Context(), email)
	if countErr != nil {
		handlers.logger.Warn(logEventCountSubmissions, zap.Error(countErr))
		ginContext.JSON(http.StatusInternalServerError, gin.H{jsonKeySuccess: false, jsonKeyError: errorValueDeleteFailed})
		return
	}

	if existingCount == 0 {
		ginContext.JSON(http.StatusNotFound, gin.H{
			jsonKeySuccess: false,
			jsonKeyMessage: messageNoSubmissions,
			jsonKeyEmail:   email,
		})
		return
	}

	deletedCount, deleteErr := handlers.store.DeleteByEmail(ginContext.Request.Context(), email)
	if deleteErr != nil {
		handlers.logger.Warn(logEventDeleteSubmissions, zap.Error(deleteErr))
		ginContext.JSON(http.StatusInternalServerError, gin.H{jsonKeySuccess: false, jsonKeyError: errorValueDeleteFailed})
		return
	}

	handlers.logger.Info(logEventErasureCompleted, zap.Int64(logFieldDeletedCount, deletedCount))

	ginContext.JSON(http.StatusOK, gin.H{
		jsonKeySuccess:      true,
		jsonKeyMessage:      messageDeletionComplete,
		jsonKeyEmail:        email,
		jsonKeyDeletedCount: deletedCount,
	})
}

// CleanupOldRecords triggers a retention sweep and reports the number of
// removed submissions together with the effective window.
func (handlers *ContactHandlers) CleanupOldRecords(ginContext *gin.Context) {
	deletedCount, sweepErr := handlers.retentionPolicy.Sweep(ginContext.Request.Context())
	if sweepErr != nil {
		handlers.logger.Warn(logEventCleanup, zap.Error(sweepErr))
		ginContext.JSON(http.StatusInternalServerError, gin.H{jsonKeySuccess: false, jsonKeyError: errorValueCleanupFailed})
		return
	}

	ginContext.JSON(http.StatusOK, gin.H{
		jsonKeySuccess:         true,
		jsonKeyMessage:         fmt.Sprintf(messageCleanupComplete, deletedCount),
		jsonKeyRetentionPolicy: fmt.Sprintf(retentionPolicyFormat, handlers.retentionPolicy.RetentionMonths()),
		jsonKeyDeletedCount:    deletedCount,
	})
}
