package model

import (
	"errors"
	"fmt"
	"html"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	submissionNameMinLength    = 2
	submissionNameMaxLength    = 255
	submissionEmailMaxLength   = 255
	submissionMessageMinLength = 10
	submissionMessageMaxLength = 5000
	submissionIPMaxLength      = 64
	submissionAgentMaxLength   = 500
)

var (
	ErrInvalidSubmissionName    = errors.New("invalid_submission_name")
	ErrInvalidSubmissionEmail   = errors.New("invalid_submission_email")
	ErrInvalidSubmissionMessage = errors.New("invalid_submission_message")
	ErrConsentNotGiven          = errors.New("consent_not_given")
)

// Submission is a stored contact-form entry. Records are immutable after
// creation and are removed either by an erasure request for their email or by
// the retention sweep. The consent check constraint keeps a non-consenting row
// out of the table even if a caller bypasses validation.
type Submission struct {
	ID           string    `gorm:"primaryKey;size:36"`
	Name         string    `gorm:"not null;size:255"`
	Email        string    `gorm:"not null;size:255;index"`
	Message      string    `gorm:"not null;size:5000"`
	ConsentGiven bool      `gorm:"not null;check:consent_given"`
	AnonymizedIP string    `gorm:"size:64"`
	UserAgent    string    `gorm:"size:500"`
	SubmittedAt  time.Time `gorm:"autoCreateTime;index"`
}

// SubmissionInput holds the raw values used to construct a Submission. The
// address and agent are expected to already be anonymized.
type SubmissionInput struct {
	Name         string
	Email        string
	Message      string
	ConsentGiven bool
	AnonymizedIP string
	UserAgent    string
}

// NewSubmission constructs a Submission with validated, normalized fields.
// Name and message are HTML-escaped before storage. Consent must be granted;
// rejecting it here keeps a non-consenting record from ever reaching the
// store regardless of what the transport layer checked.
func NewSubmission(input SubmissionInput) (Submission, error) {
	if !input.ConsentGiven {
		return Submission{}, ErrConsentNotGiven
	}

	name := strings.TrimSpace(input.Name)
	nameLength := len([]rune(name))
	if nameLength < submissionNameMinLength || nameLength > submissionNameMaxLength {
		return Submission{}, fmt.Errorf("%w: length out of range", ErrInvalidSubmissionName)
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	if validationErr := validateSubmissionEmail(email); validationErr != nil {
		return Submission{}, validationErr
	}

	message := strings.TrimSpace(input.Message)
	messageLength := len([]rune(message))
	if messageLength < submissionMessageMinLength || messageLength > submissionMessageMaxLength {
		return Submission{}, fmt.Errorf("%w: length out of range", ErrInvalidSubmissionMessage)
	}

	return Submission{
		ID:           uuid.NewString(),
		Name:         html.EscapeString(name),
		Email:        email,
		Message:      html.EscapeString(message),
		ConsentGiven: true,
		AnonymizedIP: truncate(strings.TrimSpace(input.AnonymizedIP), submissionIPMaxLength),
		UserAgent:    truncate(input.UserAgent, submissionAgentMaxLength),
	}, nil
}

func validateSubmissionEmail(email string) error {
	if email == "" || len(email) > submissionEmailMaxLength {
		return fmt.Errorf("%w: empty or too long", ErrInvalidSubmissionEmail)
	}
	_, parseErr := mail.ParseAddress(email)
	if parseErr != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSubmissionEmail, parseErr)
	}
	return nil
}

func truncate(value string, maxLength int) string {
	runes := []rune(value)
	if len(runes) <= maxLength {
		return value
	}
	return string(runes[:maxLength])
}
