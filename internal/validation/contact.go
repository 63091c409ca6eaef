package validation

import (
	"net/mail"
	"strings"
)

const (
	FieldName    = "name"
	FieldEmail   = "email"
	FieldMessage = "message"
	FieldConsent = "consent_checkbox"

	messageNameRequired    = "Name is required"
	messageNameLength      = "Name must be between 2 and 255 characters"
	messageEmailRequired   = "Email is required"
	messageEmailInvalid    = "Valid email is required"
	messageEmailTooLong    = "Email is too long"
	messageMessageRequired = "Message is required"
	messageMessageLength   = "Message must be between 10 and 5000 characters"
	messageConsentRequired = "Consent is required"
	messageConsentBoolean  = "Consent must be a boolean value"
	messageConsentGranted  = "Consent must be explicitly granted for DSGVO compliance"

	nameMinLength    = 2
	nameMaxLength    = 255
	emailMaxLength   = 255
	messageMinLength = 10
	messageMaxLength = 5000
)

// FieldError describes a single violated constraint on a submission field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ContactSubmissionRequest carries the raw submit payload. The consent flag is
// deliberately untyped so a non-boolean value surfaces as a field violation
// rather than a bind failure.
type ContactSubmissionRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Message         string `json:"message"`
	ConsentCheckbox any    `json:"consent_checkbox"`
}

// ConsentGranted reports whether the consent flag is a boolean true.
func (request ContactSubmissionRequest) ConsentGranted() bool {
	granted, isBoolean := request.ConsentCheckbox.(bool)
	return isBoolean && granted
}

type contactRule struct {
	field     string
	message   string
	satisfied func(ContactSubmissionRequest) bool
}

// Rules are evaluated in order and every violation is reported; the chain
// never short-circuits on the first failing field.
var contactRules = []contactRule{
	{
		field:   FieldName,
		message: messageNameRequired,
		satisfied: func(request ContactSubmissionRequest) bool {
			return strings.TrimSpace(request.Name) != ""
		},
	},
	{
		field:   FieldName,
		message: messageNameLength,
		satisfied: func(request ContactSubmissionRequest) bool {
			length := len([]rune(strings.TrimSpace(request.Name)))
			return length >= nameMinLength && length <= nameMaxLength
		},
	},
	{
		field:   FieldEmail,
		message: messageEmailRequired,
		satisfied: func(request ContactSubmissionRequest) bool {
			return strings.TrimSpace(request.Email) != ""
		},
	},
	{
		field:   FieldEmail,
		message: messageEmailInvalid,
		satisfied: func(request ContactSubmissionRequest) bool {
			_, parseErr := mail.ParseAddress(strings.TrimSpace(request.Email))
			return parseErr == nil
		},
	},
	{
		field:   FieldEmail,
		message: messageEmailTooLong,
		satisfied: func(request ContactSubmissionRequest) bool {
			return len([]rune(strings.TrimSpace(request.Email))) <= emailMaxLength
		},
	},
	{
		field:   FieldMessage,
		message: messageMessageRequired,
		satisfied: func(request ContactSubmissionRequest) bool {
			return strings.TrimSpace(request.Message) != ""
		},
	},
	{
		field:   FieldMessage,
		message: messageMessageLength,
		satisfied: func(request ContactSubmissionRequest) bool {
			length := len([]rune(strings.TrimSpace(request.Message)))
			return length >= messageMinLength && length <= messageMaxLength
		},
	},
	{
		field:   FieldConsent,
		message: messageConsentRequired,
		satisfied: func(request ContactSubmissionRequest) bool {
			return request.ConsentCheckbox != nil
		},
	},
	{
		field:   FieldConsent,
		message: messageConsentBoolean,
		satisfied: func(request ContactSubmissionRequest) bool {
			if request.ConsentCheckbox == nil {
				return true
			}
			_, isBoolean := request.ConsentCheckbox.(bool)
			return isBoolean
		},
	},
	{
		field:   FieldConsent,
		message: messageConsentGranted,
		satisfied: func(request ContactSubmissionRequest) bool {
			if request.ConsentCheckbox == nil {
				return true
			}
			granted, isBoolean := request.ConsentCheckbox.(bool)
			return !isBoolean || granted
		},
	},
}

// ValidateContactSubmission evaluates every rule against the request and
// returns the full list of field violations, empty when the payload is valid.
func ValidateContactSubmission(request ContactSubmissionRequest) []FieldError {
	var violations []FieldError
	for _, rule := range contactRules {
		if !rule.satisfied(request) {
			violations = append(violations, FieldError{Field: rule.field, Message: rule.message})
		}
	}
	return violations
}
