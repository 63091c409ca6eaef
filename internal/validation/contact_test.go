package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	testValidName    = "Erika Mustermann"
	testValidEmail   = "erika@example.com"
	testValidMessage = "I would like to know more about your services."
)

func validRequest() ContactSubmissionRequest {
	return ContactSubmissionRequest{
		Name:            testValidName,
		Email:           testValidEmail,
		Message:         testValidMessage,
		ConsentCheckbox: true,
	}
}

func fieldsOf(violations []FieldError) []string {
	fields := make([]string, 0, len(violations))
	for _, violation := range violations {
		fields = append(fields, violation.Field)
	}
	return fields
}

func messagesOf(violations []FieldError) []string {
	messages := make([]string, 0, len(violations))
	for _, violation := range violations {
		messages = append(messages, violation.Message)
	}
	return messages
}

func TestValidateContactSubmissionAcceptsValidPayload(t *testing.T) {
	require.Empty(t, ValidateContactSubmission(validRequest()))
}

func TestValidateContactSubmissionCollectsAllViolations(t *testing.T) {
	violations := ValidateContactSubmission(ContactSubmissionRequest{
		Name:            " ",
		Email:           "not-an-email",
		Message:         "short",
		ConsentCheckbox: false,
	})

	fields := fieldsOf(violations)
	require.Contains(t, fields, FieldName)
	require.Contains(t, fields, FieldEmail)
	require.Contains(t, fields, FieldMessage)
	require.Contains(t, fields, FieldConsent)
	require.GreaterOrEqual(t, len(violations), 4)
}

func TestValidateContactSubmissionRejectsNameOutOfBounds(t *testing.T) {
	request := validRequest()
	request.Name = "A"
	require.Equal(t, []string{messageNameLength}, messagesOf(ValidateContactSubmission(request)))

	request.Name = strings.Repeat("n", nameMaxLength+1)
	require.Equal(t, []string{messageNameLength}, messagesOf(ValidateContactSubmission(request)))
}

func TestValidateContactSubmissionRejectsBadEmail(t *testing.T) {
	request := validRequest()
	request.Email = "missing-at-sign"
	require.Equal(t, []string{messageEmailInvalid}, messagesOf(ValidateContactSubmission(request)))

	request.Email = strings.Repeat("a", emailMaxLength) + "@example.com"
	violations := ValidateContactSubmission(request)
	require.Contains(t, messagesOf(violations), messageEmailTooLong)
}

func TestValidateContactSubmissionRejectsMessageOutOfBounds(t *testing.T) {
	request := validRequest()
	request.Message = "too short"
	require.Equal(t, []string{messageMessageLength}, messagesOf(ValidateContactSubmission(request)))

	request.Message = strings.Repeat("m", messageMaxLength+1)
	require.Equal(t, []string{messageMessageLength}, messagesOf(ValidateContactSubmission(request)))
}

func TestValidateContactSubmissionConsentRules(t *testing.T) {
	request := validRequest()
	request.ConsentCheckbox = false
	require.Equal(t, []string{messageConsentGranted}, messagesOf(ValidateContactSubmission(request)))

	request.ConsentCheckbox = nil
	require.Equal(t, []string{messageConsentRequired}, messagesOf(ValidateContactSubmission(request)))

	request.ConsentCheckbox = "yes"
	require.Equal(t, []string{messageConsentBoolean}, messagesOf(ValidateContactSubmission(request)))
}

func TestConsentGranted(t *testing.T) {
	require.True(t, validRequest().ConsentGranted())

	request := validRequest()
	request.ConsentCheckbox = "true"
	require.False(t, request.ConsentGranted())

	request.ConsentCheckbox = nil
	require.False(t, request.ConsentGranted())
}
