package auth

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/interiorly/interiorly/internal/validation"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		errorCode string
		message   string
		want      Code
	}{
		{"duplicate by message", 400, "", "User already registered", CodeDuplicateEmail},
		{"duplicate by code", 422, "user_already_exists", "", CodeDuplicateEmail},
		{"invalid credentials by message", 400, "", "Invalid login credentials", CodeInvalidCredentials},
		{"unconfirmed by message", 400, "", "Email not confirmed", CodeEmailUnconfirmed},
		{"rate limited by status", 429, "", "slow down", CodeRateLimited},
		{"rate limited by message", 400, "", "Too many requests", CodeRateLimited},
		{"weak password by message", 422, "", "Password should be at least 6 characters", CodeWeakPassword},
		{"invalid email by message", 400, "", "Unable to validate email address: invalid format", CodeInvalidEmail},
		{"structured code wins over message", 400, "email_not_confirmed", "Invalid login credentials", CodeEmailUnconfirmed},
		{"structured code wins over status", 429, "weak_password", "", CodeWeakPassword},
		{"structured code is case insensitive", 400, " Invalid_Credentials ", "", CodeInvalidCredentials},
		{"unknown structured code falls back to message", 400, "something_new", "User already registered", CodeDuplicateEmail},
		{"unrecognized message", 500, "", "database exploded", CodeUnknown},
		{"empty response", 502, "", "", CodeUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.status, tt.errorCode, tt.message))
		})
	}
}

func TestError_UserFacingFields(t *testing.T) {
	tests := []struct {
		code   Code
		field  validation.Field
		status int
	}{
		{CodeDuplicateEmail, validation.FieldEmail, http.StatusConflict},
		{CodeInvalidEmail, validation.FieldEmail, http.StatusUnprocessableEntity},
		{CodeWeakPassword, validation.FieldPassword, http.StatusUnprocessableEntity},
		{CodeInvalidCredentials, validation.FieldGeneral, http.StatusUnauthorized},
		{CodeEmailUnconfirmed, validation.FieldGeneral, http.StatusForbidden},
		{CodeRateLimited, validation.FieldGeneral, http.StatusTooManyRequests},
		{CodeUnknown, validation.FieldGeneral, http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			e := &Error{Code: tt.code, Status: 400, Detail: "raw backend text"}
			assert.Equal(t, tt.field, e.Field())
			assert.Equal(t, tt.status, e.HTTPStatus())
			assert.NotEmpty(t, e.UserMessage())
			assert.NotContains(t, e.UserMessage(), "raw backend text")

			apiErr := e.APIError()
			assert.Equal(t, string(tt.code), apiErr.Code)
			assert.Equal(t, "auth", apiErr.Category)
			assert.Equal(t, string(tt.field), apiErr.Field)
		})
	}
}

func TestError_Messages(t *testing.T) {
	assert.Equal(t,
		"An account with this email already exists. Please sign in instead.",
		(&Error{Code: CodeDuplicateEmail}).UserMessage())
	assert.Equal(t,
		"Invalid email or password. Please try again.",
		(&Error{Code: CodeInvalidCredentials}).UserMessage())
	assert.Equal(t,
		"Please check your email and confirm your account before signing in.",
		(&Error{Code: CodeEmailUnconfirmed}).UserMessage())
}

func TestNewError_KeepsDetailForLogs(t *testing.T) {
	e := NewError(400, "", "User already registered")

	assert.Equal(t, CodeDuplicateEmail, e.Code)
	assert.Equal(t, 400, e.Status)
	assert.Equal(t, "User already registered", e.Detail)
	assert.Contains(t, e.Error(), "DUPLICATE_EMAIL")
}
