package auth

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/interiorly/interiorly/internal/model"
	"github.com/interiorly/interiorly/internal/validation"
)

// Code は認証バックエンドの失敗を分類した閉じたエラーカテゴリ。
type Code string

const (
	CodeDuplicateEmail     Code = "DUPLICATE_EMAIL"
	CodeInvalidEmail       Code = "INVALID_EMAIL"
	CodeWeakPassword       Code = "WEAK_PASSWORD"
	CodeInvalidCredentials Code = "INVALID_CREDENTIALS"
	CodeEmailUnconfirmed   Code = "EMAIL_UNCONFIRMED"
	CodeRateLimited        Code = "RATE_LIMITED"
	CodeUnknown            Code = "UNKNOWN"
)

// Error は認証バックエンドから返された失敗を表す。
// Detail はバックエンドの生メッセージで、ログにのみ使用する。
type Error struct {
	Code   Code
	Status int
	Detail string
}

// Error はerrorインターフェースを実装する。
func (e *Error) Error() string {
	return fmt.Sprintf("auth backend error %s (status %d): %s", e.Code, e.Status, e.Detail)
}

// Field はエラーを表示するフォームフィールドを返す。
func (e *Error) Field() validation.Field {
	return codeTexts[e.Code].field
}

// UserMessage はユーザー向けの表示メッセージを返す。
func (e *Error) UserMessage() string {
	return codeTexts[e.Code].message
}

// APIError は統一エラーフォーマットに変換する。
func (e *Error) APIError() *model.APIError {
	t := codeTexts[e.Code]
	return &model.APIError{
		Code:     string(e.Code),
		Message:  t.message,
		Category: "auth",
		Action:   t.action,
		Field:    string(t.field),
	}
}

// HTTPStatus はクライアントに返すHTTPステータスを返す。
func (e *Error) HTTPStatus() int {
	switch e.Code {
	case CodeDuplicateEmail:
		return http.StatusConflict
	case CodeInvalidEmail, CodeWeakPassword:
		return http.StatusUnprocessableEntity
	case CodeInvalidCredentials:
		return http.StatusUnauthorized
	case CodeEmailUnconfirmed:
		return http.StatusForbidden
	case CodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusBadGateway
	}
}

type codeText struct {
	field   validation.Field
	message string
	action  string
}

var codeTexts = map[Code]codeText{
	CodeDuplicateEmail: {
		field:   validation.FieldEmail,
		message: "An account with this email already exists. Please sign in instead.",
		action:  "Switch to sign in.",
	},
	CodeInvalidEmail: {
		field:   validation.FieldEmail,
		message: "Please enter a valid email address",
		action:  "Check the email address.",
	},
	CodeWeakPassword: {
		field:   validation.FieldPassword,
		message: "Password is too weak. Please choose a stronger password.",
		action:  "Use a longer password with mixed characters.",
	},
	CodeInvalidCredentials: {
		field:   validation.FieldGeneral,
		message: "Invalid email or password. Please try again.",
		action:  "Check your email and password.",
	},
	CodeEmailUnconfirmed: {
		field:   validation.FieldGeneral,
		message: "Please check your email and confirm your account before signing in.",
		action:  "Open the confirmation link we sent you.",
	},
	CodeRateLimited: {
		field:   validation.FieldGeneral,
		message: "Too many attempts. Please wait a moment and try again.",
		action:  "Wait a moment and try again.",
	},
	CodeUnknown: {
		field:   validation.FieldGeneral,
		message: "An unexpected error occurred. Please try again.",
		action:  "Wait a moment and try again.",
	},
}

// structuredCodes はバックエンドの error_code からカテゴリへの対応。
// 構造化コードが返された場合はメッセージの部分一致より優先する。
var structuredCodes = map[string]Code{
	"user_already_exists":          CodeDuplicateEmail,
	"email_exists":                 CodeDuplicateEmail,
	"email_address_invalid":        CodeInvalidEmail,
	"email_address_not_authorized": CodeInvalidEmail,
	"weak_password":                CodeWeakPassword,
	"invalid_credentials":          CodeInvalidCredentials,
	"email_not_confirmed":          CodeEmailUnconfirmed,
	"over_request_rate_limit":      CodeRateLimited,
	"over_email_send_rate_limit":   CodeRateLimited,
}

// messageRules は構造化コードがない場合のフォールバック。
// 上から順に評価し、最初に部分一致したものを採用する。
var messageRules = []struct {
	substr string
	code   Code
}{
	{"already registered", CodeDuplicateEmail},
	{"already exists", CodeDuplicateEmail},
	{"unable to validate email", CodeInvalidEmail},
	{"invalid email", CodeInvalidEmail},
	{"password should be", CodeWeakPassword},
	{"weak password", CodeWeakPassword},
	{"invalid login credentials", CodeInvalidCredentials},
	{"invalid credentials", CodeInvalidCredentials},
	{"email not confirmed", CodeEmailUnconfirmed},
	{"too many requests", CodeRateLimited},
	{"rate limit", CodeRateLimited},
}

// Classify はバックエンドのレスポンスからエラーカテゴリを決定する。
// 判定順: 構造化コード → HTTP 429 → メッセージの部分一致 → UNKNOWN
func Classify(status int, errorCode, message string) Code {
	if c, ok := structuredCodes[strings.ToLower(strings.TrimSpace(errorCode))]; ok {
		return c
	}
	if status == http.StatusTooManyRequests {
		return CodeRateLimited
	}

	msg := strings.ToLower(message)
	for _, rule := range messageRules {
		if strings.Contains(msg, rule.substr) {
			return rule.code
		}
	}
	return CodeUnknown
}

// NewError はバックエンドのレスポンスから*Errorを生成する。
func NewError(status int, errorCode, message string) *Error {
	return &Error{
		Code:   Classify(status, errorCode, message),
		Status: status,
		Detail: message,
	}
}
