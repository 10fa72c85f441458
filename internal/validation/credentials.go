// Package validation はサインイン/サインアップフォームの入力検証を提供する。
//
// すべての関数は純粋関数で、ネットワークアクセスを行わない。
// 検証エラーはフィールド単位で返され、ログには記録しない。
package validation

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// Field は検証対象のフォームフィールド。
type Field string

const (
	FieldName     Field = "name"
	FieldEmail    Field = "email"
	FieldPassword Field = "password"
	FieldGeneral  Field = "general"
)

// Mode は認証フォームのモード。
type Mode string

const (
	ModeSignIn Mode = "signin"
	ModeSignUp Mode = "signup"
)

// ParseMode は文字列からModeを解析する。未知の値の場合はfalseを返す。
func ParseMode(s string) (Mode, bool) {
	switch Mode(s) {
	case ModeSignIn, ModeSignUp:
		return Mode(s), true
	default:
		return "", false
	}
}

// Error はフィールド単位の検証エラー。
type Error struct {
	Field   Field
	Message string
}

// Error はerrorインターフェースを実装する。
func (e *Error) Error() string {
	return string(e.Field) + ": " + e.Message
}

func fieldError(f Field, msg string) *Error {
	return &Error{Field: f, Message: msg}
}

// 名前の検証エラー
var (
	ErrNameRequired  = fieldError(FieldName, "Name is required")
	ErrNameTooShort  = fieldError(FieldName, "Name must be at least 2 characters")
	ErrNameTooLong   = fieldError(FieldName, "Name must be less than 50 characters")
	ErrNameInvalidCh = fieldError(FieldName, "Name can only contain letters and spaces")
)

// メールアドレスの検証エラー
var (
	ErrEmailRequired = fieldError(FieldEmail, "Email is required")
	ErrEmailInvalid  = fieldError(FieldEmail, "Please enter a valid email address")
	ErrEmailTooLong  = fieldError(FieldEmail, "Email address is too long")
)

// パスワードの検証エラー
var (
	ErrPasswordRequired    = fieldError(FieldPassword, "Password is required")
	ErrPasswordTooShort    = fieldError(FieldPassword, "Password must be at least 6 characters")
	ErrPasswordTooLong     = fieldError(FieldPassword, "Password must be less than 128 characters")
	ErrPasswordNoLowercase = fieldError(FieldPassword, "Password must contain at least one lowercase letter")
	ErrPasswordNoUppercase = fieldError(FieldPassword, "Password must contain at least one uppercase letter")
	ErrPasswordNoDigit     = fieldError(FieldPassword, "Password must contain at least one number")
)

const (
	nameMinLen     = 2
	nameMaxLen     = 50
	emailMaxLen    = 254
	passwordMinLen = 6
	passwordMaxLen = 128
)

var (
	namePattern  = regexp.MustCompile(`^[a-zA-Z\s]+$`)
	emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// ValidateName は氏名を検証する。
// 前後の空白を除いた値が2〜50文字で、英字と空白のみで構成されている必要がある。
func ValidateName(s string) error {
	name := strings.TrimSpace(s)
	if name == "" {
		return ErrNameRequired
	}
	n := utf8.RuneCountInString(name)
	if n < nameMinLen {
		return ErrNameTooShort
	}
	if n > nameMaxLen {
		return ErrNameTooLong
	}
	if !namePattern.MatchString(name) {
		return ErrNameInvalidCh
	}
	return nil
}

// ValidateEmail はメールアドレスを検証する。
func ValidateEmail(s string) error {
	email := strings.TrimSpace(s)
	if email == "" {
		return ErrEmailRequired
	}
	if !emailPattern.MatchString(email) {
		return ErrEmailInvalid
	}
	if len(email) > emailMaxLen {
		return ErrEmailTooLong
	}
	return nil
}

// ValidatePassword はパスワードを検証する。
// 文字種のチェックは 小文字 → 大文字 → 数字 の順に行い、最初に不足したものを返す。
func ValidatePassword(s string) error {
	if s == "" {
		return ErrPasswordRequired
	}
	n := utf8.RuneCountInString(s)
	if n < passwordMinLen {
		return ErrPasswordTooShort
	}
	if n > passwordMaxLen {
		return ErrPasswordTooLong
	}

	var hasLower, hasUpper, hasDigit bool
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
			hasLower = true
		case r >= 'A' && r <= 'Z':
			hasUpper = true
		case r >= '0' && r <= '9':
			hasDigit = true
		}
	}
	if !hasLower {
		return ErrPasswordNoLowercase
	}
	if !hasUpper {
		return ErrPasswordNoUppercase
	}
	if !hasDigit {
		return ErrPasswordNoDigit
	}
	return nil
}
