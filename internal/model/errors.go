// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, navigation, system
	Action   string // ユーザー向け対処方法
	Field    string // フィールド単位のエラーの場合の対象フィールド（email, password 等）
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeUnauthorized     = "UNAUTHORIZED"
	ErrCodeInvalidRequest   = "INVALID_REQUEST"
	ErrCodeValidationFailed = "VALIDATION_FAILED"
	ErrCodeUserNotFound     = "USER_NOT_FOUND"
	ErrCodeUnknownAction    = "UNKNOWN_ACTION"
	ErrCodeAuthRequired     = "AUTH_REQUIRED"
	ErrCodeRateLimited      = "RATE_LIMITED"
	ErrCodeCSRF             = "CSRF_FAILED"
	ErrCodeUnavailable      = "ACTION_UNAVAILABLE"
	ErrCodeTargetRequired   = "TARGET_REQUIRED"
	ErrCodeInternal         = "INTERNAL_ERROR"
)

// NewUnauthorizedError は未認証エラーを生成する。
func NewUnauthorizedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthorized,
		Message:  "Authentication is required.",
		Category: "auth",
		Action:   "Please sign in.",
	}
}

// NewInvalidRequestError はリクエストボディの解析失敗エラーを生成する。
func NewInvalidRequestError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRequest,
		Message:  "The request body could not be parsed.",
		Category: "validation",
		Action:   "Send a valid JSON body.",
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "User not found.",
		Category: "auth",
		Action:   "Please sign in again.",
	}
}

// NewUnknownActionError は未定義のメニューアクションが指定された場合のエラーを生成する。
func NewUnknownActionError(action string) *APIError {
	return &APIError{
		Code:     ErrCodeUnknownAction,
		Message:  fmt.Sprintf("Unknown action: %s", action),
		Category: "navigation",
		Action:   "Choose an action from the navigation menu.",
	}
}

// NewAuthRequiredError はログインが必要なアクションを未ログインで実行した場合のエラーを生成する。
func NewAuthRequiredError() *APIError {
	return &APIError{
		Code:     ErrCodeAuthRequired,
		Message:  "Please sign in to continue.",
		Category: "auth",
		Action:   "Sign in and the action will continue where applicable.",
	}
}

// NewInternalError は内部エラーを生成する。
// 詳細はログのみに記録し、ユーザーには再試行を促す一般的なメッセージを返す。
func NewInternalError() *APIError {
	return &APIError{
		Code:     ErrCodeInternal,
		Message:  "An unexpected error occurred. Please try again.",
		Category: "system",
		Action:   "Wait a moment and try again.",
	}
}

// NewRateLimitedError はレート制限を超えた場合のエラーを生成する。
func NewRateLimitedError() *APIError {
	return &APIError{
		Code:     ErrCodeRateLimited,
		Message:  "Too many attempts. Please wait a moment and try again.",
		Category: "system",
		Action:   "Please wait and retry after the specified time.",
	}
}

// NewValidationError はフォーム検証エラーを生成する。フィールドごとの詳細は別途返す。
func NewValidationError() *APIError {
	return &APIError{
		Code:     ErrCodeValidationFailed,
		Message:  "Please correct the highlighted fields.",
		Category: "validation",
		Action:   "Fix the fields and submit again.",
	}
}

// NewCSRFError はCSRFトークンの検証に失敗した場合のエラーを生成する。
func NewCSRFError() *APIError {
	return &APIError{
		Code:     ErrCodeCSRF,
		Message:  "The request could not be verified.",
		Category: "auth",
		Action:   "Reload the page and try again.",
	}
}

// NewActionUnavailableError は現在の状態では実行できないアクションが指定された場合のエラーを生成する。
func NewActionUnavailableError(action string) *APIError {
	return &APIError{
		Code:     ErrCodeUnavailable,
		Message:  fmt.Sprintf("Action is not available right now: %s", action),
		Category: "navigation",
		Action:   "Reload the menu and choose an available action.",
	}
}

// NewTargetRequiredError は対象のデザイナーが指定されていない場合のエラーを生成する。
func NewTargetRequiredError() *APIError {
	return &APIError{
		Code:     ErrCodeTargetRequired,
		Message:  "A designer must be specified for this action.",
		Category: "navigation",
		Action:   "Choose a designer and try again.",
	}
}
