// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/interiorly/interiorly/internal/auth"
	"github.com/interiorly/interiorly/internal/logger"
	"github.com/interiorly/interiorly/internal/middleware"
	"github.com/interiorly/interiorly/internal/model"
	"github.com/interiorly/interiorly/internal/validation"
)

// maxBodyBytes はJSONリクエストボディの上限。
const maxBodyBytes = 1 << 16

// CookieConfig はハンドラーが発行するCookieの共通設定。
type CookieConfig struct {
	Domain        string
	Secure        bool
	SessionMaxAge int // セッションCookieの有効期間（秒）
}

// userResponse はユーザー情報のレスポンス。
type userResponse struct {
	ID      string `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	IsAdmin bool   `json:"is_admin"`
}

func toUserResponse(u *model.User) userResponse {
	return userResponse{
		ID:      u.ID,
		Email:   u.Email,
		Name:    u.Name,
		IsAdmin: u.IsAdmin,
	}
}

// writeJSON はJSONレスポンスを書き込む。
func writeJSON(w http.ResponseWriter, statusCode int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(body)
}

// decodeJSON はリクエストボディをデコードする。
// 失敗した場合は400を書き込みfalseを返す。
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewInvalidRequestError())
		return false
	}
	return true
}

// millis は遅延をクライアント向けのミリ秒に変換する。
func millis(d time.Duration) int64 {
	return d.Milliseconds()
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPレスポンスに変換する。
//
//	*validation.FormError → 422 とフィールドごとのメッセージ
//	*auth.Error           → カテゴリに応じた4xx/502
//	*model.APIError       → コードに応じたステータス
//	その他                → 500
func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var formErr *validation.FormError
	if errors.As(err, &formErr) {
		fields := make(map[string]string, len(formErr.Errors))
		for f, msg := range formErr.Errors {
			fields[string(f)] = msg
		}
		middleware.WriteFieldErrors(w, fields)
		return
	}

	var authErr *auth.Error
	if errors.As(err, &authErr) {
		middleware.WriteErrorResponse(w, authErr.HTTPStatus(), authErr.APIError())
		return
	}

	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		middleware.WriteErrorResponse(w, mapAPIErrorToHTTPStatus(apiErr), apiErr)
		return
	}

	logger.FromContext(r.Context()).Error("internal server error", slog.String("error", err.Error()))
	middleware.WriteInternalServerError(w)
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeUnauthorized, model.ErrCodeUserNotFound, model.ErrCodeAuthRequired:
		return http.StatusUnauthorized
	case model.ErrCodeInvalidRequest, model.ErrCodeTargetRequired:
		return http.StatusBadRequest
	case model.ErrCodeUnavailable:
		return http.StatusConflict
	case model.ErrCodeValidationFailed:
		return http.StatusUnprocessableEntity
	case model.ErrCodeUnknownAction:
		return http.StatusNotFound
	case model.ErrCodeRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
