package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/interiorly/interiorly/internal/auth"
	"github.com/interiorly/interiorly/internal/logger"
	"github.com/interiorly/interiorly/internal/middleware"
	"github.com/interiorly/interiorly/internal/model"
	"github.com/interiorly/interiorly/internal/navigation"
)

// pendingCookieName はサインイン後に再開するアクションを保持するCookieの名前。
const pendingCookieName = "pending_action"

// pendingCookieMaxAge は保留アクションの有効期間（秒）。
const pendingCookieMaxAge = 600

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	SignUp(ctx context.Context, name, email, password string) (*auth.SignUpResult, error)
	SignIn(ctx context.Context, email, password, previousSessionID string) (*auth.SignInResult, error)
	SignOut(ctx context.Context, sessionID string) error
	GetCurrentUser(ctx context.Context, sessionID string) (*model.User, error)
}

// PendingResumer は保留アクションをサインイン後の遷移先に変換する。
type PendingResumer interface {
	Resume(p navigation.PendingAction) (navigation.Outcome, bool)
}

// AuthHandler はサインアップ・サインイン・サインアウトのHTTPハンドラー。
type AuthHandler struct {
	service AuthServiceInterface
	resumer PendingResumer
	cookies CookieConfig
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface, resumer PendingResumer, cookies CookieConfig) *AuthHandler {
	return &AuthHandler{
		service: service,
		resumer: resumer,
		cookies: cookies,
	}
}

type signUpRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signUpResponse struct {
	User                 userResponse `json:"user"`
	NextMode             string       `json:"next_mode"`
	PrefillEmail         string       `json:"prefill_email"`
	TransitionDelayMs    int64        `json:"transition_delay_ms"`
	ConfirmationRequired bool         `json:"confirmation_required"`
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signInResponse struct {
	User         userResponse        `json:"user"`
	CloseDelayMs int64               `json:"close_delay_ms"`
	Resume       *navigation.Outcome `json:"resume"`
}

// SignUp はアカウントを作成する。セッションは発行しない。
// POST /auth/signup
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.service.SignUp(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, signUpResponse{
		User:                 toUserResponse(result.User),
		NextMode:             string(result.NextMode),
		PrefillEmail:         result.PrefillEmail,
		TransitionDelayMs:    millis(result.TransitionDelay),
		ConfirmationRequired: result.ConfirmationRequired,
	})
}

// SignIn は認証してセッションCookieを発行する。
// 保留アクションがあればその遷移先をresumeとして返し、保留を解除する。
// POST /auth/signin
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	var previous string
	if c, err := r.Cookie(middleware.SessionCookieName); err == nil {
		previous = c.Value
	}

	result, err := h.service.SignIn(r.Context(), req.Email, req.Password, previous)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	h.setSessionCookie(w, result.Session.ID, h.cookies.SessionMaxAge)

	resp := signInResponse{
		User:         toUserResponse(result.User),
		CloseDelayMs: millis(result.CloseDelay),
	}

	if c, err := r.Cookie(pendingCookieName); err == nil {
		if outcome, ok := h.resumer.Resume(navigation.ParsePending(c.Value)); ok {
			resp.Resume = &outcome
			logger.FromContext(r.Context()).Info("resuming pending action",
				slog.String("user_id", result.User.ID),
				slog.String("pending_action", c.Value),
			)
		}
		h.clearPendingCookie(w)
	}

	writeJSON(w, http.StatusOK, resp)
}

// SignOut はセッションを破棄しCookieをクリアする。
// サービスでの破棄に失敗してもCookieはクリアする。
// POST /auth/signout
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	h.signOut(w, r)
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) signOut(w http.ResponseWriter, r *http.Request) {
	if c, err := r.Cookie(middleware.SessionCookieName); err == nil && c.Value != "" {
		if err := h.service.SignOut(r.Context(), c.Value); err != nil {
			logger.FromContext(r.Context()).Error("failed to sign out", slog.String("error", err.Error()))
		}
	}
	h.setSessionCookie(w, "", -1)
	h.clearPendingCookie(w)
}

// Me は現在のログインユーザー情報を返す。
// GET /auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	c, err := r.Cookie(middleware.SessionCookieName)
	if err != nil || c.Value == "" {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	user, err := h.service.GetCurrentUser(r.Context(), c.Value)
	if err != nil {
		logger.FromContext(r.Context()).Warn("failed to get current user", slog.String("error", err.Error()))
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(user))
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    value,
		Path:     "/",
		Domain:   h.cookies.Domain,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.cookies.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// setPendingCookie はサインイン後に再開するアクションを保存する。
func setPendingCookie(w http.ResponseWriter, cookies CookieConfig, p navigation.PendingAction) {
	http.SetCookie(w, &http.Cookie{
		Name:     pendingCookieName,
		Value:    string(p),
		Path:     "/",
		Domain:   cookies.Domain,
		MaxAge:   pendingCookieMaxAge,
		HttpOnly: true,
		Secure:   cookies.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) clearPendingCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     pendingCookieName,
		Value:    "",
		Path:     "/",
		Domain:   h.cookies.Domain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookies.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
