package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/interiorly/interiorly/internal/logger"
	"github.com/interiorly/interiorly/internal/middleware"
	"github.com/interiorly/interiorly/internal/model"
	"github.com/interiorly/interiorly/internal/navigation"
)

// StatusResolver はユーザーの登録状態を解決する。
type StatusResolver interface {
	// Resolve は登録状態が確定するまでブロックする。
	Resolve(ctx context.Context, userID string) model.RegistrationStatus
	// Snapshot はブロックせず、未解決の場合はLoading状態を返す。
	Snapshot(userID string) model.RegistrationStatus
}

// UserFinder は管理者フラグの参照に使うユーザー検索インターフェース。
type UserFinder interface {
	FindByID(ctx context.Context, id string) (*model.User, error)
}

// NavigationHandler はメニュー・登録状態・アクション実行のHTTPハンドラー。
type NavigationHandler struct {
	resolver   StatusResolver
	users      UserFinder
	dispatcher navigation.Dispatcher
	auth       *AuthHandler
	cookies    CookieConfig
}

// NewNavigationHandler はNavigationHandlerを生成する。
// sign_outアクションはauthHandlerに委譲する。
func NewNavigationHandler(resolver StatusResolver, users UserFinder, authHandler *AuthHandler, cookies CookieConfig) *NavigationHandler {
	return &NavigationHandler{
		resolver: resolver,
		users:    users,
		auth:     authHandler,
		cookies:  cookies,
	}
}

type menuResponse struct {
	SignedIn bool                     `json:"signed_in"`
	IsAdmin  bool                     `json:"is_admin"`
	Status   model.RegistrationStatus `json:"status"`
	Items    []navigation.Item        `json:"items"`
}

// authRequiredResponse はサインインが必要なアクションを未ログインで実行した場合のレスポンス。
type authRequiredResponse struct {
	middleware.ErrorResponseBody
	AuthModal string                   `json:"auth_modal"`
	Pending   navigation.PendingAction `json:"pending_action,omitempty"`
}

// Menu は呼び出し元の状態に応じたメニューを返す。
// ?async=1 の場合は登録状態の解決を待たず、未解決ならloadingのみを返す。
// GET /api/navigation
func (h *NavigationHandler) Menu(w http.ResponseWriter, r *http.Request) {
	s := h.state(r, isAsync(r))
	writeJSON(w, http.StatusOK, menuResponse{
		SignedIn: s.SignedIn,
		IsAdmin:  s.IsAdmin,
		Status:   s.Status,
		Items:    navigation.Items(s),
	})
}

// RegistrationStatus はログインユーザーの登録状態を返す。
// GET /api/registration-status
func (h *NavigationHandler) RegistrationStatus(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthorizedError())
		return
	}

	var status model.RegistrationStatus
	if isAsync(r) {
		status = h.resolver.Snapshot(userID)
	} else {
		status = h.resolver.Resolve(r.Context(), userID)
	}
	writeJSON(w, http.StatusOK, status)
}

// InvokeAction はメニューアクションを実行し、遷移先を返す。
// サインインが必要なアクションを未ログインで実行した場合は401と認証モーダルの指示を返し、
// 再開対象のアクションであれば保留Cookieに保存する。
// POST /api/actions/{action}?target={designerID}
func (h *NavigationHandler) InvokeAction(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "action")
	action, ok := navigation.Parse(name)
	if !ok {
		middleware.WriteErrorResponse(w, http.StatusNotFound, model.NewUnknownActionError(name))
		return
	}

	s := h.state(r, false)
	outcome, err := h.dispatcher.Invoke(action, r.URL.Query().Get("target"), s)
	if err != nil {
		handleServiceError(w, r, actionError(action, err))
		return
	}

	switch outcome.Kind {
	case navigation.OutcomeOpenAuthModal:
		if !action.RequiresSession() {
			writeJSON(w, http.StatusOK, outcome)
			return
		}
		if outcome.Pending != navigation.PendingNone {
			setPendingCookie(w, h.cookies, outcome.Pending)
		} else {
			h.auth.clearPendingCookie(w)
		}
		apiErr := model.NewAuthRequiredError()
		writeJSON(w, http.StatusUnauthorized, authRequiredResponse{
			ErrorResponseBody: middleware.ErrorResponseBody{
				Code:     apiErr.Code,
				Message:  apiErr.Message,
				Category: apiErr.Category,
				Action:   apiErr.Action,
			},
			AuthModal: string(outcome.AuthMode),
			Pending:   outcome.Pending,
		})
	case navigation.OutcomeSignOut:
		h.auth.signOut(w, r)
		writeJSON(w, http.StatusOK, outcome)
	default:
		writeJSON(w, http.StatusOK, outcome)
	}
}

// state はリクエストからナビゲーションの入力状態を組み立てる。
func (h *NavigationHandler) state(r *http.Request, async bool) navigation.State {
	ctx := r.Context()
	userID, err := middleware.UserIDFromContext(ctx)
	if err != nil {
		return navigation.State{Status: model.UnregisteredStatus()}
	}

	s := navigation.State{SignedIn: true}

	user, err := h.users.FindByID(ctx, userID)
	if err != nil {
		logger.FromContext(ctx).Warn("failed to load user for navigation",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	} else if user != nil {
		s.IsAdmin = user.IsAdmin
	}

	if async {
		s.Status = h.resolver.Snapshot(userID)
	} else {
		s.Status = h.resolver.Resolve(ctx, userID)
	}
	return s
}

// actionError はナビゲーションのエラーをAPIErrorに変換する。
func actionError(a navigation.Action, err error) error {
	switch {
	case errors.Is(err, navigation.ErrUnknownAction):
		return model.NewUnknownActionError(string(a))
	case errors.Is(err, navigation.ErrUnavailable):
		return model.NewActionUnavailableError(string(a))
	case errors.Is(err, navigation.ErrTargetRequired):
		return model.NewTargetRequiredError()
	default:
		return err
	}
}

func isAsync(r *http.Request) bool {
	v := r.URL.Query().Get("async")
	return v == "1" || v == "true"
}
