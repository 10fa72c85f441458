package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/interiorly/interiorly/internal/middleware"
	"github.com/interiorly/interiorly/internal/navigation"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger            *slog.Logger
	StatusRecorder    middleware.StatusRecorder
	SessionReader     middleware.SessionReader
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	Cookies           CookieConfig

	// 運用
	HealthChecker  HealthChecker
	MetricsHandler http.Handler

	// 認証
	AuthService AuthServiceInterface

	// ナビゲーション
	Resolver StatusResolver
	Users    UserFinder

	// キャンペーン
	DealService DealServiceInterface
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → RealIP → RequestID → Logging → SecurityHeaders → CORS → CSRF
//
// /auth/signin と /auth/signup にはIP単位の認証試行レート制限、
// /api/* にはユーザー（未ログイン時はIP）単位のレート制限を適用する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(chimw.RealIP)
	r.Use(middleware.NewRequestIDMiddleware(deps.Logger))
	r.Use(middleware.NewLoggingMiddleware(deps.StatusRecorder))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

	csrf := middleware.CSRFConfig{CookieSecure: deps.Cookies.Secure, CookieDomain: deps.Cookies.Domain}

	authHandler := NewAuthHandler(deps.AuthService, navigation.Dispatcher{}, deps.Cookies)
	navHandler := NewNavigationHandler(deps.Resolver, deps.Users, authHandler, deps.Cookies)
	dealHandler := NewDealHandler(deps.DealService)

	// --- 運用エンドポイント ---
	r.Get("/health", NewHealthHandler(deps.HealthChecker))
	if deps.MetricsHandler != nil {
		r.Handle("/metrics", deps.MetricsHandler)
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.NewCSRFMiddleware(csrf))

		r.Get("/api/csrf-token", middleware.NewCSRFTokenHandler(csrf).ServeHTTP)

		// 認証ルート
		r.Route("/auth", func(r chi.Router) {
			r.With(deps.RateLimiter.AuthMiddleware()).Post("/signup", authHandler.SignUp)
			r.With(deps.RateLimiter.AuthMiddleware()).Post("/signin", authHandler.SignIn)
			r.Post("/signout", authHandler.SignOut)
			r.Get("/me", authHandler.Me)
		})

		// 未ログインでも応答するルート
		r.Group(func(r chi.Router) {
			r.Use(middleware.NewOptionalSessionMiddleware(deps.SessionReader))
			r.Use(deps.RateLimiter.GeneralMiddleware())

			r.Get("/api/navigation", navHandler.Menu)
			r.Post("/api/actions/{action}", navHandler.InvokeAction)
			r.Get("/api/deals", dealHandler.ListDeals)
		})

		// 認証が必要なルート
		r.Group(func(r chi.Router) {
			r.Use(middleware.NewSessionMiddleware(deps.SessionReader))
			r.Use(deps.RateLimiter.GeneralMiddleware())

			r.Get("/api/registration-status", navHandler.RegistrationStatus)
		})
	})

	return r
}
