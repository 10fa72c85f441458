// Package app はコマンドの解析と依存関係のワイヤリングを行う。
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/interiorly/interiorly/internal/auth"
	"github.com/interiorly/interiorly/internal/config"
	"github.com/interiorly/interiorly/internal/database"
	"github.com/interiorly/interiorly/internal/deals"
	"github.com/interiorly/interiorly/internal/handler"
	"github.com/interiorly/interiorly/internal/logger"
	"github.com/interiorly/interiorly/internal/metrics"
	"github.com/interiorly/interiorly/internal/middleware"
	"github.com/interiorly/interiorly/internal/registration"
	"github.com/interiorly/interiorly/internal/repository"
	"github.com/interiorly/interiorly/internal/security"
	"github.com/interiorly/interiorly/internal/worker/cleanup"
)

const shutdownTimeout = 30 * time.Second

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、LOG_LEVELに従ったJSON構造化ログをセットアップする。
// 設定の読み込みに失敗した場合もエラーを記録できるよう、infoレベルのロガーは必ず設定する。
func Init(w io.Writer) (*config.Config, *slog.Logger, error) {
	log := logger.SetupDefault(w, "info")

	cfg, err := config.Load()
	if err != nil {
		log.Error("invalid configuration", slog.String("error", err.Error()))
		return nil, nil, err
	}

	return cfg, logger.SetupDefault(w, cfg.LogLevel), nil
}

// Run はアプリケーションのメインエントリーポイント。
// argsにはos.Args[1:]を渡す。SIGINTまたはSIGTERMを受信するとコンテキストがキャンセルされる。
func Run(w io.Writer, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	root := NewRootCommand(w)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

// runCommand は設定を読み込み、指定モードで起動する。
func runCommand(cmd *cobra.Command, w io.Writer, command Command) error {
	cfg, log, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	log.Info("starting application",
		slog.String("command", string(command)),
		slog.String("port", cfg.ServerPort),
		slog.String("base_url", cfg.BaseURL),
	)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	switch command {
	case CommandWorker:
		return runWorker(ctx, cfg, log)
	case CommandMigrate:
		return runMigrate(cfg, log)
	default:
		return runServe(ctx, cfg, log)
	}
}

// runServe はAPIサーバーモードで起動する。
// 認証バックエンドのURLを検証してからDBに接続し、全依存関係をワイヤリングする。
// ctxがキャンセルされるとグレースフルシャットダウンを行う。
func runServe(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	// 1. 認証バックエンドの検証
	policy := security.OutboundPolicy{AllowPrivateNetwork: cfg.AuthAllowPrivateNetwork}
	if err := security.ValidateEndpoint(cfg.AuthBackendURL, policy); err != nil {
		return fmt.Errorf("invalid AUTH_BACKEND_URL: %w", err)
	}

	// 2. DB接続
	db, err := database.Connect(ctx, cfg.DatabaseURL, poolConfig(cfg))
	if err != nil {
		return err
	}
	defer db.Close()

	log.Info("database connection established")

	// 3. メトリクス
	registry := newRegistry()
	collector := metrics.NewCollector(registry)

	// 4. リポジトリの初期化
	userRepo := repository.NewPostgresUserRepo(db)
	sessionRepo := repository.NewPostgresSessionRepo(db)
	designerRepo := repository.NewPostgresDesignerRepo(db)
	customerRepo := repository.NewPostgresCustomerRepo(db)
	dealRepo := repository.NewPostgresDealRepo(db)

	// 5. ドメインサービスの初期化
	resolver := registration.NewResolver(designerRepo, customerRepo, collector, registration.Config{
		TTL:           cfg.RegistrationCacheTTL,
		LookupTimeout: registration.DefaultConfig().LookupTimeout,
	})

	gateway := auth.NewHostedClient(
		auth.HostedClientConfig{BaseURL: cfg.AuthBackendURL, APIKey: cfg.AuthBackendAPIKey},
		security.NewOutboundClient(policy, cfg.AuthTimeout),
		auth.NewTokenVerifier(cfg.AuthJWTSecret),
	)
	authService := auth.NewService(gateway, userRepo, sessionRepo, resolver, collector, auth.ServiceConfig{
		SessionMaxAge:         cfg.SessionMaxAge,
		SignUpTransitionDelay: cfg.SignUpTransitionDelay,
		SignInCloseDelay:      cfg.SignInCloseDelay,
	})

	dealService := deals.NewService(dealRepo, security.NewDealSanitizer(), cfg.DealsLimit)

	// 6. ルーターの構築
	limiter := middleware.NewRateLimiter(middleware.PerMinuteConfig(cfg.RateLimitGeneral, cfg.RateLimitAuth))
	defer limiter.Stop()

	router := handler.NewRouter(&handler.RouterDeps{
		Logger:            log,
		StatusRecorder:    collector,
		SessionReader:     sessionRepo,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		RateLimiter:       limiter,
		Cookies: handler.CookieConfig{
			Domain:        cfg.CookieDomain,
			Secure:        cfg.CookieSecure,
			SessionMaxAge: cfg.SessionMaxAge,
		},
		HealthChecker:  db,
		MetricsHandler: metrics.Handler(registry),
		AuthService:    authService,
		Resolver:       resolver,
		Users:          userRepo,
		DealService:    dealService,
	})

	// 7. HTTPサーバーの起動
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	if err := serveUntilDone(ctx, server, log); err != nil {
		return err
	}

	resolver.Wait()
	log.Info("API server stopped gracefully")
	return nil
}

// runWorker はワーカーモードで起動する。
// 期限切れセッションを定期的に削除し、メトリクスを別ポートで公開する。
func runWorker(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	db, err := database.Connect(ctx, cfg.DatabaseURL, poolConfig(cfg))
	if err != nil {
		return err
	}
	defer db.Close()

	log.Info("database connection established (worker)")

	registry := newRegistry()
	collector := metrics.NewCollector(registry)

	sessionRepo := repository.NewPostgresSessionRepo(db)
	job := cleanup.NewCleanupJob(sessionRepo, collector, log)

	metricsServer := &http.Server{
		Addr:              ":" + cfg.MetricsPort,
		Handler:           metrics.SetupMetricsRoute(registry),
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Info("worker starting",
		slog.Duration("cleanup_interval", cfg.SessionCleanupInterval),
		slog.String("metrics_port", cfg.MetricsPort),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		job.Start(gctx, cfg.SessionCleanupInterval)
		return nil
	})
	g.Go(func() error {
		return serveUntilDone(gctx, metricsServer, log)
	})

	if err := g.Wait(); err != nil {
		return err
	}

	log.Info("worker stopped gracefully")
	return nil
}

// runMigrate はデータベースマイグレーションを実行する。
// すべての未適用マイグレーションを順番に適用する。
func runMigrate(cfg *config.Config, log *slog.Logger) error {
	log.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	version, err := database.RunMigrations(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	log.Info("database migrations completed successfully",
		slog.Uint64("schema_version", uint64(version.Version)),
	)
	return nil
}

// runHealthcheck は/healthにリクエストを送り、200以外をエラーとして返す。
func runHealthcheck(ctx context.Context, target string) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}
	return nil
}

// serveUntilDone はctxがキャンセルされるまでサーバーを動かし、その後シャットダウンする。
// Listenに失敗した場合はそのエラーを返す。
func serveUntilDone(ctx context.Context, server *http.Server, log *slog.Logger) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("http server starting", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server listen error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down http server", slog.String("addr", server.Addr))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown failed: %w", err)
		}
		return nil
	})

	return g.Wait()
}

func poolConfig(cfg *config.Config) database.PoolConfig {
	return database.PoolConfig{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
	}
}

// newRegistry はアプリケーションとランタイムのメトリクスを登録したレジストリを返す。
func newRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// maskDatabaseURL はデータベースURLのパスワードをマスクする。
func maskDatabaseURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "***"
	}
	return u.Redacted()
}
