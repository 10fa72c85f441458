// Package auth は認証バックエンドとの連携、セッション管理を提供する。
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/interiorly/interiorly/internal/model"
	"github.com/interiorly/interiorly/internal/repository"
	"github.com/interiorly/interiorly/internal/validation"
)

// StatusInvalidator はセッション変更時に登録状態のキャッシュを破棄するインターフェース。
type StatusInvalidator interface {
	Invalidate(userID string)
}

// OutcomeRecorder は認証結果とバックエンドの応答時間をメトリクスに記録するインターフェース。
type OutcomeRecorder interface {
	RecordAuthOutcome(operation, outcome string)
	RecordAuthLatency(d time.Duration)
}

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	SessionMaxAge         int           // セッション有効期間（秒）
	SignUpTransitionDelay time.Duration // サインアップ成功後にサインインへ切り替えるまでの時間
	SignInCloseDelay      time.Duration // サインイン成功後にモーダルを閉じるまでの時間
}

// SignUpResult はサインアップ成功時の結果。
// UIはTransitionDelay後にNextModeへ切り替え、PrefillEmailを残しパスワードを空にする。
type SignUpResult struct {
	User                 *model.User
	NextMode             validation.Mode
	PrefillEmail         string
	TransitionDelay      time.Duration
	ConfirmationRequired bool
}

// SignInResult はサインイン成功時の結果。
type SignInResult struct {
	Session    *model.Session
	User       *model.User
	CloseDelay time.Duration
}

// Service は認証に関するビジネスロジックを提供する。
// セッションの作成・破棄はこのサービスだけが行う。
type Service struct {
	gateway     Gateway
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
	invalidator StatusInvalidator
	recorder    OutcomeRecorder
	config      ServiceConfig
}

// NewService はServiceを生成する。
// invalidator、recorderはnilでもよい。
func NewService(
	gateway Gateway,
	userRepo repository.UserRepository,
	sessionRepo repository.SessionRepository,
	invalidator StatusInvalidator,
	recorder OutcomeRecorder,
	config ServiceConfig,
) *Service {
	return &Service{
		gateway:     gateway,
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		invalidator: invalidator,
		recorder:    recorder,
		config:      config,
	}
}

// SignUp はアカウントを作成する。
// 入力が不正な場合は*validation.FormErrorを返し、バックエンドは呼び出さない。
func (s *Service) SignUp(ctx context.Context, name, email, password string) (*SignUpResult, error) {
	if err := validation.Check(validation.ModeSignUp, validation.Fields{
		Name:     name,
		Email:    email,
		Password: password,
	}); err != nil {
		s.record("signup", "invalid")
		return nil, err
	}

	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)

	start := time.Now()
	identity, err := s.gateway.SignUp(ctx, name, email, password)
	s.observe(start)
	if err != nil {
		return nil, s.gatewayFailure("signup", email, err)
	}

	user, err := s.mirrorUser(ctx, identity, name)
	if err != nil {
		return nil, err
	}

	s.record("signup", "success")
	slog.Info("user signed up",
		slog.String("user_id", user.ID),
		slog.Bool("confirmation_required", identity.AccessToken == ""),
	)

	return &SignUpResult{
		User:                 user,
		NextMode:             validation.ModeSignIn,
		PrefillEmail:         email,
		TransitionDelay:      s.config.SignUpTransitionDelay,
		ConfirmationRequired: identity.AccessToken == "",
	}, nil
}

// SignIn は認証してセッションを発行する。
// previousSessionIDが指定された場合、そのセッションは破棄され新しいセッションに置き換わる。
func (s *Service) SignIn(ctx context.Context, email, password, previousSessionID string) (*SignInResult, error) {
	if err := validation.Check(validation.ModeSignIn, validation.Fields{
		Email:    email,
		Password: password,
	}); err != nil {
		s.record("signin", "invalid")
		return nil, err
	}

	email = strings.TrimSpace(email)

	start := time.Now()
	identity, err := s.gateway.SignIn(ctx, email, password)
	s.observe(start)
	if err != nil {
		return nil, s.gatewayFailure("signin", email, err)
	}

	user, err := s.mirrorUser(ctx, identity, identity.Name)
	if err != nil {
		return nil, err
	}

	if previousSessionID != "" {
		s.discardPreviousSession(ctx, previousSessionID, user.ID)
	}

	session, err := s.createSession(ctx, user, identity.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	s.invalidate(user.ID)
	s.record("signin", "success")
	slog.Info("user signed in", slog.String("user_id", user.ID))

	return &SignInResult{
		Session:    session,
		User:       user,
		CloseDelay: s.config.SignInCloseDelay,
	}, nil
}

// discardPreviousSession はサインイン前のセッションを削除する。
// 別ユーザーのセッションだった場合はそのユーザーの登録状態のキャッシュもクリアする。
// 失敗はサインインを妨げないためログのみ記録する。
func (s *Service) discardPreviousSession(ctx context.Context, sessionID, userID string) {
	prev, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		slog.Warn("failed to find previous session", slog.String("error", err.Error()))
	}

	if err := s.sessionRepo.DeleteByID(ctx, sessionID); err != nil {
		slog.Warn("failed to delete previous session", slog.String("error", err.Error()))
		return
	}

	if prev != nil && prev.UserID != userID {
		s.invalidate(prev.UserID)
	}
}

// SignOut はセッションを破棄し、登録状態のキャッシュをクリアする。
// バックエンドでのトークン失効は失敗してもログのみ記録する。
func (s *Service) SignOut(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("session ID is required")
	}

	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("failed to find session: %w", err)
	}

	if err := s.sessionRepo.DeleteByID(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	if session == nil {
		return nil
	}

	if err := s.gateway.SignOut(ctx, session.AccessToken); err != nil {
		slog.Warn("failed to revoke access token",
			slog.String("user_id", session.UserID),
			slog.String("error", err.Error()),
		)
	}

	s.invalidate(session.UserID)
	s.record("signout", "success")
	slog.Info("user signed out", slog.String("user_id", session.UserID))
	return nil
}

// GetCurrentUser はセッションから現在のユーザーを取得する。
func (s *Service) GetCurrentUser(ctx context.Context, sessionID string) (*model.User, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("session ID is required")
	}

	session, err := s.sessionRepo.FindByID(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to find session: %w", err)
	}
	if session == nil {
		return nil, fmt.Errorf("session not found or expired")
	}

	user, err := s.userRepo.FindByID(ctx, session.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if user == nil {
		return nil, model.NewUserNotFoundError()
	}

	return user, nil
}

// gatewayFailure はバックエンドの失敗をログとメトリクスに記録する。
// 分類済みの*Errorはそのまま返し、それ以外はラップして返す。
func (s *Service) gatewayFailure(operation, email string, err error) error {
	var authErr *Error
	if errors.As(err, &authErr) {
		s.record(operation, string(authErr.Code))
		slog.Warn("auth backend rejected request",
			slog.String("operation", operation),
			slog.String("code", string(authErr.Code)),
			slog.Int("status", authErr.Status),
			slog.String("detail", authErr.Detail),
		)
		return authErr
	}

	s.record(operation, "error")
	slog.Error("auth backend request failed",
		slog.String("operation", operation),
		slog.String("error", err.Error()),
	)
	return fmt.Errorf("failed to %s: %w", operation, err)
}

// mirrorUser は認証済みユーザーをローカルのusersテーブルに反映する。
func (s *Service) mirrorUser(ctx context.Context, identity *Identity, name string) (*model.User, error) {
	now := time.Now()
	user := &model.User{
		ID:        identity.UserID,
		Email:     identity.Email,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.userRepo.Upsert(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to mirror user: %w", err)
	}

	stored, err := s.userRepo.FindByID(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if stored == nil {
		return user, nil
	}
	return stored, nil
}

// createSession はセッションを作成し永続化する。
func (s *Service) createSession(ctx context.Context, user *model.User, accessToken string) (*model.Session, error) {
	sessionID, err := generateSessionID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session ID: %w", err)
	}

	now := time.Now()
	session := &model.Session{
		ID:          sessionID,
		UserID:      user.ID,
		Email:       user.Email,
		Name:        user.Name,
		AccessToken: accessToken,
		ExpiresAt:   now.Add(time.Duration(s.config.SessionMaxAge) * time.Second),
		CreatedAt:   now,
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	return session, nil
}

func (s *Service) invalidate(userID string) {
	if s.invalidator != nil {
		s.invalidator.Invalidate(userID)
	}
}

func (s *Service) observe(start time.Time) {
	if s.recorder != nil {
		s.recorder.RecordAuthLatency(time.Since(start))
	}
}

func (s *Service) record(operation, outcome string) {
	if s.recorder != nil {
		s.recorder.RecordAuthOutcome(operation, outcome)
	}
}

// generateSessionID は暗号的に安全なセッションIDを生成する。
func generateSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
