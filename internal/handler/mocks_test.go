package handler

import (
	"context"
	"sync/atomic"

	"github.com/interiorly/interiorly/internal/auth"
	"github.com/interiorly/interiorly/internal/model"
)

// --- モック定義 ---

type mockAuthService struct {
	signUpFn         func(ctx context.Context, name, email, password string) (*auth.SignUpResult, error)
	signInFn         func(ctx context.Context, email, password, previousSessionID string) (*auth.SignInResult, error)
	signOutFn        func(ctx context.Context, sessionID string) error
	getCurrentUserFn func(ctx context.Context, sessionID string) (*model.User, error)
}

func (m *mockAuthService) SignUp(ctx context.Context, name, email, password string) (*auth.SignUpResult, error) {
	if m.signUpFn != nil {
		return m.signUpFn(ctx, name, email, password)
	}
	return nil, nil
}

func (m *mockAuthService) SignIn(ctx context.Context, email, password, previousSessionID string) (*auth.SignInResult, error) {
	if m.signInFn != nil {
		return m.signInFn(ctx, email, password, previousSessionID)
	}
	return nil, nil
}

func (m *mockAuthService) SignOut(ctx context.Context, sessionID string) error {
	if m.signOutFn != nil {
		return m.signOutFn(ctx, sessionID)
	}
	return nil
}

func (m *mockAuthService) GetCurrentUser(ctx context.Context, sessionID string) (*model.User, error) {
	if m.getCurrentUserFn != nil {
		return m.getCurrentUserFn(ctx, sessionID)
	}
	return nil, nil
}

type mockResolver struct {
	status        model.RegistrationStatus
	snapshot      model.RegistrationStatus
	resolveCalls  atomic.Int32
	snapshotCalls atomic.Int32
}

func (m *mockResolver) Resolve(ctx context.Context, userID string) model.RegistrationStatus {
	m.resolveCalls.Add(1)
	return m.status
}

func (m *mockResolver) Snapshot(userID string) model.RegistrationStatus {
	m.snapshotCalls.Add(1)
	return m.snapshot
}

type mockUserFinder struct {
	findByIDFn func(ctx context.Context, id string) (*model.User, error)
}

func (m *mockUserFinder) FindByID(ctx context.Context, id string) (*model.User, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return &model.User{ID: id}, nil
}

type mockSessionReader struct {
	sessions map[string]string // sessionID → userID
}

func (m *mockSessionReader) FindByID(ctx context.Context, id string) (*model.Session, error) {
	userID, ok := m.sessions[id]
	if !ok {
		return nil, nil
	}
	return &model.Session{ID: id, UserID: userID}, nil
}

type mockDealService struct {
	listActiveFn func(ctx context.Context) ([]*model.Deal, error)
}

func (m *mockDealService) ListActive(ctx context.Context) ([]*model.Deal, error) {
	if m.listActiveFn != nil {
		return m.listActiveFn(ctx)
	}
	return []*model.Deal{}, nil
}

type mockHealthChecker struct {
	err error
}

func (m *mockHealthChecker) PingContext(ctx context.Context) error {
	return m.err
}

// --- compile-time interface checks ---
var (
	_ AuthServiceInterface = (*auth.Service)(nil)
	_ AuthServiceInterface = (*mockAuthService)(nil)
	_ StatusResolver       = (*mockResolver)(nil)
	_ DealServiceInterface = (*mockDealService)(nil)
)
