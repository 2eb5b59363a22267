package techcv_test

import (
	"context"
	"sync"

	techcv "github.com/sky0621/techcv"
	"github.com/stretchr/testify/mock"
)

// MockNavigator implements techcv.Navigator
type MockNavigator struct {
	mock.Mock
}

func (m *MockNavigator) Navigate(path string) {
	m.Called(path)
}

func (m *MockNavigator) Replace(path string) {
	m.Called(path)
}

// MockOAuthService implements techcv.OAuthService
type MockOAuthService struct {
	mock.Mock
}

func (m *MockOAuthService) CompleteOAuthCallback(ctx context.Context, code, state string) error {
	args := m.Called(ctx, code, state)
	return args.Error(0)
}

func (m *MockOAuthService) CurrentUser(ctx context.Context) (*techcv.AuthUser, error) {
	args := m.Called(ctx)
	if u := args.Get(0); u != nil {
		return u.(*techcv.AuthUser), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockVerificationService implements techcv.VerificationService
type MockVerificationService struct {
	mock.Mock
}

func (m *MockVerificationService) VerifyRegistration(ctx context.Context, token string) (*techcv.VerificationResult, error) {
	args := m.Called(ctx, token)
	if r := args.Get(0); r != nil {
		return r.(*techcv.VerificationResult), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockRegistrationService implements techcv.RegistrationService
type MockRegistrationService struct {
	mock.Mock
}

func (m *MockRegistrationService) Register(ctx context.Context, payload techcv.RegistrationPayload) (*techcv.RegisterResult, error) {
	args := m.Called(ctx, payload)
	if r := args.Get(0); r != nil {
		return r.(*techcv.RegisterResult), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockTokenStore implements techcv.TokenStore
type MockTokenStore struct {
	mock.Mock
}

func (m *MockTokenStore) Save(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockTokenStore) Load(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

// recordingNavigator collects navigations without expectations, for tests
// that only care about counts and destinations.
type recordingNavigator struct {
	mu        sync.Mutex
	navigated []string
	replaced  []string
}

func (r *recordingNavigator) Navigate(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.navigated = append(r.navigated, path)
}

func (r *recordingNavigator) Replace(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.replaced = append(r.replaced, path)
}

func (r *recordingNavigator) navigations() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.navigated...)
}

func (r *recordingNavigator) replacements() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.replaced...)
}
