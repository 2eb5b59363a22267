package techcv

import (
	"context"
	"net/url"
	"sync"
)

// VerificationFailureMessage is the fixed user-facing message when the
// verification exchange fails for any reason other than a typed API error.
const VerificationFailureMessage = "確認に失敗しました。もう一度お試しください。"

// VerificationFlowOption customizes flow construction.
type VerificationFlowOption func(*VerificationFlow)

// WithVerificationLogger overrides the flow's logger.
func WithVerificationLogger(logger Logger) VerificationFlowOption {
	return func(f *VerificationFlow) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// VerificationFlow exchanges a URL-delivered verification token for the
// long-lived auth token, persists that token, signs the session in with
// the verified identity, and navigates to the root destination.
//
// Unlike the OAuth callback flow it never forces a sign-out on failure;
// the session simply stays at whatever non-authenticated value it had.
type VerificationFlow struct {
	api      VerificationService
	tokens   TokenStore
	sessions *SessionStore
	nav      Navigator
	logger   Logger

	mu        sync.Mutex
	triggered bool
	state     FlowState
	message   string
}

// NewVerificationFlow wires the flow to its collaborators.
func NewVerificationFlow(api VerificationService, tokens TokenStore, sessions *SessionStore, nav Navigator, opts ...VerificationFlowOption) *VerificationFlow {
	f := &VerificationFlow{
		api:      api,
		tokens:   tokens,
		sessions: sessions,
		nav:      nav,
		logger:   defLogger{},
		state:    FlowInit,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	return f
}

// State returns the flow's current state.
func (f *VerificationFlow) State() FlowState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// FailureMessage returns the user-facing message, empty unless FlowFailed.
func (f *VerificationFlow) FailureMessage() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.message
}

// Run extracts the token from rawURL and issues the verification exchange.
// The triggered flag guarantees exactly one verify call even if Run is
// invoked again before or after resolution.
func (f *VerificationFlow) Run(ctx context.Context, rawURL string) error {
	f.mu.Lock()
	if f.triggered {
		f.mu.Unlock()
		return nil
	}
	f.triggered = true
	f.mu.Unlock()

	token := verificationToken(rawURL)
	if token == "" {
		f.setFailed(VerificationFailureMessage)
		return ErrMissingVerificationToken
	}

	f.setState(FlowVerifying)
	result, err := f.api.VerifyRegistration(ctx, token)
	if err != nil {
		f.logger.Error("registration verification failed: %s", err)
		if apiErr, ok := AsAPIError(err); ok && apiErr.Message != "" {
			f.setFailed(apiErr.Message)
		} else {
			f.setFailed(VerificationFailureMessage)
		}
		return err
	}

	// The long-lived credential must land in durable storage before the
	// session becomes authenticated.
	if err := f.tokens.Save(ctx, result.AuthToken); err != nil {
		f.logger.Error("failed to persist auth token: %s", err)
		f.setFailed(VerificationFailureMessage)
		perr := ErrTokenPersistence.Clone()
		perr.Source = err
		return perr
	}

	if ctx.Err() != nil {
		f.setFailed(VerificationFailureMessage)
		return ctx.Err()
	}

	f.sessions.SignIn(result.User.AuthUser())
	f.setState(FlowSignedIn)
	f.nav.Navigate("/")
	return nil
}

func (f *VerificationFlow) setState(s FlowState) {
	f.mu.Lock()
	f.state = s
	f.mu.Unlock()
}

func (f *VerificationFlow) setFailed(message string) {
	f.mu.Lock()
	f.state = FlowFailed
	f.message = message
	f.mu.Unlock()
}

func verificationToken(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Query().Get("token")
}
