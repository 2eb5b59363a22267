package techcv

import (
	"context"
	"net/url"
	"sync"
)

// FlowState tracks progress of a page-level auth flow.
type FlowState string

const (
	FlowInit             FlowState = "init"
	FlowExchanging       FlowState = "exchanging"
	FlowFetchingIdentity FlowState = "fetching_identity"
	FlowVerifying        FlowState = "verifying"
	FlowSignedIn         FlowState = "signed_in"
	FlowFailed           FlowState = "failed"
)

// OAuthFailureMessage is the fixed user-facing message for any OAuth
// callback failure.
const OAuthFailureMessage = "サインイン処理に失敗しました。もう一度お試しください。"

// OAuthFlowOption customizes flow construction.
type OAuthFlowOption func(*OAuthCallbackFlow)

// WithOAuthLogger overrides the flow's logger.
func WithOAuthLogger(logger Logger) OAuthFlowOption {
	return func(f *OAuthCallbackFlow) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// OAuthCallbackFlow completes a redirect-based OAuth login. It extracts
// the one-time code from the callback URL, exchanges it with the backend,
// fetches the resulting identity, signs the session in, and navigates to
// the requested destination replacing the callback history entry.
type OAuthCallbackFlow struct {
	api      OAuthService
	sessions *SessionStore
	nav      Navigator
	logger   Logger

	mu        sync.Mutex
	triggered bool
	state     FlowState
	message   string
}

// NewOAuthCallbackFlow wires the flow to its collaborators.
func NewOAuthCallbackFlow(api OAuthService, sessions *SessionStore, nav Navigator, opts ...OAuthFlowOption) *OAuthCallbackFlow {
	f := &OAuthCallbackFlow{
		api:      api,
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
func (f *OAuthCallbackFlow) State() FlowState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// FailureMessage returns the user-facing message, empty unless FlowFailed.
func (f *OAuthCallbackFlow) FailureMessage() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.message
}

// Run executes the callback sequence for rawURL. It runs at most once per
// flow instance; later calls return nil without effect. The identity fetch
// starts only after the code exchange resolved successfully.
func (f *OAuthCallbackFlow) Run(ctx context.Context, rawURL string) error {
	f.mu.Lock()
	if f.triggered {
		f.mu.Unlock()
		return nil
	}
	f.triggered = true
	f.mu.Unlock()

	code, state, redirectTo := callbackParams(rawURL)

	if code == "" {
		f.setFailed(OAuthFailureMessage)
		return ErrMissingAuthorizationCode
	}

	f.sessions.SetLoading()

	f.setState(FlowExchanging)
	if err := f.api.CompleteOAuthCallback(ctx, code, state); err != nil {
		return f.fail("oauth code exchange failed", err)
	}

	f.setState(FlowFetchingIdentity)
	user, err := f.api.CurrentUser(ctx)
	if err != nil {
		return f.fail("identity fetch after oauth exchange failed", err)
	}

	// A cancelled context means the page is gone; record the failure but
	// leave the session alone.
	if ctx.Err() != nil {
		f.setFailed(OAuthFailureMessage)
		return ctx.Err()
	}

	f.sessions.SignIn(*user)
	f.setState(FlowSignedIn)

	if redirectTo == "" {
		redirectTo = "/"
	}
	f.nav.Replace(redirectTo)
	return nil
}

// fail logs the diagnostic, forces the session back to unauthenticated,
// and records the fixed user-facing message.
func (f *OAuthCallbackFlow) fail(diag string, err error) error {
	f.logger.Error(diag+": %s", err)
	f.sessions.SignOut()
	f.setFailed(OAuthFailureMessage)
	return err
}

func (f *OAuthCallbackFlow) setState(s FlowState) {
	f.mu.Lock()
	f.state = s
	f.mu.Unlock()
}

func (f *OAuthCallbackFlow) setFailed(message string) {
	f.mu.Lock()
	f.state = FlowFailed
	f.message = message
	f.mu.Unlock()
}

func callbackParams(rawURL string) (code, state, redirectTo string) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", "", ""
	}
	q := u.Query()
	return q.Get("code"), q.Get("state"), q.Get("redirectTo")
}
