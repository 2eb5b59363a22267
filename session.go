package techcv

import (
	"sync"

	"github.com/sky0621/techcv/metrics"
)

// SessionStatus enumerates the client's belief about authentication.
type SessionStatus string

const (
	StatusUnauthenticated SessionStatus = "unauthenticated"
	StatusLoading         SessionStatus = "loading"
	StatusAuthenticated   SessionStatus = "authenticated"
)

// SessionState is the single value held by the SessionStore. User is
// non-nil iff Status is StatusAuthenticated.
type SessionState struct {
	Status SessionStatus
	User   *AuthUser
}

// IsAuthenticated is a pure derived view of the state.
func (s SessionState) IsAuthenticated() bool {
	return s.Status == StatusAuthenticated
}

// Unauthenticated returns the store's default state.
func Unauthenticated() SessionState {
	return SessionState{Status: StatusUnauthenticated}
}

// SessionStoreOption customizes store construction.
type SessionStoreOption func(*SessionStore)

// WithSessionLogger overrides the store's logger.
func WithSessionLogger(logger Logger) SessionStoreOption {
	return func(s *SessionStore) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithSessionMetrics records every status transition.
func WithSessionMetrics(m *metrics.Metrics) SessionStoreOption {
	return func(s *SessionStore) {
		if m != nil {
			s.metrics = m
		}
	}
}

// SessionStore holds exactly one SessionState at a time. Transitions are
// total replacements, never partial merges. Any number of concurrent
// readers observe the same value; subscribers are notified after each
// replacement.
type SessionStore struct {
	mu      sync.RWMutex
	state   SessionState
	subs    map[int]func(SessionState)
	nextSub int

	logger  Logger
	metrics *metrics.Metrics
}

// NewSessionStore creates a store in the unauthenticated default state.
func NewSessionStore(opts ...SessionStoreOption) *SessionStore {
	s := &SessionStore{
		state:  Unauthenticated(),
		subs:   map[int]func(SessionState){},
		logger: defLogger{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Current returns the state as a value copy.
func (s *SessionStore) Current() SessionState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// IsAuthenticated reports whether the current status is authenticated.
func (s *SessionStore) IsAuthenticated() bool {
	return s.Current().IsAuthenticated()
}

// SetLoading replaces the state with the transient loading status.
func (s *SessionStore) SetLoading() {
	s.replace(SessionState{Status: StatusLoading})
}

// SignIn replaces the state with an authenticated session for user.
func (s *SessionStore) SignIn(user AuthUser) {
	s.replace(SessionState{Status: StatusAuthenticated, User: &user})
}

// SignOut replaces the state with the unauthenticated default.
func (s *SessionStore) SignOut() {
	s.replace(Unauthenticated())
}

// Update replaces the state verbatim. Escape hatch for flows that need
// direct control over the stored value.
func (s *SessionStore) Update(next SessionState) {
	s.replace(next)
}

// Subscribe registers fn to run after every state replacement. The
// returned function cancels the subscription.
func (s *SessionStore) Subscribe(fn func(SessionState)) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *SessionStore) replace(next SessionState) {
	s.mu.Lock()
	prev := s.state
	s.state = next
	listeners := make([]func(SessionState), 0, len(s.subs))
	for _, fn := range s.subs {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()

	if s.metrics != nil {
		s.metrics.RecordSessionTransition(string(prev.Status), string(next.Status))
	}
	s.logger.Debug("session %s -> %s", prev.Status, next.Status)

	for _, fn := range listeners {
		fn(next)
	}
}
