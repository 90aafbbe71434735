package putio

import "sync"

// Session holds the authentication token and selects the transport used by a
// Client. Setting the token is expected to happen at bootstrap or logout, not
// while requests are in flight.
type Session struct {
	mu      sync.RWMutex
	token   string
	testing bool
	live    Transport
	mock    *MockTransport
	router  Router
}

// SessionOption customizes a Session during construction.
type SessionOption func(*Session)

// WithToken sets the initial token.
func WithToken(token string) SessionOption {
	return func(s *Session) {
		s.token = token
	}
}

// WithTransport replaces the live transport.
func WithTransport(t Transport) SessionOption {
	return func(s *Session) {
		if t != nil {
			s.live = t
		}
	}
}

// WithMock replaces the mock transport and enables testing mode.
func WithMock(m *MockTransport) SessionOption {
	return func(s *Session) {
		if m != nil {
			s.mock = m
			s.testing = true
		}
	}
}

// WithRouter overrides the API origins.
func WithRouter(r Router) SessionOption {
	return func(s *Session) {
		s.router = r
	}
}

// NewSession creates a Session with no token that talks to the live API.
func NewSession(opts ...SessionOption) *Session {
	s := &Session{
		router: DefaultRouter,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.live == nil {
		s.live = NewLiveTransport(LiveConfig{})
	}
	if s.mock == nil {
		s.mock = NewMockTransport()
	}
	return s
}

// Token returns the current token and whether one is set.
func (s *Session) Token() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.token != ""
}

// SetToken stores the token attached to subsequent requests.
func (s *Session) SetToken(token string) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
}

// ClearToken logs the session out.
func (s *Session) ClearToken() {
	s.SetToken("")
}

// SetTesting routes every request through the mock transport when enabled.
func (s *Session) SetTesting(enabled bool) {
	s.mu.Lock()
	s.testing = enabled
	s.mu.Unlock()
}

// Testing reports whether the mock transport is active.
func (s *Session) Testing() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.testing
}

// Mock returns the session's mock transport.
func (s *Session) Mock() *MockTransport {
	return s.mock
}

// Transport returns the transport requests should use right now.
func (s *Session) Transport() Transport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.testing {
		return s.mock
	}
	return s.live
}

// Router returns the session's router.
func (s *Session) Router() Router {
	return s.router
}
