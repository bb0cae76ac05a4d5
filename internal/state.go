package internal

import (
	"context"
	"sync"

	"github.com/dmitrymomot/shorty/pkg/session"
)

type stateKey struct{}

// requestState is shared by every Context created for one request.
// Global middlewares each get their own Context value, so anything that must
// survive the whole chain lives here.
type requestState struct {
	session        *session.Session
	csrfToken      string
	csrf           CSRFState
	mu             sync.Mutex
	sessionLoaded  bool
	hookRegistered bool

	// error flow through adapted middleware; request goroutine only
	failCtx *requestContext
	failed  error
	depth   int
}

func withState(ctx context.Context, s *requestState) context.Context {
	return context.WithValue(ctx, stateKey{}, s)
}

func stateFrom(ctx context.Context) (*requestState, bool) {
	s, ok := ctx.Value(stateKey{}).(*requestState)
	return s, ok && s != nil
}

func (s *requestState) csrfState() CSRFState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.csrf
}

// advanceCSRF moves the state machine forward. Rejected is terminal and
// PayloadVerified never falls back to HeaderVerified.
func (s *requestState) advanceCSRF(next CSRFState) CSRFState {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.csrf == CSRFRejected:
	case next == CSRFRejected:
		s.csrf = next
	case s.csrf == CSRFUnchecked && next == CSRFHeaderVerified:
		s.csrf = next
	case s.csrf != CSRFPayloadVerified && next == CSRFPayloadVerified:
		s.csrf = next
	}
	return s.csrf
}

// takeError hands the error left by the inner chain to the enclosing middleware.
func (s *requestState) takeError() error {
	err := s.failed
	s.failed = nil
	if err == nil {
		s.failCtx = nil
	}
	return err
}
