package auth

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/engineers4hire/jobdesk/internal/store"
)

// State is the session lifecycle phase.
type State string

const (
	StateUnauthenticated State = "unauthenticated"
	StateAuthenticating  State = "authenticating"
	StateAuthenticated   State = "authenticated"
	// StateUnavailable is terminal: auto-login exhausted its retry
	// budget. Only an explicit Login resets it.
	StateUnavailable State = "unavailable"
)

const (
	defaultRetryBase   = 5 * time.Second
	defaultMaxAttempts = 6
	maxRetryDelay      = 80 * time.Second
)

// Config tunes the auto-login retry policy.
type Config struct {
	RetryBase   time.Duration
	MaxAttempts int
}

// Session owns the authentication state machine. It auto-logs-in on
// start, retries failed logins with jittered exponential backoff, and
// reacts to 401 responses by expiring the session and re-arming
// auto-login. At most one login attempt is in flight at a time.
type Session struct {
	client *Client
	store  store.Store
	log    *zap.Logger
	cfg    Config

	mu       sync.Mutex
	state    State
	token    string
	attempts int
	notice   string
	timer    *time.Timer
	closed   bool
	onAuth   func()

	// runCtx scopes background work (retries, post-expiry auto-login)
	// to the session lifetime rather than to any single request.
	runCtx context.Context
}

func NewSession(client *Client, st store.Store, log *zap.Logger, cfg Config) *Session {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.RetryBase <= 0 {
		cfg.RetryBase = defaultRetryBase
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaultMaxAttempts
	}
	return &Session{
		client: client,
		store:  st,
		log:    log,
		cfg:    cfg,
		state:  StateUnauthenticated,
		runCtx: context.Background(),
	}
}

// SetOnAuthenticated registers a hook invoked (on its own goroutine)
// whenever the session transitions to authenticated. Set before Start.
func (s *Session) SetOnAuthenticated(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onAuth = fn
}

// Start boots the session without blocking: a persisted token is
// verified first and short-circuits straight to authenticated; otherwise
// auto-login begins.
func (s *Session) Start(ctx context.Context) {
	s.mu.Lock()
	s.runCtx = ctx
	s.mu.Unlock()
	go func() {
		token, err := s.store.Token()
		if err != nil {
			s.log.Warn("could not load persisted token", zap.Error(err))
		}
		if token != "" {
			if s.client.Verify(ctx, token) {
				s.log.Info("persisted token verified")
				s.succeed(token)
				return
			}
			if err := s.store.ClearToken(); err != nil {
				s.log.Warn("could not clear stale token", zap.Error(err))
			}
		}
		_ = s.attempt(ctx)
	}()
}

// Login performs an explicit login attempt. A fresh attempt budget is
// granted, which also clears the unavailable state. No-op when a login
// is already in flight or the session is live.
func (s *Session) Login(ctx context.Context) error {
	s.mu.Lock()
	if s.state == StateAuthenticating || s.state == StateAuthenticated {
		s.mu.Unlock()
		return nil
	}
	s.attempts = 0
	s.state = StateUnauthenticated
	s.stopTimerLocked()
	s.mu.Unlock()
	return s.attempt(ctx)
}

// Logout drops the session immediately. Only auth state is cleared;
// application notes are untouched.
func (s *Session) Logout(ctx context.Context) {
	s.mu.Lock()
	token := s.token
	s.token = ""
	s.state = StateUnauthenticated
	s.attempts = 0
	s.notice = ""
	s.stopTimerLocked()
	s.mu.Unlock()

	if err := s.store.ClearToken(); err != nil {
		s.log.Warn("could not clear persisted token", zap.Error(err))
	}
	if err := s.client.Logout(ctx, token); err != nil {
		s.log.Debug("upstream logout failed", zap.Error(err))
	}
	s.log.Info("logged out")
}

// GetJobData fetches the raw job payload through the authenticated
// transport. A 401 expires the session and surfaces ErrSessionExpired;
// other transport failures pass through untouched. No retry here: retry
// policy lives entirely in the auto-login loop.
func (s *Session) GetJobData(ctx context.Context) (any, error) {
	return s.AuthenticatedRequest(ctx, "/jobs")
}

// AuthenticatedRequest performs a GET against an upstream resource using
// the held token, requiring a live session.
func (s *Session) AuthenticatedRequest(ctx context.Context, resource string) (any, error) {
	s.mu.Lock()
	switch s.state {
	case StateUnavailable:
		s.mu.Unlock()
		return nil, ErrAuthUnavailable
	case StateAuthenticated:
	default:
		s.mu.Unlock()
		return nil, ErrNotAuthenticated
	}
	token := s.token
	s.mu.Unlock()

	payload, err := s.client.Get(ctx, resource, token)
	if errors.Is(err, ErrSessionExpired) {
		s.expire()
		return nil, err
	}
	return payload, err
}

func (s *Session) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == StateAuthenticated
}

func (s *Session) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == StateAuthenticating
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Notice is the latest user-visible session message ("session expired",
// "authentication unavailable"), empty when there is nothing to show.
func (s *Session) Notice() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.notice
}

func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// Close stops any scheduled retry. The session is unusable afterwards.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.stopTimerLocked()
}

// attempt runs one guarded login attempt. Returns nil without acting
// when another attempt is already in flight or the session is live.
func (s *Session) attempt(ctx context.Context) error {
	s.mu.Lock()
	if s.closed || s.state == StateAuthenticating || s.state == StateAuthenticated {
		s.mu.Unlock()
		return nil
	}
	s.state = StateAuthenticating
	s.mu.Unlock()

	result, err := s.client.Login(ctx)
	if err != nil {
		s.fail(err)
		return err
	}
	s.succeed(result.Token)
	return nil
}

func (s *Session) succeed(token string) {
	s.mu.Lock()
	s.token = token
	s.state = StateAuthenticated
	s.attempts = 0
	s.notice = ""
	s.stopTimerLocked()
	hook := s.onAuth
	s.mu.Unlock()

	if err := s.store.SetToken(token); err != nil {
		s.log.Warn("could not persist token", zap.Error(err))
	}
	s.log.Info("login successful")
	if hook != nil {
		go hook()
	}
}

func (s *Session) fail(cause error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.attempts++
	if s.attempts >= s.cfg.MaxAttempts {
		s.state = StateUnavailable
		s.notice = "Authentication is currently unavailable. Please try again later."
		s.log.Error("auto-login gave up",
			zap.Int("attempts", s.attempts),
			zap.Error(cause))
		return
	}

	s.state = StateUnauthenticated
	delay := s.backoff(s.attempts)
	s.log.Warn("login failed, retry scheduled",
		zap.Int("attempt", s.attempts),
		zap.Duration("delay", delay),
		zap.Error(cause))
	if s.closed {
		return
	}
	retryCtx := s.runCtx
	s.timer = time.AfterFunc(delay, func() {
		if retryCtx.Err() != nil {
			return
		}
		_ = s.attempt(retryCtx)
	})
}

// expire handles a 401: the token is cleared everywhere, the state flips
// back to unauthenticated with a user-visible notice, and auto-login is
// re-armed with a fresh budget.
func (s *Session) expire() {
	s.mu.Lock()
	s.token = ""
	s.state = StateUnauthenticated
	s.attempts = 0
	s.notice = "Session expired. Please login again."
	retryCtx := s.runCtx
	s.mu.Unlock()

	if err := s.store.ClearToken(); err != nil {
		s.log.Warn("could not clear persisted token", zap.Error(err))
	}
	s.log.Warn("session expired on upstream 401")
	go func() { _ = s.attempt(retryCtx) }()
}

// backoff doubles the base delay per attempt, capped, with the upper
// half jittered to avoid synchronized retries against the backend.
func (s *Session) backoff(attempt int) time.Duration {
	delay := s.cfg.RetryBase << (attempt - 1)
	if delay > maxRetryDelay {
		delay = maxRetryDelay
	}
	half := delay / 2
	return half + time.Duration(rand.Int63n(int64(half)+1))
}

func (s *Session) stopTimerLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}
