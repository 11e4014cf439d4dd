package session

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/jonboulle/clockwork"
	parse "github.com/mcdev12/dreamteams/go/clients/parse_client"
	"github.com/mcdev12/dreamteams/go/internal/models"
	"github.com/rs/zerolog/log"
)

var (
	// ErrNoSession is returned when an operation needs a logged-in user.
	ErrNoSession = errors.New("no active session")
	// ErrMissingCredentials is returned before any remote call when identity or secret is empty.
	ErrMissingCredentials = errors.New("email and password are required")
)

// AuthError carries the identity service's message verbatim.
type AuthError struct {
	Op     string
	Reason string
	Err    error
}

func (e *AuthError) Error() string {
	return e.Reason
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// IdentityProvider defines what the app layer needs from the identity service
type IdentityProvider interface {
	SignUp(ctx context.Context, username, email, password string) (*parse.User, error)
	LogIn(ctx context.Context, username, password string) (*parse.User, error)
	LogOut(ctx context.Context, sessionToken string) error
}

// App gates access to the roster behind an authenticated session.
type App struct {
	identity IdentityProvider
	clock    clockwork.Clock

	mu      sync.RWMutex
	current *models.Session

	listenersMu sync.Mutex
	onLogin     []func()
	onLogout    []func()
}

// NewApp creates a new session App
func NewApp(identity IdentityProvider, clock clockwork.Clock) *App {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &App{
		identity: identity,
		clock:    clock,
	}
}

// Login authenticates and replaces any active session.
func (a *App) Login(ctx context.Context, identity, secret string) (*models.Session, error) {
	identity = strings.TrimSpace(identity)
	if identity == "" || secret == "" {
		return nil, ErrMissingCredentials
	}

	user, err := a.identity.LogIn(ctx, identity, secret)
	if err != nil {
		log.Warn().Err(err).Str("identity", identity).Msg("login failed")
		return nil, &AuthError{Op: "login", Reason: err.Error(), Err: err}
	}

	s := a.start(user)
	log.Info().Str("user_id", s.UserID).Msg("logged in")
	return s, nil
}

// Signup registers a new user, using the identity as both username and email.
func (a *App) Signup(ctx context.Context, identity, secret string) (*models.Session, error) {
	identity = strings.TrimSpace(identity)
	if identity == "" || secret == "" {
		return nil, ErrMissingCredentials
	}

	user, err := a.identity.SignUp(ctx, identity, identity, secret)
	if err != nil {
		log.Warn().Err(err).Str("identity", identity).Msg("signup failed")
		return nil, &AuthError{Op: "signup", Reason: err.Error(), Err: err}
	}

	s := a.start(user)
	log.Info().Str("user_id", s.UserID).Msg("signed up")
	return s, nil
}

// Logout revokes the active session. On failure the session stays active.
func (a *App) Logout(ctx context.Context) error {
	s, err := a.Current()
	if err != nil {
		return err
	}

	if err := a.identity.LogOut(ctx, s.Token); err != nil {
		log.Warn().Err(err).Str("user_id", s.UserID).Msg("logout failed")
		return &AuthError{Op: "logout", Reason: err.Error(), Err: err}
	}

	a.mu.Lock()
	if a.current != nil && a.current.Token == s.Token {
		a.current = nil
	}
	a.mu.Unlock()

	a.notify(&a.onLogout)

	log.Info().Str("user_id", s.UserID).Msg("logged out")
	return nil
}

// Current returns a copy of the active session.
func (a *App) Current() (models.Session, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.current == nil {
		return models.Session{}, ErrNoSession
	}
	return *a.current, nil
}

// SessionToken returns the active session's backend token.
func (a *App) SessionToken() (string, error) {
	s, err := a.Current()
	if err != nil {
		return "", err
	}
	return s.Token, nil
}

// OnLogin registers fn to run after every successful login or signup, before it returns.
func (a *App) OnLogin(fn func()) {
	a.listenersMu.Lock()
	defer a.listenersMu.Unlock()
	a.onLogin = append(a.onLogin, fn)
}

// OnLogout registers fn to run after every successful logout.
func (a *App) OnLogout(fn func()) {
	a.listenersMu.Lock()
	defer a.listenersMu.Unlock()
	a.onLogout = append(a.onLogout, fn)
}

func (a *App) notify(hooks *[]func()) {
	a.listenersMu.Lock()
	listeners := append([]func(){}, (*hooks)...)
	a.listenersMu.Unlock()
	for _, fn := range listeners {
		fn()
	}
}

func (a *App) start(user *parse.User) *models.Session {
	s := &models.Session{
		UserID:    user.ObjectID,
		Username:  user.Username,
		Email:     user.Email,
		Token:     user.SessionToken,
		StartedAt: a.clock.Now(),
	}

	a.mu.Lock()
	a.current = s
	a.mu.Unlock()

	a.notify(&a.onLogin)

	out := *s
	return &out
}
