package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/mrx/internal/models"
	"github.com/desertthunder/mrx/internal/services"
	"github.com/desertthunder/mrx/internal/shared"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
)

// Role and Identity are re-exported for consumers of the store.
type (
	Role     = models.Role
	Identity = models.Identity
)

// Messages shown to the user.
const (
	MsgLoginSuccess    = "Signed in"
	MsgLoginFailed     = "Login failed"
	MsgRegisterSuccess = "Registration received. Check your email to verify your account before signing in"
	MsgRegisterFailed  = "Registration failed"
	MsgLogoutSuccess   = "Signed out"
	MsgSessionRejected = "Your session has expired. Please sign in again"
)

// AuthAPI is the remote login and registration surface.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (*models.LoginResult, error)
	RegisterMember(ctx context.Context, email, password string) error
	RegisterLicensee(ctx context.Context, email, password string) error
}

var _ oauth2.TokenSource = (*Store)(nil)

// Store is the session/authorization store.
type Store struct {
	mu       sync.RWMutex
	token    string
	identity *Identity

	storage   Storage
	api       AuthAPI
	notifier  Notifier
	navigator Navigator
	logger    *log.Logger
}

// StoreOpts configures a [Store].
type StoreOpts struct {
	Storage   Storage
	API       AuthAPI
	Notifier  Notifier
	Navigator Navigator
	Logger    *log.Logger
}

// NewStore creates an ANONYMOUS store. Call [Store.Init] to restore a persisted session.
func NewStore(opts StoreOpts) *Store {
	if opts.Storage == nil {
		opts.Storage = NewMemoryStorage()
	}
	if opts.Notifier == nil {
		opts.Notifier = nopNotifier{}
	}
	if opts.Navigator == nil {
		opts.Navigator = nopNavigator{}
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	return &Store{
		storage:   opts.Storage,
		api:       opts.API,
		notifier:  opts.Notifier,
		navigator: opts.Navigator,
		logger:    opts.Logger,
	}
}

// SetNavigator replaces the redirect target, for frontends created after the store.
func (s *Store) SetNavigator(nav Navigator) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if nav == nil {
		nav = nopNavigator{}
	}
	s.navigator = nav
}

// SetNotifier replaces the notification sink.
func (s *Store) SetNotifier(n Notifier) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n == nil {
		n = nopNotifier{}
	}
	s.notifier = n
}

// Init restores the persisted session. It never fails: a missing, partial or corrupt pair clears both keys and
// leaves the store ANONYMOUS.
func (s *Store) Init() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token, s.identity = "", nil

	token, user, err := s.storage.Load()
	if err != nil {
		s.logger.Warnf("failed to load session: %v", err)
		s.clearStorage()
		return
	}
	if token == "" && user == "" {
		return
	}

	identity, err := decodeIdentity(token, user)
	if err != nil {
		s.logger.Warnf("discarding persisted session: %v", err)
		s.clearStorage()
		return
	}

	s.token, s.identity = token, identity
	s.logger.Debugf("restored session for %s (%s)", identity.Email, identity.Role)
}

func decodeIdentity(token, user string) (*Identity, error) {
	if token == "" {
		return nil, errors.New("token is missing")
	}
	if user == "" {
		return nil, errors.New("user is missing")
	}

	var identity Identity
	if err := json.Unmarshal([]byte(user), &identity); err != nil {
		return nil, fmt.Errorf("user is not valid JSON: %w", err)
	}
	if err := identity.Validate(); err != nil {
		return nil, err
	}
	return &identity, nil
}

func (s *Store) clearStorage() {
	if err := s.storage.Clear(); err != nil {
		s.logger.Errorf("failed to clear session storage: %v", err)
	}
}

func credentials(email, password string) (string, string, error) {
	email, password = shared.NormalizeEmail(email), shared.NormalizePassword(password)
	if email == "" {
		return "", "", fmt.Errorf("%w: email is required", shared.ErrMissingArgument)
	}
	if password == "" {
		return "", "", fmt.Errorf("%w: password is required", shared.ErrMissingArgument)
	}
	return email, password, nil
}

// Login authenticates against the backend and persists the session. On failure nothing is persisted and the error
// is returned after the user has been notified.
func (s *Store) Login(ctx context.Context, email, password string) (*Identity, error) {
	email, password, err := credentials(email, password)
	if err != nil {
		s.notify().Error(services.MessageOf(err, MsgLoginFailed))
		return nil, err
	}
	if s.api == nil {
		s.notify().Error(MsgLoginFailed)
		return nil, fmt.Errorf("%w: no auth api configured", shared.ErrMissingConfig)
	}

	res, err := s.api.Login(ctx, email, password)
	if err == nil {
		err = validateLogin(res)
	}
	if err != nil {
		s.notify().Error(services.MessageOf(err, MsgLoginFailed))
		return nil, fmt.Errorf("%w: %w", shared.ErrAuthFailed, err)
	}

	user, err := json.Marshal(res.User)
	if err != nil {
		s.notify().Error(MsgLoginFailed)
		return nil, fmt.Errorf("failed to encode identity: %w", err)
	}

	s.mu.Lock()
	if err := s.storage.Save(res.Token, string(user)); err != nil {
		s.mu.Unlock()
		s.notify().Error(MsgLoginFailed)
		return nil, fmt.Errorf("failed to persist session: %w", err)
	}
	identity := res.User
	s.token, s.identity = res.Token, &identity
	s.mu.Unlock()

	s.logger.Infof("signed in as %s (%s)", identity.Email, identity.Role)
	s.notify().Success(MsgLoginSuccess)
	return &identity, nil
}

func validateLogin(res *models.LoginResult) error {
	if res == nil || res.Token == "" {
		return errors.New("login response carried no token")
	}
	if err := res.User.Validate(); err != nil {
		return fmt.Errorf("login response carried an invalid user: %w", err)
	}
	return nil
}

// RegisterMember submits an artist registration. Success does not sign the caller in.
func (s *Store) RegisterMember(ctx context.Context, email, password string) error {
	return s.register(ctx, email, password, func(ctx context.Context, e, p string) error {
		return s.api.RegisterMember(ctx, e, p)
	})
}

// RegisterLicensee submits a licensing-company registration. Success does not sign the caller in.
func (s *Store) RegisterLicensee(ctx context.Context, email, password string) error {
	return s.register(ctx, email, password, func(ctx context.Context, e, p string) error {
		return s.api.RegisterLicensee(ctx, e, p)
	})
}

func (s *Store) register(ctx context.Context, email, password string, call func(context.Context, string, string) error) error {
	email, password, err := credentials(email, password)
	if err != nil {
		s.notify().Error(services.MessageOf(err, MsgRegisterFailed))
		return err
	}
	if s.api == nil {
		s.notify().Error(MsgRegisterFailed)
		return fmt.Errorf("%w: no auth api configured", shared.ErrMissingConfig)
	}

	if err := call(ctx, email, password); err != nil {
		s.notify().Error(services.MessageOf(err, MsgRegisterFailed))
		return err
	}

	s.notify().Success(MsgRegisterSuccess)
	return nil
}

// Logout clears the persisted pair, drops the identity and redirects to the entry point.
func (s *Store) Logout() {
	s.mu.Lock()
	s.clearStorage()
	s.token, s.identity = "", nil
	nav := s.navigator
	s.mu.Unlock()

	s.notify().Success(MsgLogoutSuccess)
	nav.Redirect(RootPath)
}

// Invalidate is the transport-triggered AUTHENTICATED → ANONYMOUS transition. It reports whether a session was
// dropped. Storage is cleared either way.
func (s *Store) Invalidate() bool {
	s.mu.Lock()
	s.clearStorage()
	was := s.identity != nil
	s.token, s.identity = "", nil
	s.mu.Unlock()

	if was {
		s.logger.Warn("session rejected by server")
		s.notify().Error(MsgSessionRejected)
	}
	return was
}

// Reject invalidates the session and performs the hard redirect.
func (s *Store) Reject() {
	s.Invalidate()
	s.mu.RLock()
	nav := s.navigator
	s.mu.RUnlock()
	nav.Redirect(RootPath)
}

func (s *Store) notify() Notifier {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.notifier
}

// IsAuthenticated reports whether an identity is present.
func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity != nil
}

// Role returns the identity's role, or the empty role when anonymous.
func (s *Store) Role() Role {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.identity == nil {
		return ""
	}
	return s.identity.Role
}

// Identity returns a copy of the signed-in identity.
func (s *Store) Identity() (Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.identity == nil {
		return Identity{}, false
	}
	return *s.identity, true
}

// AccessToken returns the bearer token, or the empty string when anonymous.
func (s *Store) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Token implements [oauth2.TokenSource].
func (s *Store) Token() (*oauth2.Token, error) {
	token := s.AccessToken()
	if token == "" {
		return nil, shared.ErrNotAuthenticated
	}
	t := &oauth2.Token{AccessToken: token, TokenType: "Bearer"}
	if exp, ok := Expiry(token); ok {
		t.Expiry = exp
	}
	return t, nil
}

// Expiry returns the session token's exp claim, if it has one.
func (s *Store) Expiry() (time.Time, bool) {
	return Expiry(s.AccessToken())
}

// Expiry decodes the exp claim of a JWT without verifying it. Opaque tokens report no expiry.
func Expiry(token string) (time.Time, bool) {
	if token == "" {
		return time.Time{}, false
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
