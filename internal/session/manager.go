package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/tauseefhaider1/clientfinalproject/internal/api"
	"github.com/tauseefhaider1/clientfinalproject/internal/logger"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// ErrResendThrottled is returned when an OTP resend is requested before the
// backend's resend window has elapsed. No network call is made.
var ErrResendThrottled = errors.New("please wait before requesting another OTP")

// otpResendWindow mirrors the backend's resend timer.
const otpResendWindow = 60 * time.Second

// Navigator is how the manager forces the surrounding view layer to the
// login screen when the session is invalidated server-side.
type Navigator interface {
	// ToLogin navigates to the login view.
	ToLogin()
	// AtLogin reports whether the login view is already current, so an
	// invalidation does not cause a redirect loop.
	AtLogin() bool
}

// Manager is the single source of truth for "is the current user
// authenticated, and as whom". All mutations of the session go through its
// methods; callers only ever see copies.
type Manager struct {
	client *api.Client
	store  CredentialStore
	nav    Navigator

	mu      sync.RWMutex
	session Session

	resendMu sync.Mutex
	resend   map[string]*rate.Limiter
}

func NewManager(client *api.Client, store CredentialStore, nav Navigator) *Manager {
	m := &Manager{
		client: client,
		store:  store,
		nav:    nav,
		resend: make(map[string]*rate.Limiter),
	}
	client.OnUnauthorized(m.invalidate)
	return m
}

// Session returns a copy of the current session.
func (m *Manager) Session() Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session
}

// Status returns the current authentication status.
func (m *Manager) Status() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.session.Status
}

// Initialize restores the persisted session, if any, and verifies it against
// the backend. Failure of any flavor ends Unauthenticated; it never returns
// an error because an invalid or unverifiable credential is a normal outcome.
func (m *Manager) Initialize(ctx context.Context) {
	log := logger.FromCtx(ctx)

	st, ok, err := m.store.Load()
	if err != nil {
		log.Warn("failed to load persisted session", zap.Error(err))
	}
	if !ok {
		m.setUnauthenticated()
		return
	}

	if tokenExpired(st.Token) {
		log.Info("persisted credential already expired")
		m.clearAll()
		return
	}

	m.mu.Lock()
	m.session = Session{Credential: st.Token, Identity: st.Identity, Status: Checking}
	m.mu.Unlock()
	m.client.SetToken(st.Token)

	identity, err := m.fetchIdentity(ctx)
	if err != nil {
		// Fail closed: a network failure reads the same as a rejected
		// credential, the user is never shown a stale authenticated state.
		log.Info("session restore rejected", zap.Error(err))
		m.clearAll()
		return
	}

	m.mu.Lock()
	m.session = Session{Credential: st.Token, Identity: identity, Status: Authenticated}
	m.mu.Unlock()

	if err := m.store.Save(State{Token: st.Token, Identity: identity}); err != nil {
		log.Warn("failed to refresh persisted identity", zap.Error(err))
	}

	log.Info("session restored", zap.String("email", identity.Email))
}

// Login exchanges credentials for an identity and bearer token.
func (m *Manager) Login(ctx context.Context, email, password string) (Identity, error) {
	log := logger.FromCtx(ctx)

	var resp struct {
		Success bool      `json:"success"`
		Message string    `json:"message"`
		Token   string    `json:"token"`
		User    *Identity `json:"user"`
	}
	if err := m.client.Post(ctx, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, &resp); err != nil {
		log.Info("login rejected", zap.String("email", email), zap.Error(err))
		return Identity{}, err
	}

	identity := Identity{Email: email}
	if resp.User != nil {
		identity = *resp.User
	}

	if resp.Token != "" {
		m.client.SetToken(resp.Token)
		if err := m.store.Save(State{Token: resp.Token, Identity: identity}); err != nil {
			log.Warn("failed to persist session", zap.Error(err))
		}
	}

	m.mu.Lock()
	m.session = Session{Credential: resp.Token, Identity: identity, Status: Authenticated}
	m.mu.Unlock()

	log.Info("login completed", zap.String("email", identity.Email))
	return identity, nil
}

// Logout tells the backend to drop the session, then unconditionally clears
// local state. A failed backend call never blocks the local effect.
func (m *Manager) Logout(ctx context.Context) {
	if err := m.client.Post(ctx, "/auth/logout", nil, nil); err != nil {
		logger.FromCtx(ctx).Warn("logout request failed", zap.Error(err))
	}
	m.clearAll()
}

// Signup creates an account. The returned flag tells the caller whether the
// backend wants an OTP verification before the account is usable.
func (m *Manager) Signup(ctx context.Context, name, email, password, phone string) (bool, error) {
	var resp struct {
		Success     bool   `json:"success"`
		Message     string `json:"message"`
		OTPRequired bool   `json:"otpRequired"`
	}
	if err := m.client.Post(ctx, "/auth/signup", map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
		"phone":    phone,
	}, &resp); err != nil {
		return false, err
	}
	return resp.OTPRequired, nil
}

// VerifyOTP confirms a signup or reset code. When the backend issues a token
// with the confirmation, the session becomes authenticated as after Login.
func (m *Manager) VerifyOTP(ctx context.Context, email, code string) error {
	log := logger.FromCtx(ctx)

	var resp struct {
		Success bool      `json:"success"`
		Token   string    `json:"token"`
		User    *Identity `json:"user"`
	}
	if err := m.client.Post(ctx, "/auth/verify-otp", map[string]string{
		"email": email,
		"otp":   code,
	}, &resp); err != nil {
		return err
	}

	if resp.Token != "" {
		identity := Identity{Email: email}
		if resp.User != nil {
			identity = *resp.User
		}
		m.client.SetToken(resp.Token)
		if err := m.store.Save(State{Token: resp.Token, Identity: identity}); err != nil {
			log.Warn("failed to persist session", zap.Error(err))
		}
		m.mu.Lock()
		m.session = Session{Credential: resp.Token, Identity: identity, Status: Authenticated}
		m.mu.Unlock()
	}
	return nil
}

// ResendOTP requests a fresh code, locally throttled to the backend's
// resend window per email address.
func (m *Manager) ResendOTP(ctx context.Context, email string) error {
	if !m.resendLimiter(email).Allow() {
		return &api.Error{Kind: api.KindValidation, Message: ErrResendThrottled.Error(), Err: ErrResendThrottled}
	}
	return m.client.Post(ctx, "/auth/resend-otp", map[string]string{"email": email}, nil)
}

// ForgotPassword starts the password recovery flow for email.
func (m *Manager) ForgotPassword(ctx context.Context, email string) error {
	return m.client.Post(ctx, "/auth/forgot-password", map[string]string{"email": email}, nil)
}

// ResetPassword completes recovery with the emailed OTP.
func (m *Manager) ResetPassword(ctx context.Context, email, code, newPassword string) error {
	return m.client.Post(ctx, "/auth/reset-password", map[string]string{
		"email":       email,
		"otp":         code,
		"newPassword": newPassword,
	}, nil)
}

func (m *Manager) resendLimiter(email string) *rate.Limiter {
	m.resendMu.Lock()
	defer m.resendMu.Unlock()

	l, ok := m.resend[email]
	if !ok {
		l = rate.NewLimiter(rate.Every(otpResendWindow), 1)
		m.resend[email] = l
	}
	return l
}

func (m *Manager) fetchIdentity(ctx context.Context) (Identity, error) {
	// The backend answers /auth/me with either {user: {...}} or the bare
	// identity object; take whichever is present.
	var resp struct {
		User *Identity `json:"user"`
		Identity
	}
	if err := m.client.Get(ctx, "/auth/me", &resp); err != nil {
		return Identity{}, err
	}
	if resp.User != nil {
		return *resp.User, nil
	}
	if resp.Email == "" && resp.ID == "" {
		return Identity{}, errors.New("identity check returned no principal")
	}
	return resp.Identity, nil
}

// invalidate is the universal 401 side effect: the local session is cleared
// exactly as a logout would, and the view layer is sent to login unless it
// is already there.
func (m *Manager) invalidate() {
	m.mu.Lock()
	wasAuthenticated := m.session.Status == Authenticated
	m.session = Session{Status: Expired}
	m.mu.Unlock()

	m.client.ClearToken()
	if err := m.store.Clear(); err != nil {
		logger.L().Warn("failed to clear persisted session", zap.Error(err))
	}

	m.mu.Lock()
	m.session = Session{Status: Unauthenticated}
	m.mu.Unlock()

	if wasAuthenticated {
		logger.L().Info("session invalidated by server")
	}

	if m.nav != nil && !m.nav.AtLogin() {
		m.nav.ToLogin()
	}
}

func (m *Manager) setUnauthenticated() {
	m.mu.Lock()
	m.session = Session{Status: Unauthenticated}
	m.mu.Unlock()
}

func (m *Manager) clearAll() {
	m.client.ClearToken()
	if err := m.store.Clear(); err != nil {
		logger.L().Warn("failed to clear persisted session", zap.Error(err))
	}
	m.setUnauthenticated()
}

// tokenExpired peeks at the exp claim of a JWT credential without verifying
// the signature (the client never holds the signing key). Opaque tokens pass
// through and are left for the backend to judge.
func tokenExpired(token string) bool {
	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return false
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(time.Now())
}
