package auth

import (
	"context"
	"errors"
	"sync"

	"github.com/folioworks/folio/internal/api"
	"github.com/folioworks/folio/internal/logger"
	"github.com/folioworks/folio/internal/model"
	"github.com/folioworks/folio/internal/session"
)

// ErrNotAuthenticated is returned by operations that require a live session.
var ErrNotAuthenticated = errors.New("not authenticated")

// Purger is the piece of the local cache the manager needs: logout must
// leave no content behind.
type Purger interface {
	Purge() error
}

// Manager drives the session lifecycle against the content API. All
// session-destroying errors are handled here; callers only ever observe
// Authenticated() flipping to false.
type Manager struct {
	store  *session.Store
	creds  *session.CredentialStore
	client *api.Client
	cache  Purger // may be nil

	// Concurrent CurrentUser callers share one in-flight fetch.
	fetchMu sync.Mutex
	fetch   *userFetch
}

type userFetch struct {
	done chan struct{}
	user *model.User
	err  error
}

// NewManager wires the orchestrator. cache may be nil.
func NewManager(store *session.Store, creds *session.CredentialStore, client *api.Client, cache Purger) *Manager {
	return &Manager{store: store, creds: creds, client: client, cache: cache}
}

// Store exposes the underlying session store (for the monitor and views).
func (m *Manager) Store() *session.Store { return m.store }

// Authenticated reports whether a user is currently logged in.
func (m *Manager) Authenticated() bool { return m.store.Authenticated() }

// Login authenticates and establishes the local session. On failure the
// session state is untouched and no token is written.
func (m *Manager) Login(ctx context.Context, email, password string) error {
	result, err := m.client.Login(ctx, email, password)
	if err != nil {
		logger.Warn("Login failed", logger.F("error", err))
		return err
	}

	m.creds.SetToken(result.Token)
	if result.RefreshToken != "" {
		m.creds.SetRefreshToken(result.RefreshToken)
	}
	m.store.SetUser(&result.User)
	m.dropInflight()

	logger.Info("Logged in", logger.F("user", result.User.Email))
	return nil
}

// Logout tells the server, then clears local state. The remote call is
// best-effort: an unreachable or failing server never leaves the client
// stuck logged in.
func (m *Manager) Logout(ctx context.Context) {
	if err := m.client.Logout(ctx); err != nil {
		logger.Warn("Remote logout failed, clearing local session anyway", logger.F("error", err))
	}

	m.store.Logout()
	m.dropInflight()
	if m.cache != nil {
		if err := m.cache.Purge(); err != nil {
			logger.Warn("Cache purge failed", logger.F("error", err))
		}
	}
	logger.Info("Logged out")
}

// CurrentUser revalidates the session against /auth/me. Runs only when a
// valid session and token are present. A rejection by the server evicts
// the local session (self-healing); a merely unreachable server does not.
// Concurrent callers share one request.
func (m *Manager) CurrentUser(ctx context.Context) (*model.User, error) {
	if !m.store.Authenticated() || !m.store.IsValid() || m.creds.Token() == "" {
		return nil, ErrNotAuthenticated
	}

	m.fetchMu.Lock()
	if f := m.fetch; f != nil {
		m.fetchMu.Unlock()
		<-f.done
		return f.user, f.err
	}
	f := &userFetch{done: make(chan struct{})}
	m.fetch = f
	m.fetchMu.Unlock()

	f.user, f.err = m.client.Me(ctx)
	if f.err == nil {
		m.store.SetUser(f.user)
		m.store.UpdateLastActivity()
	} else if !errors.Is(f.err, api.ErrUnreachable) {
		logger.Info("Session rejected by server, clearing", logger.F("error", f.err))
		m.store.ClearAuth()
	}

	m.fetchMu.Lock()
	m.fetch = nil
	m.fetchMu.Unlock()
	close(f.done)

	return f.user, f.err
}

func (m *Manager) dropInflight() {
	m.fetchMu.Lock()
	m.fetch = nil
	m.fetchMu.Unlock()
}

// Refresh mints a new access token and extends the session. Any failure
// is fatal for the session: fail-closed, no retry.
func (m *Manager) Refresh(ctx context.Context) error {
	result, err := m.client.Refresh(ctx)
	if err != nil {
		logger.Warn("Token refresh failed, clearing session", logger.F("error", err))
		m.store.ClearAuth()
		return err
	}

	m.creds.SetToken(result.Token)
	m.store.ExtendSession()
	return nil
}

// ChangePassword changes the current user's password.
func (m *Manager) ChangePassword(ctx context.Context, oldPassword, newPassword string) error {
	if !m.store.Authenticated() {
		return ErrNotAuthenticated
	}
	return m.client.ChangePassword(ctx, oldPassword, newPassword)
}

// HasRole reports whether the cached user carries the given role. Pure
// and local; never a network round trip.
func (m *Manager) HasRole(role string) bool {
	u := m.store.User()
	return u != nil && u.Role == role
}

// IsAdmin reports whether the cached user is an admin.
func (m *Manager) IsAdmin() bool { return m.HasRole(model.RoleAdmin) }

// CanCreate reports whether the cached user may create content.
func (m *Manager) CanCreate() bool { return m.IsAdmin() || m.HasRole(model.RoleEditor) }

// CanEdit reports whether the cached user may edit content.
func (m *Manager) CanEdit() bool { return m.CanCreate() }

// CanDelete reports whether the cached user may delete content.
func (m *Manager) CanDelete() bool { return m.IsAdmin() }
