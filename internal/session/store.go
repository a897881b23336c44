package session

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/folioworks/folio/internal/logger"
	"github.com/folioworks/folio/internal/model"
)

const (
	// TTL is the absolute session lifetime set on login and on token refresh.
	TTL = 24 * time.Hour
	// InactivityTimeout invalidates a session with no tracked interaction.
	InactivityTimeout = 30 * time.Minute
)

// State is the persisted session record.
//
// Invariants: Authenticated == (User != nil); Expiry is set only while a
// user is set. A session is valid iff Expiry is set, now <= Expiry and
// now - LastActivity <= InactivityTimeout.
type State struct {
	User          *model.User `json:"user"`
	Authenticated bool        `json:"is_authenticated"`
	LastActivity  time.Time   `json:"last_activity"`
	Expiry        time.Time   `json:"session_expiry"`
}

// Store owns the client-side session state. Every mutation is written
// through to dir/session.json; persistence failure degrades silently the
// same way the credential store does.
//
// Teardown policy: Logout is the polite, user-initiated path and keeps the
// last-activity stamp; ClearAuth is the forced path used by every failure
// route (failed revalidation, failed refresh, detected expiry) and resets
// the whole record. Both erase the stored tokens.
type Store struct {
	mu       sync.Mutex
	state    State
	path     string
	creds    *CredentialStore
	now      func() time.Time
	onChange func(State)
}

// NewStore loads any persisted session from dir and returns the store.
// If the rehydrated session is already invalid it is forced through
// ClearAuth before the store is handed to anyone, so an expired session
// can never be resurrected by a restart.
func NewStore(dir string, creds *CredentialStore) *Store {
	s := &Store{
		path:  filepath.Join(dir, "session.json"),
		creds: creds,
		now:   time.Now,
	}
	s.rehydrate()
	return s
}

func (s *Store) rehydrate() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return
	}
	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		logger.Warn("Discarding unreadable session state", logger.F("error", err))
		s.clearAuthLocked()
		return
	}
	// Enforce the invariant even against a hand-edited file.
	st.Authenticated = st.User != nil
	s.state = st

	if !s.isValidLocked() {
		logger.Info("Persisted session expired, clearing")
		s.clearAuthLocked()
	}
}

func (s *Store) persistLocked() {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return
	}
	data, err := json.MarshalIndent(s.state, "", "  ")
	if err != nil {
		return
	}
	os.WriteFile(s.path, data, 0600)
}

func (s *Store) notify() {
	s.mu.Lock()
	fn := s.onChange
	st := s.state
	s.mu.Unlock()
	if fn != nil {
		fn(st)
	}
}

// OnChange registers a callback fired after every mutation. The dashboard
// uses it to fall back to the login view when auth dies in the background.
func (s *Store) OnChange(fn func(State)) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

// State returns a copy of the current session state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// User returns the cached user, or nil when unauthenticated.
func (s *Store) User() *model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.User
}

// Authenticated reports whether a user is currently set.
func (s *Store) Authenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Authenticated
}

// SetUser sets or replaces the session user. A non-nil user stamps
// activity and starts a fresh TTL window; nil clears the expiry.
func (s *Store) SetUser(u *model.User) {
	s.mu.Lock()
	s.state.User = u
	s.state.Authenticated = u != nil
	if u != nil {
		now := s.now()
		s.state.LastActivity = now
		s.state.Expiry = now.Add(TTL)
	} else {
		s.state.Expiry = time.Time{}
	}
	s.persistLocked()
	s.mu.Unlock()
	s.notify()
}

// UpdateLastActivity stamps the current time. Safe to call on every
// interaction event; it never touches the expiry.
func (s *Store) UpdateLastActivity() {
	s.mu.Lock()
	s.state.LastActivity = s.now()
	s.persistLocked()
	s.mu.Unlock()
}

// ExtendSession stamps activity and restarts the TTL window. Called after
// a successful token refresh.
func (s *Store) ExtendSession() {
	s.mu.Lock()
	now := s.now()
	s.state.LastActivity = now
	s.state.Expiry = now.Add(TTL)
	s.persistLocked()
	s.mu.Unlock()
	s.notify()
}

func (s *Store) isValidLocked() bool {
	if s.state.Expiry.IsZero() {
		return false
	}
	now := s.now()
	if now.After(s.state.Expiry) {
		return false
	}
	return now.Sub(s.state.LastActivity) <= InactivityTimeout
}

// IsValid reports whether the session is currently usable. Pure over the
// stored state and the wall clock.
func (s *Store) IsValid() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isValidLocked()
}

// TimeUntilExpiry returns the remaining absolute lifetime, or 0 when no
// expiry is set or the session is past it.
func (s *Store) TimeUntilExpiry() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Expiry.IsZero() {
		return 0
	}
	d := s.state.Expiry.Sub(s.now())
	if d < 0 {
		return 0
	}
	return d
}

// Logout tears the session down after a user-initiated logout. Keeps the
// last-activity stamp.
func (s *Store) Logout() {
	s.mu.Lock()
	s.creds.Clear()
	s.state.User = nil
	s.state.Authenticated = false
	s.state.Expiry = time.Time{}
	s.persistLocked()
	s.mu.Unlock()
	s.notify()
}

func (s *Store) clearAuthLocked() {
	s.creds.Clear()
	s.state = State{}
	s.persistLocked()
}

// ClearAuth is the forced teardown: tokens erased, state reset to zero.
func (s *Store) ClearAuth() {
	s.mu.Lock()
	s.clearAuthLocked()
	s.mu.Unlock()
	s.notify()
}
