package session

import (
	"testing"
	"time"

	"github.com/folioworks/folio/internal/model"
)

func testUser() *model.User {
	return &model.User{ID: "u1", Name: "Ada", Email: "ada@example.com", Role: model.RoleAdmin}
}

func newTestStore(t *testing.T) (*Store, *time.Time) {
	t.Helper()
	dir := t.TempDir()
	s := NewStore(dir, NewCredentialStore(dir))
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }
	return s, &now
}

func TestSetUserStartsSession(t *testing.T) {
	s, now := newTestStore(t)

	s.SetUser(testUser())

	if !s.Authenticated() {
		t.Fatal("expected authenticated after SetUser")
	}
	if !s.IsValid() {
		t.Fatal("expected valid session after SetUser")
	}
	if got := s.TimeUntilExpiry(); got != TTL {
		t.Errorf("TimeUntilExpiry = %v, want %v", got, TTL)
	}
	if st := s.State(); !st.LastActivity.Equal(*now) {
		t.Errorf("LastActivity = %v, want %v", st.LastActivity, *now)
	}
}

func TestValidityTruthTable(t *testing.T) {
	cases := []struct {
		name     string
		advance  time.Duration
		activity time.Duration // how long after login the last activity was
		want     bool
	}{
		{"fresh", 0, 0, true},
		{"active within timeout", 29 * time.Minute, 29 * time.Minute, true},
		{"idle at threshold", InactivityTimeout, 0, true},
		{"idle past threshold", InactivityTimeout + time.Second, 0, false},
		{"kept alive but ttl exhausted", TTL + time.Second, TTL + time.Second, false},
		{"at ttl boundary", TTL, TTL, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s, now := newTestStore(t)
			start := *now
			s.SetUser(testUser())

			*now = start.Add(tc.activity)
			s.UpdateLastActivity()
			*now = start.Add(tc.advance)

			if got := s.IsValid(); got != tc.want {
				t.Errorf("IsValid = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestNoExpiryIsInvalid(t *testing.T) {
	s, _ := newTestStore(t)
	if s.IsValid() {
		t.Error("zero-value session must be invalid")
	}
	if got := s.TimeUntilExpiry(); got != 0 {
		t.Errorf("TimeUntilExpiry = %v, want 0", got)
	}
}

func TestUpdateLastActivityDoesNotExtendExpiry(t *testing.T) {
	s, now := newTestStore(t)
	s.SetUser(testUser())
	expiry := s.State().Expiry

	*now = now.Add(10 * time.Minute)
	s.UpdateLastActivity()

	if got := s.State().Expiry; !got.Equal(expiry) {
		t.Errorf("Expiry changed by UpdateLastActivity: %v -> %v", expiry, got)
	}
}

func TestExtendSessionRestartsTTL(t *testing.T) {
	s, now := newTestStore(t)
	s.SetUser(testUser())

	*now = now.Add(20 * time.Hour)
	s.ExtendSession()

	if got := s.TimeUntilExpiry(); got != TTL {
		t.Errorf("TimeUntilExpiry after extend = %v, want %v", got, TTL)
	}
}

func TestLogoutKeepsLastActivity(t *testing.T) {
	s, now := newTestStore(t)
	s.SetUser(testUser())
	stamp := *now

	s.Logout()

	st := s.State()
	if st.Authenticated || st.User != nil {
		t.Fatal("expected unauthenticated after Logout")
	}
	if !st.Expiry.IsZero() {
		t.Error("expected zero expiry after Logout")
	}
	if !st.LastActivity.Equal(stamp) {
		t.Errorf("Logout must keep LastActivity, got %v", st.LastActivity)
	}
}

func TestClearAuthResetsEverything(t *testing.T) {
	s, _ := newTestStore(t)
	s.SetUser(testUser())

	s.ClearAuth()

	st := s.State()
	if st.Authenticated || st.User != nil || !st.LastActivity.IsZero() || !st.Expiry.IsZero() {
		t.Errorf("ClearAuth must zero the state, got %+v", st)
	}
}

func TestClearAuthErasesTokens(t *testing.T) {
	dir := t.TempDir()
	creds := NewCredentialStore(dir)
	creds.SetToken("tok")
	creds.SetRefreshToken("refresh")
	s := NewStore(dir, creds)
	s.SetUser(testUser())

	s.ClearAuth()

	if creds.Token() != "" || creds.RefreshToken() != "" {
		t.Error("ClearAuth must erase stored tokens")
	}
}

func TestRehydrateRestoresValidSession(t *testing.T) {
	dir := t.TempDir()
	creds := NewCredentialStore(dir)
	s := NewStore(dir, creds)
	s.SetUser(testUser())

	s2 := NewStore(dir, creds)
	if !s2.Authenticated() || !s2.IsValid() {
		t.Fatal("expected rehydrated session to be valid")
	}
	if u := s2.User(); u == nil || u.Email != "ada@example.com" {
		t.Errorf("rehydrated user = %+v", u)
	}
}

func TestRehydrateClearsExpiredSession(t *testing.T) {
	dir := t.TempDir()
	creds := NewCredentialStore(dir)
	creds.SetToken("stale")

	s := NewStore(dir, creds)
	old := time.Now().Add(-48 * time.Hour)
	s.now = func() time.Time { return old }
	s.SetUser(testUser())

	// A later start must treat the persisted record as expired.
	s2 := NewStore(dir, creds)
	if s2.Authenticated() {
		t.Fatal("expired persisted session must not be resurrected")
	}
	if creds.Token() != "" {
		t.Error("expired rehydration must erase tokens")
	}
}

func TestOnChangeFires(t *testing.T) {
	s, _ := newTestStore(t)
	var got []bool
	s.OnChange(func(st State) { got = append(got, st.Authenticated) })

	s.SetUser(testUser())
	s.ClearAuth()

	want := []bool{true, false}
	if len(got) != len(want) {
		t.Fatalf("got %d notifications, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("notification %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestOnChangeRegistrationIsConcurrencySafe(t *testing.T) {
	s, _ := newTestStore(t)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 200; i++ {
			s.OnChange(func(State) {})
		}
	}()
	for i := 0; i < 200; i++ {
		s.SetUser(testUser())
		s.ClearAuth()
	}
	<-done
}
