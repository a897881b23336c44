package session

import (
	"testing"
	"time"

	"github.com/folioworks/folio/internal/model"
)

func TestTouchStampsOnlyWhenAuthenticated(t *testing.T) {
	s, now := newTestStore(t)
	m := NewMonitor(s, nil)

	m.Touch()
	if !s.State().LastActivity.IsZero() {
		t.Fatal("Touch on an unauthenticated store must be a no-op")
	}

	s.SetUser(&model.User{ID: "u1", Role: model.RoleEditor})
	*now = now.Add(5 * time.Minute)
	m.Touch()

	if got := s.State().LastActivity; !got.Equal(*now) {
		t.Errorf("LastActivity = %v, want %v", got, *now)
	}
}

func TestCheckClearsExpiredSession(t *testing.T) {
	s, now := newTestStore(t)
	s.SetUser(&model.User{ID: "u1", Role: model.RoleAdmin})

	fired := 0
	m := NewMonitor(s, func() { fired++ })

	// Still valid: nothing happens.
	m.check()
	if fired != 0 || !s.Authenticated() {
		t.Fatal("check must not tear down a valid session")
	}

	*now = now.Add(InactivityTimeout + time.Minute)
	m.check()

	if s.Authenticated() {
		t.Error("expected ClearAuth after expiry")
	}
	if fired != 1 {
		t.Errorf("onExpire fired %d times, want 1", fired)
	}

	// Idempotent once unauthenticated.
	m.check()
	if fired != 1 {
		t.Errorf("onExpire fired again on an already-cleared session")
	}
}

func TestStartStopIdempotent(t *testing.T) {
	s, _ := newTestStore(t)
	m := NewMonitor(s, nil)

	m.Start()
	m.Start()
	m.Stop()
	m.Stop()
}

func TestMonitorLoopDetectsExpiry(t *testing.T) {
	s, now := newTestStore(t)
	s.SetUser(&model.User{ID: "u1", Role: model.RoleAdmin})
	*now = now.Add(InactivityTimeout + time.Minute)

	expired := make(chan struct{}, 1)
	m := NewMonitor(s, func() { expired <- struct{}{} })
	m.interval = 5 * time.Millisecond
	m.Start()
	defer m.Stop()

	select {
	case <-expired:
	case <-time.After(2 * time.Second):
		t.Fatal("monitor never reported expiry")
	}
}
