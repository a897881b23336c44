package session

import (
	"sync"
	"time"

	"github.com/folioworks/folio/internal/logger"
)

// DefaultCheckInterval is how often the monitor re-evaluates validity.
// An idle session is therefore torn down within one interval of crossing
// the inactivity threshold, even with no further interaction.
const DefaultCheckInterval = time.Minute

// Monitor keeps the session fresh while the user works and tears it down
// when it expires. Touch is wired to interaction events (key presses,
// mouse, resize); a background ticker does the periodic validity check.
//
// Lifecycle is explicit: Start when entering an authenticated context,
// Stop when leaving it. Both are idempotent.
type Monitor struct {
	store    *Store
	interval time.Duration
	onExpire func()

	mu      sync.Mutex
	stopCh  chan struct{}
	running bool
}

// NewMonitor creates a monitor over the store. onExpire fires once per
// detected expiry, after the state has been cleared; it may be nil.
func NewMonitor(store *Store, onExpire func()) *Monitor {
	return &Monitor{
		store:    store,
		interval: DefaultCheckInterval,
		onExpire: onExpire,
	}
}

// Touch stamps activity. Idempotent and cheap; callers do not need to
// debounce.
func (m *Monitor) Touch() {
	if m.store.Authenticated() {
		m.store.UpdateLastActivity()
	}
}

// Start begins the periodic validity check.
func (m *Monitor) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return
	}
	m.running = true
	m.stopCh = make(chan struct{})
	go m.checkLoop(m.stopCh)
}

// Stop cancels the periodic check. No timers survive a Stop.
func (m *Monitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.running {
		return
	}
	m.running = false
	close(m.stopCh)
}

func (m *Monitor) checkLoop(stop chan struct{}) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.check()
		case <-stop:
			return
		}
	}
}

func (m *Monitor) check() {
	if !m.store.Authenticated() {
		return
	}
	if m.store.IsValid() {
		return
	}

	logger.Info("Session expired, clearing auth state")
	m.store.ClearAuth()
	if m.onExpire != nil {
		m.onExpire()
	}
}
