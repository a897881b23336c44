package tui

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/folioworks/folio/internal/api"
	"github.com/folioworks/folio/internal/auth"
	"github.com/folioworks/folio/internal/cache"
	"github.com/folioworks/folio/internal/config"
	"github.com/folioworks/folio/internal/model"
	"github.com/folioworks/folio/internal/session"
)

// newTestModel builds a dashboard model over a fresh state dir and a
// client pointed at an unreachable address. An empty role leaves the
// model unauthenticated at the login view.
func newTestModel(t *testing.T, role string) Model {
	t.Helper()
	dir := t.TempDir()
	creds := session.NewCredentialStore(dir)
	store := session.NewStore(dir, creds)
	if role != "" {
		store.SetUser(&model.User{ID: "u1", Name: "Ada", Email: "ada@example.com", Role: role})
	}
	client := api.NewClient("http://127.0.0.1:1", creds, "")
	mgr := auth.NewManager(store, creds, client, nil)

	contentCache, err := cache.Open(filepath.Join(dir, "cache.db"))
	if err != nil {
		t.Fatalf("cache.Open: %v", err)
	}
	t.Cleanup(func() { contentCache.Close() })

	m := NewModel(&config.Config{ServerURL: "http://127.0.0.1:1", AccentColor: "#4ECDC4", PageSize: 10}, mgr, client, contentCache)
	t.Cleanup(m.monitor.Stop)
	return m
}

func TestRevalidateSameRoleKeepsLoadedTables(t *testing.T) {
	m := newTestModel(t, model.RoleAdmin)

	ret, _ := m.Update(projectsLoadedMsg{items: []model.Project{{ID: "p1", Title: "folio"}}})
	m = ret.(Model)
	before := m.projects

	ret, cmd := m.Update(revalidateMsg{user: &model.User{ID: "u1", Role: model.RoleAdmin}})
	m = ret.(Model)

	if m.projects != before {
		t.Error("same-role revalidation must not rebuild the tables")
	}
	if cmd != nil {
		t.Error("same-role revalidation must not schedule a reload")
	}
}

func TestRevalidateRoleChangeRebuildsAndReloads(t *testing.T) {
	m := newTestModel(t, model.RoleAdmin)
	if !m.projects.CanDelete() {
		t.Fatal("admin tables should carry the delete action")
	}
	before := m.projects

	m.mgr.Store().SetUser(&model.User{ID: "u1", Role: model.RoleViewer})
	ret, cmd := m.Update(revalidateMsg{user: &model.User{ID: "u1", Role: model.RoleViewer}})
	m = ret.(Model)

	if m.projects == before {
		t.Error("role change must rebuild the tables")
	}
	if m.projects.CanDelete() {
		t.Error("viewer tables must not carry the delete action")
	}
	if cmd == nil {
		t.Error("role change must reload every section")
	}
}

func TestListLoadFallsBackToCache(t *testing.T) {
	m := newTestModel(t, model.RoleAdmin)
	if err := cache.SaveItems(m.cache, model.EntityProjects, []model.Project{{ID: "p1", Title: "cached"}}); err != nil {
		t.Fatalf("SaveItems: %v", err)
	}

	msg := m.loadProjectsCmd()()
	loaded, ok := msg.(projectsLoadedMsg)
	if !ok {
		t.Fatalf("msg = %T, want projectsLoadedMsg", msg)
	}
	if loaded.err != nil {
		t.Fatalf("err = %v, want cached rows", loaded.err)
	}
	if !loaded.degraded {
		t.Error("cache-served rows must be marked degraded")
	}
	if len(loaded.items) != 1 || loaded.items[0].Title != "cached" {
		t.Errorf("items = %v, want the cached row", loaded.items)
	}
}

func TestListLoadSurfacesErrorWithoutCacheEntry(t *testing.T) {
	m := newTestModel(t, model.RoleAdmin)

	msg := m.loadProjectsCmd()()
	loaded := msg.(projectsLoadedMsg)
	if loaded.err == nil {
		t.Error("expected an error when neither the API nor the cache has rows")
	}
}

func TestForcedTeardownSignalsDashboard(t *testing.T) {
	m := newTestModel(t, model.RoleAdmin)

	m.mgr.Store().ClearAuth()

	select {
	case <-m.expiredCh:
	case <-time.After(time.Second):
		t.Fatal("expected an expiry signal after forced teardown")
	}
}

func TestExpirySignalAtLoginKeepsMessage(t *testing.T) {
	m := newTestModel(t, "")
	if m.view != auth.ViewLogin {
		t.Fatalf("view = %q, want login", m.view)
	}
	m.message = "Logged out."

	ret, cmd := m.Update(sessionExpiredMsg{})
	m = ret.(Model)

	if m.message != "Logged out." {
		t.Errorf("message = %q, want the logout note preserved", m.message)
	}
	if cmd == nil {
		t.Error("the expiry watcher must be re-armed")
	}
}
