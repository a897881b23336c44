package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/folioworks/folio/internal/model"
	"github.com/folioworks/folio/internal/session"
)

func envelope(t *testing.T, w http.ResponseWriter, status int, success bool, message string, data any) {
	t.Helper()
	raw, err := json.Marshal(data)
	if err != nil {
		t.Fatal(err)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(model.Envelope{Data: raw, Success: success, Message: message})
}

func newTestClient(t *testing.T, handler http.Handler) (*Client, *session.CredentialStore) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	creds := session.NewCredentialStore(t.TempDir())
	return NewClient(srv.URL, creds, ""), creds
}

func TestLoginDecodesResult(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/auth/login" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["email"] != "ada@example.com" {
			t.Errorf("email = %q", body["email"])
		}
		envelope(t, w, http.StatusOK, true, "", model.LoginResult{
			User:         model.User{ID: "u1", Email: "ada@example.com", Role: model.RoleAdmin},
			Token:        "tok",
			RefreshToken: "refresh",
		})
	}))

	result, err := c.Login(context.Background(), "ada@example.com", "secret")
	if err != nil {
		t.Fatal(err)
	}
	if result.Token != "tok" || result.RefreshToken != "refresh" || result.User.ID != "u1" {
		t.Errorf("result = %+v", result)
	}
}

func TestBearerTokenAttached(t *testing.T) {
	var got string
	c, creds := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		envelope(t, w, http.StatusOK, true, "", model.User{ID: "u1"})
	}))
	creds.SetToken("abc123")

	if _, err := c.Me(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got != "Bearer abc123" {
		t.Errorf("Authorization = %q", got)
	}
}

func TestUnauthorizedMapsToSentinel(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		envelope(t, w, http.StatusUnauthorized, false, "token expired", nil)
	}))

	_, err := c.Me(context.Background())
	if !errors.Is(err, ErrUnauthorized) {
		t.Errorf("err = %v, want ErrUnauthorized", err)
	}
}

func TestEnvelopeFailureMapsToAPIError(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		envelope(t, w, http.StatusOK, false, "title is required", nil)
	}))

	_, err := Create(context.Background(), c, model.EntityProjects, model.Project{})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *APIError", err)
	}
	if apiErr.Message != "title is required" {
		t.Errorf("message = %q", apiErr.Message)
	}
}

func TestUnreachableServer(t *testing.T) {
	creds := session.NewCredentialStore(t.TempDir())
	c := NewClient("http://127.0.0.1:1", creds, "")

	_, err := c.Me(context.Background())
	if !errors.Is(err, ErrUnreachable) {
		t.Errorf("err = %v, want ErrUnreachable", err)
	}
}

func writeFallback(t *testing.T, dir, entity string, data any) {
	t.Helper()
	raw, err := json.Marshal(data)
	if err != nil {
		t.Fatal(err)
	}
	doc, err := json.Marshal(model.Envelope{Data: raw, Success: true})
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, entity+".json"), doc, 0644); err != nil {
		t.Fatal(err)
	}
}

func TestListFallsBackWhenUnreachable(t *testing.T) {
	dir := t.TempDir()
	writeFallback(t, dir, model.EntitySkills, []model.Skill{{ID: "s1", Name: "Go", Level: 90}})

	creds := session.NewCredentialStore(t.TempDir())
	c := NewClient("http://127.0.0.1:1", creds, dir)

	result, err := List[model.Skill](context.Background(), c, model.EntitySkills)
	if err != nil {
		t.Fatal(err)
	}
	if !result.Degraded {
		t.Error("fallback result must be flagged degraded")
	}
	if len(result.Items) != 1 || result.Items[0].Name != "Go" {
		t.Errorf("items = %+v", result.Items)
	}
}

func TestListNoFallbackForServerErrors(t *testing.T) {
	dir := t.TempDir()
	writeFallback(t, dir, model.EntitySkills, []model.Skill{{ID: "s1", Name: "Go"}})

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		envelope(t, w, http.StatusInternalServerError, false, "database down", nil)
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL, session.NewCredentialStore(t.TempDir()), dir)

	_, err := List[model.Skill](context.Background(), c, model.EntitySkills)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Errorf("a reachable-but-failing server must surface the error, got %v", err)
	}
}

func TestListFallbackMissingFileSurfacesOriginalError(t *testing.T) {
	creds := session.NewCredentialStore(t.TempDir())
	c := NewClient("http://127.0.0.1:1", creds, t.TempDir())

	_, err := List[model.Project](context.Background(), c, model.EntityProjects)
	if !errors.Is(err, ErrUnreachable) {
		t.Errorf("err = %v, want ErrUnreachable", err)
	}
}

func TestListDecodesEnvelope(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/projects" {
			t.Errorf("path = %s", r.URL.Path)
		}
		envelope(t, w, http.StatusOK, true, "", []model.Project{
			{ID: "p1", Title: "folio"},
			{ID: "p2", Title: "irontask"},
		})
	}))

	result, err := List[model.Project](context.Background(), c, model.EntityProjects)
	if err != nil {
		t.Fatal(err)
	}
	if result.Degraded {
		t.Error("live result must not be degraded")
	}
	if len(result.Items) != 2 || result.Items[1].Title != "irontask" {
		t.Errorf("items = %+v", result.Items)
	}
}

func TestUpdateAndDeletePaths(t *testing.T) {
	var gotMethod, gotPath string
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
		envelope(t, w, http.StatusOK, true, "", model.Skill{ID: "s1"})
	}))

	if _, err := Update(context.Background(), c, model.EntitySkills, "s1", model.Skill{ID: "s1"}); err != nil {
		t.Fatal(err)
	}
	if gotMethod != http.MethodPut || gotPath != "/api/v1/skills/s1" {
		t.Errorf("update request = %s %s", gotMethod, gotPath)
	}

	if err := Delete(context.Background(), c, model.EntitySkills, "s1"); err != nil {
		t.Fatal(err)
	}
	if gotMethod != http.MethodDelete || gotPath != "/api/v1/skills/s1" {
		t.Errorf("delete request = %s %s", gotMethod, gotPath)
	}
}

func TestRefreshRequiresStoredToken(t *testing.T) {
	c, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected without a refresh token")
	}))

	_, err := c.Refresh(context.Background())
	if !errors.Is(err, ErrUnauthorized) {
		t.Errorf("err = %v, want ErrUnauthorized", err)
	}
}

func TestRefreshSendsStoredToken(t *testing.T) {
	c, creds := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["refresh_token"] != "refresh" {
			t.Errorf("refresh_token = %q", body["refresh_token"])
		}
		envelope(t, w, http.StatusOK, true, "", model.RefreshResult{Token: "new-tok"})
	}))
	creds.SetRefreshToken("refresh")

	result, err := c.Refresh(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if result.Token != "new-tok" {
		t.Errorf("token = %q", result.Token)
	}
}
