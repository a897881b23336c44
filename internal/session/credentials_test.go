package session

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestCredentialRoundTrip(t *testing.T) {
	c := NewCredentialStore(t.TempDir())

	if c.Token() != "" || c.RefreshToken() != "" {
		t.Fatal("fresh store must report no tokens")
	}

	c.SetToken("access")
	c.SetRefreshToken("refresh")

	if got := c.Token(); got != "access" {
		t.Errorf("Token = %q", got)
	}
	if got := c.RefreshToken(); got != "refresh" {
		t.Errorf("RefreshToken = %q", got)
	}
}

func TestRemoveTokenKeepsRefreshToken(t *testing.T) {
	c := NewCredentialStore(t.TempDir())
	c.SetToken("access")
	c.SetRefreshToken("refresh")

	c.RemoveToken()

	if c.Token() != "" {
		t.Error("access token must be gone")
	}
	if c.RefreshToken() != "refresh" {
		t.Error("refresh token must survive RemoveToken")
	}
}

func TestClearRemovesFile(t *testing.T) {
	dir := t.TempDir()
	c := NewCredentialStore(dir)
	c.SetToken("access")

	c.Clear()

	if _, err := os.Stat(filepath.Join(dir, "credentials.json")); !os.IsNotExist(err) {
		t.Error("expected credential file to be removed")
	}
	if c.Token() != "" {
		t.Error("expected no token after Clear")
	}
}

func TestCredentialFileMode(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("file modes are not meaningful on windows")
	}
	dir := t.TempDir()
	c := NewCredentialStore(dir)
	c.SetToken("access")

	info, err := os.Stat(filepath.Join(dir, "credentials.json"))
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("credential file mode = %o, want 0600", perm)
	}
}

func TestUnwritableDirectoryDegradesSilently(t *testing.T) {
	c := NewCredentialStore(string([]byte{0}))
	c.SetToken("access") // must not panic
	if c.Token() != "" {
		t.Error("expected no token when storage is unavailable")
	}
}
