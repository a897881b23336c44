package session

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Fixed storage keys for the persisted credential file.
const (
	keyAuthToken    = "auth_token"
	keyRefreshToken = "refresh_token"
)

// CredentialStore persists the opaque API tokens in a 0600 JSON file under
// the folio state directory. Tokens are never validated here.
//
// Storage failure (read-only home, missing directory that cannot be created)
// is deliberately non-fatal: writes no-op and reads report no token, so the
// session simply does not survive a restart.
type CredentialStore struct {
	path string
}

// NewCredentialStore returns a store backed by dir/credentials.json.
func NewCredentialStore(dir string) *CredentialStore {
	return &CredentialStore{path: filepath.Join(dir, "credentials.json")}
}

func (c *CredentialStore) load() map[string]string {
	creds := map[string]string{}
	data, err := os.ReadFile(c.path)
	if err != nil {
		return creds
	}
	json.Unmarshal(data, &creds)
	return creds
}

func (c *CredentialStore) save(creds map[string]string) {
	if err := os.MkdirAll(filepath.Dir(c.path), 0755); err != nil {
		return
	}
	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return
	}
	os.WriteFile(c.path, data, 0600)
}

// SetToken stores the access token.
func (c *CredentialStore) SetToken(token string) {
	creds := c.load()
	creds[keyAuthToken] = token
	c.save(creds)
}

// Token returns the stored access token, or "" if none is present.
func (c *CredentialStore) Token() string {
	return c.load()[keyAuthToken]
}

// SetRefreshToken stores the refresh token.
func (c *CredentialStore) SetRefreshToken(token string) {
	creds := c.load()
	creds[keyRefreshToken] = token
	c.save(creds)
}

// RefreshToken returns the stored refresh token, or "" if none is present.
func (c *CredentialStore) RefreshToken() string {
	return c.load()[keyRefreshToken]
}

// RemoveToken deletes the access token, keeping the refresh token.
func (c *CredentialStore) RemoveToken() {
	creds := c.load()
	delete(creds, keyAuthToken)
	c.save(creds)
}

// Clear deletes the credential file entirely.
func (c *CredentialStore) Clear() {
	os.Remove(c.path)
}
