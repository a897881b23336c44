package cli

import (
	"fmt"
	"path/filepath"

	"github.com/folioworks/folio/internal/api"
	"github.com/folioworks/folio/internal/auth"
	"github.com/folioworks/folio/internal/cache"
	"github.com/folioworks/folio/internal/config"
	"github.com/folioworks/folio/internal/session"
)

// app bundles the client-side wiring shared by every command: config,
// credential and session stores, API client, auth manager and the local
// content cache.
type app struct {
	cfg    *config.Config
	creds  *session.CredentialStore
	store  *session.Store
	client *api.Client
	mgr    *auth.Manager
	cache  *cache.Cache
}

func buildApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		cfg = config.DefaultConfig()
	}

	dir, err := config.Dir()
	if err != nil {
		return nil, fmt.Errorf("failed to locate state directory: %w", err)
	}

	creds := session.NewCredentialStore(dir)
	store := session.NewStore(dir, creds)
	client := api.NewClient(cfg.ServerURL, creds, filepath.Join(dir, "fallback"))

	contentCache, err := cache.Open(filepath.Join(dir, "cache.db"))
	if err != nil {
		// The dashboard works without the offline cache.
		contentCache = nil
	}

	var purger auth.Purger
	if contentCache != nil {
		purger = contentCache
	}
	mgr := auth.NewManager(store, creds, client, purger)

	return &app{
		cfg:    cfg,
		creds:  creds,
		store:  store,
		client: client,
		mgr:    mgr,
		cache:  contentCache,
	}, nil
}

func (a *app) close() {
	if a.cache != nil {
		a.cache.Close()
	}
}
