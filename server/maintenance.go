package server

import (
	"database/sql"

	"github.com/folioworks/folio/internal/logger"
	"github.com/robfig/cron/v3"
)

// maintenance runs periodic cleanup: expired sessions and refresh tokens
// are purged hourly so the auth tables do not grow without bound.
type maintenance struct {
	cron *cron.Cron
}

func startMaintenance(db *sql.DB) *maintenance {
	c := cron.New()
	c.AddFunc("@hourly", func() { purgeExpiredAuth(db) })
	c.Start()
	return &maintenance{cron: c}
}

func purgeExpiredAuth(db *sql.DB) int64 {
	purged := int64(0)
	if res, err := db.Exec(`DELETE FROM sessions WHERE expires_at < NOW()`); err == nil {
		if n, err := res.RowsAffected(); err == nil {
			purged += n
		}
	} else {
		logger.Warn("Session purge failed", logger.F("error", err))
	}
	if res, err := db.Exec(`DELETE FROM refresh_tokens WHERE expires_at < NOW()`); err == nil {
		if n, err := res.RowsAffected(); err == nil {
			purged += n
		}
	} else {
		logger.Warn("Refresh token purge failed", logger.F("error", err))
	}
	if purged > 0 {
		sessionsPurged.Add(float64(purged))
		logger.Info("Purged expired auth rows", logger.F("count", purged))
	}
	return purged
}

func (m *maintenance) stop() {
	m.cron.Stop()
}
