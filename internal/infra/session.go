package infra

import (
	"database/sql"
	"net/http"

	"github.com/alexedwards/scs/postgresstore"
	"github.com/alexedwards/scs/v2"
	"github.com/alexedwards/scs/v2/memstore"
)

// NewSessionManager creates the cookie session manager that maps browsers to
// studios. Sessions live in Postgres when db is non-nil and in memory otherwise.
func NewSessionManager(db *sql.DB, cfg *Config) *scs.SessionManager {
	sm := scs.New()
	if db != nil {
		sm.Store = postgresstore.New(db)
	} else {
		sm.Store = memstore.New()
	}
	sm.Lifetime = cfg.SessionLifetime
	sm.IdleTimeout = cfg.StudioIdleTTL
	sm.Cookie.Name = "wrapstudio_session"
	sm.Cookie.HttpOnly = true
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Secure = cfg.AppEnv == "production"
	return sm
}
