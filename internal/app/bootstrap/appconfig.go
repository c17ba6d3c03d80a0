// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// WAFFLE's CoreConfig covers ports, TLS, logging and CORS. Everything
// specific to Koinonia lives here and is passed to every lifecycle hook.
type AppConfig struct {
	// MongoDB
	MongoURI      string
	MongoDatabase string

	// Session cookie
	SessionKey    string
	SessionName   string
	SessionDomain string // blank means current host
	SessionMaxAge time.Duration

	// Headless CMS (GraphQL) for devotionals and reading plans
	CMSGraphQLURL   string
	CMSAPIToken     string
	CMSMediaBaseURL string
	CMSCacheSize    int

	// Bible text API
	BibleBaseURL        string
	BibleToken          string
	BibleDefaultVersion string

	// Upper bound for one CMS or Bible API call
	ContentTimeout time.Duration

	// Email of a registered user promoted to ADMIN on startup
	BootstrapAdminEmail string

	// Audit sink: all, db, log or off
	AuditLog string
}
