// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"net/url"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/koinonia-app/koinonia/internal/app/system/auditlog"
	"github.com/koinonia-app/koinonia/internal/app/system/bible"
	"go.uber.org/zap"
)

// appConfigKeys are loaded through WAFFLE's config layer:
//   - config files: mongo_uri, session_name, ...
//   - environment: KOINONIA_MONGO_URI, KOINONIA_SESSION_NAME, ...
//   - flags: --mongo_uri, --session_name, ...
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "koinonia", Desc: "MongoDB database name"},

	{Name: "session_key", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "koinonia-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_max_age", Default: "720h", Desc: "Session cookie lifetime (e.g., 720h)"},

	{Name: "cms_graphql_url", Default: "", Desc: "CMS GraphQL endpoint (blank uses embedded content only)"},
	{Name: "cms_api_token", Default: "", Desc: "CMS API token"},
	{Name: "cms_media_base_url", Default: "", Desc: "Base URL prepended to relative CMS media paths"},
	{Name: "cms_cache_size", Default: 256, Desc: "Number of CMS responses kept for fallback"},

	{Name: "bible_base_url", Default: bible.DefaultBaseURL, Desc: "Bible text API base URL"},
	{Name: "bible_token", Default: "", Desc: "Bible text API token"},
	{Name: "bible_default_version", Default: bible.DefaultVersion, Desc: "Bible version used when none is requested"},

	{Name: "content_timeout", Default: "8s", Desc: "Timeout for one CMS or Bible API call"},

	{Name: "bootstrap_admin_email", Default: "", Desc: "Registered user promoted to ADMIN on startup"},
	{Name: "audit_log", Default: auditlog.ModeAll, Desc: "Audit logging: 'all' (db+log), 'db', 'log', or 'off'"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
// Precedence is flags > env > files > defaults.
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "KOINONIA", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:      appValues.String("mongo_uri"),
		MongoDatabase: appValues.String("mongo_database"),

		SessionKey:    appValues.String("session_key"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),
		SessionMaxAge: appValues.Duration("session_max_age", 30*24*time.Hour),

		CMSGraphQLURL:   appValues.String("cms_graphql_url"),
		CMSAPIToken:     appValues.String("cms_api_token"),
		CMSMediaBaseURL: appValues.String("cms_media_base_url"),
		CMSCacheSize:    appValues.Int("cms_cache_size"),

		BibleBaseURL:        appValues.String("bible_base_url"),
		BibleToken:          appValues.String("bible_token"),
		BibleDefaultVersion: appValues.String("bible_default_version"),

		ContentTimeout: appValues.Duration("content_timeout", 8*time.Second),

		BootstrapAdminEmail: appValues.String("bootstrap_admin_email"),
		AuditLog:            appValues.String("audit_log"),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig rejects configs that would fail later in less obvious ways.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	if coreCfg != nil && coreCfg.Env == "prod" && len(appCfg.SessionKey) < 32 {
		return fmt.Errorf("session_key must be at least 32 characters in prod")
	}

	for _, u := range []struct{ key, val string }{
		{"cms_graphql_url", appCfg.CMSGraphQLURL},
		{"bible_base_url", appCfg.BibleBaseURL},
	} {
		if u.val == "" {
			continue
		}
		if err := checkAbsoluteHTTP(u.val); err != nil {
			return fmt.Errorf("%s: %w", u.key, err)
		}
	}

	return nil
}

func checkAbsoluteHTTP(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%q is not an absolute http(s) URL", raw)
	}
	return nil
}
