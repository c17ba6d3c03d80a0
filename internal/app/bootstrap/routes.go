// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"
	"time"

	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	devocontent "github.com/koinonia-app/koinonia/internal/app/content/devotionals"
	plancontent "github.com/koinonia-app/koinonia/internal/app/content/readingplans"
	auditlogfeature "github.com/koinonia-app/koinonia/internal/app/features/auditlog"
	biblefeature "github.com/koinonia-app/koinonia/internal/app/features/bible"
	dashboardfeature "github.com/koinonia-app/koinonia/internal/app/features/dashboard"
	devotionalsfeature "github.com/koinonia-app/koinonia/internal/app/features/devotionals"
	errorsfeature "github.com/koinonia-app/koinonia/internal/app/features/errors"
	groupsfeature "github.com/koinonia-app/koinonia/internal/app/features/groups"
	healthfeature "github.com/koinonia-app/koinonia/internal/app/features/health"
	heartbeatfeature "github.com/koinonia-app/koinonia/internal/app/features/heartbeat"
	leadersfeature "github.com/koinonia-app/koinonia/internal/app/features/leaders"
	loginfeature "github.com/koinonia-app/koinonia/internal/app/features/login"
	logoutfeature "github.com/koinonia-app/koinonia/internal/app/features/logout"
	meetingsfeature "github.com/koinonia-app/koinonia/internal/app/features/meetings"
	membersfeature "github.com/koinonia-app/koinonia/internal/app/features/members"
	prayersfeature "github.com/koinonia-app/koinonia/internal/app/features/prayers"
	readingplansfeature "github.com/koinonia-app/koinonia/internal/app/features/readingplans"
	registerfeature "github.com/koinonia-app/koinonia/internal/app/features/register"
	systemusersfeature "github.com/koinonia-app/koinonia/internal/app/features/systemusers"
	auditstore "github.com/koinonia-app/koinonia/internal/app/store/audit"
	meetingstore "github.com/koinonia-app/koinonia/internal/app/store/meetings"
	prayerstore "github.com/koinonia-app/koinonia/internal/app/store/prayers"
	"github.com/koinonia-app/koinonia/internal/app/store/readingruns"
	userstore "github.com/koinonia-app/koinonia/internal/app/store/users"
	"github.com/koinonia-app/koinonia/internal/app/system/auditlog"
	"github.com/koinonia-app/koinonia/internal/app/system/auth"
	"github.com/koinonia-app/koinonia/internal/app/system/bible"
	"github.com/koinonia-app/koinonia/internal/app/system/cms"
	"github.com/koinonia-app/koinonia/internal/app/system/ratelimit"
	"go.uber.org/zap"
)

// BuildHandler constructs the root router. WAFFLE calls it after config,
// DB connection, schema setup and Startup have completed.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionMaxAge, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}
	// Fresh user on every request so role changes apply immediately.
	sessionMgr.SetUserFetcher(userstore.NewFetcher(deps.MongoDatabase))

	cmsClient, err := cms.New(cms.Config{
		GraphQLURL:   appCfg.CMSGraphQLURL,
		APIToken:     appCfg.CMSAPIToken,
		MediaBaseURL: appCfg.CMSMediaBaseURL,
		CacheSize:    appCfg.CMSCacheSize,
		Timeout:      appCfg.ContentTimeout,
	}, logger)
	if err != nil {
		logger.Error("cms client init failed", zap.Error(err))
		return nil, err
	}
	bibleClient := bible.New(bible.Config{
		BaseURL:        appCfg.BibleBaseURL,
		Token:          appCfg.BibleToken,
		DefaultVersion: appCfg.BibleDefaultVersion,
		Timeout:        appCfg.ContentTimeout,
	}, logger)
	devos := devocontent.New(cmsClient, logger)
	plans := plancontent.New(cmsClient, logger)

	db := deps.MongoDatabase
	users := userstore.New(db)
	prayers := prayerstore.New(db)
	meetings := meetingstore.New(db)
	runs := readingruns.New(db)
	audits := auditstore.New(db)

	errLog := errorsfeature.NewErrorLogger(logger)
	auditLog := auditlog.New(audits, logger, auditlog.Uniform(appCfg.AuditLog))

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	// Loads the SessionUser into context for every handler below.
	r.Use(sessionMgr.LoadSessionUser)

	healthHandler := healthfeature.NewHandler(deps.MongoClient, cmsClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Authentication
	loginHandler := loginfeature.NewHandler(users, sessionMgr, errLog, auditLog, logger)
	loginHandler.Limiter = ratelimit.NewAuthLimiter()
	r.Mount("/login", loginfeature.Routes(loginHandler))

	logoutHandler := logoutfeature.NewHandler(sessionMgr, auditLog, logger)
	r.Mount("/logout", logoutfeature.Routes(logoutHandler, sessionMgr))

	registerHandler := registerfeature.NewHandler(users, errLog, auditLog, logger)
	registerHandler.Limiter = ratelimit.NewAuthLimiterWith(5, time.Hour, 3, time.Hour)
	r.Mount("/api/auth/register", registerfeature.Routes(registerHandler))

	heartbeatHandler := heartbeatfeature.NewHandler(users, logger)
	r.Mount("/api/heartbeat", heartbeatfeature.Routes(heartbeatHandler, sessionMgr))

	dashboardHandler := dashboardfeature.NewHandler(users, prayers, meetings, devos, errLog, logger)
	sysUsersHandler := systemusersfeature.NewHandler(users, errLog, auditLog, logger)
	groupsHandler := groupsfeature.NewHandler(users, errLog, auditLog, logger)
	plansHandler := readingplansfeature.NewHandler(runs, plans, errLog, logger)
	devotionalsHandler := devotionalsfeature.NewHandler(devos, logger)

	// Dashboards
	r.Mount("/dashboard", dashboardfeature.Routes(dashboardHandler, sessionMgr))
	r.Mount("/admin", adminRouter(adminDeps{
		dashboard:   dashboardHandler,
		users:       sysUsersHandler,
		groups:      groupsHandler,
		audit:       auditlogfeature.NewHandler(audits, users, errLog, logger),
		plans:       plansHandler,
		devotionals: devotionalsHandler,
	}, sessionMgr))

	leadersHandler := leadersfeature.NewHandler(db, errLog, logger)
	r.Mount("/leader", leadersfeature.Routes(leadersHandler, sessionMgr))

	membersHandler := membersfeature.NewHandler(users, meetings, devos, errLog, logger)
	r.Mount("/member", membersfeature.Routes(membersHandler, sessionMgr))

	// Groups and roles
	r.Mount("/api/groups", groupsfeature.Routes(groupsHandler, sessionMgr))

	r.Mount("/api/admin/users", systemusersfeature.APIRoutes(sysUsersHandler, sessionMgr))

	// Prayer and meeting ledger
	prayersHandler := prayersfeature.NewHandler(db, errLog, logger)
	r.Mount("/api/prayer-requests", prayersfeature.Routes(prayersHandler, sessionMgr))

	meetingsHandler := meetingsfeature.NewHandler(meetings, errLog, logger)
	r.Mount("/api/meetings", meetingsfeature.Routes(meetingsHandler, sessionMgr))

	// Reading plans
	r.Mount("/planos", readingplansfeature.Routes(plansHandler))
	r.Mount("/meus-planos", readingplansfeature.MyPlansRoutes(plansHandler, sessionMgr))
	r.Mount("/api/reading-plans", readingplansfeature.APIRoutes(plansHandler, sessionMgr))

	// Public content
	r.Mount("/devocionais", devotionalsfeature.Routes(devotionalsHandler))

	bibleHandler := biblefeature.NewHandler(bibleClient, logger)
	r.Mount("/biblia", biblefeature.PageRoutes(bibleHandler))
	r.Mount("/api/bible", biblefeature.APIRoutes(bibleHandler))

	return r, nil
}

type adminDeps struct {
	dashboard   *dashboardfeature.Handler
	users       *systemusersfeature.Handler
	groups      *groupsfeature.Handler
	audit       *auditlogfeature.Handler
	plans       *readingplansfeature.Handler
	devotionals *devotionalsfeature.Handler
}

// adminRouter groups every /admin page under one mount. Each sub-router
// applies its own ADMIN gate.
func adminRouter(d adminDeps, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Mount("/users", systemusersfeature.Routes(d.users, sm))
	r.Mount("/groups", groupsfeature.AdminRoutes(d.groups, sm))
	r.Mount("/audit", auditlogfeature.Routes(d.audit, sm))
	r.Mount("/plans", readingplansfeature.AdminRoutes(d.plans, sm))
	r.Mount("/devotionals", devotionalsfeature.AdminRoutes(d.devotionals, sm))
	r.Mount("/", dashboardfeature.AdminRoutes(d.dashboard, sm))
	return r
}
