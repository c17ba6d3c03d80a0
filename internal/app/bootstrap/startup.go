// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"github.com/dalemusser/waffle/config"
	"github.com/koinonia-app/koinonia/internal/app/content/devotionals"
	"github.com/koinonia-app/koinonia/internal/app/resources/plancatalog"
	userstore "github.com/koinonia-app/koinonia/internal/app/store/users"
	"github.com/koinonia-app/koinonia/internal/app/system/timeouts"
	"github.com/koinonia-app/koinonia/internal/domain/models"
	"go.uber.org/zap"
)

// Startup runs after the schema is in place and before the handler is
// built. It applies timeouts, checks the embedded content and promotes the
// bootstrap admin.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	timeouts.Configure(timeouts.Config{Content: appCfg.ContentTimeout})
	if n := timeouts.ConfigureFromEnv(); n > 0 {
		logger.Info("timeouts overridden from environment", zap.Int("count", n))
	}

	if err := plancatalog.Validate(); err != nil {
		return fmt.Errorf("plan catalog: %w", err)
	}
	if err := devotionals.LoadFallback(); err != nil {
		return fmt.Errorf("devotionals fallback: %w", err)
	}

	return ensureBootstrapAdmin(ctx, userstore.New(deps.MongoDatabase), appCfg.BootstrapAdminEmail, logger)
}

// ensureBootstrapAdmin promotes the configured email to ADMIN. A missing
// account is not fatal: the promotion happens on the next start after the
// person registers.
func ensureBootstrapAdmin(ctx context.Context, users *userstore.Store, email string, logger *zap.Logger) error {
	if email == "" {
		return nil
	}
	promoted, err := users.PromoteToAdmin(ctx, email)
	switch {
	case errors.Is(err, userstore.ErrNotFound):
		logger.Warn("bootstrap admin not registered yet", zap.String("email", email))
		return nil
	case err != nil:
		return fmt.Errorf("promote bootstrap admin: %w", err)
	case promoted:
		logger.Info("bootstrap admin promoted", zap.String("email", email), zap.String("role", models.RoleAdmin))
	}
	return nil
}
