// internal/app/features/systemusers/handler.go
package systemusers

import (
	"time"

	uierrors "github.com/koinonia-app/koinonia/internal/app/features/errors"
	userstore "github.com/koinonia-app/koinonia/internal/app/store/users"
	"github.com/koinonia-app/koinonia/internal/app/system/auditlog"
	"go.uber.org/zap"
)

// Handler serves admin user management: the user list and role changes.
type Handler struct {
	Users    *userstore.Store
	ErrLog   *uierrors.ErrorLogger
	AuditLog *auditlog.Logger
	Log      *zap.Logger
	Now      func() time.Time
}

func NewHandler(users *userstore.Store, errLog *uierrors.ErrorLogger, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Users:    users,
		ErrLog:   errLog,
		AuditLog: audit,
		Log:      logger,
		Now:      func() time.Time { return time.Now().UTC() },
	}
}
