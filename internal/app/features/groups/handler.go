// internal/app/features/groups/handler.go
package groups

import (
	"time"

	uierrors "github.com/koinonia-app/koinonia/internal/app/features/errors"
	userstore "github.com/koinonia-app/koinonia/internal/app/store/users"
	"github.com/koinonia-app/koinonia/internal/app/system/auditlog"
	"go.uber.org/zap"
)

// Handler serves the leader picker for members and the admin group
// overview. Groups are derived from users.leader_id on every read.
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
