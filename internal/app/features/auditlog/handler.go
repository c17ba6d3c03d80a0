// internal/app/features/auditlog/handler.go
package auditlog

import (
	uierrors "github.com/koinonia-app/koinonia/internal/app/features/errors"
	"github.com/koinonia-app/koinonia/internal/app/store/audit"
	userstore "github.com/koinonia-app/koinonia/internal/app/store/users"
	"go.uber.org/zap"
)

type Handler struct {
	Audit  *audit.Store
	Users  *userstore.Store
	Log    *zap.Logger
	ErrLog *uierrors.ErrorLogger
}

// NewHandler constructs the admin audit log viewer.
func NewHandler(audits *audit.Store, users *userstore.Store, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Audit:  audits,
		Users:  users,
		Log:    logger,
		ErrLog: errLog,
	}
}
