// internal/app/features/readingplans/handler.go
package readingplans

import (
	"context"

	plancontent "github.com/koinonia-app/koinonia/internal/app/content/readingplans"
	uierrors "github.com/koinonia-app/koinonia/internal/app/features/errors"
	"github.com/koinonia-app/koinonia/internal/app/store/readingruns"
	"go.uber.org/zap"
)

// PlanSource lists the plans shown on /meus-planos and /admin/plans.
type PlanSource interface {
	List(ctx context.Context) ([]plancontent.Plan, bool)
}

// Handler serves plan pages and the join/progress API.
type Handler struct {
	Runs   *readingruns.Store
	Plans  PlanSource
	ErrLog *uierrors.ErrorLogger
	Log    *zap.Logger
}

func NewHandler(runs *readingruns.Store, plans PlanSource, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Runs:   runs,
		Plans:  plans,
		ErrLog: errLog,
		Log:    logger,
	}
}
