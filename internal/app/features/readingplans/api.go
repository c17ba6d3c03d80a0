// internal/app/features/readingplans/api.go
package readingplans

import (
	"net/http"

	"github.com/koinonia-app/koinonia/internal/app/features/shared"
	"github.com/koinonia-app/koinonia/internal/app/resources/plancatalog"
	"github.com/koinonia-app/koinonia/internal/app/system/apperr"
	"github.com/koinonia-app/koinonia/internal/app/system/authz"
	"github.com/koinonia-app/koinonia/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type joinRequest struct {
	PlanSlug  string `json:"planSlug" validate:"required,planslug" label:"planSlug"`
	TotalDays *int   `json:"totalDays" validate:"omitempty,min=1,max=3650" label:"totalDays"`
}

// HandleJoin handles POST /api/reading-plans/join. Joining a plan that
// already has a run in progress returns that run.
func (h *Handler) HandleJoin(w http.ResponseWriter, r *http.Request) {
	_, _, userID, ok := authz.UserCtx(r)
	if !ok {
		h.ErrLog.Respond(w, r, "join plan: no user", apperr.Unauthenticated("Unauthorized."))
		return
	}

	var req joinRequest
	if err := shared.DecodeAndValidate(w, r, &req); err != nil {
		h.ErrLog.Respond(w, r, "join plan: bad body", err)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "join plan")
	defer cancel()

	run, created, err := h.Runs.Join(ctx, userID, req.PlanSlug, req.TotalDays, plancatalog.Duration(req.PlanSlug))
	if err != nil {
		h.ErrLog.LogServerError(w, r, "join plan", err, "Unable to join the plan.")
		return
	}
	if created {
		h.Log.Info("plan joined",
			zap.String("user", userID.Hex()),
			zap.String("plan", run.PlanSlug),
			zap.Int("iteration", run.Iteration))
	}

	shared.WriteJSON(w, http.StatusOK, map[string]any{"run": run, "message": "Plan started."})
}

type progressRequest struct {
	RunID   string `json:"runId" validate:"required,objectid" label:"runId"`
	NextDay *int   `json:"nextDay" validate:"required" label:"nextDay"`
}

// HandleProgress handles POST /api/reading-plans/progress. A run owned by
// someone else is reported as not found.
func (h *Handler) HandleProgress(w http.ResponseWriter, r *http.Request) {
	_, _, userID, ok := authz.UserCtx(r)
	if !ok {
		h.ErrLog.Respond(w, r, "plan progress: no user", apperr.Unauthenticated("Unauthorized."))
		return
	}

	var req progressRequest
	if err := shared.DecodeAndValidate(w, r, &req); err != nil {
		h.ErrLog.Respond(w, r, "plan progress: bad body", err)
		return
	}
	runID, _ := primitive.ObjectIDFromHex(req.RunID)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "plan progress")
	defer cancel()

	run, err := h.Runs.Advance(ctx, userID, runID, *req.NextDay)
	if err != nil {
		h.ErrLog.Respond(w, r, "plan progress", err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"run": run})
}
