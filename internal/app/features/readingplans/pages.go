// internal/app/features/readingplans/pages.go
package readingplans

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	plancontent "github.com/koinonia-app/koinonia/internal/app/content/readingplans"
	"github.com/koinonia-app/koinonia/internal/app/features/shared"
	"github.com/koinonia-app/koinonia/internal/app/resources/plancatalog"
	"github.com/koinonia-app/koinonia/internal/app/system/apperr"
	"github.com/koinonia-app/koinonia/internal/app/system/authz"
	"github.com/koinonia-app/koinonia/internal/app/system/progress"
	"github.com/koinonia-app/koinonia/internal/app/system/timeouts"
	"github.com/koinonia-app/koinonia/internal/domain/models"
)

// ServeCatalog handles GET /planos: every plan in the built-in catalog.
func (h *Handler) ServeCatalog(w http.ResponseWriter, r *http.Request) {
	shared.WriteJSON(w, http.StatusOK, plancatalog.List())
}

type planDetail struct {
	Plan     models.ReadingPlanDefinition `json:"plan"`
	LoggedIn bool                         `json:"loggedIn"`
	Progress *progress.Summary            `json:"progressSummary,omitempty"`
	Percent  int                          `json:"progressPercent"`
}

// ServePlan handles GET /planos/{slug}. Signed-in callers also get their
// progress on the plan.
func (h *Handler) ServePlan(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	def, ok := plancatalog.BySlug(slug)
	if !ok {
		h.ErrLog.Respond(w, r, "plan page", apperr.NotFoundError("Plan not found."))
		return
	}

	d := planDetail{Plan: def}
	if _, _, userID, signedIn := authz.UserCtx(r); signedIn {
		ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "plan progress summary")
		defer cancel()

		sum, err := h.Runs.SummaryForPlan(ctx, userID, slug)
		if err != nil {
			h.ErrLog.LogServerError(w, r, "plan page: summary", err, "Unable to load your progress.")
			return
		}
		d.LoggedIn = true
		d.Progress = &sum
		if sum.ActiveRun != nil {
			d.Percent = progress.Percent(*sum.ActiveRun)
		}
	}
	shared.WriteJSON(w, http.StatusOK, d)
}

type planList struct {
	Plans        []plancontent.WithProgress `json:"plans"`
	FromFallback bool                       `json:"fromFallback"`
}

// ServeMyPlans handles GET /meus-planos: every plan with the caller's
// progress summary.
func (h *Handler) ServeMyPlans(w http.ResponseWriter, r *http.Request) {
	_, _, userID, ok := authz.UserCtx(r)
	if !ok {
		h.ErrLog.Respond(w, r, "my plans: no user", apperr.Unauthenticated("Unauthorized."))
		return
	}

	plans, fallback := h.Plans.List(r.Context())

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "my plans")
	defer cancel()

	sums, err := h.Runs.SummariesForUser(ctx, userID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "my plans: summaries", err, "Unable to load your plans.")
		return
	}
	shared.WriteJSON(w, http.StatusOK, planList{
		Plans:        plancontent.Decorate(plans, sums),
		FromFallback: fallback,
	})
}

// ServeAdminPlans handles GET /admin/plans.
func (h *Handler) ServeAdminPlans(w http.ResponseWriter, r *http.Request) {
	plans, fallback := h.Plans.List(r.Context())
	shared.WriteJSON(w, http.StatusOK, map[string]any{
		"plans":        plans,
		"fromFallback": fallback,
	})
}
