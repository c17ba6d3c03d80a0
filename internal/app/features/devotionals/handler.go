// internal/app/features/devotionals/handler.go
package devotionals

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/koinonia-app/koinonia/internal/app/features/shared"
	"github.com/koinonia-app/koinonia/internal/app/system/timeouts"
	"github.com/koinonia-app/koinonia/internal/domain/models"
	"go.uber.org/zap"
)

// Source is the devotional content service.
type Source interface {
	List(ctx context.Context) ([]models.Devotional, bool)
	BySlug(ctx context.Context, slug string) (models.Devotional, bool, bool)
}

type Handler struct {
	Devotionals Source
	Log         *zap.Logger
}

func NewHandler(src Source, logger *zap.Logger) *Handler {
	return &Handler{Devotionals: src, Log: logger}
}

type listItem struct {
	Slug       string `json:"slug"`
	Title      string `json:"title"`
	Subtitle   string `json:"subtitle,omitempty"`
	Date       string `json:"date,omitempty"`
	ReadingRef string `json:"readingRef,omitempty"`
	Excerpt    string `json:"excerpt"`
	CoverImage string `json:"coverImage"`
}

type listData struct {
	Devotionals  []listItem `json:"devotionals"`
	FromFallback bool       `json:"fromFallback"`
}

func (h *Handler) list(r *http.Request) listData {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Content(), h.Log, "devotionals list")
	defer cancel()

	all, fromFallback := h.Devotionals.List(ctx)
	items := make([]listItem, 0, len(all))
	for _, d := range all {
		items = append(items, listItem{
			Slug:       d.Slug,
			Title:      d.Title,
			Subtitle:   d.Subtitle,
			Date:       d.Date,
			ReadingRef: d.ReadingRef,
			Excerpt:    d.Excerpt,
			CoverImage: d.CoverImage,
		})
	}
	return listData{Devotionals: items, FromFallback: fromFallback}
}

// ServeList handles GET /devocionais.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	shared.WriteJSON(w, http.StatusOK, h.list(r))
}

// ServeAdminList handles GET /admin/devotionals. Same data as the public
// list; the admin page flags when the CMS was unreachable.
func (h *Handler) ServeAdminList(w http.ResponseWriter, r *http.Request) {
	shared.WriteJSON(w, http.StatusOK, h.list(r))
}

type showData struct {
	Devotional   models.Devotional `json:"devotional"`
	FromFallback bool              `json:"fromFallback"`
}

// ServeShow handles GET /devocionais/{slug}.
func (h *Handler) ServeShow(w http.ResponseWriter, r *http.Request) {
	slug := strings.TrimSpace(chi.URLParam(r, "slug"))
	if slug == "" {
		shared.WriteError(w, http.StatusNotFound, "Devotional not found.")
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Content(), h.Log, "devotional by slug")
	defer cancel()

	d, ok, fromFallback := h.Devotionals.BySlug(ctx, slug)
	if !ok {
		shared.WriteError(w, http.StatusNotFound, "Devotional not found.")
		return
	}
	shared.WriteJSON(w, http.StatusOK, showData{Devotional: d, FromFallback: fromFallback})
}
