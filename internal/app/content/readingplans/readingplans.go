// Package readingplans lists reading plans from the CMS, falling back to
// the embedded catalog, and decorates them with a user's progress.
package readingplans

import (
	"context"
	"encoding/json"
	"sort"
	"strings"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/koinonia-app/koinonia/internal/app/content/devotionals"
	"github.com/koinonia-app/koinonia/internal/app/resources/plancatalog"
	"github.com/koinonia-app/koinonia/internal/app/system/progress"
	"github.com/koinonia-app/koinonia/internal/domain/models"
	"go.uber.org/zap"
)

// DevotionalRef is a devotional attached to a plan.
type DevotionalRef struct {
	ID    string `json:"id,omitempty"`
	Title string `json:"title"`
	Slug  string `json:"slug"`
	Date  string `json:"date,omitempty"`
}

// Plan is a reading plan as listed to users.
type Plan struct {
	ID           string          `json:"id"`
	Slug         string          `json:"slug"`
	Title        string          `json:"title"`
	Description  string          `json:"description,omitempty"`
	DurationDays *int            `json:"durationDays"`
	CreatedAt    string          `json:"createdAt,omitempty"`
	Devotionals  []DevotionalRef `json:"devotionals"`
}

// TotalDays is the plan length used for progress: the duration when set,
// else the number of devotionals.
func (p Plan) TotalDays() int {
	if p.DurationDays != nil && *p.DurationDays > 0 {
		return *p.DurationDays
	}
	return len(p.Devotionals)
}

// WithProgress is a plan plus the caller's progress on it.
type WithProgress struct {
	Plan
	Progress progress.Summary `json:"progressSummary"`
	Percent  int              `json:"progressPercent"`
}

const plansQuery = `query ReadingPlans {
  readingPlans(sort: "title:asc") {
    documentId title slug description durationDays createdAt
    devotionals { documentId title slug date }
  }
}`

const planBySlugQuery = `query ReadingPlanBySlug($slug: String!) {
  readingPlans(filters: { slug: { eq: $slug } }) {
    documentId title slug description durationDays createdAt
    devotionals { documentId title slug date }
  }
}`

type rawDevotional struct {
	DocumentID string  `json:"documentId"`
	Title      string  `json:"title"`
	Slug       string  `json:"slug"`
	Date       *string `json:"date"`
}

type rawPlan struct {
	DocumentID   string          `json:"documentId"`
	Title        string          `json:"title"`
	Slug         string          `json:"slug"`
	Description  json.RawMessage `json:"description"`
	DurationDays *int            `json:"durationDays"`
	CreatedAt    *string         `json:"createdAt"`
	Devotionals  json.RawMessage `json:"devotionals"`
}

type plansData struct {
	ReadingPlans []rawPlan `json:"readingPlans"`
}

// Service reads plans.
type Service struct {
	cms devotionals.Querier
	log *zap.Logger
}

// New builds a Service. cms may be nil, which always uses the catalog.
func New(cms devotionals.Querier, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{cms: cms, log: logger}
}

// List returns all plans ordered by title. The second result is true when
// the embedded catalog was served.
func (s *Service) List(ctx context.Context) ([]Plan, bool) {
	if s.cms != nil && s.cms.Configured() {
		var data plansData
		err := s.cms.Query(ctx, plansQuery, nil, &data)
		if err == nil {
			out := make([]Plan, 0, len(data.ReadingPlans))
			for _, rp := range data.ReadingPlans {
				out = append(out, fromRaw(rp))
			}
			return out, false
		}
		s.log.Error("list reading plans from cms failed; using catalog", zap.Error(err))
	}
	return catalogPlans(), true
}

// BySlug returns one plan. ok is false when no plan has the slug.
func (s *Service) BySlug(ctx context.Context, slug string) (p Plan, ok bool, fromFallback bool) {
	if s.cms != nil && s.cms.Configured() {
		var data plansData
		err := s.cms.Query(ctx, planBySlugQuery, map[string]any{"slug": slug}, &data)
		if err == nil {
			if len(data.ReadingPlans) == 0 {
				return Plan{}, false, false
			}
			return fromRaw(data.ReadingPlans[0]), true, false
		}
		s.log.Error("get reading plan from cms failed; using catalog",
			zap.String("slug", slug), zap.Error(err))
	}
	def, ok := plancatalog.BySlug(slug)
	if !ok {
		return Plan{}, false, true
	}
	return fromDefinition(def), true, true
}

// Decorate joins plans with per-slug progress summaries. Plans the user
// never joined get an empty summary.
//
// The percent uses the active run's day over the run's total, else the
// plan's length. Without an active run it is 0.
func Decorate(plans []Plan, summaries map[string]progress.Summary) []WithProgress {
	out := make([]WithProgress, 0, len(plans))
	for _, p := range plans {
		sum := summaries[p.Slug]
		out = append(out, WithProgress{Plan: p, Progress: sum, Percent: percent(p, sum)})
	}
	return out
}

func percent(p Plan, sum progress.Summary) int {
	if sum.ActiveRun == nil {
		return 0
	}
	total := p.TotalDays()
	if sum.ActiveRun.TotalDays != nil && *sum.ActiveRun.TotalDays > 0 {
		total = *sum.ActiveRun.TotalDays
	}
	return progress.PercentOf(sum.ActiveRun.CurrentDay, total)
}

func fromRaw(rp rawPlan) Plan {
	p := Plan{
		ID:           rp.DocumentID,
		Slug:         rp.Slug,
		Title:        rp.Title,
		Description:  description(rp.Description),
		DurationDays: rp.DurationDays,
		Devotionals:  sortDevotionals(rp.Devotionals),
	}
	if rp.CreatedAt != nil {
		p.CreatedAt = *rp.CreatedAt
	}
	return p
}

// description accepts either a plain string or rich-text blocks.
func description(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	return strings.Join(devotionals.BlocksToParagraphs(raw), "\n\n")
}

// sortDevotionals accepts a list or a single object and orders by date.
// Entries without a date keep their relative position.
func sortDevotionals(raw json.RawMessage) []DevotionalRef {
	out := []DevotionalRef{}
	if len(raw) == 0 || string(raw) == "null" {
		return out
	}
	var list []*rawDevotional
	if err := json.Unmarshal(raw, &list); err != nil {
		var one rawDevotional
		if err := json.Unmarshal(raw, &one); err != nil {
			return out
		}
		list = []*rawDevotional{&one}
	}
	for _, d := range list {
		if d == nil {
			continue
		}
		ref := DevotionalRef{ID: d.DocumentID, Title: d.Title, Slug: d.Slug}
		if d.Date != nil {
			ref.Date = *d.Date
		}
		out = append(out, ref)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date == "" || out[j].Date == "" {
			return false
		}
		return out[i].Date < out[j].Date
	})
	return out
}

func catalogPlans() []Plan {
	defs := plancatalog.List()
	out := make([]Plan, 0, len(defs))
	for _, d := range defs {
		out = append(out, fromDefinition(d))
	}
	sort.SliceStable(out, func(i, j int) bool {
		return text.Fold(out[i].Title) < text.Fold(out[j].Title)
	})
	return out
}

func fromDefinition(d models.ReadingPlanDefinition) Plan {
	p := Plan{
		ID:           d.Slug,
		Slug:         d.Slug,
		Title:        d.Title,
		Description:  d.Description,
		DurationDays: d.DurationDays,
		Devotionals:  []DevotionalRef{},
	}
	for _, day := range d.Days {
		if day.DevotionalSlug != "" {
			p.Devotionals = append(p.Devotionals, DevotionalRef{Title: day.Title, Slug: day.DevotionalSlug})
		}
	}
	return p
}
