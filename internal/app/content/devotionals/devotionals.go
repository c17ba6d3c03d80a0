// Package devotionals serves devotionals from the CMS, falling back to the
// set embedded in the binary when the CMS is unavailable.
package devotionals

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/koinonia-app/koinonia/internal/app/resources"
	"github.com/koinonia-app/koinonia/internal/app/system/htmlsanitize"
	"github.com/koinonia-app/koinonia/internal/domain/models"
	"go.uber.org/zap"
)

const (
	PlaceholderCover = "/devocionais/placeholder.jpg"
	defaultTitle     = "Devocional"
	dateLayout       = "2006-01-02"
)

// Querier is the CMS surface used here; *cms.Client satisfies it.
type Querier interface {
	Configured() bool
	Query(ctx context.Context, query string, vars map[string]any, out any) error
	MediaURL(path string) string
}

const listQuery = `query ListDevotionals {
  devotionals(sort: "date:desc") {
    documentId title slug date readingRef subtitle highlight excerpt
    coverImage { url }
  }
}`

const bySlugQuery = `query DevotionalBySlug($slug: String!) {
  devotionals(filters: { slug: { eq: $slug } }) {
    documentId title slug date readingRef subtitle highlight excerpt content
    coverImage { url }
  }
}`

type media struct {
	URL *string `json:"url"`
}

type rawDevotional struct {
	Slug       *string         `json:"slug"`
	Title      *string         `json:"title"`
	Subtitle   *string         `json:"subtitle"`
	Date       *string         `json:"date"`
	ReadingRef *string         `json:"readingRef"`
	Highlight  *string         `json:"highlight"`
	Excerpt    *string         `json:"excerpt"`
	Content    json.RawMessage `json:"content"`
	CoverImage *media          `json:"coverImage"`
}

type listData struct {
	Devotionals []rawDevotional `json:"devotionals"`
}

// Service reads devotionals.
type Service struct {
	cms Querier
	log *zap.Logger
	now func() time.Time
}

// New builds a Service. cms may be nil, which always uses the fallback.
func New(cms Querier, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{cms: cms, log: logger, now: time.Now}
}

func (s *Service) cmsReady() bool {
	return s.cms != nil && s.cms.Configured()
}

// List returns every devotional without content, newest first. The second
// result is true when the embedded set was served.
func (s *Service) List(ctx context.Context) ([]models.Devotional, bool) {
	if s.cmsReady() {
		var data listData
		err := s.cms.Query(ctx, listQuery, nil, &data)
		if err == nil {
			out := make([]models.Devotional, 0, len(data.Devotionals))
			for _, d := range data.Devotionals {
				v := s.fromRaw(d, "")
				v.Content = nil
				out = append(out, v)
			}
			return out, false
		}
		s.log.Error("list devotionals from cms failed; using fallback", zap.Error(err))
	}

	fb := fallback()
	out := make([]models.Devotional, 0, len(fb))
	for _, d := range fb {
		d.Content = nil
		out = append(out, d)
	}
	return out, true
}

// BySlug returns one devotional with its content. ok is false when no
// devotional has that slug.
func (s *Service) BySlug(ctx context.Context, slug string) (d models.Devotional, ok bool, fromFallback bool) {
	if s.cmsReady() {
		var data listData
		err := s.cms.Query(ctx, bySlugQuery, map[string]any{"slug": slug}, &data)
		if err == nil {
			if len(data.Devotionals) == 0 {
				return models.Devotional{}, false, false
			}
			return s.fromRaw(data.Devotionals[0], slug), true, false
		}
		s.log.Error("get devotional from cms failed; using fallback",
			zap.String("slug", slug), zap.Error(err))
	}

	for _, d := range fallback() {
		if d.Slug == slug {
			return d, true, true
		}
	}
	return models.Devotional{}, false, true
}

// OfTheDay picks the devotional to feature on dashboards.
func (s *Service) OfTheDay(ctx context.Context) (*models.Devotional, bool) {
	list, fb := s.List(ctx)
	return PickOfTheDay(list, s.now()), fb
}

// PickOfTheDay returns the newest devotional dated on or before today.
// When every date is in the future it returns the newest overall, and
// when none has a date it returns the first. Nil for an empty list.
func PickOfTheDay(list []models.Devotional, now time.Time) *models.Devotional {
	if len(list) == 0 {
		return nil
	}
	today := now.UTC().Format(dateLayout)

	var dated, pastOrToday []models.Devotional
	for _, d := range list {
		if d.Date == "" {
			continue
		}
		dated = append(dated, d)
		if d.Date <= today {
			pastOrToday = append(pastOrToday, d)
		}
	}
	if len(dated) == 0 {
		d := list[0]
		return &d
	}
	pool := pastOrToday
	if len(pool) == 0 {
		pool = dated
	}
	sort.SliceStable(pool, func(i, j int) bool { return pool[i].Date > pool[j].Date })
	d := pool[0]
	return &d
}

func (s *Service) fromRaw(r rawDevotional, slug string) models.Devotional {
	d := models.Devotional{
		Slug:       str(r.Slug, slug),
		Title:      str(r.Title, defaultTitle),
		Subtitle:   str(r.Subtitle, ""),
		Date:       str(r.Date, s.now().UTC().Format(dateLayout)),
		ReadingRef: str(r.ReadingRef, ""),
		Highlight:  str(r.Highlight, ""),
		Excerpt:    str(r.Excerpt, ""),
		CoverImage: PlaceholderCover,
	}
	if r.CoverImage != nil && r.CoverImage.URL != nil && *r.CoverImage.URL != "" {
		d.CoverImage = s.cms.MediaURL(*r.CoverImage.URL)
	}
	d.Content = BlocksToParagraphs(r.Content)
	if len(d.Content) == 0 {
		d.Content = []string{d.Excerpt}
	}
	return d
}

type block struct {
	Type     string `json:"type"`
	Children []struct {
		Text *string `json:"text"`
	} `json:"children"`
}

// BlocksToParagraphs flattens CMS rich-text blocks into plain paragraphs.
// Only paragraph blocks count; their child texts are joined, stripped of
// markup, and empty results are dropped. Anything that is not a block
// array yields nil.
func BlocksToParagraphs(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}
	var blocks []*block
	if err := json.Unmarshal(raw, &blocks); err != nil {
		return nil
	}
	var out []string
	for _, b := range blocks {
		if b == nil || b.Type != "paragraph" || b.Children == nil {
			continue
		}
		var sb strings.Builder
		for _, c := range b.Children {
			if c.Text != nil {
				sb.WriteString(*c.Text)
			}
		}
		if p := htmlsanitize.PlainText(sb.String()); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func str(p *string, def string) string {
	if p == nil {
		return def
	}
	return *p
}

var (
	fallbackOnce sync.Once
	fallbackSet  []models.Devotional
	fallbackErr  error
)

// LoadFallback parses the embedded devotionals. Startup calls it so a bad
// build fails before serving.
func LoadFallback() error {
	fallbackOnce.Do(func() {
		b, err := resources.FS.ReadFile(resources.DevotionalsFile)
		if err != nil {
			fallbackErr = fmt.Errorf("read fallback devotionals: %w", err)
			return
		}
		if err := json.Unmarshal(b, &fallbackSet); err != nil {
			fallbackErr = fmt.Errorf("parse fallback devotionals: %w", err)
		}
	})
	return fallbackErr
}

// fallback returns copies of the embedded devotionals.
func fallback() []models.Devotional {
	if LoadFallback() != nil {
		return nil
	}
	out := make([]models.Devotional, len(fallbackSet))
	for i, d := range fallbackSet {
		d.Content = append([]string(nil), d.Content...)
		out[i] = d
	}
	return out
}
