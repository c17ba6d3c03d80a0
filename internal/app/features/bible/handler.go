// internal/app/features/bible/handler.go
package bible

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/koinonia-app/koinonia/internal/app/features/shared"
	biblesvc "github.com/koinonia-app/koinonia/internal/app/system/bible"
	"github.com/koinonia-app/koinonia/internal/app/system/timeouts"
	"go.uber.org/zap"
)

const (
	// APIDefaultVersion is used by /api/bible when no version is given.
	APIDefaultVersion = "acf"
	// Page defaults for /biblia.
	PageDefaultBook    = "jo"
	PageDefaultChapter = 1

	fetchFailed = "failed to fetch bible text"
)

// Source is the Bible text service.
type Source interface {
	DefaultVersion() string
	GetChapter(ctx context.Context, version, book string, chapter int) (*biblesvc.Chapter, error)
	Random(ctx context.Context, version string) (*biblesvc.RandomVerse, error)
}

type Handler struct {
	Bible Source
	Log   *zap.Logger
}

func NewHandler(src Source, logger *zap.Logger) *Handler {
	return &Handler{Bible: src, Log: logger}
}

type passage struct {
	Book    biblesvc.Book        `json:"book"`
	Chapter biblesvc.ChapterInfo `json:"chapter"`
	Verses  []biblesvc.Verse     `json:"verses"`
}

func toPassage(ch biblesvc.Chapter) passage {
	return passage{Book: ch.Book, Chapter: ch.Chapter, Verses: ch.Verses}
}

// ServeAPI handles GET /api/bible?version&book&chapter&verse.
func (h *Handler) ServeAPI(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	version := strings.TrimSpace(q.Get("version"))
	if version == "" {
		version = APIDefaultVersion
	}
	book := strings.TrimSpace(q.Get("book"))
	chapterParam := strings.TrimSpace(q.Get("chapter"))
	if book == "" || chapterParam == "" {
		shared.WriteError(w, http.StatusBadRequest, "book and chapter are required.")
		return
	}
	chapter, err := strconv.Atoi(chapterParam)
	if err != nil || chapter < 1 {
		shared.WriteError(w, http.StatusBadRequest, "Invalid chapter.")
		return
	}
	verse, _ := strconv.Atoi(strings.TrimSpace(q.Get("verse")))

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Content(), h.Log, "bible chapter")
	defer cancel()

	ch, err := h.Bible.GetChapter(ctx, version, book, chapter)
	if err != nil {
		h.Log.Error("bible: get chapter", zap.String("version", version), zap.String("book", book),
			zap.Int("chapter", chapter), zap.Error(err))
		shared.WriteError(w, http.StatusInternalServerError, fetchFailed)
		return
	}
	shared.WriteJSON(w, http.StatusOK, toPassage(ch.Only(verse)))
}

// ServeRandom handles GET /api/bible/random?version.
func (h *Handler) ServeRandom(w http.ResponseWriter, r *http.Request) {
	version := strings.TrimSpace(r.URL.Query().Get("version"))
	if version == "" {
		version = h.Bible.DefaultVersion()
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Content(), h.Log, "bible random verse")
	defer cancel()

	v, err := h.Bible.Random(ctx, version)
	if err != nil {
		h.Log.Error("bible: random verse", zap.String("version", version), zap.Error(err))
		shared.WriteError(w, http.StatusInternalServerError, fetchFailed)
		return
	}
	shared.WriteJSON(w, http.StatusOK, v)
}

type pageData struct {
	Version string   `json:"version"`
	Book    string   `json:"book"`
	Chapter int      `json:"chapter"`
	Verse   int      `json:"verse,omitempty"`
	Passage *passage `json:"passage"`
	Error   string   `json:"error,omitempty"`
}

// ServePage handles GET /biblia. Missing or invalid parameters fall back to
// the page defaults; an upstream failure is reported inside the page.
func (h *Handler) ServePage(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	d := pageData{
		Version: strings.TrimSpace(q.Get("version")),
		Book:    strings.TrimSpace(q.Get("book")),
		Chapter: PageDefaultChapter,
	}
	if d.Version == "" {
		d.Version = h.Bible.DefaultVersion()
	}
	if d.Book == "" {
		d.Book = PageDefaultBook
	}
	if c, err := strconv.Atoi(q.Get("chapter")); err == nil && c >= 1 {
		d.Chapter = c
	}
	if v, err := strconv.Atoi(q.Get("verse")); err == nil && v >= 1 {
		d.Verse = v
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Content(), h.Log, "bible page")
	defer cancel()

	ch, err := h.Bible.GetChapter(ctx, d.Version, d.Book, d.Chapter)
	if err != nil {
		h.Log.Warn("bible page: get chapter", zap.Error(err))
		d.Error = fetchFailed
	} else {
		p := toPassage(ch.Only(d.Verse))
		d.Passage = &p
	}
	shared.WriteJSON(w, http.StatusOK, d)
}
