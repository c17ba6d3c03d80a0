package devotionals

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/koinonia-app/koinonia/internal/domain/models"
	"go.uber.org/zap"
)

type fakeCMS struct {
	configured bool
	payload    string
	err        error
	lastVars   map[string]any
}

func (f *fakeCMS) Configured() bool { return f.configured }

func (f *fakeCMS) Query(_ context.Context, _ string, vars map[string]any, out any) error {
	f.lastVars = vars
	if f.err != nil {
		return f.err
	}
	return json.Unmarshal([]byte(f.payload), out)
}

func (f *fakeCMS) MediaURL(path string) string { return "https://cms.test" + path }

func TestList_FromCMS(t *testing.T) {
	cms := &fakeCMS{configured: true, payload: `{"devotionals":[
		{"slug":"a","title":"A","date":"2025-02-01","excerpt":"ea","coverImage":{"url":"/uploads/a.jpg"}},
		{"slug":"b","title":null,"date":null,"excerpt":"eb","coverImage":null}
	]}`}
	s := New(cms, zap.NewNop())
	s.now = func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) }

	list, fb := s.List(context.Background())
	if fb {
		t.Fatal("expected CMS result")
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 devotionals, got %d", len(list))
	}
	if list[0].CoverImage != "https://cms.test/uploads/a.jpg" {
		t.Errorf("cover: got %q", list[0].CoverImage)
	}
	if list[1].Title != "Devocional" || list[1].CoverImage != PlaceholderCover {
		t.Errorf("defaults not applied: %+v", list[1])
	}
	if list[1].Date != "2025-03-01" {
		t.Errorf("missing date should default to today, got %q", list[1].Date)
	}
	if list[0].Content != nil {
		t.Error("list entries should not carry content")
	}
}

func TestList_FallbackOnError(t *testing.T) {
	for _, cms := range []Querier{
		nil,
		&fakeCMS{configured: false},
		&fakeCMS{configured: true, err: errors.New("boom")},
	} {
		list, fb := New(cms, zap.NewNop()).List(context.Background())
		if !fb {
			t.Error("expected fallback")
		}
		if len(list) != 3 {
			t.Fatalf("expected 3 fallback devotionals, got %d", len(list))
		}
		if list[0].Slug != "quando-deus-parece-em-silencio" {
			t.Errorf("first fallback: got %q", list[0].Slug)
		}
	}
}

func TestBySlug(t *testing.T) {
	cms := &fakeCMS{configured: true, payload: `{"devotionals":[{"slug":"x","title":"X","excerpt":"só o resumo",
		"content":[{"type":"heading","children":[{"text":"ignored"}]}]}]}`}
	d, ok, fb := New(cms, zap.NewNop()).BySlug(context.Background(), "x")
	if !ok || fb {
		t.Fatalf("ok=%v fb=%v", ok, fb)
	}
	if cms.lastVars["slug"] != "x" {
		t.Errorf("slug variable: got %v", cms.lastVars)
	}
	if len(d.Content) != 1 || d.Content[0] != "só o resumo" {
		t.Errorf("content should fall back to excerpt, got %q", d.Content)
	}

	cms.payload = `{"devotionals":[]}`
	if _, ok, _ := New(cms, zap.NewNop()).BySlug(context.Background(), "x"); ok {
		t.Error("empty CMS result should be not found")
	}
}

func TestBySlug_Fallback(t *testing.T) {
	s := New(&fakeCMS{configured: true, err: errors.New("down")}, zap.NewNop())
	d, ok, fb := s.BySlug(context.Background(), "nascer-de-novo")
	if !ok || !fb {
		t.Fatalf("ok=%v fb=%v", ok, fb)
	}
	if len(d.Content) != 4 {
		t.Errorf("expected 4 paragraphs, got %d", len(d.Content))
	}

	d.Content[0] = "mutated"
	again, _, _ := s.BySlug(context.Background(), "nascer-de-novo")
	if again.Content[0] == "mutated" {
		t.Error("fallback must return copies")
	}

	if _, ok, _ := s.BySlug(context.Background(), "nope"); ok {
		t.Error("unknown slug should not be found")
	}
}

func TestBlocksToParagraphs(t *testing.T) {
	raw := json.RawMessage(`[
		{"type":"paragraph","children":[{"text":"Olá, "},{"text":"mundo"},{"bold":true}]},
		{"type":"paragraph","children":[{"text":"   "}]},
		{"type":"list","children":[{"text":"skip"}]},
		null,
		{"type":"paragraph","children":[{"text":"<b>negrito</b>"}]}
	]`)
	got := BlocksToParagraphs(raw)
	want := []string{"Olá, mundo", "negrito"}
	if len(got) != len(want) {
		t.Fatalf("got %q, want %q", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("[%d]: got %q, want %q", i, got[i], want[i])
		}
	}

	if BlocksToParagraphs(json.RawMessage(`"not blocks"`)) != nil {
		t.Error("non-array content should yield nil")
	}
}

func TestPickOfTheDay(t *testing.T) {
	now := time.Date(2025, 1, 1, 15, 0, 0, 0, time.UTC)
	d := func(slug, date string) models.Devotional { return models.Devotional{Slug: slug, Date: date} }

	tests := []struct {
		name string
		list []models.Devotional
		want string
	}{
		{"newest on or before today", []models.Devotional{d("old", "2024-12-30"), d("today", "2025-01-01"), d("future", "2025-01-05")}, "today"},
		{"all in future", []models.Devotional{d("f1", "2025-02-01"), d("f2", "2025-03-01")}, "f2"},
		{"no dates", []models.Devotional{d("first", ""), d("second", "")}, "first"},
		{"undated ignored", []models.Devotional{d("nodate", ""), d("past", "2024-06-01")}, "past"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PickOfTheDay(tt.list, now)
			if got == nil || got.Slug != tt.want {
				t.Errorf("got %+v, want %s", got, tt.want)
			}
		})
	}
	if PickOfTheDay(nil, now) != nil {
		t.Error("empty list should yield nil")
	}
}

func TestOfTheDay_Fallback(t *testing.T) {
	s := New(nil, zap.NewNop())
	s.now = func() time.Time { return time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC) }
	d, fb := s.OfTheDay(context.Background())
	if !fb || d == nil || d.Slug != "quando-o-dia-comeca-pesado" {
		t.Errorf("got %+v fb=%v", d, fb)
	}
}
