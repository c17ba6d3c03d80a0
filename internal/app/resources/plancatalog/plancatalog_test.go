package plancatalog

import "testing"

func TestValidate(t *testing.T) {
	if err := Validate(); err != nil {
		t.Fatalf("embedded catalog: %v", err)
	}
}

func TestList(t *testing.T) {
	ps := List()
	if len(ps) != 2 {
		t.Fatalf("expected 2 plans, got %d", len(ps))
	}
	if ps[0].Slug != "reading-plan" || ps[1].Slug != "caminho-de-emaus" {
		t.Errorf("unexpected order: %q, %q", ps[0].Slug, ps[1].Slug)
	}

	ps[0].Title = "changed"
	if List()[0].Title == "changed" {
		t.Error("List must return a copy")
	}
}

func TestBySlug(t *testing.T) {
	p, ok := BySlug("caminho-de-emaus")
	if !ok {
		t.Fatal("caminho-de-emaus not found")
	}
	if p.DurationDays == nil || *p.DurationDays != 7 {
		t.Fatalf("DurationDays: got %v, want 7", p.DurationDays)
	}
	if len(p.Days) != 7 {
		t.Fatalf("expected 7 days, got %d", len(p.Days))
	}
	for i, d := range p.Days {
		if d.Day != i+1 {
			t.Errorf("day %d numbered %d", i+1, d.Day)
		}
		if d.BibleRef == nil || d.BibleRef.Version != "nvi" {
			t.Errorf("day %d: missing nvi bible ref", d.Day)
		}
	}
	if p.Days[0].DevotionalSlug != "quando-o-dia-comeca-pesado" {
		t.Errorf("day 1 devotional: got %q", p.Days[0].DevotionalSlug)
	}
	if p.Days[6].BibleRef.Book != "at" || p.Days[6].BibleRef.Chapter != 1 {
		t.Errorf("day 7 ref: got %+v", p.Days[6].BibleRef)
	}

	if _, ok := BySlug("nope"); ok {
		t.Error("unknown slug should not be found")
	}
}

func TestDuration(t *testing.T) {
	if d := Duration("reading-plan"); d == nil || *d != 1 {
		t.Errorf("reading-plan duration: got %v, want 1", d)
	}
	if d := Duration("nope"); d != nil {
		t.Errorf("unknown plan duration: got %v, want nil", *d)
	}
}
