// Package plancatalog serves the reading plans compiled into the binary.
// The catalog backs /planos and is the fallback when the CMS has no plans.
package plancatalog

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/koinonia-app/koinonia/internal/app/resources"
	"github.com/koinonia-app/koinonia/internal/domain/models"
)

var (
	loadOnce sync.Once
	plans    []models.ReadingPlanDefinition
	bySlug   map[string]int
	loadErr  error
)

func load() {
	b, err := resources.FS.ReadFile(resources.ReadingPlansFile)
	if err != nil {
		loadErr = fmt.Errorf("read plan catalog: %w", err)
		return
	}
	if err := json.Unmarshal(b, &plans); err != nil {
		loadErr = fmt.Errorf("parse plan catalog: %w", err)
		return
	}
	bySlug = make(map[string]int, len(plans))
	for i, p := range plans {
		if p.Slug == "" {
			loadErr = fmt.Errorf("plan catalog entry %d has no slug", i)
			return
		}
		if _, dup := bySlug[p.Slug]; dup {
			loadErr = fmt.Errorf("plan catalog has duplicate slug %q", p.Slug)
			return
		}
		bySlug[p.Slug] = i
	}
}

// Validate parses the embedded catalog and reports any problem. Startup
// calls it so a broken build fails fast instead of serving empty pages.
func Validate() error {
	loadOnce.Do(load)
	return loadErr
}

// List returns every plan in catalog order. The slice is a copy.
func List() []models.ReadingPlanDefinition {
	if Validate() != nil {
		return nil
	}
	return append([]models.ReadingPlanDefinition(nil), plans...)
}

// BySlug looks a plan up by slug.
func BySlug(slug string) (models.ReadingPlanDefinition, bool) {
	if Validate() != nil {
		return models.ReadingPlanDefinition{}, false
	}
	i, ok := bySlug[slug]
	if !ok {
		return models.ReadingPlanDefinition{}, false
	}
	return plans[i], true
}

// Duration returns the plan's day count for joins, or nil for unknown
// plans and plans without a fixed length.
func Duration(slug string) *int {
	p, ok := BySlug(slug)
	if !ok || p.DurationDays == nil {
		return nil
	}
	d := *p.DurationDays
	return &d
}
