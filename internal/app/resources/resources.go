// internal/app/resources/resources.go
package resources

import "embed"

// FS holds the content compiled into the binary: the reading-plan catalog
// and the devotionals served when the CMS is unreachable.
//
//go:embed data/*.json
var FS embed.FS

const (
	ReadingPlansFile = "data/reading_plans.json"
	DevotionalsFile  = "data/devotionals.json"
)
