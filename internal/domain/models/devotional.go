// internal/domain/models/devotional.go
package models

// Devotional is a daily reading, served from the CMS or the embedded
// fallback set. Date is an ISO day (YYYY-MM-DD) and may be empty.
type Devotional struct {
	Slug       string   `json:"slug"`
	Title      string   `json:"title"`
	Subtitle   string   `json:"subtitle,omitempty"`
	Date       string   `json:"date,omitempty"`
	ReadingRef string   `json:"readingRef,omitempty"`
	Highlight  string   `json:"highlight,omitempty"`
	Excerpt    string   `json:"excerpt"`
	CoverImage string   `json:"coverImage"`
	Content    []string `json:"content"`
}
