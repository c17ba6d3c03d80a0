// internal/domain/models/reading_plan.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Reading plan run statuses.
const (
	RunInProgress = "IN_PROGRESS"
	RunCompleted  = "COMPLETED"
)

// ReadingPlanRun is one pass of a user through a reading plan.
//
// At most one run per (user, plan) may be IN_PROGRESS; a partial unique
// index on reading_plan_runs enforces it. When TotalDays is set,
// CurrentDay never exceeds it.
type ReadingPlanRun struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID      primitive.ObjectID `bson:"user_id" json:"userId"`
	PlanSlug    string             `bson:"plan_slug" json:"planSlug"`
	Iteration   int                `bson:"iteration" json:"iteration"`
	Status      string             `bson:"status" json:"status"`
	CurrentDay  int                `bson:"current_day" json:"currentDay"`
	TotalDays   *int               `bson:"total_days,omitempty" json:"totalDays"`
	StartedAt   time.Time          `bson:"started_at" json:"startedAt"`
	CompletedAt *time.Time         `bson:"completed_at" json:"completedAt"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updatedAt"`
}

// BibleRef points at a chapter in the Bible text service.
type BibleRef struct {
	Version string `json:"version"`
	Book    string `json:"book"`
	Chapter int    `json:"chapter"`
}

// ReadingPlanDay is one day of a reading plan definition.
type ReadingPlanDay struct {
	Day            int       `json:"day"`
	Title          string    `json:"title"`
	Reading        string    `json:"reading"`
	BibleRef       *BibleRef `json:"bibleRef,omitempty"`
	DevotionalSlug string    `json:"devotionalSlug,omitempty"`
}

// ReadingPlanDefinition describes a plan in the static catalog.
type ReadingPlanDefinition struct {
	Slug         string           `json:"slug"`
	Title        string           `json:"title"`
	Description  string           `json:"description"`
	DurationDays *int             `json:"durationDays,omitempty"`
	Highlight    string           `json:"highlight,omitempty"`
	Audience     string           `json:"audience,omitempty"`
	Days         []ReadingPlanDay `json:"days"`
}
