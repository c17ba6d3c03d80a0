// Package progress holds the reading-plan run state machine.
//
// A run is NOT_STARTED (no document), IN_PROGRESS, or COMPLETED. The
// functions here compute transitions; persistence lives in
// store/readingruns.
package progress

import (
	"math"
	"time"

	"github.com/koinonia-app/koinonia/internal/app/system/apperr"
	"github.com/koinonia-app/koinonia/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// NewRun builds the first-day run for a join. iteration is the last
// iteration for this (user, plan) plus one. totalDays is the override when
// given, else the plan's duration, else nil.
func NewRun(userID primitive.ObjectID, planSlug string, lastIteration int, override, planDuration *int, now time.Time) models.ReadingPlanRun {
	total := override
	if total == nil {
		total = planDuration
	}
	if total != nil {
		v := *total
		total = &v
	}
	return models.ReadingPlanRun{
		UserID:     userID,
		PlanSlug:   planSlug,
		Iteration:  lastIteration + 1,
		Status:     models.RunInProgress,
		CurrentDay: 1,
		TotalDays:  total,
		StartedAt:  now,
		UpdatedAt:  now,
	}
}

// Advance applies a requested next day to run and returns the new state.
//
// The effective total is run.TotalDays, or nextDay when the run has none.
// The day is clamped to the total. Reaching the total completes the run and
// stamps CompletedAt; anything below it returns the run to IN_PROGRESS and
// clears CompletedAt.
func Advance(run models.ReadingPlanRun, nextDay int, now time.Time) (models.ReadingPlanRun, error) {
	if nextDay < 1 {
		return run, apperr.ValidationError("nextDay must be at least 1.")
	}

	total := nextDay
	if run.TotalDays != nil {
		total = *run.TotalDays
	}
	day := nextDay
	if day > total {
		day = total
	}

	out := run
	out.CurrentDay = day
	out.TotalDays = &total
	out.UpdatedAt = now
	if day >= total {
		out.Status = models.RunCompleted
		t := now
		out.CompletedAt = &t
	} else {
		out.Status = models.RunInProgress
		out.CompletedAt = nil
	}
	return out, nil
}

// Summary is the per-plan progress shown on plan pages.
type Summary struct {
	ActiveRun     *models.ReadingPlanRun `json:"activeRun"`
	TotalRuns     int                    `json:"totalRuns"`
	CompletedRuns int                    `json:"completedRuns"`
}

// Summarize folds a user's runs for one plan.
func Summarize(runs []models.ReadingPlanRun) Summary {
	var s Summary
	for i := range runs {
		r := runs[i]
		s.TotalRuns++
		switch r.Status {
		case models.RunCompleted:
			s.CompletedRuns++
		case models.RunInProgress:
			if s.ActiveRun == nil || r.Iteration > s.ActiveRun.Iteration {
				s.ActiveRun = &r
			}
		}
	}
	return s
}

// Percent is the reading position as a share of the plan. Runs without a
// known total report 0 until completed.
func Percent(run models.ReadingPlanRun) int {
	if run.Status == models.RunCompleted {
		return 100
	}
	if run.TotalDays == nil {
		return 0
	}
	return PercentOf(run.CurrentDay, *run.TotalDays)
}

// PercentOf is day/total as a rounded percentage capped at 100, or 0 when
// total is not positive.
func PercentOf(day, total int) int {
	if total <= 0 || day <= 0 {
		return 0
	}
	p := int(math.Round(float64(day) / float64(total) * 100))
	if p > 100 {
		p = 100
	}
	return p
}
