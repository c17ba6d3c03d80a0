// internal/app/store/readingruns/readingruns.go
package readingruns

import (
	"context"
	"errors"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/koinonia-app/koinonia/internal/app/system/apperr"
	"github.com/koinonia-app/koinonia/internal/app/system/progress"
	"github.com/koinonia-app/koinonia/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrNotFound is returned when no run matches (or it belongs to someone else).
	ErrNotFound = apperr.NotFoundError("Reading plan run not found.")
	// ErrAlreadyActive is returned when reopening a run would leave two
	// runs of the same plan in progress.
	ErrAlreadyActive = apperr.ConflictError("Another run of this plan is already in progress.")
)

type Store struct {
	c   *mongo.Collection
	now func() time.Time
}

func New(db *mongo.Database) *Store {
	return &Store{
		c:   db.Collection("reading_plan_runs"),
		now: func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) findOne(ctx context.Context, filter bson.M, opts ...*options.FindOneOptions) (*models.ReadingPlanRun, error) {
	var r models.ReadingPlanRun
	if err := s.c.FindOne(ctx, filter, opts...).Decode(&r); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &r, nil
}

// Active returns the user's IN_PROGRESS run of the plan.
func (s *Store) Active(ctx context.Context, userID primitive.ObjectID, planSlug string) (*models.ReadingPlanRun, error) {
	return s.findOne(ctx, bson.M{
		"user_id":   userID,
		"plan_slug": planSlug,
		"status":    models.RunInProgress,
	})
}

func (s *Store) lastIteration(ctx context.Context, userID primitive.ObjectID, planSlug string) (int, error) {
	r, err := s.findOne(ctx,
		bson.M{"user_id": userID, "plan_slug": planSlug},
		options.FindOne().
			SetSort(bson.D{{Key: "iteration", Value: -1}}).
			SetProjection(bson.M{"iteration": 1}))
	if errors.Is(err, ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return r.Iteration, nil
}

// Join starts a run of the plan for the user, or returns the run already in
// progress. created reports whether a new run was inserted.
//
// Two concurrent joins race on the partial unique index over
// (user_id, plan_slug) for IN_PROGRESS runs; the loser re-reads and returns
// the winner's run.
func (s *Store) Join(ctx context.Context, userID primitive.ObjectID, planSlug string, override, planDuration *int) (run *models.ReadingPlanRun, created bool, err error) {
	active, err := s.Active(ctx, userID, planSlug)
	if err == nil {
		return active, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, false, err
	}

	last, err := s.lastIteration(ctx, userID, planSlug)
	if err != nil {
		return nil, false, err
	}

	r := progress.NewRun(userID, planSlug, last, override, planDuration, s.now())
	r.ID = primitive.NewObjectID()
	if _, err := s.c.InsertOne(ctx, r); err != nil {
		if wafflemongo.IsDup(err) {
			winner, rerr := s.Active(ctx, userID, planSlug)
			if rerr != nil {
				return nil, false, rerr
			}
			return winner, false, nil
		}
		return nil, false, err
	}
	return &r, true, nil
}

// Get loads a run by id.
func (s *Store) Get(ctx context.Context, id primitive.ObjectID) (*models.ReadingPlanRun, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

// Advance moves the user's run to nextDay and persists the result.
// Runs owned by someone else are reported as ErrNotFound.
func (s *Store) Advance(ctx context.Context, userID, runID primitive.ObjectID, nextDay int) (*models.ReadingPlanRun, error) {
	cur, err := s.findOne(ctx, bson.M{"_id": runID, "user_id": userID})
	if err != nil {
		return nil, err
	}

	next, err := progress.Advance(*cur, nextDay, s.now())
	if err != nil {
		return nil, err
	}

	_, err = s.c.UpdateOne(ctx, bson.M{"_id": runID}, bson.M{"$set": bson.M{
		"current_day":  next.CurrentDay,
		"total_days":   next.TotalDays,
		"status":       next.Status,
		"completed_at": next.CompletedAt,
		"updated_at":   next.UpdatedAt,
	}})
	if err != nil {
		if wafflemongo.IsDup(err) {
			return nil, ErrAlreadyActive
		}
		return nil, err
	}
	return &next, nil
}

// ListForUser returns all of a user's runs, by plan then newest iteration.
func (s *Store) ListForUser(ctx context.Context, userID primitive.ObjectID) ([]models.ReadingPlanRun, error) {
	cur, err := s.c.Find(ctx, bson.M{"user_id": userID}, options.Find().SetSort(bson.D{
		{Key: "plan_slug", Value: 1}, {Key: "iteration", Value: -1},
	}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.ReadingPlanRun{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SummariesForUser folds the user's runs into one summary per plan slug.
func (s *Store) SummariesForUser(ctx context.Context, userID primitive.ObjectID) (map[string]progress.Summary, error) {
	runs, err := s.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	byPlan := map[string][]models.ReadingPlanRun{}
	for _, r := range runs {
		byPlan[r.PlanSlug] = append(byPlan[r.PlanSlug], r)
	}
	out := make(map[string]progress.Summary, len(byPlan))
	for slug, rs := range byPlan {
		out[slug] = progress.Summarize(rs)
	}
	return out, nil
}

// SummaryForPlan folds the user's runs of one plan.
func (s *Store) SummaryForPlan(ctx context.Context, userID primitive.ObjectID, planSlug string) (progress.Summary, error) {
	cur, err := s.c.Find(ctx, bson.M{"user_id": userID, "plan_slug": planSlug})
	if err != nil {
		return progress.Summary{}, err
	}
	defer cur.Close(ctx)

	var runs []models.ReadingPlanRun
	if err := cur.All(ctx, &runs); err != nil {
		return progress.Summary{}, err
	}
	return progress.Summarize(runs), nil
}
