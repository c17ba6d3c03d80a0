package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"github.com/koinonia-app/koinonia/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx, ok := r.Context().Value(chi.RouteCtxKey).(*chi.Context)
	if !ok || rctx == nil {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser inserts a user with the given role. The password hash is a
// fixed placeholder; use the user store when a real hash is needed.
func (f *Fixtures) CreateUser(ctx context.Context, name, email, role string, leaderID *primitive.ObjectID) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	u := models.User{
		ID:           primitive.NewObjectID(),
		FullName:     name,
		FullNameCI:   text.Fold(name),
		Email:        email,
		PasswordHash: "x",
		Role:         role,
		LeaderID:     leaderID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if _, err := f.db.Collection("users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return u
}

// CreateAdmin creates an ADMIN user.
func (f *Fixtures) CreateAdmin(ctx context.Context, name, email string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, name, email, models.RoleAdmin, nil)
}

// CreateLeader creates a LEADER user.
func (f *Fixtures) CreateLeader(ctx context.Context, name, email string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, name, email, models.RoleLeader, nil)
}

// CreateMember creates a MEMBER, optionally attached to a leader.
func (f *Fixtures) CreateMember(ctx context.Context, name, email string, leaderID *primitive.ObjectID) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, name, email, models.RoleMember, leaderID)
}

// SetLastActivity overwrites a user's last_activity_at.
func (f *Fixtures) SetLastActivity(ctx context.Context, userID primitive.ObjectID, at time.Time) {
	f.t.Helper()
	_, err := f.db.Collection("users").UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$set": bson.M{"last_activity_at": at}})
	if err != nil {
		f.t.Fatalf("failed to set last activity: %v", err)
	}
}

// CreatePrayerRequest inserts a prayer request.
func (f *Fixtures) CreatePrayerRequest(ctx context.Context, userID primitive.ObjectID, leaderID *primitive.ObjectID, subject string, createdAt time.Time) models.PrayerRequest {
	f.t.Helper()

	p := models.PrayerRequest{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		LeaderID:  leaderID,
		Subject:   subject,
		Message:   "Please pray for this request.",
		CreatedAt: createdAt,
	}
	if _, err := f.db.Collection("prayer_requests").InsertOne(ctx, p); err != nil {
		f.t.Fatalf("failed to create test prayer request: %v", err)
	}
	return p
}

// CreateMeeting inserts a meeting owned by leaderID.
func (f *Fixtures) CreateMeeting(ctx context.Context, leaderID primitive.ObjectID, title string, date time.Time) models.Meeting {
	f.t.Helper()

	m := models.Meeting{
		ID:          primitive.NewObjectID(),
		LeaderID:    leaderID,
		Title:       title,
		MeetingDate: date,
		CreatedAt:   time.Now().UTC(),
	}
	if _, err := f.db.Collection("meetings").InsertOne(ctx, m); err != nil {
		f.t.Fatalf("failed to create test meeting: %v", err)
	}
	return m
}

// CreateRun inserts a reading-plan run as-is.
func (f *Fixtures) CreateRun(ctx context.Context, run models.ReadingPlanRun) models.ReadingPlanRun {
	f.t.Helper()

	if run.ID.IsZero() {
		run.ID = primitive.NewObjectID()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
		run.UpdatedAt = run.StartedAt
	}
	if _, err := f.db.Collection("reading_plan_runs").InsertOne(ctx, run); err != nil {
		f.t.Fatalf("failed to create test run: %v", err)
	}
	return run
}
