package members_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	uierrors "github.com/koinonia-app/koinonia/internal/app/features/errors"
	"github.com/koinonia-app/koinonia/internal/app/features/members"
	meetingstore "github.com/koinonia-app/koinonia/internal/app/store/meetings"
	userstore "github.com/koinonia-app/koinonia/internal/app/store/users"
	"github.com/koinonia-app/koinonia/internal/domain/models"
	"github.com/koinonia-app/koinonia/internal/testutil"
	"go.uber.org/zap"
)

type staticDevotional struct{}

func (staticDevotional) OfTheDay(context.Context) (*models.Devotional, bool) {
	return &models.Devotional{Slug: "hoje"}, false
}

type memberPage struct {
	Leader *struct {
		Name string `json:"name"`
	} `json:"leader"`
	Meetings   []models.Meeting  `json:"meetings"`
	Devotional models.Devotional `json:"devotionalOfTheDay"`
}

func TestServeMember(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	logger := zap.NewNop()
	h := members.NewHandler(userstore.New(db), meetingstore.New(db), staticDevotional{}, uierrors.NewErrorLogger(logger), logger)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	leader := fx.CreateLeader(ctx, "Pastor Paulo", "paulo@test.com")
	withLeader := fx.CreateMember(ctx, "Ana", "ana@test.com", &leader.ID)
	alone := fx.CreateMember(ctx, "Beto", "beto@test.com", nil)

	base := time.Date(2025, 1, 1, 19, 0, 0, 0, time.UTC)
	for i := 0; i < 7; i++ {
		fx.CreateMeeting(ctx, leader.ID, fmt.Sprintf("Encontro %d", i), base.AddDate(0, 0, 7*i))
	}

	t.Run("with leader", func(t *testing.T) {
		rec := testutil.NewRecorder()
		h.ServeMember(rec, testutil.NewAuthenticatedRequest("GET", "/member", testutil.AsTestUser(withLeader)))
		rec.AssertStatus(t, http.StatusOK)

		var got memberPage
		rec.DecodeJSON(t, &got)
		if got.Leader == nil || got.Leader.Name != "Pastor Paulo" {
			t.Errorf("leader: %+v", got.Leader)
		}
		if len(got.Meetings) != meetingstore.RecentLimit {
			t.Fatalf("meetings: got %d, want %d", len(got.Meetings), meetingstore.RecentLimit)
		}
		if got.Meetings[0].Title != "Encontro 6" {
			t.Errorf("latest meeting first: got %q", got.Meetings[0].Title)
		}
		if got.Devotional.Slug != "hoje" {
			t.Errorf("devotional: %+v", got.Devotional)
		}
	})

	t.Run("without leader", func(t *testing.T) {
		rec := testutil.NewRecorder()
		h.ServeMember(rec, testutil.NewAuthenticatedRequest("GET", "/member", testutil.AsTestUser(alone)))
		rec.AssertStatus(t, http.StatusOK)

		var got memberPage
		rec.DecodeJSON(t, &got)
		if got.Leader != nil || len(got.Meetings) != 0 {
			t.Errorf("expected no leader and no meetings, got %+v", got)
		}
	})
}
