package groups_test

import (
	"net/http"
	"testing"
	"time"

	uierrors "github.com/koinonia-app/koinonia/internal/app/features/errors"
	"github.com/koinonia-app/koinonia/internal/app/features/groups"
	userstore "github.com/koinonia-app/koinonia/internal/app/store/users"
	"github.com/koinonia-app/koinonia/internal/app/system/groupstats"
	"github.com/koinonia-app/koinonia/internal/testutil"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*groups.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	h := groups.NewHandler(userstore.New(db), uierrors.NewErrorLogger(logger), nil, logger)
	return h, testutil.NewFixtures(t, db)
}

func TestServeLeaders_SortedWithCounts(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	zeca := fx.CreateLeader(ctx, "Zeca", "zeca@test.com")
	ana := fx.CreateLeader(ctx, "Ana", "ana@test.com")
	fx.CreateMember(ctx, "M1", "m1@test.com", &zeca.ID)
	fx.CreateMember(ctx, "M2", "m2@test.com", &zeca.ID)
	fx.CreateMember(ctx, "M3", "m3@test.com", nil)

	rec := testutil.NewRecorder()
	h.ServeLeaders(rec, testutil.NewAuthenticatedRequest("GET", "/api/groups/select-leader", testutil.MemberUser()))
	rec.AssertStatus(t, http.StatusOK)

	var got []struct {
		ID             string `json:"id"`
		Name           string `json:"name"`
		DisciplesCount int64  `json:"disciplesCount"`
	}
	rec.DecodeJSON(t, &got)
	if len(got) != 2 {
		t.Fatalf("got %d leaders, want 2", len(got))
	}
	if got[0].ID != ana.ID.Hex() || got[0].DisciplesCount != 0 {
		t.Errorf("first: got %+v, want Ana with 0", got[0])
	}
	if got[1].Name != "Zeca" || got[1].DisciplesCount != 2 {
		t.Errorf("second: got %+v, want Zeca with 2", got[1])
	}
}

func TestHandleSelect(t *testing.T) {
	h, fx := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	leader := fx.CreateLeader(ctx, "Pastor Paulo", "paulo@test.com")
	member := fx.CreateMember(ctx, "Ana", "ana@test.com", nil)
	other := fx.CreateMember(ctx, "Beto", "beto@test.com", nil)

	tests := []struct {
		name     string
		user     testutil.TestUser
		leaderID string
		status   int
	}{
		{"member selects leader", testutil.AsTestUser(member), leader.ID.Hex(), http.StatusOK},
		{"leader cannot select", testutil.AsTestUser(leader), leader.ID.Hex(), http.StatusForbidden},
		{"self", testutil.AsTestUser(member), member.ID.Hex(), http.StatusBadRequest},
		{"not a leader", testutil.AsTestUser(member), other.ID.Hex(), http.StatusBadRequest},
		{"missing id", testutil.AsTestUser(member), "", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := testutil.NewRecorder()
			req := testutil.WithUser(testutil.NewJSONRequest("POST", "/api/groups/select-leader",
				map[string]string{"leaderId": tt.leaderID}), tt.user)
			h.HandleSelect(rec, req)
			rec.AssertStatus(t, tt.status)
		})
	}

	u, err := h.Users.GetByID(ctx, member.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if u.LeaderID == nil || *u.LeaderID != leader.ID {
		t.Errorf("leader_id: got %v, want %s", u.LeaderID, leader.ID.Hex())
	}
}

func TestServeOverview(t *testing.T) {
	h, fx := newTestHandler(t)
	now := time.Date(2025, 4, 20, 12, 0, 0, 0, time.UTC)
	h.Now = func() time.Time { return now }
	ctx, cancel := testutil.TestContext()
	defer cancel()

	leader := fx.CreateLeader(ctx, "Líder", "lider@test.com")
	fx.CreateLeader(ctx, "Vazio", "vazio@test.com")
	on := fx.CreateMember(ctx, "Online", "on@test.com", &leader.ID)
	fx.SetLastActivity(ctx, on.ID, now.Add(-time.Minute))
	fx.CreateMember(ctx, "Offline", "off@test.com", &leader.ID)
	fx.CreateMember(ctx, "Solto", "solto@test.com", nil)

	rec := testutil.NewRecorder()
	h.ServeOverview(rec, testutil.NewAuthenticatedRequest("GET", "/admin/groups", testutil.AdminUser()))
	rec.AssertStatus(t, http.StatusOK)

	var sum groupstats.Summary
	rec.DecodeJSON(t, &sum)
	if sum.TotalGroups != 2 || sum.GroupsWithMembers != 1 || sum.EmptyGroups != 1 {
		t.Errorf("group counts: %+v", sum)
	}
	if sum.TotalMembers != 3 || sum.OnlineMembers != 1 || len(sum.Unassigned) != 1 {
		t.Errorf("member counts: total=%d online=%d unassigned=%d", sum.TotalMembers, sum.OnlineMembers, len(sum.Unassigned))
	}
}
