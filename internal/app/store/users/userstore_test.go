package userstore_test

import (
	"errors"
	"testing"
	"time"

	userstore "github.com/koinonia-app/koinonia/internal/app/store/users"
	"github.com/koinonia-app/koinonia/internal/app/system/indexes"
	"github.com/koinonia-app/koinonia/internal/app/system/presence"
	"github.com/koinonia-app/koinonia/internal/domain/models"
	"github.com/koinonia-app/koinonia/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestStore_Create_DefaultsToMember(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, models.User{
		FullName:     "  Ana   Souza ",
		Email:        " Ana@Example.COM ",
		PasswordHash: "hash",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.ID == primitive.NilObjectID {
		t.Error("expected ID to be assigned")
	}
	if created.Role != models.RoleMember {
		t.Errorf("role: got %q, want MEMBER", created.Role)
	}
	if created.FullName != "Ana Souza" {
		t.Errorf("name: got %q", created.FullName)
	}
	if created.Email != "ana@example.com" {
		t.Errorf("email: got %q", created.Email)
	}
	if created.FullNameCI == "" || created.CreatedAt.IsZero() {
		t.Error("expected name_ci and created_at to be set")
	}

	got, err := store.GetByEmail(ctx, "ANA@example.com")
	if err != nil {
		t.Fatalf("GetByEmail failed: %v", err)
	}
	if got.ID != created.ID {
		t.Errorf("GetByEmail returned %v, want %v", got.ID, created.ID)
	}
}

func TestStore_Create_InvalidRole(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.Create(ctx, models.User{FullName: "X", Email: "x@x.org", Role: "owner"}); err == nil {
		t.Error("expected error for invalid role")
	}
}

func TestStore_Create_DuplicateEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
	store := userstore.New(db)

	if _, err := store.Create(ctx, models.User{FullName: "A", Email: "dup@x.org"}); err != nil {
		t.Fatalf("first Create failed: %v", err)
	}
	_, err := store.Create(ctx, models.User{FullName: "B", Email: "DUP@x.org"})
	if !errors.Is(err, userstore.ErrDuplicateEmail) {
		t.Errorf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestStore_GetByID_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.GetByID(ctx, primitive.NewObjectID()); !errors.Is(err, userstore.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_SetRoleAndLeader(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	leader := fx.CreateLeader(ctx, "Paulo", "paulo@x.org")
	member := fx.CreateMember(ctx, "Lia", "lia@x.org", nil)

	if err := store.SetLeader(ctx, member.ID, leader.ID); err != nil {
		t.Fatalf("SetLeader failed: %v", err)
	}
	if err := store.SetRole(ctx, member.ID, models.RoleLeader); err != nil {
		t.Fatalf("SetRole failed: %v", err)
	}

	got, _ := store.GetByID(ctx, member.ID)
	if got.Role != models.RoleLeader {
		t.Errorf("role: got %q", got.Role)
	}
	if got.LeaderID == nil || *got.LeaderID != leader.ID {
		t.Errorf("leader_id: got %v", got.LeaderID)
	}

	if err := store.SetRole(ctx, primitive.NewObjectID(), models.RoleAdmin); !errors.Is(err, userstore.ErrNotFound) {
		t.Errorf("SetRole on unknown id: got %v", err)
	}
	if err := store.SetRole(ctx, member.ID, "bogus"); err == nil {
		t.Error("SetRole should reject invalid roles")
	}
}

func TestStore_Counts(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	now := time.Now().UTC()
	fx.CreateAdmin(ctx, "Admin", "a@x.org")
	leader := fx.CreateLeader(ctx, "Leader", "l@x.org")
	m1 := fx.CreateMember(ctx, "M1", "m1@x.org", &leader.ID)
	m2 := fx.CreateMember(ctx, "M2", "m2@x.org", &leader.ID)
	fx.CreateMember(ctx, "M3", "m3@x.org", nil)

	fx.SetLastActivity(ctx, m1.ID, now.Add(-time.Minute))
	fx.SetLastActivity(ctx, m2.ID, now.Add(-presence.Window))

	check := func(name string, got int64, err error, want int64) {
		t.Helper()
		if err != nil {
			t.Fatalf("%s: %v", name, err)
		}
		if got != want {
			t.Errorf("%s: got %d, want %d", name, got, want)
		}
	}

	n, err := store.CountAll(ctx)
	check("CountAll", n, err, 5)
	n, err = store.CountByRole(ctx, models.RoleMember)
	check("CountByRole(MEMBER)", n, err, 3)
	n, err = store.CountMembersWithLeader(ctx, true)
	check("with leader", n, err, 2)
	n, err = store.CountMembersWithLeader(ctx, false)
	check("without leader", n, err, 1)
	// Exactly at the window edge is offline.
	n, err = store.CountOnlineMembers(ctx, now)
	check("online", n, err, 1)

	counts, err := store.CountDisciplesByLeader(ctx, []primitive.ObjectID{leader.ID, primitive.NewObjectID()})
	if err != nil {
		t.Fatalf("CountDisciplesByLeader: %v", err)
	}
	if counts[leader.ID] != 2 || len(counts) != 1 {
		t.Errorf("disciple counts: got %v", counts)
	}
}

func TestStore_ListDisciplesAndByRole_SortedByName(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	leader := fx.CreateLeader(ctx, "Zé", "z@x.org")
	fx.CreateLeader(ctx, "Ábner", "ab@x.org")
	fx.CreateMember(ctx, "Carla", "c@x.org", &leader.ID)
	fx.CreateMember(ctx, "Beto", "b@x.org", &leader.ID)
	fx.CreateUser(ctx, "Admin", "ad@x.org", models.RoleAdmin, &leader.ID)

	disciples, err := store.ListDisciples(ctx, leader.ID)
	if err != nil {
		t.Fatalf("ListDisciples: %v", err)
	}
	if len(disciples) != 2 || disciples[0].FullName != "Beto" || disciples[1].FullName != "Carla" {
		t.Errorf("disciples: got %+v", disciples)
	}

	leaders, err := store.ListByRole(ctx, models.RoleLeader)
	if err != nil {
		t.Fatalf("ListByRole: %v", err)
	}
	if len(leaders) != 2 || leaders[0].FullName != "Ábner" {
		t.Errorf("leaders: got %+v", leaders)
	}
}

func TestStore_TouchLogin(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fx.CreateMember(ctx, "Lia", "lia@x.org", nil)
	now := time.Now().UTC().Truncate(time.Millisecond)
	if err := store.TouchLogin(ctx, u.ID, now); err != nil {
		t.Fatalf("TouchLogin: %v", err)
	}
	got, _ := store.GetByID(ctx, u.ID)
	if got.LastLoginAt == nil || !got.LastLoginAt.Equal(now) {
		t.Errorf("last_login_at: got %v", got.LastLoginAt)
	}
	if got.LastActivityAt == nil || !got.LastActivityAt.Equal(now) {
		t.Errorf("last_activity_at: got %v", got.LastActivityAt)
	}
}

func TestStore_PromoteToAdmin(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := fx.CreateMember(ctx, "Pastor", "pastor@x.org", nil)

	promoted, err := store.PromoteToAdmin(ctx, " PASTOR@x.org")
	if err != nil || !promoted {
		t.Fatalf("first promote: promoted=%v err=%v", promoted, err)
	}
	promoted, err = store.PromoteToAdmin(ctx, "pastor@x.org")
	if err != nil || promoted {
		t.Errorf("second promote should be a no-op: promoted=%v err=%v", promoted, err)
	}
	got, _ := store.GetByID(ctx, u.ID)
	if got.Role != models.RoleAdmin {
		t.Errorf("role: got %q", got.Role)
	}

	if _, err := store.PromoteToAdmin(ctx, "nobody@x.org"); !errors.Is(err, userstore.ErrNotFound) {
		t.Errorf("unknown email: got %v", err)
	}
}

func TestFetcher_FetchUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	leader := fx.CreateLeader(ctx, "Paulo", "paulo@x.org")
	m := fx.CreateMember(ctx, "Lia", "lia@x.org", &leader.ID)

	f := userstore.NewFetcher(db)
	su := f.FetchUser(ctx, m.ID.Hex())
	if su == nil {
		t.Fatal("expected user")
	}
	if su.Role != models.RoleMember || su.LeaderID != leader.ID.Hex() || su.Email != "lia@x.org" {
		t.Errorf("session user: got %+v", su)
	}
	if f.FetchUser(ctx, "bad") != nil {
		t.Error("malformed id should yield nil")
	}
	if f.FetchUser(ctx, primitive.NewObjectID().Hex()) != nil {
		t.Error("unknown id should yield nil")
	}
}
