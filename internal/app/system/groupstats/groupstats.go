// Package groupstats builds the leader -> members view and its online
// counts. Groups are never stored; they are recomputed from users on every
// read.
package groupstats

import (
	"sort"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/koinonia-app/koinonia/internal/app/system/presence"
	"github.com/koinonia-app/koinonia/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemberView is a member as shown inside a group.
type MemberView struct {
	ID             primitive.ObjectID `json:"id"`
	Name           string             `json:"name"`
	Email          string             `json:"email"`
	LastActivityAt *time.Time         `json:"lastActivityAt,omitempty"`
	Online         bool               `json:"online"`
}

// Group is one leader with their members.
type Group struct {
	LeaderID    primitive.ObjectID `json:"leaderId"`
	LeaderName  string             `json:"leaderName"`
	LeaderEmail string             `json:"leaderEmail"`
	Members     []MemberView       `json:"members"`
	Total       int                `json:"total"`
	Online      int                `json:"online"`
	Offline     int                `json:"offline"`
}

// Summary is the whole aggregation.
type Summary struct {
	Groups            []Group      `json:"groups"`
	Unassigned        []MemberView `json:"unassigned"`
	TotalGroups       int          `json:"totalGroups"`
	GroupsWithMembers int          `json:"groupsWithMembers"`
	EmptyGroups       int          `json:"emptyGroups"`
	TotalMembers      int          `json:"totalMembers"`
	OnlineMembers     int          `json:"onlineMembers"`
}

// Build groups members under leaders.
//
// Only users with role LEADER become groups and only users with role MEMBER
// are counted. A member whose leader_id is unset, or points at a user that
// is not in leaders (for example a demoted leader), is listed as
// unassigned, so every member is counted exactly once.
func Build(leaders, members []models.User, now time.Time) Summary {
	ls := make([]models.User, 0, len(leaders))
	for _, l := range leaders {
		if l.Role == models.RoleLeader {
			ls = append(ls, l)
		}
	}
	sortUsers(ls)

	ms := make([]models.User, 0, len(members))
	for _, m := range members {
		if m.Role == models.RoleMember {
			ms = append(ms, m)
		}
	}
	sortUsers(ms)

	idx := make(map[primitive.ObjectID]int, len(ls))
	sum := Summary{
		Groups:     make([]Group, len(ls)),
		Unassigned: []MemberView{},
	}
	for i, l := range ls {
		idx[l.ID] = i
		sum.Groups[i] = Group{
			LeaderID:    l.ID,
			LeaderName:  l.FullName,
			LeaderEmail: l.Email,
			Members:     []MemberView{},
		}
	}

	for _, m := range ms {
		v := view(m, now)
		sum.TotalMembers++
		if v.Online {
			sum.OnlineMembers++
		}

		i, ok := -1, false
		if m.HasLeader() {
			i, ok = idx[*m.LeaderID]
		}
		if !ok {
			sum.Unassigned = append(sum.Unassigned, v)
			continue
		}
		g := &sum.Groups[i]
		g.Members = append(g.Members, v)
		g.Total++
		if v.Online {
			g.Online++
		} else {
			g.Offline++
		}
	}

	sum.TotalGroups = len(sum.Groups)
	for _, g := range sum.Groups {
		if g.Total > 0 {
			sum.GroupsWithMembers++
		}
	}
	sum.EmptyGroups = sum.TotalGroups - sum.GroupsWithMembers
	return sum
}

// Members returns the member views for one leader's disciples, sorted by
// name. Used by the leader page.
func Members(disciples []models.User, now time.Time) []MemberView {
	ds := append([]models.User(nil), disciples...)
	sortUsers(ds)
	out := make([]MemberView, 0, len(ds))
	for _, d := range ds {
		out = append(out, view(d, now))
	}
	return out
}

func view(u models.User, now time.Time) MemberView {
	return MemberView{
		ID:             u.ID,
		Name:           u.FullName,
		Email:          u.Email,
		LastActivityAt: u.LastActivityAt,
		Online:         presence.Online(u.LastActivityAt, now),
	}
}

// sortUsers orders by folded name, then id, so output is deterministic.
func sortUsers(us []models.User) {
	sort.SliceStable(us, func(i, j int) bool {
		a, b := foldedName(us[i]), foldedName(us[j])
		if a != b {
			return a < b
		}
		return us[i].ID.Hex() < us[j].ID.Hex()
	})
}

func foldedName(u models.User) string {
	if u.FullNameCI != "" {
		return u.FullNameCI
	}
	return text.Fold(u.FullName)
}
