package repo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"appusers/internal/domain"
)

func intPtr(v int) *int     { return &v }
func boolPtr(v bool) *bool  { return &v }
func i64Ptr(v int64) *int64 { return &v }

func usernames(us []domain.User) []string {
	out := make([]string, 0, len(us))
	for _, u := range us {
		out = append(out, u.Username)
	}
	return out
}

func TestUserList_SortOffsetLimit(t *testing.T) {
	r := NewUserRepo(newTestDB(t))
	mkUser(t, r, "johne", "John", "Example")
	mkUser(t, r, "lindas", "Linda", "Someone")
	mkUser(t, r, "lin", "Li", "Nerd")

	// descending lastname, skip the first, take two
	users, err := r.List(&domain.UserFilter{
		SortBy: "-lastname",
		Offset: 1,
		Limit:  intPtr(2),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"lin", "johne"}, usernames(users))
}

func TestUserList_MultiKeySortStable(t *testing.T) {
	r := NewUserRepo(newTestDB(t))
	mkUser(t, r, "ua", "Ann", "Smith")
	mkUser(t, r, "ub", "Bob", "Smith")
	mkUser(t, r, "uc", "Cid", "Adams")

	users, err := r.List(&domain.UserFilter{SortBy: "lastname"})
	require.NoError(t, err)
	// equal lastnames keep insertion order
	assert.Equal(t, []string{"uc", "ua", "ub"}, usernames(users))

	users, err = r.List(&domain.UserFilter{SortBy: "lastname,-firstname"})
	require.NoError(t, err)
	assert.Equal(t, []string{"uc", "ub", "ua"}, usernames(users))
}

func TestUserList_CommaSetMatchesAnyExactly(t *testing.T) {
	r := NewUserRepo(newTestDB(t))
	mkUser(t, r, "johne", "John", "Example")
	mkUser(t, r, "lindas", "Linda", "Someone")
	mkUser(t, r, "lin", "Li", "Nerd")

	users, err := r.List(&domain.UserFilter{Username: "johne,lin"})
	require.NoError(t, err)
	assert.Equal(t, []string{"johne", "lin"}, usernames(users))

	// matching is exact, not prefix: "lin" must not match "lindas"
	users, err = r.List(&domain.UserFilter{Username: "lin"})
	require.NoError(t, err)
	assert.Equal(t, []string{"lin"}, usernames(users))

	// case-sensitive
	users, err = r.List(&domain.UserFilter{Username: "Johne"})
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestUserList_BoolAndExactFilters(t *testing.T) {
	db := newTestDB(t)
	r := NewUserRepo(db)
	u1 := mkUser(t, r, "johne", "John", "Example")
	mkUser(t, r, "lindas", "Linda", "Someone")
	require.NoError(t, r.SetAdmin(u1.UserID, true))
	require.NoError(t, r.SetLock(u1.UserID, true))

	users, err := r.List(&domain.UserFilter{Admin: boolPtr(true)})
	require.NoError(t, err)
	assert.Equal(t, []string{"johne"}, usernames(users))

	users, err = r.List(&domain.UserFilter{Locked: boolPtr(false)})
	require.NoError(t, err)
	assert.Equal(t, []string{"lindas"}, usernames(users))

	users, err = r.List(&domain.UserFilter{Email: "lindas@example.com"})
	require.NoError(t, err)
	assert.Equal(t, []string{"lindas"}, usernames(users))
}

func TestUserList_MembershipFilter(t *testing.T) {
	db := newTestDB(t)
	ur := NewUserRepo(db)
	gr := NewGroupRepo(db)

	u1 := mkUser(t, ur, "johne", "John", "Example")
	mkUser(t, ur, "lindas", "Linda", "Someone")
	g := &domain.Group{Groupname: "devs", Description: "Developers"}
	require.NoError(t, gr.Create(g))
	require.NoError(t, gr.AddMember(g.GroupID, u1.UserID))

	users, err := ur.List(&domain.UserFilter{GroupID: i64Ptr(g.GroupID)})
	require.NoError(t, err)
	assert.Equal(t, []string{"johne"}, usernames(users))

	// member is a synonym for groupid
	users, err = ur.List(&domain.UserFilter{Member: i64Ptr(g.GroupID)})
	require.NoError(t, err)
	assert.Equal(t, []string{"johne"}, usernames(users))
}

func TestUserList_EmptyResultIsNotAnError(t *testing.T) {
	r := NewUserRepo(newTestDB(t))
	users, err := r.List(&domain.UserFilter{Username: "nobody"})
	require.NoError(t, err)
	assert.NotNil(t, users)
	assert.Empty(t, users)
}

func TestGroupList_FilterSortMember(t *testing.T) {
	db := newTestDB(t)
	ur := NewUserRepo(db)
	gr := NewGroupRepo(db)

	u := mkUser(t, ur, "johne", "John", "Example")
	devs := &domain.Group{Groupname: "devs", Description: "Developers"}
	testers := &domain.Group{Groupname: "testers", Description: "Testers"}
	require.NoError(t, gr.Create(devs))
	require.NoError(t, gr.Create(testers))
	require.NoError(t, gr.AddMember(testers.GroupID, u.UserID))

	groups, err := gr.List(&domain.GroupFilter{Groupname: "devs,testers", SortBy: "-groupname"})
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, "testers", groups[0].Groupname)
	assert.Equal(t, "devs", groups[1].Groupname)

	groups, err = gr.List(&domain.GroupFilter{Member: i64Ptr(u.UserID)})
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, "testers", groups[0].Groupname)
}
