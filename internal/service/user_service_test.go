package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"appusers/internal/domain"
	"appusers/internal/repo"
	"appusers/pkg/utils"
)

func TestUserService_RetrieveWithoutCache(t *testing.T) {
	r := newTestRepo(t)
	u := seedUser(t, r, "johne", "pass")
	s := NewUserService(r, nil)

	got, err := s.Retrieve(context.Background(), u.UserID)
	require.NoError(t, err)
	assert.Equal(t, "johne", got.Username)

	_, err = s.Retrieve(context.Background(), 9999)
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
}

func TestUserService_DeleteRejectsSelf(t *testing.T) {
	r := newTestRepo(t)
	admin := seedUser(t, r, "admin", "pass")
	require.NoError(t, r.SetAdmin(admin.UserID, true))
	other := seedUser(t, r, "johne", "pass")
	s := NewUserService(r, nil)

	// even an admin may not remove their own account
	err := s.Delete(context.Background(), admin, admin.UserID)
	assert.Equal(t, domain.KindUnauthorized, domain.KindOf(err))

	require.NoError(t, s.Delete(context.Background(), admin, other.UserID))
	_, err = r.FindByID(other.UserID)
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
}

func TestUserService_SetPassword(t *testing.T) {
	r := newTestRepo(t)
	u := seedUser(t, r, "johne", "")
	s := NewUserService(r, nil)

	require.NoError(t, s.SetPassword(context.Background(), u.UserID, "s3cret"))

	got, err := r.FindByID(u.UserID)
	require.NoError(t, err)
	assert.True(t, utils.CheckPassword("s3cret", got.PasswordHash))
	assert.False(t, utils.CheckPassword("wrong", got.PasswordHash))

	err = s.SetPassword(context.Background(), 9999, "s3cret")
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
}

func TestUserService_LockAndUnlock(t *testing.T) {
	r := newTestRepo(t)
	u := seedUser(t, r, "johne", "pass")
	s := NewUserService(r, nil)

	require.NoError(t, s.SetLock(context.Background(), u.UserID))
	got, err := r.FindByID(u.UserID)
	require.NoError(t, err)
	assert.True(t, got.Locked)

	require.NoError(t, s.Unlock(context.Background(), u.UserID))
	got, err = r.FindByID(u.UserID)
	require.NoError(t, err)
	assert.False(t, got.Locked)
	assert.Zero(t, got.FailedLogins)
}

func TestGroupService_Members(t *testing.T) {
	db := newTestDB(t)
	r := repo.NewUserRepo(db)
	u := seedUser(t, r, "johne", "pass")
	gr := repo.NewGroupRepo(db)
	g := &domain.Group{Groupname: "friends"}
	require.NoError(t, gr.Create(g))
	s := NewGroupService(gr, nil)

	require.NoError(t, s.AddMember(g.GroupID, u.UserID))
	members, err := s.ListMembers(g.GroupID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, "johne", members[0].Username)

	require.NoError(t, s.RemoveMember(g.GroupID, u.UserID))
	err = s.RemoveMember(g.GroupID, u.UserID)
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
}
