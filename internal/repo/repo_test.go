package repo

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"appusers/internal/domain"
)

// newTestDB opens a private in-memory database. The pool is capped at
// one connection so the database survives for the whole test and
// writes serialize the same way a server-grade store would.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(&domain.User{}, &domain.Group{}, &domain.GroupMember{}))
	return db
}

func mkUser(t *testing.T, r *UserRepo, username, first, last string) *domain.User {
	t.Helper()
	u := &domain.User{
		Username:  username,
		Firstname: first,
		Lastname:  last,
		Email:     username + "@example.com",
		Phone:     "123-444-5555",
	}
	require.NoError(t, r.Create(u))
	return u
}

func TestUserRepo_CreateDuplicateUsername(t *testing.T) {
	r := NewUserRepo(newTestDB(t))
	mkUser(t, r, "johne", "John", "Example")

	err := r.Create(&domain.User{
		Username: "johne", Firstname: "Other", Lastname: "Person",
		Email: "other@example.com", Phone: "123-444-6666",
	})
	require.Error(t, err)
	assert.Equal(t, domain.KindConflict, domain.KindOf(err))
}

func TestUserRepo_ConcurrentCreateSingleWinner(t *testing.T) {
	db := newTestDB(t)
	r := NewUserRepo(db)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = r.Create(&domain.User{
				Username: "samename", Firstname: "A", Lastname: "B",
				Email: "a@example.com", Phone: "123-444-5555",
			})
		}(i)
	}
	wg.Wait()

	var okCount, dupCount int
	for _, err := range errs {
		if err == nil {
			okCount++
		} else if domain.KindOf(err) == domain.KindConflict {
			dupCount++
		}
	}
	assert.Equal(t, 1, okCount)
	assert.Equal(t, 1, dupCount)

	users, err := r.List(&domain.UserFilter{Username: "samename"})
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestUserRepo_UpdatePartial(t *testing.T) {
	r := NewUserRepo(newTestDB(t))
	u := mkUser(t, r, "johne", "John", "Example")

	newLast := "Changed"
	out, err := r.Update(u.UserID, domain.UserUpdate{Lastname: &newLast})
	require.NoError(t, err)
	assert.Equal(t, "Changed", out.Lastname)
	assert.Equal(t, "johne", out.Username)
	assert.Equal(t, "John", out.Firstname)
}

func TestUserRepo_UpdateNotFound(t *testing.T) {
	r := NewUserRepo(newTestDB(t))
	name := "ghost"
	_, err := r.Update(42, domain.UserUpdate{Username: &name})
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
}

func TestUserRepo_UpdateDuplicateUsername(t *testing.T) {
	r := NewUserRepo(newTestDB(t))
	mkUser(t, r, "johne", "John", "Example")
	u := mkUser(t, r, "lindas", "Linda", "Someone")

	taken := "johne"
	_, err := r.Update(u.UserID, domain.UserUpdate{Username: &taken})
	assert.Equal(t, domain.KindConflict, domain.KindOf(err))
}

func TestUserRepo_DeleteClearsMemberships(t *testing.T) {
	db := newTestDB(t)
	ur := NewUserRepo(db)
	gr := NewGroupRepo(db)

	u := mkUser(t, ur, "johne", "John", "Example")
	g := &domain.Group{Groupname: "devs", Description: "Developers"}
	require.NoError(t, gr.Create(g))
	require.NoError(t, gr.AddMember(g.GroupID, u.UserID))

	require.NoError(t, ur.Delete(u.UserID))

	var edges int64
	require.NoError(t, db.Model(&domain.GroupMember{}).Count(&edges).Error)
	assert.Zero(t, edges)

	_, err := ur.FindByID(u.UserID)
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
}

func TestUserRepo_RecordLoginFailureBoundary(t *testing.T) {
	r := NewUserRepo(newTestDB(t))
	u := mkUser(t, r, "johne", "John", "Example")
	const maxFailed = 2

	at := time.Now()
	for i := 1; i <= maxFailed; i++ {
		n, err := r.RecordLoginFailure(u.UserID, at, maxFailed)
		require.NoError(t, err)
		assert.Equal(t, i, n)

		got, err := r.FindByID(u.UserID)
		require.NoError(t, err)
		assert.False(t, got.Locked, "attempt %d must not lock", i)
		require.NotNil(t, got.LastFailedLogin)
	}

	// the counter has to strictly exceed the maximum before the lock trips
	n, err := r.RecordLoginFailure(u.UserID, at, maxFailed)
	require.NoError(t, err)
	assert.Equal(t, maxFailed+1, n)

	got, err := r.FindByID(u.UserID)
	require.NoError(t, err)
	assert.True(t, got.Locked)
}

func TestUserRepo_ConcurrentFailuresLoseNoIncrements(t *testing.T) {
	r := NewUserRepo(newTestDB(t))
	u := mkUser(t, r, "johne", "John", "Example")

	const attempts = 10
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := r.RecordLoginFailure(u.UserID, time.Now(), 100)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := r.FindByID(u.UserID)
	require.NoError(t, err)
	assert.Equal(t, attempts, got.FailedLogins)
}

func TestUserRepo_ResetLoginFailures(t *testing.T) {
	r := NewUserRepo(newTestDB(t))
	u := mkUser(t, r, "johne", "John", "Example")

	_, err := r.RecordLoginFailure(u.UserID, time.Now(), 0)
	require.NoError(t, err)
	require.NoError(t, r.ResetLoginFailures(u.UserID))

	got, err := r.FindByID(u.UserID)
	require.NoError(t, err)
	assert.Zero(t, got.FailedLogins)
	assert.Nil(t, got.LastFailedLogin)
	assert.False(t, got.Locked)
}

func TestGroupRepo_AddMemberIdempotent(t *testing.T) {
	db := newTestDB(t)
	ur := NewUserRepo(db)
	gr := NewGroupRepo(db)

	u := mkUser(t, ur, "johne", "John", "Example")
	g := &domain.Group{Groupname: "devs", Description: "Developers"}
	require.NoError(t, gr.Create(g))

	require.NoError(t, gr.AddMember(g.GroupID, u.UserID))
	require.NoError(t, gr.AddMember(g.GroupID, u.UserID))

	var edges int64
	require.NoError(t, db.Model(&domain.GroupMember{}).Count(&edges).Error)
	assert.EqualValues(t, 1, edges)

	members, err := gr.ListMembers(g.GroupID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, u.UserID, members[0].UserID)
}

func TestGroupRepo_AddMemberUnknownTargets(t *testing.T) {
	db := newTestDB(t)
	ur := NewUserRepo(db)
	gr := NewGroupRepo(db)

	u := mkUser(t, ur, "johne", "John", "Example")
	g := &domain.Group{Groupname: "devs", Description: "Developers"}
	require.NoError(t, gr.Create(g))

	assert.Equal(t, domain.KindNotFound, domain.KindOf(gr.AddMember(999, u.UserID)))
	assert.Equal(t, domain.KindNotFound, domain.KindOf(gr.AddMember(g.GroupID, 999)))
}

func TestGroupRepo_RemoveMember(t *testing.T) {
	db := newTestDB(t)
	ur := NewUserRepo(db)
	gr := NewGroupRepo(db)

	u := mkUser(t, ur, "johne", "John", "Example")
	g := &domain.Group{Groupname: "devs", Description: "Developers"}
	require.NoError(t, gr.Create(g))
	require.NoError(t, gr.AddMember(g.GroupID, u.UserID))

	require.NoError(t, gr.RemoveMember(g.GroupID, u.UserID))
	err := gr.RemoveMember(g.GroupID, u.UserID)
	assert.Equal(t, domain.KindNotFound, domain.KindOf(err))
}

func TestGroupRepo_DeleteClearsMemberships(t *testing.T) {
	db := newTestDB(t)
	ur := NewUserRepo(db)
	gr := NewGroupRepo(db)

	u := mkUser(t, ur, "johne", "John", "Example")
	g := &domain.Group{Groupname: "devs", Description: "Developers"}
	require.NoError(t, gr.Create(g))
	require.NoError(t, gr.AddMember(g.GroupID, u.UserID))

	require.NoError(t, gr.Delete(g.GroupID))

	var edges int64
	require.NoError(t, db.Model(&domain.GroupMember{}).Count(&edges).Error)
	assert.Zero(t, edges)
}

func TestGroupRepo_DuplicateGroupname(t *testing.T) {
	gr := NewGroupRepo(newTestDB(t))
	require.NoError(t, gr.Create(&domain.Group{Groupname: "devs", Description: "Developers"}))
	err := gr.Create(&domain.Group{Groupname: "devs", Description: "Other"})
	assert.Equal(t, domain.KindConflict, domain.KindOf(err))
}
