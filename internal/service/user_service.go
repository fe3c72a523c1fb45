package service

import (
	"context"
	"fmt"
	"time"

	"appusers/internal/core/cache"
	"appusers/internal/domain"
	"appusers/pkg/utils"
)

const docCacheTTL = 30 * time.Second

func userKey(id int64) string { return fmt.Sprintf("user:%d", id) }

type UserService struct {
	repo  domain.UserRepository
	cache *cache.Cache
}

func NewUserService(repo domain.UserRepository, c *cache.Cache) *UserService {
	return &UserService{repo: repo, cache: c}
}

func (s *UserService) Create(u *domain.User) error {
	return s.repo.Create(u)
}

// Retrieve serves document reads through the cache; every mutation of
// the record invalidates the cached copy.
func (s *UserService) Retrieve(ctx context.Context, id int64) (*domain.User, error) {
	return cache.GetOrLoadJSON[domain.User](s.cache, ctx, userKey(id), docCacheTTL,
		func(context.Context) (*domain.User, error) { return s.repo.FindByID(id) })
}

func (s *UserService) Update(ctx context.Context, id int64, upd domain.UserUpdate) (*domain.User, error) {
	u, err := s.repo.Update(id, upd)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, userKey(id))
	return u, nil
}

// Delete removes a user. A user may never delete their own account,
// not even an admin.
func (s *UserService) Delete(ctx context.Context, actor *domain.User, id int64) error {
	if actor != nil && actor.UserID == id {
		return domain.Unauthorized("cannot delete own account")
	}
	if err := s.repo.Delete(id); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, userKey(id))
	return nil
}

func (s *UserService) List(f *domain.UserFilter) ([]domain.User, error) {
	return s.repo.List(f)
}

func (s *UserService) SetPassword(ctx context.Context, id int64, password string) error {
	if _, err := s.repo.FindByID(id); err != nil {
		return err
	}
	if err := s.repo.SetPasswordHash(id, utils.HashPassword(password)); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, userKey(id))
	return nil
}

// SetLock forces the account into the locked state, independent of the
// failure counter.
func (s *UserService) SetLock(ctx context.Context, id int64) error {
	if err := s.repo.SetLock(id, true); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, userKey(id))
	return nil
}

// Unlock lifts the lock and resets the failure bookkeeping.
func (s *UserService) Unlock(ctx context.Context, id int64) error {
	if err := s.repo.SetLock(id, false); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, userKey(id))
	return nil
}

func (s *UserService) SetAdmin(ctx context.Context, id int64, admin bool) error {
	if err := s.repo.SetAdmin(id, admin); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, userKey(id))
	return nil
}
