package service

import (
	"context"
	"fmt"

	"appusers/internal/core/cache"
	"appusers/internal/domain"
)

func groupKey(id int64) string { return fmt.Sprintf("group:%d", id) }

type GroupService struct {
	repo  domain.GroupRepository
	cache *cache.Cache
}

func NewGroupService(repo domain.GroupRepository, c *cache.Cache) *GroupService {
	return &GroupService{repo: repo, cache: c}
}

func (s *GroupService) Create(g *domain.Group) error {
	return s.repo.Create(g)
}

func (s *GroupService) Retrieve(ctx context.Context, id int64) (*domain.Group, error) {
	return cache.GetOrLoadJSON[domain.Group](s.cache, ctx, groupKey(id), docCacheTTL,
		func(context.Context) (*domain.Group, error) { return s.repo.FindByID(id) })
}

func (s *GroupService) Update(ctx context.Context, id int64, upd domain.GroupUpdate) (*domain.Group, error) {
	g, err := s.repo.Update(id, upd)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(ctx, groupKey(id))
	return g, nil
}

func (s *GroupService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(id); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, groupKey(id))
	return nil
}

func (s *GroupService) List(f *domain.GroupFilter) ([]domain.Group, error) {
	return s.repo.List(f)
}

func (s *GroupService) AddMember(groupID, userID int64) error {
	return s.repo.AddMember(groupID, userID)
}

func (s *GroupService) RemoveMember(groupID, userID int64) error {
	return s.repo.RemoveMember(groupID, userID)
}

func (s *GroupService) ListMembers(groupID int64) ([]domain.User, error) {
	return s.repo.ListMembers(groupID)
}
