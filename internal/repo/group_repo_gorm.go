package repo

import (
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"appusers/internal/domain"
)

type GroupRepo struct{ db *gorm.DB }

func NewGroupRepo(db *gorm.DB) *GroupRepo { return &GroupRepo{db: db} }

func (r *GroupRepo) Create(g *domain.Group) error {
	if err := r.db.Create(g).Error; err != nil {
		if isDupKey(err) {
			return domain.Conflict("groupname already exists")
		}
		return domain.Internal("create group", err)
	}
	return nil
}

func (r *GroupRepo) FindByID(id int64) (*domain.Group, error) {
	var g domain.Group
	err := r.db.First(&g, "groupid = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.NotFound("group not found")
	}
	if err != nil {
		return nil, domain.Internal("find group", err)
	}
	return &g, nil
}

func (r *GroupRepo) Update(id int64, upd domain.GroupUpdate) (*domain.Group, error) {
	cols := map[string]any{}
	if upd.Groupname != nil {
		cols["groupname"] = *upd.Groupname
	}
	if upd.Description != nil {
		cols["description"] = *upd.Description
	}

	var out domain.Group
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&out, "groupid = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.NotFound("group not found")
			}
			return domain.Internal("find group", err)
		}
		if len(cols) == 0 {
			return nil
		}
		if err := tx.Model(&domain.Group{}).Where("groupid = ?", id).Updates(cols).Error; err != nil {
			if isDupKey(err) {
				return domain.Conflict("groupname already exists")
			}
			return domain.Internal("update group", err)
		}
		return tx.First(&out, "groupid = ?", id).Error
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes the group and its membership edges in one transaction.
func (r *GroupRepo) Delete(id int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("group_id = ?", id).Delete(&domain.GroupMember{}).Error; err != nil {
			return domain.Internal("delete memberships", err)
		}
		res := tx.Where("groupid = ?", id).Delete(&domain.Group{})
		if res.Error != nil {
			return domain.Internal("delete group", res.Error)
		}
		if res.RowsAffected == 0 {
			return domain.NotFound("group not found")
		}
		return nil
	})
}

func (r *GroupRepo) List(f *domain.GroupFilter) ([]domain.Group, error) {
	q := r.db.Model(&domain.Group{})
	q = applyGroupFilter(q, f)
	q = applySort(q, f.SortKeys(), "groupid")
	q = applyPage(q, f.Offset, f.Limit)

	groups := []domain.Group{}
	if err := q.Find(&groups).Error; err != nil {
		return nil, domain.Internal("list groups", err)
	}
	return groups, nil
}

// AddMember inserts the edge if it is not already present. The
// ON CONFLICT DO NOTHING clause makes a repeated add succeed without
// creating a duplicate row.
func (r *GroupRepo) AddMember(groupID, userID int64) error {
	if _, err := r.FindByID(groupID); err != nil {
		return err
	}
	var n int64
	if err := r.db.Model(&domain.User{}).Where("userid = ?", userID).Count(&n).Error; err != nil {
		return domain.Internal("find user", err)
	}
	if n == 0 {
		return domain.NotFound("user not found")
	}
	err := r.db.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&domain.GroupMember{GroupID: groupID, UserID: userID}).Error
	if err != nil {
		return domain.Internal("add member", err)
	}
	return nil
}

func (r *GroupRepo) RemoveMember(groupID, userID int64) error {
	res := r.db.Where("group_id = ? AND user_id = ?", groupID, userID).
		Delete(&domain.GroupMember{})
	if res.Error != nil {
		return domain.Internal("remove member", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.NotFound("membership not found")
	}
	return nil
}

func (r *GroupRepo) ListMembers(groupID int64) ([]domain.User, error) {
	if _, err := r.FindByID(groupID); err != nil {
		return nil, err
	}
	users := []domain.User{}
	err := r.db.Model(&domain.User{}).
		Joins("JOIN group_members gm ON gm.user_id = users.userid").
		Where("gm.group_id = ?", groupID).
		Order("users.userid").
		Find(&users).Error
	if err != nil {
		return nil, domain.Internal("list members", err)
	}
	return users, nil
}
