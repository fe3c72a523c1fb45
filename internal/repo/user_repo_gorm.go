package repo

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"appusers/internal/domain"
)

type UserRepo struct{ db *gorm.DB }

func NewUserRepo(db *gorm.DB) *UserRepo { return &UserRepo{db: db} }

// Create inserts the user. Username uniqueness is enforced by the
// database index, so two concurrent creates with the same name can
// never both succeed.
func (r *UserRepo) Create(u *domain.User) error {
	if err := r.db.Create(u).Error; err != nil {
		if isDupKey(err) {
			return domain.Conflict("username already exists")
		}
		return domain.Internal("create user", err)
	}
	return nil
}

func (r *UserRepo) FindByID(id int64) (*domain.User, error) {
	var u domain.User
	err := r.db.First(&u, "userid = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.NotFound("user not found")
	}
	if err != nil {
		return nil, domain.Internal("find user", err)
	}
	return &u, nil
}

func (r *UserRepo) FindByUsername(username string) (*domain.User, error) {
	var u domain.User
	err := r.db.First(&u, "username = ?", username).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.NotFound("user not found")
	}
	if err != nil {
		return nil, domain.Internal("find user", err)
	}
	return &u, nil
}

func (r *UserRepo) Update(id int64, upd domain.UserUpdate) (*domain.User, error) {
	cols := map[string]any{}
	if upd.Username != nil {
		cols["username"] = *upd.Username
	}
	if upd.Firstname != nil {
		cols["firstname"] = *upd.Firstname
	}
	if upd.Lastname != nil {
		cols["lastname"] = *upd.Lastname
	}
	if upd.Email != nil {
		cols["email"] = *upd.Email
	}
	if upd.Phone != nil {
		cols["phone"] = *upd.Phone
	}

	var out domain.User
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&out, "userid = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.NotFound("user not found")
			}
			return domain.Internal("find user", err)
		}
		if len(cols) == 0 {
			return nil
		}
		if err := tx.Model(&domain.User{}).Where("userid = ?", id).Updates(cols).Error; err != nil {
			if isDupKey(err) {
				return domain.Conflict("username already exists")
			}
			return domain.Internal("update user", err)
		}
		return tx.First(&out, "userid = ?", id).Error
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Delete removes the user and its membership edges in one transaction.
func (r *UserRepo) Delete(id int64) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", id).Delete(&domain.GroupMember{}).Error; err != nil {
			return domain.Internal("delete memberships", err)
		}
		res := tx.Where("userid = ?", id).Delete(&domain.User{})
		if res.Error != nil {
			return domain.Internal("delete user", res.Error)
		}
		if res.RowsAffected == 0 {
			return domain.NotFound("user not found")
		}
		return nil
	})
}

func (r *UserRepo) List(f *domain.UserFilter) ([]domain.User, error) {
	q := r.db.Model(&domain.User{})
	q = applyUserFilter(q, f)
	q = applySort(q, f.SortKeys(), "userid")
	q = applyPage(q, f.Offset, f.Limit)

	users := []domain.User{}
	if err := q.Find(&users).Error; err != nil {
		return nil, domain.Internal("list users", err)
	}
	return users, nil
}

func (r *UserRepo) SetPasswordHash(id int64, hash string) error {
	return r.updateColumns(id, map[string]any{"password_hash": hash})
}

func (r *UserRepo) SetLock(id int64, locked bool) error {
	cols := map[string]any{"locked": locked}
	if !locked {
		cols["failed_logins"] = 0
		cols["last_failed_login"] = nil
	}
	return r.updateColumns(id, cols)
}

func (r *UserRepo) SetAdmin(id int64, admin bool) error {
	return r.updateColumns(id, map[string]any{"admin": admin})
}

// RecordLoginFailure applies the whole failure bookkeeping as a single
// UPDATE so concurrent failed attempts never lose increments. The lock
// trips only when the counter strictly exceeds maxFailed.
func (r *UserRepo) RecordLoginFailure(id int64, at time.Time, maxFailed int) (int, error) {
	res := r.db.Model(&domain.User{}).Where("userid = ?", id).UpdateColumns(map[string]any{
		"failed_logins":     gorm.Expr("failed_logins + 1"),
		"last_failed_login": at,
		"locked":            gorm.Expr("locked OR (failed_logins + 1 > ?)", maxFailed),
	})
	if res.Error != nil {
		return 0, domain.Internal("record login failure", res.Error)
	}
	if res.RowsAffected == 0 {
		return 0, domain.NotFound("user not found")
	}
	var count int
	if err := r.db.Model(&domain.User{}).Where("userid = ?", id).
		Pluck("failed_logins", &count).Error; err != nil {
		return 0, domain.Internal("read failure counter", err)
	}
	return count, nil
}

func (r *UserRepo) ResetLoginFailures(id int64) error {
	return r.updateColumns(id, map[string]any{
		"failed_logins":     0,
		"last_failed_login": nil,
		"locked":            false,
	})
}

func (r *UserRepo) updateColumns(id int64, cols map[string]any) error {
	res := r.db.Model(&domain.User{}).Where("userid = ?", id).UpdateColumns(cols)
	if res.Error != nil {
		return domain.Internal("update user", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.NotFound("user not found")
	}
	return nil
}
