package repo

import (
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"appusers/internal/domain"
)

// Query engine: translates a validated filter mapping into gorm
// clauses. Filters narrow first, then the multi-key sort orders the
// set, then offset/limit slice it. The final userid/groupid ascending
// order key breaks ties by insertion order, which keeps the result
// deterministic and the sort effectively stable.

func applyUserFilter(q *gorm.DB, f *domain.UserFilter) *gorm.DB {
	if vals := domain.SplitCSV(f.Username); vals != nil {
		q = q.Where("username IN ?", vals)
	}
	if vals := domain.SplitCSV(f.Firstname); vals != nil {
		q = q.Where("firstname IN ?", vals)
	}
	if vals := domain.SplitCSV(f.Lastname); vals != nil {
		q = q.Where("lastname IN ?", vals)
	}
	if f.Email != "" {
		q = q.Where("email = ?", f.Email)
	}
	if f.Phone != "" {
		q = q.Where("phone = ?", f.Phone)
	}
	if f.Locked != nil {
		q = q.Where("locked = ?", *f.Locked)
	}
	if f.Admin != nil {
		q = q.Where("admin = ?", *f.Admin)
	}
	// groupid and member are synonyms for membership match
	gid := f.GroupID
	if gid == nil {
		gid = f.Member
	}
	if gid != nil {
		q = q.Joins("JOIN group_members gm ON gm.user_id = users.userid").
			Where("gm.group_id = ?", *gid)
	}
	return q
}

func applyGroupFilter(q *gorm.DB, f *domain.GroupFilter) *gorm.DB {
	if vals := domain.SplitCSV(f.Groupname); vals != nil {
		q = q.Where("groupname IN ?", vals)
	}
	if f.Member != nil {
		q = q.Joins("JOIN group_members gm ON gm.group_id = groups.groupid").
			Where("gm.user_id = ?", *f.Member)
	}
	return q
}

// applySort adds ORDER BY clauses for keys (already validated against
// the field whitelist) plus the insertion-order tiebreak.
func applySort(q *gorm.DB, keys []domain.SortKey, tieBreak string) *gorm.DB {
	for _, k := range keys {
		q = q.Order(clause.OrderByColumn{
			Column: clause.Column{Name: k.Field},
			Desc:   k.Desc,
		})
	}
	return q.Order(clause.OrderByColumn{Column: clause.Column{Name: tieBreak}})
}

// applyPage slices after filtering and sorting. A nil limit means
// unbounded.
func applyPage(q *gorm.DB, offset int, limit *int) *gorm.DB {
	if offset > 0 {
		q = q.Offset(offset)
	}
	if limit != nil {
		q = q.Limit(*limit)
	}
	return q
}

// isDupKey recognizes unique-constraint violations across the
// supported drivers without depending on driver error types.
func isDupKey(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "unique violation") ||
		strings.Contains(msg, "duplicate key")
}
