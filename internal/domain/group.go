package domain

import "time"

type Group struct {
	GroupID     int64     `gorm:"column:groupid;primaryKey;autoIncrement" json:"groupid"`
	Groupname   string    `gorm:"uniqueIndex;size:20;not null" json:"groupname"`
	Description string    `gorm:"size:255;not null" json:"description"`
	CreatedAt   time.Time `json:"-"`
	UpdatedAt   time.Time `json:"-"`
}

func (Group) TableName() string { return "groups" }

// GroupMember is a membership edge between one Group and one User.
// The composite primary key makes duplicate edges impossible.
type GroupMember struct {
	GroupID int64 `gorm:"primaryKey;autoIncrement:false"`
	UserID  int64 `gorm:"primaryKey;autoIncrement:false"`
}

func (GroupMember) TableName() string { return "group_members" }

type GroupUpdate struct {
	Groupname   *string
	Description *string
}

type GroupRepository interface {
	Create(g *Group) error
	FindByID(id int64) (*Group, error)
	Update(id int64, upd GroupUpdate) (*Group, error)
	Delete(id int64) error
	List(f *GroupFilter) ([]Group, error)

	// AddMember is idempotent: adding an existing member succeeds
	// without creating a second edge.
	AddMember(groupID, userID int64) error
	RemoveMember(groupID, userID int64) error
	ListMembers(groupID int64) ([]User, error)
}
