package domain

import "time"

type User struct {
	UserID          int64      `gorm:"column:userid;primaryKey;autoIncrement" json:"userid"`
	Username        string     `gorm:"uniqueIndex;size:20;not null" json:"username"`
	Firstname       string     `gorm:"size:30;not null" json:"firstname"`
	Lastname        string     `gorm:"size:30;not null" json:"lastname"`
	Email           string     `gorm:"size:191;not null" json:"email"`
	Phone           string     `gorm:"size:20;not null" json:"phone"`
	PasswordHash    string     `gorm:"size:100" json:"-"`
	Locked          bool       `gorm:"not null;default:false" json:"locked"`
	FailedLogins    int        `gorm:"not null;default:0" json:"failedLogins"`
	LastFailedLogin *time.Time `json:"lastFailedLogin"`
	Admin           bool       `gorm:"not null;default:false" json:"admin"`
	CreatedAt       time.Time  `json:"-"`
	UpdatedAt       time.Time  `json:"-"`
}

func (User) TableName() string { return "users" }

// UserUpdate carries a partial update; nil fields are left untouched.
type UserUpdate struct {
	Username  *string
	Firstname *string
	Lastname  *string
	Email     *string
	Phone     *string
}

type UserRepository interface {
	Create(u *User) error
	FindByID(id int64) (*User, error)
	FindByUsername(username string) (*User, error)
	Update(id int64, upd UserUpdate) (*User, error)
	Delete(id int64) error
	List(f *UserFilter) ([]User, error)

	SetPasswordHash(id int64, hash string) error
	SetLock(id int64, locked bool) error
	SetAdmin(id int64, admin bool) error

	// RecordLoginFailure increments failed_logins atomically, stamps
	// last_failed_login and locks the account once the counter exceeds
	// maxFailed. Returns the counter value after the increment.
	RecordLoginFailure(id int64, at time.Time, maxFailed int) (int, error)
	// ResetLoginFailures clears the counter, the failure timestamp and
	// the lock flag in one update.
	ResetLoginFailures(id int64) error
}
