package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role is the single source of truth for a user's privileges. The
// is-admin/is-moderator checks are derived from it, never stored.
type Role string

const (
	RoleUser      Role = "user"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

func (r Role) IsAdmin() bool     { return r == RoleAdmin }
func (r Role) IsModerator() bool { return r == RoleModerator }
func (r Role) IsUser() bool      { return r == RoleUser }

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleModerator || r == RoleAdmin
}

type User struct {
	ID        string `gorm:"primaryKey;type:uuid" json:"id"`
	Username  string `gorm:"uniqueIndex;not null" json:"username"`
	Email     string `gorm:"uniqueIndex;not null" json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Bio       string `gorm:"size:500" json:"bio"`
	Role      Role   `gorm:"type:varchar(20);default:'user';not null" json:"role"`

	// bcrypt hash of the last issued confirmation code, cleared after a
	// successful token exchange. Never serialized.
	ConfirmationCode string `gorm:"size:100" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate hook to set UUID before creating a User
func (user *User) BeforeCreate(tx *gorm.DB) (err error) {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.Role == "" {
		user.Role = RoleUser
	}
	return
}

// CanModerate reports whether the user may edit or delete content
// authored by somebody else.
func (u *User) CanModerate() bool {
	return u.Role.IsAdmin() || u.Role.IsModerator()
}

func (User) TableName() string {
	return "users"
}
