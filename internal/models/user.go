package models

// Role determines what a user may do.
type Role string

const (
	RoleClient Role = "client"
	RoleArtist Role = "artist"
	RoleAdmin  Role = "admin"
)

// User is an account that can log in.
type User struct {
	Base
	Username string `json:"username" gorm:"uniqueIndex;type:varchar(100);not null" validate:"required,min=3,max=100"`
	Email    string `json:"email" gorm:"uniqueIndex;type:varchar(255);not null" validate:"required,email"`
	Password string `json:"-" gorm:"type:varchar(255);not null"` // bcrypt hash
	Role     Role   `json:"role" gorm:"type:varchar(20);default:client;not null"`
	IsActive bool   `json:"is_active" gorm:"not null"`
}

// IsAdmin reports whether the user has the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
