package entities

import (
	"time"
)

type UserRole string

const (
	UserRoleUser  UserRole = "user"
	UserRoleAdmin UserRole = "admin"
)

// ValidRole reports whether the role is one of the known roles.
func ValidRole(r UserRole) bool {
	return r == UserRoleUser || r == UserRoleAdmin
}

type Author struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"index;size:200" json:"name"`
	Books     []Book    `gorm:"foreignKey:AuthorID" json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Book struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Title         string    `gorm:"index;size:500" json:"title"`
	PublishedYear int       `gorm:"index" json:"published_year"`
	Genre         Genre     `gorm:"index;size:50" json:"genre"`
	AuthorID      uint      `gorm:"index" json:"author_id"`
	Author        Author    `gorm:"foreignKey:AuthorID" json:"author"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type User struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	Email        string     `gorm:"uniqueIndex;size:255" json:"email"`
	PasswordHash string     `gorm:"size:100" json:"-"`
	Role         UserRole   `gorm:"size:20" json:"role"`
	TwoFAEnabled bool       `gorm:"default:false" json:"is_2fa_enabled"`
	OTPSecret    string     `gorm:"size:64" json:"-"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
}
