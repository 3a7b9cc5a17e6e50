// Package users provides database operations for user management.
package users

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/bookcatalog/internal/entities"
)

var ErrUserNotFound = errors.New("user not found")

// Repository handles all user database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new users repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create persists a new user.
func (r *Repository) Create(user *entities.User) error {
	return r.db.Create(user).Error
}

// GetByID retrieves a user by ID.
func (r *Repository) GetByID(id uint) (*entities.User, error) {
	var user entities.User
	err := r.db.First(&user, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// GetByEmail retrieves a user by email.
func (r *Repository) GetByEmail(email string) (*entities.User, error) {
	var user entities.User
	err := r.db.Where("email = ?", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// List returns all users ordered by ID.
func (r *Repository) List() ([]entities.User, error) {
	var users []entities.User
	err := r.db.Order("id ASC").Find(&users).Error
	return users, err
}

// Update applies the given column updates to a user.
func (r *Repository) Update(id uint, fields map[string]any) error {
	result := r.db.Model(&entities.User{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// Delete removes a user row.
func (r *Repository) Delete(id uint) error {
	result := r.db.Delete(&entities.User{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// UpdateLastLogin stamps the user's last successful login time.
func (r *Repository) UpdateLastLogin(id uint, at time.Time) error {
	return r.db.Model(&entities.User{}).Where("id = ?", id).
		Update("last_login", at).Error
}
