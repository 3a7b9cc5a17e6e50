// Package auth handles user management, password hashing, JWT issuance and
// TOTP two-factor authentication.
package auth

import (
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/mrlokans/bookcatalog/internal/config"
	"github.com/mrlokans/bookcatalog/internal/database/users"
	"github.com/mrlokans/bookcatalog/internal/entities"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user with this email already exists")
	ErrEmailInvalid       = errors.New("invalid email format")
	ErrInvalidRole        = errors.New("role must be either 'user' or 'admin'")
	ErrInvalidCredentials = errors.New("invalid email or password")
	Err2FARequired        = errors.New("2FA code required")
	Err2FACodeInvalid     = errors.New("invalid 2FA code")
	Err2FANotConfigured   = errors.New("2FA has not been set up for this account")
)

// Service handles authentication and user management.
type Service struct {
	repo   *users.Repository
	tokens *JWTManager
	config config.Auth
}

// NewService creates a new authentication service.
func NewService(repo *users.Repository, tokens *JWTManager, cfg config.Auth) *Service {
	return &Service{repo: repo, tokens: tokens, config: cfg}
}

// Register creates a new user with a hashed password.
func (s *Service) Register(email, password string, role entities.UserRole) (*entities.User, error) {
	if len(email) > 254 || !emailPattern.MatchString(email) {
		return nil, ErrEmailInvalid
	}
	if !entities.ValidRole(role) {
		return nil, ErrInvalidRole
	}

	_, err := s.repo.GetByEmail(email)
	if err == nil {
		return nil, ErrUserExists
	}
	if !errors.Is(err, users.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	hash, err := HashPassword(password, s.config.BcryptCost)
	if err != nil {
		return nil, err
	}

	user := &entities.User{
		Email:        email,
		PasswordHash: hash,
		Role:         role,
	}
	if err := s.repo.Create(user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// Login verifies credentials (and the TOTP code when 2FA is enabled), stamps
// last_login, and returns a token pair. When 2FA is enabled and no code is
// supplied, Err2FARequired is returned so the client can prompt for one.
func (s *Service) Login(email, password, totpCode string) (*TokenPair, *entities.User, error) {
	user, err := s.repo.GetByEmail(email)
	if err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if err := CheckPassword(password, user.PasswordHash); err != nil {
		return nil, nil, ErrInvalidCredentials
	}

	if user.TwoFAEnabled {
		if totpCode == "" {
			return nil, nil, Err2FARequired
		}
		if !ValidateTOTPCode(totpCode, user.OTPSecret) {
			return nil, nil, Err2FACodeInvalid
		}
	}

	now := time.Now()
	if err := s.repo.UpdateLastLogin(user.ID, now); err != nil {
		return nil, nil, err
	}
	user.LastLogin = &now

	pair, err := s.tokens.GeneratePair(user)
	if err != nil {
		return nil, nil, err
	}
	return pair, user, nil
}

// Refresh exchanges a valid refresh token for a fresh token pair.
func (s *Service) Refresh(refreshToken string) (*TokenPair, error) {
	claims, err := s.tokens.Verify(refreshToken, TokenTypeRefresh)
	if err != nil {
		return nil, err
	}
	id, err := claims.UserID()
	if err != nil {
		return nil, err
	}
	user, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}
	return s.tokens.GeneratePair(user)
}

// Setup2FA generates and stores a TOTP secret for the user. The flag stays
// off until Enable2FA verifies a code against the new secret.
func (s *Service) Setup2FA(userID uint) (provisioningURI string, err error) {
	user, err := s.GetUser(userID)
	if err != nil {
		return "", err
	}
	secret, uri, err := GenerateTOTPSecret(s.config.TOTPIssuer, user.Email)
	if err != nil {
		return "", err
	}
	if err := s.repo.Update(userID, map[string]any{"otp_secret": secret, "two_fa_enabled": false}); err != nil {
		return "", err
	}
	return uri, nil
}

// Enable2FA turns on 2FA after the user proves possession of the secret.
func (s *Service) Enable2FA(userID uint, code string) error {
	user, err := s.GetUser(userID)
	if err != nil {
		return err
	}
	if user.OTPSecret == "" {
		return Err2FANotConfigured
	}
	if !ValidateTOTPCode(code, user.OTPSecret) {
		return Err2FACodeInvalid
	}
	return s.repo.Update(userID, map[string]any{"two_fa_enabled": true})
}

// GetUser retrieves a user by ID.
func (s *Service) GetUser(id uint) (*entities.User, error) {
	user, err := s.repo.GetByID(id)
	if errors.Is(err, users.ErrUserNotFound) {
		return nil, ErrUserNotFound
	}
	return user, err
}

// ListUsers returns all users.
func (s *Service) ListUsers() ([]entities.User, error) {
	return s.repo.List()
}

// UpdateUser applies a partial update of email and/or role.
func (s *Service) UpdateUser(id uint, email *string, role *entities.UserRole) (*entities.User, error) {
	if _, err := s.GetUser(id); err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if email != nil {
		if len(*email) > 254 || !emailPattern.MatchString(*email) {
			return nil, ErrEmailInvalid
		}
		fields["email"] = *email
	}
	if role != nil {
		if !entities.ValidRole(*role) {
			return nil, ErrInvalidRole
		}
		fields["role"] = *role
	}
	if len(fields) > 0 {
		if err := s.repo.Update(id, fields); err != nil {
			return nil, err
		}
	}
	return s.GetUser(id)
}

// DeleteUser removes a user.
func (s *Service) DeleteUser(id uint) error {
	err := s.repo.Delete(id)
	if errors.Is(err, users.ErrUserNotFound) {
		return ErrUserNotFound
	}
	return err
}
