package auth

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/bookcatalog/internal/config"
	"github.com/mrlokans/bookcatalog/internal/database/users"
	"github.com/mrlokans/bookcatalog/internal/entities"
)

func setupTestService(t *testing.T) (*Service, func()) {
	dbPath := "./test_auth_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.User{})
	require.NoError(t, err)

	repo := users.NewRepository(db)
	manager := NewJWTManager("test-secret", time.Minute, time.Hour)
	svc := NewService(repo, manager, config.Auth{
		BcryptCost: bcrypt.MinCost,
		TOTPIssuer: "bookcatalog-test",
	})

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}

	return svc, cleanup
}

func TestService_Register(t *testing.T) {
	svc, cleanup := setupTestService(t)
	defer cleanup()

	user, err := svc.Register("alice@example.com", "long-enough-password", entities.UserRoleUser)

	require.NoError(t, err)
	assert.NotZero(t, user.ID)
	assert.Equal(t, entities.UserRoleUser, user.Role)
	assert.NotEqual(t, "long-enough-password", user.PasswordHash)
	assert.False(t, user.TwoFAEnabled)
}

func TestService_Register_Validation(t *testing.T) {
	svc, cleanup := setupTestService(t)
	defer cleanup()

	_, err := svc.Register("not-an-email", "long-enough-password", entities.UserRoleUser)
	assert.ErrorIs(t, err, ErrEmailInvalid)

	_, err = svc.Register("alice@example.com", "long-enough-password", "superuser")
	assert.ErrorIs(t, err, ErrInvalidRole)

	_, err = svc.Register("alice@example.com", "short", entities.UserRoleUser)
	assert.ErrorIs(t, err, ErrPasswordTooShort)
}

func TestService_Register_DuplicateEmail(t *testing.T) {
	svc, cleanup := setupTestService(t)
	defer cleanup()

	_, err := svc.Register("alice@example.com", "long-enough-password", entities.UserRoleUser)
	require.NoError(t, err)

	_, err = svc.Register("alice@example.com", "another-password", entities.UserRoleAdmin)
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestService_Login(t *testing.T) {
	svc, cleanup := setupTestService(t)
	defer cleanup()

	registered, err := svc.Register("alice@example.com", "long-enough-password", entities.UserRoleUser)
	require.NoError(t, err)

	pair, user, err := svc.Login("alice@example.com", "long-enough-password", "")
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.Equal(t, registered.ID, user.ID)
	require.NotNil(t, user.LastLogin)
	assert.WithinDuration(t, time.Now(), *user.LastLogin, 5*time.Second)
}

func TestService_Login_BadCredentials(t *testing.T) {
	svc, cleanup := setupTestService(t)
	defer cleanup()

	_, err := svc.Register("alice@example.com", "long-enough-password", entities.UserRoleUser)
	require.NoError(t, err)

	_, _, err = svc.Login("alice@example.com", "wrong-password", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// Unknown email maps to the same error to avoid account probing
	_, _, err = svc.Login("nobody@example.com", "long-enough-password", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestService_Refresh(t *testing.T) {
	svc, cleanup := setupTestService(t)
	defer cleanup()

	_, err := svc.Register("alice@example.com", "long-enough-password", entities.UserRoleUser)
	require.NoError(t, err)

	pair, _, err := svc.Login("alice@example.com", "long-enough-password", "")
	require.NoError(t, err)

	fresh, err := svc.Refresh(pair.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, fresh.AccessToken)

	// Access tokens are not accepted on the refresh endpoint
	_, err = svc.Refresh(pair.AccessToken)
	assert.ErrorIs(t, err, ErrWrongTokenType)
}

func TestService_TwoFactorFlow(t *testing.T) {
	svc, cleanup := setupTestService(t)
	defer cleanup()

	user, err := svc.Register("alice@example.com", "long-enough-password", entities.UserRoleUser)
	require.NoError(t, err)

	uri, err := svc.Setup2FA(user.ID)
	require.NoError(t, err)
	assert.Contains(t, uri, "otpauth://totp/")

	// Setup alone must not turn the flag on
	stored, err := svc.GetUser(user.ID)
	require.NoError(t, err)
	assert.False(t, stored.TwoFAEnabled)
	require.NotEmpty(t, stored.OTPSecret)

	assert.ErrorIs(t, svc.Enable2FA(user.ID, "000000"), Err2FACodeInvalid)

	code, err := totp.GenerateCode(stored.OTPSecret, time.Now())
	require.NoError(t, err)
	require.NoError(t, svc.Enable2FA(user.ID, code))

	// Password alone is no longer enough
	_, _, err = svc.Login("alice@example.com", "long-enough-password", "")
	assert.ErrorIs(t, err, Err2FARequired)

	_, _, err = svc.Login("alice@example.com", "long-enough-password", "000000")
	assert.ErrorIs(t, err, Err2FACodeInvalid)

	code, err = totp.GenerateCode(stored.OTPSecret, time.Now())
	require.NoError(t, err)
	pair, _, err := svc.Login("alice@example.com", "long-enough-password", code)
	require.NoError(t, err)
	assert.NotEmpty(t, pair.AccessToken)
}

func TestService_Enable2FA_WithoutSetup(t *testing.T) {
	svc, cleanup := setupTestService(t)
	defer cleanup()

	user, err := svc.Register("alice@example.com", "long-enough-password", entities.UserRoleUser)
	require.NoError(t, err)

	assert.ErrorIs(t, svc.Enable2FA(user.ID, "123456"), Err2FANotConfigured)
}

func TestService_UpdateUser(t *testing.T) {
	svc, cleanup := setupTestService(t)
	defer cleanup()

	user, err := svc.Register("alice@example.com", "long-enough-password", entities.UserRoleUser)
	require.NoError(t, err)

	role := entities.UserRoleAdmin
	updated, err := svc.UpdateUser(user.ID, nil, &role)
	require.NoError(t, err)
	assert.Equal(t, entities.UserRoleAdmin, updated.Role)
	assert.Equal(t, "alice@example.com", updated.Email)

	badEmail := "not-an-email"
	_, err = svc.UpdateUser(user.ID, &badEmail, nil)
	assert.ErrorIs(t, err, ErrEmailInvalid)

	_, err = svc.UpdateUser(9999, nil, &role)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestService_DeleteUser(t *testing.T) {
	svc, cleanup := setupTestService(t)
	defer cleanup()

	user, err := svc.Register("alice@example.com", "long-enough-password", entities.UserRoleUser)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteUser(user.ID))
	assert.ErrorIs(t, svc.DeleteUser(user.ID), ErrUserNotFound)
}
