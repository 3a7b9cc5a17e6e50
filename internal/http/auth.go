package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookcatalog/internal/auth"
	"github.com/mrlokans/bookcatalog/internal/entities"
)

// AuthController exposes registration, login, token refresh and 2FA
// endpoints.
type AuthController struct {
	service *auth.Service
}

// NewAuthController creates an auth controller.
func NewAuthController(service *auth.Service) *AuthController {
	return &AuthController{service: service}
}

type registerRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	TOTPCode string `json:"totp_code"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type enable2FARequest struct {
	Code string `json:"code" binding:"required"`
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// Register handles POST /api/auth/register.
func (ctrl *AuthController) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}
	if req.Role == "" {
		req.Role = string(entities.UserRoleUser)
	}

	user, err := ctrl.service.Register(req.Email, req.Password, entities.UserRole(req.Role))
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUserExists):
			respondBadRequest(c, err.Error())
		case errors.Is(err, auth.ErrEmailInvalid),
			errors.Is(err, auth.ErrInvalidRole),
			errors.Is(err, auth.ErrPasswordTooShort),
			errors.Is(err, auth.ErrPasswordTooLong):
			respondUnprocessable(c, map[string]string{fieldFor(err): err.Error()})
		default:
			respondInternalError(c, err, "register user")
		}
		return
	}
	c.JSON(http.StatusCreated, user)
}

// Login handles POST /api/auth/login. When the account has 2FA enabled a
// valid totp_code is required.
func (ctrl *AuthController) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	pair, _, err := ctrl.service.Login(req.Email, req.Password, req.TOTPCode)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials),
			errors.Is(err, auth.Err2FARequired),
			errors.Is(err, auth.Err2FACodeInvalid):
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: err.Error()})
		default:
			respondInternalError(c, err, "login")
		}
		return
	}
	c.JSON(http.StatusOK, tokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "bearer",
	})
}

// Refresh handles POST /api/auth/refresh.
func (ctrl *AuthController) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	pair, err := ctrl.service.Refresh(req.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidToken),
			errors.Is(err, auth.ErrTokenExpired),
			errors.Is(err, auth.ErrWrongTokenType):
			c.JSON(http.StatusUnauthorized, ErrorResponse{Error: err.Error()})
		default:
			respondInternalError(c, err, "refresh token")
		}
		return
	}
	c.JSON(http.StatusOK, tokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		TokenType:    "bearer",
	})
}

// Setup2FA handles POST /api/auth/2fa/setup for the authenticated user.
func (ctrl *AuthController) Setup2FA(c *gin.Context) {
	uri, err := ctrl.service.Setup2FA(auth.GetUserID(c))
	if err != nil {
		respondInternalError(c, err, "setup 2fa")
		return
	}
	c.JSON(http.StatusOK, gin.H{"provisioning_uri": uri})
}

// Enable2FA handles POST /api/auth/2fa/enable for the authenticated user.
func (ctrl *AuthController) Enable2FA(c *gin.Context) {
	var req enable2FARequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	if err := ctrl.service.Enable2FA(auth.GetUserID(c), req.Code); err != nil {
		switch {
		case errors.Is(err, auth.Err2FACodeInvalid), errors.Is(err, auth.Err2FANotConfigured):
			respondBadRequest(c, err.Error())
		default:
			respondInternalError(c, err, "enable 2fa")
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "2FA enabled"})
}

func fieldFor(err error) string {
	switch {
	case errors.Is(err, auth.ErrEmailInvalid):
		return "email"
	case errors.Is(err, auth.ErrInvalidRole):
		return "role"
	default:
		return "password"
	}
}
