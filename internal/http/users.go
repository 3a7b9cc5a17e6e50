package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookcatalog/internal/auth"
	"github.com/mrlokans/bookcatalog/internal/entities"
)

// UsersController exposes the admin user-management endpoints.
type UsersController struct {
	service *auth.Service
}

// NewUsersController creates a users controller.
func NewUsersController(service *auth.Service) *UsersController {
	return &UsersController{service: service}
}

type updateUserRequest struct {
	Email *string `json:"email"`
	Role  *string `json:"role"`
}

// List handles GET /api/users (admin only).
func (ctrl *UsersController) List(c *gin.Context) {
	users, err := ctrl.service.ListUsers()
	if err != nil {
		respondInternalError(c, err, "list users")
		return
	}
	c.JSON(http.StatusOK, users)
}

// Get handles GET /api/users/:id.
func (ctrl *UsersController) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	user, err := ctrl.service.GetUser(id)
	if err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			respondNotFound(c, "user")
			return
		}
		respondInternalError(c, err, "get user")
		return
	}
	c.JSON(http.StatusOK, user)
}

// Update handles PUT /api/users/:id (admin only, partial update).
func (ctrl *UsersController) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req updateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	var role *entities.UserRole
	if req.Role != nil {
		r := entities.UserRole(*req.Role)
		role = &r
	}

	user, err := ctrl.service.UpdateUser(id, req.Email, role)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUserNotFound):
			respondNotFound(c, "user")
		case errors.Is(err, auth.ErrEmailInvalid), errors.Is(err, auth.ErrInvalidRole):
			respondUnprocessable(c, map[string]string{fieldFor(err): err.Error()})
		default:
			respondInternalError(c, err, "update user")
		}
		return
	}
	c.JSON(http.StatusOK, user)
}

// Delete handles DELETE /api/users/:id (admin only).
func (ctrl *UsersController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.service.DeleteUser(id); err != nil {
		if errors.Is(err, auth.ErrUserNotFound) {
			respondNotFound(c, "user")
			return
		}
		respondInternalError(c, err, "delete user")
		return
	}
	c.Status(http.StatusNoContent)
}
