package http

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/mrlokans/bookcatalog/internal/books"
)

// --- Response Types ---

// ErrorResponse is the standard error response format for all API errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"` // additional context (validation errors, etc.)
}

// --- Error Response Helpers ---

// respondBadRequest sends a 400 Bad Request response.
func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: message})
}

// respondNotFound sends a 404 Not Found response.
func respondNotFound(c *gin.Context, resource string) {
	c.JSON(http.StatusNotFound, ErrorResponse{Error: resource + " not found"})
}

// respondUnprocessable sends a 422 response with per-field messages.
func respondUnprocessable(c *gin.Context, fields map[string]string) {
	c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
		Error:   "validation failed",
		Details: fields,
	})
}

// respondInternalError logs the error and sends a 500 Internal Server Error
// response. The actual error is logged but not exposed to the client.
func respondInternalError(c *gin.Context, err error, context string) {
	log.Printf("Internal error (%s): %v", context, err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}

// respondBookServiceError translates book service errors into HTTP statuses:
// NotFound -> 404, Conflict and file-format failures -> 400, field
// validation -> 422, anything else -> 500.
func respondBookServiceError(c *gin.Context, err error, context string) {
	switch {
	case errors.Is(err, books.ErrBookNotFound):
		respondNotFound(c, "book")
	case errors.Is(err, books.ErrBookExists),
		errors.Is(err, books.ErrUnsupportedFormat),
		errors.Is(err, books.ErrEmptyFile):
		respondBadRequest(c, err.Error())
	default:
		if ve, ok := books.AsValidationError(err); ok {
			respondUnprocessable(c, ve.Fields)
			return
		}
		respondInternalError(c, err, context)
	}
}

// respondBindingError translates gin JSON-binding failures. Field-level
// constraint violations become a structured 422; malformed bodies a 400.
func respondBindingError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[strings.ToLower(fe.Field())] = bindingMessage(fe)
		}
		respondUnprocessable(c, fields)
		return
	}
	respondBadRequest(c, "invalid request body: "+err.Error())
}

func bindingMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	default:
		return "failed on constraint '" + fe.Tag() + "'"
	}
}

// --- Parameter Parsing ---

// parseIDParam extracts and validates an unsigned integer ID from URL
// parameters. Responds with a 400 error and returns false on failure.
func parseIDParam(c *gin.Context, paramName string) (uint, bool) {
	idStr := c.Param(paramName)
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		respondBadRequest(c, "invalid "+paramName)
		return 0, false
	}
	return uint(id), true
}
