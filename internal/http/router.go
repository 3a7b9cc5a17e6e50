package http

import (
	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookcatalog/internal/auth"
	"github.com/mrlokans/bookcatalog/internal/books"
	"github.com/mrlokans/bookcatalog/internal/database"
	"github.com/mrlokans/bookcatalog/internal/ratelimit"
)

// RouterConfig carries the dependencies of the HTTP router, improving
// testability and reducing parameter count.
type RouterConfig struct {
	Database       *database.Database
	BookService    *books.Service
	AuthService    *auth.Service
	AuthMiddleware *auth.Middleware
	Limiter        *ratelimit.Limiter
	Version        string
}

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	// Rate limiting applies to everything except its skip-listed paths
	if cfg.Limiter != nil {
		router.Use(cfg.Limiter.Middleware())
	}

	health := NewHealthController(cfg.Database, cfg.Version)
	authController := NewAuthController(cfg.AuthService)
	usersController := NewUsersController(cfg.AuthService)
	booksController := NewBooksController(cfg.BookService)

	requireAuth := cfg.AuthMiddleware.RequireAuth()
	requireAdmin := cfg.AuthMiddleware.RequireAdmin()

	router.GET("/health", health.Status)

	api := router.Group("/api")
	{
		api.GET("/ping", func(c *gin.Context) {
			c.JSON(200, gin.H{"message": "pong"})
		})

		authRoutes := api.Group("/auth")
		{
			authRoutes.POST("/register", authController.Register)
			authRoutes.POST("/login", authController.Login)
			authRoutes.POST("/refresh", authController.Refresh)
			authRoutes.POST("/2fa/setup", requireAuth, authController.Setup2FA)
			authRoutes.POST("/2fa/enable", requireAuth, authController.Enable2FA)
		}

		userRoutes := api.Group("/users")
		userRoutes.Use(requireAuth)
		{
			userRoutes.GET("", requireAdmin, usersController.List)
			userRoutes.GET("/:id", usersController.Get)
			userRoutes.PUT("/:id", requireAdmin, usersController.Update)
			userRoutes.DELETE("/:id", requireAdmin, usersController.Delete)
		}

		bookRoutes := api.Group("/books")
		{
			// Listing and detail are public
			bookRoutes.GET("", booksController.List)
			bookRoutes.GET("/:id", booksController.Get)

			// Mutations require a bearer token
			bookRoutes.POST("", requireAuth, booksController.Create)
			bookRoutes.PUT("/:id", requireAuth, booksController.Update)
			bookRoutes.DELETE("/:id", requireAuth, booksController.Delete)
			bookRoutes.POST("/bulk-import", requireAuth, booksController.BulkImport)
		}
	}

	return router
}
