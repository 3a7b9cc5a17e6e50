// Package entrypoint wires the application together and runs the HTTP
// server with graceful shutdown.
package entrypoint

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookcatalog/internal/auth"
	"github.com/mrlokans/bookcatalog/internal/books"
	"github.com/mrlokans/bookcatalog/internal/config"
	"github.com/mrlokans/bookcatalog/internal/database"
	booksdb "github.com/mrlokans/bookcatalog/internal/database/books"
	usersdb "github.com/mrlokans/bookcatalog/internal/database/users"
	http_controllers "github.com/mrlokans/bookcatalog/internal/http"
	"github.com/mrlokans/bookcatalog/internal/ratelimit"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// Serve runs the HTTP server until SIGINT/SIGTERM, then shuts down within
// the configured timeout.
func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		log.Printf("Starting server at %s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

// Run assembles repositories, services, middleware and the router, then
// serves until shutdown.
func Run(cfg *config.Config, version string) {
	log.Printf("Starting book catalog v%s", version)

	if cfg.HTTP.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	jwtSecret := cfg.Auth.JWTSecret
	if jwtSecret == "" {
		// Tokens won't survive a restart without a configured secret
		jwtSecret, err = generateSecret()
		if err != nil {
			log.Fatalf("Failed to generate JWT secret: %v", err)
		}
		log.Printf("WARNING: JWT_SECRET is not set, using a generated secret. Issued tokens will be invalidated on restart.")
	}

	bookRepo := booksdb.NewRepository(db.DB)
	userRepo := usersdb.NewRepository(db.DB)

	jwtManager := auth.NewJWTManager(jwtSecret, cfg.Auth.AccessExpiry, cfg.Auth.RefreshExpiry)
	authService := auth.NewService(userRepo, jwtManager, cfg.Auth)
	authMiddleware := auth.NewMiddleware(jwtManager)
	bookService := books.NewService(bookRepo)

	var limiter *ratelimit.Limiter
	if cfg.RateLimit.Enabled {
		limiter = ratelimit.NewLimiter(ratelimit.Config{
			RequestsPerMinute: cfg.RateLimit.RequestsPerMinute,
			RequestsPerHour:   cfg.RateLimit.RequestsPerHour,
			SweepInterval:     cfg.RateLimit.SweepInterval,
		})
	}

	router := http_controllers.NewRouter(http_controllers.RouterConfig{
		Database:       db,
		BookService:    bookService,
		AuthService:    authService,
		AuthMiddleware: authMiddleware,
		Limiter:        limiter,
		Version:        version,
	})

	Serve(router, cfg, func(ctx context.Context) {
		if limiter != nil {
			limiter.Stop()
		}
	})
}

func generateSecret() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
