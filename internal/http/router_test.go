package http

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mrlokans/bookcatalog/internal/auth"
	"github.com/mrlokans/bookcatalog/internal/books"
	"github.com/mrlokans/bookcatalog/internal/config"
	"github.com/mrlokans/bookcatalog/internal/database"
	booksdb "github.com/mrlokans/bookcatalog/internal/database/books"
	usersdb "github.com/mrlokans/bookcatalog/internal/database/users"
	"github.com/mrlokans/bookcatalog/internal/entities"
)

// testAPI bundles the router with the services behind it so tests can both
// issue requests and arrange state directly.
type testAPI struct {
	router      *gin.Engine
	authService *auth.Service
	bookService *books.Service
	tokens      *auth.JWTManager
}

func setupTestAPI(t *testing.T) (*testAPI, func()) {
	gin.SetMode(gin.TestMode)
	dbPath := "./test_api_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"

	db, err := database.NewDatabase(dbPath)
	require.NoError(t, err)

	bookRepo := booksdb.NewRepository(db.DB)
	userRepo := usersdb.NewRepository(db.DB)

	tokens := auth.NewJWTManager("test-secret", time.Minute, time.Hour)
	authService := auth.NewService(userRepo, tokens, config.Auth{
		BcryptCost: bcrypt.MinCost,
		TOTPIssuer: "bookcatalog-test",
	})
	bookService := books.NewService(bookRepo)

	router := NewRouter(RouterConfig{
		Database:       db,
		BookService:    bookService,
		AuthService:    authService,
		AuthMiddleware: auth.NewMiddleware(tokens),
		Version:        "test",
	})

	api := &testAPI{
		router:      router,
		authService: authService,
		bookService: bookService,
		tokens:      tokens,
	}

	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
	}

	return api, cleanup
}

// tokenFor registers a user with the given role and returns a bearer token.
func (a *testAPI) tokenFor(t *testing.T, email string, role entities.UserRole) string {
	t.Helper()
	user, err := a.authService.Register(email, "long-enough-password", role)
	require.NoError(t, err)
	pair, err := a.tokens.GeneratePair(user)
	require.NoError(t, err)
	return pair.AccessToken
}

func (a *testAPI) do(method, path, token string, body any) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	}
	req, _ := http.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func (a *testAPI) upload(path, token, filename, content string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, _ := writer.CreateFormFile("file", filename)
	part.Write([]byte(content))
	writer.Close()

	req, _ := http.NewRequest("POST", path, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func decodeBody[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	return out
}

func TestRouter_PingAndHealth(t *testing.T) {
	api, cleanup := setupTestAPI(t)
	defer cleanup()

	w := api.do("GET", "/api/ping", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "pong")

	w = api.do("GET", "/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), `"database": "ok"`)

	_, err := api.bookService.Create(books.CreateParams{
		Title: "Dune", AuthorName: "Frank Herbert", PublishedYear: 1965, Genre: "fantasy",
	})
	require.NoError(t, err)

	w = api.do("GET", "/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	health := decodeBody[HealthResponse](t, w)
	require.NotNil(t, health.Catalog)
	require.Equal(t, int64(1), health.Catalog.Books)
	require.Equal(t, int64(1), health.Catalog.Authors)
}
