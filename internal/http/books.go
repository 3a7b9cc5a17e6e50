package http

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/bookcatalog/internal/books"
	booksdb "github.com/mrlokans/bookcatalog/internal/database/books"
	"github.com/mrlokans/bookcatalog/internal/entities"
)

// Listing boundary limits.
const (
	defaultPageSize = 10
	maxPageSize     = 100
)

var (
	allowedSortKeys   = map[string]bool{"title": true, "published_year": true, "author": true}
	allowedSortOrders = map[string]bool{"asc": true, "desc": true}
)

// BooksController exposes the book CRUD, listing and bulk-import endpoints.
type BooksController struct {
	service *books.Service
}

// NewBooksController creates a books controller.
func NewBooksController(service *books.Service) *BooksController {
	return &BooksController{service: service}
}

type createBookRequest struct {
	Title         string `json:"title" binding:"required"`
	AuthorName    string `json:"author_name" binding:"required"`
	PublishedYear int    `json:"published_year" binding:"required"`
	Genre         string `json:"genre" binding:"required"`
}

type updateBookRequest struct {
	Title         *string `json:"title"`
	AuthorName    *string `json:"author_name"`
	PublishedYear *int    `json:"published_year"`
	Genre         *string `json:"genre"`
}

// List handles GET /api/books. Unknown sort keys, out-of-range pagination and
// invalid genres are rejected here, before the repository is reached.
func (ctrl *BooksController) List(c *gin.Context) {
	params, ok := parseListParams(c)
	if !ok {
		return
	}

	result, err := ctrl.service.List(params)
	if err != nil {
		respondInternalError(c, err, "list books")
		return
	}
	c.JSON(http.StatusOK, result)
}

// Get handles GET /api/books/:id.
func (ctrl *BooksController) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	book, err := ctrl.service.Get(id)
	if err != nil {
		respondBookServiceError(c, err, "get book")
		return
	}
	c.JSON(http.StatusOK, book)
}

// Create handles POST /api/books.
func (ctrl *BooksController) Create(c *gin.Context) {
	var req createBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	book, err := ctrl.service.Create(books.CreateParams{
		Title:         req.Title,
		AuthorName:    req.AuthorName,
		PublishedYear: req.PublishedYear,
		Genre:         req.Genre,
	})
	if err != nil {
		respondBookServiceError(c, err, "create book")
		return
	}
	c.JSON(http.StatusCreated, book)
}

// Update handles PUT /api/books/:id with partial-update semantics: only the
// fields present in the body are applied.
func (ctrl *BooksController) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req updateBookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindingError(c, err)
		return
	}

	book, err := ctrl.service.Update(id, books.UpdateParams{
		Title:         req.Title,
		AuthorName:    req.AuthorName,
		PublishedYear: req.PublishedYear,
		Genre:         req.Genre,
	})
	if err != nil {
		respondBookServiceError(c, err, "update book")
		return
	}
	c.JSON(http.StatusOK, book)
}

// Delete handles DELETE /api/books/:id.
func (ctrl *BooksController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := ctrl.service.Delete(id); err != nil {
		respondBookServiceError(c, err, "delete book")
		return
	}
	c.Status(http.StatusNoContent)
}

// BulkImport handles POST /api/books/bulk-import with a multipart "file"
// upload. Per-row failures are reported in the response body, not as an
// error status.
func (ctrl *BooksController) BulkImport(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		respondBadRequest(c, books.ErrEmptyFile.Error())
		return
	}
	defer file.Close()

	report, err := ctrl.service.BulkImport(header.Filename, file)
	if err != nil {
		respondBookServiceError(c, err, "bulk import")
		return
	}
	c.JSON(http.StatusOK, report)
}

// parseListParams validates the listing query parameters. On failure it
// writes a 400 response and returns ok=false.
func parseListParams(c *gin.Context) (booksdb.ListParams, bool) {
	params := booksdb.ListParams{
		Title:     c.Query("title"),
		Author:    c.Query("author"),
		SortBy:    c.DefaultQuery("sort_by", "title"),
		SortOrder: c.DefaultQuery("sort_order", "asc"),
	}

	page, err := strconv.Atoi(c.DefaultQuery("page", "0"))
	if err != nil || page < 0 {
		respondBadRequest(c, "page must be a non-negative integer")
		return params, false
	}
	params.Page = page

	size, err := strconv.Atoi(c.DefaultQuery("size", strconv.Itoa(defaultPageSize)))
	if err != nil || size < 1 || size > maxPageSize {
		respondBadRequest(c, "size must be between 1 and 100")
		return params, false
	}
	params.Size = size

	if !allowedSortKeys[params.SortBy] {
		respondBadRequest(c, "sort_by must be one of: title, published_year, author")
		return params, false
	}
	if !allowedSortOrders[params.SortOrder] {
		respondBadRequest(c, "sort_order must be either asc or desc")
		return params, false
	}

	if raw := c.Query("genre"); raw != "" {
		genre, err := entities.ParseGenre(raw)
		if err != nil {
			respondBadRequest(c, err.Error())
			return params, false
		}
		params.Genre = genre
	}

	if raw := c.Query("year_min"); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil || year < books.MinPublishedYear {
			respondBadRequest(c, "year_min must be an integer >= 1800")
			return params, false
		}
		params.YearMin = &year
	}
	if raw := c.Query("year_max"); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil || year > time.Now().Year() {
			respondBadRequest(c, fmt.Sprintf("year_max must be an integer <= %d", time.Now().Year()))
			return params, false
		}
		params.YearMax = &year
	}

	return params, true
}
