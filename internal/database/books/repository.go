// Package books provides database operations for books and authors.
//
// # Usage
//
//	repo := books.NewRepository(db)
//	book, err := repo.GetByID(123)
package books

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/mrlokans/bookcatalog/internal/entities"
)

var (
	ErrBookNotFound   = errors.New("book not found")
	ErrAuthorNotFound = errors.New("author not found")
)

// Sortable columns for listing. User-supplied sort keys are resolved through
// this map and never interpolated into the query directly.
var sortColumns = map[string]string{
	"title":          "LOWER(books.title)",
	"published_year": "books.published_year",
	"author":         "LOWER(authors.name)",
}

var sortDirections = map[string]string{
	"asc":  "ASC",
	"desc": "DESC",
}

// ListParams describes the filtering, sorting and pagination of a book listing.
// All fields are expected to be validated at the HTTP boundary; the repository
// re-checks the sort allow-lists (falling back to title ascending) and rejects
// non-canonical genre values.
type ListParams struct {
	Page      int
	Size      int
	Title     string         // case-insensitive substring
	Author    string         // case-insensitive substring on author name
	Genre     entities.Genre // exact match, empty means no filter
	YearMin   *int           // inclusive
	YearMax   *int           // inclusive
	SortBy    string         // title | published_year | author
	SortOrder string         // asc | desc
}

// Repository handles book and author database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new books repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// List returns books matching the given filters, joined with their author,
// ordered and sliced. Offsets past the end of the result set return an empty
// page.
func (r *Repository) List(params ListParams) ([]entities.Book, error) {
	query := r.db.Model(&entities.Book{}).
		Joins("JOIN authors ON authors.id = books.author_id").
		Preload("Author")

	if params.Title != "" {
		query = query.Where("LOWER(books.title) LIKE LOWER(?)", "%"+params.Title+"%")
	}
	if params.Author != "" {
		query = query.Where("LOWER(authors.name) LIKE LOWER(?)", "%"+params.Author+"%")
	}
	if params.Genre != "" {
		if !entities.ValidGenre(params.Genre) {
			return nil, fmt.Errorf("invalid genre %q", params.Genre)
		}
		query = query.Where("books.genre = ?", params.Genre)
	}
	if params.YearMin != nil {
		query = query.Where("books.published_year >= ?", *params.YearMin)
	}
	if params.YearMax != nil {
		query = query.Where("books.published_year <= ?", *params.YearMax)
	}

	column, ok := sortColumns[params.SortBy]
	if !ok {
		column = sortColumns["title"]
	}
	direction, ok := sortDirections[params.SortOrder]
	if !ok {
		direction = "ASC"
	}

	var books []entities.Book
	err := query.
		Order(column + " " + direction).
		Offset(params.Page * params.Size).
		Limit(params.Size).
		Find(&books).Error
	return books, err
}

// GetByID retrieves a book with its author.
func (r *Repository) GetByID(id uint) (*entities.Book, error) {
	var book entities.Book
	err := r.db.Preload("Author").First(&book, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, err
	}
	return &book, nil
}

// FindByTitleAndAuthor looks up a book under an author by case-insensitive
// exact title match.
func (r *Repository) FindByTitleAndAuthor(title string, authorID uint) (*entities.Book, error) {
	var book entities.Book
	err := r.db.
		Where("LOWER(title) = LOWER(?) AND author_id = ?", title, authorID).
		First(&book).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, err
	}
	return &book, nil
}

// Create persists a new book.
func (r *Repository) Create(book *entities.Book) error {
	return r.db.Create(book).Error
}

// Update applies the given column updates to a book.
func (r *Repository) Update(id uint, fields map[string]any) error {
	return r.db.Model(&entities.Book{}).Where("id = ?", id).Updates(fields).Error
}

// Delete removes a book row. The associated author is left untouched.
func (r *Repository) Delete(id uint) error {
	result := r.db.Delete(&entities.Book{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrBookNotFound
	}
	return nil
}

// GetAuthorByName looks up an author by case-insensitive exact name match.
func (r *Repository) GetAuthorByName(name string) (*entities.Author, error) {
	var author entities.Author
	err := r.db.Where("LOWER(name) = LOWER(?)", name).First(&author).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAuthorNotFound
		}
		return nil, err
	}
	return &author, nil
}

// CreateAuthor persists a new author.
func (r *Repository) CreateAuthor(author *entities.Author) error {
	return r.db.Create(author).Error
}

// CountBooksByAuthor returns the number of books referencing the author.
func (r *Repository) CountBooksByAuthor(authorID uint) (int64, error) {
	var count int64
	err := r.db.Model(&entities.Book{}).Where("author_id = ?", authorID).Count(&count).Error
	return count, err
}

// DeleteAuthorIfNoBooks removes an author only when no books reference them.
// Returns true if the author was deleted.
func (r *Repository) DeleteAuthorIfNoBooks(authorID uint) (bool, error) {
	count, err := r.CountBooksByAuthor(authorID)
	if err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}
	result := r.db.Delete(&entities.Author{}, authorID)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
