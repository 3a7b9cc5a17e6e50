// Package books implements the business rules of the catalog: duplicate
// detection, author reuse, partial updates and the bulk-import pipeline.
package books

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mrlokans/bookcatalog/internal/database/books"
	"github.com/mrlokans/bookcatalog/internal/entities"
)

// MinPublishedYear is the lower bound of the accepted publication window.
// The upper bound is the current year at validation time.
const MinPublishedYear = 1800

// Service enforces catalog invariants on top of the books repository.
type Service struct {
	repo *books.Repository
}

// NewService creates a new book service.
func NewService(repo *books.Repository) *Service {
	return &Service{repo: repo}
}

// CreateParams are the fields required to create a book.
type CreateParams struct {
	Title         string
	AuthorName    string
	PublishedYear int
	Genre         string
}

// UpdateParams are the optional fields of a partial book update. Nil fields
// are left untouched.
type UpdateParams struct {
	Title         *string
	AuthorName    *string
	PublishedYear *int
	Genre         *string
}

// Create resolves the author by case-insensitive name (creating one if
// missing), rejects duplicate titles under the same author, and persists the
// book. The returned book has its author loaded.
func (s *Service) Create(params CreateParams) (*entities.Book, error) {
	genre, err := s.validateCreate(&params)
	if err != nil {
		return nil, err
	}

	author, err := s.resolveAuthor(params.AuthorName)
	if err != nil {
		return nil, err
	}

	_, err = s.repo.FindByTitleAndAuthor(params.Title, author.ID)
	if err == nil {
		return nil, fmt.Errorf("book %q by %s: %w", params.Title, author.Name, ErrBookExists)
	}
	if !errors.Is(err, books.ErrBookNotFound) {
		return nil, err
	}

	book := &entities.Book{
		Title:         params.Title,
		PublishedYear: params.PublishedYear,
		Genre:         genre,
		AuthorID:      author.ID,
	}
	if err := s.repo.Create(book); err != nil {
		return nil, err
	}
	book.Author = *author
	return book, nil
}

// Get retrieves a book with its author.
func (s *Service) Get(id uint) (*entities.Book, error) {
	book, err := s.repo.GetByID(id)
	if errors.Is(err, books.ErrBookNotFound) {
		return nil, ErrBookNotFound
	}
	return book, err
}

// List returns the filtered, sorted and paginated book listing.
func (s *Service) List(params books.ListParams) ([]entities.Book, error) {
	return s.repo.List(params)
}

// Update applies a partial update. When AuthorName is set the author is
// resolved or created exactly as in Create and the foreign key is rewritten.
func (s *Service) Update(id uint, params UpdateParams) (*entities.Book, error) {
	if _, err := s.Get(id); err != nil {
		return nil, err
	}

	fields := map[string]any{}
	errs := map[string]string{}

	if params.Title != nil {
		title := strings.TrimSpace(*params.Title)
		if title == "" {
			errs["title"] = "title must be a non-empty string"
		} else {
			fields["title"] = title
		}
	}
	if params.PublishedYear != nil {
		if msg := validateYear(*params.PublishedYear); msg != "" {
			errs["published_year"] = msg
		} else {
			fields["published_year"] = *params.PublishedYear
		}
	}
	if params.Genre != nil {
		genre, err := entities.ParseGenre(*params.Genre)
		if err != nil {
			errs["genre"] = err.Error()
		} else {
			fields["genre"] = genre
		}
	}
	if params.AuthorName != nil {
		name := strings.TrimSpace(*params.AuthorName)
		if name == "" {
			errs["author_name"] = "author name must be a non-empty string"
		}
	}
	if len(errs) > 0 {
		return nil, &ValidationError{Fields: errs}
	}

	if params.AuthorName != nil {
		author, err := s.resolveAuthor(strings.TrimSpace(*params.AuthorName))
		if err != nil {
			return nil, err
		}
		fields["author_id"] = author.ID
	}

	if len(fields) > 0 {
		if err := s.repo.Update(id, fields); err != nil {
			return nil, err
		}
	}
	return s.Get(id)
}

// Delete removes a book. The associated author is never cascade-deleted.
func (s *Service) Delete(id uint) error {
	err := s.repo.Delete(id)
	if errors.Is(err, books.ErrBookNotFound) {
		return ErrBookNotFound
	}
	return err
}

// resolveAuthor finds an author by case-insensitive exact name, creating a
// new record when none matches.
func (s *Service) resolveAuthor(name string) (*entities.Author, error) {
	author, err := s.repo.GetAuthorByName(name)
	if err == nil {
		return author, nil
	}
	if !errors.Is(err, books.ErrAuthorNotFound) {
		return nil, err
	}
	author = &entities.Author{Name: name}
	if err := s.repo.CreateAuthor(author); err != nil {
		return nil, err
	}
	return author, nil
}

// validateCreate trims and validates the create fields, returning the parsed
// genre. Field errors are aggregated into a single ValidationError.
func (s *Service) validateCreate(params *CreateParams) (entities.Genre, error) {
	errs := map[string]string{}

	params.Title = strings.TrimSpace(params.Title)
	if params.Title == "" {
		errs["title"] = "title must be a non-empty string"
	}

	params.AuthorName = strings.TrimSpace(params.AuthorName)
	if params.AuthorName == "" {
		errs["author_name"] = "author name must be a non-empty string"
	}

	if msg := validateYear(params.PublishedYear); msg != "" {
		errs["published_year"] = msg
	}

	genre, err := entities.ParseGenre(params.Genre)
	if err != nil {
		errs["genre"] = err.Error()
	}

	if len(errs) > 0 {
		return "", &ValidationError{Fields: errs}
	}
	return genre, nil
}

func validateYear(year int) string {
	currentYear := time.Now().Year()
	if year < MinPublishedYear || year > currentYear {
		return fmt.Sprintf("published year must be between %d and %d", MinPublishedYear, currentYear)
	}
	return ""
}
