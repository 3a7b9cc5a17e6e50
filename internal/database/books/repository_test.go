package books

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/bookcatalog/internal/entities"
)

func setupTestDB(t *testing.T) (*Repository, func()) {
	dbPath := "./test_books_" + strings.ReplaceAll(t.Name(), "/", "_") + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.Author{}, &entities.Book{})
	require.NoError(t, err)

	repo := NewRepository(db)

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}

	return repo, cleanup
}

func seedBook(t *testing.T, repo *Repository, title, authorName string, year int, genre entities.Genre) *entities.Book {
	t.Helper()

	author, err := repo.GetAuthorByName(authorName)
	if err != nil {
		author = &entities.Author{Name: authorName}
		require.NoError(t, repo.CreateAuthor(author))
	}

	book := &entities.Book{
		Title:         title,
		PublishedYear: year,
		Genre:         genre,
		AuthorID:      author.ID,
	}
	require.NoError(t, repo.Create(book))
	return book
}

func seedCatalog(t *testing.T, repo *Repository) {
	t.Helper()
	seedBook(t, repo, "Dune", "Frank Herbert", 1965, entities.GenreFantasy)
	seedBook(t, repo, "Brave New World", "Aldous Huxley", 1932, entities.GenreFiction)
	seedBook(t, repo, "A Brief History of Time", "Stephen Hawking", 1988, entities.GenreScience)
	seedBook(t, repo, "The Hobbit", "J.R.R. Tolkien", 1937, entities.GenreFantasy)
	seedBook(t, repo, "Sapiens", "Yuval Noah Harari", 2011, entities.GenreHistory)
}

func titlesOf(result []entities.Book) []string {
	titles := make([]string, len(result))
	for i, b := range result {
		titles[i] = b.Title
	}
	return titles
}

func TestRepository_List_FilterByTitleSubstring(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	seedCatalog(t, repo)

	result, err := repo.List(ListParams{Page: 0, Size: 10, Title: "hIsToRy"})

	require.NoError(t, err)
	assert.Equal(t, []string{"A Brief History of Time"}, titlesOf(result))
}

func TestRepository_List_FilterByAuthorSubstring(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	seedCatalog(t, repo)

	result, err := repo.List(ListParams{Page: 0, Size: 10, Author: "tolkien"})

	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, "The Hobbit", result[0].Title)
	assert.Equal(t, "J.R.R. Tolkien", result[0].Author.Name)
}

func TestRepository_List_FilterByGenre(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	seedCatalog(t, repo)

	result, err := repo.List(ListParams{Page: 0, Size: 10, Genre: entities.GenreFantasy})

	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Dune", "The Hobbit"}, titlesOf(result))
}

func TestRepository_List_RejectsNonCanonicalGenre(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	seedCatalog(t, repo)

	// Raw user input must go through entities.ParseGenre first
	_, err := repo.List(ListParams{Page: 0, Size: 10, Genre: entities.Genre("fantasy")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid genre")

	_, err = repo.List(ListParams{Page: 0, Size: 10, Genre: entities.Genre("Westerns")})
	require.Error(t, err)
}

func TestRepository_List_FilterByYearRangeInclusive(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	seedCatalog(t, repo)

	yearMin, yearMax := 1932, 1965
	result, err := repo.List(ListParams{Page: 0, Size: 10, YearMin: &yearMin, YearMax: &yearMax})

	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Dune", "Brave New World", "The Hobbit"}, titlesOf(result))
}

func TestRepository_List_SortByTitle(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	seedCatalog(t, repo)

	asc, err := repo.List(ListParams{Page: 0, Size: 10, SortBy: "title", SortOrder: "asc"})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"A Brief History of Time", "Brave New World", "Dune", "Sapiens", "The Hobbit",
	}, titlesOf(asc))

	desc, err := repo.List(ListParams{Page: 0, Size: 10, SortBy: "title", SortOrder: "desc"})
	require.NoError(t, err)
	assert.Equal(t, []string{
		"The Hobbit", "Sapiens", "Dune", "Brave New World", "A Brief History of Time",
	}, titlesOf(desc))
}

func TestRepository_List_SortByYear(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	seedCatalog(t, repo)

	result, err := repo.List(ListParams{Page: 0, Size: 10, SortBy: "published_year", SortOrder: "asc"})

	require.NoError(t, err)
	years := make([]int, len(result))
	for i, b := range result {
		years[i] = b.PublishedYear
	}
	assert.Equal(t, []int{1932, 1937, 1965, 1988, 2011}, years)
}

func TestRepository_List_SortByAuthor(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	seedCatalog(t, repo)

	result, err := repo.List(ListParams{Page: 0, Size: 10, SortBy: "author", SortOrder: "asc"})

	require.NoError(t, err)
	require.Len(t, result, 5)
	assert.Equal(t, "Aldous Huxley", result[0].Author.Name)
	assert.Equal(t, "Yuval Noah Harari", result[4].Author.Name)
}

func TestRepository_List_PaginationDisjointAndComplete(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	seedCatalog(t, repo)

	seen := map[uint]bool{}
	for page := 0; page < 3; page++ {
		result, err := repo.List(ListParams{Page: page, Size: 2, SortBy: "title", SortOrder: "asc"})
		require.NoError(t, err)
		for _, b := range result {
			assert.False(t, seen[b.ID], "book %d returned on more than one page", b.ID)
			seen[b.ID] = true
		}
	}
	assert.Len(t, seen, 5)
}

func TestRepository_List_LargeOffsetReturnsEmptyPage(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	seedCatalog(t, repo)

	result, err := repo.List(ListParams{Page: 100, Size: 10})

	require.NoError(t, err)
	assert.Empty(t, result)
}

func TestRepository_List_PreloadsAuthor(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	seedBook(t, repo, "Dune", "Frank Herbert", 1965, entities.GenreFantasy)

	result, err := repo.List(ListParams{Page: 0, Size: 10})

	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, "Frank Herbert", result[0].Author.Name)
	assert.NotZero(t, result[0].Author.ID)
}

func TestRepository_GetByID_NotFound(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	_, err := repo.GetByID(999)

	assert.ErrorIs(t, err, ErrBookNotFound)
}

func TestRepository_FindByTitleAndAuthor_CaseInsensitive(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	book := seedBook(t, repo, "Dune", "Frank Herbert", 1965, entities.GenreFantasy)

	found, err := repo.FindByTitleAndAuthor("dUNE", book.AuthorID)

	require.NoError(t, err)
	assert.Equal(t, book.ID, found.ID)
}

func TestRepository_GetAuthorByName_CaseInsensitive(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	seedBook(t, repo, "Dune", "Frank Herbert", 1965, entities.GenreFantasy)

	author, err := repo.GetAuthorByName("FRANK HERBERT")

	require.NoError(t, err)
	assert.Equal(t, "Frank Herbert", author.Name)
}

func TestRepository_Delete_LeavesAuthor(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	book := seedBook(t, repo, "Dune", "Frank Herbert", 1965, entities.GenreFantasy)

	require.NoError(t, repo.Delete(book.ID))

	_, err := repo.GetByID(book.ID)
	assert.ErrorIs(t, err, ErrBookNotFound)

	author, err := repo.GetAuthorByName("Frank Herbert")
	require.NoError(t, err)
	assert.NotNil(t, author)
}

func TestRepository_Delete_NotFound(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	assert.ErrorIs(t, repo.Delete(42), ErrBookNotFound)
}

func TestRepository_DeleteAuthorIfNoBooks(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()
	book := seedBook(t, repo, "Dune", "Frank Herbert", 1965, entities.GenreFantasy)

	// Author still referenced: not deleted
	deleted, err := repo.DeleteAuthorIfNoBooks(book.AuthorID)
	require.NoError(t, err)
	assert.False(t, deleted)

	require.NoError(t, repo.Delete(book.ID))

	deleted, err = repo.DeleteAuthorIfNoBooks(book.AuthorID)
	require.NoError(t, err)
	assert.True(t, deleted)

	_, err = repo.GetAuthorByName("Frank Herbert")
	assert.ErrorIs(t, err, ErrAuthorNotFound)
}
