// Command seed creates a catalog database pre-populated with sample books
// and an admin account.
// Usage: go run cmd/seed/main.go [-db path/to/catalog.db] [-admin-email email] [-admin-password password]
package main

import (
	"flag"
	"log"
	"os"

	"github.com/mrlokans/bookcatalog/internal/auth"
	"github.com/mrlokans/bookcatalog/internal/books"
	"github.com/mrlokans/bookcatalog/internal/database"
	booksdb "github.com/mrlokans/bookcatalog/internal/database/books"
	usersdb "github.com/mrlokans/bookcatalog/internal/database/users"
	"github.com/mrlokans/bookcatalog/internal/entities"
)

const defaultDatabasePath = "./catalog.db"

func main() {
	dbPath := flag.String("db", defaultDatabasePath, "path to the database file")
	adminEmail := flag.String("admin-email", "admin@example.com", "email of the seeded admin account")
	adminPassword := flag.String("admin-password", "change-me-please", "password of the seeded admin account")
	flag.Parse()

	log.Printf("Seeding catalog database at %s...", *dbPath)

	// Delete existing database to start fresh
	if err := os.Remove(*dbPath); err != nil && !os.IsNotExist(err) {
		log.Fatalf("Failed to remove existing database: %v", err)
	}

	db, err := database.NewDatabase(*dbPath)
	if err != nil {
		log.Fatalf("Failed to create database: %v", err)
	}
	defer db.Close()

	service := books.NewService(booksdb.NewRepository(db.DB))

	for _, params := range sampleBooks() {
		book, err := service.Create(params)
		if err != nil {
			log.Printf("Failed to save book %s: %v", params.Title, err)
			continue
		}
		log.Printf("Saved: %s by %s (%d)", book.Title, book.Author.Name, book.PublishedYear)
	}

	if err := createAdmin(db, *adminEmail, *adminPassword); err != nil {
		log.Fatalf("Failed to create admin account: %v", err)
	}
	log.Printf("Created admin account %s", *adminEmail)

	log.Println("Catalog database seeded successfully!")
}

func createAdmin(db *database.Database, email, password string) error {
	hash, err := auth.HashPassword(password, 12)
	if err != nil {
		return err
	}
	return usersdb.NewRepository(db.DB).Create(&entities.User{
		Email:        email,
		PasswordHash: hash,
		Role:         entities.UserRoleAdmin,
	})
}

func sampleBooks() []books.CreateParams {
	return []books.CreateParams{
		{Title: "Pride and Prejudice", AuthorName: "Jane Austen", PublishedYear: 1813, Genre: "romance"},
		{Title: "Frankenstein", AuthorName: "Mary Shelley", PublishedYear: 1818, Genre: "fiction"},
		{Title: "Moby-Dick", AuthorName: "Herman Melville", PublishedYear: 1851, Genre: "fiction"},
		{Title: "Crime and Punishment", AuthorName: "Fyodor Dostoevsky", PublishedYear: 1866, Genre: "fiction"},
		{Title: "The Adventures of Sherlock Holmes", AuthorName: "Arthur Conan Doyle", PublishedYear: 1892, Genre: "mystery"},
		{Title: "The Time Machine", AuthorName: "H.G. Wells", PublishedYear: 1895, Genre: "fantasy"},
		{Title: "Dracula", AuthorName: "Bram Stoker", PublishedYear: 1897, Genre: "thriller"},
		{Title: "The Hound of the Baskervilles", AuthorName: "Arthur Conan Doyle", PublishedYear: 1902, Genre: "mystery"},
		{Title: "A Brief History of Time", AuthorName: "Stephen Hawking", PublishedYear: 1988, Genre: "science"},
		{Title: "Sapiens", AuthorName: "Yuval Noah Harari", PublishedYear: 2011, Genre: "history"},
	}
}
