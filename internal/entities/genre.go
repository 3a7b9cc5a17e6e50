package entities

import (
	"fmt"
	"strings"
)

// Genre is the fixed book category enumeration. The string values are the
// canonical forms stored in the database and returned over the API.
type Genre string

const (
	GenreFiction    Genre = "Fiction"
	GenreNonFiction Genre = "Non-Fiction"
	GenreScience    Genre = "Science"
	GenreHistory    Genre = "History"
	GenreBiography  Genre = "Biography"
	GenreFantasy    Genre = "Fantasy"
	GenreMystery    Genre = "Mystery"
	GenreRomance    Genre = "Romance"
	GenreThriller   Genre = "Thriller"
	GenreChildren   Genre = "Children"
	GenrePoetry     Genre = "Poetry"
	GenrePhilosophy Genre = "Philosophy"
	GenreSelfHelp   Genre = "Self-Help"
	GenreTravel     Genre = "Travel"
	GenreCooking    Genre = "Cooking"
	GenreArt        Genre = "Art"
	GenreReligion   Genre = "Religion"
	GenreBusiness   Genre = "Business"
	GenreHealth     Genre = "Health"
	GenreTechnology Genre = "Technology"
)

// AllGenres lists every valid genre in declaration order.
var AllGenres = []Genre{
	GenreFiction, GenreNonFiction, GenreScience, GenreHistory, GenreBiography,
	GenreFantasy, GenreMystery, GenreRomance, GenreThriller, GenreChildren,
	GenrePoetry, GenrePhilosophy, GenreSelfHelp, GenreTravel, GenreCooking,
	GenreArt, GenreReligion, GenreBusiness, GenreHealth, GenreTechnology,
}

var genreByKey = func() map[string]Genre {
	m := make(map[string]Genre, len(AllGenres))
	for _, g := range AllGenres {
		m[genreKey(string(g))] = g
	}
	return m
}()

// genreKey normalizes a raw genre string for lookup: case-insensitive,
// hyphens and underscores treated as equivalent ("non_fiction" == "Non-Fiction").
func genreKey(s string) string {
	s = strings.TrimSpace(strings.ToLower(s))
	s = strings.ReplaceAll(s, "-", "_")
	return s
}

// ParseGenre resolves a raw string to a canonical Genre.
func ParseGenre(s string) (Genre, error) {
	if g, ok := genreByKey[genreKey(s)]; ok {
		return g, nil
	}
	return "", fmt.Errorf("invalid genre %q, must be one of: %s", s, genreList())
}

// ValidGenre reports whether g is already a canonical genre value.
func ValidGenre(g Genre) bool {
	_, ok := genreByKey[genreKey(string(g))]
	return ok && genreByKey[genreKey(string(g))] == g
}

func genreList() string {
	names := make([]string, len(AllGenres))
	for i, g := range AllGenres {
		names[i] = string(g)
	}
	return strings.Join(names, ", ")
}
