package books

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrBookNotFound      = errors.New("book not found")
	ErrBookExists        = errors.New("book already exists")
	ErrUnsupportedFormat = errors.New("invalid file format, only CSV and JSON files are supported")
	ErrEmptyFile         = errors.New("file is empty or contains no valid data")
)

// ValidationError carries per-field validation messages so the HTTP layer can
// surface them as a structured 422 response.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return strings.Join(parts, "; ")
}

// AsValidationError unwraps err into a *ValidationError if it is one.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	ok := errors.As(err, &ve)
	return ve, ok
}
