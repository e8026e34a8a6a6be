package pathutil

import (
	"errors"
	"net/http"
	"strconv"
)

// ErrInvalidID is returned when the ID in the URL path is invalid.
var ErrInvalidID = errors.New("id must be a positive integer")

// ParseID parses s as a positive int64 article ID.
//
//	id, err := ParseID("123")
//	// Returns: 123, nil
func ParseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidID
	}
	return id, nil
}

// PathID extracts the named wildcard from a ServeMux pattern such as
// "GET /news/{id}" and parses it with ParseID.
func PathID(r *http.Request, name string) (int64, error) {
	return ParseID(r.PathValue(name))
}
