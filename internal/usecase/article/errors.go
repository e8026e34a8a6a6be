// Package article provides use cases for managing article entities.
// It implements the retrieval, single-field update, insert and delete
// operations on stored news articles and delegates persistence to the
// article repository.
package article

import "errors"

// Sentinel errors for article use case operations.
var (
	// ErrArticleNotFound indicates that the requested article was not found.
	// Only the details lookup reports absence as an error; Get returns nil.
	ErrArticleNotFound = errors.New("article not found")

	// ErrInvalidArticleID indicates that the provided article ID is invalid.
	// Article IDs must be positive integers.
	ErrInvalidArticleID = errors.New("invalid article ID")
)
