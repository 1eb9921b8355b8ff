package hiddencontent

import (
	"errors"
	"fmt"
)

// Error types
var (
	// ErrPageNotFound indicates a page was not found
	ErrPageNotFound = errors.New("page not found")

	// ErrPageExists indicates a page with the requested ID already exists
	ErrPageExists = errors.New("page already exists")

	// ErrInvalidPageType indicates an unknown post type
	ErrInvalidPageType = errors.New("invalid page type")

	// ErrMediaNotFound indicates a media item was not found
	ErrMediaNotFound = errors.New("media not found")

	// ErrObjectNotFound indicates a blob store key does not exist
	ErrObjectNotFound = errors.New("object not found")
)

// PageError represents an error related to page operations
type PageError struct {
	PageID int64
	Op     string
	Err    error
}

func (e *PageError) Error() string {
	return fmt.Sprintf("page operation %s failed for page %d: %v", e.Op, e.PageID, e.Err)
}

func (e *PageError) Unwrap() error {
	return e.Err
}
