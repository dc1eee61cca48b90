package book

import (
	"errors"
)

// ErrNotFound is returned when a book is not found.
var ErrNotFound = errors.New("book not found")

// Book represents a book row.
type Book struct {
	ID               int64   `json:"id"`
	Title            string  `json:"title"`
	Author           string  `json:"author"`
	Publisher        string  `json:"publisher"`
	FirstPublishYear *int    `json:"first_publish_year"`
	ImageURL         *string `json:"image_url,omitempty"`
}

// Query defines the filter and pagination for listing books.
type Query struct {
	Q     string
	Skip  int
	Limit int
}
