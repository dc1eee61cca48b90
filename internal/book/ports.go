package book

import (
	"context"
	"io"
)

// Repository defines the contract for book row storage.
type Repository interface {
	List(ctx context.Context, q Query) ([]Book, error)
	Get(ctx context.Context, id int64) (Book, error)
	Create(ctx context.Context, b Book) (Book, error)
	Update(ctx context.Context, id int64, apply func(*Book)) (Book, error)
	Delete(ctx context.Context, id int64) (Book, error)
	Count(ctx context.Context) (int, error)
	CreateBatch(ctx context.Context, books []Book) error
}

// BlobStore persists an uploaded payload under a unique name and
// returns the URL it can be fetched at.
type BlobStore interface {
	Store(ctx context.Context, filename string, r io.Reader) (string, error)
}
