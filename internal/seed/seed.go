// Package seed populates an empty book store from the Open Library
// catalog once at process startup.
package seed

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/BackendCourseDocs/assignment6-MohammadHadiSedaqat/internal/book"
	"github.com/BackendCourseDocs/assignment6-MohammadHadiSedaqat/internal/platform/openlibrary"
)

// BookStore is the slice of the book repository the seeder needs.
type BookStore interface {
	Count(ctx context.Context) (int, error)
	CreateBatch(ctx context.Context, books []book.Book) error
}

// CatalogClient fetches candidate books from the external catalog.
type CatalogClient interface {
	Search(ctx context.Context, query string, limit int) (*openlibrary.SearchResponse, error)
}

// Config fixes the search term and page size. Neither is user-supplied.
type Config struct {
	Query string
	Limit int
}

type Loader struct {
	store  BookStore
	client CatalogClient
	cfg    Config
	logger *zap.Logger
}

func NewLoader(store BookStore, client CatalogClient, cfg Config, logger *zap.Logger) *Loader {
	return &Loader{store: store, client: client, cfg: cfg, logger: logger}
}

// Run inserts one page of catalog results when the store is empty. A
// non-empty store makes it a no-op, so restarting the process never
// duplicates rows.
func (l *Loader) Run(ctx context.Context) error {
	count, err := l.store.Count(ctx)
	if err != nil {
		return fmt.Errorf("count books: %w", err)
	}
	if count > 0 {
		l.logger.Info("store already populated, skipping seed", zap.Int("count", count))
		return nil
	}

	res, err := l.client.Search(ctx, l.cfg.Query, l.cfg.Limit)
	if err != nil {
		return fmt.Errorf("search catalog: %w", err)
	}

	books := mapDocs(res.Docs)
	if len(books) == 0 {
		l.logger.Warn("catalog returned no usable records", zap.String("query", l.cfg.Query))
		return nil
	}

	if err := l.store.CreateBatch(ctx, books); err != nil {
		return fmt.Errorf("insert seed batch: %w", err)
	}

	l.logger.Info("seeded store from catalog",
		zap.String("query", l.cfg.Query),
		zap.Int("inserted", len(books)),
	)
	return nil
}

// mapDocs shapes catalog results into book rows. Records without a title
// are dropped; a missing author or publisher becomes "Unknown" and a
// missing year stays absent.
func mapDocs(docs []openlibrary.Doc) []book.Book {
	books := make([]book.Book, 0, len(docs))
	for _, doc := range docs {
		if doc.Title == "" {
			continue
		}

		b := book.Book{
			Title:            doc.Title,
			Author:           "Unknown",
			Publisher:        "Unknown",
			FirstPublishYear: doc.FirstPublishYear,
		}
		if len(doc.AuthorNames) > 0 {
			b.Author = doc.AuthorNames[0]
		}
		if len(doc.Publishers) > 0 {
			b.Publisher = doc.Publishers[0]
		}
		books = append(books, b)
	}
	return books
}
