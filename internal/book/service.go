package book

import (
	"context"
	"fmt"
	"io"
)

// Service implements the catalog operations over a Repository and a BlobStore.
type Service struct {
	repo  Repository
	blobs BlobStore
}

// NewService creates a new book service.
func NewService(repo Repository, blobs BlobStore) *Service {
	return &Service{repo: repo, blobs: blobs}
}

// Upload carries an optional image payload attached to a create or update.
type Upload struct {
	Filename string
	Content  io.Reader
}

// CreateInput holds the fields of a create or full replace. All scalar
// fields are required; the image is optional.
type CreateInput struct {
	Title            string
	Author           string
	Publisher        string
	FirstPublishYear int
	Image            *Upload
}

// PatchInput holds the fields of a partial update. Every field is
// independently optional; nil means keep the current value.
type PatchInput struct {
	Title            *string
	Author           *string
	Publisher        *string
	FirstPublishYear *int
	Image            *Upload
}

// List returns the books matching the query.
func (s *Service) List(ctx context.Context, q Query) ([]Book, error) {
	return s.repo.List(ctx, q)
}

// Create inserts a new book and returns it with its assigned id.
// Identical inputs produce distinct rows; there is no duplicate detection.
func (s *Service) Create(ctx context.Context, in CreateInput) (Book, error) {
	imageURL, err := s.storeImage(ctx, in.Image)
	if err != nil {
		return Book{}, err
	}

	year := in.FirstPublishYear
	return s.repo.Create(ctx, Book{
		Title:            in.Title,
		Author:           in.Author,
		Publisher:        in.Publisher,
		FirstPublishYear: &year,
		ImageURL:         imageURL,
	})
}

// Replace overwrites all scalar fields of an existing book. The stored
// image URL is kept unless a new file is supplied.
func (s *Service) Replace(ctx context.Context, id int64, in CreateInput) (Book, error) {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return Book{}, err
	}

	imageURL, err := s.storeImage(ctx, in.Image)
	if err != nil {
		return Book{}, err
	}

	year := in.FirstPublishYear
	return s.repo.Update(ctx, id, func(b *Book) {
		b.Title = in.Title
		b.Author = in.Author
		b.Publisher = in.Publisher
		b.FirstPublishYear = &year
		if imageURL != nil {
			b.ImageURL = imageURL
		}
	})
}

// Patch overwrites only the supplied fields of an existing book. Image
// handling is identical to Replace.
func (s *Service) Patch(ctx context.Context, id int64, in PatchInput) (Book, error) {
	if _, err := s.repo.Get(ctx, id); err != nil {
		return Book{}, err
	}

	imageURL, err := s.storeImage(ctx, in.Image)
	if err != nil {
		return Book{}, err
	}

	return s.repo.Update(ctx, id, func(b *Book) {
		if in.Title != nil {
			b.Title = *in.Title
		}
		if in.Author != nil {
			b.Author = *in.Author
		}
		if in.Publisher != nil {
			b.Publisher = *in.Publisher
		}
		if in.FirstPublishYear != nil {
			b.FirstPublishYear = in.FirstPublishYear
		}
		if imageURL != nil {
			b.ImageURL = imageURL
		}
	})
}

// Delete removes the book and returns its pre-deletion snapshot. The
// attached image, if any, stays in the blob store.
func (s *Service) Delete(ctx context.Context, id int64) (Book, error) {
	return s.repo.Delete(ctx, id)
}

func (s *Service) storeImage(ctx context.Context, up *Upload) (*string, error) {
	if up == nil {
		return nil, nil
	}
	url, err := s.blobs.Store(ctx, up.Filename, up.Content)
	if err != nil {
		return nil, fmt.Errorf("store image: %w", err)
	}
	return &url, nil
}
