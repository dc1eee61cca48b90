package book

import (
	"context"
	"io"
)

// This file contains the fakes used by the service and handler tests.

// fakeRepo implements Repository with overridable functions.
type fakeRepo struct {
	ListFunc        func(ctx context.Context, q Query) ([]Book, error)
	GetFunc         func(ctx context.Context, id int64) (Book, error)
	CreateFunc      func(ctx context.Context, b Book) (Book, error)
	UpdateFunc      func(ctx context.Context, id int64, apply func(*Book)) (Book, error)
	DeleteFunc      func(ctx context.Context, id int64) (Book, error)
	CountFunc       func(ctx context.Context) (int, error)
	CreateBatchFunc func(ctx context.Context, books []Book) error
}

func (f *fakeRepo) List(ctx context.Context, q Query) ([]Book, error) {
	return f.ListFunc(ctx, q)
}

func (f *fakeRepo) Get(ctx context.Context, id int64) (Book, error) {
	return f.GetFunc(ctx, id)
}

func (f *fakeRepo) Create(ctx context.Context, b Book) (Book, error) {
	return f.CreateFunc(ctx, b)
}

func (f *fakeRepo) Update(ctx context.Context, id int64, apply func(*Book)) (Book, error) {
	return f.UpdateFunc(ctx, id, apply)
}

func (f *fakeRepo) Delete(ctx context.Context, id int64) (Book, error) {
	return f.DeleteFunc(ctx, id)
}

func (f *fakeRepo) Count(ctx context.Context) (int, error) {
	return f.CountFunc(ctx)
}

func (f *fakeRepo) CreateBatch(ctx context.Context, books []Book) error {
	return f.CreateBatchFunc(ctx, books)
}

// memoryRepo backs Get/Update/Delete with a single row, mimicking the
// fetch-then-write behavior of the real repository.
func memoryRepo(current *Book) *fakeRepo {
	return &fakeRepo{
		GetFunc: func(ctx context.Context, id int64) (Book, error) {
			if current == nil || current.ID != id {
				return Book{}, ErrNotFound
			}
			return *current, nil
		},
		UpdateFunc: func(ctx context.Context, id int64, apply func(*Book)) (Book, error) {
			if current == nil || current.ID != id {
				return Book{}, ErrNotFound
			}
			apply(current)
			return *current, nil
		},
		DeleteFunc: func(ctx context.Context, id int64) (Book, error) {
			if current == nil || current.ID != id {
				return Book{}, ErrNotFound
			}
			deleted := *current
			current = nil
			return deleted, nil
		},
	}
}

// fakeBlob records stores and returns a fixed URL.
type fakeBlob struct {
	url      string
	err      error
	calls    int
	lastName string
	lastBody []byte
}

func (f *fakeBlob) Store(ctx context.Context, filename string, r io.Reader) (string, error) {
	f.calls++
	f.lastName = filename
	if r != nil {
		f.lastBody, _ = io.ReadAll(r)
	}
	if f.err != nil {
		return "", f.err
	}
	return f.url, nil
}

func intPtr(v int) *int {
	return &v
}

func strPtr(v string) *string {
	return &v
}
