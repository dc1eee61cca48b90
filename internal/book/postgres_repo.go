package book

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const insertSQL = `
	INSERT INTO books (title, author, publisher, first_publish_year, image_url)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING id`

type PostgresRepo struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func NewPostgresRepo(db *pgxpool.Pool, timeout time.Duration) *PostgresRepo {
	return &PostgresRepo{db: db, timeout: timeout}
}

func (r *PostgresRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

func (r *PostgresRepo) List(ctx context.Context, q Query) ([]Book, error) {
	sql, args := BuildListQuery(q)

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	rows, err := r.db.Query(timeoutCtx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Book{}
	for rows.Next() {
		var b Book
		if err := scanBook(rows, &b); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *PostgresRepo) Get(ctx context.Context, id int64) (Book, error) {
	const query = "SELECT " + bookColumns + " FROM books WHERE id = $1"

	var b Book
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	if err := scanBook(r.db.QueryRow(timeoutCtx, query, id), &b); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Book{}, ErrNotFound
		}
		return Book{}, err
	}
	return b, nil
}

func (r *PostgresRepo) Create(ctx context.Context, b Book) (Book, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	err := r.db.QueryRow(timeoutCtx, insertSQL,
		b.Title, b.Author, b.Publisher, b.FirstPublishYear, b.ImageURL,
	).Scan(&b.ID)
	if err != nil {
		return Book{}, err
	}
	return b, nil
}

// Update fetches the row, applies the mutation, and writes it back in a
// single transaction. The row lock makes concurrent updates against the
// same id serialize instead of losing writes.
func (r *PostgresRepo) Update(ctx context.Context, id int64, apply func(*Book)) (Book, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	tx, err := r.db.Begin(timeoutCtx)
	if err != nil {
		return Book{}, err
	}
	defer tx.Rollback(timeoutCtx)

	const query = "SELECT " + bookColumns + " FROM books WHERE id = $1 FOR UPDATE"
	var b Book
	if err := scanBook(tx.QueryRow(timeoutCtx, query, id), &b); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Book{}, ErrNotFound
		}
		return Book{}, err
	}

	apply(&b)

	const update = `
		UPDATE books
		SET title = $1, author = $2, publisher = $3, first_publish_year = $4, image_url = $5
		WHERE id = $6`
	if _, err := tx.Exec(timeoutCtx, update,
		b.Title, b.Author, b.Publisher, b.FirstPublishYear, b.ImageURL, id,
	); err != nil {
		return Book{}, err
	}

	if err := tx.Commit(timeoutCtx); err != nil {
		return Book{}, err
	}
	return b, nil
}

func (r *PostgresRepo) Delete(ctx context.Context, id int64) (Book, error) {
	const query = "DELETE FROM books WHERE id = $1 RETURNING " + bookColumns

	var b Book
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	if err := scanBook(r.db.QueryRow(timeoutCtx, query, id), &b); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Book{}, ErrNotFound
		}
		return Book{}, err
	}
	return b, nil
}

func (r *PostgresRepo) Count(ctx context.Context) (int, error) {
	var total int
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	if err := r.db.QueryRow(timeoutCtx, "SELECT COUNT(*) FROM books").Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

// CreateBatch inserts all rows in one round trip. Used by the seeder.
func (r *PostgresRepo) CreateBatch(ctx context.Context, books []Book) error {
	if len(books) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, b := range books {
		batch.Queue(insertSQL, b.Title, b.Author, b.Publisher, b.FirstPublishYear, b.ImageURL)
	}

	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	results := r.db.SendBatch(timeoutCtx, batch)
	defer results.Close()

	for range books {
		var id int64
		if err := results.QueryRow().Scan(&id); err != nil {
			return err
		}
	}
	return nil
}

func scanBook(row pgx.Row, b *Book) error {
	return row.Scan(&b.ID, &b.Title, &b.Author, &b.Publisher, &b.FirstPublishYear, &b.ImageURL)
}
