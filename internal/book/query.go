package book

const bookColumns = "id, title, author, publisher, first_publish_year, image_url"

// BuildListQuery assembles the filtered paged scan over the books table.
// The filter matches case-insensitively as a substring of title, author,
// publisher, or the decimal text of first_publish_year. Every value is a
// bound parameter; rows come back ordered by id so paging stays stable
// across calls.
func BuildListQuery(q Query) (string, []any) {
	if q.Q == "" {
		return "SELECT " + bookColumns + " FROM books ORDER BY id LIMIT $1 OFFSET $2",
			[]any{q.Limit, q.Skip}
	}

	sql := "SELECT " + bookColumns + ` FROM books
		WHERE title ILIKE $1
		   OR author ILIKE $1
		   OR publisher ILIKE $1
		   OR first_publish_year::TEXT ILIKE $1
		ORDER BY id LIMIT $2 OFFSET $3`
	return sql, []any{"%" + q.Q + "%", q.Limit, q.Skip}
}
