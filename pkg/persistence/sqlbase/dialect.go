package sqlbase

import (
	"strconv"
	"strings"
)

// Dialect captures the SQL differences between the supported databases.
// Queries are written with "?" placeholders and rebound per dialect.
type Dialect struct {
	Name string
	// Numbered reports whether placeholders are $1, $2... instead of ?.
	Numbered bool
}

var (
	// Postgres is the lib/pq dialect.
	Postgres = Dialect{Name: "postgres", Numbered: true}

	// SQLite is the mattn/go-sqlite3 dialect.
	SQLite = Dialect{Name: "sqlite3"}
)

// Rebind rewrites "?" placeholders for the dialect.
func (d Dialect) Rebind(query string) string {
	if !d.Numbered {
		return query
	}

	var (
		builder strings.Builder
		n       int
	)

	builder.Grow(len(query) + 8)

	for _, r := range query {
		if r != '?' {
			builder.WriteRune(r)

			continue
		}

		n++

		builder.WriteByte('$')
		builder.WriteString(strconv.Itoa(n))
	}

	return builder.String()
}
