package cache

import (
	"strconv"
	"strings"
)

// rebind rewrites "?" placeholders as "$1", "$2", ... for Postgres.
// Queries are written once in "?" form, which SQLite accepts as is.
func rebind(driver, q string) string {
	if driver != "pgx" {
		return q
	}

	var b strings.Builder
	b.Grow(len(q) + 8)
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
