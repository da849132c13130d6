package sqldb

import (
	"strconv"
	"strings"
)

// Dialect captures the few places where sqlite and postgres disagree. Queries
// are written once with '?' placeholders and rebound per dialect.
type Dialect struct {
	Name string

	// Rebind rewrites '?' placeholders into the driver's native form.
	Rebind func(query string) string

	// IsUniqueViolation reports whether err is a unique/primary key violation.
	IsUniqueViolation func(err error) bool
}

// RebindQuestion leaves '?' placeholders untouched (sqlite).
func RebindQuestion(query string) string { return query }

// RebindDollar numbers placeholders as $1, $2, ... (postgres). Queries in this
// package never contain a literal '?'.
func RebindDollar(query string) string {
	var b strings.Builder
	b.Grow(len(query) + 8)

	n := 0
	for _, r := range query {
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
