// Package search holds helpers shared by the SQL dialects for substring matching.
package search

import "strings"

// LikeEscapeChar is the escape character declared in every LIKE clause.
const LikeEscapeChar = `\`

var likeReplacer = strings.NewReplacer(
	`\`, `\\`,
	`%`, `\%`,
	`_`, `\_`,
)

// EscapeLike escapes the LIKE wildcards in s so it matches literally.
func EscapeLike(s string) string {
	return likeReplacer.Replace(s)
}

// ContainsPattern returns a LIKE pattern matching any value that contains s.
// An empty s yields "%%", which matches every non-NULL value.
func ContainsPattern(s string) string {
	return "%" + EscapeLike(s) + "%"
}
