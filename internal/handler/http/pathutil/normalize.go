package pathutil

import (
	"regexp"
	"strings"
)

// PathPattern represents a regex pattern and its corresponding normalized template.
// Template may reference capture groups ($1) of Pattern.
type PathPattern struct {
	Pattern  *regexp.Regexp
	Template string
}

// ArticleDetailsRoute is the normalized form of /news/articleDetails/{id}, the
// only route that answers 404 for a well-formed request.
const ArticleDetailsRoute = "/news/articleDetails/:id"

// pathPatterns defines the list of patterns for dynamic routes.
// Patterns are evaluated in order from most specific to least specific.
var pathPatterns = []*PathPattern{
	{Pattern: regexp.MustCompile(`^/news/articleDetails/\d+$`), Template: ArticleDetailsRoute},
	{Pattern: regexp.MustCompile(`^/news/(summary|memo|classification|background|keyword)/\d+$`), Template: "/news/$1/:id"},
	{Pattern: regexp.MustCompile(`^/news/\d+$`), Template: "/news/:id"},
}

// NormalizePath normalizes dynamic URL paths to prevent metrics label cardinality explosion.
// It converts paths with IDs (e.g., /news/123) to template format (e.g., /news/:id).
// Static paths remain unchanged.
//
// Examples:
//
//	NormalizePath("/news/123")                 // "/news/:id"
//	NormalizePath("/news/memo/123")            // "/news/memo/:id"
//	NormalizePath("/news/articleDetails/9")    // "/news/articleDetails/:id"
//	NormalizePath("/news/today")               // "/news/today" (unchanged)
//	NormalizePath("/news/123?x=1")             // "/news/:id"
//	NormalizePath("/news/123/")                // "/news/:id"
func NormalizePath(path string) string {
	// Strip query parameters if present
	if idx := strings.IndexByte(path, '?'); idx != -1 {
		path = path[:idx]
	}

	// Strip trailing slash if present (except for root path)
	if len(path) > 1 && path[len(path)-1] == '/' {
		path = path[:len(path)-1]
	}

	for _, p := range pathPatterns {
		if p.Pattern.MatchString(path) {
			return p.Pattern.ReplaceAllString(path, p.Template)
		}
	}

	return path
}
