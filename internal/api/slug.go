package api

import (
	"regexp"
	"strings"
)

var (
	slugSeparators = regexp.MustCompile(`[-/]`)
	slugDisallowed = regexp.MustCompile(`[^_\p{L}\p{N}\s]`)
	slugRuns       = regexp.MustCompile(`[_\s]+`)
)

// Slugify turns a comic title into the slug the platform routes by:
// "Hello, World - Part 2" becomes "hello_world_part_2".
func Slugify(title string) string {
	s := slugSeparators.ReplaceAllString(strings.TrimSpace(title), "_")
	s = slugDisallowed.ReplaceAllString(s, "")
	s = slugRuns.ReplaceAllString(s, "_")
	return strings.ToLower(s)
}

// Slug returns the comic's URL slug.
func (c *Comic) Slug() string {
	return Slugify(c.Title)
}
