package comiclist

import (
	"fmt"
	"strings"

	"github.com/fragmede/panelist/internal/api"
)

// ComicItem wraps a comic for the bubbles list.
type ComicItem struct {
	api.Comic
	Index int
}

func (c ComicItem) Title() string {
	if c.Comic.Title != "" {
		return c.Comic.Title
	}
	return "[untitled]"
}

func (c ComicItem) Description() string {
	parts := make([]string, 0, 3)
	if c.Author.Username != "" {
		parts = append(parts, "by "+c.Author.Username)
	}
	switch n := len(c.Chapters); n {
	case 0:
		parts = append(parts, "no chapters")
	case 1:
		parts = append(parts, "1 chapter")
	default:
		parts = append(parts, fmt.Sprintf("%d chapters", n))
	}
	if len(c.Genres) > 0 {
		names := make([]string, len(c.Genres))
		for i, g := range c.Genres {
			names[i] = g.Name
		}
		parts = append(parts, strings.Join(names, ", "))
	}
	return strings.Join(parts, " | ")
}

func (c ComicItem) FilterValue() string {
	return c.Comic.Title + " " + c.Author.Username
}
