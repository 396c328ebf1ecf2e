package thread

import "github.com/fragmede/panelist/internal/api"

// CollapseState tracks collapsed comment IDs.
type CollapseState map[string]bool

// FlatComment is a comment flattened from the tree for display.
type FlatComment struct {
	Comment     *api.Comment
	Depth       int
	IsCollapsed bool
	ChildCount  int
	IsAuthor    bool
}

// Flatten converts built threads into a flat list for display. Collapsed
// comments are listed but their replies are not. author marks comments
// written by the owner of the comic.
func Flatten(roots []api.Comment, author string, cs CollapseState) []FlatComment {
	var result []FlatComment

	// walk returns the total descendant count for this subtree.
	var walk func(c *api.Comment, depth int) int
	walk = func(c *api.Comment, depth int) int {
		idx := len(result)
		// Append placeholder; we'll fill ChildCount after walking children.
		result = append(result, FlatComment{
			Comment:     c,
			Depth:       depth,
			IsCollapsed: cs[c.ID],
			IsAuthor:    author != "" && c.User.Username == author,
		})

		descendants := 0
		if !cs[c.ID] {
			for i := range c.ChildComments {
				descendants += 1 + walk(&c.ChildComments[i], depth+1)
			}
		} else {
			// Collapsed: count without listing, for the [+N] badge.
			descendants = Count(c.ChildComments)
		}

		result[idx].ChildCount = descendants
		return descendants
	}

	for i := range roots {
		walk(&roots[i], 0)
	}
	return result
}

// FindParentIndex returns the index of the parent comment in the flat list.
func FindParentIndex(comments []FlatComment, currentIdx int) int {
	if currentIdx < 0 || currentIdx >= len(comments) {
		return -1
	}
	c := comments[currentIdx].Comment
	if c.IsRoot() {
		return -1
	}
	parentID := *c.ParentComment
	for i := currentIdx - 1; i >= 0; i-- {
		if comments[i].Comment.ID == parentID {
			return i
		}
	}
	return -1
}

// FindNextSiblingIndex returns the index of the next comment at the same depth.
func FindNextSiblingIndex(comments []FlatComment, currentIdx int) int {
	if currentIdx < 0 || currentIdx >= len(comments) {
		return -1
	}
	depth := comments[currentIdx].Depth
	for i := currentIdx + 1; i < len(comments); i++ {
		if comments[i].Depth < depth {
			return -1 // Went up in tree, no more siblings.
		}
		if comments[i].Depth == depth {
			return i
		}
	}
	return -1
}
