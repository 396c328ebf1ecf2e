// Package thread turns the flat comment lists returned by the API into
// nested, depth-limited threads and flattens those threads for display.
package thread

import "github.com/fragmede/panelist/internal/api"

// Build nests a flat comment list into threads.
//
// It returns the root comments (no parent) in input order, each with
// ChildComments filled from ChildCommentsIDs. depth counts materialized levels
// including the root: with depth 2 a root shows its replies, and the replies'
// own ChildComments are left empty. Depth 0 or 1 returns collapsed roots.
//
// Child ids are resolved against the whole input, so a reply may appear
// anywhere in the list. Ids with no matching comment are skipped, as are
// repeats of an id within one parent's list. Build never
// modifies comments; every node in the result is a copy. The depth limit is
// the only guard against cyclic references.
func Build(comments []api.Comment, depth int) []api.Comment {
	index := make(map[string]*api.Comment, len(comments))
	for i := range comments {
		// First occurrence wins if the API ever repeats an id.
		if _, ok := index[comments[i].ID]; !ok {
			index[comments[i].ID] = &comments[i]
		}
	}

	roots := make([]api.Comment, 0)
	for i := range comments {
		if comments[i].IsRoot() {
			roots = append(roots, fill(&comments[i], index, depth))
		}
	}
	return roots
}

// fill copies c and expands its children while more than one level remains.
func fill(c *api.Comment, index map[string]*api.Comment, remaining int) api.Comment {
	out := *c
	out.ChildComments = make([]api.Comment, 0, len(c.ChildCommentsIDs))
	if c.ChildCommentsIDs != nil {
		out.ChildCommentsIDs = make([]string, len(c.ChildCommentsIDs))
		copy(out.ChildCommentsIDs, c.ChildCommentsIDs)
	}
	if remaining <= 1 {
		return out
	}
	seen := make(map[string]struct{}, len(c.ChildCommentsIDs))
	for _, id := range c.ChildCommentsIDs {
		child, ok := index[id]
		if !ok {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out.ChildComments = append(out.ChildComments, fill(child, index, remaining-1))
	}
	return out
}

// Count returns the number of nodes in the given threads.
func Count(roots []api.Comment) int {
	n := 0
	for i := range roots {
		n += 1 + Count(roots[i].ChildComments)
	}
	return n
}

// Walk calls fn for every node in depth-first order. level is 0 for roots.
func Walk(roots []api.Comment, fn func(c *api.Comment, level int)) {
	var walk func(cs []api.Comment, level int)
	walk = func(cs []api.Comment, level int) {
		for i := range cs {
			fn(&cs[i], level)
			walk(cs[i].ChildComments, level+1)
		}
	}
	walk(roots, 0)
}
