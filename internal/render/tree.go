package render

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/fragmede/panelist/internal/api"
	"github.com/fragmede/panelist/internal/thread"
)

// Tree writes threaded comments as indented plain text:
//
//	alice · 2 hours ago
//	  first comment
//	  └ bob · 1 hour ago
//	      a reply
//
// Nodes whose replies were cut by the depth limit get a "[n more]" marker.
func Tree(w io.Writer, comments []api.Comment, width int) error {
	bw := bufio.NewWriter(w)
	thread.Walk(comments, func(c *api.Comment, level int) {
		indent := strings.Repeat("  ", level)
		header, bodyPad := indent, indent+"  "
		if level > 0 {
			header += "└ "
			bodyPad += "  "
		}
		author := c.User.Username
		if author == "" {
			author = "[deleted]"
		}
		header += author
		if c.CreatedAt != nil {
			header += " · " + TimeAgo(*c.CreatedAt)
		}
		if len(c.ChildComments) == 0 && len(c.ChildCommentsIDs) > 0 {
			header += fmt.Sprintf(" [%d more]", len(c.ChildCommentsIDs))
		}
		fmt.Fprintln(bw, header)

		body := ContentToText(c.Content, width-len(bodyPad))
		if body != "" {
			fmt.Fprintln(bw, Indent(body, bodyPad))
		}
	})
	return bw.Flush()
}
