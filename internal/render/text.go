package render

import (
	"html"
	"strings"

	"github.com/muesli/reflow/wordwrap"
	xhtml "golang.org/x/net/html"
)

// ContentToText converts comment and description content to plain text
// wrapped at width. The platform stores plain text, but older content may
// carry simple HTML: <p>, <br>, <a>, <em>/<i>, <strong>/<b>, <code>, <pre>,
// <li> and <blockquote>.
func ContentToText(raw string, width int) string {
	if strings.TrimSpace(raw) == "" {
		return ""
	}
	if !strings.Contains(raw, "<") {
		return Wrap(strings.TrimSpace(html.UnescapeString(raw)), width)
	}

	tokenizer := xhtml.NewTokenizer(strings.NewReader(raw))
	var sb strings.Builder
	var inPre, inCode bool
	var quoteDepth int
	var href string

	newline := func() {
		sb.WriteString("\n")
		for i := 0; i < quoteDepth; i++ {
			sb.WriteString("> ")
		}
	}

	for {
		tt := tokenizer.Next()
		switch tt {
		case xhtml.ErrorToken:
			return Wrap(strings.TrimSpace(sb.String()), width)

		case xhtml.StartTagToken, xhtml.SelfClosingTagToken:
			t := tokenizer.Token()
			switch t.Data {
			case "p", "div":
				if sb.Len() > 0 {
					newline()
					newline()
				}
			case "br":
				newline()
			case "li":
				newline()
				sb.WriteString("- ")
			case "blockquote":
				quoteDepth++
				newline()
			case "i", "em":
				sb.WriteString("*")
			case "b", "strong":
				sb.WriteString("**")
			case "code":
				if !inPre {
					sb.WriteString("`")
				}
				inCode = true
			case "pre":
				inPre = true
				sb.WriteString("\n")
			case "a":
				for _, attr := range t.Attr {
					if attr.Key == "href" {
						href = attr.Val
					}
				}
			}

		case xhtml.EndTagToken:
			t := tokenizer.Token()
			switch t.Data {
			case "blockquote":
				if quoteDepth > 0 {
					quoteDepth--
				}
				newline()
			case "i", "em":
				sb.WriteString("*")
			case "b", "strong":
				sb.WriteString("**")
			case "code":
				if !inPre {
					sb.WriteString("`")
				}
				inCode = false
			case "pre":
				inPre = false
				sb.WriteString("\n")
			case "a":
				if href != "" && !strings.HasSuffix(strings.TrimSpace(sb.String()), href) {
					sb.WriteString(" [" + href + "]")
				}
				href = ""
			}

		case xhtml.TextToken:
			text := string(tokenizer.Text())
			switch {
			case inPre:
				for i, line := range strings.Split(text, "\n") {
					if i > 0 {
						sb.WriteString("\n")
					}
					if line != "" {
						sb.WriteString("    " + line)
					}
				}
			case inCode:
				sb.WriteString(text)
			default:
				sb.WriteString(strings.Join(strings.Fields(text), " "))
				if strings.HasSuffix(text, " ") {
					sb.WriteString(" ")
				}
			}
		}
	}
}

// Wrap word-wraps text at width, leaving indented code lines alone.
// Width <= 0 disables wrapping.
func Wrap(text string, width int) string {
	if width <= 0 {
		return text
	}
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if strings.HasPrefix(line, "    ") {
			continue
		}
		lines[i] = wordwrap.String(line, width)
	}
	return strings.Join(lines, "\n")
}

// Indent prefixes every line of text with prefix.
func Indent(text, prefix string) string {
	if text == "" {
		return ""
	}
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}
