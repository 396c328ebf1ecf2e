package render

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
)

// Style names accepted by Markdown.
const (
	StyleDark  = styles.DarkStyle
	StyleLight = styles.LightStyle
	StylePlain = styles.NoTTYStyle
)

// Markdown renders comic and chapter descriptions. If glamour cannot render
// the input it falls back to wrapped plain text.
func Markdown(md string, width int, style string) string {
	if strings.TrimSpace(md) == "" {
		return ""
	}
	if style == "" {
		style = StyleDark
	}
	opts := []glamour.TermRendererOption{glamour.WithStandardStyle(style)}
	if width > 0 {
		opts = append(opts, glamour.WithWordWrap(width))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return ContentToText(md, width)
	}
	out, err := r.Render(md)
	if err != nil {
		return ContentToText(md, width)
	}
	return strings.Trim(out, "\n")
}
