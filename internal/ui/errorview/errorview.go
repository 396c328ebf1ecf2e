// Package errorview renders failed page loads.
package errorview

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/fragmede/panelist/internal/api"
	"github.com/fragmede/panelist/internal/loader"
)

var (
	statusStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF4444"))
	messageStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#CCCCCC"))
	hintStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
)

// Summary is the one-line description of err used in the status bar.
func Summary(err error) string {
	var f *loader.Failure
	if errors.As(err, &f) {
		if f.Status != 0 {
			return fmt.Sprintf("%d %s", f.Status, f.Message)
		}
		var te *api.TransportError
		if errors.As(err, &te) {
			return "cannot reach server"
		}
		return f.Message
	}
	return err.Error()
}

// Render draws a full error screen for err.
func Render(err error, width int) string {
	if err == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString("\n")

	var f *loader.Failure
	switch {
	case errors.As(err, &f) && f.Status != 0:
		b.WriteString("  " + statusStyle.Render(fmt.Sprintf("%d %s", f.Status, http.StatusText(f.Status))) + "\n\n")
		b.WriteString("  " + messageStyle.Width(max(width-4, 20)).Render(f.Message) + "\n")
	case errors.As(err, &f):
		b.WriteString("  " + statusStyle.Render("Could not load "+f.Page) + "\n\n")
		b.WriteString("  " + messageStyle.Width(max(width-4, 20)).Render(f.Message) + "\n")
	default:
		b.WriteString("  " + statusStyle.Render("Error") + "\n\n")
		b.WriteString("  " + messageStyle.Width(max(width-4, 20)).Render(err.Error()) + "\n")
	}

	b.WriteString("\n  " + hintStyle.Render("ctrl+r:retry  esc:back"))
	return b.String()
}
