package comiclist

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
)

type rowStyles struct {
	marker, title, meta lipgloss.Style
}

var (
	idle = rowStyles{
		marker: lipgloss.NewStyle().Foreground(lipgloss.Color("#444444")),
		title:  lipgloss.NewStyle().Foreground(lipgloss.Color("#DDDDDD")),
		meta:   lipgloss.NewStyle().Foreground(lipgloss.Color("#777777")),
	}
	active = rowStyles{
		marker: lipgloss.NewStyle().Foreground(lipgloss.Color("#E4572E")).Bold(true),
		title:  lipgloss.NewStyle().Foreground(lipgloss.Color("#E4572E")).Bold(true),
		meta:   lipgloss.NewStyle().Foreground(lipgloss.Color("#BBBBBB")),
	}
)

// Delegate draws each comic as a numbered title row over a metadata row.
type Delegate struct{}

func (Delegate) Height() int                         { return 2 }
func (Delegate) Spacing() int                        { return 1 }
func (Delegate) Update(tea.Msg, *list.Model) tea.Cmd { return nil }

func (Delegate) Render(w io.Writer, m list.Model, index int, li list.Item) {
	item, ok := li.(ComicItem)
	if !ok {
		return
	}
	st, mark := idle, " "
	if index == m.Index() {
		st, mark = active, ">"
	}

	gutter := fmt.Sprintf("%s%3d ", mark, item.Index+1)
	room := uint(max(m.Width()-len(gutter), 8))
	title := truncate.StringWithTail(item.Title(), room, "…")
	meta := truncate.StringWithTail(item.Description(), room, "…")

	fmt.Fprint(w, st.marker.Render(gutter)+st.title.Render(title)+"\n"+
		strings.Repeat(" ", len(gutter))+st.meta.Render(meta))
}
