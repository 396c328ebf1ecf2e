package comiclist

import (
	"context"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/fragmede/panelist/internal/api"
	"github.com/fragmede/panelist/internal/ui/messages"
)

// Source loads the comics of a user.
type Source interface {
	UserComics(ctx context.Context, username string) ([]api.Comic, error)
}

// Model is the comic list view for one user.
type Model struct {
	list     list.Model
	username string
	src      Source
	loading  bool
	width    int
	height   int
}

// New creates a comic list for username.
func New(username string, src Source) Model {
	l := list.New(nil, Delegate{}, 0, 0)
	l.Title = title(username)
	if username != "" {
		l.Title += " (loading...)"
	}
	l.SetShowStatusBar(true)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(true)

	return Model{list: l, username: username, src: src, loading: username != ""}
}

// Init loads the list.
func (m Model) Init() tea.Cmd {
	return m.load()
}

// SetSize updates the list dimensions.
func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.list.SetSize(w, h)
}

// Username returns whose comics are listed.
func (m Model) Username() string {
	return m.username
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case messages.ComicsLoadedMsg:
		if msg.Username != m.username {
			return m, nil
		}
		m.loading = false
		if msg.Err != nil {
			m.list.Title = "Error: " + msg.Err.Error()
			return m, nil
		}
		items := make([]list.Item, len(msg.Comics))
		for i, c := range msg.Comics {
			items[i] = ComicItem{Comic: c, Index: i}
		}
		cmd := m.list.SetItems(items)
		m.list.Title = title(m.username)
		return m, cmd

	case tea.KeyMsg:
		if m.list.FilterState() == list.Filtering {
			break
		}
		switch msg.String() {
		case "enter":
			if item, ok := m.list.SelectedItem().(ComicItem); ok {
				owner := item.Author.Username
				if owner == "" {
					owner = m.username
				}
				slug := item.Slug()
				return m, func() tea.Msg { return messages.OpenComicMsg{Username: owner, Slug: slug} }
			}
		case "r", "ctrl+r":
			m.loading = true
			m.list.Title = title(m.username) + " (refreshing...)"
			return m, m.load()
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// View renders the list.
func (m Model) View() string {
	return m.list.View()
}

func (m Model) load() tea.Cmd {
	if m.username == "" {
		return nil
	}
	username := m.username
	src := m.src
	return func() tea.Msg {
		comics, err := src.UserComics(context.Background(), username)
		return messages.ComicsLoadedMsg{Username: username, Comics: comics, Err: err}
	}
}

func title(username string) string {
	if username == "" {
		return "Comics (L to log in)"
	}
	return "Comics by " + username
}
