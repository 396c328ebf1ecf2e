// Package profile shows the logged-in user and their posts.
package profile

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fragmede/panelist/internal/api"
	"github.com/fragmede/panelist/internal/pages"
	"github.com/fragmede/panelist/internal/render"
	"github.com/fragmede/panelist/internal/ui/errorview"
	"github.com/fragmede/panelist/internal/ui/messages"
)

var (
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#E4572E")).Bold(true).Padding(1, 0)
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#828282")).Bold(true)
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF"))
	postStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#CCCCCC"))
	staleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD700"))
)

// Source loads the profile screen.
type Source interface {
	Profile(ctx context.Context) (*pages.ProfileView, error)
}

// Users caches user summaries.
type Users interface {
	GetUser(username string, ttl time.Duration) (*api.UserBrief, bool, error)
	PutUser(user *api.UserBrief) error
}

// Model is the profile view.
type Model struct {
	user     *api.UserBrief
	posts    []api.Post
	username string
	stale    bool
	loading  bool
	err      error
	src      Source
	users    Users
	ttl      time.Duration
	width    int
	height   int
}

// New creates a profile view. username is the user the app believes is
// logged in and may be empty.
func New(username string, src Source, users Users, ttl time.Duration) Model {
	return Model{username: username, loading: true, src: src, users: users, ttl: ttl}
}

// Init loads the profile. A cached user is shown when the server cannot be
// reached.
func (m Model) Init() tea.Cmd {
	src, users, username, ttl := m.src, m.users, m.username, m.ttl
	return func() tea.Msg {
		view, err := src.Profile(context.Background())
		if err == nil {
			user := view.User
			_ = users.PutUser(&user)
			return messages.ProfileLoadedMsg{User: &user, Posts: view.Posts}
		}
		var te *api.TransportError
		if username != "" && errors.As(err, &te) {
			if cached, _, cerr := users.GetUser(username, ttl); cerr == nil && cached != nil {
				return messages.ProfileLoadedMsg{User: cached, Stale: true}
			}
		}
		return messages.ProfileLoadedMsg{Err: err}
	}
}

// SetSize sets the viewport dimensions.
func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case messages.ProfileLoadedMsg:
		m.loading = false
		m.err = msg.Err
		m.user = msg.User
		m.posts = msg.Posts
		m.stale = msg.Stale
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+r":
			m.loading = true
			return m, m.Init()
		case "c":
			if m.user != nil {
				username := m.user.Username
				return m, func() tea.Msg { return messages.OpenComicsMsg{Username: username} }
			}
		}
	}
	return m, nil
}

// View renders the profile.
func (m Model) View() string {
	if m.loading {
		return titleStyle.Render("Loading profile...")
	}
	if m.err != nil {
		return errorview.Render(m.err, m.width)
	}
	if m.user == nil {
		return titleStyle.Render("Not logged in")
	}

	var sb strings.Builder
	sb.WriteString(titleStyle.Render(m.user.Username))
	sb.WriteString("\n")
	if m.stale {
		sb.WriteString(staleStyle.Render("offline: showing cached profile") + "\n")
	}
	if m.user.Email != "" {
		sb.WriteString(labelStyle.Render("Email: ") + valueStyle.Render(m.user.Email) + "\n")
	}
	sb.WriteString(labelStyle.Render("Posts: ") + valueStyle.Render(fmt.Sprintf("%d", len(m.posts))) + "\n\n")

	width := max(m.width-4, 20)
	for _, p := range m.posts {
		sb.WriteString(valueStyle.Render(p.Title) + "\n")
		if p.Content != "" {
			sb.WriteString(postStyle.Render(render.Indent(render.ContentToText(p.Content, width), "  ")) + "\n")
		}
		sb.WriteString("\n")
	}
	sb.WriteString(labelStyle.Render("c:my comics  ctrl+r:refresh  esc:back"))
	return sb.String()
}
