// Package login is the email and password form.
package login

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fragmede/panelist/internal/auth"
	"github.com/fragmede/panelist/internal/ui/messages"
)

var (
	accent     = lipgloss.Color("#E4572E")
	heading    = lipgloss.NewStyle().Foreground(accent).Bold(true).MarginBottom(1)
	fieldLabel = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFFFFF")).Bold(true)
	hint       = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
	problem    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4444"))
	form       = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(accent).Padding(1, 2)
)

const (
	fieldEmail = iota
	fieldPassword
	fieldCount
)

var (
	nextField = key.NewBinding(key.WithKeys("tab", "down"))
	prevField = key.NewBinding(key.WithKeys("shift+tab", "up"))
	submit    = key.NewBinding(key.WithKeys("enter"))
)

// Authenticator logs a user in.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (auth.Claims, error)
}

// Model is the login form view.
type Model struct {
	fields  [fieldCount]textinput.Model
	focused int
	problem string
	busy    bool
	auth    Authenticator
	width   int
	height  int
}

// New creates an empty form focused on the email field.
func New(a Authenticator) Model {
	m := Model{auth: a}
	for i := range m.fields {
		in := textinput.New()
		in.Width = 32
		in.Prompt = "> "
		m.fields[i] = in
	}
	m.fields[fieldEmail].Placeholder = "you@example.com"
	m.fields[fieldPassword].Placeholder = "password"
	m.fields[fieldPassword].EchoMode = textinput.EchoPassword
	m.fields[fieldPassword].EchoCharacter = '•'
	m.fields[fieldEmail].Focus()
	return m
}

// SetSize sets the viewport dimensions.
func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h
}

func (m *Model) focus(i int) {
	m.fields[m.focused].Blur()
	m.focused = (i + fieldCount) % fieldCount
	m.fields[m.focused].Focus()
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case messages.LoginResultMsg:
		m.busy = false
		if msg.Err != nil {
			m.problem = msg.Err.Error()
			m.fields[fieldPassword].Reset()
			m.focus(fieldPassword)
		}
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, nextField):
			m.focus(m.focused + 1)
			return m, nil
		case key.Matches(msg, prevField):
			m.focus(m.focused - 1)
			return m, nil
		case key.Matches(msg, submit):
			return m.submit()
		}
	}

	var cmd tea.Cmd
	m.fields[m.focused], cmd = m.fields[m.focused].Update(msg)
	return m, cmd
}

func (m Model) submit() (Model, tea.Cmd) {
	if m.busy {
		return m, nil
	}
	email := strings.TrimSpace(m.fields[fieldEmail].Value())
	password := m.fields[fieldPassword].Value()
	switch {
	case email == "" || password == "":
		m.problem = "Email and password required"
		return m, nil
	case !strings.Contains(email, "@"):
		m.problem = "That does not look like an email address"
		m.focus(fieldEmail)
		return m, nil
	}

	m.busy = true
	m.problem = ""
	a := m.auth
	return m, func() tea.Msg {
		claims, err := a.Login(context.Background(), email, password)
		return messages.LoginResultMsg{Username: claims.Username, Err: err}
	}
}

// View renders the login form.
func (m Model) View() string {
	rows := []string{
		heading.Render("Log in"),
		fieldLabel.Render("Email"),
		m.fields[fieldEmail].View(),
		"",
		fieldLabel.Render("Password"),
		m.fields[fieldPassword].View(),
		"",
	}
	if m.problem != "" {
		rows = append(rows, problem.Render(m.problem), "")
	}
	if m.busy {
		rows = append(rows, hint.Render("Logging in..."))
	} else {
		rows = append(rows, hint.Render("enter: submit  tab: next field  esc: cancel"))
	}

	box := form.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}
