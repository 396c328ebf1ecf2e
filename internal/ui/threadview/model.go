// Package threadview shows a comic or chapter with its comment threads.
package threadview

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/fragmede/panelist/internal/api"
	"github.com/fragmede/panelist/internal/pages"
	"github.com/fragmede/panelist/internal/render"
	"github.com/fragmede/panelist/internal/thread"
	"github.com/fragmede/panelist/internal/ui/errorview"
	"github.com/fragmede/panelist/internal/ui/messages"
)

var (
	depthColors = []lipgloss.Color{
		"#E4572E", "#828282", "#00BFFF", "#32CD32", "#FFD700", "#FF69B4", "#9370DB", "#20B2AA",
	}

	commentAuthorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#E4572E")).Bold(true)
	commentMetaStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#666666"))
	commentOwnerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#000")).Background(lipgloss.Color("#E4572E")).Bold(true)
	commentSelStyle    = lipgloss.NewStyle().Background(lipgloss.Color("#333333"))
	commentDelStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#555555")).Italic(true)
	headerStyle        = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFFFFF")).Padding(0, 1)
	metaStyle          = lipgloss.NewStyle().Foreground(lipgloss.Color("#828282")).Padding(0, 1)
	separatorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#444444"))
)

const (
	scrollStep = 3
	maxIndent  = 30
)

// Pages loads the screens this view shows.
type Pages interface {
	Comic(ctx context.Context, username, slug string) (*pages.ComicView, error)
	Chapter(ctx context.Context, username, slug string, number int) (*pages.ChapterView, error)
}

type commentOffset struct {
	startLine int
	endLine   int
}

// Model is the comic or chapter detail view.
type Model struct {
	viewport    viewport.Model
	src         Pages
	style       string
	username    string
	slug        string
	number      int
	comic       *api.Comic
	chapter     *api.Chapter
	roots       []api.Comment
	comments    []thread.FlatComment
	offsets     []commentOffset
	selectedIdx int
	collapse    thread.CollapseState
	loading     bool
	err         error
	width       int
	height      int
}

// NewComic creates a view of the comic slug owned by username. style is a
// render markdown style.
func NewComic(username, slug string, src Pages, style string) Model {
	return newModel(username, slug, 0, src, style)
}

// NewChapter creates a view of chapter number of the comic slug.
func NewChapter(username, slug string, number int, src Pages, style string) Model {
	return newModel(username, slug, number, src, style)
}

func newModel(username, slug string, number int, src Pages, style string) Model {
	vp := viewport.New(0, 0)
	vp.SetContent("Loading...")
	return Model{
		viewport: vp,
		src:      src,
		style:    style,
		username: username,
		slug:     slug,
		number:   number,
		collapse: make(thread.CollapseState),
		loading:  true,
	}
}

// Init loads the page.
func (m Model) Init() tea.Cmd {
	return m.load()
}

func (m Model) load() tea.Cmd {
	src, username, slug, number := m.src, m.username, m.slug, m.number
	if number == 0 {
		return func() tea.Msg {
			view, err := src.Comic(context.Background(), username, slug)
			return messages.ComicLoadedMsg{View: view, Err: err}
		}
	}
	return func() tea.Msg {
		view, err := src.Chapter(context.Background(), username, slug, number)
		return messages.ChapterLoadedMsg{Username: username, Slug: slug, View: view, Err: err}
	}
}

// SetSize updates viewport dimensions.
func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.viewport.Width = w
	m.resizeViewport()
	m.rebuildContent()
}

func (m *Model) resizeViewport() {
	headerLines := strings.Count(m.renderHeader(), "\n") + 1
	m.viewport.Height = max(m.height-headerLines, 1)
}

// Title names the page for the status bar.
func (m Model) Title() string {
	switch {
	case m.chapter != nil && m.chapter.Title != "":
		return fmt.Sprintf("%s #%d: %s", m.slug, m.number, m.chapter.Title)
	case m.number > 0:
		return fmt.Sprintf("%s #%d", m.slug, m.number)
	case m.comic != nil:
		return m.comic.Title
	default:
		return m.slug
	}
}

// Err is the load error, if any.
func (m Model) Err() error {
	return m.err
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case messages.ComicLoadedMsg:
		if m.number != 0 {
			return m, nil
		}
		m.loading = false
		m.err = msg.Err
		if msg.Err == nil && msg.View != nil {
			comic := msg.View.Comic
			m.comic = &comic
			m.roots = msg.View.Comments
		}
		m.afterLoad()
		return m, nil

	case messages.ChapterLoadedMsg:
		if m.number == 0 || msg.Username != m.username || msg.Slug != m.slug {
			return m, nil
		}
		m.loading = false
		m.err = msg.Err
		if msg.Err == nil && msg.View != nil {
			chapter := msg.View.Chapter
			m.chapter = &chapter
			m.roots = msg.View.Comments
		}
		m.afterLoad()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m *Model) afterLoad() {
	m.resizeViewport()
	if m.err != nil {
		m.comments = nil
		m.offsets = nil
		m.viewport.SetContent(errorview.Render(m.err, m.width))
		return
	}
	m.rebuildComments()
	m.rebuildContent()
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "j", "down":
		if m.selectedIdx >= 0 && m.selectedIdx < len(m.offsets) {
			off := m.offsets[m.selectedIdx]
			if off.endLine >= m.viewport.YOffset+m.viewport.Height {
				m.viewport.SetYOffset(m.viewport.YOffset + scrollStep)
				return m, nil
			}
		}
		if m.selectedIdx < len(m.comments)-1 {
			m.selectedIdx++
			m.rebuildContent()
			m.scrollToCursor()
		}
	case "k", "up":
		if m.selectedIdx >= 0 && m.selectedIdx < len(m.offsets) {
			off := m.offsets[m.selectedIdx]
			if off.startLine < m.viewport.YOffset {
				m.viewport.SetYOffset(max(m.viewport.YOffset-scrollStep, off.startLine))
				return m, nil
			}
		}
		if m.selectedIdx > 0 {
			m.selectedIdx--
			m.rebuildContent()
			m.scrollToCursor()
		}
	case "enter", " ":
		if fc, ok := m.selected(); ok {
			m.collapse[fc.Comment.ID] = !m.collapse[fc.Comment.ID]
			m.rebuildComments()
			m.rebuildContent()
		}
	case "z":
		// Fold everything if anything is open, otherwise unfold everything.
		anyExpanded := false
		for _, fc := range m.comments {
			if !fc.IsCollapsed && len(fc.Comment.ChildComments) > 0 {
				anyExpanded = true
				break
			}
		}
		thread.Walk(m.roots, func(c *api.Comment, _ int) {
			if len(c.ChildComments) > 0 {
				m.collapse[c.ID] = anyExpanded
			}
		})
		m.rebuildComments()
		m.rebuildContent()
		if anyExpanded {
			m.selectedIdx = 0
			m.viewport.GotoTop()
		}
	case "[", "p":
		if idx := thread.FindParentIndex(m.comments, m.selectedIdx); idx >= 0 {
			m.selectedIdx = idx
			m.rebuildContent()
			m.scrollToCursor()
		}
	case "]":
		if idx := thread.FindNextSiblingIndex(m.comments, m.selectedIdx); idx >= 0 {
			m.selectedIdx = idx
			m.rebuildContent()
			m.scrollToCursor()
		}
	case "g", "home":
		m.selectedIdx = 0
		m.rebuildContent()
		m.viewport.GotoTop()
	case "G", "end":
		if len(m.comments) > 0 {
			m.selectedIdx = len(m.comments) - 1
			m.rebuildContent()
			m.viewport.GotoBottom()
		}
	case "n":
		if next := m.nextChapter(); next > 0 {
			return m, m.openChapter(next)
		}
		return m, status("No next chapter")
	case "b":
		if m.number > 1 {
			return m, m.openChapter(m.number - 1)
		}
		return m, status("No previous chapter")
	case "a":
		if fc, ok := m.selected(); ok && fc.Comment.User.Username != "" {
			username := fc.Comment.User.Username
			return m, func() tea.Msg { return messages.OpenComicsMsg{Username: username} }
		}
	case "ctrl+r":
		m.loading = true
		m.err = nil
		m.viewport.SetContent("  Refreshing...")
		return m, m.load()
	case "ctrl+d", "pgdown":
		m.viewport.HalfViewDown()
	case "ctrl+u", "pgup":
		m.viewport.HalfViewUp()
	default:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) selected() (thread.FlatComment, bool) {
	if m.selectedIdx < 0 || m.selectedIdx >= len(m.comments) {
		return thread.FlatComment{}, false
	}
	return m.comments[m.selectedIdx], true
}

// nextChapter is the chapter after the one shown, or the first chapter of
// the comic. 0 means there is none.
func (m Model) nextChapter() int {
	if m.number > 0 {
		return m.number + 1
	}
	if m.comic == nil || len(m.comic.Chapters) == 0 {
		return 0
	}
	numbers := make([]int, len(m.comic.Chapters))
	for i, ch := range m.comic.Chapters {
		numbers[i] = ch.Number
	}
	sort.Ints(numbers)
	return numbers[0]
}

func (m Model) openChapter(number int) tea.Cmd {
	username, slug := m.username, m.slug
	return func() tea.Msg {
		return messages.OpenChapterMsg{Username: username, Slug: slug, Number: number}
	}
}

func status(text string) tea.Cmd {
	return func() tea.Msg { return messages.StatusMsg{Text: text} }
}

// View renders the page.
func (m Model) View() string {
	return lipgloss.JoinVertical(lipgloss.Left, m.renderHeader(), m.viewport.View())
}

func (m *Model) rebuildComments() {
	author := ""
	if m.comic != nil {
		author = m.comic.Author.Username
	}
	m.comments = thread.Flatten(m.roots, author, m.collapse)
	if m.selectedIdx >= len(m.comments) {
		m.selectedIdx = len(m.comments) - 1
	}
	if m.selectedIdx < 0 {
		m.selectedIdx = 0
	}
}

func (m *Model) rebuildContent() {
	if m.err != nil {
		return
	}
	if len(m.comments) == 0 {
		m.offsets = nil
		if m.loading {
			m.viewport.SetContent("  Loading comments...")
		} else {
			m.viewport.SetContent("  No comments yet.")
		}
		return
	}

	var sb strings.Builder
	m.offsets = make([]commentOffset, len(m.comments))
	availWidth := max(m.width-4, 20)

	lineCount := 0
	for i, fc := range m.comments {
		startLine := lineCount
		indent := min(fc.Depth*2, maxIndent)
		indentStr := strings.Repeat(" ", indent)

		barColor := depthColors[fc.Depth%len(depthColors)]
		selected := i == m.selectedIdx
		if selected {
			barColor = "#E4572E"
		}
		bar := lipgloss.NewStyle().Foreground(barColor).Render("│")

		c := fc.Comment
		var header string
		if c.User.Username == "" {
			header = commentDelStyle.Render("[deleted]")
		} else {
			header = commentAuthorStyle.Render(c.User.Username)
		}
		if c.CreatedAt != nil {
			header += " " + commentMetaStyle.Render(render.TimeAgo(*c.CreatedAt))
		}
		if fc.IsAuthor {
			header += " " + commentOwnerStyle.Render(" author ")
		}
		if fc.IsCollapsed {
			header += " " + commentMetaStyle.Render(fmt.Sprintf("[+%d]", fc.ChildCount))
		} else if len(c.ChildComments) == 0 && len(c.ChildCommentsIDs) > 0 {
			header += " " + commentMetaStyle.Render(fmt.Sprintf("[%d more]", len(c.ChildCommentsIDs)))
		}

		headerLine := indentStr + bar + " " + header
		if selected {
			headerLine = commentSelStyle.Render(headerLine)
		}
		sb.WriteString(headerLine + "\n")
		lineCount++

		if !fc.IsCollapsed {
			body := render.ContentToText(c.Content, max(availWidth-indent-4, 20))
			for _, line := range strings.Split(body, "\n") {
				bodyLine := indentStr + bar + " " + line
				if selected {
					bodyLine = commentSelStyle.Render(bodyLine)
				}
				sb.WriteString(bodyLine + "\n")
				lineCount++
			}
		}
		sb.WriteString("\n")
		lineCount++

		m.offsets[i] = commentOffset{startLine: startLine, endLine: lineCount - 1}
	}

	m.viewport.SetContent(sb.String())
}

func (m *Model) scrollToCursor() {
	if m.selectedIdx < 0 || m.selectedIdx >= len(m.offsets) {
		return
	}
	off := m.offsets[m.selectedIdx]
	if off.startLine < m.viewport.YOffset || off.startLine >= m.viewport.YOffset+m.viewport.Height {
		m.viewport.SetYOffset(off.startLine)
	}
}

func (m Model) renderHeader() string {
	var parts []string
	bodyWidth := max(m.width-4, 20)

	switch {
	case m.chapter != nil:
		title := fmt.Sprintf("Chapter %d", m.chapter.Number)
		if m.chapter.Title != "" {
			title += ": " + m.chapter.Title
		}
		parts = append(parts, headerStyle.Render(title))
		meta := fmt.Sprintf("%s | rating %.1f | %d pages", m.slug, m.chapter.Rating, len(m.chapter.Pages))
		if ago := render.TimeAgo(m.chapter.CreatedAt); ago != "" {
			meta += " | " + ago
		}
		parts = append(parts, metaStyle.Render(meta))
		if m.chapter.Description != "" {
			parts = append(parts, strings.TrimRight(render.Markdown(m.chapter.Description, bodyWidth, m.style), "\n"))
		}
	case m.comic != nil:
		parts = append(parts, headerStyle.Render(m.comic.Title))
		meta := fmt.Sprintf("by %s | %d chapters", m.comic.Author.Username, len(m.comic.Chapters))
		if len(m.comic.Genres) > 0 {
			names := make([]string, len(m.comic.Genres))
			for i, g := range m.comic.Genres {
				names[i] = g.Name
			}
			meta += " | " + strings.Join(names, ", ")
		}
		if ago := createdAgo(m.comic.CreatedAt); ago != "" {
			meta += " | " + ago
		}
		parts = append(parts, metaStyle.Render(meta))
		if m.comic.Description != "" {
			parts = append(parts, strings.TrimRight(render.Markdown(m.comic.Description, bodyWidth, m.style), "\n"))
		}
	case m.err != nil:
		return headerStyle.Render(m.Title())
	default:
		return headerStyle.Render("Loading " + m.Title() + "...")
	}

	parts = append(parts, separatorStyle.Render(strings.Repeat("─", m.width)))
	hint := "j/k:move  p:parent  ]:sibling  space:collapse  z:fold all  a:author  n/b:chapters"
	parts = append(parts, commentMetaStyle.Render(hint))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// createdAgo formats an RFC 3339 timestamp, or returns s unchanged.
func createdAgo(s string) string {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return s
	}
	return render.TimeAgo(t)
}
