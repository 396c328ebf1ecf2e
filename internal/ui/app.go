package ui

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/fragmede/panelist/internal/api"
	"github.com/fragmede/panelist/internal/loader"
	"github.com/fragmede/panelist/internal/ui/comiclist"
	"github.com/fragmede/panelist/internal/ui/errorview"
	"github.com/fragmede/panelist/internal/ui/login"
	"github.com/fragmede/panelist/internal/ui/messages"
	"github.com/fragmede/panelist/internal/ui/profile"
	"github.com/fragmede/panelist/internal/ui/statusbar"
	"github.com/fragmede/panelist/internal/ui/threadview"
)

// ViewType identifies the active view.
type ViewType int

const (
	ViewComics ViewType = iota
	ViewThread
	ViewLogin
	ViewProfile
)

// Pages is everything the views load.
type Pages interface {
	Layout(ctx context.Context) (*api.UserBrief, error)
	comiclist.Source
	threadview.Pages
	profile.Source
}

// Deps are the services the app runs against.
type Deps struct {
	Pages   Pages
	Session login.Authenticator
	Users   profile.Users
	UserTTL time.Duration
	// Style is the render style used for descriptions.
	Style  string
	Logger *zap.Logger
}

// Start selects the first screen. An empty Username lists the comics of the
// logged-in user.
type Start struct {
	Username string
	Slug     string
	Chapter  int
}

// App is the root Bubble Tea model.
type App struct {
	activeView    ViewType
	previousViews []ViewType

	comics      comiclist.Model
	thread      threadview.Model
	threadStack []threadview.Model
	loginForm   login.Model
	profile     profile.Model
	statusBar   statusbar.Model

	deps     Deps
	start    Start
	username string

	width  int
	height int
}

// NewApp creates the root application model.
func NewApp(deps Deps, start Start) *App {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}
	a := &App{
		activeView: ViewComics,
		comics:     comiclist.New(start.Username, deps.Pages),
		statusBar:  statusbar.New(),
		deps:       deps,
		start:      start,
	}
	switch {
	case start.Slug != "" && start.Chapter > 0:
		a.activeView = ViewThread
		a.thread = threadview.NewChapter(start.Username, start.Slug, start.Chapter, deps.Pages, deps.Style)
	case start.Slug != "":
		a.activeView = ViewThread
		a.thread = threadview.NewComic(start.Username, start.Slug, deps.Pages, deps.Style)
	}
	a.updateLocation()
	return a
}

// Init loads the layout user and the first screen.
func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{a.loadLayout()}
	if a.start.Username != "" {
		cmds = append(cmds, a.comics.Init())
	}
	if a.activeView == ViewThread {
		cmds = append(cmds, a.thread.Init())
	}
	return tea.Batch(cmds...)
}

func (a *App) loadLayout() tea.Cmd {
	src := a.deps.Pages
	return func() tea.Msg {
		user, err := src.Layout(context.Background())
		return messages.LayoutLoadedMsg{User: user, Err: err}
	}
}

// Update handles all messages.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.comics.SetSize(msg.Width, a.contentHeight())
		a.statusBar.SetSize(msg.Width)
		a.resizeActive()
		return a, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, Keys.ForceQuit):
			return a, tea.Quit
		case key.Matches(msg, Keys.Back) && a.activeView == ViewLogin:
			return a, a.goBack()
		case a.activeView == ViewLogin:
			// The form gets every other key.
		case key.Matches(msg, Keys.Quit):
			if len(a.previousViews) == 0 {
				return a, tea.Quit
			}
			return a, a.goBack()
		case key.Matches(msg, Keys.Back) && len(a.previousViews) > 0:
			return a, a.goBack()
		case key.Matches(msg, Keys.Login):
			if a.username == "" {
				a.openLogin()
			}
			return a, nil
		case key.Matches(msg, Keys.Profile):
			return a, a.openProfile()
		}

	case messages.OpenComicsMsg:
		if a.activeView == ViewComics && a.comics.Username() == msg.Username {
			return a, nil
		}
		a.pushView(ViewComics)
		a.comics = comiclist.New(msg.Username, a.deps.Pages)
		a.resizeActive()
		return a, a.comics.Init()

	case messages.OpenComicMsg:
		a.pushThread(threadview.NewComic(msg.Username, msg.Slug, a.deps.Pages, a.deps.Style))
		return a, a.thread.Init()

	case messages.OpenChapterMsg:
		a.pushThread(threadview.NewChapter(msg.Username, msg.Slug, msg.Number, a.deps.Pages, a.deps.Style))
		return a, a.thread.Init()

	case messages.OpenLoginMsg:
		a.openLogin()
		return a, nil

	case messages.OpenProfileMsg:
		return a, a.openProfile()

	case messages.GoBackMsg:
		return a, a.goBack()

	case messages.RedirectMsg:
		a.deps.Logger.Debug("redirect", zap.String("location", msg.Location))
		a.statusBar.SetStatus("Log in to continue", false)
		a.openLogin()
		return a, nil

	case messages.LayoutLoadedMsg:
		if msg.Err != nil {
			a.statusBar.SetStatus(errorview.Summary(msg.Err), true)
			return a, nil
		}
		return a, a.setUser(msg.User)

	case messages.LoginResultMsg:
		if msg.Err == nil {
			a.statusBar.SetStatus("Logged in", false)
			a.goBack()
			// The token may be opaque, so ask the server who we are.
			return a, a.loadLayout()
		}

	case messages.ComicsLoadedMsg, messages.ComicLoadedMsg, messages.ChapterLoadedMsg, messages.ProfileLoadedMsg:
		if err := loadErr(msg); err != nil {
			if redirect := a.redirectFor(err); redirect != nil {
				return a, redirect
			}
			a.statusBar.SetStatus(errorview.Summary(err), true)
		}

	case messages.StatusMsg:
		a.statusBar.SetStatus(msg.Text, msg.IsError)
	}

	var cmd tea.Cmd
	switch a.activeView {
	case ViewComics:
		a.comics, cmd = a.comics.Update(msg)
	case ViewThread:
		a.thread, cmd = a.thread.Update(msg)
	case ViewLogin:
		a.loginForm, cmd = a.loginForm.Update(msg)
	case ViewProfile:
		a.profile, cmd = a.profile.Update(msg)
	}
	cmds = append(cmds, cmd)
	a.updateLocation()

	a.statusBar, cmd = a.statusBar.Update(msg)
	cmds = append(cmds, cmd)

	return a, tea.Batch(cmds...)
}

// View renders the application.
func (a *App) View() string {
	var content string
	switch a.activeView {
	case ViewComics:
		content = a.comics.View()
	case ViewThread:
		content = a.thread.View()
	case ViewLogin:
		content = a.loginForm.View()
	case ViewProfile:
		content = a.profile.View()
	}
	return lipgloss.JoinVertical(lipgloss.Left, content, a.statusBar.View())
}

// ActiveView reports the view on screen.
func (a *App) ActiveView() ViewType {
	return a.activeView
}

func loadErr(msg tea.Msg) error {
	switch m := msg.(type) {
	case messages.ComicsLoadedMsg:
		return m.Err
	case messages.ComicLoadedMsg:
		return m.Err
	case messages.ChapterLoadedMsg:
		return m.Err
	case messages.ProfileLoadedMsg:
		return m.Err
	}
	return nil
}

// redirectFor turns a redirect outcome into navigation. The page that asked
// for it is dropped from the history.
func (a *App) redirectFor(err error) tea.Cmd {
	if loader.StateOf(err) != loader.StateRedirect {
		return nil
	}
	var location string
	var rd *loader.Redirect
	if errors.As(err, &rd) {
		location = rd.Location
	}
	a.goBack()
	return func() tea.Msg { return messages.RedirectMsg{Location: location} }
}

func (a *App) setUser(user *api.UserBrief) tea.Cmd {
	if user == nil {
		a.username = ""
		a.statusBar.SetUser("")
		return nil
	}
	a.username = user.Username
	a.statusBar.SetUser(user.Username)
	if a.deps.Users != nil {
		if err := a.deps.Users.PutUser(user); err != nil {
			a.deps.Logger.Warn("caching user failed", zap.Error(err))
		}
	}
	if a.comics.Username() == "" {
		a.comics = comiclist.New(user.Username, a.deps.Pages)
		a.comics.SetSize(a.width, a.contentHeight())
		return a.comics.Init()
	}
	return nil
}

func (a *App) openLogin() {
	if a.activeView == ViewLogin {
		return
	}
	a.pushView(ViewLogin)
	a.loginForm = login.New(a.deps.Session)
	a.resizeActive()
}

func (a *App) openProfile() tea.Cmd {
	a.pushView(ViewProfile)
	a.profile = profile.New(a.username, a.deps.Pages, a.deps.Users, a.deps.UserTTL)
	a.resizeActive()
	return a.profile.Init()
}

func (a *App) pushThread(m threadview.Model) {
	if a.activeView == ViewThread {
		a.threadStack = append(a.threadStack, a.thread)
	}
	a.pushView(ViewThread)
	a.thread = m
	a.resizeActive()
}

func (a *App) pushView(v ViewType) {
	a.previousViews = append(a.previousViews, a.activeView)
	a.activeView = v
	a.updateLocation()
}

func (a *App) goBack() tea.Cmd {
	if len(a.previousViews) == 0 {
		return nil
	}
	prev := a.previousViews[len(a.previousViews)-1]
	a.previousViews = a.previousViews[:len(a.previousViews)-1]
	if a.activeView == ViewThread && prev == ViewThread && len(a.threadStack) > 0 {
		a.thread = a.threadStack[len(a.threadStack)-1]
		a.threadStack = a.threadStack[:len(a.threadStack)-1]
	}
	a.activeView = prev
	a.resizeActive()
	a.updateLocation()
	return nil
}

func (a *App) contentHeight() int {
	return max(a.height-1, 0)
}

func (a *App) resizeActive() {
	if a.width == 0 {
		return
	}
	h := a.contentHeight()
	switch a.activeView {
	case ViewComics:
		a.comics.SetSize(a.width, h)
	case ViewThread:
		a.thread.SetSize(a.width, h)
	case ViewLogin:
		a.loginForm.SetSize(a.width, h)
	case ViewProfile:
		a.profile.SetSize(a.width, h)
	}
}

func (a *App) updateLocation() {
	switch a.activeView {
	case ViewComics:
		if u := a.comics.Username(); u != "" {
			a.statusBar.SetLocation("comics/" + u)
		} else {
			a.statusBar.SetLocation("comics")
		}
	case ViewThread:
		a.statusBar.SetLocation(a.thread.Title())
	case ViewLogin:
		a.statusBar.SetLocation("login")
	case ViewProfile:
		a.statusBar.SetLocation("profile")
	}
}
