package messages

import (
	"github.com/fragmede/panelist/internal/api"
	"github.com/fragmede/panelist/internal/pages"
)

// View transition messages.
type (
	OpenComicsMsg  struct{ Username string }
	OpenComicMsg   struct{ Username, Slug string }
	OpenChapterMsg struct {
		Username string
		Slug     string
		Number   int
	}
	OpenLoginMsg   struct{}
	OpenProfileMsg struct{}
	GoBackMsg      struct{}
)

// Data messages.
type (
	ComicsLoadedMsg struct {
		Username string
		Comics   []api.Comic
		Err      error
	}

	ComicLoadedMsg struct {
		View *pages.ComicView
		Err  error
	}

	ChapterLoadedMsg struct {
		Username string
		Slug     string
		View     *pages.ChapterView
		Err      error
	}

	// LayoutLoadedMsg carries the logged-in user; User is nil when nobody
	// is logged in.
	LayoutLoadedMsg struct {
		User *api.UserBrief
		Err  error
	}

	// ProfileLoadedMsg carries the profile screen. Stale is set when the
	// server could not be reached and User came from the cache.
	ProfileLoadedMsg struct {
		User  *api.UserBrief
		Posts []api.Post
		Stale bool
		Err   error
	}

	LoginResultMsg struct {
		Username string
		Err      error
	}

	// RedirectMsg is sent when a page needs a login.
	RedirectMsg struct{ Location string }

	StatusMsg struct {
		Text    string
		IsError bool
	}
)
