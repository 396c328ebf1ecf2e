// Package pages declares the loaders behind each screen of the client and
// assembles their typed results.
package pages

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fragmede/panelist/internal/api"
	"github.com/fragmede/panelist/internal/loader"
	"github.com/fragmede/panelist/internal/thread"
)

// DefaultThreadDepth is the number of comment levels shown on a page.
const DefaultThreadDepth = 3

// ComicView is a comic with its threaded comments.
type ComicView struct {
	Comic    api.Comic
	Comments []api.Comment
}

// ChapterView is a chapter with its threaded comments.
type ChapterView struct {
	Chapter  api.Chapter
	Comments []api.Comment
}

// ChapterSettingsView is what the chapter settings screen edits.
type ChapterSettingsView struct {
	ComicID  string
	Username string
	Chapter  api.Chapter
}

// NewChapterView is the comic a new chapter is added to.
type NewChapterView struct {
	Username string
	Comic    api.Comic
}

// ProfileView is the logged-in user with their posts.
type ProfileView struct {
	User  api.UserBrief
	Posts []api.Post
}

// HomeView is the front page.
type HomeView struct {
	// User is nil when nobody is logged in.
	User  *api.UserBrief
	Posts []api.Post
}

// Loader runs page loads against the API.
type Loader struct {
	runner *loader.Runner
	depth  int
	logger *zap.Logger
}

// New creates a loader. Comment threads are cut at depth levels; depth 0
// shows roots only and a negative depth selects DefaultThreadDepth.
func New(client loader.Doer, depth int, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	if depth < 0 {
		depth = DefaultThreadDepth
	}
	return &Loader{
		runner: loader.NewRunner(client, logger),
		depth:  depth,
		logger: logger,
	}
}

// ComicPage fetches a comic by slug and then its comments.
func ComicPage(username, slug string) loader.Page {
	return loader.Page{
		Name: "comic",
		Steps: []loader.Step{
			loader.Fetch[api.Comic]("comic", loader.Static(api.ComicBySlug(username, slug))),
			loader.Fetch[[]api.Comment]("comments", func(prev loader.Results) (api.Request, error) {
				comic, ok := loader.Get[api.Comic](prev, "comic")
				if !ok {
					return api.Request{}, errors.New("comic missing")
				}
				return api.ComicComments(comic.ID), nil
			}),
		},
	}
}

// Comic loads a comic and its comment threads.
func (l *Loader) Comic(ctx context.Context, username, slug string) (*ComicView, error) {
	res, err := l.runner.Run(ctx, ComicPage(username, slug))
	if err != nil {
		return nil, err
	}
	comic, _ := loader.Get[api.Comic](res, "comic")
	comments, _ := loader.Get[[]api.Comment](res, "comments")
	return &ComicView{Comic: comic, Comments: thread.Build(comments, l.depth)}, nil
}

// ChapterPage fetches a chapter by owner, comic slug and number, then its
// comments.
func ChapterPage(username, slug string, number int) loader.Page {
	return loader.Page{
		Name: "chapter",
		Steps: []loader.Step{
			loader.Fetch[api.Chapter]("chapter", loader.Static(api.ChapterBySlug(username, slug, number))),
			loader.Fetch[[]api.Comment]("comments", func(prev loader.Results) (api.Request, error) {
				chapter, ok := loader.Get[api.Chapter](prev, "chapter")
				if !ok {
					return api.Request{}, errors.New("chapter missing")
				}
				return api.ChapterComments(chapter.ID), nil
			}),
		},
	}
}

// Chapter loads a chapter and its comment threads.
func (l *Loader) Chapter(ctx context.Context, username, slug string, number int) (*ChapterView, error) {
	res, err := l.runner.Run(ctx, ChapterPage(username, slug, number))
	if err != nil {
		return nil, err
	}
	chapter, _ := loader.Get[api.Chapter](res, "chapter")
	comments, _ := loader.Get[[]api.Comment](res, "comments")
	return &ChapterView{Chapter: chapter, Comments: thread.Build(comments, l.depth)}, nil
}

// ChapterSettingsPage fetches a chapter for its owner. A 401 redirects to the
// front page.
func ChapterSettingsPage(username, slug string, number int) loader.Page {
	return loader.Page{
		Name:        "chapter-settings",
		RequireAuth: true,
		RedirectTo:  loader.DefaultRedirect,
		Steps: []loader.Step{
			loader.Fetch[api.Chapter]("chapter", loader.Static(api.ChapterBySlug(username, slug, number))),
		},
	}
}

// ChapterSettings loads the chapter settings screen.
func (l *Loader) ChapterSettings(ctx context.Context, username, slug string, number int) (*ChapterSettingsView, error) {
	res, err := l.runner.Run(ctx, ChapterSettingsPage(username, slug, number))
	if err != nil {
		return nil, err
	}
	chapter, _ := loader.Get[api.Chapter](res, "chapter")
	return &ChapterSettingsView{ComicID: chapter.ComicID, Username: username, Chapter: chapter}, nil
}

// NewChapterPage fetches the comic a chapter will be added to.
func NewChapterPage(username, slug string) loader.Page {
	return loader.Page{
		Name:  "new-chapter",
		Steps: []loader.Step{loader.Fetch[api.Comic]("comic", loader.Static(api.ComicBySlug(username, slug)))},
	}
}

// NewChapter loads the new chapter screen.
func (l *Loader) NewChapter(ctx context.Context, username, slug string) (*NewChapterView, error) {
	res, err := l.runner.Run(ctx, NewChapterPage(username, slug))
	if err != nil {
		return nil, err
	}
	comic, _ := loader.Get[api.Comic](res, "comic")
	return &NewChapterView{Username: username, Comic: comic}, nil
}

// UserComics loads the comics owned by username.
func (l *Loader) UserComics(ctx context.Context, username string) ([]api.Comic, error) {
	return single[[]api.Comic](ctx, l, "user-comics", api.UserComics(username))
}

// Genres loads the genre list used by the new comic form.
func (l *Loader) Genres(ctx context.Context) ([]api.Genre, error) {
	return single[[]api.Genre](ctx, l, "genres", api.Genres())
}

// Post loads a single post of username.
func (l *Loader) Post(ctx context.Context, username, postID string) (api.Post, error) {
	return single[api.Post](ctx, l, "post", api.PostByID(username, postID))
}

// UserPosts loads the posts of username.
func (l *Loader) UserPosts(ctx context.Context, username string) ([]api.Post, error) {
	return single[[]api.Post](ctx, l, "user-posts", api.UserPosts(username))
}

// Posts loads the front page posts.
func (l *Loader) Posts(ctx context.Context) ([]api.Post, error) {
	return single[[]api.Post](ctx, l, "posts", api.Posts())
}

// ProfilePage fetches the logged-in user and then their posts. A 401
// redirects to the login screen.
func ProfilePage() loader.Page {
	return loader.Page{
		Name:        "profile",
		RequireAuth: true,
		RedirectTo:  "/login",
		Steps: []loader.Step{
			loader.Fetch[api.UserBrief]("me", loader.Static(api.CurrentUser())),
			loader.Fetch[[]api.Post]("posts", func(prev loader.Results) (api.Request, error) {
				me, ok := loader.Get[api.UserBrief](prev, "me")
				if !ok || me.Username == "" {
					return api.Request{}, errors.New("current user has no username")
				}
				return api.UserPosts(me.Username), nil
			}),
		},
	}
}

// Profile loads the profile screen.
func (l *Loader) Profile(ctx context.Context) (*ProfileView, error) {
	res, err := l.runner.Run(ctx, ProfilePage())
	if err != nil {
		return nil, err
	}
	me, _ := loader.Get[api.UserBrief](res, "me")
	posts, _ := loader.Get[[]api.Post](res, "posts")
	return &ProfileView{User: me, Posts: posts}, nil
}

// Layout loads the logged-in user shown in the frame of every screen. Any
// error response means nobody is logged in and is not an error; only a
// transport failure is.
func (l *Loader) Layout(ctx context.Context) (*api.UserBrief, error) {
	user, err := single[api.UserBrief](ctx, l, "layout", api.CurrentUser())
	if err != nil {
		var f *loader.Failure
		if errors.As(err, &f) && f.Status != 0 {
			l.logger.Debug("no logged-in user", zap.Int("status", f.Status))
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// Home loads the layout user and the front page posts concurrently.
func (l *Loader) Home(ctx context.Context) (*HomeView, error) {
	var view HomeView
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		user, err := l.Layout(gctx)
		view.User = user
		return err
	})
	g.Go(func() error {
		posts, err := l.Posts(gctx)
		view.Posts = posts
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &view, nil
}

const (
	msgEmailSent      = "Email Has been sent! Check your inbox or junk folder."
	msgEmailNotSent   = "Email failed to be sent"
	msgEmailVerified  = "Your email has been verified! You may close this page."
	msgLinkExpired    = "This link has expired, try to resend the email."
	msgSomethingWrong = "Something went wrong."
)

// SendVerificationEmail asks the server to mail a verification link and
// returns the message to show. It never fails.
func (l *Loader) SendVerificationEmail(ctx context.Context) string {
	_, err := l.runner.Run(ctx, loader.Page{
		Name:  "send-email",
		Steps: []loader.Step{loader.Call("send", loader.Static(api.SendVerificationEmail()))},
	})
	if err != nil {
		return msgEmailNotSent
	}
	return msgEmailSent
}

// ConfirmEmail confirms a verification link and returns the message to show.
// It never fails.
func (l *Loader) ConfirmEmail(ctx context.Context, verificationID string) string {
	_, err := l.runner.Run(ctx, loader.Page{
		Name:  "confirm-email",
		Steps: []loader.Step{loader.Call("confirm", loader.Static(api.ConfirmEmail(verificationID)))},
	})
	switch {
	case err == nil:
		return msgEmailVerified
	case api.StatusOf(err) == http.StatusGone:
		return msgLinkExpired
	default:
		return msgSomethingWrong
	}
}

// single runs a one-step page.
func single[T any](ctx context.Context, l *Loader, name string, req api.Request) (T, error) {
	var zero T
	res, err := l.runner.Run(ctx, loader.Page{
		Name:  name,
		Steps: []loader.Step{loader.Fetch[T](name, loader.Static(req))},
	})
	if err != nil {
		return zero, err
	}
	v, _ := loader.Get[T](res, name)
	return v, nil
}
