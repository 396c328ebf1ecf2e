package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/fragmede/panelist/internal/api"
	"github.com/fragmede/panelist/internal/auth"
	"github.com/fragmede/panelist/internal/loader"
	"github.com/fragmede/panelist/internal/render"
	"github.com/fragmede/panelist/internal/ui/errorview"
)

var comicCmd = &cobra.Command{
	Use:   "comic <username> <slug>",
	Short: "Show a comic and its comments",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		view, err := env.pages.Comic(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), view)
		}
		w := cmd.OutOrStdout()
		c := view.Comic
		fmt.Fprintf(w, "%s\nby %s | %d chapters\n\n", c.Title, c.Author.Username, len(c.Chapters))
		if c.Description != "" {
			fmt.Fprintln(w, render.Markdown(c.Description, width(), render.StylePlain))
		}
		for _, ch := range c.Chapters {
			fmt.Fprintf(w, "  #%d %s\n", ch.Number, ch.Title)
		}
		return printComments(w, view.Comments)
	},
}

var chapterCmd = &cobra.Command{
	Use:   "chapter <username> <slug> <number>",
	Short: "Show a chapter and its comments",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := chapterNumber(args[2])
		if err != nil {
			return err
		}
		view, err := env.pages.Chapter(cmd.Context(), args[0], args[1], n)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), view)
		}
		w := cmd.OutOrStdout()
		ch := view.Chapter
		fmt.Fprintf(w, "Chapter %d: %s\nrating %.1f | %d pages | %s\n\n",
			ch.Number, ch.Title, ch.Rating, len(ch.Pages), render.TimeAgo(ch.CreatedAt))
		if ch.Description != "" {
			fmt.Fprintln(w, render.Markdown(ch.Description, width(), render.StylePlain))
		}
		return printComments(w, view.Comments)
	},
}

var chapterSettingsCmd = &cobra.Command{
	Use:   "chapter-settings <username> <slug> <number>",
	Short: "Show the editable settings of one of your chapters",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := chapterNumber(args[2])
		if err != nil {
			return err
		}
		view, err := env.pages.ChapterSettings(cmd.Context(), args[0], args[1], n)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), view)
		}
		ch := view.Chapter
		fmt.Fprintf(cmd.OutOrStdout(), "comic:       %s\nnumber:      %d\ntitle:       %s\ndescription: %s\npages:       %d\n",
			view.ComicID, ch.Number, ch.Title, ch.Description, len(ch.Pages))
		return nil
	},
}

var newChapterCmd = &cobra.Command{
	Use:   "new-chapter <username> <slug>",
	Short: "Show the comic a new chapter would be added to",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		view, err := env.pages.NewChapter(cmd.Context(), args[0], args[1])
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), view)
		}
		next := 1
		for _, ch := range view.Comic.Chapters {
			next = max(next, ch.Number+1)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s (%s): next chapter is #%d\n", view.Comic.Title, view.Comic.ID, next)
		return nil
	},
}

var comicsCmd = &cobra.Command{
	Use:   "comics <username>",
	Short: "List the comics of a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		comics, err := env.pages.UserComics(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), comics)
		}
		for _, c := range comics {
			fmt.Fprintf(cmd.OutOrStdout(), "%-30s %3d chapters  %s\n", c.Slug(), len(c.Chapters), c.Title)
		}
		return nil
	},
}

var genresCmd = &cobra.Command{
	Use:   "genres",
	Short: "List comic genres",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		genres, err := env.pages.Genres(cmd.Context())
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), genres)
		}
		for _, g := range genres {
			fmt.Fprintf(cmd.OutOrStdout(), "%3d  %s\n", g.ID, g.Name)
		}
		return nil
	},
}

var postsCmd = &cobra.Command{
	Use:   "posts [username [post-id]]",
	Short: "Show the front page, the posts of a user, or one post",
	Args:  cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		switch len(args) {
		case 0:
			home, err := env.pages.Home(ctx)
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), home)
			}
			if home.User != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "logged in as %s\n\n", home.User.Username)
			}
			return printPosts(cmd.OutOrStdout(), home.Posts)
		case 1:
			posts, err := env.pages.UserPosts(ctx, args[0])
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), posts)
			}
			return printPosts(cmd.OutOrStdout(), posts)
		default:
			post, err := env.pages.Post(ctx, args[0], args[1])
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(cmd.OutOrStdout(), post)
			}
			return printPosts(cmd.OutOrStdout(), []api.Post{post})
		}
	},
}

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show the logged-in user and their posts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		view, err := env.pages.Profile(cmd.Context())
		if err != nil {
			return err
		}
		if err := env.db.PutUser(&view.User); err != nil {
			env.logger.Warn("caching user failed", zap.Error(err))
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), view)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s <%s>\n\n", view.User.Username, view.User.Email)
		return printPosts(cmd.OutOrStdout(), view.Posts)
	},
}

var (
	loginEmail         string
	loginPasswordStdin bool
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and save the access token",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		in := bufio.NewReader(cmd.InOrStdin())
		email := loginEmail
		if email == "" {
			line, err := prompt(cmd, in, "Email: ")
			if err != nil {
				return err
			}
			email = line
		}
		password, err := readPassword(cmd, in)
		if err != nil {
			return err
		}

		claims, err := env.session.Login(cmd.Context(), email, password)
		if err != nil {
			return err
		}
		if claims.Username != "" {
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s\n", claims.Username)
		} else {
			fmt.Fprintln(cmd.OutOrStdout(), "Logged in")
		}
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the saved access token",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if claims, err := env.provider.Claims(); err == nil && claims.Username != "" {
			if err := env.db.DeleteUser(claims.Username); err != nil {
				env.logger.Warn("dropping cached user failed", zap.Error(err))
			}
		}
		if err := env.session.Logout(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Print the logged-in user",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		user, err := whoami(cmd.Context())
		if err != nil {
			return err
		}
		if user == nil {
			return errors.New("not logged in")
		}
		if jsonOutput {
			return printJSON(cmd.OutOrStdout(), user)
		}
		fmt.Fprintln(cmd.OutOrStdout(), user.Username)
		return nil
	},
}

// whoami answers from the user cache while it is fresh and asks the server
// otherwise.
func whoami(ctx context.Context) (*api.UserBrief, error) {
	if env.cfg.Token == "" {
		claims, err := env.provider.Claims()
		if errors.Is(err, auth.ErrNoCredential) {
			return nil, nil
		}
		if err == nil && claims.Username != "" {
			cached, fresh, err := env.db.GetUser(claims.Username, env.cfg.UserTTL)
			if err != nil {
				env.logger.Warn("reading user cache failed", zap.Error(err))
			}
			if fresh && cached != nil {
				env.logger.Debug("whoami from cache", zap.String("username", cached.Username))
				return cached, nil
			}
		}
	}

	user, err := env.pages.Layout(ctx)
	if err != nil || user == nil {
		return nil, err
	}
	if err := env.db.PutUser(user); err != nil {
		env.logger.Warn("caching user failed", zap.Error(err))
	}
	return user, nil
}

var sendVerificationCmd = &cobra.Command{
	Use:   "send-verification",
	Short: "Email a verification link to the logged-in user",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(cmd.OutOrStdout(), env.pages.SendVerificationEmail(cmd.Context()))
		return nil
	},
}

var verifyEmailCmd = &cobra.Command{
	Use:   "verify-email <verification-id>",
	Short: "Confirm an email verification link",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintln(cmd.OutOrStdout(), env.pages.ConfirmEmail(cmd.Context(), args[0]))
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "account email")
	loginCmd.Flags().BoolVar(&loginPasswordStdin, "password-stdin", false, "read the password from stdin")

	rootCmd.AddCommand(
		comicCmd,
		chapterCmd,
		chapterSettingsCmd,
		newChapterCmd,
		comicsCmd,
		genresCmd,
		postsCmd,
		profileCmd,
		loginCmd,
		logoutCmd,
		whoamiCmd,
		sendVerificationCmd,
		verifyEmailCmd,
	)
}

// describe turns a load error into the line printed before exiting.
func describe(err error) string {
	var rd *loader.Redirect
	if errors.As(err, &rd) {
		return "login required, run `panelist login`"
	}
	var f *loader.Failure
	if errors.As(err, &f) {
		return errorview.Summary(err)
	}
	return err.Error()
}

func chapterNumber(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("chapter must be a positive number, got %q", s)
	}
	return n, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printComments(w io.Writer, comments []api.Comment) error {
	if len(comments) == 0 {
		_, err := fmt.Fprintln(w, "\nNo comments yet.")
		return err
	}
	fmt.Fprintln(w)
	return render.Tree(w, comments, width())
}

func printPosts(w io.Writer, posts []api.Post) error {
	for _, p := range posts {
		fmt.Fprintf(w, "%s  (%s, %s)\n", p.Title, p.User.Username, p.ID)
		if p.Content != "" {
			fmt.Fprintln(w, render.Indent(render.ContentToText(p.Content, width()-2), "  "))
		}
		fmt.Fprintln(w)
	}
	return nil
}

func width() int {
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 20 {
		return w
	}
	return 80
}

func prompt(cmd *cobra.Command, in *bufio.Reader, label string) (string, error) {
	fmt.Fprint(cmd.ErrOrStderr(), label)
	line, err := in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func readPassword(cmd *cobra.Command, in *bufio.Reader) (string, error) {
	fd := int(os.Stdin.Fd())
	if loginPasswordStdin || !term.IsTerminal(fd) {
		data, err := io.ReadAll(in)
		if err != nil {
			return "", err
		}
		return strings.TrimRight(string(data), "\r\n"), nil
	}
	fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
	pw, err := term.ReadPassword(fd)
	fmt.Fprintln(cmd.ErrOrStderr())
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return string(pw), nil
}
