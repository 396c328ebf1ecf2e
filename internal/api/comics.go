package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
)

func seg(s string) string {
	return url.PathEscape(s)
}

// ComicBySlug looks a comic up by its slug and owner.
func ComicBySlug(username, slug string) Request {
	return Request{
		Method:      http.MethodGet,
		Path:        fmt.Sprintf("/v1/comics/by_slug/%s/%s", seg(slug), seg(username)),
		Credentials: CredentialsInclude,
	}
}

// ComicByID fetches a comic by id.
func ComicByID(id string) Request {
	return Request{Method: http.MethodGet, Path: "/v1/comics/" + seg(id)}
}

// ComicComments lists a comic's comments as a flat array.
func ComicComments(comicID string) Request {
	return Request{Method: http.MethodGet, Path: fmt.Sprintf("/v1/comics/%s/comments", seg(comicID))}
}

// ChapterBySlug looks a chapter up by owner, comic slug and chapter number.
func ChapterBySlug(username, slug string, number int) Request {
	return Request{
		Method: http.MethodGet,
		Path: fmt.Sprintf("/v1/comics/chapters/by_slug/%s/%s/%s/",
			seg(username), seg(slug), strconv.Itoa(number)),
		Credentials: CredentialsInclude,
	}
}

// ChapterByID fetches a chapter by id.
func ChapterByID(id string) Request {
	return Request{Method: http.MethodGet, Path: fmt.Sprintf("/v1/comics/chapters/%s/s", seg(id))}
}

// ChapterComments lists a chapter's comments as a flat array.
func ChapterComments(chapterID string) Request {
	return Request{Method: http.MethodGet, Path: fmt.Sprintf("/v1/comics/chapters/%s/comments", seg(chapterID))}
}

// Genres lists all comic genres.
func Genres() Request {
	return Request{Method: http.MethodGet, Path: "/v1/comic-genres"}
}

// GetComicBySlug fetches a single comic.
func (c *Client) GetComicBySlug(ctx context.Context, username, slug string) (*Comic, error) {
	var comic Comic
	if err := c.Do(ctx, ComicBySlug(username, slug), &comic); err != nil {
		return nil, err
	}
	return &comic, nil
}

// GetComicComments fetches the flat comment list for a comic.
func (c *Client) GetComicComments(ctx context.Context, comicID string) ([]Comment, error) {
	var comments []Comment
	if err := c.Do(ctx, ComicComments(comicID), &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

// GetChapterComments fetches the flat comment list for a chapter.
func (c *Client) GetChapterComments(ctx context.Context, chapterID string) ([]Comment, error) {
	var comments []Comment
	if err := c.Do(ctx, ChapterComments(chapterID), &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

// GetGenres fetches all genres.
func (c *Client) GetGenres(ctx context.Context) ([]Genre, error) {
	var genres []Genre
	if err := c.Do(ctx, Genres(), &genres); err != nil {
		return nil, fmt.Errorf("fetching genres: %w", err)
	}
	return genres, nil
}
