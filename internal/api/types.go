package api

import (
	"time"
)

// UserBrief is the author/owner summary embedded in most resources.
type UserBrief struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
}

// Genre is a comic genre tag.
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Image points at a stored image object.
type Image struct {
	ContentType string `json:"content_type"`
	Path        string `json:"path"`
}

// Comic is a comic with its author, chapter list and genres.
type Comic struct {
	ID          string         `json:"id"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	CreatedAt   string         `json:"created_at"`
	Author      UserBrief      `json:"author"`
	Chapters    []ChapterBrief `json:"chapters"`
	Genres      []Genre        `json:"genres"`
}

// ChapterBrief is the chapter summary listed on a comic.
type ChapterBrief struct {
	ID          string    `json:"id"`
	Title       string    `json:"title,omitempty"`
	Number      int       `json:"number"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Chapter is a full chapter with its pages.
type Chapter struct {
	ID          string        `json:"id"`
	ComicID     string        `json:"comic_id"`
	Title       string        `json:"title,omitempty"`
	Rating      float64       `json:"rating"`
	Number      int           `json:"number"`
	Description string        `json:"description,omitempty"`
	Pages       []ChapterPage `json:"pages"`
	CreatedAt   time.Time     `json:"created_at"`
}

// ChapterPage is one image page of a chapter.
type ChapterPage struct {
	ID     string `json:"id"`
	Number int    `json:"number"`
	Image  Image  `json:"image"`
}

// Comment is a comic or chapter comment. The API returns comments as a flat
// list linked by ParentComment and ChildCommentsIDs; ChildComments is filled
// in by thread.Build.
type Comment struct {
	ID               string     `json:"id"`
	Content          string     `json:"content"`
	User             UserBrief  `json:"user"`
	ComicID          string     `json:"comic_id,omitempty"`
	ChapterID        string     `json:"chapter_id,omitempty"`
	CreatedAt        *time.Time `json:"created_at,omitempty"`
	ParentComment    *string    `json:"parent_comment"`
	ChildCommentsIDs []string   `json:"child_comments_ids,omitempty"`
	ChildComments    []Comment  `json:"child_comments"`
}

// IsRoot reports whether the comment has no parent.
func (c *Comment) IsRoot() bool {
	return c.ParentComment == nil || *c.ParentComment == ""
}

// Post is a user post.
type Post struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt string    `json:"created_at"`
	User      UserBrief `json:"user"`
	Image     Image     `json:"image"`
}

// Token is the login response.
type Token struct {
	AccessToken string `json:"access_token"`
}

// Credentials is the login request body.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}
