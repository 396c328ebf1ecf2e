package threadview

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fragmede/panelist/internal/api"
	"github.com/fragmede/panelist/internal/loader"
	"github.com/fragmede/panelist/internal/pages"
	"github.com/fragmede/panelist/internal/render"
	"github.com/fragmede/panelist/internal/thread"
	"github.com/fragmede/panelist/internal/ui/messages"
)

type fakePages struct {
	comic      *pages.ComicView
	chapter    *pages.ChapterView
	err        error
	gotNumber  int
	comicCalls int
}

func (f *fakePages) Comic(_ context.Context, _, _ string) (*pages.ComicView, error) {
	f.comicCalls++
	return f.comic, f.err
}

func (f *fakePages) Chapter(_ context.Context, _, _ string, number int) (*pages.ChapterView, error) {
	f.gotNumber = number
	return f.chapter, f.err
}

func ptr(s string) *string { return &s }

// sample has one root with two replies, the first of which has a reply.
func sample() []api.Comment {
	flat := []api.Comment{
		{ID: "1", Content: "root", User: api.UserBrief{Username: "noelle"}, ChildCommentsIDs: []string{"2", "4"}},
		{ID: "2", Content: "first", User: api.UserBrief{Username: "bob"}, ParentComment: ptr("1"), ChildCommentsIDs: []string{"3"}},
		{ID: "3", Content: "nested", User: api.UserBrief{Username: "eve"}, ParentComment: ptr("2")},
		{ID: "4", Content: "second", User: api.UserBrief{Username: "ann"}, ParentComment: ptr("1")},
	}
	return thread.Build(flat, 3)
}

func key(s string) tea.KeyMsg {
	switch s {
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune(" ")}
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func loaded(t *testing.T) (Model, *fakePages) {
	t.Helper()
	src := &fakePages{comic: &pages.ComicView{
		Comic: api.Comic{
			ID: "c1", Title: "Nimona",
			Author:   api.UserBrief{Username: "noelle"},
			Chapters: []api.ChapterBrief{{Number: 2}, {Number: 1}},
		},
		Comments: sample(),
	}}
	m := NewComic("noelle", "nimona", src, render.StylePlain)
	m.SetSize(80, 40)

	msg := m.Init()()
	m, _ = m.Update(msg)
	return m, src
}

func TestLoadComic(t *testing.T) {
	m, src := loaded(t)
	assert.Equal(t, 1, src.comicCalls)
	require.Len(t, m.comments, 4)
	assert.Equal(t, "Nimona", m.Title())
	assert.True(t, m.comments[0].IsAuthor)
	assert.Contains(t, m.View(), "Nimona")
	assert.Contains(t, m.viewport.View(), "nested")
}

func TestCollapseHidesReplies(t *testing.T) {
	m, _ := loaded(t)
	m, _ = m.Update(key("j"))
	assert.Equal(t, 1, m.selectedIdx)

	m, _ = m.Update(key(" "))
	require.Len(t, m.comments, 3)
	assert.True(t, m.comments[1].IsCollapsed)
	assert.Equal(t, 1, m.comments[1].ChildCount)

	m, _ = m.Update(key(" "))
	assert.Len(t, m.comments, 4)
}

func TestFoldAll(t *testing.T) {
	m, _ := loaded(t)
	m, _ = m.Update(key("z"))
	require.Len(t, m.comments, 1)
	assert.Equal(t, 3, m.comments[0].ChildCount)

	m, _ = m.Update(key("z"))
	assert.Len(t, m.comments, 4)
}

func TestParentAndSibling(t *testing.T) {
	m, _ := loaded(t)
	m, _ = m.Update(key("j"))
	m, _ = m.Update(key("]"))
	assert.Equal(t, "4", m.comments[m.selectedIdx].Comment.ID)

	m, _ = m.Update(key("p"))
	assert.Equal(t, "1", m.comments[m.selectedIdx].Comment.ID)
}

func TestNextChapterFromComic(t *testing.T) {
	m, _ := loaded(t)
	_, cmd := m.Update(key("n"))
	require.NotNil(t, cmd)
	assert.Equal(t, messages.OpenChapterMsg{Username: "noelle", Slug: "nimona", Number: 1}, cmd())
}

func TestChapterNavigation(t *testing.T) {
	src := &fakePages{chapter: &pages.ChapterView{
		Chapter:  api.Chapter{ID: "ch2", Number: 2, Title: "Dragons"},
		Comments: []api.Comment{},
	}}
	m := NewChapter("noelle", "nimona", 2, src, render.StylePlain)
	m.SetSize(80, 40)
	m, _ = m.Update(m.Init()())
	assert.Equal(t, 2, src.gotNumber)
	assert.Equal(t, "nimona #2: Dragons", m.Title())
	assert.Contains(t, m.viewport.View(), "No comments yet.")

	_, cmd := m.Update(key("n"))
	assert.Equal(t, messages.OpenChapterMsg{Username: "noelle", Slug: "nimona", Number: 3}, cmd())
	_, cmd = m.Update(key("b"))
	assert.Equal(t, messages.OpenChapterMsg{Username: "noelle", Slug: "nimona", Number: 1}, cmd())
}

func TestChapterIgnoresOtherComics(t *testing.T) {
	m := NewChapter("noelle", "nimona", 1, &fakePages{}, render.StylePlain)
	m, _ = m.Update(messages.ChapterLoadedMsg{Username: "noelle", Slug: "other", View: &pages.ChapterView{}})
	assert.True(t, m.loading)
}

func TestLoadFailureShowsError(t *testing.T) {
	fail := &loader.Failure{Page: "comic", Step: "comic", Status: 404, Message: "comic not found", Err: errors.New("x")}
	m := NewComic("noelle", "nimona", &fakePages{err: fail}, render.StylePlain)
	m.SetSize(80, 40)
	m, _ = m.Update(m.Init()())

	require.Error(t, m.Err())
	assert.Empty(t, m.comments)
	assert.Contains(t, m.viewport.View(), "comic not found")
}

func TestAuthorKeyOpensComics(t *testing.T) {
	m, _ := loaded(t)
	m, _ = m.Update(key("G"))
	_, cmd := m.Update(key("a"))
	require.NotNil(t, cmd)
	assert.Equal(t, messages.OpenComicsMsg{Username: "ann"}, cmd())
}
