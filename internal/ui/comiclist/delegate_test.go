package comiclist

import (
	"strings"
	"testing"

	"github.com/charmbracelet/bubbles/list"
	"github.com/stretchr/testify/assert"

	"github.com/fragmede/panelist/internal/api"
)

func TestDelegateRender(t *testing.T) {
	items := []list.Item{
		ComicItem{Comic: api.Comic{Title: "Nimona", Author: api.UserBrief{Username: "noelle"}}, Index: 0},
		ComicItem{Comic: api.Comic{Title: strings.Repeat("long ", 40)}, Index: 1},
	}
	l := list.New(items, Delegate{}, 40, 20)

	var b strings.Builder
	Delegate{}.Render(&b, l, 0, items[0])
	out := b.String()
	assert.Contains(t, out, ">  1 ")
	assert.Contains(t, out, "Nimona")
	assert.Contains(t, out, "by noelle")

	b.Reset()
	Delegate{}.Render(&b, l, 1, items[1])
	first := strings.SplitN(b.String(), "\n", 2)[0]
	assert.Contains(t, first, "…")
	assert.NotContains(t, first, ">")
}
