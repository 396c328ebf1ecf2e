package errorview

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fragmede/panelist/internal/api"
	"github.com/fragmede/panelist/internal/loader"
)

func TestSummary(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "http failure",
			err:  &loader.Failure{Page: "comic", Step: "comic", Status: 404, Message: "comic not found"},
			want: "404 comic not found",
		},
		{
			name: "transport failure",
			err: &loader.Failure{Page: "comic", Step: "comic",
				Err: &api.TransportError{Method: "GET", URL: "http://x", Err: errors.New("refused")}},
			want: "cannot reach server",
		},
		{
			name: "plain error",
			err:  errors.New("boom"),
			want: "boom",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Summary(tt.err))
		})
	}
}

func TestRender(t *testing.T) {
	out := Render(&loader.Failure{Page: "chapter", Step: "comments", Status: 500, Message: "database down"}, 80)
	assert.Contains(t, out, "500 Internal Server Error")
	assert.Contains(t, out, "database down")
	assert.Empty(t, Render(nil, 80))
}
