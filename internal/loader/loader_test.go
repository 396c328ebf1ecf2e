package loader

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"github.com/fragmede/panelist/internal/api"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// scripted answers each path with a canned payload or error and records the
// paths it saw.
type scripted struct {
	replies map[string]any
	calls   []string
}

func (s *scripted) Do(_ context.Context, req api.Request, dst any) error {
	s.calls = append(s.calls, req.Path)
	reply, ok := s.replies[req.Path]
	if !ok {
		return &api.Error{Status: http.StatusNotFound, Message: "Not Found"}
	}
	if err, ok := reply.(error); ok {
		return err
	}
	if dst == nil {
		return nil
	}
	data, err := json.Marshal(reply)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dst)
}

func comicPage(requireAuth bool) Page {
	return Page{
		Name:        "comic",
		RequireAuth: requireAuth,
		Steps: []Step{
			Fetch[api.Comic]("comic", Static(api.Request{Path: "/comic"})),
			Fetch[[]api.Comment]("comments", func(prev Results) (api.Request, error) {
				comic, ok := Get[api.Comic](prev, "comic")
				if !ok {
					return api.Request{}, errors.New("comic missing")
				}
				return api.Request{Path: "/comments/" + comic.ID}, nil
			}),
		},
	}
}

func TestRun_SuccessAggregatesResults(t *testing.T) {
	doer := &scripted{replies: map[string]any{
		"/comic":       api.Comic{ID: "c1", Title: "Nimona"},
		"/comments/c1": []api.Comment{{ID: "x"}, {ID: "y"}},
	}}
	r := NewRunner(doer, zaptest.NewLogger(t))

	res, err := r.Run(context.Background(), comicPage(false))
	require.NoError(t, err)
	assert.Equal(t, StateSuccess, StateOf(err))

	comic, ok := Get[api.Comic](res, "comic")
	require.True(t, ok)
	assert.Equal(t, "Nimona", comic.Title)

	comments, ok := Get[[]api.Comment](res, "comments")
	require.True(t, ok)
	assert.Len(t, comments, 2)
	assert.Equal(t, []string{"/comic", "/comments/c1"}, doer.calls)
}

func TestRun_FirstFailureShortCircuits(t *testing.T) {
	doer := &scripted{replies: map[string]any{
		"/comic": &api.Error{Status: http.StatusNotFound, Message: "comic not found"},
	}}
	r := NewRunner(doer, nil)

	res, err := r.Run(context.Background(), comicPage(true))
	assert.Nil(t, res)
	assert.Equal(t, StateFailure, StateOf(err))

	var f *Failure
	require.ErrorAs(t, err, &f)
	assert.Equal(t, "comic", f.Step)
	assert.Equal(t, http.StatusNotFound, f.Status)
	assert.Equal(t, "comic not found", f.Message)
	assert.Equal(t, []string{"/comic"}, doer.calls, "second step must not be issued")
}

func TestRun_SecondStepFailureDropsFirstResult(t *testing.T) {
	doer := &scripted{replies: map[string]any{
		"/comic":       api.Comic{ID: "c1"},
		"/comments/c1": &api.Error{Status: http.StatusInternalServerError, Message: "Internal Server Error"},
	}}
	res, err := NewRunner(doer, nil).Run(context.Background(), comicPage(false))

	assert.Nil(t, res)
	var f *Failure
	require.ErrorAs(t, err, &f)
	assert.Equal(t, "comments", f.Step)
	assert.Equal(t, http.StatusInternalServerError, f.Status)
}

func TestRun_UnauthorizedRedirectsWhenAuthRequired(t *testing.T) {
	doer := &scripted{replies: map[string]any{
		"/comic": &api.Error{Status: http.StatusUnauthorized, Message: "Unauthorized"},
	}}
	p := comicPage(true)
	p.RedirectTo = "/login"

	res, err := NewRunner(doer, nil).Run(context.Background(), p)
	assert.Nil(t, res)
	assert.Equal(t, StateRedirect, StateOf(err))

	var rd *Redirect
	require.ErrorAs(t, err, &rd)
	assert.Equal(t, "/login", rd.Location)
	assert.Equal(t, "comic", rd.Step)
	assert.ErrorIs(t, err, api.ErrUnauthenticated)
	assert.Len(t, doer.calls, 1)
}

func TestRun_UnauthorizedDefaultLocation(t *testing.T) {
	doer := &scripted{replies: map[string]any{
		"/comic": &api.Error{Status: http.StatusUnauthorized},
	}}
	_, err := NewRunner(doer, nil).Run(context.Background(), comicPage(true))

	var rd *Redirect
	require.ErrorAs(t, err, &rd)
	assert.Equal(t, DefaultRedirect, rd.Location)
}

func TestRun_UnauthorizedIsFailureOnPublicPage(t *testing.T) {
	doer := &scripted{replies: map[string]any{
		"/comic": &api.Error{Status: http.StatusUnauthorized, Message: "Unauthorized"},
	}}
	_, err := NewRunner(doer, nil).Run(context.Background(), comicPage(false))

	assert.Equal(t, StateFailure, StateOf(err))
	var f *Failure
	require.ErrorAs(t, err, &f)
	assert.Equal(t, http.StatusUnauthorized, f.Status)
}

func TestRun_StepLevelAuth(t *testing.T) {
	doer := &scripted{replies: map[string]any{
		"/me": &api.Error{Status: http.StatusUnauthorized},
	}}
	p := Page{Name: "settings", Steps: []Step{
		{Name: "me", Request: Static(api.Request{Path: "/me"}), RequireAuth: true},
	}}
	_, err := NewRunner(doer, nil).Run(context.Background(), p)
	assert.Equal(t, StateRedirect, StateOf(err))
}

func TestRun_ForbiddenIsNotRedirect(t *testing.T) {
	doer := &scripted{replies: map[string]any{
		"/comic": &api.Error{Status: http.StatusForbidden, Message: "Forbidden"},
	}}
	_, err := NewRunner(doer, nil).Run(context.Background(), comicPage(true))
	assert.Equal(t, StateFailure, StateOf(err))
}

func TestRun_TransportFailure(t *testing.T) {
	doer := &scripted{replies: map[string]any{
		"/comic": &api.TransportError{Method: "GET", URL: "http://x/comic", Err: errors.New("connection refused")},
	}}
	_, err := NewRunner(doer, nil).Run(context.Background(), comicPage(true))

	assert.Equal(t, StateFailure, StateOf(err))
	var f *Failure
	require.ErrorAs(t, err, &f)
	assert.Zero(t, f.Status)
	var te *api.TransportError
	assert.ErrorAs(t, err, &te)
	assert.Contains(t, f.Error(), "connection refused")
}

func TestRun_BuildErrorStopsPage(t *testing.T) {
	doer := &scripted{}
	p := Page{Name: "broken", Steps: []Step{
		Call("bad", func(Results) (api.Request, error) { return api.Request{}, errors.New("no slug") }),
	}}
	_, err := NewRunner(doer, nil).Run(context.Background(), p)

	var f *Failure
	require.ErrorAs(t, err, &f)
	assert.Contains(t, f.Message, "no slug")
	assert.Empty(t, doer.calls)
}

func TestRun_CallDiscardsBody(t *testing.T) {
	doer := &scripted{replies: map[string]any{"/ping": map[string]string{"ok": "yes"}}}
	p := Page{Name: "ping", Steps: []Step{Call("ping", Static(api.Request{Path: "/ping"}))}}

	res, err := NewRunner(doer, nil).Run(context.Background(), p)
	require.NoError(t, err)
	_, ok := Get[map[string]string](res, "ping")
	assert.False(t, ok)
	assert.Contains(t, res, "ping")
}

func TestRun_EmptyPageSucceeds(t *testing.T) {
	res, err := NewRunner(&scripted{}, nil).Run(context.Background(), Page{Name: "empty"})
	require.NoError(t, err)
	assert.Empty(t, res)
}

func TestGet_WrongType(t *testing.T) {
	c := api.Comic{ID: "1"}
	res := Results{"comic": &c}
	_, ok := Get[api.Chapter](res, "comic")
	assert.False(t, ok)
	_, ok = Get[api.Comic](res, "missing")
	assert.False(t, ok)
}

func TestStateString(t *testing.T) {
	var zero State
	assert.Equal(t, StatePending, zero)
	assert.Equal(t, "pending", StatePending.String())
	assert.Equal(t, "success", StateSuccess.String())
	assert.Equal(t, "failure", StateFailure.String())
	assert.Equal(t, "redirect", StateRedirect.String())
	assert.Equal(t, StateRedirect, StateOf(fmt.Errorf("wrapped: %w", &Redirect{Location: "/"})))
}

func TestRun_AgainstServer(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		switch r.URL.Path {
		case "/comic":
			fmt.Fprint(w, `{"id":"c9","title":"Hilda"}`)
		case "/comments/c9":
			w.WriteHeader(http.StatusTeapot)
			fmt.Fprint(w, `{"error":"no comments for teapots"}`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	client := api.NewClient(api.WithBaseURL(srv.URL), api.WithHTTPClient(srv.Client()))
	_, err := NewRunner(client, zaptest.NewLogger(t)).Run(context.Background(), comicPage(false))

	var f *Failure
	require.ErrorAs(t, err, &f)
	assert.Equal(t, http.StatusTeapot, f.Status)
	assert.Equal(t, "no comments for teapots", f.Message)
	assert.EqualValues(t, 2, hits.Load())
}
