// Package loader runs the short chains of dependent API calls behind every
// page: fetch A, stop on the first failure, build B's request from A's
// result, and turn a 401 on an authenticated page into a redirect.
package loader

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/fragmede/panelist/internal/api"
)

// DefaultRedirect is where unauthenticated pages send the user.
const DefaultRedirect = "/"

// Doer performs a single API request. *api.Client implements it.
type Doer interface {
	Do(ctx context.Context, req api.Request, dst any) error
}

// Results holds the decoded payload of every completed step, by step name.
type Results map[string]any

// Get returns the payload stored under name.
func Get[T any](r Results, name string) (T, bool) {
	var zero T
	p, ok := r[name].(*T)
	if !ok || p == nil {
		return zero, false
	}
	return *p, true
}

// Step is one remote call of a page.
type Step struct {
	Name string
	// Request builds the call from the results of the earlier steps.
	Request func(prev Results) (api.Request, error)
	// RequireAuth turns a 401 on this step into a redirect even when the
	// page itself does not require authentication.
	RequireAuth bool

	newDst func() any
}

// Fetch declares a step whose JSON response decodes into a T.
func Fetch[T any](name string, req func(prev Results) (api.Request, error)) Step {
	return Step{Name: name, Request: req, newDst: func() any { return new(T) }}
}

// Call declares a step whose response body is ignored.
func Call(name string, req func(prev Results) (api.Request, error)) Step {
	return Step{Name: name, Request: req}
}

// Static adapts a request that does not depend on earlier steps.
func Static(req api.Request) func(Results) (api.Request, error) {
	return func(Results) (api.Request, error) { return req, nil }
}

// Page is an ordered list of steps with one outcome.
type Page struct {
	Name        string
	Steps       []Step
	RequireAuth bool
	// RedirectTo is where a 401 sends the user; DefaultRedirect when empty.
	RedirectTo string
}

// Runner executes pages against an API.
type Runner struct {
	client Doer
	logger *zap.Logger
}

// NewRunner creates a runner. A nil logger discards output.
func NewRunner(client Doer, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{client: client, logger: logger}
}

// Run executes the steps of p in order. It returns every step's payload on
// success. On the first failing step it stops and returns either a *Redirect
// (401 on a page or step that requires auth) or a *Failure; no partial
// results are returned. Nothing is retried.
func (r *Runner) Run(ctx context.Context, p Page) (Results, error) {
	results := make(Results, len(p.Steps))
	start := time.Now()

	for i, step := range p.Steps {
		req, err := step.Request(results)
		if err != nil {
			return nil, r.fail(p, step, fmt.Errorf("building request: %w", err))
		}

		var dst any
		if step.newDst != nil {
			dst = step.newDst()
		}
		if err := r.client.Do(ctx, req, dst); err != nil {
			if errors.Is(err, api.ErrUnauthenticated) && (p.RequireAuth || step.RequireAuth) {
				to := p.RedirectTo
				if to == "" {
					to = DefaultRedirect
				}
				r.logger.Info("redirecting unauthenticated page",
					zap.String("page", p.Name),
					zap.String("step", step.Name),
					zap.String("to", to))
				return nil, &Redirect{Location: to, Page: p.Name, Step: step.Name, Err: err}
			}
			return nil, r.fail(p, step, err)
		}

		results[step.Name] = dst
		r.logger.Debug("step done",
			zap.String("page", p.Name),
			zap.String("step", step.Name),
			zap.Int("index", i),
			zap.String("path", req.Path))
	}

	r.logger.Debug("page loaded",
		zap.String("page", p.Name),
		zap.Int("steps", len(p.Steps)),
		zap.Duration("elapsed", time.Since(start)))
	return results, nil
}

func (r *Runner) fail(p Page, step Step, err error) *Failure {
	f := newFailure(p.Name, step.Name, err)
	r.logger.Warn("page load failed",
		zap.String("page", p.Name),
		zap.String("step", step.Name),
		zap.Int("status", f.Status),
		zap.Error(err))
	return f
}
