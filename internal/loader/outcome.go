package loader

import (
	"errors"
	"fmt"

	"github.com/fragmede/panelist/internal/api"
)

// State is the outcome of a page load.
type State int

const (
	// StatePending is the zero State, held by a load whose Run has not
	// returned yet. StateOf never reports it.
	StatePending State = iota
	StateSuccess
	StateFailure
	StateRedirect
)

func (s State) String() string {
	switch s {
	case StateSuccess:
		return "success"
	case StateFailure:
		return "failure"
	case StateRedirect:
		return "redirect"
	default:
		return "pending"
	}
}

// StateOf classifies the error returned by Runner.Run.
func StateOf(err error) State {
	var rd *Redirect
	switch {
	case err == nil:
		return StateSuccess
	case errors.As(err, &rd):
		return StateRedirect
	default:
		return StateFailure
	}
}

// Redirect tells the caller to navigate to Location instead of showing the
// page or an error.
type Redirect struct {
	Location string
	Page     string
	Step     string
	Err      error
}

func (r *Redirect) Error() string {
	return fmt.Sprintf("%s: redirect to %s", r.Page, r.Location)
}

func (r *Redirect) Unwrap() error { return r.Err }

// Failure is a page load that stopped at Step. Status is the HTTP status, or
// 0 when the server was never reached or the response could not be decoded.
type Failure struct {
	Page    string
	Step    string
	Status  int
	Message string
	Err     error
}

func newFailure(page, step string, err error) *Failure {
	f := &Failure{Page: page, Step: step, Err: err, Message: err.Error()}
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		f.Status = apiErr.Status
		f.Message = apiErr.Message
	}
	return f
}

func (f *Failure) Error() string {
	if f.Status != 0 {
		return fmt.Sprintf("%s: %s: HTTP %d: %s", f.Page, f.Step, f.Status, f.Message)
	}
	return fmt.Sprintf("%s: %s: %v", f.Page, f.Step, f.Err)
}

func (f *Failure) Unwrap() error { return f.Err }
