// Package submit posts registration records to the remote endpoint and
// classifies the outcome.
package submit

import (
	"context"
	"fmt"

	"github.com/smileynet/campusconnect/internal/record"
)

// Kind classifies a failed submission.
type Kind string

const (
	// ServerRejected means the endpoint answered with a non-2xx status.
	ServerRejected Kind = "server_rejected"
	// NetworkFailure means no usable response arrived.
	NetworkFailure Kind = "network_failure"
)

// DefaultRejectMessage is used when a rejection carries no message.
const DefaultRejectMessage = "Bad Request"

// Success is the outcome of an accepted submission.
type Success struct {
	RequestID string
	Status    int
	Body      []byte
}

// Poster is the minimal interface the form controller needs to submit a record.
type Poster interface {
	Post(ctx context.Context, rec record.Record) (Success, error)
}

// Verify MockPoster satisfies Poster at compile time.
var _ Poster = (*MockPoster)(nil)

// MockPoster is a test double for Poster.
type MockPoster struct {
	PostFunc func(ctx context.Context, rec record.Record) (Success, error)
	Calls    []record.Record
}

// Post records the call and delegates to PostFunc, returning a zero Success
// if PostFunc is nil.
func (m *MockPoster) Post(ctx context.Context, rec record.Record) (Success, error) {
	m.Calls = append(m.Calls, rec.Clone())
	if m.PostFunc == nil {
		return Success{}, nil
	}
	return m.PostFunc(ctx, rec)
}

// Error reports a failed submission.
type Error struct {
	Kind      Kind
	RequestID string
	Status    int    // HTTP status for ServerRejected, 0 otherwise.
	Message   string // Server message for ServerRejected.
	Err       error  // Transport error for NetworkFailure.
}

func (e *Error) Error() string {
	switch e.Kind {
	case ServerRejected:
		return fmt.Sprintf("submit: rejected (%d): %s", e.Status, e.Message)
	default:
		if e.Err != nil {
			return fmt.Sprintf("submit: network failure: %s", e.Err)
		}
		return "submit: network failure"
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}
