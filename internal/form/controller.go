// Package form implements the submission controller: it gates every edit
// through the rule registry and drives the submit lifecycle.
package form

import (
	"context"
	"errors"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/smileynet/campusconnect/internal/record"
	"github.com/smileynet/campusconnect/internal/rules"
	"github.com/smileynet/campusconnect/internal/submit"
)

// ErrSubmitInFlight is returned when a submission starts while another is
// still pending.
var ErrSubmitInFlight = errors.New("form: submission already in flight")

// ErrNotSubmitting is returned by Finish when no submission was begun.
var ErrNotSubmitting = errors.New("form: no submission in flight")

// Controller mediates all mutation of a form's record and its submission.
// It is driven from a single event loop and is not safe for concurrent use.
type Controller struct {
	state      *record.FormState
	rules      *rules.Registry
	poster     submit.Poster
	notify     NotifyFunc
	log        logrus.FieldLogger
	submitting bool
}

// Option configures a Controller.
type Option func(*Controller)

// WithRules replaces the default rule registry.
func WithRules(r *rules.Registry) Option {
	return func(c *Controller) { c.rules = r }
}

// WithNotifier sets the callback receiving user-facing notices.
func WithNotifier(fn NotifyFunc) Option {
	return func(c *Controller) { c.notify = fn }
}

// WithLogger sets the controller's logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(c *Controller) { c.log = l }
}

// New creates a Controller whose record starts at the default for inst.
func New(inst record.Institution, poster submit.Poster, opts ...Option) *Controller {
	c := &Controller{
		state:  record.NewFormState(inst),
		poster: poster,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.rules == nil {
		c.rules = rules.Default()
	}
	if c.log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		c.log = l
	}
	return c
}

// Record returns a snapshot of the current record.
func (c *Controller) Record() record.Record {
	return c.state.Get()
}

// Submitting reports whether a submission is in flight.
func (c *Controller) Submitting() bool {
	return c.submitting
}

// ValidateAndApply stores value under f if the field's rule accepts it.
// On rejection it returns a *rules.ValidationError and keeps the prior value.
func (c *Controller) ValidateAndApply(f record.Field, value string) error {
	if err := c.rules.Check(f, value); err != nil {
		c.log.WithField("field", string(f)).Debug("edit rejected")
		c.emit(NoticeFor(err))
		return err
	}
	c.state.Set(f, value)
	return nil
}

// Submit posts the current record and waits for the outcome. On success the
// record is reset to its defaults; on failure it is left as it was.
func (c *Controller) Submit(ctx context.Context) (submit.Success, error) {
	rec, err := c.Begin()
	if err != nil {
		return submit.Success{}, err
	}
	res, err := c.Send(ctx, rec)
	if ferr := c.Finish(err); ferr != nil {
		return submit.Success{}, ferr
	}
	return res, err
}

// Begin moves the controller to the submitting state and returns the record
// snapshot to send. Edits applied afterwards do not affect the snapshot.
func (c *Controller) Begin() (record.Record, error) {
	if c.submitting {
		return nil, ErrSubmitInFlight
	}
	c.submitting = true
	return c.state.Get(), nil
}

// Send posts rec without touching controller state. Safe to call off the
// event loop between Begin and Finish. Cancelling ctx does not abort a
// submission already under way; only the poster's own timeout bounds it.
func (c *Controller) Send(ctx context.Context, rec record.Record) (submit.Success, error) {
	return c.poster.Post(context.WithoutCancel(ctx), rec)
}

// Finish returns the controller to idle with the outcome of Send. A nil err
// resets the record to its defaults.
func (c *Controller) Finish(err error) error {
	if !c.submitting {
		return ErrNotSubmitting
	}
	c.submitting = false
	if err == nil {
		c.state.Reset()
		c.log.Info("record submitted, form reset")
	} else {
		c.log.WithError(err).Warn("submission failed, record retained")
	}
	c.emit(NoticeFor(err))
	return nil
}

func (c *Controller) emit(n Notice) {
	if c.notify != nil {
		c.notify(n)
	}
}
