package tui

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/smileynet/campusconnect/internal/form"
	"github.com/smileynet/campusconnect/internal/record"
)

// ErrInputClosed indicates the input ended before the form was complete.
var ErrInputClosed = errors.New("tui: input closed")

// PlainRunner prompts for each field on its own line. Used when output is
// not a terminal or when the TUI cannot start.
type PlainRunner struct {
	ctrl Controller
	in   *bufio.Reader
	w    io.Writer
}

// NewPlainRunner creates a PlainRunner reading answers from in.
func NewPlainRunner(ctrl Controller, in io.Reader, w io.Writer) *PlainRunner {
	return &PlainRunner{ctrl: ctrl, in: bufio.NewReader(in), w: w}
}

// Run asks for every editable field, re-asking on rejected or empty
// answers, then submits. After a failed submission the user may retry;
// declining returns the submission error.
func (r *PlainRunner) Run(ctx context.Context) error {
	_, _ = fmt.Fprintln(r.w, "Registration Form")
	_, _ = fmt.Fprintln(r.w)

	for _, f := range record.Editable() {
		if err := r.ask(ctx, f); err != nil {
			return err
		}
	}

	r.printInstitution()

	for {
		err := r.submit(ctx)
		if err == nil {
			return nil
		}
		if errors.Is(err, form.ErrSubmitInFlight) {
			return err
		}
		if cerr := ctx.Err(); cerr != nil {
			return cerr
		}
		retry, rerr := r.confirm("Retry? [Y/n]: ")
		if rerr != nil || !retry {
			return err
		}
	}
}

// ask prompts for f until the controller accepts a non-empty answer.
func (r *PlainRunner) ask(ctx context.Context, f record.Field) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		_, _ = fmt.Fprintf(r.w, "%s *: ", f.Label())
		answer, err := r.readLine()
		if err != nil {
			return err
		}
		if answer == "" {
			_, _ = fmt.Fprintf(r.w, "  Please fill in %s.\n", f.Label())
			continue
		}
		if err := r.ctrl.ValidateAndApply(f, answer); err != nil {
			_, _ = fmt.Fprintf(r.w, "  ! %s\n", form.NoticeFor(err).Message)
			continue
		}
		return nil
	}
}

func (r *PlainRunner) submit(ctx context.Context) error {
	rec, err := r.ctrl.Begin()
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(r.w, "Submitting...")
	_, sendErr := r.ctrl.Send(ctx, rec)
	if err := r.ctrl.Finish(sendErr); err != nil {
		return err
	}
	_, _ = fmt.Fprintln(r.w, form.NoticeFor(sendErr).Message)
	return sendErr
}

func (r *PlainRunner) printInstitution() {
	rec := r.ctrl.Record()
	_, _ = fmt.Fprintln(r.w)
	for _, spec := range record.Specs() {
		if spec.Editable {
			continue
		}
		_, _ = fmt.Fprintf(r.w, "%s: %s\n", spec.Label, rec.Get(spec.Field))
	}
	_, _ = fmt.Fprintln(r.w)
}

func (r *PlainRunner) confirm(prompt string) (bool, error) {
	_, _ = fmt.Fprint(r.w, prompt)
	answer, err := r.readLine()
	if err != nil {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "", "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

// readLine returns the next line without its terminator. A final line
// without a newline is returned as-is; EOF with nothing read is ErrInputClosed.
func (r *PlainRunner) readLine() (string, error) {
	line, err := r.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimRight(line, "\r\n"), nil
		}
		if errors.Is(err, io.EOF) {
			return "", ErrInputClosed
		}
		return "", fmt.Errorf("tui: reading input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}
