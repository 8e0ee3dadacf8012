package tui

import (
	"context"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
)

// Runner drives one interactive form session.
type Runner interface {
	Run(ctx context.Context) error
}

// RunnerOptions configures runner creation.
type RunnerOptions struct {
	In         io.Reader // Input source (default: os.Stdin).
	Out        io.Writer // Output destination (default: os.Stdout).
	ForcePlain bool      // Force line prompts even if TTY.
}

// NewRunner returns a TUI runner when the output is a TTY, or a plain
// line-prompt runner otherwise. ForcePlain overrides TTY detection.
func NewRunner(ctrl Controller, opts RunnerOptions) Runner {
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}

	if opts.ForcePlain || !isTTY(opts.Out) {
		return NewPlainRunner(ctrl, opts.In, opts.Out)
	}
	return &TUIRunner{ctrl: ctrl, in: opts.In, out: opts.Out}
}

// isTTY reports whether w is connected to a terminal.
func isTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// TUIRunner runs the form as a Bubble Tea program.
// Falls back to PlainRunner if the program fails to start.
type TUIRunner struct {
	ctrl Controller
	in   io.Reader
	out  io.Writer
}

// Run blocks until the user quits the form.
func (r *TUIRunner) Run(ctx context.Context) error {
	model := NewModel(r.ctrl, WithContext(ctx))
	p := tea.NewProgram(model,
		tea.WithContext(ctx),
		tea.WithInput(r.in),
		tea.WithOutput(r.out),
	)

	if _, err := p.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		// The controller may be mid-submission if the program died. Finish
		// only fails with ErrNotSubmitting, which Submitting rules out.
		if r.ctrl.Submitting() {
			_ = r.ctrl.Finish(err)
		}
		return NewPlainRunner(r.ctrl, r.in, r.out).Run(ctx)
	}
	return nil
}
