// Package tui renders the registration form in the terminal. It holds no
// validation or submission logic: every edit and submit goes through a
// Controller.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/smileynet/campusconnect/internal/form"
	"github.com/smileynet/campusconnect/internal/record"
	"github.com/smileynet/campusconnect/internal/submit"
)

// Controller is the form contract the renderers consume.
// *form.Controller satisfies it.
type Controller interface {
	Record() record.Record
	ValidateAndApply(f record.Field, value string) error
	Begin() (record.Record, error)
	Send(ctx context.Context, rec record.Record) (submit.Success, error)
	Finish(err error) error
	Submitting() bool
}

// Verify *form.Controller satisfies Controller at compile time.
var _ Controller = (*form.Controller)(nil)

// SubmitResultMsg carries the outcome of a submission back to the event loop.
type SubmitResultMsg struct {
	Result submit.Success
	Err    error
}

// Model is the Bubble Tea model for the registration form.
type Model struct {
	ctrl    Controller
	ctx     context.Context
	fields  []record.Spec
	inputs  []textinput.Model
	focus   int
	spinner spinner.Model
	help    help.Model
	keys    formKeys
	notice  *form.Notice
	width   int
}

// ModelOption configures a Model.
type ModelOption func(*Model)

// WithContext sets the context submissions run under.
func WithContext(ctx context.Context) ModelOption {
	return func(m *Model) { m.ctx = ctx }
}

// NewModel creates a form Model over ctrl with the first field focused.
func NewModel(ctrl Controller, opts ...ModelOption) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot

	m := Model{
		ctrl:    ctrl,
		ctx:     context.Background(),
		spinner: s,
		help:    help.New(),
		keys:    FormKeyMap(),
	}
	for _, opt := range opts {
		opt(&m)
	}

	rec := ctrl.Record()
	for _, spec := range record.Specs() {
		if !spec.Editable {
			continue
		}
		in := textinput.New()
		in.Prompt = ""
		in.Placeholder = "Enter " + strings.ToLower(spec.Label)
		if spec.Kind == record.KindDate {
			in.Placeholder = "YYYY-MM-DD"
		}
		in.SetValue(rec.Get(spec.Field))
		m.fields = append(m.fields, spec)
		m.inputs = append(m.inputs, in)
	}
	if len(m.inputs) > 0 {
		m.inputs[0].Focus()
	}
	return m
}

// Init starts the cursor blink.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles incoming messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case SubmitResultMsg:
		return m.finishSubmit(msg)

	case spinner.TickMsg:
		if !m.ctrl.Submitting() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

// handleKey routes navigation and submit keys, and passes everything else
// to the focused input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Submit):
		return m.startSubmit()
	case key.Matches(msg, m.keys.Next):
		return m.moveFocus(1), nil
	case key.Matches(msg, m.keys.Prev):
		return m.moveFocus(-1), nil
	case key.Matches(msg, m.keys.Enter):
		if m.focus == len(m.inputs)-1 {
			return m.startSubmit()
		}
		return m.moveFocus(1), nil
	}
	return m.edit(msg)
}

// edit applies a keystroke to the focused input. The text stays in the
// input until commit hands it to the controller.
func (m Model) edit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if len(m.inputs) == 0 {
		return m, nil
	}
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

// commit routes the focused input's text through the controller and reports
// whether it was accepted. A rejected value is reverted to the stored one
// and the reason shown.
func (m *Model) commit() bool {
	if len(m.inputs) == 0 {
		return true
	}
	field := m.fields[m.focus].Field
	value := m.inputs[m.focus].Value()
	stored := m.ctrl.Record().Get(field)
	if value == stored {
		return true
	}

	if err := m.ctrl.ValidateAndApply(field, value); err != nil {
		m.inputs[m.focus].SetValue(stored)
		m.inputs[m.focus].CursorEnd()
		n := form.NoticeFor(err)
		m.notice = &n
		return false
	}
	if m.notice != nil && m.notice.Kind == form.NoticeRejected && m.notice.Field == field {
		m.notice = nil
	}
	return true
}

// moveFocus commits the focused field and shifts focus by delta, wrapping at
// either end. Focus stays put when the value is rejected.
func (m Model) moveFocus(delta int) Model {
	if len(m.inputs) == 0 {
		return m
	}
	if !m.commit() {
		return m
	}
	m.inputs[m.focus].Blur()
	m.focus = (m.focus + delta + len(m.inputs)) % len(m.inputs)
	m.inputs[m.focus].Focus()
	return m
}

// startSubmit commits the focused field and checks required fields, then
// hands the snapshot to a command so the event loop stays free while the
// request is pending.
func (m Model) startSubmit() (tea.Model, tea.Cmd) {
	if !m.commit() {
		return m, nil
	}
	if missing := form.Missing(m.ctrl.Record()); len(missing) > 0 {
		m.notice = &form.Notice{
			Kind:    form.NoticeRejected,
			Field:   missing[0],
			Message: fmt.Sprintf("Please fill in %s.", missing[0].Label()),
		}
		return m.focusField(missing[0]), nil
	}

	rec, err := m.ctrl.Begin()
	if err != nil {
		m.notice = &form.Notice{Kind: form.NoticeSubmitFailed, Message: "A submission is already in progress."}
		return m, nil
	}
	m.notice = nil

	ctrl, ctx := m.ctrl, m.ctx
	send := func() tea.Msg {
		res, err := ctrl.Send(ctx, rec)
		return SubmitResultMsg{Result: res, Err: err}
	}
	return m, tea.Batch(send, m.spinner.Tick)
}

// finishSubmit settles the controller and, on success, reloads the inputs
// from the freshly reset record.
func (m Model) finishSubmit(msg SubmitResultMsg) (tea.Model, tea.Cmd) {
	if err := m.ctrl.Finish(msg.Err); err != nil {
		return m, nil
	}
	n := form.NoticeFor(msg.Err)
	m.notice = &n
	if msg.Err == nil {
		m.reload()
		m = m.focusField(m.fields[0].Field)
	}
	return m, nil
}

func (m *Model) reload() {
	rec := m.ctrl.Record()
	for i, spec := range m.fields {
		m.inputs[i].SetValue(rec.Get(spec.Field))
	}
}

func (m Model) focusField(f record.Field) Model {
	for i, spec := range m.fields {
		if spec.Field == f {
			m.inputs[m.focus].Blur()
			m.focus = i
			m.inputs[i].Focus()
			break
		}
	}
	return m
}

// View renders the form, the fixed institution block, and the status line.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Registration Form"))
	b.WriteString("\n\n")

	for i, spec := range m.fields {
		label := labelStyle.Render(spec.Label) + requiredStyle.Render(" *")
		if i == m.focus {
			label = focusedLabelStyle.Render(spec.Label) + requiredStyle.Render(" *")
		}
		b.WriteString(label + "\n")
		b.WriteString(inputBorder(i == m.focus).Render(m.inputs[i].View()))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.institutionView())
	b.WriteString("\n")

	if status := m.statusLine(); status != "" {
		b.WriteString(status + "\n")
	}
	b.WriteString(m.help.View(m.keys))
	return b.String()
}

func (m Model) institutionView() string {
	rec := m.ctrl.Record()
	var lines []string
	for _, spec := range record.Specs() {
		if spec.Editable {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s: %s", spec.Label, rec.Get(spec.Field)))
	}
	return institutionStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (m Model) statusLine() string {
	if m.ctrl.Submitting() {
		return fmt.Sprintf("%s Submitting...", m.spinner.View())
	}
	if m.notice == nil {
		return ""
	}
	return noticeStyle(m.notice.Kind).Render(m.notice.Message)
}
