package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/alecthomas/kong"
	"gopkg.in/yaml.v3"

	campusconnect "github.com/smileynet/campusconnect"
	"github.com/smileynet/campusconnect/internal/config"
	"github.com/smileynet/campusconnect/internal/form"
	"github.com/smileynet/campusconnect/internal/logging"
	"github.com/smileynet/campusconnect/internal/record"
	"github.com/smileynet/campusconnect/internal/rules"
	"github.com/smileynet/campusconnect/internal/submit"
	"github.com/smileynet/campusconnect/internal/tui"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// CLI is the top-level command structure for campusconnect.
type CLI struct {
	Version kong.VersionFlag `help:"Show version." short:"V"`
	Fill    FillCmd          `cmd:"" help:"Fill in the registration form interactively."`
	Submit  SubmitCmd        `cmd:"" help:"Submit a registration without prompting."`
	Fields  FieldsCmd        `cmd:"" help:"List the form fields and their rules."`
	Init    InitCmd          `cmd:"" help:"Write the default config file."`
}

// FillCmd runs the interactive form.
type FillCmd struct {
	NoTUI bool `help:"Force plain line prompts even if stdout is a TTY." default:"false"`
}

// SubmitCmd submits a record assembled from a YAML file and --set flags.
type SubmitCmd struct {
	File string            `help:"YAML file mapping field names to values." type:"existingfile" short:"f"`
	Set  map[string]string `help:"Field value as field=value. Repeatable; overrides --file." short:"s"`
}

// FieldsCmd lists the form's fields.
type FieldsCmd struct {
	Names []string `arg:"" optional:"" help:"Only list these fields."`
}

// InitCmd writes the default config template.
type InitCmd struct {
	Dir   string `help:"Directory to write config.yaml into." default:".campusconnect"`
	Force bool   `help:"Overwrite an existing config file." default:"false"`
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadLayered(
		os.ExpandEnv("$HOME/.config/campusconnect/config.yaml"),
		".campusconnect/config.yaml",
	)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newController wires the logger, HTTP client and form controller from cfg.
// The caller closes the returned logger.
func newController(cfg *config.Config) (*form.Controller, *logging.Logger, error) {
	log, err := logging.New(cfg.Log.Path, cfg.Log.Level)
	if err != nil {
		return nil, nil, err
	}
	client := submit.NewClient(cfg.Endpoint.URL,
		submit.WithTimeout(cfg.Endpoint.Timeout),
		submit.WithLogger(log),
	)
	log.WithField("endpoint", client.Endpoint()).Debug("submission client ready")
	ctrl := form.New(cfg.Institution, client, form.WithLogger(log))
	return ctrl, log, nil
}

// Run executes the fill command.
func (c *FillCmd) Run() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("fill: %w", err)
	}
	ctrl, log, err := newController(cfg)
	if err != nil {
		return fmt.Errorf("fill: %w", err)
	}
	defer log.Close() //nolint:errcheck // best-effort close on exit

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	runner := tui.NewRunner(ctrl, tui.RunnerOptions{ForcePlain: c.NoTUI})
	return runner.Run(ctx)
}

// recordSubmitter abstracts form.Controller for the submit command.
type recordSubmitter interface {
	ValidateAndApply(f record.Field, value string) error
	Record() record.Record
	Submit(ctx context.Context) (submit.Success, error)
}

// Run executes the submit command.
func (c *SubmitCmd) Run() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	ctrl, log, err := newController(cfg)
	if err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	defer log.Close() //nolint:errcheck // best-effort close on exit

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	return c.run(ctx, os.Stdout, ctrl)
}

func (c *SubmitCmd) run(ctx context.Context, w io.Writer, ctrl recordSubmitter) error {
	values, err := c.values()
	if err != nil {
		return err
	}

	for _, spec := range record.Specs() {
		v, ok := values[spec.Field]
		if !ok {
			continue
		}
		if err := ctrl.ValidateAndApply(spec.Field, v); err != nil {
			return fmt.Errorf("submit: %w", err)
		}
	}

	if missing := form.Missing(ctrl.Record()); len(missing) > 0 {
		names := make([]string, len(missing))
		for i, f := range missing {
			names[i] = string(f)
		}
		return fmt.Errorf("submit: missing required fields: %s", strings.Join(names, ", "))
	}

	res, err := ctrl.Submit(ctx)
	_, _ = fmt.Fprintln(w, form.NoticeFor(err).Message)
	if err != nil {
		return err
	}
	if body := strings.TrimSpace(string(res.Body)); body != "" {
		_, _ = fmt.Fprintln(w, body)
	}
	return nil
}

// values merges the --file record with --set overrides.
func (c *SubmitCmd) values() (record.Record, error) {
	values := record.Record{}
	if c.File != "" {
		data, err := os.ReadFile(c.File)
		if err != nil {
			return nil, fmt.Errorf("submit: reading %s: %w", c.File, err)
		}
		var raw map[string]string
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("submit: parsing %s: %w", c.File, err)
		}
		fromFile, err := record.FromMap(raw)
		if err != nil {
			return nil, fmt.Errorf("submit: %s: %w", c.File, err)
		}
		for f, v := range fromFile {
			values[f] = v
		}
	}
	fromFlags, err := record.FromMap(c.Set)
	if err != nil {
		return nil, fmt.Errorf("submit: --set: %w", err)
	}
	for f, v := range fromFlags {
		values[f] = v
	}
	return values, nil
}

// Run executes the fields command.
func (c *FieldsCmd) Run() error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("fields: %w", err)
	}
	return c.run(os.Stdout, cfg.Institution, rules.Default())
}

func (c *FieldsCmd) run(w io.Writer, inst record.Institution, reg *rules.Registry) error {
	specs, err := c.specs()
	if err != nil {
		return err
	}

	defaults := record.Default(inst)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, "FIELD\tLABEL\tKIND\tRULE")
	for _, spec := range specs {
		rule := "-"
		if !spec.Editable {
			rule = "fixed: " + defaults.Get(spec.Field)
		} else if r, ok := reg.Rule(spec.Field); ok {
			rule = r.Description
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", spec.Field, spec.Label, spec.Kind, rule)
	}
	return tw.Flush()
}

// specs resolves the requested names, or every field when none are given.
func (c *FieldsCmd) specs() ([]record.Spec, error) {
	if len(c.Names) == 0 {
		return record.Specs(), nil
	}
	out := make([]record.Spec, 0, len(c.Names))
	var unknown []string
	for _, name := range c.Names {
		spec, ok := record.Lookup(record.Field(name))
		if !ok {
			unknown = append(unknown, name)
			continue
		}
		out = append(out, spec)
	}
	if len(unknown) > 0 {
		return nil, fmt.Errorf("fields: %w: %s", record.ErrUnknownField, strings.Join(unknown, ", "))
	}
	return out, nil
}

// Run executes the init command.
func (c *InitCmd) Run() error {
	src := campusconnect.OverlayFS(
		os.ExpandEnv("$HOME/.config/campusconnect/templates"),
		campusconnect.Templates,
	)
	return c.run(os.Stdout, src)
}

func (c *InitCmd) run(w io.Writer, src fs.FS) error {
	data, err := fs.ReadFile(src, campusconnect.ConfigTemplate)
	if err != nil {
		return fmt.Errorf("init: reading template: %w", err)
	}

	dst := filepath.Join(c.Dir, "config.yaml")
	if _, err := os.Stat(dst); err == nil && !c.Force {
		return fmt.Errorf("init: %s already exists (use --force to overwrite)", dst)
	}
	if err := os.MkdirAll(c.Dir, 0o755); err != nil {
		return fmt.Errorf("init: %w", err)
	}
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return fmt.Errorf("init: %w", err)
	}
	_, _ = fmt.Fprintf(w, "Wrote %s\n", dst)
	return nil
}

// Exit codes.
const (
	exitSuccess = 0
	exitSubmit  = 1
	exitSetup   = 2
)

// exitCode maps an error to the appropriate exit code.
func exitCode(err error) int {
	if err == nil {
		return exitSuccess
	}
	var se *submit.Error
	if errors.As(err, &se) {
		return exitSubmit
	}
	return exitSetup
}

// knownFields lists accepted field names for help text.
func knownFields() string {
	names := make([]string, 0, len(record.Specs()))
	for _, spec := range record.Specs() {
		if spec.Editable {
			names = append(names, string(spec.Field))
		}
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

func main() {
	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Description("Fill in and submit the CampusConnect registration form.\n\nEditable fields: "+knownFields()),
		kong.Vars{"version": version + " " + commit + " " + date},
	)
	err := ctx.Run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %s\n", err)
		os.Exit(exitCode(err))
	}
}
