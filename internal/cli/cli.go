package cli

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/specialistvlad/pagegridgo/internal/app"
	"github.com/specialistvlad/pagegridgo/internal/value"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// ExitError is a custom error type that includes a specific exit code.
type ExitError struct {
	Code    int
	Message string
}

// Error implements the error interface for ExitError.
func (e *ExitError) Error() string {
	return e.Message
}

func usageError(format string, args ...any) *ExitError {
	return &ExitError{Code: 2, Message: fmt.Sprintf(format, args...)}
}

// Command names a subcommand.
type Command string

const (
	CommandDiscover Command = "discover"
	CommandGenerate Command = "generate"
	CommandValidate Command = "validate"
	CommandExec     Command = "exec"
	CommandRender   Command = "render"
	CommandServe    Command = "serve"
	CommandWatch    Command = "watch"
)

// Invocation is a parsed and validated command line.
type Invocation struct {
	Command Command
	Config  *app.Config

	// Primary is the root definition for generate, validate and render.
	Primary string
	// All selects every container for generate.
	All bool
	// Definition selects single-definition validation.
	Definition string

	Action  string
	Content value.Value
}

// flags holds the raw values of the persistent flags.
type flags struct {
	configFile   string
	root         string
	include      []string
	exclude      []string
	matchPolicy  string
	logFormat    string
	logLevel     string
	outputDir    string
	outputFormat string
	port         int
	watch        bool
	debounce     string
}

// Parse processes command-line arguments. It returns a populated Invocation,
// a boolean indicating if the program should exit cleanly, or an ExitError.
func Parse(args []string, output io.Writer) (*Invocation, bool, error) {
	slog.Debug("CLI parser started.")

	var (
		f   flags
		inv *Invocation
		all bool
		def string
	)
	defaults := app.DefaultConfig()

	// capture records the invocation; commands never run the app themselves.
	capture := func(c Command, mutate func(cmd *cobra.Command, args []string, inv *Invocation) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			cfg, err := f.config(cmd.Flags())
			if err != nil {
				return err
			}
			i := &Invocation{Command: c, Config: cfg}
			if mutate != nil {
				if err := mutate(cmd, args, i); err != nil {
					return err
				}
			}
			inv = i
			return nil
		}
	}

	root := &cobra.Command{
		Use:   "pagegridgo",
		Short: "pagegridgo - declarative page configs from definition trees.",
		Long: `pagegridgo discovers UI definitions (HCL, YAML, TOML or JSON), resolves
them into page configs with a render tree, and runs their workflow triggers.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
		},
	}
	root.SetArgs(args)
	root.SetOut(output)
	root.SetErr(output)

	pf := root.PersistentFlags()
	pf.StringVarP(&f.configFile, "config", "c", "", "Path to a .toml or .yaml config file.")
	pf.StringVarP(&f.root, "root", "r", "", "Root directory of the definition tree.")
	pf.StringSliceVar(&f.include, "include", nil, "Glob of definition files to include (repeatable).")
	pf.StringSliceVar(&f.exclude, "exclude", nil, "Glob of files or directories to exclude (repeatable).")
	pf.StringVar(&f.matchPolicy, "match-policy", defaults.MatchPolicy, "Component id matching. Options: 'exact' or 'contains'.")
	pf.StringVar(&f.logFormat, "log-format", defaults.LogFormat, "Log output format. Options: 'text' or 'json'.")
	pf.StringVar(&f.logLevel, "log-level", defaults.LogLevel, "Set the logging level. Options: 'debug', 'info', 'warn', 'error'.")
	pf.StringVarP(&f.outputDir, "output-dir", "o", defaults.OutputDir, "Directory page configs are written to.")
	pf.StringVar(&f.outputFormat, "format", defaults.OutputFormat, "Page config format. Options: 'json' or 'yaml'.")

	discover := &cobra.Command{
		Use:   "discover",
		Short: "List the definitions found under the root",
		Args:  cobra.NoArgs,
		RunE:  capture(CommandDiscover, nil),
	}

	generate := &cobra.Command{
		Use:   "generate <primary> | --all",
		Short: "Generate the page config for a root definition",
		Args:  cobra.MaximumNArgs(1),
		RunE: capture(CommandGenerate, func(_ *cobra.Command, args []string, inv *Invocation) error {
			switch {
			case all && len(args) > 0:
				return usageError("generate takes either a primary eventType or --all, not both")
			case all:
				inv.All = true
			case len(args) == 1:
				inv.Primary = args[0]
			default:
				return usageError("generate needs a primary eventType or --all")
			}
			return nil
		}),
	}
	generate.Flags().BoolVar(&all, "all", false, "Write the page config of every container to the output directory.")

	validate := &cobra.Command{
		Use:   "validate <primary> | --definition <name>",
		Short: "Validate a page config or a single definition",
		Args:  cobra.MaximumNArgs(1),
		RunE: capture(CommandValidate, func(_ *cobra.Command, args []string, inv *Invocation) error {
			switch {
			case def != "" && len(args) > 0:
				return usageError("validate takes either a primary eventType or --definition, not both")
			case def != "":
				inv.Definition = def
			case len(args) == 1:
				inv.Primary = args[0]
			default:
				return usageError("validate needs a primary eventType or --definition")
			}
			return nil
		}),
	}
	validate.Flags().StringVar(&def, "definition", "", "Check one definition against the grid standards.")

	exec := &cobra.Command{
		Use:   "exec <action> [content]",
		Short: "Run one action; content is JSON or a plain string",
		Args:  cobra.RangeArgs(1, 2),
		RunE: capture(CommandExec, func(_ *cobra.Command, args []string, inv *Invocation) error {
			inv.Action = args[0]
			inv.Content = value.Null()
			if len(args) == 2 {
				inv.Content = parseContent(args[1])
			}
			return nil
		}),
	}

	render := &cobra.Command{
		Use:   "render <primary>",
		Short: "Mount and render a page as an element tree",
		Args:  cobra.ExactArgs(1),
		RunE: capture(CommandRender, func(_ *cobra.Command, args []string, inv *Invocation) error {
			inv.Primary = args[0]
			return nil
		}),
	}

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Serve page configs, validation and actions over HTTP",
		Args:  cobra.NoArgs,
		RunE:  capture(CommandServe, nil),
	}
	serve.Flags().IntVarP(&f.port, "port", "p", defaults.Port, "Port for the HTTP server.")
	serve.Flags().BoolVar(&f.watch, "watch", false, "Regenerate page configs when definitions change.")
	serve.Flags().StringVar(&f.debounce, "debounce", defaults.Debounce.String(), "How long to wait for changes to settle.")

	watch := &cobra.Command{
		Use:   "watch",
		Short: "Regenerate every page config when definitions change",
		Args:  cobra.NoArgs,
		RunE:  capture(CommandWatch, nil),
	}
	watch.Flags().StringVar(&f.debounce, "debounce", defaults.Debounce.String(), "How long to wait for changes to settle.")

	root.AddCommand(discover, generate, validate, exec, render, serve, watch)

	if err := root.Execute(); err != nil {
		if exitErr, ok := err.(*ExitError); ok {
			return nil, false, exitErr
		}
		return nil, false, usageError("%s", err.Error())
	}
	if inv == nil {
		// Help was printed.
		return nil, true, nil
	}

	slog.Debug("CLI parser finished successfully.", "command", inv.Command)
	return inv, false, nil
}

// config layers defaults, the config file and explicitly set flags, then
// validates the result.
func (f *flags) config(fs *pflag.FlagSet) (*app.Config, error) {
	cfg := app.DefaultConfig()
	if f.configFile != "" {
		if err := app.LoadConfigFile(f.configFile, &cfg); err != nil {
			return nil, usageError("%s", err.Error())
		}
	}

	set := func(name string, apply func()) {
		if fs.Changed(name) {
			apply()
		}
	}
	set("root", func() { cfg.RootPath = f.root })
	set("include", func() { cfg.Include = f.include })
	set("exclude", func() { cfg.Exclude = f.exclude })
	set("match-policy", func() { cfg.MatchPolicy = f.matchPolicy })
	set("log-format", func() { cfg.LogFormat = f.logFormat })
	set("log-level", func() { cfg.LogLevel = f.logLevel })
	set("output-dir", func() { cfg.OutputDir = f.outputDir })
	set("format", func() { cfg.OutputFormat = f.outputFormat })
	set("port", func() { cfg.Port = f.port })
	set("watch", func() { cfg.Watch = f.watch })

	var err error
	set("debounce", func() {
		var d time.Duration
		if d, err = time.ParseDuration(f.debounce); err == nil {
			cfg.Debounce = d
		}
	})
	if err != nil {
		return nil, usageError("invalid debounce: %s", err.Error())
	}

	validated, err := app.NewConfig(cfg)
	if err != nil {
		return nil, usageError("%s", err.Error())
	}
	return validated, nil
}

// parseContent reads a JSON argument, falling back to a plain string.
func parseContent(arg string) value.Value {
	trimmed := strings.TrimSpace(arg)
	if v, err := value.ParseJSON([]byte(trimmed)); err == nil {
		return v
	}
	return value.String(arg)
}
