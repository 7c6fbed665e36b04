package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/AI2HU/dbconsole/internal/app"
	"github.com/AI2HU/dbconsole/internal/config"
	"github.com/AI2HU/dbconsole/internal/logger"
)

// Dispatcher resolves the first CLI argument to a registered command and
// runs it with the application's connections.
type Dispatcher struct {
	app      *app.App
	root     *cobra.Command
	commands map[string]Command

	envFile  string
	logLevel string
	in       io.Reader
	errOut   io.Writer
}

// NewDispatcher builds the root command around a.
func NewDispatcher(a *app.App) *Dispatcher {
	d := &Dispatcher{
		app:      a,
		commands: map[string]Command{},
		in:       os.Stdin,
		errOut:   os.Stderr,
	}

	d.root = &cobra.Command{
		Use:   "dbconsole",
		Short: "Console commands over a relational database and a key-value cache",
		Long: `dbconsole runs named commands that share one database connection and
one cache connection, both configured from an env file.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: d.preRun,
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return d.app.Close()
		},
	}

	d.root.PersistentFlags().StringVar(&d.envFile, "env", config.DefaultEnvFile, "env file with connection settings")
	d.root.PersistentFlags().StringVar(&d.logLevel, "log-level", "", "log level (debug, info, warning, error); overrides LOG_LEVEL")

	// Disable completion command
	d.root.CompletionOptions.DisableDefaultCmd = true

	return d
}

// SetIO replaces the streams used by commands.
func (d *Dispatcher) SetIO(in io.Reader, out, errOut io.Writer) {
	d.in = in
	d.app.Out = out
	d.errOut = errOut
}

// Register adds commands. Names must be unique and non-empty.
func (d *Dispatcher) Register(cmds ...Command) error {
	for _, c := range cmds {
		if c.Name == "" {
			return fmt.Errorf("command name is required")
		}
		if c.Run == nil {
			return fmt.Errorf("command %s has no Run function", c.Name)
		}
		if _, exists := d.commands[c.Name]; exists {
			return fmt.Errorf("command %s already registered", c.Name)
		}
		if c.SkipConfig {
			c.Standalone = true
		}

		d.commands[c.Name] = c
		d.root.AddCommand(d.cobraCommand(c))
	}
	return nil
}

// Lookup returns the command registered under name.
func (d *Dispatcher) Lookup(name string) (Command, bool) {
	c, ok := d.commands[name]
	return c, ok
}

// Commands returns the registered commands sorted by name.
func (d *Dispatcher) Commands() []Command {
	out := make([]Command, 0, len(d.commands))
	for _, c := range d.commands {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (d *Dispatcher) cobraCommand(c Command) *cobra.Command {
	use := c.Name
	if c.Usage != "" {
		use += " " + c.Usage
	}

	cmd := &cobra.Command{
		Use:   use,
		Short: c.Description,
		Args:  c.Args,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.Run(cmd.Context(), &Invocation{
				App:     d.app,
				Args:    args,
				Flags:   cmd.Flags(),
				Out:     d.app.Out,
				In:      d.in,
				EnvFile: d.envFile,
			})
		},
	}
	if c.Flags != nil {
		c.Flags(cmd.Flags())
	}
	return cmd
}

func (d *Dispatcher) preRun(cmd *cobra.Command, args []string) error {
	logger.Init(logger.ParseLogLevel(d.logLevel), d.errOut)

	c, ok := d.commands[cmd.Name()]
	if !ok || c.SkipConfig {
		return nil
	}

	required := cmd.Flags().Changed("env")
	if err := d.app.LoadConfig(d.envFile, required); err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if d.logLevel == "" {
		logger.SetLevel(logger.ParseLogLevel(d.app.Config.LogLevel))
	}

	if c.Standalone {
		return nil
	}
	return d.app.Connect(cmd.Context())
}

// Run executes the command named by args[0] and returns the exit code.
func (d *Dispatcher) Run(ctx context.Context, args []string) int {
	d.root.SetArgs(args)
	d.root.SetIn(d.in)
	d.root.SetOut(d.app.Out)
	d.root.SetErr(d.errOut)

	err := d.root.ExecuteContext(ctx)

	// PersistentPostRunE is skipped when the command fails.
	if closeErr := d.app.Close(); closeErr != nil {
		logger.Warning("%v", closeErr)
	}

	var exitErr *ExitError
	if err != nil && !(errors.As(err, &exitErr) && exitErr.Err == nil) {
		fmt.Fprintln(d.errOut, FormatError("Error: "+err.Error()))
	}
	return ExitCode(err)
}
