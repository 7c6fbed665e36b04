package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/AI2HU/dbconsole/internal/app"
)

// RunFunc is the body of a command.
type RunFunc func(ctx context.Context, inv *Invocation) error

// Command is a named unit of CLI logic registered with a Dispatcher.
type Command struct {
	Name        string
	Description string
	Usage       string // positional argument synopsis, e.g. "<username>"
	Args        cobra.PositionalArgs
	Flags       func(fs *pflag.FlagSet)
	// Standalone commands run without database and cache connections.
	Standalone bool
	// SkipConfig commands run before any configuration exists. Implies Standalone.
	SkipConfig bool
	Run        RunFunc
}

// Invocation carries everything a running command may touch.
type Invocation struct {
	App     *app.App
	Args    []string
	Flags   *pflag.FlagSet
	Out     io.Writer
	In      io.Reader
	EnvFile string
}

// Printf writes formatted output for the user.
func (inv *Invocation) Printf(format string, a ...any) {
	fmt.Fprintf(inv.Out, format, a...)
}

// Println writes a line of output for the user.
func (inv *Invocation) Println(a ...any) {
	fmt.Fprintln(inv.Out, a...)
}

// ExitError makes the process exit with Code.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// Exit returns an error that makes the dispatcher exit with code.
func Exit(code int, err error) error {
	return &ExitError{Code: code, Err: err}
}

// ExitCode maps a command error onto a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return 1
}
