// Package cli implements the cobra-based command line of cocopp.
//
// cocopp has a single command. Cobra provides the command plumbing
// (context, output streams, error flow) while flag parsing is disabled: the
// getopt grammar in internal/getopt owns argv, because the same options
// have to reach the report generators verbatim.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/anneauger/coco/internal/logging"
	"github.com/anneauger/coco/internal/model"
)

// Version, Commit and Date are set from the main package at build time.
var (
	// Version is the semantic version of the binary (e.g., "1.0.0").
	Version = "dev"

	// Commit is the Git commit hash the binary was built from.
	Commit = "none"

	// Date is the build timestamp.
	Date = "unknown"
)

// usageHint follows every usage error.
const usageHint = "for help use -h or --help"

// environment holds what a run reads from the process. Tests substitute
// their own.
type environment struct {
	// stdout receives progress lines, notices and generator output.
	stdout io.Writer
	// stderr receives the console log and generator diagnostics.
	stderr io.Writer
	// getenv reads COCOPP_CONFIG.
	getenv func(string) string
	// getwd anchors the configuration file search.
	getwd func() (string, error)
}

// processEnvironment is the environment of the running process.
func processEnvironment() *environment {
	return &environment{
		stdout: os.Stdout,
		stderr: os.Stderr,
		getenv: os.Getenv,
		getwd:  os.Getwd,
	}
}

// NewRootCommand creates the cocopp command.
func NewRootCommand() *cobra.Command {
	return newRootCommand(processEnvironment())
}

func newRootCommand(env *environment) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "cocopp [options] DATAFOLDER [DATAFOLDER...]",
		Short: "Post-process COCO benchmark data",
		Long: `cocopp builds the post-processing reports for one or more folders of
COCO benchmark data, each holding the data of one algorithm.

With one folder the single-algorithm report is generated. With two folders
the single reports are followed by a two-algorithm comparison, with more
than two by a many-algorithm comparison.`,

		// Options are parsed by the getopt grammar, not by cobra.
		DisableFlagParsing: true,
		Args:               cobra.ArbitraryArgs,

		// Every positional is a data folder; no name is reserved.
		CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},

		// Errors and usage are printed by Execute.
		SilenceUsage:  true,
		SilenceErrors: true,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runPostProcessing(cmd.Context(), env, args)
		},
	}

	rootCmd.SetOut(env.stdout)
	rootCmd.SetErr(env.stderr)
	return rootCmd
}

// Execute runs the root command on the process arguments and exits with
// the code carried by the returned error.
func Execute(rootCmd *cobra.Command) {
	if err := execute(context.Background(), rootCmd, os.Args[1:]); err != nil {
		os.Exit(int(reportError(rootCmd.ErrOrStderr(), err)))
	}
}

// execute hands args to the root command without cobra's command lookup.
// cobra resolves its hidden __complete command before any RunE, which
// would swallow a data folder of that name.
func execute(ctx context.Context, rootCmd *cobra.Command, args []string) error {
	rootCmd.SetContext(ctx)
	return rootCmd.RunE(rootCmd, args)
}

// reportError prints err and returns the exit code for it. CLIError
// values carry their own code; other errors map to ExitGeneralError.
func reportError(w io.Writer, err error) model.ExitCode {
	var cliErr *model.CLIError
	if !errors.As(err, &cliErr) {
		fmt.Fprintf(w, "Error: %s\n", err)
		return model.ExitGeneralError
	}

	if cliErr.IsUsage() {
		// getopt wording, then the hint; no "Error:" prefix.
		fmt.Fprintln(w, cliErr.Error())
		fmt.Fprintln(w, usageHint)
		return cliErr.Code
	}

	if cliErr.Err != nil {
		fmt.Fprintf(w, "Error: %s: %v\n", cliErr.Message, cliErr.Err)
	} else {
		fmt.Fprintf(w, "Error: %s\n", cliErr.Message)
	}
	return cliErr.Code
}

// VerboseLog logs a debug line through the context logger. The console
// handler shows it only when the run is verbose.
func VerboseLog(ctx context.Context, format string, args ...interface{}) {
	logging.FromContext(ctx).Debug("[verbose] " + fmt.Sprintf(format, args...))
}
