package dispatch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/anneauger/coco/internal/generator"
	"github.com/anneauger/coco/internal/latex"
	"github.com/anneauger/coco/internal/logging"
	"github.com/anneauger/coco/internal/model"
	"github.com/anneauger/coco/internal/warn"
)

// Call is one scheduled generator invocation.
type Call struct {
	// Kind is the report the call produces.
	Kind model.ReportKind

	// Args is what the generator receives: forwarded options, "-o <dir>",
	// then the targets.
	Args []string

	// Targets are the data folders of the call, also the tail of Args.
	Targets []string
}

// Schedule returns the generator calls for targets, in execution order:
// one single report per target (always with one target, otherwise unless
// omitSingle), then the two- or many-algorithm comparison.
func Schedule(forwarded []string, outputDir string, targets []string, omitSingle bool) []Call {
	var calls []Call

	if len(targets) == 1 || !omitSingle {
		for _, t := range targets {
			calls = append(calls, Call{
				Kind:    model.ReportSingle,
				Args:    buildArgs(forwarded, outputDir, t),
				Targets: []string{t},
			})
		}
	}

	var kind model.ReportKind
	switch {
	case len(targets) == 2:
		kind = model.ReportTwo
	case len(targets) > 2:
		kind = model.ReportMany
	default:
		return calls
	}
	return append(calls, Call{
		Kind:    kind,
		Args:    buildArgs(forwarded, outputDir, targets...),
		Targets: append([]string(nil), targets...),
	})
}

// buildArgs lays out a generator argument list. The output directory is
// always given explicitly, so generators never fall back to their own
// default.
func buildArgs(forwarded []string, outputDir string, targets ...string) []string {
	args := make([]string, 0, len(forwarded)+2+len(targets))
	args = append(args, forwarded...)
	args = append(args, "-o", outputDir)
	return append(args, targets...)
}

// joinInputPath prefixes relative targets with the --input-path folder.
func joinInputPath(inputPath, target string) string {
	if inputPath == "" || filepath.IsAbs(target) {
		return target
	}
	return filepath.Join(inputPath, target)
}

// Dispatcher runs the generators of a plan against the output directory.
type Dispatcher struct {
	// Generators provides the generator for each report kind.
	Generators *generator.Set

	// Stdout receives progress lines and generator output; Stderr receives
	// generator diagnostics through the warning filter.
	Stdout io.Writer
	Stderr io.Writer

	// Now stamps the completion line. Defaults to time.Now.
	Now func() time.Time
}

// Run prepares the output directory, calls the scheduled generators and
// marks the LaTeX command file complete.
//
// The first generator that fails or exits non-zero aborts the run; later
// calls are skipped and whatever was written so far stays in place.
func (d *Dispatcher) Run(ctx context.Context, plan *Plan, positionals []string) error {
	log := logging.FromContext(ctx)
	run := plan.Run
	targets := plan.Targets(positionals)

	if err := d.prepareOutputDir(run); err != nil {
		return err
	}

	stderr := warn.NewFilter(d.stderr(), run.Verbose)
	calls := Schedule(plan.Forwarded, run.OutputDir, targets, plan.OmitSingle)
	log.Debug("generator calls scheduled", "run_id", run.RunID, "count", len(calls))

	for i, call := range calls {
		gen, err := d.Generators.For(call.Kind)
		if err != nil {
			return model.WrapCLIError(model.ExitGeneralError, "cannot build report", err)
		}

		start := time.Now()
		status, err := gen.Generate(ctx, &generator.Invocation{
			Kind:    call.Kind,
			Args:    call.Args,
			Targets: call.Targets,
			Run:     run,
			Stdout:  d.stdout(),
			Stderr:  stderr,
		})
		if flushErr := stderr.Flush(); err == nil && flushErr != nil {
			err = flushErr
		}

		log.Debug("generator finished",
			"run_id", run.RunID,
			"kind", call.Kind,
			"step", i+1,
			"status", status,
			"duration", time.Since(start))

		if err != nil {
			return model.WrapCLIError(model.ExitGeneralError, failure(call), err)
		}
		if status != 0 {
			return model.WrapCLIError(model.ExitGeneralError, failure(call),
				fmt.Errorf("exit status %d", status))
		}
	}

	if n := stderr.Suppressed(); n > 0 {
		log.Debug("repeated warnings suppressed", "count", n)
	}

	if err := latex.MarkComplete(run.OutputDir); err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "failed to finalize output", err)
	}

	fmt.Fprintf(d.stdout(), "  done (%s).\n", d.now().Format(time.ANSIC))
	return nil
}

// prepareOutputDir creates the output directory when missing and resets
// the LaTeX command file.
func (d *Dispatcher) prepareOutputDir(run *model.RunConfig) error {
	dir := run.OutputDir

	_, err := os.Stat(dir)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// #nosec G301 -- report directories are meant to be shared
		if err := os.MkdirAll(dir, 0755); err != nil {
			return model.WrapCLIError(model.ExitGeneralError, "failed to create output directory", err)
		}
		if run.Verbose {
			fmt.Fprintf(d.stdout(), "Folder %s was created.\n", dir)
		}
	case err != nil:
		return model.WrapCLIError(model.ExitGeneralError, "failed to access output directory", err)
	}

	if err := latex.Truncate(dir); err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "failed to prepare output directory", err)
	}
	return nil
}

func failure(call Call) string {
	return fmt.Sprintf("%s report for %s failed", call.Kind, strings.Join(call.Targets, ", "))
}

func (d *Dispatcher) stdout() io.Writer {
	if d.Stdout != nil {
		return d.Stdout
	}
	return os.Stdout
}

func (d *Dispatcher) stderr() io.Writer {
	if d.Stderr != nil {
		return d.Stderr
	}
	return os.Stderr
}

func (d *Dispatcher) now() time.Time {
	if d.Now != nil {
		return d.Now()
	}
	return time.Now()
}
