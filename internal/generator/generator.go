package generator

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/anneauger/coco/internal/model"
)

// Invocation is one call of a report generator.
type Invocation struct {
	// Kind selects the generator.
	Kind model.ReportKind

	// Args is the flat token list handed to the generator: the forwarded
	// options, then "-o <dir>", then the targets.
	Args []string

	// Targets are the algorithm directories contained at the end of Args.
	// Transports use them to decide what must be reachable, e.g. mounts.
	Targets []string

	// Run is the shared run configuration. Read-only.
	Run *model.RunConfig

	// Stdout and Stderr receive the generator's output. Nil means the
	// process's own streams.
	Stdout io.Writer
	Stderr io.Writer
}

func (inv *Invocation) stdout() io.Writer {
	if inv.Stdout != nil {
		return inv.Stdout
	}
	return os.Stdout
}

func (inv *Invocation) stderr() io.Writer {
	if inv.Stderr != nil {
		return inv.Stderr
	}
	return os.Stderr
}

// Generator builds one report. It returns the generator's exit status; a
// non-nil error means the generator could not be run at all.
type Generator interface {
	Generate(ctx context.Context, inv *Invocation) (int, error)
}

// Func adapts an ordinary function to the Generator interface.
type Func func(ctx context.Context, inv *Invocation) (int, error)

// Generate calls f(ctx, inv).
func (f Func) Generate(ctx context.Context, inv *Invocation) (int, error) {
	return f(ctx, inv)
}

// Set holds one generator per report kind.
type Set struct {
	// Single builds the report for one algorithm.
	Single Generator
	// Two compares exactly two algorithms.
	Two Generator
	// Many compares three or more algorithms.
	Many Generator

	// closers are released by Close, in order.
	closers []io.Closer
}

// For returns the generator registered for kind.
func (s *Set) For(kind model.ReportKind) (Generator, error) {
	var g Generator
	switch kind {
	case model.ReportSingle:
		g = s.Single
	case model.ReportTwo:
		g = s.Two
	case model.ReportMany:
		g = s.Many
	default:
		return nil, fmt.Errorf("unknown report kind %q", kind)
	}
	if g == nil {
		return nil, fmt.Errorf("no %s generator configured", kind)
	}
	return g, nil
}

// Close releases transport resources such as the Docker client.
func (s *Set) Close() error {
	var first error
	for _, c := range s.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	s.closers = nil
	return first
}
