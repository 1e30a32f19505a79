package dispatch

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anneauger/coco/internal/generator"
	"github.com/anneauger/coco/internal/latex"
	"github.com/anneauger/coco/internal/model"
)

func TestSchedule(t *testing.T) {
	fwd := []string{"-v"}

	single := func(target string) Call {
		return Call{Kind: model.ReportSingle, Args: []string{"-v", "-o", "out", target}, Targets: []string{target}}
	}

	tests := []struct {
		name       string
		targets    []string
		omitSingle bool
		want       []Call
	}{
		{
			name:    "no targets",
			targets: nil,
			want:    nil,
		},
		{
			name:    "one target",
			targets: []string{"A"},
			want:    []Call{single("A")},
		},
		{
			name:       "one target ignores omit-single",
			targets:    []string{"A"},
			omitSingle: true,
			want:       []Call{single("A")},
		},
		{
			name:    "two targets",
			targets: []string{"A", "B"},
			want: []Call{
				single("A"),
				single("B"),
				{Kind: model.ReportTwo, Args: []string{"-v", "-o", "out", "A", "B"}, Targets: []string{"A", "B"}},
			},
		},
		{
			name:       "two targets with omit-single",
			targets:    []string{"A", "B"},
			omitSingle: true,
			want: []Call{
				{Kind: model.ReportTwo, Args: []string{"-v", "-o", "out", "A", "B"}, Targets: []string{"A", "B"}},
			},
		},
		{
			name:    "three targets",
			targets: []string{"A", "B", "C"},
			want: []Call{
				single("A"),
				single("B"),
				single("C"),
				{Kind: model.ReportMany, Args: []string{"-v", "-o", "out", "A", "B", "C"}, Targets: []string{"A", "B", "C"}},
			},
		},
		{
			name:       "three targets with omit-single",
			targets:    []string{"A", "B", "C"},
			omitSingle: true,
			want: []Call{
				{Kind: model.ReportMany, Args: []string{"-v", "-o", "out", "A", "B", "C"}, Targets: []string{"A", "B", "C"}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Schedule(fwd, "out", tt.targets, tt.omitSingle)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("calls mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

// recorder is a generator set that records every call.
type recorder struct {
	calls []Call
	runs  []*model.RunConfig

	// failAt makes the n-th call (1-based) return status 1.
	failAt int
	err    error
}

func (r *recorder) set() *generator.Set {
	g := generator.Func(func(_ context.Context, inv *generator.Invocation) (int, error) {
		r.calls = append(r.calls, Call{Kind: inv.Kind, Args: inv.Args, Targets: inv.Targets})
		r.runs = append(r.runs, inv.Run)
		_, _ = io.WriteString(inv.Stderr, "gen.py:10: UserWarning: few data\n  warnings.warn('few data')\n")
		if len(r.calls) == r.failAt {
			return 1, r.err
		}
		return 0, nil
	})
	return &generator.Set{Single: g, Two: g, Many: g}
}

func fixedNow() time.Time {
	return time.Date(2024, time.March, 5, 14, 3, 9, 0, time.UTC)
}

func TestDispatcherRun(t *testing.T) {
	outDir := filepath.Join(t.TempDir(), "ppdata")
	rec := &recorder{}
	var stdout, stderr bytes.Buffer

	d := &Dispatcher{Generators: rec.set(), Stdout: &stdout, Stderr: &stderr, Now: fixedNow}
	plan := &Plan{
		Forwarded: []string{"-v"},
		Run:       &model.RunConfig{RunID: "r1", OutputDir: outDir, Verbose: true},
	}

	err := d.Run(context.Background(), plan, []string{"A", "B"})
	require.NoError(t, err)

	want := []Call{
		{Kind: model.ReportSingle, Args: []string{"-v", "-o", outDir, "A"}, Targets: []string{"A"}},
		{Kind: model.ReportSingle, Args: []string{"-v", "-o", outDir, "B"}, Targets: []string{"B"}},
		{Kind: model.ReportTwo, Args: []string{"-v", "-o", outDir, "A", "B"}, Targets: []string{"A", "B"}},
	}
	if diff := cmp.Diff(want, rec.calls); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}
	for _, run := range rec.runs {
		assert.Same(t, plan.Run, run, "every call shares the run configuration")
	}

	assert.DirExists(t, outDir)
	assert.FileExists(t, latex.CommandsFile(outDir))
	assert.Equal(t, "Folder "+outDir+" was created.\n  done (Tue Mar  5 14:03:09 2024).\n", stdout.String())
	assert.Equal(t, 3, strings.Count(stderr.String(), "UserWarning"), "verbose keeps every warning")
}

func TestDispatcherRunDedupsWarnings(t *testing.T) {
	outDir := t.TempDir()
	rec := &recorder{}
	var stdout, stderr bytes.Buffer

	d := &Dispatcher{Generators: rec.set(), Stdout: &stdout, Stderr: &stderr, Now: fixedNow}
	plan := &Plan{Run: &model.RunConfig{OutputDir: outDir}}

	require.NoError(t, d.Run(context.Background(), plan, []string{"A", "B", "C"}))

	assert.Len(t, rec.calls, 4)
	assert.Equal(t, "gen.py:10: UserWarning: few data\n  warnings.warn('few data')\n", stderr.String())
	assert.NotContains(t, stdout.String(), "was created", "existing directory is not reported")
}

func TestDispatcherRunInputPath(t *testing.T) {
	outDir := t.TempDir()
	rec := &recorder{}

	d := &Dispatcher{Generators: rec.set(), Stdout: io.Discard, Stderr: io.Discard}
	plan := &Plan{InputPath: "data", OmitSingle: true, Run: &model.RunConfig{OutputDir: outDir}}

	require.NoError(t, d.Run(context.Background(), plan, []string{"A", "B"}))

	want := []Call{{
		Kind:    model.ReportTwo,
		Args:    []string{"-o", outDir, filepath.Join("data", "A"), filepath.Join("data", "B")},
		Targets: []string{filepath.Join("data", "A"), filepath.Join("data", "B")},
	}}
	if diff := cmp.Diff(want, rec.calls); diff != "" {
		t.Errorf("calls mismatch (-want +got):\n%s", diff)
	}
}

func TestDispatcherRunFailFast(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantMsg string
	}{
		{name: "non-zero status", wantMsg: "single report for B failed: exit status 1"},
		{name: "generator error", err: errors.New("boom"), wantMsg: "single report for B failed: boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outDir := t.TempDir()
			rec := &recorder{failAt: 2, err: tt.err}
			var stdout bytes.Buffer

			d := &Dispatcher{Generators: rec.set(), Stdout: &stdout, Stderr: io.Discard}
			plan := &Plan{Run: &model.RunConfig{OutputDir: outDir}}

			err := d.Run(context.Background(), plan, []string{"A", "B", "C"})

			var cliErr *model.CLIError
			require.ErrorAs(t, err, &cliErr)
			assert.Equal(t, model.ExitGeneralError, cliErr.Code)
			assert.EqualError(t, err, tt.wantMsg)
			assert.Len(t, rec.calls, 2, "remaining calls are skipped")
			assert.NotContains(t, stdout.String(), "done")
		})
	}
}

func TestDispatcherRunTruncatesCommandsFile(t *testing.T) {
	outDir := t.TempDir()
	path := latex.CommandsFile(outDir)
	require.NoError(t, os.WriteFile(path, []byte("\\newcommand{\\stale}{}\n"), 0644))

	d := &Dispatcher{Generators: (&recorder{}).set(), Stdout: io.Discard, Stderr: io.Discard}
	require.NoError(t, d.Run(context.Background(), &Plan{Run: &model.RunConfig{OutputDir: outDir}}, []string{"A"}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "stale")
}

func TestDispatcherRunOutputDirIsFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0644))
	rec := &recorder{}

	d := &Dispatcher{Generators: rec.set(), Stdout: io.Discard, Stderr: io.Discard}
	err := d.Run(context.Background(), &Plan{Run: &model.RunConfig{OutputDir: file}}, []string{"A"})

	require.Error(t, err)
	assert.Empty(t, rec.calls)
}
