package generator

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/anneauger/coco/internal/docker"
	"github.com/anneauger/coco/internal/logging"
)

// containerRunner is the part of *docker.Client the Docker transport uses.
type containerRunner interface {
	PullImage(ctx context.Context, ref string) error
	Run(ctx context.Context, spec docker.RunSpec, stdout, stderr io.Writer) (int, error)
	RemoveRunContainers(ctx context.Context, runID string) (int, error)
}

// Docker runs generators in throwaway containers of one image.
//
// The working directory, the output directory and every target are bind
// mounted at their host paths, and the container starts in the host
// working directory, so the argument list needs no rewriting.
type Docker struct {
	client containerRunner
	image  string
	pull   bool

	// workDir is the host working directory; empty means os.Getwd.
	workDir string

	mu     sync.Mutex
	seq    int
	pulled bool
	runIDs map[string]bool
}

// DockerOptions configures NewDocker.
type DockerOptions struct {
	// Image holds the generators.
	Image string

	// Pull pulls the image once before the first container starts.
	Pull bool

	// WorkDir overrides the working directory mounted into containers.
	WorkDir string
}

// NewDocker returns a Docker transport on top of client.
func NewDocker(client containerRunner, opts DockerOptions) *Docker {
	return &Docker{
		client:  client,
		image:   opts.Image,
		pull:    opts.Pull,
		workDir: opts.WorkDir,
		runIDs:  make(map[string]bool),
	}
}

// Bind returns a Generator that runs command inside the container.
func (d *Docker) Bind(command []string) Generator {
	return Func(func(ctx context.Context, inv *Invocation) (int, error) {
		return d.generate(ctx, command, inv)
	})
}

func (d *Docker) generate(ctx context.Context, command []string, inv *Invocation) (int, error) {
	if len(command) == 0 {
		return -1, fmt.Errorf("no command configured for %s generator", inv.Kind)
	}

	workDir, err := d.resolveWorkDir()
	if err != nil {
		return -1, err
	}

	if err := d.ensureImage(ctx); err != nil {
		return -1, err
	}

	runID := ""
	var env []string
	paths := append([]string(nil), inv.Targets...)
	if inv.Run != nil {
		runID = inv.Run.RunID
		env = inv.Run.Environ()
		paths = append(paths, inv.Run.OutputDir)
	}

	d.mu.Lock()
	d.seq++
	seq := d.seq
	d.runIDs[runID] = true
	d.mu.Unlock()

	cmd := make([]string, 0, len(command)+len(inv.Args))
	cmd = append(cmd, command...)
	cmd = append(cmd, inv.Args...)

	spec := docker.RunSpec{
		Name:    docker.ContainerName(runID, inv.Kind, seq),
		Image:   d.image,
		Cmd:     cmd,
		Env:     env,
		WorkDir: workDir,
		Mounts:  docker.BuildMounts(workDir, paths),
		Labels:  docker.BuildLabels(runID, inv.Kind, inv.Targets),
		User:    docker.CurrentUser(),
	}

	logging.FromContext(ctx).Debug("starting generator container",
		"kind", inv.Kind,
		"container", spec.Name,
		"image", spec.Image)

	return d.client.Run(ctx, spec, inv.stdout(), inv.stderr())
}

func (d *Docker) resolveWorkDir() (string, error) {
	if d.workDir != "" {
		return filepath.Abs(d.workDir)
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current directory: %w", err)
	}
	return wd, nil
}

// ensureImage pulls the image on first use when pulling is enabled.
func (d *Docker) ensureImage(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.pull || d.pulled {
		return nil
	}
	logging.FromContext(ctx).Info("pulling generator image", "image", d.image)
	if err := d.client.PullImage(ctx, d.image); err != nil {
		return err
	}
	d.pulled = true
	return nil
}

// Cleanup removes containers left behind by the runs this transport
// served. Containers normally remove themselves; this covers interrupted
// calls.
func (d *Docker) Cleanup(ctx context.Context) error {
	d.mu.Lock()
	ids := make([]string, 0, len(d.runIDs))
	for id := range d.runIDs {
		ids = append(ids, id)
	}
	d.mu.Unlock()

	for _, id := range ids {
		n, err := d.client.RemoveRunContainers(ctx, id)
		if err != nil {
			return err
		}
		if n > 0 {
			logging.FromContext(ctx).Warn("removed leftover generator containers", "run_id", id, "count", n)
		}
	}
	return nil
}
