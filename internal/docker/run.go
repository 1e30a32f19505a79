package docker

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/image"
	"github.com/docker/docker/api/types/mount"
	"github.com/docker/docker/pkg/stdcopy"
)

// RunSpec describes one generator container.
type RunSpec struct {
	// Name is the container name (see ContainerName).
	Name string

	// Image is the image providing the report generators.
	Image string

	// Cmd is the full command: generator command followed by its argv.
	Cmd []string

	// Env holds KEY=VALUE pairs, typically RunConfig.Environ().
	Env []string

	// WorkDir is the container working directory. It is the host working
	// directory, mounted at the same path, so relative paths resolve alike.
	WorkDir string

	// Mounts are the bind mounts (see BuildMounts).
	Mounts []mount.Mount

	// Labels are the container labels (see BuildLabels).
	Labels map[string]string

	// User runs the process as "uid:gid" so that report files are owned by
	// the invoking user. Empty keeps the image default.
	User string
}

// CurrentUser returns "uid:gid" of this process, or "" on platforms
// without numeric ids.
func CurrentUser() string {
	uid, gid := os.Getuid(), os.Getgid()
	if uid < 0 || gid < 0 {
		return ""
	}
	return fmt.Sprintf("%d:%d", uid, gid)
}

// BuildMounts returns bind mounts that make workDir and every path in
// paths visible inside the container at their host locations.
//
// Relative paths are resolved against workDir. Paths already covered by
// an earlier mount (workDir itself included) do not get their own mount.
// The order is stable: workDir first, then paths in the given order.
func BuildMounts(workDir string, paths []string) []mount.Mount {
	workDir = filepath.Clean(workDir)
	mounts := []mount.Mount{{Type: mount.TypeBind, Source: workDir, Target: workDir}}

	for _, p := range paths {
		if !filepath.IsAbs(p) {
			p = filepath.Join(workDir, p)
		}
		p = filepath.Clean(p)

		covered := false
		for _, m := range mounts {
			if within(m.Source, p) {
				covered = true
				break
			}
		}
		if !covered {
			mounts = append(mounts, mount.Mount{Type: mount.TypeBind, Source: p, Target: p})
		}
	}
	return mounts
}

// within reports whether path is dir or lies below it.
func within(dir, path string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

// containerConfig converts a RunSpec into the SDK's create arguments.
func containerConfig(spec RunSpec) (*container.Config, *container.HostConfig) {
	cfg := &container.Config{
		Image:      spec.Image,
		Cmd:        spec.Cmd,
		Env:        spec.Env,
		WorkingDir: spec.WorkDir,
		Labels:     spec.Labels,
		User:       spec.User,
		Tty:        false,
	}
	hostCfg := &container.HostConfig{
		Mounts: spec.Mounts,
	}
	return cfg, hostCfg
}

// PullImage pulls ref and waits for the pull to finish.
func (c *Client) PullImage(ctx context.Context, ref string) error {
	progress, err := c.inner.ImagePull(ctx, ref, image.PullOptions{})
	if err != nil {
		return fmt.Errorf("failed to pull image %s: %w", ref, err)
	}
	defer func() { _ = progress.Close() }()

	// The pull only completes once the progress stream is drained.
	if _, err := io.Copy(io.Discard, progress); err != nil {
		return fmt.Errorf("failed to pull image %s: %w", ref, err)
	}
	return nil
}

// Run creates a container from spec, streams its stdout and stderr to the
// given writers, waits for it to exit and removes it. It returns the
// container's exit status.
func (c *Client) Run(ctx context.Context, spec RunSpec, stdout, stderr io.Writer) (int, error) {
	cfg, hostCfg := containerConfig(spec)

	created, err := c.inner.ContainerCreate(ctx, cfg, hostCfg, nil, nil, spec.Name)
	if err != nil {
		return -1, fmt.Errorf("failed to create container %s: %w", spec.Name, err)
	}
	defer func() {
		// Remove with a fresh context: the run context may already be done.
		_ = c.inner.ContainerRemove(context.Background(), created.ID, container.RemoveOptions{Force: true})
	}()

	// Subscribe before starting so a fast exit is not missed.
	waitCh, waitErrCh := c.inner.ContainerWait(ctx, created.ID, container.WaitConditionNextExit)

	if err := c.inner.ContainerStart(ctx, created.ID, container.StartOptions{}); err != nil {
		return -1, fmt.Errorf("failed to start container %s: %w", spec.Name, err)
	}

	logs, err := c.inner.ContainerLogs(ctx, created.ID, container.LogsOptions{
		ShowStdout: true,
		ShowStderr: true,
		Follow:     true,
	})
	if err != nil {
		return -1, fmt.Errorf("failed to attach to container %s: %w", spec.Name, err)
	}
	defer func() { _ = logs.Close() }()

	// Without a TTY the log stream multiplexes stdout and stderr.
	if _, err := stdcopy.StdCopy(stdout, stderr, logs); err != nil {
		return -1, fmt.Errorf("failed to read output of container %s: %w", spec.Name, err)
	}

	select {
	case err := <-waitErrCh:
		return -1, fmt.Errorf("failed waiting for container %s: %w", spec.Name, err)
	case res := <-waitCh:
		if res.Error != nil {
			return -1, fmt.Errorf("container %s: %s", spec.Name, res.Error.Message)
		}
		return int(res.StatusCode), nil
	}
}
