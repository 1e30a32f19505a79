package generator

import (
	"context"
	"time"

	"github.com/anneauger/coco/internal/config"
	"github.com/anneauger/coco/internal/docker"
	"github.com/anneauger/coco/internal/model"
)

// cleanupTimeout bounds the leftover-container sweep on Close.
const cleanupTimeout = 30 * time.Second

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

// FromConfig builds the generator set described by cfg.Generators.
//
// The docker transport connects to the daemon and pings it here, so that
// an unreachable daemon fails the run before the output directory is
// touched. Callers must Close the returned set.
func FromConfig(ctx context.Context, cfg *config.Config) (*Set, error) {
	gens := cfg.Generators

	switch gens.Transport {
	case config.TransportDocker:
		cli, err := docker.NewClient()
		if err != nil {
			return nil, err
		}
		if err := cli.Ping(ctx); err != nil {
			_ = cli.Close()
			return nil, err
		}

		d := NewDocker(cli, DockerOptions{Image: cfg.Docker.Image, Pull: cfg.Docker.Pull})
		set := &Set{
			Single: d.Bind(gens.Single),
			Two:    d.Bind(gens.Two),
			Many:   d.Bind(gens.Many),
		}
		set.closers = append(set.closers, closerFunc(func() error {
			cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cleanupTimeout)
			defer cancel()
			err := d.Cleanup(cleanupCtx)
			if closeErr := cli.Close(); err == nil {
				err = closeErr
			}
			return err
		}))
		return set, nil

	case config.TransportExec, "":
		return &Set{
			Single: &Exec{Command: gens.Single},
			Two:    &Exec{Command: gens.Two},
			Many:   &Exec{Command: gens.Many},
		}, nil

	default:
		return nil, model.NewCLIError(model.ExitGeneralError,
			"unknown generator transport: "+string(gens.Transport))
	}
}
