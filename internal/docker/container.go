package docker

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/filters"
)

// ContainerInfo is the subset of a container listing cocopp cares about.
type ContainerInfo struct {
	ID     string
	Name   string
	State  string
	Labels map[string]string
}

// ListRunContainers returns every container, running or not, that carries
// the run id label of runID. The filtering happens server side.
func (c *Client) ListRunContainers(ctx context.Context, runID string) ([]ContainerInfo, error) {
	filterArgs := filters.NewArgs(
		filters.Arg("label", LabelManagedBy+"="+ManagedByValue),
		filters.Arg("label", LabelRunID+"="+runID),
	)

	containers, err := c.inner.ContainerList(ctx, container.ListOptions{
		All:     true,
		Filters: filterArgs,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list containers of run %s: %w", runID, err)
	}

	result := make([]ContainerInfo, 0, len(containers))
	for _, s := range containers {
		result = append(result, summaryToInfo(s))
	}
	return result, nil
}

// summaryToInfo maps an API listing entry. Docker reports names with a
// leading "/", which is stripped.
func summaryToInfo(s container.Summary) ContainerInfo {
	name := ""
	if len(s.Names) > 0 {
		name = strings.TrimPrefix(s.Names[0], "/")
	}
	return ContainerInfo{
		ID:     s.ID,
		Name:   name,
		State:  s.State,
		Labels: s.Labels,
	}
}

// RemoveRunContainers force-removes all containers of runID that are still
// around, e.g. after a generator call was interrupted. Every container is
// attempted; the errors are joined.
func (c *Client) RemoveRunContainers(ctx context.Context, runID string) (int, error) {
	leftovers, err := c.ListRunContainers(ctx, runID)
	if err != nil {
		return 0, err
	}

	var errs []error
	removed := 0
	for _, info := range leftovers {
		if err := c.inner.ContainerRemove(ctx, info.ID, container.RemoveOptions{Force: true}); err != nil {
			errs = append(errs, fmt.Errorf("failed to remove container %s: %w", info.Name, err))
			continue
		}
		removed++
	}
	return removed, errors.Join(errs...)
}
