package docker

import (
	"fmt"
	"strings"

	"github.com/anneauger/coco/internal/model"
)

// Label keys put on every generator container. They make leftovers of an
// interrupted run discoverable with `docker ps -a --filter label=...`.
const (
	// LabelPrefix namespaces all cocopp labels.
	LabelPrefix = "cocopp."

	// LabelManagedBy marks containers created by cocopp.
	LabelManagedBy = LabelPrefix + "managed-by"

	// LabelRunID ties a container to one cocopp invocation.
	LabelRunID = LabelPrefix + "run-id"

	// LabelReportKind records which generator the container ran.
	LabelReportKind = LabelPrefix + "report-kind"

	// LabelTargets lists the algorithm directories, comma separated.
	LabelTargets = LabelPrefix + "targets"
)

// ManagedByValue is the value of LabelManagedBy.
const ManagedByValue = "cocopp"

// BuildLabels returns the label set for a generator container.
func BuildLabels(runID string, kind model.ReportKind, targets []string) map[string]string {
	return map[string]string{
		LabelManagedBy:  ManagedByValue,
		LabelRunID:      runID,
		LabelReportKind: kind.String(),
		LabelTargets:    strings.Join(targets, ","),
	}
}

// ContainerName returns a readable, run-unique container name such as
// "cocopp-d6e7f809-single-2". The id is shortened to its last 8 hex
// digits: time-ordered ids share their leading digits.
func ContainerName(runID string, kind model.ReportKind, seq int) string {
	short := strings.ReplaceAll(runID, "-", "")
	if len(short) > 8 {
		short = short[len(short)-8:]
	}
	if short == "" {
		short = "run"
	}
	return fmt.Sprintf("cocopp-%s-%s-%d", short, kind, seq)
}
