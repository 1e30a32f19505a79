// Package model defines the domain types for the cocopp CLI.
//
// All entities in this package are transient: they are derived from the
// command line of a single invocation and discarded when the process exits.
// Nothing here is persisted between runs.
package model

import (
	"fmt"
	"strconv"
	"strings"
)

// ReportKind identifies which downstream report generator an invocation
// targets. The dispatcher picks the kinds to run from the number of
// algorithm directories given on the command line:
//
//	1 target   → single
//	2 targets  → single (per target, unless --omit-single) + two
//	N>2        → single (per target, unless --omit-single) + many
type ReportKind string

const (
	// ReportSingle builds the report for one algorithm's data directory.
	ReportSingle ReportKind = "single"

	// ReportTwo compares exactly two algorithms.
	ReportTwo ReportKind = "two"

	// ReportMany compares more than two algorithms.
	ReportMany ReportKind = "many"
)

// String returns the string representation of ReportKind.
func (k ReportKind) String() string {
	return string(k)
}

// IsValid checks whether the ReportKind value is one of the
// predefined kinds.
func (k ReportKind) IsValid() bool {
	switch k {
	case ReportSingle, ReportTwo, ReportMany:
		return true
	default:
		return false
	}
}

// IsComparison returns true for the kinds that take several targets at once.
func (k ReportKind) IsComparison() bool {
	return k == ReportTwo || k == ReportMany
}

// ParseReportKind converts a string to a ReportKind.
// Returns an error if the string does not match any valid kind.
func ParseReportKind(s string) (ReportKind, error) {
	kind := ReportKind(strings.ToLower(s))
	if !kind.IsValid() {
		return "", fmt.Errorf("invalid report kind: %q (valid: single, two, many)", s)
	}
	return kind, nil
}

// MaxInAHurry is the upper bound of the in-a-hurry intensity level.
// Zero means full fidelity.
const MaxInAHurry = 1000

// RunConfig holds the process-wide settings that collaborators consult.
//
// It is built once by the option classifier and then handed by pointer to
// every generator invocation. After classification it is treated as
// read-only.
type RunConfig struct {
	// RunID uniquely identifies one cocopp invocation. It shows up in log
	// lines and container labels so that the artifacts of a run can be
	// correlated.
	RunID string `json:"runId"`

	// OutputDir is the directory every generator writes into.
	OutputDir string `json:"outputDir"`

	// Verbose enables detailed output in the dispatcher and collaborators.
	Verbose bool `json:"verbose"`

	// InAHurry trades report completeness for speed (0-1000, 0 = off).
	InAHurry int `json:"inAHurry"`

	// GenerateSVG asks collaborators to also write svg figures.
	GenerateSVG bool `json:"generateSvg"`
}

// Environment variable names used to hand the RunConfig to collaborators
// that run in a separate process or container.
const (
	EnvRunID       = "COCOPP_RUN_ID"
	EnvOutputDir   = "COCOPP_OUTPUT_DIR"
	EnvVerbose     = "COCOPP_VERBOSE"
	EnvInAHurry    = "COCOPP_IN_A_HURRY"
	EnvGenerateSVG = "COCOPP_GENERATE_SVG"
)

// Validate checks the field values of the RunConfig.
func (c *RunConfig) Validate() error {
	if c.InAHurry < 0 || c.InAHurry > MaxInAHurry {
		return fmt.Errorf("in-a-hurry level %d out of range (0-%d)", c.InAHurry, MaxInAHurry)
	}
	if c.OutputDir == "" {
		return fmt.Errorf("output directory must not be empty")
	}
	return nil
}

// Environ renders the RunConfig as KEY=VALUE pairs, in a fixed order,
// suitable for exec.Cmd.Env or a container's environment.
func (c *RunConfig) Environ() []string {
	return []string{
		EnvRunID + "=" + c.RunID,
		EnvOutputDir + "=" + c.OutputDir,
		EnvVerbose + "=" + boolEnv(c.Verbose),
		EnvInAHurry + "=" + strconv.Itoa(c.InAHurry),
		EnvGenerateSVG + "=" + boolEnv(c.GenerateSVG),
	}
}

func boolEnv(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// ExitCode defines the process exit codes of the cocopp CLI.
type ExitCode int

const (
	// ExitSuccess indicates the run completed, or usage was displayed.
	ExitSuccess ExitCode = 0

	// ExitGeneralError indicates a collaborator or configuration failure.
	ExitGeneralError ExitCode = 1

	// ExitUsageError indicates the command line could not be parsed:
	// unknown option, missing option value or invalid option value.
	ExitUsageError ExitCode = 2
)

// CLIError is a custom error type that carries an exit code.
// This allows the CLI layer to translate domain errors into
// appropriate process exit codes.
type CLIError struct {
	// Code is the exit code to return to the OS.
	Code ExitCode

	// Message is the human-readable error description.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error satisfies the error interface. It returns the human-readable
// error message, optionally including the underlying error.
func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
func (e *CLIError) Unwrap() error {
	return e.Err
}

// IsUsage reports whether the error stems from a malformed command line.
func (e *CLIError) IsUsage() bool {
	return e.Code == ExitUsageError
}

// NewCLIError creates a new CLIError with the given exit code and message.
func NewCLIError(code ExitCode, message string) *CLIError {
	return &CLIError{Code: code, Message: message}
}

// WrapCLIError creates a new CLIError that wraps an existing error.
func WrapCLIError(code ExitCode, message string, err error) *CLIError {
	return &CLIError{Code: code, Message: message, Err: err}
}
