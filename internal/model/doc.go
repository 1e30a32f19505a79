// Package model defines the domain types and value objects for the
// cocopp CLI.
//
// This package contains pure data structures with no external dependencies.
// ReportKind names the downstream generators, RunConfig carries the settings
// shared with them, and ExitCode/CLIError carry process exit codes up to the
// command layer.
package model
