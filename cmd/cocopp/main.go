// Package main is the entry point for the cocopp CLI.
//
// All functionality lives in internal/cli. Build-time variables (version,
// commit, date) are injected via ldflags; during development they default
// to "dev", "none" and "unknown".
package main

import (
	"github.com/anneauger/coco/internal/cli"
)

// version, commit, and date are set at build time via ldflags, e.g.
// -ldflags "-X main.version=1.2.0".
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cli.Version = version
	cli.Commit = commit
	cli.Date = date

	rootCmd := cli.NewRootCommand()
	cli.Execute(rootCmd)
}
