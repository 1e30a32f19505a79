// Package latex manages the LaTeX command file shared by all report
// generators of a run.
//
// Every generator appends \newcommand definitions to the same file in the
// output directory, and the LaTeX templates \input it. The dispatcher owns
// the file's lifecycle: it is truncated before the first generator runs and
// re-opened in append mode once the last one has returned.
package latex

import (
	"fmt"
	"os"
	"path/filepath"
)

// CommandsFileName is the name of the shared command file inside the
// output directory.
const CommandsFileName = "bbob_pproc_commands.tex"

// defaultCommands are written at the top of a fresh command file so that
// templates compile even when a generator skips its captions.
var defaultCommands = []string{
	`\providecommand{\bbobloglosstablecaption}[1]{}`,
	`\providecommand{\bbobloglossfigurecaption}[1]{}`,
	`\providecommand{\bbobpprldistrlegendrlbased}[1]{}`,
	`\providecommand{\bbobppfigslegendrlbased}[1]{}`,
}

// CommandsFile returns the path of the shared command file in outputDir.
func CommandsFile(outputDir string) string {
	return filepath.Join(outputDir, CommandsFileName)
}

// Truncate empties (or creates) the command file and writes the default
// \providecommand lines. The output directory must already exist.
func Truncate(outputDir string) error {
	path := CommandsFile(outputDir)

	// #nosec G304 -- the path is derived from the configured output directory
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to truncate %s: %w", path, err)
	}

	for _, line := range defaultCommands {
		if _, err := fmt.Fprintln(f, line); err != nil {
			_ = f.Close()
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
	}
	return f.Close()
}

// MarkComplete closes the run's use of the command file: it re-opens the
// file in append mode and closes it without writing, creating it if a
// generator removed it. Contents and modification time are left alone.
func MarkComplete(outputDir string) error {
	path := CommandsFile(outputDir)

	// #nosec G304 -- see Truncate
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	return f.Close()
}
