// Package warn thins out repeated warnings printed by report generators.
//
// A run may call the single-algorithm generator dozens of times, and each
// call tends to print the same warnings. Unless the run is verbose, a
// Filter lets the first UserWarning with a given text from a given module
// through and drops the repeats, across every generator call that shares
// it. The line number is not part of the key, as with the "module" action
// of Python's warnings filter.
package warn

import (
	"bytes"
	"io"
	"regexp"
	"sync"
)

// UserWarning is the warning category that is deduplicated.
// Other categories always pass.
const UserWarning = "UserWarning"

// warningLine matches the header line of a Python warning record:
//
//	/path/to/module.py:123: UserWarning: message text
var warningLine = regexp.MustCompile(`^(.+):(\d+): (\w*Warning): (.*)$`)

// Filter is an io.Writer that forwards lines to an underlying writer,
// dropping repeated user warnings when not verbose.
//
// Input is buffered until a full line is available, so a Filter may be
// handed directly to exec.Cmd as Stderr. Call Flush after the writer side
// is done to emit a trailing partial line.
type Filter struct {
	mu      sync.Mutex
	out     io.Writer
	verbose bool

	// seen holds the warnings already shown, keyed by warningKey.
	seen map[string]bool

	// pending holds bytes of an incomplete line.
	pending []byte

	// dropping is set while the continuation lines of a dropped warning
	// (its indented source line) are being skipped.
	dropping bool

	suppressed int
}

// NewFilter returns a Filter writing to out. With verbose set, every line
// passes unchanged.
func NewFilter(out io.Writer, verbose bool) *Filter {
	return &Filter{
		out:     out,
		verbose: verbose,
		seen:    make(map[string]bool),
	}
}

// Write implements io.Writer. It always reports len(p) bytes written
// unless the underlying writer fails.
func (f *Filter) Write(p []byte) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.pending = append(f.pending, p...)
	for {
		i := bytes.IndexByte(f.pending, '\n')
		if i < 0 {
			break
		}
		line := f.pending[:i+1]
		if err := f.writeLine(line); err != nil {
			return 0, err
		}
		f.pending = f.pending[i+1:]
	}
	return len(p), nil
}

// Flush writes out any buffered partial line and resets the continuation
// state, so the next generator call starts clean.
func (f *Filter) Flush() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	var err error
	if len(f.pending) > 0 {
		err = f.writeLine(f.pending)
		f.pending = nil
	}
	f.dropping = false
	return err
}

// Suppressed returns how many warnings were dropped so far.
func (f *Filter) Suppressed() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.suppressed
}

// writeLine decides the fate of a single line. f.mu must be held.
func (f *Filter) writeLine(line []byte) error {
	if f.verbose {
		_, err := f.out.Write(line)
		return err
	}

	if m := warningLine.FindSubmatch(bytes.TrimRight(line, "\r\n")); m != nil {
		file, category, message := string(m[1]), string(m[3]), string(m[4])
		f.dropping = false
		if category == UserWarning {
			key := warningKey(file, category, message)
			if f.seen[key] {
				f.dropping = true
				f.suppressed++
				return nil
			}
			f.seen[key] = true
		}
		_, err := f.out.Write(line)
		return err
	}

	// Python prints the offending source line indented below the header.
	if f.dropping && len(line) > 0 && (line[0] == ' ' || line[0] == '\t') {
		return nil
	}
	f.dropping = false

	_, err := f.out.Write(line)
	return err
}

// warningKey identifies a warning by module, category and text.
func warningKey(file, category, message string) string {
	return file + "\x00" + category + "\x00" + message
}
