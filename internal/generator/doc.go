// Package generator defines how cocopp reaches the report generators.
//
// A Generator receives a flat token list (forwarded options, "-o <dir>",
// targets) and returns an exit status, the same contract the command-line
// generators have. Two transports ship with the module:
//
//   - Exec runs the generator as a local child process.
//   - Docker runs it in a throwaway container (see internal/docker).
//
// Func adapts plain functions, which is what tests use.
package generator
