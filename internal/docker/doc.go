// Package docker provides the container side of the docker transport.
//
// It holds the client wrapper with platform socket detection (client.go),
// the labels that tag generator containers with their run (label.go), the
// run-to-completion lifecycle of a single generator container: create,
// start, stream logs, wait, remove (run.go), and the sweep that finds and
// removes the containers of a run (container.go).
//
// Containers never outlive the generator call that created them. The run id
// label exists to find leftovers when a call was interrupted.
package docker
