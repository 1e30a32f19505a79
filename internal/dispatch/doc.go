// Package dispatch decides what cocopp does with a parsed command line.
//
// The Classifier walks an ordered rule table and splits the options into
// those cocopp consumes itself (output directory, input path, hurry level,
// svg, omit-single, help) and those every generator receives. Verbose is
// both. The result is a Plan.
//
// The Dispatcher then derives the generator calls from the number of
// targets:
//
//	1 target   single
//	2 targets  single per target (unless --omit-single), then two
//	3+ targets single per target (unless --omit-single), then many
//
// and runs them one after the other, stopping at the first failure.
package dispatch
