// Package getopt parses command lines against a getopt-style grammar.
//
// A grammar is made of two independent specs:
//   - a short spec string where each letter is an option and a trailing
//     ":" marks a value-taking option ("hvo:");
//   - a list of long option names where a trailing "=" marks a
//     value-taking option ("output-dir=").
//
// Parse keeps the options in command-line order because the dispatcher
// forwards them to report generators in that same order.
//
// Two error types separate whose fault a failure is: SpecError is a broken
// grammar (a programming fault), UsageError is a command line that does
// not fit the grammar (the user's fault, exit status 2).
package getopt
