package getopt

import (
	"fmt"
	"sort"
	"strings"
)

// SpecError reports a malformed option specification. It is a
// programming/configuration fault, never the user's command line.
type SpecError struct {
	Spec    string
	Message string
}

// Error implements the error interface for SpecError.
func (e *SpecError) Error() string {
	return fmt.Sprintf("invalid option spec %q: %s", e.Spec, e.Message)
}

// UsageError reports a command line that does not match the grammar.
// Msg mirrors the wording of POSIX getopt, e.g. "option --foo not recognized".
type UsageError struct {
	Msg string
	Opt string
}

// Error implements the error interface for UsageError.
func (e *UsageError) Error() string {
	return e.Msg
}

func usageErrorf(opt, format string, args ...interface{}) *UsageError {
	return &UsageError{Opt: opt, Msg: fmt.Sprintf(format, args...)}
}

// Option is one parsed command-line option, in the order it appeared.
type Option struct {
	// Name is the dash-prefixed option token: "-o" or "--output-dir".
	// Abbreviated long options are expanded to their full name.
	Name string

	// Value is the option argument. Empty for flags.
	Value string

	// TakesValue reports whether the grammar declares a value for Name.
	// It distinguishes a flag from an option given an empty value.
	TakesValue bool
}

// IsLong reports whether the option was matched against the long spec.
func (o Option) IsLong() bool {
	return strings.HasPrefix(o.Name, "--")
}

// SplitShortOptions splits a getopt short-option spec such as "hvo:" into
// its atomic tokens: "h", "v" and "o:". A value marker is always kept with
// the letter before it.
//
// An empty spec yields an empty set. A spec whose value marker does not
// follow a letter (":ab", "o::") or that contains "-" is rejected.
func SplitShortOptions(spec string) (map[string]bool, error) {
	res := make(map[string]bool)
	rest := spec
	for rest != "" {
		c := rest[0]
		if c == ':' {
			return nil, &SpecError{Spec: spec, Message: fmt.Sprintf("value marker at offset %d does not follow an option letter", len(spec)-len(rest))}
		}
		if c == '-' {
			return nil, &SpecError{Spec: spec, Message: "'-' cannot be a short option"}
		}
		token := rest[:1]
		if len(rest) > 1 && rest[1] == ':' {
			token = rest[:2]
		}
		if res[token] {
			return nil, &SpecError{Spec: spec, Message: fmt.Sprintf("option %q declared twice", token)}
		}
		res[token] = true
		rest = rest[len(token):]
	}
	return res, nil
}

// Grammar is the union of a short-option spec and a long-option spec.
// Short and long options are tracked independently even when they mean
// the same thing ("-o" and "--output-dir").
type Grammar struct {
	// short maps an option letter to whether it takes a value.
	short map[byte]bool

	// long maps a long option name (without dashes) to whether it
	// takes a value.
	long map[string]bool
}

// NewGrammar builds a Grammar from a getopt short spec and a list of long
// option names, where a trailing "=" marks a value-taking option.
//
// Names must be unique within each spec. A long name repeated with the same
// arity is tolerated so that callers can append always-present options
// without checking for them first.
func NewGrammar(shortSpec string, longSpecs []string) (*Grammar, error) {
	tokens, err := SplitShortOptions(shortSpec)
	if err != nil {
		return nil, err
	}

	g := &Grammar{
		short: make(map[byte]bool, len(tokens)),
		long:  make(map[string]bool, len(longSpecs)),
	}
	for token := range tokens {
		letter := token[0]
		if _, dup := g.short[letter]; dup {
			// "o" and "o:" in the same spec.
			return nil, &SpecError{Spec: shortSpec, Message: fmt.Sprintf("option %q declared twice", string(letter))}
		}
		g.short[letter] = strings.HasSuffix(token, ":")
	}

	for _, spec := range longSpecs {
		name := strings.TrimSuffix(spec, "=")
		hasArg := name != spec
		if name == "" || strings.HasPrefix(name, "-") || strings.ContainsAny(name, "= ") {
			return nil, &SpecError{Spec: spec, Message: "malformed long option name"}
		}
		if prev, dup := g.long[name]; dup {
			if prev != hasArg {
				return nil, &SpecError{Spec: spec, Message: fmt.Sprintf("long option %q declared with and without a value", name)}
			}
			continue
		}
		g.long[name] = hasArg
	}
	return g, nil
}

// MustGrammar is like NewGrammar but panics on a malformed spec.
// It is meant for grammars compiled into the binary.
func MustGrammar(shortSpec string, longSpecs []string) *Grammar {
	g, err := NewGrammar(shortSpec, longSpecs)
	if err != nil {
		panic(err)
	}
	return g
}

// ShortOptions returns the dash-prefixed short options ("-h", "-o"), sorted.
func (g *Grammar) ShortOptions() []string {
	res := make([]string, 0, len(g.short))
	for letter := range g.short {
		res = append(res, "-"+string(letter))
	}
	sort.Strings(res)
	return res
}

// LongOptions returns the dash-prefixed long options ("--help"), sorted.
func (g *Grammar) LongOptions() []string {
	res := make([]string, 0, len(g.long))
	for name := range g.long {
		res = append(res, "--"+name)
	}
	sort.Strings(res)
	return res
}

// TakesValue reports whether the dash-prefixed option is known and takes
// a value.
func (g *Grammar) TakesValue(opt string) (takesValue, known bool) {
	if name, ok := strings.CutPrefix(opt, "--"); ok {
		takesValue, known = g.long[name]
		return takesValue, known
	}
	if len(opt) == 2 && opt[0] == '-' {
		takesValue, known = g.short[opt[1]]
		return takesValue, known
	}
	return false, false
}

// Parse splits args into options and positional arguments.
//
// Parsing follows POSIX getopt: it stops at the first argument that does
// not start with "-", at a lone "-", or right after "--". Everything from
// there on is returned as positional. Options are returned in the order
// they were given. A non-nil error is always a *UsageError.
func (g *Grammar) Parse(args []string) ([]Option, []string, error) {
	var opts []Option
	for len(args) > 0 && strings.HasPrefix(args[0], "-") && args[0] != "-" {
		if args[0] == "--" {
			args = args[1:]
			break
		}

		var err *UsageError
		if long, ok := strings.CutPrefix(args[0], "--"); ok {
			opts, args, err = g.parseLong(opts, long, args[1:])
		} else {
			opts, args, err = g.parseShort(opts, args[0][1:], args[1:])
		}
		if err != nil {
			return nil, nil, err
		}
	}
	return opts, args, nil
}

func (g *Grammar) parseLong(opts []Option, arg string, rest []string) ([]Option, []string, *UsageError) {
	name, value, hasValue := strings.Cut(arg, "=")

	full, takesValue, err := g.matchLong(name)
	if err != nil {
		return nil, nil, err
	}

	if takesValue {
		if !hasValue {
			if len(rest) == 0 {
				return nil, nil, usageErrorf("--"+full, "option --%s requires argument", full)
			}
			value, rest = rest[0], rest[1:]
		}
	} else if hasValue {
		return nil, nil, usageErrorf("--"+full, "option --%s must not have an argument", full)
	}

	return append(opts, Option{Name: "--" + full, Value: value, TakesValue: takesValue}), rest, nil
}

// matchLong resolves a possibly abbreviated long option name. An exact
// match always wins; otherwise the prefix must be unique.
func (g *Grammar) matchLong(name string) (string, bool, *UsageError) {
	if takesValue, ok := g.long[name]; ok {
		return name, takesValue, nil
	}

	var candidates []string
	for candidate := range g.long {
		if strings.HasPrefix(candidate, name) {
			candidates = append(candidates, candidate)
		}
	}
	switch len(candidates) {
	case 0:
		return "", false, usageErrorf("--"+name, "option --%s not recognized", name)
	case 1:
		return candidates[0], g.long[candidates[0]], nil
	default:
		return "", false, usageErrorf("--"+name, "option --%s not a unique prefix", name)
	}
}

func (g *Grammar) parseShort(opts []Option, cluster string, rest []string) ([]Option, []string, *UsageError) {
	for cluster != "" {
		letter := cluster[0]
		cluster = cluster[1:]

		takesValue, ok := g.short[letter]
		if !ok {
			return nil, nil, usageErrorf("-"+string(letter), "option -%c not recognized", letter)
		}

		var value string
		if takesValue {
			if cluster == "" {
				if len(rest) == 0 {
					return nil, nil, usageErrorf("-"+string(letter), "option -%c requires argument", letter)
				}
				cluster, rest = rest[0], rest[1:]
			}
			value, cluster = cluster, ""
		}
		opts = append(opts, Option{Name: "-" + string(letter), Value: value, TakesValue: takesValue})
	}
	return opts, rest, nil
}
