package dispatch

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/anneauger/coco/internal/config"
	"github.com/anneauger/coco/internal/getopt"
	"github.com/anneauger/coco/internal/model"
)

// Long options cocopp always understands, whatever the configured grammar.
// None of them is ever forwarded.
const (
	OptOmitSingle = "omit-single"
	OptInAHurry   = "in-a-hurry"
	OptInputPath  = "input-path"
)

// extraLongOptions are appended to the configured long spec.
var extraLongOptions = []string{OptOmitSingle, OptInAHurry + "=", OptInputPath + "="}

// Grammar returns the argument grammar for cfg: the configured short and
// long specs plus the always-present cocopp options.
func Grammar(cfg *config.Config) (*getopt.Grammar, error) {
	long := append(cfg.Grammar.LongOptions(), extraLongOptions...)
	return getopt.NewGrammar(cfg.Grammar.Short, long)
}

// Disposition tells what happens to a parsed option.
type Disposition uint8

const (
	// Consumed options change cocopp's own behavior.
	Consumed Disposition = 1 << iota

	// Forwarded options are passed on to every generator.
	Forwarded

	// ConsumedAndForwarded is both, e.g. verbose.
	ConsumedAndForwarded = Consumed | Forwarded
)

func (d Disposition) String() string {
	switch d {
	case Consumed:
		return "consumed"
	case Forwarded:
		return "forwarded"
	case ConsumedAndForwarded:
		return "consumed+forwarded"
	default:
		return "unclassified"
	}
}

// Plan is the outcome of classifying a command line.
type Plan struct {
	// ShowHelp is set when -h/--help was given. Nothing else in the plan
	// is meaningful then.
	ShowHelp bool

	// Forwarded is the token list passed to every generator, before
	// "-o <dir>" and the targets.
	Forwarded []string

	// InputPath is prepended to every target. Empty leaves them as given.
	InputPath string

	// OmitSingle skips the per-algorithm reports when there is more than
	// one target.
	OmitSingle bool

	// Notices are informational lines for the user, in option order.
	Notices []string

	// Run is the run configuration handed to the generators.
	Run *model.RunConfig
}

// Targets returns positionals with the input path prepended.
func (p *Plan) Targets(positionals []string) []string {
	res := make([]string, len(positionals))
	for i, t := range positionals {
		res[i] = joinInputPath(p.InputPath, t)
	}
	return res
}

// rule is one row of the classification table.
type rule struct {
	// name labels the row.
	name string

	// match reports whether the rule covers opt.
	match func(c *Classifier, opt getopt.Option) bool

	// disposition is merged into the option's disposition on a match.
	disposition Disposition

	// apply records the option in the plan. May be nil.
	apply func(c *Classifier, p *Plan, opt getopt.Option) error

	// final stops the evaluation of later rules.
	final bool
}

// rules are evaluated in order. A final rule ends the evaluation; a
// non-final one lets later rules add to the option's disposition.
var rules = []rule{
	{
		name:        "help",
		match:       named("-h", "--help"),
		disposition: Consumed,
		apply: func(_ *Classifier, p *Plan, _ getopt.Option) error {
			p.ShowHelp = true
			return nil
		},
		final: true,
	},
	{
		name:        "output-dir",
		match:       named("-o", "--output-dir"),
		disposition: Consumed,
		apply: func(_ *Classifier, p *Plan, opt getopt.Option) error {
			p.Run.OutputDir = opt.Value
			return nil
		},
		final: true,
	},
	{
		name:        OptInAHurry,
		match:       named("--" + OptInAHurry),
		disposition: Consumed,
		apply:       applyInAHurry,
		final:       true,
	},
	{
		name:        OptInputPath,
		match:       named("--" + OptInputPath),
		disposition: Consumed,
		apply: func(_ *Classifier, p *Plan, opt getopt.Option) error {
			p.InputPath = opt.Value
			return nil
		},
		final: true,
	},
	{
		name:        "svg",
		match:       named("--svg"),
		disposition: Consumed,
		apply: func(_ *Classifier, p *Plan, _ getopt.Option) error {
			p.Run.GenerateSVG = true
			return nil
		},
		final: true,
	},
	{
		name: "generic",
		match: func(c *Classifier, opt getopt.Option) bool {
			return c.forwardable[opt.Name]
		},
		disposition: Forwarded,
		apply: func(_ *Classifier, p *Plan, opt getopt.Option) error {
			p.Forwarded = append(p.Forwarded, opt.Name)
			// The value is a separate token so the generator's own parser
			// sees the same shape.
			if opt.TakesValue {
				p.Forwarded = append(p.Forwarded, opt.Value)
			}
			return nil
		},
	},
	{
		name:        "verbose",
		match:       named("-v", "--verbose"),
		disposition: Consumed,
		apply: func(_ *Classifier, p *Plan, _ getopt.Option) error {
			p.Run.Verbose = true
			return nil
		},
	},
	{
		name:        OptOmitSingle,
		match:       named("--" + OptOmitSingle),
		disposition: Consumed,
		apply: func(_ *Classifier, p *Plan, _ getopt.Option) error {
			p.OmitSingle = true
			return nil
		},
		final: true,
	},
}

// named matches options by exact name, dashes included.
func named(names ...string) func(*Classifier, getopt.Option) bool {
	return func(_ *Classifier, opt getopt.Option) bool {
		for _, n := range names {
			if opt.Name == n {
				return true
			}
		}
		return false
	}
}

// applyInAHurry records the hurry level, 0 through model.MaxInAHurry.
// Any other level is a usage error.
func applyInAHurry(_ *Classifier, p *Plan, opt getopt.Option) error {
	level, err := strconv.Atoi(strings.TrimSpace(opt.Value))
	if err != nil || level < 0 || level > model.MaxInAHurry {
		return model.NewCLIError(model.ExitUsageError,
			fmt.Sprintf("option --%s requires an integer between 0 and %d, got %q", OptInAHurry, model.MaxInAHurry, opt.Value))
	}
	p.Run.InAHurry = level
	if level != 0 {
		p.Notices = append(p.Notices, fmt.Sprintf("in_a_hurry like %d (should finally be set to zero)", level))
	}
	return nil
}

// Classifier sorts parsed options into cocopp's own and the generators'.
type Classifier struct {
	// forwardable holds the dash-prefixed options of the configured
	// grammar that generators understand: every short option but -o and
	// every long option.
	forwardable map[string]bool

	// defaultOutputDir is used when -o/--output-dir is not given.
	defaultOutputDir string
}

// NewClassifier builds a Classifier for cfg.
func NewClassifier(cfg *config.Config) (*Classifier, error) {
	short, err := getopt.SplitShortOptions(cfg.Grammar.Short)
	if err != nil {
		return nil, err
	}

	forwardable := make(map[string]bool)
	for token := range short {
		name := "-" + strings.TrimSuffix(token, ":")
		if name != "-o" {
			forwardable[name] = true
		}
	}
	for _, long := range cfg.Grammar.LongOptions() {
		forwardable["--"+strings.TrimSuffix(long, "=")] = true
	}

	return &Classifier{forwardable: forwardable, defaultOutputDir: cfg.OutputDir}, nil
}

// Classify returns the disposition of opt without recording anything.
// It panics when no rule claims the option: the parser only returns
// options of the grammar, and every grammar option has a rule.
func (c *Classifier) Classify(opt getopt.Option) Disposition {
	d, _ := c.classify(opt)
	return d
}

// classify runs the rule table on opt and returns the merged disposition
// together with the matched rules, in table order.
func (c *Classifier) classify(opt getopt.Option) (Disposition, []*rule) {
	var (
		d       Disposition
		matched []*rule
	)
	for i := range rules {
		r := &rules[i]
		if !r.match(c, opt) {
			continue
		}
		d |= r.disposition
		matched = append(matched, r)
		if r.final {
			break
		}
	}
	if len(matched) == 0 {
		panic(fmt.Sprintf("unhandled option %s", opt.Name))
	}
	return d, matched
}

// Reconcile turns parsed options into a Plan. Processing stops at the
// first help option. The only error is an invalid option value, reported
// as a usage error.
func (c *Classifier) Reconcile(opts []getopt.Option) (*Plan, error) {
	plan := &Plan{
		Run: &model.RunConfig{OutputDir: c.defaultOutputDir},
	}

	for _, opt := range opts {
		_, matched := c.classify(opt)
		for _, r := range matched {
			if r.apply == nil {
				continue
			}
			if err := r.apply(c, plan, opt); err != nil {
				return nil, err
			}
		}
		if plan.ShowHelp {
			return plan, nil
		}
	}
	return plan, nil
}
