package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/anneauger/coco/internal/config"
	"github.com/anneauger/coco/internal/dispatch"
	"github.com/anneauger/coco/internal/generator"
	"github.com/anneauger/coco/internal/logging"
	"github.com/anneauger/coco/internal/model"
)

// runPostProcessing is the whole cocopp run.
//
// Steps:
//  1. Load the configuration file, if any
//  2. Parse argv against the option grammar
//  3. Print usage when no data folder is given or help is requested
//  4. Classify the options into a plan
//  5. Build the generators for the configured transport
//  6. Dispatch
//
// A broken configuration file does not hide the usage text: argv without
// data folders still prints it, parsed against the built-in grammar.
func runPostProcessing(ctx context.Context, env *environment, args []string) error {
	cfg, err := loadConfig(env)
	if err != nil {
		if usageOnly(env, args) {
			return nil
		}
		return err
	}

	grammar, err := dispatch.Grammar(cfg)
	if err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "invalid option grammar", err)
	}
	classifier, err := dispatch.NewClassifier(cfg)
	if err != nil {
		return model.WrapCLIError(model.ExitGeneralError, "invalid option grammar", err)
	}

	opts, positionals, err := grammar.Parse(args)
	if err != nil {
		return model.NewCLIError(model.ExitUsageError, err.Error())
	}

	// Without data folders there is nothing to do, whatever the options.
	if len(positionals) == 0 {
		printUsage(env.stdout, grammar)
		return nil
	}

	plan, err := classifier.Reconcile(opts)
	if err != nil {
		return err
	}
	if plan.ShowHelp {
		printUsage(env.stdout, grammar)
		return nil
	}
	for _, notice := range plan.Notices {
		fmt.Fprintln(env.stdout, notice)
	}

	run := plan.Run
	if err := run.Validate(); err != nil {
		return model.NewCLIError(model.ExitUsageError, err.Error())
	}
	run.RunID = uuid.Must(uuid.NewV7()).String()

	fmt.Fprintf(env.stdout, "Post-processing: will generate output data in folder %s\n", run.OutputDir)
	fmt.Fprintln(env.stdout, "  this might take several minutes.")

	// Console only until the output directory exists; the file sink lives
	// inside it.
	console, _ := logging.New(env.stderr, logging.Options{Verbose: run.Verbose})
	ctx = logging.WithLogger(ctx, console.With("run_id", run.RunID))
	VerboseLog(ctx, "configuration: %s", configSource(cfg))
	VerboseLog(ctx, "generator transport: %s", cfg.Generators.Transport)

	gens, err := generator.FromConfig(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := gens.Close(); closeErr != nil {
			VerboseLog(ctx, "failed to release generators: %v", closeErr)
		}
	}()

	logger, closer := logging.New(env.stderr, logging.Options{
		Verbose:    run.Verbose,
		File:       cfg.Log.File,
		Dir:        run.OutputDir,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
	})
	defer func() { _ = closer.Close() }()
	ctx = logging.WithLogger(ctx, logger.With("run_id", run.RunID))

	d := &dispatch.Dispatcher{
		Generators: gens,
		Stdout:     env.stdout,
		Stderr:     env.stderr,
	}
	return d.Run(ctx, plan, positionals)
}

// usageOnly prints usage and reports true when args, parsed against the
// built-in grammar, name no data folder.
func usageOnly(env *environment, args []string) bool {
	grammar, err := dispatch.Grammar(config.Default())
	if err != nil {
		return false
	}
	_, positionals, err := grammar.Parse(args)
	if err != nil || len(positionals) > 0 {
		return false
	}
	printUsage(env.stdout, grammar)
	return true
}

// loadConfig resolves and loads the configuration file.
func loadConfig(env *environment) (*config.Config, error) {
	cwd, err := env.getwd()
	if err != nil {
		return nil, model.WrapCLIError(model.ExitGeneralError, "failed to get current directory", err)
	}

	cfg, err := config.Load(config.Resolve(env.getenv(config.EnvConfigPath), cwd))
	if err != nil {
		var cliErr *model.CLIError
		if errors.As(err, &cliErr) {
			return nil, err
		}
		return nil, model.WrapCLIError(model.ExitGeneralError, "failed to load configuration", err)
	}
	return cfg, nil
}

func configSource(cfg *config.Config) string {
	if cfg.Path == "" {
		return "built-in defaults"
	}
	return cfg.Path
}
