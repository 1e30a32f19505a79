package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/anneauger/coco/internal/model"
)

// EnvConfigPath names the environment variable that points at an explicit
// configuration file. It takes precedence over the files in the working
// directory.
const EnvConfigPath = "COCOPP_CONFIG"

// DefaultOutputDir is the output directory used when neither the config
// file nor -o/--output-dir sets one.
const DefaultOutputDir = "ppdata"

// DefaultShortOptions is the getopt short spec understood by cocopp and
// the report generators behind it.
const DefaultShortOptions = "hvo:"

// DefaultLongOptions is the long-option spec shared with the report
// generators. A trailing "=" marks an option that takes a value.
var DefaultLongOptions = []string{
	"help",
	"output-dir=",
	"noisy",
	"noise-free",
	"tab-only",
	"fig-only",
	"rld-only",
	"rld-single-fcts",
	"los-only",
	"crafting-effort=",
	"pickle",
	"verbose",
	"settings=",
	"conv",
	"expensive",
	"runlength-based",
	"not-expensive",
	"svg",
	"sca-only",
}

// Transport selects how report generators are reached.
type Transport string

const (
	// TransportExec runs each generator as a local child process.
	TransportExec Transport = "exec"

	// TransportDocker runs each generator in a throwaway container.
	TransportDocker Transport = "docker"
)

// Config is the optional cocopp configuration file.
//
// Every field has a default (see Default), so an empty or missing file
// yields a working configuration.
type Config struct {
	// OutputDir is the default output directory.
	OutputDir string `yaml:"output_dir" json:"output_dir"`

	// Grammar controls the options recognized on the command line.
	Grammar GrammarConfig `yaml:"grammar" json:"grammar"`

	// Generators describes the commands that build the reports.
	Generators GeneratorsConfig `yaml:"generators" json:"generators"`

	// Docker holds settings for the docker transport.
	Docker DockerConfig `yaml:"docker" json:"docker"`

	// Log configures the optional rotating log file.
	Log LogConfig `yaml:"log" json:"log"`

	// Path is the file the configuration was loaded from. Empty when the
	// defaults are used.
	Path string `yaml:"-" json:"-"`
}

// GrammarConfig holds the option specs.
type GrammarConfig struct {
	// Short is the getopt short spec.
	Short string `yaml:"short" json:"short"`

	// LongExtra lists long options appended to DefaultLongOptions, for
	// generators that understand more options than the stock ones.
	LongExtra []string `yaml:"long_extra" json:"long_extra"`
}

// LongOptions returns the complete long spec: defaults followed by extras.
func (g GrammarConfig) LongOptions() []string {
	res := make([]string, 0, len(DefaultLongOptions)+len(g.LongExtra))
	res = append(res, DefaultLongOptions...)
	return append(res, g.LongExtra...)
}

// GeneratorsConfig maps each report kind to the command that produces it.
type GeneratorsConfig struct {
	// Transport is "exec" (default) or "docker".
	Transport Transport `yaml:"transport" json:"transport"`

	// Single builds the report for one algorithm.
	Single []string `yaml:"single" json:"single"`

	// Two compares two algorithms.
	Two []string `yaml:"two" json:"two"`

	// Many compares more than two algorithms.
	Many []string `yaml:"many" json:"many"`
}

// Command returns the configured command for a report kind.
func (g GeneratorsConfig) Command(kind model.ReportKind) []string {
	switch kind {
	case model.ReportSingle:
		return g.Single
	case model.ReportTwo:
		return g.Two
	case model.ReportMany:
		return g.Many
	default:
		return nil
	}
}

// DockerConfig holds the docker transport settings.
type DockerConfig struct {
	// Image is the container image with the report generators installed.
	Image string `yaml:"image" json:"image"`

	// Pull forces an image pull before the first generator runs.
	Pull bool `yaml:"pull" json:"pull"`
}

// LogConfig configures the rotating log file.
type LogConfig struct {
	// File is the log file path. Relative paths are resolved against the
	// output directory. Empty disables file logging.
	File string `yaml:"file" json:"file"`

	// MaxSizeMB is the size at which the file is rotated.
	MaxSizeMB int `yaml:"max_size_mb" json:"max_size_mb"`

	// MaxBackups is the number of rotated files to keep.
	MaxBackups int `yaml:"max_backups" json:"max_backups"`
}

// Default returns the built-in configuration: the stock option grammar and
// the Python report generators run as local processes.
func Default() *Config {
	return &Config{
		OutputDir: DefaultOutputDir,
		Grammar: GrammarConfig{
			Short: DefaultShortOptions,
		},
		Generators: GeneratorsConfig{
			Transport: TransportExec,
			Single:    []string{"python", "-m", "cocopp.rungeneric1"},
			Two:       []string{"python", "-m", "cocopp.rungeneric2"},
			Many:      []string{"python", "-m", "cocopp.rungenericmany"},
		},
		Log: LogConfig{
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
	}
}

// Validate checks the configuration for values the dispatcher cannot use.
func (c *Config) Validate() error {
	if c.OutputDir == "" {
		return fmt.Errorf("output_dir must not be empty")
	}

	switch c.Generators.Transport {
	case TransportExec, TransportDocker:
	default:
		return fmt.Errorf("invalid generators.transport %q (valid: exec, docker)", c.Generators.Transport)
	}

	for _, kind := range []model.ReportKind{model.ReportSingle, model.ReportTwo, model.ReportMany} {
		if len(c.Generators.Command(kind)) == 0 {
			return fmt.Errorf("generators.%s must name a command", kind)
		}
	}

	if c.Generators.Transport == TransportDocker && c.Docker.Image == "" {
		return fmt.Errorf("docker.image is required with the docker transport")
	}

	if c.Log.MaxSizeMB < 0 || c.Log.MaxBackups < 0 {
		return fmt.Errorf("log.max_size_mb and log.max_backups must not be negative")
	}
	return nil
}

// Find searches for a configuration file in dir.
//
// The candidates are checked in order:
//  1. <dir>/cocopp.yaml
//  2. <dir>/cocopp.yml
//  3. <dir>/cocopp.json
//
// Returns an empty path when none exists.
func Find(dir string) string {
	candidates := []string{
		filepath.Join(dir, "cocopp.yaml"),
		filepath.Join(dir, "cocopp.yml"),
		filepath.Join(dir, "cocopp.json"),
	}

	for _, path := range candidates {
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// Resolve picks the configuration file to use: the path in envPath when
// set, otherwise the first file Find locates in dir.
func Resolve(envPath, dir string) string {
	if envPath != "" {
		return envPath
	}
	return Find(dir)
}

// Load reads the configuration file at path on top of Default. An empty
// path returns the defaults.
//
// The format follows the extension: ".yaml"/".yml" are parsed with yaml.v3,
// ".json"/".jsonc" have their comments stripped by jsonc before being
// decoded with encoding/json.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, model.WrapCLIError(model.ExitGeneralError,
				fmt.Sprintf("configuration file not found: %s", path), err)
		}
		return nil, fmt.Errorf("failed to read configuration file: %w", err)
	}

	if err := decode(path, data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %s: %w", path, err)
	}
	cfg.Path = path

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration file %s: %w", path, err)
	}
	return cfg, nil
}

func decode(path string, data []byte, cfg *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, cfg)
	case ".json", ".jsonc":
		// Strip // and /* */ comments and trailing commas first.
		return json.Unmarshal(jsonc.ToJSON(data), cfg)
	default:
		return fmt.Errorf("unsupported configuration format %q (use .yaml, .yml, .json or .jsonc)", filepath.Ext(path))
	}
}
