package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anneauger/coco/internal/model"
)

// writeTestFile writes content to name inside dir and returns the path.
func writeTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "ppdata", cfg.OutputDir)
	assert.Equal(t, "hvo:", cfg.Grammar.Short)
	assert.Equal(t, TransportExec, cfg.Generators.Transport)
	assert.Equal(t, DefaultLongOptions, cfg.Grammar.LongOptions())
	assert.Contains(t, cfg.Grammar.LongOptions(), "rld-single-fcts")
	assert.NoError(t, cfg.Validate())
}

func TestGrammarConfig_LongOptions(t *testing.T) {
	g := GrammarConfig{LongExtra: []string{"my-opt=", "quick"}}
	long := g.LongOptions()

	assert.Len(t, long, len(DefaultLongOptions)+2)
	assert.Equal(t, []string{"my-opt=", "quick"}, long[len(long)-2:])
	// The defaults are never mutated by appending extras.
	assert.NotContains(t, DefaultLongOptions, "quick")
}

func TestGeneratorsConfig_Command(t *testing.T) {
	g := Default().Generators

	assert.Equal(t, []string{"python", "-m", "cocopp.rungeneric1"}, g.Command(model.ReportSingle))
	assert.Equal(t, []string{"python", "-m", "cocopp.rungeneric2"}, g.Command(model.ReportTwo))
	assert.Equal(t, []string{"python", "-m", "cocopp.rungenericmany"}, g.Command(model.ReportMany))
	assert.Nil(t, g.Command(model.ReportKind("other")))
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{
			name:   "empty output dir",
			mutate: func(c *Config) { c.OutputDir = "" },
			errMsg: "output_dir",
		},
		{
			name:   "unknown transport",
			mutate: func(c *Config) { c.Generators.Transport = "ssh" },
			errMsg: "transport",
		},
		{
			name:   "missing many command",
			mutate: func(c *Config) { c.Generators.Many = nil },
			errMsg: "generators.many",
		},
		{
			name:   "docker without image",
			mutate: func(c *Config) { c.Generators.Transport = TransportDocker },
			errMsg: "docker.image",
		},
		{
			name:   "negative rotation settings",
			mutate: func(c *Config) { c.Log.MaxBackups = -1 },
			errMsg: "log.max",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestFind(t *testing.T) {
	t.Run("no config file", func(t *testing.T) {
		assert.Empty(t, Find(t.TempDir()))
	})

	t.Run("yaml preferred over json", func(t *testing.T) {
		dir := t.TempDir()
		writeTestFile(t, dir, "cocopp.json", "{}")
		yamlPath := writeTestFile(t, dir, "cocopp.yaml", "output_dir: out\n")
		assert.Equal(t, yamlPath, Find(dir))
	})

	t.Run("yml is found", func(t *testing.T) {
		dir := t.TempDir()
		path := writeTestFile(t, dir, "cocopp.yml", "output_dir: out\n")
		assert.Equal(t, path, Find(dir))
	})

	t.Run("directory with config name is skipped", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.Mkdir(filepath.Join(dir, "cocopp.yaml"), 0755))
		path := writeTestFile(t, dir, "cocopp.json", "{}")
		assert.Equal(t, path, Find(dir))
	})
}

func TestResolve(t *testing.T) {
	dir := t.TempDir()
	found := writeTestFile(t, dir, "cocopp.yaml", "")

	assert.Equal(t, "/etc/cocopp.yaml", Resolve("/etc/cocopp.yaml", dir))
	assert.Equal(t, found, Resolve("", dir))
}

func TestLoad_EmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_YAML(t *testing.T) {
	path := writeTestFile(t, t.TempDir(), "cocopp.yaml", `
output_dir: reports
grammar:
  long_extra: ["my-opt="]
generators:
  transport: docker
  single: [python3, -m, cocopp.rungeneric1]
docker:
  image: ghcr.io/example/cocopp:latest
  pull: true
log:
  file: cocopp.log
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, path, cfg.Path)
	assert.Equal(t, "reports", cfg.OutputDir)
	assert.Equal(t, "hvo:", cfg.Grammar.Short, "unset fields keep their defaults")
	assert.Contains(t, cfg.Grammar.LongOptions(), "my-opt=")
	assert.Equal(t, TransportDocker, cfg.Generators.Transport)
	assert.Equal(t, []string{"python3", "-m", "cocopp.rungeneric1"}, cfg.Generators.Single)
	assert.Equal(t, []string{"python", "-m", "cocopp.rungeneric2"}, cfg.Generators.Two)
	assert.Equal(t, "ghcr.io/example/cocopp:latest", cfg.Docker.Image)
	assert.True(t, cfg.Docker.Pull)
	assert.Equal(t, "cocopp.log", cfg.Log.File)
	assert.Equal(t, 10, cfg.Log.MaxSizeMB)
}

// TestLoad_JSONC verifies that comments and trailing commas are accepted,
// as they are in most hand-written JSON configuration files.
func TestLoad_JSONC(t *testing.T) {
	path := writeTestFile(t, t.TempDir(), "cocopp.json", `{
  // where the reports go
  "output_dir": "out",
  /* block comment */
  "generators": {
    "many": ["python", "-m", "my.rungenericmany"],
  },
}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "out", cfg.OutputDir)
	assert.Equal(t, []string{"python", "-m", "my.rungenericmany"}, cfg.Generators.Many)
	assert.Equal(t, TransportExec, cfg.Generators.Transport)
}

func TestLoad_Errors(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(dir, "absent.yaml"))
		var cliErr *model.CLIError
		require.ErrorAs(t, err, &cliErr)
		assert.Equal(t, model.ExitGeneralError, cliErr.Code)
	})

	t.Run("malformed yaml", func(t *testing.T) {
		path := writeTestFile(t, dir, "bad.yaml", "output_dir: [unclosed\n")
		_, err := Load(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to parse")
	})

	t.Run("unsupported extension", func(t *testing.T) {
		path := writeTestFile(t, dir, "cocopp.toml", "output_dir = 'x'\n")
		_, err := Load(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported configuration format")
	})

	t.Run("invalid values", func(t *testing.T) {
		path := writeTestFile(t, dir, "invalid.yaml", "generators:\n  transport: ssh\n")
		_, err := Load(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid configuration file")
	})
}
