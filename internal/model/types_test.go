package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestReportKind_String verifies the string form used in log lines and labels.
func TestReportKind_String(t *testing.T) {
	tests := []struct {
		kind     ReportKind
		expected string
	}{
		{ReportSingle, "single"},
		{ReportTwo, "two"},
		{ReportMany, "many"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.kind.String())
		})
	}
}

func TestReportKind_IsValid(t *testing.T) {
	assert.True(t, ReportSingle.IsValid())
	assert.True(t, ReportTwo.IsValid())
	assert.True(t, ReportMany.IsValid())
	assert.False(t, ReportKind("three").IsValid())
	assert.False(t, ReportKind("").IsValid())
}

func TestReportKind_IsComparison(t *testing.T) {
	assert.False(t, ReportSingle.IsComparison())
	assert.True(t, ReportTwo.IsComparison())
	assert.True(t, ReportMany.IsComparison())
}

// TestParseReportKind verifies string-to-kind conversion,
// including case normalization and error cases.
func TestParseReportKind(t *testing.T) {
	tests := []struct {
		input    string
		expected ReportKind
		hasError bool
	}{
		{"single", ReportSingle, false},
		{"two", ReportTwo, false},
		{"many", ReportMany, false},
		{"MANY", ReportMany, false}, // case insensitive
		{"pair", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			result, err := ParseReportKind(tt.input)
			if tt.hasError {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.expected, result)
			}
		})
	}
}

func TestRunConfig_Validate(t *testing.T) {
	tests := []struct {
		name     string
		cfg      RunConfig
		hasError bool
	}{
		{"defaults", RunConfig{OutputDir: "ppdata"}, false},
		{"max hurry", RunConfig{OutputDir: "ppdata", InAHurry: MaxInAHurry}, false},
		{"negative hurry", RunConfig{OutputDir: "ppdata", InAHurry: -1}, true},
		{"hurry above max", RunConfig{OutputDir: "ppdata", InAHurry: 1001}, true},
		{"empty output dir", RunConfig{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.hasError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

// TestRunConfig_Environ checks that every setting reaches out-of-process
// collaborators in a stable order.
func TestRunConfig_Environ(t *testing.T) {
	cfg := RunConfig{
		RunID:       "abc",
		OutputDir:   "out",
		Verbose:     true,
		InAHurry:    500,
		GenerateSVG: false,
	}

	assert.Equal(t, []string{
		"COCOPP_RUN_ID=abc",
		"COCOPP_OUTPUT_DIR=out",
		"COCOPP_VERBOSE=1",
		"COCOPP_IN_A_HURRY=500",
		"COCOPP_GENERATE_SVG=0",
	}, cfg.Environ())
}

func TestCLIError(t *testing.T) {
	t.Run("without underlying error", func(t *testing.T) {
		err := NewCLIError(ExitUsageError, "option --bogus not recognized")
		assert.Equal(t, "option --bogus not recognized", err.Error())
		assert.True(t, err.IsUsage())
		assert.Nil(t, err.Unwrap())
	})

	t.Run("with underlying error", func(t *testing.T) {
		inner := errors.New("exit status 3")
		err := WrapCLIError(ExitGeneralError, "single-algorithm report failed", inner)
		assert.Equal(t, "single-algorithm report failed: exit status 3", err.Error())
		assert.False(t, err.IsUsage())
		assert.True(t, errors.Is(err, inner))
	})

	t.Run("errors.As finds CLIError", func(t *testing.T) {
		var wrapped error = WrapCLIError(ExitUsageError, "bad", nil)
		var cliErr *CLIError
		require.True(t, errors.As(wrapped, &cliErr))
		assert.Equal(t, ExitUsageError, cliErr.Code)
	})
}
