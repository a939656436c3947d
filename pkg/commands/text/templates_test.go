package text

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLongDesc(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
		{
			name:     "simple string",
			input:    "Runs transfers.",
			expected: "Runs transfers.",
		},
		{
			name:     "surrounding whitespace",
			input:    "   Runs transfers.   ",
			expected: "Runs transfers.",
		},
		{
			name: "indented raw string",
			input: `
				Provisions every configured transfer.

				Stages already completed are skipped.
			`,
			expected: "Provisions every configured transfer.\n\nStages already completed are skipped.",
		},
		{
			name: "nested indentation is kept",
			input: `
				Steps:
				  1. policy
				  2. locations
			`,
			expected: "Steps:\n  1. policy\n  2. locations",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, LongDesc(tt.input))
		})
	}
}

func TestExamples(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "empty string",
			input:    "",
			expected: "",
		},
		{
			name:     "single line",
			input:    "datasync-transfer transfers run",
			expected: "  datasync-transfer transfers run",
		},
		{
			name: "indented raw string",
			input: `
				# Run every transfer
				datasync-transfer transfers run -c datasync.yaml

				# Run one transfer
				datasync-transfer transfers run -t events
			`,
			expected: "  # Run every transfer\n" +
				"  datasync-transfer transfers run -c datasync.yaml\n" +
				"\n" +
				"  # Run one transfer\n" +
				"  datasync-transfer transfers run -t events",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.expected, Examples(tt.input))
		})
	}
}
