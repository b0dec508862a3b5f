package cli

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/cobra"
)

func TestRegisterToggleFlagParsesValues(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name        string
		arguments   []string
		expected    bool
		expectError bool
	}{
		{
			name:      "defaults_to_false",
			arguments: []string{},
			expected:  false,
		},
		{
			name:      "sets_true_without_value",
			arguments: []string{"--code"},
			expected:  true,
		},
		{
			name:      "shorthand",
			arguments: []string{"-c"},
			expected:  true,
		},
		{
			name:      "sets_false_with_equals",
			arguments: []string{"--code=false"},
			expected:  false,
		},
		{
			name:      "sets_false_with_no_literal",
			arguments: []string{"--code", "no"},
			expected:  false,
		},
		{
			name:      "sets_true_with_on_literal",
			arguments: []string{"--code", "on"},
			expected:  true,
		},
		{
			name:      "ignores_non_boolean_trailing_value",
			arguments: []string{"--code", "src"},
			expected:  true,
		},
		{
			name:      "shorthand_with_no_literal",
			arguments: []string{"-c", "no"},
			expected:  false,
		},
		{
			name:      "shorthand_keeps_path_argument",
			arguments: []string{"-c", "src"},
			expected:  true,
		},
		{
			name:        "rejects_invalid_literal",
			arguments:   []string{"--code=maybe"},
			expectError: true,
		},
	}

	for _, testCase := range testCases {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()
			command := &cobra.Command{Use: "toggle-test"}
			var flagValue bool
			registerToggleFlag(command.Flags(), &flagValue, "code", "c", "include code details")
			parseErr := command.ParseFlags(normalizeToggleArguments(command, testCase.arguments))
			if testCase.expectError {
				if parseErr == nil {
					t.Fatalf("expected parse error for arguments %v", testCase.arguments)
				}
				return
			}
			if parseErr != nil {
				t.Fatalf("unexpected parse error: %v", parseErr)
			}
			if flagValue != testCase.expected {
				t.Fatalf("expected %t, got %t", testCase.expected, flagValue)
			}
			if len(testCase.arguments) == 0 && command.Flags().Changed("code") {
				t.Fatalf("expected flag to remain unchanged")
			}
		})
	}
}

func TestNormalizeToggleArgumentsStopsAtTerminator(t *testing.T) {
	command := &cobra.Command{Use: "toggle-test"}
	var flagValue bool
	registerToggleFlag(command.Flags(), &flagValue, "watch", "", "watch")
	normalized := normalizeToggleArguments(command, []string{"--watch", "yes", "--", "--watch", "no"})
	expected := []string{"--watch=yes", "--", "--watch", "no"}
	if len(normalized) != len(expected) {
		t.Fatalf("expected %v, got %v", expected, normalized)
	}
	for index := range expected {
		if normalized[index] != expected[index] {
			t.Fatalf("expected %v, got %v", expected, normalized)
		}
	}
}

func TestNormalizeToggleArgumentsRewritesShorthands(t *testing.T) {
	rootCommand := newRootCommand(dependencies{})
	normalized := normalizeToggleArguments(rootCommand, []string{"export", "-c", "no", "-w", "off", "-e", "no", "--verbose", "yes", "Proj"})
	expected := []string{"export", "-c=no", "-w=off", "-e", "no", "--verbose", "yes", "Proj"}
	if diff := cmp.Diff(expected, normalized); diff != "" {
		t.Fatalf("unexpected arguments (-want +got):\n%s", diff)
	}
}
