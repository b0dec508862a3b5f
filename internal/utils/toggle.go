package utils

import "strings"

// ToggleAcceptedValues lists the literals ParseToggle understands.
const ToggleAcceptedValues = "true, false, yes, no, on, off, 1, 0"

var toggleLiterals = map[string]bool{
	"true":  true,
	"t":     true,
	"1":     true,
	"yes":   true,
	"y":     true,
	"on":    true,
	"false": false,
	"f":     false,
	"0":     false,
	"no":    false,
	"n":     false,
	"off":   false,
}

// ParseToggle reads a boolean literal, case-insensitively and ignoring surrounding
// spaces. The second result is false for unknown literals.
func ParseToggle(value string) (bool, bool) {
	parsed, known := toggleLiterals[strings.ToLower(strings.TrimSpace(value))]
	return parsed, known
}
