package utils

import (
	"path/filepath"
	"strings"
)

// DeduplicatePatterns removes duplicate patterns from a slice while preserving order.
// The first occurrence of each unique pattern is kept.
func DeduplicatePatterns(patterns []string) []string {
	encounteredPatterns := make(map[string]struct{})
	result := make([]string, 0, len(patterns))
	for _, pattern := range patterns {
		if _, exists := encounteredPatterns[pattern]; !exists {
			encounteredPatterns[pattern] = struct{}{}
			result = append(result, pattern)
		}
	}
	return result
}

// SplitList flattens comma separated values, trims them, drops empty entries and
// removes duplicates.
func SplitList(values []string) []string {
	var items []string
	for _, value := range values {
		for _, item := range strings.Split(value, ",") {
			if trimmedItem := strings.TrimSpace(item); trimmedItem != "" {
				items = append(items, trimmedItem)
			}
		}
	}
	return DeduplicatePatterns(items)
}

// OutputFileName names the saved document of rootPath: the root directory name plus
// the format extension.
func OutputFileName(rootPath string, extension string) string {
	rootName := filepath.Base(filepath.Clean(rootPath))
	if rootName == string(filepath.Separator) || rootName == "." || rootName == "" {
		rootName = "root"
	}
	return rootName + extension
}
