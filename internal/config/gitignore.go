package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// GitIgnoreFileName is read from the export root when .gitignore exclusion is enabled.
const GitIgnoreFileName = ".gitignore"

// LoadGitIgnoreLines returns the pattern lines of the .gitignore at the root of
// rootDirectory. A missing file yields no lines.
//
// #nosec G304
func LoadGitIgnoreLines(rootDirectory string) ([]string, error) {
	gitIgnorePath := filepath.Join(rootDirectory, GitIgnoreFileName)
	fileHandle, openFileError := os.Open(gitIgnorePath)
	if openFileError != nil {
		if os.IsNotExist(openFileError) {
			return nil, nil
		}
		return nil, fmt.Errorf("open %s: %w", gitIgnorePath, openFileError)
	}
	defer fileHandle.Close()

	var patternLines []string
	scanner := bufio.NewScanner(fileHandle)
	for scanner.Scan() {
		trimmedLine := strings.TrimSpace(scanner.Text())
		if trimmedLine == "" || strings.HasPrefix(trimmedLine, "#") {
			continue
		}
		patternLines = append(patternLines, trimmedLine)
	}
	if scanError := scanner.Err(); scanError != nil {
		return nil, fmt.Errorf("read %s: %w", gitIgnorePath, scanError)
	}
	return patternLines, nil
}
