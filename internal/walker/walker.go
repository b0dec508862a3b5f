// Package walker enumerates a project tree in pre-order and reports it to a visitor.
package walker

import (
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"

	"github.com/tjgokken/solmap/internal/exclusion"
	"github.com/tjgokken/solmap/internal/types"
)

const (
	// errorRootStatFormat is used when the root cannot be inspected.
	errorRootStatFormat = "stat root %s: %w"
	// errorReadDirectoryFormat is used when a directory cannot be enumerated.
	errorReadDirectoryFormat = "reading directory %s: %w"
	// errorNilVisitor is used when Walk receives no visitor.
	errorNilVisitor = "walker: visitor is nil"

	rootRelativePath = "."
)

var (
	// ErrRootNotFound reports a missing export root.
	ErrRootNotFound = errors.New("root directory does not exist")
	// ErrRootNotDirectory reports an export root that is a regular file.
	ErrRootNotDirectory = errors.New("root path is not a directory")
)

// Directory describes a visited directory.
type Directory struct {
	Name         string
	Path         string
	RelativePath string
	Depth        int
}

// File describes a visited file. Depth is the depth of the containing directory plus one.
type File struct {
	types.FileEntry
	RelativePath string
	Depth        int
}

// Visitor receives the traversal. Returning an error aborts the walk.
type Visitor interface {
	EnterDirectory(directory Directory) error
	VisitFile(file File) error
	LeaveDirectory(directory Directory) error
}

// Walker traverses one filesystem with one exclusion policy.
type Walker struct {
	Filesystem billy.Filesystem
	Policy     *exclusion.Policy
}

// New returns a walker over the operating system filesystem.
func New(policy *exclusion.Policy) Walker {
	return Walker{Filesystem: osfs.New(string(filepath.Separator)), Policy: policy}
}

// Walk visits root, then each retained subdirectory recursively in enumeration order,
// then each retained file of root. Any enumeration failure aborts the walk.
func (walker Walker) Walk(root string, visitor Visitor) error {
	if visitor == nil {
		return errors.New(errorNilVisitor)
	}
	rootInfo, statError := walker.Filesystem.Stat(root)
	if statError != nil {
		if errors.Is(statError, os.ErrNotExist) {
			return fmt.Errorf(errorRootStatFormat, root, ErrRootNotFound)
		}
		return fmt.Errorf(errorRootStatFormat, root, statError)
	}
	if !rootInfo.IsDir() {
		return fmt.Errorf(errorRootStatFormat, root, ErrRootNotDirectory)
	}
	rootDirectory := Directory{
		Name:         filepath.Base(root),
		Path:         root,
		RelativePath: rootRelativePath,
	}
	return walker.walkDirectory(rootDirectory, visitor)
}

func (walker Walker) walkDirectory(directory Directory, visitor Visitor) error {
	if err := visitor.EnterDirectory(directory); err != nil {
		return err
	}

	entries, readError := walker.Filesystem.ReadDir(directory.Path)
	if readError != nil {
		return fmt.Errorf(errorReadDirectoryFormat, directory.Path, readError)
	}

	var files []File
	for _, entry := range entries {
		entryName := entry.Name()
		entryPath := walker.Filesystem.Join(directory.Path, entryName)
		relativePath := joinRelative(directory.RelativePath, entryName)
		if entry.IsDir() {
			if walker.Policy.SkipDirectoryEntry(relativePath, entryName) {
				continue
			}
			child := Directory{
				Name:         entryName,
				Path:         entryPath,
				RelativePath: relativePath,
				Depth:        directory.Depth + 1,
			}
			if err := walker.walkDirectory(child, visitor); err != nil {
				return err
			}
			continue
		}
		if walker.Policy.SkipFileEntry(relativePath, entryName) {
			continue
		}
		files = append(files, File{
			FileEntry: types.FileEntry{
				Name:      entryName,
				Extension: filepath.Ext(entryName),
				Path:      entryPath,
			},
			RelativePath: relativePath,
			Depth:        directory.Depth + 1,
		})
	}

	for _, file := range files {
		if err := visitor.VisitFile(file); err != nil {
			return err
		}
	}

	return visitor.LeaveDirectory(directory)
}

func joinRelative(parent string, name string) string {
	if parent == rootRelativePath || parent == "" {
		return name
	}
	return path.Join(parent, name)
}
