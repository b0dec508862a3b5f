package walker_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/google/go-cmp/cmp"

	"github.com/tjgokken/solmap/internal/exclusion"
	"github.com/tjgokken/solmap/internal/types"
	"github.com/tjgokken/solmap/internal/walker"
)

const projectRoot = "Proj"

// recordingVisitor flattens the traversal into readable events.
type recordingVisitor struct {
	events []string
}

func (visitor *recordingVisitor) EnterDirectory(directory walker.Directory) error {
	visitor.events = append(visitor.events, "enter "+directory.RelativePath)
	return nil
}

func (visitor *recordingVisitor) VisitFile(file walker.File) error {
	visitor.events = append(visitor.events, "file "+file.RelativePath)
	return nil
}

func (visitor *recordingVisitor) LeaveDirectory(directory walker.Directory) error {
	visitor.events = append(visitor.events, "leave "+directory.RelativePath)
	return nil
}

func newMemoryWalker(t *testing.T, files map[string]string) walker.Walker {
	t.Helper()
	filesystem := memfs.New()
	for filePath, content := range files {
		if strings.HasSuffix(filePath, "/") {
			if err := filesystem.MkdirAll(strings.TrimSuffix(filePath, "/"), 0o755); err != nil {
				t.Fatalf("mkdir %s: %v", filePath, err)
			}
			continue
		}
		if err := util.WriteFile(filesystem, filePath, []byte(content), 0o644); err != nil {
			t.Fatalf("write %s: %v", filePath, err)
		}
	}
	return walker.Walker{Filesystem: filesystem, Policy: exclusion.NewDefaultPolicy()}
}

func TestWalkOrderAndExclusions(t *testing.T) {
	treeWalker := newMemoryWalker(t, map[string]string{
		"Proj/Readme.sln":          "",
		"Proj/Program.cs":          "",
		"Proj/bin/Debug/app.dll":   "",
		"Proj/Src/A.cs":            "",
		"Proj/Src/Nested/B.cs":     "",
		"Proj/Src/obj/cache.cs":    "",
		"Proj/Src/Legacy.csproj":   "",
		"Proj/Tests/ATests.cs":     "",
		"Proj/Tests/node_modules/": "",
	})
	visitor := &recordingVisitor{}
	if err := treeWalker.Walk(projectRoot, visitor); err != nil {
		t.Fatalf("Walk error: %v", err)
	}
	expected := []string{
		"enter .",
		"enter Src",
		"enter Src/Nested",
		"file Src/Nested/B.cs",
		"leave Src/Nested",
		"file Src/A.cs",
		"leave Src",
		"enter Tests",
		"file Tests/ATests.cs",
		"leave Tests",
		"file Program.cs",
		"leave .",
	}
	if diff := cmp.Diff(expected, visitor.events); diff != "" {
		t.Fatalf("unexpected traversal (-want +got):\n%s", diff)
	}
}

func TestBuildTree(t *testing.T) {
	treeWalker := newMemoryWalker(t, map[string]string{
		"Proj/Src/A.cs":         "",
		"Proj/Src/B.cs":         "",
		"Proj/Docs/guide.md":    "",
		"Proj/Docs/.vs/state":   "",
		"Proj/Empty/":           "",
		"Proj/Proj.csproj":      "",
		"Proj/Src/Proj.sln.txt": "",
	})
	tree, buildError := treeWalker.BuildTree(projectRoot)
	if buildError != nil {
		t.Fatalf("BuildTree error: %v", buildError)
	}
	expected := &types.DirectoryNode{
		Name: "Proj",
		Path: "Proj",
		Directories: []*types.DirectoryNode{
			{
				Name:  "Docs",
				Path:  filepath.Join("Proj", "Docs"),
				Files: []types.FileEntry{{Name: "guide.md", Extension: ".md", Path: filepath.Join("Proj", "Docs", "guide.md")}},
			},
			{Name: "Empty", Path: filepath.Join("Proj", "Empty")},
			{
				Name: "Src",
				Path: filepath.Join("Proj", "Src"),
				Files: []types.FileEntry{
					{Name: "A.cs", Extension: ".cs", Path: filepath.Join("Proj", "Src", "A.cs")},
					{Name: "B.cs", Extension: ".cs", Path: filepath.Join("Proj", "Src", "B.cs")},
					{Name: "Proj.sln.txt", Extension: ".txt", Path: filepath.Join("Proj", "Src", "Proj.sln.txt")},
				},
			},
		},
	}
	if diff := cmp.Diff(expected, tree); diff != "" {
		t.Fatalf("unexpected tree (-want +got):\n%s", diff)
	}
}

func TestWalkOperatingSystemTree(t *testing.T) {
	rootDirectory := filepath.Join(t.TempDir(), projectRoot)
	for _, directoryPath := range []string{"Src", "bin"} {
		if err := os.MkdirAll(filepath.Join(rootDirectory, directoryPath), 0o755); err != nil {
			t.Fatalf("mkdir: %v", err)
		}
	}
	if err := os.WriteFile(filepath.Join(rootDirectory, "Src", "A.cs"), []byte("class A {}"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	tree, buildError := walker.New(exclusion.NewDefaultPolicy()).BuildTree(rootDirectory)
	if buildError != nil {
		t.Fatalf("BuildTree error: %v", buildError)
	}
	if tree.Name != projectRoot || len(tree.Directories) != 1 || tree.Directories[0].Name != "Src" {
		t.Fatalf("unexpected tree: %+v", tree)
	}
	if tree.Directories[0].Files[0].Path != filepath.Join(rootDirectory, "Src", "A.cs") {
		t.Fatalf("unexpected file path: %s", tree.Directories[0].Files[0].Path)
	}
}

func TestWalkRootErrors(t *testing.T) {
	treeWalker := newMemoryWalker(t, map[string]string{"Proj/file.cs": ""})
	visitor := &recordingVisitor{}

	missingError := treeWalker.Walk("Missing", visitor)
	if !errors.Is(missingError, walker.ErrRootNotFound) {
		t.Fatalf("expected ErrRootNotFound, got %v", missingError)
	}
	fileError := treeWalker.Walk("Proj/file.cs", visitor)
	if !errors.Is(fileError, walker.ErrRootNotDirectory) {
		t.Fatalf("expected ErrRootNotDirectory, got %v", fileError)
	}
	if len(visitor.events) != 0 {
		t.Fatalf("visitor must not be called on fatal root errors: %v", visitor.events)
	}
}

type failingVisitor struct {
	recordingVisitor
	failure error
}

func (visitor *failingVisitor) VisitFile(walker.File) error {
	return visitor.failure
}

func TestWalkStopsOnVisitorError(t *testing.T) {
	treeWalker := newMemoryWalker(t, map[string]string{"Proj/A/one.cs": "", "Proj/B/two.cs": ""})
	visitorFailure := errors.New("stop")
	visitor := &failingVisitor{failure: visitorFailure}
	if err := treeWalker.Walk(projectRoot, visitor); !errors.Is(err, visitorFailure) {
		t.Fatalf("expected visitor error, got %v", err)
	}
	for _, event := range visitor.events {
		if strings.HasPrefix(event, "enter B") {
			t.Fatalf("walk continued after visitor error: %v", visitor.events)
		}
	}
}

// unreadableDirectoryFilesystem refuses to list one directory.
type unreadableDirectoryFilesystem struct {
	billy.Filesystem
	unreadablePath string
}

func (filesystem unreadableDirectoryFilesystem) ReadDir(directoryPath string) ([]os.FileInfo, error) {
	if directoryPath == filesystem.unreadablePath {
		return nil, &os.PathError{Op: "readdir", Path: directoryPath, Err: os.ErrPermission}
	}
	return filesystem.Filesystem.ReadDir(directoryPath)
}

func withUnreadableDirectory(treeWalker walker.Walker, directoryPath string) walker.Walker {
	treeWalker.Filesystem = unreadableDirectoryFilesystem{Filesystem: treeWalker.Filesystem, unreadablePath: directoryPath}
	return treeWalker
}

func TestWalkAbortsWhenNestedDirectoryCannotBeListed(t *testing.T) {
	treeWalker := withUnreadableDirectory(newMemoryWalker(t, map[string]string{
		"Proj/Src/Deep/Inner.cs": "",
		"Proj/Src/A.cs":          "",
		"Proj/Tests/ATests.cs":   "",
		"Proj/Program.cs":        "",
	}), filepath.Join("Proj", "Src", "Deep"))

	visitor := &recordingVisitor{}
	walkError := treeWalker.Walk(projectRoot, visitor)
	if !errors.Is(walkError, os.ErrPermission) {
		t.Fatalf("expected the listing failure, got %v", walkError)
	}
	for _, event := range visitor.events {
		if event == "file Src/A.cs" || event == "enter Tests" || event == "leave ." {
			t.Fatalf("walk continued after a listing failure: %v", visitor.events)
		}
	}

	tree, buildError := treeWalker.BuildTree(projectRoot)
	if !errors.Is(buildError, os.ErrPermission) || tree != nil {
		t.Fatalf("expected BuildTree to fail without a partial tree, got %v, %v", tree, buildError)
	}
}

func TestWalkNeverListsExcludedDirectories(t *testing.T) {
	treeWalker := withUnreadableDirectory(newMemoryWalker(t, map[string]string{
		"Proj/bin/Debug/app.dll": "",
		"Proj/Src/A.cs":          "",
	}), filepath.Join("Proj", "bin"))

	visitor := &recordingVisitor{}
	if err := treeWalker.Walk(projectRoot, visitor); err != nil {
		t.Fatalf("excluded directory must not be listed, got %v", err)
	}
	expected := []string{"enter .", "enter Src", "file Src/A.cs", "leave Src", "leave ."}
	if diff := cmp.Diff(expected, visitor.events); diff != "" {
		t.Fatalf("unexpected traversal (-want +got):\n%s", diff)
	}
}
