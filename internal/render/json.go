package render

import (
	"encoding/json"

	"github.com/tjgokken/solmap/internal/types"
)

const (
	indentPrefix = ""
	indentSpacer = "  "
)

// JSONDirectory is a directory node of the JSON document. Children holds
// *JSONDirectory and *JSONFile values, directories first, in traversal order.
type JSONDirectory struct {
	Type     string `json:"type"`
	Name     string `json:"name"`
	Children []any  `json:"children"`
}

// JSONFile is a file node of the JSON document.
type JSONFile struct {
	Type      string      `json:"type"`
	Name      string      `json:"name"`
	Extension string      `json:"extension,omitempty"`
	Classes   []JSONClass `json:"classes,omitempty"`
	Error     string      `json:"error,omitempty"`
}

// JSONClass lists one declared type and its methods.
type JSONClass struct {
	Name    string   `json:"name"`
	Methods []string `json:"methods"`
}

// jsonRenderer materializes the tree and marshals it bottom-up.
type jsonRenderer struct{}

func (jsonRenderer) marksAnnotationErrors() bool { return false }

func (jsonRenderer) render(exportSession *session) (string, error) {
	tree, buildError := exportSession.buildTree()
	if buildError != nil {
		return "", buildError
	}
	encoded, jsonEncodeError := json.MarshalIndent(buildJSONDirectory(exportSession, tree), indentPrefix, indentSpacer)
	if jsonEncodeError != nil {
		return "", jsonEncodeError
	}
	return string(encoded) + "\n", nil
}

func buildJSONDirectory(exportSession *session, directory *types.DirectoryNode) *JSONDirectory {
	node := &JSONDirectory{
		Type:     types.NodeTypeDirectory,
		Name:     directory.Name,
		Children: make([]any, 0, len(directory.Directories)+len(directory.Files)),
	}
	for _, childDirectory := range directory.Directories {
		node.Children = append(node.Children, buildJSONDirectory(exportSession, childDirectory))
	}
	for _, file := range directory.Files {
		node.Children = append(node.Children, buildJSONFile(exportSession, file))
	}
	return node
}

func buildJSONFile(exportSession *session, file types.FileEntry) *JSONFile {
	node := &JSONFile{Type: types.NodeTypeFile, Name: file.Name, Extension: file.Extension}
	fileAnnotation, present := exportSession.annotate(file)
	if !present {
		return node
	}
	if fileAnnotation.Err != nil {
		node.Error = fileAnnotation.Err.Error()
		return node
	}
	for _, unit := range fileAnnotation.Units {
		methods := unit.Methods
		if methods == nil {
			methods = []string{}
		}
		node.Classes = append(node.Classes, JSONClass{Name: unit.TypeName, Methods: methods})
	}
	return node
}
