package render

import (
	"fmt"
	"strings"

	"github.com/tjgokken/solmap/internal/types"
)

const (
	mermaidHeader        = "graph TD"
	mermaidIndent        = "    "
	mermaidNodeIDFormat  = "n%d"
	mermaidEdgeFormat    = "%s --> %s"
	mermaidLabeledFormat = "%s -->|%s| %s"
	mermaidClassLabel    = "class"
	mermaidMethodLabel   = "method"
	mermaidErrorLabel    = "error"
)

type mermaidShape int

const (
	mermaidDirectoryShape mermaidShape = iota
	mermaidFileShape
	mermaidClassShape
	mermaidMethodShape
	mermaidErrorShape
)

var mermaidLabelEscaper = strings.NewReplacer(`"`, "#quot;", "\n", " ", "\r", "")

// mermaidNode is one arena entry. Identifiers are positional, so every node
// of a diagram has a distinct id even when names repeat.
type mermaidNode struct {
	label string
	shape mermaidShape
}

type mermaidEdge struct {
	from  int
	to    int
	label string
}

// mermaidGraph is the node arena of one diagram.
type mermaidGraph struct {
	nodes []mermaidNode
	edges []mermaidEdge
}

func (graph *mermaidGraph) add(label string, shape mermaidShape) int {
	graph.nodes = append(graph.nodes, mermaidNode{label: label, shape: shape})
	return len(graph.nodes) - 1
}

func (graph *mermaidGraph) connect(from, to int, label string) {
	graph.edges = append(graph.edges, mermaidEdge{from: from, to: to, label: label})
}

func mermaidNodeID(index int) string {
	return fmt.Sprintf(mermaidNodeIDFormat, index)
}

func (node mermaidNode) declaration(identifier string) string {
	label := `"` + mermaidLabelEscaper.Replace(node.label) + `"`
	switch node.shape {
	case mermaidDirectoryShape:
		return identifier + "[" + label + "]"
	case mermaidFileShape:
		return identifier + "(" + label + ")"
	case mermaidClassShape:
		return identifier + "{{" + label + "}}"
	case mermaidMethodShape:
		return identifier + "([" + label + "])"
	default:
		return identifier + ">" + label + "]"
	}
}

func (graph *mermaidGraph) String() string {
	var builder strings.Builder
	builder.WriteString(mermaidHeader)
	builder.WriteByte('\n')
	for index, node := range graph.nodes {
		builder.WriteString(mermaidIndent)
		builder.WriteString(node.declaration(mermaidNodeID(index)))
		builder.WriteByte('\n')
	}
	for _, edge := range graph.edges {
		builder.WriteString(mermaidIndent)
		if edge.label == "" {
			builder.WriteString(fmt.Sprintf(mermaidEdgeFormat, mermaidNodeID(edge.from), mermaidNodeID(edge.to)))
		} else {
			builder.WriteString(fmt.Sprintf(mermaidLabeledFormat, mermaidNodeID(edge.from), edge.label, mermaidNodeID(edge.to)))
		}
		builder.WriteByte('\n')
	}
	return builder.String()
}

// mermaidRenderer draws the tree as a top-down flowchart.
type mermaidRenderer struct{}

func (mermaidRenderer) marksAnnotationErrors() bool { return false }

func (mermaidRenderer) render(exportSession *session) (string, error) {
	tree, buildError := exportSession.buildTree()
	if buildError != nil {
		return "", buildError
	}
	graph := &mermaidGraph{}
	addMermaidDirectory(exportSession, graph, tree, mermaidNoParent)
	return graph.String(), nil
}

const mermaidNoParent = -1

func addMermaidDirectory(exportSession *session, graph *mermaidGraph, directory *types.DirectoryNode, parentIndex int) int {
	directoryIndex := graph.add(directory.Name, mermaidDirectoryShape)
	if parentIndex != mermaidNoParent {
		graph.connect(parentIndex, directoryIndex, "")
	}
	for _, childDirectory := range directory.Directories {
		addMermaidDirectory(exportSession, graph, childDirectory, directoryIndex)
	}
	for _, file := range directory.Files {
		fileIndex := graph.add(file.Name, mermaidFileShape)
		graph.connect(directoryIndex, fileIndex, "")
		addMermaidAnnotation(exportSession, graph, fileIndex, file)
	}
	return directoryIndex
}

func addMermaidAnnotation(exportSession *session, graph *mermaidGraph, fileIndex int, file types.FileEntry) {
	fileAnnotation, present := exportSession.annotate(file)
	if !present {
		return
	}
	if fileAnnotation.Err != nil {
		errorIndex := graph.add(fileAnnotation.Err.Error(), mermaidErrorShape)
		graph.connect(fileIndex, errorIndex, mermaidErrorLabel)
		return
	}
	for _, unit := range fileAnnotation.Units {
		classIndex := graph.add(unit.TypeName, mermaidClassShape)
		graph.connect(fileIndex, classIndex, mermaidClassLabel)
		for _, method := range unit.Methods {
			methodIndex := graph.add(method, mermaidMethodShape)
			graph.connect(classIndex, methodIndex, mermaidMethodLabel)
		}
	}
}
