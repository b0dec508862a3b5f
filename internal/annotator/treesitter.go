//go:build cgo

package annotator

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/tjgokken/solmap/internal/types"
)

const (
	nameField       = "name"
	bodyField       = "body"
	definitionField = "definition"
	errorNodeType   = "ERROR"

	malformedSourceLineFormat = "%w near line %d"
)

// grammar describes how declarations look in one tree-sitter language.
type grammar struct {
	name     string
	language func() *sitter.Language
	// typeNodes are declarations reported as code units.
	typeNodes map[string]struct{}
	// methodNodes are declarations reported as methods of the enclosing type.
	methodNodes map[string]struct{}
	// bodyNodes locate a declaration body when the grammar exposes no body field.
	bodyNodes map[string]struct{}
	// collect overrides the generic declaration walk.
	collect func(root *sitter.Node, source []byte) []types.CodeUnit
}

// treeSitterAnnotator parses with a fresh parser per call, so one instance can
// serve concurrent exports.
type treeSitterAnnotator struct {
	grammar *grammar
}

func newTreeSitterAnnotator(grammar *grammar) Annotator {
	return &treeSitterAnnotator{grammar: grammar}
}

// Parse implements Annotator.
func (annotator *treeSitterAnnotator) Parse(text []byte) ([]types.CodeUnit, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(annotator.grammar.language())

	tree, parseError := parser.ParseCtx(context.Background(), nil, text)
	if parseError != nil {
		return nil, &ParseError{Language: annotator.grammar.name, Err: parseError}
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return nil, &ParseError{
			Language: annotator.grammar.name,
			Err:      fmt.Errorf(malformedSourceLineFormat, ErrMalformedSource, firstErrorLine(root)),
		}
	}
	if annotator.grammar.collect != nil {
		return annotator.grammar.collect(root, text), nil
	}
	var units []types.CodeUnit
	annotator.collectDeclarations(root, text, &units)
	return units, nil
}

// collectDeclarations appends type declarations in pre-order, so nested types follow
// their enclosing type.
func (annotator *treeSitterAnnotator) collectDeclarations(node *sitter.Node, source []byte, units *[]types.CodeUnit) {
	for childIndex := 0; childIndex < int(node.NamedChildCount()); childIndex++ {
		child := node.NamedChild(childIndex)
		if _, isType := annotator.grammar.typeNodes[child.Type()]; !isType {
			annotator.collectDeclarations(child, source, units)
			continue
		}
		*units = append(*units, types.CodeUnit{TypeName: declarationName(child, source)})
		unitIndex := len(*units) - 1
		body := annotator.declarationBody(child)
		if body == nil {
			continue
		}
		(*units)[unitIndex].Methods = annotator.collectMethods(body, source)
		annotator.collectDeclarations(body, source, units)
	}
}

func (annotator *treeSitterAnnotator) collectMethods(body *sitter.Node, source []byte) []string {
	var methods []string
	for childIndex := 0; childIndex < int(body.NamedChildCount()); childIndex++ {
		member := body.NamedChild(childIndex)
		if definition := member.ChildByFieldName(definitionField); definition != nil {
			member = definition
		}
		if _, isMethod := annotator.grammar.methodNodes[member.Type()]; isMethod {
			methods = append(methods, declarationName(member, source))
		}
	}
	return methods
}

func (annotator *treeSitterAnnotator) declarationBody(declaration *sitter.Node) *sitter.Node {
	if body := declaration.ChildByFieldName(bodyField); body != nil {
		return body
	}
	for childIndex := 0; childIndex < int(declaration.NamedChildCount()); childIndex++ {
		child := declaration.NamedChild(childIndex)
		if _, isBody := annotator.grammar.bodyNodes[child.Type()]; isBody {
			return child
		}
	}
	return nil
}

var identifierNodes = map[string]struct{}{
	"identifier":          {},
	"type_identifier":     {},
	"property_identifier": {},
	"field_identifier":    {},
}

func declarationName(declaration *sitter.Node, source []byte) string {
	if name := declaration.ChildByFieldName(nameField); name != nil {
		return name.Content(source)
	}
	for childIndex := 0; childIndex < int(declaration.NamedChildCount()); childIndex++ {
		child := declaration.NamedChild(childIndex)
		if _, isIdentifier := identifierNodes[child.Type()]; isIdentifier {
			return child.Content(source)
		}
	}
	return ""
}

// firstErrorLine returns the 1-based line of the first error or missing node.
func firstErrorLine(node *sitter.Node) int {
	if node.Type() == errorNodeType || node.IsMissing() {
		return int(node.StartPoint().Row) + 1
	}
	for childIndex := 0; childIndex < int(node.ChildCount()); childIndex++ {
		child := node.Child(childIndex)
		if child.HasError() || child.IsMissing() {
			return firstErrorLine(child)
		}
	}
	return int(node.StartPoint().Row) + 1
}

func nodeSet(nodeTypes ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(nodeTypes))
	for _, nodeType := range nodeTypes {
		set[nodeType] = struct{}{}
	}
	return set
}
