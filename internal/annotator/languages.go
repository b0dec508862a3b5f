//go:build cgo

package annotator

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/csharp"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/tjgokken/solmap/internal/types"
)

const (
	goTypeDeclarationNode   = "type_declaration"
	goTypeSpecNode          = "type_spec"
	goTypeAliasNode         = "type_alias"
	goMethodDeclarationNode = "method_declaration"
	goReceiverField         = "receiver"
	goTypeField             = "type"
	goPointerPrefix         = "*"
	goTypeParameterOpening  = "["
)

var csharpGrammar = &grammar{
	name:        "csharp",
	language:    csharp.GetLanguage,
	typeNodes:   nodeSet("class_declaration", "struct_declaration", "interface_declaration", "record_declaration", "record_struct_declaration"),
	methodNodes: nodeSet("method_declaration"),
	bodyNodes:   nodeSet("declaration_list"),
}

var javaGrammar = &grammar{
	name:        "java",
	language:    java.GetLanguage,
	typeNodes:   nodeSet("class_declaration", "interface_declaration", "enum_declaration", "record_declaration"),
	methodNodes: nodeSet("method_declaration"),
	bodyNodes:   nodeSet("class_body", "interface_body", "enum_body"),
}

var pythonGrammar = &grammar{
	name:        "python",
	language:    python.GetLanguage,
	typeNodes:   nodeSet("class_definition"),
	methodNodes: nodeSet("function_definition"),
	bodyNodes:   nodeSet("block"),
}

var javascriptGrammar = &grammar{
	name:        "javascript",
	language:    javascript.GetLanguage,
	typeNodes:   nodeSet("class_declaration"),
	methodNodes: nodeSet("method_definition"),
	bodyNodes:   nodeSet("class_body"),
}

var typescriptTypeNodes = []string{"class_declaration", "abstract_class_declaration", "interface_declaration"}
var typescriptMethodNodes = []string{"method_definition", "method_signature", "abstract_method_signature"}
var typescriptBodyNodes = []string{"class_body", "object_type", "interface_body"}

var typescriptGrammar = &grammar{
	name:        "typescript",
	language:    typescript.GetLanguage,
	typeNodes:   nodeSet(typescriptTypeNodes...),
	methodNodes: nodeSet(typescriptMethodNodes...),
	bodyNodes:   nodeSet(typescriptBodyNodes...),
}

var tsxGrammar = &grammar{
	name:        "tsx",
	language:    tsx.GetLanguage,
	typeNodes:   nodeSet(typescriptTypeNodes...),
	methodNodes: nodeSet(typescriptMethodNodes...),
	bodyNodes:   nodeSet(typescriptBodyNodes...),
}

var goGrammar = &grammar{
	name:     "go",
	language: golang.GetLanguage,
	collect:  collectGoDeclarations,
}

// NewDefaultRegistry registers the tree-sitter annotators for every supported language.
func NewDefaultRegistry() *Registry {
	registry := NewRegistry()
	registry.Register(newTreeSitterAnnotator(csharpGrammar), ".cs")
	registry.Register(newTreeSitterAnnotator(javaGrammar), ".java")
	registry.Register(newTreeSitterAnnotator(goGrammar), ".go")
	registry.Register(newTreeSitterAnnotator(pythonGrammar), ".py")
	registry.Register(newTreeSitterAnnotator(javascriptGrammar), ".js", ".jsx", ".mjs", ".cjs")
	registry.Register(newTreeSitterAnnotator(typescriptGrammar), ".ts", ".mts", ".cts")
	registry.Register(newTreeSitterAnnotator(tsxGrammar), ".tsx")
	return registry
}

// collectGoDeclarations reports named types and groups methods by receiver type.
// Methods whose receiver type is declared in another file open a unit of their own.
func collectGoDeclarations(root *sitter.Node, source []byte) []types.CodeUnit {
	var units []types.CodeUnit
	unitIndexes := map[string]int{}
	unitFor := func(typeName string) int {
		if unitIndex, exists := unitIndexes[typeName]; exists {
			return unitIndex
		}
		units = append(units, types.CodeUnit{TypeName: typeName})
		unitIndexes[typeName] = len(units) - 1
		return len(units) - 1
	}

	for childIndex := 0; childIndex < int(root.NamedChildCount()); childIndex++ {
		declaration := root.NamedChild(childIndex)
		switch declaration.Type() {
		case goTypeDeclarationNode:
			for specIndex := 0; specIndex < int(declaration.NamedChildCount()); specIndex++ {
				spec := declaration.NamedChild(specIndex)
				if spec.Type() != goTypeSpecNode && spec.Type() != goTypeAliasNode {
					continue
				}
				unitFor(declarationName(spec, source))
			}
		case goMethodDeclarationNode:
			receiverType := goReceiverTypeName(declaration, source)
			if receiverType == "" {
				continue
			}
			unitIndex := unitFor(receiverType)
			units[unitIndex].Methods = append(units[unitIndex].Methods, declarationName(declaration, source))
		}
	}
	return units
}

func goReceiverTypeName(method *sitter.Node, source []byte) string {
	receiver := method.ChildByFieldName(goReceiverField)
	if receiver == nil || receiver.NamedChildCount() == 0 {
		return ""
	}
	parameter := receiver.NamedChild(0)
	typeNode := parameter.ChildByFieldName(goTypeField)
	if typeNode == nil {
		return ""
	}
	typeName := strings.TrimPrefix(typeNode.Content(source), goPointerPrefix)
	if bracketIndex := strings.Index(typeName, goTypeParameterOpening); bracketIndex >= 0 {
		typeName = typeName[:bracketIndex]
	}
	return strings.TrimSpace(typeName)
}
