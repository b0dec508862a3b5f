package render

import (
	"bytes"

	"gopkg.in/yaml.v3"

	"github.com/tjgokken/solmap/internal/walker"
)

const (
	yamlIndentWidth = 2
	yamlStringTag   = "!!str"
	yamlClassKey    = "class"
	yamlMethodsKey  = "methods"
	yamlErrorKey    = "error"
)

// yamlRenderer builds a yaml.v3 node tree during the walk: every directory is a key
// whose value lists its subdirectories followed by its files.
type yamlRenderer struct{}

func (yamlRenderer) marksAnnotationErrors() bool { return false }

func (yamlRenderer) render(exportSession *session) (string, error) {
	visitor := &yamlVisitor{session: exportSession}
	if err := exportSession.walk(visitor); err != nil {
		return "", err
	}
	var buffer bytes.Buffer
	encoder := yaml.NewEncoder(&buffer)
	encoder.SetIndent(yamlIndentWidth)
	if err := encoder.Encode(visitor.document); err != nil {
		return "", err
	}
	if err := encoder.Close(); err != nil {
		return "", err
	}
	return buffer.String(), nil
}

type yamlVisitor struct {
	session  *session
	document *yaml.Node
	// stack holds the child sequences of the open directories.
	stack []*yaml.Node
}

func yamlScalar(value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: yamlStringTag, Value: value}
}

func yamlSequence() *yaml.Node {
	return &yaml.Node{Kind: yaml.SequenceNode}
}

func yamlMapping(pairs ...*yaml.Node) *yaml.Node {
	return &yaml.Node{Kind: yaml.MappingNode, Content: pairs}
}

func (visitor *yamlVisitor) EnterDirectory(directory walker.Directory) error {
	children := yamlSequence()
	entry := yamlMapping(yamlScalar(directory.Name), children)
	if len(visitor.stack) == 0 {
		visitor.document = &yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{entry}}
	} else {
		parent := visitor.stack[len(visitor.stack)-1]
		parent.Content = append(parent.Content, entry)
	}
	visitor.stack = append(visitor.stack, children)
	return nil
}

func (visitor *yamlVisitor) VisitFile(file walker.File) error {
	parent := visitor.stack[len(visitor.stack)-1]
	fileAnnotation, present := visitor.session.annotate(file.FileEntry)
	if !present || (fileAnnotation.Err == nil && len(fileAnnotation.Units) == 0) {
		parent.Content = append(parent.Content, yamlScalar(file.Name))
		return nil
	}
	details := yamlSequence()
	if fileAnnotation.Err != nil {
		details.Content = append(details.Content, yamlMapping(yamlScalar(yamlErrorKey), yamlScalar(fileAnnotation.Err.Error())))
	}
	for _, unit := range fileAnnotation.Units {
		methods := yamlSequence()
		for _, method := range unit.Methods {
			methods.Content = append(methods.Content, yamlScalar(method))
		}
		details.Content = append(details.Content, yamlMapping(
			yamlScalar(yamlClassKey), yamlScalar(unit.TypeName),
			yamlScalar(yamlMethodsKey), methods,
		))
	}
	parent.Content = append(parent.Content, yamlMapping(yamlScalar(file.Name), details))
	return nil
}

func (visitor *yamlVisitor) LeaveDirectory(walker.Directory) error {
	visitor.stack = visitor.stack[:len(visitor.stack)-1]
	return nil
}
