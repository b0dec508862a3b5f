package render

import "github.com/tjgokken/solmap/internal/walker"

const (
	outlineIndentWidth  = 3
	outlineBullet       = "* "
	outlineClassPrefix  = "- Class: "
	outlineMethodPrefix = "- Method: "
	outlineErrorPrefix  = "! Error: "
)

// outlineRenderer writes an indented bullet outline.
type outlineRenderer struct{}

func (outlineRenderer) marksAnnotationErrors() bool { return true }

func (outlineRenderer) render(exportSession *session) (string, error) {
	visitor := &outlineVisitor{session: exportSession, output: newTextAccumulator(outlineIndentWidth)}
	if err := exportSession.walk(visitor); err != nil {
		return "", err
	}
	return visitor.output.String(), nil
}

type outlineVisitor struct {
	session *session
	output  *textAccumulator
}

func (visitor *outlineVisitor) EnterDirectory(directory walker.Directory) error {
	visitor.output.line(directory.Depth, outlineBullet+directory.Name)
	return nil
}

func (visitor *outlineVisitor) VisitFile(file walker.File) error {
	visitor.output.line(file.Depth, outlineBullet+file.Name)
	fileAnnotation, present := visitor.session.annotate(file.FileEntry)
	if !present {
		return nil
	}
	if fileAnnotation.Err != nil {
		visitor.output.line(file.Depth+1, outlineErrorPrefix+fileAnnotation.Err.Error())
		return nil
	}
	for _, unit := range fileAnnotation.Units {
		visitor.output.line(file.Depth+1, outlineClassPrefix+unit.TypeName)
		for _, method := range unit.Methods {
			visitor.output.line(file.Depth+2, outlineMethodPrefix+method)
		}
	}
	return nil
}

func (visitor *outlineVisitor) LeaveDirectory(walker.Directory) error {
	return nil
}
