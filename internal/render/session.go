package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/tjgokken/solmap/internal/types"
	"github.com/tjgokken/solmap/internal/walker"
)

const errorReadSourceFormat = "read %s: %w"

// session is the per-export state shared by the renderers: the walker and the
// annotation glue. It owns no output; each renderer builds its own accumulator.
type session struct {
	request    Request
	walker     walker.Walker
	markErrors bool
}

// annotation is the outcome of annotating one file. Exactly one of Units or Err is
// meaningful; Err is only set when the policy asks for a visible marker.
type annotation struct {
	Units []types.CodeUnit
	Err   error
}

func newSession(request Request, formatMarksErrors bool) *session {
	markErrors := formatMarksErrors
	switch request.AnnotationErrors {
	case AnnotationErrorsMark:
		markErrors = true
	case AnnotationErrorsOmit:
		markErrors = false
	}
	return &session{
		request:    request,
		walker:     walker.Walker{Filesystem: request.Filesystem, Policy: request.Policy},
		markErrors: markErrors,
	}
}

func (exportSession *session) walk(visitor walker.Visitor) error {
	return exportSession.walker.Walk(exportSession.request.Root, visitor)
}

func (exportSession *session) buildTree() (*types.DirectoryNode, error) {
	return exportSession.walker.BuildTree(exportSession.request.Root)
}

// annotate returns the code details of file. The boolean is false when nothing
// should be rendered for the file: code details are off, the extension has no
// annotator, or annotation failed and failures are omitted.
func (exportSession *session) annotate(file types.FileEntry) (annotation, bool) {
	if !exportSession.request.IncludeCodeDetails || exportSession.request.Annotators == nil {
		return annotation{}, false
	}
	fileAnnotator, supported := exportSession.request.Annotators.ForExtension(file.Extension)
	if !supported {
		return annotation{}, false
	}
	text, readError := exportSession.readFile(file.Path)
	if readError != nil {
		return exportSession.failed(file, readError)
	}
	units, parseError := fileAnnotator.Parse(text)
	if parseError != nil {
		return exportSession.failed(file, parseError)
	}
	return annotation{Units: units}, true
}

func (exportSession *session) failed(file types.FileEntry, failure error) (annotation, bool) {
	if exportSession.request.Warn != nil {
		exportSession.request.Warn(file.Path, failure)
	}
	if !exportSession.markErrors {
		return annotation{}, false
	}
	return annotation{Err: failure}, true
}

func (exportSession *session) readFile(path string) ([]byte, error) {
	file, openError := exportSession.request.Filesystem.Open(path)
	if openError != nil {
		return nil, fmt.Errorf(errorReadSourceFormat, path, openError)
	}
	defer file.Close()
	text, readError := io.ReadAll(file)
	if readError != nil {
		return nil, fmt.Errorf(errorReadSourceFormat, path, readError)
	}
	return text, nil
}

// textAccumulator is the append-only buffer of the line-oriented formats.
type textAccumulator struct {
	builder    strings.Builder
	indentUnit string
	lastBlank  bool
}

func newTextAccumulator(indentWidth int) *textAccumulator {
	return &textAccumulator{indentUnit: strings.Repeat(" ", indentWidth), lastBlank: true}
}

func (accumulator *textAccumulator) line(level int, text string) {
	accumulator.builder.WriteString(strings.Repeat(accumulator.indentUnit, level))
	accumulator.builder.WriteString(text)
	accumulator.builder.WriteByte('\n')
	accumulator.lastBlank = false
}

// blank writes an empty line unless the previous line was already empty.
func (accumulator *textAccumulator) blank() {
	if accumulator.lastBlank {
		return
	}
	accumulator.builder.WriteByte('\n')
	accumulator.lastBlank = true
}

func (accumulator *textAccumulator) String() string {
	return accumulator.builder.String()
}
