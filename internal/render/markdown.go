package render

import (
	"strings"

	"github.com/tjgokken/solmap/internal/walker"
)

const (
	markdownMaximumHeading = 6
	markdownListItemPrefix = "- "
	markdownErrorPrefix    = "> Error: "
)

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`,
	"`", "\\`",
	"*", `\*`,
	"_", `\_`,
	"[", `\[`,
	"]", `\]`,
	"<", `\<`,
	"#", `\#`,
)

// markdownRenderer writes directories as headings whose level follows the depth.
type markdownRenderer struct{}

func (markdownRenderer) marksAnnotationErrors() bool { return true }

func (markdownRenderer) render(exportSession *session) (string, error) {
	visitor := &markdownVisitor{session: exportSession, output: newTextAccumulator(0)}
	if err := exportSession.walk(visitor); err != nil {
		return "", err
	}
	return visitor.output.String(), nil
}

type markdownVisitor struct {
	session *session
	output  *textAccumulator
}

func (visitor *markdownVisitor) heading(level int, text string) {
	if level > markdownMaximumHeading {
		level = markdownMaximumHeading
	}
	visitor.output.blank()
	visitor.output.line(0, strings.Repeat("#", level)+" "+escapeMarkdown(text))
	visitor.output.blank()
}

func (visitor *markdownVisitor) EnterDirectory(directory walker.Directory) error {
	visitor.heading(directory.Depth+1, directory.Name)
	return nil
}

func (visitor *markdownVisitor) VisitFile(file walker.File) error {
	visitor.output.line(0, markdownListItemPrefix+escapeMarkdown(file.Name))
	fileAnnotation, present := visitor.session.annotate(file.FileEntry)
	if !present {
		return nil
	}
	if fileAnnotation.Err != nil {
		visitor.output.blank()
		visitor.output.line(0, markdownErrorPrefix+escapeMarkdown(fileAnnotation.Err.Error()))
		visitor.output.blank()
		return nil
	}
	// file.Depth is the directory depth plus one, so classes sit one heading below it.
	for _, unit := range fileAnnotation.Units {
		visitor.heading(file.Depth+1, unit.TypeName)
		for _, method := range unit.Methods {
			visitor.heading(file.Depth+2, method)
		}
	}
	return nil
}

func (visitor *markdownVisitor) LeaveDirectory(walker.Directory) error {
	return nil
}

func escapeMarkdown(text string) string {
	return markdownEscaper.Replace(text)
}
