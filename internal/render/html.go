package render

import (
	"html"
	"strings"

	"github.com/tjgokken/solmap/internal/walker"
)

const (
	htmlIndentWidth = 2

	htmlDocumentHead = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>%TITLE%</title>
<style>
body { font-family: Consolas, "Courier New", monospace; font-size: 14px; }
.directory { margin-left: 16px; }
.toggle { cursor: pointer; user-select: none; display: inline-block; width: 1.2em; color: #555; }
.directory-name { font-weight: bold; color: #1e4e8c; }
.file { margin-left: 16px; color: #222; }
.class { margin-left: 32px; color: #2b7a0b; }
.method { margin-left: 48px; color: #7a4b0b; }
.annotation-error { margin-left: 32px; color: #b00020; font-style: italic; }
.collapsed > .children { display: none; }
</style>
<script>
function toggleDirectory(toggle) {
  var directory = toggle.parentElement;
  var collapsed = directory.classList.toggle("collapsed");
  toggle.textContent = collapsed ? "+" : "-";
}
</script>
</head>
<body>
`
	htmlDocumentTail = `</body>
</html>
`
	htmlTitlePlaceholder   = "%TITLE%"
	htmlDirectoryOpen      = `<div class="directory">`
	htmlDirectoryToggle    = `<span class="toggle" onclick="toggleDirectory(this)">-</span><span class="directory-name">`
	htmlDirectoryNameClose = `</span>`
	htmlChildrenOpen       = `<div class="children">`
	htmlBlockClose         = `</div>`
	htmlFileOpen           = `<div class="file">`
	htmlClassOpen          = `<div class="class">class `
	htmlMethodOpen         = `<div class="method">method `
	htmlErrorOpen          = `<div class="annotation-error">error: `
)

// htmlRenderer writes a standalone page where each directory block can be collapsed.
type htmlRenderer struct{}

func (htmlRenderer) marksAnnotationErrors() bool { return true }

func (htmlRenderer) render(exportSession *session) (string, error) {
	visitor := &htmlVisitor{session: exportSession, output: newTextAccumulator(htmlIndentWidth)}
	if err := exportSession.walk(visitor); err != nil {
		return "", err
	}
	return visitor.head + visitor.output.String() + htmlDocumentTail, nil
}

type htmlVisitor struct {
	session *session
	output  *textAccumulator
	head    string
}

// blockLevel maps a directory depth to the indentation of its block; each directory
// opens two nested elements.
func blockLevel(depth int) int {
	return depth * 2
}

func (visitor *htmlVisitor) EnterDirectory(directory walker.Directory) error {
	escapedName := html.EscapeString(directory.Name)
	if visitor.head == "" {
		visitor.head = replaceTitle(escapedName)
	}
	level := blockLevel(directory.Depth)
	visitor.output.line(level, htmlDirectoryOpen)
	visitor.output.line(level+1, htmlDirectoryToggle+escapedName+htmlDirectoryNameClose)
	visitor.output.line(level+1, htmlChildrenOpen)
	return nil
}

func (visitor *htmlVisitor) VisitFile(file walker.File) error {
	level := blockLevel(file.Depth)
	visitor.output.line(level, htmlFileOpen+html.EscapeString(file.Name)+htmlBlockClose)
	fileAnnotation, present := visitor.session.annotate(file.FileEntry)
	if !present {
		return nil
	}
	if fileAnnotation.Err != nil {
		visitor.output.line(level, htmlErrorOpen+html.EscapeString(fileAnnotation.Err.Error())+htmlBlockClose)
		return nil
	}
	for _, unit := range fileAnnotation.Units {
		visitor.output.line(level, htmlClassOpen+html.EscapeString(unit.TypeName)+htmlBlockClose)
		for _, method := range unit.Methods {
			visitor.output.line(level, htmlMethodOpen+html.EscapeString(method)+htmlBlockClose)
		}
	}
	return nil
}

func (visitor *htmlVisitor) LeaveDirectory(directory walker.Directory) error {
	level := blockLevel(directory.Depth)
	visitor.output.line(level+1, htmlBlockClose)
	visitor.output.line(level, htmlBlockClose)
	return nil
}

func replaceTitle(title string) string {
	return strings.Replace(htmlDocumentHead, htmlTitlePlaceholder, title, 1)
}
