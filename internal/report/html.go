package report

import (
	"bytes"
	"html"
	"io"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// htmlEmitter renders the Markdown report as a standalone page.
type htmlEmitter struct{}

func (htmlEmitter) Format() string { return "html" }

func (htmlEmitter) Emit(w io.Writer, doc Document) error {
	md := goldmark.New(goldmark.WithExtensions(extension.Table))
	var body bytes.Buffer
	if err := md.Convert([]byte(renderMarkdown(doc)), &body); err != nil {
		return err
	}
	title := "optistats"
	if doc.Analysis != nil {
		title += " - " + doc.Analysis.Dataset
	}
	var page bytes.Buffer
	page.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	page.WriteString("<title>" + html.EscapeString(title) + "</title>\n</head>\n<body>\n")
	page.Write(body.Bytes())
	page.WriteString("</body>\n</html>\n")
	_, err := w.Write(page.Bytes())
	return err
}
