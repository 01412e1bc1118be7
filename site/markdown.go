package site

import (
	"bytes"
	"html/template"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	htmlrenderer "github.com/yuin/goldmark/renderer/html"
)

// markdown renderer for the editable text slots. Single line breaks are
// kept as typed.
var md = goldmark.New(
	goldmark.WithExtensions(
		extension.GFM,     // tables, strikethrough, task lists, autolinks (GFM set)
		extension.Linkify, // linkify raw URLs
	),
	goldmark.WithRendererOptions(
		htmlrenderer.WithHardWraps(),
	),
)

func renderMarkdown(content string) string {
	var buf bytes.Buffer
	if err := md.Convert([]byte(content), &buf); err != nil {
		// Em caso de erro, mostra o texto puro para não quebrar a página
		return template.HTMLEscapeString(content)
	}
	return buf.String()
}

// renderInline renders text that sits inside a heading or paragraph: the
// wrapping <p> of a single paragraph is dropped.
func renderInline(content string) string {
	html := strings.TrimSpace(renderMarkdown(content))
	if strings.Count(html, "<p>") == 1 && strings.HasPrefix(html, "<p>") && strings.HasSuffix(html, "</p>") {
		html = strings.TrimSuffix(strings.TrimPrefix(html, "<p>"), "</p>")
	}
	return html
}
