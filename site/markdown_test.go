package site

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderMarkdown(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		contains []string
	}{
		{"bold", "Sorrisos **saudáveis**", []string{"<strong>saudáveis</strong>"}},
		{"line breaks", "Linha um\nLinha dois", []string{"Linha um<br>", "Linha dois"}},
		{"link", "Veja https://example.com", []string{`<a href="https://example.com">`}},
		{"raw html escaped", "<script>alert(1)</script>", []string{"<!-- raw HTML omitted -->"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			html := renderMarkdown(tt.input)
			for _, want := range tt.contains {
				assert.Contains(t, html, want)
			}
			assert.NotContains(t, html, "<script>")
		})
	}
}

func TestRenderInline(t *testing.T) {
	assert.Equal(t, "Cuidando do seu <em>sorriso</em>", renderInline("Cuidando do seu *sorriso*"))

	two := renderInline("Primeiro\n\nSegundo")
	assert.True(t, strings.HasPrefix(two, "<p>"))
	assert.Equal(t, 2, strings.Count(two, "<p>"))
}
