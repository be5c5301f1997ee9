package render

import (
	"bytes"
	"html/template"
	"sync"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// The converter is immutable once built and safe for concurrent use.
var (
	markdownConverter     goldmark.Markdown
	markdownConverterOnce sync.Once
)

func converter() goldmark.Markdown {
	markdownConverterOnce.Do(func() {
		markdownConverter = goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(html.WithHardWraps()),
		)
	})
	return markdownConverter
}

// Markdown renders untrusted Markdown to HTML. Raw HTML in the source is
// omitted and dangerous link targets are dropped by the renderer.
func Markdown(source string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := converter().Convert([]byte(source), &buf); err != nil {
		return "", err
	}
	return template.HTML(buf.String()), nil
}
