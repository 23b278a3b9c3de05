package assembly

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/kirillkom/paper-translator/internal/core/domain"
)

// RenderText lays chunks out as numbered parts under a title banner.
func RenderText(title string, chunks []domain.Chunk) string {
	var b strings.Builder
	fmt.Fprintf(&b, "《%s》中文翻译\n", title)
	b.WriteString(strings.Repeat("=", 50))
	b.WriteString("\n\n")
	for i, chunk := range chunks {
		fmt.Fprintf(&b, "【第%d部分】\n", i+1)
		b.WriteString(chunk.Translation)
		b.WriteString("\n\n")
		b.WriteString(strings.Repeat("-", 40))
		b.WriteString("\n\n")
	}
	return b.String()
}

var htmlTemplate = template.Must(template.New("document").Parse(`<!DOCTYPE html>
<html lang="zh-CN">
<head>
<meta charset="UTF-8">
<title>{{.Title}}</title>
<style>
body { max-width: 860px; margin: 2em auto; color: #333; font-family: "PingFang SC", "Microsoft YaHei", "SimSun", serif; }
h1 { text-align: center; }
h2.heading { text-indent: 0; font-size: 1.2em; font-weight: bold; margin: 1.4em 0 0.6em; }
p.paragraph { text-indent: 2em; line-height: 1.8; margin: 0 0 0.8em; }
</style>
</head>
<body>
<h1>{{.Title}}</h1>
{{range .Blocks}}{{if eq .Kind "heading"}}<h2 class="heading">{{.Text}}</h2>
{{else}}<p class="paragraph">{{.Text}}</p>
{{end}}{{end}}</body>
</html>
`))

// RenderHTML renders headings without indent and paragraphs with a
// first-line indent and fixed line spacing.
func RenderHTML(doc domain.OutputDocument) (string, error) {
	var buf bytes.Buffer
	if err := htmlTemplate.Execute(&buf, doc); err != nil {
		return "", fmt.Errorf("render html: %w", err)
	}
	return buf.String(), nil
}

const (
	FormatText = "text"
	FormatHTML = "html"
)

// Renderer selects the output layout of translated documents.
type Renderer struct {
	Format string
}

func NewRenderer(format string) *Renderer {
	if strings.ToLower(strings.TrimSpace(format)) == FormatHTML {
		return &Renderer{Format: FormatHTML}
	}
	return &Renderer{Format: FormatText}
}

func (r *Renderer) Extension() string {
	if r.Format == FormatHTML {
		return ".html"
	}
	return ".txt"
}

func (r *Renderer) Render(doc domain.OutputDocument, chunks []domain.Chunk) (string, error) {
	if r.Format == FormatHTML {
		return RenderHTML(doc)
	}
	return RenderText(doc.Title, chunks), nil
}
