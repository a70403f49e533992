package report

import (
	"bytes"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Markdown renders the report as one section per document with a table of
// criteria.
func (b *Builder) Markdown() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", b.Folder)
	if b.results.Len() == 0 {
		sb.WriteString("No documents were evaluated.\n")
		return sb.String()
	}
	for pair := b.results.Oldest(); pair != nil; pair = pair.Next() {
		fmt.Fprintf(&sb, "## %s\n\n", pair.Key)
		if len(pair.Value) == 0 {
			sb.WriteString("No criteria returned.\n\n")
			continue
		}
		sb.WriteString("| Criterio | Nivel | Comentario |\n|---|---|---|\n")
		for _, c := range pair.Value {
			fmt.Fprintf(&sb, "| %s | %d | %s |\n", cell(c.Criterion), c.Level, cell(c.Comment))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// cell keeps free text inside a single markdown table cell.
func cell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.Join(strings.Fields(s), " ")
}

func mdToHTML(md string) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.New(goldmark.WithExtensions(extension.Table)).Convert([]byte(md), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// WriteHTML renders Markdown to <dir>/<folder>.html and returns the path written.
func (b *Builder) WriteHTML(dir string) (string, error) {
	body, err := mdToHTML(b.Markdown())
	if err != nil {
		return "", fmt.Errorf("rendering report: %w", err)
	}
	page := fmt.Sprintf("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>%s</title>\n</head>\n<body>\n%s</body>\n</html>\n",
		html.EscapeString(b.Folder), body)
	path := filepath.Join(dir, b.Folder+".html")
	if err := os.WriteFile(path, []byte(page), 0o644); err != nil {
		return "", fmt.Errorf("writing report: %w", err)
	}
	return path, nil
}
