// Package export writes a lecture's study notes to disk as paginated
// Markdown plus a rendered HTML document.
package export

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark"

	"github.com/tmercer/lectern/internal/config"
	"github.com/tmercer/lectern/internal/lecture"
)

// Output reports where one export landed.
type Output struct {
	MarkdownPath string
	HTMLPath     string
	Pages        int
}

// Exporter builds and writes notes documents.
type Exporter struct {
	outputDir string
	pageLines int
	logger    *slog.Logger
}

// New constructs an exporter from export configuration.
func New(cfg config.ExportConfig, logger *slog.Logger) *Exporter {
	pageLines := cfg.PageLines
	if pageLines <= 0 {
		pageLines = config.DefaultPageLines
	}
	outputDir := cfg.OutputDir
	if outputDir == "" {
		outputDir = "."
	}
	return &Exporter{outputDir: outputDir, pageLines: pageLines, logger: logger}
}

// Export writes the Markdown and HTML notes for one lecture result.
func (e *Exporter) Export(title string, result lecture.Result) (Output, error) {
	doc := BuildNotes(title, result)
	pages := Paginate(doc, e.pageLines)

	if err := os.MkdirAll(e.outputDir, 0o755); err != nil {
		return Output{}, fmt.Errorf("create export dir: %w", err)
	}

	base := fileStem(title)
	output := Output{
		MarkdownPath: filepath.Join(e.outputDir, base+".md"),
		HTMLPath:     filepath.Join(e.outputDir, base+".html"),
		Pages:        len(pages),
	}

	markdown := strings.Join(pages, "\n\n---\n\n")
	if err := os.WriteFile(output.MarkdownPath, []byte(markdown), 0o644); err != nil {
		return Output{}, fmt.Errorf("write markdown: %w", err)
	}

	var html bytes.Buffer
	if err := goldmark.Convert([]byte(markdown), &html); err != nil {
		return Output{}, fmt.Errorf("render html: %w", err)
	}
	if err := os.WriteFile(output.HTMLPath, html.Bytes(), 0o644); err != nil {
		return Output{}, fmt.Errorf("write html: %w", err)
	}

	if e.logger != nil {
		e.logger.Info("notes exported",
			"markdown", output.MarkdownPath,
			"html", output.HTMLPath,
			"pages", output.Pages,
		)
	}
	return output, nil
}

// BuildNotes assembles the notes document: header, transcript, summary
// bullets, then flashcard question/answer blocks.
func BuildNotes(title string, result lecture.Result) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", title)

	b.WriteString("## Transcript\n\n")
	transcript := strings.TrimSpace(result.Transcript)
	if transcript == "" {
		transcript = "_No transcript available._"
	}
	b.WriteString(transcript)
	b.WriteString("\n\n")

	b.WriteString("## Summary\n\n")
	if len(result.Summary) == 0 {
		b.WriteString("_No summary available._\n")
	}
	for _, point := range result.Summary {
		fmt.Fprintf(&b, "- %s\n", point)
	}
	b.WriteString("\n")

	b.WriteString("## Flashcards\n\n")
	if len(result.Flashcards) == 0 {
		b.WriteString("_No flashcards available._\n")
	}
	for i, card := range result.Flashcards {
		fmt.Fprintf(&b, "**Q%d.** %s\n\n", i+1, card.Question)
		fmt.Fprintf(&b, "**A%d.** %s\n\n", i+1, card.Answer)
	}

	return strings.TrimRight(b.String(), "\n") + "\n"
}

// Paginate splits a document on a fixed lines-per-page threshold. The break
// lands on the line boundary; a document at or under one page stays whole.
func Paginate(doc string, linesPerPage int) []string {
	if linesPerPage <= 0 {
		return []string{doc}
	}

	lines := strings.Split(strings.TrimRight(doc, "\n"), "\n")
	if len(lines) <= linesPerPage {
		return []string{strings.Join(lines, "\n")}
	}

	pages := []string{}
	for start := 0; start < len(lines); start += linesPerPage {
		end := start + linesPerPage
		if end > len(lines) {
			end = len(lines)
		}
		pages = append(pages, strings.Join(lines[start:end], "\n"))
	}
	return pages
}

// fileStem derives a filesystem-safe basename from a lecture title.
func fileStem(title string) string {
	stem := strings.TrimSpace(strings.ToLower(title))
	if stem == "" {
		return "lecture-notes"
	}
	var b strings.Builder
	lastDash := false
	for _, r := range stem {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash && b.Len() > 0 {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	out := strings.TrimSuffix(b.String(), "-")
	if out == "" {
		return "lecture-notes"
	}
	return out
}
