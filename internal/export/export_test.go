package export

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tmercer/lectern/internal/config"
	"github.com/tmercer/lectern/internal/lecture"
)

func sampleResult() lecture.Result {
	return lecture.Result{
		Transcript: "Today we covered cellular respiration.",
		Summary:    []string{"Glycolysis splits glucose.", "The Krebs cycle yields NADH."},
		Flashcards: []lecture.Flashcard{
			{Question: "Where does glycolysis occur?", Answer: "In the cytoplasm."},
		},
	}
}

func TestBuildNotesLayout(t *testing.T) {
	doc := BuildNotes("Biology 101", sampleResult())

	require.True(t, strings.HasPrefix(doc, "# Biology 101\n"))
	require.Contains(t, doc, "## Transcript\n\nToday we covered cellular respiration.")
	require.Contains(t, doc, "- Glycolysis splits glucose.\n- The Krebs cycle yields NADH.")
	require.Contains(t, doc, "**Q1.** Where does glycolysis occur?")
	require.Contains(t, doc, "**A1.** In the cytoplasm.")
}

func TestBuildNotesEmptySections(t *testing.T) {
	doc := BuildNotes("Empty", lecture.Result{})

	require.Contains(t, doc, "_No transcript available._")
	require.Contains(t, doc, "_No summary available._")
	require.Contains(t, doc, "_No flashcards available._")
}

func TestPaginateThreshold(t *testing.T) {
	lines := make([]string, 10)
	for i := range lines {
		lines[i] = "line"
	}
	doc := strings.Join(lines, "\n")

	require.Len(t, Paginate(doc, 10), 1)
	require.Len(t, Paginate(doc, 9), 2)
	require.Len(t, Paginate(doc, 4), 3)
	require.Len(t, Paginate(doc, 0), 1)

	pages := Paginate(doc, 4)
	require.Equal(t, 4, len(strings.Split(pages[0], "\n")))
	require.Equal(t, 2, len(strings.Split(pages[2], "\n")))
}

func TestExportWritesMarkdownAndHTML(t *testing.T) {
	dir := t.TempDir()
	exporter := New(config.ExportConfig{OutputDir: dir, PageLines: 5}, nil)

	output, err := exporter.Export("Biology 101: Week 2", sampleResult())
	require.NoError(t, err)
	require.Greater(t, output.Pages, 1)

	markdown, err := os.ReadFile(output.MarkdownPath)
	require.NoError(t, err)
	require.Contains(t, string(markdown), "# Biology 101: Week 2")
	require.Contains(t, string(markdown), "\n\n---\n\n")

	html, err := os.ReadFile(output.HTMLPath)
	require.NoError(t, err)
	require.Contains(t, string(html), "<h1>Biology 101: Week 2</h1>")
	require.Contains(t, string(html), "<li>Glycolysis splits glucose.</li>")

	require.True(t, strings.HasSuffix(output.MarkdownPath, "biology-101-week-2.md"))
	require.True(t, strings.HasSuffix(output.HTMLPath, "biology-101-week-2.html"))
}

func TestFileStem(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{title: "Biology 101", want: "biology-101"},
		{title: "  Weird//Name!!  ", want: "weird-name"},
		{title: "", want: "lecture-notes"},
		{title: "???", want: "lecture-notes"},
	}
	for _, tc := range tests {
		require.Equal(t, tc.want, fileStem(tc.title), tc.title)
	}
}
