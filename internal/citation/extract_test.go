package citation

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/citekit/mcp-pdf-citations/internal/document"
)

// fakeDoc is an in-memory Doc for extractor tests.
type fakeDoc struct {
	meta       document.Metadata
	pages      []string
	lines      []document.Line
	pageHeight float64
	closed     bool
}

func (d *fakeDoc) Metadata() document.Metadata { return d.meta }
func (d *fakeDoc) PageCount() int              { return len(d.pages) }

func (d *fakeDoc) PageText(pageNum int) string {
	if pageNum < 1 || pageNum > len(d.pages) {
		return ""
	}
	return d.pages[pageNum-1]
}

func (d *fakeDoc) PageHeight(pageNum int) float64 {
	if d.pageHeight != 0 {
		return d.pageHeight
	}
	return 792.0
}

func (d *fakeDoc) PageLines(pageNum int) []document.Line {
	if pageNum == 1 {
		return d.lines
	}
	return nil
}

func (d *fakeDoc) Close() error {
	d.closed = true
	return nil
}

func extractorFor(t *testing.T, doc *fakeDoc) *Extractor {
	t.Helper()
	return NewExtractorWithOpener(func(path string) (Doc, error) {
		return doc, nil
	})
}

// tempPDF creates a file so the existence check passes; content is never
// parsed because the opener is stubbed.
func tempPDF(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "paper.pdf")
	if err := os.WriteFile(path, []byte("%PDF-1.4"), 0o644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}
	return path
}

func TestExtract_MetadataRichDocument(t *testing.T) {
	abstract := strings.Repeat("We describe a heuristic extraction pipeline. ", 3)
	doc := &fakeDoc{
		meta: document.Metadata{
			Title:        "A Study of Extraction Heuristics",
			Author:       "Jane Doe; John Smith",
			Subject:      "Journal of Examples",
			Creator:      "Example Press",
			Keywords:     "extraction, heuristics",
			CreationDate: "D:20190415120000",
		},
		pages: []string{
			"doi:10.1000/182\nAbstract\n" + abstract + "\nKeywords: extraction",
			"second page body",
		},
	}

	result := extractorFor(t, doc).Extract(tempPDF(t))

	require.True(t, result.Success)
	assert.Empty(t, result.Warnings)
	assert.Equal(t, "paper.pdf", result.SourceFile)
	assert.True(t, doc.closed)

	m := result.Metadata
	assert.Equal(t, "A Study of Extraction Heuristics", m.Title)
	assert.Equal(t, []string{"Jane Doe", "John Smith"}, m.Authors)
	assert.Equal(t, 2019, m.Year)
	assert.Equal(t, "10.1000/182", m.DOI)
	assert.NotEmpty(t, m.Abstract)
	assert.Equal(t, "Journal of Examples", m.Journal)
	assert.Equal(t, "Example Press", m.Publisher)
	assert.Equal(t, []string{"extraction", "heuristics"}, m.Keywords)

	// Mean of the metadata-sourced contributions for title, authors,
	// year, DOI and abstract.
	expected := (0.9 + 0.85 + 0.8 + 0.95 + 0.7) / 5
	assert.InDelta(t, expected, result.Confidence, 1e-9)
}

func TestExtract_LayoutFallbacks(t *testing.T) {
	doc := &fakeDoc{
		meta: document.Metadata{Title: "Untitled"},
		pages: []string{
			"body text without identifiers",
		},
		lines: []document.Line{
			{Text: "Recovered From Layout", FontSize: 18, TopY: 80},
			{Text: "Jane Doe and John Smith", FontSize: 11, TopY: 220},
		},
	}

	result := extractorFor(t, doc).Extract(tempPDF(t))

	require.True(t, result.Success)
	assert.Equal(t, "Recovered From Layout", result.Metadata.Title)
	assert.Equal(t, []string{"Jane Doe", "John Smith"}, result.Metadata.Authors)

	assert.Contains(t, result.Warnings, "title extracted from page text (may be imprecise)")
	assert.Contains(t, result.Warnings, "authors extracted from page text (may be imprecise)")
	assert.Contains(t, result.Warnings, "could not determine publication year")
	assert.Contains(t, result.Warnings, "no DOI found")
	assert.Contains(t, result.Warnings, "could not find abstract")

	expected := (0.6 + 0.5) / 2
	assert.InDelta(t, expected, result.Confidence, 1e-9)
}

func TestExtract_EmptyDocument(t *testing.T) {
	doc := &fakeDoc{}

	result := extractorFor(t, doc).Extract(tempPDF(t))

	require.True(t, result.Success)
	assert.Equal(t, CitationMetadata{}, result.Metadata)
	assert.True(t, math.Abs(result.Confidence) < 1e-9)
	assert.Contains(t, result.Warnings, "could not determine title")
	assert.Contains(t, result.Warnings, "could not determine authors")
}

func TestExtract_MissingFile(t *testing.T) {
	result := NewExtractor().Extract("/nonexistent/paper.pdf")

	assert.False(t, result.Success)
	assert.Contains(t, result.ErrorMessage, "file not found")
	assert.Equal(t, "paper.pdf", result.SourceFile)
}

func TestExtract_OpenFailureReported(t *testing.T) {
	e := NewExtractorWithOpener(func(path string) (Doc, error) {
		return nil, assert.AnError
	})

	result := e.Extract(tempPDF(t))

	assert.False(t, result.Success)
	assert.Contains(t, result.ErrorMessage, "failed to open PDF")
}
