package citation

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/citekit/mcp-pdf-citations/internal/document"
)

// Doc is the slice of a loaded PDF the extractor needs. *document.Document
// satisfies it; tests substitute synthetic documents.
type Doc interface {
	Metadata() document.Metadata
	PageCount() int
	PageText(pageNum int) string
	PageHeight(pageNum int) float64
	PageLines(pageNum int) []document.Line
	Close() error
}

// Opener loads a PDF from disk.
type Opener func(path string) (Doc, error)

// defaultOpener adapts document.Open to the Doc interface.
func defaultOpener(path string) (Doc, error) {
	return document.Open(path)
}

// Per-field confidence contributions. Metadata-sourced values score higher
// than values inferred from page text; the overall confidence is the mean
// of the contributions of the fields actually found.
const (
	confTitleMetadata  = 0.9
	confTitleText      = 0.6
	confAuthorMetadata = 0.85
	confAuthorText     = 0.5
	confYearMetadata   = 0.8
	confYearText       = 0.5
	confDOI            = 0.95
	confAbstract       = 0.7
)

// Page scan limits for the text-based field extractors. DOIs and years
// appear on the first or second page; abstracts occasionally spill onto
// the third.
const (
	fieldPageLimit    = 2
	abstractPageLimit = 3
)

// titlePlaceholders are metadata title values that mean "no title".
var titlePlaceholders = map[string]bool{
	"":         true,
	"untitled": true,
	"unknown":  true,
}

// Extractor pulls bibliographic metadata out of PDFs, preferring embedded
// document metadata and falling back to layout heuristics over the first
// page's text geometry.
type Extractor struct {
	open Opener
}

// NewExtractor returns an Extractor reading PDFs from disk.
func NewExtractor() *Extractor {
	return &Extractor{open: defaultOpener}
}

// NewExtractorWithOpener returns an Extractor using a custom document
// source.
func NewExtractorWithOpener(open Opener) *Extractor {
	return &Extractor{open: open}
}

// Extract reads one PDF and assembles a CitationResult. It never returns
// an error; failures are reported through the result envelope so batch
// callers can keep going.
func (e *Extractor) Extract(path string) (result CitationResult) {
	result.SourceFile = filepath.Base(path)

	defer func() {
		if r := recover(); r != nil {
			result = CitationResult{
				Success:      false,
				ErrorMessage: fmt.Sprintf("citation extraction panicked: %v", r),
				SourceFile:   filepath.Base(path),
			}
		}
	}()

	if _, err := os.Stat(path); err != nil {
		result.ErrorMessage = fmt.Sprintf("file not found: %s", path)
		return result
	}

	doc, err := e.open(path)
	if err != nil {
		result.ErrorMessage = fmt.Sprintf("failed to open PDF: %v", err)
		return result
	}
	defer doc.Close()

	meta := doc.Metadata()
	currentYear := time.Now().Year()

	var m CitationMetadata
	var scores []float64
	var warnings []string

	// First page layout, used by the title and author fallbacks.
	var firstLines []document.Line
	var firstHeight float64
	if doc.PageCount() > 0 {
		firstLines = doc.PageLines(1)
		firstHeight = doc.PageHeight(1)
	}

	// Title.
	if t := meta.Title; !titlePlaceholders[strings.ToLower(strings.TrimSpace(t))] {
		m.Title = strings.TrimSpace(t)
		scores = append(scores, confTitleMetadata)
	} else if t := titleFromLines(firstLines, firstHeight); t != "" {
		m.Title = t
		scores = append(scores, confTitleText)
		warnings = append(warnings, "title extracted from page text (may be imprecise)")
	} else {
		warnings = append(warnings, "could not determine title")
	}

	// Authors.
	if authors := ParseAuthorString(meta.Author); len(authors) > 0 {
		m.Authors = authors
		scores = append(scores, confAuthorMetadata)
	} else if authors := authorsFromLines(firstLines, firstHeight); len(authors) > 0 {
		m.Authors = authors
		scores = append(scores, confAuthorText)
		warnings = append(warnings, "authors extracted from page text (may be imprecise)")
	} else {
		warnings = append(warnings, "could not determine authors")
	}

	// Leading pages, for the text-based field extractors.
	bodyText := leadingText(doc, fieldPageLimit, "")

	// Year.
	if y := yearFromCreationDate(meta.CreationDate, currentYear); y != 0 {
		m.Year = y
		scores = append(scores, confYearMetadata)
	} else if y := yearFromText(bodyText, currentYear); y != 0 {
		m.Year = y
		scores = append(scores, confYearText)
	} else {
		warnings = append(warnings, "could not determine publication year")
	}

	// DOI.
	if doi := extractDOI(bodyText); doi != "" {
		m.DOI = doi
		scores = append(scores, confDOI)
	} else {
		warnings = append(warnings, "no DOI found")
	}

	// Abstract, scanned with page breaks preserved so the heading match
	// stays line-anchored.
	if abstract := extractAbstract(leadingText(doc, abstractPageLimit, "\n")); abstract != "" {
		m.Abstract = abstract
		scores = append(scores, confAbstract)
	} else {
		warnings = append(warnings, "could not find abstract")
	}

	// Remaining fields come straight from document metadata.
	m.Journal = strings.TrimSpace(meta.Subject)
	m.Publisher = cleanPublisher(strings.TrimSpace(meta.Creator))
	m.Keywords = splitKeywords(meta.Keywords)

	result.Success = true
	result.Metadata = m
	result.Warnings = warnings
	result.Confidence = meanScore(scores)
	return result
}

// leadingText concatenates the text of the first pages, up to limit, with
// sep appended after each page.
func leadingText(doc Doc, limit int, sep string) string {
	n := doc.PageCount()
	if n > limit {
		n = limit
	}
	var b strings.Builder
	for i := 1; i <= n; i++ {
		b.WriteString(doc.PageText(i))
		b.WriteString(sep)
	}
	return b.String()
}

func meanScore(scores []float64) float64 {
	if len(scores) == 0 {
		return 0.0
	}
	var sum float64
	for _, s := range scores {
		sum += s
	}
	return sum / float64(len(scores))
}
