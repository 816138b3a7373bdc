package citation

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/citekit/mcp-pdf-citations/internal/document"
)

// Author inference thresholds.
const (
	// authorRegionFraction restricts candidates to the top half of the page.
	authorRegionFraction = 2.0

	// headerRegionFraction marks the top quarter, where title-sized text
	// is excluded from author candidates.
	headerRegionFraction = 4.0

	// authorGapLimit stops the walk once a vertical gap this large (in
	// points) separates a candidate from the last accepted author line;
	// a gap that size usually means the abstract or body has started.
	authorGapLimit = 100.0

	// authorNameMinLength / authorNameMaxLength bound a plausible
	// single-person name.
	authorNameMinLength = 5
	authorNameMaxLength = 40

	// authorNoiseRatio rejects lines where more than this fraction of the
	// characters fall outside the name alphabet.
	authorNoiseRatio = 0.3
)

// authorSeparators are applied in order, each one to every fragment the
// previous one produced, so a mixed string like "A; B and C" splits fully.
var authorSeparators = []string{"; ", " and ", " & ", ", and ", ","}

// lineSkipWords mark conference/journal boilerplate, affiliations and
// section headings; a line containing any of them is never an author line.
var lineSkipWords = []string{
	"abstract", "introduction", "university", "department",
	"keywords", "email", "http", "www", "doi", "figure",
	"table", "copyright", "received", "accepted", "published",
	"proceedings", "conference", "journal", "vol.", "pp.",
	"symposium", "ieee", "acm", "computing", "international",
	"workshop", "transactions", "letters", "annual", "edition",
}

// nameSkipWords reject individual split-out fragments that are
// institutions rather than people.
var nameSkipWords = []string{
	"university", "institute", "department", "college",
	"laboratory", "research", "center", "school", "@",
}

var (
	leadingYearRE = regexp.MustCompile(`^\d{4}\s`)
	nonNameCharRE = regexp.MustCompile(`[a-zA-Z\s,.\-'*\d]`)
	uppercaseRE   = regexp.MustCompile(`[A-Z]`)
	firstLastRE   = regexp.MustCompile(`[A-Z][a-z]+\s+[A-Z][a-z]+`)
	initialLastRE = regexp.MustCompile(`[A-Z]\.\s*[A-Z][a-z]+`)
	nameShapeRE   = regexp.MustCompile(`^[A-Z][a-z]+\.?\s+[A-Z]`)
)

// ParseAuthorString splits a raw author field into individual names by
// cascading through the known separators, trimming whitespace and
// dropping empty fragments.
func ParseAuthorString(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}

	fragments := []string{s}
	for _, sep := range authorSeparators {
		var next []string
		for _, frag := range fragments {
			if strings.Contains(frag, sep) {
				next = append(next, strings.Split(frag, sep)...)
			} else {
				next = append(next, frag)
			}
		}
		fragments = next
	}

	var authors []string
	for _, frag := range fragments {
		if frag = strings.TrimSpace(frag); frag != "" {
			authors = append(authors, frag)
		}
	}
	return authors
}

// looksLikeAuthorLine reports whether a line's text and font plausibly
// list author names rather than a title, affiliation or boilerplate.
func looksLikeAuthorLine(text string, fontSize, titleFontSize float64) bool {
	lower := strings.ToLower(text)
	for _, word := range lineSkipWords {
		if strings.Contains(lower, word) {
			return false
		}
	}

	// A leading 4-digit year is a conference/volume line.
	if leadingYearRE.MatchString(text) {
		return false
	}

	// Title-sized text is the title, not the byline.
	if titleFontSize > 0 && fontSize >= titleFontSize-1 {
		return false
	}

	noise := nonNameCharRE.ReplaceAllString(text, "")
	if float64(utf8.RuneCountInString(noise)) > float64(utf8.RuneCountInString(text))*authorNoiseRatio {
		return false
	}

	if !uppercaseRE.MatchString(text) {
		return false
	}
	if len(uppercaseRE.FindAllString(text, -1)) < 2 {
		return false
	}

	for _, sep := range []string{", ", " and ", " & "} {
		if strings.Contains(text, sep) {
			return true
		}
	}
	return firstLastRE.MatchString(text) || initialLastRE.MatchString(text)
}

type authorCandidate struct {
	text     string
	topY     float64
	fontSize float64
}

// authorsFromLines recovers the author list from the first page's lines.
// Returns names in document order (top-to-bottom, left-to-right within a
// line), deduplicated; an empty slice when nothing qualifies.
func authorsFromLines(lines []document.Line, pageHeight float64) []string {
	// The largest font in the top quarter stands in for the title size and
	// is used as the exclusion threshold below.
	var titleFontSize float64
	for _, ln := range lines {
		if ln.TopY < pageHeight/headerRegionFraction && ln.FontSize > titleFontSize {
			titleFontSize = ln.FontSize
		}
	}

	var candidates []authorCandidate
	for _, ln := range lines {
		text := strings.TrimSpace(ln.Text)
		if utf8.RuneCountInString(text) < 3 {
			continue
		}
		if ln.FontSize >= titleFontSize-1 && ln.TopY < pageHeight/headerRegionFraction {
			continue
		}
		if ln.TopY < pageHeight/authorRegionFraction && looksLikeAuthorLine(text, ln.FontSize, titleFontSize) {
			candidates = append(candidates, authorCandidate{text: text, topY: ln.TopY, fontSize: ln.FontSize})
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].topY < candidates[j].topY
	})

	var authors []string
	lastY := -100.0
	for _, c := range candidates {
		// Affiliation lines between author lines are tolerated, but a
		// large gap after at least one accepted author ends the block.
		if lastY > 0 && c.topY-lastY > authorGapLimit && len(authors) >= 1 {
			break
		}

		for _, name := range ParseAuthorString(c.text) {
			if !acceptableAuthorName(name, authors) {
				continue
			}
			authors = append(authors, name)
			lastY = c.topY
		}
	}
	return authors
}

// acceptableAuthorName validates a single split-out name fragment.
func acceptableAuthorName(name string, collected []string) bool {
	lower := strings.ToLower(name)
	for _, word := range nameSkipWords {
		if strings.Contains(lower, word) {
			return false
		}
	}

	n := utf8.RuneCountInString(name)
	if n < authorNameMinLength || n > authorNameMaxLength {
		return false
	}

	if !nameShapeRE.MatchString(name) {
		return false
	}

	for _, existing := range collected {
		if existing == name {
			return false
		}
	}
	return true
}
