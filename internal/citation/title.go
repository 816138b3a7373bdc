package citation

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/citekit/mcp-pdf-citations/internal/document"
)

// Title inference thresholds. Academic PDFs set the title as the largest
// text near the top of the first page; each threshold is independent so it
// can be tuned without touching the control flow.
const (
	// titleRegionFraction restricts candidates to the top third of the page.
	titleRegionFraction = 3.0

	// titleMinLength rejects page furniture such as page numbers.
	titleMinLength = 5

	// titleMinFontSize rejects body text.
	titleMinFontSize = 12.0

	// titleFontBand captures multi-line titles set in slightly varying
	// sizes without merging in the author block below.
	titleFontBand = 2.0
)

type titleCandidate struct {
	text     string
	fontSize float64
	topY     float64
}

// titleFromLines picks the most likely document title from the first
// page's lines, or returns an empty string when no line qualifies.
func titleFromLines(lines []document.Line, pageHeight float64) string {
	var candidates []titleCandidate
	for _, ln := range lines {
		text := strings.TrimSpace(ln.Text)
		if ln.TopY >= pageHeight/titleRegionFraction {
			continue
		}
		if utf8.RuneCountInString(text) <= titleMinLength || ln.FontSize <= titleMinFontSize {
			continue
		}
		candidates = append(candidates, titleCandidate{text: text, fontSize: ln.FontSize, topY: ln.TopY})
	}
	if len(candidates) == 0 {
		return ""
	}

	// Largest font first, then top-to-bottom within equal sizes.
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].fontSize != candidates[j].fontSize {
			return candidates[i].fontSize > candidates[j].fontSize
		}
		return candidates[i].topY < candidates[j].topY
	})

	largest := candidates[0].fontSize
	var parts []titleCandidate
	for _, c := range candidates {
		if c.fontSize < largest-titleFontBand {
			break
		}
		parts = append(parts, c)
	}

	// Restore reading order across the collected lines.
	sort.SliceStable(parts, func(i, j int) bool {
		return parts[i].topY < parts[j].topY
	})

	texts := make([]string, len(parts))
	for i, p := range parts {
		texts[i] = p.text
	}
	return collapseWhitespace(strings.Join(texts, " "))
}

// collapseWhitespace trims and squeezes runs of whitespace to single spaces.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
