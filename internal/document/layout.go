package document

import (
	"strings"

	"github.com/ledongthuc/pdf"
)

// Line is one visual text line with the layout attributes the citation
// heuristics key on. Text is the raw concatenation of the line's runs;
// whitespace normalization is left to the caller.
type Line struct {
	Text     string  `json:"text"`
	FontSize float64 `json:"font_size"` // largest font size in the line
	TopY     float64 `json:"top_y"`     // distance from the top edge of the page
}

const (
	// lineYTolerance merges runs whose baselines differ by less than this
	// many points into one visual line.
	lineYTolerance = 2.0

	// wordGapFactor is the fraction of the font size an X gap between two
	// runs must exceed to count as a word boundary. The library reports
	// positioned runs rather than whole-word spans, so spaces dropped by
	// the content stream have to be re-inserted from geometry.
	wordGapFactor = 0.3
)

// assembleLines groups positioned text runs into visual lines, preserving
// document order. Each line records its concatenated text, the largest
// font size of its runs, and its distance from the top of the page.
func assembleLines(texts []pdf.Text, pageHeight float64) []Line {
	if len(texts) == 0 {
		return nil
	}

	var lines []Line
	var b strings.Builder
	var lineY, maxFont, prevEndX float64
	started := false

	flush := func() {
		if !started {
			return
		}
		lines = append(lines, Line{
			Text:     b.String(),
			FontSize: maxFont,
			TopY:     pageHeight - lineY,
		})
		b.Reset()
		started = false
	}

	for _, t := range texts {
		if t.S == "" {
			continue
		}

		sameLine := started && abs(t.Y-lineY) <= lineYTolerance
		if !sameLine {
			flush()
			lineY = t.Y
			maxFont = t.FontSize
			started = true
		} else {
			if gap := t.X - prevEndX; gap >= wordGapFactor*t.FontSize && !strings.HasSuffix(b.String(), " ") {
				b.WriteString(" ")
			}
			if t.FontSize > maxFont {
				maxFont = t.FontSize
			}
		}

		b.WriteString(t.S)
		prevEndX = t.X + t.W
	}
	flush()

	return lines
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
