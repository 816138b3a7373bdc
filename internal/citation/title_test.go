package citation

import (
	"testing"

	"github.com/citekit/mcp-pdf-citations/internal/document"
)

func TestTitleFromLines(t *testing.T) {
	const pageHeight = 792.0

	tests := []struct {
		name     string
		lines    []document.Line
		expected string
	}{
		{
			name: "largest font near the top wins",
			lines: []document.Line{
				{Text: "Journal of Examples", FontSize: 10, TopY: 40},
				{Text: "A Study of Extraction Heuristics", FontSize: 18, TopY: 80},
				{Text: "Jane Doe", FontSize: 11, TopY: 120},
			},
			expected: "A Study of Extraction Heuristics",
		},
		{
			name: "multi-line title joined in reading order",
			lines: []document.Line{
				{Text: "Heuristics in", FontSize: 17.5, TopY: 100},
				{Text: "A Long Treatise on Layout", FontSize: 18, TopY: 80},
				{Text: "body text follows here", FontSize: 10, TopY: 200},
			},
			expected: "A Long Treatise on Layout Heuristics in",
		},
		{
			name: "lower page text excluded",
			lines: []document.Line{
				{Text: "Section Heading In Huge Type", FontSize: 20, TopY: 400},
			},
			expected: "",
		},
		{
			name: "body sized text excluded",
			lines: []document.Line{
				{Text: "All text on this page is body sized", FontSize: 12, TopY: 80},
			},
			expected: "",
		},
		{
			name: "short fragments excluded",
			lines: []document.Line{
				{Text: "3", FontSize: 24, TopY: 40},
			},
			expected: "",
		},
		{
			name: "smaller heading outside the font band dropped",
			lines: []document.Line{
				{Text: "The Actual Title", FontSize: 20, TopY: 60},
				{Text: "A Subtitle Below", FontSize: 14, TopY: 90},
			},
			expected: "The Actual Title",
		},
		{
			name:     "no lines",
			lines:    nil,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := titleFromLines(tt.lines, pageHeight); got != tt.expected {
				t.Errorf("titleFromLines() = %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestCollapseWhitespace(t *testing.T) {
	if got := collapseWhitespace("  a \n b\t c  "); got != "a b c" {
		t.Errorf("collapseWhitespace() = %q, want %q", got, "a b c")
	}
}
