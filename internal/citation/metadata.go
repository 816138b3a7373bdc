package citation

import (
	"regexp"
	"strconv"
	"strings"
)

// CitationMetadata is a bibliographic record extracted from a single PDF.
// All string fields default to empty strings and Authors/Keywords to nil,
// so exporters never branch on absence. Records are treated as immutable
// once assembled.
type CitationMetadata struct {
	Title     string   `json:"title"`
	Authors   []string `json:"authors"` // document order, not alphabetical
	Year      int      `json:"year"`    // 0 when unknown
	DOI       string   `json:"doi"`
	Abstract  string   `json:"abstract"`
	Journal   string   `json:"journal"`
	Volume    string   `json:"volume"`
	Issue     string   `json:"issue"`
	Pages     string   `json:"pages"`
	Publisher string   `json:"publisher"`
	Keywords  []string `json:"keywords"`
}

// CitationResult is the outcome envelope of one extraction call. When
// Success is false, Metadata is the zero record and ErrorMessage carries
// the cause; partial data never flips Success, it only adds Warnings.
type CitationResult struct {
	Success      bool             `json:"success"`
	Metadata     CitationMetadata `json:"metadata"`
	Confidence   float64          `json:"confidence"` // 0.0 to 1.0
	Warnings     []string         `json:"warnings,omitempty"`
	ErrorMessage string           `json:"error_message,omitempty"`
	SourceFile   string           `json:"source_file,omitempty"` // basename only
}

var nonLetterRE = regexp.MustCompile(`[^a-zA-Z]`)

// AuthorString returns the authors joined for display: a single name
// as-is, multiple names comma-joined with a final "and".
func (m CitationMetadata) AuthorString() string {
	switch len(m.Authors) {
	case 0:
		return ""
	case 1:
		return m.Authors[0]
	default:
		n := len(m.Authors)
		return strings.Join(m.Authors[:n-1], ", ") + " and " + m.Authors[n-1]
	}
}

// BibTeXKey derives a citation key from the first author's family name and
// the year: lowercase ASCII letters of the family name plus a 4-digit
// year, with "unknown" and "0000" standing in for absent parts.
func (m CitationMetadata) BibTeXKey() string {
	lastName := "unknown"
	if len(m.Authors) > 0 {
		first := m.Authors[0]
		if i := strings.Index(first, ","); i >= 0 {
			lastName = strings.TrimSpace(first[:i])
		} else if parts := strings.Fields(first); len(parts) > 0 {
			lastName = parts[len(parts)-1]
		}
		lastName = strings.ToLower(nonLetterRE.ReplaceAllString(lastName, ""))
	}

	year := "0000"
	if m.Year != 0 {
		year = strconv.Itoa(m.Year)
	}
	return lastName + year
}
