package citation

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// DOI extraction: an optional doi prefix, the 10.<registrant>/ directory
// indicator, then everything up to whitespace or a closing bracket.
var (
	doiRE       = regexp.MustCompile(`(?i)(?:doi[:\s]*)?10\.\d{4,}/[^\s\]>)"}]+`)
	doiPrefixRE = regexp.MustCompile(`(?i)^doi[:\s]*`)
)

// extractDOI searches text for a DOI, stripping any doi: prefix and
// trailing sentence punctuation. Returns an empty string when none found.
func extractDOI(text string) string {
	match := doiRE.FindString(text)
	if match == "" {
		return ""
	}
	match = doiPrefixRE.ReplaceAllString(match, "")
	return strings.TrimRight(match, ".,;:")
}

// Year extraction.
var (
	creationYearRE = regexp.MustCompile(`D:(\d{4})`)

	// yearContextPatterns anchor a 4-digit year to publication wording;
	// tried in order, first plausible hit wins.
	yearContextPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(?:published|received|accepted|copyright|©|\(c\)).*?(\d{4})`),
		regexp.MustCompile(`(?i)(\d{4})(?:\s*[-–]\s*\d{4})?\s*(?:by|copyright|©)`),
		regexp.MustCompile(`(?i)(?:vol\.?|volume).*?(\d{4})`),
	}

	anyYearRE = regexp.MustCompile(`\b(19\d{2}|20\d{2})\b`)
)

// yearScanWindow bounds the free-scan fallback to the head of the text.
const yearScanWindow = 5000

// yearFromCreationDate parses the year out of a PDF date string
// (D:YYYYMMDDHHmmSS), accepting [1900, currentYear+1]. Returns 0 when
// absent or implausible.
func yearFromCreationDate(date string, currentYear int) int {
	m := creationYearRE.FindStringSubmatch(date)
	if m == nil {
		return 0
	}
	year, _ := strconv.Atoi(m[1])
	if year >= 1900 && year <= currentYear+1 {
		return year
	}
	return 0
}

// yearFromText mines page text for a publication year in
// [1950, currentYear+1]. Context-anchored patterns are tried first; the
// fallback counts every plausible 4-digit token in the leading window and
// returns the most frequent one. Ties between equally frequent years go
// to the year whose first occurrence appears earliest in the text.
func yearFromText(text string, currentYear int) int {
	plausible := func(y int) bool {
		return y >= 1950 && y <= currentYear+1
	}

	for _, re := range yearContextPatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			if year, _ := strconv.Atoi(m[1]); plausible(year) {
				return year
			}
		}
	}

	window := text
	if len(window) > yearScanWindow {
		window = window[:yearScanWindow]
	}

	counts := make(map[int]int)
	var firstSeen []int
	for _, m := range anyYearRE.FindAllStringSubmatch(window, -1) {
		year, _ := strconv.Atoi(m[1])
		if !plausible(year) {
			continue
		}
		if counts[year] == 0 {
			firstSeen = append(firstSeen, year)
		}
		counts[year]++
	}

	best := 0
	for _, year := range firstSeen {
		if counts[year] > counts[best] {
			best = year
		}
	}
	return best
}

// Abstract extraction: everything from an Abstract heading up to the
// keywords/introduction/first-section marker or end of text.
var (
	abstractRE    = regexp.MustCompile(`(?is)(?:^|\n)\s*abstract\s*[:\-—]?\s*\n?(.*?)(?:\n\s*(?:keywords|introduction|1\.|1\s|background|I\.)|\z)`)
	hyphenBreakRE = regexp.MustCompile(`-\s+`)
)

const (
	abstractMinLength = 50
	abstractMaxLength = 2000
)

// extractAbstract finds and cleans the abstract: line-wrap hyphenation
// artifacts removed, whitespace collapsed, very short matches rejected,
// overlong ones truncated.
func extractAbstract(text string) string {
	m := abstractRE.FindStringSubmatch(text)
	if m == nil {
		return ""
	}

	abstract := strings.TrimSpace(m[1])
	abstract = hyphenBreakRE.ReplaceAllString(abstract, "")
	abstract = collapseWhitespace(abstract)

	if utf8.RuneCountInString(abstract) <= abstractMinLength {
		return ""
	}
	if runes := []rune(abstract); len(runes) > abstractMaxLength {
		abstract = string(runes[:abstractMaxLength])
	}
	return abstract
}

// publisherNoiseRE matches PDF-producing software that ends up in the
// creator/producer metadata of most documents; such values carry no
// bibliographic information.
var publisherNoiseRE = regexp.MustCompile(`(?i)certified by|pdfexpress|acrobat|adobe|microsoft|word|latex|pdflatex|dvips|ghostscript|distiller`)

// cleanPublisher blanks out tool noise and passes real publishers through.
func cleanPublisher(publisher string) string {
	if publisher == "" || publisherNoiseRE.MatchString(publisher) {
		return ""
	}
	return publisher
}

// splitKeywords splits a comma-separated metadata keywords field.
func splitKeywords(keywords string) []string {
	var out []string
	for _, k := range strings.Split(keywords, ",") {
		if k = strings.TrimSpace(k); k != "" {
			out = append(out, k)
		}
	}
	return out
}
