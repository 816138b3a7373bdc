package citation

import (
	"strconv"
	"strings"
)

// bibtexEscaper escapes braces, which delimit values in BibTeX.
var bibtexEscaper = strings.NewReplacer("{", `\{`, "}", `\}`)

// ToBibTeX renders the metadata as a single @article entry. Empty fields
// are omitted and the last field carries no trailing comma. Only the
// abstract is brace-escaped; titles and author names are emitted verbatim.
func ToBibTeX(m CitationMetadata) string {
	lines := []string{"@article{" + m.BibTeXKey() + ","}

	appendField := func(name, value string) {
		if value != "" {
			lines = append(lines, "    "+name+" = {"+value+"},")
		}
	}

	appendField("author", strings.Join(m.Authors, " and "))
	appendField("title", m.Title)
	if m.Year != 0 {
		appendField("year", strconv.Itoa(m.Year))
	}
	appendField("journal", m.Journal)
	appendField("volume", m.Volume)
	appendField("number", m.Issue)
	appendField("pages", m.Pages)
	appendField("doi", m.DOI)
	appendField("publisher", m.Publisher)
	if m.Abstract != "" {
		appendField("abstract", bibtexEscaper.Replace(m.Abstract))
	}
	appendField("keywords", strings.Join(m.Keywords, ", "))

	last := len(lines) - 1
	lines[last] = strings.TrimSuffix(lines[last], ",")
	lines = append(lines, "}")

	return strings.Join(lines, "\n")
}
