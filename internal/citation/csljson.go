package citation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// CSL-JSON item shapes, following the Citation Style Language data model
// consumed by Zotero and friends.
type cslName struct {
	Family  string `json:"family,omitempty"`
	Given   string `json:"given,omitempty"`
	Literal string `json:"literal,omitempty"`
}

type cslDate struct {
	DateParts [][]int `json:"date-parts"`
}

type cslItem struct {
	Type           string    `json:"type"`
	ID             string    `json:"id"`
	Title          string    `json:"title,omitempty"`
	Author         []cslName `json:"author,omitempty"`
	Issued         *cslDate  `json:"issued,omitempty"`
	ContainerTitle string    `json:"container-title,omitempty"`
	Volume         string    `json:"volume,omitempty"`
	Issue          string    `json:"issue,omitempty"`
	Page           string    `json:"page,omitempty"`
	DOI            string    `json:"DOI,omitempty"`
	Publisher      string    `json:"publisher,omitempty"`
	Abstract       string    `json:"abstract,omitempty"`
}

// parseCSLName splits one name into family/given parts. "Family, Given"
// splits on the comma, "Given Family" takes the last token as the family
// name, and single tokens become a literal name.
func parseCSLName(name string) cslName {
	if i := strings.Index(name, ","); i >= 0 {
		return cslName{
			Family: strings.TrimSpace(name[:i]),
			Given:  strings.TrimSpace(name[i+1:]),
		}
	}
	parts := strings.Fields(name)
	if len(parts) >= 2 {
		return cslName{
			Family: parts[len(parts)-1],
			Given:  strings.Join(parts[:len(parts)-1], " "),
		}
	}
	return cslName{Literal: name}
}

func cslItemFrom(m CitationMetadata) cslItem {
	item := cslItem{
		Type:           "article-journal",
		ID:             m.BibTeXKey(),
		Title:          m.Title,
		ContainerTitle: m.Journal,
		Volume:         m.Volume,
		Issue:          m.Issue,
		Page:           m.Pages,
		DOI:            m.DOI,
		Publisher:      m.Publisher,
		Abstract:       m.Abstract,
	}
	for _, author := range m.Authors {
		item.Author = append(item.Author, parseCSLName(author))
	}
	if m.Year != 0 {
		item.Issued = &cslDate{DateParts: [][]int{{m.Year}}}
	}
	return item
}

// ToCSLJSON renders the metadata as a CSL-JSON array holding one item.
func ToCSLJSON(m CitationMetadata) (string, error) {
	return marshalCSL([]cslItem{cslItemFrom(m)})
}

// ItemsToCSLJSON renders several records as a single CSL-JSON array.
func ItemsToCSLJSON(records []CitationMetadata) (string, error) {
	items := make([]cslItem, len(records))
	for i, m := range records {
		items[i] = cslItemFrom(m)
	}
	return marshalCSL(items)
}

func marshalCSL(items []cslItem) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(items); err != nil {
		return "", fmt.Errorf("failed to encode CSL-JSON: %w", err)
	}
	return strings.TrimRight(buf.String(), "\n"), nil
}
