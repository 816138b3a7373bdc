package citation

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestParseCSLName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected cslName
	}{
		{
			name:     "family comma given",
			input:    "Doe, Jane",
			expected: cslName{Family: "Doe", Given: "Jane"},
		},
		{
			name:     "given then family",
			input:    "Jane Doe",
			expected: cslName{Family: "Doe", Given: "Jane"},
		},
		{
			name:     "middle names join the given part",
			input:    "Jane Q. Doe",
			expected: cslName{Family: "Doe", Given: "Jane Q."},
		},
		{
			name:     "single token becomes literal",
			input:    "Aristotle",
			expected: cslName{Literal: "Aristotle"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseCSLName(tt.input); got != tt.expected {
				t.Errorf("parseCSLName(%q) = %+v, want %+v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestToCSLJSON(t *testing.T) {
	m := CitationMetadata{
		Title:    "A Study of Extraction Heuristics",
		Authors:  []string{"Doe, Jane", "John Smith"},
		Year:     2019,
		DOI:      "10.1000/182",
		Journal:  "Journal of Examples",
		Volume:   "12",
		Issue:    "3",
		Pages:    "101-120",
		Abstract: "We study things.",
	}

	out, err := ToCSLJSON(m)
	if err != nil {
		t.Fatalf("ToCSLJSON returned error: %v", err)
	}

	var items []map[string]any
	if err := json.Unmarshal([]byte(out), &items); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, out)
	}
	if len(items) != 1 {
		t.Fatalf("expected a single-item array, got %d items", len(items))
	}

	item := items[0]
	if item["type"] != "article-journal" {
		t.Errorf("type = %v, want article-journal", item["type"])
	}
	if item["id"] != "doe2019" {
		t.Errorf("id = %v, want doe2019", item["id"])
	}
	if item["container-title"] != "Journal of Examples" {
		t.Errorf("container-title = %v", item["container-title"])
	}
	if item["DOI"] != "10.1000/182" {
		t.Errorf("DOI = %v, want capitalized DOI key present", item["DOI"])
	}
	if item["page"] != "101-120" {
		t.Errorf("page = %v, want 101-120", item["page"])
	}

	authors, ok := item["author"].([]any)
	if !ok || len(authors) != 2 {
		t.Fatalf("author = %v, want two names", item["author"])
	}
	first := authors[0].(map[string]any)
	if first["family"] != "Doe" || first["given"] != "Jane" {
		t.Errorf("first author = %v", first)
	}

	issued, ok := item["issued"].(map[string]any)
	if !ok {
		t.Fatalf("issued = %v", item["issued"])
	}
	parts := issued["date-parts"].([]any)
	inner := parts[0].([]any)
	if year := inner[0].(float64); year != 2019 {
		t.Errorf("issued year = %v, want 2019", year)
	}
}

func TestToCSLJSON_OmitsEmptyFields(t *testing.T) {
	out, err := ToCSLJSON(CitationMetadata{Title: "Only a Title"})
	if err != nil {
		t.Fatalf("ToCSLJSON returned error: %v", err)
	}

	for _, key := range []string{"author", "issued", "DOI", "volume", "issue", "page", "publisher", "abstract"} {
		if strings.Contains(out, `"`+key+`"`) {
			t.Errorf("empty field %q should be omitted:\n%s", key, out)
		}
	}
}

func TestToCSLJSON_NoHTMLEscaping(t *testing.T) {
	out, err := ToCSLJSON(CitationMetadata{Title: "Ions & <Atoms>"})
	if err != nil {
		t.Fatalf("ToCSLJSON returned error: %v", err)
	}
	if !strings.Contains(out, "Ions & <Atoms>") {
		t.Errorf("angle brackets and ampersands should not be escaped:\n%s", out)
	}
}

func TestItemsToCSLJSON(t *testing.T) {
	records := []CitationMetadata{
		{Title: "First", Authors: []string{"Doe, Jane"}, Year: 2019},
		{Title: "Second", Authors: []string{"Smith, John"}, Year: 2020},
	}

	out, err := ItemsToCSLJSON(records)
	if err != nil {
		t.Fatalf("ItemsToCSLJSON returned error: %v", err)
	}

	var items []map[string]any
	if err := json.Unmarshal([]byte(out), &items); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
	if items[0]["id"] != "doe2019" || items[1]["id"] != "smith2020" {
		t.Errorf("ids = %v, %v", items[0]["id"], items[1]["id"])
	}
}
