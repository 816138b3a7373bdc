package document

import (
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
)

// Default page height in points, used when a page carries no usable
// MediaBox (US Letter).
const defaultPageHeight = 792.0

// Metadata holds the document information dictionary fields relevant to
// citation extraction. Absent keys read as empty strings so callers never
// have to distinguish "missing" from "empty".
type Metadata struct {
	Title        string `json:"title,omitempty"`
	Author       string `json:"author,omitempty"`
	Subject      string `json:"subject,omitempty"`
	Creator      string `json:"creator,omitempty"`
	Keywords     string `json:"keywords,omitempty"`
	CreationDate string `json:"creation_date,omitempty"`
}

// Document wraps an open PDF and exposes the views the citation extractor
// reads: the info dictionary, plain page text, and positioned text lines.
type Document struct {
	file   *os.File
	reader *pdf.Reader
	path   string
}

// Open opens the PDF at path. The caller must Close the returned document.
func Open(path string) (*Document, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}

	return &Document{
		file:   f,
		reader: r,
		path:   path,
	}, nil
}

// Path returns the path the document was opened from.
func (d *Document) Path() string {
	return d.path
}

// PageCount returns the number of pages in the document.
func (d *Document) PageCount() int {
	return d.reader.NumPage()
}

// Close releases the underlying file handle.
func (d *Document) Close() error {
	if d.file != nil {
		return d.file.Close()
	}
	return nil
}

// Metadata reads the trailer Info dictionary. The ledongthuc/pdf Value API
// panics on malformed values, so the walk is wrapped in a recover and
// partial results are returned as-is.
func (d *Document) Metadata() Metadata {
	var meta Metadata

	defer func() {
		// Metadata extraction failed part-way; keep whatever was read.
		_ = recover()
	}()

	trailer := d.reader.Trailer()
	if trailer.IsNull() {
		return meta
	}

	info := trailer.Key("Info")
	if info.IsNull() {
		return meta
	}

	meta.Title = infoString(info, "Title")
	meta.Author = infoString(info, "Author")
	meta.Subject = infoString(info, "Subject")
	meta.Creator = infoString(info, "Creator")
	meta.Keywords = infoString(info, "Keywords")
	meta.CreationDate = infoString(info, "CreationDate")

	return meta
}

// infoString reads a single string entry from the Info dictionary.
func infoString(info pdf.Value, key string) string {
	v := info.Key(key)
	if v.IsNull() {
		return ""
	}
	return strings.TrimSpace(v.Text())
}

// PageText returns the plain text of the 1-based page. Unreadable or
// out-of-range pages yield an empty string rather than an error; a page
// the library cannot decode should degrade the extraction, not abort it.
func (d *Document) PageText(pageNum int) (text string) {
	defer func() {
		if recover() != nil {
			text = ""
		}
	}()

	if pageNum < 1 || pageNum > d.reader.NumPage() {
		return ""
	}

	page := d.reader.Page(pageNum)
	if page.V.IsNull() {
		return ""
	}

	content, err := page.GetPlainText(nil)
	if err != nil {
		return ""
	}
	return content
}

// PageHeight returns the height of the 1-based page in points, taken from
// the page's MediaBox and falling back to US Letter when absent.
func (d *Document) PageHeight(pageNum int) (height float64) {
	height = defaultPageHeight

	defer func() {
		_ = recover()
	}()

	if pageNum < 1 || pageNum > d.reader.NumPage() {
		return height
	}

	page := d.reader.Page(pageNum)
	if page.V.IsNull() {
		return height
	}

	mediaBox := page.V.Key("MediaBox")
	if mediaBox.IsNull() || mediaBox.Len() != 4 {
		return height
	}

	y0 := mediaBox.Index(1).Float64()
	y1 := mediaBox.Index(3).Float64()
	if y1 > y0 {
		height = y1 - y0
	}
	return height
}

// PageLines returns the visual text lines of the 1-based page in document
// order. A page with no text yields an empty slice, not an error.
func (d *Document) PageLines(pageNum int) (lines []Line) {
	defer func() {
		if recover() != nil {
			lines = nil
		}
	}()

	if pageNum < 1 || pageNum > d.reader.NumPage() {
		return nil
	}

	page := d.reader.Page(pageNum)
	if page.V.IsNull() {
		return nil
	}

	return assembleLines(page.Content().Text, d.PageHeight(pageNum))
}
