package pdf

import "github.com/citekit/mcp-pdf-citations/internal/citation"

// Export formats accepted by the citation export operations.
const (
	FormatBibTeX  = "bibtex"
	FormatCSLJSON = "csl-json"
)

// FileInfo represents information about a PDF file
type FileInfo struct {
	Path         string `json:"path"`
	Name         string `json:"name"`
	Size         int64  `json:"size"`
	ModifiedTime string `json:"modified_time"`
}

// Request Types

// CitationExtractFileRequest represents a request to extract citation
// metadata from a PDF file
type CitationExtractFileRequest struct {
	Path string `json:"path"`
}

// CitationExportFileRequest represents a request to extract a citation and
// write it to disk in the requested format
type CitationExportFileRequest struct {
	Path       string `json:"path"`
	Format     string `json:"format,omitempty"`      // bibtex or csl-json, service default when empty
	OutputPath string `json:"output_path,omitempty"` // derived from Path when empty
}

// CitationBatchExportRequest represents a request to extract citations from
// every PDF in a directory and write one combined export file
type CitationBatchExportRequest struct {
	Directory  string `json:"directory,omitempty"` // configured directory when empty
	Format     string `json:"format,omitempty"`
	OutputPath string `json:"output_path,omitempty"`
}

// PDFValidateFileRequest represents a request to validate a PDF file
type PDFValidateFileRequest struct {
	Path string `json:"path"`
}

// PDFSearchDirectoryRequest represents a request to search for PDF files in a directory
type PDFSearchDirectoryRequest struct {
	Directory string `json:"directory"`
	Query     string `json:"query"`
}

// CitationServerInfoRequest represents a request for server information
type CitationServerInfoRequest struct{}

// Response Types

// CitationExtractFileResult represents the result of a citation extraction
type CitationExtractFileResult struct {
	Path   string                  `json:"path"`
	Result citation.CitationResult `json:"result"`
}

// CitationExportFileResult represents the result of a single-file export
type CitationExportFileResult struct {
	Path       string  `json:"path"`
	OutputPath string  `json:"output_path"`
	Format     string  `json:"format"`
	Confidence float64 `json:"confidence"`
	Content    string  `json:"content"`
}

// BatchExportEntry summarizes one file's outcome within a batch export
type BatchExportEntry struct {
	SourceFile string   `json:"source_file"`
	Success    bool     `json:"success"`
	Confidence float64  `json:"confidence"`
	Warnings   []string `json:"warnings,omitempty"`
	Error      string   `json:"error,omitempty"`
}

// CitationBatchExportResult represents the result of a batch export
type CitationBatchExportResult struct {
	Directory  string             `json:"directory"`
	OutputPath string             `json:"output_path"`
	Format     string             `json:"format"`
	TotalFiles int                `json:"total_files"`
	Exported   int                `json:"exported"`
	Failed     int                `json:"failed"`
	Entries    []BatchExportEntry `json:"entries"`
}

// PDFValidateFileResult represents the result of a PDF validation operation
type PDFValidateFileResult struct {
	Valid     bool   `json:"valid"`
	Path      string `json:"path"`
	Encrypted bool   `json:"encrypted"`
	Message   string `json:"message,omitempty"`
}

// PDFSearchDirectoryResult represents the result of a PDF search operation
type PDFSearchDirectoryResult struct {
	Files       []FileInfo `json:"files"`
	TotalCount  int        `json:"total_count"`
	Directory   string     `json:"directory"`
	SearchQuery string     `json:"search_query,omitempty"`
}

// CitationServerInfoResult represents server information and usage guidance
type CitationServerInfoResult struct {
	ServerName        string     `json:"server_name"`
	Version           string     `json:"version"`
	DefaultDirectory  string     `json:"default_directory"`
	MaxFileSize       int64      `json:"max_file_size"`
	DefaultFormat     string     `json:"default_format"`
	AvailableTools    []ToolInfo `json:"available_tools"`
	DirectoryContents []FileInfo `json:"directory_contents"`
	UsageGuidance     string     `json:"usage_guidance"`
}

// ToolInfo represents information about an available tool
type ToolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Usage       string `json:"usage"`
	Parameters  string `json:"parameters"`
}
