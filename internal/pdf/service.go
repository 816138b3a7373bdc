package pdf

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/citekit/mcp-pdf-citations/internal/citation"
	"github.com/citekit/mcp-pdf-citations/internal/pdf/security"
)

// Service handles citation operations by orchestrating the extractor and
// the supporting PDF components
type Service struct {
	maxFileSize   int64
	defaultFormat string
	workers       int
	extractor     *citation.Extractor
	validator     *Validator
	search        *Search
	pathValidator *security.PathValidator
}

// NewService creates a new citation service with all components
func NewService(maxFileSize int64, defaultFormat string, workers int, configuredDirectory string) (*Service, error) {
	if defaultFormat == "" {
		defaultFormat = FormatBibTeX
	}
	if defaultFormat != FormatBibTeX && defaultFormat != FormatCSLJSON {
		return nil, fmt.Errorf("unsupported export format: %s", defaultFormat)
	}
	if workers <= 0 {
		workers = 4
	}

	pathValidator, err := security.NewPathValidator(configuredDirectory)
	if err != nil {
		return nil, fmt.Errorf("failed to create path validator: %w", err)
	}

	return &Service{
		maxFileSize:   maxFileSize,
		defaultFormat: defaultFormat,
		workers:       workers,
		extractor:     citation.NewExtractor(),
		validator:     NewValidator(maxFileSize),
		search:        NewSearch(maxFileSize),
		pathValidator: pathValidator,
	}, nil
}

// CitationExtractFile extracts citation metadata from a single PDF file
func (s *Service) CitationExtractFile(req CitationExtractFileRequest) (*CitationExtractFileResult, error) {
	if err := s.pathValidator.ValidatePath(req.Path); err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}

	if info, err := os.Stat(req.Path); err == nil {
		if err := s.validator.ValidateFileInfo(req.Path, info); err != nil {
			return nil, err
		}
	}

	return &CitationExtractFileResult{
		Path:   req.Path,
		Result: s.extractor.Extract(req.Path),
	}, nil
}

// CitationExportFile extracts a citation and writes it to disk in the
// requested format, returning the rendered content alongside the path
// actually written.
func (s *Service) CitationExportFile(req CitationExportFileRequest) (*CitationExportFileResult, error) {
	if err := s.pathValidator.ValidatePath(req.Path); err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}

	format, err := s.resolveFormat(req.Format)
	if err != nil {
		return nil, err
	}

	result := s.extractor.Extract(req.Path)
	if !result.Success {
		return nil, fmt.Errorf("citation extraction failed: %s", result.ErrorMessage)
	}

	content, err := renderExport(format, result.Metadata)
	if err != nil {
		return nil, err
	}

	outputPath := req.OutputPath
	if outputPath == "" {
		outputPath = replaceExtension(req.Path, exportExtension(format))
	}
	outputPath, err = s.pathValidator.NormalizePath(outputPath)
	if err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}
	outputPath = uniquePath(outputPath)

	if err := os.WriteFile(outputPath, []byte(content+"\n"), 0o644); err != nil {
		return nil, fmt.Errorf("failed to write export file: %w", err)
	}

	return &CitationExportFileResult{
		Path:       req.Path,
		OutputPath: outputPath,
		Format:     format,
		Confidence: result.Confidence,
		Content:    content,
	}, nil
}

// CitationBatchExport extracts citations from every PDF in a directory and
// writes one combined export file. Files that fail to extract are reported
// in the entries but do not abort the batch.
func (s *Service) CitationBatchExport(req CitationBatchExportRequest) (*CitationBatchExportResult, error) {
	directory := req.Directory
	if directory == "" {
		directory = s.pathValidator.GetConfiguredDirectory()
	}
	if err := s.pathValidator.ValidateDirectory(directory); err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}

	format, err := s.resolveFormat(req.Format)
	if err != nil {
		return nil, err
	}

	files, err := s.search.FindPDFsInDirectoryLimited(directory, 0)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no PDF files found in directory: %s", directory)
	}

	results := s.extractAll(files)

	var records []citation.CitationMetadata
	entries := make([]BatchExportEntry, len(results))
	exported := 0
	for i, r := range results {
		entries[i] = BatchExportEntry{
			SourceFile: r.SourceFile,
			Success:    r.Success,
			Confidence: r.Confidence,
			Warnings:   r.Warnings,
			Error:      r.ErrorMessage,
		}
		if r.Success {
			records = append(records, r.Metadata)
			exported++
		}
	}
	if exported == 0 {
		return nil, fmt.Errorf("no citations could be extracted from %s", directory)
	}

	content, err := renderBatchExport(format, records)
	if err != nil {
		return nil, err
	}

	outputPath := req.OutputPath
	if outputPath == "" {
		outputPath = filepath.Join(directory, "citations"+exportExtension(format))
	}
	outputPath, err = s.pathValidator.NormalizePath(outputPath)
	if err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}
	outputPath = uniquePath(outputPath)

	if err := os.WriteFile(outputPath, []byte(content+"\n"), 0o644); err != nil {
		return nil, fmt.Errorf("failed to write export file: %w", err)
	}

	return &CitationBatchExportResult{
		Directory:  directory,
		OutputPath: outputPath,
		Format:     format,
		TotalFiles: len(files),
		Exported:   exported,
		Failed:     len(files) - exported,
		Entries:    entries,
	}, nil
}

// extractAll runs extractions over a bounded worker pool, keeping results
// in input order.
func (s *Service) extractAll(files []FileInfo) []citation.CitationResult {
	results := make([]citation.CitationResult, len(files))

	jobs := make(chan int)
	var wg sync.WaitGroup

	workers := s.workers
	if workers > len(files) {
		workers = len(files)
	}

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = s.extractor.Extract(files[i].Path)
			}
		}()
	}

	for i := range files {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return results
}

// PDFValidateFile performs validation on a PDF file
func (s *Service) PDFValidateFile(req PDFValidateFileRequest) (*PDFValidateFileResult, error) {
	if err := s.pathValidator.ValidatePath(req.Path); err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}
	return s.validator.ValidateFile(req)
}

// PDFSearchDirectory searches for PDF files in a directory
func (s *Service) PDFSearchDirectory(req PDFSearchDirectoryRequest) (*PDFSearchDirectoryResult, error) {
	if req.Directory == "" {
		req.Directory = s.pathValidator.GetConfiguredDirectory()
	}

	if err := s.pathValidator.ValidateDirectory(req.Directory); err != nil {
		return nil, fmt.Errorf("security validation failed: %w", err)
	}

	return s.search.SearchDirectory(req)
}

// GetMaxFileSize returns the maximum file size limit
func (s *Service) GetMaxFileSize() int64 {
	return s.maxFileSize
}

// DefaultFormat returns the configured default export format
func (s *Service) DefaultFormat() string {
	return s.defaultFormat
}

// IsValidPDF performs a quick validation check on a file
func (s *Service) IsValidPDF(filePath string) bool {
	return s.validator.IsValidPDF(filePath)
}

// CountPDFsInDirectory counts the number of valid PDF files in a directory
func (s *Service) CountPDFsInDirectory(directory string) (int, error) {
	return s.search.CountPDFsInDirectory(directory)
}

// CitationServerInfo returns server information and usage guidance
func (s *Service) CitationServerInfo(req CitationServerInfoRequest, serverName, version,
	defaultDirectory string,
) (*CitationServerInfoResult, error) {
	validatedDir := defaultDirectory
	if err := s.pathValidator.ValidateDirectory(defaultDirectory); err != nil {
		validatedDir = s.pathValidator.GetConfiguredDirectory()
	}

	// Scan the directory with a timeout so a slow filesystem cannot hang
	// the info call. Capped at 100 entries.
	directoryContents := []FileInfo{}

	resultChan := make(chan []FileInfo, 1)
	errorChan := make(chan error, 1)

	go func() {
		files, err := s.search.FindPDFsInDirectoryLimited(validatedDir, 100)
		if err != nil {
			errorChan <- err
			return
		}
		resultChan <- files
	}()

	select {
	case files := <-resultChan:
		directoryContents = files
	case <-errorChan:
		directoryContents = []FileInfo{}
	case <-time.After(5 * time.Second):
		directoryContents = []FileInfo{}
	}

	availableTools := []ToolInfo{
		{
			Name:        "cite_extract_file",
			Description: "Extract bibliographic citation metadata from a PDF file",
			Usage: "Use this tool to pull title, authors, year, DOI, abstract and related fields " +
				"from a PDF. Check the confidence score and warnings in the response.",
			Parameters: "path (required): Full absolute path to the PDF file",
		},
		{
			Name:        "cite_export_file",
			Description: "Extract a citation and write it to disk as BibTeX or CSL-JSON",
			Usage: "Use this tool to produce a .bib or .json citation file next to the PDF. " +
				"Existing files are never overwritten; a numbered suffix is added instead.",
			Parameters: "path (required): Full absolute path to the PDF file, " +
				"format (optional): bibtex or csl-json, " +
				"output_path (optional): where to write the export",
		},
		{
			Name:        "cite_batch_export",
			Description: "Extract citations from every PDF in a directory into one combined file",
			Usage: "Use this tool to build a bibliography for a whole directory. Files that fail " +
				"extraction are listed in the response but do not abort the batch.",
			Parameters: "directory (optional): Directory to scan (uses default if empty), " +
				"format (optional): bibtex or csl-json, " +
				"output_path (optional): where to write the combined export",
		},
		{
			Name:        "pdf_validate_file",
			Description: "Validate if a file is a readable PDF and report encryption",
			Usage:       "Use this tool to check if a file is a valid PDF before extracting citations.",
			Parameters:  "path (required): Full absolute path to the PDF file",
		},
		{
			Name:        "pdf_search_directory",
			Description: "Search for PDF files in a directory with optional fuzzy search",
			Usage: "Use this tool to find PDF files in the default directory or any specified " +
				"directory. Supports fuzzy search by filename.",
			Parameters: "directory (optional): Directory path to search (uses default if empty), " +
				"query (optional): Search query for fuzzy matching",
		},
		{
			Name:        "cite_server_info",
			Description: "Get server configuration, available tools and usage guidance",
			Usage:       "Use this tool to discover the configured directory and export defaults.",
			Parameters:  "none",
		},
	}

	usageGuidance := `Citation MCP Server Usage Guide:

1. START WITH DISCOVERY:
   - Use 'pdf_search_directory' to find available PDF files

2. VALIDATE FILES:
   - Use 'pdf_validate_file' to check if a file is readable before processing
   - Encrypted PDFs may yield partial citation metadata

3. EXTRACT CITATIONS:
   - Use 'cite_extract_file' to get structured citation metadata
   - Confidence is 0.0-1.0; review warnings for fields inferred from page text

4. EXPORT:
   - Use 'cite_export_file' for a single PDF (BibTeX or CSL-JSON)
   - Use 'cite_batch_export' to build one bibliography for a whole directory

IMPORTANT NOTES:
- Always use absolute file paths
- The server can handle files up to ` + fmt.Sprintf("%d", s.maxFileSize/(1024*1024)) + `MB
- Exports never overwrite existing files; a numbered suffix is added instead`

	return &CitationServerInfoResult{
		ServerName:        serverName,
		Version:           version,
		DefaultDirectory:  validatedDir,
		MaxFileSize:       s.maxFileSize,
		DefaultFormat:     s.defaultFormat,
		AvailableTools:    availableTools,
		DirectoryContents: directoryContents,
		UsageGuidance:     usageGuidance,
	}, nil
}

// ValidateConfiguration validates the service configuration
func (s *Service) ValidateConfiguration() error {
	if s.maxFileSize <= 0 {
		return fmt.Errorf("maxFileSize must be greater than 0")
	}

	if s.maxFileSize > 1024*1024*1024 { // 1GB limit
		return fmt.Errorf("maxFileSize cannot exceed 1GB")
	}

	return nil
}

// resolveFormat applies the service default and rejects unknown formats.
func (s *Service) resolveFormat(format string) (string, error) {
	if format == "" {
		return s.defaultFormat, nil
	}
	if format != FormatBibTeX && format != FormatCSLJSON {
		return "", fmt.Errorf("unsupported export format: %s", format)
	}
	return format, nil
}

// renderExport renders one record in the given format.
func renderExport(format string, m citation.CitationMetadata) (string, error) {
	switch format {
	case FormatBibTeX:
		return citation.ToBibTeX(m), nil
	case FormatCSLJSON:
		return citation.ToCSLJSON(m)
	default:
		return "", fmt.Errorf("unsupported export format: %s", format)
	}
}

// renderBatchExport renders several records as one document: BibTeX
// entries separated by blank lines, or a single CSL-JSON array.
func renderBatchExport(format string, records []citation.CitationMetadata) (string, error) {
	switch format {
	case FormatBibTeX:
		entries := make([]string, len(records))
		for i, m := range records {
			entries[i] = citation.ToBibTeX(m)
		}
		return strings.Join(entries, "\n\n"), nil
	case FormatCSLJSON:
		return citation.ItemsToCSLJSON(records)
	default:
		return "", fmt.Errorf("unsupported export format: %s", format)
	}
}

// exportExtension maps a format to its conventional file extension.
func exportExtension(format string) string {
	if format == FormatCSLJSON {
		return ".json"
	}
	return ".bib"
}

// replaceExtension swaps the extension of path for ext.
func replaceExtension(path, ext string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}

// uniquePath returns path if nothing exists there, otherwise the first
// stem_N variant that is free.
func uniquePath(path string) string {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return path
	}

	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(path, ext)
	for counter := 1; ; counter++ {
		candidate := fmt.Sprintf("%s_%d%s", stem, counter, ext)
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate
		}
	}
}
