package mcp

import (
	"context"
	"fmt"
	"log"

	"github.com/citekit/mcp-pdf-citations/internal/config"
	"github.com/citekit/mcp-pdf-citations/internal/pdf"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Server represents the MCP server instance
type Server struct {
	config     *config.Config
	pdfService *pdf.Service
	mcpServer  *server.MCPServer
}

// NewServer creates a new MCP server instance
func NewServer(cfg *config.Config, pdfService *pdf.Service) (*Server, error) {
	if pdfService == nil {
		return nil, fmt.Errorf("pdfService cannot be nil")
	}

	mcpServer := server.NewMCPServer(
		cfg.ServerName,
		cfg.Version,
		server.WithToolCapabilities(false), // We don't support dynamic tool capabilities
	)

	s := &Server{
		config:     cfg,
		pdfService: pdfService,
		mcpServer:  mcpServer,
	}

	s.registerTools()

	return s, nil
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	citeExtractFileTool := mcp.NewTool(
		"cite_extract_file",
		mcp.WithDescription("Extract bibliographic citation metadata from a PDF file"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Full path to the PDF file"),
		),
	)
	s.mcpServer.AddTool(citeExtractFileTool, s.handleCiteExtractFile)

	citeExportFileTool := mcp.NewTool(
		"cite_export_file",
		mcp.WithDescription("Extract a citation from a PDF and write it to disk as BibTeX or CSL-JSON"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Full path to the PDF file"),
		),
		mcp.WithString("format",
			mcp.Description("Export format: bibtex or csl-json (uses server default if empty)"),
		),
		mcp.WithString("output_path",
			mcp.Description("Where to write the export (derived from the PDF path if empty)"),
		),
	)
	s.mcpServer.AddTool(citeExportFileTool, s.handleCiteExportFile)

	citeBatchExportTool := mcp.NewTool(
		"cite_batch_export",
		mcp.WithDescription("Extract citations from every PDF in a directory into one combined export file"),
		mcp.WithString("directory",
			mcp.Description("Directory to scan (uses default if empty)"),
		),
		mcp.WithString("format",
			mcp.Description("Export format: bibtex or csl-json (uses server default if empty)"),
		),
		mcp.WithString("output_path",
			mcp.Description("Where to write the combined export (defaults into the directory)"),
		),
	)
	s.mcpServer.AddTool(citeBatchExportTool, s.handleCiteBatchExport)

	pdfValidateFileTool := mcp.NewTool(
		"pdf_validate_file",
		mcp.WithDescription("Validate if a file is a readable PDF and report encryption"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Full path to the PDF file"),
		),
	)
	s.mcpServer.AddTool(pdfValidateFileTool, s.handlePDFValidateFile)

	pdfSearchDirectoryTool := mcp.NewTool(
		"pdf_search_directory",
		mcp.WithDescription("Search for PDF files in a directory with optional fuzzy search"),
		mcp.WithString("directory",
			mcp.Description("Directory path to search (uses default if empty)"),
		),
		mcp.WithString("query",
			mcp.Description("Optional search query for fuzzy matching"),
		),
	)
	s.mcpServer.AddTool(pdfSearchDirectoryTool, s.handlePDFSearchDirectory)

	citeServerInfoTool := mcp.NewTool(
		"cite_server_info",
		mcp.WithDescription("Get server information, available tools, directory contents, and usage guidance"),
	)
	s.mcpServer.AddTool(citeServerInfoTool, s.handleCiteServerInfo)
}

// Handler functions
func (s *Server) handleCiteExtractFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	req := pdf.CitationExtractFileRequest{Path: path}
	result, err := s.pdfService.CitationExtractFile(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	responseText := s.formatCitationExtractFileResult(result)
	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handleCiteExportFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	args := request.GetArguments()
	format := ""
	if f, ok := args["format"].(string); ok {
		format = f
	}
	outputPath := ""
	if o, ok := args["output_path"].(string); ok {
		outputPath = o
	}

	req := pdf.CitationExportFileRequest{
		Path:       path,
		Format:     format,
		OutputPath: outputPath,
	}
	result, err := s.pdfService.CitationExportFile(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	responseText := fmt.Sprintf("Exported citation for %s\n", result.Path)
	responseText += fmt.Sprintf("Format: %s\n", result.Format)
	responseText += fmt.Sprintf("Written to: %s\n", result.OutputPath)
	responseText += fmt.Sprintf("Confidence: %s\n", confidenceBand(result.Confidence))
	responseText += "\n" + result.Content

	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handleCiteBatchExport(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()

	directory := s.config.PDFDirectory // default
	if dir, ok := args["directory"].(string); ok && dir != "" {
		directory = dir
	}
	format := ""
	if f, ok := args["format"].(string); ok {
		format = f
	}
	outputPath := ""
	if o, ok := args["output_path"].(string); ok {
		outputPath = o
	}

	req := pdf.CitationBatchExportRequest{
		Directory:  directory,
		Format:     format,
		OutputPath: outputPath,
	}
	result, err := s.pdfService.CitationBatchExport(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	responseText := s.formatCitationBatchExportResult(result)
	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handlePDFValidateFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	req := pdf.PDFValidateFileRequest{Path: path}
	result, err := s.pdfService.PDFValidateFile(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var responseText string
	switch {
	case result.Valid && result.Encrypted:
		responseText = fmt.Sprintf("PDF file %s is valid but encrypted: %s", result.Path, result.Message)
	case result.Valid:
		responseText = fmt.Sprintf("PDF file %s is valid and readable", result.Path)
	default:
		responseText = fmt.Sprintf("PDF validation failed for %s: %s", result.Path, result.Message)
	}

	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handlePDFSearchDirectory(ctx context.Context, request mcp.CallToolRequest) (
	*mcp.CallToolResult, error,
) {
	args := request.GetArguments()

	directory := s.config.PDFDirectory // default
	if dir, ok := args["directory"].(string); ok && dir != "" {
		directory = dir
	}

	query := ""
	if q, ok := args["query"].(string); ok {
		query = q
	}

	req := pdf.PDFSearchDirectoryRequest{
		Directory: directory,
		Query:     query,
	}

	result, err := s.pdfService.PDFSearchDirectory(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var responseText string
	if result.TotalCount == 0 {
		responseText = fmt.Sprintf("No PDF files found in directory: %s", result.Directory)
		if result.SearchQuery != "" {
			responseText += fmt.Sprintf(" (searched for: %s)", result.SearchQuery)
		}
	} else {
		responseText = s.formatPDFSearchDirectoryResult(result)
	}

	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handleCiteServerInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	req := pdf.CitationServerInfoRequest{}
	result, err := s.pdfService.CitationServerInfo(req, s.config.ServerName, s.config.Version, s.config.PDFDirectory)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	responseText := s.formatCitationServerInfoResult(result)
	return mcp.NewToolResultText(responseText), nil
}

// confidenceBand maps a 0-1 confidence score to a coarse label.
func confidenceBand(confidence float64) string {
	switch {
	case confidence >= 0.7:
		return fmt.Sprintf("High (%.2f)", confidence)
	case confidence >= 0.4:
		return fmt.Sprintf("Medium (%.2f)", confidence)
	default:
		return fmt.Sprintf("Low (%.2f)", confidence)
	}
}

// Formatting methods
func (s *Server) formatCitationExtractFileResult(result *pdf.CitationExtractFileResult) string {
	r := result.Result

	if !r.Success {
		return fmt.Sprintf("Citation extraction failed for %s: %s", result.Path, r.ErrorMessage)
	}

	m := r.Metadata
	text := fmt.Sprintf("Citation extracted from: %s\n", result.Path)
	text += fmt.Sprintf("Confidence: %s\n\n", confidenceBand(r.Confidence))

	if m.Title != "" {
		text += fmt.Sprintf("Title: %s\n", m.Title)
	}
	if len(m.Authors) > 0 {
		text += fmt.Sprintf("Authors: %s\n", m.AuthorString())
	}
	if m.Year != 0 {
		text += fmt.Sprintf("Year: %d\n", m.Year)
	}
	if m.DOI != "" {
		text += fmt.Sprintf("DOI: %s\n", m.DOI)
	}
	if m.Journal != "" {
		text += fmt.Sprintf("Journal: %s\n", m.Journal)
	}
	if m.Publisher != "" {
		text += fmt.Sprintf("Publisher: %s\n", m.Publisher)
	}
	if len(m.Keywords) > 0 {
		text += fmt.Sprintf("Keywords: %v\n", m.Keywords)
	}
	if m.Abstract != "" {
		text += fmt.Sprintf("\nAbstract:\n%s\n", m.Abstract)
	}

	if len(r.Warnings) > 0 {
		text += "\nWarnings:\n"
		for _, w := range r.Warnings {
			text += fmt.Sprintf("  - %s\n", w)
		}
	}

	return text
}

func (s *Server) formatCitationBatchExportResult(result *pdf.CitationBatchExportResult) string {
	text := fmt.Sprintf("Batch export for directory: %s\n", result.Directory)
	text += fmt.Sprintf("Format: %s\n", result.Format)
	text += fmt.Sprintf("Written to: %s\n", result.OutputPath)
	text += fmt.Sprintf("Exported %d of %d file(s), %d failed\n", result.Exported, result.TotalFiles, result.Failed)

	text += "\nFiles:\n"
	for i, entry := range result.Entries {
		status := "ok"
		if !entry.Success {
			status = "failed"
		}
		text += fmt.Sprintf("%d. %s [%s]", i+1, entry.SourceFile, status)
		if entry.Success {
			text += fmt.Sprintf(" confidence: %s", confidenceBand(entry.Confidence))
		} else if entry.Error != "" {
			text += fmt.Sprintf(" (%s)", entry.Error)
		}
		text += "\n"
		for _, w := range entry.Warnings {
			text += fmt.Sprintf("   - %s\n", w)
		}
	}

	return text
}

func (s *Server) formatPDFSearchDirectoryResult(result *pdf.PDFSearchDirectoryResult) string {
	text := fmt.Sprintf("Found %d PDF file(s) in directory: %s\n", result.TotalCount, result.Directory)
	if result.SearchQuery != "" {
		text += fmt.Sprintf("Search query: %s\n", result.SearchQuery)
	}
	text += "\nFiles:\n"

	for i, file := range result.Files {
		text += fmt.Sprintf("%d. %s\n", i+1, file.Name)
		text += fmt.Sprintf("   Path: %s\n", file.Path)
		text += fmt.Sprintf("   Size: %d bytes\n", file.Size)
		text += fmt.Sprintf("   Modified: %s\n", file.ModifiedTime)
		if i < len(result.Files)-1 {
			text += "\n"
		}
	}

	return text
}

func (s *Server) formatCitationServerInfoResult(result *pdf.CitationServerInfoResult) string {
	text := fmt.Sprintf("📋 %s v%s - Server Information\n", result.ServerName, result.Version)
	text += fmt.Sprintf("📁 Default Directory: %s\n", result.DefaultDirectory)
	text += fmt.Sprintf("📏 Max File Size: %d MB\n", result.MaxFileSize/(1024*1024))
	text += fmt.Sprintf("📄 Default Export Format: %s\n\n", result.DefaultFormat)

	if len(result.DirectoryContents) > 0 {
		text += fmt.Sprintf("📂 Directory Contents (%d PDF files found):\n", len(result.DirectoryContents))
		for i, file := range result.DirectoryContents {
			if i >= 10 { // Limit to first 10 files for readability
				text += fmt.Sprintf("   ... and %d more files\n", len(result.DirectoryContents)-10)
				break
			}
			text += fmt.Sprintf("   %d. %s (%d bytes)\n", i+1, file.Name, file.Size)
		}
		text += "\n"
	} else {
		text += "📂 Directory Contents: No PDF files found in default directory\n\n"
	}

	text += "🛠️  Available Tools:\n"
	for _, tool := range result.AvailableTools {
		text += fmt.Sprintf("\n• %s\n", tool.Name)
		text += fmt.Sprintf("  Description: %s\n", tool.Description)
		text += fmt.Sprintf("  Usage: %s\n", tool.Usage)
		text += fmt.Sprintf("  Parameters: %s\n", tool.Parameters)
	}

	text += "\n" + result.UsageGuidance

	return text
}

// Run starts the MCP server in the configured mode
func (s *Server) Run(ctx context.Context) error {
	if s.config.IsServerMode() {
		return s.runServerMode(ctx)
	}
	return s.runStdioMode(ctx)
}

// runStdioMode runs the server in stdio mode
func (s *Server) runStdioMode(_ context.Context) error {
	if s.config.IsDebug() {
		log.Printf("Starting citation MCP server in stdio mode")
		log.Printf("PDF directory: %s", s.config.PDFDirectory)
	}

	if err := server.ServeStdio(s.mcpServer); err != nil {
		return fmt.Errorf("failed to serve stdio: %w", err)
	}
	return nil
}

// runServerMode runs the server in HTTP server mode
func (s *Server) runServerMode(ctx context.Context) error {
	// The mark3labs transport only speaks stdio today.
	log.Printf("Server mode not yet implemented with mark3labs/mcp-go")
	log.Printf("Falling back to stdio mode")
	return s.runStdioMode(ctx)
}
