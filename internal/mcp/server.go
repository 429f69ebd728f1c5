package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/sirupsen/logrus"

	"github.com/a3tai/mcp-cable-extractor/internal/config"
	"github.com/a3tai/mcp-cable-extractor/internal/descriptions"
	"github.com/a3tai/mcp-cable-extractor/internal/logger"
	"github.com/a3tai/mcp-cable-extractor/internal/pdf"
	pdferrors "github.com/a3tai/mcp-cable-extractor/internal/pdf/errors"
	"github.com/a3tai/mcp-cable-extractor/internal/pdf/extraction"
)

const shutdownTimeout = 5 * time.Second

// Server represents the MCP server instance
type Server struct {
	config     *config.Config
	pdfService *pdf.Service
	mcpServer  *server.MCPServer
	log        *logrus.Entry
}

// NewServer creates a new MCP server instance
func NewServer(cfg *config.Config, pdfService *pdf.Service) (*Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
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
		log:        logger.For("mcp"),
	}

	s.registerTools()

	return s, nil
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	modeOption := mcp.WithString("mode",
		mcp.Description("Extraction mode: auto (default), tabular or schematic"),
		mcp.Enum(string(extraction.ModeAuto), string(extraction.ModeTabular), string(extraction.ModeSchematic)),
	)
	pathOption := mcp.WithString("path",
		mcp.Required(),
		mcp.Description("Full path to the PDF file"),
	)

	s.mcpServer.AddTool(mcp.NewTool(
		"cable_extract_file",
		mcp.WithDescription(descriptions.GetToolDescription("cable_extract_file")),
		pathOption,
		modeOption,
	), s.handleCableExtractFile)

	s.mcpServer.AddTool(mcp.NewTool(
		"cable_extract_batch",
		mcp.WithDescription(descriptions.GetToolDescription("cable_extract_batch")),
		mcp.WithArray("paths",
			mcp.Required(),
			mcp.Description("PDF files to combine, in order"),
			mcp.Items(map[string]any{"type": "string"}),
		),
		modeOption,
	), s.handleCableExtractBatch)

	s.mcpServer.AddTool(mcp.NewTool(
		"cable_validate_file",
		mcp.WithDescription(descriptions.GetToolDescription("cable_validate_file")),
		pathOption,
	), s.handleCableValidateFile)

	s.mcpServer.AddTool(mcp.NewTool(
		"cable_export_xlsx",
		mcp.WithDescription(descriptions.GetToolDescription("cable_export_xlsx")),
		pathOption,
		mcp.WithString("output",
			mcp.Required(),
			mcp.Description("Excel workbook (.xlsx) to append to; created if missing"),
		),
		mcp.WithString("sheet",
			mcp.Description("Sheet name (default Kabelliste)"),
		),
		modeOption,
	), s.handleCableExportXLSX)

	s.mcpServer.AddTool(mcp.NewTool(
		"cable_server_info",
		mcp.WithDescription(descriptions.GetToolDescription("cable_server_info")),
	), s.handleCableServerInfo)
}

// Handler functions

func (s *Server) handleCableExtractFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	req := pdf.CableExtractFileRequest{Path: path, Mode: optionalString(request, "mode")}
	result, err := s.pdfService.CableExtractFile(ctx, req)
	if err != nil {
		return toolError(err), nil
	}

	text, err := s.formatCableExtractFileResult(result)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(text), nil
}

func (s *Server) handleCableExtractBatch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	paths, err := stringList(request.GetArguments()["paths"])
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	req := pdf.CableExtractBatchRequest{Paths: paths, Mode: optionalString(request, "mode")}
	result, err := s.pdfService.CableExtractBatch(ctx, req, pdf.DefaultBatchJobs)
	if err != nil {
		return toolError(err), nil
	}

	text := fmt.Sprintf("Processed %d file(s), %d failed\n", len(result.Files), len(result.Errors))
	for _, fe := range result.Errors {
		text += fmt.Sprintf("  %s: %s\n", fe.Path, fe.Error)
	}
	body, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(text + "\n" + string(body)), nil
}

func (s *Server) handleCableValidateFile(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result, err := s.pdfService.CableValidateFile(pdf.CableValidateFileRequest{Path: path})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if !result.Valid {
		return mcp.NewToolResultText(fmt.Sprintf("PDF validation failed for %s: %s", result.Path, result.Message)), nil
	}

	text := fmt.Sprintf("PDF file %s is valid and readable\n", result.Path)
	text += fmt.Sprintf("Pages: %d\n", result.Pages)
	if result.Version != "" {
		text += fmt.Sprintf("Version: %s\n", result.Version)
	}
	text += fmt.Sprintf("Text layer: %t\n", result.HasTextLayer)
	if result.NeedsOCR {
		text += "No text layer found: only OCR can read this file.\n"
	}
	return mcp.NewToolResultText(text), nil
}

func (s *Server) handleCableExportXLSX(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	output, err := request.RequireString("output")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	req := pdf.CableExportXLSXRequest{
		Path:   path,
		Output: output,
		Sheet:  optionalString(request, "sheet"),
		Mode:   optionalString(request, "mode"),
	}
	result, err := s.pdfService.CableExportXLSX(ctx, req)
	if err != nil {
		return toolError(err), nil
	}

	r := result.Report
	text := fmt.Sprintf("Wrote %d row(s) to %s, sheet %s, starting at row %d\n", r.RowsWritten, r.Path, r.Sheet, r.StartRow)
	text += fmt.Sprintf("Source: %s (%s, %s)\n", result.Extraction.Path, result.Extraction.Result.Kind, result.Extraction.Result.Strategy)
	if len(r.Unmapped) > 0 {
		text += fmt.Sprintf("Columns left empty: %s\n", strings.Join(r.Unmapped, ", "))
	}
	return mcp.NewToolResultText(text), nil
}

func (s *Server) handleCableServerInfo(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	result, err := s.pdfService.ServerInfo(s.config.ServerName, s.config.Version, s.config.PDFDirectory)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(s.formatServerInfoResult(result)), nil
}

// toolError turns a service error into a tool result. Missing data is an
// expected outcome, so only its user-facing message is shown.
func toolError(err error) *mcp.CallToolResult {
	if errors.Is(err, pdferrors.ErrNoProcessableData) {
		return mcp.NewToolResultError(pdferrors.NoProcessableDataMessage)
	}
	return mcp.NewToolResultError(err.Error())
}

func optionalString(request mcp.CallToolRequest, key string) string {
	if v, ok := request.GetArguments()[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

// stringList accepts a JSON array of strings or a comma separated string
func stringList(v any) ([]string, error) {
	var out []string
	switch t := v.(type) {
	case []any:
		for _, item := range t {
			str, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("paths must be strings")
			}
			if str = strings.TrimSpace(str); str != "" {
				out = append(out, str)
			}
		}
	case []string:
		out = append(out, t...)
	case string:
		for _, part := range strings.Split(t, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("required argument \"paths\" not found")
	}
	return out, nil
}

// Formatting methods

func (s *Server) formatCableExtractFileResult(result *pdf.CableExtractFileResult) (string, error) {
	res := result.Result
	text := fmt.Sprintf("Extracted cable data from: %s\n", result.Path)
	text += fmt.Sprintf("Pages: %d\n", result.Pages)
	text += fmt.Sprintf("Kind: %s (strategy %s)\n", res.Kind, res.Strategy)

	switch res.Kind {
	case extraction.KindTabular:
		for _, field := range res.Fields.Fields() {
			text += fmt.Sprintf("  %s: %d value(s)\n", field, len(res.Fields.Get(field)))
		}
	case extraction.KindSchematic:
		text += fmt.Sprintf("Records: %d\n", len(res.Records))
	}
	for _, w := range res.Warnings {
		text += fmt.Sprintf("Warning: %s\n", w)
	}

	body, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode result: %w", err)
	}
	return text + "\n" + string(body), nil
}

func (s *Server) formatServerInfoResult(result *pdf.ServerInfoResult) string {
	text := fmt.Sprintf("%s v%s - Server Information\n", result.ServerName, result.Version)
	text += fmt.Sprintf("Default Directory: %s\n", result.DefaultDirectory)
	text += fmt.Sprintf("Max File Size: %d MB\n", result.MaxFileSize/(1024*1024))
	text += fmt.Sprintf("Extraction Mode: %s\n", result.ExtractMode)
	text += fmt.Sprintf("OCR Available: %t\n", result.OCRAvailable)
	text += fmt.Sprintf("Result Cache: %d/%d entries, %d hits\n", result.Cache.Size, result.Cache.Capacity, result.Cache.Hits)
	text += fmt.Sprintf("Cable Fields: %s\n\n", strings.Join(result.Fields, ", "))

	if len(result.DirectoryContents) > 0 {
		text += fmt.Sprintf("Directory Contents (%d PDF files found):\n", len(result.DirectoryContents))
		for i, file := range result.DirectoryContents {
			if i >= 10 { // Limit to first 10 files for readability
				text += fmt.Sprintf("   ... and %d more files\n", len(result.DirectoryContents)-10)
				break
			}
			text += fmt.Sprintf("   %d. %s (%d bytes)\n", i+1, file.Name, file.Size)
		}
		text += "\n"
	} else {
		text += "Directory Contents: No PDF files found in default directory\n\n"
	}

	text += "Available Tools:\n"
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
	return s.runStdioMode(ctx, os.Stdin, os.Stdout)
}

// runStdioMode serves MCP over the given streams until ctx ends or in closes
func (s *Server) runStdioMode(ctx context.Context, in io.Reader, out io.Writer) error {
	s.log.WithField("directory", s.config.PDFDirectory).Debug("starting stdio server")

	stdio := server.NewStdioServer(s.mcpServer)
	if err := stdio.Listen(ctx, in, out); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("failed to serve stdio: %w", err)
	}
	return nil
}

// runServerMode serves MCP over HTTP with server-sent events
func (s *Server) runServerMode(ctx context.Context) error {
	addr := s.config.Address()
	sse := server.NewSSEServer(s.mcpServer, server.WithBaseURL("http://"+addr))

	errChan := make(chan error, 1)
	go func() {
		s.log.WithField("address", addr).Info("starting SSE server")
		errChan <- sse.Start(addr)
	}()

	select {
	case err := <-errChan:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to serve http: %w", err)
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := sse.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down http server: %w", err)
		}
		return nil
	}
}
