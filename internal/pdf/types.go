package pdf

import (
	"github.com/a3tai/mcp-cable-extractor/internal/export"
	"github.com/a3tai/mcp-cable-extractor/internal/pdf/extraction"
)

// FileInfo represents information about a PDF file
type FileInfo struct {
	Path         string `json:"path"`
	Name         string `json:"name"`
	Size         int64  `json:"size"`
	ModifiedTime string `json:"modified_time"`
}

// Request Types

// CableExtractFileRequest asks for the cable data of one PDF. An empty Mode
// uses the configured extraction mode.
type CableExtractFileRequest struct {
	Path string `json:"path"`
	Mode string `json:"mode,omitempty"`
}

// CableExtractBatchRequest asks for the combined cable data of several PDFs
type CableExtractBatchRequest struct {
	Paths []string `json:"paths"`
	Mode  string   `json:"mode,omitempty"`
}

// CableValidateFileRequest represents a request to validate a PDF file
type CableValidateFileRequest struct {
	Path string `json:"path"`
}

// CableExportXLSXRequest extracts a PDF and appends the result to a workbook
type CableExportXLSXRequest struct {
	Path   string `json:"path"`
	Output string `json:"output"`
	Sheet  string `json:"sheet,omitempty"`
	Mode   string `json:"mode,omitempty"`
}

// Response Types

// CableExtractFileResult is the extraction outcome for one file
type CableExtractFileResult struct {
	Path      string             `json:"path"`
	RequestID string             `json:"request_id"`
	Pages     int                `json:"pages"`
	Mode      string             `json:"mode"`
	Result    *extraction.Result `json:"result"`
}

// FileError reports a file that could not be extracted during a batch
type FileError struct {
	Path  string `json:"path"`
	Error string `json:"error"`
}

// CableExtractBatchResult holds the combined data of every file that produced
// something plus the failures of the others
type CableExtractBatchResult struct {
	Files    []string             `json:"files"`
	Combined *extraction.FieldMap `json:"combined,omitempty"`
	Records  []SourcedRecord      `json:"records,omitempty"`
	Errors   []FileError          `json:"errors,omitempty"`
}

// SourcedRecord is a schematic record tagged with the file it came from
type SourcedRecord struct {
	extraction.CableRecord
	Source string `json:"source"`
}

// CableValidateFileResult represents the result of PDF validation
type CableValidateFileResult struct {
	Path         string `json:"path"`
	Valid        bool   `json:"valid"`
	Message      string `json:"message,omitempty"`
	Pages        int    `json:"pages,omitempty"`
	Version      string `json:"version,omitempty"`
	HasTextLayer bool   `json:"has_text_layer"`
	NeedsOCR     bool   `json:"needs_ocr"`
}

// CableExportXLSXResult combines the extraction and the workbook report
type CableExportXLSXResult struct {
	Extraction *CableExtractFileResult `json:"extraction"`
	Report     *export.Report          `json:"report"`
}

// ToolInfo represents information about an available tool
type ToolInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Usage       string `json:"usage"`
	Parameters  string `json:"parameters"`
}

// ServerInfoResult describes the server, its tools and the PDFs it can see
type ServerInfoResult struct {
	ServerName        string     `json:"server_name"`
	Version           string     `json:"version"`
	DefaultDirectory  string     `json:"default_directory"`
	MaxFileSize       int64      `json:"max_file_size"`
	ExtractMode       string     `json:"extract_mode"`
	OCRAvailable      bool       `json:"ocr_available"`
	Fields            []string   `json:"fields"`
	Cache             CacheStats `json:"cache"`
	AvailableTools    []ToolInfo `json:"available_tools"`
	DirectoryContents []FileInfo `json:"directory_contents"`
	UsageGuidance     string     `json:"usage_guidance"`
}
