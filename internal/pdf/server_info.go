package pdf

import (
	"fmt"
	"time"
)

const (
	serverInfoFileLimit = 100
	serverInfoTimeout   = 5 * time.Second
)

// availableTools lists the MCP tools with short usage notes
var availableTools = []ToolInfo{
	{
		Name:        "cable_extract_file",
		Description: "Extract cable data from a cable list or site plan PDF",
		Usage:       "Use this tool to get canonical cable fields from tables or cable records from drawings.",
		Parameters: "path (required): Full absolute path to the PDF file, " +
			"mode (optional): auto, tabular or schematic",
	},
	{
		Name:        "cable_extract_batch",
		Description: "Extract and combine cable data from several PDFs",
		Usage:       "Use this tool when one cable list spans several files.",
		Parameters:  "paths (required): array of PDF paths (a comma separated string also works), mode (optional)",
	},
	{
		Name:        "cable_validate_file",
		Description: "Validate that a file is a readable PDF",
		Usage:       "Use this tool first; needs_ocr tells whether the file has no text layer.",
		Parameters:  "path (required): Full absolute path to the PDF file",
	},
	{
		Name:        "cable_export_xlsx",
		Description: "Append extracted cable data to an Excel workbook",
		Usage:       "Use this tool to fill an existing Excel cable list; headers are matched automatically.",
		Parameters: "path (required): PDF file, output (required): .xlsx file, " +
			"sheet (optional): sheet name, mode (optional)",
	},
}

// ServerInfo returns server information, the known fields and the PDFs found
// in the default directory. The directory scan is bounded in time and size.
func (s *Service) ServerInfo(serverName, version, defaultDirectory string) (*ServerInfoResult, error) {
	validatedDir := defaultDirectory
	if s.pathValidator != nil {
		if err := s.pathValidator.ValidateDirectory(defaultDirectory); err != nil {
			validatedDir = s.pathValidator.GetConfiguredDirectory()
		}
	}

	directoryContents := []FileInfo{}
	if validatedDir != "" {
		resultChan := make(chan []FileInfo, 1)
		go func() {
			files, err := s.search.FindPDFsInDirectoryLimited(validatedDir, serverInfoFileLimit)
			if err != nil {
				files = []FileInfo{}
			}
			resultChan <- files
		}()

		select {
		case files := <-resultChan:
			directoryContents = files
		case <-time.After(serverInfoTimeout):
			s.log.WithField("directory", validatedDir).Warn("directory scan timed out")
		}
	}

	ocrNote := "OCR is disabled; scanned drawings cannot be read."
	if s.OCRAvailable() {
		ocrNote = "Scanned drawings are read with OCR."
	}

	usageGuidance := `Cable Extractor Usage Guide:

1. VALIDATE: run 'cable_validate_file' on unknown PDFs.
2. EXTRACT: run 'cable_extract_file'. Tabular results map canonical fields to value
   arrays; schematic results list records with identifier, type and length.
3. COMBINE: use 'cable_extract_batch' for lists split across files.
4. EXPORT: use 'cable_export_xlsx' to append the data to an Excel cable list.

IMPORTANT NOTES:
- Use absolute paths or paths relative to the default directory
- The server can handle files up to ` + fmt.Sprintf("%d", s.maxFileSize/(1024*1024)) + `MB
- ` + ocrNote

	return &ServerInfoResult{
		ServerName:        serverName,
		Version:           version,
		DefaultDirectory:  validatedDir,
		MaxFileSize:       s.maxFileSize,
		ExtractMode:       string(s.engine.Config().Mode),
		OCRAvailable:      s.OCRAvailable(),
		Fields:            s.engine.Resolver().Dictionary().Names(),
		Cache:             s.CacheStats(),
		AvailableTools:    availableTools,
		DirectoryContents: directoryContents,
		UsageGuidance:     usageGuidance,
	}, nil
}
