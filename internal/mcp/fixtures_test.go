package mcp

import (
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/mcp-cable-extractor/internal/config"
	"github.com/a3tai/mcp-cable-extractor/internal/pdf"
	"github.com/a3tai/mcp-cable-extractor/internal/pdf/extraction"
	"github.com/a3tai/mcp-cable-extractor/internal/pdf/pdftest"
)

const testMaxFileSize = 10 * 1024 * 1024

func testConfig(dir string) *config.Config {
	cfg := config.DefaultConfig()
	cfg.PDFDirectory = dir
	cfg.ServerName = "test-server"
	cfg.Version = "1.0.0"
	cfg.MaxFileSize = testMaxFileSize
	return cfg
}

// newTestServer returns a server confined to a fresh directory
func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	dir := t.TempDir()
	svc, err := pdf.NewService(pdf.Options{
		MaxFileSize: testMaxFileSize,
		Directory:   dir,
		Engine:      extraction.DefaultConfig(),
	})
	require.NoError(t, err)

	s, err := NewServer(testConfig(dir), svc)
	require.NoError(t, err)
	return s, dir
}

// cableList builds a cable list page from {Kabelnummer, Kabeltyp, IST} triples
func cableList(rows ...[]string) pdftest.Page {
	full := make([][]string, len(rows))
	for i, r := range rows {
		full[i] = pdftest.CableRow(r[0], r[1], r[2])
	}
	return pdftest.CableList(full...)
}

func drawing() pdftest.Page {
	return pdftest.Page{Texts: []pdftest.Text{
		{X: 100, Y: 600, S: "S12345"},
		{X: 160, Y: 600, S: "1200m"},
		{X: 100, Y: 585, S: "20x1x1,4"},
	}}
}

func callRequest(args map[string]interface{}) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Params: mcp.CallToolParams{
			Arguments: args,
		},
	}
}

// Helper function to extract text from MCP result
func extractTextFromResult(result *mcp.CallToolResult) string {
	if result == nil || len(result.Content) == 0 {
		return ""
	}

	for _, content := range result.Content {
		if textContent, ok := content.(mcp.TextContent); ok {
			return textContent.Text
		}
		// Handle pointer to TextContent as well
		if textContentPtr, ok := content.(*mcp.TextContent); ok {
			return textContentPtr.Text
		}
	}

	return ""
}
