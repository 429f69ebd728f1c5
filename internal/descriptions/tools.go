package descriptions

// Tool descriptions shown to MCP clients, with practical examples and use cases

const (
	CableExtractFileDescription = `Extract cable data from a cable list or a site plan PDF.

**When to use:** Need the cable numbers, types, lengths, drum numbers or route data contained in a PDF.

**Why it's useful:** Reads ruled and unruled tables, resolves German header spellings ("Kabel-Nr", "Ømm", "Metr.") to canonical fields, and falls back to label matching on drawings. Scanned drawings are read with OCR when it is enabled.

**Examples:**
• Cable list: "Get all Kabelnummer and IST lengths from kabelliste-los3.pdf"
• Site plan: "List every S-number and its cable type on lageplan-west.pdf"

**Modes:** auto (tables first, then drawings), tabular, schematic.

**Best practices:** Run cable_validate_file first on unknown files; needs_ocr=true means only OCR can read it.`

	CableExtractBatchDescription = `Extract and combine cable data from several PDFs.

**When to use:** A cable list is split across several files, or several drawings belong to one section.

**Why it's useful:** Field values are concatenated per field in the given order, drawing records keep their source file, and files that fail are reported without aborting the others.

**Examples:**
• "Combine kabelliste-teil1.pdf and kabelliste-teil2.pdf into one list"`

	CableValidateFileDescription = `Verify a PDF can be read before extracting cable data.

**When to use:** Before extraction, especially for uploads or scans.

**Why it's useful:** Checks size, structure and encryption, reports the page count and whether the file has a text layer or needs OCR.`

	CableExportXLSXDescription = `Extract cable data from a PDF and append it to an Excel workbook.

**When to use:** The cable data should end up in an existing Excel cable list.

**Why it's useful:** Existing headers are matched to cable fields regardless of case, spaces and punctuation ("Kabel-Nr." fills Kabelnummer). Rows are appended below the last used row. A new workbook or sheet gets the canonical headers.

**Examples:**
• "Append the data of kabelliste.pdf to /data/projekt.xlsx, sheet Kabel"`

	CableServerInfoDescription = `Get server information, known cable fields, available tools and the PDFs in the default directory.

**When to use:** At the start of a session to discover what can be extracted and which files are available.`
)

// ToolDescriptions maps tool names to their comprehensive descriptions
var ToolDescriptions = map[string]string{
	"cable_extract_file":  CableExtractFileDescription,
	"cable_extract_batch": CableExtractBatchDescription,
	"cable_validate_file": CableValidateFileDescription,
	"cable_export_xlsx":   CableExportXLSXDescription,
	"cable_server_info":   CableServerInfoDescription,
}

// GetToolDescription returns the comprehensive description for a tool
func GetToolDescription(toolName string) string {
	if desc, exists := ToolDescriptions[toolName]; exists {
		return desc
	}
	return "Tool description not available"
}

// GetAllToolNames returns a list of all available tool names
func GetAllToolNames() []string {
	var names []string
	for name := range ToolDescriptions {
		names = append(names, name)
	}
	return names
}
