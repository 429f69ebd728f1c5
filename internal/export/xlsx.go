// Package export writes extraction results into Excel workbooks.
//
// Rows are appended below the last used row of the target sheet. When the
// sheet already has a header row, every header is matched against the
// column aliases after strict normalisation, so "Kabel-Nr" or "Metr. (von)"
// land in the right column. Headers without a match stay blank.
package export

import (
	"errors"
	"fmt"
	"os"

	"github.com/xuri/excelize/v2"

	"github.com/a3tai/mcp-cable-extractor/internal/pdf/extraction"
)

// DefaultSheet is used when the caller does not name a sheet
const DefaultSheet = "Kabelliste"

// ColumnLength is the schematic length column
const ColumnLength = "Länge"

// Column is an output column and the Excel header spellings that map to it
type Column struct {
	Name    string
	Aliases []string
}

// TabularColumns lists the cable-list columns in output order
var TabularColumns = []Column{
	{extraction.FieldKabelnummer, []string{"kabelnummer", "kabel-nr", "kabelnr", "knr", "kabnr"}},
	{extraction.FieldKabeltyp, []string{"typ", "kabel-typ", "kabeltype"}},
	{extraction.FieldDurchmesser, []string{"durchmesser", "ø", "dm", "ømm"}},
	{extraction.FieldTrommelnummer, []string{"trommel-nr", "trommel-nummer"}},
	{extraction.FieldVonOrt, nil},
	{extraction.FieldVonKm, []string{"von kilometer"}},
	{extraction.FieldMetrVon, []string{"metr. von"}},
	{extraction.FieldBisOrt, nil},
	{extraction.FieldBisKm, []string{"bis kilometer"}},
	{extraction.FieldMetrBis, []string{"metr. bis"}},
	{extraction.FieldSoll, nil},
	{extraction.FieldIst, nil},
	{extraction.FieldVerlegeart, nil},
	{extraction.FieldBemerkung, []string{"bemerkungen"}},
}

// SchematicColumns lists the columns used for schematic records
var SchematicColumns = []Column{
	{extraction.FieldKabelnummer, []string{"kabel-nr", "kabelnr", "knr", "kabnr"}},
	{extraction.FieldKabeltyp, []string{"typ", "kabel-typ", "kabeltype"}},
	{ColumnLength, []string{"laenge", "length", "meter"}},
}

// Report describes what was written
type Report struct {
	Path        string            `json:"path"`
	Sheet       string            `json:"sheet"`
	StartRow    int               `json:"start_row"`
	RowsWritten int               `json:"rows_written"`
	Mapped      map[string]string `json:"mapped"`
	Unmapped    []string          `json:"unmapped,omitempty"`
}

// WriteResult writes a tabular or schematic result to the workbook at path
func WriteResult(path, sheet string, res *extraction.Result) (*Report, error) {
	if res == nil {
		return nil, errors.New("no result to export")
	}
	if res.Kind == extraction.KindSchematic {
		return WriteSchematic(path, sheet, res.Records)
	}
	return WriteTabular(path, sheet, res.Fields)
}

// WriteTabular appends the per-field value lists as rows
func WriteTabular(path, sheet string, fields *extraction.FieldMap) (*Report, error) {
	values := make(map[string][]string)
	if fields != nil {
		for _, name := range fields.Fields() {
			values[name] = fields.Get(name)
		}
	}
	return write(path, sheet, TabularColumns, values)
}

// WriteSchematic appends one row per cable record
func WriteSchematic(path, sheet string, records []extraction.CableRecord) (*Report, error) {
	values := map[string][]string{
		extraction.FieldKabelnummer: make([]string, len(records)),
		extraction.FieldKabeltyp:    make([]string, len(records)),
		ColumnLength:                make([]string, len(records)),
	}
	for i, rec := range records {
		values[extraction.FieldKabelnummer][i] = rec.Identifier
		if rec.Type != nil {
			values[extraction.FieldKabeltyp][i] = *rec.Type
		}
		if rec.Length != nil {
			values[ColumnLength][i] = *rec.Length
		}
	}
	return write(path, sheet, SchematicColumns, values)
}

func write(path, sheet string, columns []Column, values map[string][]string) (*Report, error) {
	if path == "" {
		return nil, errors.New("output path is required")
	}
	if sheet == "" {
		sheet = DefaultSheet
	}

	f, err := openWorkbook(path, sheet)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}

	report := &Report{Path: path, Sheet: sheet, Mapped: make(map[string]string)}

	var headers []string
	if len(rows) == 0 || isBlank(rows[0]) {
		for _, c := range columns {
			headers = append(headers, c.Name)
		}
		if err := setRow(f, sheet, 1, headers); err != nil {
			return nil, err
		}
		report.StartRow = max(2, len(rows)+1)
	} else {
		headers = rows[0]
		report.StartRow = len(rows) + 1
	}

	targets := make([]string, len(headers))
	for i, h := range headers {
		if name, ok := MatchHeader(h, columns); ok {
			targets[i] = name
			report.Mapped[h] = name
		} else if h != "" {
			report.Unmapped = append(report.Unmapped, h)
		}
	}

	depth := 0
	for _, v := range values {
		depth = max(depth, len(v))
	}

	next := report.StartRow
	for i := 0; i < depth; i++ {
		row := make([]string, len(headers))
		for j, target := range targets {
			if target != "" && i < len(values[target]) {
				row[j] = values[target][i]
			}
		}
		if isBlank(row) {
			continue
		}
		if err := setRow(f, sheet, next, row); err != nil {
			return nil, err
		}
		next++
	}
	report.RowsWritten = next - report.StartRow

	if err := f.SaveAs(path); err != nil {
		return nil, fmt.Errorf("failed to save workbook: %w", err)
	}
	return report, nil
}

// MatchHeader maps an Excel header to an output column. Both sides are
// compared in strict normal form, so case, spaces and punctuation are ignored.
func MatchHeader(header string, columns []Column) (string, bool) {
	key := extraction.Normalize(header, true)
	if key == "" {
		return "", false
	}
	for _, c := range columns {
		if extraction.Normalize(c.Name, true) == key {
			return c.Name, true
		}
		for _, alias := range c.Aliases {
			if extraction.Normalize(alias, true) == key {
				return c.Name, true
			}
		}
	}
	return "", false
}

func openWorkbook(path, sheet string) (*excelize.File, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		f := excelize.NewFile()
		if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to name sheet %q: %w", sheet, err)
		}
		return f, nil
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		if _, err := f.NewSheet(sheet); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to create sheet %q: %w", sheet, err)
		}
	}
	return f, nil
}

func setRow(f *excelize.File, sheet string, row int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	if err := f.SetSheetRow(sheet, cell, &out); err != nil {
		return fmt.Errorf("failed to write row %d: %w", row, err)
	}
	return nil
}

func isBlank(row []string) bool {
	for _, v := range row {
		if v != "" {
			return false
		}
	}
	return true
}
