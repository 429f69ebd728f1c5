package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pdferrors "github.com/a3tai/mcp-cable-extractor/internal/pdf/errors"
	"github.com/a3tai/mcp-cable-extractor/internal/pdf/pdftest"
)

// cableList builds a cable list page from {Kabelnummer, Kabeltyp, IST} triples
func cableList(rows ...[]string) pdftest.Page {
	full := make([][]string, len(rows))
	for i, r := range rows {
		full[i] = pdftest.CableRow(r[0], r[1], r[2])
	}
	return pdftest.CableList(full...)
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd(&out, &errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), errOut.String(), err
}

func TestExtractCommand(t *testing.T) {
	dir := t.TempDir()
	file := pdftest.Write(t, dir, "liste.pdf", cableList(
		[]string{"S100", "3x1,5", "148"},
		[]string{"S101", "5x2,5", "12"},
	))

	out, _, err := execute(t, "extract", file, "--ocr=false")
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, file, decoded["path"])
	assert.Contains(t, out, `"S101"`)
	assert.Contains(t, out, `"5x2,5"`)
}

func TestExtractCommandPrettyAndXLSX(t *testing.T) {
	dir := t.TempDir()
	file := pdftest.Write(t, dir, "liste.pdf", cableList([]string{"S100", "3x1,5", "148"}))
	workbook := filepath.Join(dir, "kabel.xlsx")

	out, errOut, err := execute(t, "extract", file, "--ocr=false", "--pretty", "--xlsx", workbook, "--sheet", "Los1")
	require.NoError(t, err)
	assert.Contains(t, out, "\n  \"path\"")
	assert.Contains(t, errOut, "wrote 1 row(s)")
	assert.Contains(t, errOut, "Los1")
	assert.FileExists(t, workbook)
}

func TestExtractCommandNoData(t *testing.T) {
	dir := t.TempDir()
	file := pdftest.Write(t, dir, "leer.pdf", pdftest.Page{})

	_, _, err := execute(t, "extract", file, "--ocr=false")
	require.Error(t, err)
	assert.True(t, errors.Is(err, pdferrors.ErrNoProcessableData))
	assert.Equal(t, pdferrors.NoProcessableDataMessage, errorMessage(err))
}

func TestExtractCommandArgs(t *testing.T) {
	_, _, err := execute(t, "extract")
	assert.Error(t, err)

	_, _, err = execute(t, "extract", "a.pdf", "--tie-break", "random")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
}

func TestBatchCommand(t *testing.T) {
	dir := t.TempDir()
	pdftest.Write(t, dir, "a.pdf", cableList([]string{"S100", "3x1,5", "148"}))
	pdftest.Write(t, dir, "b.pdf", cableList([]string{"S200", "5x2,5", "12"}))
	workbook := filepath.Join(t.TempDir(), "kabel.xlsx")
	missing := filepath.Join(t.TempDir(), "fehlt.pdf")

	out, errOut, err := execute(t, "batch", dir, missing, "--ocr=false", "-j", "1", "--xlsx", workbook)
	require.NoError(t, err)

	var decoded struct {
		Files    []string            `json:"files"`
		Combined map[string][]string `json:"combined"`
		Errors   []map[string]string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Len(t, decoded.Files, 3)
	assert.Equal(t, []string{"S100", "S200"}, decoded.Combined["Kabelnummer"])
	require.Len(t, decoded.Errors, 1)
	assert.Contains(t, errOut, fmt.Sprintf("%s:", missing))
	assert.Contains(t, errOut, "wrote 2 row(s)")
}

func TestBatchCommandEmptyDirectory(t *testing.T) {
	_, _, err := execute(t, "batch", t.TempDir(), "--ocr=false")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no PDF files found")
}
