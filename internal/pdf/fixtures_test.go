package pdf

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/a3tai/mcp-cable-extractor/internal/pdf/extraction"
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

// drawing is a site plan with one labelled cable
func drawing() pdftest.Page {
	return pdftest.Page{Texts: []pdftest.Text{
		{X: 100, Y: 600, S: "S12345"},
		{X: 160, Y: 600, S: "1200m"},
		{X: 100, Y: 585, S: "20x1x1,4"},
	}}
}

func newTestService(t *testing.T, dir string) *Service {
	t.Helper()
	svc, err := NewService(Options{
		MaxFileSize: 10 * 1024 * 1024,
		Directory:   dir,
		Engine:      extraction.DefaultConfig(),
	})
	require.NoError(t, err)
	return svc
}
