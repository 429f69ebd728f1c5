package pdftest

import (
	"bytes"
	"regexp"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildOffsets(t *testing.T) {
	data := Build(Table(50, 700, 100, []string{"Kabelnummer", "IST"}, []string{"S100", "148"}), Page{})

	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-1.4\n")))
	assert.True(t, bytes.HasSuffix(data, []byte("%%EOF\n")))

	m := regexp.MustCompile(`startxref\n(\d+)\n`).FindSubmatch(data)
	require.NotNil(t, m)
	off, err := strconv.Atoi(string(m[1]))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data[off:], []byte("xref\n0 8\n")))

	// every xref entry points at its object header
	entries := regexp.MustCompile(`(\d{10}) 00000 n `).FindAllSubmatch(data, -1)
	require.Len(t, entries, 7)
	for i, e := range entries {
		pos, err := strconv.Atoi(string(e[1]))
		require.NoError(t, err)
		assert.True(t, bytes.HasPrefix(data[pos:], []byte(strconv.Itoa(i+1)+" 0 obj")), "object %d", i+1)
	}
}

func TestTableAndEscape(t *testing.T) {
	p := Table(10, 500, 80, []string{"a", "", "c"}, []string{"d"})
	require.Len(t, p.Texts, 3)
	assert.Equal(t, Text{X: 170, Y: 500, S: "c"}, p.Texts[1])
	assert.Equal(t, Text{X: 10, Y: 480, S: "d"}, p.Texts[2])

	assert.Equal(t, `1200m \(Reserve\) \\`, escape(`1200m (Reserve) \`))
	assert.Contains(t, contentStream(Page{Texts: []Text{{X: 1, Y: 2, S: "x", Size: 8}}}), "/F1 8.0 Tf 1 0 0 1 1.00 2.00 Tm (x) Tj")
}

func TestCableList(t *testing.T) {
	p := CableList(CableRow("S100", "3x1,5", "148"))
	assert.Len(t, p.Texts, 2*len(CableListHeader))
	assert.Equal(t, Text{X: 30, Y: 520, S: "S100"}, p.Texts[len(CableListHeader)])

	data := string(Build(p))
	assert.Contains(t, data, "/MediaBox [0 0 842 595]")
	assert.Contains(t, string(Build(Page{})), "/MediaBox [0 0 612 792]")
}
