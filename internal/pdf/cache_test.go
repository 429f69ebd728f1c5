package pdf

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a3tai/mcp-cable-extractor/internal/pdf/extraction"
	"github.com/a3tai/mcp-cable-extractor/internal/pdf/pdftest"
)

func entry(n int) cachedExtraction {
	return cachedExtraction{pages: n, result: &extraction.Result{Kind: extraction.KindTabular}}
}

func TestResultCacheEviction(t *testing.T) {
	c := newResultCache(2)
	c.put("a", entry(1))
	c.put("b", entry(2))

	_, ok := c.get("a") // a becomes most recent
	require.True(t, ok)
	c.put("c", entry(3))

	_, ok = c.get("b")
	assert.False(t, ok, "b should have been evicted")
	got, ok := c.get("a")
	require.True(t, ok)
	assert.Equal(t, 1, got.pages)

	c.put("a", entry(9))
	got, _ = c.get("a")
	assert.Equal(t, 9, got.pages)

	assert.Equal(t, CacheStats{Hits: 3, Misses: 1, Size: 2, Capacity: 2}, c.stats())
}

func TestCacheKeyChangesWithFile(t *testing.T) {
	dir := t.TempDir()
	path := pdftest.Write(t, dir, "liste.pdf", cableList([]string{"S100", "3x1,5", "148"}))

	k1, err := cacheKey(path, extraction.ModeAuto, false)
	require.NoError(t, err)
	k2, _ := cacheKey(path, extraction.ModeTabular, false)
	k3, _ := cacheKey(path, extraction.ModeAuto, true)
	assert.NotEqual(t, k1, k2)
	assert.NotEqual(t, k1, k3)

	later := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(path, later, later))
	k4, _ := cacheKey(path, extraction.ModeAuto, false)
	assert.NotEqual(t, k1, k4)

	_, err = cacheKey(filepath.Join(dir, "fehlt.pdf"), extraction.ModeAuto, false)
	assert.Error(t, err)
}

func TestServiceCachesExtraction(t *testing.T) {
	dir := t.TempDir()
	path := pdftest.Write(t, dir, "liste.pdf", cableList([]string{"S100", "3x1,5", "148"}))
	svc := newTestService(t, dir)
	ctx := context.Background()

	first, err := svc.CableExtractFile(ctx, CableExtractFileRequest{Path: path})
	require.NoError(t, err)
	second, err := svc.CableExtractFile(ctx, CableExtractFileRequest{Path: path})
	require.NoError(t, err)

	assert.Same(t, first.Result, second.Result)
	assert.NotEqual(t, first.RequestID, second.RequestID)
	assert.Equal(t, int64(1), svc.CacheStats().Hits)

	// rewriting the file invalidates the entry
	pdftest.Write(t, dir, "liste.pdf", cableList([]string{"S200", "5x2,5", "12"}, []string{"S201", "5x2,5", "13"}))
	third, err := svc.CableExtractFile(ctx, CableExtractFileRequest{Path: path})
	require.NoError(t, err)
	assert.NotSame(t, first.Result, third.Result)
	assert.Equal(t, []string{"S200", "S201"}, third.Result.Fields.Get(extraction.FieldKabelnummer))
}

func TestServiceCacheDisabled(t *testing.T) {
	dir := t.TempDir()
	path := pdftest.Write(t, dir, "liste.pdf", cableList([]string{"S100", "3x1,5", "148"}))
	svc, err := NewService(Options{
		MaxFileSize: 10 * 1024 * 1024,
		Engine:      extraction.DefaultConfig(),
		CacheSize:   -1,
	})
	require.NoError(t, err)

	first, err := svc.CableExtractFile(context.Background(), CableExtractFileRequest{Path: path})
	require.NoError(t, err)
	second, err := svc.CableExtractFile(context.Background(), CableExtractFileRequest{Path: path})
	require.NoError(t, err)
	assert.NotSame(t, first.Result, second.Result)
	assert.Equal(t, CacheStats{}, svc.CacheStats())
}
