package extraction

import (
	"context"
	"fmt"
	"image"

	"github.com/sirupsen/logrus"

	"github.com/a3tai/mcp-cable-extractor/internal/logger"
	pdferrors "github.com/a3tai/mcp-cable-extractor/internal/pdf/errors"
)

// Workspace caches backend output for one document while the strategies run,
// and collects the failures they recovered from.
type Workspace struct {
	input Input

	tables       []RawTable
	tablesLoaded bool

	elements map[int][]TextElement

	issues pdferrors.ErrorCollection
	log    *logrus.Entry
}

// NewWorkspace prepares a workspace for in
func NewWorkspace(in Input) *Workspace {
	return &Workspace{
		input:    in,
		elements: make(map[int][]TextElement),
		log:      logger.For("workspace").WithField("path", in.Path),
	}
}

// Input returns the backends of the document
func (w *Workspace) Input() Input {
	return w.input
}

// PageCount returns the number of pages
func (w *Workspace) PageCount() int {
	if w.input.Doc == nil {
		return 0
	}
	return w.input.Doc.PageCount()
}

// Issues returns the failures recorded so far
func (w *Workspace) Issues() *pdferrors.ErrorCollection {
	return &w.issues
}

// Record stores a recoverable failure
func (w *Workspace) Record(err *pdferrors.ExtractionError) {
	err.FilePath = w.input.Path
	w.issues.Add(err)
	w.log.WithFields(logrus.Fields{
		"type": err.Type.String(),
		"page": err.PageNumber,
	}).Debug(err.Error())
}

// Tables returns every table grid of the document in page order. Pages whose
// grids cannot be read are skipped.
func (w *Workspace) Tables(ctx context.Context) []RawTable {
	if w.tablesLoaded {
		return w.tables
	}
	w.tablesLoaded = true

	for page := 1; page <= w.PageCount(); page++ {
		if ctx.Err() != nil {
			break
		}
		grids, err := safeCall(func() ([]RawTable, error) { return w.input.Doc.TableGrids(page) })
		if err != nil {
			w.Record(pdferrors.NewBackendFailureError("table grid extraction", page, err))
			continue
		}
		for i, g := range grids {
			g.Page = page
			g.Index = i
			w.tables = append(w.tables, g)
		}
	}
	return w.tables
}

// Elements returns the positioned text of a page, or nil if it cannot be read
func (w *Workspace) Elements(page int) []TextElement {
	if els, ok := w.elements[page]; ok {
		return els
	}
	els, err := safeCall(func() ([]TextElement, error) { return w.input.Doc.TextElements(page) })
	if err != nil {
		w.Record(pdferrors.NewBackendFailureError("text element extraction", page, err))
		els = nil
	}
	w.elements[page] = els
	return els
}

// RecognizePage renders a page and runs OCR on it
func (w *Workspace) RecognizePage(ctx context.Context, page int, dpi float64) ([]string, error) {
	if w.input.Raster == nil || w.input.OCR == nil {
		return nil, fmt.Errorf("OCR backend not configured")
	}
	img, err := safeCall(func() (image.Image, error) { return w.input.Raster.RenderPage(page, dpi) })
	if err != nil {
		return nil, pdferrors.NewBackendFailureError("page rendering", page, err)
	}
	lines, err := safeCall(func() ([]string, error) { return w.input.OCR.Recognize(ctx, img) })
	if err != nil {
		return nil, pdferrors.NewBackendFailureError("text recognition", page, err)
	}
	return lines, nil
}

// safeCall turns a backend panic into an error
func safeCall[T any](fn func() (T, error)) (out T, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in backend: %v", r)
		}
	}()
	return fn()
}
