package extraction

import (
	"context"
	"fmt"
	"image"
)

type fakeDoc struct {
	pages     int
	grids     map[int][]RawTable
	elements  map[int][]TextElement
	gridErr   map[int]error
	panicPage int
}

func (d *fakeDoc) PageCount() int { return d.pages }

func (d *fakeDoc) TableGrids(page int) ([]RawTable, error) {
	if page == d.panicPage {
		panic("broken content stream")
	}
	if err := d.gridErr[page]; err != nil {
		return nil, err
	}
	return d.grids[page], nil
}

func (d *fakeDoc) TextElements(page int) ([]TextElement, error) {
	if page == d.panicPage {
		panic("broken content stream")
	}
	return d.elements[page], nil
}

func tableDoc(tables ...[][]string) *fakeDoc {
	d := &fakeDoc{pages: len(tables), grids: map[int][]RawTable{}}
	for i, rows := range tables {
		d.grids[i+1] = []RawTable{{Rows: rows}}
	}
	return d
}

type fakeRaster struct {
	failPage int
}

func (r *fakeRaster) RenderPage(page int, _ float64) (image.Image, error) {
	if page == r.failPage {
		return nil, fmt.Errorf("render failed")
	}
	// Encode the page number in the image width so the recognizer can tell pages apart.
	return image.NewRGBA(image.Rect(0, 0, page, 1)), nil
}

type fakeOCR struct {
	pages map[int][]string
}

func (o *fakeOCR) Recognize(_ context.Context, img image.Image) ([]string, error) {
	return o.pages[img.Bounds().Dx()], nil
}

func el(text string, x0, y0, x1, y1 float64) TextElement {
	return TextElement{Text: text, Box: BoundingBox{X0: x0, Y0: y0, X1: x1, Y1: y1}}
}

func strPtr(s string) *string { return &s }

func defaultResolver() *Resolver {
	return NewResolver(DefaultDictionary(), DefaultResolverOptions())
}

// fullHeader is a header row in which all 13 cells resolve.
var fullHeader = []string{
	"Kabel-Nr", "Kabeltyp", "Ø mm", "Trommelnummer", "von Ort", "von km", "Metr.",
	"bis Ort", "bis km", "Metr.", "SOLL", "IST", "Bemerkung",
}

func dataRow(id string) []string {
	return []string{id, "3x1,5", "12", "T-17", "UW Nord", "12,300", "0", "KVS 4", "12,450", "150", "150", "148", ""}
}
