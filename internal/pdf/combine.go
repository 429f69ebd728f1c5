package pdf

import (
	"github.com/a3tai/mcp-cable-extractor/internal/pdf/extraction"
)

// FileOutcome is what extracting one file of a batch produced
type FileOutcome struct {
	Path   string
	Result *extraction.Result
	Err    error
}

// Combine folds per-file outcomes into one batch result. Tabular fields are
// concatenated per field in input order, schematic records are appended with
// their source file, and failures are listed without stopping the others.
func Combine(outcomes []FileOutcome) *CableExtractBatchResult {
	out := &CableExtractBatchResult{Files: make([]string, 0, len(outcomes))}

	for _, o := range outcomes {
		out.Files = append(out.Files, o.Path)
		if o.Err != nil {
			out.Errors = append(out.Errors, FileError{Path: o.Path, Error: o.Err.Error()})
			continue
		}
		if o.Result.IsEmpty() {
			continue
		}

		switch o.Result.Kind {
		case extraction.KindTabular:
			if out.Combined == nil {
				out.Combined = extraction.NewFieldMap()
			}
			out.Combined.Merge(o.Result.Fields)
		case extraction.KindSchematic:
			for _, rec := range o.Result.Records {
				out.Records = append(out.Records, SourcedRecord{CableRecord: rec, Source: o.Path})
			}
		}
	}
	return out
}

// TabularResult returns the combined fields as a result that can be exported
func (r *CableExtractBatchResult) TabularResult() *extraction.Result {
	if r.Combined == nil {
		return nil
	}
	return &extraction.Result{Kind: extraction.KindTabular, Strategy: "combined", Fields: r.Combined}
}

// SchematicResult returns the combined records as a result that can be exported
func (r *CableExtractBatchResult) SchematicResult() *extraction.Result {
	if len(r.Records) == 0 {
		return nil
	}
	records := make([]extraction.CableRecord, len(r.Records))
	for i, rec := range r.Records {
		records[i] = rec.CableRecord
	}
	return &extraction.Result{Kind: extraction.KindSchematic, Strategy: "combined", Records: records}
}
