package pdf

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/a3tai/mcp-cable-extractor/internal/export"
	"github.com/a3tai/mcp-cable-extractor/internal/logger"
	"github.com/a3tai/mcp-cable-extractor/internal/pdf/extraction"
	"github.com/a3tai/mcp-cable-extractor/internal/pdf/security"
	"github.com/a3tai/mcp-cable-extractor/internal/pdf/wrapper"
)

// DefaultBatchJobs bounds how many files a batch extracts at once
const DefaultBatchJobs = 4

// Options configures a Service
type Options struct {
	MaxFileSize int64
	// Directory restricts every path to this tree. Empty disables the check.
	Directory string
	Engine    extraction.Config
	// OCR is optional; nil disables the OCR strategy.
	OCR extraction.Recognizer
	// CacheSize bounds the result cache. Zero means DefaultCacheSize and a
	// negative size disables caching.
	CacheSize int
}

// Service handles cable extraction by orchestrating the PDF backends, the
// extraction engine and the exporters
type Service struct {
	maxFileSize   int64
	engine        *extraction.Engine
	ocr           extraction.Recognizer
	validator     *Validator
	search        *Search
	pathValidator *security.PathValidator
	cache         *resultCache
	log           *logrus.Entry
}

// NewService creates a new cable extraction service with all components
func NewService(opts Options) (*Service, error) {
	if opts.MaxFileSize <= 0 {
		return nil, fmt.Errorf("maxFileSize must be greater than 0")
	}

	engine, err := extraction.NewEngine(opts.Engine)
	if err != nil {
		return nil, fmt.Errorf("failed to create extraction engine: %w", err)
	}

	s := &Service{
		maxFileSize: opts.MaxFileSize,
		engine:      engine,
		ocr:         opts.OCR,
		validator:   NewValidator(opts.MaxFileSize),
		search:      NewSearch(opts.MaxFileSize),
		log:         logger.For("service"),
	}

	switch {
	case opts.CacheSize == 0:
		s.cache = newResultCache(DefaultCacheSize)
	case opts.CacheSize > 0:
		s.cache = newResultCache(opts.CacheSize)
	}

	if opts.Directory != "" {
		s.pathValidator, err = security.NewPathValidator(opts.Directory)
		if err != nil {
			return nil, fmt.Errorf("failed to create path validator: %w", err)
		}
	}
	return s, nil
}

// Engine exposes the extraction engine
func (s *Service) Engine() *extraction.Engine {
	return s.engine
}

// Search exposes the PDF discovery helper
func (s *Service) Search() *Search {
	return s.search
}

// GetMaxFileSize returns the maximum file size limit
func (s *Service) GetMaxFileSize() int64 {
	return s.maxFileSize
}

// OCRAvailable reports whether scanned pages can be recognized
func (s *Service) OCRAvailable() bool {
	return s.ocr != nil && s.engine.Config().EnableOCR
}

// CacheStats reports result cache usage. A disabled cache reports zeros.
func (s *Service) CacheStats() CacheStats {
	if s.cache == nil {
		return CacheStats{}
	}
	return s.cache.stats()
}

// resolvePath confines path to the configured directory. Relative paths are
// taken relative to it.
func (s *Service) resolvePath(path string) (string, error) {
	if s.pathValidator == nil {
		return path, nil
	}
	resolved, err := s.pathValidator.ResolvePath(path)
	if err != nil {
		return "", fmt.Errorf("security validation failed: %w", err)
	}
	return resolved, nil
}

// CableExtractFile extracts the cable list or schematic records of one PDF
func (s *Service) CableExtractFile(ctx context.Context, req CableExtractFileRequest) (*CableExtractFileResult, error) {
	requestID := uuid.NewString()
	log := s.log.WithFields(logrus.Fields{"request_id": requestID, "path": req.Path})

	path, err := s.resolvePath(req.Path)
	if err != nil {
		return nil, err
	}
	req.Path = path
	if err := s.validator.validatePDFFile(req.Path); err != nil {
		return nil, err
	}

	mode := s.engine.Config().Mode
	if req.Mode != "" {
		m, err := extraction.ParseMode(req.Mode)
		if err != nil {
			return nil, err
		}
		mode = m
	}

	var key string
	if s.cache != nil {
		if key, err = cacheKey(req.Path, mode, s.OCRAvailable()); err == nil {
			if hit, ok := s.cache.get(key); ok {
				log.Debug("extraction served from cache")
				return &CableExtractFileResult{
					Path:      req.Path,
					RequestID: requestID,
					Pages:     hit.pages,
					Mode:      string(mode),
					Result:    hit.result,
				}, nil
			}
		}
	}

	start := time.Now()
	backends, err := wrapper.Open(req.Path, wrapper.FactoryConfig{
		MaxFileSize:  s.maxFileSize,
		EnableRaster: s.OCRAvailable(),
	})
	if err != nil {
		log.WithError(err).Warn("failed to open PDF")
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}
	defer backends.Close()

	res, err := s.engine.ExtractMode(ctx, backends.Input(s.ocr), mode)
	if err != nil {
		log.WithError(err).Info("extraction produced no data")
		return nil, err
	}

	log.WithFields(logrus.Fields{
		"strategy": res.Strategy,
		"duration": time.Since(start).String(),
	}).Debug("extraction finished")

	pages := backends.Doc.PageCount()
	if key != "" {
		s.cache.put(key, cachedExtraction{pages: pages, result: res})
	}

	return &CableExtractFileResult{
		Path:      req.Path,
		RequestID: requestID,
		Pages:     pages,
		Mode:      string(mode),
		Result:    res,
	}, nil
}

// CableExtractBatch extracts several files with at most jobs running at once
// and combines the results. A failing file is reported in the result; only
// cancellation aborts the batch.
func (s *Service) CableExtractBatch(ctx context.Context, req CableExtractBatchRequest, jobs int) (*CableExtractBatchResult, error) {
	if len(req.Paths) == 0 {
		return nil, fmt.Errorf("no files given")
	}
	if jobs <= 0 {
		jobs = DefaultBatchJobs
	}

	outcomes := make([]FileOutcome, len(req.Paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)

	for i, path := range req.Paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := s.CableExtractFile(gctx, CableExtractFileRequest{Path: path, Mode: req.Mode})
			outcomes[i] = FileOutcome{Path: path, Err: err}
			if err == nil {
				outcomes[i].Result = res.Result
			}
			if ctxErr := gctx.Err(); ctxErr != nil {
				return ctxErr
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	combined := Combine(outcomes)
	s.log.WithFields(logrus.Fields{
		"files":  len(combined.Files),
		"failed": len(combined.Errors),
	}).Info("batch finished")
	return combined, nil
}

// CableValidateFile performs validation on a PDF file
func (s *Service) CableValidateFile(req CableValidateFileRequest) (*CableValidateFileResult, error) {
	path, err := s.resolvePath(req.Path)
	if err != nil {
		return nil, err
	}
	req.Path = path
	return s.validator.ValidateFile(req)
}

// CableExportXLSX extracts a PDF and appends the data to an Excel workbook
func (s *Service) CableExportXLSX(ctx context.Context, req CableExportXLSXRequest) (*CableExportXLSXResult, error) {
	if req.Output == "" {
		return nil, fmt.Errorf("output path cannot be empty")
	}
	if s.pathValidator != nil {
		output, err := s.pathValidator.ResolvePath(req.Output)
		if err == nil {
			err = s.pathValidator.ValidateOutputPath(output, ".xlsx")
		}
		if err != nil {
			return nil, fmt.Errorf("security validation failed: %w", err)
		}
		req.Output = output
	}

	extracted, err := s.CableExtractFile(ctx, CableExtractFileRequest{Path: req.Path, Mode: req.Mode})
	if err != nil {
		return nil, err
	}

	report, err := export.WriteResult(req.Output, req.Sheet, extracted.Result)
	if err != nil {
		return nil, fmt.Errorf("failed to export workbook: %w", err)
	}
	s.log.WithFields(logrus.Fields{
		"request_id": extracted.RequestID,
		"output":     report.Path,
		"rows":       report.RowsWritten,
	}).Info("exported to workbook")

	return &CableExportXLSXResult{Extraction: extracted, Report: report}, nil
}
