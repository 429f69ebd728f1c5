package extraction

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/a3tai/mcp-cable-extractor/internal/logger"
	pdferrors "github.com/a3tai/mcp-cable-extractor/internal/pdf/errors"
)

// Mode selects which strategy chains run
type Mode string

const (
	ModeAuto      Mode = "auto"
	ModeTabular   Mode = "tabular"
	ModeSchematic Mode = "schematic"
)

// DefaultOCRDPI is the resolution pages are rendered at before recognition
const DefaultOCRDPI = 300

// DefaultOCRLookahead is how many lines after an identifier are searched
const DefaultOCRLookahead = 3

// ParseMode validates a mode string
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return ModeAuto, nil
	case ModeAuto, ModeTabular, ModeSchematic:
		return m, nil
	default:
		return ModeAuto, fmt.Errorf("unknown extraction mode %q (must be auto, tabular or schematic)", s)
	}
}

// Config controls the engine
type Config struct {
	Mode             Mode
	Resolver         ResolverOptions
	Layout           Layout
	Geometry         *Geometry // overrides Layout when set
	IdentifierPrefix string
	EnablePosition   bool
	EnableOCR        bool
	OCRDPI           float64
	OCRLookahead     int
}

// DefaultConfig returns the engine defaults
func DefaultConfig() Config {
	return Config{
		Mode:             ModeAuto,
		Resolver:         DefaultResolverOptions(),
		Layout:           LayoutBelowRight,
		IdentifierPrefix: DefaultIdentifierPrefix,
		EnablePosition:   true,
		EnableOCR:        true,
		OCRDPI:           DefaultOCRDPI,
		OCRLookahead:     DefaultOCRLookahead,
	}
}

// Strategy is one way of pulling data out of a document. An empty or nil
// result means "nothing found" and the next strategy is tried. Errors are
// reserved for cancellation.
type Strategy interface {
	Name() string
	Extract(ctx context.Context, ws *Workspace) (*Result, error)
}

// Engine runs the tabular and schematic strategy chains
type Engine struct {
	config    Config
	resolver  *Resolver
	tabular   []Strategy
	schematic []Strategy
	log       *logrus.Entry
}

// NewEngine creates an engine using the default dictionary
func NewEngine(cfg Config) (*Engine, error) {
	return NewEngineWithDictionary(DefaultDictionary(), cfg)
}

// NewEngineWithDictionary creates an engine for a custom dictionary
func NewEngineWithDictionary(dict *Dictionary, cfg Config) (*Engine, error) {
	if cfg.Mode == "" {
		cfg.Mode = ModeAuto
	}
	if _, err := ParseMode(string(cfg.Mode)); err != nil {
		return nil, err
	}
	if cfg.OCRDPI <= 0 {
		cfg.OCRDPI = DefaultOCRDPI
	}
	if cfg.OCRLookahead <= 0 {
		cfg.OCRLookahead = DefaultOCRLookahead
	}

	geometry, err := GeometryFor(cfg.Layout)
	if err != nil {
		return nil, err
	}
	if cfg.Geometry != nil {
		geometry = *cfg.Geometry
	}

	patterns, err := NewPatterns(cfg.IdentifierPrefix)
	if err != nil {
		return nil, err
	}

	resolver := NewResolver(dict, cfg.Resolver)
	e := &Engine{
		config:   cfg,
		resolver: resolver,
		log:      logger.For("extraction"),
		tabular: []Strategy{
			NewRowHeaderStrategy(resolver),
			NewColumnFallbackStrategy(resolver),
			NewTwoRowHeaderStrategy(resolver),
		},
	}
	if cfg.EnablePosition {
		e.schematic = append(e.schematic, NewPositionStrategy(patterns, geometry))
	}
	if cfg.EnableOCR {
		e.schematic = append(e.schematic, NewOCRStrategy(patterns, cfg.OCRDPI, cfg.OCRLookahead))
	}
	return e, nil
}

// Resolver returns the engine's header resolver
func (e *Engine) Resolver() *Resolver {
	return e.resolver
}

// Config returns the engine configuration
func (e *Engine) Config() Config {
	return e.config
}

// Chain returns the names of the strategies that run for mode, in order
func (e *Engine) Chain(mode Mode) []string {
	var names []string
	for _, s := range e.strategies(mode) {
		names = append(names, s.Name())
	}
	return names
}

func (e *Engine) strategies(mode Mode) []Strategy {
	switch mode {
	case ModeTabular:
		return e.tabular
	case ModeSchematic:
		return e.schematic
	default:
		return append(append([]Strategy{}, e.tabular...), e.schematic...)
	}
}

// Extract runs the configured chain
func (e *Engine) Extract(ctx context.Context, in Input) (*Result, error) {
	return e.ExtractMode(ctx, in, e.config.Mode)
}

// ExtractMode runs the chain for mode and returns the first non-empty result.
// If every strategy comes back empty the error is NoProcessableData.
func (e *Engine) ExtractMode(ctx context.Context, in Input, mode Mode) (*Result, error) {
	if in.Doc == nil {
		err := pdferrors.NewExtractionError(pdferrors.ErrorTypeInvalidInput, "no document")
		err.FilePath = in.Path
		return nil, err
	}

	ws := NewWorkspace(in)
	log := e.log.WithFields(logrus.Fields{"path": in.Path, "mode": mode})

	for _, s := range e.strategies(mode) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		res, err := s.Extract(ctx, ws)
		if err != nil {
			return nil, err
		}
		if res.IsEmpty() {
			log.WithField("strategy", s.Name()).Debug("strategy produced nothing")
			continue
		}

		res.Strategy = s.Name()
		res.Warnings = ws.Issues().Messages()
		log.WithFields(logrus.Fields{
			"strategy": s.Name(),
			"kind":     res.Kind,
			"warnings": len(res.Warnings),
		}).Info("extraction succeeded")
		return res, nil
	}

	for _, issue := range ws.Issues().Errors {
		log.WithField("issue", issue.Error()).Warn("recovered during extraction")
	}
	return nil, pdferrors.NewNoProcessableDataError(in.Path)
}
