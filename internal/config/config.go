package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/a3tai/mcp-cable-extractor/internal/pdf/extraction"
)

const (
	// Mode constants
	ModeStdio  = "stdio"
	ModeServer = "server"

	// Default values
	DefaultPort        = 8080
	DefaultHost        = "127.0.0.1"
	DefaultLogLevel    = "info"
	DefaultMaxFileSize = 100 * 1024 * 1024 // 100MB

	DefaultExtractMode = "auto"
	DefaultLayout      = "below-right"
	DefaultTieBreak    = "best"
	DefaultOCRDPI      = 300
	DefaultOCRLanguage = "deu"
	DefaultIDPrefix    = "S"

	// EnvPrefix is prepended to every environment variable
	EnvPrefix = "MCP_CABLE"

	// Directory permissions
	DefaultDirPerm = 0o750
)

// Config holds all configuration for the cable extractor
type Config struct {
	// Server configuration
	Mode string // "server" or "stdio"
	Host string
	Port int

	// PDF configuration
	PDFDirectory string

	// Application configuration
	Version     string
	ServerName  string
	LogLevel    string
	MaxFileSize int64 // Maximum PDF file size in bytes

	Extraction ExtractionSettings
}

// ExtractionSettings are the user-facing knobs of the extraction engine
type ExtractionSettings struct {
	Mode          string  // auto, tabular or schematic
	Layout        string  // below-right or above-nearest
	StrictHeaders bool    // strip everything but letters and digits before matching headers
	TieBreak      string  // best or first
	Threshold     float64 // minimum similarity for fuzzy header matches
	OCR           bool
	OCRDPI        int
	OCRLanguage   string
	Position      bool
	IDPrefix      string
}

// DefaultExtractionSettings mirrors the engine defaults
func DefaultExtractionSettings() ExtractionSettings {
	return ExtractionSettings{
		Mode:        DefaultExtractMode,
		Layout:      DefaultLayout,
		TieBreak:    DefaultTieBreak,
		Threshold:   extraction.DefaultSimilarityThreshold,
		OCR:         true,
		OCRDPI:      DefaultOCRDPI,
		OCRLanguage: DefaultOCRLanguage,
		Position:    true,
		IDPrefix:    DefaultIDPrefix,
	}
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	currentDir, err := os.Getwd()
	if err != nil {
		// Fallback to current directory if working directory cannot be determined
		currentDir = "."
	}

	return &Config{
		Mode:         ModeStdio, // Default to stdio mode for MCP compatibility
		Host:         DefaultHost,
		Port:         DefaultPort,
		PDFDirectory: currentDir,
		Version:      "1.0.0",
		ServerName:   "mcp-cable-extractor",
		LogLevel:     DefaultLogLevel,
		MaxFileSize:  DefaultMaxFileSize,
		Extraction:   DefaultExtractionSettings(),
	}
}

// LoadFromFlags parses command line flags and returns a configuration
func LoadFromFlags() (*Config, error) {
	cfg := DefaultConfig()

	setupViperEnvironment(cfg)
	defineCommandLineFlags(cfg)
	bindFlagsToViper()
	setupUsageMessage()

	// Check for version flag before parsing
	if err := checkVersionFlag(); err != nil {
		return nil, err
	}

	pflag.Parse()

	populateConfigFromViper(cfg)

	// Expand paths if needed
	if cfg.PDFDirectory != "" {
		if expandedPath, err := filepath.Abs(cfg.PDFDirectory); err == nil {
			cfg.PDFDirectory = expandedPath
		}
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// BindFlagSet registers the extraction and logging flags on fs and binds
// them to viper. Command line tools built on cobra call this with their own
// flag set and read the result with LoadExtraction.
func BindFlagSet(fs *pflag.FlagSet) {
	cfg := DefaultConfig()
	setupViperEnvironment(cfg)
	fs.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
	fs.Int64("maxfilesize", cfg.MaxFileSize, "Maximum PDF file size in bytes")
	defineExtractionFlags(fs, cfg.Extraction)
	for _, key := range append([]string{"loglevel", "maxfilesize"}, extractionKeys...) {
		_ = viper.BindPFlag(key, fs.Lookup(key))
	}
}

// LoadExtraction reads a configuration without server settings from viper.
// The PDF directory is left empty, which disables the directory restriction.
func LoadExtraction() (*Config, error) {
	cfg := DefaultConfig()
	cfg.PDFDirectory = ""
	cfg.LogLevel = viper.GetString("loglevel")
	cfg.MaxFileSize = viper.GetInt64("maxfilesize")
	populateExtractionFromViper(&cfg.Extraction)

	if err := cfg.validateCommon(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

var extractionKeys = []string{
	"extract-mode", "layout", "strict-headers", "tie-break", "threshold",
	"ocr", "ocr-dpi", "ocr-lang", "position", "id-prefix",
}

// setupViperEnvironment configures viper with environment variables and defaults
func setupViperEnvironment(cfg *Config) {
	// Set environment variable prefix
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	// Define flags with Viper
	viper.SetDefault("mode", cfg.Mode)
	viper.SetDefault("host", cfg.Host)
	viper.SetDefault("port", cfg.Port)
	viper.SetDefault("dir", cfg.PDFDirectory)
	viper.SetDefault("loglevel", cfg.LogLevel)
	viper.SetDefault("maxfilesize", cfg.MaxFileSize)

	e := cfg.Extraction
	viper.SetDefault("extract-mode", e.Mode)
	viper.SetDefault("layout", e.Layout)
	viper.SetDefault("strict-headers", e.StrictHeaders)
	viper.SetDefault("tie-break", e.TieBreak)
	viper.SetDefault("threshold", e.Threshold)
	viper.SetDefault("ocr", e.OCR)
	viper.SetDefault("ocr-dpi", e.OCRDPI)
	viper.SetDefault("ocr-lang", e.OCRLanguage)
	viper.SetDefault("position", e.Position)
	viper.SetDefault("id-prefix", e.IDPrefix)
}

// defineCommandLineFlags sets up all command line flags
func defineCommandLineFlags(cfg *Config) {
	pflag.String("mode", cfg.Mode, "Server mode: 'stdio' for MCP standard I/O, 'server' for HTTP server")
	pflag.String("host", cfg.Host, "Server host address (server mode only)")
	pflag.Int("port", cfg.Port, "Server port (server mode only)")
	pflag.String("dir", cfg.PDFDirectory, "Directory containing PDF files")
	pflag.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
	pflag.Int64("maxfilesize", cfg.MaxFileSize, "Maximum PDF file size in bytes")
	defineExtractionFlags(pflag.CommandLine, cfg.Extraction)
}

func defineExtractionFlags(fs *pflag.FlagSet, e ExtractionSettings) {
	fs.String("extract-mode", e.Mode, "Extraction mode: auto, tabular or schematic")
	fs.String("layout", e.Layout, "Drawing layout for position matching: below-right or above-nearest")
	fs.Bool("strict-headers", e.StrictHeaders, "Ignore punctuation and spaces when matching table headers")
	fs.String("tie-break", e.TieBreak, "Fuzzy header tie-break: best or first")
	fs.Float64("threshold", e.Threshold, "Minimum similarity (0-1) for fuzzy header matches")
	fs.Bool("ocr", e.OCR, "Fall back to OCR for scanned drawings")
	fs.Int("ocr-dpi", e.OCRDPI, "Resolution used to render pages for OCR")
	fs.String("ocr-lang", e.OCRLanguage, "Tesseract language")
	fs.Bool("position", e.Position, "Match cable labels by position on drawings")
	fs.String("id-prefix", e.IDPrefix, "Letter prefix of cable identifiers")
}

// bindFlagsToViper binds command line flags to viper configuration
func bindFlagsToViper() {
	for _, key := range append([]string{"mode", "host", "port", "dir", "loglevel", "maxfilesize"}, extractionKeys...) {
		_ = viper.BindPFlag(key, pflag.Lookup(key))
	}
}

// setupUsageMessage configures the custom usage message
func setupUsageMessage() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nMCP Cable Extractor - A Model Context Protocol server that reads cable lists and site plans\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s                                         "+
			"# stdio mode, current directory (default)\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --dir=/path/to/pdfs                     "+
			"# stdio mode with custom directory\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --extract-mode=schematic --ocr=false    "+
			"# drawings only, no OCR\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --mode=server --host=0.0.0.0 --port=8081 # server on all interfaces\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  MCP_CABLE_MODE          Server mode\n")
		fmt.Fprintf(os.Stderr, "  MCP_CABLE_DIR           PDF directory\n")
		fmt.Fprintf(os.Stderr, "  MCP_CABLE_LOGLEVEL      Log level\n")
		fmt.Fprintf(os.Stderr, "  MCP_CABLE_EXTRACT_MODE  Extraction mode\n")
		fmt.Fprintf(os.Stderr, "  MCP_CABLE_OCR           Enable OCR fallback\n")
		fmt.Fprintf(os.Stderr, "  MCP_CABLE_ID_PREFIX     Cable identifier prefix\n")
	}
}

// checkVersionFlag checks if version flag was requested
func checkVersionFlag() error {
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			return fmt.Errorf("version requested")
		}
	}
	return nil
}

// populateConfigFromViper fills the config struct with values from viper
func populateConfigFromViper(cfg *Config) {
	cfg.Mode = viper.GetString("mode")
	cfg.Host = viper.GetString("host")
	cfg.Port = viper.GetInt("port")
	cfg.PDFDirectory = viper.GetString("dir")
	cfg.LogLevel = viper.GetString("loglevel")
	cfg.MaxFileSize = viper.GetInt64("maxfilesize")
	populateExtractionFromViper(&cfg.Extraction)
}

func populateExtractionFromViper(e *ExtractionSettings) {
	e.Mode = viper.GetString("extract-mode")
	e.Layout = viper.GetString("layout")
	e.StrictHeaders = viper.GetBool("strict-headers")
	e.TieBreak = viper.GetString("tie-break")
	e.Threshold = viper.GetFloat64("threshold")
	e.OCR = viper.GetBool("ocr")
	e.OCRDPI = viper.GetInt("ocr-dpi")
	e.OCRLanguage = viper.GetString("ocr-lang")
	e.Position = viper.GetBool("position")
	e.IDPrefix = viper.GetString("id-prefix")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Validate mode
	if c.Mode != ModeStdio && c.Mode != ModeServer {
		return errors.New("mode must be either 'stdio' or 'server'")
	}

	// Validate port range (only for server mode)
	if c.Mode == ModeServer && (c.Port < 1 || c.Port > 65535) {
		return errors.New("port must be between 1 and 65535")
	}

	// Validate PDF directory
	if c.PDFDirectory == "" {
		return errors.New("PDF directory cannot be empty")
	}

	// Check if PDF directory exists, create if it doesn't
	if _, err := os.Stat(c.PDFDirectory); os.IsNotExist(err) {
		if err := os.MkdirAll(c.PDFDirectory, DefaultDirPerm); err != nil {
			return fmt.Errorf("cannot create PDF directory %s: %w", c.PDFDirectory, err)
		}
	} else if err != nil {
		return fmt.Errorf("cannot access PDF directory %s: %w", c.PDFDirectory, err)
	}

	return c.validateCommon()
}

func (c *Config) validateCommon() error {
	// Validate max file size
	if c.MaxFileSize <= 0 {
		return errors.New("maximum file size must be positive")
	}

	// Validate log level
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	if c.Extraction.OCRDPI < 72 || c.Extraction.OCRDPI > 1200 {
		return fmt.Errorf("ocr-dpi must be between 72 and 1200, got %d", c.Extraction.OCRDPI)
	}
	if c.Extraction.Threshold <= 0 || c.Extraction.Threshold > 1 {
		return fmt.Errorf("threshold must be in (0, 1], got %v", c.Extraction.Threshold)
	}

	// the engine owns the remaining rules (mode, layout, prefix)
	engineCfg, err := c.EngineConfig()
	if err != nil {
		return err
	}
	if _, err := extraction.NewEngine(engineCfg); err != nil {
		return err
	}
	return nil
}

// EngineConfig converts the extraction settings into an engine configuration
func (c *Config) EngineConfig() (extraction.Config, error) {
	e := c.Extraction
	cfg := extraction.DefaultConfig()

	mode, err := extraction.ParseMode(e.Mode)
	if err != nil {
		return cfg, err
	}
	tieBreak, err := extraction.ParseTieBreak(e.TieBreak)
	if err != nil {
		return cfg, err
	}

	cfg.Mode = mode
	cfg.Layout = extraction.Layout(strings.ToLower(strings.TrimSpace(e.Layout)))
	cfg.Resolver.Strict = e.StrictHeaders
	cfg.Resolver.TieBreak = tieBreak
	cfg.Resolver.Threshold = e.Threshold
	cfg.IdentifierPrefix = e.IDPrefix
	cfg.EnablePosition = e.Position
	cfg.EnableOCR = e.OCR
	cfg.OCRDPI = float64(e.OCRDPI)
	return cfg, nil
}

// Address returns the server address as host:port
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsDebug returns true if debug logging is enabled
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{Mode: %s, Host: %s, Port: %d, PDFDirectory: %s, LogLevel: %s, MaxFileSize: %d, "+
		"ExtractMode: %s, Layout: %s, OCR: %t}",
		c.Mode, c.Host, c.Port, c.PDFDirectory, c.LogLevel, c.MaxFileSize,
		c.Extraction.Mode, c.Extraction.Layout, c.Extraction.OCR)
}

// IsServerMode returns true if the server is running in HTTP server mode
func (c *Config) IsServerMode() bool {
	return c.Mode == ModeServer
}

// IsStdioMode returns true if the server is running in stdio mode
func (c *Config) IsStdioMode() bool {
	return c.Mode == ModeStdio
}
