package config

import (
	"os"
	"strings"
	"testing"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// resetFlags resets the global flag and viper state for testing
func resetFlags() {
	pflag.CommandLine = pflag.NewFlagSet(os.Args[0], pflag.ExitOnError)
	viper.Reset()
}

// setArgs sets os.Args for testing and returns a restore function
func setArgs(args ...string) func() {
	oldArgs := os.Args
	os.Args = append([]string{"mcp-cable-extractor"}, args...)
	return func() { os.Args = oldArgs }
}

// clearEnvVars clears all MCP_CABLE_ environment variables for the duration of the test
func clearEnvVars(t *testing.T) {
	t.Helper()
	for _, kv := range os.Environ() {
		if strings.HasPrefix(kv, EnvPrefix+"_") {
			key := strings.SplitN(kv, "=", 2)[0]
			t.Setenv(key, "")
			os.Unsetenv(key)
		}
	}
}

func TestLoadFromFlags_DefaultConfig(t *testing.T) {
	resetFlags()
	clearEnvVars(t)
	defer setArgs()()

	cfg, err := LoadFromFlags()
	if err != nil {
		t.Fatalf("LoadFromFlags() error = %v", err)
	}

	if cfg.Mode != ModeStdio {
		t.Errorf("Mode = %v, want %v", cfg.Mode, ModeStdio)
	}
	if cfg.LogLevel != DefaultLogLevel {
		t.Errorf("LogLevel = %v, want %v", cfg.LogLevel, DefaultLogLevel)
	}
	if cfg.Extraction.Mode != DefaultExtractMode {
		t.Errorf("Extraction.Mode = %v, want %v", cfg.Extraction.Mode, DefaultExtractMode)
	}
	if !cfg.Extraction.OCR {
		t.Error("Extraction.OCR = false, want true")
	}
}

func TestLoadFromFlags_ValidFlags(t *testing.T) {
	resetFlags()
	clearEnvVars(t)
	dir := t.TempDir()
	defer setArgs(
		"--mode=server",
		"--host=0.0.0.0",
		"--port=9090",
		"--dir="+dir,
		"--loglevel=debug",
		"--maxfilesize=2048",
		"--extract-mode=schematic",
		"--layout=above-nearest",
		"--ocr=false",
		"--ocr-dpi=200",
		"--id-prefix=K",
		"--tie-break=first",
		"--strict-headers",
	)()

	cfg, err := LoadFromFlags()
	if err != nil {
		t.Fatalf("LoadFromFlags() error = %v", err)
	}

	if cfg.Mode != ModeServer {
		t.Errorf("Mode = %v, want %v", cfg.Mode, ModeServer)
	}
	if cfg.Address() != "0.0.0.0:9090" {
		t.Errorf("Address() = %v, want 0.0.0.0:9090", cfg.Address())
	}
	if cfg.PDFDirectory != dir {
		t.Errorf("PDFDirectory = %v, want %v", cfg.PDFDirectory, dir)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %v, want debug", cfg.LogLevel)
	}
	if cfg.MaxFileSize != 2048 {
		t.Errorf("MaxFileSize = %v, want 2048", cfg.MaxFileSize)
	}

	e := cfg.Extraction
	if e.Mode != "schematic" || e.Layout != "above-nearest" {
		t.Errorf("Extraction mode/layout = %v/%v, want schematic/above-nearest", e.Mode, e.Layout)
	}
	if e.OCR {
		t.Error("Extraction.OCR = true, want false")
	}
	if e.OCRDPI != 200 {
		t.Errorf("Extraction.OCRDPI = %v, want 200", e.OCRDPI)
	}
	if e.IDPrefix != "K" {
		t.Errorf("Extraction.IDPrefix = %v, want K", e.IDPrefix)
	}
	if e.TieBreak != "first" || !e.StrictHeaders {
		t.Errorf("Extraction tie-break/strict = %v/%v, want first/true", e.TieBreak, e.StrictHeaders)
	}
}

func TestLoadFromFlags_EnvironmentVariables(t *testing.T) {
	resetFlags()
	clearEnvVars(t)
	dir := t.TempDir()
	t.Setenv("MCP_CABLE_DIR", dir)
	t.Setenv("MCP_CABLE_LOGLEVEL", "warn")
	t.Setenv("MCP_CABLE_EXTRACT_MODE", "tabular")
	t.Setenv("MCP_CABLE_ID_PREFIX", "W")
	t.Setenv("MCP_CABLE_OCR", "false")
	defer setArgs()()

	cfg, err := LoadFromFlags()
	if err != nil {
		t.Fatalf("LoadFromFlags() error = %v", err)
	}

	if cfg.PDFDirectory != dir {
		t.Errorf("PDFDirectory = %v, want %v", cfg.PDFDirectory, dir)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LogLevel = %v, want warn", cfg.LogLevel)
	}
	if cfg.Extraction.Mode != "tabular" {
		t.Errorf("Extraction.Mode = %v, want tabular", cfg.Extraction.Mode)
	}
	if cfg.Extraction.IDPrefix != "W" {
		t.Errorf("Extraction.IDPrefix = %v, want W", cfg.Extraction.IDPrefix)
	}
	if cfg.Extraction.OCR {
		t.Error("Extraction.OCR = true, want false")
	}
}

func TestLoadFromFlags_FlagOverridesEnvironment(t *testing.T) {
	resetFlags()
	clearEnvVars(t)
	t.Setenv("MCP_CABLE_EXTRACT_MODE", "tabular")
	defer setArgs("--extract-mode=schematic", "--dir="+t.TempDir())()

	cfg, err := LoadFromFlags()
	if err != nil {
		t.Fatalf("LoadFromFlags() error = %v", err)
	}
	if cfg.Extraction.Mode != "schematic" {
		t.Errorf("Extraction.Mode = %v, want schematic", cfg.Extraction.Mode)
	}
}

func TestLoadFromFlags_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"invalid mode", []string{"--mode=invalid"}, "mode must be either"},
		{"invalid port", []string{"--mode=server", "--port=99999"}, "port must be between"},
		{"invalid log level", []string{"--loglevel=loud"}, "invalid log level"},
		{"invalid extract mode", []string{"--extract-mode=guess"}, "unknown extraction mode"},
		{"invalid layout", []string{"--layout=left"}, "unknown layout"},
		{"invalid id prefix", []string{"--id-prefix=123"}, "identifier prefix"},
		{"dpi too low", []string{"--ocr-dpi=10"}, "ocr-dpi"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resetFlags()
			clearEnvVars(t)
			defer setArgs(append(tt.args, "--dir="+t.TempDir())...)()

			_, err := LoadFromFlags()
			if err == nil {
				t.Fatal("LoadFromFlags() expected error, got nil")
			}
			if !strings.Contains(err.Error(), "invalid configuration") {
				t.Errorf("error %q should be wrapped as invalid configuration", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q should contain %q", err, tt.want)
			}
		})
	}
}

func TestLoadFromFlags_VersionFlag(t *testing.T) {
	for _, arg := range []string{"--version", "-version", "-v"} {
		t.Run(arg, func(t *testing.T) {
			resetFlags()
			clearEnvVars(t)
			defer setArgs(arg)()

			_, err := LoadFromFlags()
			if err == nil || err.Error() != "version requested" {
				t.Errorf("LoadFromFlags() error = %v, want version requested", err)
			}
		})
	}
}

func TestBindFlagSetAndLoadExtraction(t *testing.T) {
	resetFlags()
	clearEnvVars(t)
	t.Setenv("MCP_CABLE_LAYOUT", "above-nearest")

	fs := pflag.NewFlagSet("cable-extract", pflag.ContinueOnError)
	BindFlagSet(fs)
	if err := fs.Parse([]string{"--extract-mode=tabular", "--threshold=0.8", "--loglevel=error"}); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	cfg, err := LoadExtraction()
	if err != nil {
		t.Fatalf("LoadExtraction() error = %v", err)
	}

	if cfg.PDFDirectory != "" {
		t.Errorf("PDFDirectory = %q, want empty", cfg.PDFDirectory)
	}
	if cfg.LogLevel != "error" {
		t.Errorf("LogLevel = %v, want error", cfg.LogLevel)
	}
	if cfg.Extraction.Mode != "tabular" {
		t.Errorf("Extraction.Mode = %v, want tabular", cfg.Extraction.Mode)
	}
	if cfg.Extraction.Layout != "above-nearest" {
		t.Errorf("Extraction.Layout = %v, want above-nearest", cfg.Extraction.Layout)
	}
	if cfg.Extraction.Threshold != 0.8 {
		t.Errorf("Extraction.Threshold = %v, want 0.8", cfg.Extraction.Threshold)
	}
}

func TestLoadExtraction_Invalid(t *testing.T) {
	resetFlags()
	clearEnvVars(t)

	fs := pflag.NewFlagSet("cable-extract", pflag.ContinueOnError)
	BindFlagSet(fs)
	if err := fs.Parse([]string{"--tie-break=random"}); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if _, err := LoadExtraction(); err == nil {
		t.Error("LoadExtraction() expected error for unknown tie-break")
	}
}
