package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/a3tai/mcp-cable-extractor/internal/config"
	"github.com/a3tai/mcp-cable-extractor/internal/logger"
	"github.com/a3tai/mcp-cable-extractor/internal/mcp"
	"github.com/a3tai/mcp-cable-extractor/internal/pdf"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

// logOutput picks where logs go. Stdout carries the protocol in stdio mode,
// so logs go to stderr there and only when debugging.
func logOutput(cfg *config.Config) io.Writer {
	if cfg.IsStdioMode() {
		if cfg.IsDebug() {
			return os.Stderr
		}
		return io.Discard
	}
	return os.Stdout
}

// setupLogging configures logging based on the server mode
func setupLogging(cfg *config.Config) {
	logger.Setup(cfg.LogLevel, logOutput(cfg))
}

// isVersionArg reports whether args ask for the version
func isVersionArg(args []string) bool {
	for _, arg := range args {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			return true
		}
	}
	return false
}

// runServerMode handles server mode execution with signal handling
func runServerMode(ctx context.Context, cancel context.CancelFunc, server *mcp.Server, log *logrus.Entry) int {
	// Set up signal handling for graceful shutdown
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(signalCh)

	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- server.Run(ctx)
	}()

	select {
	case sig := <-signalCh:
		log.WithField("signal", sig.String()).Info("initiating graceful shutdown")
		cancel()

		if err := <-serverErrCh; err != nil {
			log.WithError(err).Error("server shutdown with error")
			return 1
		}

	case err := <-serverErrCh:
		if err != nil {
			log.WithError(err).Error("server error")
			return 1
		}
	}

	log.Info("server stopped successfully")
	return 0
}

// runStdioMode handles stdio mode execution. The parent process controls
// our lifecycle; we stop when stdin closes.
func runStdioMode(ctx context.Context, server *mcp.Server, log *logrus.Entry) int {
	if err := server.Run(ctx); err != nil {
		log.WithError(err).Error("server error")
		return 1
	}
	return 0
}

func run() int {
	// Check for version flag before parsing other flags
	if isVersionArg(os.Args[1:]) {
		printVersion(os.Stdout)
		return 0
	}

	cfg, err := config.LoadFromFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		return 1
	}

	setupLogging(cfg)
	log := logger.For("main")

	// Set version if it was provided during build
	if version != "dev" {
		cfg.Version = version
	}
	log.WithField("config", cfg.String()).Debug("starting")

	pdfService, closeService, err := pdf.NewFromConfig(cfg)
	if err != nil {
		log.WithError(err).Error("failed to create cable extraction service")
		return 1
	}
	defer closeService()

	server, err := mcp.NewServer(cfg, pdfService)
	if err != nil {
		log.WithError(err).Error("failed to create MCP server")
		return 1
	}

	// Set up context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.IsServerMode() {
		return runServerMode(ctx, cancel, server, log)
	}
	return runStdioMode(ctx, server, log)
}

func main() {
	os.Exit(run())
}

// printVersion prints version information
func printVersion(w io.Writer) {
	fmt.Fprintf(w, "MCP Cable Extractor\n")
	fmt.Fprintf(w, "Version: %s\n", version)
	fmt.Fprintf(w, "Build Time: %s\n", buildTime)
	fmt.Fprintf(w, "Git Commit: %s\n", gitCommit)
	fmt.Fprintf(w, "Built with: %s\n", runtime.Version())
}
