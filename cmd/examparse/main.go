package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"

	"github.com/prepstack/examparse/internal/config"
	"github.com/prepstack/examparse/internal/exam"
	"github.com/prepstack/examparse/internal/mcp"
	"github.com/prepstack/examparse/internal/store"
)

var (
	version   = "dev"     // set by build flags
	buildTime = "unknown" // set by build flags
	gitCommit = "unknown" // set by build flags
)

// setupLogging configures logging based on the runtime mode
func setupLogging(cfg *config.Config) {
	if cfg.IsStdioMode() {
		// In stdio mode, log output must not interfere with the MCP protocol
		log.SetOutput(os.Stderr)
		if !cfg.IsDebug() {
			log.SetOutput(io.Discard)
		}
	} else {
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	}
}

// loadStripLists resolves the boilerplate strip lists, preferring the
// configured override file over the embedded defaults.
func loadStripLists(cfg *config.Config) exam.StripLists {
	if cfg.StripListPath == "" {
		return exam.DefaultStripLists()
	}

	lists, err := exam.LoadStripLists(cfg.StripListPath)
	if err != nil {
		log.Printf("Ignoring strip-list override: %v", err)
		return exam.DefaultStripLists()
	}
	return lists
}

// runStdioMode serves MCP tools until the parent closes stdin
func runStdioMode(ctx context.Context, server *mcp.Server) {
	if err := server.Run(ctx); err != nil {
		if os.Getenv("DEBUG") != "" {
			log.Printf("Server error: %v", err)
		}
		os.Exit(1)
	}
}

// runParseMode parses one exam PDF and writes the record through the store
func runParseMode(ctx context.Context, cfg *config.Config, examService *exam.Service, examStore *store.FileStore) {
	data, err := os.ReadFile(cfg.InputPath)
	if err != nil {
		log.Fatalf("Cannot read input file: %v", err)
	}

	result, err := examService.ParseDocument(ctx, data, filepath.Base(cfg.InputPath), exam.Format(cfg.FormatOverride))
	if err != nil {
		log.Fatalf("Parse failed: %v", err)
	}

	name := strings.TrimSuffix(filepath.Base(cfg.InputPath), filepath.Ext(cfg.InputPath))
	record := store.NewRecord(name, result, data)
	if err := examStore.Save(record); err != nil {
		log.Fatalf("Failed to save exam record: %v", err)
	}

	fmt.Printf("Parsed %s: format=%s, %d questions across %d sections\n",
		cfg.InputPath, result.Format, result.TotalQuestions(), len(result.Sections))
	for _, warning := range result.Warnings {
		fmt.Printf("  warning: %s\n", warning)
	}
	fmt.Printf("Record written to %s\n", examStore.Dir())
}

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			printVersion()
			return
		}
	}

	cfg, err := config.LoadFromFlags()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	setupLogging(cfg)

	if version != "dev" {
		cfg.Version = version
	}

	if cfg.IsDebug() && cfg.IsParseMode() {
		log.Printf("Starting with configuration: %s", cfg.String())
	}

	examService, err := exam.NewService(cfg.MaxFileSize, loadStripLists(cfg))
	if err != nil {
		log.Fatalf("Failed to create exam service: %v", err)
	}

	examStore, err := store.NewFileStore(cfg.OutputDir)
	if err != nil {
		log.Fatalf("Failed to create exam store: %v", err)
	}

	// Cancel on SIGINT/SIGTERM so an in-flight parse stops cleanly
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.IsParseMode() {
		runParseMode(ctx, cfg, examService, examStore)
		return
	}

	server, err := mcp.NewServer(cfg, examService, examStore)
	if err != nil {
		log.Fatalf("Failed to create MCP server: %v", err)
	}
	runStdioMode(ctx, server)
}

// printVersion prints version information
func printVersion() {
	fmt.Printf("examparse\n")
	fmt.Printf("Version: %s\n", version)
	fmt.Printf("Build Time: %s\n", buildTime)
	fmt.Printf("Git Commit: %s\n", gitCommit)
	fmt.Printf("Built with: %s\n", runtime.Version())
}
