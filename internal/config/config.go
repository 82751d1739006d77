package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// Mode constants
	ModeStdio = "stdio"
	ModeParse = "parse"

	// Default values
	DefaultLogLevel    = "info"
	DefaultMaxFileSize = 50 * 1024 * 1024 // 50MB upload ceiling

	// Directory permissions
	DefaultDirPerm = 0o750
)

// Config holds all configuration for the exam parser.
type Config struct {
	// Runtime mode: "stdio" serves MCP tools, "parse" runs one document and exits
	Mode string

	// Parse mode configuration
	InputPath      string // PDF to parse (parse mode only)
	FormatOverride string // "enhanced", "classic", or "" for auto-detection
	OutputDir      string // directory the store writes exam records into

	// Shared configuration
	ExamDirectory string // directory containing exam PDFs (stdio mode default)
	StripListPath string // optional external boilerplate strip-list file
	LogLevel      string
	MaxFileSize   int64

	// Application identity
	Version    string
	ServerName string
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	currentDir, err := os.Getwd()
	if err != nil {
		currentDir = "."
	}

	return &Config{
		Mode:          ModeStdio, // default to stdio for MCP compatibility
		ExamDirectory: currentDir,
		OutputDir:     filepath.Join(currentDir, "exams"),
		Version:       "1.0.0",
		ServerName:    "examparse",
		LogLevel:      DefaultLogLevel,
		MaxFileSize:   DefaultMaxFileSize,
	}
}

// LoadFromFlags parses command line flags and returns a configuration
func LoadFromFlags() (*Config, error) {
	cfg := DefaultConfig()

	setupViperEnvironment(cfg)
	defineCommandLineFlags(cfg)
	bindFlagsToViper()
	setupUsageMessage()

	pflag.Parse()

	populateConfigFromViper(cfg)

	// Expand paths if needed
	if cfg.ExamDirectory != "" {
		if expandedPath, err := filepath.Abs(cfg.ExamDirectory); err == nil {
			cfg.ExamDirectory = expandedPath
		}
	}
	if cfg.InputPath != "" {
		if expandedPath, err := filepath.Abs(cfg.InputPath); err == nil {
			cfg.InputPath = expandedPath
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setupViperEnvironment configures viper with environment variables and defaults
func setupViperEnvironment(cfg *Config) {
	viper.SetEnvPrefix("EXAMPARSE")
	viper.AutomaticEnv()

	viper.SetDefault("mode", cfg.Mode)
	viper.SetDefault("input", cfg.InputPath)
	viper.SetDefault("format", cfg.FormatOverride)
	viper.SetDefault("out", cfg.OutputDir)
	viper.SetDefault("dir", cfg.ExamDirectory)
	viper.SetDefault("striplist", cfg.StripListPath)
	viper.SetDefault("loglevel", cfg.LogLevel)
	viper.SetDefault("maxfilesize", cfg.MaxFileSize)
}

// defineCommandLineFlags sets up all command line flags
func defineCommandLineFlags(cfg *Config) {
	pflag.String("mode", cfg.Mode, "Runtime mode: 'stdio' for MCP standard I/O, 'parse' for one-shot parsing")
	pflag.String("input", cfg.InputPath, "Exam PDF to parse (parse mode only)")
	pflag.String("format", cfg.FormatOverride, "Force a format variant: 'enhanced' or 'classic' (default: auto-detect)")
	pflag.String("out", cfg.OutputDir, "Directory to write parsed exam records into (parse mode only)")
	pflag.String("dir", cfg.ExamDirectory, "Directory containing exam PDF files")
	pflag.String("striplist", cfg.StripListPath, "Optional boilerplate strip-list override file")
	pflag.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
	pflag.Int64("maxfilesize", cfg.MaxFileSize, "Maximum exam PDF file size in bytes")
}

// bindFlagsToViper binds command line flags to viper configuration
func bindFlagsToViper() {
	_ = viper.BindPFlag("mode", pflag.Lookup("mode"))
	_ = viper.BindPFlag("input", pflag.Lookup("input"))
	_ = viper.BindPFlag("format", pflag.Lookup("format"))
	_ = viper.BindPFlag("out", pflag.Lookup("out"))
	_ = viper.BindPFlag("dir", pflag.Lookup("dir"))
	_ = viper.BindPFlag("striplist", pflag.Lookup("striplist"))
	_ = viper.BindPFlag("loglevel", pflag.Lookup("loglevel"))
	_ = viper.BindPFlag("maxfilesize", pflag.Lookup("maxfilesize"))
}

// setupUsageMessage configures the custom usage message
func setupUsageMessage() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nexamparse - extract multiple-choice questions from standardized-test PDFs\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s                                        # stdio MCP mode (default)\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --dir=/path/to/exams                   # stdio mode, custom directory\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --mode=parse --input=ACT_2012.pdf      # parse one exam to ./exams\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --mode=parse --input=a.pdf --format=enhanced\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  EXAMPARSE_MODE         Runtime mode\n")
		fmt.Fprintf(os.Stderr, "  EXAMPARSE_INPUT        Input PDF path\n")
		fmt.Fprintf(os.Stderr, "  EXAMPARSE_FORMAT       Format override\n")
		fmt.Fprintf(os.Stderr, "  EXAMPARSE_OUT          Output directory\n")
		fmt.Fprintf(os.Stderr, "  EXAMPARSE_DIR          Exam PDF directory\n")
		fmt.Fprintf(os.Stderr, "  EXAMPARSE_STRIPLIST    Strip-list override file\n")
		fmt.Fprintf(os.Stderr, "  EXAMPARSE_LOGLEVEL     Log level\n")
		fmt.Fprintf(os.Stderr, "  EXAMPARSE_MAXFILESIZE  Maximum file size\n")
	}
}

// populateConfigFromViper fills the config struct with values from viper
func populateConfigFromViper(cfg *Config) {
	cfg.Mode = viper.GetString("mode")
	cfg.InputPath = viper.GetString("input")
	cfg.FormatOverride = viper.GetString("format")
	cfg.OutputDir = viper.GetString("out")
	cfg.ExamDirectory = viper.GetString("dir")
	cfg.StripListPath = viper.GetString("striplist")
	cfg.LogLevel = viper.GetString("loglevel")
	cfg.MaxFileSize = viper.GetInt64("maxfilesize")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Mode != ModeStdio && c.Mode != ModeParse {
		return errors.New("mode must be either 'stdio' or 'parse'")
	}

	if c.Mode == ModeParse && c.InputPath == "" {
		return errors.New("parse mode requires --input")
	}

	switch c.FormatOverride {
	case "", "enhanced", "classic":
	default:
		return fmt.Errorf("invalid format override: %s (must be 'enhanced' or 'classic')", c.FormatOverride)
	}

	if c.ExamDirectory == "" {
		return errors.New("exam directory cannot be empty")
	}

	// Create the exam directory if it does not exist yet
	if _, err := os.Stat(c.ExamDirectory); os.IsNotExist(err) {
		if err := os.MkdirAll(c.ExamDirectory, DefaultDirPerm); err != nil {
			return fmt.Errorf("cannot create exam directory %s: %w", c.ExamDirectory, err)
		}
	} else if err != nil {
		return fmt.Errorf("cannot access exam directory %s: %w", c.ExamDirectory, err)
	}

	if c.MaxFileSize <= 0 {
		return errors.New("maximum file size must be positive")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	return nil
}

// IsDebug returns true if debug logging is enabled
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{Mode: %s, ExamDirectory: %s, InputPath: %s, FormatOverride: %q, LogLevel: %s, MaxFileSize: %d}",
		c.Mode, c.ExamDirectory, c.InputPath, c.FormatOverride, c.LogLevel, c.MaxFileSize)
}

// IsParseMode returns true if the binary runs a single parse and exits
func (c *Config) IsParseMode() bool {
	return c.Mode == ModeParse
}

// IsStdioMode returns true if the binary serves MCP tools over stdio
func (c *Config) IsStdioMode() bool {
	return c.Mode == ModeStdio
}
