package exam

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/prepstack/examparse/internal/pagetext"
)

// Service is the public entry point of the extraction pipeline: document
// bytes in, a uniform ParseResult out. It wires the page-text source to the
// parser and enforces the caller-facing upload size ceiling.
type Service struct {
	maxFileSize int64
	parser      *Parser
}

// NewService creates an exam parsing service. The strip lists are compiled
// once here; everything else is created fresh per parse invocation.
func NewService(maxFileSize int64, lists StripLists) (*Service, error) {
	if maxFileSize <= 0 {
		return nil, fmt.Errorf("maxFileSize must be greater than 0")
	}

	parser, err := NewParser(lists)
	if err != nil {
		return nil, fmt.Errorf("failed to build parser: %w", err)
	}

	return &Service{
		maxFileSize: maxFileSize,
		parser:      parser,
	}, nil
}

// ParseDocument decodes the document bytes and runs the full pipeline. A
// decode failure is fatal and returns no partial result; extraction
// failures inside individual sections are non-fatal and reported through
// the result's warnings.
func (s *Service) ParseDocument(ctx context.Context, data []byte, filename string, override Format) (*ParseResult, error) {
	src, err := pagetext.NewSource(data, pagetext.Options{MaxFileSize: s.maxFileSize})
	if err != nil {
		return nil, fmt.Errorf("failed to decode document: %w", err)
	}

	return s.parser.Parse(ctx, src, filename, override)
}

// ParseFile reads an exam PDF from disk and parses it.
func (s *Service) ParseFile(ctx context.Context, path string, override Format) (*ParseResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read file: %w", err)
	}

	return s.ParseDocument(ctx, data, filepath.Base(path), override)
}

// Detect exposes filename-based format detection without parsing.
func (s *Service) Detect(filename string) Detection {
	return DetectFormat(filename)
}

// MaxFileSize returns the configured upload size ceiling.
func (s *Service) MaxFileSize() int64 {
	return s.maxFileSize
}
