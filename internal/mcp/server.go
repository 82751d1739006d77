package mcp

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/prepstack/examparse/internal/config"
	"github.com/prepstack/examparse/internal/exam"
	"github.com/prepstack/examparse/internal/pagetext"
	"github.com/prepstack/examparse/internal/store"
)

// Server exposes the exam extraction pipeline as MCP tools over stdio.
type Server struct {
	config      *config.Config
	examService *exam.Service
	examStore   *store.FileStore
	mcpServer   *server.MCPServer
}

// NewServer creates a new MCP server instance
func NewServer(cfg *config.Config, examService *exam.Service, examStore *store.FileStore) (*Server, error) {
	if examService == nil {
		return nil, fmt.Errorf("examService cannot be nil")
	}

	mcpServer := server.NewMCPServer(
		cfg.ServerName,
		cfg.Version,
		server.WithToolCapabilities(false), // tool set is static
	)

	s := &Server{
		config:      cfg,
		examService: examService,
		examStore:   examStore,
		mcpServer:   mcpServer,
	}

	s.registerTools()

	return s, nil
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	parseTool := mcp.NewTool(
		"exam_parse_file",
		mcp.WithDescription("Extract multiple-choice questions, answer keys and page mapping from an exam PDF"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Full path to the exam PDF file"),
		),
		mcp.WithString("format",
			mcp.Description("Force a format variant: 'enhanced' or 'classic' (default: auto-detect from filename)"),
		),
		mcp.WithBoolean("save",
			mcp.Description("Persist the parsed exam as a record in the configured store"),
		),
	)
	s.mcpServer.AddTool(parseTool, s.handleParseFile)

	detectTool := mcp.NewTool(
		"exam_detect_format",
		mcp.WithDescription("Detect the layout variant of an exam PDF from its filename"),
		mcp.WithString("filename",
			mcp.Required(),
			mcp.Description("Filename of the exam PDF"),
		),
	)
	s.mcpServer.AddTool(detectTool, s.handleDetectFormat)

	validateTool := mcp.NewTool(
		"exam_validate_file",
		mcp.WithDescription("Check that a file decodes as a PDF and report its page count"),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Full path to the PDF file"),
		),
	)
	s.mcpServer.AddTool(validateTool, s.handleValidateFile)

	listTool := mcp.NewTool(
		"exam_list_records",
		mcp.WithDescription("List parsed exam records in the configured store"),
	)
	s.mcpServer.AddTool(listTool, s.handleListRecords)

	infoTool := mcp.NewTool(
		"exam_server_info",
		mcp.WithDescription("Get server information, available tools and usage guidance"),
	)
	s.mcpServer.AddTool(infoTool, s.handleServerInfo)
}

// Handler functions

func (s *Server) handleParseFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	args := request.GetArguments()

	var override exam.Format
	if f, ok := args["format"].(string); ok && f != "" {
		switch f {
		case string(exam.FormatEnhanced), string(exam.FormatClassic):
			override = exam.Format(f)
		default:
			return mcp.NewToolResultError(fmt.Sprintf("invalid format %q (must be 'enhanced' or 'classic')", f)), nil
		}
	}

	result, err := s.examService.ParseFile(ctx, path, override)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if save, ok := args["save"].(bool); ok && save && s.examStore != nil {
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		record := store.NewRecord(name, result, nil)
		if err := s.examStore.Save(record); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("parse succeeded but saving failed: %v", err)), nil
		}
	}

	return mcp.NewToolResultText(s.formatParseResult(path, result)), nil
}

func (s *Server) handleDetectFormat(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	filename, err := request.RequireString("filename")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	detection := s.examService.Detect(filename)

	responseText := fmt.Sprintf("Detected format: %s\n", detection.Format)
	responseText += fmt.Sprintf("Confidence: %.1f\n", detection.Confidence)
	responseText += fmt.Sprintf("Reason: %s\n", detection.Reason)

	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handleValidateFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	src, err := pagetext.NewSourceFromFile(path, pagetext.Options{MaxFileSize: s.examService.MaxFileSize()})
	if err != nil {
		return mcp.NewToolResultText(fmt.Sprintf("PDF validation failed for %s: %v", path, err)), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("PDF file %s is valid and readable (%d pages)", path, src.NumPages())), nil
}

func (s *Server) handleListRecords(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.examStore == nil {
		return mcp.NewToolResultError("no exam store configured"), nil
	}

	names, err := s.examStore.List()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if len(names) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No exam records in %s", s.examStore.Dir())), nil
	}

	responseText := fmt.Sprintf("Found %d exam record(s) in %s:\n", len(names), s.examStore.Dir())
	for i, name := range names {
		responseText += fmt.Sprintf("%d. %s\n", i+1, name)
	}

	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handleServerInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	responseText := fmt.Sprintf("%s v%s\n", s.config.ServerName, s.config.Version)
	responseText += fmt.Sprintf("Exam directory: %s\n", s.config.ExamDirectory)
	responseText += fmt.Sprintf("Max file size: %d bytes\n", s.examService.MaxFileSize())
	if s.examStore != nil {
		responseText += fmt.Sprintf("Record store: %s\n", s.examStore.Dir())
	}

	responseText += "\nAvailable tools:\n"
	responseText += "  exam_parse_file    - extract questions, answer keys and page mapping from an exam PDF\n"
	responseText += "  exam_detect_format - detect the layout variant from a filename\n"
	responseText += "  exam_validate_file - check that a file decodes as a PDF\n"
	responseText += "  exam_list_records  - list parsed exam records\n"
	responseText += "  exam_server_info   - this information\n"

	responseText += "\nSupported formats: enhanced (practice booklet), classic (released forms 2005-2021)\n"
	responseText += "Pass format='enhanced' or format='classic' to exam_parse_file to override detection.\n"

	return mcp.NewToolResultText(responseText), nil
}

// formatParseResult renders a parse result for tool output.
func (s *Server) formatParseResult(path string, result *exam.ParseResult) string {
	text := fmt.Sprintf("Parsed exam: %s\n", path)
	text += fmt.Sprintf("Format: %s\n", result.Format)
	text += fmt.Sprintf("Reason: %s\n", result.Reason)
	text += fmt.Sprintf("Total questions: %d\n", result.TotalQuestions())

	for _, section := range result.Sections {
		text += fmt.Sprintf("\nSection %s: %d questions (starts on page %d)\n",
			section.Subject, len(section.Questions), section.StartPage)

		answered := 0
		for _, q := range section.Questions {
			if q.AnswerIndex != nil {
				answered++
			}
		}
		text += fmt.Sprintf("  Answer key entries: %d/%d\n", answered, len(section.Questions))
	}

	if len(result.Warnings) > 0 {
		text += "\nWarnings:\n"
		for _, warning := range result.Warnings {
			text += fmt.Sprintf("  - %s\n", warning)
		}
	}

	return text
}

// Run starts the MCP server over stdio. The parent process controls the
// lifecycle in this mode.
func (s *Server) Run(ctx context.Context) error {
	if s.config.IsDebug() {
		log.Printf("Starting examparse MCP server in stdio mode")
		log.Printf("Exam directory: %s", s.config.ExamDirectory)
	}

	if err := server.ServeStdio(s.mcpServer); err != nil {
		return fmt.Errorf("failed to serve stdio: %w", err)
	}
	return nil
}
