// Package pagetext exposes a PDF document as ordered per-page text fragments.
//
// It is the only package that touches the PDF libraries. The rest of the
// pipeline consumes it through the exam.TextSource interface and makes no
// assumption about fragment boundaries beyond "concatenation in order
// reproduces reading order".
package pagetext

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

const (
	// DefaultMaxTextSize caps the text extracted per document.
	DefaultMaxTextSize = 10 * 1024 * 1024

	// lineTolerance is the max vertical distance (points) between two text
	// runs still considered part of the same line fragment.
	lineTolerance = 2.0
)

// Options configures a Source. The zero value gets sensible limits. All
// decoder configuration is scoped to the Source instance; nothing here is a
// process-wide side effect.
type Options struct {
	MaxFileSize int64 // reject documents larger than this (0 = unlimited)
	MaxTextSize int   // cap on total extracted text (0 = DefaultMaxTextSize)
}

// Source reads per-page text fragments from an in-memory PDF document.
type Source struct {
	reader      *pdf.Reader
	numPages    int
	maxTextSize int
}

// NewSource decodes the document bytes and validates them with pdfcpu before
// any text extraction happens. A decode failure here is fatal for the whole
// parse attempt.
func NewSource(data []byte, opts Options) (*Source, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("document is empty")
	}
	if opts.MaxFileSize > 0 && int64(len(data)) > opts.MaxFileSize {
		return nil, fmt.Errorf("document too large: %d bytes (max: %d bytes)", len(data), opts.MaxFileSize)
	}

	// pdfcpu gives a stricter structural check than ledongthuc/pdf; run it
	// first so corrupt uploads fail with a decode error instead of producing
	// garbage text downstream.
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	pdfcpuCtx, err := api.ReadContext(bytes.NewReader(data), conf)
	if err != nil {
		return nil, fmt.Errorf("failed to decode PDF: %w", err)
	}
	if err := pdfcpuCtx.EnsurePageCount(); err != nil {
		return nil, fmt.Errorf("failed to determine page count: %w", err)
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("failed to open PDF: %w", err)
	}

	maxText := opts.MaxTextSize
	if maxText <= 0 {
		maxText = DefaultMaxTextSize
	}

	return &Source{
		reader:      reader,
		numPages:    reader.NumPage(),
		maxTextSize: maxText,
	}, nil
}

// NewSourceFromFile reads a PDF from disk and wraps it in a Source.
func NewSourceFromFile(path string, opts Options) (*Source, error) {
	if path == "" {
		return nil, fmt.Errorf("path cannot be empty")
	}
	if !strings.HasSuffix(strings.ToLower(path), ".pdf") {
		return nil, fmt.Errorf("file is not a PDF: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read file: %w", err)
	}

	return NewSource(data, opts)
}

// NumPages returns the page count of the document.
func (s *Source) NumPages() int {
	return s.numPages
}

// PageText returns the ordered text fragments of page n (1-based). Fragments
// are text runs grouped into lines by vertical position; callers join them
// with newlines before analysis. A page that fails to extract yields no
// fragments rather than an error, matching how partially damaged scans
// behave in practice.
func (s *Source) PageText(ctx context.Context, n int) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if n < 1 || n > s.numPages {
		return nil, fmt.Errorf("invalid page number %d (document has %d pages)", n, s.numPages)
	}

	fragments := s.extractPageFragments(n)
	return fragments, nil
}

// CombinedText reads every page in order and joins all fragments with
// newline separators. Later pipeline stages need the whole document at once.
func (s *Source) CombinedText(ctx context.Context) (string, error) {
	var builder strings.Builder
	total := 0

	for n := 1; n <= s.numPages; n++ {
		fragments, err := s.PageText(ctx, n)
		if err != nil {
			return "", err
		}
		for _, frag := range fragments {
			if total+len(frag)+1 > s.maxTextSize {
				return builder.String(), nil
			}
			builder.WriteString(frag)
			builder.WriteByte('\n')
			total += len(frag) + 1
		}
	}

	return builder.String(), nil
}

// extractPageFragments pulls the text runs of one page and folds them into
// line fragments.
func (s *Source) extractPageFragments(n int) (fragments []string) {
	defer func() {
		// ledongthuc/pdf panics on some malformed content streams
		if recover() != nil {
			fragments = s.plainTextFallback(n)
		}
	}()

	page := s.reader.Page(n)
	if page.V.IsNull() {
		return nil
	}

	content := page.Content()
	if len(content.Text) == 0 {
		return s.plainTextFallback(n)
	}

	var (
		line  strings.Builder
		lastY = math.NaN()
	)
	flush := func() {
		if text := strings.TrimSpace(line.String()); text != "" {
			fragments = append(fragments, text)
		}
		line.Reset()
	}

	for _, run := range content.Text {
		if !math.IsNaN(lastY) && math.Abs(run.Y-lastY) > lineTolerance {
			flush()
		}
		line.WriteString(run.S)
		lastY = run.Y
	}
	flush()

	return fragments
}

// plainTextFallback extracts a page as one unstructured fragment when run
// level extraction is unavailable.
func (s *Source) plainTextFallback(n int) []string {
	defer func() {
		_ = recover()
	}()

	page := s.reader.Page(n)
	if page.V.IsNull() {
		return nil
	}

	text, err := page.GetPlainText(nil)
	if err != nil {
		return nil
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}
