// Package store persists parsed exam records. It is the collaborator the
// pipeline hands finished sections to; the pipeline itself keeps no
// reference to a result after returning it.
package store

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/prepstack/examparse/internal/exam"
)

const (
	recordExt = ".json"
	dirPerm   = 0o750
	filePerm  = 0o640
)

// ExamRecord is the persisted shape of one parsed exam document.
type ExamRecord struct {
	Name          string                            `json:"name"`
	Format        exam.Format                       `json:"format"`
	Reason        string                            `json:"reason"`
	Sections      map[exam.Subject][]exam.Question  `json:"sections"`
	PDFData       string                            `json:"pdfData,omitempty"` // base64
	SectionPages  map[exam.Subject]int              `json:"sectionPages"`
	PageQuestions map[exam.Subject]map[int][]string `json:"pageQuestions"`
	Warnings      []string                          `json:"warnings,omitempty"`
}

// NewRecord assembles an ExamRecord from a parse result and the original
// document bytes.
func NewRecord(name string, result *exam.ParseResult, pdfData []byte) ExamRecord {
	record := ExamRecord{
		Name:          name,
		Format:        result.Format,
		Reason:        result.Reason,
		Sections:      make(map[exam.Subject][]exam.Question, len(result.Sections)),
		SectionPages:  make(map[exam.Subject]int, len(result.Sections)),
		PageQuestions: make(map[exam.Subject]map[int][]string, len(result.Sections)),
		Warnings:      result.Warnings,
	}

	if len(pdfData) > 0 {
		record.PDFData = base64.StdEncoding.EncodeToString(pdfData)
	}

	for _, section := range result.Sections {
		record.Sections[section.Subject] = section.Questions
		record.SectionPages[section.Subject] = section.StartPage
		record.PageQuestions[section.Subject] = section.PageQuestions
	}

	return record
}

// PDFBytes decodes the embedded document back to raw bytes.
func (r *ExamRecord) PDFBytes() ([]byte, error) {
	if r.PDFData == "" {
		return nil, nil
	}
	data, err := base64.StdEncoding.DecodeString(r.PDFData)
	if err != nil {
		return nil, fmt.Errorf("corrupt pdfData for record %s: %w", r.Name, err)
	}
	return data, nil
}

// FileStore writes exam records as JSON files under one directory.
type FileStore struct {
	dir string
}

// NewFileStore creates the backing directory if needed.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("store directory cannot be empty")
	}
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return nil, fmt.Errorf("cannot create store directory %s: %w", dir, err)
	}
	return &FileStore{dir: dir}, nil
}

// Save writes or replaces a record.
func (s *FileStore) Save(record ExamRecord) error {
	if record.Name == "" {
		return fmt.Errorf("record name cannot be empty")
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("cannot encode record %s: %w", record.Name, err)
	}

	path := s.recordPath(record.Name)
	if err := os.WriteFile(path, data, filePerm); err != nil {
		return fmt.Errorf("cannot write record %s: %w", record.Name, err)
	}
	return nil
}

// Load reads one record by name.
func (s *FileStore) Load(name string) (*ExamRecord, error) {
	data, err := os.ReadFile(s.recordPath(name))
	if err != nil {
		return nil, fmt.Errorf("cannot read record %s: %w", name, err)
	}

	var record ExamRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("cannot decode record %s: %w", name, err)
	}
	return &record, nil
}

// List returns the names of all stored records, sorted.
func (s *FileStore) List() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("cannot list store directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), recordExt) {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), recordExt))
	}
	sort.Strings(names)
	return names, nil
}

// Dir returns the backing directory.
func (s *FileStore) Dir() string {
	return s.dir
}

// recordPath sanitizes the record name into a flat filename.
func (s *FileStore) recordPath(name string) string {
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-', r == '_', r == '.':
			return r
		default:
			return '_'
		}
	}, name)
	return filepath.Join(s.dir, safe+recordExt)
}
