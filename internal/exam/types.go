// Package exam reconstructs multiple-choice questions from the raw text of
// standardized-test PDFs. Two incompatible document layouts are supported,
// "enhanced" and "classic", which differ in section headers, question counts
// and scoring-key table shape.
package exam

import (
	"context"
	"fmt"
)

// Format identifies a document layout variant.
type Format string

const (
	FormatEnhanced Format = "enhanced"
	FormatClassic  Format = "classic"

	// FormatUnstructured exists only as a detection stub. No detector ever
	// returns it and its strategy extracts nothing.
	FormatUnstructured Format = "unstructured"
)

// Subject identifies one of the modeled test sections.
type Subject string

const (
	SubjectEnglish Subject = "english"
	SubjectMath    Subject = "math"
	SubjectReading Subject = "reading"
)

// Subjects lists the modeled subjects in document order.
var Subjects = []Subject{SubjectEnglish, SubjectMath, SubjectReading}

// Question is one reconstructed multiple-choice question.
type Question struct {
	ID            string   `json:"id"` // "<section>-<number>", unique per section
	Number        int      `json:"number"`
	Prompt        string   `json:"prompt"`
	Choices       []string `json:"choices"`
	ChoiceLetters []string `json:"choiceLetters"` // parallel to Choices
	AnswerIndex   *int     `json:"answerIndex,omitempty"`
	PageNumber    *int     `json:"pageNumber,omitempty"`
	PassageID     string   `json:"passageId,omitempty"`
	Passage       string   `json:"passage,omitempty"`
}

// Section holds the reconstructed questions of one subject.
type Section struct {
	Subject       Subject          `json:"section"`
	Questions     []Question       `json:"questions"`
	StartPage     int              `json:"startPage,omitempty"`
	PageQuestions map[int][]string `json:"pageQuestions,omitempty"` // page -> question ids
}

// ParseResult is the uniform result shape returned by Parse. It is owned
// exclusively by the caller once returned; the pipeline keeps no reference.
type ParseResult struct {
	Sections []Section `json:"sections"`
	Format   Format    `json:"format"`
	Reason   string    `json:"reason"`
	Warnings []string  `json:"warnings,omitempty"`
}

// SectionPages maps each extracted subject to the page its lowest-numbered
// question is first detected on.
func (r *ParseResult) SectionPages() map[Subject]int {
	pages := make(map[Subject]int, len(r.Sections))
	for _, sec := range r.Sections {
		pages[sec.Subject] = sec.StartPage
	}
	return pages
}

// TotalQuestions counts questions across all sections.
func (r *ParseResult) TotalQuestions() int {
	n := 0
	for _, sec := range r.Sections {
		n += len(sec.Questions)
	}
	return n
}

// Detection is the outcome of filename-based format detection.
type Detection struct {
	Format     Format  `json:"format"`
	Confidence float64 `json:"confidence"` // 0..1
	Reason     string  `json:"reason"`
}

// TextSource is the page-text collaborator consumed by the pipeline. The
// pipeline treats it as opaque: page count plus ordered text fragments per
// page, concatenated with newline separators before analysis.
type TextSource interface {
	NumPages() int
	PageText(ctx context.Context, n int) ([]string, error)
}

// questionID builds the canonical question identifier.
func questionID(subject Subject, number int) string {
	return fmt.Sprintf("%s-%d", subject, number)
}
