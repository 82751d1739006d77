package exam

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// enhancedFixture is a minimal five-page enhanced booklet: three sections,
// a science section that is only used as an end anchor, and a scoring-key
// page at the back.
func enhancedFixture() *fakeSource {
	return &fakeSource{pages: []string{
		"Preparing for the ACT\npractice booklet cover",
		strings.Join([]string{
			"ENGLISH TEST",
			"35 Minutes—50 Questions",
			"1. Which choice best maintains the established tone? A. NO CHANGE B. a fancier word C. a plainer word D. OMIT the portion",
			"2. Should the writer keep the underlined sentence? F. Kept, it supports the claim G. Kept, it is vivid H. Deleted, it repeats J. Deleted, it contradicts",
		}, "\n"),
		strings.Join([]string{
			"MATHEMATICS TEST",
			"50 Minutes—45 Questions",
			"6. What is 2+2? A) 3 B) 4 C) 5 D) 6",
		}, "\n"),
		strings.Join([]string{
			"READING TEST",
			"40 Minutes—36 Questions",
			"1. What does the narrator most strongly imply? A. regret B. relief C. triumph D. doubt",
		}, "\n"),
		"SCIENCE TEST\n40 Minutes—40 Questions",
		strings.Join([]string{
			"English Scoring Key",
			"1", "A", "2", "G",
			"Mathematics Scoring Key",
			"6", "B",
			"Reading Scoring Key",
			"1", "D",
		}, "\n"),
	}}
}

func newTestParser(t *testing.T) *Parser {
	t.Helper()
	parser, err := NewParser(DefaultStripLists())
	require.NoError(t, err)
	return parser
}

func TestParseEnhancedDocument(t *testing.T) {
	parser := newTestParser(t)

	result, err := parser.Parse(context.Background(), enhancedFixture(), "Preparing_for_the_ACT.pdf", "")
	require.NoError(t, err)

	assert.Equal(t, FormatEnhanced, result.Format)
	require.Len(t, result.Sections, 3)
	assert.Equal(t, 4, result.TotalQuestions())

	english := result.Sections[0]
	require.Equal(t, SubjectEnglish, english.Subject)
	require.Len(t, english.Questions, 2)

	q1 := english.Questions[0]
	assert.Equal(t, "english-1", q1.ID)
	assert.Equal(t, []string{"A", "B", "C", "D"}, q1.ChoiceLetters)
	require.NotNil(t, q1.AnswerIndex)
	assert.Equal(t, 0, *q1.AnswerIndex)

	q2 := english.Questions[1]
	assert.Equal(t, []string{"F", "G", "H", "J"}, q2.ChoiceLetters)
	require.NotNil(t, q2.AnswerIndex)
	assert.Equal(t, 1, *q2.AnswerIndex) // key letter G

	math := result.Sections[1]
	require.Equal(t, SubjectMath, math.Subject)
	require.Len(t, math.Questions, 1)

	q6 := math.Questions[0]
	assert.Equal(t, "math-6", q6.ID)
	assert.Equal(t, []string{"3", "4", "5", "6"}, q6.Choices)
	assert.Equal(t, []string{"A", "B", "C", "D"}, q6.ChoiceLetters)
	require.NotNil(t, q6.AnswerIndex)
	assert.Equal(t, 1, *q6.AnswerIndex)

	reading := result.Sections[2]
	require.Equal(t, SubjectReading, reading.Subject)
	require.NotNil(t, reading.Questions[0].AnswerIndex)
	assert.Equal(t, 3, *reading.Questions[0].AnswerIndex)
}

func TestParseSectionPages(t *testing.T) {
	parser := newTestParser(t)

	result, err := parser.Parse(context.Background(), enhancedFixture(), "Preparing_for_the_ACT.pdf", "")
	require.NoError(t, err)

	pages := result.SectionPages()
	assert.Equal(t, 2, pages[SubjectEnglish])
	assert.Equal(t, 3, pages[SubjectMath])
	assert.Equal(t, 4, pages[SubjectReading])

	english := result.Sections[0]
	require.NotNil(t, english.Questions[0].PageNumber)
	assert.Equal(t, 2, *english.Questions[0].PageNumber)
	assert.Equal(t, []string{"english-1", "english-2"}, english.PageQuestions[2])
}

func TestParseIsDeterministic(t *testing.T) {
	parser := newTestParser(t)

	first, err := parser.Parse(context.Background(), enhancedFixture(), "Preparing_for_the_ACT.pdf", "")
	require.NoError(t, err)
	second, err := parser.Parse(context.Background(), enhancedFixture(), "Preparing_for_the_ACT.pdf", "")
	require.NoError(t, err)

	if !reflect.DeepEqual(first, second) {
		t.Error("parsing the same document twice must produce identical results")
	}
}

func TestParseInvariants(t *testing.T) {
	parser := newTestParser(t)

	result, err := parser.Parse(context.Background(), enhancedFixture(), "Preparing_for_the_ACT.pdf", "")
	require.NoError(t, err)

	for _, section := range result.Sections {
		seen := map[string]bool{}
		lastNumber := 0
		for _, q := range section.Questions {
			assert.Equal(t, len(q.Choices), len(q.ChoiceLetters), "%s choice lists must stay parallel", q.ID)
			assert.GreaterOrEqual(t, len(q.Choices), 2, "%s needs at least two choices", q.ID)
			assert.LessOrEqual(t, len(q.Choices), 4, "%s has too many choices", q.ID)
			assert.Greater(t, q.Number, lastNumber, "%s numbers must be strictly increasing", q.ID)
			lastNumber = q.Number

			assert.False(t, seen[q.ID], "duplicate id %s", q.ID)
			seen[q.ID] = true

			if q.AnswerIndex != nil {
				assert.GreaterOrEqual(t, *q.AnswerIndex, 0)
				assert.Less(t, *q.AnswerIndex, len(q.Choices))
			}
			require.NotNil(t, q.PageNumber, "%s must be assigned a page", q.ID)
		}
	}
}

func TestParsePrefersSourceCombinedText(t *testing.T) {
	parser := newTestParser(t)

	src := &combinedSource{fakeSource: *enhancedFixture()}
	result, err := parser.Parse(context.Background(), src, "Preparing_for_the_ACT.pdf", "")
	require.NoError(t, err)

	assert.Equal(t, 1, src.combinedCalls, "a source with its own whole-document read must serve it")

	plain, err := parser.Parse(context.Background(), enhancedFixture(), "Preparing_for_the_ACT.pdf", "")
	require.NoError(t, err)
	assert.Equal(t, plain, result)
}

func TestParseChoiceCountBounds(t *testing.T) {
	parser := newTestParser(t)

	// Question 2 sits mid-line where the candidate scan cannot see it, so
	// question 1's block swallows its markers; question 3 prints only one
	// choice. Neither may produce a question outside the 2-4 choice bounds.
	src := &fakeSource{pages: []string{
		strings.Join([]string{
			"ENGLISH TEST",
			"35 Minutes—50 Questions",
			"1. Which revision is most effective? A. alpha B. beta C. gamma D. delta 2. Should the writer keep the sentence? F. yes G. no H. maybe J. never",
			"3. Which placement is most logical? A. the only surviving option text",
		}, "\n"),
	}}

	result, err := parser.Parse(context.Background(), src, "Preparing_for_the_ACT.pdf", "")
	require.NoError(t, err)

	require.Len(t, result.Sections, 1)
	questions := result.Sections[0].Questions
	require.Len(t, questions, 1)

	q := questions[0]
	assert.Equal(t, "english-1", q.ID)
	assert.Len(t, q.Choices, 4)
	assert.Equal(t, []string{"A", "B", "C", "D"}, q.ChoiceLetters)
}

func TestParseFormatOverride(t *testing.T) {
	parser := newTestParser(t)

	// Force the classic strategy on an enhanced document: its anchors never
	// match, so every section comes back empty and the reason names the
	// user's choice plus the retry hint.
	result, err := parser.Parse(context.Background(), enhancedFixture(), "Preparing_for_the_ACT.pdf", FormatClassic)
	require.NoError(t, err)

	assert.Equal(t, FormatClassic, result.Format)
	assert.Empty(t, result.Sections)
	assert.Contains(t, result.Reason, "user selected the classic format")
	assert.Contains(t, result.Reason, "retry with the other format variant")
}

func TestParseUnknownOverrideRejected(t *testing.T) {
	parser := newTestParser(t)

	_, err := parser.Parse(context.Background(), enhancedFixture(), "exam.pdf", Format("fancy"))
	require.Error(t, err)
}

func TestParseUnstructuredStubExtractsNothing(t *testing.T) {
	parser := newTestParser(t)

	result, err := parser.Parse(context.Background(), enhancedFixture(), "exam.pdf", FormatUnstructured)
	require.NoError(t, err)
	assert.Empty(t, result.Sections)
}

func TestParseMissingSectionDoesNotBlockSiblings(t *testing.T) {
	parser := newTestParser(t)

	// Document with a math section only.
	src := &fakeSource{pages: []string{
		"MATHEMATICS TEST\n50 Minutes—45 Questions\n6. What is 2+2? A) 3 B) 4 C) 5 D) 6",
	}}

	result, err := parser.Parse(context.Background(), src, "Preparing_for_the_ACT.pdf", "")
	require.NoError(t, err)

	require.Len(t, result.Sections, 1)
	assert.Equal(t, SubjectMath, result.Sections[0].Subject)
}

func TestParseMissingAnswerKeyLeavesAnswersUnset(t *testing.T) {
	parser := newTestParser(t)

	src := &fakeSource{pages: []string{
		"MATHEMATICS TEST\n50 Minutes—45 Questions\n6. What is 2+2? A) 3 B) 4 C) 5 D) 6",
	}}

	result, err := parser.Parse(context.Background(), src, "Preparing_for_the_ACT.pdf", "")
	require.NoError(t, err)

	require.Len(t, result.Sections, 1)
	assert.Nil(t, result.Sections[0].Questions[0].AnswerIndex)

	found := false
	for _, warning := range result.Warnings {
		if strings.Contains(warning, "scoring key not found") {
			found = true
		}
	}
	assert.True(t, found, "missing key must be reported as a warning: %v", result.Warnings)
}

func TestParseUnmappableAnswerLetterStaysUnset(t *testing.T) {
	parser := newTestParser(t)

	// The key says D but the question only printed two choices; the answer
	// must stay absent rather than silently becoming choice 0.
	src := &fakeSource{pages: []string{
		strings.Join([]string{
			"ENGLISH TEST",
			"35 Minutes—50 Questions",
			"1. Which option fits the sentence best? A. the first B. the second",
			"English Scoring Key",
			"1", "D",
		}, "\n"),
	}}

	result, err := parser.Parse(context.Background(), src, "Preparing_for_the_ACT.pdf", "")
	require.NoError(t, err)

	require.Len(t, result.Sections, 1)
	q := result.Sections[0].Questions[0]
	assert.Nil(t, q.AnswerIndex)

	found := false
	for _, warning := range result.Warnings {
		if strings.Contains(warning, "answer letter") {
			found = true
		}
	}
	assert.True(t, found, "unmappable letter must be reported: %v", result.Warnings)
}
