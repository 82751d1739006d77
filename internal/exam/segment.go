package exam

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// candidatePattern finds potential question starts: line start, a 1-2 digit
// number, a period, whitespace. Page numbers and answer counts match this
// too, which is why every candidate must be cross-validated against a
// nearby choice marker before it is trusted.
var candidatePattern = regexp.MustCompile(`(?m)^[ \t]*([1-9]\d?)\.[ \t\n]`)

// minPromptLength rejects blocks whose trimmed prompt is too short to be a
// real question.
const minPromptLength = 10

// questionBlock is one segmented question before choice extraction.
type questionBlock struct {
	number       int
	prompt       string
	choiceRegion string
}

// validatedNumbers scans text for question-number candidates and keeps only
// those with an answer-choice-letter marker within the lookahead window.
// It returns the first validated position of each number, bounded by the
// section's valid range.
func (p sectionProfile) validatedNumbers(text string) map[int]int {
	marker := p.choiceMarker()
	positions := make(map[int]int)

	for _, loc := range candidatePattern.FindAllStringSubmatchIndex(text, -1) {
		number, err := strconv.Atoi(text[loc[2]:loc[3]])
		if err != nil || number < 1 || number > p.maxQuestion {
			continue
		}
		if _, seen := positions[number]; seen {
			continue
		}

		windowEnd := loc[1] + choiceLookahead
		if windowEnd > len(text) {
			windowEnd = len(text)
		}
		if !marker.MatchString(text[loc[1]:windowEnd]) {
			continue
		}

		positions[number] = loc[0]
	}

	return positions
}

// segmentQuestions strips boilerplate from one section's raw text, finds
// validated question boundaries and slices the text into per-question
// blocks, each split into a prompt fragment and a choice region.
func (p sectionProfile) segmentQuestions(text string, strip *stripper) []questionBlock {
	cleaned := strip.clean(text)

	positions := p.validatedNumbers(cleaned)
	if len(positions) == 0 {
		return nil
	}

	numbers := make([]int, 0, len(positions))
	for number := range positions {
		numbers = append(numbers, number)
	}
	sort.Ints(numbers)

	marker := p.choiceMarker()
	blocks := make([]questionBlock, 0, len(numbers))

	for i, number := range numbers {
		start := positions[number]
		end := len(cleaned)
		if i+1 < len(numbers) {
			if next := positions[numbers[i+1]]; next > start {
				end = next
			}
		}
		raw := cleaned[start:end]

		if strip.shouldDiscard(raw) {
			continue
		}

		// Drop the "N." marker itself before splitting.
		body := raw
		if m := candidatePattern.FindStringIndex(raw); m != nil && m[0] == 0 {
			body = raw[m[1]:]
		}

		// The first choice-letter marker divides prompt from choices.
		markerLoc := marker.FindStringSubmatchIndex(body)
		if markerLoc == nil {
			continue
		}
		choiceStart := markerLoc[2] // start of the letter group

		prompt := normalizeSpace(body[:choiceStart])
		if len(prompt) < minPromptLength {
			continue
		}

		blocks = append(blocks, questionBlock{
			number:       number,
			prompt:       prompt,
			choiceRegion: body[choiceStart:],
		})
	}

	return blocks
}

// normalizeSpace collapses all whitespace runs to single spaces and trims.
func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
