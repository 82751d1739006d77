package exam

import (
	"regexp"
	"strconv"
	"strings"
)

// scoringKeyPattern bounds a key region at the next scoring-key heading.
var scoringKeyPattern = regexp.MustCompile(`(?i)Scoring\s+Key`)

// answerKeyStrategy is one independent extraction pass over a scoring-key
// region. Strategies run in a fixed order and are merged with a "first
// non-empty entry per question wins" rule: a later strategy only fills
// mappings an earlier one missed.
//
// Three passes exist because the page-text extraction order of multi-column
// scoring tables is not guaranteed to preserve reading order, and the
// physical table layout differs between the two document formats.
type answerKeyStrategy struct {
	name string
	scan func(region string, p sectionProfile) map[int]string
}

var answerKeyStrategies = []answerKeyStrategy{
	{name: "line-pair", scan: linePairScan},
	{name: "row-token", scan: rowTokenScan},
	{name: "concatenated-token", scan: concatenatedTokenScan},
}

// extractAnswerKey locates this section's scoring-key table in the full
// document text and produces a question-number to answer-letter mapping.
// A missing table is non-fatal: questions are simply returned without an
// answer index.
func (p sectionProfile) extractAnswerKey(fullText string) map[int]string {
	if p.keyHeading == nil {
		return nil
	}

	loc := p.keyHeading.FindStringIndex(fullText)
	if loc == nil {
		return nil
	}

	region := fullText[loc[1]:]
	if next := scoringKeyPattern.FindStringIndex(region); next != nil {
		region = region[:next[0]]
	}

	merged := make(map[int]string)
	for _, strategy := range answerKeyStrategies {
		for number, letter := range strategy.scan(region, p) {
			if _, ok := merged[number]; !ok {
				merged[number] = letter
			}
		}
	}

	if len(merged) == 0 {
		return nil
	}
	return merged
}

// linePairScan accepts a line holding only a 1-2 digit number immediately
// followed by a line holding only a valid answer letter.
func linePairScan(region string, p sectionProfile) map[int]string {
	numberLine := regexp.MustCompile(`^\d{1,2}$`)
	letterLine := regexp.MustCompile(`^[` + p.letterClass + `]$`)

	lines := strings.Split(region, "\n")
	found := make(map[int]string)

	for i := 0; i+1 < len(lines); i++ {
		current := strings.TrimSpace(lines[i])
		next := strings.TrimSpace(lines[i+1])

		if !numberLine.MatchString(current) || !letterLine.MatchString(next) {
			continue
		}

		number, err := strconv.Atoi(current)
		if err != nil || number < 1 || number > p.maxQuestion {
			continue
		}
		if _, ok := found[number]; !ok {
			found[number] = next
		}
	}

	return found
}

// rowTokenScan accepts the first space-separated token of the form
// "<number>.<letter>" on each table row.
func rowTokenScan(region string, p sectionProfile) map[int]string {
	rowToken := regexp.MustCompile(`^(\d{1,2})\.([` + p.letterClass + `])$`)

	found := make(map[int]string)
	for _, line := range strings.Split(region, "\n") {
		for _, token := range strings.Fields(line) {
			m := rowToken.FindStringSubmatch(token)
			if m == nil {
				continue
			}
			number, err := strconv.Atoi(m[1])
			if err != nil || number < 1 || number > p.maxQuestion {
				continue
			}
			if _, ok := found[number]; !ok {
				found[number] = m[2]
			}
			break // only the first matching token per row
		}
	}

	return found
}

// concatenatedTokenScan is the last resort for layouts where the text
// extractor collapsed whitespace entirely, leaving bare "14A" tokens.
func concatenatedTokenScan(region string, p sectionProfile) map[int]string {
	concatToken := regexp.MustCompile(`^(\d{1,2})([` + p.letterClass + `])$`)

	found := make(map[int]string)
	for _, token := range strings.Fields(region) {
		m := concatToken.FindStringSubmatch(token)
		if m == nil {
			continue
		}
		number, err := strconv.Atoi(m[1])
		if err != nil || number < 1 || number > p.maxQuestion {
			continue
		}
		if _, ok := found[number]; !ok {
			found[number] = m[2]
		}
	}

	return found
}
