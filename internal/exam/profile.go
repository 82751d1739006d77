package exam

import (
	"fmt"
	"regexp"
)

// sectionProfile carries the per-(format, section) parameters the shared
// pipeline is driven by: boundary anchors, the valid question-number range,
// the choice-letter alphabet and the scoring-key heading dialect.
//
// The minute/question counts inside the anchors are load-bearing: they are
// what distinguishes the two layouts, so a profile only matches documents of
// its own format.
type sectionProfile struct {
	subject Subject

	start *regexp.Regexp // section start anchor
	end   *regexp.Regexp // section end anchor; nil means end of text

	maxQuestion int    // valid question numbers are [1, maxQuestion]
	letterClass string // regexp character class of the choice alphabet
	letters     []string

	// fixedChoiceCount pads or rejects choice lists to an exact length.
	// Math sections always print four choices; 0 disables the constraint.
	fixedChoiceCount int

	keyHeading *regexp.Regexp // scoring-key table heading for this section
}

// formatProfile groups the section profiles of one layout variant.
type formatProfile struct {
	format   Format
	sections []sectionProfile
}

// choiceLookahead is the window after a candidate question number within
// which a choice-letter marker must appear for the candidate to validate.
const choiceLookahead = 500

var (
	lettersEnglishReading = []string{"A", "B", "C", "D", "F", "G", "H", "J"}
	lettersClassicMath    = []string{"A", "B", "C", "D", "F", "G", "H", "J", "K"}
)

// anchor compiles a header anchor tolerant of the dash and whitespace
// variance PDF text extraction produces.
func anchor(pattern string) *regexp.Regexp {
	return regexp.MustCompile(`(?is)` + pattern)
}

var enhancedProfile = formatProfile{
	format: FormatEnhanced,
	sections: []sectionProfile{
		{
			subject:     SubjectEnglish,
			start:       anchor(`ENGLISH\s+TEST\s+35\s+Minutes\s*[—–-]+\s*50\s+Questions`),
			end:         anchor(`MATHEMATICS\s+TEST\s+50\s+Minutes\s*[—–-]+\s*45\s+Questions`),
			maxQuestion: 50,
			letterClass: `A-DF-HJ`,
			letters:     lettersEnglishReading,
			keyHeading:  anchor(`English\s+Scoring\s+Key`),
		},
		{
			subject:          SubjectMath,
			start:            anchor(`MATHEMATICS\s+TEST\s+50\s+Minutes\s*[—–-]+\s*45\s+Questions`),
			end:              anchor(`READING\s+TEST\s+40\s+Minutes\s*[—–-]+\s*36\s+Questions`),
			maxQuestion:      45,
			letterClass:      `A-DF-HJ`,
			letters:          lettersEnglishReading,
			fixedChoiceCount: 4,
			keyHeading:       anchor(`Mathematics\s+Scoring\s+Key`),
		},
		{
			subject:     SubjectReading,
			start:       anchor(`READING\s+TEST\s+40\s+Minutes\s*[—–-]+\s*36\s+Questions`),
			end:         anchor(`SCIENCE\s+TEST`),
			maxQuestion: 36,
			letterClass: `A-DF-HJ`,
			letters:     lettersEnglishReading,
			keyHeading:  anchor(`Reading\s+Scoring\s+Key`),
		},
	},
}

var classicProfile = formatProfile{
	format: FormatClassic,
	sections: []sectionProfile{
		{
			subject:     SubjectEnglish,
			start:       anchor(`ENGLISH\s+TEST\s+45\s+Minutes\s*[—–-]+\s*75\s+Questions`),
			end:         anchor(`MATHEMATICS\s+TEST\s+60\s+Minutes\s*[—–-]+\s*60\s+Questions`),
			maxQuestion: 75,
			letterClass: `A-DF-HJ`,
			letters:     lettersEnglishReading,
			keyHeading:  anchor(`Test\s+1\s*:\s*English\s*[—–-]+\s*Scoring\s+Key`),
		},
		{
			subject:          SubjectMath,
			start:            anchor(`MATHEMATICS\s+TEST\s+60\s+Minutes\s*[—–-]+\s*60\s+Questions`),
			end:              anchor(`READING\s+TEST\s+35\s+Minutes\s*[—–-]+\s*40\s+Questions`),
			maxQuestion:      60,
			letterClass:      `A-DF-HJK`,
			letters:          lettersClassicMath,
			fixedChoiceCount: 4,
			keyHeading:       anchor(`Test\s+2\s*:\s*Mathematics\s*[—–-]+\s*Scoring\s+Key`),
		},
		{
			subject:     SubjectReading,
			start:       anchor(`READING\s+TEST\s+35\s+Minutes\s*[—–-]+\s*40\s+Questions`),
			end:         anchor(`SCIENCE\s+TEST`),
			maxQuestion: 40,
			letterClass: `A-DF-HJ`,
			letters:     lettersEnglishReading,
			keyHeading:  anchor(`Test\s+3\s*:\s*Reading\s*[—–-]+\s*Scoring\s+Key`),
		},
	},
}

// unstructuredProfile is the detection stub for documents that fit neither
// layout. It has no section anchors and therefore extracts nothing.
var unstructuredProfile = formatProfile{
	format: FormatUnstructured,
}

// profileFor returns the profile of a format variant.
func profileFor(format Format) (formatProfile, error) {
	switch format {
	case FormatEnhanced:
		return enhancedProfile, nil
	case FormatClassic:
		return classicProfile, nil
	case FormatUnstructured:
		return unstructuredProfile, nil
	default:
		return formatProfile{}, fmt.Errorf("unknown format variant: %q", format)
	}
}

// choiceMarker compiles the answer-choice marker pattern for an alphabet,
// e.g. "A." or "G)" at a word boundary. Markers inside parenthesized
// content still match here; the depth counter in splitChoices decides
// whether they terminate a choice.
func (p sectionProfile) choiceMarker() *regexp.Regexp {
	return regexp.MustCompile(`\b([` + p.letterClass + `])[.)]\s`)
}

// letterIndex maps an answer letter onto a choice index for a question. The
// question's own choice letters win; when those are missing (padded Math
// blocks) the alphabet position modulo the printed choice count is used, so
// F/G/H/J line up with the 0-3 slots of even-numbered questions.
func (p sectionProfile) letterIndex(letter string, q Question) (int, bool) {
	for i, l := range q.ChoiceLetters {
		if l == letter {
			return i, true
		}
	}

	// Alphabets alternate in halves of four: A-D for odd questions, F-J(K)
	// for even ones, both mapping onto slots 0-3(4).
	for i, l := range p.letters {
		if l != letter {
			continue
		}
		idx := i
		if idx >= 4 {
			idx -= 4
		}
		if idx < len(q.Choices) {
			return idx, true
		}
		return 0, false
	}

	return 0, false
}
