package exam

import (
	"context"
	"fmt"
	"strings"
)

// Parser runs the extraction pipeline for one document at a time. It holds
// only the compiled strip lists; all per-document state is created fresh per
// Parse call, so a single Parser is safe to reuse across documents.
type Parser struct {
	strip *stripper
}

// NewParser builds a parser from a boilerplate strip-list configuration.
func NewParser(lists StripLists) (*Parser, error) {
	strip, err := newStripper(lists)
	if err != nil {
		return nil, err
	}
	return &Parser{strip: strip}, nil
}

// Parse reconstructs all three subjects from the document. When override is
// empty the format is chosen by filename detection; otherwise the matching
// strategy runs unconditionally. Failure or emptiness in one subject never
// blocks the others.
func (p *Parser) Parse(ctx context.Context, src TextSource, filename string, override Format) (*ParseResult, error) {
	var (
		format Format
		reason string
	)
	if override != "" {
		if _, err := profileFor(override); err != nil {
			return nil, err
		}
		format = override
		reason = fmt.Sprintf("user selected the %s format", override)
	} else {
		detection := DetectFormat(filename)
		format = detection.Format
		reason = detection.Reason
	}

	profile, err := profileFor(format)
	if err != nil {
		return nil, err
	}

	combined, err := p.combinedText(ctx, src)
	if err != nil {
		return nil, fmt.Errorf("failed to read document text: %w", err)
	}

	result := &ParseResult{
		Sections: []Section{},
		Format:   format,
		Reason:   reason,
	}

	for _, sp := range profile.sections {
		section, warnings, err := p.parseSection(ctx, src, sp, combined)
		if err != nil {
			return nil, err
		}
		result.Warnings = append(result.Warnings, warnings...)
		if len(section.Questions) == 0 {
			continue
		}
		result.Sections = append(result.Sections, section)
	}

	if result.TotalQuestions() == 0 {
		result.Reason += "; no questions could be extracted, retry with the other format variant"
	}

	return result, nil
}

// parseSection runs slicing, segmentation, choice extraction, answer-key
// merging and page mapping for one subject.
func (p *Parser) parseSection(
	ctx context.Context,
	src TextSource,
	sp sectionProfile,
	combined string,
) (Section, []string, error) {
	section := Section{Subject: sp.subject, Questions: []Question{}}
	var warnings []string

	if sp.start == nil {
		return section, nil, nil
	}

	sectionText, ok := sliceSection(combined, sp.start, sp.end)
	if !ok {
		warnings = append(warnings, fmt.Sprintf("%s: section anchor not found", sp.subject))
		return section, warnings, nil
	}

	for _, block := range sp.segmentQuestions(sectionText, p.strip) {
		letters, texts := sp.splitChoices(block.choiceRegion)
		if len(texts) == 0 {
			continue
		}
		section.Questions = append(section.Questions, Question{
			ID:            questionID(sp.subject, block.number),
			Number:        block.number,
			Prompt:        block.prompt,
			Choices:       texts,
			ChoiceLetters: letters,
		})
	}

	if len(section.Questions) == 0 {
		return section, warnings, nil
	}

	// Merge the scoring key into the freshly built questions.
	if key := sp.extractAnswerKey(combined); key != nil {
		for i := range section.Questions {
			q := &section.Questions[i]
			letter, ok := key[q.Number]
			if !ok {
				continue
			}
			idx, ok := sp.letterIndex(letter, *q)
			if !ok {
				// An unknown letter stays unset instead of silently
				// becoming choice 0.
				warnings = append(warnings,
					fmt.Sprintf("%s: unrecognized answer letter %q for question %d, leaving answer unset",
						sp.subject, letter, q.Number))
				continue
			}
			if idx >= len(q.Choices) {
				warnings = append(warnings,
					fmt.Sprintf("%s: answer letter %q out of range for question %d, leaving answer unset",
						sp.subject, letter, q.Number))
				continue
			}
			q.AnswerIndex = &idx
		}
	} else {
		warnings = append(warnings, fmt.Sprintf("%s: scoring key not found", sp.subject))
	}

	startPage, err := sp.findSectionStartPage(ctx, src)
	if err != nil {
		return section, warnings, err
	}
	if startPage == 0 {
		startPage = 1
	}
	section.StartPage = startPage

	pageQuestions, err := sp.mapPages(ctx, src, section.Questions, startPage, p.strip)
	if err != nil {
		return section, warnings, err
	}
	section.PageQuestions = pageQuestions

	// The section starts where its lowest-numbered question is first seen.
	if first := section.Questions[0].PageNumber; first != nil {
		section.StartPage = *first
	}

	return section, warnings, nil
}

// combinedTexter is the optional TextSource upgrade for sources that can
// produce the whole document in one read, applying their own size caps.
type combinedTexter interface {
	CombinedText(ctx context.Context) (string, error)
}

// combinedText reads every page in order and joins all fragments with
// newline separators. The answer-key stage needs the entire document at
// once, which is why all pages are read up front.
func (p *Parser) combinedText(ctx context.Context, src TextSource) (string, error) {
	if ct, ok := src.(combinedTexter); ok {
		return ct.CombinedText(ctx)
	}

	var builder strings.Builder
	for n := 1; n <= src.NumPages(); n++ {
		fragments, err := src.PageText(ctx, n)
		if err != nil {
			return "", err
		}
		for _, frag := range fragments {
			builder.WriteString(frag)
			builder.WriteByte('\n')
		}
	}
	return builder.String(), nil
}
