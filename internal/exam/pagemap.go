package exam

import (
	"context"
	"sort"
	"strings"
)

// mapPages assigns each question the physical page it is first detected on.
//
// Pages are re-read from the section's start page forward and the same
// validated question-number detection used during segmentation is re-run
// per page, so a bare page number can never claim a question. Questions the
// forward scan never matches (for example a question split across an
// unusual layout) fall back to the section's start page, guaranteeing every
// question receives exactly one page.
func (p sectionProfile) mapPages(
	ctx context.Context,
	src TextSource,
	questions []Question,
	startPage int,
	strip *stripper,
) (map[int][]string, error) {
	pageQuestions := make(map[int][]string)
	if len(questions) == 0 {
		return pageQuestions, nil
	}

	byNumber := make(map[int]*Question, len(questions))
	for i := range questions {
		byNumber[questions[i].Number] = &questions[i]
	}
	remaining := len(questions)

	for page := startPage; page <= src.NumPages() && remaining > 0; page++ {
		fragments, err := src.PageText(ctx, page)
		if err != nil {
			return nil, err
		}
		text := strip.clean(strings.Join(fragments, "\n"))

		numbers := make([]int, 0, len(byNumber))
		for number := range p.validatedNumbers(text) {
			numbers = append(numbers, number)
		}
		sort.Ints(numbers)

		for _, number := range numbers {
			q, ok := byNumber[number]
			if !ok || q.PageNumber != nil {
				continue
			}
			assigned := page
			q.PageNumber = &assigned
			pageQuestions[page] = append(pageQuestions[page], q.ID)
			remaining--
		}
	}

	// Fallback for questions the scan never saw.
	for i := range questions {
		if questions[i].PageNumber != nil {
			continue
		}
		assigned := startPage
		questions[i].PageNumber = &assigned
		pageQuestions[startPage] = append(pageQuestions[startPage], questions[i].ID)
	}

	return pageQuestions, nil
}

// findSectionStartPage scans all pages forward for the section's start
// anchor and returns the first page it occurs on, or 0 when the anchor is
// absent from the document.
func (p sectionProfile) findSectionStartPage(ctx context.Context, src TextSource) (int, error) {
	if p.start == nil {
		return 0, nil
	}

	for page := 1; page <= src.NumPages(); page++ {
		fragments, err := src.PageText(ctx, page)
		if err != nil {
			return 0, err
		}
		if p.start.MatchString(strings.Join(fragments, "\n")) {
			return page, nil
		}
	}

	return 0, nil
}
