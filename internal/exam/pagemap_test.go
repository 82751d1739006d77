package exam

import (
	"context"
	"testing"
)

func newTestQuestions(subject Subject, numbers ...int) []Question {
	questions := make([]Question, 0, len(numbers))
	for _, n := range numbers {
		questions = append(questions, Question{
			ID:            questionID(subject, n),
			Number:        n,
			Prompt:        "placeholder prompt text",
			Choices:       []string{"one", "two", "three", "four"},
			ChoiceLetters: []string{"A", "B", "C", "D"},
		})
	}
	return questions
}

func TestMapPagesAssignsFirstDetectedPage(t *testing.T) {
	english := sectionOf(t, classicProfile, SubjectEnglish)
	strip := defaultStripper(t)

	src := &fakeSource{pages: []string{
		"cover page",
		"1. First question prompt here? A. yes B. no C. maybe D. never\n2. Second question prompt here? F. yes G. no H. maybe J. never",
		"3. Third question prompt here? A. yes B. no C. maybe D. never",
	}}

	questions := newTestQuestions(SubjectEnglish, 1, 2, 3)
	pageQuestions, err := english.mapPages(context.Background(), src, questions, 2, strip)
	if err != nil {
		t.Fatalf("mapPages failed: %v", err)
	}

	for i, wantPage := range []int{2, 2, 3} {
		if questions[i].PageNumber == nil {
			t.Fatalf("question %d has no page", questions[i].Number)
		}
		if *questions[i].PageNumber != wantPage {
			t.Errorf("question %d page = %d, want %d", questions[i].Number, *questions[i].PageNumber, wantPage)
		}
	}

	if got := pageQuestions[2]; len(got) != 2 || got[0] != "english-1" || got[1] != "english-2" {
		t.Errorf("pageQuestions[2] = %v", got)
	}
	if got := pageQuestions[3]; len(got) != 1 || got[0] != "english-3" {
		t.Errorf("pageQuestions[3] = %v", got)
	}
}

func TestMapPagesFallbackToStartPage(t *testing.T) {
	english := sectionOf(t, classicProfile, SubjectEnglish)
	strip := defaultStripper(t)

	// Question 2 never visibly begins on any page.
	src := &fakeSource{pages: []string{
		"cover page",
		"1. First question prompt here? A. yes B. no C. maybe D. never",
	}}

	questions := newTestQuestions(SubjectEnglish, 1, 2)
	pageQuestions, err := english.mapPages(context.Background(), src, questions, 2, strip)
	if err != nil {
		t.Fatalf("mapPages failed: %v", err)
	}

	if questions[1].PageNumber == nil || *questions[1].PageNumber != 2 {
		t.Errorf("unmatched question must fall back to the start page, got %v", questions[1].PageNumber)
	}
	found := false
	for _, id := range pageQuestions[2] {
		if id == "english-2" {
			found = true
		}
	}
	if !found {
		t.Errorf("fallback question missing from pageQuestions[2]: %v", pageQuestions)
	}
}

func TestMapPagesIgnoresBarePageNumbers(t *testing.T) {
	english := sectionOf(t, classicProfile, SubjectEnglish)
	strip := defaultStripper(t)

	// Page 2 carries a bare "1." numeral with no choice marker nearby; the
	// real question 1 begins on page 3.
	src := &fakeSource{pages: []string{
		"cover page",
		"1. \nrunning footer text without any answer options in sight",
		"1. First question prompt here? A. yes B. no C. maybe D. never",
	}}

	questions := newTestQuestions(SubjectEnglish, 1)
	if _, err := english.mapPages(context.Background(), src, questions, 2, strip); err != nil {
		t.Fatalf("mapPages failed: %v", err)
	}

	if *questions[0].PageNumber != 3 {
		t.Errorf("question 1 page = %d, want 3", *questions[0].PageNumber)
	}
}

func TestFindSectionStartPage(t *testing.T) {
	english := sectionOf(t, classicProfile, SubjectEnglish)

	src := &fakeSource{pages: []string{
		"cover page",
		"instructions",
		"ENGLISH TEST\n45 Minutes—75 Questions\n1. First question",
	}}

	page, err := english.findSectionStartPage(context.Background(), src)
	if err != nil {
		t.Fatalf("findSectionStartPage failed: %v", err)
	}
	if page != 3 {
		t.Errorf("start page = %d, want 3", page)
	}
}

func TestFindSectionStartPageAbsent(t *testing.T) {
	english := sectionOf(t, classicProfile, SubjectEnglish)

	src := &fakeSource{pages: []string{"nothing", "relevant", "here"}}

	page, err := english.findSectionStartPage(context.Background(), src)
	if err != nil {
		t.Fatalf("findSectionStartPage failed: %v", err)
	}
	if page != 0 {
		t.Errorf("start page = %d, want 0 for absent anchor", page)
	}
}
