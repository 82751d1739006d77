package exam

import (
	"context"
	"strings"
	"testing"
)

// sectionOf fetches one section profile of a format or fails the test.
func sectionOf(t *testing.T, f formatProfile, subject Subject) sectionProfile {
	t.Helper()
	for _, sp := range f.sections {
		if sp.subject == subject {
			return sp
		}
	}
	t.Fatalf("no %s section in %s profile", subject, f.format)
	return sectionProfile{}
}

// defaultStripper compiles the embedded strip lists or fails the test.
func defaultStripper(t *testing.T) *stripper {
	t.Helper()
	strip, err := newStripper(DefaultStripLists())
	if err != nil {
		t.Fatalf("failed to compile default strip lists: %v", err)
	}
	return strip
}

// fakeSource is an in-memory TextSource: one string per page, split into
// line fragments.
type fakeSource struct {
	pages []string
}

func (f *fakeSource) NumPages() int {
	return len(f.pages)
}

func (f *fakeSource) PageText(_ context.Context, n int) ([]string, error) {
	return strings.Split(f.pages[n-1], "\n"), nil
}

// combinedSource additionally serves whole-document reads, counting how
// often the one-shot path is taken.
type combinedSource struct {
	fakeSource
	combinedCalls int
}

func (c *combinedSource) CombinedText(_ context.Context) (string, error) {
	c.combinedCalls++
	var builder strings.Builder
	for _, page := range c.pages {
		builder.WriteString(page)
		builder.WriteByte('\n')
	}
	return builder.String(), nil
}
