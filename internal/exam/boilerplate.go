package exam

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/spf13/viper"
)

// StripLists is the versioned boilerplate configuration applied before
// question segmentation. The lists are tuned empirically against real
// booklets; new document variants can extend them from an external file
// without a code change.
type StripLists struct {
	Version int `mapstructure:"version" json:"version"`

	// RemovePatterns are regular expressions deleted from section text
	// before boundary detection; they otherwise corrupt prompt/choice
	// boundaries.
	RemovePatterns []string `mapstructure:"remove_patterns" json:"removePatterns"`

	// DiscardSubstrings mark a segmented block as leftover legal/consent
	// text rather than a real question; any hit discards the whole block.
	DiscardSubstrings []string `mapstructure:"discard_substrings" json:"discardSubstrings"`
}

// DefaultStripLists returns the embedded list shipped with this release.
func DefaultStripLists() StripLists {
	return StripLists{
		Version: 1,
		RemovePatterns: []string{
			`GO ON TO THE NEXT PAGE\.?`,
			`STOP!?\s+DO NOT TURN THE PAGE UNTIL TOLD TO DO SO\.?`,
			`END OF TEST \d`,
			`DO NOT RETURN TO A PREVIOUS TEST\.?`,
			`©\s*\d{4}\s+by ACT, Inc\.[^\n]*`,
			`ACT endorses the Code of Fair Testing Practices[^\n]*`,
			// Column-number filler rows the text extractor emits from the
			// bubble grid, e.g. "1 2 3 4 5 6 7 8 9 10".
			`(?m)^\s*(?:\d{1,2}\s+){5,}\d{1,2}\s*$`,
		},
		DiscardSubstrings: []string{
			"I agree to the Statements below",
			"certify that I am the person",
			"Your Signature",
			"Print Your Name",
			"DO NOT OPEN THIS BOOKLET",
			"P.O. Box 168",
			"Terms and Conditions",
		},
	}
}

// LoadStripLists reads a strip-list override file (any format viper
// understands). Empty lists in the file fall back to the embedded defaults
// so an override can extend one list without restating the other.
func LoadStripLists(path string) (StripLists, error) {
	lists := DefaultStripLists()

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return lists, fmt.Errorf("cannot read strip-list file %s: %w", path, err)
	}

	var loaded StripLists
	if err := v.Unmarshal(&loaded); err != nil {
		return lists, fmt.Errorf("cannot parse strip-list file %s: %w", path, err)
	}

	if loaded.Version != 0 {
		lists.Version = loaded.Version
	}
	if len(loaded.RemovePatterns) > 0 {
		lists.RemovePatterns = loaded.RemovePatterns
	}
	if len(loaded.DiscardSubstrings) > 0 {
		lists.DiscardSubstrings = loaded.DiscardSubstrings
	}

	return lists, nil
}

// stripper is the compiled form of a StripLists.
type stripper struct {
	remove  []*regexp.Regexp
	discard []string
}

func newStripper(lists StripLists) (*stripper, error) {
	s := &stripper{discard: lists.DiscardSubstrings}
	for _, pattern := range lists.RemovePatterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid strip pattern %q: %w", pattern, err)
		}
		s.remove = append(s.remove, re)
	}
	return s, nil
}

// clean deletes every remove-pattern match from the text.
func (s *stripper) clean(text string) string {
	for _, re := range s.remove {
		text = re.ReplaceAllString(text, " ")
	}
	return text
}

// shouldDiscard reports whether a segmented block surrounds leftover
// boilerplate instead of a real question.
func (s *stripper) shouldDiscard(block string) bool {
	for _, sub := range s.discard {
		if strings.Contains(block, sub) {
			return true
		}
	}
	return false
}
