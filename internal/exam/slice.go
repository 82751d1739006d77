package exam

import "regexp"

// sliceSection extracts the substring covering exactly one section: from the
// first match of the start anchor to the first subsequent match of the end
// anchor, or to end-of-text when the end anchor never occurs. The second
// return value is false when the start anchor is absent; the caller treats
// that as "this section yields no questions" without affecting siblings.
func sliceSection(text string, start, end *regexp.Regexp) (string, bool) {
	startLoc := start.FindStringIndex(text)
	if startLoc == nil {
		return "", false
	}

	if end != nil {
		// Search strictly after the start anchor so formats whose end
		// anchor equals the next section's start anchor slice correctly.
		if endLoc := end.FindStringIndex(text[startLoc[1]:]); endLoc != nil {
			return text[startLoc[0] : startLoc[1]+endLoc[0]], true
		}
	}

	return text[startLoc[0]:], true
}
