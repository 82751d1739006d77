package exam

// Every emitted question carries between two and four printed choices.
// Blocks outside these bounds are layout damage, not questions.
const (
	minChoices = 2
	maxChoices = 4
)

// splitChoices splits a choice region into parallel (letter, text) lists.
//
// The region is split on "<letter>." / "<letter>)" markers, but a marker
// only terminates the current choice when the parenthesis depth at that
// point is zero. A coincidental "B."-looking token inside parenthesized
// content, such as a function application in a math expression, must stay
// part of the surrounding choice text.
func (p sectionProfile) splitChoices(region string) (letters, texts []string) {
	marker := p.choiceMarker()
	locs := marker.FindAllStringSubmatchIndex(region, -1)
	if len(locs) == 0 {
		return nil, nil
	}

	// Parenthesis depth before each byte of the region.
	depth := make([]int, len(region)+1)
	d := 0
	for i := 0; i < len(region); i++ {
		depth[i] = d
		switch region[i] {
		case '(':
			d++
		case ')':
			if d > 0 {
				d--
			}
		}
	}
	depth[len(region)] = d

	var accepted [][]int
	for _, loc := range locs {
		if depth[loc[2]] == 0 { // loc[2] is the letter position
			accepted = append(accepted, loc)
		}
	}
	if len(accepted) == 0 {
		return nil, nil
	}

	for i, loc := range accepted {
		end := len(region)
		if i+1 < len(accepted) {
			end = accepted[i+1][0]
		}
		letters = append(letters, region[loc[2]:loc[3]])
		texts = append(texts, normalizeSpace(region[loc[1]:end]))
	}

	if p.fixedChoiceCount > 0 {
		return p.forceChoiceCount(letters, texts)
	}

	// A fifth marker belongs to the next question's restarted alphabet,
	// which happens when an undetected question number sits mid-line.
	if len(texts) > maxChoices {
		letters = letters[:maxChoices]
		texts = texts[:maxChoices]
	}

	// Drop empty results, keeping the lists parallel.
	outLetters := letters[:0]
	outTexts := texts[:0]
	for i := range texts {
		if texts[i] == "" {
			continue
		}
		outLetters = append(outLetters, letters[i])
		outTexts = append(outTexts, texts[i])
	}
	if len(outTexts) < minChoices {
		return nil, nil
	}
	return outLetters, outTexts
}

// forceChoiceCount pads or truncates the lists to the section's fixed
// choice count. Missing letters continue the alphabet from the last one
// found. A block whose forced entries are all empty is rejected outright.
func (p sectionProfile) forceChoiceCount(letters, texts []string) ([]string, []string) {
	n := p.fixedChoiceCount

	if len(texts) > n {
		letters = letters[:n]
		texts = texts[:n]
	}

	nextLetter := 0
	if len(letters) > 0 {
		last := letters[len(letters)-1]
		for i, l := range p.letters {
			if l == last {
				nextLetter = i + 1
				break
			}
		}
	}
	for len(texts) < n {
		letter := ""
		if nextLetter < len(p.letters) {
			letter = p.letters[nextLetter]
			nextLetter++
		}
		letters = append(letters, letter)
		texts = append(texts, "")
	}

	allEmpty := true
	for _, t := range texts {
		if t != "" {
			allEmpty = false
			break
		}
	}
	if allEmpty {
		return nil, nil
	}

	return letters, texts
}
