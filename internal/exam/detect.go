package exam

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Filename heuristics. Detection never reads document content; the only
// signal at this stage is what the file is called.
var (
	enhancedMarker = "preparing"
	actMarker      = regexp.MustCompile(`(?i)act`)
	yearToken      = regexp.MustCompile(`(20\d{2})`)
)

const (
	classicYearMin = 2005
	classicYearMax = 2021
)

// DetectFormat guesses the layout variant from a filename. Rule order, first
// match wins:
//
//  1. marker word for the enhanced practice booklet -> enhanced, 0.9
//  2. "act" plus a release-year token (2005-2021)   -> classic,  0.8
//  3. everything else                               -> classic,  0.7
//
// The unstructured variant is never auto-selected. Callers may bypass
// detection entirely with an explicit user override.
func DetectFormat(filename string) Detection {
	lower := strings.ToLower(filename)

	if strings.Contains(lower, enhancedMarker) {
		return Detection{
			Format:     FormatEnhanced,
			Confidence: 0.9,
			Reason:     fmt.Sprintf("filename contains %q, matching the enhanced practice booklet", enhancedMarker),
		}
	}

	if actMarker.MatchString(lower) {
		for _, match := range yearToken.FindAllString(filename, -1) {
			year, err := strconv.Atoi(match)
			if err != nil {
				continue
			}
			if year >= classicYearMin && year <= classicYearMax {
				return Detection{
					Format:     FormatClassic,
					Confidence: 0.8,
					Reason:     fmt.Sprintf("filename names a %d form, within the classic release years", year),
				}
			}
		}
	}

	return Detection{
		Format:     FormatClassic,
		Confidence: 0.7,
		Reason:     "no format marker in filename, defaulting to the classic layout",
	}
}
