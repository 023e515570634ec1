package songtext

import "strings"

// suspiciousStartSeconds flags starts beyond 12 hours as probable mis-parses.
// Suspicious entries are kept; the flag is a signal for review, not a filter.
const suspiciousStartSeconds = 12 * 60 * 60

// ParseBlock runs the line parser over a whole text block, discarding lines
// that are not song lines, and returns fragments in source order with dense
// order indexes, canonical timestamp strings, and inferred end times: an
// explicit range end wins, else the next entry's start, else none.
func ParseBlock(text string) []Fragment {
	var fragments []Fragment
	for _, line := range strings.Split(text, "\n") {
		fragment, ok := ParseLine(line)
		if !ok {
			continue
		}
		fragments = append(fragments, *fragment)
	}

	for i := range fragments {
		fragments[i].OrderIndex = i
		if fragments[i].EndSeconds == nil && i+1 < len(fragments) {
			next := fragments[i+1].StartSeconds
			fragments[i].EndSeconds = &next
		}
		fragments[i].Start = FormatSeconds(fragments[i].StartSeconds)
		if fragments[i].EndSeconds != nil {
			fragments[i].End = FormatSeconds(*fragments[i].EndSeconds)
		}
		fragments[i].Suspicious = fragments[i].StartSeconds > suspiciousStartSeconds
	}
	return fragments
}
