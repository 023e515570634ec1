package songtext

import (
	"fmt"
	"regexp"

	"golang.org/x/text/width"
)

// timestampPattern matches H:MM:SS, HH:MM:SS, M:SS and MM:SS.
var timestampPattern = regexp.MustCompile(`^(\d{1,2}):([0-5]\d)(?::([0-5]\d))?$`)

// ParseTimestamp converts a timestamp string into seconds. Fullwidth digits
// and colons are folded to their halfwidth forms first. Anything that is not
// one of the accepted shapes reports ok=false, never an error.
func ParseTimestamp(text string) (int, bool) {
	folded := width.Fold.String(text)
	match := timestampPattern.FindStringSubmatch(folded)
	if match == nil {
		return 0, false
	}

	first := atoiDigits(match[1])
	second := atoiDigits(match[2])
	if match[3] == "" {
		// M:SS / MM:SS
		return first*60 + second, true
	}
	third := atoiDigits(match[3])
	return first*3600 + second*60 + third, true
}

// FormatSeconds renders seconds canonically: H:MM:SS when an hour component
// exists, M:SS otherwise.
func FormatSeconds(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	secs := seconds % 60
	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, secs)
	}
	return fmt.Sprintf("%d:%02d", minutes, secs)
}

// atoiDigits parses a string already known to contain only ASCII digits.
func atoiDigits(s string) int {
	value := 0
	for _, r := range s {
		value = value*10 + int(r-'0')
	}
	return value
}
