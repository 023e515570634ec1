package songtext

import (
	"regexp"
	"strings"
)

// Fragment is one parsed song line. EndSeconds is nil unless the line carried
// an explicit range end or block parsing inferred one from the next entry.
type Fragment struct {
	OrderIndex   int
	SongName     string
	Artist       string
	StartSeconds int
	EndSeconds   *int
	Start        string
	End          string
	Suspicious   bool
}

// treeChars are box-drawing and tree-listing prefixes seen in formatted
// comment setlists.
const treeChars = "│┃┆┇┊┋├┝┠┣└┖┗┌┍┏─━┼╎╏ \t"

var (
	numberPrefixPattern = regexp.MustCompile(`^(?:\d{1,3}[.)]\s*|#\d{1,3}\s+)`)
	bulletPrefixPattern = regexp.MustCompile(`^[-*+]\s+`)
	// timestampRun captures a leading run of timestamp characters, fullwidth
	// forms included.
	timestampRunPattern = regexp.MustCompile(`^[0-9０-９:：]+`)
	rangeMarkPattern    = regexp.MustCompile(`^\s*[~〜～\x{2212}–—-]\s*`)
)

// separators a single instance of which is stripped between the timestamp and
// the song description.
var separatorRunes = map[rune]struct{}{
	' ': {}, '　': {}, '-': {}, '–': {}, '—': {},
}

// ParseLine turns one line of free text into a song fragment. Lines without a
// leading timestamp are not song lines and report ok=false.
func ParseLine(line string) (*Fragment, bool) {
	rest := strings.TrimSpace(line)
	rest = strings.TrimLeft(rest, treeChars)
	rest = numberPrefixPattern.ReplaceAllString(rest, "")
	rest = bulletPrefixPattern.ReplaceAllString(rest, "")
	rest = strings.TrimSpace(rest)

	start, rest, ok := consumeTimestamp(rest)
	if !ok {
		return nil, false
	}

	fragment := &Fragment{StartSeconds: start}

	// An explicit range end must be consumed before separator stripping so a
	// literal end time is never mistaken for a hyphen separator.
	if mark := rangeMarkPattern.FindString(rest); mark != "" {
		if end, after, ok := consumeTimestamp(rest[len(mark):]); ok {
			fragment.EndSeconds = &end
			rest = after
		}
	}

	rest = stripSeparator(rest)
	name, artist := splitDescription(rest)
	if name == "" {
		return nil, false
	}
	fragment.SongName = name
	fragment.Artist = artist
	return fragment, true
}

// consumeTimestamp parses a leading timestamp token and returns the remainder.
func consumeTimestamp(text string) (int, string, bool) {
	run := timestampRunPattern.FindString(text)
	if run == "" {
		return 0, text, false
	}
	seconds, ok := ParseTimestamp(run)
	if !ok {
		return 0, text, false
	}
	return seconds, text[len(run):], true
}

// stripSeparator removes at most one separator rune plus surrounding spaces.
func stripSeparator(text string) string {
	text = strings.TrimLeft(text, " \t　")
	runes := []rune(text)
	if len(runes) > 0 {
		if _, ok := separatorRunes[runes[0]]; ok {
			text = string(runes[1:])
		}
	}
	return strings.TrimSpace(text)
}

// splitDescription breaks "song / artist" style descriptions apart: a spaced
// slash wins, then a spaced hyphen, then a bare slash. A rule only applies
// when both sides come out non-empty.
func splitDescription(text string) (string, string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ""
	}

	for _, sep := range []string{" / ", " ／ "} {
		if name, artist, ok := splitOn(text, sep); ok {
			return name, artist
		}
	}
	for _, sep := range []string{" - ", " – ", " — "} {
		if name, artist, ok := splitOn(text, sep); ok {
			return name, artist
		}
	}
	for _, sep := range []string{"/", "／"} {
		if name, artist, ok := splitOn(text, sep); ok {
			return name, artist
		}
	}
	return text, ""
}

func splitOn(text, sep string) (string, string, bool) {
	before, after, found := strings.Cut(text, sep)
	if !found {
		return "", "", false
	}
	name := strings.TrimSpace(before)
	artist := strings.TrimSpace(after)
	if name == "" || artist == "" {
		return "", "", false
	}
	return name, artist, true
}
