package selector

import (
	"regexp"
	"strconv"
	"strings"
)

// Comment is one fetched comment as delivered by a comment source.
type Comment struct {
	ID        string
	Author    string
	AuthorURL string
	Text      string
	LikeCount string
	IsPinned  bool
}

// Match is a comment annotated with the curation keywords it hit.
type Match struct {
	Comment  Comment
	Keywords []string
}

// minTimestampCount is the floor below which a comment is not considered a
// song-list candidate.
const minTimestampCount = 3

// timestampShapePattern is a cheap proxy for "looks like a timestamp": it does
// not validate minute/second ranges, it only counts shapes.
var timestampShapePattern = regexp.MustCompile(`\d{1,2}:\d{2}(?::\d{2})?`)

// CountTimestamps returns the number of timestamp-shaped substrings in text.
func CountTimestamps(text string) int {
	return len(timestampShapePattern.FindAllString(text, -1))
}

// FindCandidate picks the single best timestamp-listing comment: comments with
// fewer than three timestamp shapes are dropped, survivors rank by pinned
// status, then like count, then timestamp count. Returns nil when nothing
// clears the floor.
func FindCandidate(comments []Comment) *Comment {
	var (
		best      *Comment
		bestKey   rankKey
		bestFound bool
	)
	for i := range comments {
		count := CountTimestamps(comments[i].Text)
		if count < minTimestampCount {
			continue
		}
		key := rankKey{
			pinned:     comments[i].IsPinned,
			likes:      ParseLikeCount(comments[i].LikeCount),
			timestamps: count,
		}
		if !bestFound || key.outranks(bestKey) {
			best = &comments[i]
			bestKey = key
			bestFound = true
		}
	}
	return best
}

type rankKey struct {
	pinned     bool
	likes      int64
	timestamps int
}

func (k rankKey) outranks(other rankKey) bool {
	if k.pinned != other.pinned {
		return k.pinned
	}
	if k.likes != other.likes {
		return k.likes > other.likes
	}
	return k.timestamps > other.timestamps
}

// ParseLikeCount converts a compact like-count string ("1.2K", "3M", "1,234",
// "87") into an integer. Unparsable values count as zero.
func ParseLikeCount(value string) int64 {
	cleaned := strings.ReplaceAll(strings.TrimSpace(value), ",", "")
	if cleaned == "" {
		return 0
	}

	multiplier := int64(1)
	switch cleaned[len(cleaned)-1] {
	case 'K', 'k':
		multiplier = 1_000
		cleaned = cleaned[:len(cleaned)-1]
	case 'M', 'm':
		multiplier = 1_000_000
		cleaned = cleaned[:len(cleaned)-1]
	case 'B', 'b':
		multiplier = 1_000_000_000
		cleaned = cleaned[:len(cleaned)-1]
	}

	number, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || number < 0 {
		return 0
	}
	return int64(number * float64(multiplier))
}

// FindKeywordComments returns the comments matching any curation keyword,
// each annotated with the keywords it matched. ASCII keywords match
// case-insensitively; non-ASCII keywords match exactly, since case folding is
// undefined for some scripts.
func FindKeywordComments(comments []Comment, keywords []string) []Match {
	var matches []Match
	for _, comment := range comments {
		var hit []string
		lowered := ""
		for _, keyword := range keywords {
			if keyword == "" {
				continue
			}
			if isASCII(keyword) {
				if lowered == "" {
					lowered = strings.ToLower(comment.Text)
				}
				if strings.Contains(lowered, strings.ToLower(keyword)) {
					hit = append(hit, keyword)
				}
			} else if strings.Contains(comment.Text, keyword) {
				hit = append(hit, keyword)
			}
		}
		if len(hit) > 0 {
			matches = append(matches, Match{Comment: comment, Keywords: hit})
		}
	}
	return matches
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] > 127 {
			return false
		}
	}
	return true
}
