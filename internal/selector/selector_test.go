package selector

import (
	"strings"
	"testing"
)

func timestampText(n int) string {
	var b strings.Builder
	for i := 0; i < n; i++ {
		b.WriteString("0:0")
		b.WriteByte(byte('0' + i%10))
		b.WriteString(" Song\n")
	}
	return b.String()
}

func TestFindCandidateRequiresThreeTimestamps(t *testing.T) {
	comments := []Comment{
		{ID: "a", Text: timestampText(2)},
		{ID: "b", Text: "no timestamps at all"},
	}
	if got := FindCandidate(comments); got != nil {
		t.Fatalf("expected no candidate, got %+v", got)
	}
}

func TestFindCandidateMoreTimestampsWins(t *testing.T) {
	comments := []Comment{
		{ID: "short", Text: timestampText(3)},
		{ID: "long", Text: timestampText(10)},
	}
	got := FindCandidate(comments)
	if got == nil || got.ID != "long" {
		t.Fatalf("expected long comment, got %+v", got)
	}
}

func TestFindCandidatePinnedBeatsEverything(t *testing.T) {
	comments := []Comment{
		{ID: "popular", Text: timestampText(10), LikeCount: "5.2K"},
		{ID: "pinned", Text: timestampText(3), LikeCount: "2", IsPinned: true},
	}
	got := FindCandidate(comments)
	if got == nil || got.ID != "pinned" {
		t.Fatalf("expected pinned comment, got %+v", got)
	}
}

func TestFindCandidateLikesBreakPinTie(t *testing.T) {
	comments := []Comment{
		{ID: "few", Text: timestampText(8), LikeCount: "12"},
		{ID: "many", Text: timestampText(4), LikeCount: "1.2K"},
	}
	got := FindCandidate(comments)
	if got == nil || got.ID != "many" {
		t.Fatalf("expected more-liked comment, got %+v", got)
	}
}

func TestParseLikeCount(t *testing.T) {
	cases := []struct {
		input string
		want  int64
	}{
		{"87", 87},
		{"1,234", 1234},
		{"1.2K", 1200},
		{"3M", 3000000},
		{"2.5m", 2500000},
		{"1B", 1000000000},
		{"", 0},
		{"n/a", 0},
		{"-5", 0},
	}
	for _, tc := range cases {
		if got := ParseLikeCount(tc.input); got != tc.want {
			t.Errorf("ParseLikeCount(%q) = %d, want %d", tc.input, got, tc.want)
		}
	}
}

func TestFindKeywordComments(t *testing.T) {
	comments := []Comment{
		{ID: "a", Text: "Here is the SETLIST for today"},
		{ID: "b", Text: "今日のセトリです"},
		{ID: "c", Text: "great stream!"},
	}
	matches := FindKeywordComments(comments, []string{"setlist", "セトリ"})
	if len(matches) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(matches))
	}
	if matches[0].Comment.ID != "a" || matches[0].Keywords[0] != "setlist" {
		t.Fatalf("unexpected first match: %+v", matches[0])
	}
	if matches[1].Comment.ID != "b" || matches[1].Keywords[0] != "セトリ" {
		t.Fatalf("unexpected second match: %+v", matches[1])
	}
}

func TestFindKeywordCommentsNonASCIIIsExact(t *testing.T) {
	comments := []Comment{{ID: "a", Text: "せとり"}} // hiragana, not the katakana keyword
	if matches := FindKeywordComments(comments, []string{"セトリ"}); len(matches) != 0 {
		t.Fatalf("non-ASCII keywords must match exactly, got %+v", matches)
	}
}

func TestCountTimestamps(t *testing.T) {
	if got := CountTimestamps("0:00 intro 1:23:45 song 99:99 weird"); got != 3 {
		t.Fatalf("expected 3 shapes, got %d", got)
	}
}
