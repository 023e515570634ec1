package store

import "strings"

// Status represents the curation lifecycle of a stream.
type Status string

const (
	StatusDiscovered Status = "discovered"
	StatusExtracted  Status = "extracted"
	StatusPending    Status = "pending"
	StatusApproved   Status = "approved"
	StatusExported   Status = "exported"
	StatusImported   Status = "imported"
	StatusExcluded   Status = "excluded"
)

var allStatuses = []Status{
	StatusDiscovered,
	StatusExtracted,
	StatusPending,
	StatusApproved,
	StatusExported,
	StatusImported,
	StatusExcluded,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// transitions is the only legal status graph. The empty Status key stands for
// "stream not yet created".
var transitions = map[Status][]Status{
	"":               {StatusDiscovered},
	StatusDiscovered: {StatusExtracted, StatusPending, StatusExcluded},
	StatusExtracted:  {StatusPending, StatusApproved, StatusExcluded},
	StatusPending:    {StatusExtracted, StatusApproved, StatusExcluded},
	StatusApproved:   {StatusExported, StatusExtracted},
	StatusExported:   {StatusImported, StatusApproved},
	StatusImported:   {StatusApproved},
	StatusExcluded:   {StatusDiscovered},
}

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status. Unknown values yield the
// zero Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if _, ok := statusSet[normalized]; !ok {
		return "", false
	}
	return normalized, true
}

// IsValidTransition reports whether moving a stream from one status to another
// is allowed. An empty from means the stream does not exist yet; only
// discovered is reachable from there.
func IsValidTransition(from, to Status) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}
