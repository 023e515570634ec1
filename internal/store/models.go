package store

import "time"

// DateSource records how a stream date was resolved.
type DateSource string

const (
	DatePrecise  DateSource = "precise"
	DateRelative DateSource = "relative"
)

// Source records which extraction stage produced a stream's song list.
type Source string

const (
	SourceComment     Source = "comment"
	SourceDescription Source = "description"
)

// CandidateStatus is the review state of a stored candidate comment.
type CandidateStatus string

const (
	CandidatePending  CandidateStatus = "pending"
	CandidateApproved CandidateStatus = "approved"
	CandidateRejected CandidateStatus = "rejected"
)

// ParseCandidateStatus converts a string into a known CandidateStatus.
func ParseCandidateStatus(value string) (CandidateStatus, bool) {
	switch CandidateStatus(value) {
	case CandidatePending, CandidateApproved, CandidateRejected:
		return CandidateStatus(value), true
	default:
		return "", false
	}
}

// Stream is one archived source video undergoing curation. Empty string fields
// are persisted as NULL; an empty Date/DateSource means the date is unresolved.
type Stream struct {
	VideoID          string
	ChannelID        string
	Title            string
	Date             string
	DateSource       DateSource
	Status           Status
	Source           Source
	RawComment       string
	RawDescription   string
	CommentAuthor    string
	CommentAuthorURL string
	CommentID        string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// ParsedSong is one song occurrence within a stream's timeline. Duration is
// nil until the enrichment collaborator has filled it in.
type ParsedSong struct {
	ID             int64
	VideoID        string
	OrderIndex     int
	SongName       string
	Artist         string
	StartTimestamp string
	EndTimestamp   string
	Note           string
	ManualEnd      bool
	Duration       *int
}

// identity is the tuple that survives a wholesale song-list replacement.
func (p ParsedSong) identity() songIdentity {
	return songIdentity{name: p.SongName, artist: p.Artist, start: p.StartTimestamp}
}

type songIdentity struct {
	name   string
	artist string
	start  string
}

// CandidateComment is a keyword-matched comment stored for manual review.
type CandidateComment struct {
	ID              int64
	VideoID         string
	CommentCID      string
	Author          string
	AuthorURL       string
	Text            string
	MatchedKeywords []string
	Status          CandidateStatus
	CreatedAt       time.Time
}
