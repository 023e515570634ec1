package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

const streamColumns = "video_id, channel_id, title, date, date_source, status, source, raw_comment, raw_description, comment_author, comment_author_url, comment_id, created_at, updated_at"

func scanStream(scanner interface{ Scan(dest ...any) error }) (*Stream, error) {
	var (
		videoID    string
		channelID  sql.NullString
		title      sql.NullString
		date       sql.NullString
		dateSource sql.NullString
		statusStr  string
		source     sql.NullString
		rawComment sql.NullString
		rawDesc    sql.NullString
		author     sql.NullString
		authorURL  sql.NullString
		commentID  sql.NullString
		createdRaw sql.NullString
		updatedRaw sql.NullString
	)

	if err := scanner.Scan(
		&videoID,
		&channelID,
		&title,
		&date,
		&dateSource,
		&statusStr,
		&source,
		&rawComment,
		&rawDesc,
		&author,
		&authorURL,
		&commentID,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	stream := &Stream{
		VideoID:          videoID,
		ChannelID:        channelID.String,
		Title:            title.String,
		Date:             date.String,
		DateSource:       DateSource(dateSource.String),
		Status:           Status(statusStr),
		Source:           Source(source.String),
		RawComment:       rawComment.String,
		RawDescription:   rawDesc.String,
		CommentAuthor:    author.String,
		CommentAuthorURL: authorURL.String,
		CommentID:        commentID.String,
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		stream.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		stream.UpdatedAt = updated
	}
	return stream, nil
}

const songColumns = "id, video_id, order_index, song_name, artist, start_timestamp, end_timestamp, note, manual_end_ts, duration"

func scanSong(scanner interface{ Scan(dest ...any) error }) (*ParsedSong, error) {
	var (
		id        int64
		videoID   string
		order     int
		name      string
		artist    sql.NullString
		start     string
		end       sql.NullString
		note      sql.NullString
		manualEnd sql.NullInt64
		duration  sql.NullInt64
	)

	if err := scanner.Scan(&id, &videoID, &order, &name, &artist, &start, &end, &note, &manualEnd, &duration); err != nil {
		return nil, err
	}

	song := &ParsedSong{
		ID:             id,
		VideoID:        videoID,
		OrderIndex:     order,
		SongName:       name,
		Artist:         artist.String,
		StartTimestamp: start,
		EndTimestamp:   end.String,
		Note:           note.String,
	}
	if manualEnd.Valid {
		song.ManualEnd = manualEnd.Int64 != 0
	}
	if duration.Valid {
		value := int(duration.Int64)
		song.Duration = &value
	}
	return song, nil
}

const candidateColumns = "id, video_id, comment_cid, author, author_url, text, matched_keywords, status, created_at"

func scanCandidate(scanner interface{ Scan(dest ...any) error }) (*CandidateComment, error) {
	var (
		id         int64
		videoID    string
		cid        sql.NullString
		author     sql.NullString
		authorURL  sql.NullString
		text       string
		keywords   sql.NullString
		statusStr  string
		createdRaw sql.NullString
	)

	if err := scanner.Scan(&id, &videoID, &cid, &author, &authorURL, &text, &keywords, &statusStr, &createdRaw); err != nil {
		return nil, err
	}

	candidate := &CandidateComment{
		ID:         id,
		VideoID:    videoID,
		CommentCID: cid.String,
		Author:     author.String,
		AuthorURL:  authorURL.String,
		Text:       text,
		Status:     CandidateStatus(statusStr),
	}
	if keywords.Valid && keywords.String != "" {
		_ = json.Unmarshal([]byte(keywords.String), &candidate.MatchedKeywords)
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		candidate.CreatedAt = created
	}
	return candidate, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func nullableInt(value *int) any {
	if value == nil {
		return nil
	}
	return *value
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func coalesce(incoming, existing string) string {
	if incoming != "" {
		return incoming
	}
	return existing
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}
