package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"setlist/internal/services"
)

// UpsertStream inserts or updates a stream keyed on VideoID. Writes follow
// coalesce semantics: an empty incoming field never clobbers a stored value.
// Status is the exception and is applied verbatim when non-empty; a stream
// created here always starts at discovered. A precise date is never
// overwritten by a non-precise write.
func (s *Store) UpsertStream(ctx context.Context, stream *Stream) (*Stream, error) {
	if stream == nil {
		return nil, services.Wrap(services.ErrValidation, "store", "upsert stream", "stream is nil", nil)
	}
	if stream.VideoID == "" {
		return nil, services.Wrap(services.ErrValidation, "store", "upsert stream", "video_id required", nil)
	}
	if stream.Status != "" {
		if _, ok := ParseStatus(string(stream.Status)); !ok {
			return nil, services.Wrap(services.ErrValidation, "store", "upsert stream", fmt.Sprintf("unknown status %q", stream.Status), nil)
		}
	}

	ctx = ensureContext(ctx)
	now := time.Now().UTC().Format(time.RFC3339Nano)

	err := retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin upsert tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		row := tx.QueryRowContext(ctx, `SELECT `+streamColumns+` FROM streams WHERE video_id = ?`, stream.VideoID)
		existing, err := scanStream(row)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			status := StatusDiscovered
			if _, err := tx.ExecContext(
				ctx,
				`INSERT INTO streams (`+streamColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				stream.VideoID,
				nullableString(stream.ChannelID),
				nullableString(stream.Title),
				nullableString(stream.Date),
				nullableString(string(stream.DateSource)),
				status,
				nullableString(string(stream.Source)),
				nullableString(stream.RawComment),
				nullableString(stream.RawDescription),
				nullableString(stream.CommentAuthor),
				nullableString(stream.CommentAuthorURL),
				nullableString(stream.CommentID),
				now,
				now,
			); err != nil {
				return fmt.Errorf("insert stream: %w", err)
			}
			return tx.Commit()
		case err != nil:
			return fmt.Errorf("read existing stream: %w", err)
		}

		merged := mergeStream(existing, stream)
		if _, err := tx.ExecContext(
			ctx,
			`UPDATE streams
             SET channel_id = ?, title = ?, date = ?, date_source = ?, status = ?, source = ?,
                 raw_comment = ?, raw_description = ?, comment_author = ?, comment_author_url = ?,
                 comment_id = ?, updated_at = ?
             WHERE video_id = ?`,
			nullableString(merged.ChannelID),
			nullableString(merged.Title),
			nullableString(merged.Date),
			nullableString(string(merged.DateSource)),
			merged.Status,
			nullableString(string(merged.Source)),
			nullableString(merged.RawComment),
			nullableString(merged.RawDescription),
			nullableString(merged.CommentAuthor),
			nullableString(merged.CommentAuthorURL),
			nullableString(merged.CommentID),
			now,
			stream.VideoID,
		); err != nil {
			return fmt.Errorf("update stream: %w", err)
		}
		return tx.Commit()
	})
	if err != nil {
		return nil, err
	}
	return s.GetStream(ctx, stream.VideoID)
}

// mergeStream applies coalesce semantics over an existing row. Date precision
// is monotonic: once precise, a non-precise write cannot touch date fields.
func mergeStream(existing, incoming *Stream) *Stream {
	merged := *existing

	merged.ChannelID = coalesce(incoming.ChannelID, existing.ChannelID)
	merged.Title = coalesce(incoming.Title, existing.Title)
	merged.Source = Source(coalesce(string(incoming.Source), string(existing.Source)))
	merged.RawComment = coalesce(incoming.RawComment, existing.RawComment)
	merged.RawDescription = coalesce(incoming.RawDescription, existing.RawDescription)
	merged.CommentAuthor = coalesce(incoming.CommentAuthor, existing.CommentAuthor)
	merged.CommentAuthorURL = coalesce(incoming.CommentAuthorURL, existing.CommentAuthorURL)
	merged.CommentID = coalesce(incoming.CommentID, existing.CommentID)

	if incoming.Status != "" {
		merged.Status = incoming.Status
	}

	demotion := existing.DateSource == DatePrecise && incoming.DateSource != DatePrecise
	if !demotion {
		merged.Date = coalesce(incoming.Date, existing.Date)
		merged.DateSource = DateSource(coalesce(string(incoming.DateSource), string(existing.DateSource)))
	}

	return &merged
}

// GetStream fetches a stream by video id. Returns ErrNotFound when absent.
func (s *Store) GetStream(ctx context.Context, videoID string) (*Stream, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx, `SELECT `+streamColumns+` FROM streams WHERE video_id = ?`, videoID)
	stream, err := scanStream(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, services.Wrap(services.ErrNotFound, "store", "get stream", videoID, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("get stream: %w", err)
	}
	return stream, nil
}

// ListStreams returns streams filtered by status set (or all streams when no
// status is provided), ordered by creation time.
func (s *Store) ListStreams(ctx context.Context, statuses ...Status) ([]*Stream, error) {
	ctx = ensureContext(ctx)

	baseQuery := `SELECT ` + streamColumns + ` FROM streams`
	orderClause := ` ORDER BY created_at`

	var (
		rows *sql.Rows
		err  error
	)
	if len(statuses) == 0 {
		rows, err = s.db.QueryContext(ctx, baseQuery+orderClause)
	} else {
		placeholders := makePlaceholders(len(statuses))
		args := make([]any, len(statuses))
		for i, status := range statuses {
			args[i] = status
		}
		rows, err = s.db.QueryContext(ctx, baseQuery+` WHERE status IN (`+placeholders+`)`+orderClause, args...)
	}
	if err != nil {
		return nil, fmt.Errorf("list streams: %w", err)
	}
	defer rows.Close()

	var streams []*Stream
	for rows.Next() {
		stream, err := scanStream(rows)
		if err != nil {
			return nil, err
		}
		streams = append(streams, stream)
	}
	return streams, rows.Err()
}

// SetStatus moves a stream to a new status, enforcing the transition graph.
// Unknown statuses yield ErrValidation, missing streams ErrNotFound, and moves
// outside the graph ErrInvalidTransition.
func (s *Store) SetStatus(ctx context.Context, videoID string, to Status) (*Stream, error) {
	if _, err := s.setStatus(ctx, videoID, to, true); err != nil {
		return nil, err
	}
	return s.GetStream(ctx, videoID)
}

// AdvanceStatus is the lenient variant used by automated re-runs: a same-state
// write and an illegal move are both silent skips. It reports whether the
// status actually changed.
func (s *Store) AdvanceStatus(ctx context.Context, videoID string, to Status) (bool, error) {
	return s.setStatus(ctx, videoID, to, false)
}

func (s *Store) setStatus(ctx context.Context, videoID string, to Status, strict bool) (bool, error) {
	if _, ok := ParseStatus(string(to)); !ok {
		return false, services.Wrap(services.ErrValidation, "store", "set status", fmt.Sprintf("unknown status %q", to), nil)
	}

	ctx = ensureContext(ctx)
	var applied bool
	err := retryOnBusy(ctx, func() error {
		applied = false
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin status tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		var current Status
		row := tx.QueryRowContext(ctx, `SELECT status FROM streams WHERE video_id = ?`, videoID)
		if err := row.Scan(&current); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return services.Wrap(services.ErrNotFound, "store", "set status", videoID, nil)
			}
			return fmt.Errorf("read status: %w", err)
		}

		if !IsValidTransition(current, to) {
			if strict {
				return services.Wrap(services.ErrInvalidTransition, "store", "set status", fmt.Sprintf("%s: %s -> %s", videoID, current, to), nil)
			}
			return tx.Commit()
		}

		if _, err := tx.ExecContext(
			ctx,
			`UPDATE streams SET status = ?, updated_at = ? WHERE video_id = ?`,
			to,
			time.Now().UTC().Format(time.RFC3339Nano),
			videoID,
		); err != nil {
			return fmt.Errorf("update status: %w", err)
		}
		applied = true
		return tx.Commit()
	})
	return applied, err
}

// StatusCounts returns a count per status, zero-filled across all seven
// canonical statuses.
func (s *Store) StatusCounts(ctx context.Context) (map[Status]int, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(1) FROM streams GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("status counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[Status]int, len(allStatuses))
	for _, status := range allStatuses {
		counts[status] = 0
	}
	for rows.Next() {
		var status Status
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

// DeleteStream removes a stream; songs and candidates cascade.
func (s *Store) DeleteStream(ctx context.Context, videoID string) (bool, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM streams WHERE video_id = ?`, videoID)
	if err != nil {
		return false, fmt.Errorf("delete stream: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// Clear wipes the entire cache.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM streams`)
	if err != nil {
		return 0, fmt.Errorf("clear cache: %w", err)
	}
	return res.RowsAffected()
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}
