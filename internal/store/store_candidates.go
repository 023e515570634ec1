package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"setlist/internal/services"
)

// InsertCandidates bulk-inserts keyword-matched comments for a stream.
// Comments carrying a natural comment id that is already stored for the same
// stream are skipped, so repeated scans never duplicate. Returns the number of
// rows actually inserted.
func (s *Store) InsertCandidates(ctx context.Context, videoID string, candidates []CandidateComment) (int, error) {
	if len(candidates) == 0 {
		return 0, nil
	}
	ctx = ensureContext(ctx)

	inserted := 0
	err := retryOnBusy(ctx, func() error {
		inserted = 0
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin candidate tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		var exists int
		row := tx.QueryRowContext(ctx, `SELECT COUNT(1) FROM streams WHERE video_id = ?`, videoID)
		if err := row.Scan(&exists); err != nil {
			return fmt.Errorf("check stream: %w", err)
		}
		if exists == 0 {
			return services.Wrap(services.ErrNotFound, "store", "insert candidates", videoID, nil)
		}

		now := time.Now().UTC().Format(time.RFC3339Nano)
		for _, candidate := range candidates {
			var keywordsJSON any
			if len(candidate.MatchedKeywords) > 0 {
				data, err := json.Marshal(candidate.MatchedKeywords)
				if err != nil {
					return fmt.Errorf("marshal keywords: %w", err)
				}
				keywordsJSON = string(data)
			}
			res, err := tx.ExecContext(
				ctx,
				`INSERT INTO candidate_comments (video_id, comment_cid, author, author_url, text, matched_keywords, status, created_at)
                 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
                 ON CONFLICT(video_id, comment_cid) DO NOTHING`,
				videoID,
				nullableString(candidate.CommentCID),
				nullableString(candidate.Author),
				nullableString(candidate.AuthorURL),
				candidate.Text,
				keywordsJSON,
				CandidatePending,
				now,
			)
			if err != nil {
				return fmt.Errorf("insert candidate: %w", err)
			}
			affected, err := res.RowsAffected()
			if err != nil {
				return fmt.Errorf("rows affected: %w", err)
			}
			inserted += int(affected)
		}
		return tx.Commit()
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

// CandidatesForStream lists stored candidates for a stream, oldest first.
func (s *Store) CandidatesForStream(ctx context.Context, videoID string) ([]*CandidateComment, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx, `SELECT `+candidateColumns+` FROM candidate_comments WHERE video_id = ? ORDER BY id`, videoID)
	if err != nil {
		return nil, fmt.Errorf("candidates for stream: %w", err)
	}
	defer rows.Close()

	var candidates []*CandidateComment
	for rows.Next() {
		candidate, err := scanCandidate(rows)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, candidate)
	}
	return candidates, rows.Err()
}

// GetCandidate fetches a candidate comment by surrogate id.
func (s *Store) GetCandidate(ctx context.Context, id int64) (*CandidateComment, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx, `SELECT `+candidateColumns+` FROM candidate_comments WHERE id = ?`, id)
	candidate, err := scanCandidate(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, services.Wrap(services.ErrNotFound, "store", "get candidate", fmt.Sprintf("candidate %d", id), nil)
	}
	if err != nil {
		return nil, fmt.Errorf("get candidate: %w", err)
	}
	return candidate, nil
}

// SetCandidateStatus moves a candidate between pending, approved and rejected.
func (s *Store) SetCandidateStatus(ctx context.Context, id int64, status CandidateStatus) (*CandidateComment, error) {
	if _, ok := ParseCandidateStatus(string(status)); !ok {
		return nil, services.Wrap(services.ErrValidation, "store", "set candidate status", fmt.Sprintf("unknown status %q", status), nil)
	}
	res, err := s.execWithRetry(ctx, `UPDATE candidate_comments SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return nil, fmt.Errorf("set candidate status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return nil, services.Wrap(services.ErrNotFound, "store", "set candidate status", fmt.Sprintf("candidate %d", id), nil)
	}
	return s.GetCandidate(ctx, id)
}
