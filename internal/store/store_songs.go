package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"setlist/internal/services"
)

// SongsForStream returns a stream's songs ordered by order_index.
func (s *Store) SongsForStream(ctx context.Context, videoID string) ([]*ParsedSong, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx, `SELECT `+songColumns+` FROM parsed_songs WHERE video_id = ? ORDER BY order_index`, videoID)
	if err != nil {
		return nil, fmt.Errorf("songs for stream: %w", err)
	}
	defer rows.Close()

	var songs []*ParsedSong
	for rows.Next() {
		song, err := scanSong(rows)
		if err != nil {
			return nil, err
		}
		songs = append(songs, song)
	}
	return songs, rows.Err()
}

// GetSong fetches a single parsed song by surrogate id.
func (s *Store) GetSong(ctx context.Context, id int64) (*ParsedSong, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx, `SELECT `+songColumns+` FROM parsed_songs WHERE id = ?`, id)
	song, err := scanSong(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, services.Wrap(services.ErrNotFound, "store", "get song", fmt.Sprintf("song %d", id), nil)
	}
	if err != nil {
		return nil, fmt.Errorf("get song: %w", err)
	}
	return song, nil
}

// ReplaceSongs swaps a stream's entire song list in one transaction. Rows with
// a manually set end timestamp, and rows with a fetched duration, hand those
// fields to the replacement row sharing the same (song_name, artist,
// start_timestamp) identity so re-extraction never discards curator work.
// Order indexes are assigned densely from the slice order.
func (s *Store) ReplaceSongs(ctx context.Context, videoID string, songs []ParsedSong) ([]*ParsedSong, error) {
	ctx = ensureContext(ctx)

	err := retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin replace tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		var exists int
		row := tx.QueryRowContext(ctx, `SELECT COUNT(1) FROM streams WHERE video_id = ?`, videoID)
		if err := row.Scan(&exists); err != nil {
			return fmt.Errorf("check stream: %w", err)
		}
		if exists == 0 {
			return services.Wrap(services.ErrNotFound, "store", "replace songs", videoID, nil)
		}

		preserved, err := snapshotPreserved(ctx, tx, videoID)
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM parsed_songs WHERE video_id = ?`, videoID); err != nil {
			return fmt.Errorf("delete songs: %w", err)
		}

		for index, song := range songs {
			end := song.EndTimestamp
			manual := song.ManualEnd
			duration := song.Duration
			if kept, ok := preserved[song.identity()]; ok {
				if kept.ManualEnd {
					end = kept.EndTimestamp
					manual = true
				}
				if duration == nil {
					duration = kept.Duration
				}
			}
			if _, err := tx.ExecContext(
				ctx,
				`INSERT INTO parsed_songs (video_id, order_index, song_name, artist, start_timestamp, end_timestamp, note, manual_end_ts, duration)
                 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				videoID,
				index,
				song.SongName,
				nullableString(song.Artist),
				song.StartTimestamp,
				nullableString(end),
				nullableString(song.Note),
				boolToInt(manual),
				nullableInt(duration),
			); err != nil {
				return fmt.Errorf("insert song %d: %w", index, err)
			}
		}

		if _, err := tx.ExecContext(
			ctx,
			`UPDATE streams SET updated_at = ? WHERE video_id = ?`,
			time.Now().UTC().Format(time.RFC3339Nano),
			videoID,
		); err != nil {
			return fmt.Errorf("touch stream: %w", err)
		}
		return tx.Commit()
	})
	if err != nil {
		return nil, err
	}
	return s.SongsForStream(ctx, videoID)
}

func snapshotPreserved(ctx context.Context, tx *sql.Tx, videoID string) (map[songIdentity]*ParsedSong, error) {
	rows, err := tx.QueryContext(
		ctx,
		`SELECT `+songColumns+` FROM parsed_songs WHERE video_id = ? AND (manual_end_ts = 1 OR duration IS NOT NULL)`,
		videoID,
	)
	if err != nil {
		return nil, fmt.Errorf("snapshot preserved songs: %w", err)
	}
	defer rows.Close()

	preserved := make(map[songIdentity]*ParsedSong)
	for rows.Next() {
		song, err := scanSong(rows)
		if err != nil {
			return nil, err
		}
		preserved[song.identity()] = song
	}
	return preserved, rows.Err()
}

// DeleteSong removes one parsed song and reindexes the remaining siblings so
// order_index stays dense.
func (s *Store) DeleteSong(ctx context.Context, id int64) error {
	ctx = ensureContext(ctx)
	return retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin delete tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		var videoID string
		row := tx.QueryRowContext(ctx, `SELECT video_id FROM parsed_songs WHERE id = ?`, id)
		if err := row.Scan(&videoID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return services.Wrap(services.ErrNotFound, "store", "delete song", fmt.Sprintf("song %d", id), nil)
			}
			return fmt.Errorf("read song: %w", err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM parsed_songs WHERE id = ?`, id); err != nil {
			return fmt.Errorf("delete song: %w", err)
		}

		if err := reindexSongs(ctx, tx, videoID); err != nil {
			return err
		}
		return tx.Commit()
	})
}

func reindexSongs(ctx context.Context, tx *sql.Tx, videoID string) error {
	rows, err := tx.QueryContext(ctx, `SELECT id FROM parsed_songs WHERE video_id = ? ORDER BY order_index`, videoID)
	if err != nil {
		return fmt.Errorf("read sibling songs: %w", err)
	}
	var ids []int64
	for rows.Next() {
		var songID int64
		if err := rows.Scan(&songID); err != nil {
			rows.Close()
			return err
		}
		ids = append(ids, songID)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	for index, songID := range ids {
		if _, err := tx.ExecContext(ctx, `UPDATE parsed_songs SET order_index = ? WHERE id = ?`, index, songID); err != nil {
			return fmt.Errorf("reindex song %d: %w", songID, err)
		}
	}
	return nil
}

// SetSongEnd stamps an end timestamp on a song. manual marks it as curator
// work so later re-extraction cannot overwrite it.
func (s *Store) SetSongEnd(ctx context.Context, id int64, end string, manual bool) (*ParsedSong, error) {
	res, err := s.execWithRetry(
		ctx,
		`UPDATE parsed_songs SET end_timestamp = ?, manual_end_ts = ? WHERE id = ?`,
		nullableString(end),
		boolToInt(manual),
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("set song end: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return nil, services.Wrap(services.ErrNotFound, "store", "set song end", fmt.Sprintf("song %d", id), nil)
	}
	return s.GetSong(ctx, id)
}

// SetSongDuration records the enrichment collaborator's duration in seconds.
func (s *Store) SetSongDuration(ctx context.Context, id int64, seconds int) (*ParsedSong, error) {
	res, err := s.execWithRetry(ctx, `UPDATE parsed_songs SET duration = ? WHERE id = ?`, seconds, id)
	if err != nil {
		return nil, fmt.Errorf("set song duration: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return nil, services.Wrap(services.ErrNotFound, "store", "set song duration", fmt.Sprintf("song %d", id), nil)
	}
	return s.GetSong(ctx, id)
}
