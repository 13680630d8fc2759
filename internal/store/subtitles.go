package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const subtitleColumns = "id, transcript_id, language, format, status, content, humanized, humanize_engine, humanize_model, prompt_version, error_message, attempts, last_heartbeat, created_at, updated_at"

func scanSubtitleTrack(scanner rowScanner) (*SubtitleTrack, error) {
	var (
		st           SubtitleTrack
		statusStr    string
		content      sql.NullString
		humanized    int
		engine       sql.NullString
		model        sql.NullString
		errorMessage sql.NullString
		heartbeatRaw sql.NullString
		createdRaw   string
		updatedRaw   string
	)
	if err := scanner.Scan(
		&st.ID, &st.TranscriptID, &st.Language, &st.Format, &statusStr,
		&content, &humanized, &engine, &model, &st.PromptVersion,
		&errorMessage, &st.Attempts, &heartbeatRaw, &createdRaw, &updatedRaw,
	); err != nil {
		return nil, err
	}
	st.Status = Status(statusStr)
	st.Content = content.String
	st.Humanized = humanized != 0
	st.HumanizeEngine = engine.String
	st.HumanizeModel = model.String
	st.ErrorMessage = errorMessage.String
	if heartbeatRaw.Valid {
		if hb, err := parseTimeString(heartbeatRaw.String); err == nil {
			st.LastHeartbeat = &hb
		}
	}
	if created, err := parseTimeString(createdRaw); err == nil {
		st.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw); err == nil {
		st.UpdatedAt = updated
	}
	return &st, nil
}

// EnsureSubtitleTrack returns the track for (transcript, language, format),
// creating a pending one when none exists. Repeat ensures are no-ops.
func (s *Store) EnsureSubtitleTrack(ctx context.Context, transcriptID int64, language, format string) (*SubtitleTrack, error) {
	timestamp := nowStamp()
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO subtitle_tracks (transcript_id, language, format, status, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?)
         ON CONFLICT (transcript_id, language, format) DO NOTHING`,
		transcriptID, language, format, StatusPending, timestamp, timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert subtitle track: %w", err)
	}
	return s.SubtitleTrackByKey(ctx, transcriptID, language, format)
}

// GetSubtitleTrack fetches a subtitle track by identifier.
func (s *Store) GetSubtitleTrack(ctx context.Context, id int64) (*SubtitleTrack, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+subtitleColumns+` FROM subtitle_tracks WHERE id = ?`, id)
	st, err := scanSubtitleTrack(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get subtitle track: %w", err)
	}
	return st, nil
}

// SubtitleTrackByKey fetches the track addressed by its natural key.
func (s *Store) SubtitleTrackByKey(ctx context.Context, transcriptID int64, language, format string) (*SubtitleTrack, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT `+subtitleColumns+` FROM subtitle_tracks WHERE transcript_id = ? AND language = ? AND format = ?`,
		transcriptID, language, format,
	)
	st, err := scanSubtitleTrack(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("subtitle track by key: %w", err)
	}
	return st, nil
}

// SubtitleTracksByTranscript returns every track derived from a transcript.
func (s *Store) SubtitleTracksByTranscript(ctx context.Context, transcriptID int64) ([]*SubtitleTrack, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+subtitleColumns+` FROM subtitle_tracks WHERE transcript_id = ? ORDER BY language, format`,
		transcriptID,
	)
	if err != nil {
		return nil, fmt.Errorf("subtitle tracks by transcript: %w", err)
	}
	defer rows.Close()

	var out []*SubtitleTrack
	for rows.Next() {
		st, err := scanSubtitleTrack(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

// UpdateSubtitleTrack persists changes to an existing subtitle track.
func (s *Store) UpdateSubtitleTrack(ctx context.Context, st *SubtitleTrack) error {
	if st == nil {
		return errors.New("subtitle track is nil")
	}
	st.UpdatedAt = time.Now().UTC()
	_, err := s.db.ExecContext(
		ctx,
		`UPDATE subtitle_tracks
         SET status = ?, content = ?, humanized = ?, humanize_engine = ?, humanize_model = ?,
             prompt_version = ?, error_message = ?, attempts = ?, last_heartbeat = ?, updated_at = ?
         WHERE id = ?`,
		st.Status,
		nullableString(st.Content),
		boolToInt(st.Humanized),
		nullableString(st.HumanizeEngine),
		nullableString(st.HumanizeModel),
		st.PromptVersion,
		nullableString(st.ErrorMessage),
		st.Attempts,
		nullableTime(st.LastHeartbeat),
		st.UpdatedAt.Format(time.RFC3339Nano),
		st.ID,
	)
	if err != nil {
		return fmt.Errorf("update subtitle track: %w", err)
	}
	return nil
}

// ResetSubtitleTrack clears rendered content so the subtitle lane rebuilds
// the track from the current transcript.
func (s *Store) ResetSubtitleTrack(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(
		ctx,
		`UPDATE subtitle_tracks
         SET status = ?, content = NULL, humanized = 0, humanize_engine = NULL,
             humanize_model = NULL, prompt_version = 0, error_message = NULL,
             attempts = 0, last_heartbeat = NULL, updated_at = ?
         WHERE id = ?`,
		StatusPending, nowStamp(), id,
	)
	if err != nil {
		return fmt.Errorf("reset subtitle track: %w", err)
	}
	return nil
}
