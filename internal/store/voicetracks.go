package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const voiceColumns = "id, subtitle_track_id, language, gender_hint, provider, voice_identity, status, audio_path, duration_ms, spoken_text, error_message, attempts, last_heartbeat, created_at, updated_at"

func scanVoiceTrack(scanner rowScanner) (*VoiceTrack, error) {
	var (
		v            VoiceTrack
		statusStr    string
		genderHint   sql.NullString
		identity     sql.NullString
		audioPath    sql.NullString
		durationMS   sql.NullInt64
		spokenText   sql.NullString
		errorMessage sql.NullString
		heartbeatRaw sql.NullString
		createdRaw   string
		updatedRaw   string
	)
	if err := scanner.Scan(
		&v.ID, &v.SubtitleTrackID, &v.Language, &genderHint, &v.Provider, &identity,
		&statusStr, &audioPath, &durationMS, &spokenText,
		&errorMessage, &v.Attempts, &heartbeatRaw, &createdRaw, &updatedRaw,
	); err != nil {
		return nil, err
	}
	v.Status = Status(statusStr)
	v.GenderHint = genderHint.String
	v.VoiceIdentity = identity.String
	v.AudioPath = audioPath.String
	v.DurationMS = durationMS.Int64
	v.SpokenText = spokenText.String
	v.ErrorMessage = errorMessage.String
	if heartbeatRaw.Valid {
		if hb, err := parseTimeString(heartbeatRaw.String); err == nil {
			v.LastHeartbeat = &hb
		}
	}
	if created, err := parseTimeString(createdRaw); err == nil {
		v.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw); err == nil {
		v.UpdatedAt = updated
	}
	return &v, nil
}

// EnsureVoiceTrack returns the voice track for (subtitle track, provider),
// creating a pending one when none exists. The voice identity is pinned at
// creation and never changes for the life of the row.
func (s *Store) EnsureVoiceTrack(ctx context.Context, subtitleTrackID int64, language, genderHint, provider, voiceIdentity string) (*VoiceTrack, error) {
	timestamp := nowStamp()
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO voice_tracks (subtitle_track_id, language, gender_hint, provider, voice_identity, status, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)
         ON CONFLICT (subtitle_track_id, provider) DO NOTHING`,
		subtitleTrackID, language, nullableString(genderHint), provider, nullableString(voiceIdentity),
		StatusPending, timestamp, timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert voice track: %w", err)
	}
	return s.VoiceTrackByKey(ctx, subtitleTrackID, provider)
}

// GetVoiceTrack fetches a voice track by identifier.
func (s *Store) GetVoiceTrack(ctx context.Context, id int64) (*VoiceTrack, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+voiceColumns+` FROM voice_tracks WHERE id = ?`, id)
	v, err := scanVoiceTrack(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get voice track: %w", err)
	}
	return v, nil
}

// VoiceTrackByKey fetches the track addressed by its natural key.
func (s *Store) VoiceTrackByKey(ctx context.Context, subtitleTrackID int64, provider string) (*VoiceTrack, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT `+voiceColumns+` FROM voice_tracks WHERE subtitle_track_id = ? AND provider = ?`,
		subtitleTrackID, provider,
	)
	v, err := scanVoiceTrack(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("voice track by key: %w", err)
	}
	return v, nil
}

// VoiceTracksBySubtitle returns every voice track rendered from a subtitle
// track, ordered by provider.
func (s *Store) VoiceTracksBySubtitle(ctx context.Context, subtitleTrackID int64) ([]*VoiceTrack, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+voiceColumns+` FROM voice_tracks WHERE subtitle_track_id = ? ORDER BY provider`,
		subtitleTrackID,
	)
	if err != nil {
		return nil, fmt.Errorf("voice tracks by subtitle: %w", err)
	}
	defer rows.Close()

	var out []*VoiceTrack
	for rows.Next() {
		v, err := scanVoiceTrack(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// UpdateVoiceTrack persists changes to an existing voice track. The identity
// column is deliberately absent from the update set.
func (s *Store) UpdateVoiceTrack(ctx context.Context, v *VoiceTrack) error {
	if v == nil {
		return errors.New("voice track is nil")
	}
	v.UpdatedAt = time.Now().UTC()
	_, err := s.db.ExecContext(
		ctx,
		`UPDATE voice_tracks
         SET status = ?, audio_path = ?, duration_ms = ?, spoken_text = ?,
             error_message = ?, attempts = ?, last_heartbeat = ?, updated_at = ?
         WHERE id = ?`,
		v.Status,
		nullableString(v.AudioPath),
		v.DurationMS,
		nullableString(v.SpokenText),
		nullableString(v.ErrorMessage),
		v.Attempts,
		nullableTime(v.LastHeartbeat),
		v.UpdatedAt.Format(time.RFC3339Nano),
		v.ID,
	)
	if err != nil {
		return fmt.Errorf("update voice track: %w", err)
	}
	return nil
}

// BackfillVoiceTrack fills empty hint and identity fields on an existing
// voice track. A previously set, non-empty identity is never overwritten;
// the guard lives in the SQL so repair paths cannot bypass it.
func (s *Store) BackfillVoiceTrack(ctx context.Context, id int64, genderHint, voiceIdentity string) error {
	_, err := s.db.ExecContext(
		ctx,
		`UPDATE voice_tracks
         SET gender_hint = CASE WHEN gender_hint IS NULL OR gender_hint = '' THEN ? ELSE gender_hint END,
             voice_identity = CASE WHEN voice_identity IS NULL OR voice_identity = '' THEN ? ELSE voice_identity END,
             updated_at = ?
         WHERE id = ?`,
		nullableString(genderHint), nullableString(voiceIdentity), nowStamp(), id,
	)
	if err != nil {
		return fmt.Errorf("backfill voice track: %w", err)
	}
	return nil
}

// ResetVoiceTrack clears synthesis output so the voice lane rebuilds the
// track from the current subtitle content. The pinned identity survives.
func (s *Store) ResetVoiceTrack(ctx context.Context, id int64) error {
	_, err := s.db.ExecContext(
		ctx,
		`UPDATE voice_tracks
         SET status = ?, audio_path = NULL, duration_ms = 0, spoken_text = NULL,
             error_message = NULL, attempts = 0, last_heartbeat = NULL, updated_at = ?
         WHERE id = ?`,
		StatusPending, nowStamp(), id,
	)
	if err != nil {
		return fmt.Errorf("reset voice track: %w", err)
	}
	return nil
}
