package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const transcriptColumns = "id, owner_kind, owner_id, status, language, text, audio_path, tone_json, error_message, attempts, last_heartbeat, created_at, updated_at"

func scanTranscript(scanner rowScanner) (*Transcript, error) {
	var (
		t            Transcript
		statusStr    string
		language     sql.NullString
		text         sql.NullString
		audioPath    sql.NullString
		toneJSON     sql.NullString
		errorMessage sql.NullString
		heartbeatRaw sql.NullString
		createdRaw   string
		updatedRaw   string
	)
	if err := scanner.Scan(
		&t.ID, &t.OwnerKind, &t.OwnerID, &statusStr,
		&language, &text, &audioPath, &toneJSON, &errorMessage,
		&t.Attempts, &heartbeatRaw, &createdRaw, &updatedRaw,
	); err != nil {
		return nil, err
	}
	t.Status = Status(statusStr)
	t.Language = language.String
	t.Text = text.String
	t.AudioPath = audioPath.String
	t.ToneJSON = toneJSON.String
	t.ErrorMessage = errorMessage.String
	if heartbeatRaw.Valid {
		if hb, err := parseTimeString(heartbeatRaw.String); err == nil {
			t.LastHeartbeat = &hb
		}
	}
	if created, err := parseTimeString(createdRaw); err == nil {
		t.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw); err == nil {
		t.UpdatedAt = updated
	}
	return &t, nil
}

// EnsureTranscript returns the transcript for the owner, creating a pending
// one with the given source audio reference when none exists. The unique
// (owner_kind, owner_id) index makes concurrent ensures converge on one row.
func (s *Store) EnsureTranscript(ctx context.Context, ownerKind string, ownerID int64, audioPath string) (*Transcript, error) {
	timestamp := nowStamp()
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO transcripts (owner_kind, owner_id, status, audio_path, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?)
         ON CONFLICT (owner_kind, owner_id) DO NOTHING`,
		ownerKind, ownerID, StatusPending, nullableString(audioPath), timestamp, timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert transcript: %w", err)
	}
	return s.TranscriptByOwner(ctx, ownerKind, ownerID)
}

// GetTranscript fetches a transcript by identifier.
func (s *Store) GetTranscript(ctx context.Context, id int64) (*Transcript, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+transcriptColumns+` FROM transcripts WHERE id = ?`, id)
	t, err := scanTranscript(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get transcript: %w", err)
	}
	return t, nil
}

// TranscriptByOwner fetches the transcript for an owning content object.
func (s *Store) TranscriptByOwner(ctx context.Context, ownerKind string, ownerID int64) (*Transcript, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT `+transcriptColumns+` FROM transcripts WHERE owner_kind = ? AND owner_id = ?`,
		ownerKind, ownerID,
	)
	t, err := scanTranscript(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("transcript by owner: %w", err)
	}
	return t, nil
}

// UpdateTranscript persists changes to an existing transcript.
func (s *Store) UpdateTranscript(ctx context.Context, t *Transcript) error {
	if t == nil {
		return errors.New("transcript is nil")
	}
	t.UpdatedAt = time.Now().UTC()
	_, err := s.db.ExecContext(
		ctx,
		`UPDATE transcripts
         SET status = ?, language = ?, text = ?, audio_path = ?, tone_json = ?,
             error_message = ?, attempts = ?, last_heartbeat = ?, updated_at = ?
         WHERE id = ?`,
		t.Status,
		nullableString(t.Language),
		nullableString(t.Text),
		nullableString(t.AudioPath),
		nullableString(t.ToneJSON),
		nullableString(t.ErrorMessage),
		t.Attempts,
		nullableTime(t.LastHeartbeat),
		t.UpdatedAt.Format(time.RFC3339Nano),
		t.ID,
	)
	if err != nil {
		return fmt.Errorf("update transcript: %w", err)
	}
	return nil
}

// ListTranscripts returns all transcripts ordered by creation time.
func (s *Store) ListTranscripts(ctx context.Context) ([]*Transcript, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+transcriptColumns+` FROM transcripts ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list transcripts: %w", err)
	}
	defer rows.Close()

	var out []*Transcript
	for rows.Next() {
		t, err := scanTranscript(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// ReplaceSegments swaps the full segment set of a transcript in one
// transaction. Segments are the single source of truth for timing, so a
// partial replacement is never acceptable.
func (s *Store) ReplaceSegments(ctx context.Context, transcriptID int64, segments []Segment) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin segment tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `DELETE FROM segments WHERE transcript_id = ?`, transcriptID); err != nil {
		return fmt.Errorf("clear segments: %w", err)
	}
	for i, seg := range segments {
		if seg.EndMS <= seg.StartMS {
			return fmt.Errorf("segment %d: end %d not after start %d", i, seg.EndMS, seg.StartMS)
		}
		if _, err := tx.ExecContext(
			ctx,
			`INSERT INTO segments (transcript_id, idx, start_ms, end_ms, text) VALUES (?, ?, ?, ?, ?)`,
			transcriptID, i, seg.StartMS, seg.EndMS, seg.Text,
		); err != nil {
			return fmt.Errorf("insert segment %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit segments: %w", err)
	}
	return nil
}

// SegmentsByTranscript returns a transcript's segments in index order.
func (s *Store) SegmentsByTranscript(ctx context.Context, transcriptID int64) ([]Segment, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, transcript_id, idx, start_ms, end_ms, text FROM segments WHERE transcript_id = ? ORDER BY idx`,
		transcriptID,
	)
	if err != nil {
		return nil, fmt.Errorf("query segments: %w", err)
	}
	defer rows.Close()

	var out []Segment
	for rows.Next() {
		var seg Segment
		if err := rows.Scan(&seg.ID, &seg.TranscriptID, &seg.Idx, &seg.StartMS, &seg.EndMS, &seg.Text); err != nil {
			return nil, err
		}
		out = append(out, seg)
	}
	return out, rows.Err()
}

// DeleteOwner cascade-deletes every artifact derived from an owning content
// object and returns the stored file paths the caller should remove.
func (s *Store) DeleteOwner(ctx context.Context, ownerKind string, ownerID int64) ([]string, error) {
	t, err := s.TranscriptByOwner(ctx, ownerKind, ownerID)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, nil
	}

	var paths []string
	if t.AudioPath != "" {
		paths = append(paths, t.AudioPath)
	}
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT v.audio_path FROM voice_tracks v
         JOIN subtitle_tracks st ON st.id = v.subtitle_track_id
         WHERE st.transcript_id = ? AND v.audio_path IS NOT NULL`,
		t.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("collect voice audio paths: %w", err)
	}
	for rows.Next() {
		var p sql.NullString
		if err := rows.Scan(&p); err != nil {
			rows.Close()
			return nil, err
		}
		if p.String != "" {
			paths = append(paths, p.String)
		}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	// Segments, subtitle tracks, and voice tracks ride the FK cascade.
	if _, err := s.db.ExecContext(ctx, `DELETE FROM transcripts WHERE id = ?`, t.ID); err != nil {
		return nil, fmt.Errorf("delete transcript: %w", err)
	}
	if _, err := s.db.ExecContext(
		ctx,
		`DELETE FROM translation_cache WHERE owner_kind = ? AND owner_id = ?`,
		ownerKind, ownerID,
	); err != nil {
		return nil, fmt.Errorf("delete translation cache: %w", err)
	}
	return paths, nil
}
