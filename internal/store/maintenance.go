package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// laneTables maps the artifact tables that carry lane claim state.
var laneTables = []string{"transcripts", "subtitle_tracks", "voice_tracks"}

func validLaneTable(table string) error {
	for _, t := range laneTables {
		if t == table {
			return nil
		}
	}
	return fmt.Errorf("unknown lane table %q", table)
}

// ClaimPendingTranscript atomically moves the oldest pending transcript to
// running and returns it. A nil result means the lane queue is empty.
func (s *Store) ClaimPendingTranscript(ctx context.Context) (*Transcript, error) {
	id, err := s.claimOldestPending(ctx, "transcripts")
	if err != nil || id == 0 {
		return nil, err
	}
	return s.GetTranscript(ctx, id)
}

// ClaimPendingSubtitleTrack atomically moves the oldest pending subtitle
// track to running and returns it.
func (s *Store) ClaimPendingSubtitleTrack(ctx context.Context) (*SubtitleTrack, error) {
	id, err := s.claimOldestPending(ctx, "subtitle_tracks")
	if err != nil || id == 0 {
		return nil, err
	}
	return s.GetSubtitleTrack(ctx, id)
}

// ClaimPendingVoiceTrack atomically moves the oldest pending voice track to
// running and returns it.
func (s *Store) ClaimPendingVoiceTrack(ctx context.Context) (*VoiceTrack, error) {
	id, err := s.claimOldestPending(ctx, "voice_tracks")
	if err != nil || id == 0 {
		return nil, err
	}
	return s.GetVoiceTrack(ctx, id)
}

// claimOldestPending performs a status guarded claim. The WHERE clause on
// status makes concurrent claimers lose cleanly instead of double running.
func (s *Store) claimOldestPending(ctx context.Context, table string) (int64, error) {
	if err := validLaneTable(table); err != nil {
		return 0, err
	}
	for {
		row := s.db.QueryRowContext(
			ctx,
			`SELECT id FROM `+table+` WHERE status = ? ORDER BY created_at, id LIMIT 1`,
			StatusPending,
		)
		var id int64
		err := row.Scan(&id)
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		if err != nil {
			return 0, fmt.Errorf("select pending from %s: %w", table, err)
		}

		res, err := s.db.ExecContext(
			ctx,
			`UPDATE `+table+` SET status = ?, last_heartbeat = ?, updated_at = ? WHERE id = ? AND status = ?`,
			StatusRunning, nowStamp(), nowStamp(), id, StatusPending,
		)
		if err != nil {
			return 0, fmt.Errorf("claim %s row: %w", table, err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("claim %s rows affected: %w", table, err)
		}
		if affected == 1 {
			return id, nil
		}
		// Lost the race, try the next pending row.
	}
}

// Heartbeat refreshes the liveness stamp on a running row so the reclaimer
// leaves it alone.
func (s *Store) Heartbeat(ctx context.Context, table string, id int64) error {
	if err := validLaneTable(table); err != nil {
		return err
	}
	_, err := s.db.ExecContext(
		ctx,
		`UPDATE `+table+` SET last_heartbeat = ? WHERE id = ? AND status = ?`,
		nowStamp(), id, StatusRunning,
	)
	if err != nil {
		return fmt.Errorf("heartbeat %s: %w", table, err)
	}
	return nil
}

// ReclaimStale resets running rows whose heartbeat is older than the cutoff
// back to pending, usually after a crash or kill. Returns the total rows
// reclaimed across all lane tables.
func (s *Store) ReclaimStale(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-olderThan).Format(time.RFC3339Nano)
	var total int64
	for _, table := range laneTables {
		res, err := s.db.ExecContext(
			ctx,
			`UPDATE `+table+`
             SET status = ?, last_heartbeat = NULL, updated_at = ?
             WHERE status = ? AND (last_heartbeat IS NULL OR last_heartbeat < ?)`,
			StatusPending, nowStamp(), StatusRunning, cutoff,
		)
		if err != nil {
			return total, fmt.Errorf("reclaim stale %s: %w", table, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return total, fmt.Errorf("reclaim stale %s rows affected: %w", table, err)
		}
		total += n
	}
	return total, nil
}

// RetryFailed resets failed rows under the attempt ceiling back to pending.
// Rows at or past the ceiling stay failed for operator inspection.
func (s *Store) RetryFailed(ctx context.Context, table string, maxAttempts int) (int64, error) {
	if err := validLaneTable(table); err != nil {
		return 0, err
	}
	res, err := s.db.ExecContext(
		ctx,
		`UPDATE `+table+`
         SET status = ?, error_message = NULL, last_heartbeat = NULL, updated_at = ?
         WHERE status = ? AND attempts < ?`,
		StatusPending, nowStamp(), StatusFailed, maxAttempts,
	)
	if err != nil {
		return 0, fmt.Errorf("retry failed %s: %w", table, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("retry failed %s rows affected: %w", table, err)
	}
	return n, nil
}

// StatusCounts tallies rows by status across the lane tables.
func (s *Store) StatusCounts(ctx context.Context) (*HealthSummary, error) {
	summary := &HealthSummary{
		Transcripts:    make(map[Status]int),
		SubtitleTracks: make(map[Status]int),
		VoiceTracks:    make(map[Status]int),
	}
	targets := map[string]map[Status]int{
		"transcripts":     summary.Transcripts,
		"subtitle_tracks": summary.SubtitleTracks,
		"voice_tracks":    summary.VoiceTracks,
	}
	for table, counts := range targets {
		rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM `+table+` GROUP BY status`)
		if err != nil {
			return nil, fmt.Errorf("status counts %s: %w", table, err)
		}
		for rows.Next() {
			var (
				statusStr string
				n         int
			)
			if err := rows.Scan(&statusStr, &n); err != nil {
				rows.Close()
				return nil, err
			}
			counts[Status(statusStr)] = n
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, err
		}
		rows.Close()
	}
	return summary, nil
}
