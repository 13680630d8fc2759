package store

import (
	"context"
	"fmt"
)

// FailJob records a job failure, bumping the attempt counter. With retry set
// the row goes back to pending for another run; otherwise it parks in failed
// with the error text for operator inspection. A row that already reached
// done is left untouched: an error raised by post-completion fan-out must not
// un-finish the row and trigger a paid re-run.
func (s *Store) FailJob(ctx context.Context, table string, id int64, message string, retry bool) error {
	if err := validLaneTable(table); err != nil {
		return err
	}
	status := StatusFailed
	if retry {
		status = StatusPending
	}
	_, err := s.db.ExecContext(
		ctx,
		`UPDATE `+table+`
         SET status = ?, error_message = ?, attempts = attempts + 1,
             last_heartbeat = NULL, updated_at = ?
         WHERE id = ? AND status <> ?`,
		status, nullableString(message), nowStamp(), id, StatusDone,
	)
	if err != nil {
		return fmt.Errorf("fail %s job: %w", table, err)
	}
	return nil
}

// JobAttempts returns the attempt counter for a lane row.
func (s *Store) JobAttempts(ctx context.Context, table string, id int64) (int, error) {
	if err := validLaneTable(table); err != nil {
		return 0, err
	}
	var attempts int
	err := s.db.QueryRowContext(ctx, `SELECT attempts FROM `+table+` WHERE id = ?`, id).Scan(&attempts)
	if err != nil {
		return 0, fmt.Errorf("job attempts %s: %w", table, err)
	}
	return attempts, nil
}
