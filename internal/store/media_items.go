package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// EnsureMediaItem registers a media file as an owning content object,
// returning the existing row when the path was registered before.
func (s *Store) EnsureMediaItem(ctx context.Context, title, sourcePath, speakerGender string) (*MediaItem, error) {
	if sourcePath == "" {
		return nil, errors.New("source path is required")
	}
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO media_items (title, source_path, speaker_gender, created_at)
         VALUES (?, ?, ?, ?)
         ON CONFLICT (source_path) DO NOTHING`,
		title, sourcePath, nullableString(speakerGender), nowStamp(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert media item: %w", err)
	}
	return s.MediaItemByPath(ctx, sourcePath)
}

// GetMediaItem fetches a media item by identifier.
func (s *Store) GetMediaItem(ctx context.Context, id int64) (*MediaItem, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT id, title, source_path, speaker_gender, created_at FROM media_items WHERE id = ?`,
		id,
	)
	return scanMediaItem(row)
}

// MediaItemByPath fetches a media item by its registered source path.
func (s *Store) MediaItemByPath(ctx context.Context, sourcePath string) (*MediaItem, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT id, title, source_path, speaker_gender, created_at FROM media_items WHERE source_path = ?`,
		sourcePath,
	)
	return scanMediaItem(row)
}

// ListMediaItems returns all registered media items ordered by creation time.
func (s *Store) ListMediaItems(ctx context.Context) ([]*MediaItem, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT id, title, source_path, speaker_gender, created_at FROM media_items ORDER BY created_at, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("list media items: %w", err)
	}
	defer rows.Close()

	var out []*MediaItem
	for rows.Next() {
		item, err := scanMediaItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

// DeleteMediaItem removes the owner row itself. Derived artifacts are
// handled separately by DeleteOwner.
func (s *Store) DeleteMediaItem(ctx context.Context, id int64) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM media_items WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete media item: %w", err)
	}
	return nil
}

func scanMediaItem(scanner rowScanner) (*MediaItem, error) {
	var (
		item       MediaItem
		gender     sql.NullString
		createdRaw string
	)
	err := scanner.Scan(&item.ID, &item.Title, &item.SourcePath, &gender, &createdRaw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan media item: %w", err)
	}
	item.SpeakerGender = gender.String
	if created, err := parseTimeString(createdRaw); err == nil {
		item.CreatedAt = created
	}
	return &item, nil
}
