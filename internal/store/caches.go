package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// GetTranslation looks up a cached translation by its composite key hash.
// A miss returns (nil, nil).
func (s *Store) GetTranslation(ctx context.Context, cacheKey string) (*TranslationEntry, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT cache_key, owner_kind, owner_id, field, language, content_hash, text,
                engine, model, prompt_version, humanized, created_at
         FROM translation_cache WHERE cache_key = ?`,
		cacheKey,
	)
	var (
		e          TranslationEntry
		humanized  int
		createdRaw string
	)
	err := row.Scan(
		&e.CacheKey, &e.OwnerKind, &e.OwnerID, &e.Field, &e.Language, &e.ContentHash,
		&e.Text, &e.Engine, &e.Model, &e.PromptVersion, &humanized, &createdRaw,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get translation: %w", err)
	}
	e.Humanized = humanized != 0
	if created, err := parseTimeString(createdRaw); err == nil {
		e.CreatedAt = created
	}
	return &e, nil
}

// PutTranslation stores a translation under its key hash, replacing any
// previous value. Replacement is safe because the key already encodes the
// source content hash and prompt version.
func (s *Store) PutTranslation(ctx context.Context, e *TranslationEntry) error {
	if e == nil {
		return errors.New("translation entry is nil")
	}
	_, err := s.db.ExecContext(
		ctx,
		`INSERT OR REPLACE INTO translation_cache
           (cache_key, owner_kind, owner_id, field, language, content_hash, text,
            engine, model, prompt_version, humanized, created_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.CacheKey, e.OwnerKind, e.OwnerID, e.Field, e.Language, e.ContentHash,
		e.Text, e.Engine, e.Model, e.PromptVersion, boolToInt(e.Humanized), nowStamp(),
	)
	if err != nil {
		return fmt.Errorf("put translation: %w", err)
	}
	return nil
}

// UpgradeTranslationHumanized overwrites a cached translation with its
// humanized rendering. The guard lets raw entries and entries from older
// prompt versions upgrade, and nothing else; cached text never regresses.
func (s *Store) UpgradeTranslationHumanized(ctx context.Context, cacheKey, text, engine, model string, promptVersion int) error {
	_, err := s.db.ExecContext(
		ctx,
		`UPDATE translation_cache
         SET text = ?, engine = ?, model = ?, prompt_version = ?, humanized = 1
         WHERE cache_key = ? AND (humanized = 0 OR prompt_version < ?)`,
		text, engine, model, promptVersion, cacheKey, promptVersion,
	)
	if err != nil {
		return fmt.Errorf("upgrade translation: %w", err)
	}
	return nil
}

// GetSynthesis looks up a cached synthesis result. A miss returns (nil, nil).
func (s *Store) GetSynthesis(ctx context.Context, cacheKey string) (*SynthesisEntry, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT cache_key, audio_path, duration_ms, created_at FROM synthesis_cache WHERE cache_key = ?`,
		cacheKey,
	)
	var (
		e          SynthesisEntry
		createdRaw string
	)
	err := row.Scan(&e.CacheKey, &e.AudioPath, &e.DurationMS, &createdRaw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get synthesis: %w", err)
	}
	if created, err := parseTimeString(createdRaw); err == nil {
		e.CreatedAt = created
	}
	return &e, nil
}

// PutSynthesis stores a synthesized clip reference under its key hash.
func (s *Store) PutSynthesis(ctx context.Context, e *SynthesisEntry) error {
	if e == nil {
		return errors.New("synthesis entry is nil")
	}
	_, err := s.db.ExecContext(
		ctx,
		`INSERT OR REPLACE INTO synthesis_cache (cache_key, audio_path, duration_ms, created_at)
         VALUES (?, ?, ?, ?)`,
		e.CacheKey, e.AudioPath, e.DurationMS, nowStamp(),
	)
	if err != nil {
		return fmt.Errorf("put synthesis: %w", err)
	}
	return nil
}
