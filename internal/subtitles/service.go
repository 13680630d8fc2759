package subtitles

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"dubline/internal/logging"
	"dubline/internal/store"
	"dubline/internal/textutil"
)

// upgradeTimeout bounds the optional re-humanize call on a cache hit. Hits
// must stay fast; a slow LLM falls back to the stored text.
const upgradeTimeout = 10 * time.Second

// Translator is the machine translation surface the lane depends on.
type Translator interface {
	Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error)
	Model() string
}

// Humanizer is the optional naturalness pass. Nil disables it.
type Humanizer interface {
	Humanize(ctx context.Context, text, lang, toneHint string) (string, error)
	Model() string
	PromptVersion() int
}

// TranslationService resolves segment translations through the hash-keyed
// cache, calling providers only on miss.
type TranslationService struct {
	store      *store.Store
	translator Translator
	humanizer  Humanizer
	engine     string
	logger     *slog.Logger
}

// NewTranslationService wires the cache-backed translator.
func NewTranslationService(st *store.Store, translator Translator, humanizer Humanizer, engine string, logger *slog.Logger) *TranslationService {
	if strings.TrimSpace(engine) == "" {
		engine = "openai"
	}
	return &TranslationService{
		store:      st,
		translator: translator,
		humanizer:  humanizer,
		engine:     engine,
		logger:     logging.NewComponentLogger(logger, "translation"),
	}
}

// cacheKey builds the composite cache key for one segment translation. The
// source content hash makes edits miss cleanly instead of serving stale text.
func cacheKey(ownerKind string, ownerID int64, field, targetLang, contentHash string) string {
	return textutil.KeyHash(ownerKind, strconv.FormatInt(ownerID, 10), field, targetLang, contentHash)
}

// TranslateSegment returns the cached or freshly computed translation of one
// segment into the target language.
func (s *TranslationService) TranslateSegment(ctx context.Context, tr *store.Transcript, seg store.Segment, targetLang string) (string, error) {
	contentHash := textutil.ContentHash(seg.Text)
	field := "segment:" + strconv.Itoa(seg.Idx)
	key := cacheKey(tr.OwnerKind, tr.OwnerID, field, targetLang, contentHash)

	entry, err := s.store.GetTranslation(ctx, key)
	if err != nil {
		return "", err
	}
	if entry != nil {
		return s.maybeUpgrade(ctx, entry, targetLang), nil
	}

	translated, err := s.translator.Translate(ctx, seg.Text, tr.Language, targetLang)
	if err != nil {
		return "", err
	}

	text := translated
	humanized := false
	promptVersion := 0
	model := s.translator.Model()
	if s.humanizer != nil {
		// Fail-open: a humanize problem keeps the machine translation.
		if improved, herr := s.humanizer.Humanize(ctx, translated, targetLang, ""); herr == nil && strings.TrimSpace(improved) != "" {
			text = improved
			humanized = true
			promptVersion = s.humanizer.PromptVersion()
			model = s.humanizer.Model()
		} else if herr != nil {
			s.logger.Warn("humanize failed, using machine translation",
				logging.String(logging.FieldLanguage, targetLang),
				logging.Error(herr))
		}
	}

	if err := s.store.PutTranslation(ctx, &store.TranslationEntry{
		CacheKey:      key,
		OwnerKind:     tr.OwnerKind,
		OwnerID:       tr.OwnerID,
		Field:         field,
		Language:      targetLang,
		ContentHash:   contentHash,
		Text:          text,
		Engine:        s.engine,
		Model:         model,
		PromptVersion: promptVersion,
		Humanized:     humanized,
	}); err != nil {
		return "", err
	}
	return text, nil
}

// maybeUpgrade re-humanizes a cache hit when the prompt version has
// advanced. The upgrade is best effort; the hit text is returned unchanged
// if anything goes wrong.
func (s *TranslationService) maybeUpgrade(ctx context.Context, entry *store.TranslationEntry, targetLang string) string {
	if s.humanizer == nil {
		return entry.Text
	}
	current := s.humanizer.PromptVersion()
	if entry.Humanized && entry.PromptVersion >= current {
		return entry.Text
	}
	upgradeCtx, cancel := context.WithTimeout(ctx, upgradeTimeout)
	defer cancel()
	improved, err := s.humanizer.Humanize(upgradeCtx, entry.Text, targetLang, "")
	if err != nil || strings.TrimSpace(improved) == "" {
		return entry.Text
	}
	if err := s.store.UpgradeTranslationHumanized(ctx, entry.CacheKey, improved, s.engine, s.humanizer.Model(), current); err != nil {
		s.logger.Warn("cache upgrade failed", logging.Error(err))
		return entry.Text
	}
	return improved
}
