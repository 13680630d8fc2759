package store

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a job-bearing artifact.
type Status string

const (
	StatusPending Status = "pending"
	StatusRunning Status = "running"
	StatusDone    Status = "done"
	StatusFailed  Status = "failed"
)

var allStatuses = []Status{StatusPending, StatusRunning, StatusDone, StatusFailed}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// AllStatuses returns the ordered list of known statuses.
func AllStatuses() []Status {
	cp := make([]Status, len(allStatuses))
	copy(cp, allStatuses)
	return cp
}

// ParseStatus converts a string into a known Status.
func ParseStatus(value string) (Status, bool) {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return "", false
	}
	_, ok := statusSet[normalized]
	return normalized, ok
}

// IsTerminal reports whether a status ends the job lifecycle.
func (s Status) IsTerminal() bool {
	return s == StatusDone || s == StatusFailed
}

// ToneProfile captures speaking-style heuristics derived from STT timing.
// PaceMultiplier scales the slot character budget: below 1.0 means the
// speaker talks slower than the language's typical rate.
type ToneProfile struct {
	PaceMultiplier float64 `json:"pace_multiplier"`
	Energy         string  `json:"energy"`
	PauseStyle     string  `json:"pause_style"`
}

// MediaItem is the built-in owning content kind: a media file registered
// directly with the pipeline. SpeakerGender is an optional operator-supplied
// hint, empty when unknown.
type MediaItem struct {
	ID            int64
	Title         string
	SourcePath    string
	SpeakerGender string
	CreatedAt     time.Time
}

// Transcript is the per-owner transcription artifact. At most one exists per
// owning content object; Segments hold the timestamped breakdown.
type Transcript struct {
	ID            int64
	OwnerKind     string
	OwnerID       int64
	Status        Status
	Language      string
	Text          string
	AudioPath     string
	ToneJSON      string
	ErrorMessage  string
	Attempts      int
	LastHeartbeat *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Segment is one timed span of a transcript. Indices are unique and
// contiguous from 0 within a transcript; EndMS > StartMS always holds.
type Segment struct {
	ID           int64
	TranscriptID int64
	Idx          int
	StartMS      int64
	EndMS        int64
	Text         string
}

// SubtitleTrack is the rendered cue content for one (transcript, language,
// format) tuple. Content is only trusted when Status is done.
type SubtitleTrack struct {
	ID             int64
	TranscriptID   int64
	Language       string
	Format         string
	Status         Status
	Content        string
	Humanized      bool
	HumanizeEngine string
	HumanizeModel  string
	PromptVersion  int
	ErrorMessage   string
	Attempts       int
	LastHeartbeat  *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// VoiceTrack is the synthesized audio for one (subtitle track, provider)
// tuple. VoiceIdentity, once set, is never changed by repair paths; only the
// creation path chooses it.
type VoiceTrack struct {
	ID              int64
	SubtitleTrackID int64
	Language        string
	GenderHint      string
	Provider        string
	VoiceIdentity   string
	Status          Status
	AudioPath       string
	DurationMS      int64
	SpokenText      string
	ErrorMessage    string
	Attempts        int
	LastHeartbeat   *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// TranslationEntry is a cached translation with humanization provenance.
type TranslationEntry struct {
	CacheKey      string
	OwnerKind     string
	OwnerID       int64
	Field         string
	Language      string
	ContentHash   string
	Text          string
	Engine        string
	Model         string
	PromptVersion int
	Humanized     bool
	CreatedAt     time.Time
}

// SynthesisEntry is a cached synthesis result keyed by the full request tuple.
type SynthesisEntry struct {
	CacheKey   string
	AudioPath  string
	DurationMS int64
	CreatedAt  time.Time
}

// HealthSummary describes aggregated artifact counts per lifecycle state.
type HealthSummary struct {
	Transcripts    map[Status]int
	SubtitleTracks map[Status]int
	VoiceTracks    map[Status]int
}
