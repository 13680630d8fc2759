package daemon

import (
	"context"
	"fmt"

	"dubline/internal/language"
	"dubline/internal/logging"
	"dubline/internal/owners"
	"dubline/internal/store"
)

// RegenerateSubtitles resets an owner's subtitle tracks back to pending so
// the subtitle lane rebuilds them. With no languages given every track is
// reset. Voice tracks riding a reset subtitle track are reset too; their text
// is about to change.
func (d *Daemon) RegenerateSubtitles(ctx context.Context, ref owners.Ref, langs ...string) (int, error) {
	tr, err := d.transcriptFor(ctx, ref)
	if err != nil {
		return 0, err
	}
	tracks, err := d.store.SubtitleTracksByTranscript(ctx, tr.ID)
	if err != nil {
		return 0, err
	}

	wanted := languageFilter(langs)
	reset := 0
	for _, track := range tracks {
		if wanted != nil {
			if _, ok := wanted[language.BaseCode(language.Normalize(track.Language))]; !ok {
				continue
			}
		}
		if err := d.store.ResetSubtitleTrack(ctx, track.ID); err != nil {
			return reset, err
		}
		reset++
		voices, err := d.store.VoiceTracksBySubtitle(ctx, track.ID)
		if err != nil {
			return reset, err
		}
		for _, vt := range voices {
			if err := d.store.ResetVoiceTrack(ctx, vt.ID); err != nil {
				return reset, err
			}
		}
	}
	d.logger.Info("subtitle tracks reset",
		logging.String("owner", ref.String()),
		logging.Int("count", reset))
	return reset, nil
}

// RegenerateVoice resets an owner's voice tracks back to pending. Subtitle
// content is untouched; only synthesis reruns. Voice identities survive the
// reset, so regenerated tracks keep their original voice.
func (d *Daemon) RegenerateVoice(ctx context.Context, ref owners.Ref, langs ...string) (int, error) {
	tr, err := d.transcriptFor(ctx, ref)
	if err != nil {
		return 0, err
	}
	tracks, err := d.store.SubtitleTracksByTranscript(ctx, tr.ID)
	if err != nil {
		return 0, err
	}

	wanted := languageFilter(langs)
	reset := 0
	for _, track := range tracks {
		if wanted != nil {
			if _, ok := wanted[language.BaseCode(language.Normalize(track.Language))]; !ok {
				continue
			}
		}
		voices, err := d.store.VoiceTracksBySubtitle(ctx, track.ID)
		if err != nil {
			return reset, err
		}
		for _, vt := range voices {
			if err := d.store.ResetVoiceTrack(ctx, vt.ID); err != nil {
				return reset, err
			}
			reset++
		}
	}
	d.logger.Info("voice tracks reset",
		logging.String("owner", ref.String()),
		logging.Int("count", reset))
	return reset, nil
}

func (d *Daemon) transcriptFor(ctx context.Context, ref owners.Ref) (*store.Transcript, error) {
	tr, err := d.store.TranscriptByOwner(ctx, ref.Kind, ref.ID)
	if err != nil {
		return nil, err
	}
	if tr == nil {
		return nil, fmt.Errorf("no transcript for owner %s", ref.String())
	}
	return tr, nil
}

func languageFilter(langs []string) map[string]struct{} {
	if len(langs) == 0 {
		return nil
	}
	wanted := make(map[string]struct{}, len(langs))
	for _, lang := range langs {
		wanted[language.BaseCode(language.Normalize(lang))] = struct{}{}
	}
	return wanted
}
