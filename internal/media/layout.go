// Package media defines the on-disk layout of pipeline artifacts. Every
// owner gets one directory under the configured media dir with fixed
// subdirectories for source audio, rendered subtitles, and voice tracks.
package media

import (
	"fmt"
	"path/filepath"

	"dubline/internal/textutil"
)

// OwnerDir returns the artifact directory for an owning content object.
func OwnerDir(mediaDir, ownerKind string, ownerID int64) string {
	return filepath.Join(mediaDir, fmt.Sprintf("%s-%d", textutil.SanitizeToken(ownerKind), ownerID))
}

// SourceAudioPath returns the location of the extracted transcription audio.
func SourceAudioPath(mediaDir, ownerKind string, ownerID int64) string {
	return filepath.Join(OwnerDir(mediaDir, ownerKind, ownerID), "audio", "source.wav")
}

// SubtitlePath returns the location of a rendered subtitle file.
func SubtitlePath(mediaDir, ownerKind string, ownerID int64, lang, format string) string {
	name := fmt.Sprintf("%s.%s", textutil.SanitizeToken(lang), textutil.SanitizeToken(format))
	return filepath.Join(OwnerDir(mediaDir, ownerKind, ownerID), "subs", name)
}

// VoiceTrackPath returns the location of a final synthesized voice track.
func VoiceTrackPath(mediaDir, ownerKind string, ownerID int64, lang, identity string) string {
	name := fmt.Sprintf("%s-%s.mp3", textutil.SanitizeToken(lang), textutil.SanitizeToken(identity))
	return filepath.Join(OwnerDir(mediaDir, ownerKind, ownerID), "voice", name)
}
