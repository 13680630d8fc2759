package audio

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"dubline/internal/media/ffprobe"
)

// workingSampleRate is the sample rate of the uniform working format. Every
// clip entering the fitting steps or the concat demuxer must share the same
// stream parameters, whatever rate the synthesis provider emits.
const workingSampleRate = 44100

// CommandRunner executes an external binary and returns its combined output.
type CommandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

// ProbeFunc inspects a media file. Matches ffprobe.Inspect.
type ProbeFunc func(ctx context.Context, binary, path string) (ffprobe.Result, error)

// Toolchain wraps the ffmpeg and ffprobe binaries behind pipeline-shaped
// operations.
type Toolchain struct {
	ffmpeg  string
	ffprobe string
	run     CommandRunner
	probe   ProbeFunc
}

// NewToolchain builds a toolchain around the given binary paths. Empty paths
// fall back to the bare binary names resolved via PATH.
func NewToolchain(ffmpegBinary, ffprobeBinary string) *Toolchain {
	if strings.TrimSpace(ffmpegBinary) == "" {
		ffmpegBinary = "ffmpeg"
	}
	if strings.TrimSpace(ffprobeBinary) == "" {
		ffprobeBinary = "ffprobe"
	}
	return &Toolchain{
		ffmpeg:  ffmpegBinary,
		ffprobe: ffprobeBinary,
		run:     defaultCommandRunner,
		probe:   ffprobe.Inspect,
	}
}

// WithCommandRunner allows injecting a custom command runner for tests.
func (t *Toolchain) WithCommandRunner(r CommandRunner) {
	if t != nil && r != nil {
		t.run = r
	}
}

// WithProber allows injecting a custom prober for tests.
func (t *Toolchain) WithProber(p ProbeFunc) {
	if t != nil && p != nil {
		t.probe = p
	}
}

// Available reports whether both binaries resolve on PATH or at their
// configured locations.
func (t *Toolchain) Available() error {
	for _, binary := range []string{t.ffmpeg, t.ffprobe} {
		if strings.ContainsRune(binary, os.PathSeparator) {
			if _, err := os.Stat(binary); err != nil {
				return fmt.Errorf("binary not found: %s", binary)
			}
			continue
		}
		if _, err := exec.LookPath(binary); err != nil {
			return fmt.Errorf("binary not found on PATH: %s", binary)
		}
	}
	return nil
}

// DurationMillis probes a file and returns its duration in milliseconds.
func (t *Toolchain) DurationMillis(ctx context.Context, path string) (int64, error) {
	result, err := t.probe(ctx, t.ffprobe, path)
	if err != nil {
		return 0, err
	}
	millis := result.DurationMillis()
	if millis <= 0 {
		return 0, fmt.Errorf("no duration reported for %s", path)
	}
	return millis, nil
}

// ExtractAudio pulls the first audio stream from a media container into a
// mono 16 kHz WAV suitable for transcription.
func (t *Toolchain) ExtractAudio(ctx context.Context, src, dst string) error {
	args := []string{
		"-y", "-v", "error",
		"-i", src,
		"-vn", "-map", "0:a:0",
		"-ac", "1", "-ar", "16000",
		"-c:a", "pcm_s16le",
		dst,
	}
	return t.exec(ctx, "extract audio", args)
}

// Silence writes a silent WAV of the given length.
func (t *Toolchain) Silence(ctx context.Context, dst string, millis int64) error {
	if millis <= 0 {
		return fmt.Errorf("silence length must be positive, got %d", millis)
	}
	args := []string{
		"-y", "-v", "error",
		"-f", "lavfi",
		"-i", fmt.Sprintf("anullsrc=r=%d:cl=mono", workingSampleRate),
		"-t", formatSeconds(millis),
		"-c:a", "pcm_s16le",
		dst,
	}
	return t.exec(ctx, "generate silence", args)
}

// ToWorkingFormat transcodes a clip into 16-bit mono WAV at the working
// sample rate. Applied to every provider synthesis result so downstream
// fitting and concatenation never see mixed stream parameters.
func (t *Toolchain) ToWorkingFormat(ctx context.Context, src, dst string) error {
	args := []string{
		"-y", "-v", "error",
		"-i", src,
		"-ac", "1", "-ar", fmt.Sprintf("%d", workingSampleRate),
		"-c:a", "pcm_s16le",
		dst,
	}
	return t.exec(ctx, "convert to working format", args)
}

// PadToLength appends trailing silence so the clip fills the given length.
// A clip already at or past the target is copied through untouched.
func (t *Toolchain) PadToLength(ctx context.Context, src, dst string, millis int64) error {
	args := []string{
		"-y", "-v", "error",
		"-i", src,
		"-af", fmt.Sprintf("apad=whole_dur=%s", formatSeconds(millis)),
		"-c:a", "pcm_s16le",
		dst,
	}
	return t.exec(ctx, "pad clip", args)
}

// Speedup applies a pitch-preserving tempo change. Factors must sit inside
// atempo's single-stage range; the planner never asks for more than a few
// percent anyway.
func (t *Toolchain) Speedup(ctx context.Context, src, dst string, factor float64) error {
	if factor < 0.5 || factor > 2.0 {
		return fmt.Errorf("atempo factor %.3f outside supported range", factor)
	}
	args := []string{
		"-y", "-v", "error",
		"-i", src,
		"-af", fmt.Sprintf("atempo=%.4f", factor),
		"-c:a", "pcm_s16le",
		dst,
	}
	return t.exec(ctx, "speed up clip", args)
}

// TrimWithFade cuts the clip to the given length with a short fade-out so
// the truncation is not an audible click.
func (t *Toolchain) TrimWithFade(ctx context.Context, src, dst string, millis, fadeMillis int64) error {
	if millis <= 0 {
		return fmt.Errorf("trim length must be positive, got %d", millis)
	}
	if fadeMillis <= 0 || fadeMillis > millis {
		fadeMillis = 50
	}
	fadeStart := millis - fadeMillis
	args := []string{
		"-y", "-v", "error",
		"-i", src,
		"-t", formatSeconds(millis),
		"-af", fmt.Sprintf("afade=t=out:st=%s:d=%s", formatSeconds(fadeStart), formatSeconds(fadeMillis)),
		"-c:a", "pcm_s16le",
		dst,
	}
	return t.exec(ctx, "trim clip", args)
}

// Concat stitches the parts into one stream using the concat demuxer. The
// list file is written next to the destination and removed afterwards.
func (t *Toolchain) Concat(ctx context.Context, parts []string, dst string) error {
	if len(parts) == 0 {
		return fmt.Errorf("no parts to concatenate")
	}
	listPath := dst + ".concat.txt"
	var sb strings.Builder
	for _, part := range parts {
		fmt.Fprintf(&sb, "file '%s'\n", strings.ReplaceAll(part, "'", `'\''`))
	}
	if err := os.WriteFile(listPath, []byte(sb.String()), 0o644); err != nil {
		return fmt.Errorf("write concat list: %w", err)
	}
	defer os.Remove(listPath)

	args := []string{
		"-y", "-v", "error",
		"-f", "concat", "-safe", "0",
		"-i", listPath,
		"-c:a", "pcm_s16le",
		dst,
	}
	return t.exec(ctx, "concatenate clips", args)
}

// EncodeMP3 renders the assembled track to its distributable format.
func (t *Toolchain) EncodeMP3(ctx context.Context, src, dst string) error {
	args := []string{
		"-y", "-v", "error",
		"-i", src,
		"-c:a", "libmp3lame", "-q:a", "4",
		dst,
	}
	return t.exec(ctx, "encode mp3", args)
}

func (t *Toolchain) exec(ctx context.Context, operation string, args []string) error {
	output, err := t.run(ctx, t.ffmpeg, args...)
	if err != nil {
		return fmt.Errorf("%s: %w: %s", operation, err, strings.TrimSpace(string(output)))
	}
	return nil
}

// formatSeconds renders milliseconds as a fractional seconds argument.
func formatSeconds(millis int64) string {
	return fmt.Sprintf("%d.%03d", millis/1000, millis%1000)
}

func defaultCommandRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	return cmd.CombinedOutput()
}

// EnsureParentDir creates the directory holding the given path.
func EnsureParentDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}
