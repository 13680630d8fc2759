package audio_test

import (
	"context"
	"strings"
	"testing"

	"dubline/internal/media/audio"
	"dubline/internal/media/ffprobe"
)

type call struct {
	name string
	args []string
}

func scriptedRunner(calls *[]call) audio.CommandRunner {
	return func(_ context.Context, name string, args ...string) ([]byte, error) {
		*calls = append(*calls, call{name: name, args: args})
		return nil, nil
	}
}

func TestSilenceArguments(t *testing.T) {
	var calls []call
	tc := audio.NewToolchain("ffmpeg", "ffprobe")
	tc.WithCommandRunner(scriptedRunner(&calls))

	if err := tc.Silence(context.Background(), "/tmp/out.wav", 1250); err != nil {
		t.Fatalf("Silence failed: %v", err)
	}
	if len(calls) != 1 {
		t.Fatalf("expected one invocation, got %d", len(calls))
	}
	joined := strings.Join(calls[0].args, " ")
	if !strings.Contains(joined, "anullsrc=r=44100:cl=mono") || !strings.Contains(joined, "-t 1.250") {
		t.Fatalf("unexpected silence args: %s", joined)
	}
}

func TestToWorkingFormatNormalizesStreamParameters(t *testing.T) {
	var calls []call
	tc := audio.NewToolchain("ffmpeg", "ffprobe")
	tc.WithCommandRunner(scriptedRunner(&calls))

	if err := tc.ToWorkingFormat(context.Background(), "raw.wav", "work.wav"); err != nil {
		t.Fatalf("ToWorkingFormat failed: %v", err)
	}
	joined := strings.Join(calls[0].args, " ")
	for _, want := range []string{"-ac 1", "-ar 44100", "pcm_s16le"} {
		if !strings.Contains(joined, want) {
			t.Fatalf("expected %q in conversion args: %s", want, joined)
		}
	}
}

func TestSilenceRejectsZeroLength(t *testing.T) {
	tc := audio.NewToolchain("", "")
	tc.WithCommandRunner(scriptedRunner(&[]call{}))
	if err := tc.Silence(context.Background(), "/tmp/out.wav", 0); err == nil {
		t.Fatal("expected error for zero-length silence")
	}
}

func TestSpeedupBounds(t *testing.T) {
	var calls []call
	tc := audio.NewToolchain("ffmpeg", "ffprobe")
	tc.WithCommandRunner(scriptedRunner(&calls))
	ctx := context.Background()

	if err := tc.Speedup(ctx, "in.wav", "out.wav", 1.05); err != nil {
		t.Fatalf("Speedup failed: %v", err)
	}
	if !strings.Contains(strings.Join(calls[0].args, " "), "atempo=1.0500") {
		t.Fatalf("unexpected atempo args: %v", calls[0].args)
	}
	if err := tc.Speedup(ctx, "in.wav", "out.wav", 2.5); err == nil {
		t.Fatal("expected error for out-of-range factor")
	}
}

func TestTrimWithFadePlacesFadeAtTail(t *testing.T) {
	var calls []call
	tc := audio.NewToolchain("ffmpeg", "ffprobe")
	tc.WithCommandRunner(scriptedRunner(&calls))

	if err := tc.TrimWithFade(context.Background(), "in.wav", "out.wav", 1000, 50); err != nil {
		t.Fatalf("TrimWithFade failed: %v", err)
	}
	joined := strings.Join(calls[0].args, " ")
	if !strings.Contains(joined, "-t 1.000") || !strings.Contains(joined, "afade=t=out:st=0.950:d=0.050") {
		t.Fatalf("unexpected trim args: %s", joined)
	}
}

func TestDurationMillisUsesInjectedProber(t *testing.T) {
	tc := audio.NewToolchain("ffmpeg", "ffprobe")
	tc.WithProber(func(_ context.Context, _, _ string) (ffprobe.Result, error) {
		return ffprobe.Result{Format: ffprobe.Format{Duration: "1.234"}}, nil
	})

	millis, err := tc.DurationMillis(context.Background(), "clip.wav")
	if err != nil {
		t.Fatalf("DurationMillis failed: %v", err)
	}
	if millis != 1234 {
		t.Fatalf("expected 1234ms, got %d", millis)
	}
}
