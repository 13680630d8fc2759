package subtitles

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Cue is a single timed subtitle entry.
type Cue struct {
	StartMS int64
	EndMS   int64
	Text    string
}

// SortCues orders cues by start time, preserving relative order of equal
// starts.
func SortCues(cues []Cue) {
	sort.SliceStable(cues, func(i, j int) bool {
		return cues[i].StartMS < cues[j].StartMS
	})
}

// FormatSRT and FormatVTT are the supported subtitle formats.
const (
	FormatSRT = "srt"
	FormatVTT = "vtt"
)

// KnownFormat reports whether the format name has a renderer.
func KnownFormat(format string) bool {
	switch format {
	case FormatSRT, FormatVTT:
		return true
	}
	return false
}

// Render converts cues into the named subtitle format. Empty cues are
// skipped; the remainder keep their input order.
func Render(cues []Cue, format string) (string, error) {
	switch format {
	case FormatSRT:
		return renderSRT(cues), nil
	case FormatVTT:
		return renderVTT(cues), nil
	}
	return "", fmt.Errorf("unknown subtitle format %q", format)
}

func renderSRT(cues []Cue) string {
	var sb strings.Builder
	index := 1
	for _, cue := range cues {
		text := strings.TrimSpace(cue.Text)
		if text == "" {
			continue
		}
		fmt.Fprintf(&sb, "%d\n%s --> %s\n%s\n\n", index, srtTimestamp(cue.StartMS), srtTimestamp(cue.EndMS), text)
		index++
	}
	return sb.String()
}

func renderVTT(cues []Cue) string {
	var sb strings.Builder
	sb.WriteString("WEBVTT\n\n")
	for _, cue := range cues {
		text := strings.TrimSpace(cue.Text)
		if text == "" {
			continue
		}
		fmt.Fprintf(&sb, "%s --> %s\n%s\n\n", vttTimestamp(cue.StartMS), vttTimestamp(cue.EndMS), text)
	}
	return sb.String()
}

func srtTimestamp(millis int64) string {
	return timestamp(millis, ",")
}

func vttTimestamp(millis int64) string {
	return timestamp(millis, ".")
}

func timestamp(millis int64, millisSep string) string {
	if millis < 0 {
		millis = 0
	}
	hours := millis / 3600000
	minutes := (millis % 3600000) / 60000
	seconds := (millis % 60000) / 1000
	ms := millis % 1000
	return fmt.Sprintf("%02d:%02d:%02d%s%03d", hours, minutes, seconds, millisSep, ms)
}

// Parse decodes rendered subtitle content back into cues, accepting both
// supported formats. The voice lane round-trips track content through this.
func Parse(content string) ([]Cue, error) {
	normalized := strings.ReplaceAll(content, "\r\n", "\n")
	normalized = strings.TrimSpace(normalized)
	normalized = strings.TrimPrefix(normalized, "WEBVTT")
	normalized = strings.TrimSpace(normalized)
	if normalized == "" {
		return nil, nil
	}

	var cues []Cue
	for _, block := range strings.Split(normalized, "\n\n") {
		lines := strings.Split(strings.TrimSpace(block), "\n")
		cueIdx := -1
		for i, line := range lines {
			if strings.Contains(line, "-->") {
				cueIdx = i
				break
			}
		}
		if cueIdx < 0 {
			continue
		}
		parts := strings.Split(lines[cueIdx], "-->")
		if len(parts) != 2 {
			continue
		}
		start, errStart := parseTimestamp(parts[0])
		end, errEnd := parseTimestamp(parts[1])
		if errStart != nil || errEnd != nil || end <= start {
			return nil, fmt.Errorf("invalid cue timing %q", lines[cueIdx])
		}
		text := strings.TrimSpace(strings.Join(lines[cueIdx+1:], " "))
		if text == "" {
			continue
		}
		cues = append(cues, Cue{StartMS: start, EndMS: end, Text: text})
	}
	SortCues(cues)
	return cues, nil
}

func parseTimestamp(value string) (int64, error) {
	value = strings.TrimSpace(value)
	// SRT uses a comma before milliseconds, VTT a period.
	value = strings.ReplaceAll(value, ",", ".")
	hms := strings.Split(value, ":")
	if len(hms) < 2 || len(hms) > 3 {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	// VTT allows omitting the hour field.
	if len(hms) == 2 {
		hms = append([]string{"0"}, hms...)
	}
	secParts := strings.SplitN(hms[2], ".", 2)
	hours, errH := strconv.ParseInt(hms[0], 10, 64)
	minutes, errM := strconv.ParseInt(hms[1], 10, 64)
	seconds, errS := strconv.ParseInt(secParts[0], 10, 64)
	if errH != nil || errM != nil || errS != nil {
		return 0, fmt.Errorf("invalid timestamp %q", value)
	}
	var millis int64
	if len(secParts) == 2 {
		padded := secParts[1] + strings.Repeat("0", 3-min(3, len(secParts[1])))
		parsed, err := strconv.ParseInt(padded[:3], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid timestamp %q", value)
		}
		millis = parsed
	}
	return hours*3600000 + minutes*60000 + seconds*1000 + millis, nil
}
