// Package ffprobe wraps ffprobe JSON inspection for audio artifacts.
package ffprobe
