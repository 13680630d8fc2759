// Package stt wraps the speech-to-text provider. Transcription returns the
// detected language plus timestamped segments; everything downstream keys
// off those timings.
package stt
