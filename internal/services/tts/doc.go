// Package tts wraps the speech synthesis provider. Callers pass the exact
// text and voice identity; slot fitting happens upstream in the voice
// package.
package tts
