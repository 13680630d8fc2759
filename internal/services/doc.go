// Package services holds shared plumbing for external-service integrations:
// the error taxonomy stages use to classify failures, and context helpers
// that carry job identity through stage execution.
//
// Provider clients live in subpackages (stt, translate, llm, tts); each one
// exposes a narrow interface so stages can be tested against fakes.
package services
