// Package store persists pipeline artifacts in SQLite and exposes helpers
// for driving their lifecycle.
//
// Four artifact kinds form an ownership chain: a Transcript (one per owning
// content object) owns Segments and SubtitleTracks; a SubtitleTrack owns
// VoiceTracks. Each job-bearing artifact carries a status, attempt counter,
// heartbeat, and error text so worker lanes can coordinate without extra
// state. The shared translation and synthesis caches also live here; they
// are write-once per key except for the non-competing humanization upgrade.
//
// Claim transitions use a single UPDATE guarded by the expected status, so
// two workers can never double-process one row. Treat this package as the
// single source of truth for lifecycle semantics; status or column changes
// bump the version in schema.go and users clear the database to adopt it.
package store
