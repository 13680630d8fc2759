// Package logging builds slog loggers for the dubbing pipeline.
//
// Two handler formats are supported: a console handler meant for humans
// watching the daemon, and a JSON handler for machine ingestion. Standard
// field keys live here so every stage logs artifact identifiers the same
// way, and loggers can be carried through context for stage execution.
package logging
