// Package textutil provides text helpers shared across the pipeline:
// content hashing for cache keys, boundary-aware clamping for slot budgets,
// and filename sanitization for artifact paths.
package textutil
