// Package language provides unified language token normalization.
//
// Every component that keys caches, gates voice synthesis, or labels
// artifacts by language goes through Normalize so free-form provider output
// ("Brazilian Portuguese", "pt-BR", "Português") always lands on the same
// canonical code. All functions are pure.
package language
