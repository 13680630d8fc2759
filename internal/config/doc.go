// Package config loads, normalizes, and validates dubline's TOML
// configuration. Defaults live in defaults.go; normalization expands paths
// and fills missing values so the rest of the codebase never re-checks them.
package config
