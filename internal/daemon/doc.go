// Package daemon hosts the long-running dubbing pipeline process. It wires
// the provider clients, audio toolchain, and workflow lanes, enforces
// single-instance execution with a lock file, and exposes the operations the
// CLI performs against a running (or stopped) installation.
package daemon
