package testsupport

import (
	"context"
	"testing"

	"dubline/internal/config"
	"dubline/internal/store"
)

// MustOpenStore opens the artifact store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		st.Close()
	})
	return st
}

// NewTranscript ensures a pending transcript for tests using the provided store.
func NewTranscript(t testing.TB, st *store.Store, ownerKind string, ownerID int64, audioPath string) *store.Transcript {
	t.Helper()

	tr, err := st.EnsureTranscript(context.Background(), ownerKind, ownerID, audioPath)
	if err != nil {
		t.Fatalf("store.EnsureTranscript: %v", err)
	}
	return tr
}
