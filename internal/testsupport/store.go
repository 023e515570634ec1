package testsupport

import (
	"context"
	"testing"

	"setlist/internal/config"
	"setlist/internal/store"
)

// MustOpenStore opens a store.Store for tests and registers cleanup.
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

// NewStream creates a discovered stream for tests using the provided store.
func NewStream(t testing.TB, st *store.Store, videoID, title string) *store.Stream {
	t.Helper()

	stream, err := st.UpsertStream(context.Background(), &store.Stream{
		VideoID:   videoID,
		ChannelID: "channel-test",
		Title:     title,
	})
	if err != nil {
		t.Fatalf("store.UpsertStream: %v", err)
	}
	return stream
}
