package store_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"setlist/internal/services"
	"setlist/internal/store"
	"setlist/internal/testsupport"
)

func TestUpsertCreatesDiscoveredStream(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	stream, err := st.UpsertStream(ctx, &store.Stream{VideoID: "vid-1", Title: "Singing Stream"})
	if err != nil {
		t.Fatalf("UpsertStream failed: %v", err)
	}
	if stream.Status != store.StatusDiscovered {
		t.Fatalf("expected discovered, got %s", stream.Status)
	}
	if stream.CreatedAt.IsZero() || stream.UpdatedAt.IsZero() {
		t.Fatal("expected timestamps to be set")
	}
}

func TestUpsertCoalesceNeverClobbersWithEmpty(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	if _, err := st.UpsertStream(ctx, &store.Stream{VideoID: "vid-1", Title: "Original", ChannelID: "ch-1"}); err != nil {
		t.Fatalf("UpsertStream failed: %v", err)
	}
	updated, err := st.UpsertStream(ctx, &store.Stream{VideoID: "vid-1", RawComment: "0:00 intro"})
	if err != nil {
		t.Fatalf("second UpsertStream failed: %v", err)
	}
	if updated.Title != "Original" || updated.ChannelID != "ch-1" {
		t.Fatalf("empty write clobbered fields: %+v", updated)
	}
	if updated.RawComment != "0:00 intro" {
		t.Fatalf("new field not applied: %+v", updated)
	}
}

func TestUpsertDatePrecisionIsMonotonic(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	if _, err := st.UpsertStream(ctx, &store.Stream{VideoID: "vid-1", Date: "2024-01-15", DateSource: store.DatePrecise}); err != nil {
		t.Fatalf("UpsertStream failed: %v", err)
	}

	demoted, err := st.UpsertStream(ctx, &store.Stream{VideoID: "vid-1", Date: "2024-02-01", DateSource: store.DateRelative})
	if err != nil {
		t.Fatalf("relative UpsertStream failed: %v", err)
	}
	if demoted.Date != "2024-01-15" || demoted.DateSource != store.DatePrecise {
		t.Fatalf("precise date was downgraded: %+v", demoted)
	}

	confirmed, err := st.UpsertStream(ctx, &store.Stream{VideoID: "vid-1", Date: "2024-01-16", DateSource: store.DatePrecise})
	if err != nil {
		t.Fatalf("precise UpsertStream failed: %v", err)
	}
	if confirmed.Date != "2024-01-16" {
		t.Fatalf("precise write should update date: %+v", confirmed)
	}
}

func TestUpsertRejectsUnknownStatus(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	_, err := st.UpsertStream(context.Background(), &store.Stream{VideoID: "vid-1", Status: "bogus"})
	if !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSetStatusEnforcesGraph(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()
	testsupport.NewStream(t, st, "vid-1", "Stream")

	stream, err := st.SetStatus(ctx, "vid-1", store.StatusExtracted)
	if err != nil {
		t.Fatalf("SetStatus failed: %v", err)
	}
	if stream.Status != store.StatusExtracted {
		t.Fatalf("expected extracted, got %s", stream.Status)
	}

	if _, err := st.SetStatus(ctx, "vid-1", store.StatusImported); !errors.Is(err, services.ErrInvalidTransition) {
		t.Fatalf("expected invalid transition, got %v", err)
	}
	if _, err := st.SetStatus(ctx, "missing", store.StatusExtracted); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := st.SetStatus(ctx, "vid-1", "bogus"); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestAdvanceStatusSkipsSilently(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()
	testsupport.NewStream(t, st, "vid-1", "Stream")

	applied, err := st.AdvanceStatus(ctx, "vid-1", store.StatusExtracted)
	if err != nil || !applied {
		t.Fatalf("expected applied transition, got applied=%v err=%v", applied, err)
	}

	// Same state: silent skip.
	applied, err = st.AdvanceStatus(ctx, "vid-1", store.StatusExtracted)
	if err != nil || applied {
		t.Fatalf("expected silent skip, got applied=%v err=%v", applied, err)
	}

	// Illegal move: silent skip, status untouched.
	if _, err := st.SetStatus(ctx, "vid-1", store.StatusApproved); err != nil {
		t.Fatalf("SetStatus failed: %v", err)
	}
	applied, err = st.AdvanceStatus(ctx, "vid-1", store.StatusPending)
	if err != nil || applied {
		t.Fatalf("expected silent skip of illegal move, got applied=%v err=%v", applied, err)
	}
	stream, err := st.GetStream(ctx, "vid-1")
	if err != nil {
		t.Fatalf("GetStream failed: %v", err)
	}
	if stream.Status != store.StatusApproved {
		t.Fatalf("lenient skip must leave status, got %s", stream.Status)
	}

	if _, err := st.AdvanceStatus(ctx, "missing", store.StatusExtracted); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestStatusCountsZeroFilled(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()
	testsupport.NewStream(t, st, "vid-1", "Stream A")
	testsupport.NewStream(t, st, "vid-2", "Stream B")
	if _, err := st.SetStatus(ctx, "vid-2", store.StatusPending); err != nil {
		t.Fatalf("SetStatus failed: %v", err)
	}

	counts, err := st.StatusCounts(ctx)
	if err != nil {
		t.Fatalf("StatusCounts failed: %v", err)
	}
	if len(counts) != len(store.AllStatuses()) {
		t.Fatalf("expected all statuses present, got %d", len(counts))
	}
	if counts[store.StatusDiscovered] != 1 || counts[store.StatusPending] != 1 {
		t.Fatalf("unexpected counts: %v", counts)
	}
	if counts[store.StatusImported] != 0 {
		t.Fatalf("expected zero-filled imported, got %d", counts[store.StatusImported])
	}
}

func TestDeleteStreamCascades(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()
	testsupport.NewStream(t, st, "vid-1", "Stream")

	if _, err := st.ReplaceSongs(ctx, "vid-1", []store.ParsedSong{
		{SongName: "Song A", StartTimestamp: "0:00"},
	}); err != nil {
		t.Fatalf("ReplaceSongs failed: %v", err)
	}
	if _, err := st.InsertCandidates(ctx, "vid-1", []store.CandidateComment{
		{CommentCID: "cid-1", Text: "setlist below"},
	}); err != nil {
		t.Fatalf("InsertCandidates failed: %v", err)
	}

	removed, err := st.DeleteStream(ctx, "vid-1")
	if err != nil || !removed {
		t.Fatalf("DeleteStream failed: removed=%v err=%v", removed, err)
	}

	if _, err := st.GetStream(ctx, "vid-1"); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	songs, err := st.SongsForStream(ctx, "vid-1")
	if err != nil {
		t.Fatalf("SongsForStream failed: %v", err)
	}
	if len(songs) != 0 {
		t.Fatalf("expected cascade delete of songs, got %d", len(songs))
	}
	candidates, err := st.CandidatesForStream(ctx, "vid-1")
	if err != nil {
		t.Fatalf("CandidatesForStream failed: %v", err)
	}
	if len(candidates) != 0 {
		t.Fatalf("expected cascade delete of candidates, got %d", len(candidates))
	}
}

func TestReopenKeepsSchemaAndData(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	ctx := context.Background()

	first, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	testsupport.NewStream(t, first, "vid-1", "Stream")
	if err := first.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	second, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer second.Close()

	stream, err := second.GetStream(ctx, "vid-1")
	if err != nil {
		t.Fatalf("GetStream after reopen failed: %v", err)
	}
	if stream.Title != "Stream" {
		t.Fatalf("expected stored title to survive reopen, got %q", stream.Title)
	}

	health, err := second.CheckHealth(ctx)
	if err != nil {
		t.Fatalf("CheckHealth failed: %v", err)
	}
	if len(health.MissingTables) != 0 {
		t.Fatalf("expected no missing tables after reopen, got %v", health.MissingTables)
	}
	if !health.IntegrityCheck {
		t.Fatal("expected integrity check to pass after reopen")
	}
}

func TestCascadeEnforcedAcrossPooledConnections(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()
	testsupport.NewStream(t, st, "vid-1", "Stream")

	if _, err := st.ReplaceSongs(ctx, "vid-1", []store.ParsedSong{
		{SongName: "Song A", StartTimestamp: "0:00"},
		{SongName: "Song B", StartTimestamp: "1:30"},
	}); err != nil {
		t.Fatalf("ReplaceSongs failed: %v", err)
	}

	// Concurrent reads force the pool to open more than one connection, so
	// the delete below may run on a connection other than the one that
	// served the writes.
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := st.StatusCounts(ctx); err != nil {
				t.Errorf("StatusCounts failed: %v", err)
			}
		}()
	}
	wg.Wait()

	removed, err := st.DeleteStream(ctx, "vid-1")
	if err != nil || !removed {
		t.Fatalf("DeleteStream failed: removed=%v err=%v", removed, err)
	}
	songs, err := st.SongsForStream(ctx, "vid-1")
	if err != nil {
		t.Fatalf("SongsForStream failed: %v", err)
	}
	if len(songs) != 0 {
		t.Fatalf("expected cascade delete of songs, got %d", len(songs))
	}
}
