package store_test

import (
	"context"
	"errors"
	"testing"

	"setlist/internal/services"
	"setlist/internal/store"
	"setlist/internal/testsupport"
)

func TestReplaceSongsAssignsDenseOrder(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()
	testsupport.NewStream(t, st, "vid-1", "Stream")

	songs, err := st.ReplaceSongs(ctx, "vid-1", []store.ParsedSong{
		{SongName: "Song A", StartTimestamp: "0:00", EndTimestamp: "1:30"},
		{SongName: "Song B", StartTimestamp: "1:30", EndTimestamp: "3:00"},
		{SongName: "Song C", StartTimestamp: "3:00"},
	})
	if err != nil {
		t.Fatalf("ReplaceSongs failed: %v", err)
	}
	if len(songs) != 3 {
		t.Fatalf("expected 3 songs, got %d", len(songs))
	}
	for i, song := range songs {
		if song.OrderIndex != i {
			t.Fatalf("expected dense order, song %d has index %d", i, song.OrderIndex)
		}
	}
}

func TestReplaceSongsPreservesManualEnd(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()
	testsupport.NewStream(t, st, "vid-1", "Stream")

	initial, err := st.ReplaceSongs(ctx, "vid-1", []store.ParsedSong{
		{SongName: "Song A", StartTimestamp: "0:00", EndTimestamp: "1:30"},
		{SongName: "Song B", StartTimestamp: "1:30"},
	})
	if err != nil {
		t.Fatalf("ReplaceSongs failed: %v", err)
	}
	if _, err := st.SetSongEnd(ctx, initial[0].ID, "1:45", true); err != nil {
		t.Fatalf("SetSongEnd failed: %v", err)
	}

	// Re-extraction produces a different end for the same identity tuple.
	replaced, err := st.ReplaceSongs(ctx, "vid-1", []store.ParsedSong{
		{SongName: "Song A", StartTimestamp: "0:00", EndTimestamp: "1:30"},
		{SongName: "Song B", StartTimestamp: "1:30", EndTimestamp: "4:00"},
	})
	if err != nil {
		t.Fatalf("second ReplaceSongs failed: %v", err)
	}
	if replaced[0].EndTimestamp != "1:45" || !replaced[0].ManualEnd {
		t.Fatalf("manual end not preserved: %+v", replaced[0])
	}
	if replaced[1].EndTimestamp != "4:00" || replaced[1].ManualEnd {
		t.Fatalf("untouched row should take the new parse: %+v", replaced[1])
	}
}

func TestReplaceSongsPreservesDuration(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()
	testsupport.NewStream(t, st, "vid-1", "Stream")

	initial, err := st.ReplaceSongs(ctx, "vid-1", []store.ParsedSong{
		{SongName: "Song A", Artist: "Artist", StartTimestamp: "0:00"},
	})
	if err != nil {
		t.Fatalf("ReplaceSongs failed: %v", err)
	}
	if _, err := st.SetSongDuration(ctx, initial[0].ID, 254); err != nil {
		t.Fatalf("SetSongDuration failed: %v", err)
	}

	replaced, err := st.ReplaceSongs(ctx, "vid-1", []store.ParsedSong{
		{SongName: "Song A", Artist: "Artist", StartTimestamp: "0:00"},
		{SongName: "Song D", StartTimestamp: "5:00"},
	})
	if err != nil {
		t.Fatalf("second ReplaceSongs failed: %v", err)
	}
	if replaced[0].Duration == nil || *replaced[0].Duration != 254 {
		t.Fatalf("duration not preserved: %+v", replaced[0])
	}
	if replaced[1].Duration != nil {
		t.Fatalf("new row should have no duration: %+v", replaced[1])
	}
}

func TestReplaceSongsIdentityMismatchDropsPreserved(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()
	testsupport.NewStream(t, st, "vid-1", "Stream")

	initial, err := st.ReplaceSongs(ctx, "vid-1", []store.ParsedSong{
		{SongName: "Song A", StartTimestamp: "0:00"},
	})
	if err != nil {
		t.Fatalf("ReplaceSongs failed: %v", err)
	}
	if _, err := st.SetSongEnd(ctx, initial[0].ID, "2:00", true); err != nil {
		t.Fatalf("SetSongEnd failed: %v", err)
	}

	// New parse shifted the start; the identity tuple no longer matches.
	replaced, err := st.ReplaceSongs(ctx, "vid-1", []store.ParsedSong{
		{SongName: "Song A", StartTimestamp: "0:05"},
	})
	if err != nil {
		t.Fatalf("second ReplaceSongs failed: %v", err)
	}
	if replaced[0].EndTimestamp != "" || replaced[0].ManualEnd {
		t.Fatalf("mismatched identity must not inherit manual end: %+v", replaced[0])
	}
}

func TestReplaceSongsUnknownStream(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	_, err := st.ReplaceSongs(context.Background(), "missing", nil)
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestDeleteSongReindexesDensely(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()
	testsupport.NewStream(t, st, "vid-1", "Stream")

	songs, err := st.ReplaceSongs(ctx, "vid-1", []store.ParsedSong{
		{SongName: "Song A", StartTimestamp: "0:00"},
		{SongName: "Song B", StartTimestamp: "1:00"},
		{SongName: "Song C", StartTimestamp: "2:00"},
		{SongName: "Song D", StartTimestamp: "3:00"},
	})
	if err != nil {
		t.Fatalf("ReplaceSongs failed: %v", err)
	}

	if err := st.DeleteSong(ctx, songs[1].ID); err != nil {
		t.Fatalf("DeleteSong failed: %v", err)
	}

	remaining, err := st.SongsForStream(ctx, "vid-1")
	if err != nil {
		t.Fatalf("SongsForStream failed: %v", err)
	}
	if len(remaining) != 3 {
		t.Fatalf("expected 3 songs, got %d", len(remaining))
	}
	wantNames := []string{"Song A", "Song C", "Song D"}
	for i, song := range remaining {
		if song.OrderIndex != i {
			t.Fatalf("expected index %d, got %d", i, song.OrderIndex)
		}
		if song.SongName != wantNames[i] {
			t.Fatalf("expected %s at %d, got %s", wantNames[i], i, song.SongName)
		}
	}

	if err := st.DeleteSong(ctx, 9999); !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
