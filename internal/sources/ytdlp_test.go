package sources

import (
	"context"
	"errors"
	"testing"
	"time"

	"setlist/internal/config"
	"setlist/internal/services"
)

type fakeExecutor struct {
	output []byte
	err    error
	calls  [][]string
}

func (f *fakeExecutor) Run(_ context.Context, _ string, args []string) ([]byte, error) {
	f.calls = append(f.calls, args)
	return f.output, f.err
}

func testFetchConfig() config.Fetch {
	return config.Fetch{
		Binary:         "yt-dlp",
		CommentTimeout: 120,
		MaxComments:    100,
	}
}

func TestCommentsParsesPayload(t *testing.T) {
	exec := &fakeExecutor{output: []byte(`{
		"id": "vid123",
		"title": "Singing Stream",
		"comments": [
			{"id": "c1", "author": "viewer", "text": "0:00 start", "like_count": 42, "is_pinned": true},
			{"id": "c2", "author": "other", "text": "nice", "like_count": "1.2K"}
		]
	}`)}
	client, err := New(testFetchConfig(), WithExecutor(exec))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	comments, err := client.Comments(context.Background(), "vid123")
	if err != nil {
		t.Fatalf("Comments: %v", err)
	}
	if len(comments) != 2 {
		t.Fatalf("expected 2 comments, got %d", len(comments))
	}
	if comments[0].LikeCount != "42" || !comments[0].IsPinned {
		t.Fatalf("unexpected first comment: %+v", comments[0])
	}
	if comments[1].LikeCount != "1.2K" {
		t.Fatalf("compact like count must pass through: %+v", comments[1])
	}

	args := exec.calls[0]
	found := false
	for _, arg := range args {
		if arg == "--write-comments" {
			found = true
		}
	}
	if !found {
		t.Fatalf("comment fetch must request comments: %v", args)
	}
}

func TestDescriptionOmitsCommentFlags(t *testing.T) {
	exec := &fakeExecutor{output: []byte(`{"id": "vid123", "description": "setlist below\n0:00 intro"}`)}
	client, err := New(testFetchConfig(), WithExecutor(exec))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	description, err := client.Description(context.Background(), "vid123")
	if err != nil {
		t.Fatalf("Description: %v", err)
	}
	if description != "setlist below\n0:00 intro" {
		t.Fatalf("unexpected description: %q", description)
	}
	for _, arg := range exec.calls[0] {
		if arg == "--write-comments" {
			t.Fatalf("description fetch must not request comments: %v", exec.calls[0])
		}
	}
}

func TestMetadataNormalizesUploadDate(t *testing.T) {
	exec := &fakeExecutor{output: []byte(`{"id": "vid123", "title": "Stream", "channel_id": "UC1", "upload_date": "20240113"}`)}
	client, err := New(testFetchConfig(), WithExecutor(exec))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	meta, err := client.Metadata(context.Background(), "vid123")
	if err != nil {
		t.Fatalf("Metadata: %v", err)
	}
	if meta.UploadDate != "2024-01-13" {
		t.Fatalf("expected normalized date, got %q", meta.UploadDate)
	}
}

func TestFetchFailureIsUnavailable(t *testing.T) {
	exec := &fakeExecutor{err: errors.New("exit status 1")}
	client, err := New(testFetchConfig(), WithExecutor(exec))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, err := client.Comments(context.Background(), "vid123"); !errors.Is(err, services.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if _, err := client.Comments(context.Background(), "  "); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected ErrValidation for blank id, got %v", err)
	}
}

func TestMalformedOutputIsUnavailable(t *testing.T) {
	exec := &fakeExecutor{output: []byte("ERROR: not json")}
	client, err := New(testFetchConfig(), WithExecutor(exec))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := client.Description(context.Background(), "vid123"); !errors.Is(err, services.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestNewRequiresBinary(t *testing.T) {
	if _, err := New(config.Fetch{}); err == nil {
		t.Fatal("expected error for missing binary")
	}
}

func TestRateLimiterSpacesRequests(t *testing.T) {
	limiter := NewRateLimiter(20 * time.Millisecond)
	ctx := context.Background()

	start := time.Now()
	if err := limiter.Wait(ctx); err != nil {
		t.Fatalf("first wait: %v", err)
	}
	if err := limiter.Wait(ctx); err != nil {
		t.Fatalf("second wait: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Fatalf("second request ran too early: %v", elapsed)
	}
}

func TestRateLimiterHonorsCancellation(t *testing.T) {
	limiter := NewRateLimiter(time.Minute)
	ctx := context.Background()
	if err := limiter.Wait(ctx); err != nil {
		t.Fatalf("first wait: %v", err)
	}

	cancelCtx, cancel := context.WithCancel(ctx)
	cancel()
	if err := limiter.Wait(cancelCtx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestRateLimiterZeroIntervalNeverBlocks(t *testing.T) {
	limiter := NewRateLimiter(0)
	for i := 0; i < 3; i++ {
		if err := limiter.Wait(context.Background()); err != nil {
			t.Fatalf("wait %d: %v", i, err)
		}
	}
}
