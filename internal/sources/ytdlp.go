package sources

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"setlist/internal/config"
	"setlist/internal/selector"
	"setlist/internal/services"
)

// Executor abstracts command execution for testability.
type Executor interface {
	Run(ctx context.Context, binary string, args []string) ([]byte, error)
}

// Option configures the client.
type Option func(*Client)

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec Executor) Option {
	return func(c *Client) {
		if exec != nil {
			c.exec = exec
		}
	}
}

// WithRateLimiter replaces the request pacer built from config.
func WithRateLimiter(limiter *RateLimiter) Option {
	return func(c *Client) {
		c.limiter = limiter
	}
}

// Client wraps yt-dlp invocations. It implements CommentSource and
// DescriptionSource.
type Client struct {
	binary             string
	commentTimeout     time.Duration
	descriptionTimeout time.Duration
	maxComments        int
	limiter            *RateLimiter
	exec               Executor
}

// New constructs a yt-dlp client from fetch configuration.
func New(cfg config.Fetch, opts ...Option) (*Client, error) {
	binary := strings.TrimSpace(cfg.Binary)
	if binary == "" {
		return nil, errors.New("fetch binary required")
	}
	client := &Client{
		binary:             binary,
		commentTimeout:     time.Duration(cfg.CommentTimeout) * time.Second,
		descriptionTimeout: time.Duration(cfg.DescriptionTimeout) * time.Second,
		maxComments:        cfg.MaxComments,
		limiter:            NewRateLimiter(time.Duration(cfg.MinRequestInterval) * time.Second),
		exec:               commandExecutor{},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Metadata fetches title, channel, upload date, and description for a video.
func (c *Client) Metadata(ctx context.Context, videoID string) (Metadata, error) {
	payload, err := c.fetch(ctx, videoID, false, c.descriptionTimeout, "fetch_metadata")
	if err != nil {
		return Metadata{}, err
	}
	return Metadata{
		VideoID:     payload.ID,
		Title:       payload.Title,
		ChannelID:   payload.ChannelID,
		UploadDate:  normalizeUploadDate(payload.UploadDate),
		Description: payload.Description,
	}, nil
}

// Comments fetches the comment thread for a video.
func (c *Client) Comments(ctx context.Context, videoID string) ([]selector.Comment, error) {
	payload, err := c.fetch(ctx, videoID, true, c.commentTimeout, "fetch_comments")
	if err != nil {
		return nil, err
	}
	comments := make([]selector.Comment, 0, len(payload.Comments))
	for _, raw := range payload.Comments {
		comments = append(comments, selector.Comment{
			ID:        raw.ID,
			Author:    raw.Author,
			AuthorURL: raw.AuthorURL,
			Text:      raw.Text,
			LikeCount: likeCountString(raw.LikeCount),
			IsPinned:  raw.IsPinned,
		})
	}
	return comments, nil
}

// Description fetches the description text for a video.
func (c *Client) Description(ctx context.Context, videoID string) (string, error) {
	payload, err := c.fetch(ctx, videoID, false, c.descriptionTimeout, "fetch_description")
	if err != nil {
		return "", err
	}
	return payload.Description, nil
}

type videoPayload struct {
	ID          string           `json:"id"`
	Title       string           `json:"title"`
	ChannelID   string           `json:"channel_id"`
	UploadDate  string           `json:"upload_date"`
	Description string           `json:"description"`
	Comments    []commentPayload `json:"comments"`
}

type commentPayload struct {
	ID        string `json:"id"`
	Author    string `json:"author"`
	AuthorURL string `json:"author_url"`
	Text      string `json:"text"`
	LikeCount any    `json:"like_count"`
	IsPinned  bool   `json:"is_pinned"`
}

func (c *Client) fetch(ctx context.Context, videoID string, includeComments bool, timeout time.Duration, operation string) (*videoPayload, error) {
	videoID = strings.TrimSpace(videoID)
	if videoID == "" {
		return nil, services.Wrap(services.ErrValidation, "sources", operation, "video id required", nil)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, services.Wrap(services.ErrUnavailable, "sources", operation, "request pacing interrupted", err)
	}

	fetchCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	args := []string{"--dump-single-json", "--skip-download", "--no-warnings", "--no-progress"}
	if includeComments {
		args = append(args, "--write-comments")
		if c.maxComments > 0 {
			args = append(args, "--extractor-args", fmt.Sprintf("youtube:max_comments=%d", c.maxComments))
		}
	}
	args = append(args, "https://www.youtube.com/watch?v="+videoID)

	output, err := c.exec.Run(fetchCtx, c.binary, args)
	if err != nil {
		return nil, services.Wrap(services.ErrUnavailable, "sources", operation, "yt-dlp failed for "+videoID, err)
	}

	var payload videoPayload
	if err := json.Unmarshal(bytes.TrimSpace(output), &payload); err != nil {
		return nil, services.Wrap(services.ErrUnavailable, "sources", operation, "malformed yt-dlp output for "+videoID, err)
	}
	if payload.ID == "" {
		payload.ID = videoID
	}
	return &payload, nil
}

// likeCountString renders yt-dlp's like_count field, which arrives either as a
// number or as a compact display string depending on extractor version.
func likeCountString(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatInt(int64(v), 10)
	case json.Number:
		return v.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}

// normalizeUploadDate converts yt-dlp's YYYYMMDD form to YYYY-MM-DD.
func normalizeUploadDate(value string) string {
	value = strings.TrimSpace(value)
	if len(value) != 8 {
		return value
	}
	for _, r := range value {
		if r < '0' || r > '9' {
			return value
		}
	}
	return value[:4] + "-" + value[4:6] + "-" + value[6:]
}

type commandExecutor struct{}

func (commandExecutor) Run(ctx context.Context, binary string, args []string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, binary, args...) //nolint:gosec
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if detail := strings.TrimSpace(stderr.String()); detail != "" {
			return nil, fmt.Errorf("%w: %s", err, lastLine(detail))
		}
		return nil, err
	}
	return stdout.Bytes(), nil
}

func lastLine(text string) string {
	lines := strings.Split(text, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return text
}
