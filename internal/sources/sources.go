package sources

import (
	"context"

	"setlist/internal/selector"
)

// Metadata is the per-video detail the fetch layer can supply to the store.
type Metadata struct {
	VideoID     string
	Title       string
	ChannelID   string
	UploadDate  string
	Description string
}

// CommentSource fetches the comment thread for a video.
type CommentSource interface {
	Comments(ctx context.Context, videoID string) ([]selector.Comment, error)
}

// DescriptionSource fetches the description text for a video.
type DescriptionSource interface {
	Description(ctx context.Context, videoID string) (string, error)
}
