// Package sources fetches video metadata, comments, and descriptions through
// an external yt-dlp binary. Fetch failures are tagged services.ErrUnavailable
// so callers can degrade a single extraction stage instead of aborting.
package sources
