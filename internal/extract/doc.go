// Package extract orchestrates the comment-then-description song extraction
// pipeline: it selects the best timestamp comment, falls back to the video
// description, stores the parsed song list, and advances stream status. Videos
// where neither source yields songs are parked as pending for manual review.
package extract
