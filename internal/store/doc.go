// Package store persists the curation cache in a single SQLite file: streams,
// their parsed songs, and keyword-matched candidate comments.
//
// The package also owns the stream status state machine. IsValidTransition is
// the pure predicate over the legal graph; SetStatus enforces it strictly and
// AdvanceStatus is the lenient variant automated re-runs use, skipping silently
// when a move is a no-op or illegal. ReplaceSongs swaps a stream's song list
// atomically while carrying curator-set end timestamps and fetched durations
// over to replacement rows with the same identity.
package store
