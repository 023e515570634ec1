// Package selector ranks fetched comments to choose the one most likely to be
// a stream's setlist, and flags keyword-matching comments for manual triage.
package selector
