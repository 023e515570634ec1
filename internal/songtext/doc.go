// Package songtext converts free-form setlist text into structured song
// fragments. Everything here is pure and stateless: timestamps parse silently
// or not at all, lines without a leading timestamp are filtered out, and block
// parsing infers each entry's end time from the next entry's start.
package songtext
