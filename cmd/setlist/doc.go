// Command setlist manages the stream curation cache: discovering streams,
// extracting timestamped song lists from comments and descriptions, and
// walking streams through the review lifecycle.
package main
