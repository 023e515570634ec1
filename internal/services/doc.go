// Package services defines the shared error taxonomy used across the store,
// the extraction pipeline, and the collaborator clients.
//
// Errors are classified with sentinel markers wrapped via Wrap so callers can
// branch with errors.Is without string matching. NotFound, InvalidTransition
// and Validation surface at API boundaries; Unavailable and Transient stay
// local to the extraction stage that produced them.
package services
