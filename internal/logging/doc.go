// Package logging builds the shared slog logger from configuration and defines
// the standardized attribute keys used across components.
package logging
