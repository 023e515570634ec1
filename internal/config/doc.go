// Package config loads, normalizes, and validates setlist configuration from
// TOML. Load resolves the config path (explicit flag, then the default user
// config, then a project-local setlist.toml), applies defaults for missing
// values, expands tilde paths, and rejects values validation cannot repair.
package config
