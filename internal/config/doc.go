// Package config loads, normalizes, and validates embseg configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// EMBSEG_EARLY_MODEL_DIR. The Config type centralizes every knob the CLI
// needs; segment-command flags override file values after loading.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical formats, and clear validation errors.
package config
