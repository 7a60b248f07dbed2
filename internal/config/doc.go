// Package config loads, normalizes, and validates highlighter configuration.
//
// It supplies defaults, expands user paths (including tilde shortcuts), reads
// TOML files, and honours environment fallbacks such as HF_TOKEN and
// HIGHLIGHTER_EMOTION_URL. Presets bundle provider sets with scheduler
// constants so one pipeline can run at several levels of evidence.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths and clear validation errors naming the offending TOML key.
package config
