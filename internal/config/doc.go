// Package config loads, normalizes, and validates Pixal configuration data.
//
// It supplies repository defaults, anchors every artifact path at the
// configured workspace, reads TOML (or YAML, by file extension), and captures
// the named API credentials from the environment and an optional .env file.
// The Config type centralizes every knob the pipeline and CLI need so the
// artifact layout, external binaries, and validation limits are discovered in
// one pass.
//
// Always obtain settings through this package so downstream code receives
// absolute paths, canonical log formats, and clear validation errors.
package config
