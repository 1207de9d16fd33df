// Package config loads, normalizes, and validates alltihop configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and resolves the metadata dump, pieces
// directory, rename log, and run catalog against the archive root. Obtain
// settings through this package so downstream code receives sanitized
// absolute paths and canonical enum values.
package config
