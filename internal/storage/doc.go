// Package storage persists per-run reports as JSON files in a local data
// directory. Reports are append-only history; latest.json always mirrors the
// most recent run for quick inspection.
package storage
