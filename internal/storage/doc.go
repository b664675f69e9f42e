// Package storage persists the user notification preferences document.
//
// The document is an arbitrary JSON object owned by the caller; this package
// only checks that it is valid JSON. Backends:
//   - "file": one JSON file, replaced atomically (temp file + rename)
//   - "sqlite": a single row in a key/value table
//   - "redis": a single key
//   - "mongo": a single document
//
// Writes are last-write-wins; there is no cross-process locking.
package storage
