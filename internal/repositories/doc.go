// Package repositories implements SQLite persistence for crawl run history.
//
// Key Implementations:
//   - [RunRepository] : one row per crawl with counters, output path, status and timestamps
//
// Sequence numbers provide stable, human-readable ordering (e.g., run #42) independent of UUIDs and
// start timestamps. The [NextSequence] function atomically increments per-table sequence counters in
// dedicated sequence tables.
package repositories
