// Package models defines the value types that flow through an extraction run.
//
//   - [Pair] : one configured (singer, track title) lookup
//   - [TrackRef] : a catalog identifier resolved for a Pair
//   - [Features] : the nine numeric audio descriptors returned by the catalog
//   - [Record] : one dataset row, a Pair plus its Features
//   - [Dataset] : the final ordered collection of Records written to CSV
//   - [Run] : a persisted summary of one crawl, kept in the run history database
//
// Records are plain comparable values so that exact-duplicate detection is struct equality.
package models
