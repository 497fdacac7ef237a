// Package tasks builds the audio-feature dataset from a list of (singer, track) pairs.
//
// # Build Phases
//
// [DatasetBuilder.Build] runs a single linear pass:
//
//  1. Resolve : each pair is searched in the [services.Catalog], in input order
//  2. Fetch : the resolved ID's audio features are fetched
//  3. Accumulate : successful [models.Record] values are appended
//  4. Dedup : exact duplicate rows are removed, keeping the first occurrence
//  5. Shuffle : rows are permuted with a fixed seed so output order is reproducible
//
// # Skipping
//
// Each pair produces an [Extraction] carrying either a record or the reason it failed. Failed pairs are
// logged at debug level and dropped; a single bad track never aborts the run. In strict mode, failures
// other than [shared.ErrNoMatch] and [shared.ErrNoFeatures] abort the build.
//
// # Errors
//
//   - [shared.ErrNoData] : no pair produced a record
//   - [shared.ErrDuplicateRows] : duplicates survived dedup (a defect, not bad input)
//
// # Progress Reporting
//
// Build accepts an optional channel of [ProgressUpdate]. Sends use select with default so that a slow or
// absent reader never blocks extraction.
package tasks
