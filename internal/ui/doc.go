// Package ui renders crawl results and run history for the terminal with lipgloss styles.
//
//   - [RenderSummary] : rows, singers, skipped pairs and output path after a crawl
//   - [RenderHistory] : one line per recorded run, newest first
//   - [RenderProgress] : a single progress line for a [tasks.ProgressUpdate]
//
// Styles come from a shared [Palette]. lipgloss drops colors automatically when stdout is not a terminal.
package ui
