// Package transfer reads and writes whole-collection JSON snapshots.
//
// Import files have the shape {"technologies": [ ... ]}. Each entry is
// checked against an embedded CUE schema before anything is added, and
// entries whose id is already present are skipped, so importing an export
// twice is a no-op. Exports are a bare, indented JSON array of records.
package transfer
