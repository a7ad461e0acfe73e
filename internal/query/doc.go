// Package query searches, filters and summarizes technology records.
//
// Every function here is a pure read over a record slice; none of them
// touch the repository or storage. The Debouncer coalesces rapid search
// input so only the last query in a burst is evaluated.
package query
