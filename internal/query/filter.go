package query

import (
	"strings"

	"github.com/fetrias/techtrack/internal/tech"
)

// FilterByStatus returns the records with exactly the given status.
func FilterByStatus(records []tech.Record, status tech.Status) []tech.Record {
	out := []tech.Record{}
	for _, rec := range records {
		if rec.Status == status {
			out = append(out, rec)
		}
	}
	return out
}

// Apply narrows records by an optional status and an optional search
// query. An empty status or a blank query leaves that filter off.
func Apply(records []tech.Record, status tech.Status, q string) []tech.Record {
	if status != "" {
		records = FilterByStatus(records, status)
	}
	if strings.TrimSpace(q) != "" {
		records = Search(records, q)
	}
	if records == nil {
		return []tech.Record{}
	}
	return records
}
