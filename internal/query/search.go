package query

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/fetrias/techtrack/internal/tech"
)

// Search returns the records whose title or description contains q,
// ignoring case. The query is trimmed first; a blank query returns nil.
// Matching is Unicode aware: both sides are NFC-normalized and case-folded,
// so "STRASSE" matches "straße" and decomposed accents match composed ones.
func Search(records []tech.Record, q string) []tech.Record {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil
	}

	fold := cases.Fold()
	needle := normalize(fold, q)

	out := []tech.Record{}
	for _, rec := range records {
		if strings.Contains(normalize(fold, rec.Title), needle) ||
			strings.Contains(normalize(fold, rec.Description), needle) {
			out = append(out, rec)
		}
	}
	return out
}

func normalize(fold cases.Caser, s string) string {
	return norm.NFC.String(fold.String(norm.NFC.String(s)))
}
