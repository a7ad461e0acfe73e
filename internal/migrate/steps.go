package migrate

import "encoding/json"

// RawRecord is a stored record as decoded JSON fields, so steps can drop
// or rewrite fields the current Record type no longer knows about.
type RawRecord = map[string]json.RawMessage

// Step upgrades records from version From to version To.
// Apply reports whether it changed anything.
type Step struct {
	From  int
	To    int
	Name  string
	Apply func(records []RawRecord) ([]RawRecord, bool)
}

// LegacyFields are the fields dropped by the v0 to v1 step.
var LegacyFields = []string{"category", "difficulty", "deadline", "resources"}

// DefaultSteps is the migration table for the current release.
var DefaultSteps = []Step{
	{From: 0, To: 1, Name: "strip-legacy-fields", Apply: StripFields(LegacyFields...)},
}

// StripFields returns a step function that removes the named fields from
// every record that has them.
func StripFields(fields ...string) func([]RawRecord) ([]RawRecord, bool) {
	return func(records []RawRecord) ([]RawRecord, bool) {
		changed := false
		out := make([]RawRecord, len(records))
		for i, rec := range records {
			cleaned := make(RawRecord, len(rec))
			for k, v := range rec {
				cleaned[k] = v
			}
			for _, f := range fields {
				if _, ok := cleaned[f]; ok {
					delete(cleaned, f)
					changed = true
				}
			}
			out[i] = cleaned
		}
		return out, changed
	}
}

// latestVersion returns the highest target version in steps.
func latestVersion(steps []Step) int {
	v := 0
	for _, s := range steps {
		if s.To > v {
			v = s.To
		}
	}
	return v
}
