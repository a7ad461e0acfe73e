package query

import (
	"math"
	"sort"
	"time"

	"github.com/fetrias/techtrack/internal/tech"
)

// Stats aggregates a collection by status.
type Stats struct {
	Total    int                 `json:"total"`
	Counts   map[tech.Status]int `json:"counts"`
	Percents map[tech.Status]int `json:"percents"`
}

// Summarize counts records per status. Percentages are of the total,
// rounded half up; all are zero for an empty collection.
func Summarize(records []tech.Record) Stats {
	s := Stats{
		Total:    len(records),
		Counts:   make(map[tech.Status]int, len(tech.AllStatuses)),
		Percents: make(map[tech.Status]int, len(tech.AllStatuses)),
	}
	for _, st := range tech.AllStatuses {
		s.Counts[st] = 0
	}
	for _, rec := range records {
		s.Counts[rec.Status]++
	}
	for st, n := range s.Counts {
		s.Percents[st] = percent(n, s.Total)
	}
	return s
}

func percent(n, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Floor(float64(n)*100/float64(total) + 0.5))
}

// Upcoming returns the records whose deadline falls between now's date and
// that date plus within, soonest first. Completed records and records
// without a parseable deadline are left out.
func Upcoming(records []tech.Record, now time.Time, within time.Duration) []tech.Record {
	loc := now.Location()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)
	limit := today.Add(within)

	type dated struct {
		rec tech.Record
		at  time.Time
	}
	var hits []dated
	for _, rec := range records {
		if rec.Deadline == "" || rec.Status == tech.StatusCompleted {
			continue
		}
		at, err := time.ParseInLocation(tech.DateLayout, rec.Deadline, loc)
		if err != nil || at.Before(today) || at.After(limit) {
			continue
		}
		hits = append(hits, dated{rec: rec, at: at})
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].at.Before(hits[j].at) })

	out := make([]tech.Record, len(hits))
	for i, h := range hits {
		out[i] = h.rec
	}
	return out
}

// Overdue returns the records with a deadline before now's date that are
// not completed.
func Overdue(records []tech.Record, now time.Time) []tech.Record {
	loc := now.Location()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)

	out := []tech.Record{}
	for _, rec := range records {
		if rec.Deadline == "" || rec.Status == tech.StatusCompleted {
			continue
		}
		at, err := time.ParseInLocation(tech.DateLayout, rec.Deadline, loc)
		if err == nil && at.Before(today) {
			out = append(out, rec)
		}
	}
	return out
}
