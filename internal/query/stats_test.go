package query

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/fetrias/techtrack/internal/tech"
)

func TestSummarize(t *testing.T) {
	s := Summarize(sample)

	assert.Equal(t, 3, s.Total)
	assert.Equal(t, map[tech.Status]int{
		tech.StatusNotStarted: 1,
		tech.StatusInProgress: 1,
		tech.StatusCompleted:  1,
		tech.StatusOnHold:     0,
	}, s.Counts)
	assert.Equal(t, map[tech.Status]int{
		tech.StatusNotStarted: 33,
		tech.StatusInProgress: 33,
		tech.StatusCompleted:  33,
		tech.StatusOnHold:     0,
	}, s.Percents)
}

func TestSummarize_RoundsHalfUp(t *testing.T) {
	records := []tech.Record{
		rec(1, "Go", "d", tech.StatusCompleted),
		rec(2, "Rust", "d", tech.StatusNotStarted),
		rec(3, "Zig", "d", tech.StatusNotStarted),
		rec(4, "Nim", "d", tech.StatusNotStarted),
		rec(5, "Odin", "d", tech.StatusNotStarted),
		rec(6, "V", "d", tech.StatusNotStarted),
		rec(7, "C", "d", tech.StatusNotStarted),
		rec(8, "D", "d", tech.StatusNotStarted),
	}
	// 1/8 = 12.5%
	assert.Equal(t, 13, Summarize(records).Percents[tech.StatusCompleted])
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)
	assert.Equal(t, 0, s.Total)
	for _, st := range tech.AllStatuses {
		assert.Equal(t, 0, s.Counts[st])
		assert.Equal(t, 0, s.Percents[st])
	}
}

func TestUpcoming(t *testing.T) {
	now := time.Date(2026, 10, 15, 18, 0, 0, 0, time.UTC)
	withDeadline := func(id tech.ID, deadline string, status tech.Status) tech.Record {
		r := rec(id, "T", "d", status)
		r.Deadline = deadline
		return r
	}
	records := []tech.Record{
		withDeadline(1, "2026-10-30", tech.StatusInProgress),
		withDeadline(2, "2026-10-15", tech.StatusNotStarted),
		withDeadline(3, "2026-10-14", tech.StatusNotStarted),
		withDeadline(4, "2026-10-20", tech.StatusCompleted),
		withDeadline(5, "2027-06-01", tech.StatusNotStarted),
		withDeadline(6, "", tech.StatusNotStarted),
		withDeadline(7, "2026-10-22", tech.StatusOnHold),
	}

	got := Upcoming(records, now, 30*24*time.Hour)
	ids := make([]tech.ID, len(got))
	for i, r := range got {
		ids[i] = r.ID
	}
	assert.Equal(t, []tech.ID{2, 7, 1}, ids)

	overdue := Overdue(records, now)
	assert.Len(t, overdue, 1)
	assert.Equal(t, tech.ID(3), overdue[0].ID)
}
