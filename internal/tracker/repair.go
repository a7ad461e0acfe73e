package tracker

import (
	"context"
	"encoding/json"
	"math"
	"strings"

	"github.com/fetrias/techtrack/internal/migrate"
	"github.com/fetrias/techtrack/internal/tech"
)

// Repairs counts what Load changed to make a stored collection valid.
type Repairs struct {
	// Dropped entries were not records at all (wrong field types, not an object).
	Dropped int

	// IDs were fractional, missing, out of range or duplicated and were
	// floored or reassigned.
	IDs int

	// Statuses were unknown or empty and reset to not-started, or written in
	// a non-canonical form.
	Statuses int
}

// Any reports whether anything was repaired.
func (r Repairs) Any() bool {
	return r.Dropped+r.IDs+r.Statuses > 0
}

// storedRecord is a record as read back from storage, before repair.
type storedRecord struct {
	ID          json.RawMessage `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Status      string          `json:"status"`
	Notes       string          `json:"notes"`
	CreatedAt   string          `json:"createdAt"`
	Deadline    string          `json:"deadline"`
}

// repair turns stored entries into records with an enumerated status and a
// unique id in [1, MaxID]. Records keep their order.
func (r *Repository) repair(entries []json.RawMessage) ([]tech.Record, Repairs) {
	var fix Repairs
	records := make([]tech.Record, 0, len(entries))
	used := make(map[tech.ID]bool, len(entries))
	var needID []int

	for i, raw := range entries {
		var s storedRecord
		if err := json.Unmarshal(raw, &s); err != nil || isNull(raw) {
			fix.Dropped++
			r.logger.Warn("dropping stored entry that is not a record", "index", i, "error", err)
			continue
		}

		rec := tech.Record{
			Title:       s.Title,
			Description: s.Description,
			Notes:       s.Notes,
			CreatedAt:   s.CreatedAt,
			Deadline:    s.Deadline,
		}

		st, err := tech.ParseStatus(s.Status)
		if err != nil {
			st = tech.StatusNotStarted
			r.logger.Warn("unknown stored status, resetting", "index", i, "title", s.Title, "status", s.Status)
		}
		if string(st) != s.Status {
			fix.Statuses++
		}
		rec.Status = st

		id, exact, ok := parseStoredID(s.ID)
		switch {
		case ok && !used[id]:
			rec.ID = id
			used[id] = true
			if !exact {
				fix.IDs++
				r.logger.Warn("stored id was not an integer, floored", "index", i, "id", string(s.ID), "floored", id)
			}
		default:
			needID = append(needID, len(records))
		}
		records = append(records, rec)
	}

	if len(needID) > 0 {
		var last tech.ID
		for id := range used {
			if id > last {
				last = id
			}
		}
		now := r.clock.Now()
		for _, idx := range needID {
			id, err := tech.NextID(now, last)
			if err != nil {
				id = lowestUnusedID(used)
			}
			used[id] = true
			if id > last {
				last = id
			}
			r.logger.Warn("stored id missing or duplicated, reassigned", "title", records[idx].Title, "id", id)
			records[idx].ID = id
			fix.IDs++
		}
	}
	return records, fix
}

// rewrite backs up raw and saves records in its place. A migration that
// already backed up raw during this load covers it.
func (r *Repository) rewrite(ctx context.Context, raw []byte, mig *migrate.Result, records []tech.Record) (string, error) {
	key := mig.BackupKey
	if key == "" {
		key = r.adapter.BackupKey(r.clock.Now())
		if err := r.adapter.WriteBackup(ctx, key, raw); err != nil {
			return "", err
		}
	}
	if err := r.adapter.Save(ctx, records); err != nil {
		return "", err
	}
	if mig.ToVersion < r.migrator.CurrentVersion() {
		if err := r.adapter.StampVersion(ctx, r.migrator.CurrentVersion()); err != nil {
			return "", err
		}
	}
	r.logger.Warn("stored collection rewritten after repair", "key", r.adapter.Key(), "backup", key, "count", len(records))
	return key, nil
}

// parseStoredID reads an id as the browser app may have written it: an
// integer, a numeric string, or a fractional number, which is floored.
// exact is false when flooring was needed; ok is false when no usable id
// can be derived.
func parseStoredID(raw json.RawMessage) (id tech.ID, exact, ok bool) {
	if len(raw) == 0 {
		return 0, false, false
	}
	if err := json.Unmarshal(raw, &id); err == nil {
		return id, true, id > 0 && id <= tech.MaxID
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0, false, false
	}
	f = math.Floor(f)
	if f < 1 || f > float64(tech.MaxID) {
		return 0, false, false
	}
	return tech.ID(f), false, true
}

func lowestUnusedID(used map[tech.ID]bool) tech.ID {
	id := tech.ID(1)
	for used[id] {
		id++
	}
	return id
}

func isNull(raw json.RawMessage) bool {
	return strings.TrimSpace(string(raw)) == "null"
}
