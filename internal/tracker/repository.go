package tracker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/fetrias/techtrack/internal/migrate"
	"github.com/fetrias/techtrack/internal/store"
	"github.com/fetrias/techtrack/internal/tech"
)

// Repository owns the in-memory technology collection and mirrors every
// mutation to the store adapter.
//
// Thread-safety: Repository is safe for concurrent use. Mutations are
// serialized and persisted before the call returns.
type Repository struct {
	mu       sync.RWMutex
	adapter  *store.Adapter
	migrator *migrate.Migrator
	clock    tech.Clock
	logger   *slog.Logger

	records []tech.Record
	lastID  tech.ID

	obs observers
}

// Option configures a Repository.
type Option func(*Repository)

// WithClock sets the clock used for ids, createdAt and deadline checks.
func WithClock(c tech.Clock) Option {
	return func(r *Repository) { r.clock = c }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Repository) { r.logger = l }
}

// WithMigrator replaces the default migrator.
func WithMigrator(m *migrate.Migrator) Option {
	return func(r *Repository) { r.migrator = m }
}

// New creates an empty repository. Call Load before use.
func New(adapter *store.Adapter, opts ...Option) *Repository {
	r := &Repository{
		adapter: adapter,
		clock:   tech.SystemClock{},
		logger:  slog.Default(),
		records: []tech.Record{},
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.migrator == nil {
		r.migrator = migrate.New(adapter, migrate.WithClock(r.clock), migrate.WithLogger(r.logger))
	}
	return r
}

// LoadResult describes what Load found in storage.
type LoadResult struct {
	// Seeded is true if the store was empty and the seed set was written.
	Seeded bool

	// Migration is the migration run; nil when the store was seeded.
	Migration *migrate.Result

	// Recovered holds the parse error if stored data was unreadable and the
	// collection fell back to empty.
	Recovered error

	// Repairs counts stored entries fixed or dropped while loading.
	Repairs Repairs

	// BackupKey is where the stored bytes were copied before a repair or
	// recovery rewrote them. Empty when nothing was rewritten.
	BackupKey string

	// Count is the number of records loaded.
	Count int
}

// Load reads the collection from storage, migrating it first. A store with
// no collection is seeded. Stored entries are repaired where possible (see
// Repairs) and dropped otherwise. Unreadable data yields an empty collection
// and is reported in LoadResult.Recovered rather than as an error. Either
// way the stored bytes are backed up before the cleaned collection is
// saved.
func (r *Repository) Load(ctx context.Context) (*LoadResult, error) {
	raw, found, err := r.adapter.Load(ctx)
	if err != nil {
		return nil, err
	}

	result := &LoadResult{}
	var records []tech.Record

	if !found {
		records = tech.Seed(r.clock.Now())
		if err := r.adapter.Save(ctx, records); err != nil {
			return nil, err
		}
		if err := r.adapter.StampVersion(ctx, r.migrator.CurrentVersion()); err != nil {
			return nil, err
		}
		result.Seeded = true
		r.logger.Info("no saved collection, created default technologies", "key", r.adapter.Key(), "count", len(records))
	} else {
		mig, err := r.migrator.Run(ctx, raw)
		if err != nil {
			return nil, fmt.Errorf("migrate collection: %w", err)
		}
		result.Migration = mig
		result.Recovered = mig.Recovered

		var entries []json.RawMessage
		if result.Recovered == nil {
			if err := json.Unmarshal(mig.Data, &entries); err != nil {
				r.logger.Warn("stored records do not decode, treating collection as empty", "key", r.adapter.Key(), "error", err)
				result.Recovered = &tech.ParseError{Key: r.adapter.Key(), Err: err}
			} else {
				records, result.Repairs = r.repair(entries)
			}
		}

		if result.Recovered != nil || result.Repairs.Any() {
			if records == nil {
				records = []tech.Record{}
			}
			key, err := r.rewrite(ctx, raw, mig, records)
			if err != nil {
				return nil, err
			}
			result.BackupKey = key
		}
	}
	if records == nil {
		records = []tech.Record{}
	}

	r.mu.Lock()
	r.records = records
	r.lastID = 0
	for _, rec := range records {
		if rec.ID > r.lastID {
			r.lastID = rec.ID
		}
	}
	r.mu.Unlock()

	result.Count = len(records)
	r.logger.Debug("collection loaded", "key", r.adapter.Key(), "count", result.Count, "seeded", result.Seeded)
	r.obs.notify(Event{Kind: EventLoaded})
	return result, nil
}

// Watch registers fn to be called after every committed mutation.
// The returned function unregisters it.
func (r *Repository) Watch(fn func(Event)) (cancel func()) {
	return r.obs.add(fn)
}

// List returns a snapshot of the collection in insertion order.
func (r *Repository) List() []tech.Record {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]tech.Record(nil), r.records...)
}

// Len returns the number of records.
func (r *Repository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}

// Get returns the record with the given id.
func (r *Repository) Get(id tech.ID) (tech.Record, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if i := r.indexOf(id); i >= 0 {
		return r.records[i], true
	}
	return tech.Record{}, false
}

// Has reports whether a record with the given id exists.
func (r *Repository) Has(id tech.ID) bool {
	_, ok := r.Get(id)
	return ok
}

// Add validates d, assigns an id (unless supplied) and createdAt (unless
// supplied), appends the record and persists the collection.
func (r *Repository) Add(ctx context.Context, d tech.Draft) (tech.Record, error) {
	r.mu.Lock()

	now := r.clock.Now()
	rec, err := r.newRecord(d, now)
	if err != nil {
		r.mu.Unlock()
		return tech.Record{}, err
	}

	next := make([]tech.Record, len(r.records), len(r.records)+1)
	copy(next, r.records)
	next = append(next, rec)

	if err := r.commit(ctx, "add", next); err != nil {
		r.mu.Unlock()
		return tech.Record{}, err
	}
	if rec.ID > r.lastID {
		r.lastID = rec.ID
	}
	r.mu.Unlock()

	r.logger.Debug("technology added", "id", rec.ID, "title", rec.Title)
	r.obs.notify(Event{Kind: EventAdded, IDs: []tech.ID{rec.ID}})
	return rec, nil
}

// Update merges p into the record with the given id and persists.
// Returns false without writing if no record matches.
func (r *Repository) Update(ctx context.Context, id tech.ID, p tech.Patch) (bool, error) {
	r.mu.Lock()

	i := r.indexOf(id)
	if i < 0 {
		r.mu.Unlock()
		return false, nil
	}
	if p.IsEmpty() {
		r.mu.Unlock()
		return true, nil
	}

	merged, err := r.merge(r.records[i], p, r.clock.Now())
	if err != nil {
		r.mu.Unlock()
		return false, err
	}

	next := append([]tech.Record(nil), r.records...)
	next[i] = merged
	if err := r.commit(ctx, "update", next); err != nil {
		r.mu.Unlock()
		return false, err
	}
	r.mu.Unlock()

	r.logger.Debug("technology updated", "id", id)
	r.obs.notify(Event{Kind: EventUpdated, IDs: []tech.ID{id}})
	return true, nil
}

// BulkUpdate merges p into every record whose id is in ids and persists
// once for the whole batch. Every merged record is validated before
// anything is written; one failure rejects the batch. Returns the number
// of records changed.
func (r *Repository) BulkUpdate(ctx context.Context, ids []tech.ID, p tech.Patch) (int, error) {
	want := make(map[tech.ID]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}

	r.mu.Lock()

	now := r.clock.Now()
	next := append([]tech.Record(nil), r.records...)
	var changed []tech.ID
	for i, rec := range next {
		if !want[rec.ID] {
			continue
		}
		merged, err := r.merge(rec, p, now)
		if err != nil {
			r.mu.Unlock()
			return 0, err
		}
		next[i] = merged
		changed = append(changed, rec.ID)
	}

	if len(changed) == 0 || p.IsEmpty() {
		r.mu.Unlock()
		return len(changed), nil
	}

	if err := r.commit(ctx, "bulk update", next); err != nil {
		r.mu.Unlock()
		return 0, err
	}
	r.mu.Unlock()

	r.logger.Debug("technologies updated in bulk", "count", len(changed))
	r.obs.notify(Event{Kind: EventUpdated, IDs: changed})
	return len(changed), nil
}

// Delete removes the record with the given id and persists.
// Returns false without writing if no record matches.
func (r *Repository) Delete(ctx context.Context, id tech.ID) (bool, error) {
	r.mu.Lock()

	i := r.indexOf(id)
	if i < 0 {
		r.mu.Unlock()
		return false, nil
	}

	next := make([]tech.Record, 0, len(r.records)-1)
	next = append(next, r.records[:i]...)
	next = append(next, r.records[i+1:]...)
	if err := r.commit(ctx, "delete", next); err != nil {
		r.mu.Unlock()
		return false, err
	}
	r.mu.Unlock()

	r.logger.Debug("technology deleted", "id", id)
	r.obs.notify(Event{Kind: EventDeleted, IDs: []tech.ID{id}})
	return true, nil
}

// Clear removes every record and persists an empty collection.
func (r *Repository) Clear(ctx context.Context) error {
	r.mu.Lock()
	if err := r.commit(ctx, "clear", []tech.Record{}); err != nil {
		r.mu.Unlock()
		return err
	}
	r.mu.Unlock()

	r.logger.Info("collection cleared", "key", r.adapter.Key())
	r.obs.notify(Event{Kind: EventCleared})
	return nil
}

// commit persists next and swaps it in. Caller holds r.mu.
func (r *Repository) commit(ctx context.Context, op string, next []tech.Record) error {
	if err := r.adapter.Save(ctx, next); err != nil {
		r.logger.Warn("could not persist collection, keeping previous state", "op", op, "error", err)
		return err
	}
	r.records = next
	return nil
}

// indexOf returns the position of id, or -1. Caller holds r.mu.
func (r *Repository) indexOf(id tech.ID) int {
	for i, rec := range r.records {
		if rec.ID == id {
			return i
		}
	}
	return -1
}

// newRecord builds and validates a record from a draft. Caller holds r.mu.
func (r *Repository) newRecord(d tech.Draft, now time.Time) (tech.Record, error) {
	rec := tech.Record{
		ID:          d.ID,
		Title:       strings.TrimSpace(d.Title),
		Description: strings.TrimSpace(d.Description),
		Status:      d.Status,
		Notes:       d.Notes,
		CreatedAt:   d.CreatedAt,
	}
	if rec.Status == "" {
		rec.Status = tech.StatusNotStarted
	}
	if err := rec.Validate(); err != nil {
		return tech.Record{}, err
	}

	deadline, err := tech.NormalizeDeadline(d.Deadline, now)
	if err != nil {
		return tech.Record{}, err
	}
	rec.Deadline = deadline

	if err := tech.ValidateID(rec.ID); err != nil {
		return tech.Record{}, err
	}
	switch {
	case rec.ID == 0:
		rec.ID = r.freshID(now)
	case r.indexOf(rec.ID) >= 0:
		return tech.Record{}, tech.NewValidationError("id", fmt.Sprintf("id %d already exists", rec.ID))
	}

	if rec.CreatedAt == "" {
		rec.CreatedAt = tech.FormatTimestamp(now)
	} else if _, err := time.Parse(time.RFC3339, rec.CreatedAt); err != nil {
		return tech.Record{}, tech.NewValidationError("createdAt", fmt.Sprintf("invalid timestamp %q", rec.CreatedAt))
	}
	return rec, nil
}

// freshID picks an unused id for a new record. Caller holds r.mu.
func (r *Repository) freshID(now time.Time) tech.ID {
	if id, err := tech.NextID(now, r.lastID); err == nil {
		return id
	}
	used := make(map[tech.ID]bool, len(r.records))
	for _, rec := range r.records {
		used[rec.ID] = true
	}
	return lowestUnusedID(used)
}

// merge applies p to rec, validating only the fields p sets. Deadlines are
// only range-checked when the patch sets them, so an old deadline does not
// block unrelated edits.
func (r *Repository) merge(rec tech.Record, p tech.Patch, now time.Time) (tech.Record, error) {
	if err := p.Validate(); err != nil {
		return tech.Record{}, err
	}
	out := p.Apply(rec)
	if p.Deadline != nil {
		deadline, err := tech.NormalizeDeadline(*p.Deadline, now)
		if err != nil {
			return tech.Record{}, err
		}
		out.Deadline = deadline
	}
	return out, nil
}
