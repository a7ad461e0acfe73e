package migrate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/fetrias/techtrack/internal/store"
	"github.com/fetrias/techtrack/internal/tech"
)

// Migrator runs the migration table against one collection.
type Migrator struct {
	adapter *store.Adapter
	steps   []Step
	clock   tech.Clock
	logger  *slog.Logger
}

// Option configures a Migrator.
type Option func(*Migrator)

// WithSteps replaces the migration table.
func WithSteps(steps []Step) Option {
	return func(m *Migrator) { m.steps = steps }
}

// WithClock sets the clock used for backup key timestamps.
func WithClock(c tech.Clock) Option {
	return func(m *Migrator) { m.clock = c }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Migrator) { m.logger = l }
}

// New creates a Migrator for the adapter's collection.
func New(adapter *store.Adapter, opts ...Option) *Migrator {
	m := &Migrator{
		adapter: adapter,
		steps:   DefaultSteps,
		clock:   tech.SystemClock{},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// CurrentVersion returns the version Run upgrades to.
func (m *Migrator) CurrentVersion() int {
	return latestVersion(m.steps)
}

// Result describes one Run.
type Result struct {
	// Data is the migrated collection as a JSON array.
	Data []byte

	// FromVersion and ToVersion bracket the run; equal when nothing ran.
	FromVersion int
	ToVersion   int

	// Applied names the steps that ran, in order.
	Applied []string

	// Changed is true if any step altered the records.
	Changed bool

	// BackupKey is the key the pre-migration collection was copied to.
	// Empty when no backup was needed or the backup write failed.
	BackupKey string

	// Recovered holds the parse error if the stored bytes were unreadable
	// and the collection was treated as empty.
	Recovered error
}

// Run migrates raw (the stored collection bytes) to the current version.
//
// Unparseable data is not an error: it is logged and an empty collection is
// returned, leaving the stored bytes untouched. Errors are returned only
// when persisting the migrated collection or stamping the version fails.
func (m *Migrator) Run(ctx context.Context, raw []byte) (*Result, error) {
	var records []RawRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		perr := &tech.ParseError{Key: m.adapter.Key(), Err: err}
		m.logger.Warn("stored collection is unreadable, treating as empty", "key", m.adapter.Key(), "error", err)
		return &Result{Data: []byte("[]"), Recovered: perr}, nil
	}
	if records == nil {
		records = []RawRecord{}
	}

	from, err := m.adapter.Version(ctx)
	if err != nil {
		var pe *tech.ParseError
		if !errors.As(err, &pe) {
			return nil, err
		}
		m.logger.Warn("schema version is unreadable, assuming 0", "key", m.adapter.VersionKey(), "error", err)
		from = 0
	}

	current := m.CurrentVersion()
	result := &Result{Data: raw, FromVersion: from, ToVersion: from}
	if from >= current {
		if from > current {
			m.logger.Warn("stored schema is newer than this build", "stored", from, "current", current)
		}
		return result, nil
	}

	version := from
	for _, step := range m.steps {
		if step.From < version {
			continue
		}
		if step.From != version {
			return nil, fmt.Errorf("no migration from version %d (next step starts at %d)", version, step.From)
		}
		var changed bool
		records, changed = step.Apply(records)
		result.Changed = result.Changed || changed
		result.Applied = append(result.Applied, step.Name)
		version = step.To
		m.logger.Debug("applied migration", "step", step.Name, "from", step.From, "to", step.To, "changed", changed)
	}
	result.ToVersion = version

	if result.Changed {
		backupKey := m.adapter.BackupKey(m.clock.Now())
		if err := m.adapter.WriteBackup(ctx, backupKey, raw); err != nil {
			m.logger.Warn("failed to write migration backup", "key", backupKey, "error", err)
		} else {
			result.BackupKey = backupKey
			m.logger.Info("migration backup saved", "key", backupKey)
		}

		data, err := json.Marshal(records)
		if err != nil {
			return nil, fmt.Errorf("marshal migrated collection: %w", err)
		}
		if err := m.adapter.SaveRaw(ctx, data); err != nil {
			return nil, err
		}
		result.Data = data
	}

	if err := m.adapter.StampVersion(ctx, version); err != nil {
		return nil, err
	}

	m.logger.Info("collection migrated", "from", from, "to", version, "changed", result.Changed)
	return result, nil
}
