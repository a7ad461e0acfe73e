package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/fetrias/techtrack/internal/tech"
)

// DefaultCollectionKey is the key the browser UI stored its collection under.
const DefaultCollectionKey = "technologies"

// Adapter reads and writes the record collection under a single key.
// It is the only component that touches the medium on behalf of the
// repository and the migrator.
type Adapter struct {
	medium Medium
	key    string
}

// NewAdapter binds a medium to a collection key.
func NewAdapter(medium Medium, key string) *Adapter {
	return &Adapter{medium: medium, key: key}
}

// Key returns the collection key.
func (a *Adapter) Key() string {
	return a.key
}

// VersionKey returns the key holding the stamped schema version.
func (a *Adapter) VersionKey() string {
	return a.key + "_schema_version"
}

// BackupKey returns the backup key for a migration or repair running at t.
func (a *Adapter) BackupKey(t time.Time) string {
	return fmt.Sprintf("%s%d", a.backupPrefix(), t.UnixMilli())
}

// Load returns the raw collection bytes. found is false if the key is absent.
func (a *Adapter) Load(ctx context.Context) (raw []byte, found bool, err error) {
	raw, err = a.medium.Get(ctx, a.key)
	if errors.Is(err, ErrNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("load collection: %w", err)
	}
	return raw, true, nil
}

// Save serializes the full collection and overwrites the key.
// A nil slice is stored as an empty array.
func (a *Adapter) Save(ctx context.Context, records []tech.Record) error {
	if records == nil {
		records = []tech.Record{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("marshal collection: %w", err)
	}
	return a.SaveRaw(ctx, data)
}

// SaveRaw overwrites the collection key with already-encoded bytes.
func (a *Adapter) SaveRaw(ctx context.Context, data []byte) error {
	return a.put(ctx, "save", a.key, data)
}

// WriteBackup stores data under key. Used by migrations and load repairs.
func (a *Adapter) WriteBackup(ctx context.Context, key string, data []byte) error {
	return a.put(ctx, "backup", key, data)
}

// Version returns the stamped schema version; 0 if none was stamped.
func (a *Adapter) Version(ctx context.Context) (int, error) {
	raw, err := a.medium.Get(ctx, a.VersionKey())
	if errors.Is(err, ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("load schema version: %w", err)
	}
	v, err := strconv.Atoi(strings.TrimSpace(string(raw)))
	if err != nil {
		return 0, &tech.ParseError{Key: a.VersionKey(), Err: err}
	}
	return v, nil
}

// StampVersion records the schema version of the stored collection.
func (a *Adapter) StampVersion(ctx context.Context, version int) error {
	return a.put(ctx, "stamp version", a.VersionKey(), []byte(strconv.Itoa(version)))
}

func (a *Adapter) backupPrefix() string {
	return a.key + "_backup_"
}

// Backups lists this collection's backup keys, oldest first.
func (a *Adapter) Backups(ctx context.Context) ([]string, error) {
	keys, err := a.medium.Keys(ctx, a.backupPrefix())
	if err != nil {
		return nil, fmt.Errorf("list backups: %w", err)
	}
	return keys, nil
}

// ReadBackup returns the raw value of one of this collection's backups.
// Keys outside the collection's backup prefix report ErrNotFound.
func (a *Adapter) ReadBackup(ctx context.Context, key string) ([]byte, error) {
	if !strings.HasPrefix(key, a.backupPrefix()) || key == a.backupPrefix() {
		return nil, fmt.Errorf("%q is not a backup of %q: %w", key, a.key, ErrNotFound)
	}
	return a.medium.Get(ctx, key)
}

func (a *Adapter) put(ctx context.Context, op, key string, data []byte) error {
	if err := a.medium.Set(ctx, key, data); err != nil {
		return &tech.PersistenceError{Op: op, Key: key, Err: err}
	}
	return nil
}
