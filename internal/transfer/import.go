package transfer

import (
	"context"
	"errors"
	"fmt"

	"github.com/fetrias/techtrack/internal/tech"
)

// Repository is the part of the record repository the codec needs.
type Repository interface {
	List() []tech.Record
	Has(id tech.ID) bool
	Add(ctx context.Context, d tech.Draft) (tech.Record, error)
}

// Report summarizes an import.
type Report struct {
	// Total is the number of entries in the payload.
	Total int `json:"total"`

	// Added lists the ids of records added, in payload order.
	Added []tech.ID `json:"added"`

	// Skipped counts entries whose id was already present.
	Skipped int `json:"skipped"`

	// DroppedDeadlines counts entries imported without their deadline
	// because it had passed or was too far away.
	DroppedDeadlines int `json:"droppedDeadlines,omitempty"`
}

// ImportMany adds entries one at a time, in order.
//
// An entry whose id already exists is skipped. Entries without an id get a
// fresh one; entries without createdAt get the current time. A deadline
// that no longer falls in the allowed window is dropped rather than
// failing the entry, so old exports stay importable.
//
// The first failed add stops the import. Entries added before it stay
// committed and are listed in the returned report.
func ImportMany(ctx context.Context, repo Repository, entries []Entry) (*Report, error) {
	report := &Report{Total: len(entries), Added: []tech.ID{}}

	for i, e := range entries {
		if e.ID != 0 && repo.Has(e.ID) {
			report.Skipped++
			continue
		}

		rec, err := repo.Add(ctx, e)
		if isDeadlineError(err) {
			e.Deadline = ""
			report.DroppedDeadlines++
			rec, err = repo.Add(ctx, e)
		}
		if err != nil {
			var ve *tech.ValidationError
			if errors.As(err, &ve) {
				cp := *ve
				cp.Index = i
				cp.Title = e.Title
				return report, &cp
			}
			return report, fmt.Errorf("import entry %d: %w", i, err)
		}
		report.Added = append(report.Added, rec.ID)
	}
	return report, nil
}

// Import validates payload and imports its entries. Nothing is added if
// validation fails.
func Import(ctx context.Context, repo Repository, payload []byte) (*Report, error) {
	entries, err := Validate(payload)
	if err != nil {
		return nil, err
	}
	return ImportMany(ctx, repo, entries)
}

func isDeadlineError(err error) bool {
	var ve *tech.ValidationError
	return errors.As(err, &ve) && ve.Field == "deadline"
}
