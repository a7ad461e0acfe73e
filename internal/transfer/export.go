package transfer

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/fetrias/techtrack/internal/tech"
)

// Lister yields the records to export.
type Lister interface {
	List() []tech.Record
}

// ExportSnapshot renders the collection as a JSON array indented with two
// spaces. It does not modify the repository.
func ExportSnapshot(repo Lister) ([]byte, error) {
	records := repo.List()
	if records == nil {
		records = []tech.Record{}
	}
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal export: %w", err)
	}
	return data, nil
}

// ExportFilename returns the suggested file name for an export made at now.
func ExportFilename(now time.Time) string {
	return "technologies-backup-" + now.Format(tech.DateLayout) + ".json"
}
