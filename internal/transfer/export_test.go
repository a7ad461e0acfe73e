package transfer

import (
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fetrias/techtrack/internal/store"
	"github.com/fetrias/techtrack/internal/tech"
)

type staticLister []tech.Record

func (s staticLister) List() []tech.Record { return s }

func newGoldie(t *testing.T) *goldie.Goldie {
	return goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
}

func TestExportSnapshot_Golden(t *testing.T) {
	records := append(tech.Seed(now), tech.Record{
		ID:          1760520600000,
		Title:       "Go",
		Description: `Goroutines, channels and the "go" tool`,
		Status:      tech.StatusOnHold,
		Notes:       "tour.golang.org",
		CreatedAt:   tech.FormatTimestamp(now.Add(time.Minute)),
		Deadline:    "2027-01-31",
	})

	data, err := ExportSnapshot(staticLister(records))
	require.NoError(t, err)
	newGoldie(t).Assert(t, "export_snapshot", data)
}

func TestExportSnapshot_Empty(t *testing.T) {
	data, err := ExportSnapshot(staticLister(nil))
	require.NoError(t, err)
	newGoldie(t).Assert(t, "export_empty", data)
}

func TestExportSnapshot_DoesNotMutate(t *testing.T) {
	repo := newRepo(t, store.NewMemory(), "")
	before := repo.List()

	first, err := ExportSnapshot(repo)
	require.NoError(t, err)
	second, err := ExportSnapshot(repo)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, before, repo.List())
}

func TestExportFilename(t *testing.T) {
	assert.Equal(t, "technologies-backup-2026-10-15.json", ExportFilename(now))
}
