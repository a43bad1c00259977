package app

import (
	"context"
	"io"
	"time"

	"github.com/hylla/nametag/internal/wcif"
)

// CompetitionSource fetches the competition document.
type CompetitionSource interface {
	FetchCompetition(context.Context, string) (wcif.Competition, error)
}

// HistorySource provides the participation index and the country table.
type HistorySource interface {
	LoadParticipation(context.Context) (ParticipationIndex, error)
	LoadCountries(context.Context) (CountryTable, error)
}

// ExportFileInfo describes one extracted export file.
type ExportFileInfo struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// ExportFiles opens extracted export files by logical name.
type ExportFiles interface {
	OpenResults() (io.ReadCloser, ExportFileInfo, error)
	OpenCountries() (io.ReadCloser, ExportFileInfo, error)
}

// ParticipationCache persists computed participation counts per export fingerprint.
type ParticipationCache interface {
	LoadParticipation(context.Context, string) (map[string]int, bool, error)
	SaveParticipation(context.Context, string, map[string]int) error
}

// RunRecord describes one completed generation.
type RunRecord struct {
	ID            string
	CompetitionID string
	OutputPath    string
	Competitors   int
	Pages         int
	Warnings      int
	CreatedAt     time.Time
}

// RunLog records completed generations.
type RunLog interface {
	RecordRun(context.Context, RunRecord) error
	ListRuns(context.Context, int) ([]RunRecord, error)
}
