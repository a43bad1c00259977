package app

import (
	"context"
	"fmt"
)

// HistoryLoader reads export files and caches participation counts.
type HistoryLoader struct {
	files ExportFiles
	cache ParticipationCache
}

// NewHistoryLoader constructs a loader; cache may be nil.
func NewHistoryLoader(files ExportFiles, cache ParticipationCache) *HistoryLoader {
	return &HistoryLoader{files: files, cache: cache}
}

// Fingerprint identifies an export file revision.
func (i ExportFileInfo) Fingerprint() string {
	return fmt.Sprintf("%s:%d:%d", i.Path, i.Size, i.ModTime.UnixNano())
}

// LoadParticipation returns cached counts when the results file is unchanged,
// otherwise scans it and refreshes the cache.
func (h *HistoryLoader) LoadParticipation(ctx context.Context) (ParticipationIndex, error) {
	rc, info, err := h.files.OpenResults()
	if err != nil {
		return ParticipationIndex{}, err
	}
	defer rc.Close()

	fingerprint := info.Fingerprint()
	if h.cache != nil {
		counts, ok, err := h.cache.LoadParticipation(ctx, fingerprint)
		if err != nil {
			return ParticipationIndex{}, fmt.Errorf("load participation cache: %w", err)
		}
		if ok {
			return NewParticipationIndex(counts), nil
		}
	}

	idx, err := LoadParticipationIndex(rc)
	if err != nil {
		return ParticipationIndex{}, fmt.Errorf("%s: %w", info.Path, err)
	}
	if h.cache != nil {
		if err := h.cache.SaveParticipation(ctx, fingerprint, idx.Counts()); err != nil {
			return ParticipationIndex{}, fmt.Errorf("save participation cache: %w", err)
		}
	}
	return idx, nil
}

// LoadCountries reads the countries file.
func (h *HistoryLoader) LoadCountries(context.Context) (CountryTable, error) {
	rc, info, err := h.files.OpenCountries()
	if err != nil {
		return CountryTable{}, err
	}
	defer rc.Close()
	table, err := LoadCountryTable(rc)
	if err != nil {
		return CountryTable{}, fmt.Errorf("%s: %w", info.Path, err)
	}
	return table, nil
}
