package app

import (
	"bufio"
	"fmt"
	"io"
	"maps"
	"strings"
)

// Column aliases accepted in the results export header.
var (
	personIDColumns      = []string{"personId", "person_id"}
	competitionIDColumns = []string{"competitionId", "competition_id"}
)

const maxExportLine = 1 << 20

// ParticipationIndex maps a person id to the number of distinct competitions attended.
type ParticipationIndex struct {
	counts map[string]int
}

// NewParticipationIndex wraps precomputed counts.
func NewParticipationIndex(counts map[string]int) ParticipationIndex {
	if counts == nil {
		counts = map[string]int{}
	}
	return ParticipationIndex{counts: counts}
}

// LoadParticipationIndex scans a tab separated results export and counts
// distinct competition ids per person.
func LoadParticipationIndex(r io.Reader) (ParticipationIndex, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxExportLine)

	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return ParticipationIndex{}, fmt.Errorf("read results header: %w", err)
		}
		return ParticipationIndex{}, fmt.Errorf("%w: empty results file", ErrMalformedExport)
	}
	header := splitTSV(scanner.Text())
	personCol, err := columnIndex(header, personIDColumns)
	if err != nil {
		return ParticipationIndex{}, err
	}
	compCol, err := columnIndex(header, competitionIDColumns)
	if err != nil {
		return ParticipationIndex{}, err
	}
	need := max(personCol, compCol) + 1

	seen := map[string]map[string]struct{}{}
	line := 1
	for scanner.Scan() {
		line++
		text := scanner.Text()
		if strings.TrimSpace(text) == "" {
			continue
		}
		fields := splitTSV(text)
		if len(fields) < need {
			return ParticipationIndex{}, fmt.Errorf("%w: results line %d has %d fields, want at least %d", ErrMalformedExport, line, len(fields), need)
		}
		personID := fields[personCol]
		if personID == "" {
			continue
		}
		comps, ok := seen[personID]
		if !ok {
			comps = map[string]struct{}{}
			seen[personID] = comps
		}
		comps[fields[compCol]] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return ParticipationIndex{}, fmt.Errorf("read results: %w", err)
	}

	counts := make(map[string]int, len(seen))
	for personID, comps := range seen {
		counts[personID] = len(comps)
	}
	return NewParticipationIndex(counts), nil
}

// Count returns the number of competitions attended; unknown ids report 0.
func (p ParticipationIndex) Count(personID string) int {
	if personID == "" {
		return 0
	}
	return p.counts[personID]
}

// Experience returns Count+1, counting the current competition.
func (p ParticipationIndex) Experience(personID string) int {
	return p.Count(personID) + 1
}

// Len returns the number of indexed persons.
func (p ParticipationIndex) Len() int {
	return len(p.counts)
}

// Counts returns a copy of the underlying map.
func (p ParticipationIndex) Counts() map[string]int {
	return maps.Clone(p.counts)
}

func splitTSV(line string) []string {
	line = strings.TrimSuffix(line, "\r")
	fields := strings.Split(line, "\t")
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	return fields
}

func columnIndex(header []string, names []string) (int, error) {
	for _, name := range names {
		for i, col := range header {
			if strings.EqualFold(col, name) {
				return i, nil
			}
		}
	}
	return -1, fmt.Errorf("%w: missing column %q", ErrMalformedExport, names[0])
}
