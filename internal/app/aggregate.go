package app

import (
	"slices"

	"github.com/hylla/nametag/internal/domain"
)

// BuildCompetitors pairs every roster row with its assignments. Rows without
// assignments get an empty list, never a missing one.
func BuildCompetitors(rows []RosterRow, assignments map[int][]domain.Assignment) []domain.Competitor {
	out := make([]domain.Competitor, 0, len(rows))
	for _, row := range rows {
		list := assignments[row.RegistrantID]
		if list == nil {
			list = []domain.Assignment{}
		}
		out = append(out, domain.Competitor{
			Index:        row.Index,
			RegistrantID: row.RegistrantID,
			WCAID:        row.WCAID,
			Name:         row.Name,
			CountryISO2:  row.CountryISO2,
			Country:      row.Country,
			Experience:   row.Experience,
			Roles:        slices.Clone(row.Roles),
			Assignments:  list,
		})
	}
	return out
}
