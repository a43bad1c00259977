package app

import (
	"context"
	"time"

	"github.com/hylla/nametag/internal/domain"
	"github.com/hylla/nametag/internal/wcif"
)

func intPtr(v int) *int { return &v }

func strPtr(v string) *string { return &v }

func person(registrantID int, name, wcaID, iso2 string, assignments ...wcif.Assignment) wcif.Person {
	p := wcif.Person{
		RegistrantID: intPtr(registrantID),
		WCAUserID:    registrantID + 1000,
		Name:         name,
		CountryIso2:  iso2,
		Registration: &wcif.Registration{Status: "accepted"},
		Assignments:  assignments,
	}
	if wcaID != "" {
		p.WCAID = strPtr(wcaID)
	}
	return p
}

func assign(activityID int, code string) wcif.Assignment {
	return wcif.Assignment{ActivityID: activityID, AssignmentCode: code}
}

func testCountries() CountryTable {
	return NewCountryTable(map[string]string{
		"US": "United States",
		"DE": "Germany",
		"JP": "Japan",
	})
}

func gridLayout(columns, rows int) domain.Layout {
	return domain.Layout{
		TagWidth:  9.0,
		TagHeight: 5.4,
		Paper: domain.Paper{
			Name:   "test",
			Width:  9.0*float64(columns) + 0.5,
			Height: 5.4*float64(rows) + 0.5,
		},
	}
}

// testSchedule has one room running 333 round 1 with two groups, a 222 round
// without groups, and a lunch break.
func testSchedule() wcif.Schedule {
	return wcif.Schedule{
		Venues: []wcif.Venue{{
			Name:     "Hall",
			Timezone: "Europe/Berlin",
			Rooms: []wcif.Room{{
				Name: "Main Room",
				Activities: []wcif.Activity{
					{
						ID: 1, ActivityCode: "333-r1",
						StartTime: "2026-05-02T08:00:00Z", EndTime: "2026-05-02T09:00:00Z",
						ChildActivities: []wcif.Activity{
							{ID: 11, ActivityCode: "333-r1-g1", StartTime: "2026-05-02T08:00:00Z", EndTime: "2026-05-02T08:30:00Z"},
							{ID: 12, ActivityCode: "333-r1-g2", StartTime: "2026-05-02T08:30:00Z", EndTime: "2026-05-02T09:00:00Z"},
						},
					},
					{ID: 2, ActivityCode: "other-lunch", StartTime: "2026-05-02T11:00:00Z", EndTime: "2026-05-02T12:00:00Z"},
					{ID: 3, ActivityCode: "222-r1-g1", StartTime: "2026-05-02T12:00:00Z", EndTime: "2026-05-02T12:45:00Z"},
				},
			}},
		}},
	}
}

type fakeCompetitions struct {
	comp wcif.Competition
	err  error
}

func (f fakeCompetitions) FetchCompetition(context.Context, string) (wcif.Competition, error) {
	return f.comp, f.err
}

type fakeHistory struct {
	idx       ParticipationIndex
	countries CountryTable
	idxErr    error
	calls     int
}

func (f *fakeHistory) LoadParticipation(context.Context) (ParticipationIndex, error) {
	f.calls++
	return f.idx, f.idxErr
}

func (f *fakeHistory) LoadCountries(context.Context) (CountryTable, error) {
	return f.countries, nil
}

func fixedClock() time.Time {
	return time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
}
