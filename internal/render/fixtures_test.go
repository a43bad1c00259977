package render

import (
	"testing"
	"time"

	"github.com/hylla/nametag/internal/app"
	"github.com/hylla/nametag/internal/domain"
)

var testStart = time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

func testAssignment(event string, round, group int, role domain.Role, start time.Time) domain.Assignment {
	code := domain.ActivityCode{Event: event, Round: round, Group: group}
	return domain.NewAssignment(domain.ActivityDescriptor{
		ID:    round*100 + group,
		Code:  code,
		Start: start,
		End:   start.Add(time.Hour),
	}, role)
}

// testSnapshot builds a two page snapshot with three competitors on a 1x2 grid.
func testSnapshot(t *testing.T) app.Snapshot {
	t.Helper()
	layout, err := domain.NewLayout(9, 5.4, domain.Paper{Name: "tiny", Width: 10, Height: 11})
	if err != nil {
		t.Fatalf("NewLayout() error = %v", err)
	}
	competitors := []domain.Competitor{
		{
			Index: 0, RegistrantID: 1, WCAID: "2019DOEJ01", Name: "Jane Doe", CountryISO2: "US", Country: "United States",
			Experience: 12, Roles: []string{"delegate"},
			Assignments: []domain.Assignment{
				testAssignment("333", 1, 2, domain.RoleCompetitor, testStart),
				testAssignment("333", 1, 1, domain.RoleJudge, testStart),
			},
		},
		{
			Index: 1, RegistrantID: 2, Name: "Taro Yamada (山田太郎)", CountryISO2: "JP", Country: "Japan",
			Experience: 1,
		},
		{
			Index: 2, RegistrantID: 3, WCAID: "2015MUST01", Name: "Max Mustermann", CountryISO2: "DE", Country: "Germany",
			Experience: 3,
		},
	}
	pages, err := app.Paginate(competitors, layout, domain.PadPage)
	if err != nil {
		t.Fatalf("Paginate() error = %v", err)
	}
	return app.Snapshot{
		ID:              "snap-1",
		CompetitionID:   "TestOpen2025",
		CompetitionName: "Test Open 2025",
		ShortName:       "Test Open",
		BuiltAt:         testStart,
		Layout:          layout,
		PadMode:         domain.PadPage,
		Competitors:     competitors,
		Pages:           pages,
		Rounds: []app.RoundSlot{
			{Key: domain.RoundKey{Event: "333", Round: 1}, Window: domain.RoundWindow{Start: testStart, End: testStart.Add(time.Hour)}},
			{Key: domain.RoundKey{Event: "222", Round: 1}, Window: domain.RoundWindow{Start: testStart.Add(2 * time.Hour), End: testStart.Add(3 * time.Hour)}},
			{Key: domain.RoundKey{Event: "333", Round: 2}, Window: domain.RoundWindow{Start: testStart.Add(4 * time.Hour), End: testStart.Add(5 * time.Hour)}},
		},
	}
}

func testTables(t *testing.T) Tables {
	t.Helper()
	tables, err := LoadTables(TablePaths{})
	if err != nil {
		t.Fatalf("LoadTables() error = %v", err)
	}
	return tables
}
