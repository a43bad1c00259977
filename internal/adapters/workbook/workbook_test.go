package workbook

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/xuri/excelize/v2"

	"github.com/hylla/nametag/internal/app"
	"github.com/hylla/nametag/internal/domain"
)

func testSnapshot(t *testing.T) app.Snapshot {
	t.Helper()
	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	layout, err := domain.NewLayout(9, 5.4, domain.Paper{Name: "tiny", Width: 10, Height: 6})
	if err != nil {
		t.Fatalf("NewLayout() error = %v", err)
	}
	desc := domain.ActivityDescriptor{
		ID:         11,
		Code:       domain.ActivityCode{Event: "333", Round: 1, Group: 1},
		Start:      start,
		End:        start.Add(time.Hour),
		GroupStart: start,
		GroupEnd:   start.Add(20 * time.Minute),
		Room:       "Main Hall",
	}
	competitors := []domain.Competitor{
		{
			Index: 0, RegistrantID: 7, WCAID: "2019DOEJ01", Name: "Jane Doe", CountryISO2: "US", Country: "United States",
			Experience: 4, Roles: []string{"delegate", "organizer"},
			Assignments: []domain.Assignment{domain.NewAssignment(desc, domain.RoleJudge)},
		},
		{Index: 1, RegistrantID: 8, Name: "New Person", CountryISO2: "DE", Country: "Germany", Experience: 1},
	}
	pages, err := app.Paginate(competitors, layout, domain.PadNone)
	if err != nil {
		t.Fatalf("Paginate() error = %v", err)
	}
	return app.Snapshot{
		CompetitionID: "TestOpen2025",
		Layout:        layout,
		Competitors:   competitors,
		Pages:         pages,
		Rounds: []app.RoundSlot{{
			Key:    domain.RoundKey{Event: "333", Round: 1},
			Window: domain.RoundWindow{Start: start, End: start.Add(time.Hour)},
		}},
	}
}

// TestWriteProducesAllSheets verifies every sheet round-trips through excelize.
func TestWriteProducesAllSheets(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, testSnapshot(t)); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer f.Close()

	if diff := cmp.Diff([]string{SheetCompetitors, SheetAssignments, SheetRounds}, f.GetSheetList()); diff != "" {
		t.Fatalf("sheet list mismatch (-want +got):\n%s", diff)
	}

	rows, err := f.GetRows(SheetCompetitors)
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	want := [][]string{
		{"Index", "Registrant ID", "WCA ID", "Name", "Country", "ISO2", "Competitions", "Roles", "Page"},
		{"0", "7", "2019DOEJ01", "Jane Doe", "United States", "US", "3", "delegate, organizer", "1"},
		{"1", "8", "", "New Person", "Germany", "DE", "0", "", "2"},
	}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Fatalf("competitor rows mismatch (-want +got):\n%s", diff)
	}

	rows, err = f.GetRows(SheetAssignments)
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected header plus one assignment, got %d rows", len(rows))
	}
	if diff := cmp.Diff([]string{"0", "Jane Doe", "333", "1", "1", "judge", "Main Hall", "2025-03-01 09:00", "2025-03-01 09:20"}, rows[1]); diff != "" {
		t.Fatalf("assignment row mismatch (-want +got):\n%s", diff)
	}

	rows, err = f.GetRows(SheetRounds)
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	if diff := cmp.Diff([]string{"333", "1", "2025-03-01 09:00", "2025-03-01 10:00"}, rows[1]); diff != "" {
		t.Fatalf("round row mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tags.xlsx")
	if err := WriteFile(path, testSnapshot(t)); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile() error = %v", err)
	}
	defer f.Close()
	if _, err := f.GetRows(SheetRounds); err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
}
