// Package workbook exports a built snapshot as an xlsx workbook for organizers.
package workbook

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/hylla/nametag/internal/app"
)

// Sheet names written by Write.
const (
	SheetCompetitors = "Competitors"
	SheetAssignments = "Assignments"
	SheetRounds      = "Rounds"
)

const timeLayout = "2006-01-02 15:04"

var (
	competitorHeader = []any{"Index", "Registrant ID", "WCA ID", "Name", "Country", "ISO2", "Competitions", "Roles", "Page"}
	assignmentHeader = []any{"Index", "Name", "Event", "Round", "Group", "Role", "Room", "Start", "End"}
	roundHeader      = []any{"Event", "Round", "Start", "End"}
)

// Write renders snap as xlsx into w.
func Write(w io.Writer, snap app.Snapshot) error {
	f, err := build(snap)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// WriteFile renders snap as xlsx at path.
func WriteFile(path string, snap app.Snapshot) error {
	f, err := build(snap)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create workbook dir: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook %s: %w", path, err)
	}
	return nil
}

func build(snap app.Snapshot) (*excelize.File, error) {
	f := excelize.NewFile()
	first := f.GetSheetName(f.GetActiveSheetIndex())
	if err := f.SetSheetName(first, SheetCompetitors); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	for _, name := range []string{SheetAssignments, SheetRounds} {
		if _, err := f.NewSheet(name); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("create sheet %s: %w", name, err)
		}
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("create header style: %w", err)
	}

	w := sheetWriter{f: f, header: bold}
	w.writeCompetitors(snap)
	w.writeAssignments(snap)
	w.writeRounds(snap)
	if w.err != nil {
		_ = f.Close()
		return nil, w.err
	}
	return f, nil
}

// sheetWriter keeps the first error so row loops stay flat.
type sheetWriter struct {
	f      *excelize.File
	header int
	err    error
}

func (w *sheetWriter) row(sheet string, rowNum int, values []any) {
	if w.err != nil {
		return
	}
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		w.err = err
		return
	}
	if err := w.f.SetSheetRow(sheet, cell, &values); err != nil {
		w.err = fmt.Errorf("write %s row %d: %w", sheet, rowNum, err)
	}
}

func (w *sheetWriter) headerRow(sheet string, values []any) {
	w.row(sheet, 1, values)
	if w.err != nil {
		return
	}
	last, err := excelize.CoordinatesToCellName(len(values), 1)
	if err != nil {
		w.err = err
		return
	}
	if err := w.f.SetCellStyle(sheet, "A1", last, w.header); err != nil {
		w.err = fmt.Errorf("style %s header: %w", sheet, err)
		return
	}
	if err := w.f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		w.err = fmt.Errorf("freeze %s header: %w", sheet, err)
	}
}

func (w *sheetWriter) writeCompetitors(snap app.Snapshot) {
	w.headerRow(SheetCompetitors, competitorHeader)
	pageOf := make(map[int]int, len(snap.Competitors))
	for _, page := range snap.Pages {
		for _, slot := range page.Front {
			if !slot.IsPlaceholder() {
				pageOf[slot.Competitor.Index] = page.Number
			}
		}
	}
	for i, c := range snap.Competitors {
		w.row(SheetCompetitors, i+2, []any{
			c.Index, c.RegistrantID, c.WCAID, c.Name, c.Country, c.CountryISO2,
			c.Competitions(), strings.Join(c.Roles, ", "), pageOf[c.Index],
		})
	}
}

func (w *sheetWriter) writeAssignments(snap app.Snapshot) {
	w.headerRow(SheetAssignments, assignmentHeader)
	rowNum := 2
	for _, c := range snap.Competitors {
		for _, a := range c.Assignments {
			w.row(SheetAssignments, rowNum, []any{
				c.Index, c.Name, a.Event, a.Round, a.Group, string(a.Role), a.Room,
				a.GroupStart.Format(timeLayout), a.GroupEnd.Format(timeLayout),
			})
			rowNum++
		}
	}
}

func (w *sheetWriter) writeRounds(snap app.Snapshot) {
	w.headerRow(SheetRounds, roundHeader)
	for i, slot := range snap.Rounds {
		w.row(SheetRounds, i+2, []any{
			slot.Key.Event, slot.Key.Round,
			slot.Window.Start.Format(timeLayout), slot.Window.End.Format(timeLayout),
		})
	}
}
