package app

import (
	"slices"

	"github.com/hylla/nametag/internal/domain"
)

// Paginate lays competitors out on pages of layout.PerPage() tags. Front and
// back sequences of every page have equal length; pad decides how far the last
// page is filled with placeholders.
func Paginate(competitors []domain.Competitor, layout domain.Layout, pad domain.PadMode) ([]domain.Page, error) {
	if err := layout.Validate(); err != nil {
		return nil, err
	}
	if pad == "" {
		pad = domain.PadNone
	}
	columns := layout.Columns()
	perPage := layout.PerPage()

	pages := make([]domain.Page, 0, (len(competitors)+perPage-1)/perPage)
	for start := 0; start < len(competitors); start += perPage {
		end := min(start+perPage, len(competitors))
		front := make([]domain.Slot, 0, perPage)
		for i := start; i < end; i++ {
			front = append(front, domain.Slot{Competitor: &competitors[i]})
		}
		front = padSlots(front, pad, columns, perPage)
		pages = append(pages, domain.Page{
			Number: len(pages) + 1,
			Rows:   chunkSlots(front, columns),
			Front:  front,
			Back:   slices.Clone(front),
		})
	}
	return pages, nil
}

func padSlots(slots []domain.Slot, pad domain.PadMode, columns, perPage int) []domain.Slot {
	target := len(slots)
	switch pad {
	case domain.PadRow:
		if rem := len(slots) % columns; rem != 0 {
			target += columns - rem
		}
	case domain.PadPage:
		target = perPage
	}
	for len(slots) < target {
		slots = append(slots, domain.Slot{})
	}
	return slots
}

func chunkSlots(slots []domain.Slot, columns int) [][]domain.Slot {
	rows := make([][]domain.Slot, 0, (len(slots)+columns-1)/columns)
	for chunk := range slices.Chunk(slots, columns) {
		rows = append(rows, chunk)
	}
	return rows
}
