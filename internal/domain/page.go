package domain

// Slot is one tag position on a page; a nil Competitor is a placeholder.
type Slot struct {
	Competitor *Competitor
}

// IsPlaceholder reports whether the slot carries no competitor.
func (s Slot) IsPlaceholder() bool {
	return s.Competitor == nil
}

// Page is one printed sheet. Front and Back have equal length and slot i
// of Back prints behind slot i of Front once the row is mirrored.
type Page struct {
	Number int
	Rows   [][]Slot
	Front  []Slot
	Back   []Slot
}

// Competitors counts the non-placeholder slots on the page.
func (p Page) Competitors() int {
	n := 0
	for _, s := range p.Front {
		if !s.IsPlaceholder() {
			n++
		}
	}
	return n
}
