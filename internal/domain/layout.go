package domain

import (
	"fmt"
	"math"
	"strings"
)

// Default tag dimensions in centimetres.
const (
	DefaultTagWidth  = 9.0
	DefaultTagHeight = 5.4
)

// Paper is a named page size in centimetres.
type Paper struct {
	Name   string
	Width  float64
	Height float64
}

var paperPresets = []Paper{
	{Name: "A4", Width: 21.0, Height: 29.7},
	{Name: "Letter", Width: 21.59, Height: 27.94},
}

// PaperPresets returns the known paper sizes.
func PaperPresets() []Paper {
	out := make([]Paper, len(paperPresets))
	copy(out, paperPresets)
	return out
}

// LookupPaper resolves a preset name case-insensitively.
func LookupPaper(name string) (Paper, error) {
	name = strings.TrimSpace(name)
	for _, p := range paperPresets {
		if strings.EqualFold(p.Name, name) {
			return p, nil
		}
	}
	return Paper{}, fmt.Errorf("%w: %q", ErrUnknownPaperSize, name)
}

// Layout holds the tag and page geometry used for pagination.
type Layout struct {
	TagWidth  float64
	TagHeight float64
	Paper     Paper
}

// NewLayout validates dimensions and returns a layout.
func NewLayout(tagWidth, tagHeight float64, paper Paper) (Layout, error) {
	l := Layout{TagWidth: tagWidth, TagHeight: tagHeight, Paper: paper}
	if err := l.Validate(); err != nil {
		return Layout{}, err
	}
	return l, nil
}

// Validate checks that at least one tag fits on a page.
func (l Layout) Validate() error {
	if l.TagWidth <= 0 || l.TagHeight <= 0 {
		return fmt.Errorf("%w: tag size %.2fx%.2f must be positive", ErrInvalidLayout, l.TagWidth, l.TagHeight)
	}
	if l.Paper.Width <= 0 || l.Paper.Height <= 0 {
		return fmt.Errorf("%w: paper size %.2fx%.2f must be positive", ErrInvalidLayout, l.Paper.Width, l.Paper.Height)
	}
	if l.Columns() < 1 || l.Rows() < 1 {
		return fmt.Errorf("%w: tag %.2fx%.2f does not fit on %s", ErrInvalidLayout, l.TagWidth, l.TagHeight, l.Paper.Name)
	}
	return nil
}

// Columns returns how many tags fit across a page.
func (l Layout) Columns() int {
	if l.TagWidth <= 0 {
		return 0
	}
	return int(math.Floor(l.Paper.Width / l.TagWidth))
}

// Rows returns how many tags fit down a page.
func (l Layout) Rows() int {
	if l.TagHeight <= 0 {
		return 0
	}
	return int(math.Floor(l.Paper.Height / l.TagHeight))
}

// PerPage returns the tag capacity of one page.
func (l Layout) PerPage() int {
	return l.Columns() * l.Rows()
}

// PadMode controls how the last page is filled with placeholders.
type PadMode string

const (
	// PadNone keeps front and back aligned without adding slots.
	PadNone PadMode = "none"
	// PadRow fills the final row.
	PadRow PadMode = "row"
	// PadPage fills the final page to full capacity.
	PadPage PadMode = "page"
)

// ParsePadMode validates a pad mode name. Empty means PadNone.
func ParsePadMode(raw string) (PadMode, error) {
	switch mode := PadMode(strings.ToLower(strings.TrimSpace(raw))); mode {
	case "":
		return PadNone, nil
	case PadNone, PadRow, PadPage:
		return mode, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidPadMode, raw)
	}
}
