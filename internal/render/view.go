package render

import (
	"strconv"
	"strings"
	"time"

	"github.com/hylla/nametag/internal/app"
	"github.com/hylla/nametag/internal/domain"
)

const noAssignment = "-"

// DocumentView is the data handed to the page template.
type DocumentView struct {
	CompetitionID   string
	CompetitionName string
	ShortName       string
	Paper           domain.Paper
	TagWidth        float64
	TagHeight       float64
	Columns         int
	Rows            int
	Pages           []PageView
	Events          []string
	RoundTimes      []RoundTime
	FirstRoundTimes []RoundTime
	GeneratedAt     time.Time
}

// PageView is one sheet, front and back.
type PageView struct {
	Number int
	Front  []TagView
	Back   []TagView
}

// RoundTime is a round window ready for display.
type RoundTime struct {
	Event string
	Round int
	Start time.Time
	End   time.Time
}

// EventCell summarises one first-round event on the back of a tag.
type EventCell struct {
	Event   string
	Time    time.Time
	Active  bool
	Group   string
	Helping string
}

// TagView carries every field a tag template can print.
type TagView struct {
	Placeholder     bool
	Competition     string
	Index           int
	Name            string
	FullName        string
	NativeName      string
	FirstName       string
	LastName        string
	WCAID           string
	ISO2            string
	Flag            string
	Country         string
	Competitions    int
	Experience      int
	Newcomer        bool
	ExperienceEmoji string
	IndexEmoji      string
	PersonEmoji     string
	Roles           []string
	Rounds          []domain.RoundAssignments
	FirstRound      []EventCell
}

// RoleClass joins declared roles into CSS class names.
func (t TagView) RoleClass() string {
	classes := make([]string, 0, len(t.Roles))
	for _, role := range t.Roles {
		classes = append(classes, "role-"+strings.ToLower(strings.ReplaceAll(role, " ", "-")))
	}
	return strings.Join(classes, " ")
}

// BuildDocument turns a snapshot into template data.
func BuildDocument(snap app.Snapshot, tables Tables) DocumentView {
	doc := DocumentView{
		CompetitionID:   snap.CompetitionID,
		CompetitionName: snap.CompetitionName,
		ShortName:       snap.ShortName,
		Paper:           snap.Layout.Paper,
		TagWidth:        snap.Layout.TagWidth,
		TagHeight:       snap.Layout.TagHeight,
		Columns:         snap.Layout.Columns(),
		Rows:            snap.Layout.Rows(),
		Events:          domain.CanonicalEvents(),
		GeneratedAt:     snap.BuiltAt,
	}
	for _, slot := range snap.Rounds {
		rt := RoundTime{Event: slot.Key.Event, Round: slot.Key.Round, Start: slot.Window.Start, End: slot.Window.End}
		doc.RoundTimes = append(doc.RoundTimes, rt)
		if rt.Round == 1 {
			doc.FirstRoundTimes = append(doc.FirstRoundTimes, rt)
		}
	}

	doc.Pages = make([]PageView, 0, len(snap.Pages))
	for _, page := range snap.Pages {
		pv := PageView{
			Number: page.Number,
			Front:  make([]TagView, 0, len(page.Front)),
			Back:   make([]TagView, 0, len(page.Back)),
		}
		for _, slot := range page.Front {
			pv.Front = append(pv.Front, buildTag(slot, snap.ShortName, tables, doc.FirstRoundTimes))
		}
		for _, slot := range page.Back {
			pv.Back = append(pv.Back, buildTag(slot, snap.ShortName, tables, doc.FirstRoundTimes))
		}
		doc.Pages = append(doc.Pages, pv)
	}
	return doc
}

func buildTag(slot domain.Slot, competition string, tables Tables, firstRounds []RoundTime) TagView {
	if slot.IsPlaceholder() {
		return TagView{Placeholder: true, Competition: competition, Index: -1}
	}
	c := slot.Competitor
	rounds := c.Rounds()
	return TagView{
		Competition:     competition,
		Index:           c.Index,
		Name:            c.LatinName(),
		FullName:        c.Name,
		NativeName:      c.NativeName(),
		FirstName:       c.FirstName(),
		LastName:        c.LastName(),
		WCAID:           c.WCAID,
		ISO2:            c.CountryISO2,
		Flag:            FlagEmoji(c.CountryISO2),
		Country:         c.Country,
		Competitions:    c.Competitions(),
		Experience:      c.Experience,
		Newcomer:        c.IsNewcomer(),
		ExperienceEmoji: tables.ExperienceEmoji(c.Experience),
		IndexEmoji:      tables.IndexEmoji(c.Index),
		PersonEmoji:     tables.PersonEmoji(c.WCAID),
		Roles:           c.Roles,
		Rounds:          rounds,
		FirstRound:      firstRoundCells(rounds, firstRounds),
	}
}

func firstRoundCells(rounds []domain.RoundAssignments, firstRounds []RoundTime) []EventCell {
	byEvent := map[string]domain.RoundAssignments{}
	for _, r := range rounds {
		if r.Round == 1 {
			byEvent[r.Event] = r
		}
	}
	cells := make([]EventCell, 0, len(firstRounds))
	for _, rt := range firstRounds {
		cell := EventCell{Event: rt.Event, Time: rt.Start, Group: noAssignment, Helping: noAssignment}
		if r, ok := byEvent[rt.Event]; ok {
			cell.Active = true
			if r.Competing != nil {
				cell.Group = strconv.Itoa(r.Competing.Group)
			}
			if labels := r.HelperLabels(); len(labels) > 0 {
				cell.Helping = strings.Join(labels, " ")
			}
		}
		cells = append(cells, cell)
	}
	return cells
}
