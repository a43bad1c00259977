package common

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hylla/nametag/internal/app"
	"github.com/hylla/nametag/internal/domain"
)

const placeholderIndex = -1

// SnapshotAdapter maps the published snapshot onto transport contracts.
type SnapshotAdapter struct {
	snapshots SnapshotReader
}

// NewSnapshotAdapter builds one adapter over a snapshot reader.
func NewSnapshotAdapter(snapshots SnapshotReader) *SnapshotAdapter {
	return &SnapshotAdapter{snapshots: snapshots}
}

// Summary returns headline counts of the current snapshot.
func (a *SnapshotAdapter) Summary(ctx context.Context) (Summary, error) {
	snap, err := a.current(ctx)
	if err != nil {
		return Summary{}, err
	}
	return Summary{
		SnapshotID:      snap.ID,
		CompetitionID:   snap.CompetitionID,
		CompetitionName: snap.CompetitionName,
		ShortName:       snap.ShortName,
		BuiltAt:         snap.BuiltAt,
		Competitors:     len(snap.Competitors),
		Pages:           len(snap.Pages),
		Rounds:          len(snap.Rounds),
		Warnings:        snap.WarningCount(),
		Layout: Layout{
			Paper:       snap.Layout.Paper.Name,
			PaperWidth:  snap.Layout.Paper.Width,
			PaperHeight: snap.Layout.Paper.Height,
			TagWidth:    snap.Layout.TagWidth,
			TagHeight:   snap.Layout.TagHeight,
			Columns:     snap.Layout.Columns(),
			Rows:        snap.Layout.Rows(),
			PadMode:     string(snap.PadMode),
		},
	}, nil
}

// ListCompetitors returns roster rows matching every non-empty filter.
func (a *SnapshotAdapter) ListCompetitors(ctx context.Context, req ListCompetitorsRequest) ([]CompetitorSummary, error) {
	snap, err := a.current(ctx)
	if err != nil {
		return nil, err
	}
	if req.Limit < 0 {
		return nil, fmt.Errorf("limit must be >= 0: %w", ErrInvalidRequest)
	}
	query := strings.ToLower(strings.TrimSpace(req.Query))
	country := strings.ToUpper(strings.TrimSpace(req.Country))
	role := strings.ToLower(strings.TrimSpace(req.Role))
	pages := pageIndex(snap)

	out := make([]CompetitorSummary, 0, len(snap.Competitors))
	for _, c := range snap.Competitors {
		if query != "" && !strings.Contains(strings.ToLower(c.Name), query) && !strings.EqualFold(c.WCAID, query) {
			continue
		}
		if country != "" && c.CountryISO2 != country {
			continue
		}
		if role != "" && !hasRole(c, role) {
			continue
		}
		out = append(out, competitorSummary(c, pages))
		if req.Limit > 0 && len(out) == req.Limit {
			break
		}
	}
	return out, nil
}

// GetCompetitor returns one competitor by roster index.
func (a *SnapshotAdapter) GetCompetitor(ctx context.Context, index int) (CompetitorDetail, error) {
	snap, err := a.current(ctx)
	if err != nil {
		return CompetitorDetail{}, err
	}
	c, err := snap.Competitor(index)
	if err != nil {
		return CompetitorDetail{}, mapAppError(fmt.Sprintf("competitor %d", index), err)
	}
	detail := CompetitorDetail{
		CompetitorSummary: competitorSummary(c, pageIndex(snap)),
		NativeName:        c.NativeName(),
		Rounds:            []RoundDuty{},
		Duties:            make([]Assignment, 0, len(c.Assignments)),
	}
	for _, r := range c.Rounds() {
		duty := RoundDuty{Event: r.Event, Round: r.Round, Helping: r.HelperLabels(), Start: r.Start}
		if r.Competing != nil {
			duty.Competing = true
			duty.Group = r.Competing.Group
		}
		detail.Rounds = append(detail.Rounds, duty)
	}
	for _, asg := range c.Assignments {
		detail.Duties = append(detail.Duties, Assignment{
			ActivityID: asg.ActivityID,
			Event:      asg.Event,
			Round:      asg.Round,
			Group:      asg.Group,
			Role:       string(asg.Role),
			Room:       asg.Room,
			Start:      asg.GroupStart,
			End:        asg.GroupEnd,
		})
	}
	return detail, nil
}

// ListPages summarises every page.
func (a *SnapshotAdapter) ListPages(ctx context.Context) ([]PageSummary, error) {
	snap, err := a.current(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]PageSummary, 0, len(snap.Pages))
	for _, p := range snap.Pages {
		out = append(out, pageSummary(p))
	}
	return out, nil
}

// GetPage returns slot indexes of one 1-based page.
func (a *SnapshotAdapter) GetPage(ctx context.Context, number int) (PageDetail, error) {
	snap, err := a.current(ctx)
	if err != nil {
		return PageDetail{}, err
	}
	p, err := snap.Page(number)
	if err != nil {
		return PageDetail{}, mapAppError(fmt.Sprintf("page %d", number), err)
	}
	detail := PageDetail{
		PageSummary: pageSummary(p),
		Front:       make([][]int, 0, len(p.Rows)),
		Back:        slotIndexes(p.Back),
	}
	for _, row := range p.Rows {
		detail.Front = append(detail.Front, slotIndexes(row))
	}
	return detail, nil
}

// ListRounds returns round windows in canonical event order.
func (a *SnapshotAdapter) ListRounds(ctx context.Context) ([]Round, error) {
	snap, err := a.current(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Round, 0, len(snap.Rounds))
	for _, slot := range snap.Rounds {
		out = append(out, Round{Event: slot.Key.Event, Round: slot.Key.Round, Start: slot.Window.Start, End: slot.Window.End})
	}
	return out, nil
}

// Diagnostics returns the aggregated warnings of the build.
func (a *SnapshotAdapter) Diagnostics(ctx context.Context) ([]app.WarningSummary, error) {
	snap, err := a.current(ctx)
	if err != nil {
		return nil, err
	}
	if snap.Diagnostics == nil {
		return []app.WarningSummary{}, nil
	}
	return snap.Diagnostics, nil
}

func (a *SnapshotAdapter) current(ctx context.Context) (app.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return app.Snapshot{}, err
	}
	if a == nil || a.snapshots == nil {
		return app.Snapshot{}, ErrNotReady
	}
	snap, ok := a.snapshots.Current()
	if !ok {
		return app.Snapshot{}, ErrNotReady
	}
	return snap, nil
}

func competitorSummary(c domain.Competitor, pages map[int]int) CompetitorSummary {
	return CompetitorSummary{
		Index:        c.Index,
		RegistrantID: c.RegistrantID,
		WCAID:        c.WCAID,
		Name:         c.Name,
		CountryISO2:  c.CountryISO2,
		Country:      c.Country,
		Competitions: c.Competitions(),
		Newcomer:     c.IsNewcomer(),
		Roles:        c.Roles,
		Page:         pages[c.Index],
	}
}

func hasRole(c domain.Competitor, role string) bool {
	for _, r := range c.Roles {
		if strings.EqualFold(r, role) {
			return true
		}
	}
	for _, asg := range c.Assignments {
		if string(asg.Role) == role {
			return true
		}
	}
	return false
}

// pageIndex maps roster index to page number.
func pageIndex(snap app.Snapshot) map[int]int {
	out := make(map[int]int, len(snap.Competitors))
	for _, p := range snap.Pages {
		for _, s := range p.Front {
			if !s.IsPlaceholder() {
				out[s.Competitor.Index] = p.Number
			}
		}
	}
	return out
}

func pageSummary(p domain.Page) PageSummary {
	filled := p.Competitors()
	return PageSummary{
		Number:       p.Number,
		Slots:        len(p.Front),
		Competitors:  filled,
		Placeholders: len(p.Front) - filled,
	}
}

func slotIndexes(slots []domain.Slot) []int {
	out := make([]int, 0, len(slots))
	for _, s := range slots {
		if s.IsPlaceholder() {
			out = append(out, placeholderIndex)
			continue
		}
		out = append(out, s.Competitor.Index)
	}
	return out
}

// mapAppError converts app sentinels into transport sentinels.
func mapAppError(op string, err error) error {
	if errors.Is(err, app.ErrNotFound) {
		return fmt.Errorf("%s: %w", op, errors.Join(ErrNotFound, err))
	}
	return fmt.Errorf("%s: %w", op, err)
}
