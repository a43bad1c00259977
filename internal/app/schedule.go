package app

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/hylla/nametag/internal/domain"
	"github.com/hylla/nametag/internal/wcif"
)

// TimestampLayout is the only accepted schedule timestamp form.
const TimestampLayout = "2006-01-02T15:04:05Z"

// FlattenOptions holds configuration for schedule flattening.
type FlattenOptions struct {
	// Location converts timestamps for display; nil means time.Local.
	Location *time.Location
	// VenueTimeZone uses each venue's own zone instead of Location.
	VenueTimeZone bool
}

// Schedule is the flattened activity index plus per-round windows.
type Schedule struct {
	Activities map[int]domain.ActivityDescriptor
	Rounds     map[domain.RoundKey]domain.RoundWindow
}

// RoundSlot pairs a round with its window.
type RoundSlot struct {
	Key    domain.RoundKey
	Window domain.RoundWindow
}

// RoundSlots lists round windows in canonical event order.
func (s Schedule) RoundSlots() []RoundSlot {
	keys := slices.SortedFunc(maps.Keys(s.Rounds), domain.CompareRoundKeys)
	out := make([]RoundSlot, 0, len(keys))
	for _, key := range keys {
		out = append(out, RoundSlot{Key: key, Window: s.Rounds[key]})
	}
	return out
}

// FlattenSchedule walks venues, rooms, activities and child activities into
// an index keyed by activity id. An activity without children whose code is
// not an "other" activity stands in as its own single child.
func FlattenSchedule(schedule wcif.Schedule, opts FlattenOptions, diag *Diagnostics) (Schedule, error) {
	out := Schedule{
		Activities: map[int]domain.ActivityDescriptor{},
		Rounds:     map[domain.RoundKey]domain.RoundWindow{},
	}
	base := opts.Location
	if base == nil {
		base = time.Local
	}

	for _, venue := range schedule.Venues {
		loc := base
		if opts.VenueTimeZone {
			venueLoc, err := time.LoadLocation(venue.Timezone)
			if err != nil {
				return Schedule{}, fmt.Errorf("%w: venue %q zone %q: %v", ErrInvalidTimeZone, venue.Name, venue.Timezone, err)
			}
			loc = venueLoc
		}
		for _, room := range venue.Rooms {
			slug := domain.RoomSlug(room.Name)
			for _, activity := range room.Activities {
				if err := flattenActivity(&out, activity, room.Name, slug, loc, diag); err != nil {
					return Schedule{}, err
				}
			}
		}
	}
	return out, nil
}

func flattenActivity(out *Schedule, activity wcif.Activity, roomName, slug string, loc *time.Location, diag *Diagnostics) error {
	children := activity.ChildActivities
	if len(children) == 0 {
		if strings.Contains(activity.ActivityCode, "other") {
			return nil
		}
		children = []wcif.Activity{activity}
	}

	start, end, err := parseWindow(activity, loc)
	if err != nil {
		return err
	}
	for _, child := range children {
		code, err := domain.ParseActivityCode(child.ActivityCode)
		if err != nil {
			diag.Warn(WarningMalformedActivityCode, "activity %d code %q", child.ID, child.ActivityCode)
			continue
		}
		groupStart, groupEnd, err := parseWindow(child, loc)
		if err != nil {
			return err
		}
		if _, exists := out.Activities[child.ID]; exists {
			diag.Warn(WarningDuplicateActivity, "activity %d %s in %s", child.ID, child.ActivityCode, roomName)
			continue
		}
		out.Activities[child.ID] = domain.ActivityDescriptor{
			ID:         child.ID,
			Code:       code,
			Start:      start,
			End:        end,
			GroupStart: groupStart,
			GroupEnd:   groupEnd,
			Room:       roomName,
			RoomSlug:   slug,
		}
		// First window registered for a round wins.
		if _, ok := out.Rounds[code.RoundKey()]; !ok {
			out.Rounds[code.RoundKey()] = domain.RoundWindow{Start: start, End: end}
		}
	}
	return nil
}

func parseWindow(activity wcif.Activity, loc *time.Location) (time.Time, time.Time, error) {
	start, err := ParseTimestamp(activity.StartTime, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("activity %d start: %w", activity.ID, err)
	}
	end, err := ParseTimestamp(activity.EndTime, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("activity %d end: %w", activity.ID, err)
	}
	return start, end, nil
}

// ParseTimestamp parses a UTC "YYYY-MM-DDTHH:MM:SSZ" value and converts it to loc.
func ParseTimestamp(value string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(TimestampLayout, value, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrMalformedTimestamp, value)
	}
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc), nil
}
