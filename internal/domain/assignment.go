package domain

import (
	"fmt"
	"slices"
	"time"
)

// Assignment is a resolved duty of one person in one activity.
type Assignment struct {
	ActivityID int
	Event      string
	Round      int
	Group      int
	Role       Role
	Start      time.Time
	End        time.Time
	GroupStart time.Time
	GroupEnd   time.Time
	Room       string
	RoomSlug   string
}

// NewAssignment joins a descriptor with a normalized role.
func NewAssignment(desc ActivityDescriptor, role Role) Assignment {
	return Assignment{
		ActivityID: desc.ID,
		Event:      desc.Code.Event,
		Round:      desc.Code.Round,
		Group:      desc.Code.Group,
		Role:       role,
		Start:      desc.Start,
		End:        desc.End,
		GroupStart: desc.GroupStart,
		GroupEnd:   desc.GroupEnd,
		Room:       desc.Room,
		RoomSlug:   desc.RoomSlug,
	}
}

// RoundKey returns the (event, round) the assignment belongs to.
func (a Assignment) RoundKey() RoundKey {
	return RoundKey{Event: a.Event, Round: a.Round}
}

// RoleGroups lists the groups a person helps in for one role.
type RoleGroups struct {
	Role   Role
	Groups []int
}

// RoundAssignments collects one person's duties in a single round.
type RoundAssignments struct {
	Event string
	Round int
	// Competing is the first competitor assignment of the round, if any.
	Competing *Assignment
	Helping   []RoleGroups
	Start     time.Time
}

// HelperLabels returns labels like "J3" for every helper group, in role order.
func (r RoundAssignments) HelperLabels() []string {
	out := make([]string, 0, len(r.Helping))
	for _, rg := range r.Helping {
		for _, g := range rg.Groups {
			out = append(out, fmt.Sprintf("%s%d", rg.Role.Initial(), g))
		}
	}
	return out
}

// GroupAssignments groups assignments by round in canonical event order.
// Within a round only the first competitor assignment is kept and helper
// groups are listed per role in allowed-role order.
func GroupAssignments(assignments []Assignment) []RoundAssignments {
	byRound := map[RoundKey]*RoundAssignments{}
	keys := make([]RoundKey, 0)
	for _, a := range assignments {
		key := a.RoundKey()
		entry, ok := byRound[key]
		if !ok {
			entry = &RoundAssignments{Event: a.Event, Round: a.Round, Start: a.Start}
			byRound[key] = entry
			keys = append(keys, key)
		}
		if a.Start.Before(entry.Start) {
			entry.Start = a.Start
		}
		if a.Role == RoleCompetitor {
			if entry.Competing == nil {
				competing := a
				entry.Competing = &competing
			}
			continue
		}
		if a.Role.IsHelper() {
			entry.Helping = addHelperGroup(entry.Helping, a.Role, a.Group)
		}
	}

	slices.SortStableFunc(keys, CompareRoundKeys)
	out := make([]RoundAssignments, 0, len(keys))
	for _, key := range keys {
		entry := byRound[key]
		slices.SortStableFunc(entry.Helping, func(a, b RoleGroups) int {
			return slices.Index(allowedRoles, a.Role) - slices.Index(allowedRoles, b.Role)
		})
		out = append(out, *entry)
	}
	return out
}

func addHelperGroup(groups []RoleGroups, role Role, group int) []RoleGroups {
	for i := range groups {
		if groups[i].Role == role {
			if !slices.Contains(groups[i].Groups, group) {
				groups[i].Groups = append(groups[i].Groups, group)
			}
			return groups
		}
	}
	return append(groups, RoleGroups{Role: role, Groups: []int{group}})
}
