package domain

import (
	"cmp"
	"slices"
	"time"
)

// RoundKey identifies one round of one event.
type RoundKey struct {
	Event string
	Round int
}

// RoundWindow is the time span of a round.
type RoundWindow struct {
	Start time.Time
	End   time.Time
}

// canonicalEvents is the official event listing order.
var canonicalEvents = []string{
	"333", "222", "444", "555", "666", "777",
	"333bf", "333fm", "333oh", "clock", "minx", "pyram",
	"skewb", "sq1", "444bf", "555bf", "333mbf",
}

// CanonicalEvents returns the official event ids in listing order.
func CanonicalEvents() []string {
	return slices.Clone(canonicalEvents)
}

// EventIndex returns the position of an event in the canonical order.
// Unknown events report len(CanonicalEvents()).
func EventIndex(event string) int {
	if i := slices.Index(canonicalEvents, event); i >= 0 {
		return i
	}
	return len(canonicalEvents)
}

// CompareEvents orders events canonically, then unknown events alphabetically.
func CompareEvents(a, b string) int {
	if c := cmp.Compare(EventIndex(a), EventIndex(b)); c != 0 {
		return c
	}
	return cmp.Compare(a, b)
}

// CompareRoundKeys orders by event then round number.
func CompareRoundKeys(a, b RoundKey) int {
	if c := CompareEvents(a.Event, b.Event); c != 0 {
		return c
	}
	return cmp.Compare(a.Round, b.Round)
}
