package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ActivityCode is the parsed form of a code like "333-r1-g2".
type ActivityCode struct {
	Event string
	Round int
	Group int
}

// ParseActivityCode splits a hyphen separated code and keeps the first three
// segments. Round and group tokens carry a one character prefix ("r1", "g2").
func ParseActivityCode(code string) (ActivityCode, error) {
	parts := strings.Split(strings.TrimSpace(code), "-")
	if len(parts) < 3 {
		return ActivityCode{}, fmt.Errorf("%w: %q has %d segments", ErrInvalidActivityCode, code, len(parts))
	}
	event := parts[0]
	if event == "" {
		return ActivityCode{}, fmt.Errorf("%w: %q has empty event", ErrInvalidActivityCode, code)
	}
	round, err := prefixedNumber(parts[1])
	if err != nil {
		return ActivityCode{}, fmt.Errorf("%w: %q round: %v", ErrInvalidActivityCode, code, err)
	}
	group, err := prefixedNumber(parts[2])
	if err != nil {
		return ActivityCode{}, fmt.Errorf("%w: %q group: %v", ErrInvalidActivityCode, code, err)
	}
	return ActivityCode{Event: event, Round: round, Group: group}, nil
}

func prefixedNumber(token string) (int, error) {
	if len(token) < 2 {
		return 0, fmt.Errorf("token %q too short", token)
	}
	n, err := strconv.Atoi(token[1:])
	if err != nil {
		return 0, err
	}
	if n < 1 {
		return 0, fmt.Errorf("token %q must be positive", token)
	}
	return n, nil
}

// String renders the canonical "event-rN-gM" form.
func (c ActivityCode) String() string {
	return fmt.Sprintf("%s-r%d-g%d", c.Event, c.Round, c.Group)
}

// RoundKey returns the (event, round) pair the code belongs to.
func (c ActivityCode) RoundKey() RoundKey {
	return RoundKey{Event: c.Event, Round: c.Round}
}

// ActivityDescriptor is one schedulable group occurrence in a room.
// Start and End belong to the parent activity; GroupStart and GroupEnd to the group itself.
type ActivityDescriptor struct {
	ID         int
	Code       ActivityCode
	Start      time.Time
	End        time.Time
	GroupStart time.Time
	GroupEnd   time.Time
	Room       string
	RoomSlug   string
}

// RoomSlug lowercases a room name and replaces spaces with hyphens.
func RoomSlug(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), " ", "-")
}
