package domain

import (
	"regexp"
	"strings"
)

// Competitor is a roster row joined with its resolved assignments.
type Competitor struct {
	Index        int
	RegistrantID int
	WCAID        string
	Name         string
	CountryISO2  string
	Country      string
	Experience   int
	Roles        []string
	Assignments  []Assignment
}

// Competitions returns the number of past competitions.
func (c Competitor) Competitions() int {
	if c.Experience < 1 {
		return 0
	}
	return c.Experience - 1
}

// IsNewcomer reports whether this is the person's first competition.
func (c Competitor) IsNewcomer() bool {
	return c.Experience <= 1
}

// LatinName returns the name without a parenthesized native part.
func (c Competitor) LatinName() string {
	latin, _ := SplitNativeName(c.Name)
	return latin
}

// NativeName returns the parenthesized native part of the name, if any.
func (c Competitor) NativeName() string {
	_, native := SplitNativeName(c.Name)
	return native
}

// FirstName returns the first token of the latin name.
func (c Competitor) FirstName() string {
	fields := strings.Fields(c.LatinName())
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// LastName returns everything after the first token of the latin name.
func (c Competitor) LastName() string {
	fields := strings.Fields(c.LatinName())
	if len(fields) < 2 {
		return ""
	}
	return strings.Join(fields[1:], " ")
}

// Rounds groups the competitor's assignments by round.
func (c Competitor) Rounds() []RoundAssignments {
	return GroupAssignments(c.Assignments)
}

var nativeNamePattern = regexp.MustCompile(`^([^()]*)(\(([^()]*)\))?`)

// SplitNativeName splits "Latin Name (Native)" into its two parts.
func SplitNativeName(name string) (latin, native string) {
	m := nativeNamePattern.FindStringSubmatch(name)
	if m == nil {
		return strings.TrimSpace(name), ""
	}
	return strings.TrimSpace(m[1]), strings.TrimSpace(m[3])
}
