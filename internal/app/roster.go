package app

import (
	"bytes"
	"cmp"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/hylla/nametag/internal/wcif"
)

// MissingCountryPolicy selects what happens to persons whose country is not in the table.
type MissingCountryPolicy string

// MissingCountryFail and related constants define the supported policies.
const (
	MissingCountryFail MissingCountryPolicy = "fail"
	MissingCountryDrop MissingCountryPolicy = "drop"
)

const registrationAccepted = "accepted"

// RosterOptions holds configuration for roster normalization.
type RosterOptions struct {
	MissingCountry MissingCountryPolicy
	IncludePending bool
	Locale         language.Tag
}

// RosterRow is one normalized person, before assignments are resolved.
type RosterRow struct {
	Index        int
	RegistrantID int
	WCAID        string
	Name         string
	CountryISO2  string
	Country      string
	Experience   int
	Roles        []string
	Assignments  []wcif.Assignment
}

// ParseMissingCountryPolicy validates a policy name. Empty means fail.
func ParseMissingCountryPolicy(raw string) (MissingCountryPolicy, error) {
	switch p := MissingCountryPolicy(strings.ToLower(strings.TrimSpace(raw))); p {
	case "":
		return MissingCountryFail, nil
	case MissingCountryFail, MissingCountryDrop:
		return p, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidMissingCountry, raw)
	}
}

// NormalizeRoster joins persons with participation counts and country names,
// sorts them by display name and assigns 0-based indexes.
func NormalizeRoster(persons []wcif.Person, idx ParticipationIndex, countries CountryTable, opts RosterOptions, diag *Diagnostics) ([]RosterRow, error) {
	policy := opts.MissingCountry
	if policy == "" {
		policy = MissingCountryFail
	}

	rows := make([]RosterRow, 0, len(persons))
	for _, p := range persons {
		if !opts.IncludePending && p.Registration != nil && p.Registration.Status != registrationAccepted {
			diag.Warn(WarningSkippedRegistration, "%s registration status %q", p.Name, p.Registration.Status)
			continue
		}
		country, ok := countries.Name(p.CountryIso2)
		if !ok {
			if policy == MissingCountryFail {
				return nil, fmt.Errorf("%w: %q for %s", ErrUnknownCountry, p.CountryIso2, p.Name)
			}
			diag.Warn(WarningUnknownCountry, "%s has unknown country %q", p.Name, p.CountryIso2)
			continue
		}
		wcaID := p.ID()
		rows = append(rows, RosterRow{
			RegistrantID: registrantKey(p),
			WCAID:        wcaID,
			Name:         strings.TrimSpace(p.Name),
			CountryISO2:  strings.ToUpper(p.CountryIso2),
			Country:      country,
			Experience:   idx.Experience(wcaID),
			Roles:        slices.Clone(p.Roles),
			Assignments:  p.Assignments,
		})
	}

	sortRoster(rows, opts.Locale)
	for i := range rows {
		rows[i].Index = i
	}
	return rows, nil
}

// registrantKey returns the registrant id, or the negated user id for persons
// listed without a registration so keys stay unique.
func registrantKey(p wcif.Person) int {
	if p.RegistrantID != nil {
		return *p.RegistrantID
	}
	return -p.WCAUserID
}

func sortRoster(rows []RosterRow, locale language.Tag) {
	type keyed struct {
		key []byte
		row RosterRow
	}
	var buf collate.Buffer
	col := collate.New(locale)
	items := make([]keyed, len(rows))
	for i, row := range rows {
		items[i] = keyed{key: bytes.Clone(col.KeyFromString(&buf, row.Name)), row: row}
		buf.Reset()
	}
	slices.SortStableFunc(items, func(a, b keyed) int {
		if c := bytes.Compare(a.key, b.key); c != 0 {
			return c
		}
		if c := strings.Compare(a.row.Name, b.row.Name); c != 0 {
			return c
		}
		return cmp.Compare(a.row.RegistrantID, b.row.RegistrantID)
	})
	for i := range items {
		rows[i] = items[i].row
	}
}
