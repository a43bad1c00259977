// Package wcif holds the competition interchange document as published by the
// WCA public API. Only the fields the generator reads are modelled.
package wcif

import (
	"encoding/json"
	"fmt"
	"io"
)

type Competition struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	ShortName string   `json:"shortName"`
	Persons   []Person `json:"persons"`
	Schedule  Schedule `json:"schedule"`
}

type Person struct {
	RegistrantID *int          `json:"registrantId"`
	Name         string        `json:"name"`
	WCAUserID    int           `json:"wcaUserId"`
	WCAID        *string       `json:"wcaId"`
	CountryIso2  string        `json:"countryIso2"`
	Roles        []string      `json:"roles"`
	Registration *Registration `json:"registration"`
	Assignments  []Assignment  `json:"assignments"`
}

// ID returns the WCA id or "" for newcomers.
func (p Person) ID() string {
	if p.WCAID == nil {
		return ""
	}
	return *p.WCAID
}

type Registration struct {
	Status string `json:"status"`
}

type Assignment struct {
	ActivityID     int    `json:"activityId"`
	AssignmentCode string `json:"assignmentCode"`
}

type Schedule struct {
	Venues []Venue `json:"venues"`
}

type Venue struct {
	Name     string `json:"name"`
	Timezone string `json:"timezone"`
	Rooms    []Room `json:"rooms"`
}

type Room struct {
	Name       string     `json:"name"`
	Activities []Activity `json:"activities"`
}

type Activity struct {
	ID              int        `json:"id"`
	ActivityCode    string     `json:"activityCode"`
	StartTime       string     `json:"startTime"`
	EndTime         string     `json:"endTime"`
	ChildActivities []Activity `json:"childActivities"`
}

// Decode reads one competition document.
func Decode(r io.Reader) (Competition, error) {
	var comp Competition
	if err := json.NewDecoder(r).Decode(&comp); err != nil {
		return Competition{}, fmt.Errorf("decode wcif: %w", err)
	}
	return comp, nil
}
