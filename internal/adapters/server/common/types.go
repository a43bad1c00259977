// Package common provides transport-agnostic preview contracts used by HTTP and MCP adapters.
package common

import (
	"context"
	"errors"
	"time"

	"github.com/hylla/nametag/internal/app"
)

// ErrNotReady reports that no snapshot has been published yet.
var ErrNotReady = errors.New("snapshot not ready")

// ErrNotFound reports missing transport-visible resources.
var ErrNotFound = errors.New("not found")

// ErrInvalidRequest reports malformed transport input.
var ErrInvalidRequest = errors.New("invalid request")

// SnapshotReader returns the latest published snapshot.
type SnapshotReader interface {
	Current() (app.Snapshot, bool)
}

// PreviewService is the read-only surface shared by the HTTP and MCP adapters.
type PreviewService interface {
	Summary(context.Context) (Summary, error)
	ListCompetitors(context.Context, ListCompetitorsRequest) ([]CompetitorSummary, error)
	GetCompetitor(context.Context, int) (CompetitorDetail, error)
	ListPages(context.Context) ([]PageSummary, error)
	GetPage(context.Context, int) (PageDetail, error)
	ListRounds(context.Context) ([]Round, error)
	Diagnostics(context.Context) ([]app.WarningSummary, error)
}

// Summary describes the published snapshot at a glance.
type Summary struct {
	SnapshotID      string    `json:"snapshot_id"`
	CompetitionID   string    `json:"competition_id"`
	CompetitionName string    `json:"competition_name"`
	ShortName       string    `json:"short_name"`
	BuiltAt         time.Time `json:"built_at"`
	Competitors     int       `json:"competitors"`
	Pages           int       `json:"pages"`
	Rounds          int       `json:"rounds"`
	Warnings        int       `json:"warnings"`
	Layout          Layout    `json:"layout"`
}

// Layout is the page geometry in centimetres.
type Layout struct {
	Paper       string  `json:"paper"`
	PaperWidth  float64 `json:"paper_width_cm"`
	PaperHeight float64 `json:"paper_height_cm"`
	TagWidth    float64 `json:"tag_width_cm"`
	TagHeight   float64 `json:"tag_height_cm"`
	Columns     int     `json:"columns"`
	Rows        int     `json:"rows"`
	PadMode     string  `json:"pad_mode"`
}

// ListCompetitorsRequest filters the competitor list.
type ListCompetitorsRequest struct {
	Query   string
	Country string
	Role    string
	Limit   int
}

// CompetitorSummary is one roster row.
type CompetitorSummary struct {
	Index        int      `json:"index"`
	RegistrantID int      `json:"registrant_id"`
	WCAID        string   `json:"wca_id,omitempty"`
	Name         string   `json:"name"`
	CountryISO2  string   `json:"country_iso2"`
	Country      string   `json:"country"`
	Competitions int      `json:"competitions"`
	Newcomer     bool     `json:"newcomer"`
	Roles        []string `json:"roles,omitempty"`
	Page         int      `json:"page"`
}

// CompetitorDetail adds grouped assignments to a roster row.
type CompetitorDetail struct {
	CompetitorSummary
	NativeName string       `json:"native_name,omitempty"`
	Rounds     []RoundDuty  `json:"rounds"`
	Duties     []Assignment `json:"assignments"`
}

// RoundDuty is one competitor's duties in a round.
type RoundDuty struct {
	Event     string    `json:"event"`
	Round     int       `json:"round"`
	Group     int       `json:"group,omitempty"`
	Competing bool      `json:"competing"`
	Helping   []string  `json:"helping,omitempty"`
	Start     time.Time `json:"start"`
}

// Assignment is one resolved duty.
type Assignment struct {
	ActivityID int       `json:"activity_id"`
	Event      string    `json:"event"`
	Round      int       `json:"round"`
	Group      int       `json:"group"`
	Role       string    `json:"role"`
	Room       string    `json:"room,omitempty"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
}

// PageSummary is one printed sheet.
type PageSummary struct {
	Number       int `json:"number"`
	Slots        int `json:"slots"`
	Competitors  int `json:"competitors"`
	Placeholders int `json:"placeholders"`
}

// PageDetail lists roster indexes per slot; -1 marks a placeholder.
type PageDetail struct {
	PageSummary
	Front [][]int `json:"front"`
	Back  []int   `json:"back"`
}

// Round is one round window.
type Round struct {
	Event string    `json:"event"`
	Round int       `json:"round"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}
