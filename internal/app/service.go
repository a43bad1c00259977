package app

import (
	"context"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/hylla/nametag/internal/domain"
	"github.com/hylla/nametag/internal/wcif"
)

// IDGenerator returns unique identifiers for snapshots.
type IDGenerator func() string

// Clock returns the current time.
type Clock func() time.Time

// StageEvent reports progress of one pipeline stage.
type StageEvent struct {
	Stage Stage
	Done  bool
	Err   error
}

// Observer receives stage events; it must not block.
type Observer func(StageEvent)

// ServiceConfig holds configuration for service.
type ServiceConfig struct {
	Layout     domain.Layout
	PadMode    domain.PadMode
	Roster     RosterOptions
	Schedule   FlattenOptions
	UseHistory bool
	Observer   Observer
}

// Service runs the tag generation pipeline.
type Service struct {
	competitions CompetitionSource
	history      HistorySource
	idGen        IDGenerator
	clock        Clock
	cfg          ServiceConfig
}

// NewService constructs a new value for this package.
func NewService(competitions CompetitionSource, history HistorySource, idGen IDGenerator, clock Clock, cfg ServiceConfig) *Service {
	if idGen == nil {
		idGen = func() string { return "" }
	}
	if clock == nil {
		clock = time.Now
	}
	if cfg.PadMode == "" {
		cfg.PadMode = domain.PadNone
	}
	return &Service{
		competitions: competitions,
		history:      history,
		idGen:        idGen,
		clock:        clock,
		cfg:          cfg,
	}
}

// Layout returns the configured page layout.
func (s *Service) Layout() domain.Layout {
	return s.cfg.Layout
}

// Build fetches the competition and history sources concurrently, then runs
// roster, schedule, assignment and pagination stages in order. Any fatal
// error aborts the whole build; recoverable anomalies land in the snapshot's
// diagnostics.
func (s *Service) Build(ctx context.Context, competitionID string) (Snapshot, error) {
	competitionID = strings.TrimSpace(competitionID)
	if competitionID == "" {
		return Snapshot{}, ErrInvalidCompetitionID
	}

	var (
		comp      wcif.Competition
		idx       = NewParticipationIndex(nil)
		countries CountryTable
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.track(StageFetch, func() (err error) {
			comp, err = s.competitions.FetchCompetition(gctx, competitionID)
			return stageErr(StageFetch, competitionID, err)
		})
	})
	if s.cfg.UseHistory {
		g.Go(func() error {
			return s.track(StageHistory, func() (err error) {
				idx, err = s.history.LoadParticipation(gctx)
				return stageErr(StageHistory, "results export", err)
			})
		})
	}
	g.Go(func() error {
		return s.track(StageCountries, func() (err error) {
			countries, err = s.history.LoadCountries(gctx)
			return stageErr(StageCountries, "countries export", err)
		})
	})
	if err := g.Wait(); err != nil {
		return Snapshot{}, err
	}

	diag := NewDiagnostics()
	var rows []RosterRow
	if err := s.track(StageRoster, func() (err error) {
		rows, err = NormalizeRoster(comp.Persons, idx, countries, s.cfg.Roster, diag)
		return stageErr(StageRoster, competitionID, err)
	}); err != nil {
		return Snapshot{}, err
	}

	var schedule Schedule
	if err := s.track(StageSchedule, func() (err error) {
		schedule, err = FlattenSchedule(comp.Schedule, s.cfg.Schedule, diag)
		return stageErr(StageSchedule, competitionID, err)
	}); err != nil {
		return Snapshot{}, err
	}

	var competitors []domain.Competitor
	s.step(StageAssignments, func() {
		competitors = BuildCompetitors(rows, ResolveRosterAssignments(rows, schedule, diag))
	})

	var pages []domain.Page
	if err := s.track(StagePages, func() (err error) {
		pages, err = Paginate(competitors, s.cfg.Layout, s.cfg.PadMode)
		return stageErr(StagePages, competitionID, err)
	}); err != nil {
		return Snapshot{}, err
	}

	return Snapshot{
		ID:              s.idGen(),
		CompetitionID:   competitionID,
		CompetitionName: comp.Name,
		ShortName:       shortName(comp),
		BuiltAt:         s.clock().UTC(),
		Layout:          s.cfg.Layout,
		PadMode:         s.cfg.PadMode,
		Competitors:     competitors,
		Pages:           pages,
		Rounds:          schedule.RoundSlots(),
		Diagnostics:     diag.Summary(),
	}, nil
}

func (s *Service) track(stage Stage, fn func() error) error {
	s.notify(StageEvent{Stage: stage})
	err := fn()
	s.notify(StageEvent{Stage: stage, Done: true, Err: err})
	return err
}

// step reports a stage that cannot fail.
func (s *Service) step(stage Stage, fn func()) {
	s.notify(StageEvent{Stage: stage})
	fn()
	s.notify(StageEvent{Stage: stage, Done: true})
}

func (s *Service) notify(ev StageEvent) {
	if s.cfg.Observer != nil {
		s.cfg.Observer(ev)
	}
}

func shortName(comp wcif.Competition) string {
	if name := strings.TrimSpace(comp.ShortName); name != "" {
		return name
	}
	return comp.Name
}
