package tui

import "time"

// Option configures a progress Model.
type Option func(*Model)

// WithTitle sets the heading shown above the stage list.
func WithTitle(title string) Option {
	return func(m *Model) {
		m.title = title
	}
}

// WithStages replaces the default stage list.
func WithStages(stages ...string) Option {
	return func(m *Model) {
		m.stages = newStageRows(stages)
	}
}

// WithClock overrides the time source used for stage durations.
func WithClock(now func() time.Time) Option {
	return func(m *Model) {
		if now != nil {
			m.now = now
		}
	}
}

// WithStayOpen keeps the final report on screen until the user quits.
func WithStayOpen() Option {
	return func(m *Model) {
		m.stayOpen = true
	}
}
