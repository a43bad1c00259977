package tui

import (
	tea "charm.land/bubbletea/v2"

	"github.com/hylla/nametag/internal/app"
)

// Sender delivers messages to a running program.
type Sender interface {
	Send(tea.Msg)
}

// Observer forwards pipeline stage events to a running program.
func Observer(p Sender) app.Observer {
	return func(ev app.StageEvent) {
		p.Send(StageMsg{Stage: string(ev.Stage), Done: ev.Done, Err: ev.Err})
	}
}
