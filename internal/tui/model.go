// Package tui renders pipeline progress while name tags are generated.
package tui

import (
	"fmt"
	"strings"
	"time"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	"charm.land/bubbles/v2/spinner"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/hylla/nametag/internal/app"
)

// StageRender is the stage the CLI reports while writing output files.
const StageRender = "render"

// DefaultStages lists pipeline stages in display order.
func DefaultStages() []string {
	return []string{
		string(app.StageFetch),
		string(app.StageHistory),
		string(app.StageCountries),
		string(app.StageRoster),
		string(app.StageSchedule),
		string(app.StageAssignments),
		string(app.StagePages),
		StageRender,
	}
}

type stageState int

const (
	statePending stageState = iota
	stateRunning
	stateDone
	stateFailed
)

type stageRow struct {
	name    string
	state   stageState
	started time.Time
	elapsed time.Duration
	err     error
}

func newStageRows(names []string) []stageRow {
	rows := make([]stageRow, 0, len(names))
	for _, name := range names {
		rows = append(rows, stageRow{name: name})
	}
	return rows
}

// StageMsg reports a stage starting, or finishing when Done is set.
type StageMsg struct {
	Stage string
	Done  bool
	Err   error
}

// DoneMsg ends the run. Report is markdown shown under the stage list.
type DoneMsg struct {
	Report string
	Err    error
}

// Model is the progress display.
type Model struct {
	title    string
	stages   []stageRow
	spinner  spinner.Model
	help     help.Model
	keys     keyMap
	md       reportRenderer
	now      func() time.Time
	width    int
	stayOpen bool

	finished bool
	aborted  bool
	report   string
	err      error
}

// NewModel constructs a progress model.
func NewModel(opts ...Option) Model {
	m := Model{
		title:  "nametag",
		stages: newStageRows(DefaultStages()),
		spinner: spinner.New(
			spinner.WithSpinner(spinner.MiniDot),
			spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("62"))),
		),
		help: help.New(),
		keys: newKeyMap(),
		now:  time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&m)
		}
	}
	return m
}

// Aborted reports whether the user quit before the run finished.
func (m Model) Aborted() bool {
	return m.aborted
}

// Err returns the run error delivered with DoneMsg.
func (m Model) Err() error {
	return m.err
}

// Init starts the spinner.
func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update applies one message.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case spinner.TickMsg:
		if m.finished {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case StageMsg:
		m.applyStage(msg)
		return m, nil
	case DoneMsg:
		m.finished = true
		m.report = msg.Report
		m.err = msg.Err
		if m.stayOpen {
			return m, nil
		}
		return m, tea.Quit
	case tea.KeyPressMsg:
		switch {
		case key.Matches(msg, m.keys.quit):
			if !m.finished {
				m.aborted = true
			}
			return m, tea.Quit
		case key.Matches(msg, m.keys.toggleHelp):
			m.help.ShowAll = !m.help.ShowAll
			return m, nil
		}
	}
	return m, nil
}

func (m *Model) applyStage(msg StageMsg) {
	idx := -1
	for i := range m.stages {
		if m.stages[i].name == msg.Stage {
			idx = i
			break
		}
	}
	if idx < 0 {
		m.stages = append(m.stages, stageRow{name: msg.Stage})
		idx = len(m.stages) - 1
	}
	row := &m.stages[idx]
	now := m.now()
	switch {
	case !msg.Done:
		row.state = stateRunning
		row.started = now
	case msg.Err != nil:
		row.state = stateFailed
		row.err = msg.Err
		row.elapsed = now.Sub(row.started)
	default:
		row.state = stateDone
		row.elapsed = now.Sub(row.started)
	}
}

// View renders the stage list, the final report, and help.
func (m Model) View() tea.View {
	return tea.NewView(m.render())
}

func (m Model) render() string {
	accent := lipgloss.Color("62")
	muted := lipgloss.Color("241")
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	doneStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	failStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	pendingStyle := lipgloss.NewStyle().Foreground(muted)
	nameStyle := lipgloss.NewStyle().Width(12)

	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n\n")
	for _, row := range m.stages {
		var marker, detail string
		switch row.state {
		case stateRunning:
			marker = m.spinner.View()
			if m.finished {
				marker = pendingStyle.Render("·")
			}
		case stateDone:
			marker = doneStyle.Render("✓")
			detail = pendingStyle.Render(formatElapsed(row.elapsed))
		case stateFailed:
			marker = failStyle.Render("✗")
			detail = failStyle.Render(row.err.Error())
		default:
			marker = pendingStyle.Render("·")
		}
		fmt.Fprintf(&b, " %s %s %s\n", marker, nameStyle.Render(row.name), detail)
	}

	if m.finished {
		b.WriteString("\n")
		if m.err != nil {
			b.WriteString(failStyle.Render("failed: " + m.err.Error()))
			b.WriteString("\n")
		}
		if report := m.md.render(m.report, max(0, m.width-2)); report != "" {
			b.WriteString(report)
			b.WriteString("\n")
		}
	} else if m.aborted {
		b.WriteString("\n" + failStyle.Render("cancelled") + "\n")
	}

	helpBubble := m.help
	helpBubble.SetWidth(max(0, m.width-2))
	b.WriteString("\n")
	b.WriteString(lipgloss.NewStyle().Foreground(accent).Render(helpBubble.View(m.keys)))
	return b.String()
}

func formatElapsed(d time.Duration) string {
	if d < time.Millisecond {
		return "<1ms"
	}
	return d.Round(time.Millisecond).String()
}
