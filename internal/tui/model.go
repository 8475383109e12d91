// Package tui is a terminal timeline host: it mounts the normalized schedule
// as colored bars and drives the window navigator from the keyboard.
package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/m-mizutani/goerr/v2"

	"schedview/internal/app"
	appLog "schedview/internal/log"
	"schedview/internal/source"
	"schedview/internal/timeline"
)

// Model is the bubbletea model. The terminal is the mount target; it becomes
// available with the first window size message.
type Model struct {
	ctx     context.Context
	env     *app.Env
	fetcher *source.Fetcher

	stage  *timeline.Stage
	nav    *timeline.Navigator
	widget *timeline.Widget

	keys   keyMap
	help   help.Model
	width  int
	height int
}

func New(ctx context.Context, env *app.Env) *Model {
	m := &Model{
		ctx:     ctx,
		env:     env,
		fetcher: env.Fetcher(),
		keys:    defaultKeyMap(),
		help:    help.New(),
	}
	m.stage = env.NewStage(m.mount)
	return m
}

func (m *Model) mount(ds timeline.Dataset) {
	m.nav, m.widget = m.env.Mount(ds)
}

// Init starts both loads.
func (m *Model) Init() tea.Cmd {
	loc := m.env.Locations()
	return tea.Batch(
		func() tea.Msg {
			users, err := m.fetcher.FetchUsers(m.ctx, loc.Users)
			return source.Event{Kind: source.KindUsers, Users: users, Err: err}
		},
		func() tea.Msg {
			doc, err := m.fetcher.FetchSchedule(m.ctx, loc.Schedule)
			return source.Event{Kind: source.KindSchedule, Schedule: doc, Err: err}
		},
	)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case source.Event:
		source.Apply(m.stage, msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.stage.SetTarget(true)
	case tea.KeyMsg:
		return m, m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return nil
	}

	// Navigation is a no-op until the widget is mounted.
	if m.nav == nil {
		return nil
	}
	switch {
	case key.Matches(msg, m.keys.Today):
		m.nav.Today()
	case key.Matches(msg, m.keys.Previous):
		m.nav.Previous()
	case key.Matches(msg, m.keys.Next):
		m.nav.Next()
	case key.Matches(msg, m.keys.Granularity):
		idx := int(msg.String()[0] - '1')
		if idx >= 0 && idx < len(timeline.Granularities) {
			m.nav.ChangeGranularity(timeline.Granularities[idx], m.nav.AnchorMode())
		}
	}
	return nil
}

// Run shows the terminal UI until the user quits or ctx is cancelled.
func Run(ctx context.Context, env *app.Env) error {
	p := tea.NewProgram(New(ctx, env), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return goerr.Wrap(err, "terminal UI failed")
	}
	appLog.Info("terminal UI closed")
	return nil
}
