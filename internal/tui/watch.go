package tui

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/timer/internal/store"
	"github.com/sadopc/timer/internal/timer"
)

// Controller is the part of the timer engine the live view drives.
type Controller interface {
	Status() (timer.Status, error)
	Pause() (*store.ActiveTimer, error)
	Resume() (*store.ActiveTimer, error)
	Stop() (store.Entry, error)
}

// WatchModel is a Bubble Tea model showing the active timer with a ticking
// clock. Quitting leaves the timer as it is; stopping finishes the entry.
type WatchModel struct {
	ctrl  Controller
	width int

	status  timer.Status
	idle    bool
	stopped *store.Entry
	err     error

	showHelp bool
	help     help.Model
}

func NewWatchModel(c Controller) WatchModel {
	m := WatchModel{ctrl: c, help: help.New()}
	m.refresh()
	return m
}

func (m WatchModel) Init() tea.Cmd {
	return tickCmd()
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Stopped returns the entry produced by the stop key, if it was pressed.
func (m WatchModel) Stopped() *store.Entry {
	return m.stopped
}

func (m WatchModel) Err() error {
	return m.err
}

func (m *WatchModel) refresh() {
	st, err := m.ctrl.Status()
	if errors.Is(err, timer.ErrNoActiveTimer) {
		m.idle = true
		return
	}
	if err != nil {
		m.err = err
		return
	}
	m.idle = false
	m.status = st
}

func (m WatchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case tickMsg:
		m.refresh()
		if m.idle || m.err != nil {
			return m, tea.Quit
		}
		return m, tickCmd()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Help):
			m.showHelp = !m.showHelp
			m.help.ShowAll = m.showHelp
			return m, nil
		case key.Matches(msg, keys.Pause):
			m.refresh()
			if m.idle {
				return m, tea.Quit
			}
			var err error
			if m.status.Timer.State == store.StatePaused {
				_, err = m.ctrl.Resume()
			} else {
				_, err = m.ctrl.Pause()
			}
			if err != nil {
				m.err = err
				return m, tea.Quit
			}
			m.refresh()
			return m, nil
		case key.Matches(msg, keys.Stop):
			e, err := m.ctrl.Stop()
			if err != nil {
				m.err = err
				return m, tea.Quit
			}
			m.stopped = &e
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m WatchModel) View() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("error: %v", m.err)) + "\n"
	}
	if m.stopped != nil {
		return RenderStopped(*m.stopped)
	}
	if m.idle {
		return "No active timer.\n"
	}

	t := m.status.Timer
	clock := timerRunningStyle.Render(formatDuration(m.status.Elapsed))
	state := timerRunningStyle.Render("● running")
	panel := activePanelStyle
	if t.State == store.StatePaused {
		clock = timerPausedStyle.Render(formatDuration(m.status.Elapsed))
		state = timerPausedStyle.Render("❚❚ paused")
		panel = panelStyle
	}

	lines := []string{
		lipgloss.JoinHorizontal(lipgloss.Bottom, titleStyle.Render(t.Name), "  ", state),
		"",
		clock,
	}
	if t.Description != "" {
		lines = append(lines, "", mutedStyle.Render(t.Description))
	}
	if len(t.Tags) > 0 {
		lines = append(lines, tagStyle.Render(joinTags(t.Tags)))
	}

	if m.width > 0 {
		// Width excludes the border.
		panel = panel.Width(max(m.width-2, 20))
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		panel.Render(lipgloss.JoinVertical(lipgloss.Left, lines...)),
		m.help.View(keys),
	) + "\n"
}
