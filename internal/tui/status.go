package tui

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/sadopc/timer/internal/store"
	"github.com/sadopc/timer/internal/timer"
)

// RenderStatus describes the active timer.
func RenderStatus(st timer.Status) string {
	t := st.Timer
	state := timerRunningStyle.Render("RUNNING")
	if t.State == store.StatePaused {
		state = timerPausedStyle.Render("PAUSED")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s [%s]\n", titleStyle.Render(t.Name), state)
	fmt.Fprintf(&b, "  Started: %s %s\n",
		t.StartTime.Local().Format("2006-01-02 15:04:05"),
		mutedStyle.Render("("+humanize.RelTime(t.StartTime, st.At, "ago", "from now")+")"))
	fmt.Fprintf(&b, "  Elapsed: %s\n", highlightStyle.Render(formatDuration(st.Elapsed)))
	if t.PauseTotal > 0 || t.State == store.StatePaused {
		paused := t.PauseTotal
		if t.PauseStartedAt != nil {
			paused += st.At.Sub(*t.PauseStartedAt)
		}
		fmt.Fprintf(&b, "  Paused:  %s\n", formatDuration(paused))
	}
	if t.Description != "" {
		fmt.Fprintf(&b, "  Description: %s\n", t.Description)
	}
	if len(t.Tags) > 0 {
		fmt.Fprintf(&b, "  Tags: %s\n", tagStyle.Render(joinTags(t.Tags)))
	}
	return b.String()
}

// RenderIdle is shown by status when no timer is active. last may be nil.
func RenderIdle(last *store.Entry) string {
	out := "No active timer.\n"
	if last != nil {
		out += fmt.Sprintf("\nLast entry: '%s' (%s, %s)\n",
			last.Name, formatDuration(last.Duration()), humanize.Time(last.EndTime))
	}
	return out
}

// RenderStarted confirms a new timer.
func RenderStarted(t store.ActiveTimer) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", successStyle.Render(fmt.Sprintf("Started timer for '%s'", t.Name)))
	if t.Description != "" {
		fmt.Fprintf(&b, "  Description: %s\n", t.Description)
	}
	if len(t.Tags) > 0 {
		fmt.Fprintf(&b, "  Tags: %s\n", strings.Join(t.Tags, ", "))
	}
	return b.String()
}

// RenderStopped confirms a finished entry.
func RenderStopped(e store.Entry) string {
	return fmt.Sprintf("%s\n  Duration: %s\n  Entry ID: %s\n",
		successStyle.Render(fmt.Sprintf("Stopped timer for '%s'", e.Name)),
		formatDuration(e.Duration()),
		idStyle.Render(e.ID))
}
