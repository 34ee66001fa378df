package tui

import (
	"fmt"
	"strings"

	"github.com/sadopc/timer/internal/export"
	"github.com/sadopc/timer/internal/store"
)

// RenderEntries renders entries as a table followed by a totals line.
func RenderEntries(entries []store.Entry) string {
	if len(entries) == 0 {
		return "No entries found.\n"
	}

	var rows []string
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("%-10s %-20s %-12s %-12s %s", "ID", "Task", "Duration", "Date", "Tags")))
	rows = append(rows, mutedStyle.Render(strings.Repeat("─", 66)))

	for _, e := range entries {
		// Pad before styling so ANSI codes don't skew the columns.
		rows = append(rows, fmt.Sprintf("%s %-20s %-12s %-12s %s",
			idStyle.Render(fmt.Sprintf("%-10s", ShortID(e.ID))),
			truncate(e.Name, 20),
			formatDuration(e.Duration()),
			e.StartTime.Local().Format("2006-01-02"),
			tagStyle.Render(joinTags(e.Tags)),
		))
	}

	sum := export.Summarize(entries)
	rows = append(rows, mutedStyle.Render(strings.Repeat("─", 66)))
	rows = append(rows, fmt.Sprintf("Total: %s across %d entries", formatDuration(sum.Duration), sum.Entries))
	return strings.Join(rows, "\n") + "\n"
}
