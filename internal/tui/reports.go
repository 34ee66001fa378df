package tui

import (
	"fmt"
	"strings"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/lipgloss"
	"github.com/sadopc/timer/internal/export"
)

var barColors = []lipgloss.Color{
	colorPrimary, colorSecondary, colorHighlight, colorSuccess, colorWarning, colorError,
}

// maxBars caps the chart; remaining tasks are still listed in the table.
const maxBars = 8

// RenderSummary draws hours per task as a bar chart above a totals table.
func RenderSummary(title string, s export.Summary, width int) string {
	if s.Entries == 0 {
		return panelStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
			titleStyle.Render(title), "", mutedStyle.Render("No data for this period")))
	}
	w := width - 8
	if w < 20 {
		w = 20
	}

	return panelStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(title),
		"",
		buildChart(s, w),
		"",
		renderSummaryTable(s, w),
	))
}

func buildChart(s export.Summary, w int) string {
	chart := barchart.New(w, 12)

	var bars []barchart.BarData
	for i, t := range s.Tasks {
		if i == maxBars {
			break
		}
		style := lipgloss.NewStyle().Foreground(barColors[i%len(barColors)])
		bars = append(bars, barchart.BarData{
			Label: truncate(t.Name, 10),
			Values: []barchart.BarValue{{
				Name:  t.Name,
				Value: t.Duration.Hours(),
				Style: style,
			}},
		})
	}

	chart.PushAll(bars)
	chart.Draw()
	return chart.View()
}

func renderSummaryTable(s export.Summary, w int) string {
	var rows []string
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-24s %10s %8s", "Task", "Duration", "Entries")))
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", min(w-4, 44))))

	for i, t := range s.Tasks {
		dot := lipgloss.NewStyle().Foreground(barColors[i%len(barColors)]).Render("●")
		rows = append(rows, fmt.Sprintf("  %s %-22s %10s %8d",
			dot, truncate(t.Name, 22), formatDuration(t.Duration), t.Count,
		))
	}
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", min(w-4, 44))))
	rows = append(rows, fmt.Sprintf("  %-24s %10s %8d", "Total", formatDuration(s.Duration), s.Entries))
	return strings.Join(rows, "\n")
}
