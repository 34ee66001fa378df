package tui

import (
	"strings"
	"time"

	"github.com/sadopc/timer/internal/export"
)

// ShortIDLen is how much of an entry id is shown in listings.
const ShortIDLen = 8

type tickMsg time.Time

// --- Helpers ---

func formatDuration(d time.Duration) string {
	return export.FormatDuration(d)
}

// ShortID returns the first ShortIDLen characters of id.
func ShortID(id string) string {
	if len(id) <= ShortIDLen {
		return id
	}
	return id[:ShortIDLen]
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}

func joinTags(tags []string) string {
	if len(tags) == 0 {
		return ""
	}
	return "#" + strings.Join(tags, " #")
}
