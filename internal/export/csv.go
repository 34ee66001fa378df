package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sadopc/timer/internal/store"
)

// TagSeparator joins an entry's tags in the CSV tags column.
const TagSeparator = ";"

var csvHeader = []string{"id", "name", "description", "tags", "start_time", "end_time", "duration"}

// ToCSV writes a header row and one row per entry. Timestamps are RFC 3339 and
// duration is whole seconds excluding pauses.
func ToCSV(w io.Writer, entries []store.Entry) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, e := range entries {
		row := []string{
			e.ID,
			e.Name,
			e.Description,
			strings.Join(e.Tags, TagSeparator),
			e.StartTime.Format(time.RFC3339),
			e.EndTime.Format(time.RFC3339),
			fmt.Sprintf("%d", int64(e.Duration().Seconds())),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row %s: %w", e.ID, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// FormatDuration renders d as HH:MM:SS; hours may exceed 24.
func FormatDuration(d time.Duration) string {
	secs := int64(d.Seconds())
	if secs < 0 {
		secs = 0
	}
	h := secs / 3600
	m := (secs % 3600) / 60
	s := secs % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}
