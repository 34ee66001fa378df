package export

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/sadopc/timer/internal/store"
)

// Format is an export encoding.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// ParseFormat accepts "csv" or "json".
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatCSV, FormatJSON:
		return f, nil
	default:
		return "", fmt.Errorf("unknown export format %q (want csv or json)", s)
	}
}

// Encode writes entries to w in format f.
func Encode(w io.Writer, entries []store.Entry, f Format) error {
	switch f {
	case FormatCSV:
		return ToCSV(w, entries)
	case FormatJSON:
		return ToJSON(w, entries)
	default:
		return fmt.Errorf("unknown export format %q", f)
	}
}

// Write encodes entries to path, or to stdout when path is empty. The file is
// only replaced once encoding has succeeded.
func Write(entries []store.Entry, f Format, path string, stdout io.Writer) error {
	if path == "" {
		return Encode(stdout, entries, f)
	}
	var buf bytes.Buffer
	if err := Encode(&buf, entries, f); err != nil {
		return err
	}
	if err := store.WriteFileAtomic(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s file: %w", f, err)
	}
	return nil
}

// TaskTotal aggregates entries that share a name.
type TaskTotal struct {
	Name     string
	Count    int
	Duration time.Duration
}

// Summary totals a set of entries overall and per task name.
type Summary struct {
	Entries  int
	Duration time.Duration
	Tasks    []TaskTotal
}

// Summarize groups entries by name. Tasks are ordered by total duration,
// longest first, then by name.
func Summarize(entries []store.Entry) Summary {
	var s Summary
	byName := make(map[string]*TaskTotal)
	for _, e := range entries {
		d := e.Duration()
		s.Entries++
		s.Duration += d
		t, ok := byName[e.Name]
		if !ok {
			t = &TaskTotal{Name: e.Name}
			byName[e.Name] = t
		}
		t.Count++
		t.Duration += d
	}
	for _, t := range byName {
		s.Tasks = append(s.Tasks, *t)
	}
	sort.Slice(s.Tasks, func(i, j int) bool {
		if s.Tasks[i].Duration != s.Tasks[j].Duration {
			return s.Tasks[i].Duration > s.Tasks[j].Duration
		}
		return s.Tasks[i].Name < s.Tasks[j].Name
	})
	return s
}
