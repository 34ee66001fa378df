package store

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// List returns the entries of s selected by f, most recent first.
func List(s Store, f EntryFilter) ([]Entry, error) {
	entries, err := s.Entries()
	if err != nil {
		return nil, err
	}
	return Filter(entries, f), nil
}

// Filter selects entries by f and orders them by start time, most recent
// first. Entries with equal start times keep the later-inserted one first.
// entries must be in insertion order; it is not modified.
func Filter(entries []Entry, f EntryFilter) []Entry {
	now := f.Now
	if now.IsZero() {
		now = time.Now()
	}

	var from, to time.Time
	switch {
	case f.Today:
		from, to = DayBounds(now)
	case f.Week:
		from, to = WeekBounds(now)
	}

	out := make([]Entry, 0, len(entries))
	for i := len(entries) - 1; i >= 0; i-- {
		e := entries[i]
		if !from.IsZero() && (e.StartTime.Before(from) || !e.StartTime.Before(to)) {
			continue
		}
		out = append(out, e)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartTime.After(out[j].StartTime)
	})

	if f.HasLimit && len(out) > f.Limit {
		out = out[:max(f.Limit, 0)]
	}
	return out
}

// DayBounds returns [midnight, next midnight) of the calendar day containing t,
// in t's location.
func DayBounds(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 0, 1)
}

// WeekBounds returns the Monday-based calendar week containing t.
func WeekBounds(t time.Time) (time.Time, time.Time) {
	day, _ := DayBounds(t)
	weekday := day.Weekday()
	if weekday == time.Sunday {
		weekday = 7
	}
	start := day.AddDate(0, 0, -int(weekday-time.Monday))
	return start, start.AddDate(0, 0, 7)
}

// ResolveID finds the single entry whose id equals or starts with prefix.
func ResolveID(entries []Entry, prefix string) (Entry, error) {
	if prefix == "" {
		return Entry{}, fmt.Errorf("empty id: %w", ErrEntryNotFound)
	}
	var matches []Entry
	for _, e := range entries {
		if e.ID == prefix {
			return e, nil
		}
		if strings.HasPrefix(e.ID, prefix) {
			matches = append(matches, e)
		}
	}
	switch len(matches) {
	case 0:
		return Entry{}, fmt.Errorf("%q: %w", prefix, ErrEntryNotFound)
	case 1:
		return matches[0], nil
	default:
		return Entry{}, fmt.Errorf("%q matches %d entries: %w", prefix, len(matches), ErrAmbiguousID)
	}
}
