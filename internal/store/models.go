package store

import (
	"encoding/json"
	"fmt"
	"time"
)

// Entry is a completed time entry. It is never modified once stored.
type Entry struct {
	ID          string
	Name        string
	Description string
	Tags        []string
	StartTime   time.Time
	EndTime     time.Time
	PauseTotal  time.Duration
}

// Duration is the time spent running, excluding pauses.
func (e Entry) Duration() time.Duration {
	d := e.EndTime.Sub(e.StartTime) - e.PauseTotal
	if d < 0 {
		return 0
	}
	return d
}

type entryJSON struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Tags        []string  `json:"tags"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time"`
	PauseTotal  string    `json:"accumulated_pause_duration"`
	DurationSec int64     `json:"duration_seconds"`
}

func (e Entry) MarshalJSON() ([]byte, error) {
	tags := e.Tags
	if tags == nil {
		tags = []string{}
	}
	return json.Marshal(entryJSON{
		ID:          e.ID,
		Name:        e.Name,
		Description: e.Description,
		Tags:        tags,
		StartTime:   e.StartTime,
		EndTime:     e.EndTime,
		PauseTotal:  e.PauseTotal.String(),
		DurationSec: int64(e.Duration().Seconds()),
	})
}

// UnmarshalJSON ignores duration_seconds; it is derived on write.
func (e *Entry) UnmarshalJSON(data []byte) error {
	var raw entryJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	pause, err := parsePause(raw.PauseTotal)
	if err != nil {
		return fmt.Errorf("entry %s: %w", raw.ID, err)
	}
	*e = Entry{
		ID:          raw.ID,
		Name:        raw.Name,
		Description: raw.Description,
		Tags:        raw.Tags,
		StartTime:   raw.StartTime,
		EndTime:     raw.EndTime,
		PauseTotal:  pause,
	}
	return nil
}

// TimerState is the state of the active timer.
type TimerState string

const (
	StateRunning TimerState = "running"
	StatePaused  TimerState = "paused"
)

// ActiveTimer is the single in-progress timer. PauseStartedAt is set iff paused.
type ActiveTimer struct {
	Name           string
	Description    string
	Tags           []string
	StartTime      time.Time
	State          TimerState
	PauseStartedAt *time.Time
	PauseTotal     time.Duration
}

// Elapsed returns the running time at now, excluding finished pauses and the
// pause in progress.
func (a ActiveTimer) Elapsed(now time.Time) time.Duration {
	d := now.Sub(a.StartTime) - a.PauseTotal
	if a.State == StatePaused && a.PauseStartedAt != nil {
		d -= now.Sub(*a.PauseStartedAt)
	}
	if d < 0 {
		return 0
	}
	return d
}

type activeJSON struct {
	Name           string     `json:"name"`
	Description    string     `json:"description,omitempty"`
	Tags           []string   `json:"tags"`
	StartTime      time.Time  `json:"start_time"`
	State          TimerState `json:"state"`
	PauseStartedAt *time.Time `json:"pause_started_at,omitempty"`
	PauseTotal     string     `json:"accumulated_pause_duration"`
}

func (a ActiveTimer) MarshalJSON() ([]byte, error) {
	tags := a.Tags
	if tags == nil {
		tags = []string{}
	}
	return json.Marshal(activeJSON{
		Name:           a.Name,
		Description:    a.Description,
		Tags:           tags,
		StartTime:      a.StartTime,
		State:          a.State,
		PauseStartedAt: a.PauseStartedAt,
		PauseTotal:     a.PauseTotal.String(),
	})
}

func (a *ActiveTimer) UnmarshalJSON(data []byte) error {
	var raw activeJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	pause, err := parsePause(raw.PauseTotal)
	if err != nil {
		return fmt.Errorf("active timer: %w", err)
	}
	t := ActiveTimer{
		Name:           raw.Name,
		Description:    raw.Description,
		Tags:           raw.Tags,
		StartTime:      raw.StartTime,
		State:          raw.State,
		PauseStartedAt: raw.PauseStartedAt,
		PauseTotal:     pause,
	}
	if err := t.validate(); err != nil {
		return err
	}
	*a = t
	return nil
}

// validate checks the state and that PauseStartedAt is set iff paused.
func (a ActiveTimer) validate() error {
	switch a.State {
	case StateRunning, StatePaused:
	default:
		return fmt.Errorf("active timer: unknown state %q", a.State)
	}
	if (a.State == StatePaused) != (a.PauseStartedAt != nil) {
		return fmt.Errorf("active timer: pause_started_at inconsistent with state %q", a.State)
	}
	return nil
}

func parsePause(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("parse pause duration %q: %w", s, err)
	}
	return d, nil
}

// EntryFilter selects entries for list and report. Today and Week are relative
// to Now. Limit applies only when HasLimit is set, after the time filter.
type EntryFilter struct {
	Today    bool
	Week     bool
	HasLimit bool
	Limit    int
	Now      time.Time
}
