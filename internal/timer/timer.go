// Package timer implements the start/pause/resume/stop state machine over the
// active timer.
//
// The transition functions are pure: they take the current timer (nil when
// idle) and the current time and return the next state. Engine wraps them with
// a load before and a store after each command.
package timer

import (
	"errors"
	"strings"
	"time"

	"github.com/sadopc/timer/internal/store"
)

var (
	ErrAlreadyRunning = errors.New("a timer is already running")
	ErrNotRunning     = errors.New("timer is not running")
	ErrNotPaused      = errors.New("timer is not paused")
	ErrNoActiveTimer  = errors.New("no active timer")
)

// Start returns a new running timer. It fails if cur is not nil.
func Start(cur *store.ActiveTimer, name, description string, tags []string, now time.Time) (*store.ActiveTimer, error) {
	if cur != nil {
		return nil, ErrAlreadyRunning
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("timer name is empty")
	}
	return &store.ActiveTimer{
		Name:        name,
		Description: description,
		Tags:        NormalizeTags(tags),
		StartTime:   now,
		State:       store.StateRunning,
	}, nil
}

// Pause returns cur paused at now. An idle timer (nil) is not running.
func Pause(cur *store.ActiveTimer, now time.Time) (*store.ActiveTimer, error) {
	if cur == nil || cur.State != store.StateRunning {
		return nil, ErrNotRunning
	}
	next := *cur
	next.State = store.StatePaused
	next.PauseStartedAt = &now
	return &next, nil
}

// Resume returns cur running again with the finished pause added to its total.
func Resume(cur *store.ActiveTimer, now time.Time) (*store.ActiveTimer, error) {
	if cur == nil || cur.State != store.StatePaused || cur.PauseStartedAt == nil {
		return nil, ErrNotPaused
	}
	next := *cur
	next.PauseTotal += pauseSpan(*cur.PauseStartedAt, now)
	next.PauseStartedAt = nil
	next.State = store.StateRunning
	return &next, nil
}

// Stop converts cur into a completed entry ending at now. A pause in progress
// is closed first.
func Stop(cur *store.ActiveTimer, now time.Time, id string) (store.Entry, error) {
	if cur == nil {
		return store.Entry{}, ErrNoActiveTimer
	}
	pause := cur.PauseTotal
	if cur.State == store.StatePaused && cur.PauseStartedAt != nil {
		pause += pauseSpan(*cur.PauseStartedAt, now)
	}
	end := now
	if end.Before(cur.StartTime) {
		end = cur.StartTime
	}
	return store.Entry{
		ID:          id,
		Name:        cur.Name,
		Description: cur.Description,
		Tags:        append([]string(nil), cur.Tags...),
		StartTime:   cur.StartTime,
		EndTime:     end,
		PauseTotal:  pause,
	}, nil
}

func pauseSpan(from, to time.Time) time.Duration {
	if to.Before(from) {
		return 0
	}
	return to.Sub(from)
}

// NormalizeTags trims tags, drops empty ones and removes duplicates, keeping
// the first occurrence.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}
