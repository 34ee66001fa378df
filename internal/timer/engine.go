package timer

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/sadopc/timer/internal/store"
)

// Status is a snapshot of the active timer.
type Status struct {
	Timer   store.ActiveTimer
	Elapsed time.Duration
	At      time.Time
}

// Engine runs timer commands against a store.
type Engine struct {
	store  store.Store
	logger *slog.Logger

	// Now and NewID are replaceable in tests.
	Now   func() time.Time
	NewID func() string
}

func NewEngine(s store.Store, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		store:  s,
		logger: logger,
		Now:    func() time.Time { return time.Now().Round(0) },
		NewID:  uuid.NewString,
	}
}

func (e *Engine) Start(name, description string, tags []string) (*store.ActiveTimer, error) {
	cur, err := e.store.ActiveTimer()
	if err != nil {
		return nil, err
	}
	next, err := Start(cur, name, description, tags, e.Now())
	if err != nil {
		return nil, err
	}
	if err := e.store.SaveActiveTimer(*next); err != nil {
		return nil, err
	}
	e.logger.Debug("timer started", slog.String("name", next.Name), slog.Any("tags", next.Tags))
	return next, nil
}

func (e *Engine) Pause() (*store.ActiveTimer, error) {
	return e.transition("paused", Pause)
}

func (e *Engine) Resume() (*store.ActiveTimer, error) {
	return e.transition("resumed", Resume)
}

func (e *Engine) transition(what string, fn func(*store.ActiveTimer, time.Time) (*store.ActiveTimer, error)) (*store.ActiveTimer, error) {
	cur, err := e.store.ActiveTimer()
	if err != nil {
		return nil, err
	}
	next, err := fn(cur, e.Now())
	if err != nil {
		return nil, err
	}
	if err := e.store.SaveActiveTimer(*next); err != nil {
		return nil, err
	}
	e.logger.Debug("timer "+what, slog.String("name", next.Name))
	return next, nil
}

// Stop finishes the active timer, appends the entry and removes the timer.
// On failure the store is left as it was before the call.
func (e *Engine) Stop() (store.Entry, error) {
	cur, err := e.store.ActiveTimer()
	if err != nil {
		return store.Entry{}, err
	}
	if cur == nil {
		return store.Entry{}, ErrNoActiveTimer
	}
	id, err := e.uniqueID()
	if err != nil {
		return store.Entry{}, err
	}
	entry, err := Stop(cur, e.Now(), id)
	if err != nil {
		return store.Entry{}, err
	}
	if err := e.store.AppendEntry(entry); err != nil {
		return store.Entry{}, err
	}
	if err := e.store.ClearActiveTimer(); err != nil {
		// Keep the timer, drop the entry, so a retried stop records it once.
		if derr := e.store.DeleteEntry(entry.ID); derr != nil {
			e.logger.Error("roll back appended entry", slog.String("id", entry.ID), slog.Any("error", derr))
			return store.Entry{}, errors.Join(err, derr)
		}
		return store.Entry{}, err
	}
	e.logger.Debug("timer stopped", slog.String("id", entry.ID), slog.Duration("duration", entry.Duration()))
	return entry, nil
}

// Status reports the active timer and its elapsed running time.
func (e *Engine) Status() (Status, error) {
	cur, err := e.store.ActiveTimer()
	if err != nil {
		return Status{}, err
	}
	if cur == nil {
		return Status{}, ErrNoActiveTimer
	}
	now := e.Now()
	return Status{Timer: *cur, Elapsed: cur.Elapsed(now), At: now}, nil
}

const maxIDAttempts = 8

func (e *Engine) uniqueID() (string, error) {
	entries, err := e.store.Entries()
	if err != nil {
		return "", err
	}
	used := make(map[string]bool, len(entries))
	for _, en := range entries {
		used[en.ID] = true
	}
	for range maxIDAttempts {
		id := e.NewID()
		if id != "" && !used[id] {
			return id, nil
		}
	}
	return "", fmt.Errorf("could not generate a unique entry id after %d attempts", maxIDAttempts)
}
