package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

func (s *SQLiteStore) AppendEntry(e Entry) error {
	tags, err := encodeTags(e.Tags)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(
		`INSERT INTO entries (id, name, description, tags, start_time, end_time, pause_nanos)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.Name, e.Description, tags,
		e.StartTime.Format(time.RFC3339Nano), e.EndTime.Format(time.RFC3339Nano),
		int64(e.PauseTotal),
	)
	if err != nil {
		return ioErr("append entry", err)
	}
	s.logger.Debug("entry appended", slog.String("id", e.ID))
	return nil
}

func (s *SQLiteStore) Entries() ([]Entry, error) {
	rows, err := s.db.Query(
		`SELECT id, name, description, tags, start_time, end_time, pause_nanos
		 FROM entries ORDER BY seq`,
	)
	if err != nil {
		return nil, ioErr("list entries", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var tags, startTime, endTime string
		var pause int64
		if err := rows.Scan(&e.ID, &e.Name, &e.Description, &tags, &startTime, &endTime, &pause); err != nil {
			return nil, ioErr("scan entry", err)
		}
		if e.Tags, err = decodeTags(tags); err != nil {
			return nil, ioErr("entry "+e.ID, err)
		}
		if e.StartTime, err = time.Parse(time.RFC3339Nano, startTime); err != nil {
			return nil, ioErr("entry "+e.ID, err)
		}
		if e.EndTime, err = time.Parse(time.RFC3339Nano, endTime); err != nil {
			return nil, ioErr("entry "+e.ID, err)
		}
		e.PauseTotal = time.Duration(pause)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, ioErr("list entries", err)
	}
	return entries, nil
}

func (s *SQLiteStore) DeleteEntry(id string) error {
	res, err := s.db.Exec(`DELETE FROM entries WHERE id = ?`, id)
	if err != nil {
		return ioErr("delete entry", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return ioErr("delete entry", err)
	}
	if n == 0 {
		return fmt.Errorf("delete %s: %w", id, ErrEntryNotFound)
	}
	s.logger.Debug("entry deleted", slog.String("id", id))
	return nil
}

func (s *SQLiteStore) ActiveTimer() (*ActiveTimer, error) {
	a := &ActiveTimer{}
	var tags, startTime, state string
	var pauseStarted sql.NullString
	var pause int64

	err := s.db.QueryRow(
		`SELECT name, description, tags, start_time, state, pause_started_at, pause_nanos
		 FROM active_timer WHERE singleton = 1`,
	).Scan(&a.Name, &a.Description, &tags, &startTime, &state, &pauseStarted, &pause)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, ioErr("get active timer", err)
	}
	if a.Tags, err = decodeTags(tags); err != nil {
		return nil, ioErr("active timer", err)
	}
	if a.StartTime, err = time.Parse(time.RFC3339Nano, startTime); err != nil {
		return nil, ioErr("active timer", err)
	}
	if pauseStarted.Valid {
		t, err := time.Parse(time.RFC3339Nano, pauseStarted.String)
		if err != nil {
			return nil, ioErr("active timer", err)
		}
		a.PauseStartedAt = &t
	}
	a.State = TimerState(state)
	a.PauseTotal = time.Duration(pause)
	if err := a.validate(); err != nil {
		return nil, ioErr("read active timer", err)
	}
	return a, nil
}

func (s *SQLiteStore) SaveActiveTimer(a ActiveTimer) error {
	tags, err := encodeTags(a.Tags)
	if err != nil {
		return err
	}
	var pauseStarted sql.NullString
	if a.PauseStartedAt != nil {
		pauseStarted = sql.NullString{String: a.PauseStartedAt.Format(time.RFC3339Nano), Valid: true}
	}
	_, err = s.db.Exec(
		`INSERT INTO active_timer (singleton, name, description, tags, start_time, state, pause_started_at, pause_nanos)
		 VALUES (1, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(singleton) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			tags = excluded.tags,
			start_time = excluded.start_time,
			state = excluded.state,
			pause_started_at = excluded.pause_started_at,
			pause_nanos = excluded.pause_nanos`,
		a.Name, a.Description, tags, a.StartTime.Format(time.RFC3339Nano),
		string(a.State), pauseStarted, int64(a.PauseTotal),
	)
	if err != nil {
		return ioErr("save active timer", err)
	}
	return nil
}

func (s *SQLiteStore) ClearActiveTimer() error {
	if _, err := s.db.Exec(`DELETE FROM active_timer`); err != nil {
		return ioErr("clear active timer", err)
	}
	return nil
}

func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	b, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("encode tags: %w", err)
	}
	return string(b), nil
}

func decodeTags(s string) ([]string, error) {
	var tags []string
	if err := json.Unmarshal([]byte(s), &tags); err != nil {
		return nil, fmt.Errorf("decode tags: %w", err)
	}
	return tags, nil
}
