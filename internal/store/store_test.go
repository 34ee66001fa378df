package store

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// backends returns a fresh store per backend so behavior tests run against both.
func backends(t *testing.T) map[string]Store {
	t.Helper()
	js, err := NewJSON(t.TempDir(), discardLogger())
	if err != nil {
		t.Fatalf("new json store: %v", err)
	}
	sq, err := NewSQLiteMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { sq.Close() })
	return map[string]Store{BackendJSON: js, BackendSQLite: sq}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var base = time.Date(2026, 3, 11, 9, 0, 0, 0, time.UTC)

func sampleEntry(id string, startOffset, length time.Duration) Entry {
	start := base.Add(startOffset)
	return Entry{
		ID:          id,
		Name:        "task-" + id,
		Description: "desc " + id,
		Tags:        []string{"work", "deep"},
		StartTime:   start,
		EndTime:     start.Add(length),
		PauseTotal:  time.Minute,
	}
}

func sameEntry(a, b Entry) bool {
	if a.ID != b.ID || a.Name != b.Name || a.Description != b.Description || a.PauseTotal != b.PauseTotal {
		return false
	}
	if !a.StartTime.Equal(b.StartTime) || !a.EndTime.Equal(b.EndTime) {
		return false
	}
	if len(a.Tags) != len(b.Tags) {
		return false
	}
	for i := range a.Tags {
		if a.Tags[i] != b.Tags[i] {
			return false
		}
	}
	return true
}

// ============================================================
// Store initialization
// ============================================================

func TestOpenBackends(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(BackendJSON, filepath.Join(dir, "json"), nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := s.(*JSONStore); !ok {
		t.Fatalf("json backend = %T", s)
	}
	s.Close()

	s, err = Open("", filepath.Join(dir, "default"), nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := s.(*JSONStore); !ok {
		t.Fatalf("default backend = %T, want *JSONStore", s)
	}
	s.Close()

	s, err = Open(BackendSQLite, filepath.Join(dir, "sqlite"), nil)
	if err != nil {
		t.Fatal(err)
	}
	s.Close()
	if _, err := os.Stat(SQLitePath(filepath.Join(dir, "sqlite"))); err != nil {
		t.Fatalf("sqlite file not created: %v", err)
	}

	if _, err := Open("yaml", dir, nil); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestSQLiteMigration(t *testing.T) {
	s, err := NewSQLiteMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	var version int
	s.db.QueryRow("PRAGMA user_version").Scan(&version)
	if version != currentVersion {
		t.Fatalf("expected user_version %d, got %d", currentVersion, version)
	}
	if err := s.migrate(); err != nil {
		t.Fatalf("second migration failed: %v", err)
	}
}

func TestSQLiteReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "timer.db")
	s, err := NewSQLite(path, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.AppendEntry(sampleEntry("a", 0, time.Hour)); err != nil {
		t.Fatal(err)
	}
	s.Close()

	s2, err := NewSQLite(path, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer s2.Close()
	entries, err := s2.Entries()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].ID != "a" {
		t.Fatalf("entries after reopen = %+v", entries)
	}
}

// ============================================================
// Entries
// ============================================================

func TestEntriesEmpty(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			entries, err := s.Entries()
			if err != nil {
				t.Fatal(err)
			}
			if len(entries) != 0 {
				t.Fatalf("expected no entries, got %d", len(entries))
			}
		})
	}
}

func TestAppendPreservesOrderAndFields(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			in := []Entry{
				sampleEntry("b", 2*time.Hour, time.Hour),
				sampleEntry("a", 0, 30*time.Minute),
				sampleEntry("c", time.Hour, 10*time.Minute),
			}
			in[1].Tags = nil
			in[1].Description = ""
			for _, e := range in {
				if err := s.AppendEntry(e); err != nil {
					t.Fatal(err)
				}
			}

			got, err := s.Entries()
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != len(in) {
				t.Fatalf("got %d entries, want %d", len(got), len(in))
			}
			for i := range in {
				if got[i].ID != in[i].ID {
					t.Fatalf("entry %d id = %s, want %s (insertion order)", i, got[i].ID, in[i].ID)
				}
			}
			if !sameEntry(got[0], in[0]) {
				t.Fatalf("entry mangled: got %+v want %+v", got[0], in[0])
			}
			if len(got[1].Tags) != 0 {
				t.Fatalf("expected no tags, got %v", got[1].Tags)
			}
		})
	}
}

func TestDeleteEntry(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			s.AppendEntry(sampleEntry("a", 0, time.Hour))
			s.AppendEntry(sampleEntry("b", time.Hour, time.Hour))

			if err := s.DeleteEntry("a"); err != nil {
				t.Fatal(err)
			}
			entries, _ := s.Entries()
			if len(entries) != 1 || entries[0].ID != "b" {
				t.Fatalf("entries after delete = %+v", entries)
			}

			err := s.DeleteEntry("a")
			if !errors.Is(err, ErrEntryNotFound) {
				t.Fatalf("second delete err = %v, want ErrEntryNotFound", err)
			}
		})
	}
}

// ============================================================
// Active timer
// ============================================================

func TestActiveTimerLifecycle(t *testing.T) {
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			a, err := s.ActiveTimer()
			if err != nil {
				t.Fatal(err)
			}
			if a != nil {
				t.Fatal("expected no active timer")
			}

			pausedAt := base.Add(20 * time.Minute)
			in := ActiveTimer{
				Name:           "write-report",
				Description:    "Q3",
				Tags:           []string{"work"},
				StartTime:      base,
				State:          StatePaused,
				PauseStartedAt: &pausedAt,
				PauseTotal:     90 * time.Second,
			}
			if err := s.SaveActiveTimer(in); err != nil {
				t.Fatal(err)
			}
			got, err := s.ActiveTimer()
			if err != nil {
				t.Fatal(err)
			}
			if got == nil || got.Name != in.Name || got.State != StatePaused || got.PauseTotal != in.PauseTotal {
				t.Fatalf("active timer = %+v", got)
			}
			if got.PauseStartedAt == nil || !got.PauseStartedAt.Equal(pausedAt) {
				t.Fatalf("pause_started_at = %v", got.PauseStartedAt)
			}

			in.State = StateRunning
			in.PauseStartedAt = nil
			if err := s.SaveActiveTimer(in); err != nil {
				t.Fatal(err)
			}
			got, _ = s.ActiveTimer()
			if got.State != StateRunning || got.PauseStartedAt != nil {
				t.Fatalf("overwrite failed: %+v", got)
			}

			if err := s.ClearActiveTimer(); err != nil {
				t.Fatal(err)
			}
			if got, _ := s.ActiveTimer(); got != nil {
				t.Fatal("expected timer cleared")
			}
			if err := s.ClearActiveTimer(); err != nil {
				t.Fatalf("clearing twice should be fine: %v", err)
			}
		})
	}
}

func TestActiveTimerElapsed(t *testing.T) {
	pausedAt := base.Add(50 * time.Minute)
	a := ActiveTimer{StartTime: base, State: StatePaused, PauseStartedAt: &pausedAt, PauseTotal: 10 * time.Minute}
	if got := a.Elapsed(base.Add(time.Hour)); got != 40*time.Minute {
		t.Fatalf("elapsed = %v, want 40m", got)
	}
	a = ActiveTimer{StartTime: base, State: StateRunning, PauseTotal: 10 * time.Minute}
	if got := a.Elapsed(base.Add(time.Hour)); got != 50*time.Minute {
		t.Fatalf("elapsed = %v, want 50m", got)
	}
}

// ============================================================
// JSON files
// ============================================================

func TestJSONMalformedEntries(t *testing.T) {
	dir := t.TempDir()
	s, _ := NewJSON(dir, discardLogger())
	os.WriteFile(filepath.Join(dir, entriesFile), []byte("{not json"), 0o644)

	_, err := s.Entries()
	if !errors.Is(err, ErrIO) {
		t.Fatalf("err = %v, want ErrIO", err)
	}
	if err := s.AppendEntry(sampleEntry("a", 0, time.Hour)); !errors.Is(err, ErrIO) {
		t.Fatalf("append over damaged file err = %v, want ErrIO", err)
	}
	data, _ := os.ReadFile(filepath.Join(dir, entriesFile))
	if string(data) != "{not json" {
		t.Fatal("damaged file must not be overwritten")
	}
}

func TestJSONMalformedActiveTimer(t *testing.T) {
	dir := t.TempDir()
	s, _ := NewJSON(dir, discardLogger())

	cases := map[string]string{
		"syntax":        "{",
		"unknown state": `{"name":"x","start_time":"2026-03-11T09:00:00Z","state":"stopped","accumulated_pause_duration":"0s"}`,
		"paused no ts":  `{"name":"x","start_time":"2026-03-11T09:00:00Z","state":"paused","accumulated_pause_duration":"0s"}`,
		"bad duration":  `{"name":"x","start_time":"2026-03-11T09:00:00Z","state":"running","accumulated_pause_duration":"ten"}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			os.WriteFile(filepath.Join(dir, activeFile), []byte(body), 0o644)
			if _, err := s.ActiveTimer(); !errors.Is(err, ErrIO) {
				t.Fatalf("err = %v, want ErrIO", err)
			}
		})
	}
}

func TestSQLiteMalformedActiveTimer(t *testing.T) {
	s, err := NewSQLiteMemory()
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	cases := map[string]struct {
		state        string
		pauseStarted any
	}{
		"unknown state":   {"stopped", nil},
		"paused no ts":    {"paused", nil},
		"running with ts": {"running", "2026-03-11T09:05:00Z"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := s.db.Exec(
				`INSERT OR REPLACE INTO active_timer (singleton, name, start_time, state, pause_started_at)
				 VALUES (1, 'x', '2026-03-11T09:00:00Z', ?, ?)`,
				tc.state, tc.pauseStarted,
			)
			if err != nil {
				t.Fatal(err)
			}
			if _, err := s.ActiveTimer(); !errors.Is(err, ErrIO) {
				t.Fatalf("err = %v, want ErrIO", err)
			}
		})
	}
}

func TestJSONFileLayout(t *testing.T) {
	dir := t.TempDir()
	s, _ := NewJSON(dir, discardLogger())
	s.AppendEntry(sampleEntry("a", 0, time.Hour))
	s.SaveActiveTimer(ActiveTimer{Name: "x", StartTime: base, State: StateRunning})

	for _, name := range []string{entriesFile, activeFile} {
		if _, err := os.Stat(filepath.Join(dir, name)); err != nil {
			t.Fatalf("%s missing: %v", name, err)
		}
	}
	leftovers, _ := filepath.Glob(filepath.Join(dir, ".*.tmp-*"))
	if len(leftovers) != 0 {
		t.Fatalf("temp files left behind: %v", leftovers)
	}

	s.DeleteEntry("a")
	data, _ := os.ReadFile(filepath.Join(dir, entriesFile))
	if string(data) != "[]\n" {
		t.Fatalf("empty entries file = %q, want []", data)
	}
}

func TestWriteFileAtomicBadDir(t *testing.T) {
	err := WriteFileAtomic("/nonexistent/dir/file.json", []byte("x"), 0o644)
	if err == nil {
		t.Fatal("expected error for bad path")
	}
}

func TestEntryJSONDurationField(t *testing.T) {
	e := sampleEntry("a", 0, time.Hour)
	data, err := e.MarshalJSON()
	if err != nil {
		t.Fatal(err)
	}
	var back Entry
	if err := back.UnmarshalJSON(data); err != nil {
		t.Fatal(err)
	}
	if !sameEntry(e, back) {
		t.Fatalf("round trip mismatch: %+v vs %+v", e, back)
	}
	if e.Duration() != 59*time.Minute {
		t.Fatalf("duration = %v, want 59m", e.Duration())
	}
}
