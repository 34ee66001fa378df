package cli

import (
	"errors"
	"flag"
	"fmt"
	"strconv"

	"github.com/sadopc/timer/internal/config"
	"github.com/sadopc/timer/internal/export"
	"github.com/sadopc/timer/internal/store"
	"github.com/sadopc/timer/internal/timer"
	"github.com/sadopc/timer/internal/tui"
)

func (a *App) usage(name, msg string) int {
	fmt.Fprintf(a.Stderr, "%s: %s\n", name, msg)
	return exitUsage
}

func (a *App) cmdStart(args []string) int {
	fs := a.newFlagSet("start")
	var description string
	var tags stringList
	fs.StringVar(&description, "d", "", "task description")
	fs.StringVar(&description, "description", "", "task description")
	fs.Var(&tags, "t", "tag (repeatable)")
	fs.Var(&tags, "tag", "tag (repeatable)")
	pos, err := parseInterspersed(fs, args)
	if err != nil {
		return exitUsage
	}
	if len(pos) != 1 {
		return a.usage("start", "usage: timer start <name> [-d description] [-t tag]...")
	}

	return a.withEngine("start", func(e *timer.Engine, _ store.Store) error {
		t, err := e.Start(pos[0], description, tags)
		if errors.Is(err, timer.ErrAlreadyRunning) {
			if st, serr := e.Status(); serr == nil {
				return fmt.Errorf("%w: '%s' (elapsed %s)", err, st.Timer.Name, export.FormatDuration(st.Elapsed))
			}
		}
		if err != nil {
			return err
		}
		fmt.Fprint(a.Stdout, tui.RenderStarted(*t))
		return nil
	})
}

func (a *App) cmdStatus(args []string) int {
	if len(args) > 0 {
		return a.usage("status", "usage: timer status")
	}
	return a.withEngine("status", func(e *timer.Engine, s store.Store) error {
		st, err := e.Status()
		if errors.Is(err, timer.ErrNoActiveTimer) {
			entries, err := s.Entries()
			if err != nil {
				return err
			}
			var last *store.Entry
			if len(entries) > 0 {
				last = &entries[len(entries)-1]
			}
			fmt.Fprint(a.Stdout, tui.RenderIdle(last))
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Fprint(a.Stdout, tui.RenderStatus(st))
		return nil
	})
}

func (a *App) cmdPause(args []string) int {
	if len(args) > 0 {
		return a.usage("pause", "usage: timer pause")
	}
	return a.withEngine("pause", func(e *timer.Engine, _ store.Store) error {
		t, err := e.Pause()
		if err != nil {
			return err
		}
		fmt.Fprintf(a.Stdout, "%s\n  Elapsed: %s\n",
			tui.Warning(fmt.Sprintf("Paused timer for '%s'", t.Name)),
			export.FormatDuration(t.Elapsed(e.Now())))
		return nil
	})
}

func (a *App) cmdResume(args []string) int {
	if len(args) > 0 {
		return a.usage("resume", "usage: timer resume")
	}
	return a.withEngine("resume", func(e *timer.Engine, _ store.Store) error {
		t, err := e.Resume()
		if err != nil {
			return err
		}
		fmt.Fprintf(a.Stdout, "%s\n  Elapsed: %s\n",
			tui.Success(fmt.Sprintf("Resumed timer for '%s'", t.Name)),
			export.FormatDuration(t.Elapsed(e.Now())))
		return nil
	})
}

func (a *App) cmdStop(args []string) int {
	if len(args) > 0 {
		return a.usage("stop", "usage: timer stop")
	}
	return a.withEngine("stop", func(e *timer.Engine, _ store.Store) error {
		entry, err := e.Stop()
		if err != nil {
			return err
		}
		fmt.Fprint(a.Stdout, tui.RenderStopped(entry))
		return nil
	})
}

func (a *App) cmdWatch(args []string) int {
	if len(args) > 0 {
		return a.usage("watch", "usage: timer watch")
	}
	return a.withEngine("watch", func(e *timer.Engine, _ store.Store) error {
		if _, err := e.Status(); err != nil {
			return err
		}
		final, err := a.RunProgram(tui.NewWatchModel(e))
		if err != nil {
			return fmt.Errorf("run live view: %w", err)
		}
		if m, ok := final.(tui.WatchModel); ok && m.Err() != nil {
			return m.Err()
		}
		return nil
	})
}

// filterFlags registers the --today, --week and -n options shared by list,
// report and summary. A negative defaultLimit means all entries unless -n is
// given.
func filterFlags(fs *flag.FlagSet, defaultLimit int) *store.EntryFilter {
	f := &store.EntryFilter{}
	if defaultLimit >= 0 {
		f.HasLimit, f.Limit = true, defaultLimit
	}
	fs.BoolVar(&f.Today, "today", false, "only entries started today")
	fs.BoolVar(&f.Week, "week", false, "only entries started this week")
	setLimit := func(v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return err
		}
		if n < 0 {
			return errors.New("limit must not be negative")
		}
		f.HasLimit, f.Limit = true, n
		return nil
	}
	fs.Func("n", "at most this many entries, most recent first", setLimit)
	fs.Func("limit", "same as -n", setLimit)
	return f
}

func (a *App) cmdList(args []string) int {
	fs := a.newFlagSet("list")
	f := filterFlags(fs, 10)
	pos, err := parseInterspersed(fs, args)
	if err != nil {
		return exitUsage
	}
	if len(pos) > 0 {
		return a.usage("list", "usage: timer list [--today|--week] [-n N]")
	}

	return a.withEngine("list", func(_ *timer.Engine, s store.Store) error {
		entries, err := store.List(s, *f)
		if err != nil {
			return err
		}
		fmt.Fprint(a.Stdout, tui.RenderEntries(entries))
		return nil
	})
}

func (a *App) cmdReport(args []string) int {
	fs := a.newFlagSet("report")
	f := filterFlags(fs, -1)
	var format, output string
	fs.StringVar(&format, "format", string(export.FormatCSV), "export format: csv or json")
	fs.StringVar(&output, "o", "", "output file (stdout if empty)")
	fs.StringVar(&output, "output", "", "output file (stdout if empty)")
	pos, err := parseInterspersed(fs, args)
	if err != nil {
		return exitUsage
	}
	if len(pos) > 0 {
		return a.usage("report", "usage: timer report [--format csv|json] [-o path] [--today|--week] [-n N]")
	}
	fmtKind, err := export.ParseFormat(format)
	if err != nil {
		return a.usage("report", err.Error())
	}

	return a.withEngine("report", func(_ *timer.Engine, s store.Store) error {
		entries, err := store.List(s, *f)
		if err != nil {
			return err
		}
		if err := export.Write(entries, fmtKind, output, a.Stdout); err != nil {
			return err
		}
		if output != "" {
			fmt.Fprintf(a.Stdout, "Exported %d entries to %s\n", len(entries), output)
		}
		return nil
	})
}

func (a *App) cmdSummary(args []string) int {
	fs := a.newFlagSet("summary")
	f := filterFlags(fs, -1)
	pos, err := parseInterspersed(fs, args)
	if err != nil {
		return exitUsage
	}
	if len(pos) > 0 {
		return a.usage("summary", "usage: timer summary [--today|--week] [-n N]")
	}

	title := "All time"
	switch {
	case f.Today:
		title = "Today"
	case f.Week:
		title = "This week"
	}

	return a.withEngine("summary", func(_ *timer.Engine, s store.Store) error {
		entries, err := store.List(s, *f)
		if err != nil {
			return err
		}
		fmt.Fprintln(a.Stdout, tui.RenderSummary(title, export.Summarize(entries), 80))
		return nil
	})
}

func (a *App) cmdDelete(args []string) int {
	fs := a.newFlagSet("delete")
	var yes bool
	fs.BoolVar(&yes, "y", false, "skip confirmation")
	fs.BoolVar(&yes, "yes", false, "skip confirmation")
	pos, err := parseInterspersed(fs, args)
	if err != nil {
		return exitUsage
	}
	if len(pos) != 1 {
		return a.usage("delete", "usage: timer delete <entry-id> [-y]")
	}

	return a.withEngine("delete", func(_ *timer.Engine, s store.Store) error {
		entries, err := s.Entries()
		if err != nil {
			return err
		}
		e, err := store.ResolveID(entries, pos[0])
		if err != nil {
			return err
		}
		if !yes {
			ok, err := a.Confirm(e)
			if err != nil {
				return fmt.Errorf("confirm: %w", err)
			}
			if !ok {
				fmt.Fprintln(a.Stdout, "Aborted.")
				return nil
			}
		}
		if err := s.DeleteEntry(e.ID); err != nil {
			return err
		}
		fmt.Fprintf(a.Stdout, "Deleted entry '%s' (%s)\n", e.Name, tui.ShortID(e.ID))
		return nil
	})
}

func (a *App) cmdConfig(args []string) int {
	fs := a.newFlagSet("config")
	var p config.Patch
	fs.Func("data-path", "set the data directory", func(v string) error {
		p.DataPath = &v
		return nil
	})
	fs.Func("storage", "set the storage backend: json or sqlite", func(v string) error {
		p.Storage = &v
		return nil
	})
	pos, err := parseInterspersed(fs, args)
	if err != nil {
		return exitUsage
	}
	if len(pos) > 0 {
		return a.usage("config", "usage: timer config [--data-path P] [--storage json|sqlite]")
	}

	m, err := a.configManager()
	if err != nil {
		return a.fail("config", err)
	}

	if p.DataPath != nil || p.Storage != nil {
		c, err := m.Set(p)
		if err != nil {
			return a.fail("config", err)
		}
		if p.DataPath != nil {
			fmt.Fprintln(a.Stdout, tui.Success("Data path set to: "+c.DataPath))
		}
		if p.Storage != nil {
			fmt.Fprintln(a.Stdout, tui.Success("Storage set to: "+c.Storage))
		}
		return exitOK
	}

	c, err := m.Get()
	if err != nil {
		return a.fail("config", err)
	}
	fmt.Fprintf(a.Stdout, "Current configuration (%s):\n", m.Path)
	fmt.Fprintf(a.Stdout, "  Data path: %s\n", c.DataPath)
	fmt.Fprintf(a.Stdout, "  Storage:   %s\n", c.Storage)
	return exitOK
}

func (a *App) cmdVersion(args []string) int {
	fmt.Fprintf(a.Stdout, "timer %s\n", Version)
	return exitOK
}

func (a *App) cmdHelp(args []string) int {
	a.printHelp(a.Stdout)
	return exitOK
}
