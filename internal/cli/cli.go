// Package cli parses command lines and dispatches them to the timer engine,
// the entry store and the exporters.
package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sadopc/timer/internal/config"
	"github.com/sadopc/timer/internal/store"
	"github.com/sadopc/timer/internal/timer"
	"github.com/sadopc/timer/internal/tui"
)

// Version is the current CLI version string.
const Version = "v1.0.0"

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

// App holds everything a command needs. Fields are replaceable in tests.
type App struct {
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger

	// Config locates the config file; nil means config.DefaultManager.
	Config *config.Manager

	// Confirm asks before deleting an entry.
	Confirm func(store.Entry) (bool, error)
	// RunProgram runs a Bubble Tea model to completion.
	RunProgram func(tea.Model) (tea.Model, error)
}

// New returns an App wired to the process's standard streams.
func New() *App {
	return &App{
		Stdout:  os.Stdout,
		Stderr:  os.Stderr,
		Confirm: tui.ConfirmDelete,
		RunProgram: func(m tea.Model) (tea.Model, error) {
			return tea.NewProgram(m).Run()
		},
	}
}

type command struct {
	name    string
	summary string
	run     func(a *App, args []string) int
}

var commands []command

func init() {
	commands = []command{
		{"start", "Start timing a new task", (*App).cmdStart},
		{"status", "Show the active timer", (*App).cmdStatus},
		{"pause", "Pause the active timer", (*App).cmdPause},
		{"resume", "Resume a paused timer", (*App).cmdResume},
		{"stop", "Stop the active timer and save the entry", (*App).cmdStop},
		{"watch", "Show the active timer live", (*App).cmdWatch},
		{"list", "List recorded entries", (*App).cmdList},
		{"report", "Export entries as CSV or JSON", (*App).cmdReport},
		{"summary", "Chart time per task", (*App).cmdSummary},
		{"delete", "Delete an entry by id or id prefix", (*App).cmdDelete},
		{"config", "View or set configuration", (*App).cmdConfig},
		{"version", "Show version", (*App).cmdVersion},
		{"help", "Show this help", (*App).cmdHelp},
	}
}

// Run executes one command line (without the program name) and returns the
// process exit code.
func (a *App) Run(args []string) int {
	verbose := os.Getenv("TIMER_DEBUG") != ""
	for len(args) > 0 && strings.HasPrefix(args[0], "-") {
		switch args[0] {
		case "-v", "--verbose":
			verbose = true
		case "--version":
			args = []string{"version"}
			continue
		case "-h", "--help":
			args = []string{"help"}
			continue
		default:
			fmt.Fprintf(a.Stderr, "unknown flag %q\n", args[0])
			a.printHelp(a.Stderr)
			return exitUsage
		}
		args = args[1:]
	}

	if a.Logger == nil {
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		a.Logger = slog.New(slog.NewTextHandler(a.Stderr, &slog.HandlerOptions{Level: level}))
	}

	if len(args) == 0 {
		a.printHelp(a.Stderr)
		return exitUsage
	}

	for _, c := range commands {
		if c.name == args[0] {
			return c.run(a, args[1:])
		}
	}
	fmt.Fprintf(a.Stderr, "unknown command %q\n", args[0])
	a.printHelp(a.Stderr)
	return exitUsage
}

func (a *App) printHelp(w io.Writer) {
	fmt.Fprint(w, "timer: track time for tasks\n\nUsage:\n  timer [-v] <command> [args]\n\nCommands:\n")
	for _, c := range commands {
		fmt.Fprintf(w, "  %-9s %s\n", c.name, c.summary)
	}
	fmt.Fprint(w, `
Examples:
  timer start write-report -d "Q3 numbers" -t work
  timer pause
  timer list --today
  timer report --format json -o week.json --week
  timer delete 3f2a91c0
`)
}

func (a *App) configManager() (*config.Manager, error) {
	if a.Config != nil {
		return a.Config, nil
	}
	m, err := config.DefaultManager()
	if err != nil {
		return nil, err
	}
	a.Config = m
	return m, nil
}

// openStore loads the config and opens the configured backend.
func (a *App) openStore() (store.Store, error) {
	m, err := a.configManager()
	if err != nil {
		return nil, err
	}
	c, err := m.Get()
	if err != nil {
		return nil, err
	}
	a.Logger.Debug("opening store", slog.String("backend", c.Storage), slog.String("data_path", c.DataPath))
	return store.Open(c.Storage, c.DataPath, a.Logger)
}

// withEngine opens the store, runs fn and closes the store.
func (a *App) withEngine(name string, fn func(*timer.Engine, store.Store) error) int {
	s, err := a.openStore()
	if err != nil {
		return a.fail(name, err)
	}
	defer s.Close()
	if err := fn(timer.NewEngine(s, a.Logger), s); err != nil {
		return a.fail(name, err)
	}
	return exitOK
}

func (a *App) fail(name string, err error) int {
	fmt.Fprintf(a.Stderr, "%s: %s\n", name, tui.Error(err.Error()))
	if hint := hintFor(err); hint != "" {
		fmt.Fprintf(a.Stderr, "  %s\n", tui.Muted(hint))
	}
	return exitError
}

func hintFor(err error) string {
	switch {
	case errors.Is(err, timer.ErrAlreadyRunning):
		return "Use 'timer stop' first or 'timer status' to check."
	case errors.Is(err, timer.ErrNoActiveTimer):
		return "Use 'timer start <name>' to start one."
	case errors.Is(err, timer.ErrNotRunning):
		return "Use 'timer resume' if it is paused, or 'timer start <name>'."
	case errors.Is(err, timer.ErrNotPaused):
		return "The timer is not paused."
	case errors.Is(err, store.ErrAmbiguousID):
		return "Use a longer id prefix."
	case errors.Is(err, config.ErrLoad), errors.Is(err, store.ErrIO):
		return "Fix or remove the damaged file and try again."
	}
	return ""
}

// newFlagSet returns a flag set that reports errors to the App's stderr.
func (a *App) newFlagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.Stderr)
	return fs
}

// parseInterspersed parses flags that may appear before, between or after
// positional arguments, and returns the positional arguments.
func parseInterspersed(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		rest := fs.Args()
		if len(rest) == 0 {
			return positional, nil
		}
		positional = append(positional, rest[0])
		args = rest[1:]
	}
}

// stringList is a repeatable string flag.
type stringList []string

func (s *stringList) String() string { return strings.Join(*s, ",") }

func (s *stringList) Set(v string) error {
	*s = append(*s, v)
	return nil
}
