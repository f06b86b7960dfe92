package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/pprof"
	"strconv"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/vanderheijden86/casefile/internal/store"
	"github.com/vanderheijden86/casefile/pkg/board"
	"github.com/vanderheijden86/casefile/pkg/config"
	"github.com/vanderheijden86/casefile/pkg/debug"
	"github.com/vanderheijden86/casefile/pkg/docbridge"
	"github.com/vanderheijden86/casefile/pkg/export"
	"github.com/vanderheijden86/casefile/pkg/genai"
	"github.com/vanderheijden86/casefile/pkg/metrics"
	"github.com/vanderheijden86/casefile/pkg/planner"
	"github.com/vanderheijden86/casefile/pkg/ui"
	"github.com/vanderheijden86/casefile/pkg/version"
	"github.com/vanderheijden86/casefile/pkg/watcher"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// options are the parsed command line flags.
type options struct {
	cpuProfile string
	help       bool
	version    bool
	dbPath     string
	exportPath string
	theme      string
	summarize  bool
	importPath string
	reset      bool
	yes        bool
	noHooks    bool
	metrics    bool
}

func parseFlags(args []string, stderr io.Writer) (options, *flag.FlagSet, error) {
	var o options
	fs := flag.NewFlagSet("casefile", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.cpuProfile, "cpu-profile", "", "Write CPU profile to file")
	fs.BoolVar(&o.help, "help", false, "Show help")
	fs.BoolVar(&o.version, "version", false, "Show version")
	fs.StringVar(&o.dbPath, "db", "", "Board database path (overrides storage.db_path)")
	fs.StringVar(&o.exportPath, "export", "", "Write a board snapshot to `path` (.svg or .png) and exit")
	fs.StringVar(&o.theme, "theme", "", "Snapshot backdrop for -export: stone or blue")
	fs.BoolVar(&o.summarize, "summarize", false, "Summarize the board into the document, print it and exit")
	fs.StringVar(&o.importPath, "import", "", "Replace the board items with those tagged in `file` (- for stdin) and exit")
	fs.BoolVar(&o.reset, "reset", false, "Reset the board and document to the starter case file and exit")
	fs.BoolVar(&o.yes, "yes", false, "Skip confirmation prompts (use with -reset or -import)")
	fs.BoolVar(&o.noHooks, "no-hooks", false, "Skip the snapshot hooks in hooks.yaml")
	fs.BoolVar(&o.metrics, "metrics", false, "Print operation timings to stderr on exit")
	err := fs.Parse(args)
	return o, fs, err
}

// run is main without the process exit, returning the exit code.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	o, fs, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}

	// CPU profiling support
	if o.cpuProfile != "" {
		f, err := os.Create(o.cpuProfile)
		if err != nil {
			fmt.Fprintf(stderr, "Could not create CPU profile: %v\n", err)
			return 1
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Fprintf(stderr, "Could not start CPU profile: %v\n", err)
			return 1
		}
		defer pprof.StopCPUProfile()
	}

	if o.help {
		fmt.Fprintln(stdout, "Usage: casefile [options]")
		fmt.Fprintln(stdout, "\nA terminal planning board with a document collaborator.")
		fs.SetOutput(stdout)
		fs.PrintDefaults()
		return 0
	}

	if o.version {
		fmt.Fprintf(stdout, "casefile %s\n", version.Version)
		return 0
	}

	if n := countModes(o); n > 1 {
		fmt.Fprintln(stderr, "Error: -export, -summarize, -import and -reset are mutually exclusive")
		return 2
	}

	cfg, cfgErr := config.Load()
	if cfgErr != nil {
		// Non-fatal: continue with defaults
		fmt.Fprintf(stderr, "Warning: %v; using defaults\n", cfgErr)
		cfg = config.DefaultConfig()
	}
	if o.dbPath != "" {
		cfg.Storage.DBPath = o.dbPath
	}
	if o.theme != "" {
		cfg.Canvas.Theme = o.theme
		if err := cfg.Validate(); err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 2
		}
	}
	if cfg.Storage.DBPath == "" {
		fmt.Fprintln(stderr, "Error: cannot determine where to keep the board; pass -db")
		return 1
	}

	kv, err := store.OpenSQLite(cfg.Storage.DBPath)
	if err != nil {
		fmt.Fprintf(stderr, "Error opening board: %v\n", err)
		return 1
	}
	st := store.New(kv, board.DefaultDataset{})
	defer st.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := &app{cfg: cfg, store: st, stdin: stdin, stdout: stdout, stderr: stderr, yes: o.yes}
	if !o.noHooks {
		a.hooksDir = config.ConfigDir()
	}
	switch {
	case o.exportPath != "":
		err = a.export(ctx, o.exportPath)
	case o.summarize:
		err = a.summarize(ctx)
	case o.importPath != "":
		err = a.importFile(ctx, o.importPath)
	case o.reset:
		err = a.reset(ctx)
	default:
		err = a.tui(ctx)
	}
	if o.metrics {
		if summary := metrics.Summary(); summary != "" {
			fmt.Fprint(stderr, "Timings:\n"+summary)
		}
	}
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func countModes(o options) int {
	n := 0
	for _, on := range []bool{o.exportPath != "", o.summarize, o.importPath != "", o.reset} {
		if on {
			n++
		}
	}
	return n
}

// quitter is the part of *tea.Program shutdown needs.
type quitter interface {
	Quit()
	Kill()
}

// quitOnDone asks p to quit once ctx is done and kills it if it has not
// stopped within grace. It returns when runDone closes.
func quitOnDone(ctx context.Context, p quitter, runDone <-chan struct{}, grace time.Duration) {
	select {
	case <-runDone:
		return
	case <-ctx.Done():
	}

	p.Quit()

	select {
	case <-runDone:
	case <-time.After(grace):
		p.Kill()
	}
}

// errDeclined is returned when the user answers no to a confirmation.
var errDeclined = errors.New("cancelled")

// app carries what every command needs.
type app struct {
	cfg    config.Config
	store  *store.Store
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	yes    bool

	// hooksDir holds hooks.yaml; empty disables snapshot hooks.
	hooksDir string
}

func (a *app) bridge() (*docbridge.Bridge, error) {
	gen, err := genai.NewFromConfig(a.cfg.GenAIConfig())
	if err != nil {
		return nil, err
	}
	return docbridge.New(gen), nil
}

// mirror writes doc to the configured document mirror, if any.
func (a *app) mirror(doc string) {
	if a.cfg.Storage.DocumentMirror == "" {
		return
	}
	if err := watcher.NewMirror(a.cfg.Storage.DocumentMirror).Write(doc); err != nil {
		fmt.Fprintf(a.stderr, "Warning: document mirror: %v\n", err)
	}
}

// confirm asks before a destructive command. -yes skips the question; without
// a terminal the command is refused.
func (a *app) confirm(title, description string) error {
	if a.yes {
		return nil
	}
	if !stdinIsTerminal() {
		return fmt.Errorf("%s needs confirmation; rerun with -yes", title)
	}
	ok, err := ui.Confirm(title, description)
	if err != nil {
		return err
	}
	if !ok {
		return errDeclined
	}
	return nil
}

func stdinIsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

func (a *app) export(ctx context.Context, path string) error {
	bd := a.store.Load(ctx)
	opts := export.SnapshotOptions{Path: path, Theme: a.cfg.Canvas.Theme}
	opts, err := opts.ResolveFormat()
	if err != nil {
		return err
	}
	paths, summary, err := export.SaveHooked(ctx, bd, opts.Path, opts.Theme, a.hooksDir, opts.Format)
	if summary != "" {
		fmt.Fprintln(a.stderr, summary)
	}
	if len(paths) > 0 {
		fmt.Fprintf(a.stdout, "Saved %s (%d items, %d links)\n", paths[0], len(bd.Nodes), len(bd.LiveEdges()))
	}
	if err != nil {
		return fmt.Errorf("export snapshot: %w", err)
	}
	return nil
}

func (a *app) summarize(ctx context.Context) error {
	br, err := a.bridge()
	if err != nil {
		return err
	}
	doc, err := br.Summarize(ctx, a.store.Load(ctx))
	if err != nil {
		return err
	}
	if err := a.store.SaveDocument(ctx, doc); err != nil {
		return fmt.Errorf("save document: %w", err)
	}
	a.mirror(doc)
	fmt.Fprint(a.stdout, doc)
	if len(doc) > 0 && doc[len(doc)-1] != '\n' {
		fmt.Fprintln(a.stdout)
	}
	return nil
}

func (a *app) importFile(ctx context.Context, path string) error {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(a.stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return fmt.Errorf("read document: %w", err)
	}
	doc := string(data)

	s := planner.New(a.store.Load(ctx))
	bd := s.Board()
	if err := a.confirm("Import items from "+filepath.Base(path)+"?",
		fmt.Sprintf("Replaces all %d items; the %d links are dropped.", len(bd.Nodes), len(bd.Edges))); err != nil {
		return err
	}

	br, err := a.bridge()
	if err != nil {
		return err
	}
	nodes, err := br.Import(ctx, doc)
	if err != nil {
		return err
	}

	var changed planner.Change
	s.OnChange(func(c planner.Change) { changed |= c })
	s.ReplaceNodes(nodes)
	if err := a.store.SaveChange(ctx, s.Board(), changed); err != nil {
		return fmt.Errorf("save board: %w", err)
	}
	if err := a.store.SaveDocument(ctx, doc); err != nil {
		return fmt.Errorf("save document: %w", err)
	}
	a.mirror(doc)
	fmt.Fprintf(a.stdout, "Imported %d items; links were cleared\n", len(nodes))
	return nil
}

func (a *app) reset(ctx context.Context) error {
	if err := a.confirm("Reset to the default board?",
		"Replaces the title, items, links and document with the starter case file."); err != nil {
		return err
	}
	if err := a.store.Reset(ctx); err != nil {
		return err
	}
	a.mirror(board.DefaultDataset{}.Document())
	fmt.Fprintln(a.stdout, "Board reset to defaults")
	return nil
}

func (a *app) tui(ctx context.Context) error {
	br, err := a.bridge()
	if err != nil {
		// The board still works without a collaborator.
		fmt.Fprintf(a.stderr, "Warning: %v\n", err)
		debug.Log("casefile: collaborator disabled: %v", err)
		br = nil
	}

	opts := ui.Options{
		Store:    a.store,
		Bridge:   br,
		Config:   a.cfg,
		Document: a.store.LoadDocument(ctx),
		HooksDir: a.hooksDir,
	}
	if a.cfg.Storage.DocumentMirror != "" {
		opts.Mirror = watcher.NewMirror(a.cfg.Storage.DocumentMirror)
	}
	if wd, err := os.Getwd(); err == nil {
		opts.SnapshotDir = wd
	}

	m := ui.NewModel(planner.New(a.store.Load(ctx)), opts)
	defer m.Close()

	if err := runTUIProgram(ctx, m); err != nil {
		return fmt.Errorf("running board: %w", err)
	}
	return nil
}

func runTUIProgram(ctx context.Context, m ui.Model) error {
	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
		tea.WithoutSignalHandler(),
	)

	runDone := make(chan struct{})
	defer close(runDone)

	// Graceful shutdown when run's signal context is cancelled.
	go quitOnDone(ctx, p, runDone, 5*time.Second)

	// Optional auto-quit for automated tests: set CASEFILE_TUI_AUTOCLOSE_MS.
	if v := os.Getenv("CASEFILE_TUI_AUTOCLOSE_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms > 0 {
			go func() {
				timer := time.NewTimer(time.Duration(ms) * time.Millisecond)
				defer timer.Stop()

				select {
				case <-runDone:
					return
				case <-timer.C:
				}

				p.Quit()

				select {
				case <-runDone:
					return
				case <-time.After(2 * time.Second):
				}

				p.Kill()
			}()
		}
	}

	_, err := p.Run()
	if err != nil && (errors.Is(err, tea.ErrProgramKilled) || errors.Is(err, tea.ErrInterrupted)) {
		return nil
	}
	return err
}
