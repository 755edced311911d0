// Command rpv is a terminal replay debugger for distributed-systems test
// traces.
//
// It loads the event log written by a test harness, lets the user pick a
// test and steps through its events forward and backward, showing node
// state, drawn message lines and per-node inspector logs.
//
// Usage:
//
//	rpv                          # auto-discover events.log
//	rpv --logfile path/to/events.log
//	rpv --test leader_election   # preselect a test
//	rpv --json --test x --seek 5 # print a snapshot as JSON and exit
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/daviddao/replay_viewer/internal/config"
	"github.com/daviddao/replay_viewer/internal/datasource"
	"github.com/daviddao/replay_viewer/internal/replay"
	"github.com/daviddao/replay_viewer/internal/snapshot"
	"github.com/daviddao/replay_viewer/internal/trace"
)

// Version is set at build time via -ldflags.
var Version = "dev"

// logger is the process-wide debug log, nil until main has built it.
var logger *zap.Logger

var (
	stderr io.Writer = os.Stderr
	osExit           = os.Exit
)

// parseViewFlag converts a view name string to a viewID.
func parseViewFlag(s string) (viewID, error) {
	switch strings.ToLower(s) {
	case "canvas", "c":
		return viewCanvas, nil
	case "events", "e":
		return viewEvents, nil
	case "nodes", "n", "inspector":
		return viewNodes, nil
	case "tests", "t":
		return viewTests, nil
	default:
		return 0, fmt.Errorf("unknown view %q (valid: canvas, events, nodes, tests)", s)
	}
}

func main() {
	logfile := flag.String("logfile", "", "path to the trace log (default: events.log, auto-discovered)")
	testFlag := flag.String("test", "", "preselect a test by name")
	jsonMode := flag.Bool("json", false, "print a snapshot as JSON and exit")
	seekFlag := flag.Int("seek", -1, "with --json, seek to this event index after selecting --test")
	settingsFlag := flag.String("settings", "", "path to the settings file (default: user config dir)")
	delayFlag := flag.Int("delay", 0, "step delay in milliseconds (overrides settings)")
	logFlag := flag.String("log", "", "path to the debug log (default: $TMPDIR/rpv.log)")
	debugFlag := flag.Bool("debug", false, "log at debug level")
	viewFlag := flag.String("view", "", "start in a specific view: canvas, events, nodes, tests")
	versionFlag := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *versionFlag {
		fmt.Printf("rpv %s\n", Version)
		os.Exit(0)
	}

	env, err := config.LoadEnv()
	if err != nil {
		exitf("%v", err)
	}

	logPath := firstNonEmpty(*logFlag, env.Log, filepath.Join(os.TempDir(), "rpv.log"))
	if *jsonMode {
		// stdout carries the snapshot.
		logPath = "stderr"
	}
	logger, err = newLogger(logPath, *debugFlag)
	if err != nil {
		exitf("logger: %v", err)
	}
	defer logger.Sync()

	log, path, err := datasource.Open(*logfile, env.Logfile)
	if err != nil {
		logger.Error("open trace log", zap.String("logfile", *logfile), zap.Error(err))
		exitf("%v", err)
	}
	logger.Info("trace log loaded", zap.String("path", path), zap.Int("tests", len(log.Tests())))

	if *jsonMode {
		e := replay.New(logger)
		if *testFlag != "" {
			s, ok := log.Test(*testFlag)
			if !ok {
				exitf("unknown test %q", *testFlag)
			}
			if err := e.SelectTest(s); err != nil {
				exitf("%v", err)
			}
			if *seekFlag >= 0 {
				if err := e.Seek(*seekFlag); err != nil {
					exitf("seek: %v", err)
				}
			}
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(snapshot.Build(path, log, e)); err != nil {
			exitf("json: %v", err)
		}
		logger.Sync()
		os.Exit(0)
	}

	settings, settingsPath, err := loadSettings(*settingsFlag, *delayFlag, env)
	if err != nil {
		exitf("%v", err)
	}

	w, err := datasource.NewWatcher(path, logger)
	if err != nil {
		exitf("watch: %v", err)
	}

	sink := &noticeSink{}
	e := replay.New(logger, replay.WithNotify(sink.push))
	m := newModel(e, log, w, path, sink, logger)
	m.settings = settings
	m.settingsPath = settingsPath

	// Apply --view flag.
	if *viewFlag != "" {
		v, err := parseViewFlag(*viewFlag)
		if err != nil {
			w.Close()
			exitf("%v", err)
		}
		m.activeView = v
	}

	// Apply --test flag.
	if *testFlag != "" {
		m, err = m.selectTest(*testFlag)
		if err != nil {
			w.Close()
			exitf("%v", err)
		}
	}

	p := tea.NewProgram(m, tea.WithAltScreen())

	// Feed log rewrites into the TUI.
	go func() {
		for range w.Changes() {
			p.Send(logChangedMsg{})
		}
	}()

	if _, err := p.Run(); err != nil {
		exitf("%v", err)
	}
}

// exitf reports a fatal error and exits. Deferred calls do not run on
// os.Exit, so the logger is flushed here.
func exitf(format string, args ...any) {
	fmt.Fprintf(stderr, "rpv: "+format+"\n", args...)
	if logger != nil {
		logger.Sync()
	}
	osExit(1)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// newLogger builds a JSON zap logger writing to path ("stderr" allowed).
func newLogger(path string, debug bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{path}
	if debug {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return cfg.Build()
}

// loadSettings resolves the settings file and applies overrides in order:
// file, environment, flag.
func loadSettings(flagPath string, flagDelay int, env config.Env) (config.Settings, string, error) {
	path := firstNonEmpty(flagPath, env.Settings)
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return env.Apply(config.Default()), "", nil
		}
		path = p
	}
	s, err := config.Load(path)
	if err != nil {
		return config.Settings{}, path, err
	}
	s = env.Apply(s)
	if flagDelay != 0 {
		s.NextStepDelay = flagDelay
		s = s.Normalize()
	}
	return s, path, nil
}

// --- Notices ---

// noticeSink keeps the latest engine notice for the status line. The engine
// calls push synchronously from inside Update.
type noticeSink struct {
	last replay.Notice
}

func (s *noticeSink) push(n replay.Notice) {
	s.last = n
}

// --- Messages ---

type logChangedMsg struct{}

type logReloadedMsg struct {
	log *trace.Log
	err error
}

// stepTickMsg drives play and animated seek. A tick whose token is stale is
// dropped by the engine.
type stepTickMsg struct {
	token replay.Token
}

// --- Key bindings ---

type keyMap struct {
	Quit   key.Binding
	Tab    key.Binding
	Next   key.Binding
	Prev   key.Binding
	Play   key.Binding
	Back   key.Binding
	Rerun  key.Binding
	Clear  key.Binding
	Seek   key.Binding
	Open   key.Binding
	Error  key.Binding
	Pin    key.Binding
	Faster key.Binding
	Slower key.Binding
	Save   key.Binding
	Up     key.Binding
	Down   key.Binding
	Help   key.Binding
	Enter  key.Binding
	Esc    key.Binding
	Filter key.Binding
}

var keys = keyMap{
	Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Tab:    key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next view")),
	Next:   key.NewBinding(key.WithKeys("n", "right"), key.WithHelp("n/→", "next event")),
	Prev:   key.NewBinding(key.WithKeys("p", "left"), key.WithHelp("p/←", "previous event")),
	Play:   key.NewBinding(key.WithKeys(" ", "space"), key.WithHelp("space", "run/stop")),
	Back:   key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "run backwards")),
	Rerun:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "rerun")),
	Clear:  key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear")),
	Seek:   key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "go to event")),
	Open:   key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "open test")),
	Error:  key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "test error")),
	Pin:    key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "pin event")),
	Faster: key.NewBinding(key.WithKeys("-"), key.WithHelp("-", "faster")),
	Slower: key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "slower")),
	Save:   key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "save settings")),
	Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("k/up", "up")),
	Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("j/down", "down")),
	Help:   key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Enter:  key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select / run to")),
	Esc:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
	Filter: key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filter kind")),
}

// viewKeys maps single keys to views for fast navigation.
var viewKeys = map[string]viewID{
	"1": viewCanvas,
	"2": viewEvents,
	"3": viewNodes,
	"4": viewTests,
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Next, k.Prev, k.Play, k.Tab, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Next, k.Prev, k.Play, k.Back, k.Rerun, k.Clear},
		{k.Seek, k.Open, k.Error, k.Pin, k.Filter},
		{k.Faster, k.Slower, k.Save},
		{k.Tab, k.Up, k.Down, k.Enter, k.Esc, k.Help, k.Quit},
	}
}

// contextHelp returns help text appropriate for the current view.
func contextHelp(v viewID) string {
	switch v {
	case viewEvents:
		return "n/p: step | j/k: move | enter: run to | x: pin | /: filter | space: run | ?: help | q: quit"
	case viewNodes:
		return "n/p: step | j/k: node | /: filter | space: run | 1-4: views | ?: help | q: quit"
	case viewTests:
		return "j/k: move | enter: select test | o: open by name | 1-4: views | ?: help | q: quit"
	default:
		return "n/p: step | space: run | b: back | g: go to | r: rerun | c: clear | ?: help | q: quit"
	}
}

// --- Views ---

type viewID int

const (
	viewCanvas viewID = iota
	viewEvents
	viewNodes
	viewTests
	viewCount // sentinel
)

func (v viewID) String() string {
	switch v {
	case viewCanvas:
		return "Canvas"
	case viewEvents:
		return "Events"
	case viewNodes:
		return "Nodes"
	case viewTests:
		return "Tests"
	}
	return "?"
}

type promptMode int

const (
	promptNone promptMode = iota
	promptSeek
	promptTest
)

// --- Model ---

type uiModel struct {
	engine  *replay.Engine
	log     *trace.Log
	watcher *datasource.Watcher
	snap    *snapshot.DataSnapshot
	logPath string
	notices *noticeSink
	logger  *zap.Logger

	settings     config.Settings
	settingsPath string

	activeView    viewID
	width         int
	height        int
	scrollPos     int
	selectedTest  int
	selectedEvent int             // row in the filtered event list
	selectedNode  int             // node shown in the inspector
	eventFilter   trace.EventKind // kind filter for Events ("" = all)
	nodeFilter    trace.EventKind // kind filter for the inspector ("" = all)

	prompt promptMode
	input  textinput.Model

	help     help.Model
	showHelp bool

	lastRefresh time.Time
}

func newModel(e *replay.Engine, log *trace.Log, w *datasource.Watcher, logPath string, sink *noticeSink, logger *zap.Logger) uiModel {
	if logger == nil {
		logger = zap.NewNop()
	}
	if sink == nil {
		sink = &noticeSink{}
	}
	ti := textinput.New()
	ti.CharLimit = 128
	m := uiModel{
		engine:      e,
		log:         log,
		watcher:     w,
		logPath:     logPath,
		notices:     sink,
		logger:      logger,
		settings:    config.Default(),
		activeView:  viewTests,
		input:       ti,
		help:        help.New(),
		lastRefresh: time.Now(),
	}
	return m.refresh()
}

func (m uiModel) Init() tea.Cmd {
	return nil
}

func (m uiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.prompt != promptNone {
			return m.updatePrompt(msg)
		}

		// Check single-key view shortcuts first (always available).
		if v, ok := viewKeys[msg.String()]; ok {
			m.activeView = v
			m.scrollPos = 0
			return m, nil
		}

		switch {
		case key.Matches(msg, keys.Quit):
			m.engine.Stop()
			if m.watcher != nil {
				m.watcher.Close()
			}
			return m, tea.Quit

		case key.Matches(msg, keys.Tab):
			m.activeView = (m.activeView + 1) % viewCount
			m.scrollPos = 0

		case key.Matches(msg, keys.Next):
			_, err := m.engine.StepForward()
			m.report(err)
			return m.refresh(), nil

		case key.Matches(msg, keys.Prev):
			_, err := m.engine.StepBackward()
			m.report(err)
			return m.refresh(), nil

		case key.Matches(msg, keys.Play):
			if m.engine.State().Running() {
				m.engine.Stop()
				return m.refresh(), nil
			}
			tok, err := m.engine.Play()
			m.report(err)
			m = m.refresh()
			return m, m.schedule(tok)

		case key.Matches(msg, keys.Back):
			tok, err := m.engine.PlayBackward()
			m.report(err)
			m = m.refresh()
			return m, m.schedule(tok)

		case key.Matches(msg, keys.Rerun):
			if err := m.engine.Clear(); err != nil {
				m.report(err)
				return m.refresh(), nil
			}
			tok, err := m.engine.Play()
			m.report(err)
			m = m.refresh()
			return m, m.schedule(tok)

		case key.Matches(msg, keys.Clear):
			m.report(m.engine.Clear())
			return m.refresh(), nil

		case key.Matches(msg, keys.Seek):
			return m.openPrompt(promptSeek, "go to #", "event index")

		case key.Matches(msg, keys.Open):
			return m.openPrompt(promptTest, "test: ", "test name")

		case key.Matches(msg, keys.Error):
			m.showTestError()

		case key.Matches(msg, keys.Pin):
			if m.activeView == viewEvents {
				if ev, ok := m.cursorEvent(); ok {
					m.report(m.engine.TogglePin(ev.Index))
					return m.refresh(), nil
				}
			}

		case key.Matches(msg, keys.Faster):
			m = m.setDelay(m.settings.WithDelayStep(-1))

		case key.Matches(msg, keys.Slower):
			m = m.setDelay(m.settings.WithDelayStep(1))

		case key.Matches(msg, keys.Save):
			m.saveSettings()

		case key.Matches(msg, keys.Enter):
			switch m.activeView {
			case viewTests:
				if m.selectedTest >= 0 && m.selectedTest < len(m.snap.Tests) {
					var err error
					m, err = m.selectTest(m.snap.Tests[m.selectedTest].Name)
					m.report(err)
				}
			case viewEvents:
				if ev, ok := m.cursorEvent(); ok {
					return m.beginSeek(ev.Index)
				}
			}

		case key.Matches(msg, keys.Up):
			switch m.activeView {
			case viewTests:
				if m.selectedTest > 0 {
					m.selectedTest--
				}
			case viewEvents:
				if m.selectedEvent > 0 {
					m.selectedEvent--
				}
			case viewNodes:
				if m.selectedNode > 0 {
					m.selectedNode--
				}
			default:
				if m.scrollPos > 0 {
					m.scrollPos--
				}
			}

		case key.Matches(msg, keys.Down):
			switch m.activeView {
			case viewTests:
				if m.selectedTest < len(m.snap.Tests)-1 {
					m.selectedTest++
				}
			case viewEvents:
				if m.selectedEvent < len(m.filteredEvents())-1 {
					m.selectedEvent++
				}
			case viewNodes:
				if m.selectedNode < len(m.snap.Nodes)-1 {
					m.selectedNode++
				}
			default:
				// View() clamps if we overshoot.
				maxScroll := len(m.snap.Nodes)*6 + len(m.snap.Lines) + 20
				if m.scrollPos < maxScroll {
					m.scrollPos++
				}
			}

		case key.Matches(msg, keys.Filter):
			// Cycle kind filter: "" -> kind1 -> kind2 -> ... -> "".
			switch m.activeView {
			case viewEvents:
				m.eventFilter = nextKind(presentKinds(m.snap.Events), m.eventFilter)
				m.selectedEvent = 0
			case viewNodes:
				if n, ok := m.inspectedNode(); ok {
					m.nodeFilter = nextKind(entryKinds(n.Entries), m.nodeFilter)
				}
			}

		case key.Matches(msg, keys.Help):
			m.showHelp = !m.showHelp
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

	case stepTickMsg:
		again, err := m.engine.Tick(msg.token)
		m.report(err)
		m = m.refresh()
		if again {
			return m, m.schedule(msg.token)
		}

	case logChangedMsg:
		return m, m.reloadLog()

	case logReloadedMsg:
		if msg.err != nil {
			m.logger.Warn("reload trace log", zap.String("path", m.logPath), zap.Error(msg.err))
			m.report(fmt.Errorf("reload %s: %w", filepath.Base(m.logPath), msg.err))
			return m, nil
		}
		m = m.applyReload(msg.log)
	}

	return m, nil
}

// updatePrompt routes keys to the text input while a prompt is open.
func (m uiModel) updatePrompt(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m = m.closePrompt()
		return m, nil
	case tea.KeyEnter:
		mode := m.prompt
		value := strings.TrimSpace(m.input.Value())
		m = m.closePrompt()
		switch mode {
		case promptSeek:
			k, err := strconv.Atoi(value)
			if err != nil {
				m.notices.push(replay.Notice{Level: replay.LevelWarning, Text: fmt.Sprintf("Invalid event index %q", value)})
				return m, nil
			}
			return m.beginSeek(k)
		case promptTest:
			var err error
			m, err = m.selectTest(value)
			m.report(err)
		}
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m uiModel) openPrompt(mode promptMode, prompt, placeholder string) (tea.Model, tea.Cmd) {
	m.prompt = mode
	m.input.Prompt = prompt
	m.input.Placeholder = placeholder
	m.input.SetValue("")
	cmd := m.input.Focus()
	return m, cmd
}

func (m uiModel) closePrompt() uiModel {
	m.prompt = promptNone
	m.input.Blur()
	m.input.SetValue("")
	return m
}

func (m uiModel) beginSeek(k int) (tea.Model, tea.Cmd) {
	tok, err := m.engine.BeginSeek(k)
	m.report(err)
	m = m.refresh()
	return m, m.schedule(tok)
}

// schedule returns the next replay tick, or nil once the engine has stopped.
func (m uiModel) schedule(tok replay.Token) tea.Cmd {
	if !m.engine.State().Running() {
		return nil
	}
	return tea.Tick(m.settings.Delay(), func(time.Time) tea.Msg {
		return stepTickMsg{token: tok}
	})
}

// selectTest makes name the active test. Choosing the test that is already
// active keeps the replay position.
func (m uiModel) selectTest(name string) (uiModel, error) {
	s, ok := m.log.Test(name)
	if !ok {
		return m, fmt.Errorf("unknown test %q", name)
	}
	m.activeView = viewCanvas
	m.scrollPos = 0
	if cur := m.engine.Session(); cur != nil && cur.Name == name {
		return m, nil
	}
	if err := m.engine.SelectTest(s); err != nil {
		return m, err
	}
	m.selectedEvent = 0
	m.selectedNode = 0
	m.eventFilter = ""
	m.nodeFilter = ""
	for i, t := range m.log.Tests() {
		if t.Name == name {
			m.selectedTest = i
		}
	}
	if s.Status == trace.StatusFailed && s.Error != "" {
		m.showTestError()
	}
	return m.refresh(), nil
}

func (m uiModel) showTestError() {
	s := m.engine.Session()
	switch {
	case s == nil:
		m.notices.push(replay.Notice{Level: replay.LevelWarning, Text: "Test is not selected!"})
	case s.Error == "":
		m.notices.push(replay.Notice{Level: replay.LevelInfo, Text: fmt.Sprintf("Test %s: %s, no error reported", s.Name, s.Status)})
	default:
		m.notices.push(replay.Notice{Level: replay.LevelError, Text: "TEST ERROR: " + s.Error})
	}
}

func (m uiModel) setDelay(s config.Settings) uiModel {
	m.settings = s
	m.notices.push(replay.Notice{Level: replay.LevelInfo, Text: fmt.Sprintf("Next step delay: %d ms", s.NextStepDelay)})
	return m
}

func (m uiModel) saveSettings() {
	if m.settingsPath == "" {
		m.report(errors.New("no settings path"))
		return
	}
	if err := config.Save(m.settingsPath, m.settings); err != nil {
		m.report(err)
		return
	}
	m.logger.Info("settings saved", zap.String("path", m.settingsPath), zap.Int("next_step_delay", m.settings.NextStepDelay))
	m.notices.push(replay.Notice{Level: replay.LevelInfo, Text: "Settings saved to " + m.settingsPath})
}

// report shows err in the status line. ErrNoTestSelected already produced
// its own notice.
func (m uiModel) report(err error) {
	if err == nil || errors.Is(err, replay.ErrNoTestSelected) {
		return
	}
	m.logger.Warn("replay command failed", zap.Error(err))
	m.notices.push(replay.Notice{Level: replay.LevelError, Text: err.Error()})
}

func (m uiModel) refresh() uiModel {
	m.snap = snapshot.Build(m.logPath, m.log, m.engine)
	if n := len(m.filteredEvents()); m.selectedEvent >= n {
		m.selectedEvent = max(0, n-1)
	}
	if m.selectedNode >= len(m.snap.Nodes) {
		m.selectedNode = max(0, len(m.snap.Nodes)-1)
	}
	if m.selectedTest >= len(m.snap.Tests) {
		m.selectedTest = max(0, len(m.snap.Tests)-1)
	}
	return m
}

func (m uiModel) reloadLog() tea.Cmd {
	path := m.logPath
	return func() tea.Msg {
		log, err := trace.ParseFile(path)
		return logReloadedMsg{log: log, err: err}
	}
}

// applyReload swaps in a freshly parsed log. The active test is reselected
// by name and replayed back to the event it was showing.
func (m uiModel) applyReload(log *trace.Log) uiModel {
	m.log = log
	m.lastRefresh = time.Now()
	if cur := m.engine.Session(); cur != nil {
		fresh, ok := log.Test(cur.Name)
		if !ok {
			m.notices.push(replay.Notice{Level: replay.LevelWarning, Text: fmt.Sprintf("Test %s is no longer in the log", cur.Name)})
			return m.refresh()
		}
		current := m.engine.Cursor().Next() - 1
		if err := m.engine.SelectTest(fresh); err != nil {
			m.report(err)
			return m.refresh()
		}
		if current >= 0 {
			m.report(m.engine.Seek(min(current, len(fresh.Events)-1)))
		}
		m.logger.Info("trace log reloaded", zap.String("test", cur.Name), zap.Int("position", current))
	}
	return m.refresh()
}

// filteredEvents is the event list after the kind filter.
func (m uiModel) filteredEvents() []snapshot.Event {
	if m.eventFilter == "" {
		return m.snap.Events
	}
	var out []snapshot.Event
	for _, ev := range m.snap.Events {
		if ev.Kind == m.eventFilter {
			out = append(out, ev)
		}
	}
	return out
}

func (m uiModel) cursorEvent() (snapshot.Event, bool) {
	events := m.filteredEvents()
	if m.selectedEvent < 0 || m.selectedEvent >= len(events) {
		return snapshot.Event{}, false
	}
	return events[m.selectedEvent], true
}

func (m uiModel) inspectedNode() (snapshot.Node, bool) {
	if m.selectedNode < 0 || m.selectedNode >= len(m.snap.Nodes) {
		return snapshot.Node{}, false
	}
	return m.snap.Nodes[m.selectedNode], true
}
