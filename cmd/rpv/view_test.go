package main

import (
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/daviddao/replay_viewer/internal/config"
	"github.com/daviddao/replay_viewer/internal/replay"
	"github.com/daviddao/replay_viewer/internal/trace"
)

const testLog = `NODE_IDS:1:2:3
TEST_BEGIN:election
{"type": "MessageSend", "data": {"src": "1", "dst": "2", "ts": 0.1, "msg": {"type": "Vote", "data": {"term": 1}}}}
{"type": "MessageReceive", "data": {"src": "1", "dst": "2", "ts": 0.2, "msg": {"type": "Vote", "data": {"term": 1}}}}
{"type": "NodeCrashed", "data": {"node": "3", "ts": 0.3}}
TEST_END:FAILED:no leader elected
TEST_BEGIN:quiet
TEST_END:PASSED:
`

func parseLog(t *testing.T, content string) *trace.Log {
	t.Helper()
	log, err := trace.Parse(strings.NewReader(content))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return log
}

// testModel creates a uiModel over testLog (no watcher needed for render tests).
func testModel(t *testing.T) uiModel {
	t.Helper()
	sink := &noticeSink{}
	e := replay.New(nil, replay.WithNotify(sink.push))
	m := newModel(e, parseLog(t, testLog), nil, "events.log", sink, nil)
	m.width = 100
	m.height = 30
	m.help.Width = 100
	return m
}

// withTest returns m with the named test selected.
func withTest(t *testing.T, m uiModel, name string) uiModel {
	t.Helper()
	m, err := m.selectTest(name)
	if err != nil {
		t.Fatalf("selectTest(%q): %v", name, err)
	}
	return m
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

// press feeds keys through Update and returns the final model and command.
func press(m uiModel, ks ...string) (uiModel, tea.Cmd) {
	var cmd tea.Cmd
	for _, k := range ks {
		var updated tea.Model
		updated, cmd = m.Update(keyMsg(k))
		m = updated.(uiModel)
	}
	return m, cmd
}

// drain delivers ticks until the engine stops.
func drain(t *testing.T, m uiModel) uiModel {
	t.Helper()
	for i := 0; m.engine.State().Running(); i++ {
		if i > 100 {
			t.Fatal("replay did not stop")
		}
		updated, _ := m.Update(stepTickMsg{token: m.engine.Token()})
		m = updated.(uiModel)
	}
	return m
}

func TestParseViewFlag(t *testing.T) {
	tests := []struct {
		input string
		want  viewID
		err   bool
	}{
		{"canvas", viewCanvas, false},
		{"Canvas", viewCanvas, false},
		{"c", viewCanvas, false},
		{"events", viewEvents, false},
		{"e", viewEvents, false},
		{"nodes", viewNodes, false},
		{"inspector", viewNodes, false},
		{"tests", viewTests, false},
		{"t", viewTests, false},
		{"bogus", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got, err := parseViewFlag(tt.input)
		if tt.err {
			if err == nil {
				t.Errorf("parseViewFlag(%q) expected error", tt.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseViewFlag(%q) error: %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parseViewFlag(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestViewIDString(t *testing.T) {
	tests := []struct {
		v    viewID
		want string
	}{
		{viewCanvas, "Canvas"},
		{viewEvents, "Events"},
		{viewNodes, "Nodes"},
		{viewTests, "Tests"},
		{viewCount, "?"},
	}
	for _, tt := range tests {
		if got := tt.v.String(); got != tt.want {
			t.Errorf("viewID(%d).String() = %q, want %q", tt.v, got, tt.want)
		}
	}
}

func TestViewLoading(t *testing.T) {
	m := testModel(t)
	m.width = 0
	if got := m.View(); got != "Loading..." {
		t.Errorf("View() with zero width = %q, want Loading...", got)
	}
}

func TestViewStartsOnTests(t *testing.T) {
	m := testModel(t)
	out := stripAnsi(m.View())
	for _, want := range []string{"replay viewer", "2 tests", "election", "FAILED", "no leader elected", "quiet", "PASSED"} {
		if !strings.Contains(out, want) {
			t.Errorf("tests view missing %q", want)
		}
	}
}

func TestViewFitsHeight(t *testing.T) {
	m := withTest(t, testModel(t), "election")
	m, _ = press(m, "n")
	for v := viewID(0); v < viewCount; v++ {
		m.activeView = v
		lines := strings.Split(m.View(), "\n")
		if len(lines) > m.height {
			t.Errorf("%s view: %d lines, want at most %d", v, len(lines), m.height)
		}
	}
}

func TestViewNoLineExceedsWidth(t *testing.T) {
	m := withTest(t, testModel(t), "election")
	m.width = 40
	m, _ = press(m, "n", "n", "n")
	for v := viewID(0); v < viewCount; v++ {
		m.activeView = v
		for i, line := range strings.Split(m.View(), "\n") {
			if w := len([]rune(stripAnsi(line))); w > m.width {
				t.Errorf("%s view line %d width %d > %d: %q", v, i, w, m.width, stripAnsi(line))
			}
		}
	}
}

func TestRenderCanvasNoTest(t *testing.T) {
	m := testModel(t)
	out := stripAnsi(m.renderCanvas())
	if !strings.Contains(out, "No test selected") {
		t.Errorf("canvas without test = %q", out)
	}
}

func TestRenderCanvasShowsLine(t *testing.T) {
	m := withTest(t, testModel(t), "election")
	m, _ = press(m, "n")

	out := stripAnsi(m.renderCanvas())
	for _, want := range []string{"1 ──> 2  MessageSend #0", "#0 0.100 | 1 --> 2 | Vote", "lines 1"} {
		if !strings.Contains(out, want) {
			t.Errorf("canvas missing %q:\n%s", want, out)
		}
	}
}

func TestRenderCanvasCrash(t *testing.T) {
	m := withTest(t, testModel(t), "election")
	m, _ = press(m, "n", "n", "n")

	out := stripAnsi(m.renderCanvas())
	if !strings.Contains(out, "✗ 3") {
		t.Errorf("canvas should mark node 3 as crashed:\n%s", out)
	}
	if !strings.Contains(out, "1 crashed") {
		t.Errorf("canvas header should count the crash:\n%s", out)
	}
	// Both message lines were hidden by later events.
	if !strings.Contains(out, "(none)") {
		t.Errorf("canvas should have no lines:\n%s", out)
	}
}

func TestRenderEventsMarkers(t *testing.T) {
	m := withTest(t, testModel(t), "election")
	m, _ = press(m, "n", "n", "n")

	out := stripAnsi(m.renderEvents())
	for _, want := range []string{
		"0     ·   0.100 | 1 --> 2 | Vote",
		"2     ▶   0.300 | 3 CRASHED",
		"3         TEST ENDED",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("events missing %q:\n%s", want, out)
		}
	}
}

func TestRenderEventsFilter(t *testing.T) {
	m := withTest(t, testModel(t), "election")
	m.activeView = viewEvents
	m, _ = press(m, "/")

	if m.eventFilter != trace.KindMessageSend {
		t.Fatalf("eventFilter = %q, want %q", m.eventFilter, trace.KindMessageSend)
	}
	out := stripAnsi(m.renderEvents())
	if !strings.Contains(out, "filter: MessageSend") {
		t.Error("events header should name the filter")
	}
	if strings.Contains(out, "CRASHED") {
		t.Error("filtered list should not contain other kinds")
	}

	// Cycle through every present kind back to "all".
	m, _ = press(m, "/", "/", "/", "/")
	if m.eventFilter != "" {
		t.Errorf("eventFilter after full cycle = %q, want empty", m.eventFilter)
	}
}

func TestRenderInspector(t *testing.T) {
	m := withTest(t, testModel(t), "election")
	m.activeView = viewNodes
	m, _ = press(m, "n", "n")

	out := stripAnsi(m.View())
	if !strings.Contains(out, "Node 1") || !strings.Contains(out, "#0 0.100 | 1 --> 2 | Vote") {
		t.Errorf("inspector for node 1:\n%s", out)
	}

	m, _ = press(m, "j")
	out = stripAnsi(m.View())
	if !strings.Contains(out, "Node 2") || !strings.Contains(out, "#1 0.200 | 2 <-- 1 | Vote") {
		t.Errorf("inspector for node 2:\n%s", out)
	}

	m, _ = press(m, "j")
	out = stripAnsi(m.View())
	if !strings.Contains(out, "(no entries)") {
		t.Errorf("node 3 should have no entries yet:\n%s", out)
	}
}

func TestStepKeys(t *testing.T) {
	m := withTest(t, testModel(t), "election")

	m, _ = press(m, "n", "n")
	if got := m.engine.Cursor().Next(); got != 2 {
		t.Fatalf("after two steps next = %d, want 2", got)
	}
	if m.notices.last.Text != "Event: #2/4" {
		t.Errorf("notice = %q", m.notices.last.Text)
	}

	m, _ = press(m, "p", "p", "p")
	if got := m.engine.Cursor().Next(); got != 0 {
		t.Errorf("after stepping back next = %d, want 0", got)
	}
	if m.notices.last.Text != "First event reached" {
		t.Errorf("notice = %q, want First event reached", m.notices.last.Text)
	}
	if !m.engine.Canvas().Neutral() {
		t.Error("canvas should be neutral after stepping back to the start")
	}
}

func TestStepWithoutTest(t *testing.T) {
	m := testModel(t)
	m, _ = press(m, "n")
	if m.notices.last.Text != "Test is not selected!" {
		t.Errorf("notice = %q", m.notices.last.Text)
	}
}

func TestPlayRunsToEnd(t *testing.T) {
	m := withTest(t, testModel(t), "election")

	m, cmd := press(m, " ")
	if m.engine.State() != replay.PlayingForward {
		t.Fatalf("state = %v, want playing", m.engine.State())
	}
	if cmd == nil {
		t.Fatal("play should schedule a tick")
	}
	if got := m.engine.Cursor().Next(); got != 1 {
		t.Errorf("play should take the first step immediately, next = %d", got)
	}

	m = drain(t, m)
	if !m.engine.Cursor().AtEnd() {
		t.Errorf("next = %d, want end", m.engine.Cursor().Next())
	}
	if m.notices.last.Text != "Last event is reached (#4)" {
		t.Errorf("notice = %q", m.notices.last.Text)
	}
}

func TestSpaceStopsAndStaleTickIgnored(t *testing.T) {
	m := withTest(t, testModel(t), "election")
	m, _ = press(m, " ")
	stale := m.engine.Token()

	m, cmd := press(m, " ")
	if m.engine.State() != replay.Ready {
		t.Fatalf("state = %v, want ready", m.engine.State())
	}
	if cmd != nil {
		t.Error("stop should not schedule a tick")
	}

	updated, cmd := m.Update(stepTickMsg{token: stale})
	m = updated.(uiModel)
	if got := m.engine.Cursor().Next(); got != 1 {
		t.Errorf("stale tick moved the cursor to %d", got)
	}
	if cmd != nil {
		t.Error("stale tick should not reschedule")
	}
}

func TestManualStepWhilePlaying(t *testing.T) {
	m := withTest(t, testModel(t), "election")
	m, _ = press(m, " ", "n")
	if m.notices.last.Level != replay.LevelWarning {
		t.Errorf("notice = %+v, want a warning", m.notices.last)
	}
	if got := m.engine.Cursor().Next(); got != 1 {
		t.Errorf("manual step during play moved the cursor to %d", got)
	}
}

func TestPlayBackward(t *testing.T) {
	m := withTest(t, testModel(t), "election")
	m, _ = press(m, "n", "n", "n", "b")
	if m.engine.State() != replay.PlayingBackward {
		t.Fatalf("state = %v, want playing backward", m.engine.State())
	}
	m = drain(t, m)
	if got := m.engine.Cursor().Next(); got != 0 {
		t.Errorf("next = %d, want 0", got)
	}
}

func TestRerunAndClear(t *testing.T) {
	m := withTest(t, testModel(t), "election")
	m, _ = press(m, "n", "n", "n", "r")
	if got := m.engine.Cursor().Next(); got != 1 {
		t.Errorf("rerun should restart and take one step, next = %d", got)
	}
	m = drain(t, m)

	m, _ = press(m, "c")
	if got := m.engine.Cursor().Next(); got != 0 {
		t.Errorf("clear: next = %d, want 0", got)
	}
	if !m.engine.Canvas().Neutral() {
		t.Error("clear should leave the canvas neutral")
	}
}

func TestSeekPrompt(t *testing.T) {
	m := withTest(t, testModel(t), "election")

	m, _ = press(m, "g")
	if m.prompt != promptSeek {
		t.Fatal("g should open the seek prompt")
	}
	if !strings.Contains(stripAnsi(m.View()), "go to #") {
		t.Error("prompt should replace the status bar")
	}

	m, _ = press(m, "2", "enter")
	if m.prompt != promptNone {
		t.Error("enter should close the prompt")
	}
	m = drain(t, m)
	if top := m.engine.Cursor().Top(); top == nil || top.Index != 2 {
		t.Errorf("seek landed on %v, want event 2", top)
	}
}

func TestSeekPromptInvalid(t *testing.T) {
	m := withTest(t, testModel(t), "election")
	m, _ = press(m, "g", "x", "enter")
	if m.notices.last.Level != replay.LevelWarning || !strings.Contains(m.notices.last.Text, "Invalid event index") {
		t.Errorf("notice = %+v", m.notices.last)
	}

	m, _ = press(m, "g", "9", "enter")
	if m.notices.last.Level != replay.LevelError {
		t.Errorf("out of range seek notice = %+v, want error", m.notices.last)
	}
}

func TestSeekPromptEscape(t *testing.T) {
	m := withTest(t, testModel(t), "election")
	m, _ = press(m, "g", "1", "esc")
	if m.prompt != promptNone {
		t.Error("esc should close the prompt")
	}
	if got := m.engine.Cursor().Next(); got != 0 {
		t.Errorf("cancelled seek moved the cursor to %d", got)
	}
}

func TestEnterOnEventRunsTo(t *testing.T) {
	m := withTest(t, testModel(t), "election")
	m.activeView = viewEvents
	m, _ = press(m, "j", "j", "enter")
	m = drain(t, m)
	if top := m.engine.Cursor().Top(); top == nil || top.Index != 2 {
		t.Errorf("run-to landed on %v, want event 2", top)
	}

	// And back again.
	m, _ = press(m, "k", "k", "enter")
	m = drain(t, m)
	if top := m.engine.Cursor().Top(); top == nil || top.Index != 0 {
		t.Errorf("run-to landed on %v, want event 0", top)
	}
}

func TestPinEvent(t *testing.T) {
	m := withTest(t, testModel(t), "election")
	m, _ = press(m, "n", "n")
	m.activeView = viewEvents

	m, _ = press(m, "x")
	if !m.snap.Events[0].Selected {
		t.Fatal("x should pin event 0")
	}
	if len(m.snap.Lines) != 2 {
		t.Errorf("pinning a hidden send should show its line, lines = %+v", m.snap.Lines)
	}

	m, _ = press(m, "x")
	if m.snap.Events[0].Selected {
		t.Error("second x should unpin event 0")
	}
}

func TestPinUnappliedEvent(t *testing.T) {
	m := withTest(t, testModel(t), "election")
	m.activeView = viewEvents
	m, _ = press(m, "x")
	if m.notices.last.Level != replay.LevelError {
		t.Errorf("pinning an unapplied event should report an error, notice = %+v", m.notices.last)
	}
}

func TestSelectTestFromList(t *testing.T) {
	m := testModel(t)
	m, _ = press(m, "enter")
	if s := m.engine.Session(); s == nil || s.Name != "election" {
		t.Fatalf("enter should select election, got %v", s)
	}
	if m.activeView != viewCanvas {
		t.Errorf("activeView = %v, want canvas", m.activeView)
	}
	if m.notices.last.Text != "TEST ERROR: no leader elected" {
		t.Errorf("selecting a failed test should show its error, notice = %q", m.notices.last.Text)
	}

	m.activeView = viewTests
	m, _ = press(m, "j", "enter")
	if s := m.engine.Session(); s == nil || s.Name != "quiet" {
		t.Errorf("expected quiet, got %v", s)
	}
}

func TestReselectKeepsPosition(t *testing.T) {
	m := withTest(t, testModel(t), "election")
	m, _ = press(m, "n", "n")

	m.activeView = viewTests
	m, _ = press(m, "enter")
	if got := m.engine.Cursor().Next(); got != 2 {
		t.Errorf("reselecting the active test reset next to %d, want 2", got)
	}
}

func TestOpenTestPrompt(t *testing.T) {
	m := testModel(t)
	m, _ = press(m, "o", "q", "u", "i", "e", "t", "enter")
	if s := m.engine.Session(); s == nil || s.Name != "quiet" {
		t.Errorf("open prompt selected %v, want quiet", s)
	}

	m, _ = press(m, "o", "n", "o", "p", "e", "enter")
	if !strings.Contains(m.notices.last.Text, `unknown test "nope"`) {
		t.Errorf("notice = %q", m.notices.last.Text)
	}
}

func TestShowTestError(t *testing.T) {
	m := testModel(t)
	m, _ = press(m, "e")
	if m.notices.last.Text != "Test is not selected!" {
		t.Errorf("notice = %q", m.notices.last.Text)
	}

	m = withTest(t, m, "quiet")
	m, _ = press(m, "e")
	if !strings.Contains(m.notices.last.Text, "no error reported") {
		t.Errorf("notice = %q", m.notices.last.Text)
	}
}

func TestDelayKeysAndSave(t *testing.T) {
	m := testModel(t)
	m.settingsPath = filepath.Join(t.TempDir(), "rpv", "settings.json")

	m, _ = press(m, "+", "+", "-", "+")
	if m.settings.NextStepDelay != 220 {
		t.Errorf("delay = %d, want 220", m.settings.NextStepDelay)
	}
	if m.notices.last.Text != "Next step delay: 220 ms" {
		t.Errorf("notice = %q", m.notices.last.Text)
	}

	m, _ = press(m, "w")
	got, err := config.Load(m.settingsPath)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.NextStepDelay != 220 {
		t.Errorf("saved delay = %d, want 220", got.NextStepDelay)
	}
}

func TestDelayClamped(t *testing.T) {
	m := testModel(t)
	m.settings = config.Settings{NextStepDelay: config.MinStepDelay}
	m, _ = press(m, "-")
	if m.settings.NextStepDelay != config.MinStepDelay {
		t.Errorf("delay = %d, want %d", m.settings.NextStepDelay, config.MinStepDelay)
	}
}

func TestTabCyclesViews(t *testing.T) {
	m := testModel(t)
	m.activeView = viewCanvas
	for i := 1; i <= int(viewCount); i++ {
		m, _ = press(m, "tab")
		want := viewID(i % int(viewCount))
		if m.activeView != want {
			t.Errorf("after %d tabs activeView = %v, want %v", i, m.activeView, want)
		}
	}
}

func TestViewKeys(t *testing.T) {
	m := testModel(t)
	for k, want := range viewKeys {
		m, _ = press(m, k)
		if m.activeView != want {
			t.Errorf("key %q: activeView = %v, want %v", k, m.activeView, want)
		}
	}
}

func TestHelpToggle(t *testing.T) {
	m := testModel(t)
	m, _ = press(m, "?")
	if !m.showHelp {
		t.Fatal("? should show help")
	}
	if !strings.Contains(stripAnsi(m.View()), "run/stop") {
		t.Error("help should list run/stop")
	}
	m, _ = press(m, "?")
	if m.showHelp {
		t.Error("second ? should hide help")
	}
}

func TestWindowSize(t *testing.T) {
	m := testModel(t)
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 132, Height: 50})
	m = updated.(uiModel)
	if m.width != 132 || m.height != 50 || m.help.Width != 132 {
		t.Errorf("size = %dx%d help=%d", m.width, m.height, m.help.Width)
	}
}

func TestQuit(t *testing.T) {
	m := withTest(t, testModel(t), "election")
	m, _ = press(m, " ")
	m, cmd := press(m, "q")
	if cmd == nil {
		t.Fatal("q should return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q should quit")
	}
	if m.engine.State().Running() {
		t.Error("quit should stop the replay")
	}
}

func TestReloadKeepsPosition(t *testing.T) {
	m := withTest(t, testModel(t), "election")
	m, _ = press(m, "n", "n")

	grown := strings.Replace(testLog, "TEST_END:FAILED:no leader elected",
		`{"type": "NodeRecovered", "data": {"node": "3", "ts": 0.4}}
TEST_END:FAILED:no leader elected`, 1)
	updated, _ := m.Update(logReloadedMsg{log: parseLog(t, grown)})
	m = updated.(uiModel)

	if m.snap.Total != 5 {
		t.Errorf("total after reload = %d, want 5", m.snap.Total)
	}
	if got := m.engine.Cursor().Next(); got != 2 {
		t.Errorf("next after reload = %d, want 2", got)
	}
}

func TestReloadDropsTest(t *testing.T) {
	m := withTest(t, testModel(t), "election")
	m, _ = press(m, "n")

	updated, _ := m.Update(logReloadedMsg{log: parseLog(t, "TEST_BEGIN:quiet\nTEST_END:PASSED:\n")})
	m = updated.(uiModel)
	if !strings.Contains(m.notices.last.Text, "no longer in the log") {
		t.Errorf("notice = %q", m.notices.last.Text)
	}
	if len(m.snap.Tests) != 1 {
		t.Errorf("tests after reload = %d, want 1", len(m.snap.Tests))
	}
}

func TestReloadError(t *testing.T) {
	m := testModel(t)
	updated, _ := m.Update(logReloadedMsg{err: trace.ErrNoTests})
	m = updated.(uiModel)
	if m.notices.last.Level != replay.LevelError {
		t.Errorf("notice = %+v, want an error", m.notices.last)
	}
	if len(m.snap.Tests) != 2 {
		t.Error("a failed reload should keep the previous log")
	}
}

func TestLoadSettingsPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := config.Save(path, config.Settings{NextStepDelay: 500}); err != nil {
		t.Fatalf("Save: %v", err)
	}

	tests := []struct {
		name  string
		env   config.Env
		delay int
		want  int
	}{
		{"file", config.Env{}, 0, 500},
		{"env over file", config.Env{StepDelay: 300}, 0, 300},
		{"flag over env", config.Env{StepDelay: 300}, 45, 40},
		{"flag clamped", config.Env{}, 99999, config.MaxStepDelay},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, got, err := loadSettings(path, tt.delay, tt.env)
			if err != nil {
				t.Fatalf("loadSettings: %v", err)
			}
			if got != path {
				t.Errorf("path = %q, want %q", got, path)
			}
			if s.NextStepDelay != tt.want {
				t.Errorf("delay = %d, want %d", s.NextStepDelay, tt.want)
			}
		})
	}
}

func TestNextKind(t *testing.T) {
	kinds := []trace.EventKind{trace.KindMessageSend, trace.KindNodeCrashed}
	tests := []struct {
		cur  trace.EventKind
		want trace.EventKind
	}{
		{"", trace.KindMessageSend},
		{trace.KindMessageSend, trace.KindNodeCrashed},
		{trace.KindNodeCrashed, ""},
		{trace.KindTimerFired, ""},
	}
	for _, tt := range tests {
		if got := nextKind(kinds, tt.cur); got != tt.want {
			t.Errorf("nextKind(%q) = %q, want %q", tt.cur, got, tt.want)
		}
	}
	if got := nextKind(nil, ""); got != "" {
		t.Errorf("nextKind(nil) = %q, want empty", got)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		s    string
		n    int
		want string
	}{
		{"short", 10, "short"},
		{"exactly", 7, "exactly"},
		{"too long here", 3, "too..."},
	}
	for _, tt := range tests {
		if got := truncate(tt.s, tt.n); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.s, tt.n, got, tt.want)
		}
	}
}

func TestTruncateLines(t *testing.T) {
	got := truncateLines("abcdef\nab", 3)
	if got != "abc\nab" {
		t.Errorf("truncateLines = %q", got)
	}
	if got := truncateLines("abc", 0); got != "abc" {
		t.Errorf("truncateLines with zero width = %q", got)
	}
}

func TestWrapText(t *testing.T) {
	tests := []struct {
		s     string
		width int
		want  []string
	}{
		{"short", 10, []string{"short"}},
		{"hello world again", 11, []string{"hello world", "again"}},
		{"abcdefghij", 4, []string{"abcd", "efgh", "ij"}},
		{"a\nb", 10, []string{"a", "b"}},
	}
	for _, tt := range tests {
		got := wrapText(tt.s, tt.width)
		if strings.Join(got, "|") != strings.Join(tt.want, "|") {
			t.Errorf("wrapText(%q, %d) = %q, want %q", tt.s, tt.width, got, tt.want)
		}
	}
}

func TestPadOrTruncate(t *testing.T) {
	if got := padOrTruncate("ab", "ab", 4); got != "ab  " {
		t.Errorf("pad = %q", got)
	}
	if got := padOrTruncate("abcdef", "abcdef", 3); got != "abc" {
		t.Errorf("truncate = %q", got)
	}
}
