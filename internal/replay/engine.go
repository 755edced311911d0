// Package replay drives a trace session forward and backward one event at a
// time. The Engine is single-threaded: the host delivers ticks (for example
// through tea.Tick) and the engine decides whether each tick is still
// current.
package replay

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/daviddao/replay_viewer/internal/render"
	"github.com/daviddao/replay_viewer/internal/trace"
	"github.com/daviddao/replay_viewer/internal/visual"
)

var (
	ErrNoTestSelected = errors.New("test is not selected")
	ErrSeekOutOfRange = errors.New("seek target out of range")
)

// State is the replay state machine state.
type State int

const (
	NoTestSelected State = iota
	Ready
	PlayingForward
	PlayingBackward
	Seeking
)

func (s State) String() string {
	switch s {
	case NoTestSelected:
		return "no test"
	case Ready:
		return "ready"
	case PlayingForward:
		return "playing"
	case PlayingBackward:
		return "playing backward"
	case Seeking:
		return "seeking"
	}
	return "unknown"
}

// Running reports whether the state expects further ticks.
func (s State) Running() bool {
	return s == PlayingForward || s == PlayingBackward || s == Seeking
}

// Level is the severity of a Notice.
type Level int

const (
	LevelInfo Level = iota
	LevelWarning
	LevelError
)

// Notice is a user-facing status message.
type Notice struct {
	Level Level
	Text  string
}

// Token identifies the play/seek run a tick was scheduled for. Any state
// change invalidates outstanding tokens.
type Token uint64

// Option configures an Engine.
type Option func(*Engine)

// WithNotify delivers user notices to fn.
func WithNotify(fn func(Notice)) Option {
	return func(e *Engine) { e.notify = fn }
}

// WithCanvasOptions applies opts to every canvas the engine creates.
func WithCanvasOptions(opts ...visual.Option) Option {
	return func(e *Engine) { e.canvasOpts = append(e.canvasOpts, opts...) }
}

// Engine is the replay state machine.
type Engine struct {
	log        *zap.Logger
	notify     func(Notice)
	canvasOpts []visual.Option

	state   State
	cursor  *Cursor
	canvas  *visual.Canvas
	adapter *render.Adapter
	gen     Token
	target  int
}

// New returns an engine with no test selected.
func New(log *zap.Logger, opts ...Option) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	e := &Engine{log: log, state: NoTestSelected}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// State is the current state.
func (e *Engine) State() State { return e.state }

// Cursor is the replay position, nil when no test is selected.
func (e *Engine) Cursor() *Cursor { return e.cursor }

// Canvas is the display state of the selected test, nil when none.
func (e *Engine) Canvas() *visual.Canvas { return e.canvas }

// Session is the selected test, nil when none.
func (e *Engine) Session() *trace.Session {
	if e.cursor == nil {
		return nil
	}
	return e.cursor.session
}

// Token returns the token a tick scheduled now must carry.
func (e *Engine) Token() Token { return e.gen }

// Target is the index the engine is seeking to; meaningful in Seeking only.
func (e *Engine) Target() int { return e.target }

// SelectTest makes s the active test with a fresh cursor at index 0 and one
// neutral node per participant. Whatever the previous test rendered is undone
// first.
func (e *Engine) SelectTest(s *trace.Session) error {
	if s == nil {
		return ErrNoTestSelected
	}
	e.halt()
	e.unwind()
	e.canvas = visual.NewCanvas(s.NodeIDs, e.log, e.canvasOpts...)
	e.adapter = render.New(e.canvas, e.log)
	e.cursor = newCursor(s)
	e.state = Ready
	e.log.Info("test selected", zap.String("test", s.Name), zap.Int("events", len(s.Events)))
	e.info("Selected test: " + s.Name)
	return nil
}

// Clear returns to index 0 of the same test on the same canvas.
func (e *Engine) Clear() error {
	if !e.selected() {
		return ErrNoTestSelected
	}
	e.info("Clear events")
	e.halt()
	e.unwind()
	e.cursor = newCursor(e.cursor.session)
	return nil
}

// StepForward applies the next event. It reports false at the end of the
// session, which is announced as a notice rather than returned as an error.
func (e *Engine) StepForward() (bool, error) {
	if !e.selected() {
		return false, ErrNoTestSelected
	}
	if e.state.Running() {
		e.warn("Stop the replay before stepping manually")
		return false, nil
	}
	return e.forward()
}

// StepBackward undoes the most recent event. It reports false at the start
// of the session.
func (e *Engine) StepBackward() (bool, error) {
	if !e.selected() {
		return false, ErrNoTestSelected
	}
	if e.state.Running() {
		e.warn("Stop the replay before stepping manually")
		return false, nil
	}
	return e.backward()
}

// Play starts continuous forward replay. The first step happens
// immediately; further steps happen on Tick with the returned token. A
// session that is already at its end is restarted from the beginning.
func (e *Engine) Play() (Token, error) {
	if !e.selected() {
		return 0, ErrNoTestSelected
	}
	e.halt()
	if e.cursor.AtEnd() && e.cursor.next > 0 {
		e.log.Debug("restart on replay past end", zap.String("test", e.cursor.session.Name))
		if err := e.Clear(); err != nil {
			return 0, err
		}
	}
	e.state = PlayingForward
	if moved, err := e.forward(); !moved || err != nil {
		e.halt()
		return e.gen, err
	}
	return e.gen, nil
}

// PlayBackward starts continuous backward replay.
func (e *Engine) PlayBackward() (Token, error) {
	if !e.selected() {
		return 0, ErrNoTestSelected
	}
	e.halt()
	e.state = PlayingBackward
	if moved, err := e.backward(); !moved || err != nil {
		e.halt()
		return e.gen, err
	}
	return e.gen, nil
}

// Stop ends any play or seek. Ticks scheduled before Stop become no-ops.
func (e *Engine) Stop() {
	if e.state.Running() {
		e.log.Debug("replay stopped", zap.Stringer("state", e.state), zap.Int("next", e.cursor.next))
	}
	e.halt()
}

// Tick performs one automatic step if tok is still current and reports
// whether another tick should be scheduled.
func (e *Engine) Tick(tok Token) (bool, error) {
	if tok != e.gen || !e.state.Running() {
		e.log.Debug("stale tick ignored", zap.Uint64("token", uint64(tok)), zap.Uint64("current", uint64(e.gen)))
		return false, nil
	}
	var (
		moved bool
		err   error
	)
	switch e.state {
	case PlayingForward:
		moved, err = e.forward()
	case PlayingBackward:
		moved, err = e.backward()
	case Seeking:
		moved, err = e.seekStep()
	}
	if !moved || err != nil || e.seekDone() {
		e.halt()
		return false, err
	}
	return true, nil
}

// Seek moves synchronously until the event at target is the most recently
// applied one, stepping in whichever direction needs fewer steps.
func (e *Engine) Seek(target int) error {
	if err := e.checkTarget(target); err != nil {
		return err
	}
	e.halt()
	e.state = Seeking
	e.target = target
	for {
		moved, err := e.seekStep()
		if err != nil {
			e.halt()
			return err
		}
		if !moved {
			break
		}
	}
	e.halt()
	return nil
}

// BeginSeek starts an animated seek to target, taking the first step
// immediately. Calling it while a seek is in progress adopts the new target.
func (e *Engine) BeginSeek(target int) (Token, error) {
	if err := e.checkTarget(target); err != nil {
		return 0, err
	}
	e.halt()
	e.state = Seeking
	e.target = target
	if moved, err := e.seekStep(); !moved || err != nil || e.seekDone() {
		e.halt()
		return e.gen, err
	}
	return e.gen, nil
}

// Select highlights the applied event at index.
func (e *Engine) Select(index int) error {
	ev, err := e.appliedEvent(index)
	if err != nil {
		return err
	}
	return e.adapter.Select(ev)
}

// Deselect releases one Select of the applied event at index.
func (e *Engine) Deselect(index int) error {
	ev, err := e.appliedEvent(index)
	if err != nil {
		return err
	}
	return e.adapter.Deselect(ev)
}

// TogglePin keeps the applied event at index highlighted until toggled again.
func (e *Engine) TogglePin(index int) error {
	ev, err := e.appliedEvent(index)
	if err != nil {
		return err
	}
	return e.adapter.TogglePin(ev)
}

// Shown reports whether the applied event at index is visible.
func (e *Engine) Shown(index int) bool {
	ev, err := e.appliedEvent(index)
	return err == nil && e.adapter.Shown(ev)
}

// Selected reports whether the applied event at index is highlighted.
func (e *Engine) Selected(index int) bool {
	ev, err := e.appliedEvent(index)
	return err == nil && e.adapter.Selected(ev)
}

func (e *Engine) forward() (bool, error) {
	c := e.cursor
	if c.AtEnd() {
		e.info(fmt.Sprintf("Last event is reached (#%d)", c.next))
		return false, nil
	}
	ev := &c.session.Events[c.next]
	if err := e.adapter.Apply(*ev); err != nil {
		e.log.Error("apply failed", zap.Int("event", ev.Index), zap.Error(err))
		return false, err
	}
	// Only the show taken by the previous step is released; a selection
	// keeps its own.
	prev := c.top()
	hidPrev := false
	if prev.ev != nil && prev.stepShown && e.adapter.Transient(prev.ev.Kind) {
		e.adapter.Hide(*prev.ev)
		prev.stepShown = false
		hidPrev = true
	}
	if err := e.adapter.Show(*ev); err != nil {
		e.log.Error("show failed", zap.Int("event", ev.Index), zap.Error(err))
		e.adapter.Undo(*ev)
		if hidPrev {
			if err := e.adapter.Show(*prev.ev); err == nil {
				prev.stepShown = true
			}
		}
		return false, err
	}
	e.info(fmt.Sprintf("Event: #%d/%d", c.next+1, c.Len()))
	c.push(ev, true)
	return true, nil
}

func (e *Engine) backward() (bool, error) {
	c := e.cursor
	top := c.Top()
	if top == nil {
		e.info("First event reached")
		return false, nil
	}
	if err := e.adapter.Undo(*top); err != nil {
		e.log.Error("undo failed", zap.Int("event", top.Index), zap.Error(err))
		return false, err
	}
	c.pop()
	// The new top gets back the step show it lost on the way forward, even
	// if a selection is showing it right now.
	if prev := c.top(); prev.ev != nil && !prev.stepShown {
		if err := e.adapter.Show(*prev.ev); err != nil {
			e.log.Error("re-show failed", zap.Int("event", prev.ev.Index), zap.Error(err))
		} else {
			prev.stepShown = true
		}
	}
	if c.next > 0 {
		e.info(fmt.Sprintf("Event: #%d/%d", c.next, c.Len()))
	}
	return true, nil
}

// seekStep takes one step towards the target and reports false once the
// target is the most recently applied event.
func (e *Engine) seekStep() (bool, error) {
	current := e.cursor.next - 1
	switch {
	case current < e.target:
		return e.forward()
	case current > e.target:
		return e.backward()
	}
	return false, nil
}

func (e *Engine) seekDone() bool {
	return e.state == Seeking && e.cursor.next-1 == e.target
}

func (e *Engine) checkTarget(target int) error {
	if !e.selected() {
		return ErrNoTestSelected
	}
	if target < 0 || target >= e.cursor.Len() {
		return fmt.Errorf("%w: %d not in [0, %d]", ErrSeekOutOfRange, target, e.cursor.Len()-1)
	}
	return nil
}

func (e *Engine) appliedEvent(index int) (trace.Event, error) {
	if !e.selected() {
		return trace.Event{}, ErrNoTestSelected
	}
	if index < 0 || index >= e.cursor.next {
		return trace.Event{}, fmt.Errorf("event #%d: %w", index, render.ErrNotApplied)
	}
	return e.cursor.session.Events[index], nil
}

// halt returns to Ready and invalidates outstanding tick tokens.
func (e *Engine) halt() {
	e.gen++
	if e.state != NoTestSelected {
		e.state = Ready
	}
}

// unwind undoes every applied event, newest first.
func (e *Engine) unwind() {
	if e.cursor == nil {
		return
	}
	for ev := e.cursor.pop(); ev != nil; ev = e.cursor.pop() {
		if err := e.adapter.Undo(*ev); err != nil {
			e.log.Error("undo during reset failed", zap.Int("event", ev.Index), zap.Error(err))
		}
	}
}

func (e *Engine) selected() bool {
	if e.cursor == nil {
		e.warn("Test is not selected!")
		return false
	}
	return true
}

func (e *Engine) info(text string) { e.emit(LevelInfo, text) }
func (e *Engine) warn(text string) { e.emit(LevelWarning, text) }

func (e *Engine) emit(level Level, text string) {
	e.log.Debug("notice", zap.Int("level", int(level)), zap.String("text", text))
	if e.notify != nil {
		e.notify(Notice{Level: level, Text: text})
	}
}
