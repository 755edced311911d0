// Package render materializes and retracts the visual effects of trace events
// on a visual.Canvas. Each event kind is described by one entry of a
// dispatch table; the replay engine only sees the Adapter methods.
package render

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/daviddao/replay_viewer/internal/trace"
	"github.com/daviddao/replay_viewer/internal/visual"
)

var (
	// ErrUnhandledKind aborts the current step: no behaviour is registered
	// for the event kind.
	ErrUnhandledKind = errors.New("handler not implemented")
	ErrAlreadyApplied = errors.New("event already applied")
	ErrNotApplied     = errors.New("event not applied")
	ErrUnknownNode    = errors.New("unknown node")
)

// record is the bookkeeping of one applied event.
type record struct {
	ev       trace.Event
	beh      behavior
	shown    *visual.Counter
	selected *visual.Counter
	pinned   bool

	showJournal   journal
	selectJournal journal
	err           error
}

// Adapter applies and undoes events on a canvas. It is not safe for
// concurrent use; the replay engine drives it from a single goroutine.
type Adapter struct {
	canvas  *visual.Canvas
	log     *zap.Logger
	records map[int]*record
}

// New returns an Adapter drawing on canvas.
func New(canvas *visual.Canvas, log *zap.Logger) *Adapter {
	if log == nil {
		log = zap.NewNop()
	}
	return &Adapter{canvas: canvas, log: log, records: make(map[int]*record)}
}

// Canvas is the canvas the adapter draws on.
func (a *Adapter) Canvas() *visual.Canvas { return a.canvas }

// Transient reports whether events of kind are hidden again as soon as the
// next event is applied. Crash, recover, connect, disconnect and test end
// stay on screen.
func (a *Adapter) Transient(kind trace.EventKind) bool {
	b, ok := behaviors[kind]
	return ok && !b.sticky
}

// Apply records ev and appends its node inspector entries. It does not show
// the event. Applying an event twice without an Undo is rejected.
func (a *Adapter) Apply(ev trace.Event) error {
	if _, ok := a.records[ev.Index]; ok {
		a.log.Error("event applied twice", zap.Int("event", ev.Index), zap.String("kind", string(ev.Kind)))
		return fmt.Errorf("apply #%d: %w", ev.Index, ErrAlreadyApplied)
	}
	beh, ok := behaviors[ev.Kind]
	if !ok {
		a.log.Error("not implemented handler for event type", zap.String("kind", string(ev.Kind)))
		return fmt.Errorf("apply #%d %s: %w", ev.Index, ev.Kind, ErrUnhandledKind)
	}
	for _, id := range ev.Nodes() {
		if _, ok := a.canvas.Node(id); !ok {
			return fmt.Errorf("apply #%d: %w %q", ev.Index, ErrUnknownNode, id)
		}
	}

	rec := &record{ev: ev, beh: beh}
	name := fmt.Sprintf("event#%d", ev.Index)
	underflow := func(err *visual.UnderflowError) {
		a.log.Error("visibility counter underflow", zap.Int("event", ev.Index), zap.String("counter", err.Counter))
	}
	rec.shown = visual.NewCounter(name+"/shown", func(visible bool) {
		if visible {
			rec.err = a.run(rec, beh.show, &rec.showJournal)
			return
		}
		a.unwind(&rec.showJournal)
	}, underflow)
	rec.selected = visual.NewCounter(name+"/selected", func(selected bool) {
		if selected {
			rec.err = a.runSelect(rec)
			return
		}
		a.unwindSelect(rec)
	}, underflow)

	if beh.entries != nil {
		for _, id := range beh.entries(ev) {
			n, _ := a.canvas.Node(id)
			n.AppendEntry(ev.Kind, ev.Index, ev.Data)
		}
	}
	a.records[ev.Index] = rec
	return nil
}

// Undo retracts everything Apply and any later Show or Select did for ev.
func (a *Adapter) Undo(ev trace.Event) error {
	rec, ok := a.records[ev.Index]
	if !ok {
		a.log.Error("undo of event that is not applied", zap.Int("event", ev.Index))
		return fmt.Errorf("undo #%d: %w", ev.Index, ErrNotApplied)
	}
	if _, ok := behaviors[ev.Kind]; !ok {
		return fmt.Errorf("undo #%d %s: %w", ev.Index, ev.Kind, ErrUnhandledKind)
	}

	for rec.selected.Visible() {
		rec.selected.Release()
	}
	for rec.shown.Visible() {
		rec.shown.Release()
	}

	if rec.beh.entries != nil {
		ids := rec.beh.entries(ev)
		for i := len(ids) - 1; i >= 0; i-- {
			n, _ := a.canvas.Node(ids[i])
			entry, err := n.PopEntry()
			if err != nil {
				a.log.Error("inspector log out of sync", zap.Int("event", ev.Index), zap.Error(err))
				continue
			}
			if entry.Index != ev.Index {
				a.log.Error("inspector entry does not belong to undone event",
					zap.String("node", ids[i]), zap.Int("event", ev.Index), zap.Int("entry", entry.Index))
			}
		}
	}
	delete(a.records, ev.Index)
	return nil
}

// Show makes the effects of an applied event visible. Shows are counted:
// the event stays visible until every Show is matched by a Hide.
func (a *Adapter) Show(ev trace.Event) error {
	rec, err := a.record("show", ev)
	if err != nil {
		return err
	}
	return a.acquire(rec, rec.shown)
}

// Hide releases one Show of ev.
func (a *Adapter) Hide(ev trace.Event) error {
	rec, err := a.record("hide", ev)
	if err != nil {
		return err
	}
	rec.shown.Release()
	return nil
}

// Shown reports whether ev is currently visible.
func (a *Adapter) Shown(ev trace.Event) bool {
	rec, ok := a.records[ev.Index]
	return ok && rec.shown.Visible()
}

// Select highlights an applied event, typically while the user hovers it.
func (a *Adapter) Select(ev trace.Event) error {
	rec, err := a.record("select", ev)
	if err != nil {
		return err
	}
	return a.acquire(rec, rec.selected)
}

// Deselect releases one Select of ev.
func (a *Adapter) Deselect(ev trace.Event) error {
	rec, err := a.record("deselect", ev)
	if err != nil {
		return err
	}
	rec.selected.Release()
	return nil
}

// Selected reports whether ev is highlighted.
func (a *Adapter) Selected(ev trace.Event) bool {
	rec, ok := a.records[ev.Index]
	return ok && rec.selected.Visible()
}

// TogglePin selects ev until it is toggled again.
func (a *Adapter) TogglePin(ev trace.Event) error {
	rec, err := a.record("pin", ev)
	if err != nil {
		return err
	}
	if rec.pinned {
		rec.pinned = false
		rec.selected.Release()
		return nil
	}
	if err := a.acquire(rec, rec.selected); err != nil {
		return err
	}
	rec.pinned = true
	return nil
}

// Applied is the number of events currently applied.
func (a *Adapter) Applied() int { return len(a.records) }

func (a *Adapter) record(op string, ev trace.Event) (*record, error) {
	rec, ok := a.records[ev.Index]
	if !ok {
		a.log.Warn(op+" of event that is not applied", zap.Int("event", ev.Index))
		return nil, fmt.Errorf("%s #%d: %w", op, ev.Index, ErrNotApplied)
	}
	return rec, nil
}

// acquire raises c and rolls it back if the resulting effect failed.
func (a *Adapter) acquire(rec *record, c *visual.Counter) error {
	rec.err = nil
	if !c.Acquire() || rec.err == nil {
		return nil
	}
	err := rec.err
	c.Release()
	rec.err = nil
	return err
}

func (a *Adapter) runSelect(rec *record) error {
	if rec.beh.selectFx != nil {
		return a.run(rec, rec.beh.selectFx, &rec.selectJournal)
	}
	if err := a.acquire(rec, rec.shown); err != nil {
		return err
	}
	if rec.beh.line {
		a.canvas.HighlightLine(rec.ev.Index, true)
	}
	return nil
}

func (a *Adapter) unwindSelect(rec *record) {
	if rec.beh.selectFx != nil {
		a.unwind(&rec.selectJournal)
		return
	}
	if rec.beh.line {
		a.canvas.HighlightLine(rec.ev.Index, false)
	}
	rec.shown.Release()
}

// run executes an effect, undoing its partial work on failure.
func (a *Adapter) run(rec *record, effect func(*fx) error, j *journal) error {
	if effect == nil {
		return nil
	}
	f := &fx{canvas: a.canvas, log: a.log, ev: rec.ev, journal: j}
	if err := effect(f); err != nil {
		a.unwind(j)
		return err
	}
	return nil
}

func (a *Adapter) unwind(j *journal) {
	j.rollback(a.canvas)
}
