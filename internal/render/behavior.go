package render

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/daviddao/replay_viewer/internal/trace"
	"github.com/daviddao/replay_viewer/internal/visual"
)

type opKind int

const (
	opRaise opKind = iota
	opLift
	opLine
)

type op struct {
	kind opKind
	node string
	flag visual.Flag
	line int
}

// journal records every counter change an effect made so that hiding is the
// exact inverse of showing.
type journal []op

func (j *journal) rollback(c *visual.Canvas) {
	for i := len(*j) - 1; i >= 0; i-- {
		o := (*j)[i]
		switch o.kind {
		case opRaise:
			if n, ok := c.Node(o.node); ok {
				n.Release(o.flag)
			}
		case opLift:
			if n, ok := c.Node(o.node); ok {
				n.Acquire(o.flag)
			}
		case opLine:
			c.EraseLine(o.line)
		}
	}
	*j = (*j)[:0]
}

// fx is the port handed to a behaviour while it materializes an event.
type fx struct {
	canvas  *visual.Canvas
	log     *zap.Logger
	ev      trace.Event
	journal *journal
}

func (f *fx) node(id string) (*visual.NodeState, error) {
	n, ok := f.canvas.Node(id)
	if !ok {
		return nil, fmt.Errorf("event #%d: %w %q", f.ev.Index, ErrUnknownNode, id)
	}
	return n, nil
}

// raise acquires flag on node id.
func (f *fx) raise(id string, flags ...visual.Flag) error {
	n, err := f.node(id)
	if err != nil {
		return err
	}
	for _, flag := range flags {
		n.Acquire(flag)
		*f.journal = append(*f.journal, op{kind: opRaise, node: id, flag: flag})
	}
	return nil
}

// lift releases flag on node id if something holds it. A recover without a
// preceding crash leaves the node untouched.
func (f *fx) lift(id string, flag visual.Flag) error {
	n, err := f.node(id)
	if err != nil {
		return err
	}
	if n.Count(flag) == 0 {
		f.log.Debug("flag not raised, nothing to lift",
			zap.Int("event", f.ev.Index), zap.String("node", id), zap.Stringer("flag", flag))
		return nil
	}
	n.Release(flag)
	*f.journal = append(*f.journal, op{kind: opLift, node: id, flag: flag})
	return nil
}

func (f *fx) drawLine(src, dst string) error {
	err := f.canvas.DrawLine(visual.Line{Index: f.ev.Index, Kind: f.ev.Kind, Src: src, Dst: dst})
	if err != nil {
		return err
	}
	*f.journal = append(*f.journal, op{kind: opLine, line: f.ev.Index})
	return nil
}

// behavior describes how one event kind is drawn.
type behavior struct {
	// entries lists the nodes that get an inspector entry, in append order.
	entries func(trace.Event) []string
	show    func(*fx) error
	// selectFx replaces the default selection (show plus highlighted line).
	selectFx func(*fx) error
	line     bool
	sticky   bool
}

func onSrc(ev trace.Event) []string  { return []string{ev.Src()} }
func onDst(ev trace.Event) []string  { return []string{ev.Dst()} }
func onNode(ev trace.Event) []string { return []string{ev.Node()} }
func onBoth(ev trace.Event) []string { return []string{ev.Src(), ev.Dst()} }

func onGroups(ev trace.Event) []string {
	g1, g2 := ev.Groups()
	return append(append([]string{}, g1...), g2...)
}

func lineSrcDst(f *fx) error { return f.drawLine(f.ev.Src(), f.ev.Dst()) }

func localUser(f *fx) error {
	return f.raise(f.ev.Dst(), visual.FlagBorder, visual.FlagLocalUser)
}

func raiseOnNode(flags ...visual.Flag) func(*fx) error {
	return func(f *fx) error { return f.raise(f.ev.Node(), flags...) }
}

func liftOnNode(flag visual.Flag) func(*fx) error {
	return func(f *fx) error { return f.lift(f.ev.Node(), flag) }
}

func partition(f *fx) error {
	g1, g2 := f.ev.Groups()
	for _, id := range g1 {
		if err := f.raise(id, visual.FlagPartition1); err != nil {
			return err
		}
	}
	for _, id := range g2 {
		if err := f.raise(id, visual.FlagPartition2); err != nil {
			return err
		}
	}
	return nil
}

var behaviors = map[trace.EventKind]behavior{
	trace.KindMessageSend:         {entries: onSrc, show: lineSrcDst, line: true},
	trace.KindMessageReceive:      {entries: onDst, show: lineSrcDst, line: true},
	trace.KindLocalMessageSend:    {entries: onDst, show: localUser},
	trace.KindLocalMessageReceive: {entries: onDst, show: localUser},
	trace.KindMessageDropped:      {show: lineSrcDst, line: true},
	trace.KindMessageDiscarded:    {show: lineSrcDst, line: true},
	trace.KindTimerFired:          {entries: onNode, show: raiseOnNode(visual.FlagBorder, visual.FlagTimer)},
	trace.KindNodeRestarted:       {entries: onNode, show: raiseOnNode(visual.FlagBorder, visual.FlagRestart)},
	trace.KindNodeCrashed: {
		entries:  onNode,
		show:     raiseOnNode(visual.FlagCrash),
		selectFx: raiseOnNode(visual.FlagCrash),
		sticky:   true,
	},
	trace.KindNodeRecovered: {
		entries:  onNode,
		show:     liftOnNode(visual.FlagCrash),
		selectFx: raiseOnNode(visual.FlagBorder),
		sticky:   true,
	},
	trace.KindNodeDisconnected: {
		entries:  onNode,
		show:     raiseOnNode(visual.FlagDisconnect),
		selectFx: raiseOnNode(visual.FlagDisconnect),
		sticky:   true,
	},
	trace.KindNodeConnected: {
		entries:  onNode,
		show:     liftOnNode(visual.FlagDisconnect),
		selectFx: raiseOnNode(visual.FlagBorder),
		sticky:   true,
	},
	trace.KindLinkEnabled:      {entries: onBoth, show: lineSrcDst, line: true},
	trace.KindLinkDisabled:     {entries: onBoth, show: lineSrcDst, line: true},
	trace.KindNetworkPartition: {entries: onGroups, show: partition},
	trace.KindTestEnd:          {sticky: true},
}
