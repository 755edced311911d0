package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/daviddao/replay_viewer/internal/replay"
	"github.com/daviddao/replay_viewer/internal/snapshot"
	"github.com/daviddao/replay_viewer/internal/trace"
	"github.com/daviddao/replay_viewer/internal/visual"
)

// --- Styles ---

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED")).
			Background(lipgloss.Color("#1E1E2E")).
			Padding(0, 1)

	tabActiveStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#CDD6F4")).
			Background(lipgloss.Color("#7C3AED")).
			Padding(0, 1)

	tabInactiveStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#6C7086")).
				Background(lipgloss.Color("#313244")).
				Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#89B4FA"))

	passStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A6E3A1")).
			Bold(true)

	failStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F38BA8")).
			Bold(true)

	warnStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAB387"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6C7086"))

	currentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F9E2AF")).
			Bold(true)

	highlightStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F38BA8")).
			Bold(true)

	statusBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#CDD6F4")).
			Background(lipgloss.Color("#1E1E2E"))
)

// Node box styles. The border flag decides between a bright and a dim
// frame; partitions tint the frame.
var (
	nodeBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("#45475A")).
			Padding(0, 1).
			Width(nodeBoxWidth)

	nodeHighlightColor  = lipgloss.Color("#F9E2AF")
	partitionOneColor   = lipgloss.Color("#89B4FA")
	partitionTwoColor   = lipgloss.Color("#FAB387")
	nodeCrashStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#F38BA8")).Bold(true)
	nodeBadgeStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#CBA6F7"))
	nodeDisconnectStyle = lipgloss.NewStyle().Faint(true)
)

const nodeBoxWidth = 16

// --- View rendering ---

func (m uiModel) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var b strings.Builder

	// Title bar.
	b.WriteString(m.renderTitleBar())
	b.WriteRune('\n')

	// Tab bar.
	b.WriteString(m.renderTabBar())
	b.WriteRune('\n')
	b.WriteRune('\n')

	// Content area.
	contentHeight := m.height - 6 // title + tabs + notice + status + padding
	if m.showHelp {
		contentHeight -= 3
	}

	var content string
	switch m.activeView {
	case viewCanvas:
		content = m.renderCanvas()
	case viewEvents:
		content = m.renderEvents()
	case viewNodes:
		content = m.renderNodes(contentHeight)
	case viewTests:
		content = m.renderTests()
	}

	// Apply scroll using a local variable; View has a value receiver.
	lines := strings.Split(content, "\n")
	scrollPos := m.scrollPos
	if m.activeView == viewEvents {
		// Keep the cursor row on screen (two header lines precede it).
		scrollPos = max(0, m.selectedEvent+2-contentHeight+1)
	}
	if scrollPos >= len(lines) {
		scrollPos = max(0, len(lines)-1)
	}
	if scrollPos > 0 && scrollPos < len(lines) {
		lines = lines[scrollPos:]
	}
	if len(lines) > contentHeight && contentHeight > 0 {
		lines = lines[:contentHeight]
	}
	content = strings.Join(lines, "\n")

	b.WriteString(content)

	// Pad to fill screen.
	rendered := strings.Count(b.String(), "\n")
	for rendered < m.height-3 {
		b.WriteRune('\n')
		rendered++
	}

	b.WriteString(m.renderNotice())
	b.WriteRune('\n')

	// Prompt / help / status bar.
	switch {
	case m.prompt != promptNone:
		b.WriteString(m.input.View())
	case m.showHelp:
		b.WriteString(m.help.View(keys))
	default:
		b.WriteString(m.renderStatusBar())
	}

	return truncateLines(b.String(), m.width)
}

func (m uiModel) renderTitleBar() string {
	title := titleStyle.Render("replay viewer")
	var stats string
	if m.snap.Test == "" {
		stats = dimStyle.Render(fmt.Sprintf("%d tests | no test selected", len(m.snap.Tests)))
	} else {
		stats = dimStyle.Render(fmt.Sprintf("%s | event %d/%d | %s | %d ms",
			m.snap.Test, m.snap.Next, m.snap.Total, m.snap.State, m.settings.NextStepDelay)) +
			" " + renderStatus(m.snap.Status)
	}
	gap := strings.Repeat(" ", max(0, m.width-lipgloss.Width(title)-lipgloss.Width(stats)-2))
	return title + gap + stats
}

func (m uiModel) renderTabBar() string {
	var tabs []string
	for i := viewID(0); i < viewCount; i++ {
		if i == m.activeView {
			tabs = append(tabs, tabActiveStyle.Render(i.String()))
		} else {
			tabs = append(tabs, tabInactiveStyle.Render(i.String()))
		}
	}
	return strings.Join(tabs, " ")
}

func (m uiModel) renderNotice() string {
	n := m.notices.last
	if n.Text == "" {
		return ""
	}
	switch n.Level {
	case replay.LevelError:
		return failStyle.Render(n.Text)
	case replay.LevelWarning:
		return warnStyle.Render(n.Text)
	default:
		return n.Text
	}
}

func (m uiModel) renderStatusBar() string {
	left := fmt.Sprintf(" %s", contextHelp(m.activeView))
	right := fmt.Sprintf("reloaded %s ", m.lastRefresh.Format("15:04:05"))
	gap := strings.Repeat(" ", max(0, m.width-len(left)-len(right)))
	return statusBarStyle.Render(left + gap + right)
}

func renderStatus(s trace.Status) string {
	switch s {
	case trace.StatusPassed:
		return passStyle.Render(string(s))
	case trace.StatusFailed:
		return failStyle.Render(string(s))
	}
	return dimStyle.Render(string(s))
}

// --- Canvas view ---

func (m uiModel) renderCanvas() string {
	var b strings.Builder

	if m.snap.Test == "" {
		b.WriteString(headerStyle.Render("Canvas"))
		b.WriteRune('\n')
		b.WriteString(dimStyle.Render("  No test selected. Pick one in Tests (4) or press o."))
		b.WriteRune('\n')
		return b.String()
	}

	b.WriteString(headerStyle.Render(fmt.Sprintf("Nodes (%d crashed, %d disconnected)", m.snap.Crashed, m.snap.Disconnected)))
	b.WriteRune('\n')
	boxes := make([]string, 0, len(m.snap.Nodes))
	for _, n := range m.snap.Nodes {
		boxes = append(boxes, renderNodeBox(n))
	}
	b.WriteString(layoutBoxes(boxes, m.width))
	b.WriteRune('\n')

	b.WriteRune('\n')
	b.WriteString(headerStyle.Render("Current event"))
	b.WriteRune('\n')
	if m.snap.Current >= 0 && m.snap.Current < len(m.snap.Events) {
		ev := m.snap.Events[m.snap.Current]
		b.WriteString(currentStyle.Render(fmt.Sprintf("  #%d %s", ev.Index, ev.Caption)))
	} else {
		b.WriteString(dimStyle.Render("  (start of test)"))
	}
	b.WriteRune('\n')

	b.WriteRune('\n')
	b.WriteString(headerStyle.Render("Lines"))
	b.WriteRune('\n')
	if len(m.snap.Lines) == 0 {
		b.WriteString(dimStyle.Render("  (none)"))
		b.WriteRune('\n')
	}
	for _, l := range m.snap.Lines {
		b.WriteString("  ")
		b.WriteString(renderLine(l))
		b.WriteRune('\n')
	}
	return b.String()
}

// renderNodeBox draws one node: id, badges and the number of lines
// touching it.
func renderNodeBox(n snapshot.Node) string {
	style := nodeBoxStyle
	switch n.Partition {
	case 1:
		style = style.BorderForeground(partitionOneColor)
	case 2:
		style = style.BorderForeground(partitionTwoColor)
	}
	if n.Visible(visual.FlagBorder) {
		style = style.Border(lipgloss.ThickBorder()).BorderForeground(nodeHighlightColor)
	}

	id := n.ID
	if n.Visible(visual.FlagCrash) {
		id = nodeCrashStyle.Render("✗ " + n.ID)
	}

	var badges []string
	if n.Visible(visual.FlagLocalUser) {
		badges = append(badges, "user")
	}
	if n.Visible(visual.FlagTimer) {
		badges = append(badges, "timer")
	}
	if n.Visible(visual.FlagRestart) {
		badges = append(badges, "restart")
	}
	badgeLine := " "
	if len(badges) > 0 {
		badgeLine = nodeBadgeStyle.Render(strings.Join(badges, " "))
	}

	body := id + "\n" + badgeLine + "\n" + dimStyle.Render(fmt.Sprintf("lines %d", n.Connections))
	if n.Visible(visual.FlagDisconnect) {
		body = nodeDisconnectStyle.Render(body)
	}
	return style.Render(body)
}

// layoutBoxes joins boxes left to right, starting a new row when the next
// box would overflow width.
func layoutBoxes(boxes []string, width int) string {
	var rows []string
	var row []string
	rowWidth := 0
	for _, box := range boxes {
		w := lipgloss.Width(box) + 1
		if len(row) > 0 && rowWidth+w > width {
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
			row, rowWidth = nil, 0
		}
		row = append(row, box, " ")
		rowWidth += w
	}
	if len(row) > 0 {
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func renderLine(l snapshot.Line) string {
	arrow := "──>"
	switch l.Kind {
	case trace.KindMessageDropped, trace.KindMessageDiscarded:
		arrow = "──x"
	case trace.KindLinkEnabled:
		arrow = "═══"
	case trace.KindLinkDisabled:
		arrow = "─/─"
	}
	s := fmt.Sprintf("%s %s %s  %s #%d", l.Src, arrow, l.Dst, l.Kind, l.Index)
	if l.Highlighted {
		return highlightStyle.Render(s)
	}
	return s
}

// --- Events view ---

func (m uiModel) renderEvents() string {
	var b strings.Builder

	title := "Events"
	if m.eventFilter != "" {
		title += fmt.Sprintf(" (filter: %s)", m.eventFilter)
	}
	b.WriteString(headerStyle.Render(title))
	b.WriteRune('\n')
	b.WriteString(dimStyle.Render(fmt.Sprintf("  %-5s %-3s %s", "#", "", "Event")))
	b.WriteRune('\n')

	events := m.filteredEvents()
	if len(events) == 0 {
		if m.snap.Test == "" {
			b.WriteString(dimStyle.Render("  No test selected."))
		} else {
			b.WriteString(dimStyle.Render("  (no events)"))
		}
		b.WriteRune('\n')
		return b.String()
	}

	for i, ev := range events {
		cursor := "  "
		if i == m.selectedEvent {
			cursor = "> "
		}
		row := fmt.Sprintf("%s%-5d %-3s %s", cursor, ev.Index, eventMarker(ev, m.snap.Current), ev.Caption)
		switch {
		case ev.Selected:
			row = highlightStyle.Render(row)
		case ev.Index == m.snap.Current:
			row = currentStyle.Render(row)
		case !ev.Applied:
			row = dimStyle.Render(row)
		}
		b.WriteString(row)
		b.WriteRune('\n')
	}
	return b.String()
}

// eventMarker is "▶" for the newest applied event, "●" for other shown
// events, "·" for applied but hidden ones, and blank otherwise.
func eventMarker(ev snapshot.Event, current int) string {
	switch {
	case ev.Index == current:
		return "▶"
	case ev.Shown:
		return "●"
	case ev.Applied:
		return "·"
	}
	return " "
}

// --- Nodes view ---

func (m uiModel) renderNodes(maxHeight int) string {
	if m.snap.Test == "" || len(m.snap.Nodes) == 0 {
		return headerStyle.Render("Nodes") + "\n" + dimStyle.Render("  No test selected.") + "\n"
	}

	var left strings.Builder
	left.WriteString(headerStyle.Render("Nodes"))
	left.WriteRune('\n')
	for i, n := range m.snap.Nodes {
		cursor := "  "
		if i == m.selectedNode {
			cursor = "> "
		}
		row := fmt.Sprintf("%s%s (%d)", cursor, n.ID, len(n.Entries))
		if n.Visible(visual.FlagCrash) {
			row = nodeCrashStyle.Render(row)
		} else if i == m.selectedNode {
			row = currentStyle.Render(row)
		}
		left.WriteString(row)
		left.WriteRune('\n')
	}

	n, _ := m.inspectedNode()
	right := renderInspector(n, m.nodeFilter, m.width-nodeListWidth-3)
	return renderSplitPane(left.String(), right, nodeListWidth, m.width-nodeListWidth-3, maxHeight)
}

const nodeListWidth = 20

// renderInspector lists the flags and log entries of one node.
func renderInspector(n snapshot.Node, filter trace.EventKind, width int) string {
	var b strings.Builder
	title := "Node " + n.ID
	if filter != "" {
		title += fmt.Sprintf(" (filter: %s)", filter)
	}
	b.WriteString(headerStyle.Render(title))
	b.WriteRune('\n')

	var raised []string
	for _, f := range visual.Flags {
		if c := n.Flags[f.String()]; c > 0 {
			raised = append(raised, fmt.Sprintf("%s=%d", f, c))
		}
	}
	if len(raised) == 0 {
		raised = append(raised, "neutral")
	}
	b.WriteString(dimStyle.Render(fmt.Sprintf("  flags: %s | lines: %d", strings.Join(raised, " "), n.Connections)))
	b.WriteRune('\n')
	b.WriteRune('\n')

	shown := 0
	for _, en := range n.Entries {
		if filter != "" && en.Kind != filter {
			continue
		}
		for i, line := range wrapText(fmt.Sprintf("#%d %s", en.Index, en.Caption), max(20, width-2)) {
			if i == 0 {
				b.WriteString("  " + line)
			} else {
				b.WriteString("    " + line)
			}
			b.WriteRune('\n')
		}
		shown++
	}
	if shown == 0 {
		b.WriteString(dimStyle.Render("  (no entries)"))
		b.WriteRune('\n')
	}
	return b.String()
}

// --- Tests view ---

func (m uiModel) renderTests() string {
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("Tests (%d)", len(m.snap.Tests))))
	b.WriteRune('\n')
	b.WriteString(dimStyle.Render(fmt.Sprintf("  %-32s %-8s %-7s %s", "Name", "Status", "Events", "Error")))
	b.WriteRune('\n')

	for i, t := range m.snap.Tests {
		cursor := "  "
		if i == m.selectedTest {
			cursor = "> "
		}
		name := truncate(t.Name, 29)
		if t.Name == m.snap.Test {
			name = "*" + name
		}
		status := padOrTruncate(string(t.Status), renderStatus(t.Status), 8)
		errText := ""
		if t.Error != "" {
			errText = dimStyle.Render(truncate(t.Error, max(10, m.width-60)))
		}
		b.WriteString(fmt.Sprintf("%s%-32s %s %-7d %s", cursor, name, status, t.Events, errText))
		b.WriteRune('\n')
	}
	return b.String()
}

// --- Split-pane rendering ---

// renderSplitPane renders two content panes side by side with a vertical separator.
func renderSplitPane(left, right string, leftWidth, rightWidth, maxHeight int) string {
	leftLines := strings.Split(left, "\n")
	rightLines := strings.Split(right, "\n")

	// Pad to equal height.
	maxLines := max(len(leftLines), len(rightLines))
	if maxLines > maxHeight {
		maxLines = maxHeight
	}
	for len(leftLines) < maxLines {
		leftLines = append(leftLines, "")
	}
	for len(rightLines) < maxLines {
		rightLines = append(rightLines, "")
	}

	sep := dimStyle.Render("│")
	var b strings.Builder
	for i := 0; i < maxLines; i++ {
		l := padOrTruncate(stripAnsi(leftLines[i]), leftLines[i], leftWidth)
		r := truncateLines(rightLines[i], rightWidth)
		b.WriteString(l)
		b.WriteString(" ")
		b.WriteString(sep)
		b.WriteString(" ")
		b.WriteString(r)
		b.WriteRune('\n')
	}
	return b.String()
}

// padOrTruncate pads or truncates a line to the target visible width.
// raw is the string without ANSI codes (for width calculation),
// styled is the actual string with ANSI codes.
func padOrTruncate(raw, styled string, width int) string {
	visWidth := lipgloss.Width(raw)
	if visWidth >= width {
		// Truncate: just use raw truncated (lose styling on overflow).
		if visWidth > width {
			return ansi.Truncate(raw, width, "")
		}
		return styled
	}
	return styled + strings.Repeat(" ", width-visWidth)
}

// stripAnsi removes ANSI escape sequences for width calculations.
func stripAnsi(s string) string {
	return ansi.Strip(s)
}

// --- Helpers ---

// presentKinds lists the kinds occurring in events, in trace.Kinds order.
func presentKinds(events []snapshot.Event) []trace.EventKind {
	seen := make(map[trace.EventKind]bool)
	for _, ev := range events {
		seen[ev.Kind] = true
	}
	return orderedKinds(seen)
}

func entryKinds(entries []snapshot.Entry) []trace.EventKind {
	seen := make(map[trace.EventKind]bool)
	for _, en := range entries {
		seen[en.Kind] = true
	}
	return orderedKinds(seen)
}

func orderedKinds(seen map[trace.EventKind]bool) []trace.EventKind {
	var out []trace.EventKind
	for _, k := range trace.Kinds {
		if seen[k] {
			out = append(out, k)
		}
	}
	return out
}

// nextKind advances a kind filter through kinds and wraps back to "".
func nextKind(kinds []trace.EventKind, cur trace.EventKind) trace.EventKind {
	if cur == "" {
		if len(kinds) > 0 {
			return kinds[0]
		}
		return ""
	}
	for i, k := range kinds {
		if k == cur {
			if i+1 < len(kinds) {
				return kinds[i+1]
			}
			return ""
		}
	}
	return ""
}

// truncateLines truncates each line in content to at most width visible
// characters, preserving ANSI escape codes. This prevents terminal line
// wrapping when the window is resized narrower.
func truncateLines(content string, width int) string {
	if width <= 0 {
		return content
	}
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		if lipgloss.Width(line) > width {
			lines[i] = ansi.Truncate(line, width, "")
		}
	}
	return strings.Join(lines, "\n")
}

// wrapText breaks s into lines of at most width characters, splitting on word
// boundaries where possible. If a single word exceeds width it is hard-split.
// Embedded newlines are respected.
func wrapText(s string, width int) []string {
	if width <= 0 {
		width = 80
	}

	paragraphs := strings.Split(s, "\n")
	var lines []string
	for _, para := range paragraphs {
		lines = append(lines, wrapParagraph(para, width)...)
	}
	return lines
}

// wrapParagraph wraps a single paragraph (no embedded newlines) to width.
func wrapParagraph(s string, width int) []string {
	if len(s) <= width {
		return []string{s}
	}

	var lines []string
	for len(s) > 0 {
		if len(s) <= width {
			lines = append(lines, s)
			break
		}
		// Try to break at a space at or before position width.
		cut := -1
		for i := width; i > 0; i-- {
			if s[i] == ' ' {
				cut = i
				break
			}
		}
		if cut <= 0 {
			cut = width
			lines = append(lines, s[:cut])
			s = s[cut:]
		} else {
			lines = append(lines, s[:cut])
			s = s[cut+1:] // skip the space
		}
	}
	return lines
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
