package tui

import (
	"fmt"
	"strings"

	"github.com/Iron-Ham/foldlog/internal/dump"
	"github.com/Iron-Ham/foldlog/internal/fold"
	"github.com/Iron-Ham/foldlog/internal/modlog"
	"github.com/Iron-Ham/foldlog/internal/tui/styles"
)

// Row is one visible line of a fold tree.
type Row struct {
	Node     *fold.Node
	Depth    int
	Expanded bool
}

// Overrides records nodes the user expanded or collapsed by hand.
type Overrides map[*fold.Node]bool

// IsExpanded reports whether n shows its children: the user's choice if
// there is one, otherwise the fold threshold decides.
func (o Overrides) IsExpanded(n *fold.Node, threshold modlog.Level) bool {
	if n.IsLeaf() {
		return false
	}
	if v, ok := o[n]; ok {
		return v
	}
	return n.Expanded(threshold)
}

// VisibleRows lists the rows of root that are visible at threshold, in
// display order. The root itself is not a row.
func VisibleRows(root *fold.Node, threshold modlog.Level, overrides Overrides) []Row {
	var rows []Row
	root.Walk(func(n *fold.Node, depth int) bool {
		if n.Kind == fold.KindRoot {
			return true
		}
		expanded := overrides.IsExpanded(n, threshold)
		rows = append(rows, Row{Node: n, Depth: depth - 1, Expanded: expanded})
		return expanded
	})
	return rows
}

// RenderOptions controls tree rendering.
type RenderOptions struct {
	// Threshold expands nodes whose fold level is at most this level.
	Threshold modlog.Level
	// ModuleWidth pads module names to line messages up.
	ModuleWidth int
	// Details prints frame details below frame rows.
	Details bool
	// Styles colors the output. Nil renders plain text.
	Styles *styles.Styles
}

// RenderTree renders the visible rows of root, one line per row.
func RenderTree(root *fold.Node, opts RenderOptions) string {
	st := opts.Styles
	if st == nil {
		st = styles.Plain()
	}

	var sb strings.Builder
	for _, row := range VisibleRows(root, opts.Threshold, nil) {
		sb.WriteString(RenderRow(row, opts.ModuleWidth, st))
		sb.WriteByte('\n')
		if opts.Details {
			for _, d := range frameDetails(row.Node) {
				sb.WriteString(indent(row.Depth + 1))
				sb.WriteString(st.Details.Render(d))
				sb.WriteByte('\n')
			}
		}
	}
	return sb.String()
}

// RenderRow renders one row without a trailing newline.
func RenderRow(row Row, moduleWidth int, st *styles.Styles) string {
	marker := "  "
	if !row.Node.IsLeaf() {
		if row.Expanded {
			marker = "▾ "
		} else {
			marker = "▸ "
		}
	}
	return indent(row.Depth) + marker + formatNode(row.Node, moduleWidth, st)
}

func formatNode(n *fold.Node, moduleWidth int, st *styles.Styles) string {
	if n.Kind == fold.KindFoldPoint {
		return st.FoldPoint.Render(fmt.Sprintf("… %d entries, most severe %s", n.Count(), n.Level))
	}
	return FormatEntry(*n.Entry, moduleWidth, st)
}

// FormatEntry renders an entry as
// [seconds] LEVEL module message
// with frame titles marked and provisional frames noted.
func FormatEntry(e modlog.Entry, moduleWidth int, st *styles.Styles) string {
	if st == nil {
		st = styles.Plain()
	}
	text := e.Message
	switch {
	case e.IsFrame():
		text = fmt.Sprintf("frame %d: %s", e.FrameNumber, e.Text())
	case e.Frame != nil:
		text += st.Muted.Render(fmt.Sprintf(" (in frame %d: %s)", e.FrameNumber, e.Frame.Title))
	}
	return fmt.Sprintf("%s %s %s %s",
		st.Muted.Render("["+dump.FormatMicros(e.Timestamp)+"]"),
		st.Level(e.Level).Render(fmt.Sprintf("%-10s", e.Level)),
		fmt.Sprintf("%-*s", moduleWidth, e.Module),
		text,
	)
}

func frameDetails(n *fold.Node) []string {
	if n.Entry == nil || n.Entry.Frame == nil || n.Entry.Frame.Details == "" {
		return nil
	}
	return strings.Split(n.Entry.Frame.Details, "\n")
}

func indent(depth int) string {
	return strings.Repeat("  ", depth)
}
