// Package fold reconstructs a flat, chronological entry stream into a tree
// keyed by severity. Each entry owns the entries that follow it and are less
// severe; verbose detail therefore collapses under the nearest more severe
// event while every entry stays reachable.
package fold

import (
	"github.com/Iron-Ham/foldlog/internal/modlog"
)

// Kind identifies the role of a Node.
type Kind int

const (
	// KindRoot is the synthetic top of a tree.
	KindRoot Kind = iota
	// KindEntry wraps one log entry.
	KindEntry
	// KindFoldPoint is a synthetic grouping node inserted when an entry's
	// owned range spans more than one level.
	KindFoldPoint
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindRoot:
		return "root"
	case KindEntry:
		return "entry"
	case KindFoldPoint:
		return "fold"
	default:
		return "unknown"
	}
}

// rootLevel sits above every real level so the root owns everything.
const rootLevel modlog.Level = -1

// Node is one node of a fold tree. Trees are transient and rebuilt on each
// load or fold setting change.
type Node struct {
	Kind Kind
	// Entry is set for KindEntry only.
	Entry *modlog.Entry
	// Level is the entry's level, the grouped level of a fold point, or -1 for
	// the root.
	Level modlog.Level
	// FoldLevel is the most severe level among the direct children, or Level
	// for a leaf. Presentation only.
	FoldLevel modlog.Level
	Children  []*Node
}

// IsLeaf reports whether n has no children.
func (n *Node) IsLeaf() bool {
	return len(n.Children) == 0
}

// Expanded reports whether a viewer showing levels up to threshold should
// display n's children.
func (n *Node) Expanded(threshold modlog.Level) bool {
	return !n.IsLeaf() && n.FoldLevel <= threshold
}

// Walk visits n and its descendants in pre-order. Returning false from fn
// skips the node's children.
func (n *Node) Walk(fn func(node *Node, depth int) bool) {
	n.walk(fn, 0)
}

func (n *Node) walk(fn func(*Node, int) bool, depth int) {
	if !fn(n, depth) {
		return
	}
	for _, c := range n.Children {
		c.walk(fn, depth+1)
	}
}

// Count returns the number of entries below n, excluding n itself.
func (n *Node) Count() int {
	total := 0
	for _, c := range n.Children {
		if c.Kind == KindEntry {
			total++
		}
		total += c.Count()
	}
	return total
}

// Flatten returns the entries of the tree in pre-order with fold points
// elided. For a tree produced by Build this is the input sequence.
func (n *Node) Flatten() []modlog.Entry {
	var out []modlog.Entry
	n.Walk(func(node *Node, _ int) bool {
		if node.Kind == KindEntry {
			out = append(out, *node.Entry)
		}
		return true
	})
	return out
}

// Build folds entries into a tree. entries is not modified.
func Build(entries []modlog.Entry) *Node {
	root := &Node{Kind: KindRoot, Level: rootLevel}
	b := builder{entries: entries}
	b.fill(root, rootLevel, false)
	setFoldLevels(root)
	return root
}

// Join places the children of several trees under one root. Ownership never
// crosses from one tree into the next.
func Join(trees ...*Node) *Node {
	root := &Node{Kind: KindRoot, Level: rootLevel}
	for _, t := range trees {
		root.Children = append(root.Children, t.Children...)
	}
	setFoldLevels(root)
	return root
}

type builder struct {
	entries []modlog.Entry
	pos     int
}

// fill attaches to parent every entry it owns, advancing the cursor. bound
// is the ownership limit: the first non-frame entry at a level <= bound ends
// the range. inFold is true below a fold point, where no further fold points
// are created. Frames attach to parent as leaves, so inside a fold window
// they land under the fold point.
func (b *builder) fill(parent *Node, bound modlog.Level, inFold bool) {
	for b.pos < len(b.entries) {
		e := &b.entries[b.pos]
		if e.IsFrame() {
			parent.Children = append(parent.Children, &Node{Kind: KindEntry, Entry: e, Level: e.Level})
			b.pos++
			continue
		}
		if e.Level <= bound {
			return
		}
		b.pos++
		child := &Node{Kind: KindEntry, Entry: e, Level: e.Level}
		parent.Children = append(parent.Children, child)

		if !inFold {
			if lowest, ok := b.foldWindow(child.Level); ok {
				// The fold point takes over the child's whole range.
				fp := &Node{Kind: KindFoldPoint, Level: lowest}
				child.Children = append(child.Children, fp)
				b.fill(fp, child.Level, true)
				continue
			}
		}
		b.fill(child, child.Level, inFold)
	}
}

// foldWindow scans the entries owned by a node at level, starting at the
// cursor. It reports the most severe level in the window when the window
// holds more than one distinct non-frame level.
func (b *builder) foldWindow(level modlog.Level) (modlog.Level, bool) {
	seen := make(map[modlog.Level]struct{})
	lowest := modlog.Level(-1)
	for i := b.pos; i < len(b.entries); i++ {
		e := b.entries[i]
		if e.IsFrame() {
			continue
		}
		if e.Level <= level {
			break
		}
		seen[e.Level] = struct{}{}
		if lowest < 0 || e.Level < lowest {
			lowest = e.Level
		}
	}
	return lowest, len(seen) > 1
}

func setFoldLevels(n *Node) {
	n.FoldLevel = n.Level
	first := true
	for _, c := range n.Children {
		setFoldLevels(c)
		if first || c.Level < n.FoldLevel {
			n.FoldLevel = c.Level
			first = false
		}
	}
}
