package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Iron-Ham/foldlog/internal/dump"
	"github.com/Iron-Ham/foldlog/internal/fold"
	"github.com/Iron-Ham/foldlog/internal/modlog"
	"github.com/Iron-Ham/foldlog/internal/tui/styles"
	"github.com/Iron-Ham/foldlog/internal/util"
)

// Chrome lines around the tree: header, status and help bar.
const chromeHeight = 4

// DumpDetectedMsg reports that a session file was created or grew.
type DumpDetectedMsg struct {
	Path string
}

// Options configures a Model.
type Options struct {
	// Collated starts in the collated view instead of the module view.
	Collated bool
	// Threshold is the initial fold threshold.
	Threshold modlog.Level
	// Follow switches to newer session files as they are detected.
	Follow bool
	// Styles defaults to the default theme.
	Styles *styles.Styles
}

// Model is the dump viewer: one session file, one dump at a time, shown as
// a fold tree.
type Model struct {
	path     string
	dumps    []*dump.Data
	problems []error
	current  int

	collated  bool
	threshold modlog.Level
	follow    bool
	styles    *styles.Styles

	input     textinput.Model
	filtering bool
	filter     dump.Filter
	filterText string
	filterErr  error

	tree      *fold.Node
	overrides Overrides
	rows      []Row
	cursor    int
	offset    int

	width  int
	height int
}

// NewModel creates a viewer for the session file at path, showing its
// newest dump.
func NewModel(path string, opts Options) *Model {
	st := opts.Styles
	if st == nil {
		st = styles.ForTheme(string(styles.ThemeDefault))
	}
	ti := textinput.New()
	ti.Prompt = "/"
	ti.Placeholder = "text or module:glob"
	ti.CharLimit = 200

	m := &Model{
		path:      path,
		collated:  opts.Collated,
		threshold: opts.Threshold,
		follow:    opts.Follow,
		styles:    st,
		input:     ti,
	}
	m.load()
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd { return nil }

// load reads the session file and selects its newest dump.
func (m *Model) load() {
	m.dumps, m.problems = dump.LoadDumps(m.path, nil)
	m.current = len(m.dumps) - 1
	m.rebuild()
	m.cursor = 0
	m.offset = 0
}

// rebuild folds the current dump for the current view and filter. An
// invalid filter is reported and the dump is shown unfiltered.
func (m *Model) rebuild() {
	m.overrides = Overrides{}
	m.filterErr = nil
	d := m.Current()
	if d == nil {
		m.tree = &fold.Node{Kind: fold.KindRoot, Level: -1}
		m.refresh()
		return
	}
	entries := d.Entries(m.collated)
	if !m.filter.IsEmpty() {
		filtered, err := dump.FilterEntries(entries, m.filter)
		if err != nil {
			m.filterErr = err
		} else {
			entries = filtered
		}
	}
	m.tree = dump.BuildTree(entries, m.collated)
	m.refresh()
}

// refresh recomputes the visible rows and keeps the cursor on one.
func (m *Model) refresh() {
	m.rows = VisibleRows(m.tree, m.threshold, m.overrides)
	m.clampCursor()
}

func (m *Model) clampCursor() {
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	body := m.bodyHeight()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if body > 0 && m.cursor >= m.offset+body {
		m.offset = m.cursor - body + 1
	}
}

func (m *Model) bodyHeight() int {
	if m.height == 0 {
		return 0 // unknown: show everything
	}
	return max(1, m.height-chromeHeight)
}

// Current returns the dump on screen, or nil when the file has none.
func (m *Model) Current() *dump.Data {
	if m.current < 0 || m.current >= len(m.dumps) {
		return nil
	}
	return m.dumps[m.current]
}

// Path returns the session file being viewed.
func (m *Model) Path() string { return m.path }

// Rows returns the visible rows.
func (m *Model) Rows() []Row { return m.rows }

// Cursor returns the selected row index.
func (m *Model) Cursor() int { return m.cursor }

// Threshold returns the fold threshold.
func (m *Model) Threshold() modlog.Level { return m.threshold }

// Filter returns the filter applied to the current dump.
func (m *Model) Filter() dump.Filter { return m.filter }

// Filtering reports whether the filter prompt has focus.
func (m *Model) Filtering() bool { return m.filtering }

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.clampCursor()
		return m, nil

	case DumpDetectedMsg:
		m.handleDetected(msg.Path)
		return m, nil

	case tea.KeyMsg:
		if m.filtering {
			return m.handleFilterKey(msg)
		}
		return m.handleKey(msg)
	}
	if m.filtering {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

// handleFilterKey feeds keys to the filter prompt until it is applied with
// enter or dismissed with esc.
func (m *Model) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC:
		return m, tea.Quit
	case tea.KeyEsc:
		m.filtering = false
		m.input.Blur()
		return m, nil
	case tea.KeyEnter:
		m.filtering = false
		m.input.Blur()
		m.filterText = strings.Join(strings.Fields(m.input.Value()), " ")
		m.filter = ParseFilter(m.filterText)
		m.rebuild()
		m.cursor = 0
		m.clampCursor()
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handleDetected reloads when the viewed file grew, or switches to a newer
// session file in follow mode. Session file names sort by creation time.
func (m *Model) handleDetected(path string) {
	switch {
	case path == m.path:
		m.load()
	case m.follow && filepath.Base(path) > filepath.Base(m.path):
		m.path = path
		m.load()
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit

	case "/":
		m.filtering = true
		m.input.CursorEnd()
		return m, m.input.Focus()

	case "up", "k":
		m.cursor--
	case "down", "j":
		m.cursor++
	case "pgup":
		m.cursor -= max(1, m.bodyHeight())
	case "pgdown":
		m.cursor += max(1, m.bodyHeight())
	case "home", "g":
		m.cursor = 0
	case "end", "G":
		m.cursor = len(m.rows) - 1

	case "enter", " ":
		m.toggle()
	case "right", "l":
		m.setExpanded(true)
	case "left", "h":
		m.collapseOrParent()

	case "+", "=":
		if m.threshold < modlog.LevelFrameOnly {
			m.threshold++
			m.overrides = Overrides{}
			m.refresh()
		}
	case "-", "_":
		if m.threshold > modlog.LevelSilent {
			m.threshold--
			m.overrides = Overrides{}
			m.refresh()
		}

	case "c":
		m.collated = !m.collated
		m.rebuild()
		m.cursor = 0
	case "n", "]":
		if m.current < len(m.dumps)-1 {
			m.current++
			m.rebuild()
			m.cursor = 0
		}
	case "p", "[":
		if m.current > 0 {
			m.current--
			m.rebuild()
			m.cursor = 0
		}
	case "r":
		m.load()
	}

	m.clampCursor()
	return m, nil
}

func (m *Model) selected() (Row, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return Row{}, false
	}
	return m.rows[m.cursor], true
}

func (m *Model) toggle() {
	row, ok := m.selected()
	if !ok || row.Node.IsLeaf() {
		return
	}
	m.overrides[row.Node] = !row.Expanded
	m.refresh()
}

func (m *Model) setExpanded(expanded bool) {
	row, ok := m.selected()
	if !ok || row.Node.IsLeaf() {
		return
	}
	m.overrides[row.Node] = expanded
	m.refresh()
}

// collapseOrParent collapses the selected node, or moves to its parent when
// it is already collapsed.
func (m *Model) collapseOrParent() {
	row, ok := m.selected()
	if !ok {
		return
	}
	if row.Expanded {
		m.setExpanded(false)
		return
	}
	for i := m.cursor - 1; i >= 0; i-- {
		if m.rows[i].Depth < row.Depth {
			m.cursor = i
			return
		}
	}
}

// View implements tea.Model.
func (m *Model) View() string {
	var sb strings.Builder
	st := m.styles

	sb.WriteString(st.Title.Render(m.header()))
	sb.WriteByte('\n')

	d := m.Current()
	if d == nil {
		sb.WriteString(st.Muted.Render(fmt.Sprintf("no dumps in %s", m.path)))
		sb.WriteByte('\n')
	} else {
		end := len(m.rows)
		if body := m.bodyHeight(); body > 0 {
			end = min(end, m.offset+body)
		}
		for i := m.offset; i < end; i++ {
			line := m.clip(RenderRow(m.rows[i], d.ModuleWidth, st))
			if i == m.cursor {
				line = st.Selected.Render(line)
			}
			sb.WriteString(line)
			sb.WriteByte('\n')
		}
	}

	sb.WriteString(st.StatusBar.Render(m.clip(m.status())))
	sb.WriteByte('\n')
	if m.filtering {
		sb.WriteString(m.input.View())
	} else {
		sb.WriteString(m.helpBar())
	}
	return sb.String()
}

// clip truncates s to the window width once the width is known.
func (m *Model) clip(s string) string {
	if m.width <= 0 {
		return s
	}
	return util.TruncateANSI(s, m.width)
}

func (m *Model) header() string {
	d := m.Current()
	if d == nil {
		return "foldlog · " + filepath.Base(m.path)
	}
	view := "by module"
	if m.collated {
		view = "collated"
	}
	return fmt.Sprintf("foldlog · %s · dump %d/%d · %s · %s · %s",
		filepath.Base(m.path), m.current+1, len(m.dumps), d.Reason,
		d.Timestamp.Format("2006-01-02 15:04:05.000"), view)
}

func (m *Model) status() string {
	parts := []string{fmt.Sprintf("fold ≤ %s", m.threshold)}
	if d := m.Current(); d != nil {
		parts = append(parts, fmt.Sprintf("%d entries", d.EntryCount()))
	}
	if row, ok := m.selected(); ok && row.Node.Entry != nil && row.Node.Entry.Frame != nil {
		if details := util.OneLine(row.Node.Entry.Frame.Details, " | "); details != "" {
			parts = append(parts, "frame: "+details)
		}
	}
	if !m.filter.IsEmpty() {
		parts = append(parts, fmt.Sprintf("filter: %q", m.filterText))
	}
	if m.filterErr != nil {
		parts = append(parts, m.styles.ErrorMsg.Render(m.filterErr.Error()))
	}
	if len(m.problems) > 0 {
		parts = append(parts, m.styles.ErrorMsg.Render(fmt.Sprintf("%d load problems", len(m.problems))))
	}
	return strings.Join(parts, " · ")
}

func (m *Model) helpBar() string {
	keys := []struct{ key, desc string }{
		{"↑↓", "move"},
		{"enter", "fold"},
		{"+/-", "fold level"},
		{"/", "filter"},
		{"c", "collate"},
		{"[ ]", "dump"},
		{"r", "reload"},
		{"q", "quit"},
	}
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = m.styles.HelpKey.Render(k.key) + " " + m.styles.HelpBar.Render(k.desc)
	}
	return strings.Join(parts, "  ")
}
