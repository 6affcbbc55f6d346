package cli

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/dagedit/pkg/dag"
	"github.com/matzehuels/dagedit/pkg/editor"
	apperr "github.com/matzehuels/dagedit/pkg/errors"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	listPendingStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorYellow)
)

// =============================================================================
// EditModel - Interactive hierarchy editor
// =============================================================================

type editMode int

const (
	modeBrowse editMode = iota
	modePickParent
	modePickReparent
	modeNewChild
	modeLabel
)

var modePrompts = map[editMode]string{
	modePickParent:   "choose the new parent of %s, ⏎ to link",
	modePickReparent: "choose where to move %s, ⏎ to move",
	modeNewChild:     "id of the new child of %s (empty = random): ",
	modeLabel:        "label of %s: ",
}

// treeRow is one visible line of the tree.
type treeRow struct {
	ID      string
	Label   string
	Depth   int
	Extra   []string // parents other than the one the row is drawn under
	HasKids bool
}

// EditModel is the bubbletea model for the interactive editor.
type EditModel struct {
	ctx  context.Context
	ed   *editor.Editor
	name string
	save func() error

	rows    []treeRow
	Cursor  int
	Offset  int
	Height  int
	mode    editMode
	pending string // node the current pick or input mode acts on
	input   string

	status    string
	statusErr bool
	savedAt   uint64     // clock at the last save
	saved     []dag.Node // document as last saved
	confirmQ  bool
	Quit      bool
}

// NewEditModel creates an editor model over ed. save persists the document
// and is called on "s".
func NewEditModel(ctx context.Context, ed *editor.Editor, name string, save func() error) EditModel {
	m := EditModel{ctx: ctx, ed: ed, name: name, save: save, Height: 20}
	m.markSaved()
	m.refresh("")
	return m
}

func (m EditModel) Init() tea.Cmd {
	return nil
}

func (m EditModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-7, 5)
		m.scroll()
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.Quit = true
			return m, tea.Quit
		}
		switch m.mode {
		case modeNewChild, modeLabel:
			return m.updateInput(msg), nil
		case modePickParent, modePickReparent:
			return m.updatePick(msg), nil
		}
		return m.updateBrowse(msg)
	}
	return m, nil
}

func (m EditModel) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key != "q" {
		m.confirmQ = false
	}
	cur, ok := m.current()

	switch key {
	case "q", "esc":
		if m.Unsaved() && !m.confirmQ {
			m.confirmQ = true
			m.setStatus("unsaved changes: press q again to quit, s to save", true)
			return m, nil
		}
		m.Quit = true
		return m, tea.Quit
	case "up", "k":
		m.move(-1)
	case "down", "j":
		m.move(1)
	case "s":
		if err := m.save(); err != nil {
			m.setStatus(err.Error(), true)
			return m, nil
		}
		m.markSaved()
		m.setStatus("saved "+m.name, false)
	case "u":
		m.run(func() error {
			_, err := m.ed.Undo(m.ctx)
			return err
		}, "undone", cur.ID)
	case "r", "ctrl+r":
		m.run(func() error {
			_, err := m.ed.Redo(m.ctx)
			return err
		}, "redone", cur.ID)
	case "A":
		m.addNode(nil, "")
	}
	if !ok {
		return m, nil
	}

	switch key {
	case " ", "enter":
		if m.ed.IsCollapsed(cur.ID) {
			m.run(func() error { return m.ed.Expand(m.ctx, cur.ID) }, "expanded "+cur.ID, cur.ID)
		} else {
			m.run(func() error { return m.ed.Collapse(m.ctx, cur.ID) }, "collapsed "+cur.ID, cur.ID)
		}
	case "a":
		m.enter(modeNewChild, cur.ID, "")
	case "l":
		m.enter(modeLabel, cur.ID, cur.Label)
	case "p":
		m.enter(modePickParent, cur.ID, "")
	case "m":
		m.enter(modePickReparent, cur.ID, "")
	case "x":
		m.run(func() error {
			_, err := m.ed.Detach(m.ctx, cur.ID)
			return err
		}, "detached "+cur.ID, cur.ID)
	case "d":
		m.run(func() error {
			_, err := m.ed.DeleteNode(m.ctx, cur.ID)
			return err
		}, "deleted "+cur.ID, "")
	}
	return m, nil
}

func (m EditModel) updatePick(msg tea.KeyMsg) EditModel {
	switch msg.String() {
	case "esc":
		m.mode = modeBrowse
		m.setStatus("cancelled", false)
	case "up", "k":
		m.move(-1)
	case "down", "j":
		m.move(1)
	case "enter", " ":
		target, ok := m.current()
		if !ok {
			return m
		}
		mode, child := m.mode, m.pending
		m.mode = modeBrowse
		m.run(func() error {
			return m.link(mode, child, target.ID)
		}, fmt.Sprintf("%s %s %s", child, iconArrow, target.ID), child)
	}
	return m
}

func (m EditModel) updateInput(msg tea.KeyMsg) EditModel {
	switch msg.Type {
	case tea.KeyEsc:
		m.mode = modeBrowse
		m.setStatus("cancelled", false)
	case tea.KeyBackspace:
		if r := []rune(m.input); len(r) > 0 {
			m.input = string(r[:len(r)-1])
		}
	case tea.KeySpace:
		m.input += " "
	case tea.KeyRunes:
		m.input += string(msg.Runes)
	case tea.KeyEnter:
		mode, id, text := m.mode, m.pending, strings.TrimSpace(m.input)
		m.mode = modeBrowse
		if mode == modeLabel {
			m.run(func() error {
				n, _ := m.ed.Node(id)
				n.Label = text
				_, err := m.ed.UpdateNode(m.ctx, n)
				return err
			}, "relabelled "+id, id)
			return m
		}
		m.addNode([]string{id}, text)
	}
	return m
}

// addNode adds a node under parents and selects it. An empty id is
// replaced by a random one.
func (m *EditModel) addNode(parents []string, id string) {
	var added string
	m.run(func() error {
		u, err := m.ed.AddNode(m.ctx, dag.Node{ID: id, ParentIDs: parents})
		if err == nil {
			added = u.NodeIDs[0]
		}
		return err
	}, "added node", "")
	if added != "" {
		m.setStatus("added "+added, false)
		m.selectID(added)
	}
}

// link runs the structural edit of a pick mode.
func (m *EditModel) link(mode editMode, child, target string) error {
	var err error
	if mode == modePickReparent {
		_, err = m.ed.Reparent(m.ctx, child, target)
	} else {
		_, err = m.ed.AddParent(m.ctx, child, target)
	}
	return err
}

// =============================================================================
// State Helpers
// =============================================================================

func (m *EditModel) enter(mode editMode, id, input string) {
	m.mode = mode
	m.pending = id
	m.input = input
	m.setStatus("", false)
}

// run applies an edit, refreshes the tree and reports the outcome. The
// cursor stays on keep when it is still visible. History underflow is
// reported but is not an error.
func (m *EditModel) run(edit func() error, done, keep string) {
	err := edit()
	switch {
	case err == nil:
		m.refresh(keep)
		m.setStatus(done, false)
	case apperr.IsHistoryUnderflow(err):
		m.setStatus(apperr.UserMessage(err), false)
	default:
		m.refresh(keep)
		m.setStatus(fmt.Sprintf("%s: %s", apperr.GetCode(err), apperr.UserMessage(err)), true)
	}
}

// Unsaved reports whether the document differs from the one loaded or last
// saved. Folding does not count, and undoing back to the saved state clears
// it.
func (m EditModel) Unsaved() bool {
	if m.ed.Clock() == m.savedAt {
		return false
	}
	return !reflect.DeepEqual(m.ed.Nodes(), m.saved)
}

func (m *EditModel) markSaved() {
	m.savedAt = m.ed.Clock()
	m.saved = m.ed.Nodes()
}

func (m *EditModel) setStatus(s string, isErr bool) {
	m.status, m.statusErr = s, isErr
}

func (m *EditModel) current() (treeRow, bool) {
	if m.Cursor < 0 || m.Cursor >= len(m.rows) {
		return treeRow{}, false
	}
	return m.rows[m.Cursor], true
}

func (m *EditModel) move(delta int) {
	m.Cursor = max(0, min(len(m.rows)-1, m.Cursor+delta))
	m.scroll()
}

func (m *EditModel) scroll() {
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
	m.Offset = max(0, m.Offset)
}

// selectID moves the cursor to id if it is visible.
func (m *EditModel) selectID(id string) bool {
	for i, r := range m.rows {
		if r.ID == id {
			m.Cursor = i
			m.scroll()
			return true
		}
	}
	return false
}

// refresh rebuilds the visible rows and keeps the cursor on keep when it is
// still visible.
func (m *EditModel) refresh(keep string) {
	m.rows = buildRows(m.ed)
	if keep == "" || !m.selectID(keep) {
		m.Cursor = max(0, min(len(m.rows)-1, m.Cursor))
		m.scroll()
	}
}

// buildRows lays the document out as an indented tree. A node with several
// parents is drawn once, under its first parent; nodes hidden by a collapsed
// ancestor are skipped. Nodes unreachable from a root (only on a permitted
// cycle) are appended at depth 0.
func buildRows(ed *editor.Editor) []treeRow {
	nodes := ed.Nodes()
	g := dag.NewGuard(nodes)
	labels := make(map[string]string, len(nodes))
	for _, n := range nodes {
		labels[n.ID] = n.DisplayLabel()
	}

	var rows []treeRow
	drawn := make(map[string]bool, len(nodes))
	var walk func(id string, depth int)
	walk = func(id string, depth int) {
		if drawn[id] {
			return
		}
		drawn[id] = true
		parents := g.Parents(id)
		var extra []string
		if len(parents) > 1 {
			extra = parents[1:]
		}
		rows = append(rows, treeRow{
			ID:      id,
			Label:   labels[id],
			Depth:   depth,
			Extra:   extra,
			HasKids: len(g.Children(id)) > 0,
		})
		if ed.IsCollapsed(id) {
			return
		}
		for _, c := range g.Children(id) {
			if ps := g.Parents(c); len(ps) > 0 && ps[0] == id && !ed.IsHidden(c) {
				walk(c, depth+1)
			}
		}
	}

	for _, id := range g.Roots() {
		walk(id, 0)
	}
	for _, n := range nodes {
		if !drawn[n.ID] && !ed.IsHidden(n.ID) {
			walk(n.ID, 0)
		}
	}
	return rows
}

// =============================================================================
// View
// =============================================================================

func (m EditModel) View() string {
	var b strings.Builder

	title := "dagedit " + m.name
	if m.Unsaved() {
		title += " *"
	}
	b.WriteString(StyleTitle.Render(title))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ move  ␣ fold  a child  A root  l label  p +parent  m move  x detach  d delete  u/r undo/redo  s save  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.rows))
	for i := m.Offset; i < end; i++ {
		b.WriteString(m.renderRow(i))
		b.WriteString("\n")
	}
	if len(m.rows) == 0 {
		b.WriteString(listDimStyle.Render("  empty document, press A to add a root"))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.footer())
	return b.String()
}

func (m EditModel) renderRow(i int) string {
	r := m.rows[i]
	cursor := "  "
	if i == m.Cursor {
		cursor = "▸ "
	}

	fold := " "
	switch {
	case m.ed.IsCollapsed(r.ID):
		fold = styleCollapsed.Render(iconCollapsed)
	case r.HasKids:
		fold = listDimStyle.Render(iconExpanded)
	}

	line := cursor + strings.Repeat("  ", r.Depth) + fold + " "
	switch {
	case r.ID == m.pending && m.mode != modeBrowse:
		line += listPendingStyle.Render(r.ID)
	case i == m.Cursor:
		line += listSelectedStyle.Render(r.ID)
	default:
		line += listNormalStyle.Render(r.ID)
	}
	if r.Label != r.ID {
		line += " " + listDimStyle.Render("("+r.Label+")")
	}
	if len(r.Extra) > 0 {
		line += " " + styleCommand.Render(iconArrow+" "+strings.Join(r.Extra, ", "))
	}
	return line
}

func (m EditModel) footer() string {
	var b strings.Builder
	if prompt, ok := modePrompts[m.mode]; ok {
		b.WriteString(StyleHighlight.Render(fmt.Sprintf(prompt, m.pending)))
		if m.mode == modeNewChild || m.mode == modeLabel {
			b.WriteString(StyleValue.Render(m.input + "█"))
		}
		b.WriteString("\n")
	}

	if m.status != "" {
		if m.statusErr {
			b.WriteString(styleIconError.Render(iconError) + " " + m.status)
		} else {
			b.WriteString(styleIconSuccess.Render(iconSuccess) + " " + StyleDim.Render(m.status))
		}
		b.WriteString("\n")
	}

	undo, redo := m.ed.HistoryLen()
	info := fmt.Sprintf("  [%d/%d]  %d nodes  %d hidden  undo %d  redo %d",
		min(m.Cursor+1, len(m.rows)), len(m.rows), m.ed.Len(), len(m.ed.Hidden()), undo, redo)
	if r, ok := m.current(); ok {
		if p, ok := m.ed.Position(r.ID); ok {
			info += fmt.Sprintf("  @ %.0f,%.0f", p.X, p.Y)
		}
	}
	b.WriteString(listDimStyle.Render(info))
	return b.String()
}
