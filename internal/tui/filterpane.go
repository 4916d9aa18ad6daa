package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"tickerfeed/internal/filter"
)

type paneRowKind int

const (
	rowAccount paneRowKind = iota
	rowSector
	rowSubSector
)

type paneRow struct {
	kind   paneRowKind
	name   string
	parent string
}

// filterPane lists the account checklist and the sector tree as one
// scrollable column of checkable rows.
type filterPane struct {
	rows   []paneRow
	cursor int
}

func newFilterPane(form *filter.Form) filterPane {
	var rows []paneRow
	for _, a := range form.Accounts.Items() {
		rows = append(rows, paneRow{kind: rowAccount, name: a})
	}
	for _, p := range form.Sectors.Parents() {
		rows = append(rows, paneRow{kind: rowSector, name: p})
		for _, c := range form.Sectors.Children(p) {
			rows = append(rows, paneRow{kind: rowSubSector, name: c, parent: p})
		}
	}
	return filterPane{rows: rows}
}

// Len returns the number of checkable rows.
func (p filterPane) Len() int { return len(p.rows) }

// toggle flips the row under the cursor on form.
func (p filterPane) toggle(form *filter.Form) {
	if p.cursor < 0 || p.cursor >= len(p.rows) {
		return
	}
	r := p.rows[p.cursor]
	switch r.kind {
	case rowAccount:
		form.Accounts.Toggle(r.name)
	case rowSector:
		form.Sectors.ToggleParent(r.name)
	case rowSubSector:
		form.Sectors.ToggleChild(r.parent, r.name)
	}
}

func checkbox(checked bool) string {
	if checked {
		return "[x]"
	}
	return "[ ]"
}

func triBox(s filter.TriState) string {
	switch s {
	case filter.Checked:
		return "[x]"
	case filter.Indeterminate:
		return "[-]"
	default:
		return "[ ]"
	}
}

// render draws the pane, keeping the cursor row inside height lines.
func (p filterPane) render(form *filter.Form, width, height int) string {
	var lines []string
	lines = append(lines, paneTitleStyle.Render(padOrTrunc(" Filters  space toggle  esc close ", width)))
	cursorLine := 0
	section := ""
	for i, r := range p.rows {
		var s string
		switch r.kind {
		case rowAccount:
			if section != "accounts" {
				section = "accounts"
				lines = append(lines, dimStyle.Render("Accounts (none checked = all)"))
			}
			s = "  " + checkbox(form.Accounts.IsChecked(r.name)) + " " + r.name
		case rowSector:
			if section != "sectors" {
				section = "sectors"
				lines = append(lines, dimStyle.Render("Sectors"))
			}
			s = "  " + triBox(form.Sectors.State(r.name)) + " " + r.name
		case rowSubSector:
			s = "      " + checkbox(form.Sectors.ChildChecked(r.parent, r.name)) + " " + r.name
		}
		s = padOrTrunc(s, width)
		if i == p.cursor {
			cursorLine = len(lines)
			s = paneRowHlStyle.Render(s)
		}
		lines = append(lines, s)
	}

	// Scroll so the cursor row stays on screen below the title.
	start := 0
	if height > 1 && cursorLine >= height {
		start = cursorLine - height + 1
	}
	if start > 0 {
		lines = append(lines[:1], lines[start+1:]...)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	return strings.Join(lines, "\n")
}

func (m *Model) handlePaneKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "ctrl+c":
		return tea.Quit
	case "esc", "f", "q":
		m.mode = modeFeed
	case "up", "k":
		if m.pane.cursor > 0 {
			m.pane.cursor--
		}
	case "down", "j":
		if m.pane.cursor < m.pane.Len()-1 {
			m.pane.cursor++
		}
	case " ", "enter", "x":
		pane := m.pane
		return lift(m.ctrl.EditFilter(pane.toggle))
	}
	return nil
}
