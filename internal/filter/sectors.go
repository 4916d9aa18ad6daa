package filter

import (
	"fmt"
	"slices"
)

// TriState is the derived state of a parent checkbox.
type TriState int

const (
	Unchecked TriState = iota
	Checked
	Indeterminate
)

// SectorGroup is one parent sector and the sub-sectors that belong to it.
type SectorGroup struct {
	Name       string
	SubSectors []string
}

type sectorNode struct {
	name     string
	children []string
	checked  map[string]bool
	// self is used only for parents without sub-sectors.
	self bool
}

// SectorTree is the two-level sector hierarchy. A parent's state is always
// derived from its children; only childless parents carry their own flag.
type SectorTree struct {
	nodes []*sectorNode
	index map[string]*sectorNode
}

// NewSectorTree builds a tree from groups in the given order. Every
// sub-sector must belong to exactly one parent.
func NewSectorTree(groups []SectorGroup) (*SectorTree, error) {
	t := &SectorTree{index: make(map[string]*sectorNode, len(groups))}
	owner := make(map[string]string)
	for _, g := range groups {
		if g.Name == "" {
			return nil, fmt.Errorf("sector with empty name")
		}
		if _, dup := t.index[g.Name]; dup {
			return nil, fmt.Errorf("duplicate sector %q", g.Name)
		}
		n := &sectorNode{name: g.Name, checked: make(map[string]bool, len(g.SubSectors))}
		for _, sub := range g.SubSectors {
			if prev, ok := owner[sub]; ok {
				return nil, fmt.Errorf("sub-sector %q listed under both %q and %q", sub, prev, g.Name)
			}
			owner[sub] = g.Name
			n.children = append(n.children, sub)
		}
		t.nodes = append(t.nodes, n)
		t.index[g.Name] = n
	}
	return t, nil
}

// Parents returns the parent sector names in configuration order.
func (t *SectorTree) Parents() []string {
	out := make([]string, len(t.nodes))
	for i, n := range t.nodes {
		out[i] = n.name
	}
	return out
}

// Children returns the sub-sectors of parent, or nil if parent is unknown.
func (t *SectorTree) Children(parent string) []string {
	if n, ok := t.index[parent]; ok {
		return slices.Clone(n.children)
	}
	return nil
}

// SetParent checks or unchecks parent together with all of its children.
func (t *SectorTree) SetParent(parent string, checked bool) {
	n, ok := t.index[parent]
	if !ok {
		return
	}
	n.self = checked
	for _, c := range n.children {
		n.checked[c] = checked
	}
}

// ToggleParent checks every child unless the parent is already fully
// checked, in which case it clears them.
func (t *SectorTree) ToggleParent(parent string) {
	t.SetParent(parent, t.State(parent) != Checked)
}

// SetChild sets one sub-sector. Unknown names are ignored.
func (t *SectorTree) SetChild(parent, child string, checked bool) {
	n, ok := t.index[parent]
	if !ok || !slices.Contains(n.children, child) {
		return
	}
	n.checked[child] = checked
}

// ToggleChild flips one sub-sector.
func (t *SectorTree) ToggleChild(parent, child string) {
	t.SetChild(parent, child, !t.ChildChecked(parent, child))
}

// ChildChecked reports whether child under parent is checked.
func (t *SectorTree) ChildChecked(parent, child string) bool {
	n, ok := t.index[parent]
	return ok && n.checked[child]
}

// State derives the tri-state of parent from its children: all checked is
// Checked, none is Unchecked, anything in between is Indeterminate.
func (t *SectorTree) State(parent string) TriState {
	n, ok := t.index[parent]
	if !ok {
		return Unchecked
	}
	if len(n.children) == 0 {
		if n.self {
			return Checked
		}
		return Unchecked
	}
	count := 0
	for _, c := range n.children {
		if n.checked[c] {
			count++
		}
	}
	switch count {
	case 0:
		return Unchecked
	case len(n.children):
		return Checked
	default:
		return Indeterminate
	}
}

// Selected returns the fully checked parents and every checked sub-sector,
// both in configuration order.
func (t *SectorTree) Selected() (sectors, subSectors []string) {
	for _, n := range t.nodes {
		if t.State(n.name) == Checked {
			sectors = append(sectors, n.name)
		}
		for _, c := range n.children {
			if n.checked[c] {
				subSectors = append(subSectors, c)
			}
		}
	}
	return sectors, subSectors
}

// Reset unchecks everything.
func (t *SectorTree) Reset() {
	for _, n := range t.nodes {
		t.SetParent(n.name, false)
	}
}

// ---------------------------------------------------------------------------
// Checklist
// ---------------------------------------------------------------------------

// Checklist is a flat, ordered set of checkable options such as the target
// accounts. Nothing checked means "all".
type Checklist struct {
	items   []string
	checked map[string]bool
}

// NewChecklist creates a checklist over items in the given order.
func NewChecklist(items []string) *Checklist {
	return &Checklist{items: slices.Clone(items), checked: make(map[string]bool, len(items))}
}

// Items returns every option in order.
func (c *Checklist) Items() []string { return slices.Clone(c.items) }

// Toggle flips item. Unknown items are ignored.
func (c *Checklist) Toggle(item string) {
	if slices.Contains(c.items, item) {
		c.checked[item] = !c.checked[item]
	}
}

// IsChecked reports whether item is checked.
func (c *Checklist) IsChecked(item string) bool { return c.checked[item] }

// Checked returns the checked items in order.
func (c *Checklist) Checked() []string {
	var out []string
	for _, it := range c.items {
		if c.checked[it] {
			out = append(out, it)
		}
	}
	return out
}

// Reset unchecks everything.
func (c *Checklist) Reset() {
	clear(c.checked)
}
