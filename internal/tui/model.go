// Package tui is the terminal host for the post feed: a bubbletea program
// that renders the feed controller's state and turns key presses and mouse
// clicks into controller gestures.
package tui

import (
	"log/slog"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"tickerfeed/internal/domain"
	"tickerfeed/internal/feed"
	"tickerfeed/internal/filter"
)

// DefaultPrefetchMargin is how many items from the tail the cursor may get
// before the next page is requested.
const DefaultPrefetchMargin = 3

// Fixed chrome around the viewport.
const (
	headerH = 3 // title, filter summary, tag bar
	footerH = 2 // status/input line, key help
)

type mode int

const (
	modeFeed mode = iota
	modeInput
	modeTags
	modeFilters
)

// inputField is the filter a text input edits.
type inputField int

const (
	fieldKeyword inputField = iota
	fieldTicker
	fieldLikes
	fieldRetweets
)

// Options configure a Model.
type Options struct {
	PrefetchMargin int
	Logger         *slog.Logger
}

// Model is the bubbletea model of the feed client.
type Model struct {
	ctrl   *feed.Controller
	logger *slog.Logger
	margin int

	width, height int
	ready         bool
	viewport      viewport.Model

	mode     mode
	field    inputField
	input    textinput.Model
	cursorID domain.PostID
	tagIdx   int
	pane     filterPane

	// pageHeld stops prefetch after a failed page until the user acts.
	pageHeld bool

	// lineItem maps each content line to the item drawn there (-1 for
	// spacing); itemLine holds the first line of each item.
	lineItem []int
	itemLine []int
}

// New creates a Model driving ctrl.
func New(ctrl *feed.Controller, opts Options) Model {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.PrefetchMargin <= 0 {
		opts.PrefetchMargin = DefaultPrefetchMargin
	}
	ti := textinput.New()
	ti.CharLimit = 128
	return Model{
		ctrl:   ctrl,
		logger: opts.Logger,
		margin: opts.PrefetchMargin,
		input:  ti,
		pane:   newFilterPane(ctrl.Form()),
	}
}

// lift adapts a controller command to bubbletea.
func lift(c feed.Cmd) tea.Cmd {
	if c == nil {
		return nil
	}
	return func() tea.Msg { return c() }
}

// Init issues the first full query.
func (m Model) Init() tea.Cmd {
	return lift(m.ctrl.Refresh())
}

// Update handles one message.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.pageHeld = false
		m.width = msg.Width
		m.height = msg.Height
		vpHeight := m.height - headerH - footerH
		if vpHeight < 1 {
			vpHeight = 1
		}
		if !m.ready {
			m.viewport = viewport.New(m.width, vpHeight)
			m.viewport.MouseWheelEnabled = true
			m.viewport.KeyMap = viewport.KeyMap{
				PageDown:     key.NewBinding(key.WithKeys("pgdown", "ctrl+f")),
				PageUp:       key.NewBinding(key.WithKeys("pgup", "ctrl+b")),
				HalfPageDown: key.NewBinding(key.WithKeys("ctrl+d")),
				HalfPageUp:   key.NewBinding(key.WithKeys("ctrl+u")),
			}
			m.ready = true
		} else {
			m.viewport.Width = m.width
			m.viewport.Height = vpHeight
		}
		m.input.Width = m.width - 20
		m.ctrl.SetWidth(m.width - textIndent)

	case feed.DebounceMsg:
		cmds = append(cmds, lift(m.ctrl.Update(msg)))

	case feed.QueryResultMsg:
		before := m.ctrl.Generation()
		cmds = append(cmds, lift(m.ctrl.Update(msg)))
		if msg.Gen == before && !msg.Full && msg.Err != nil {
			m.pageHeld = true
		}
		if msg.Full && msg.Gen == before {
			m.pageHeld = false
			m.cursorID = ""
			if it := m.ctrl.Feed().At(0); it != nil {
				m.cursorID = it.ID()
			}
			if m.ready {
				m.viewport.GotoTop()
			}
		}

	case tea.KeyMsg:
		m.pageHeld = false
		var cmd tea.Cmd
		var quit bool
		switch m.mode {
		case modeInput:
			cmd = m.handleInputKey(msg)
		case modeTags:
			cmd = m.handleTagKey(msg)
		case modeFilters:
			cmd = m.handlePaneKey(msg)
		default:
			cmd, quit = m.handleFeedKey(msg)
		}
		if quit {
			return m, tea.Quit
		}
		cmds = append(cmds, cmd)

	case tea.MouseMsg:
		m.pageHeld = false
		cmds = append(cmds, m.handleMouse(msg))
	}

	if !m.ready {
		return m, tea.Batch(cmds...)
	}
	m.refresh()
	if km, ok := msg.(tea.KeyMsg); ok && m.mode == modeFeed {
		m.ensureVisible()
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(km)
		cmds = append(cmds, cmd)
	} else if _, ok := msg.(tea.MouseMsg); ok {
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}
	cmds = append(cmds, m.prefetch())
	return m, tea.Batch(cmds...)
}

// prefetch asks for the next page while the cursor or the viewport is near
// the tail. The controller's guard makes repeated asks harmless. After a
// failed page it waits for the next key, mouse or resize message.
func (m *Model) prefetch() tea.Cmd {
	f := m.ctrl.Feed()
	if f.State() != feed.StateLoaded || m.mode == modeFilters || m.pageHeld {
		return nil
	}
	if m.cursorIndex() >= f.Len()-m.margin || m.viewport.AtBottom() {
		return lift(m.ctrl.MaybeLoadMore())
	}
	return nil
}

// cursorIndex returns the cursor's current position, falling back to the
// head when its item has been evicted or replaced.
func (m *Model) cursorIndex() int {
	f := m.ctrl.Feed()
	if f.Len() == 0 {
		return -1
	}
	if i := f.IndexOf(m.cursorID); i >= 0 {
		return i
	}
	m.cursorID = f.At(0).ID()
	return 0
}

func (m *Model) moveCursor(delta int) {
	f := m.ctrl.Feed()
	i := m.cursorIndex()
	if i < 0 {
		return
	}
	i += delta
	if i < 0 {
		i = 0
	}
	if i >= f.Len() {
		i = f.Len() - 1
	}
	m.cursorID = f.At(i).ID()
}

func (m *Model) handleFeedKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch {
	case key.Matches(msg, keys.Quit):
		return nil, true
	case key.Matches(msg, keys.Up):
		m.moveCursor(-1)
	case key.Matches(msg, keys.Down):
		m.moveCursor(1)
	case key.Matches(msg, keys.Top):
		m.moveCursor(-m.ctrl.Feed().Len())
	case key.Matches(msg, keys.Bottom):
		m.moveCursor(m.ctrl.Feed().Len())
	case key.Matches(msg, keys.Toggle):
		return m.dispatchAtCursor(feed.Gesture{Kind: feed.GestureActivateItem}), false
	case key.Matches(msg, keys.RangeSelect):
		switch msg.String() {
		case "shift+down":
			m.moveCursor(1)
		case "shift+up":
			m.moveCursor(-1)
		}
		return m.dispatchAtCursor(feed.Gesture{Kind: feed.GestureActivateItem, RangeModifier: true}), false
	case key.Matches(msg, keys.Expand):
		return m.dispatchAtCursor(feed.Gesture{Kind: feed.GestureToggleText}), false
	case key.Matches(msg, keys.Badge):
		n := int(msg.String()[0] - '1')
		i := m.cursorIndex()
		if i < 0 {
			return nil, false
		}
		it := m.ctrl.Feed().At(i)
		if n >= len(it.Badges) {
			return nil, false
		}
		return lift(m.ctrl.Dispatch(feed.Gesture{Kind: feed.GestureActivateBadge, PostID: it.ID(), Ticker: it.Badges[n].Ticker})), false
	case key.Matches(msg, keys.ClearSel):
		m.ctrl.ClearSelection()
	case key.Matches(msg, keys.Refresh):
		return lift(m.ctrl.Refresh()), false
	case key.Matches(msg, keys.ResetAll):
		return lift(m.ctrl.ResetFilters()), false
	case key.Matches(msg, keys.Sentiment):
		return lift(m.ctrl.EditFilter(func(f *filter.Form) { f.CycleSentiment() })), false
	case key.Matches(msg, keys.Keyword):
		return m.startInput(fieldKeyword), false
	case key.Matches(msg, keys.Ticker):
		return m.startInput(fieldTicker), false
	case key.Matches(msg, keys.Likes):
		return m.startInput(fieldLikes), false
	case key.Matches(msg, keys.Retweets):
		return m.startInput(fieldRetweets), false
	case key.Matches(msg, keys.Tags):
		if m.ctrl.Tags().Len() > 0 {
			m.mode = modeTags
			m.tagIdx = 0
		}
	case key.Matches(msg, keys.Filters):
		if m.pane.Len() > 0 {
			m.mode = modeFilters
		}
	}
	return nil, false
}

func (m *Model) dispatchAtCursor(g feed.Gesture) tea.Cmd {
	i := m.cursorIndex()
	if i < 0 {
		return nil
	}
	g.PostID = m.ctrl.Feed().At(i).ID()
	return lift(m.ctrl.Dispatch(g))
}

// ---------------------------------------------------------------------------
// Text inputs
// ---------------------------------------------------------------------------

func (m *Model) startInput(f inputField) tea.Cmd {
	form := m.ctrl.Form()
	m.mode = modeInput
	m.field = f
	switch f {
	case fieldKeyword:
		m.input.Prompt = "keyword: "
		m.input.Placeholder = "text to match"
		m.input.SetValue(form.Keyword)
	case fieldTicker:
		m.input.Prompt = "add ticker: "
		m.input.Placeholder = "e.g. AAPL, enter to add"
		m.input.SetValue("")
	case fieldLikes:
		m.input.Prompt = "min likes: "
		m.input.Placeholder = "blank for any"
		m.input.SetValue(form.MinLikes)
	case fieldRetweets:
		m.input.Prompt = "min retweets: "
		m.input.Placeholder = "blank for any"
		m.input.SetValue(form.MinRetweets)
	}
	m.input.CursorEnd()
	return m.input.Focus()
}

func (m *Model) stopInput() {
	m.input.Blur()
	m.input.SetValue("")
	m.mode = modeFeed
}

// handleInputKey edits the focused filter. Keyword and thresholds follow
// every keystroke through the debouncer; a ticker only counts once it is
// committed with enter.
func (m *Model) handleInputKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "ctrl+c":
		return tea.Quit
	case "esc":
		m.stopInput()
		return nil
	case "enter":
		var cmd tea.Cmd
		if m.field == fieldTicker {
			cmd = lift(m.ctrl.AddTag(m.input.Value()))
		}
		m.stopInput()
		return cmd
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	v := m.input.Value()
	if v == before || m.field == fieldTicker {
		return cmd
	}
	var edit func(*filter.Form)
	switch m.field {
	case fieldKeyword:
		edit = func(f *filter.Form) { f.Keyword = v }
	case fieldLikes:
		edit = func(f *filter.Form) { f.MinLikes = v }
	case fieldRetweets:
		edit = func(f *filter.Form) { f.MinRetweets = v }
	}
	return tea.Batch(cmd, lift(m.ctrl.EditFilter(edit)))
}

// ---------------------------------------------------------------------------
// Tag bar
// ---------------------------------------------------------------------------

func (m *Model) handleTagKey(msg tea.KeyMsg) tea.Cmd {
	tags := m.ctrl.Tags().Tags()
	switch msg.String() {
	case "ctrl+c":
		return tea.Quit
	case "esc", "t", "q":
		m.mode = modeFeed
	case "left", "h":
		if m.tagIdx > 0 {
			m.tagIdx--
		}
	case "right", "l":
		if m.tagIdx < len(tags)-1 {
			m.tagIdx++
		}
	case "x", "delete", "backspace":
		if m.tagIdx >= len(tags) {
			return nil
		}
		cmd := lift(m.ctrl.Dispatch(feed.Gesture{Kind: feed.GestureRemoveTag, Ticker: tags[m.tagIdx]}))
		if n := m.ctrl.Tags().Len(); n == 0 {
			m.mode = modeFeed
		} else if m.tagIdx >= n {
			m.tagIdx = n - 1
		}
		return cmd
	}
	return nil
}

// ---------------------------------------------------------------------------
// Mouse
// ---------------------------------------------------------------------------

// handleMouse maps a left click on an item to a selection toggle, or a
// range when shift or ctrl is held.
func (m *Model) handleMouse(msg tea.MouseMsg) tea.Cmd {
	if m.mode != modeFeed || msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
		return nil
	}
	line := msg.Y - headerH + m.viewport.YOffset
	if msg.Y < headerH || line < 0 || line >= len(m.lineItem) {
		return nil
	}
	i := m.lineItem[line]
	it := m.ctrl.Feed().At(i)
	if it == nil {
		return nil
	}
	m.cursorID = it.ID()
	return lift(m.ctrl.Dispatch(feed.Gesture{
		Kind:          feed.GestureActivateItem,
		PostID:        it.ID(),
		RangeModifier: msg.Shift || msg.Ctrl,
	}))
}

// ---------------------------------------------------------------------------
// Viewport
// ---------------------------------------------------------------------------

// refresh re-renders the feed into the viewport.
func (m *Model) refresh() {
	content, lineItem, itemLine := m.renderContent()
	m.lineItem = lineItem
	m.itemLine = itemLine
	m.viewport.SetContent(content)
}

// ensureVisible scrolls the viewport so the cursor item is visible.
func (m *Model) ensureVisible() {
	i := m.cursorIndex()
	if i < 0 || i >= len(m.itemLine) {
		return
	}
	start := m.itemLine[i]
	end := len(m.lineItem)
	if i+1 < len(m.itemLine) {
		end = m.itemLine[i+1]
	}
	yOff := m.viewport.YOffset
	vpH := m.viewport.Height
	if start < yOff {
		m.viewport.SetYOffset(start)
	} else if end > yOff+vpH {
		off := end - vpH
		if off > start {
			off = start
		}
		m.viewport.SetYOffset(off)
	}
}
