package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit        key.Binding
	Up          key.Binding
	Down        key.Binding
	Top         key.Binding
	Bottom      key.Binding
	Toggle      key.Binding
	RangeSelect key.Binding
	Expand      key.Binding
	ClearSel    key.Binding
	Refresh     key.Binding
	Keyword     key.Binding
	Ticker      key.Binding
	Likes       key.Binding
	Retweets    key.Binding
	Sentiment   key.Binding
	Filters     key.Binding
	Tags        key.Binding
	ResetAll    key.Binding
	Badge       key.Binding
}

var keys = keyMap{
	Quit:        key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Up:          key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "up")),
	Down:        key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "down")),
	Top:         key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "top")),
	Bottom:      key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "bottom")),
	Toggle:      key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "select")),
	RangeSelect: key.NewBinding(key.WithKeys("X", "shift+down", "shift+up"), key.WithHelp("X", "range")),
	Expand:      key.NewBinding(key.WithKeys("e", "enter"), key.WithHelp("e", "expand")),
	ClearSel:    key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear sel")),
	Refresh:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	Keyword:     key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "keyword")),
	Ticker:      key.NewBinding(key.WithKeys("#", "$"), key.WithHelp("#", "ticker")),
	Likes:       key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "likes")),
	Retweets:    key.NewBinding(key.WithKeys("R"), key.WithHelp("R", "rts")),
	Sentiment:   key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "sentiment")),
	Filters:     key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "accounts/sectors")),
	Tags:        key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "tags")),
	ResetAll:    key.NewBinding(key.WithKeys("C"), key.WithHelp("C", "reset filters")),
	Badge:       key.NewBinding(key.WithKeys("1", "2", "3", "4", "5", "6", "7", "8", "9"), key.WithHelp("1-9", "add badge ticker")),
}

// helpLine is the footer hint for the feed view.
func (k keyMap) helpLine() string {
	bindings := []key.Binding{k.Quit, k.Down, k.Toggle, k.RangeSelect, k.Expand, k.Badge,
		k.Keyword, k.Ticker, k.Likes, k.Retweets, k.Sentiment, k.Filters, k.Tags, k.Refresh}
	out := ""
	for _, b := range bindings {
		h := b.Help()
		out += " " + h.Key + " " + h.Desc + " "
	}
	return out
}
