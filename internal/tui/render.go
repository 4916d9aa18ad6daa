package tui

import (
	"fmt"
	"strconv"
	"strings"

	"tickerfeed/internal/feed"
	"tickerfeed/internal/filter"
)

// textIndent is the left margin of post text under the header line.
const textIndent = 4

// View renders the whole screen.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	var b strings.Builder
	b.WriteString(m.headerBar())
	b.WriteString("\n")
	b.WriteString(padOrTrunc(" "+filterSummary(m.ctrl.Criteria()), m.width))
	b.WriteString("\n")
	b.WriteString(m.tagBar())
	b.WriteString("\n")
	if m.mode == modeFilters {
		pane := m.pane.render(m.ctrl.Form(), m.width, m.viewport.Height)
		b.WriteString(pane)
		if n := m.viewport.Height - (strings.Count(pane, "\n") + 1); n > 0 {
			b.WriteString(strings.Repeat("\n", n))
		}
	} else {
		b.WriteString(m.viewport.View())
	}
	b.WriteString("\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(footerBarStyle.Render(padOrTrunc(keys.helpLine(), m.width)))
	return b.String()
}

func (m Model) headerBar() string {
	f := m.ctrl.Feed()
	status := ""
	switch {
	case m.ctrl.Querying():
		status = "querying..."
	case m.ctrl.Loading():
		status = "loading more..."
	case f.State() == feed.StateLoaded && m.ctrl.Cursor().Done():
		status = "end of feed"
	}
	text := fmt.Sprintf(" tickerfeed    posts: %d/%d    %d selected    %s ",
		f.Len(), f.MaxPosts(), m.ctrl.Selection().Len(), status)
	return headerBarStyle.Render(padOrTrunc(text, m.width))
}

// filterSummary describes the criteria in effect, "all posts" when none.
func filterSummary(c filter.Criteria) string {
	var parts []string
	if c.Keyword != "" {
		parts = append(parts, fmt.Sprintf("keyword %q", c.Keyword))
	}
	if c.MinLikes != nil {
		parts = append(parts, "likes ≥ "+strconv.Itoa(*c.MinLikes))
	}
	if c.MinRetweets != nil {
		parts = append(parts, "rts ≥ "+strconv.Itoa(*c.MinRetweets))
	}
	if c.Sentiment != "" {
		parts = append(parts, "sentiment "+c.Sentiment.Label())
	}
	if len(c.Accounts) > 0 {
		parts = append(parts, "accounts "+strings.Join(c.Accounts, ","))
	}
	if len(c.Sectors) > 0 {
		parts = append(parts, "sectors "+strings.Join(c.Sectors, ","))
	}
	if len(c.SubSectors) > 0 {
		parts = append(parts, "sub-sectors "+strings.Join(c.SubSectors, ","))
	}
	if len(parts) == 0 {
		return dimStyle.Render("filters: all posts")
	}
	return dimStyle.Render("filters: ") + strings.Join(parts, "  ")
}

func (m Model) tagBar() string {
	tags := m.ctrl.Tags().Tags()
	if len(tags) == 0 {
		return padOrTrunc(dimStyle.Render(" tags: none"), m.width)
	}
	var b strings.Builder
	b.WriteString(" tags: ")
	for i, t := range tags {
		style := tagStyle
		if m.mode == modeTags && i == m.tagIdx {
			style = tagFocusStyle
		}
		b.WriteString(style.Render(" " + t + " ×"))
		b.WriteString(" ")
	}
	if m.mode == modeTags {
		b.WriteString(dimStyle.Render(" ←/→ choose  x remove  esc done"))
	}
	return padOrTrunc(b.String(), m.width)
}

func (m Model) statusLine() string {
	switch {
	case m.mode == modeInput:
		return padOrTrunc(" "+m.input.View(), m.width)
	case m.ctrl.PageError() != "":
		return padOrTrunc(errorStyle.Render(" load more failed: "+m.ctrl.PageError()), m.width)
	}
	pct := m.viewport.ScrollPercent() * 100
	return padOrTrunc(dimStyle.Render(fmt.Sprintf(" %.0f%%", pct)), m.width)
}

// renderContent draws every item and returns the content with its line to
// item map and the first line of each item.
func (m Model) renderContent() (string, []int, []int) {
	f := m.ctrl.Feed()
	switch f.State() {
	case feed.StateIdle:
		return dimStyle.Render("  Loading..."), nil, nil
	case feed.StateEmpty:
		return dimStyle.Render("  No posts match the current filters."), nil, nil
	case feed.StateError:
		return errorStyle.Render("  Error: "+f.Err()) + "\n" + dimStyle.Render("  press r to retry"), nil, nil
	}

	cur := -1
	if i := f.IndexOf(m.cursorID); i >= 0 {
		cur = i
	}
	var lines []string
	var lineItem []int
	itemLine := make([]int, 0, f.Len())
	for i, it := range f.Items() {
		itemLine = append(itemLine, len(lines))
		block := m.renderItem(it, i == cur, m.ctrl.Selection().Has(it.ID()))
		for _, l := range block {
			lines = append(lines, l)
			lineItem = append(lineItem, i)
		}
		lines = append(lines, "")
		lineItem = append(lineItem, -1)
	}
	return strings.Join(lines, "\n"), lineItem, itemLine
}

func (m Model) renderItem(it *feed.Item, isCursor, selected bool) []string {
	var out []string

	pointer := "  "
	if isCursor {
		pointer = cursorStyle.Render("▶ ")
	}
	mark := "[ ]"
	if selected {
		mark = selectedStyle.Render("[x]")
	}
	header := fmt.Sprintf("%s%s %s  %s  %s %s",
		pointer, mark,
		usernameStyle.Render("@"+it.Username),
		dimStyle.Render(it.PostedAt),
		countStyle.Render(fmt.Sprintf("♥ %d", it.Post.LikeCount)),
		countStyle.Render(fmt.Sprintf("⟲ %d", it.Post.RetweetCount)))
	if it.Post.LinkSummary {
		header += "  🔗"
	}
	out = append(out, header)

	indent := strings.Repeat(" ", textIndent)
	for _, l := range it.VisibleLines() {
		if it.NoText {
			l = dimStyle.Render(l)
		}
		out = append(out, indent+l)
	}
	if it.Truncatable() {
		hint := "… more (e)"
		if it.Expanded {
			hint = "less (e)"
		}
		out = append(out, indent+dimStyle.Render(hint))
	}

	if len(it.Badges) == 0 {
		out = append(out, indent+dimStyle.Render(feed.NoAnalysisPlaceholder))
	} else {
		var b strings.Builder
		for i, badge := range it.Badges {
			if i > 0 {
				b.WriteString("  ")
			}
			label := badge.Ticker + " " + badge.Icon
			if i < 9 {
				label = strconv.Itoa(i+1) + ":" + label
			}
			b.WriteString(sentimentStyle(badge.Sentiment).Render(label))
		}
		out = append(out, indent+b.String())
	}

	if it.Source != "" {
		out = append(out, indent+dimStyle.Render(it.Source))
	}
	return out
}
