package feed

import (
	"context"
	"log/slog"
	"time"

	"tickerfeed/internal/domain"
	"tickerfeed/internal/filter"
)

// DefaultPageSize is the number of posts requested per call.
const DefaultPageSize = 50

// Executor runs one filter query against the remote service.
type Executor interface {
	RunQuery(ctx context.Context, criteria filter.Criteria, cursor domain.Cursor, limit int) (*domain.Page, error)
}

// Options are the collaborators and limits of a Controller.
type Options struct {
	Executor Executor
	Form     *filter.Form
	Tags     *filter.TagStore
	Logger   *slog.Logger

	PageSize int
	MaxPosts int
	Debounce time.Duration
	// Timeout bounds each filter call.
	Timeout  time.Duration
	Location *time.Location
}

// Controller owns the feed, the selection, the pager and the debouncer, and
// keeps them consistent as queries start and results arrive.
type Controller struct {
	exec      Executor
	form      *filter.Form
	tags      *filter.TagStore
	collector *filter.Collector
	logger    *slog.Logger
	pageSize  int
	timeout   time.Duration

	feed     *Feed
	sel      *Selection
	pager    *Pager
	debounce *Debouncer

	// gen is bumped by every full query; results from older generations are
	// dropped.
	gen      uint64
	querying bool
	pending  filter.Criteria
	applied  *filter.Criteria
	pageErr  string

	handlers map[GestureKind]func(Gesture) Cmd
}

// New creates a Controller. Executor is required; zero limits take the
// package defaults.
func New(opts Options) *Controller {
	if opts.Form == nil {
		opts.Form = filter.NewForm(nil, nil)
	}
	if opts.Tags == nil {
		opts.Tags = filter.NewTagStore()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}

	c := &Controller{
		exec:      opts.Executor,
		form:      opts.Form,
		tags:      opts.Tags,
		collector: filter.NewCollector(opts.Form, opts.Tags),
		logger:    opts.Logger,
		pageSize:  opts.PageSize,
		timeout:   opts.Timeout,
		feed:      NewFeed(opts.MaxPosts, opts.Location),
		sel:       NewSelection(),
		pager:     &Pager{},
		debounce:  NewDebouncer(opts.Debounce),
	}
	c.handlers = map[GestureKind]func(Gesture) Cmd{
		GestureActivateItem:  func(g Gesture) Cmd { return c.Activate(g.PostID, g.RangeModifier) },
		GestureActivateBadge: func(g Gesture) Cmd { return c.ActivateBadge(g.PostID, g.Ticker) },
		GestureRemoveTag:     func(g Gesture) Cmd { return c.RemoveTag(g.Ticker) },
		GestureToggleText:    func(g Gesture) Cmd { return c.ToggleExpanded(g.PostID) },
	}
	return c
}

// ---------------------------------------------------------------------------
// Accessors
// ---------------------------------------------------------------------------

func (c *Controller) Feed() *Feed { return c.feed }
func (c *Controller) Selection() *Selection { return c.sel }
func (c *Controller) Tags() *filter.TagStore { return c.tags }
func (c *Controller) Form() *filter.Form { return c.form }
func (c *Controller) Cursor() domain.Cursor { return c.pager.Cursor() }
func (c *Controller) Generation() uint64 { return c.gen }
func (c *Controller) Criteria() filter.Criteria { return c.collector.Collect() }
func (c *Controller) SelectedIDs() []domain.PostID { return c.sel.InOrder(c.feed.IDs()) }

// Querying reports whether a full query is in flight.
func (c *Controller) Querying() bool { return c.querying }

// Loading reports whether a page request is in flight.
func (c *Controller) Loading() bool { return c.pager.Loading() }

// PageError returns the message of the last failed page fetch, cleared by
// the next successful response.
func (c *Controller) PageError() string { return c.pageErr }

// ---------------------------------------------------------------------------
// Queries
// ---------------------------------------------------------------------------

// Refresh starts a new full query with the current criteria. The cursor is
// discarded and any in-flight result becomes stale.
func (c *Controller) Refresh() Cmd {
	c.gen++
	c.pending = c.collector.Collect()
	c.pager.Reset()
	c.querying = true
	c.logger.Info("query", "gen", c.gen, "keyword", c.pending.Keyword, "tickers", c.pending.Tickers)
	return c.query(c.gen, c.pending, domain.NoCursor, true)
}

// ScheduleRefresh debounces a Refresh. When the window closes and the
// criteria equal those of the feed on screen, no query is sent.
func (c *Controller) ScheduleRefresh() Cmd {
	return c.debounce.Schedule(func() Cmd {
		if !c.querying && c.applied != nil && c.collector.Collect().Equal(*c.applied) {
			c.logger.Debug("criteria unchanged, skipping query", "gen", c.gen)
			return nil
		}
		return c.Refresh()
	})
}

// EditFilter applies edit to the form and schedules a re-query.
func (c *Controller) EditFilter(edit func(*filter.Form)) Cmd {
	edit(c.form)
	return c.ScheduleRefresh()
}

// ResetFilters clears every filter input and tag and queries immediately.
func (c *Controller) ResetFilters() Cmd {
	c.form.Keyword, c.form.MinLikes, c.form.MinRetweets = "", "", ""
	c.form.Sentiment = domain.SentimentAny
	c.form.Accounts.Reset()
	c.form.Sectors.Reset()
	for _, t := range c.tags.Tags() {
		c.tags.Remove(t)
	}
	return c.Refresh()
}

// AddTag commits a ticker tag. A successful add schedules a re-query;
// duplicates and empty input do nothing.
func (c *Controller) AddTag(raw string) Cmd {
	if !c.tags.Add(raw) {
		return nil
	}
	return c.ScheduleRefresh()
}

// RemoveTag removes a ticker tag and schedules a re-query when it was present.
func (c *Controller) RemoveTag(ticker string) Cmd {
	if !c.tags.Remove(ticker) {
		return nil
	}
	return c.ScheduleRefresh()
}

// MaybeLoadMore requests the next page if none is in flight, no full query is
// pending and the cursor is not exhausted. Hosts call it whenever the view is
// near the tail; repeated calls are harmless.
func (c *Controller) MaybeLoadMore() Cmd {
	if c.querying || !c.pager.Begin() {
		return nil
	}
	crit := c.collector.Collect()
	c.logger.Info("load more", "gen", c.gen, "cursor", string(c.pager.Cursor()))
	return c.query(c.gen, crit, c.pager.Cursor(), false)
}

func (c *Controller) query(gen uint64, crit filter.Criteria, cursor domain.Cursor, full bool) Cmd {
	exec, limit, timeout := c.exec, c.pageSize, c.timeout
	return func() Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		page, err := exec.RunQuery(ctx, crit, cursor, limit)
		return QueryResultMsg{Gen: gen, Full: full, Page: page, Err: err}
	}
}

// ---------------------------------------------------------------------------
// Results
// ---------------------------------------------------------------------------

// Update applies a message produced by one of the Controller's commands and
// returns any follow-up command.
func (c *Controller) Update(msg Msg) Cmd {
	switch msg := msg.(type) {
	case DebounceMsg:
		return c.debounce.Fire(msg)
	case QueryResultMsg:
		c.applyResult(msg)
	}
	return nil
}

func (c *Controller) applyResult(msg QueryResultMsg) {
	if !msg.Full {
		c.pager.Finish()
	}
	if msg.Gen != c.gen {
		c.logger.Debug("dropping stale result", "gen", msg.Gen, "current", c.gen, "full", msg.Full)
		return
	}

	if msg.Full {
		c.querying = false
		c.sel.Clear()
		if msg.Err != nil {
			c.logger.Warn("query failed", "gen", msg.Gen, "error", msg.Err)
			c.feed.Fail(msg.Err.Error())
			c.pager.Reset()
			c.applied = nil
			return
		}
		c.feed.Replace(msg.Page.Posts)
		c.pager.Advance(msg.Page.Next)
		crit := c.pending
		c.applied = &crit
		c.pageErr = ""
		c.logger.Info("query done", "gen", msg.Gen, "posts", c.feed.Len(), "cursor", string(msg.Page.Next))
		return
	}

	if msg.Err != nil {
		c.logger.Warn("load more failed", "gen", msg.Gen, "cursor", string(c.pager.Cursor()), "error", msg.Err)
		c.pageErr = msg.Err.Error()
		return
	}
	evicted := c.feed.Append(msg.Page.Posts)
	c.sel.Evict(evicted)
	c.pager.Advance(msg.Page.Next)
	c.pageErr = ""
	c.logger.Info("page appended", "gen", msg.Gen, "posts", len(msg.Page.Posts),
		"evicted", len(evicted), "cursor", string(msg.Page.Next))
}

// ---------------------------------------------------------------------------
// Gestures
// ---------------------------------------------------------------------------

// Activate toggles or range-selects the item id. Its position is looked up
// in the current order at call time.
func (c *Controller) Activate(id domain.PostID, rangeMod bool) Cmd {
	pos := c.feed.IndexOf(id)
	if pos < 0 {
		return nil
	}
	c.sel.Activate(id, pos, rangeMod, c.feed.IDs())
	return nil
}

// ActivateBadge adds the badge's ticker as a tag. Selection is untouched.
func (c *Controller) ActivateBadge(_ domain.PostID, ticker string) Cmd {
	return c.AddTag(ticker)
}

// ToggleExpanded expands or collapses the text of id.
func (c *Controller) ToggleExpanded(id domain.PostID) Cmd {
	c.feed.ToggleExpanded(id)
	return nil
}

// ClearSelection empties the selection.
func (c *Controller) ClearSelection() {
	c.sel.Clear()
}

// SetWidth re-wraps post text for a new surface width.
func (c *Controller) SetWidth(width int) {
	c.feed.SetWidth(width)
}
