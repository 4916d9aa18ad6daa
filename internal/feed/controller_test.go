package feed

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"tickerfeed/internal/domain"
	"tickerfeed/internal/filter"
)

type queryCall struct {
	criteria filter.Criteria
	cursor   domain.Cursor
	limit    int
}

// fakeExecutor answers from a per-cursor table and records every call.
type fakeExecutor struct {
	mu    sync.Mutex
	calls []queryCall
	pages map[domain.Cursor]*domain.Page
	err   error
}

func (f *fakeExecutor) RunQuery(_ context.Context, c filter.Criteria, cursor domain.Cursor, limit int) (*domain.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, queryCall{criteria: c, cursor: cursor, limit: limit})
	if f.err != nil {
		return nil, f.err
	}
	if p, ok := f.pages[cursor]; ok {
		return p, nil
	}
	return &domain.Page{}, nil
}

func (f *fakeExecutor) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeExecutor) lastCall() queryCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[len(f.calls)-1]
}

func newTestController(exec Executor) *Controller {
	return New(Options{
		Executor: exec,
		Logger:   slog.New(slog.DiscardHandler),
		PageSize: 50,
		MaxPosts: 200,
		Debounce: time.Millisecond,
		Location: time.UTC,
	})
}

// drive runs cmd and every follow-up synchronously, the way a host event
// loop would.
func drive(c *Controller, cmd Cmd) {
	for cmd != nil {
		cmd = c.Update(cmd())
	}
}

func TestFullQueryThenPaginationScenario(t *testing.T) {
	exec := &fakeExecutor{pages: map[domain.Cursor]*domain.Page{
		domain.NoCursor: {Posts: makePosts(1, 2), Next: "c1"},
		"c1":            {Posts: makePosts(3, 2), Next: domain.NoCursor},
	}}
	c := newTestController(exec)
	c.Form().Keyword = "AAPL"
	c.Form().MinLikes = "100"

	drive(c, c.Refresh())

	if diff := cmp.Diff(ids(1, 2), c.Feed().IDs()); diff != "" {
		t.Fatalf("feed mismatch (-want +got):\n%s", diff)
	}
	if c.Cursor() != "c1" {
		t.Fatalf("cursor = %q, want c1", c.Cursor())
	}
	first := exec.lastCall()
	if first.criteria.Keyword != "AAPL" || first.criteria.MinLikes == nil || *first.criteria.MinLikes != 100 {
		t.Errorf("unexpected criteria %+v", first.criteria)
	}
	if first.cursor != domain.NoCursor || first.limit != 50 {
		t.Errorf("first call cursor/limit = %q/%d", first.cursor, first.limit)
	}

	drive(c, c.MaybeLoadMore())
	if got := exec.lastCall().cursor; got != "c1" {
		t.Errorf("page call cursor = %q, want c1", got)
	}
	if diff := cmp.Diff(ids(1, 4), c.Feed().IDs()); diff != "" {
		t.Errorf("feed mismatch (-want +got):\n%s", diff)
	}

	calls := exec.callCount()
	for range 3 {
		if cmd := c.MaybeLoadMore(); cmd != nil {
			t.Fatal("exhausted cursor still produced a request")
		}
	}
	if exec.callCount() != calls {
		t.Errorf("calls = %d, want %d", exec.callCount(), calls)
	}
}

func TestMaybeLoadMoreGuard(t *testing.T) {
	exec := &fakeExecutor{pages: map[domain.Cursor]*domain.Page{
		domain.NoCursor: {Posts: makePosts(1, 2), Next: "c1"},
	}}
	c := newTestController(exec)

	if c.MaybeLoadMore() != nil {
		t.Fatal("never-queried feed should not paginate")
	}

	refresh := c.Refresh()
	if c.MaybeLoadMore() != nil {
		t.Fatal("pagination while a full query is pending")
	}
	drive(c, refresh)

	first := c.MaybeLoadMore()
	if first == nil {
		t.Fatal("expected a page request")
	}
	if !c.Loading() {
		t.Error("Loading() should be true while the page is in flight")
	}
	for range 5 {
		if c.MaybeLoadMore() != nil {
			t.Fatal("second page request while one is in flight")
		}
	}
	drive(c, first)
	if c.Loading() {
		t.Error("loading flag not cleared")
	}
}

func TestMaybeLoadMoreRecollectsCriteria(t *testing.T) {
	exec := &fakeExecutor{pages: map[domain.Cursor]*domain.Page{
		domain.NoCursor: {Posts: makePosts(1, 2), Next: "c1"},
	}}
	c := newTestController(exec)
	drive(c, c.Refresh())

	c.Form().Keyword = "changed"
	drive(c, c.MaybeLoadMore())
	if got := exec.lastCall().criteria.Keyword; got != "changed" {
		t.Errorf("page criteria keyword = %q, want changed", got)
	}
}

func TestStalePageResultDropped(t *testing.T) {
	exec := &fakeExecutor{pages: map[domain.Cursor]*domain.Page{
		domain.NoCursor: {Posts: makePosts(1, 2), Next: "c1"},
		"c1":            {Posts: makePosts(100, 2), Next: "c2"},
	}}
	c := newTestController(exec)
	drive(c, c.Refresh())

	pageCmd := c.MaybeLoadMore()
	pageMsg := pageCmd()

	// A new query completes while the page is still in flight.
	exec.pages[domain.NoCursor] = &domain.Page{Posts: makePosts(50, 2), Next: "n1"}
	drive(c, c.Refresh())
	if c.Cursor() != "n1" {
		t.Fatalf("cursor = %q, want n1", c.Cursor())
	}
	if c.MaybeLoadMore() != nil {
		t.Fatal("page requests must stay serialized while the stale one is in flight")
	}

	c.Update(pageMsg)
	if diff := cmp.Diff(ids(50, 2), c.Feed().IDs()); diff != "" {
		t.Errorf("stale page was applied (-want +got):\n%s", diff)
	}
	if c.Cursor() != "n1" {
		t.Errorf("stale page moved the cursor to %q", c.Cursor())
	}
	if c.Loading() {
		t.Error("stale response did not clear loading")
	}
	if c.MaybeLoadMore() == nil {
		t.Error("expected a fresh page request after the stale one settled")
	}
}

func TestStaleFullResultDropped(t *testing.T) {
	exec := &fakeExecutor{pages: map[domain.Cursor]*domain.Page{
		domain.NoCursor: {Posts: makePosts(1, 2), Next: "old"},
	}}
	c := newTestController(exec)

	oldMsg := c.Refresh()()
	exec.pages[domain.NoCursor] = &domain.Page{Posts: makePosts(10, 3), Next: "new"}
	drive(c, c.Refresh())
	c.Update(oldMsg)

	if diff := cmp.Diff(ids(10, 3), c.Feed().IDs()); diff != "" {
		t.Errorf("feed mismatch (-want +got):\n%s", diff)
	}
	if c.Cursor() != "new" {
		t.Errorf("cursor = %q, want new", c.Cursor())
	}
}

func TestFullQueryFailure(t *testing.T) {
	exec := &fakeExecutor{pages: map[domain.Cursor]*domain.Page{
		domain.NoCursor: {Posts: makePosts(1, 3), Next: "c1"},
	}}
	c := newTestController(exec)
	drive(c, c.Refresh())
	c.Activate("2", false)

	exec.err = errors.New("service unavailable")
	drive(c, c.Refresh())

	if c.Feed().State() != StateError || c.Feed().Err() != "service unavailable" {
		t.Errorf("state/err = %v/%q", c.Feed().State(), c.Feed().Err())
	}
	if c.Selection().Len() != 0 || c.Selection().Anchor() != -1 {
		t.Error("selection not reset after failed full query")
	}
	if !c.Cursor().Done() {
		t.Errorf("cursor = %q, want none", c.Cursor())
	}
	if c.MaybeLoadMore() != nil {
		t.Error("failed query should not allow pagination")
	}
	if c.Querying() {
		t.Error("querying flag not cleared")
	}
}

func TestPageFailureKeepsState(t *testing.T) {
	exec := &fakeExecutor{pages: map[domain.Cursor]*domain.Page{
		domain.NoCursor: {Posts: makePosts(1, 3), Next: "c1"},
	}}
	c := newTestController(exec)
	drive(c, c.Refresh())
	c.Activate("2", false)

	exec.err = errors.New("timeout")
	drive(c, c.MaybeLoadMore())

	if diff := cmp.Diff(ids(1, 3), c.Feed().IDs()); diff != "" {
		t.Errorf("feed changed on page failure (-want +got):\n%s", diff)
	}
	if !c.Selection().Has("2") {
		t.Error("selection lost on page failure")
	}
	if c.Cursor() != "c1" {
		t.Errorf("cursor = %q, want c1", c.Cursor())
	}
	if c.PageError() != "timeout" {
		t.Errorf("PageError() = %q", c.PageError())
	}
	if c.Loading() {
		t.Error("loading not cleared after failure")
	}

	exec.err = nil
	drive(c, c.MaybeLoadMore())
	if exec.lastCall().cursor != "c1" {
		t.Errorf("retry cursor = %q, want c1", exec.lastCall().cursor)
	}
	if c.PageError() != "" {
		t.Errorf("PageError() = %q after success", c.PageError())
	}
}

func TestReplaceResetsSelection(t *testing.T) {
	exec := &fakeExecutor{pages: map[domain.Cursor]*domain.Page{
		domain.NoCursor: {Posts: makePosts(1, 5), Next: "c1"},
	}}
	c := newTestController(exec)
	drive(c, c.Refresh())
	c.Activate("1", false)
	c.Activate("4", true)
	if c.Selection().Len() != 4 {
		t.Fatalf("selected = %d, want 4", c.Selection().Len())
	}
	drive(c, c.Refresh())
	if c.Selection().Len() != 0 || c.Selection().Anchor() != -1 {
		t.Errorf("len/anchor = %d/%d after replace", c.Selection().Len(), c.Selection().Anchor())
	}
}

func TestAppendKeepsSelectionAndEvicts(t *testing.T) {
	exec := &fakeExecutor{pages: map[domain.Cursor]*domain.Page{
		domain.NoCursor: {Posts: makePosts(0, 150), Next: "c1"},
		"c1":            {Posts: makePosts(150, 100), Next: "c2"},
	}}
	c := newTestController(exec)
	drive(c, c.Refresh())
	c.Activate("10", false)
	c.Activate("120", false)

	drive(c, c.MaybeLoadMore())

	if c.Feed().Len() != 200 {
		t.Fatalf("len = %d, want 200", c.Feed().Len())
	}
	if c.Selection().Has("10") {
		t.Error("evicted post still selected")
	}
	if !c.Selection().Has("120") {
		t.Error("retained selection lost on append")
	}
	if got, want := c.Selection().Anchor(), c.Feed().IndexOf("120"); got != want {
		t.Errorf("anchor = %d, want %d", got, want)
	}

	// Range from the shifted anchor covers the correct posts.
	c.Activate("122", true)
	if diff := cmp.Diff([]domain.PostID{"120", "121", "122"}, c.SelectedIDs()); diff != "" {
		t.Errorf("selection mismatch (-want +got):\n%s", diff)
	}
}

func TestTagMutationsScheduleOneQuery(t *testing.T) {
	exec := &fakeExecutor{}
	c := newTestController(exec)

	cmds := []Cmd{
		c.AddTag("aapl"),
		c.AddTag("AAPL "), // duplicate
		c.Dispatch(Gesture{Kind: GestureActivateBadge, PostID: "1", Ticker: "tsla"}),
		c.Dispatch(Gesture{Kind: GestureRemoveTag, Ticker: "AAPL"}),
		c.RemoveTag("MSFT"), // absent
	}
	if cmds[1] != nil || cmds[4] != nil {
		t.Error("no-op tag mutations should not schedule a query")
	}
	for _, cmd := range cmds {
		if cmd != nil {
			drive(c, cmd)
		}
	}
	if exec.callCount() != 1 {
		t.Fatalf("calls = %d, want 1", exec.callCount())
	}
	if diff := cmp.Diff([]string{"TSLA"}, exec.lastCall().criteria.Tickers); diff != "" {
		t.Errorf("tickers mismatch (-want +got):\n%s", diff)
	}
}

func TestScheduledRefreshSkipsUnchangedCriteria(t *testing.T) {
	exec := &fakeExecutor{}
	c := newTestController(exec)
	drive(c, c.Refresh())

	drive(c, c.EditFilter(func(f *filter.Form) { f.Keyword = "  " }))
	if exec.callCount() != 1 {
		t.Errorf("calls = %d, want 1 (criteria unchanged after trimming)", exec.callCount())
	}

	drive(c, c.EditFilter(func(f *filter.Form) { f.MinRetweets = "5" }))
	if exec.callCount() != 2 {
		t.Errorf("calls = %d, want 2", exec.callCount())
	}

	// An explicit refresh always queries.
	drive(c, c.Refresh())
	if exec.callCount() != 3 {
		t.Errorf("calls = %d, want 3", exec.callCount())
	}
}

func TestBadgeDoesNotSelect(t *testing.T) {
	exec := &fakeExecutor{pages: map[domain.Cursor]*domain.Page{
		domain.NoCursor: {Posts: makePosts(1, 3)},
	}}
	c := newTestController(exec)
	drive(c, c.Refresh())

	c.Dispatch(Gesture{Kind: GestureActivateBadge, PostID: "2", Ticker: "NVDA"})
	if c.Selection().Len() != 0 || c.Selection().Anchor() != -1 {
		t.Error("badge activation touched the selection")
	}
	if !c.Tags().Contains("NVDA") {
		t.Error("badge ticker not added")
	}
}

func TestDispatchActivateAndToggleText(t *testing.T) {
	long := domain.Post{ID: "9", OriginalText: "one two three four five six seven eight nine ten eleven twelve"}
	exec := &fakeExecutor{pages: map[domain.Cursor]*domain.Page{
		domain.NoCursor: {Posts: append(makePosts(1, 3), long)},
	}}
	c := newTestController(exec)
	drive(c, c.Refresh())
	c.SetWidth(10)

	c.Dispatch(Gesture{Kind: GestureActivateItem, PostID: "1"})
	c.Dispatch(Gesture{Kind: GestureActivateItem, PostID: "3", RangeModifier: true})
	if diff := cmp.Diff(ids(1, 3), c.SelectedIDs()); diff != "" {
		t.Errorf("selection mismatch (-want +got):\n%s", diff)
	}

	c.Dispatch(Gesture{Kind: GestureToggleText, PostID: "9"})
	if !c.Feed().At(3).Expanded {
		t.Error("toggle-text did not expand the post")
	}
	if c.Dispatch(Gesture{Kind: GestureKind(99)}) != nil {
		t.Error("unknown gesture should be ignored")
	}
	if c.Activate("missing", false) != nil || c.Selection().Has("missing") {
		t.Error("activating an absent post changed the selection")
	}
}

func TestResetFilters(t *testing.T) {
	exec := &fakeExecutor{}
	c := newTestController(exec)
	c.Form().Keyword = "x"
	c.Form().Sentiment = domain.SentimentNegative
	c.Tags().Add("AAPL")

	drive(c, c.ResetFilters())
	got := exec.lastCall().criteria
	if !got.Equal(filter.Criteria{}) {
		t.Errorf("criteria after reset = %+v", got)
	}
}
