package feed

import (
	"testing"
	"time"
)

func TestDebouncerOnlyLatestFires(t *testing.T) {
	d := NewDebouncer(time.Millisecond)
	var ran []int
	action := func(n int) func() Cmd {
		return func() Cmd {
			ran = append(ran, n)
			return nil
		}
	}

	c1 := d.Schedule(action(1))
	c2 := d.Schedule(action(2))
	c3 := d.Schedule(action(3))

	for _, c := range []Cmd{c1, c2, c3} {
		msg, ok := c().(DebounceMsg)
		if !ok {
			t.Fatalf("expected DebounceMsg")
		}
		d.Fire(msg)
	}
	if len(ran) != 1 || ran[0] != 3 {
		t.Errorf("ran = %v, want [3]", ran)
	}
	if d.Pending() {
		t.Error("nothing should be pending after firing")
	}
}

func TestDebouncerFiresOnce(t *testing.T) {
	d := NewDebouncer(time.Millisecond)
	count := 0
	msg := d.Schedule(func() Cmd { count++; return nil })().(DebounceMsg)
	d.Fire(msg)
	d.Fire(msg)
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
}

func TestDebouncerReusable(t *testing.T) {
	d := NewDebouncer(time.Millisecond)
	count := 0
	inc := func() Cmd { count++; return nil }
	d.Fire(d.Schedule(inc)().(DebounceMsg))
	d.Fire(d.Schedule(inc)().(DebounceMsg))
	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}
}

func TestDebouncerWaitsWindow(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	start := time.Now()
	d.Schedule(func() Cmd { return nil })()
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Errorf("command returned after %v, before the window", elapsed)
	}
}

func TestDebouncerDefaultWindow(t *testing.T) {
	if d := NewDebouncer(0); d.window != DefaultDebounce {
		t.Errorf("window = %v, want %v", d.window, DefaultDebounce)
	}
}
