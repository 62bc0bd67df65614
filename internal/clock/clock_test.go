package clock

import (
	"testing"
	"time"
)

type fakeNow struct{ t time.Time }

func (f *fakeNow) now() time.Time { return f.t }

func (f *fakeNow) advance(d time.Duration) { f.t = f.t.Add(d) }

func TestElapsedBeforeStartIsZero(t *testing.T) {
	c := New()
	if got := c.ElapsedMillis(); got != 0 {
		t.Fatalf("elapsed before start = %d, want 0", got)
	}
	c.Stop()
	if c.Running() || c.ElapsedMillis() != 0 {
		t.Fatalf("stop before start must be a no-op")
	}
}

func TestElapsedRunningAndStopped(t *testing.T) {
	f := &fakeNow{t: time.Unix(1_700_000_000, 0)}
	c := NewWithSource(f.now)
	c.Start()
	f.advance(1500 * time.Millisecond)
	if got := c.ElapsedMillis(); got != 1500 {
		t.Fatalf("running elapsed = %d, want 1500", got)
	}
	c.Stop()
	f.advance(time.Hour)
	if got := c.ElapsedMillis(); got != 1500 {
		t.Fatalf("stopped elapsed = %d, want 1500", got)
	}
	c.Stop()
	if got := c.ElapsedMillis(); got != 1500 {
		t.Fatalf("second stop changed elapsed to %d", got)
	}
	if c.Running() {
		t.Fatalf("clock still running after stop")
	}
}

func TestRealClockAdvances(t *testing.T) {
	c := New()
	c.Start()
	time.Sleep(5 * time.Millisecond)
	if c.Elapsed() <= 0 {
		t.Fatalf("elapsed = %v, want > 0", c.Elapsed())
	}
}
