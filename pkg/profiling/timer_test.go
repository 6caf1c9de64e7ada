package profiling

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestRecorder() (*Recorder, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	r := &Recorder{now: clock.now}
	r.Enable()
	return r, clock
}

func TestDisabledRecorderIsNoop(t *testing.T) {
	r := NewRecorder()
	r.Start("discover").Stop()
	r.Mark("selecting")
	assert.Empty(t, r.Spans())

	var buf bytes.Buffer
	r.Summarize(&buf)
	assert.Empty(t, buf.String())
}

func TestNestedSpans(t *testing.T) {
	r, clock := newTestRecorder()

	outer := r.Start("discover")
	clock.advance(2 * time.Millisecond)
	inner := r.Start("parse")
	clock.advance(time.Millisecond)
	inner.Stop()
	outer.Stop()
	outer.Stop()

	spans := r.Spans()
	require.Len(t, spans, 2)
	assert.Equal(t, Span{Name: "discover", Depth: 0, Start: spans[0].Start, Duration: 3 * time.Millisecond}, spans[0])
	assert.Equal(t, 1, spans[1].Depth)
	assert.Equal(t, time.Millisecond, spans[1].Duration)

	next := r.Start("dispatch")
	next.Stop()
	assert.Equal(t, 0, r.Spans()[2].Depth)
}

func TestPhases(t *testing.T) {
	r, clock := newTestRecorder()

	r.Mark("selecting")
	clock.advance(5 * time.Millisecond)
	r.Mark("dispatching")
	clock.advance(15 * time.Millisecond)

	var buf bytes.Buffer
	r.Summarize(&buf)

	spans := r.Spans()
	require.Len(t, spans, 2)
	assert.Equal(t, "phase: selecting", spans[0].Name)
	assert.Equal(t, 5*time.Millisecond, spans[0].Duration)
	assert.Equal(t, 15*time.Millisecond, spans[1].Duration)

	out := buf.String()
	assert.Contains(t, out, "- phase: selecting (5ms, 25.0%)")
	assert.Contains(t, out, "- phase: dispatching (15ms, 75.0%)")
	assert.Contains(t, out, "total 20ms")
}
