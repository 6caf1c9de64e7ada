// Package profiling records wall-clock timings for a single justrun
// invocation: nested spans around expensive calls and a sequence of
// dispatch phases.
package profiling

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// Stopper ends a timed span.
type Stopper interface {
	Stop()
}

// Span is one recorded timing.
type Span struct {
	Name     string
	Depth    int
	Start    time.Time
	Duration time.Duration
}

// Recorder collects spans. The zero value records nothing until Enable is called.
type Recorder struct {
	mu      sync.Mutex
	enabled bool
	began   time.Time
	depth   int
	spans   []*Span
	phase   *Span
	now     func() time.Time
}

// NewRecorder returns a disabled recorder.
func NewRecorder() *Recorder {
	return &Recorder{now: time.Now}
}

var defaultRecorder = NewRecorder()

// Enable turns on the process-wide recorder.
func Enable() { defaultRecorder.Enable() }

// Start opens a span on the process-wide recorder.
func Start(name string) Stopper { return defaultRecorder.Start(name) }

// Mark ends the current phase on the process-wide recorder and opens the next.
func Mark(phase string) { defaultRecorder.Mark(phase) }

// Summarize writes the process-wide recorder's spans to w.
func Summarize(w io.Writer) { defaultRecorder.Summarize(w) }

// Enable starts recording. Calling it twice keeps the first start time.
func (r *Recorder) Enable() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.enabled {
		return
	}
	if r.now == nil {
		r.now = time.Now
	}
	r.enabled = true
	r.began = r.now()
}

// Enabled reports whether the recorder is collecting spans.
func (r *Recorder) Enabled() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.enabled
}

// Start opens a span nested under any span still open.
func (r *Recorder) Start(name string) Stopper {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.enabled {
		return noopStopper{}
	}
	s := &Span{Name: name, Depth: r.depth, Start: r.now()}
	r.spans = append(r.spans, s)
	r.depth++
	return &spanStopper{r: r, s: s}
}

// Mark closes the open phase, if any, and starts a new top-level phase.
// An empty name only closes the current phase.
func (r *Recorder) Mark(phase string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.enabled {
		return
	}
	now := r.now()
	if r.phase != nil {
		r.phase.Duration = now.Sub(r.phase.Start)
		r.phase = nil
	}
	if phase == "" {
		return
	}
	r.phase = &Span{Name: "phase: " + phase, Start: now}
	r.spans = append(r.spans, r.phase)
}

// Spans returns a copy of the recorded spans in start order.
func (r *Recorder) Spans() []Span {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Span, len(r.spans))
	for i, s := range r.spans {
		out[i] = *s
	}
	return out
}

// Summarize prints each span with its share of the total elapsed time.
func (r *Recorder) Summarize(w io.Writer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.enabled {
		return
	}
	now := r.now()
	if r.phase != nil {
		r.phase.Duration = now.Sub(r.phase.Start)
		r.phase = nil
	}
	total := now.Sub(r.began)

	fmt.Fprintln(w, "\n--- Timing Profile ---")
	for _, s := range r.spans {
		pct := 0.0
		if total > 0 {
			pct = float64(s.Duration) / float64(total) * 100
		}
		fmt.Fprintf(w, "%s- %s (%v, %.1f%%)\n", strings.Repeat("  ", s.Depth), s.Name, s.Duration.Round(100*time.Microsecond), pct)
	}
	fmt.Fprintf(w, "total %v\n", total.Round(100*time.Microsecond))
	fmt.Fprintln(w, "--------------------")
}

type spanStopper struct {
	r    *Recorder
	s    *Span
	once sync.Once
}

func (st *spanStopper) Stop() {
	st.once.Do(func() {
		st.r.mu.Lock()
		defer st.r.mu.Unlock()
		st.s.Duration = st.r.now().Sub(st.s.Start)
		if st.r.depth > 0 {
			st.r.depth--
		}
	})
}

type noopStopper struct{}

func (noopStopper) Stop() {}
