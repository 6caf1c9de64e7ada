package dispatch

import (
	"bytes"
	"io"
	"sync"
)

// Sink receives output chunks as they arrive. Chunks need not end on a line
// boundary.
type Sink interface {
	Append(c Chunk)
}

// BufferSink keeps every chunk in memory.
type BufferSink struct {
	mu     sync.Mutex
	chunks []Chunk
}

func (b *BufferSink) Append(c Chunk) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.chunks = append(b.chunks, c)
}

// Chunks returns the chunks received so far.
func (b *BufferSink) Chunks() []Chunk {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]Chunk(nil), b.chunks...)
}

// String returns both streams interleaved in arrival order.
func (b *BufferSink) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	var buf bytes.Buffer
	for _, c := range b.chunks {
		buf.Write(c.Data)
	}
	return buf.String()
}

// Stream returns the output of one stream.
func (b *BufferSink) Stream(s Stream) string {
	b.mu.Lock()
	defer b.mu.Unlock()
	var buf bytes.Buffer
	for _, c := range b.chunks {
		if c.Stream == s {
			buf.Write(c.Data)
		}
	}
	return buf.String()
}

// WriterSink copies chunks to writers. A nil Stderr sends stderr to Stdout.
type WriterSink struct {
	Stdout io.Writer
	Stderr io.Writer
}

// NewWriterSink sends both streams to w.
func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{Stdout: w, Stderr: w}
}

func (w *WriterSink) Append(c Chunk) {
	out := w.Stdout
	if c.Stream == Stderr && w.Stderr != nil {
		out = w.Stderr
	}
	if out != nil {
		_, _ = out.Write(c.Data)
	}
}

// MultiSink fans chunks out to several sinks.
type MultiSink []Sink

func (m MultiSink) Append(c Chunk) {
	for _, s := range m {
		if s != nil {
			s.Append(c)
		}
	}
}
