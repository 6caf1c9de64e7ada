package logging

import (
	"context"
	"io"
	"os"
	"sync"
)

// swappableWriter forwards to a writer that can be replaced at runtime.
type swappableWriter struct {
	mu sync.RWMutex
	w  io.Writer
}

func (s *swappableWriter) Write(p []byte) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.w.Write(p)
}

func (s *swappableWriter) set(w io.Writer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.w = w
}

var globalOutput = &swappableWriter{w: os.Stderr}

// SetGlobalOutput redirects terminal-bound log output. Interactive prompts
// point it elsewhere while they own the screen.
func SetGlobalOutput(w io.Writer) {
	globalOutput.set(w)
}

// GetGlobalOutput returns the shared writer that terminal-bound loggers use.
func GetGlobalOutput() io.Writer {
	return globalOutput
}

type contextKey string

const outputWriterKey contextKey = "user_output_writer"

// WithWriter attaches a writer for user-facing output to ctx.
func WithWriter(ctx context.Context, w io.Writer) context.Context {
	return context.WithValue(ctx, outputWriterKey, w)
}

// GetWriter returns the user-facing writer from ctx, or the global output.
func GetWriter(ctx context.Context) io.Writer {
	if w, ok := ctx.Value(outputWriterKey).(io.Writer); ok && w != nil {
		return w
	}
	return GetGlobalOutput()
}
