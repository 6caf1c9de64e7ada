package dispatch

import (
	"context"
	stderrors "errors"
	"io"
	"iter"
	"os/exec"
	"sync"

	"github.com/grovetools/justrun/command"
	"github.com/grovetools/justrun/errors"
)

// Stream identifies the pipe a chunk was read from.
type Stream int

const (
	Stdout Stream = iota
	Stderr
)

func (s Stream) String() string {
	if s == Stderr {
		return "stderr"
	}
	return "stdout"
}

// Chunk is one read from a process pipe.
type Chunk struct {
	Stream Stream
	Data   []byte
}

// SpawnRequest describes a process to start. A nil Env inherits the
// environment of justrun.
type SpawnRequest struct {
	Binary string
	Args   []string
	Dir    string
	Env    []string
}

// Process is a started process.
type Process interface {
	// Chunks yields output until both pipes are closed. It can be consumed once.
	Chunks() iter.Seq[Chunk]
	// Wait returns the exit code. Call it after Chunks is drained.
	Wait() (int, error)
}

// Spawner starts processes. A start failure is reported as an
// ErrCodeSpawnFailed error, never as an exit code.
type Spawner interface {
	Spawn(ctx context.Context, req SpawnRequest) (Process, error)
}

const chunkSize = 32 * 1024

// ProcessSpawner starts real processes through a SafeBuilder.
type ProcessSpawner struct {
	builder *command.SafeBuilder
}

func NewProcessSpawner(builder *command.SafeBuilder) *ProcessSpawner {
	return &ProcessSpawner{builder: builder}
}

func (s *ProcessSpawner) Spawn(ctx context.Context, req SpawnRequest) (Process, error) {
	binary, err := s.builder.LookPath(req.Binary)
	if err != nil {
		return nil, errors.SpawnFailed(req.Binary, err)
	}
	cmd, err := s.builder.Build(ctx, binary, req.Args...)
	if err != nil {
		return nil, errors.SpawnFailed(req.Binary, err)
	}
	// A started recipe runs to its own completion. Cancelling ctx after this
	// point does not stop it.
	cmd.WithoutTimeout(context.WithoutCancel(ctx)).InDir(req.Dir)

	execCmd := cmd.Exec()
	execCmd.Env = req.Env
	stdout, err := execCmd.StdoutPipe()
	if err != nil {
		cmd.Release()
		return nil, errors.SpawnFailed(req.Binary, err)
	}
	stderr, err := execCmd.StderrPipe()
	if err != nil {
		cmd.Release()
		return nil, errors.SpawnFailed(req.Binary, err)
	}
	if err := execCmd.Start(); err != nil {
		cmd.Release()
		return nil, errors.SpawnFailed(req.Binary, err)
	}

	p := &process{
		cmd:     execCmd,
		release: cmd.Release,
		chunks:  make(chan Chunk, 16),
	}
	var wg sync.WaitGroup
	wg.Add(2)
	go p.pump(Stdout, stdout, &wg)
	go p.pump(Stderr, stderr, &wg)
	go func() {
		wg.Wait()
		close(p.chunks)
	}()
	return p, nil
}

type process struct {
	cmd     *exec.Cmd
	release func()
	chunks  chan Chunk

	once sync.Once
}

func (p *process) pump(stream Stream, r io.Reader, wg *sync.WaitGroup) {
	defer wg.Done()
	buf := make([]byte, chunkSize)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			p.chunks <- Chunk{Stream: stream, Data: append([]byte(nil), buf[:n]...)}
		}
		if err != nil {
			return
		}
	}
}

func (p *process) Chunks() iter.Seq[Chunk] {
	return func(yield func(Chunk) bool) {
		first := false
		p.once.Do(func() { first = true })
		if !first {
			return
		}
		for c := range p.chunks {
			if !yield(c) {
				return
			}
		}
	}
}

func (p *process) Wait() (int, error) {
	// Discard whatever the consumer left unread so the pumps reach EOF.
	for range p.chunks {
	}
	defer p.release()

	err := p.cmd.Wait()
	if err == nil {
		return 0, nil
	}
	var exitErr *exec.ExitError
	if stderrors.As(err, &exitErr) {
		return exitErr.ExitCode(), nil
	}
	return -1, err
}
