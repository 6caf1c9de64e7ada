package sessions_test

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grovetools/justrun/errors"
	"github.com/grovetools/justrun/pkg/sessions"
	"github.com/grovetools/justrun/pkg/sessions/sessionstest"
)

func quietLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func newManager(b sessions.Backend) *sessions.Manager {
	return sessions.NewManager(b, sessions.WithLogger(quietLogger()))
}

func TestResolveOrCreateReusesLiveSession(t *testing.T) {
	ctx := context.Background()
	backend := &sessionstest.Backend{}
	m := newManager(backend)

	first, err := m.ResolveOrCreate(ctx, "Just: build", true)
	require.NoError(t, err)
	second, err := m.ResolveOrCreate(ctx, "Just: build", true)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, m.Len())
	assert.Equal(t, 1, backend.Created())
}

func TestResolveOrCreateReplacesDeadSession(t *testing.T) {
	ctx := context.Background()
	backend := &sessionstest.Backend{}
	m := newManager(backend)

	first, err := m.ResolveOrCreate(ctx, "Just: build", true)
	require.NoError(t, err)
	backend.Terminals[0].Kill()

	second, err := m.ResolveOrCreate(ctx, "Just: build", true)
	require.NoError(t, err)

	assert.NotSame(t, first, second)
	assert.True(t, second.Alive(ctx))
	assert.Equal(t, 1, m.Len())
	assert.Equal(t, 2, backend.Created())

	got, ok := m.Get("Just: build")
	require.True(t, ok)
	assert.Same(t, second, got)
}

func TestResolveOrCreateWithoutReuse(t *testing.T) {
	ctx := context.Background()
	backend := &sessionstest.Backend{}
	m := newManager(backend)

	first, err := m.ResolveOrCreate(ctx, "Just: build", false)
	require.NoError(t, err)
	second, err := m.ResolveOrCreate(ctx, "Just: build", false)
	require.NoError(t, err)

	assert.NotSame(t, first, second)
	assert.Equal(t, 1, m.Len())
	assert.Equal(t, 2, backend.Created())
}

func TestResolveOrCreateSeparatesNames(t *testing.T) {
	ctx := context.Background()
	m := newManager(&sessionstest.Backend{})

	_, err := m.ResolveOrCreate(ctx, "Just: build", true)
	require.NoError(t, err)
	_, err = m.ResolveOrCreate(ctx, "Just: test", true)
	require.NoError(t, err)

	assert.Equal(t, 2, m.Len())
}

func TestResolveOrCreateAdoptsExisting(t *testing.T) {
	ctx := context.Background()
	leftover := sessionstest.NewTerminal("just-build")
	backend := &sessionstest.Backend{Adoptable: map[string]*sessionstest.Terminal{"Just: build": leftover}}
	m := newManager(backend)

	s, err := m.ResolveOrCreate(ctx, "Just: build", true)
	require.NoError(t, err)
	assert.True(t, s.Adopted)
	assert.Equal(t, "just-build", s.Terminal.ID())
	assert.Zero(t, backend.Created())

	// Without reuse the leftover is ignored.
	s, err = m.ResolveOrCreate(ctx, "Just: build", false)
	require.NoError(t, err)
	assert.False(t, s.Adopted)
	assert.Equal(t, 1, backend.Created())
}

func TestResolveOrCreateSkipsDeadAdoption(t *testing.T) {
	ctx := context.Background()
	leftover := sessionstest.NewTerminal("just-build")
	leftover.Kill()
	backend := &sessionstest.Backend{Adoptable: map[string]*sessionstest.Terminal{"Just: build": leftover}}
	m := newManager(backend)

	s, err := m.ResolveOrCreate(ctx, "Just: build", true)
	require.NoError(t, err)
	assert.False(t, s.Adopted)
	assert.Equal(t, 1, backend.Created())
}

func TestResolveOrCreateErrors(t *testing.T) {
	ctx := context.Background()

	backend := &sessionstest.Backend{CreateErr: fmt.Errorf("boom")}
	m := newManager(backend)
	_, err := m.ResolveOrCreate(ctx, "Just: build", true)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeSessionFailed))
	assert.Zero(t, m.Len())

	backend = &sessionstest.Backend{StartDead: true}
	m = newManager(backend)
	_, err = m.ResolveOrCreate(ctx, "Just: build", true)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeSessionFailed))
	assert.True(t, backend.Terminals[0].Closed())
	assert.Zero(t, m.Len())
}

func TestResolveOrCreateConcurrent(t *testing.T) {
	ctx := context.Background()
	backend := &sessionstest.Backend{}
	m := newManager(backend)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.ResolveOrCreate(ctx, "Just: build", true)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, backend.Created())
	assert.Equal(t, 1, m.Len())
}

func TestManagerClose(t *testing.T) {
	ctx := context.Background()
	backend := &sessionstest.Backend{}
	m := newManager(backend)

	_, err := m.ResolveOrCreate(ctx, "Just: build", true)
	require.NoError(t, err)
	require.NoError(t, m.Close())

	assert.True(t, backend.Terminals[0].Closed())
	assert.Zero(t, m.Len())
}
