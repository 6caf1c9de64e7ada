package recipe

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDiscoverer struct {
	mu    sync.Mutex
	calls int
	data  string
	err   error
}

func (f *fakeDiscoverer) Discover(ctx context.Context) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return []byte(f.data), nil
}

func (f *fakeDiscoverer) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func quietLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

const groupedDump = `{"recipes":{
	"build":{"name":"build","parameters":[],"attributes":[{"group":"ci"}],"private":false},
	"lint":{"name":"lint","parameters":[],"attributes":[{"group":"ci"},{"group":"dev"}],"private":false},
	"fmt":{"name":"fmt","parameters":[],"attributes":[],"private":false},
	"_setup":{"name":"_setup","parameters":[],"attributes":[{"group":"dev"}],"private":true},
	"Build":{"name":"Build","parameters":[],"attributes":[],"private":false}
}}`

func newTestCatalog(d Discoverer, clock *fakeClock) *Catalog {
	return NewCatalog(d, WithClock(clock.Now), WithLogger(quietLogger()))
}

func TestRecipesCachedWithinTTL(t *testing.T) {
	d := &fakeDiscoverer{data: deployDump}
	clock := &fakeClock{now: time.Unix(1000, 0)}
	c := newTestCatalog(d, clock)

	first := c.Recipes(context.Background(), false)
	clock.Advance(4999 * time.Millisecond)
	second := c.Recipes(context.Background(), false)

	assert.Equal(t, 1, d.Calls())
	assert.Equal(t, first, second)
}

func TestRecipesRefreshAfterTTL(t *testing.T) {
	d := &fakeDiscoverer{data: deployDump}
	clock := &fakeClock{now: time.Unix(1000, 0)}
	c := newTestCatalog(d, clock)

	c.Recipes(context.Background(), false)
	clock.Advance(DefaultTTL)
	c.Recipes(context.Background(), false)

	assert.Equal(t, 2, d.Calls())

	snap, ok := c.Snapshot()
	require.True(t, ok)
	assert.Equal(t, clock.Now(), snap.CapturedAt, "refresh replaces data and timestamp together")
}

func TestForceRefreshAndClearCache(t *testing.T) {
	d := &fakeDiscoverer{data: deployDump}
	clock := &fakeClock{now: time.Unix(1000, 0)}
	c := newTestCatalog(d, clock)

	c.Recipes(context.Background(), false)
	c.Recipes(context.Background(), true)
	assert.Equal(t, 2, d.Calls())

	c.ClearCache()
	_, ok := c.Snapshot()
	assert.False(t, ok)
	c.Recipes(context.Background(), false)
	assert.Equal(t, 3, d.Calls())
}

func TestWithTTL(t *testing.T) {
	d := &fakeDiscoverer{data: deployDump}
	clock := &fakeClock{now: time.Unix(1000, 0)}
	c := NewCatalog(d, WithClock(clock.Now), WithLogger(quietLogger()), WithTTL(time.Minute))

	c.Recipes(context.Background(), false)
	clock.Advance(30 * time.Second)
	c.Recipes(context.Background(), false)
	assert.Equal(t, 1, d.Calls())
}

func TestDiscoveryFailureYieldsEmpty(t *testing.T) {
	tests := map[string]*fakeDiscoverer{
		"command error": {err: fmt.Errorf("just: not found")},
		"malformed":     {data: `{"recipes": 3}`},
	}
	for name, d := range tests {
		t.Run(name, func(t *testing.T) {
			clock := &fakeClock{now: time.Unix(1000, 0)}
			c := newTestCatalog(d, clock)

			assert.Empty(t, c.Recipes(context.Background(), false))
			c.Recipes(context.Background(), false)
			assert.Equal(t, 2, d.Calls(), "failures are not cached")
		})
	}
}

func TestFailedRefreshDropsSnapshot(t *testing.T) {
	d := &fakeDiscoverer{data: deployDump}
	clock := &fakeClock{now: time.Unix(1000, 0)}
	c := newTestCatalog(d, clock)

	require.NotEmpty(t, c.Recipes(context.Background(), false))
	_, ok := c.Snapshot()
	require.True(t, ok)

	d.mu.Lock()
	d.err = fmt.Errorf("justfile: syntax error")
	d.mu.Unlock()

	assert.Empty(t, c.Recipes(context.Background(), true))
	_, ok = c.Snapshot()
	assert.False(t, ok)
	assert.Empty(t, c.Recipes(context.Background(), false))
	assert.Equal(t, 3, d.Calls())
}

func TestConcurrentReadsDiscoverOnce(t *testing.T) {
	d := &fakeDiscoverer{data: groupedDump}
	clock := &fakeClock{now: time.Unix(1000, 0)}
	c := newTestCatalog(d, clock)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Recipes(context.Background(), false)
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, d.Calls())
}

func TestPublicRecipes(t *testing.T) {
	c := newTestCatalog(&fakeDiscoverer{data: groupedDump}, &fakeClock{now: time.Unix(1000, 0)})

	var names []string
	for _, r := range c.PublicRecipes(context.Background(), false) {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{"build", "lint", "fmt", "Build"}, names)
}

func TestRecipesByGroup(t *testing.T) {
	c := newTestCatalog(&fakeDiscoverer{data: groupedDump}, &fakeClock{now: time.Unix(1000, 0)})
	ctx := context.Background()

	groups := c.RecipesByGroup(ctx, false, false)
	assert.Equal(t, []string{"build", "lint"}, names(groups["ci"]))
	assert.Equal(t, []string{"lint"}, names(groups["dev"]))
	assert.Equal(t, []string{"fmt", "Build"}, names(groups[""]))

	withPrivate := c.RecipesByGroup(ctx, true, false)
	assert.Equal(t, []string{"lint", "_setup"}, names(withPrivate["dev"]))

	assert.Equal(t, []string{"", "ci", "dev"}, c.GroupNames(ctx, false, false))
}

func TestRecipesByGroupAlwaysHasUngroupedKey(t *testing.T) {
	dump := `{"recipes":{"a":{"attributes":[{"group":"x"}]}}}`
	c := newTestCatalog(&fakeDiscoverer{data: dump}, &fakeClock{now: time.Unix(1000, 0)})

	groups := c.RecipesByGroup(context.Background(), false, false)
	_, ok := groups[""]
	assert.True(t, ok)
	assert.Empty(t, groups[""])

	empty := newTestCatalog(&fakeDiscoverer{err: fmt.Errorf("boom")}, &fakeClock{now: time.Unix(1000, 0)})
	assert.Contains(t, empty.RecipesByGroup(context.Background(), true, false), "")
}

func TestFindRecipeIsCaseSensitive(t *testing.T) {
	c := newTestCatalog(&fakeDiscoverer{data: groupedDump}, &fakeClock{now: time.Unix(1000, 0)})
	ctx := context.Background()

	r, ok := c.FindRecipe(ctx, "Build", false)
	require.True(t, ok)
	assert.Equal(t, "Build", r.Name)

	r, ok = c.FindRecipe(ctx, "build", false)
	require.True(t, ok)
	assert.Equal(t, "build", r.Name)

	_, ok = c.FindRecipe(ctx, "BUILD", false)
	assert.False(t, ok)

	_, ok = c.FindRecipe(ctx, "_setup", false)
	assert.True(t, ok, "private recipes can be found by name")
}

func TestMatch(t *testing.T) {
	recipes, err := Parse([]byte(groupedDump))
	require.NoError(t, err)

	all, err := Match(recipes, nil)
	require.NoError(t, err)
	assert.Len(t, all, len(recipes))

	got, err := Match(recipes, []string{"b*"})
	require.NoError(t, err)
	assert.Equal(t, []string{"build"}, names(got))

	got, err = Match(recipes, []string{"*", "!_*"})
	require.NoError(t, err)
	assert.Equal(t, []string{"build", "lint", "fmt", "Build"}, names(got))
}

func names(recipes []Recipe) []string {
	var out []string
	for _, r := range recipes {
		out = append(out, r.Name)
	}
	return out
}
