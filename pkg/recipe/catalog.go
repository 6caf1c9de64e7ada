package recipe

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/grovetools/justrun/errors"
	"github.com/grovetools/justrun/logging"
	"github.com/sirupsen/logrus"
)

// DefaultTTL is how long a discovery result is served from cache.
const DefaultTTL = 5000 * time.Millisecond

// Discoverer produces the raw JSON dump of a justfile.
type Discoverer interface {
	Discover(ctx context.Context) ([]byte, error)
}

// DiscovererFunc adapts a function to the Discoverer interface.
type DiscovererFunc func(ctx context.Context) ([]byte, error)

// Discover calls f.
func (f DiscovererFunc) Discover(ctx context.Context) ([]byte, error) {
	return f(ctx)
}

// Catalog caches parsed recipes for a short time. It is safe for concurrent use.
type Catalog struct {
	mu         sync.Mutex
	discoverer Discoverer
	snapshot   *Snapshot
	ttl        time.Duration
	now        func() time.Time
	logger     *logrus.Entry
}

// Option configures a Catalog.
type Option func(*Catalog)

// WithTTL overrides the cache lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(c *Catalog) { c.ttl = ttl }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(c *Catalog) { c.now = now }
}

// WithLogger overrides the logger used for discovery diagnostics.
func WithLogger(logger *logrus.Entry) Option {
	return func(c *Catalog) { c.logger = logger }
}

// NewCatalog creates a catalog backed by the given discoverer.
func NewCatalog(d Discoverer, opts ...Option) *Catalog {
	c := &Catalog{
		discoverer: d,
		ttl:        DefaultTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logging.NewLogger("catalog")
	}
	return c
}

// Recipes returns every recipe, private ones included. A fresh snapshot is
// served as is; otherwise discovery runs and the snapshot is replaced.
// Discovery failures are logged and yield no recipes; they are never returned.
func (c *Catalog) Recipes(ctx context.Context, forceRefresh bool) []Recipe {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !forceRefresh && c.snapshot != nil && c.now().Sub(c.snapshot.CapturedAt) < c.ttl {
		return slices.Clone(c.snapshot.Recipes)
	}

	recipes, err := c.discover(ctx)
	if err != nil {
		c.logger.WithError(err).WithField("code", errors.GetCode(err)).Warn("Recipe discovery failed")
		// Never serve recipes from a justfile that no longer parses.
		c.snapshot = nil
		return nil
	}

	c.snapshot = &Snapshot{Recipes: recipes, CapturedAt: c.now()}
	c.logger.WithField("count", len(recipes)).Debug("Refreshed recipe catalog")
	return slices.Clone(recipes)
}

func (c *Catalog) discover(ctx context.Context) ([]Recipe, error) {
	data, err := c.discoverer.Discover(ctx)
	if err != nil {
		if _, ok := errors.As(err); ok {
			return nil, err
		}
		return nil, errors.DiscoveryFailed("discovery command failed", err)
	}
	return Parse(data)
}

// Snapshot returns the cached snapshot without triggering discovery.
func (c *Catalog) Snapshot() (Snapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.snapshot == nil {
		return Snapshot{}, false
	}
	return Snapshot{Recipes: slices.Clone(c.snapshot.Recipes), CapturedAt: c.snapshot.CapturedAt}, true
}

// PublicRecipes returns recipes that are not private.
func (c *Catalog) PublicRecipes(ctx context.Context, forceRefresh bool) []Recipe {
	return Public(c.Recipes(ctx, forceRefresh))
}

// Public filters out private recipes.
func Public(recipes []Recipe) []Recipe {
	var out []Recipe
	for _, r := range recipes {
		if !r.Private {
			out = append(out, r)
		}
	}
	return out
}

// RecipesByGroup buckets recipes by group. The "" bucket, always present,
// holds recipes with no group. A recipe listed under several groups appears
// in each of those buckets, once per occurrence of the group.
func (c *Catalog) RecipesByGroup(ctx context.Context, includePrivate, forceRefresh bool) map[string][]Recipe {
	recipes := c.Recipes(ctx, forceRefresh)
	if !includePrivate {
		recipes = Public(recipes)
	}
	return GroupRecipes(recipes)
}

// GroupRecipes buckets an already filtered recipe list.
func GroupRecipes(recipes []Recipe) map[string][]Recipe {
	groups := map[string][]Recipe{"": nil}
	for _, r := range recipes {
		if len(r.Groups) == 0 {
			groups[""] = append(groups[""], r)
			continue
		}
		for _, g := range r.Groups {
			groups[g] = append(groups[g], r)
		}
	}
	return groups
}

// GroupNames returns the bucket names of RecipesByGroup, sorted, "" first.
func (c *Catalog) GroupNames(ctx context.Context, includePrivate, forceRefresh bool) []string {
	return SortedGroupNames(c.RecipesByGroup(ctx, includePrivate, forceRefresh))
}

// SortedGroupNames returns the keys of a grouping in display order.
func SortedGroupNames(groups map[string][]Recipe) []string {
	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FindRecipe looks a recipe up by exact, case-sensitive name.
func (c *Catalog) FindRecipe(ctx context.Context, name string, forceRefresh bool) (Recipe, bool) {
	for _, r := range c.Recipes(ctx, forceRefresh) {
		if r.Name == name {
			return r, true
		}
	}
	return Recipe{}, false
}

// ClearCache drops the snapshot so the next read runs discovery.
func (c *Catalog) ClearCache() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snapshot = nil
}
