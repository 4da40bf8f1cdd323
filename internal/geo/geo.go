// Package geo resolves peer addresses to countries for the peer tab. The
// lookup is advisory: the UI renders whatever arrives and never waits on it.
package geo

import (
	"context"
	"errors"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
)

// ErrNotFound reports an address the resolver has no location for.
var ErrNotFound = errors.New("geo: address not found")

// Location is a resolved peer origin. Resolvers return a non-empty
// CountryCode or ErrNotFound, never an empty success.
type Location struct {
	CountryCode string
	Country     string
}

// Resolver turns an IP address into a location.
type Resolver interface {
	Lookup(ctx context.Context, ip string) (Location, error)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(ctx context.Context, ip string) (Location, error)

func (f ResolverFunc) Lookup(ctx context.Context, ip string) (Location, error) {
	return f(ctx, ip)
}

// Disabled is the resolver the default build ships: every address is
// unknown, so peer rows simply omit the country column.
var Disabled Resolver = ResolverFunc(func(context.Context, string) (Location, error) {
	return Location{}, ErrNotFound
})

const defaultCacheSize = 4096

type cached struct {
	loc   Location
	found bool
}

// Cache decorates a resolver with an LRU of previous outcomes and collapses
// concurrent lookups for the same address into one upstream call. Hits and
// definite misses are both remembered; transient resolver errors are not.
type Cache struct {
	next    Resolver
	entries *lru.Cache[string, cached]
	group   singleflight.Group
}

// NewCache wraps next with a cache of at most size addresses. A size below
// one takes the default.
func NewCache(next Resolver, size int) *Cache {
	if size < 1 {
		size = defaultCacheSize
	}
	entries, err := lru.New[string, cached](size)
	if err != nil {
		// lru.New only fails on a non-positive size.
		panic(err)
	}
	return &Cache{next: next, entries: entries}
}

func (c *Cache) Lookup(ctx context.Context, ip string) (Location, error) {
	if entry, ok := c.entries.Get(ip); ok {
		if !entry.found {
			return Location{}, ErrNotFound
		}
		return entry.loc, nil
	}

	v, err, _ := c.group.Do(ip, func() (interface{}, error) {
		loc, err := c.next.Lookup(ctx, ip)
		switch {
		case err == nil:
			c.entries.Add(ip, cached{loc: loc, found: true})
			return loc, nil
		case errors.Is(err, ErrNotFound):
			c.entries.Add(ip, cached{})
			return Location{}, err
		default:
			return Location{}, err
		}
	})
	if err != nil {
		return Location{}, err
	}
	return v.(Location), nil
}

// Len reports how many addresses the cache currently holds.
func (c *Cache) Len() int {
	return c.entries.Len()
}
