// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package traceroute

import (
	"context"
	"fmt"
	"slices"

	lru "github.com/hashicorp/golang-lru/v2"
)

var _ Resolver = (*cachedResolver)(nil)

// cachedResolver remembers successful lookups of the wrapped resolver.
// Failed lookups are never cached.
type cachedResolver struct {
	next  Resolver
	hosts *lru.Cache[string, []string]
	names *lru.Cache[string, []string]
}

// NewCachedResolver wraps the resolver with LRU caches holding up to size
// entries each for forward and reverse lookups.
// A size of zero or less disables caching and returns the resolver as is.
func NewCachedResolver(next Resolver, size int) (Resolver, error) {
	if size <= 0 {
		return next, nil
	}

	hosts, err := lru.New[string, []string](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create host cache: %w", err)
	}
	names, err := lru.New[string, []string](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create name cache: %w", err)
	}

	return &cachedResolver{next: next, hosts: hosts, names: names}, nil
}

func (c *cachedResolver) LookupHost(ctx context.Context, host string) ([]string, error) {
	return cachedLookup(ctx, c.hosts, host, c.next.LookupHost)
}

func (c *cachedResolver) LookupAddr(ctx context.Context, addr string) ([]string, error) {
	return cachedLookup(ctx, c.names, addr, c.next.LookupAddr)
}

func cachedLookup(
	ctx context.Context,
	cache *lru.Cache[string, []string],
	key string,
	lookup func(context.Context, string) ([]string, error),
) ([]string, error) {
	if v, ok := cache.Get(key); ok {
		return slices.Clone(v), nil
	}

	v, err := lookup(ctx, key)
	if err != nil {
		return nil, err
	}
	cache.Add(key, slices.Clone(v))
	return v, nil
}
