// Package cache provides a cache-aside store for entities resolved from the
// training registry during one client session.
//
// A Store holds values in insertion order. Lookups use a typed Key that is
// validated with struct tags and knows how to match a cached value, so a
// value loaded under one key shape can still be found by another:
//
//	nodes := cache.New[NodeKey, *NodeInfo]("nodes", logger)
//	node, err := nodes.Resolve(ctx, key, func(ctx context.Context) (*NodeInfo, error) {
//		return fetchNode(ctx, key)
//	})
//
// Entries are never evicted implicitly. Use Invalidate, Refresh or Reset
// when the remote copy is known to have changed.
package cache
