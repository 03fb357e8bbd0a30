// Package cache provides a concurrency-safe, size-bounded LRU with optional
// per-entry expiry.
//
// Expired entries are dropped lazily on access; PurgeExpired sweeps them
// eagerly for callers that run it on a ticker. The tenant package builds its
// in-process tenant cache on top of LRU.
package cache
