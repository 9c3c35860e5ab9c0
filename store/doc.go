// Package store provides Redis-backed implementations of the engine's
// persistence collaborators: a versioned user store whose updates are
// compare-and-swap Lua scripts, and a TTL-bound session handle store.
package store
