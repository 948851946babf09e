// Package cache provides the read-through query cache the realtime bridge
// mutates. Keys are structured (kind, scope, id) triples so callers can
// address a tenant's cached list, a single entity slot, or a derived
// aggregate without string formatting conventions leaking across packages.
package cache
