// Package bridge keeps the query cache consistent with the realtime stream.
// It subscribes to domain events like any other consumer and translates each
// one into targeted cache mutations: upsert the entity into the cached list
// and entity slot for the active tenant, and invalidate any aggregate
// entries the event made stale.
package bridge
