// Package cache holds the two caches in front of the archive reader: a
// positive tier mapping request paths to member bytes and a negative tier
// remembering paths that no archive contains. Both tiers share one Store,
// distinguished by key prefix. Stores come in three flavours: an in-process
// ristretto cache, Redis, and a tiered combination of the two. Client adds the
// add-then-replace write policy, logging and metrics on top of a Store.
package cache
