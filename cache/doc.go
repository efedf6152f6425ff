// Package cache provides a small keyed TTL store used by the aggregation
// pipeline for stale-while-revalidate fallback.
//
// Entries are replaced wholesale and never evicted: freshness is judged at
// read time, so a consumer can still retrieve a stale value when the
// upstream that would refresh it is down.
package cache
