// Package metrics records catalog cache and fetch activity.
//
// Components receive a Recorder and default to NoopRecorder, so metrics cost
// nothing unless a PrometheusRecorder is injected at startup.
package metrics

import "time"

// CacheOutcome enumerates how a page-1 request was served.
type CacheOutcome string

const (
	CacheHit       CacheOutcome = "hit"        // fresh entry served without a remote call
	CacheMiss      CacheOutcome = "miss"       // no usable entry, remote fetched
	CacheExpired   CacheOutcome = "expired"    // entry older than TTL, remote fetched
	CacheStaleUsed CacheOutcome = "stale_used" // remote failed, expired entry served
)

// Recorder defines observability hooks for the catalog layer.
type Recorder interface {
	IncCacheOutcome(outcome CacheOutcome)
	ObserveRemoteFetch(op string, d time.Duration, err error)
	IncCacheWriteFailure()
	IncPaginationDropped()
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) IncCacheOutcome(CacheOutcome)                    {}
func (NoopRecorder) ObserveRemoteFetch(string, time.Duration, error) {}
func (NoopRecorder) IncCacheWriteFailure()                           {}
func (NoopRecorder) IncPaginationDropped()                           {}
