// Copyright 2025 The nrs-webapp authors
// Licensed under the EUPL-1.2

// Package ratelimit provides a small in-process keyed rate limiter used to
// throttle the mail-sending auth flows.
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const staleAfter = 10 * time.Minute

type entry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// Keyed tracks one token bucket per key, e.g. per username or email.
type Keyed struct {
	mu      sync.Mutex
	entries map[string]*entry
	limit   rate.Limit
	burst   int
	now     func() time.Time
}

// PerMinute creates a limiter allowing n events per minute per key.
func PerMinute(n int) *Keyed {
	return &Keyed{
		entries: make(map[string]*entry),
		limit:   rate.Every(time.Minute / time.Duration(n)),
		burst:   n,
		now:     time.Now,
	}
}

// Allow reports whether the event for key may proceed.
func (k *Keyed) Allow(key string) bool {
	k.mu.Lock()
	defer k.mu.Unlock()

	e, ok := k.entries[key]
	if !ok {
		e = &entry{limiter: rate.NewLimiter(k.limit, k.burst)}
		k.entries[key] = e
	}
	e.lastSeen = k.now()

	if len(k.entries) > 1024 {
		k.prune()
	}

	return e.limiter.Allow()
}

// prune drops buckets that have been idle long enough to be full again.
// Caller holds the lock.
func (k *Keyed) prune() {
	cutoff := k.now().Add(-staleAfter)
	for key, e := range k.entries {
		if e.lastSeen.Before(cutoff) {
			delete(k.entries, key)
		}
	}
}
