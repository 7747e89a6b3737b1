// Package usage implements the single-consumer usage-event pipeline:
// every layer that touches a block on disk sends its key over a
// process-wide channel to one consumer goroutine, so the
// request-count/last-accessed bookkeeping (and the eviction sweep it
// triggers) never contends with the read/write hot path.
//
// Ported from the original's usage_tracker.rs: a package-level,
// mutex-guarded sender that panics if used before Run, and Run itself
// panics if called a second time — the original's "may only be called
// once" guard on its static SENDER_MUTEX.
package usage

import (
	"sync"

	"github.com/aplbrain/bossphorus/internal/telemetry/logger"
)

// Tracker consumes a single access event. Implementations must not
// block for long: the pipeline has exactly one consumer goroutine, and
// while a slow Tracker lets the channel buffer fill, producers' sends
// are dropped (with a warning) rather than blocking.
type Tracker interface {
	LogRequest(key string)
}

var (
	runOnce    sync.Once
	ranAtLeast bool

	senderMu sync.Mutex
	sender   chan<- string
)

// Run starts the pipeline's consumer goroutine backed by tracker and
// installs the package-level sender. It panics if called more than once,
// matching the original's "run() may only be called once" guard.
func Run(tracker Tracker) {
	started := false
	runOnce.Do(func() {
		started = true

		ch := make(chan string, 256)

		senderMu.Lock()
		sender = ch
		ranAtLeast = true
		senderMu.Unlock()

		go func() {
			for key := range ch {
				tracker.LogRequest(key)
			}
		}()
	})

	if !started {
		panic("usage: Run may only be called once")
	}
}

// Send publishes key to the pipeline. It panics if Run has not been
// called yet, matching get_sender()'s "usage_tracker.run() not called"
// panic — Run is expected to be called once during process startup
// (internal/app does so) before serving any requests. internal/layer
// publishes through TrySend instead.
func Send(key string) {
	senderMu.Lock()
	ch := sender
	ok := ranAtLeast
	senderMu.Unlock()

	if !ok {
		panic("usage: Run() not called")
	}

	select {
	case ch <- key:
	default:
		logger.Warn("usage: pipeline full, dropping access event", "key", key)
	}
}

// TrySend publishes key if the pipeline has been started, silently doing
// nothing otherwise. Useful for code paths (tests, tools) that may run
// with or without the usage pipeline active.
func TrySend(key string) {
	senderMu.Lock()
	ch := sender
	ok := ranAtLeast
	senderMu.Unlock()

	if !ok {
		return
	}
	select {
	case ch <- key:
	default:
		logger.Warn("usage: pipeline full, dropping access event", "key", key)
	}
}
