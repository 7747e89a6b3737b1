package logger

import (
	"context"
	"time"
)

type contextKey struct{}

var logContextKey = contextKey{}

// Context field keys, shared between appendContextFields and callers that
// want to match on them (e.g. in tests).
const (
	KeyChannel    = "channel"
	KeyResolution = "resolution"
	KeyCacheRoot  = "cache_root"
	KeyBlockKey   = "block_key"
	KeyRequestID  = "request_id"
)

// LogContext holds request-scoped fields that get attached to every log
// line emitted through the *Ctx logging functions: which channel and
// resolution a request touched, which cache root and block key a cache
// operation resolved to, and a request ID for correlating a cutout
// request across the layer chain.
type LogContext struct {
	RequestID  string
	Channel    string
	Resolution int
	CacheRoot  string
	BlockKey   string
	StartTime  time.Time
}

// WithContext returns a new context carrying lc.
func WithContext(ctx context.Context, lc *LogContext) context.Context {
	return context.WithValue(ctx, logContextKey, lc)
}

// FromContext retrieves the LogContext from ctx, or nil if absent.
func FromContext(ctx context.Context) *LogContext {
	if ctx == nil {
		return nil
	}
	lc, _ := ctx.Value(logContextKey).(*LogContext)
	return lc
}

// NewLogContext creates a LogContext for a request identified by requestID.
func NewLogContext(requestID string) *LogContext {
	return &LogContext{RequestID: requestID, StartTime: time.Now()}
}

// Clone returns a copy of lc.
func (lc *LogContext) Clone() *LogContext {
	if lc == nil {
		return nil
	}
	clone := *lc
	return &clone
}

// WithChannel returns a copy with Channel and Resolution set.
func (lc *LogContext) WithChannel(channel string, resolution int) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.Channel = channel
		clone.Resolution = resolution
	}
	return clone
}

// WithBlock returns a copy with CacheRoot and BlockKey set.
func (lc *LogContext) WithBlock(cacheRoot, blockKey string) *LogContext {
	clone := lc.Clone()
	if clone != nil {
		clone.CacheRoot = cacheRoot
		clone.BlockKey = blockKey
	}
	return clone
}

// DurationMs returns the duration since StartTime in milliseconds.
func (lc *LogContext) DurationMs() float64 {
	if lc == nil || lc.StartTime.IsZero() {
		return 0
	}
	return float64(time.Since(lc.StartTime).Microseconds()) / 1000.0
}
