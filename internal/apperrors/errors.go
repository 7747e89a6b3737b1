// Package apperrors defines the sentinel error kinds shared across the
// cache proxy, one per failure class named in the error handling
// design. Each is a plain package-level error so callers compare with
// errors.Is; the doc comment on each records the HTTP status the API
// layer maps it to.
package apperrors

import "errors"

var (
	// ErrInputMalformed indicates an unparseable coordinate string or a
	// negative/zero-inverted shape.
	//
	// HTTP mapping: 400 Bad Request.
	ErrInputMalformed = errors.New("apperrors: malformed input")

	// ErrUpstreamUnavailable indicates the next layer's fetch failed.
	// When the terminal layer is Null, the per-request fatal failure is
	// reported as layer.ErrNullLayer, a separate sentinel that does not
	// wrap this one.
	//
	// HTTP mapping: 502 Bad Gateway. internal/api applies this status to
	// layer.ErrNullLayer; other next-layer fetch errors reach it as 500.
	ErrUpstreamUnavailable = errors.New("apperrors: upstream unavailable")

	// ErrLocalIO indicates a block file could not be read or written.
	// Reads fall through to the next layer; writes log and continue.
	//
	// HTTP mapping: 500 Internal Server Error.
	ErrLocalIO = errors.New("apperrors: local I/O failure")

	// ErrMetadataIO indicates the metadata store failed. The access is
	// not recorded; no cache-state invariant is broken since metadata
	// can only lag, never lead, the filesystem.
	//
	// HTTP mapping: 500 Internal Server Error (logged, non-fatal to the
	// caller's read).
	ErrMetadataIO = errors.New("apperrors: metadata store failure")

	// ErrPipelineOverflow indicates the usage channel could not accept
	// a send. The cached read still succeeds.
	//
	// HTTP mapping: none — never surfaced to a caller, logged only.
	ErrPipelineOverflow = errors.New("apperrors: usage pipeline overflow")
)
