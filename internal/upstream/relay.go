// Package upstream relays cache misses to a remote bossdb-compatible
// cutout service, grounded on the teacher's pkg/apiclient plain
// net/http.Client pattern (bearer token, bounded timeout, typed API
// errors) and decompressing responses with klauspost/compress/zstd, the
// concrete member of the "known family of compressors" this service
// negotiates over HTTP.
package upstream

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/aplbrain/bossphorus/internal/coord"
)

// ErrRelayReadOnly is returned by PutData: the upstream layer only ever
// fills cache misses, it never accepts writes.
var ErrRelayReadOnly = errors.New("upstream: relay is read-only")

// APIError wraps a non-2xx response from the upstream service.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("upstream: status %d: %s", e.StatusCode, e.Message)
}

// Relay fetches cutouts from a remote bossdb-compatible service over
// plain HTTP, used by internal/layer as the terminal data source before
// falling back to the null layer.
type Relay struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// New creates a Relay against baseURL (e.g. "https://api.bossdb.io"),
// authenticating with token.
func New(baseURL, token string) *Relay {
	return &Relay{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// FetchRegion retrieves the raw, decompressed Z-major bytes for the
// cutout [start,stop) of channel at the given resolution.
func (r *Relay) FetchRegion(ctx context.Context, channel string, resolution int, start, stop coord.Vector3) ([]byte, error) {
	path := fmt.Sprintf("/v1/cutout/%s/%d/%d:%d/%d:%d/%d:%d",
		channel, resolution,
		start.X, stop.X, start.Y, stop.Y, start.Z, stop.Z)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("upstream: build request: %w", err)
	}
	req.Header.Set("Accept", "application/blosc")
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upstream: request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("upstream: read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, &APIError{StatusCode: resp.StatusCode, Message: string(body)}
	}

	return decompress(resp.Header.Get("Content-Encoding"), body)
}

// PutData always fails: the upstream relay never accepts writes, matching
// the teacher's read-only backing-store layers.
func (r *Relay) PutData(ctx context.Context, channel string, resolution int, origin coord.Vector3, data []byte) error {
	return ErrRelayReadOnly
}

// decompress inflates body according to encoding, the value of the
// upstream response's Content-Encoding header. An empty or "identity"
// encoding is returned unchanged.
func decompress(encoding string, body []byte) ([]byte, error) {
	switch encoding {
	case "", "identity":
		return body, nil
	case "zstd":
		dec, err := zstd.NewReader(bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("upstream: zstd reader: %w", err)
		}
		defer dec.Close()
		out, err := io.ReadAll(dec)
		if err != nil {
			return nil, fmt.Errorf("upstream: zstd decompress: %w", err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("upstream: unsupported content-encoding %q", encoding)
	}
}
