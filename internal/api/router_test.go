package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/aplbrain/bossphorus/internal/coord"
	"github.com/aplbrain/bossphorus/internal/layer"
)

// fakeManager is a layer.Manager test double recording the last call it
// received and returning a fixed fill value or error.
type fakeManager struct {
	fill      byte
	err       error
	lastWrite []byte
}

func (f *fakeManager) GetData(ctx context.Context, channelURI string, resolution int, origin, destination coord.Vector3) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	shape := destination.Sub(origin)
	buf := make([]byte, shape.Volume())
	for i := range buf {
		buf[i] = f.fill
	}
	return buf, nil
}

func (f *fakeManager) PutData(ctx context.Context, channelURI string, resolution int, origin, destination coord.Vector3, data []byte) error {
	if f.err != nil {
		return f.err
	}
	f.lastWrite = append([]byte(nil), data...)
	return nil
}

func (f *fakeManager) NextLayer() layer.Manager { return nil }

func TestChannelMetadataMatchesSpecShape(t *testing.T) {
	r := NewRouter(&fakeManager{}, prometheus.NewRegistry())
	req := httptest.NewRequest(http.MethodGet, "/v1/collection/col/experiment/exp/channel/chan", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var got ChannelMetadata
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.Name != "chan" || got.Collection != "col" || got.Experiment != "exp" {
		t.Fatalf("unexpected identity fields: %+v", got)
	}
	if got.Type != "image" || got.Datatype != "uint8" || got.DownsampleStatus != "DOWNSAMPLED" {
		t.Fatalf("unexpected fixed fields: %+v", got)
	}
}

func TestGetCutoutReturnsZstdCompressedBody(t *testing.T) {
	mgr := &fakeManager{fill: 5}
	r := NewRouter(mgr, prometheus.NewRegistry())

	req := httptest.NewRequest(http.MethodGet, "/v1/cutout/col/exp/chan/0/0:2/0:2/0:2", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != contentTypeBlosc {
		t.Fatalf("expected Content-Type %q, got %q", contentTypeBlosc, ct)
	}

	dec, err := zstd.NewReader(bytes.NewReader(w.Body.Bytes()))
	if err != nil {
		t.Fatalf("zstd reader: %v", err)
	}
	defer dec.Close()
	got, err := io.ReadAll(dec)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	for _, b := range got {
		if b != 5 {
			t.Fatalf("expected all-5s decompressed body, got %v", got)
		}
	}
	if len(got) != 8 {
		t.Fatalf("expected 8 bytes (2x2x2), got %d", len(got))
	}
}

func TestGetCutoutPrefersJPEGOnAccept(t *testing.T) {
	mgr := &fakeManager{fill: 1}
	r := NewRouter(mgr, prometheus.NewRegistry())

	req := httptest.NewRequest(http.MethodGet, "/v1/cutout/col/exp/chan/0/0:4/0:4/0:1", nil)
	req.Header.Set("Accept", "image/jpeg")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "image/jpeg" {
		t.Fatalf("expected image/jpeg, got %q", ct)
	}
	if w.Body.Len() == 0 {
		t.Fatalf("expected non-empty jpeg body")
	}
}

func TestPostCutoutDecompressesAndReturns201(t *testing.T) {
	mgr := &fakeManager{}
	r := NewRouter(mgr, prometheus.NewRegistry())

	var buf bytes.Buffer
	enc, err := zstd.NewWriter(&buf)
	if err != nil {
		t.Fatalf("zstd writer: %v", err)
	}
	payload := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	if _, err := enc.Write(payload); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := enc.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/v1/cutout/col/exp/chan/0/0:2/0:2/0:2", &buf)
	req.Header.Set("Content-Encoding", "zstd")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if !bytes.Equal(mgr.lastWrite, payload) {
		t.Fatalf("expected manager to receive decompressed payload, got %v", mgr.lastWrite)
	}
}

func TestGetCutoutMapsNullLayerTo502(t *testing.T) {
	mgr := &fakeManager{err: layer.ErrNullLayer}
	r := NewRouter(mgr, prometheus.NewRegistry())

	req := httptest.NewRequest(http.MethodGet, "/v1/cutout/col/exp/chan/0/0:2/0:2/0:2", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d: %s", w.Code, w.Body.String())
	}
}

func TestGetCutoutRejectsMalformedExtent(t *testing.T) {
	r := NewRouter(&fakeManager{}, prometheus.NewRegistry())

	req := httptest.NewRequest(http.MethodGet, "/v1/cutout/col/exp/chan/0/notanum/0:2/0:2", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
}

func TestHealthzReportsOK(t *testing.T) {
	r := NewRouter(&fakeManager{}, prometheus.NewRegistry())
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}
