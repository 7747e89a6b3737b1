package api

import (
	"bytes"
	"errors"
	"image"
	"image/jpeg"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/klauspost/compress/zstd"

	"github.com/aplbrain/bossphorus/internal/apperrors"
	"github.com/aplbrain/bossphorus/internal/coord"
	"github.com/aplbrain/bossphorus/internal/layer"
	"github.com/aplbrain/bossphorus/internal/telemetry/logger"
)

const contentTypeBlosc = "application/blosc"

// handleGetCutout serves GET
// /v1/cutout/{collection}/{experiment}/{channel}/{res}/{x}/{y}/{z}.
//
// The response is a raw-byte zstd-compressed stream (application/blosc)
// by default, or a JPEG filmstrip when the request's Accept header
// prefers image/jpeg.
func (a *API) handleGetCutout(w http.ResponseWriter, r *http.Request) {
	uri, resolution, origin, destination, ok := a.parseCutoutRequest(w, r)
	if !ok {
		return
	}

	data, err := a.Manager.GetData(r.Context(), uri, resolution, origin, destination)
	if err != nil {
		a.writeLayerError(w, r, "cutout fetch failed", err)
		return
	}

	if wantsJPEG(r) {
		shape := destination.Sub(origin)
		filmstrip, err := encodeJPEGFilmstrip(data, int(shape.X), int(shape.Y), int(shape.Z))
		if err != nil {
			InternalServerError(w, "encode jpeg filmstrip: "+err.Error())
			return
		}
		w.Header().Set("Content-Type", "image/jpeg")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(filmstrip)
		return
	}

	compressed, err := compressZstd(data)
	if err != nil {
		InternalServerError(w, "compress response: "+err.Error())
		return
	}
	w.Header().Set("Content-Type", contentTypeBlosc)
	w.Header().Set("Content-Encoding", "zstd")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(compressed)
}

// handlePostCutout serves POST
// /v1/cutout/{collection}/{experiment}/{channel}/{res}/{x}/{y}/{z} with
// a compressed raw-byte body.
func (a *API) handlePostCutout(w http.ResponseWriter, r *http.Request) {
	uri, resolution, origin, destination, ok := a.parseCutoutRequest(w, r)
	if !ok {
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		BadRequest(w, "read request body: "+err.Error())
		return
	}
	data, err := decompressRequestBody(r.Header.Get("Content-Encoding"), body)
	if err != nil {
		BadRequest(w, "decompress request body: "+err.Error())
		return
	}

	if err := a.Manager.PutData(r.Context(), uri, resolution, origin, destination, data); err != nil {
		a.writeLayerError(w, r, "cutout write failed", err)
		return
	}

	w.WriteHeader(http.StatusCreated)
}

// parseCutoutRequest extracts and validates the path parameters common
// to both the GET and POST cutout routes. It writes the error response
// itself and returns ok=false on a parse failure. On success, *r is
// given a context carrying the request's LogContext enriched with the
// channel and resolution, so every subsequent log line the handler emits
// — including ones from within internal/layer — carries them. The
// requestLogger middleware's request-completed line does not: it uses
// its own request value, whose context has only the request ID.
func (a *API) parseCutoutRequest(w http.ResponseWriter, r *http.Request) (uri string, resolution int, origin, destination coord.Vector3, ok bool) {
	collection := chi.URLParam(r, "collection")
	experiment := chi.URLParam(r, "experiment")
	channel := chi.URLParam(r, "channel")

	res, err := parseResolution(chi.URLParam(r, "res"))
	if err != nil {
		BadRequest(w, err.Error())
		return "", 0, coord.Vector3{}, false
	}

	o, d, err := parseCutoutBounds(chi.URLParam(r, "x"), chi.URLParam(r, "y"), chi.URLParam(r, "z"))
	if err != nil {
		BadRequest(w, err.Error())
		return "", 0, coord.Vector3{}, false
	}

	uri = channelURI(collection, experiment, channel)
	if lc := logger.FromContext(r.Context()); lc != nil {
		*r = *r.WithContext(logger.WithContext(r.Context(), lc.WithChannel(uri, res)))
	}

	return uri, res, o, d, true
}

// writeLayerError maps an error from a layer.Manager call to an HTTP
// problem response, logging the underlying cause with r's LogContext
// (request ID, channel, resolution) attached.
func (a *API) writeLayerError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	if errors.Is(err, apperrors.ErrInputMalformed) {
		BadRequest(w, err.Error())
		return
	}
	if errors.Is(err, layer.ErrNullLayer) {
		logger.WarnCtx(r.Context(), "api: "+msg, "error", err)
		BadGateway(w, "no layer could serve this cutout")
		return
	}
	logger.WarnCtx(r.Context(), "api: "+msg, "error", err)
	InternalServerError(w, err.Error())
}

// wantsJPEG reports whether the request's Accept header prefers a JPEG
// filmstrip over the default compressed raw-byte stream.
func wantsJPEG(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "image/jpeg") && !strings.Contains(accept, contentTypeBlosc)
}

// compressZstd compresses data with the same compressor family the
// upstream relay decompresses responses with.
func compressZstd(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	enc, err := zstd.NewWriter(&buf)
	if err != nil {
		return nil, err
	}
	if _, err := enc.Write(data); err != nil {
		_ = enc.Close()
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// decompressRequestBody inflates a POST body per its Content-Encoding
// header; an empty or "identity" encoding is returned unchanged.
func decompressRequestBody(encoding string, body []byte) ([]byte, error) {
	switch encoding {
	case "", "identity":
		return body, nil
	case "zstd":
		dec, err := zstd.NewReader(bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		defer dec.Close()
		return io.ReadAll(dec)
	default:
		return nil, errors.New("unsupported content-encoding " + strconv.Quote(encoding))
	}
}

// encodeJPEGFilmstrip renders a Z-major uint8 volume of shape (dx, dy,
// dz) as dz back-to-back baseline JPEG images, one per Z slice. Each
// encoded image is self-delimited by its own SOI/EOI markers, so a
// client can split the filmstrip by scanning for them without any
// additional framing.
func encodeJPEGFilmstrip(data []byte, dx, dy, dz int) ([]byte, error) {
	sliceLen := dx * dy
	var out bytes.Buffer
	for z := 0; z < dz; z++ {
		start := z * sliceLen
		end := start + sliceLen
		if end > len(data) {
			break
		}
		img := &image.Gray{
			Pix:    data[start:end],
			Stride: dx,
			Rect:   image.Rect(0, 0, dx, dy),
		}
		if err := jpeg.Encode(&out, img, &jpeg.Options{Quality: 90}); err != nil {
			return nil, err
		}
	}
	return out.Bytes(), nil
}
