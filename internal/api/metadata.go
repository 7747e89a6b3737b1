package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// ChannelMetadata is the JSON document returned for a channel's metadata
// route, field-for-field matching the upstream service's own shape so
// that a client written against the real bossdb API needs no changes to
// talk to the cache proxy.
type ChannelMetadata struct {
	Name              string   `json:"name"`
	Description       string   `json:"description"`
	Experiment        string   `json:"experiment"`
	Collection        string   `json:"collection"`
	DefaultTimeSample int      `json:"default_time_sample"`
	Type              string   `json:"type"`
	BaseResolution    int      `json:"base_resolution"`
	Datatype          string   `json:"datatype"`
	Creator           string   `json:"creator"`
	Sources           []string `json:"sources"`
	DownsampleStatus  string   `json:"downsample_status"`
	Related           []string `json:"related"`
}

// handleChannelMetadata serves GET
// /v1/collection/{collection}/experiment/{experiment}/channel/{channel}.
//
// The cache proxy does not itself track channel metadata beyond the
// identity of the channel being addressed — the descriptive fields are
// filled with the fixed values spec.md documents for a synthesized
// uint8 image channel, since fetching and caching the upstream's own
// metadata document is out of this service's scope.
func (a *API) handleChannelMetadata(w http.ResponseWriter, r *http.Request) {
	collection := chi.URLParam(r, "collection")
	experiment := chi.URLParam(r, "experiment")
	channel := chi.URLParam(r, "channel")

	WriteJSON(w, http.StatusOK, ChannelMetadata{
		Name:              channel,
		Description:       "",
		Experiment:        experiment,
		Collection:        collection,
		DefaultTimeSample: 0,
		Type:              "image",
		BaseResolution:    0,
		Datatype:          "uint8",
		Creator:           "",
		Sources:           []string{},
		DownsampleStatus:  "DOWNSAMPLED",
		Related:           []string{},
	})
}
