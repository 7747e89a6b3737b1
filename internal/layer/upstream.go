package layer

import (
	"context"
	"time"

	"github.com/aplbrain/bossphorus/internal/channel"
	"github.com/aplbrain/bossphorus/internal/coord"
	"github.com/aplbrain/bossphorus/internal/telemetry/metrics"
	"github.com/aplbrain/bossphorus/internal/upstream"
)

// relay is the subset of *upstream.Relay that Upstream needs, named as
// an interface so tests can substitute a fake remote service.
type relay interface {
	FetchRegion(ctx context.Context, channelURI string, resolution int, start, stop coord.Vector3) ([]byte, error)
	PutData(ctx context.Context, channelURI string, resolution int, origin coord.Vector3, data []byte) error
}

// Upstream adapts an upstream.Relay to the Manager interface: it is
// always the terminal layer in practice (its NextLayer is Null), since
// the remote service has no further fallback of its own.
type Upstream struct {
	Relay   relay
	Metrics *metrics.Metrics
}

// NextLayer implements Manager. Upstream has no further fallback beyond
// the null terminal.
func (u *Upstream) NextLayer() Manager { return &Null{} }

// GetData implements Manager by delegating to the relay, passing the
// channel URI with its scheme stripped ("col/exp/chan") since the relay
// places it directly in the upstream cutout URL path.
func (u *Upstream) GetData(ctx context.Context, channelURI string, resolution int, origin, destination coord.Vector3) ([]byte, error) {
	start := time.Now()
	data, err := u.Relay.FetchRegion(ctx, channel.Path(channelURI), resolution, origin, destination)
	u.Metrics.RecordUpstreamFetch(time.Since(start), err)
	return data, err
}

// PutData implements Manager by delegating to the relay, which always
// rejects writes (upstream.ErrRelayReadOnly).
func (u *Upstream) PutData(ctx context.Context, channelURI string, resolution int, origin, destination coord.Vector3, data []byte) error {
	return u.Relay.PutData(ctx, channelURI, resolution, origin, data)
}

var _ relay = (*upstream.Relay)(nil)
