package layer

import (
	"context"
	"errors"

	"github.com/aplbrain/bossphorus/internal/coord"
)

// ErrNullLayer is returned by the terminal Null layer's GetData/PutData.
// A NullManager never silently zero-fills, because successful-but-empty
// results would be indistinguishable from legitimate black data
// (spec.md §4.4) — it reports a typed, fatal error instead of the
// original's panic, so internal/api can map it to a 5xx response rather
// than crashing the process on every cache miss past the last layer.
var ErrNullLayer = errors.New("layer: reached terminal null layer")

// Null is the DAG's terminal layer: every Manager chain ends here, and
// reaching it means every configured layer failed to produce data.
type Null struct{}

// NextLayer implements Manager. Null has no further layer.
func (Null) NextLayer() Manager { return nil }

// GetData implements Manager.
func (Null) GetData(ctx context.Context, channelURI string, resolution int, origin, destination coord.Vector3) ([]byte, error) {
	return nil, ErrNullLayer
}

// PutData implements Manager.
func (Null) PutData(ctx context.Context, channelURI string, resolution int, origin, destination coord.Vector3, data []byte) error {
	return ErrNullLayer
}
