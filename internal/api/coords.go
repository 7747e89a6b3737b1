package api

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aplbrain/bossphorus/internal/apperrors"
	"github.com/aplbrain/bossphorus/internal/coord"
)

// parseExtent parses a "lo:hi" path segment into its two unsigned
// bounds. Extents are inclusive of the lower bound, exclusive of the
// upper bound (spec.md §6); this layer does not validate hi > lo,
// matching the documented "callers must supply positive shapes"
// contract — a malformed string is the only thing rejected here.
func parseExtent(s string) (lo, hi uint64, err error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%w: extent %q must be \"lo:hi\"", apperrors.ErrInputMalformed, s)
	}
	lo, err = strconv.ParseUint(parts[0], 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: extent lower bound %q: %v", apperrors.ErrInputMalformed, parts[0], err)
	}
	hi, err = strconv.ParseUint(parts[1], 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: extent upper bound %q: %v", apperrors.ErrInputMalformed, parts[1], err)
	}
	return lo, hi, nil
}

// parseCutoutBounds parses the three "lo:hi" path segments of a cutout
// request into origin/destination vectors.
func parseCutoutBounds(xs, ys, zs string) (origin, destination coord.Vector3, err error) {
	x0, x1, err := parseExtent(xs)
	if err != nil {
		return coord.Vector3{}, coord.Vector3{}, err
	}
	y0, y1, err := parseExtent(ys)
	if err != nil {
		return coord.Vector3{}, coord.Vector3{}, err
	}
	z0, z1, err := parseExtent(zs)
	if err != nil {
		return coord.Vector3{}, coord.Vector3{}, err
	}
	return coord.Vector3{X: x0, Y: y0, Z: z0}, coord.Vector3{X: x1, Y: y1, Z: z1}, nil
}

// parseResolution parses the {res} path segment.
func parseResolution(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: resolution %q", apperrors.ErrInputMalformed, s)
	}
	return n, nil
}

// channelURI builds the logical ChannelURI identifier from the three
// path segments of a collection/experiment/channel route.
func channelURI(collection, experiment, channel string) string {
	return fmt.Sprintf("bossdb://%s/%s/%s", collection, experiment, channel)
}
