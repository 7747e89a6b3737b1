package coord

// Range is a pair of local (within-cuboid) bounds, half-open [Start, Stop)
// per axis, in the same X-Y-Z order as Vector3.
type Range struct {
	Start, Stop Vector3
}

// Decompose maps a global cutout window [start, stop) onto the cuboids of
// size `size` it overlaps, returning for each touched cuboid index the
// sub-window expressed in that cuboid's own local coordinate frame.
//
// Per axis, independently:
//
//	startBlock = floor(start / size)
//	stopBlock  = floor(stop / size)
//	localStart(i) = 0        if start <= i*size, else start mod size
//	localStop(i)  = size     if stop  >= (i+1)*size, else stop mod size
//
// The returned map has exactly (stopBlock-startBlock+1) entries per axis,
// multiplied across the three axes. When stop falls exactly on a cuboid
// boundary, the block one past the last real block is still enumerated
// (stopBlock = stop/size includes it) but receives a zero-width local
// range and therefore contributes nothing when the ranges are mapped back
// to global coordinates — callers must treat ranges as half-open and must
// not special-case these zero-width entries away, since a zero-extent
// cutout (start == stop) legitimately needs to produce exactly one such
// entry per E5.
func Decompose(start, stop, size Vector3) map[Vector3]Range {
	startBlock := Vector3{
		X: start.X / size.X,
		Y: start.Y / size.Y,
		Z: start.Z / size.Z,
	}
	stopBlock := Vector3{
		X: stop.X / size.X,
		Y: stop.Y / size.Y,
		Z: stop.Z / size.Z,
	}

	out := make(map[Vector3]Range)
	for ix := startBlock.X; ix <= stopBlock.X; ix++ {
		for iy := startBlock.Y; iy <= stopBlock.Y; iy++ {
			for iz := startBlock.Z; iz <= stopBlock.Z; iz++ {
				idx := Vector3{X: ix, Y: iy, Z: iz}
				out[idx] = Range{
					Start: localStart(start, idx, size),
					Stop:  localStop(stop, idx, size),
				}
			}
		}
	}
	return out
}

func localStart(start, idx, size Vector3) Vector3 {
	return Vector3{
		X: axisLocalStart(start.X, idx.X, size.X),
		Y: axisLocalStart(start.Y, idx.Y, size.Y),
		Z: axisLocalStart(start.Z, idx.Z, size.Z),
	}
}

func localStop(stop, idx, size Vector3) Vector3 {
	return Vector3{
		X: axisLocalStop(stop.X, idx.X, size.X),
		Y: axisLocalStop(stop.Y, idx.Y, size.Y),
		Z: axisLocalStop(stop.Z, idx.Z, size.Z),
	}
}

func axisLocalStart(start, i, s uint64) uint64 {
	if start <= s*i {
		return 0
	}
	return start % s
}

func axisLocalStop(stop, i, s uint64) uint64 {
	if stop >= s*(i+1) {
		return s
	}
	return stop % s
}

// GlobalOrigin returns the global coordinate of a cuboid index's origin,
// i.e. I .* S computed per axis — the single place cuboid-index-to-global
// multiplication happens, so a caller expanding a miss into a full-cuboid
// fetch region can never accidentally reuse one axis's size component on
// another (the bug fixed from the original implementation, see SPEC_FULL.md
// §4.1 / §9).
func (v Vector3) GlobalOrigin(size Vector3) Vector3 {
	return Vector3{X: v.X * size.X, Y: v.Y * size.Y, Z: v.Z * size.Z}
}
